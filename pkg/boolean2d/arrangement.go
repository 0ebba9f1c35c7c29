package boolean2d

import (
	"sort"

	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// segment is one arrangement edge: a directed piece of an operand's
// boundary that no longer crosses any other edge (interior
// intersections have already been split out into new vertices). Owner
// is kept only for debugging/degenerate diagnostics — membership of
// the two sides is recomputed by point-in-ring testing rather than
// carried through the split, which is the simplification spec.md's
// own owner/below mask bookkeeping sidesteps for in hob3l.
type segment struct {
	A, B  mathkernel.Vec2
	Owner int
}

// buildSegments flattens every operand's rings into directed edges
// tagged with their operand index — this package's Event queue seed,
// in hob3l's vocabulary: one event pair per boundary edge.
func buildSegments(operands []Operand) []segment {
	var segs []segment
	for oi, op := range operands {
		for _, ring := range op.Rings {
			n := len(ring)
			for i := 0; i < n; i++ {
				segs = append(segs, segment{A: ring[i], B: ring[(i+1)%n], Owner: oi})
			}
		}
	}
	return segs
}

// splitAtIntersections finds every pairwise crossing among segs and
// returns the arrangement obtained by cutting each segment at every
// interior point where another segment crosses it or ends on it — the planar
// subdivision pkg/boolean2d's ring-assembly stage walks. This is the
// O(E^2) pairwise variant of hob3l's incremental sweep-status
// intersection search: correct, but without the balanced-BST-backed
// O(E log E) bound spec.md §4.3 describes (see DESIGN.md).
func splitAtIntersections(segs []segment, cfg epsilon.Config) []segment {
	cuts := make([][]mathkernel.Vec2, len(segs))
	for i := range segs {
		cuts[i] = []mathkernel.Vec2{segs[i].A, segs[i].B}
	}

	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			if p, ok := intersectSegments(segs[i].A, segs[i].B, segs[j].A, segs[j].B, cfg); ok {
				cuts[i] = append(cuts[i], p)
				cuts[j] = append(cuts[j], p)
			}
			// An endpoint of one segment lying on the interior of the
			// other (a T-junction or a partial collinear overlap) cuts it.
			for k, p := range [4]mathkernel.Vec2{segs[j].A, segs[j].B, segs[i].A, segs[i].B} {
				on, target := segs[i], i
				if k >= 2 {
					on, target = segs[j], j
				}
				d := on.B.Sub(on.A)
				t := p.Sub(on.A).Dot(d) / d.Dot(d)
				if t > 1e-9 && t < 1-1e-9 && mathkernel.EqScalar(cfg, p.Sub(on.A).Cross(d)/d.Len(), 0) {
					cuts[target] = append(cuts[target], p)
				}
			}
		}
	}

	var out []segment
	for i, seg := range segs {
		pts := cuts[i]
		dir := seg.B.Sub(seg.A)
		sort.Slice(pts, func(a, b int) bool {
			return pts[a].Sub(seg.A).Dot(dir) < pts[b].Sub(seg.A).Dot(dir)
		})
		var dedup []mathkernel.Vec2
		for _, p := range pts {
			if len(dedup) > 0 && mathkernel.Eq(cfg, dedup[len(dedup)-1], p) {
				continue
			}
			dedup = append(dedup, p)
		}
		for k := 0; k+1 < len(dedup); k++ {
			if mathkernel.Eq(cfg, dedup[k], dedup[k+1]) {
				continue
			}
			out = append(out, segment{A: dedup[k], B: dedup[k+1], Owner: seg.Owner})
		}
	}
	return out
}

// intersectSegments returns the single interior crossing point of
// segments (a1,a2) and (b1,b2), if any. Parallel and collinear pairs,
// and crossings at an endpoint of either segment, report none here;
// splitAtIntersections cuts those cases separately, wherever an
// endpoint of one segment lies on the interior of the other, so a
// *partial* collinear overlap becomes fully-coincident pieces. A
// *fully*-coincident duplicate boundary (the same edge present twice,
// e.g. a leaf reached twice by one boolean operation) survives
// classify as two identical kept edges and is cancelled explicitly by
// chain.go's dedupeCoincidentEdges before ring assembly runs.
func intersectSegments(a1, a2, b1, b2 mathkernel.Vec2, cfg epsilon.Config) (mathkernel.Vec2, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	denom := r.Cross(s)
	if mathkernel.EqScalar(cfg, denom, 0) {
		return mathkernel.Vec2{}, false // parallel or collinear
	}
	qp := b1.Sub(a1)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	const eps = 1e-9
	if t < eps || t > 1-eps || u < eps || u > 1-eps {
		return mathkernel.Vec2{}, false
	}
	return a1.Add(r.Scale(t)), true
}
