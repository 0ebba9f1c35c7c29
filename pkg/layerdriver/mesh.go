package layerdriver

import (
	"github.com/thinlayer/csg2d/pkg/boolean2d"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
	"github.com/thinlayer/csg2d/pkg/triangulate"
)

// signedArea2 is the shoelace formula; boolean2d's output orientation
// convention (spec.md §4.3's "interior lies to the right", confirmed
// by §8 scenario 2's "outer CW, inner CCW") makes an outer boundary's
// signed area negative and a hole's positive.
func signedArea2(ring boolean2d.Ring) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

func pointInRing2(ring boolean2d.Ring, p mathkernel.Vec2) bool {
	inside := false
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		if (a.Y > p.Y) == (b.Y > p.Y) {
			continue
		}
		xCross := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
		if p.X < xCross {
			inside = !inside
		}
	}
	return inside
}

// groupRings partitions a boolean2d result into outer-ring groups,
// each paired with the hole rings nested directly inside it, so each
// group can be handed to pkg/triangulate.Polygon (which accepts one
// outer boundary plus its own holes, not an arbitrary mixed ring set).
// A hole is assigned to the smallest-area containing outer ring, so a
// hole-within-a-hole-within-an-outer nesting attaches to its immediate
// parent rather than an ancestor.
func groupRings(rings []boolean2d.Ring) [][]boolean2d.Ring {
	var outers, holes []boolean2d.Ring
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		if signedArea2(r) < 0 {
			outers = append(outers, r)
		} else {
			holes = append(holes, r)
		}
	}

	groups := make([][]boolean2d.Ring, len(outers))
	for i, o := range outers {
		groups[i] = []boolean2d.Ring{o}
	}

	for _, h := range holes {
		best, bestArea := -1, 0.0
		for i, o := range outers {
			if !pointInRing2(o, h[0]) {
				continue
			}
			area := -signedArea2(o)
			if best == -1 || area < bestArea {
				best, bestArea = i, area
			}
		}
		if best >= 0 {
			groups[best] = append(groups[best], h)
		}
	}
	return groups
}

// triangulateRings groups rings (see groupRings) and triangulates each
// outer-plus-holes group independently, concatenating the resulting
// meshes into one, index offsets adjusted so the merged Mesh is
// self-contained — the per-layer output spec.md §3's Layer stack
// describes as "point vector + path vector + triangle vector".
func triangulateRings(rings []boolean2d.Ring, cfg epsilon.Config, loc diag.SourceLoc) (*triangulate.Mesh, *diag.Record) {
	groups := groupRings(rings)
	if len(groups) == 0 {
		return &triangulate.Mesh{}, nil
	}

	merged := &triangulate.Mesh{}
	var warn *diag.Record
	for _, g := range groups {
		plain := make([][]mathkernel.Vec2, len(g))
		for i, r := range g {
			plain[i] = []mathkernel.Vec2(r)
		}
		mesh, rec := triangulate.Polygon(plain, cfg, loc)
		if rec != nil {
			if rec.Fatal() {
				return nil, rec
			}
			if warn == nil {
				warn = rec
			}
		}
		offset := uint32(merged.VertexCount())
		merged.Vertices = append(merged.Vertices, mesh.Vertices...)
		for _, idx := range mesh.Indices {
			merged.Indices = append(merged.Indices, idx+offset)
		}
	}
	return merged, warn
}
