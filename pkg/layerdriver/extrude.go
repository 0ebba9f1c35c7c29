package layerdriver

import (
	"sort"

	"github.com/thinlayer/csg2d/pkg/boolean2d"
	"github.com/thinlayer/csg2d/pkg/csgtree"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// localZ projects the current sweep plane z back into a node's own
// coordinate frame, undoing everything ts has accumulated so far.
// Extrude nodes need this because their Height/Angle are expressed in
// local units. This assumes the accumulated transform does not tilt
// the local Z axis into the XY plane (no rotation about X or Y) —
// true of the translate/scale/rotate-about-Z compositions this
// module's csgtree.Builder is exercised with; a tilting transform
// above a linear_extrude is a case this port does not handle, noted in
// DESIGN.md rather than silently mis-slicing.
func localZ(ts *transformStack, z float64) float64 {
	m := ts.top()
	return mathkernel.SafeDiv(z-m[14], m[10])
}

// walkLinearExtrude resolves the 2D child once per call (the profile
// does not depend on z) and, if the current plane's local height lies
// within [0, Height], applies the twist/scale interpolation for that
// height fraction before wrapping the result as a z-independent-once-
// computed Lazy leaf — spec.md §9's supplemented linear_extrude
// feature (original_source/src/csg3.c's extrude lowering).
func walkLinearExtrude(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack, z float64, cfg epsilon.Config, opt boolean2d.Options) (*Lazy, *diag.Record) {
	data := n.Data.(csgtree.LinearExtrudeData)
	if data.Height <= 0 {
		return Repeat(false), nil
	}
	lz := localZ(ts, z)
	if lz < 0 || lz > data.Height {
		return Repeat(false), nil
	}

	child := firstChild(tree, n)
	if child == nil {
		return Repeat(false), nil
	}
	rings, rec := resolve2D(tree, child, cfg, opt)
	if rec != nil && rec.Fatal() {
		return nil, rec
	}

	t := mathkernel.SafeDiv(lz, data.Height)
	topScale := data.Scale
	if topScale <= 0 {
		topScale = 1
	}
	scale := 1 + (topScale-1)*t
	sinT, cosT := mathkernel.SinCosDegrees(data.Twist * t)

	out := make([]boolean2d.Ring, len(rings))
	for i, r := range rings {
		nr := make(boolean2d.Ring, len(r))
		for j, p := range r {
			rx := p.X*cosT - p.Y*sinT
			ry := p.X*sinT + p.Y*cosT
			nr[j] = mathkernel.Vec2{X: rx * scale, Y: ry * scale}
		}
		out[i] = nr
	}
	return Spread(out), rec
}

// walkRotateExtrude resolves the 2D profile (whose X axis is radius
// and whose Y axis is height) and, at the current local height,
// builds the cross-section swept through Angle degrees — a single
// annulus per (inner, outer) radius pair when Angle is a full
// revolution, or a single pie-sector ring bounded by the innermost and
// outermost radius crossing when it is not (a documented
// simplification for multi-lobed partial sweeps, see DESIGN.md).
func walkRotateExtrude(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack, z float64, cfg epsilon.Config, opt boolean2d.Options) (*Lazy, *diag.Record) {
	data := n.Data.(csgtree.RotateExtrudeData)
	lz := localZ(ts, z)

	child := firstChild(tree, n)
	if child == nil {
		return Repeat(false), nil
	}
	rings, rec := resolve2D(tree, child, cfg, opt)
	if rec != nil && rec.Fatal() {
		return nil, rec
	}

	radii := profileCrossing(rings, lz)
	if len(radii) == 0 {
		return Repeat(false), rec
	}

	segments := data.Segments
	if segments < 3 {
		segments = 32
	}
	angle := data.Angle
	full := angle <= 0 || angle >= 360

	var out []boolean2d.Ring
	if full {
		for i := 0; i+1 < len(radii); i += 2 {
			inner, outer := radii[i], radii[i+1]
			out = append(out, revolveFullRing(outer, segments, false))
			if inner > cfg.PT {
				out = append(out, revolveFullRing(inner, segments, true))
			}
		}
	} else if len(radii) >= 2 {
		out = append(out, revolveSector(radii[0], radii[len(radii)-1], angle, segments))
	}
	return Spread(out), rec
}

// profileCrossing finds the sorted radii at which the 2D profile
// boundary crosses height y, the same edge-crossing classification
// pkg/slicer uses in 3D, narrowed to one dimension.
func profileCrossing(rings []boolean2d.Ring, y float64) []float64 {
	var xs []float64
	for _, r := range rings {
		n := len(r)
		for i := 0; i < n; i++ {
			a, b := r[i], r[(i+1)%n]
			if (a.Y > y) == (b.Y > y) {
				continue
			}
			t := mathkernel.SafeDiv(y-a.Y, b.Y-a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
	}
	sort.Float64s(xs)
	return xs
}

// revolveFullRing polygonalizes a full circle of the given radius,
// CW (the outer-boundary convention) unless hole is set, in which case
// it stays CCW.
func revolveFullRing(radius float64, segments int, hole bool) boolean2d.Ring {
	ring := make(boolean2d.Ring, segments)
	for i := 0; i < segments; i++ {
		theta := 360 * float64(i) / float64(segments)
		s, c := mathkernel.SinCosDegrees(theta)
		ring[i] = mathkernel.Vec2{X: radius * c, Y: radius * s}
	}
	if !hole {
		reverseVec2Ring(ring)
	}
	return ring
}

// revolveSector builds the single boundary ring of a pie-slice
// cross-section: an outward arc at outer radius from 0 to angle
// degrees, back along the inner radius (or a point, if inner is 0).
func revolveSector(inner, outer, angle float64, segments int) boolean2d.Ring {
	var ring boolean2d.Ring
	for i := 0; i <= segments; i++ {
		theta := angle * float64(i) / float64(segments)
		s, c := mathkernel.SinCosDegrees(theta)
		ring = append(ring, mathkernel.Vec2{X: outer * c, Y: outer * s})
	}
	if inner > 0 {
		for i := segments; i >= 0; i-- {
			theta := angle * float64(i) / float64(segments)
			s, c := mathkernel.SinCosDegrees(theta)
			ring = append(ring, mathkernel.Vec2{X: inner * c, Y: inner * s})
		}
	} else {
		ring = append(ring, mathkernel.Vec2{X: 0, Y: 0})
	}
	reverseVec2Ring(ring) // built CCW (increasing theta); flip to the CW outer convention
	return ring
}

func reverseVec2Ring(r boolean2d.Ring) {
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
}
