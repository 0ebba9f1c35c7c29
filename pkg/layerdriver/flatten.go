package layerdriver

import (
	"sort"

	"github.com/thinlayer/csg2d/pkg/boolean2d"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// Mode names how Flatten combines a list of 2D ring sets — spec.md §6's
// "Called during linear_extrude, rotate_extrude, hull, and projection
// lowering" made concrete as a small enum rather than one function per
// caller.
type Mode int

const (
	// ModeUnion combines every input region with boolean union — the
	// ordinary reading of "the 2D child of this node".
	ModeUnion Mode = iota
	// ModeHull replaces the boolean combination with the 2D convex
	// hull of every input point, per csgtree.HullData.
	ModeHull
)

// Flatten combines polys (one ring set per 2D child) under mode into a
// single ring set.
func Flatten(cfg epsilon.Config, polys [][]boolean2d.Ring, mode Mode, loc diag.SourceLoc) ([]boolean2d.Ring, *diag.Record) {
	switch mode {
	case ModeHull:
		return flattenHull(polys), nil
	default:
		return flattenUnion(cfg, polys, loc)
	}
}

func flattenUnion(cfg epsilon.Config, polys [][]boolean2d.Ring, loc diag.SourceLoc) ([]boolean2d.Ring, *diag.Record) {
	lazy := Repeat(false)
	for _, rings := range polys {
		if len(rings) == 0 {
			continue
		}
		var rec *diag.Record
		lazy, rec = lazy.Combine(boolean2d.OpUnion, Spread(rings), cfg, boolean2d.Options{}, loc)
		if rec != nil && rec.Fatal() {
			return nil, rec
		}
	}
	return lazy.Resolve(cfg, boolean2d.Options{}, loc)
}

// flattenHull returns the 2D convex hull (a single CW ring, per this
// module's output-orientation convention) of every point across every
// input ring. There is no convex-hull primitive anywhere in the
// example pack to ground this on; it is Andrew's
// monotone chain, the standard O(n log n) textbook algorithm.
func flattenHull(polys [][]boolean2d.Ring) []boolean2d.Ring {
	var pts []mathkernel.Vec2
	for _, rings := range polys {
		for _, r := range rings {
			pts = append(pts, r...)
		}
	}
	hull := convexHull(pts)
	if len(hull) < 3 {
		return nil
	}
	return []boolean2d.Ring{hull}
}

func convexHull(pts []mathkernel.Vec2) boolean2d.Ring {
	if len(pts) < 3 {
		return nil
	}
	sorted := append([]mathkernel.Vec2(nil), pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	cross := func(o, a, b mathkernel.Vec2) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}

	var lower []mathkernel.Vec2
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []mathkernel.Vec2
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)

	// The monotone chain above winds CCW; reverse to this module's CW
	// output convention.
	for i, j := 0, len(hull)-1; i < j; i, j = i+1, j-1 {
		hull[i], hull[j] = hull[j], hull[i]
	}
	return boolean2d.Ring(hull)
}
