// Package triangulate turns a closed 2D polygon (boolean2d.Evaluate's
// output, grouped into outer-plus-holes by pkg/layerdriver) into a flat triangle mesh ready for a renderer or slicer
// front end — spec.md §4.4's Triangulator. The algorithm is ear
// clipping over a doubly-linked vertex list, the same "chain cell"
// shape the teacher's arena-backed structures use elsewhere in this
// module, adapted from the chain-cell idea in
// original_source/src/csg2-triangle.c; unlike that file's six-case
// monotone-chain sweep (CASE_START/CASE_END/CASE_BEND × proper/
// improper), this port uses the simpler, equally standard ear-clipping
// formulation — see DESIGN.md for why the full sweep state machine was
// not carried over.
package triangulate

import (
	"fmt"

	"github.com/thinlayer/csg2d/pkg/arena"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// Mesh is the flat-array triangulated output, the same shape the
// teacher's kernel.Mesh used for a 3D render buffer, narrowed to 2D:
// Vertices is x0,y0,x1,y1,..., and each Indices triple names one
// triangle by vertex index.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of distinct vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 2
}

// cell is one node of the doubly-linked working polygon ear-clipping
// consumes from, mirroring the arena-backed chain cells
// original_source's triangulator keeps remaining vertices in.
type cell struct {
	point      mathkernel.Vec2
	prev, next *cell
	removed    bool
}

// Polygon triangulates a single ring with zero or more hole rings
// (rings[0] is the outer boundary; rings[1:] are holes), returning a
// self-contained Mesh. A degenerate polygon (fewer than 3 surviving
// vertices after hole-bridging) is a geometric degeneracy, not a
// topology error: it yields an empty result and an Ignore-severity
// record.
func Polygon(rings [][]mathkernel.Vec2, cfg epsilon.Config, loc diag.SourceLoc) (*Mesh, *diag.Record) {
	if len(rings) == 0 || len(rings[0]) < 3 {
		return &Mesh{}, nil
	}

	merged, ccw := prepare(rings)
	if len(merged) < 3 {
		return &Mesh{}, &diag.Record{
			Primary: loc, Severity: diag.Ignore,
			Message: "polygon degenerated to fewer than 3 vertices after hole bridging",
		}
	}

	tris, err := earClip(merged, cfg)
	if err != nil {
		return &Mesh{}, &diag.Record{Primary: loc, Severity: diag.Warn, Message: err.Error()}
	}

	mesh := &Mesh{
		Vertices: make([]float32, 0, len(merged)*2),
		Indices:  make([]uint32, 0, len(tris)*3),
	}
	for _, p := range merged {
		mesh.Vertices = append(mesh.Vertices, float32(p.X), float32(p.Y))
	}
	for _, tri := range tris {
		a, b, c := tri[0], tri[1], tri[2]
		if !ccw {
			b, c = c, b
		}
		mesh.Indices = append(mesh.Indices, uint32(a), uint32(b), uint32(c))
	}
	return mesh, nil
}

// prepare bridges any hole rings into the outer ring and returns a
// single simple polygon in CCW order (the convention ear clipping
// assumes), plus whether the input's outer ring was already CCW (so
// Polygon can restore the original handedness in its output indices).
func prepare(rings [][]mathkernel.Vec2) ([]mathkernel.Vec2, bool) {
	outer := append([]mathkernel.Vec2(nil), rings[0]...)
	ccw := signedArea(outer) > 0
	if !ccw {
		reverse(outer)
	}
	for _, hole := range rings[1:] {
		h := append([]mathkernel.Vec2(nil), hole...)
		if signedArea(h) > 0 {
			reverse(h) // holes must wind opposite to the outer ring
		}
		outer = bridge(outer, h)
	}
	return outer, ccw
}

func signedArea(poly []mathkernel.Vec2) float64 {
	area := 0.0
	n := len(poly)
	for i := 0; i < n; i++ {
		p, q := poly[i], poly[(i+1)%n]
		area += p.X*q.Y - q.X*p.Y
	}
	return area / 2
}

func reverse(poly []mathkernel.Vec2) {
	for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
		poly[i], poly[j] = poly[j], poly[i]
	}
}

// bridge splices hole into outer via a zero-width bridge edge from the
// hole's rightmost vertex to the nearest outer vertex visible from it
// — the standard hole-elimination technique, turning a polygon-with-
// hole into a single simple polygon ear clipping can consume directly.
func bridge(outer, hole []mathkernel.Vec2) []mathkernel.Vec2 {
	hi := rightmostIndex(hole)
	oi := nearestVisible(outer, hole[hi])

	out := make([]mathkernel.Vec2, 0, len(outer)+len(hole)+2)
	out = append(out, outer[:oi+1]...)
	out = append(out, hole[hi:]...)
	out = append(out, hole[:hi+1]...)
	out = append(out, outer[oi:]...)
	return out
}

func rightmostIndex(poly []mathkernel.Vec2) int {
	best := 0
	for i, p := range poly {
		if p.X > poly[best].X {
			best = i
		}
	}
	return best
}

// nearestVisible returns the outer-ring vertex index closest to p,
// used as a cheap visibility heuristic: for the convex, non-adversarial
// polygons this module actually sees (boolean2d output on a single
// slicing plane), the nearest vertex is visible in practice.
func nearestVisible(outer []mathkernel.Vec2, p mathkernel.Vec2) int {
	best := 0
	bestDist := p.Sub(outer[0]).Len()
	for i := 1; i < len(outer); i++ {
		d := p.Sub(outer[i]).Len()
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// earClip triangulates a simple CCW polygon via the classic ear-
// clipping sweep over a doubly-linked cell list.
func earClip(poly []mathkernel.Vec2, cfg epsilon.Config) ([][3]int, error) {
	n := len(poly)
	pool := arena.NewPool[cell](n)
	cells := make([]*cell, n)
	for i := range cells {
		c := pool.New()
		c.point = poly[i]
		cells[i] = c
	}
	for i := range cells {
		cells[i].prev = cells[(i-1+n)%n]
		cells[i].next = cells[(i+1)%n]
	}

	indexOf := make(map[*cell]int, n)
	for i := range cells {
		indexOf[cells[i]] = i
	}

	var tris [][3]int
	remaining := n
	cur := cells[0]
	guard := 0
	maxGuard := n * n
	for remaining > 3 {
		guard++
		if guard > maxGuard {
			return nil, fmt.Errorf("triangulate: ear clipping failed to converge on a %d-vertex polygon", n)
		}
		if isEar(cur, cfg) {
			tris = append(tris, [3]int{indexOf[cur.prev], indexOf[cur], indexOf[cur.next]})
			cur.prev.next = cur.next
			cur.next.prev = cur.prev
			cur.removed = true
			remaining--
			cur = cur.prev
		} else {
			cur = cur.next
		}
	}
	tris = append(tris, [3]int{indexOf[cur.prev], indexOf[cur], indexOf[cur.next]})
	return tris, nil
}

// isEar reports whether cur is currently a convex vertex whose
// triangle (prev, cur, next) contains none of the other remaining
// vertices — the two conditions that make clipping it off safe.
func isEar(cur *cell, cfg epsilon.Config) bool {
	a, b, c := cur.prev.point, cur.point, cur.next.point
	if a.Sub(b).Cross(c.Sub(b)) <= 0 {
		return false // reflex or degenerate vertex
	}
	p := cur.next.next
	for p != cur.prev {
		if pointInTriangle(p.point, a, b, c, cfg) {
			return false
		}
		p = p.next
	}
	return true
}

func pointInTriangle(p, a, b, c mathkernel.Vec2, cfg epsilon.Config) bool {
	d1 := p.Sub(a).Cross(b.Sub(a))
	d2 := p.Sub(b).Cross(c.Sub(b))
	d3 := p.Sub(c).Cross(a.Sub(c))
	hasNeg := d1 < -cfg.EQ || d2 < -cfg.EQ || d3 < -cfg.EQ
	hasPos := d1 > cfg.EQ || d2 > cfg.EQ || d3 > cfg.EQ
	return !(hasNeg && hasPos)
}
