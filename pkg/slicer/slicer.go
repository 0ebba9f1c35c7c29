// Package slicer intersects a 3D polyhedron with a horizontal z-plane
// and produces the closed 2D polygons of the cross-section, one face
// walk at a time — the first of the two stages spec.md §1 calls out as
// this system's whole reason to exist: cut to 2D *before* doing any
// boolean work, instead of running a full 3D mesh boolean per layer.
//
// The face walk below is the Go-shaped core of hob3l's edge_find_path:
// classify each directed face edge against the cutting plane, and where
// an edge crosses from above to below, record the intersection point
// and hop to the buddy face sharing that edge, continuing until the
// walk returns to its starting edge. Unlike hob3l's csg2-layer.c, this
// port assumes general position (no polyhedron vertex lies exactly on
// the cutting plane): when a vertex lies on the plane, Slice returns
// no cross-section and a Warn diagnostic instead.
package slicer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
	"github.com/thinlayer/csg2d/pkg/topology"
)

// Slice intersects mesh (whose vertex positions are given by points) at
// height z and returns one closed polygon per face-ring the plane
// passes through. A plane that misses the solid entirely yields a nil
// slice and no error: per spec.md §7, an empty cross-section is a valid
// result, not a degeneracy to report.
func Slice(mesh *topology.Mesh, points []mgl64.Vec3, z float64, cfg epsilon.Config, loc diag.SourceLoc) ([][]mathkernel.Vec2, *diag.Record) {
	if mesh == nil || len(mesh.Faces) == 0 {
		return nil, nil
	}

	for _, p := range points {
		if mathkernel.EqScalar(cfg, p.Z(), z) {
			return nil, &diag.Record{
				Primary: loc, Severity: diag.Warn,
				Message: "slicing plane passes exactly through a vertex; nudging is not implemented, cross-section skipped",
			}
		}
	}

	visited := make([][]bool, len(mesh.Faces))
	for fi, f := range mesh.Faces {
		visited[fi] = make([]bool, len(f))
	}

	var polys [][]mathkernel.Vec2
	for fi, f := range mesh.Faces {
		n := len(f)
		for j := 0; j < n; j++ {
			if visited[fi][j] {
				continue
			}
			a, b := f[j], f[(j+1)%n]
			za, zb := points[a].Z(), points[b].Z()
			if za > z && zb < z {
				poly := walkFace(mesh, points, z, fi, j, visited)
				if len(poly) >= 3 {
					polys = append(polys, orientCW(poly))
				}
			}
		}
	}
	return polys, nil
}

// walkFace starts at the down-crossing edge (face, slot) and follows
// the solid's boundary, face to face, until it returns to the start,
// marking every crossing edge visited along the way so Slice never
// re-walks the same ring from its up-crossing half.
func walkFace(mesh *topology.Mesh, points []mgl64.Vec3, z float64, face, slot int, visited [][]bool) []mathkernel.Vec2 {
	startFace, startSlot := face, slot

	f0 := mesh.Faces[face]
	a0, b0 := f0[slot], f0[(slot+1)%len(f0)]
	out := []mathkernel.Vec2{intersect(points[a0], points[b0], z)}

	maxIter := 4*len(mesh.Faces) + 16
	for iter := 0; ; iter++ {
		if iter > maxIter {
			return out // runaway guard; a sound mesh never reaches this
		}
		f := mesh.Faces[face]
		n := len(f)
		visited[face][slot] = true

		// scan forward in this face for the matching up-crossing edge:
		// every convex face the plane cuts has exactly one down-crossing
		// (its entry, at slot) and one up-crossing (its exit).
		k := (slot + 1) % n
		found := false
		for steps := 0; steps < n; steps++ {
			ka, kb := f[k], f[(k+1)%n]
			zka, zkb := points[ka].Z(), points[kb].Z()
			if zka < z && zkb > z {
				found = true
				break
			}
			k = (k + 1) % n
		}
		if !found {
			return out
		}
		visited[face][k] = true

		bf, bslot := mesh.Buddy[face][k][0], mesh.Buddy[face][k][1]
		if bf == startFace && bslot == startSlot {
			// This exit edge is the start edge seen from its other face;
			// its crossing point is already out[0].
			return out
		}

		ka, kb := f[k], f[(k+1)%n]
		out = append(out, intersect(points[ka], points[kb], z))

		if bslot < 0 {
			return out
		}
		face, slot = bf, bslot
	}
}

// intersect returns the point where the segment a->b crosses z.
func intersect(a, b mgl64.Vec3, z float64) mathkernel.Vec2 {
	t := (z - a.Z()) / (b.Z() - a.Z())
	return mathkernel.Vec2{
		X: a.X() + t*(b.X()-a.X()),
		Y: a.Y() + t*(b.Y()-a.Y()),
	}
}

// orientCW reverses poly if it is wound counter-clockwise, so every
// polygon Slice returns obeys the CW convention spec.md §8 requires.
func orientCW(poly []mathkernel.Vec2) []mathkernel.Vec2 {
	area := 0.0
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		area += p.X*q.Y - q.X*p.Y
	}
	if area <= 0 {
		return poly
	}
	rev := make([]mathkernel.Vec2, len(poly))
	for i, p := range poly {
		rev[len(poly)-1-i] = p
	}
	return rev
}

// SliceSphere returns the closed-form circular cross-section of a
// sphere of the given radius at height z, as a CW polygon of the
// requested segment count. A plane entirely outside the sphere yields
// nil, matching the "empty cross-section is valid" contract of Slice.
// A plane that grazes near a pole closely enough that the cross-section
// radius falls at or under the quantization grid also yields nil: per
// spec.md §8's seed scenario 6, a sphere sliced near its pole must
// produce an empty result rather than a degenerate, near-zero-area
// polygon that would only round-trip back to nothing once every vertex
// is quantized to the same grid cell anyway.
func SliceSphere(radius float64, segments int, z float64, cfg epsilon.Config) []mathkernel.Vec2 {
	if segments < 3 {
		segments = 3
	}
	if math.Abs(z) >= radius {
		return nil
	}
	r := math.Sqrt(radius*radius - z*z)
	if r <= cfg.PT {
		return nil
	}
	poly := make([]mathkernel.Vec2, segments)
	for i := 0; i < segments; i++ {
		// Walked clockwise (decreasing angle) so the ring is already CW
		// without a second orientation pass.
		theta := -2 * math.Pi * float64(i) / float64(segments)
		poly[i] = mathkernel.Vec2{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
	}
	return poly
}
