package layerdriver

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/thinlayer/csg2d/pkg/csgtree"
)

// primitiveMesh returns the point/face representation of a 3D leaf
// node's untransformed geometry, in the exact shape pkg/topology.Build
// consumes. Cube, sphere, and cylinder are tessellated here rather than
// handled as closed forms (the way pkg/slicer.SliceSphere shortcuts an
// axis-aligned, untransformed sphere) because a leaf under an arbitrary
// csgtree.TransformData — a shear, a non-uniform scale — turns a sphere
// into a general quadric that has no cheap closed-form cross-section;
// tessellating once up front and letting pkg/slicer walk the resulting
// mesh handles every transform uniformly.
func primitiveMesh(n *csgtree.Node) (points []mgl64.Vec3, faces [][]int) {
	switch data := n.Data.(type) {
	case csgtree.CubeData:
		return cubeMesh(data)
	case csgtree.SphereData:
		return sphereMesh(data)
	case csgtree.CylinderData:
		return cylinderMesh(data)
	case csgtree.PolyhedronData:
		return data.Points, data.Faces
	default:
		return nil, nil
	}
}

// cubeMesh lays out the eight corners and six faces of an axis-aligned
// box, using the same point/winding layout pkg/topology's tests already
// exercise (bottom z=lo, top z=hi, every face wound clockwise as seen
// from outside the box; pkg/slicer reorients its output rings, so any
// consistent winding slices the same).
func cubeMesh(d csgtree.CubeData) ([]mgl64.Vec3, [][]int) {
	sx, sy, sz := d.Size.X(), d.Size.Y(), d.Size.Z()
	ox, oy, oz := 0.0, 0.0, 0.0
	if d.Center {
		ox, oy, oz = -sx/2, -sy/2, -sz/2
	}
	points := []mgl64.Vec3{
		{ox, oy, oz}, {ox + sx, oy, oz}, {ox + sx, oy + sy, oz}, {ox, oy + sy, oz},
		{ox, oy, oz + sz}, {ox + sx, oy, oz + sz}, {ox + sx, oy + sy, oz + sz}, {ox, oy + sy, oz + sz},
	}
	faces := [][]int{
		{0, 1, 2, 3}, // bottom
		{4, 7, 6, 5}, // top
		{0, 4, 5, 1}, // front
		{1, 5, 6, 2}, // right
		{2, 6, 7, 3}, // back
		{3, 7, 4, 0}, // left
	}
	return points, faces
}

// sphereMesh tessellates a UV sphere with the given longitude segment
// count and a matching number of latitude rings, collapsing to a
// single point at each pole.
func sphereMesh(d csgtree.SphereData) ([]mgl64.Vec3, [][]int) {
	segments := d.Segments
	if segments < 3 {
		segments = 16
	}
	rings := segments / 2
	if rings < 2 {
		rings = 2
	}
	r := d.Radius

	points := []mgl64.Vec3{{0, 0, -r}}
	for ring := 1; ring < rings; ring++ {
		phi := math.Pi * float64(ring) / float64(rings) // 0..pi from south pole
		z := -r * math.Cos(phi)
		ringR := r * math.Sin(phi)
		for seg := 0; seg < segments; seg++ {
			theta := 2 * math.Pi * float64(seg) / float64(segments)
			points = append(points, mgl64.Vec3{ringR * math.Cos(theta), ringR * math.Sin(theta), z})
		}
	}
	points = append(points, mgl64.Vec3{0, 0, r})
	northIdx := len(points) - 1

	var faces [][]int
	// south cap: triangle fan from the south pole to ring 1.
	firstRing := 1
	for seg := 0; seg < segments; seg++ {
		a := firstRing + seg
		b := firstRing + (seg+1)%segments
		faces = append(faces, []int{0, b, a})
	}
	// body quads between consecutive rings.
	for ring := 1; ring < rings-1; ring++ {
		base := firstRing + (ring-1)*segments
		next := base + segments
		for seg := 0; seg < segments; seg++ {
			a := base + seg
			b := base + (seg+1)%segments
			c := next + (seg+1)%segments
			d := next + seg
			faces = append(faces, []int{a, b, c, d})
		}
	}
	// north cap: triangle fan from the north pole to the last ring.
	lastRingBase := firstRing + (rings-2)*segments
	for seg := 0; seg < segments; seg++ {
		a := lastRingBase + seg
		b := lastRingBase + (seg+1)%segments
		faces = append(faces, []int{northIdx, a, b})
	}
	return points, faces
}

// cylinderMesh tessellates a (possibly frustum-shaped, when RadiusTop
// != RadiusBottom) cylinder along Z with two N-gon caps and N side
// quads.
func cylinderMesh(d csgtree.CylinderData) ([]mgl64.Vec3, [][]int) {
	segments := d.Segments
	if segments < 3 {
		segments = 16
	}
	lo, hi := 0.0, d.Height
	if d.Center {
		lo, hi = -d.Height/2, d.Height/2
	}

	points := make([]mgl64.Vec3, 0, 2*segments)
	for seg := 0; seg < segments; seg++ {
		theta := 2 * math.Pi * float64(seg) / float64(segments)
		points = append(points, mgl64.Vec3{d.RadiusBottom * math.Cos(theta), d.RadiusBottom * math.Sin(theta), lo})
	}
	for seg := 0; seg < segments; seg++ {
		theta := 2 * math.Pi * float64(seg) / float64(segments)
		points = append(points, mgl64.Vec3{d.RadiusTop * math.Cos(theta), d.RadiusTop * math.Sin(theta), hi})
	}

	var faces [][]int
	bottom := make([]int, segments)
	top := make([]int, segments)
	for seg := 0; seg < segments; seg++ {
		bottom[segments-1-seg] = seg // reversed so the outward normal faces -z
		top[seg] = segments + seg
	}
	faces = append(faces, bottom, top)
	for seg := 0; seg < segments; seg++ {
		a := seg
		b := (seg + 1) % segments
		faces = append(faces, []int{a, b, segments + b, segments + a})
	}
	return points, faces
}
