// Package csgtree defines the CSG tree: the input contract to the
// per-layer pipeline (pkg/layerdriver). A Tree is built once by an
// external collaborator (the SCAD-like lowering pass per spec.md §1)
// and never mutated afterward — each edit produces a new Tree, mirroring
// the teacher's "DesignGraph is immutable; each evaluation produces a
// new graph" design.
package csgtree

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// NodeKind enumerates the kinds of node a Tree can contain.
type NodeKind int

const (
	// 3D primitives (Slicer leaves).
	NodeCube NodeKind = iota
	NodeSphere
	NodeCylinder
	NodePolyhedron

	// 2D primitives (closed-form leaves, no Slicer needed).
	NodePolygon2D
	NodeCircle2D

	// k-ary boolean combination of the node's Children.
	NodeBoolean

	// Affine transform applied to the node's single Child.
	NodeTransform

	// 2D->3D lowering operations whose 2D child is resolved via Flatten.
	NodeLinearExtrude
	NodeRotateExtrude
	NodeHull
	NodeProjection

	// Transparent grouping (passes children through unchanged).
	NodeGroup
)

func (k NodeKind) String() string {
	switch k {
	case NodeCube:
		return "cube"
	case NodeSphere:
		return "sphere"
	case NodeCylinder:
		return "cylinder"
	case NodePolyhedron:
		return "polyhedron"
	case NodePolygon2D:
		return "polygon2d"
	case NodeCircle2D:
		return "circle2d"
	case NodeBoolean:
		return "boolean"
	case NodeTransform:
		return "transform"
	case NodeLinearExtrude:
		return "linear_extrude"
	case NodeRotateExtrude:
		return "rotate_extrude"
	case NodeHull:
		return "hull"
	case NodeProjection:
		return "projection"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is one element of the CSG tree.
type Node struct {
	ID          NodeID
	Kind        NodeKind
	Name        string // optional user-assigned name, for lookup/diagnostics
	Source      diag.SourceLoc
	ContentHash ContentHash
	Children    []NodeID
	Data        NodeData
}

// NodeData is the kind-specific payload of a Node. The marker method
// restricts implementations to this package, the same closed-sum-type
// trick the teacher used for its own NodeData.
type NodeData interface {
	nodeData()
}

// BoolOp enumerates the boolean combination a NodeBoolean performs.
type BoolOp int

const (
	OpUnion BoolOp = iota
	OpDifference
	OpIntersection
	OpXor
)

func (op BoolOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	case OpXor:
		return "xor"
	default:
		return "unknown"
	}
}

// CubeData is an axis-aligned box primitive.
type CubeData struct {
	Size   mgl64.Vec3
	Center bool
}

func (CubeData) nodeData() {}

// SphereData is a sphere primitive. pkg/layerdriver tessellates it into
// a UV-sphere mesh and slices that like any other polyhedron;
// pkg/slicer.SliceSphere's closed-form cross-section is not used there.
type SphereData struct {
	Radius   float64
	Segments int // $fn-equivalent; 0 means "use a driver default"
}

func (SphereData) nodeData() {}

// CylinderData is a (possibly truncated-cone) cylinder primitive along Z.
type CylinderData struct {
	Height       float64
	RadiusBottom float64
	RadiusTop    float64
	Segments     int
	Center       bool
}

func (CylinderData) nodeData() {}

// PolyhedronData is an explicit 3-manifold mesh: a point list and a
// list of faces, each a CCW loop of indices into Points, exactly the
// §4.1/§6 polyhedron input format.
type PolyhedronData struct {
	Points []mgl64.Vec3
	Faces  [][]int
}

func (PolyhedronData) nodeData() {}

// Polygon2DData is a single closed 2D polygon (outer boundary only;
// holes are expressed as separate polygons combined by boolean nodes).
type Polygon2DData struct {
	Points []mathkernel.Vec2
}

func (Polygon2DData) nodeData() {}

// Circle2DData is a closed-form circle, polygonalized when pkg/layerdriver
// resolves its 2D subtree.
type Circle2DData struct {
	Radius   float64
	Segments int
}

func (Circle2DData) nodeData() {}

// BooleanData names the k-ary operation a NodeBoolean node performs
// over its Children (in lazy-polygon terms: OR/ANDNOT/AND/XOR of their
// inside-bits, per spec.md §4.5).
type BooleanData struct {
	Op BoolOp
}

func (BooleanData) nodeData() {}

// TransformData is an affine transform applied to the node's one
// Child. Matrix is the full 4x4 affine transform — translation,
// rotation, scale, or any composition thereof — expressed in the
// external vector/matrix collaborator's type (mgl64.Mat4) rather than
// csg2d reinventing a transform stack.
type TransformData struct {
	Matrix mgl64.Mat4
}

func (TransformData) nodeData() {}

// LinearExtrudeData lowers a single 2D Child (resolved as a 2D
// subtree) into a prism.
type LinearExtrudeData struct {
	Height float64
	Twist  float64 // degrees of rotation from bottom to top
	Scale  float64 // uniform scale factor applied at the top face
	Slices int     // number of intermediate layers for twist/scale
}

func (LinearExtrudeData) nodeData() {}

// RotateExtrudeData lowers a single 2D Child (resolved as a 2D
// subtree) into a solid of revolution around the Z axis.
type RotateExtrudeData struct {
	Angle    float64 // degrees swept; 360 for a full revolution
	Segments int
}

func (RotateExtrudeData) nodeData() {}

// HullData combines its Children via a 2D convex hull rather than a
// boolean op; resolved through Flatten(mode=Hull) per spec.md §6.
type HullData struct{}

func (HullData) nodeData() {}

// ProjectionData flattens its single 3D Child down to the XY plane,
// optionally keeping only the z=0 cross-section (Cut) rather than the
// full silhouette.
type ProjectionData struct {
	Cut bool
}

func (ProjectionData) nodeData() {}

// GroupData is a transparent grouping node: its Children are combined
// exactly as if they were union'd, used purely for organizing a tree
// (naming an assembly) without implying a boolean semantics change.
type GroupData struct{}

func (GroupData) nodeData() {}
