package csgtree

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// Tree is the top-level, immutable CSG tree consumed by pkg/layerdriver.
// It is never mutated once built; each edit to a source design produces
// a new Tree (the teacher's DesignGraph made the same immutability
// promise for the same reason: concurrent per-layer workers must never
// see a tree mutate under them — see spec.md §5).
type Tree struct {
	Nodes     map[NodeID]*Node
	Roots     []NodeID
	NameIndex map[string]NodeID
	Version   uint64
}

// New creates an empty Tree.
func New() *Tree {
	return &Tree{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode registers n in the tree. It does not check for duplicate IDs;
// callers that need that guarantee should use Builder.
func (t *Tree) AddNode(n *Node) {
	t.Nodes[n.ID] = n
	if n.Name != "" {
		t.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers id as one of the tree's root nodes (a node with no
// parent — typically one per top-level CSG statement).
func (t *Tree) AddRoot(id NodeID) {
	t.Roots = append(t.Roots, id)
}

// Get returns the node with the given ID, or nil.
func (t *Tree) Get(id NodeID) *Node {
	return t.Nodes[id]
}

// Lookup returns the node with the given user-assigned name, or nil.
func (t *Tree) Lookup(name string) *Node {
	id, ok := t.NameIndex[name]
	if !ok {
		return nil
	}
	return t.Nodes[id]
}

// MustLookup returns the node with the given name, or panics — intended
// for test fixtures and examples where a missing name is a programmer
// error, not a runtime condition to handle.
func (t *Tree) MustLookup(name string) *Node {
	n := t.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("csgtree: no node named %q", name))
	}
	return n
}

// Children returns the child nodes of n, skipping any ID that does not
// resolve (a dangling reference, which Validate would have flagged).
func (t *Tree) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := t.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes in the tree.
func (t *Tree) NodeCount() int {
	return len(t.Nodes)
}

// Builder provides a fluent, content-addressing API for constructing a
// Tree, mirroring the teacher's GraphBuilder shape (one method per node
// kind, each returning the new node's ID so it can be wired up as a
// child elsewhere).
type Builder struct {
	tree *Tree
}

// NewBuilder creates a Builder around a fresh, empty Tree.
func NewBuilder() *Builder {
	return &Builder{tree: New()}
}

// addLeaf creates and registers a node with no children.
func (b *Builder) addLeaf(kind NodeKind, data NodeData) NodeID {
	id := newNodeID(kind.String(), data)
	n := &Node{ID: id, Kind: kind, Data: data, ContentHash: hashOf(id)}
	b.tree.AddNode(n)
	return id
}

// Cube adds a cube primitive node.
func (b *Builder) Cube(size mgl64.Vec3, center bool) NodeID {
	return b.addLeaf(NodeCube, CubeData{Size: size, Center: center})
}

// Sphere adds a sphere primitive node.
func (b *Builder) Sphere(radius float64, segments int) NodeID {
	return b.addLeaf(NodeSphere, SphereData{Radius: radius, Segments: segments})
}

// Cylinder adds a cylinder primitive node.
func (b *Builder) Cylinder(height, r1, r2 float64, segments int, center bool) NodeID {
	return b.addLeaf(NodeCylinder, CylinderData{
		Height: height, RadiusBottom: r1, RadiusTop: r2,
		Segments: segments, Center: center,
	})
}

// Polyhedron adds an explicit-mesh primitive node.
func (b *Builder) Polyhedron(points []mgl64.Vec3, faces [][]int) NodeID {
	return b.addLeaf(NodePolyhedron, PolyhedronData{Points: points, Faces: faces})
}

// Polygon2D adds a 2D polygon primitive node.
func (b *Builder) Polygon2D(points []mathkernel.Vec2) NodeID {
	return b.addLeaf(NodePolygon2D, Polygon2DData{Points: points})
}

// Circle2D adds a 2D circle primitive node.
func (b *Builder) Circle2D(radius float64, segments int) NodeID {
	return b.addLeaf(NodeCircle2D, Circle2DData{Radius: radius, Segments: segments})
}

// Boolean combines children under op.
func (b *Builder) Boolean(op BoolOp, children ...NodeID) NodeID {
	id := newNodeID("boolean", op, children)
	n := &Node{ID: id, Kind: NodeBoolean, Data: BooleanData{Op: op}, Children: children, ContentHash: hashOf(id)}
	b.tree.AddNode(n)
	return id
}

// Transform applies matrix to child.
func (b *Builder) Transform(matrix mgl64.Mat4, child NodeID) NodeID {
	id := newNodeID("transform", matrix, child)
	n := &Node{ID: id, Kind: NodeTransform, Data: TransformData{Matrix: matrix}, Children: []NodeID{child}, ContentHash: hashOf(id)}
	b.tree.AddNode(n)
	return id
}

// Group wraps children transparently, e.g. to give an assembly a name.
func (b *Builder) Group(name string, children ...NodeID) NodeID {
	id := newNodeID("group", children)
	n := &Node{ID: id, Kind: NodeGroup, Name: name, Data: GroupData{}, Children: children, ContentHash: hashOf(id)}
	b.tree.AddNode(n)
	return id
}

// LinearExtrude lowers a 2D child into a prism.
func (b *Builder) LinearExtrude(height, twist, scale float64, slices int, child NodeID) NodeID {
	id := newNodeID("linear_extrude", height, twist, scale, slices, child)
	n := &Node{
		ID: id, Kind: NodeLinearExtrude,
		Data:     LinearExtrudeData{Height: height, Twist: twist, Scale: scale, Slices: slices},
		Children: []NodeID{child}, ContentHash: hashOf(id),
	}
	b.tree.AddNode(n)
	return id
}

// RotateExtrude lowers a 2D child into a solid of revolution.
func (b *Builder) RotateExtrude(angle float64, segments int, child NodeID) NodeID {
	id := newNodeID("rotate_extrude", angle, segments, child)
	n := &Node{
		ID: id, Kind: NodeRotateExtrude,
		Data:     RotateExtrudeData{Angle: angle, Segments: segments},
		Children: []NodeID{child}, ContentHash: hashOf(id),
	}
	b.tree.AddNode(n)
	return id
}

// Hull combines children via a 2D convex hull.
func (b *Builder) Hull(children ...NodeID) NodeID {
	id := newNodeID("hull", children)
	n := &Node{ID: id, Kind: NodeHull, Data: HullData{}, Children: children, ContentHash: hashOf(id)}
	b.tree.AddNode(n)
	return id
}

// Projection flattens a 3D child to the XY plane.
func (b *Builder) Projection(cut bool, child NodeID) NodeID {
	id := newNodeID("projection", cut, child)
	n := &Node{ID: id, Kind: NodeProjection, Data: ProjectionData{Cut: cut}, Children: []NodeID{child}, ContentHash: hashOf(id)}
	b.tree.AddNode(n)
	return id
}

// Root marks id as a root of the tree and returns the completed Tree.
func (b *Builder) Root(id NodeID) *Tree {
	b.tree.AddRoot(id)
	return b.tree
}

// Build returns the tree built so far without marking any additional root.
func (b *Builder) Build() *Tree {
	return b.tree
}
