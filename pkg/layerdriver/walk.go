package layerdriver

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/thinlayer/csg2d/pkg/boolean2d"
	"github.com/thinlayer/csg2d/pkg/csgtree"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/slicer"
	"github.com/thinlayer/csg2d/pkg/topology"
)

// transformStack accumulates the affine matrix in effect at the
// current node, the same push/pop shape as the teacher's
// tessellate.transformStack, but a single composed mgl64.Mat4 rather
// than separate translation/rotation sums, since csgtree.TransformData
// already carries one full matrix per spec.md §1's "affine transform
// library is external" rule.
type transformStack struct {
	stack []mgl64.Mat4
}

func newTransformStack() *transformStack {
	return &transformStack{stack: []mgl64.Mat4{mgl64.Ident4()}}
}

func (ts *transformStack) top() mgl64.Mat4 { return ts.stack[len(ts.stack)-1] }

func (ts *transformStack) push(m mgl64.Mat4) {
	ts.stack = append(ts.stack, ts.top().Mul4(m))
}

func (ts *transformStack) pop() {
	ts.stack = ts.stack[:len(ts.stack)-1]
}

// walkRoots unions every root of tree's Lazy polygon at the plane z
// into one combined Lazy — spec.md §4.5's "for each z_i, walk the 3D
// CSG tree producing a lazy polygon at every node", rooted at the
// tree's top level rather than a single node, mirroring the teacher's
// Tessellate(g) looping over g.Roots.
func walkRoots(tree *csgtree.Tree, z float64, cfg epsilon.Config, opt boolean2d.Options) (*Lazy, *diag.Record) {
	ts := newTransformStack()
	result := Repeat(false)
	var warn *diag.Record
	for _, rootID := range tree.Roots {
		n := tree.Get(rootID)
		if n == nil {
			continue
		}
		lazy, rec := walkNode(tree, n, ts, z, cfg, opt)
		if rec != nil {
			if rec.Fatal() {
				return nil, rec
			}
			if warn == nil {
				warn = rec
			}
		}
		var crec *diag.Record
		result, crec = result.Combine(boolean2d.OpUnion, lazy, cfg, opt, n.Source)
		if crec != nil {
			if crec.Fatal() {
				return nil, crec
			}
			if warn == nil {
				warn = crec
			}
		}
	}
	return result, warn
}

// walkNode recursively traverses one CSG node in the context of the
// sweep plane z, producing a Lazy polygon — the 3D-context twin of
// resolve2D, switch-over-Kind exactly as the teacher's walkNode
// switches over graph.NodeKind.
func walkNode(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack, z float64, cfg epsilon.Config, opt boolean2d.Options) (*Lazy, *diag.Record) {
	switch n.Kind {
	case csgtree.NodeCube, csgtree.NodeSphere, csgtree.NodeCylinder, csgtree.NodePolyhedron:
		return sliceLeaf(n, ts, z, cfg)

	case csgtree.NodeBoolean:
		return walkBoolean(tree, n, ts, z, cfg, opt)

	case csgtree.NodeTransform:
		return walkTransform(tree, n, ts, z, cfg, opt)

	case csgtree.NodeGroup:
		return walkChildrenUnion(tree, n, ts, z, cfg, opt)

	case csgtree.NodeLinearExtrude:
		return walkLinearExtrude(tree, n, ts, z, cfg, opt)

	case csgtree.NodeRotateExtrude:
		return walkRotateExtrude(tree, n, ts, z, cfg, opt)

	case csgtree.NodeHull, csgtree.NodeProjection, csgtree.NodePolygon2D, csgtree.NodeCircle2D:
		// A 2D result reached directly in 3D-slice context does not
		// vary with z: resolve it once per call and wrap as a leaf.
		rings, rec := resolve2D(tree, n, cfg, opt)
		if rec != nil && rec.Fatal() {
			return nil, rec
		}
		return Spread(rings), rec

	default:
		return Repeat(false), &diag.Record{
			Primary: n.Source, Severity: diag.Warn,
			Message: "layerdriver: node kind " + n.Kind.String() + " is not valid in a 3D slice context",
		}
	}
}

// walkBoolean folds a NodeBoolean's children left-to-right under its
// Op. Sequential difference A-B-C equals A-(B∪C), so no special-case
// "first minus union of rest" fold is needed: ordinary left folding is
// correct for all four ops (union/xor commutative+associative,
// intersection associative, difference distributes that way too).
func walkBoolean(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack, z float64, cfg epsilon.Config, opt boolean2d.Options) (*Lazy, *diag.Record) {
	data := n.Data.(csgtree.BooleanData)
	children := tree.Children(n)
	if len(children) == 0 {
		return Repeat(false), nil
	}

	result, rec := walkNode(tree, children[0], ts, z, cfg, opt)
	if rec != nil && rec.Fatal() {
		return nil, rec
	}

	op := boolean2d.Op(data.Op)
	for _, c := range children[1:] {
		lz, rec2 := walkNode(tree, c, ts, z, cfg, opt)
		if rec2 != nil && rec2.Fatal() {
			return nil, rec2
		}
		var crec *diag.Record
		result, crec = result.Combine(op, lz, cfg, opt, n.Source)
		if crec != nil && crec.Fatal() {
			return nil, crec
		}
		if rec == nil {
			rec = rec2
		}
	}
	return result, rec
}

// walkTransform pushes the node's matrix, unions its children's Lazy
// polygons under the new transform, then pops — the teacher's
// handleTransform push/recurse/pop shape.
func walkTransform(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack, z float64, cfg epsilon.Config, opt boolean2d.Options) (*Lazy, *diag.Record) {
	data := n.Data.(csgtree.TransformData)
	ts.push(data.Matrix)
	result, rec := walkChildrenUnion(tree, n, ts, z, cfg, opt)
	ts.pop()
	return result, rec
}

// walkChildrenUnion unions a node's children's Lazy polygons without
// touching the transform stack — the teacher's handleGroup shape,
// reused by both NodeGroup (transparent) and NodeTransform (after the
// push).
func walkChildrenUnion(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack, z float64, cfg epsilon.Config, opt boolean2d.Options) (*Lazy, *diag.Record) {
	result := Repeat(false)
	var warn *diag.Record
	for _, c := range tree.Children(n) {
		lz, rec := walkNode(tree, c, ts, z, cfg, opt)
		if rec != nil {
			if rec.Fatal() {
				return nil, rec
			}
			if warn == nil {
				warn = rec
			}
		}
		var crec *diag.Record
		result, crec = result.Combine(boolean2d.OpUnion, lz, cfg, opt, c.Source)
		if crec != nil {
			if crec.Fatal() {
				return nil, crec
			}
			if warn == nil {
				warn = crec
			}
		}
	}
	return result, warn
}

// sliceLeaf tessellates a 3D primitive (primitiveMesh), transforms its
// points by the stack's current matrix, builds its half-edge topology,
// and slices it at z — spec.md §4.5's "Primitive -> one real polygon
// (Slicer output)".
func sliceLeaf(n *csgtree.Node, ts *transformStack, z float64, cfg epsilon.Config) (*Lazy, *diag.Record) {
	points, faces := primitiveMesh(n)
	if len(points) == 0 || len(faces) == 0 {
		return Repeat(false), nil
	}

	mat := ts.top()
	transformed := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		v4 := mat.Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1})
		transformed[i] = mgl64.Vec3{v4[0], v4[1], v4[2]}
	}

	mesh, rec := topology.Build(len(transformed), faces, n.Source)
	if rec != nil && rec.Fatal() {
		return nil, rec
	}

	rings, rec2 := slicer.Slice(mesh, transformed, z, cfg, n.Source)
	if rec2 != nil && rec2.Fatal() {
		return nil, rec2
	}
	out := make([]boolean2d.Ring, len(rings))
	for i, r := range rings {
		out[i] = boolean2d.Ring(r)
	}
	if rec2 != nil {
		return Spread(out), rec2
	}
	return Spread(out), rec
}

// firstChild returns a node's first child, or nil if it has none —
// used by the single-child node kinds (Transform, LinearExtrude,
// RotateExtrude, Projection).
func firstChild(tree *csgtree.Tree, n *csgtree.Node) *csgtree.Node {
	children := tree.Children(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}
