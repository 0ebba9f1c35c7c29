package layerdriver

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/thinlayer/csg2d/pkg/boolean2d"
	"github.com/thinlayer/csg2d/pkg/csgtree"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// resolve2D walks a 2D-context subtree — a linear_extrude/rotate_extrude
// child, or a Hull/Projection/Polygon2D/Circle2D reached directly from
// the 3D walk — into a concrete ring set. Unlike walkNode's 3D walk
// this resolves eagerly instead of staying Lazy: a 2D Transform node
// needs concrete points to apply its matrix to, and the result never
// varies with the sweep plane z anyway.
func resolve2D(tree *csgtree.Tree, n *csgtree.Node, cfg epsilon.Config, opt boolean2d.Options) ([]boolean2d.Ring, *diag.Record) {
	switch n.Kind {
	case csgtree.NodePolygon2D:
		data := n.Data.(csgtree.Polygon2DData)
		return []boolean2d.Ring{boolean2d.Ring(append([]mathkernel.Vec2(nil), data.Points...))}, nil

	case csgtree.NodeCircle2D:
		data := n.Data.(csgtree.Circle2DData)
		return []boolean2d.Ring{circleRing(data.Radius, data.Segments)}, nil

	case csgtree.NodeBoolean:
		return resolveBoolean2D(tree, n, cfg, opt)

	case csgtree.NodeTransform:
		data := n.Data.(csgtree.TransformData)
		child := firstChild(tree, n)
		if child == nil {
			return nil, nil
		}
		rings, rec := resolve2D(tree, child, cfg, opt)
		if rec != nil && rec.Fatal() {
			return nil, rec
		}
		return transformRings2D(rings, data.Matrix), rec

	case csgtree.NodeGroup:
		var out []boolean2d.Ring
		var warn *diag.Record
		for _, c := range tree.Children(n) {
			rings, rec := resolve2D(tree, c, cfg, opt)
			if rec != nil {
				if rec.Fatal() {
					return nil, rec
				}
				if warn == nil {
					warn = rec
				}
			}
			out = append(out, rings...)
		}
		return out, warn

	case csgtree.NodeHull:
		var polys [][]boolean2d.Ring
		for _, c := range tree.Children(n) {
			rings, rec := resolve2D(tree, c, cfg, opt)
			if rec != nil && rec.Fatal() {
				return nil, rec
			}
			polys = append(polys, rings)
		}
		return Flatten(cfg, polys, ModeHull, n.Source)

	case csgtree.NodeProjection:
		data := n.Data.(csgtree.ProjectionData)
		child := firstChild(tree, n)
		if child == nil {
			return nil, nil
		}
		return projectNode(tree, child, newTransformStack(), data.Cut, cfg, opt)

	default:
		return nil, &diag.Record{
			Primary: n.Source, Severity: diag.Warn,
			Message: "layerdriver: node kind " + n.Kind.String() + " is not valid in a 2D context",
		}
	}
}

// resolveBoolean2D folds a NodeBoolean's 2D children left-to-right
// through Lazy.Combine, the same left-fold correctness argument as
// walkBoolean (spec.md §4.5's truth-table combination, worked in
// concrete-ring space instead of staying lazy across z-planes since a
// 2D subtree has no z dependency to defer for).
func resolveBoolean2D(tree *csgtree.Tree, n *csgtree.Node, cfg epsilon.Config, opt boolean2d.Options) ([]boolean2d.Ring, *diag.Record) {
	data := n.Data.(csgtree.BooleanData)
	children := tree.Children(n)
	if len(children) == 0 {
		return nil, nil
	}
	first, rec := resolve2D(tree, children[0], cfg, opt)
	if rec != nil && rec.Fatal() {
		return nil, rec
	}
	if len(children) == 1 {
		return first, rec
	}

	lazy := Spread(first)
	op := boolean2d.Op(data.Op)
	for _, c := range children[1:] {
		rings, rec2 := resolve2D(tree, c, cfg, opt)
		if rec2 != nil && rec2.Fatal() {
			return nil, rec2
		}
		var crec *diag.Record
		lazy, crec = lazy.Combine(op, Spread(rings), cfg, opt, n.Source)
		if crec != nil && crec.Fatal() {
			return nil, crec
		}
	}
	return lazy.Resolve(cfg, opt, n.Source)
}

// circleRing polygonalizes a circle primitive, CCW by construction
// (matching the hole-ring convention; callers that want an outer CW
// ring reverse it themselves — see revolveFullRing).
func circleRing(radius float64, segments int) boolean2d.Ring {
	if segments < 3 {
		segments = 32
	}
	ring := make(boolean2d.Ring, segments)
	for i := 0; i < segments; i++ {
		theta := 360 * float64(i) / float64(segments)
		s, c := mathkernel.SinCosDegrees(theta)
		ring[i] = mathkernel.Vec2{X: radius * c, Y: radius * s}
	}
	return ring
}

// transformRings2D applies the XY block of an affine matrix to every
// point of every ring (z is dropped — 2D subtrees do not carry a
// z-coordinate of their own).
func transformRings2D(rings []boolean2d.Ring, m mgl64.Mat4) []boolean2d.Ring {
	out := make([]boolean2d.Ring, len(rings))
	for i, r := range rings {
		nr := make(boolean2d.Ring, len(r))
		for j, p := range r {
			v4 := m.Mul4x1(mgl64.Vec4{p.X, p.Y, 0, 1})
			nr[j] = mathkernel.Vec2{X: v4[0], Y: v4[1]}
		}
		out[i] = nr
	}
	return out
}

// projectNode approximates spec.md §6's projection() lowering. With
// Cut it slices the child solid at local z=0 exactly, the precise
// cross-section OpenSCAD's projection(cut=true) computes. Without Cut
// (the full silhouette) it unions the XY-projection of every
// primitive leaf's faces, ignoring how composite children are
// combined in 3D — a documented approximation (see DESIGN.md) that is
// exact for unions of primitives and conservative (never smaller than
// the true silhouette) for differences/intersections.
func projectNode(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack, cut bool, cfg epsilon.Config, opt boolean2d.Options) ([]boolean2d.Ring, *diag.Record) {
	if cut {
		lazy, rec := walkNode(tree, n, ts, 0, cfg, opt)
		if rec != nil && rec.Fatal() {
			return nil, rec
		}
		rings, rec2 := lazy.Resolve(cfg, opt, n.Source)
		if rec2 != nil && rec2.Fatal() {
			return nil, rec2
		}
		if rec != nil {
			return rings, rec
		}
		return rings, rec2
	}

	faces, rec := collectFaceRings(tree, n, ts)
	if rec != nil && rec.Fatal() {
		return nil, rec
	}
	if len(faces) == 0 {
		return nil, rec
	}

	operands := make([]boolean2d.Operand, len(faces))
	for i, f := range faces {
		operands[i] = boolean2d.Operand{Rings: []boolean2d.Ring{f}}
	}
	if len(operands) > boolean2d.MaxOperands {
		operands = operands[:boolean2d.MaxOperands]
	}
	rings, recE := boolean2d.Evaluate(operands, unionTable(len(operands)), cfg, opt, n.Source)
	if recE != nil && recE.Fatal() {
		return nil, recE
	}
	if rec != nil {
		return rings, rec
	}
	return rings, recE
}

// unionTable returns the truth table for an n-ary union: true for
// every nonzero membership vector.
func unionTable(arity int) boolean2d.TruthTable {
	size := 1 << uint(arity)
	var t boolean2d.TruthTable
	for m := 1; m < size; m++ {
		t |= 1 << uint(m)
	}
	return t
}

// collectFaceRings recursively gathers the XY-projected face outlines
// of every 3D primitive leaf reached under n, composing the transform
// stack along the way but ignoring boolean operators between
// composite children (see projectNode's documented approximation).
func collectFaceRings(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack) ([]boolean2d.Ring, *diag.Record) {
	switch n.Kind {
	case csgtree.NodeCube, csgtree.NodeSphere, csgtree.NodeCylinder, csgtree.NodePolyhedron:
		points, faces := primitiveMesh(n)
		mat := ts.top()
		out := make([]boolean2d.Ring, 0, len(faces))
		for _, face := range faces {
			ring := make(boolean2d.Ring, len(face))
			for i, idx := range face {
				p := points[idx]
				v4 := mat.Mul4x1(mgl64.Vec4{p.X(), p.Y(), p.Z(), 1})
				ring[i] = mathkernel.Vec2{X: v4[0], Y: v4[1]}
			}
			out = append(out, ring)
		}
		return out, nil

	case csgtree.NodeTransform:
		data := n.Data.(csgtree.TransformData)
		ts.push(data.Matrix)
		out, rec := collectChildFaceRings(tree, n, ts)
		ts.pop()
		return out, rec

	case csgtree.NodeBoolean, csgtree.NodeGroup:
		return collectChildFaceRings(tree, n, ts)

	default:
		return nil, nil
	}
}

func collectChildFaceRings(tree *csgtree.Tree, n *csgtree.Node, ts *transformStack) ([]boolean2d.Ring, *diag.Record) {
	var out []boolean2d.Ring
	var warn *diag.Record
	for _, c := range tree.Children(n) {
		rings, rec := collectFaceRings(tree, c, ts)
		if rec != nil {
			if rec.Fatal() {
				return nil, rec
			}
			if warn == nil {
				warn = rec
			}
		}
		out = append(out, rings...)
	}
	return out, warn
}
