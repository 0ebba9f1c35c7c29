package csgtree

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// ValidationError describes one structural defect found in a Tree.
// Validate accumulates every defect it finds rather than stopping at
// the first one, the same "report everything, then decide" posture the
// teacher's pkg/graph/validation.go used for design-graph checking.
type ValidationError struct {
	Code    string
	Message string
	NodeID  NodeID
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (node %s)", e.Code, e.Message, e.NodeID.Short())
}

const (
	codeDanglingChild    = "DANGLING_CHILD"
	codeDanglingRoot     = "DANGLING_ROOT"
	codeDegenerateMatrix = "DEGENERATE_MATRIX"
	codeEmptyBoolean     = "EMPTY_BOOLEAN"
	codeFaceIndexRange   = "FACE_INDEX_RANGE"
	codeEmptyPolyhedron  = "EMPTY_POLYHEDRON"
)

// Validator walks a Tree and collects every ValidationError it can find.
type Validator struct {
	tree   *Tree
	errors []ValidationError
}

// NewValidator creates a Validator for t.
func NewValidator(t *Tree) *Validator {
	return &Validator{tree: t}
}

// Validate runs every check and returns the accumulated errors, nil if
// the tree is structurally sound. It never returns early: a caller
// fixing one problem at a time still wants to see the rest in a single
// pass.
func (v *Validator) Validate() []ValidationError {
	v.errors = nil
	for _, id := range v.tree.Roots {
		if v.tree.Get(id) == nil {
			v.errors = append(v.errors, ValidationError{
				Code: codeDanglingRoot, Message: "root references no node", NodeID: id,
			})
		}
	}
	for id, n := range v.tree.Nodes {
		v.checkChildren(id, n)
		v.checkNodeData(id, n)
	}
	return v.errors
}

func (v *Validator) checkChildren(id NodeID, n *Node) {
	for _, cid := range n.Children {
		if v.tree.Get(cid) == nil {
			v.errors = append(v.errors, ValidationError{
				Code:    codeDanglingChild,
				Message: fmt.Sprintf("child %s does not resolve", cid.Short()),
				NodeID:  id,
			})
		}
	}
	switch n.Kind {
	case NodeBoolean:
		if len(n.Children) == 0 {
			v.errors = append(v.errors, ValidationError{
				Code: codeEmptyBoolean, Message: "boolean node has no operands", NodeID: id,
			})
		}
	}
}

func (v *Validator) checkNodeData(id NodeID, n *Node) {
	switch d := n.Data.(type) {
	case TransformData:
		if isDegenerate(d.Matrix) {
			v.errors = append(v.errors, ValidationError{
				Code: codeDegenerateMatrix, Message: "transform matrix has zero determinant", NodeID: id,
			})
		}
	case PolyhedronData:
		if len(d.Points) == 0 || len(d.Faces) == 0 {
			v.errors = append(v.errors, ValidationError{
				Code: codeEmptyPolyhedron, Message: "polyhedron has no points or no faces", NodeID: id,
			})
			return
		}
		for _, face := range d.Faces {
			for _, idx := range face {
				if idx < 0 || idx >= len(d.Points) {
					v.errors = append(v.errors, ValidationError{
						Code:    codeFaceIndexRange,
						Message: fmt.Sprintf("face index %d out of range [0,%d)", idx, len(d.Points)),
						NodeID:  id,
					})
				}
			}
		}
	}
}

// isDegenerate reports whether m's linear (rotation/scale) block
// collapses space onto a lower-dimension subspace — a transform
// pkg/slicer and pkg/topology cannot process meaningfully. This reuses
// mathkernel.Invert3's lvlath-backed LU inversion rather than computing
// a determinant directly: per spec.md §7's divide-by-zero policy,
// inverting a singular matrix is defined to return the zero matrix as a
// sound fixed point, so attempting the inversion and checking for that
// fixed point *is* the spec-prescribed singularity test, not a
// roundabout way of getting one.
func isDegenerate(m mgl64.Mat4) bool {
	inv := mathkernel.Invert3(mathkernel.Mat3FromMat4(m))
	return inv == mgl64.Mat3{}
}
