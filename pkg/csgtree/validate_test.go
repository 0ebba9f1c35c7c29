package csgtree_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/thinlayer/csg2d/pkg/csgtree"
)

func hasCode(errs []csgtree.ValidationError, code string) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

func TestValidateCleanTree(t *testing.T) {
	b := csgtree.NewBuilder()
	a := b.Cube(mgl64.Vec3{1, 1, 1}, false)
	s := b.Sphere(1, 16)
	u := b.Boolean(csgtree.OpUnion, a, s)
	tree := b.Root(u)

	if errs := csgtree.NewValidator(tree).Validate(); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want no errors", errs)
	}
}

func TestValidateDanglingChild(t *testing.T) {
	b := csgtree.NewBuilder()
	a := b.Cube(mgl64.Vec3{1, 1, 1}, false)
	u := b.Boolean(csgtree.OpUnion, a, "missing_0000000000000000")
	tree := b.Root(u)

	errs := csgtree.NewValidator(tree).Validate()
	if !hasCode(errs, "DANGLING_CHILD") {
		t.Fatalf("Validate() = %v, want a DANGLING_CHILD error", errs)
	}
}

func TestValidateDanglingRoot(t *testing.T) {
	tree := csgtree.New()
	tree.AddRoot("ghost_0000000000000000")

	errs := csgtree.NewValidator(tree).Validate()
	if !hasCode(errs, "DANGLING_ROOT") {
		t.Fatalf("Validate() = %v, want a DANGLING_ROOT error", errs)
	}
}

func TestValidateEmptyBoolean(t *testing.T) {
	b := csgtree.NewBuilder()
	u := b.Boolean(csgtree.OpUnion)
	tree := b.Root(u)

	errs := csgtree.NewValidator(tree).Validate()
	if !hasCode(errs, "EMPTY_BOOLEAN") {
		t.Fatalf("Validate() = %v, want an EMPTY_BOOLEAN error", errs)
	}
}

func TestValidateDegenerateMatrix(t *testing.T) {
	b := csgtree.NewBuilder()
	a := b.Cube(mgl64.Vec3{1, 1, 1}, false)
	zero := mgl64.Mat4{} // all-zero: determinant 0
	tf := b.Transform(zero, a)
	tree := b.Root(tf)

	errs := csgtree.NewValidator(tree).Validate()
	if !hasCode(errs, "DEGENERATE_MATRIX") {
		t.Fatalf("Validate() = %v, want a DEGENERATE_MATRIX error", errs)
	}
}

func TestValidatePolyhedronFaceIndexRange(t *testing.T) {
	b := csgtree.NewBuilder()
	id := b.Polyhedron(
		[]mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[][]int{{0, 1, 5}},
	)
	tree := b.Root(id)

	errs := csgtree.NewValidator(tree).Validate()
	if !hasCode(errs, "FACE_INDEX_RANGE") {
		t.Fatalf("Validate() = %v, want a FACE_INDEX_RANGE error", errs)
	}
}

func TestValidatePolyhedronEmpty(t *testing.T) {
	b := csgtree.NewBuilder()
	id := b.Polyhedron(nil, nil)
	tree := b.Root(id)

	errs := csgtree.NewValidator(tree).Validate()
	if !hasCode(errs, "EMPTY_POLYHEDRON") {
		t.Fatalf("Validate() = %v, want an EMPTY_POLYHEDRON error", errs)
	}
}
