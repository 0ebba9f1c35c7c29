package layerdriver_test

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/thinlayer/csg2d/pkg/boolean2d"
	"github.com/thinlayer/csg2d/pkg/csgtree"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/layerdriver"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

func unitSquare(x, y float64) []mathkernel.Vec2 {
	return []mathkernel.Vec2{{X: x, Y: y}, {X: x + 1, Y: y}, {X: x + 1, Y: y + 1}, {X: x, Y: y + 1}}
}

func TestFlattenUnionOverlappingSquares(t *testing.T) {
	cfg := epsilon.Default()
	polys := [][]boolean2d.Ring{
		{boolean2d.Ring(unitSquare(0, 0))},
		{boolean2d.Ring(unitSquare(0.5, 0))},
	}
	rings, rec := layerdriver.Flatten(cfg, polys, layerdriver.ModeUnion, diag.SourceLoc{})
	if rec != nil && rec.Fatal() {
		t.Fatalf("Flatten fatal: %v", rec)
	}
	if len(rings) != 1 {
		t.Fatalf("len(rings) = %d, want 1", len(rings))
	}
	if len(rings[0]) != 4 {
		t.Fatalf("len(rings[0]) = %d, want 4 (a 1.5x1 rectangle)", len(rings[0]))
	}
}

func TestFlattenHullOfTwoSquares(t *testing.T) {
	cfg := epsilon.Default()
	polys := [][]boolean2d.Ring{
		{boolean2d.Ring(unitSquare(0, 0))},
		{boolean2d.Ring(unitSquare(3, 3))},
	}
	rings, rec := layerdriver.Flatten(cfg, polys, layerdriver.ModeHull, diag.SourceLoc{})
	if rec != nil && rec.Fatal() {
		t.Fatalf("Flatten fatal: %v", rec)
	}
	if len(rings) != 1 {
		t.Fatalf("len(rings) = %d, want 1", len(rings))
	}
	if len(rings[0]) < 3 {
		t.Fatalf("hull ring has %d vertices, want >= 3", len(rings[0]))
	}
}

func TestLazyCombineMatchesDirectEvaluate(t *testing.T) {
	cfg := epsilon.Default()
	a := boolean2d.Ring(unitSquare(0, 0))
	b := boolean2d.Ring(unitSquare(0.5, 0))

	lazy := layerdriver.Spread([]boolean2d.Ring{a})
	lazy, rec := lazy.Combine(boolean2d.OpXor, layerdriver.Spread([]boolean2d.Ring{b}), cfg, boolean2d.Options{}, diag.SourceLoc{})
	if rec != nil && rec.Fatal() {
		t.Fatalf("Combine fatal: %v", rec)
	}
	rings, rec2 := lazy.Resolve(cfg, boolean2d.Options{}, diag.SourceLoc{})
	if rec2 != nil && rec2.Fatal() {
		t.Fatalf("Resolve fatal: %v", rec2)
	}

	direct, rec3 := boolean2d.Evaluate(
		[]boolean2d.Operand{{Rings: []boolean2d.Ring{a}}, {Rings: []boolean2d.Ring{b}}},
		boolean2d.Apply(boolean2d.OpXor, boolean2d.Var(0, 2), boolean2d.Var(1, 2), 2),
		cfg, boolean2d.Options{}, diag.SourceLoc{},
	)
	if rec3 != nil && rec3.Fatal() {
		t.Fatalf("Evaluate fatal: %v", rec3)
	}
	if len(rings) != len(direct) {
		t.Fatalf("Lazy result has %d rings, direct Evaluate has %d", len(rings), len(direct))
	}
}

// buildTwoCubeUnion returns a tree with two unit cubes, one centered at
// the origin and one shifted +0.5 along X, combined by union — the 3D
// analog of TestFlattenUnionOverlappingSquares, exercising walkRoots,
// sliceLeaf, and the Lazy fold all at once.
func buildTwoCubeUnion(t *testing.T) *csgtree.Tree {
	t.Helper()
	b := csgtree.NewBuilder()
	a := b.Cube(mgl64.Vec3{1, 1, 1}, true)
	shifted := b.Transform(mgl64.Translate3D(0.5, 0, 0), b.Cube(mgl64.Vec3{1, 1, 1}, true))
	u := b.Boolean(csgtree.OpUnion, a, shifted)
	return b.Root(u)
}

func TestDriverAddLayerSlicesCubeUnion(t *testing.T) {
	tree := buildTwoCubeUnion(t)
	stack := layerdriver.NewLayerStack([]float64{0})
	d := layerdriver.NewDriver(epsilon.Default(), stack)

	if rec := d.AddLayer(tree, 0); rec != nil && rec.Fatal() {
		t.Fatalf("AddLayer fatal: %v", rec)
	}

	slot := stack.Slot(0)
	if !slot.Filled() {
		t.Fatal("slot 0 not filled after AddLayer")
	}
	if len(slot.Rings) != 1 {
		t.Fatalf("len(Rings) = %d, want 1 (two overlapping unit cubes union into one ring)", len(slot.Rings))
	}
	if slot.Mesh == nil || slot.Mesh.TriangleCount() == 0 {
		t.Fatal("slot mesh has no triangles")
	}
}

func TestDriverAddLayerOutOfRangeFails(t *testing.T) {
	tree := buildTwoCubeUnion(t)
	stack := layerdriver.NewLayerStack([]float64{0})
	d := layerdriver.NewDriver(epsilon.Default(), stack)

	rec := d.AddLayer(tree, 5)
	if rec == nil || !rec.Fatal() {
		t.Fatalf("AddLayer(5) = %v, want a fatal diagnostic", rec)
	}
}

func TestDriverDiffLayerRequiresAddLayerFirst(t *testing.T) {
	stack := layerdriver.NewLayerStack([]float64{0, 0.1})
	d := layerdriver.NewDriver(epsilon.Default(), stack)

	if rec := d.DiffLayer(0); rec == nil || !rec.Fatal() {
		t.Fatalf("DiffLayer before AddLayer = %v, want a fatal diagnostic", rec)
	}
}

func TestDriverDiffLayerComputesAboveAndBelow(t *testing.T) {
	b := csgtree.NewBuilder()
	cube := b.Cube(mgl64.Vec3{2, 2, 2}, true)
	tree := b.Root(cube)

	zs := []float64{-0.9, 0, 0.9}
	stack := layerdriver.NewLayerStack(zs)
	d := layerdriver.NewDriver(epsilon.Default(), stack)

	for i := range zs {
		if rec := d.AddLayer(tree, i); rec != nil && rec.Fatal() {
			t.Fatalf("AddLayer(%d) fatal: %v", i, rec)
		}
	}
	// A single prismatic cube's cross-section is identical at every
	// height strictly inside it, so the middle layer's diff against
	// its neighbours should be empty.
	if rec := d.DiffLayer(1); rec != nil && rec.Fatal() {
		t.Fatalf("DiffLayer(1) fatal: %v", rec)
	}
	mid := stack.Slot(1)
	if mid.DiffAbove == nil || mid.DiffBelow == nil {
		t.Fatal("DiffLayer did not populate DiffAbove/DiffBelow")
	}
	if mid.DiffAbove.TriangleCount() != 0 {
		t.Fatalf("DiffAbove has %d triangles, want 0 for a uniform prism", mid.DiffAbove.TriangleCount())
	}
	if mid.DiffBelow.TriangleCount() != 0 {
		t.Fatalf("DiffBelow has %d triangles, want 0 for a uniform prism", mid.DiffBelow.TriangleCount())
	}
}

func TestDriverRunFillsEverySlotConcurrently(t *testing.T) {
	tree := buildTwoCubeUnion(t)
	zs := make([]float64, 9)
	for i := range zs {
		zs[i] = -0.4 + float64(i)*0.1
	}
	stack := layerdriver.NewLayerStack(zs)
	d := layerdriver.NewDriver(epsilon.Default(), stack)

	if rec := d.Run(context.Background(), tree, 4); rec != nil && rec.Fatal() {
		t.Fatalf("Run fatal: %v", rec)
	}
	for i := 0; i < stack.Len(); i++ {
		if !stack.Slot(i).Filled() {
			t.Fatalf("slot %d not filled after Run", i)
		}
	}
}

func TestLinearExtrudeProducesPrismCrossSection(t *testing.T) {
	b := csgtree.NewBuilder()
	sq := b.Polygon2D([]mathkernel.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}})
	ext := b.LinearExtrude(2, 0, 1, 1, sq)
	tree := b.Root(ext)

	stack := layerdriver.NewLayerStack([]float64{1})
	d := layerdriver.NewDriver(epsilon.Default(), stack)
	if rec := d.AddLayer(tree, 0); rec != nil && rec.Fatal() {
		t.Fatalf("AddLayer fatal: %v", rec)
	}
	slot := stack.Slot(0)
	if len(slot.Rings) != 1 || len(slot.Rings[0]) != 4 {
		t.Fatalf("slot.Rings = %v, want one 4-vertex square", slot.Rings)
	}
}

func TestLinearExtrudeOutsideHeightIsEmpty(t *testing.T) {
	b := csgtree.NewBuilder()
	sq := b.Polygon2D([]mathkernel.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}})
	ext := b.LinearExtrude(2, 0, 1, 1, sq)
	tree := b.Root(ext)

	stack := layerdriver.NewLayerStack([]float64{5})
	d := layerdriver.NewDriver(epsilon.Default(), stack)
	if rec := d.AddLayer(tree, 0); rec != nil && rec.Fatal() {
		t.Fatalf("AddLayer fatal: %v", rec)
	}
	if len(stack.Slot(0).Rings) != 0 {
		t.Fatalf("slot.Rings = %v, want none outside the extrude's height", stack.Slot(0).Rings)
	}
}
