package layerdriver

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/thinlayer/csg2d/pkg/boolean2d"
	"github.com/thinlayer/csg2d/pkg/csgtree"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/triangulate"
)

// Slot is one z-plane's reduced output: spec.md §3's "Layer stack"
// entry — a single reduced output polygon (rings + triangle mesh) plus
// the two auxiliary diff_above/diff_below polygons used for correct
// side-wall rendering, computed later by DiffLayer.
type Slot struct {
	Rings     []boolean2d.Ring
	Mesh      *triangulate.Mesh
	DiffAbove *triangulate.Mesh
	DiffBelow *triangulate.Mesh
	filled    bool
}

// Filled reports whether AddLayer has produced a result for this
// slot. A zero-value Slot is also a legitimate "this layer is empty"
// result (spec.md §7: a plane missing the solid is valid, not an
// error), so a separate flag is needed rather than a nil check.
func (s Slot) Filled() bool { return s.filled }

// LayerStack is the per-z-plane output vector: one slot per z index,
// mutated only by the worker that owns that index (spec.md §5's "the
// layer-slot vector is mutated only at an index owned by exactly one
// worker").
type LayerStack struct {
	ZPlanes []float64
	slots   []Slot
}

// NewLayerStack pre-sizes a slot per entry of zPlanes.
func NewLayerStack(zPlanes []float64) *LayerStack {
	return &LayerStack{ZPlanes: append([]float64(nil), zPlanes...), slots: make([]Slot, len(zPlanes))}
}

// Len returns the number of z-plane slots.
func (s *LayerStack) Len() int { return len(s.slots) }

// Slot returns a copy of the slot at index i.
func (s *LayerStack) Slot(i int) Slot { return s.slots[i] }

// Driver orchestrates the per-layer pipeline over a LayerStack —
// spec.md §4.5/§5/§6's LayerDriver and its "next index" worker model
// made concrete. No I/O occurs inside AddLayer/DiffLayer (§5); the
// only shared mutable state across workers is the atomic counter Run
// uses to hand out indices.
type Driver struct {
	Config  epsilon.Config
	Options boolean2d.Options
	Stack   *LayerStack

	next atomic.Int64
}

// NewDriver builds a Driver over stack, clamping cfg per epsilon's
// §6 "driver clamps them so SQR <= EQ <= PT" rule.
func NewDriver(cfg epsilon.Config, stack *LayerStack) *Driver {
	return &Driver{Config: cfg.Clamp(), Stack: stack}
}

// AddLayer runs the full Slicer -> BooleanEngine -> Triangulator chain
// for one z-plane and stores the result in the owning slot — spec.md
// §6's `add_layer(tree, z_index)`. Safe to call concurrently across
// distinct zIndex values; Run is what guarantees each index is claimed
// by exactly one worker.
func (d *Driver) AddLayer(tree *csgtree.Tree, zIndex int) *diag.Record {
	if zIndex < 0 || zIndex >= d.Stack.Len() {
		return &diag.Record{Severity: diag.Fail, Message: fmt.Sprintf("layerdriver: zIndex %d out of range", zIndex)}
	}
	z := d.Stack.ZPlanes[zIndex]
	loc := rootLoc(tree)

	lazy, rec := walkRoots(tree, z, d.Config, d.Options)
	if rec != nil && rec.Fatal() {
		return rec
	}
	rings, rec2 := lazy.Resolve(d.Config, d.Options, loc)
	if rec2 != nil && rec2.Fatal() {
		return rec2
	}
	mesh, rec3 := triangulateRings(rings, d.Config, loc)
	if rec3 != nil && rec3.Fatal() {
		return rec3
	}

	d.Stack.slots[zIndex] = Slot{Rings: rings, Mesh: mesh, filled: true}

	switch {
	case rec3 != nil:
		return rec3
	case rec2 != nil:
		return rec2
	default:
		return rec
	}
}

// DiffLayer computes diff_above (this layer minus the next) and
// diff_below (this layer minus the previous) for zIndex — spec.md §6's
// `diff_layer(tree, z_index)`. Must run after AddLayer has populated
// every neighbouring slot it reads; a missing neighbour (the top or
// bottom of the stack) is treated as empty, per §7's "empty-solid is a
// valid result".
func (d *Driver) DiffLayer(zIndex int) *diag.Record {
	if zIndex < 0 || zIndex >= d.Stack.Len() {
		return &diag.Record{Severity: diag.Fail, Message: fmt.Sprintf("layerdriver: zIndex %d out of range", zIndex)}
	}
	cur := d.Stack.slots[zIndex]
	if !cur.filled {
		return &diag.Record{Severity: diag.Fail, Message: fmt.Sprintf("layerdriver: DiffLayer called before AddLayer for index %d", zIndex)}
	}

	var aboveRings, belowRings []boolean2d.Ring
	if zIndex+1 < d.Stack.Len() && d.Stack.slots[zIndex+1].filled {
		aboveRings = d.Stack.slots[zIndex+1].Rings
	}
	if zIndex-1 >= 0 && d.Stack.slots[zIndex-1].filled {
		belowRings = d.Stack.slots[zIndex-1].Rings
	}

	loc := diag.SourceLoc{}

	diffAbove, rec1 := diffRings(cur.Rings, aboveRings, d.Config, d.Options, loc)
	if rec1 != nil && rec1.Fatal() {
		return rec1
	}
	diffBelow, rec2 := diffRings(cur.Rings, belowRings, d.Config, d.Options, loc)
	if rec2 != nil && rec2.Fatal() {
		return rec2
	}

	meshAbove, rec3 := triangulateRings(diffAbove, d.Config, loc)
	if rec3 != nil && rec3.Fatal() {
		return rec3
	}
	meshBelow, rec4 := triangulateRings(diffBelow, d.Config, loc)
	if rec4 != nil && rec4.Fatal() {
		return rec4
	}

	cur.DiffAbove, cur.DiffBelow = meshAbove, meshBelow
	d.Stack.slots[zIndex] = cur
	return nil
}

// diffRings computes a-minus-b via a single boolean2d.Evaluate call.
// An empty b is the identity (per §7, not a degeneracy to flag).
func diffRings(a, b []boolean2d.Ring, cfg epsilon.Config, opt boolean2d.Options, loc diag.SourceLoc) ([]boolean2d.Ring, *diag.Record) {
	if len(a) == 0 {
		return nil, nil
	}
	if len(b) == 0 {
		return a, nil
	}
	operands := []boolean2d.Operand{{Rings: a}, {Rings: b}}
	table := boolean2d.Apply(boolean2d.OpDifference, boolean2d.Var(0, 2), boolean2d.Var(1, 2), 2)
	return boolean2d.Evaluate(operands, table, cfg, opt, loc)
}

// Run launches `workers` goroutines that each claim z-plane indices
// via an atomic fetch-add and run AddLayer for each — spec.md §5's
// "any number of worker threads may claim layer indices...the next_i
// counter is the single synchronization point (an atomic fetch-add)"
// made concrete. Workers keep draining remaining indices even after a
// fatal diagnostic on one layer, since a single bad layer must not
// stall the others (§5: "a stuck or mis-input layer either aborts...
// or completes"); Run reports the first fatal diagnostic encountered,
// if any, once every index has been claimed.
func (d *Driver) Run(ctx context.Context, tree *csgtree.Tree, workers int) *diag.Record {
	if workers < 1 {
		workers = 1
	}
	d.next.Store(0)
	total := int64(d.Stack.Len())

	var firstFatal atomic.Pointer[diag.Record]
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				i := d.next.Add(1) - 1
				if i >= total {
					return
				}
				if rec := d.AddLayer(tree, int(i)); rec != nil && rec.Fatal() {
					firstFatal.CompareAndSwap(nil, rec)
				}
			}
		}()
	}
	wg.Wait()
	return firstFatal.Load()
}

func rootLoc(tree *csgtree.Tree) diag.SourceLoc {
	for _, id := range tree.Roots {
		if n := tree.Get(id); n != nil {
			return n.Source
		}
	}
	return diag.SourceLoc{}
}
