// Package layerdriver owns the per-layer pipeline: walking one
// csgtree.Tree at a given Z, slicing its 3D leaves, combining the
// results under boolean2d's k-ary TruthTable without ever eagerly
// resolving a ring set until it is actually needed, and driving that
// work across a worker pool — spec.md §4.5/§5/§6 made concrete.
package layerdriver

import (
	"github.com/thinlayer/csg2d/pkg/boolean2d"
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
)

// Lazy is a deferred polygon combination: a list of source operands and
// the TruthTable that combines them, spec.md §4.6/§6's "Lazy polygon
// structure with Repeat/Spread/Combine". No ring geometry is computed
// until Resolve is called, or until Combine must collapse a side to
// stay within boolean2d.MaxOperands.
type Lazy struct {
	operands []boolean2d.Operand
	table    boolean2d.TruthTable
	arity    int
}

// Repeat returns the constant Lazy polygon (every point is value,
// everywhere) — the identity Combine starts folding operands into.
func Repeat(value bool) *Lazy {
	return &Lazy{table: boolean2d.Repeat(value, 0), arity: 0}
}

// Spread wraps a single concrete ring set as a one-operand Lazy
// polygon — the leaf case, fed by pkg/slicer or pkg/triangulate's
// input, or by a prior Resolve.
func Spread(rings []boolean2d.Ring) *Lazy {
	return &Lazy{
		operands: []boolean2d.Operand{{Rings: rings}},
		table:    boolean2d.Var(0, 1),
		arity:    1,
	}
}

// Resolve eagerly evaluates the Lazy polygon into concrete rings.
func (l *Lazy) Resolve(cfg epsilon.Config, opt boolean2d.Options, loc diag.SourceLoc) ([]boolean2d.Ring, *diag.Record) {
	if l.arity == 0 {
		if l.table.Eval(0) {
			return nil, &diag.Record{
				Primary: loc, Severity: diag.Warn,
				Message: "layerdriver: an unbounded full-plane result cannot be represented as closed rings",
			}
		}
		return nil, nil
	}
	return boolean2d.Evaluate(l.operands, l.table, cfg, opt, loc)
}

// collapse eagerly resolves l into a fresh arity-1 Lazy wrapping the
// concrete result, the "MAX_LAZY reduction" spec.md §4.6 describes:
// used when folding in one more operand would exceed
// boolean2d.MaxOperands.
func (l *Lazy) collapse(cfg epsilon.Config, opt boolean2d.Options, loc diag.SourceLoc) (*Lazy, *diag.Record) {
	if l.arity <= 1 {
		return l, nil
	}
	rings, rec := l.Resolve(cfg, opt, loc)
	if rec != nil && rec.Fatal() {
		return l, rec
	}
	return Spread(rings), rec
}

// Combine folds other into l under op, returning a new Lazy. When the
// combined arity would exceed boolean2d.MaxOperands, the larger side
// (and, if still too big, both sides) is eagerly collapsed first.
func (l *Lazy) Combine(op boolean2d.Op, other *Lazy, cfg epsilon.Config, opt boolean2d.Options, loc diag.SourceLoc) (*Lazy, *diag.Record) {
	a, b := l, other
	var rec *diag.Record

	if a.arity+b.arity > boolean2d.MaxOperands {
		if a.arity >= b.arity {
			a, rec = a.collapse(cfg, opt, loc)
		} else {
			b, rec = b.collapse(cfg, opt, loc)
		}
		if rec != nil && rec.Fatal() {
			return nil, rec
		}
	}
	if a.arity+b.arity > boolean2d.MaxOperands {
		var rec2 *diag.Record
		a, rec2 = a.collapse(cfg, opt, loc)
		if rec2 != nil && rec2.Fatal() {
			return nil, rec2
		}
		b, rec2 = b.collapse(cfg, opt, loc)
		if rec2 != nil && rec2.Fatal() {
			return nil, rec2
		}
	}

	total := a.arity + b.arity
	operands := make([]boolean2d.Operand, 0, total)
	operands = append(operands, a.operands...)
	operands = append(operands, b.operands...)

	var table boolean2d.TruthTable
	switch {
	case a.arity == 0 && b.arity == 0:
		table = boolean2d.Apply(op, a.table, b.table, 0)
	case a.arity == 0:
		table = widenConstant(a.table.Eval(0), op, b.table, b.arity, true)
	case b.arity == 0:
		table = widenConstant(b.table.Eval(0), op, a.table, a.arity, false)
	default:
		table = boolean2d.Apply(op, widenLow(a.table, a.arity, total), widenHigh(b.table, b.arity, a.arity, total), total)
	}

	return &Lazy{operands: operands, table: table, arity: total}, rec
}

// widenConstant combines a zero-arity constant operand (const op t)
// with a table t of the given arity, without changing t's arity — used
// when one side of a Combine is Repeat(true/false) (e.g. the identity
// element seeding a fold over several children).
func widenConstant(constVal bool, op boolean2d.Op, t boolean2d.TruthTable, bits int, constIsLeft bool) boolean2d.TruthTable {
	a, b := boolean2d.Repeat(constVal, bits), t
	if !constIsLeft {
		a, b = t, boolean2d.Repeat(constVal, bits)
	}
	return boolean2d.Apply(op, a, b, bits)
}

// widenLow re-expresses a table of arity lowBits as a table of arity
// totalBits whose value depends only on the low lowBits bits of the
// membership vector, ignoring the new high bits — the "this operand's
// variables are unaffected by folding in more operands" identity.
func widenLow(t boolean2d.TruthTable, lowBits, totalBits int) boolean2d.TruthTable {
	var out boolean2d.TruthTable
	size := 1 << uint(totalBits)
	mask := (1 << uint(lowBits)) - 1
	for m := 0; m < size; m++ {
		if t.Eval(m & mask) {
			out |= boolean2d.TruthTable(1) << uint(m)
		}
	}
	return out
}

// widenHigh re-expresses a table of arity highBits as a table of arity
// totalBits whose value depends only on bits [shift, shift+highBits) of
// the membership vector — the same widening as widenLow, but for a
// table whose variables are shifted up by shift positions (used for the
// right-hand operand of a Combine, whose operand indices come after the
// left-hand side's).
func widenHigh(t boolean2d.TruthTable, highBits, shift, totalBits int) boolean2d.TruthTable {
	var out boolean2d.TruthTable
	size := 1 << uint(totalBits)
	mask := (1 << uint(highBits)) - 1
	for m := 0; m < size; m++ {
		sub := (m >> uint(shift)) & mask
		if t.Eval(sub) {
			out |= boolean2d.TruthTable(1) << uint(m)
		}
	}
	return out
}
