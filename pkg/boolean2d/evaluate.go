package boolean2d

import (
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// Evaluate combines operands under table (an arity-len(operands)
// TruthTable) and returns the resulting closed rings. This is
// Flatten's workhorse: slicer leaves feed in as single-ring operands,
// and intermediate Lazy combinations feed back in as multi-ring
// operands once MaxOperands would otherwise be exceeded.
func Evaluate(operands []Operand, table TruthTable, cfg epsilon.Config, opt Options, loc diag.SourceLoc) ([]Ring, *diag.Record) {
	if len(operands) == 0 {
		return nil, nil
	}
	if len(operands) > MaxOperands {
		return nil, &diag.Record{
			Primary: loc, Severity: diag.Fail,
			Message: "boolean2d.Evaluate: too many operands for a single TruthTable",
		}
	}

	segs := buildSegments(operands)
	if len(segs) == 0 {
		return nil, nil
	}
	arrangement := splitAtIntersections(segs, cfg)

	kept := make([]segment, 0, len(arrangement))
	for _, s := range arrangement {
		if s.A == s.B {
			continue
		}
		oriented, ok := classify(s, operands, table, cfg)
		if ok {
			kept = append(kept, oriented)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	kept = dedupeCoincidentEdges(kept, cfg)
	if len(kept) == 0 {
		return nil, nil
	}

	rings := assembleRings(kept, cfg, opt)
	if len(rings) == 0 {
		return nil, degenerate(loc, "boolean operation produced no closed ring from a non-empty arrangement")
	}
	return rings, nil
}

// classify decides whether arrangement edge s survives (its two sides
// disagree on table membership) and, if so, returns it oriented so the
// included side is to the right of travel — the convention
// assembleRings' face-tracing walk assumes, and the convention that
// makes the resulting rings clockwise (spec.md §8's orientation
// invariant).
func classify(s segment, operands []Operand, table TruthTable, cfg epsilon.Config) (segment, bool) {
	dir := s.B.Sub(s.A)
	length := dir.Len()
	if length < cfg.PT {
		return s, false
	}
	mid := s.A.Add(s.B).Scale(0.5)
	offset := length * 0.001
	if offset > 1e-4 {
		offset = 1e-4
	}
	right := mathkernel.Vec2{X: dir.Y, Y: -dir.X}.Unit(cfg).Scale(offset)
	left := right.Scale(-1)

	rightIn := table.Eval(membership(operands, mid.Add(right)))
	leftIn := table.Eval(membership(operands, mid.Add(left)))

	if rightIn == leftIn {
		return s, false
	}
	if rightIn {
		return s, true
	}
	return segment{A: s.B, B: s.A, Owner: s.Owner}, true
}
