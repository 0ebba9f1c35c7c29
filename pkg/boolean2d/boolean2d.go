// Package boolean2d performs k-ary boolean combination of 2D polygons:
// the second half of the "cut to 2D first, then boolean" pipeline
// spec.md §1 describes as this system's whole reason to exist. Inputs
// and outputs are closed polygon rings in the plane; this package never
// touches Z.
//
// The design is grounded on hob3l's csg2-bool.c (original_source/src),
// which represents each polygon edge as a pair of buddy Events carrying
// an owner bitmask (which operand contributed the edge) and a below
// bitmask (which operands cover the region just below the edge at the
// sweep line), combines overlapping collinear edges by XORing their
// owner masks, and assembles the surviving edges into closed rings via
// a point-keyed ring dictionary with atan2-sorted pairing at
// degree-four-or-higher vertices.
//
// This port keeps that vocabulary (Event, owner/below mask, ring
// dictionary, atan2 pairing) but finds edge crossings via pairwise
// segment intersection rather than hob3l's incremental balanced-BST
// sweep status, and classifies each arrangement edge's membership by
// point-in-ring testing rather than carrying owner masks through the
// sweep itself — see DESIGN.md for why the incremental sweep state was
// not carried over verbatim. A fully-coincident duplicate boundary (the
// same leaf reached twice by one operation) is cancelled explicitly by
// chain.go's dedupeCoincidentEdges before ring assembly, standing in
// for the owner-mask XOR hob3l's incremental sweep performs inline.
package boolean2d

import (
	"github.com/thinlayer/csg2d/pkg/diag"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// Ring is a single closed polygon boundary (no implicit closing edge;
// the last point connects back to the first).
type Ring []mathkernel.Vec2

// Operand is one boolean operand: a region described by one or more
// rings combined under the even-odd fill rule (a point is inside the
// operand iff it is enclosed by an odd number of its Rings) — the
// standard "outer boundary plus holes" representation.
type Operand struct {
	Rings []Ring
}

// Op names a two-operand boolean combination, matching csgtree.BoolOp.
type Op int

const (
	OpUnion Op = iota
	OpDifference
	OpIntersection
	OpXor
)

// MaxOperands bounds how many operands a single TruthTable can address
// (spec.md §4.6's MAX_LAZY): a table has 2^MaxOperands bits, and a
// TruthTable is a single uint64, so 6 is the largest arity that still
// fits without a multi-word bitmap. Callers accumulating more operands
// than this must eagerly Evaluate and restart from the result as a
// single new operand.
const MaxOperands = 6

// Options tunes ring assembly.
type Options struct {
	// KeepCollinear keeps vertices that lie exactly on the segment
	// between their neighbors instead of filtering them out, unless
	// the vertex has degree > 2 in the arrangement (a true junction,
	// which must always be kept regardless of this flag).
	KeepCollinear bool
}

// degenerate reports a geometric-degeneracy diagnostic: these are
// Ignore-severity (diag.Ignore) and never block producing an (possibly
// empty) result.
func degenerate(loc diag.SourceLoc, msg string) *diag.Record {
	return &diag.Record{Primary: loc, Severity: diag.Ignore, Message: msg}
}
