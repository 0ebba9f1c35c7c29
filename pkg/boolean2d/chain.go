package boolean2d

import (
	"fmt"
	"math"

	"github.com/thinlayer/csg2d/pkg/epsilon"
	"github.com/thinlayer/csg2d/pkg/mathkernel"
)

// dedupeCoincidentEdges cancels or collapses classified edges that land
// on exactly the same endpoints — the case a self-overlapping operand
// set produces: a leaf appearing twice among an operation's operands
// (the same cube sliced into two coincident boundaries, or any CSG leaf
// reached twice by a union/intersection) makes buildSegments emit one
// directed edge per operand copy, and splitAtIntersections leaves both
// copies whole because intersectSegments treats perfectly collinear
// segments as "no interior intersection" (arrangement.go's parallel
// case). classify then keeps both copies, identically oriented, since
// membership testing doesn't distinguish which operand copy an edge
// came from. Left uncancelled, assembleRings's walk traces the
// boundary twice, doubling the reported area.
//
// Two kept edges sharing the same endpoint pair in the *same* direction
// describe the same boundary found redundantly and collapse to a
// single copy; two sharing it in *opposite* directions are the
// "collinear and opposite" pair spec.md §4.3's chain assembly says
// annihilates (the true cancellation case, e.g. a coincident edge
// shared by two adjacent operands where each operand's own winding
// passes it in the other's reverse sense) and both are dropped. This is
// the post-classification equivalent of spec.md's owner-mask XOR: the
// owner mask is never carried this port's arrangement (see
// arrangement.go's segment.Owner doc), so the cancellation happens here
// instead, against the already-materialized directed edges.
func dedupeCoincidentEdges(kept []segment, cfg epsilon.Config) []segment {
	type key struct{ a, b string }
	counts := make(map[key]int)
	reps := make(map[key]segment)
	var order []key
	for _, s := range kept {
		k := key{keyOf(cfg, s.A), keyOf(cfg, s.B)}
		if counts[k] == 0 {
			order = append(order, k)
			reps[k] = s
		}
		counts[k]++
	}

	var out []segment
	done := make(map[key]bool)
	for _, k := range order {
		if done[k] {
			continue
		}
		rk := key{k.b, k.a}
		done[k] = true
		done[rk] = true
		net := counts[k] - counts[rk]
		switch {
		case net > 0:
			out = append(out, reps[k])
		case net < 0:
			out = append(out, reps[rk])
		}
	}
	return out
}

// assembleRings walks the kept, consistently-oriented arrangement
// edges (interior always to the right of travel, per evaluate.go) into
// closed rings. This is the ring-dictionary-plus-atan2-pairing chain
// assembly spec.md §4.3 describes: vertices are grouped by position
// (the "ring dictionary"), and wherever more than one edge leaves a
// vertex, the next edge is the one reached by the smallest clockwise
// turn from the incoming direction — the textbook rule for tracing the
// boundary of the region lying to the right of travel in a planar
// arrangement.
func assembleRings(kept []segment, cfg epsilon.Config, opt Options) []Ring {
	outgoing := make(map[string][]int)
	for i, s := range kept {
		k := keyOf(cfg, s.A)
		outgoing[k] = append(outgoing[k], i)
	}

	visited := make([]bool, len(kept))
	var rings []Ring

	for start := range kept {
		if visited[start] {
			continue
		}
		var ring []mathkernel.Vec2
		cur := start
		for {
			visited[cur] = true
			ring = append(ring, kept[cur].A)

			next := pickNext(kept, cur, outgoing[keyOf(cfg, kept[cur].B)], visited, cfg)
			if next < 0 {
				break
			}
			cur = next
			if cur == start {
				break
			}
		}
		if len(ring) >= 3 {
			rings = append(rings, filterCollinear(ring, cfg, opt.KeepCollinear, outgoing))
		}
	}
	return rings
}

// pickNext chooses, among candidates (segment indices starting at
// kept[from].B), the one reached by the smallest clockwise turn from
// kept[from]'s direction. Already-visited candidates, the ring's own
// start edge included, are always skipped, so -1 (no candidate left)
// is what ends a ring.
func pickNext(kept []segment, from int, candidates []int, visited []bool, cfg epsilon.Config) int {
	inDir := kept[from].B.Sub(kept[from].A)
	inAngle := math.Atan2(inDir.Y, inDir.X)

	best := -1
	bestTurn := math.Inf(1)
	for _, c := range candidates {
		if visited[c] {
			continue
		}
		outDir := kept[c].B.Sub(kept[c].A)
		outAngle := math.Atan2(outDir.Y, outDir.X)
		turn := math.Mod(inAngle-outAngle+3*math.Pi, 2*math.Pi) - math.Pi
		if turn < 0 {
			turn += 2 * math.Pi
		}
		if turn < bestTurn {
			bestTurn = turn
			best = c
		}
	}
	return best
}

// keyOf returns a stable dictionary key for p on the epsilon grid.
func keyOf(cfg epsilon.Config, p mathkernel.Vec2) string {
	q := mathkernel.QuantizeVec2(cfg, p)
	return fmt.Sprintf("%.9f,%.9f", q.X, q.Y)
}

// filterCollinear drops vertices that lie on the straight line between
// their neighbors, unless keep is true or the vertex is a junction
// (more than one outgoing arrangement edge, i.e. degree > 2).
func filterCollinear(ring []mathkernel.Vec2, cfg epsilon.Config, keep bool, outgoing map[string][]int) Ring {
	if keep || len(ring) <= 3 {
		return Ring(ring)
	}
	var out []mathkernel.Vec2
	n := len(ring)
	for i := 0; i < n; i++ {
		prev := ring[(i-1+n)%n]
		cur := ring[i]
		next := ring[(i+1)%n]
		cross := cur.Sub(prev).Cross(next.Sub(cur))
		if !mathkernel.EqScalar(cfg, cross, 0) || len(outgoing[keyOf(cfg, cur)]) > 1 {
			out = append(out, cur)
		}
	}
	if len(out) < 3 {
		return Ring(ring)
	}
	return Ring(out)
}
