// Package topology builds the half-edge representation of a polyhedron
// face list and checks it for 2-manifold soundness before pkg/slicer
// ever sees it (spec.md §3 "half-edge topology", §9 "Edge-finding").
// An unsound polyhedron — a dangling edge with no reverse buddy, or an
// edge shared by more than two faces — cannot be converted into the
// edge representation at all, so that check happens here, once, up
// front, rather than being rediscovered by every later pass.
//
// The construction is the Go-shaped twin of hob3l's poly_make_edges:
// collect one directed edge per (face, consecutive-point-pair), sort by
// (min(src,dst), max(src,dst)) so an edge and its reverse buddy land
// next to each other, then walk the sorted list pairing them up.
package topology

import (
	"fmt"
	"sort"

	"github.com/thinlayer/csg2d/pkg/diag"
)

// Edge is one directed half-edge of a face loop. Fore is the face that
// owns this edge in its stated (src->dst) direction; Back is the face
// that owns the reverse edge (dst->src) — the two faces sharing this
// edge of the 2-manifold.
type Edge struct {
	Src, Dst int
	Fore     int // face index owning src->dst
	Back     int // face index owning dst->src
}

// Mesh is the half-edge-augmented form of a polyhedron: Faces is the
// original CCW loop list (as in csgtree.PolyhedronData), Edges is the
// deduplicated undirected edge set, FaceEdges[f][j] indexes into Edges
// for the edge leaving Faces[f][j], and Buddy[f][j] gives the (face,
// slot) pair on the opposite side of that same edge — the Go analog of
// hob3l's edge_buddy_face, precomputed so pkg/slicer's face walk never
// has to search for it.
type Mesh struct {
	PointCount int
	Faces      [][]int
	Edges      []Edge
	FaceEdges  [][]int
	Buddy      [][][2]int
}

type directedEdge struct {
	src, dst int
	face     int
	slot     int
}

// Build constructs the half-edge Mesh for a polyhedron with the given
// point count and CCW face loops. loc is attributed to any topology
// error so the caller can report it with source context (spec.md §7,
// "Topology errors: fatal, with location").
func Build(pointCount int, faces [][]int, loc diag.SourceLoc) (*Mesh, *diag.Record) {
	if len(faces) < 4 {
		return nil, &diag.Record{
			Primary: loc, Severity: diag.Fail,
			Message: fmt.Sprintf("polyhedron has %d faces, need at least 4 for a closed solid", len(faces)),
		}
	}

	total := 0
	for _, f := range faces {
		total += len(f)
	}
	if total%2 != 0 {
		return nil, &diag.Record{
			Primary: loc, Severity: diag.Fail,
			Message: "odd number of face-vertex slots in polyhedron: some edge has no possible buddy",
		}
	}

	directed := make([]directedEdge, 0, total)
	for fi, f := range faces {
		n := len(f)
		for j := 0; j < n; j++ {
			src, dst := f[j], f[(j+1)%n]
			if src < 0 || src >= pointCount || dst < 0 || dst >= pointCount {
				return nil, &diag.Record{
					Primary: loc, Severity: diag.Fail,
					Message: fmt.Sprintf("face %d references out-of-range point index", fi),
				}
			}
			if src == dst {
				return nil, &diag.Record{
					Primary: loc, Severity: diag.Fail,
					Message: fmt.Sprintf("face %d has a degenerate edge (repeated vertex)", fi),
				}
			}
			directed = append(directed, directedEdge{src: src, dst: dst, face: fi, slot: j})
		}
	}

	key := func(e directedEdge) (int, int) {
		if e.src < e.dst {
			return e.src, e.dst
		}
		return e.dst, e.src
	}
	sort.Slice(directed, func(i, j int) bool {
		ai, aj := key(directed[i])
		bi, bj := key(directed[j])
		if ai != bi {
			return ai < bi
		}
		if aj != bj {
			return aj < bj
		}
		return directed[i].src < directed[j].src
	})

	faceEdges := make([][]int, len(faces))
	for fi, f := range faces {
		faceEdges[fi] = make([]int, len(f))
	}

	var edges []Edge
	i := 0
	for i < len(directed) {
		a := directed[i]
		if i+1 >= len(directed) {
			return nil, &diag.Record{
				Primary: loc, Severity: diag.Fail,
				Message: fmt.Sprintf("edge (%d,%d) on face %d has no adjacent reverse edge", a.src, a.dst, a.face),
			}
		}
		b := directed[i+1]
		ak1, ak2 := key(a)
		bk1, bk2 := key(b)
		if ak1 != bk1 || ak2 != bk2 {
			return nil, &diag.Record{
				Primary: loc, Severity: diag.Fail,
				Message: fmt.Sprintf("edge (%d,%d) on face %d has no adjacent reverse edge", a.src, a.dst, a.face),
			}
		}
		if i+2 < len(directed) {
			c := directed[i+2]
			ck1, ck2 := key(c)
			if ck1 == ak1 && ck2 == ak2 {
				return nil, &diag.Record{
					Primary: loc, Severity: diag.Fail,
					Message: fmt.Sprintf("edge (%d,%d) occurs on more than two faces", a.src, a.dst),
				}
			}
		}
		if a.src == b.src {
			return nil, &diag.Record{
				Primary: loc, Severity: diag.Fail,
				Message: fmt.Sprintf("edge (%d,%d) occurs twice in the same direction", a.src, a.dst),
			}
		}

		fore, back := a, b
		if fore.src > fore.dst {
			fore, back = back, fore
		}
		eIdx := len(edges)
		edges = append(edges, Edge{Src: fore.src, Dst: fore.dst, Fore: fore.face, Back: back.face})
		faceEdges[fore.face][fore.slot] = eIdx
		faceEdges[back.face][back.slot] = eIdx

		i += 2
	}

	buddy := make([][][2]int, len(faces))
	for fi, f := range faces {
		buddy[fi] = make([][2]int, len(f))
		for slot := range f {
			eIdx := faceEdges[fi][slot]
			e := edges[eIdx]
			if e.Fore == fi {
				buddy[fi][slot] = findSlot(faceEdges, e.Back, eIdx)
			} else {
				buddy[fi][slot] = findSlot(faceEdges, e.Fore, eIdx)
			}
		}
	}

	return &Mesh{PointCount: pointCount, Faces: faces, Edges: edges, FaceEdges: faceEdges, Buddy: buddy}, nil
}

// findSlot returns the (face, slot) in faceEdges[face] whose entry is eIdx.
func findSlot(faceEdges [][]int, face, eIdx int) [2]int {
	for slot, e := range faceEdges[face] {
		if e == eIdx {
			return [2]int{face, slot}
		}
	}
	return [2]int{face, -1}
}

// EdgeCount returns the number of undirected edges in the mesh.
func (m *Mesh) EdgeCount() int {
	return len(m.Edges)
}

// EulerCharacteristic returns V - E + F, which is 2 for a genus-0
// closed 2-manifold — a cheap sanity check a caller can run after
// Build succeeds structurally but before trusting the mesh for slicing.
func (m *Mesh) EulerCharacteristic() int {
	return m.PointCount - len(m.Edges) + len(m.Faces)
}
