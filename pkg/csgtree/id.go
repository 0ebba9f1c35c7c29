package csgtree

import (
	"fmt"
	"hash/fnv"
)

// NodeID is a content-addressed identifier for a tree node: two nodes
// built from the same kind, data, and children always get the same ID,
// which lets a caller memoize Flatten results across re-evaluations of
// an unchanged subtree (the teacher's graph.generateNodeID sketched
// this but only formatted content with fmt.Sprintf; a real content
// address needs an actual hash so unrelated nodes don't collide just
// because their %v representations happen to share a prefix).
type NodeID string

// ContentHash is the raw hash backing a NodeID.
type ContentHash uint64

// newNodeID hashes prefix and a %v-formatted dump of content into a
// NodeID. content should be everything that determines the node's
// meaning: its Kind, its Data, and its Children, in that order.
func newNodeID(prefix string, content ...interface{}) NodeID {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%v", prefix, content)
	return NodeID(fmt.Sprintf("%s_%016x", prefix, h.Sum64()))
}

func hashOf(id NodeID) ContentHash {
	h := fnv.New64a()
	fmt.Fprint(h, id)
	return ContentHash(h.Sum64())
}

// Short returns a short, human-legible form of the ID for logging —
// its first 16 characters: the prefix, the underscore, and as many
// leading hex digits of the hash as fit.
func (id NodeID) Short() string {
	s := string(id)
	if len(s) <= 16 {
		return s
	}
	return s[:16]
}
