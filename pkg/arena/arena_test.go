package arena_test

import (
	"testing"

	"github.com/thinlayer/csg2d/pkg/arena"
)

func TestPoolNewAndLen(t *testing.T) {
	p := arena.NewPool[int](4)
	a := p.New()
	*a = 42
	b := p.New()
	*b = 7

	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	if *a != 42 || *b != 7 {
		t.Fatalf("pointers did not retain values: a=%d b=%d", *a, *b)
	}
}

func TestPoolReset(t *testing.T) {
	p := arena.NewPool[int](0)
	p.New()
	p.New()
	p.Reset()
	if p.Len() != 0 {
		t.Fatalf("Len() after Reset = %d, want 0", p.Len())
	}
}

func TestPairReset(t *testing.T) {
	pair := arena.NewPair()
	pair.Transient.New()
	if pair.Transient.Len() != 1 {
		t.Fatalf("expected 1 allocation before reset")
	}
	pair.Reset()
	if pair.Transient.Len() != 0 {
		t.Fatalf("expected 0 allocations after reset")
	}
}
