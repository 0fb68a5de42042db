package world

import "testing"

func TestArenaReusesSlotsWithNewGeneration(t *testing.T) {
	var arena Arena[string]
	first := arena.Insert("a")
	second := arena.Insert("b")

	if v, ok := arena.Get(first); !ok || v != "a" {
		t.Fatalf("expected a, got %q ok=%v", v, ok)
	}
	if v, ok := arena.Remove(first); !ok || v != "a" {
		t.Fatalf("expected to remove a, got %q ok=%v", v, ok)
	}
	if _, ok := arena.Get(first); ok {
		t.Fatalf("removed index must not resolve")
	}

	third := arena.Insert("c")
	if third.slot != first.slot {
		t.Fatalf("expected slot reuse, got %v after %v", third, first)
	}
	if _, ok := arena.Get(first); ok {
		t.Fatalf("stale index resolved after slot reuse")
	}
	if v := arena.MustGet(third); v != "c" {
		t.Fatalf("expected c, got %q", v)
	}
	if arena.Len() != 2 {
		t.Fatalf("expected 2 live entries, got %d", arena.Len())
	}
	if got := arena.Indices(); len(got) != 2 || got[0] != third || got[1] != second {
		t.Fatalf("unexpected live indices %v", got)
	}
	if _, ok := arena.Get(Index{}); ok {
		t.Fatalf("zero index must never resolve")
	}
}

func TestArenaMustGetPanicsOnStaleIndex(t *testing.T) {
	var arena Arena[int]
	idx := arena.Insert(1)
	arena.Remove(idx)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	arena.MustGet(idx)
}
