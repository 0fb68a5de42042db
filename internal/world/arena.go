package world

import "fmt"

// Index is a generational handle into an Arena. A handle outlives the value it
// named: once the value is removed, lookups with the handle fail even if the
// slot is reused. The zero Index never refers to a value.
type Index struct {
	slot       uint32
	generation uint32
}

func (i Index) String() string {
	return fmt.Sprintf("%d@%d", i.slot, i.generation)
}

type arenaEntry[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena stores values in reusable slots addressed by Index.
type Arena[T any] struct {
	entries []arenaEntry[T]
	free    []uint32
	count   int
}

func (a *Arena[T]) Insert(v T) Index {
	var slot uint32
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		slot = uint32(len(a.entries))
		a.entries = append(a.entries, arenaEntry[T]{})
	}
	e := &a.entries[slot]
	e.generation++
	e.value = v
	e.occupied = true
	a.count++
	return Index{slot: slot, generation: e.generation}
}

func (a *Arena[T]) Get(idx Index) (T, bool) {
	if e := a.entry(idx); e != nil {
		return e.value, true
	}
	var zero T
	return zero, false
}

// MustGet panics on a stale or unknown index.
func (a *Arena[T]) MustGet(idx Index) T {
	v, ok := a.Get(idx)
	if !ok {
		panic(fmt.Sprintf("arena index %v is not live", idx))
	}
	return v
}

func (a *Arena[T]) Remove(idx Index) (T, bool) {
	var zero T
	e := a.entry(idx)
	if e == nil {
		return zero, false
	}
	v := e.value
	e.value = zero
	e.occupied = false
	a.free = append(a.free, idx.slot)
	a.count--
	return v, true
}

func (a *Arena[T]) Len() int {
	return a.count
}

// Each visits live entries in slot order until fn returns false. fn must not
// insert or remove.
func (a *Arena[T]) Each(fn func(Index, T) bool) {
	for i := range a.entries {
		e := &a.entries[i]
		if !e.occupied {
			continue
		}
		if !fn(Index{slot: uint32(i), generation: e.generation}, e.value) {
			return
		}
	}
}

// Indices returns the live handles in slot order.
func (a *Arena[T]) Indices() []Index {
	out := make([]Index, 0, a.count)
	a.Each(func(idx Index, _ T) bool {
		out = append(out, idx)
		return true
	})
	return out
}

func (a *Arena[T]) entry(idx Index) *arenaEntry[T] {
	if int(idx.slot) >= len(a.entries) {
		return nil
	}
	e := &a.entries[idx.slot]
	if !e.occupied || e.generation != idx.generation {
		return nil
	}
	return e
}
