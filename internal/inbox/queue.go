// Package inbox carries finished work from worker goroutines back to the
// goroutine that owns the terrain.
package inbox

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Enqueue once the receiving side has shut down.
var ErrClosed = errors.New("inbox closed")

// Queue is an unbounded multi-producer queue drained in batches by a single
// consumer.
type Queue[T any] struct {
	mu      sync.Mutex
	pending []T
	closed  bool
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

func (q *Queue[T]) Enqueue(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.pending = append(q.pending, item)
	return nil
}

// Drain removes up to max items in arrival order. max <= 0 drains everything.
func (q *Queue[T]) Drain(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	if max <= 0 || max >= len(q.pending) {
		batch := q.pending
		q.pending = nil
		return batch
	}
	batch := append([]T(nil), q.pending[:max]...)
	var zero T
	for i := 0; i < max; i++ {
		q.pending[i] = zero
	}
	q.pending = q.pending[max:]
	return batch
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close rejects further items and discards the ones not yet drained.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.pending = nil
}
