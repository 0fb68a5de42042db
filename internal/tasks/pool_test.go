package tasks

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPoolRunsHighestPriorityFirst(t *testing.T) {
	pool := NewPool(1, nil)
	t.Cleanup(func() { pool.Close() })

	gate := make(chan struct{})
	started := make(chan struct{})
	pool.Submit(Priority{}, func() {
		close(started)
		<-gate
	})
	<-started

	var mu sync.Mutex
	var order []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}
	pool.Submit(Priority{Class: 1, Within: 9}, record("far"))
	pool.Submit(Priority{Class: 1, Within: 1}, record("near"))
	pool.Submit(Priority{Class: 0, Within: 50}, record("urgent"))
	pool.Submit(Priority{Class: 1, Within: 1}, record("near-second"))

	close(gate)
	pool.BlockUntilFinished()

	want := []string{"urgent", "near", "near-second", "far"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("unexpected execution order (-want +got):\n%s", diff)
	}
}

func TestCancelIfPending(t *testing.T) {
	pool := NewPool(1, nil)
	t.Cleanup(func() { pool.Close() })

	gate := make(chan struct{})
	started := make(chan struct{})
	running := pool.Submit(Priority{}, func() {
		close(started)
		<-gate
	})
	<-started

	ran := false
	queued := pool.Submit(Priority{Class: 1}, func() { ran = true })
	if pool.Pending() != 1 {
		t.Fatalf("expected 1 pending task, got %d", pool.Pending())
	}
	if !pool.CancelIfPending(queued) {
		t.Fatalf("expected queued task to be cancelled")
	}
	if pool.CancelIfPending(queued) {
		t.Fatalf("expected second cancel to report false")
	}
	if pool.CancelIfPending(running) {
		t.Fatalf("expected running task not to be cancellable")
	}
	if pool.ActiveWorkers() != 1 {
		t.Fatalf("expected 1 active worker, got %d", pool.ActiveWorkers())
	}

	close(gate)
	pool.BlockUntilFinished()
	if ran {
		t.Fatalf("cancelled task ran")
	}
	stats := pool.Stats()
	if stats.Submitted != 2 || stats.Cancelled != 1 || stats.Completed != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	pool := NewPool(2, nil)
	t.Cleanup(func() { pool.Close() })

	pool.Submit(Priority{}, func() { panic("boom") })
	done := false
	pool.Submit(Priority{Class: 1}, func() { done = true })
	pool.BlockUntilFinished()

	if !done {
		t.Fatalf("expected task after panic to run")
	}
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	pool := NewPool(1, nil)
	if err := pool.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if id := pool.Submit(Priority{}, func() {}); id != 0 {
		t.Fatalf("expected zero id after close, got %d", id)
	}
	if pool.TotalWorkers() != 1 {
		t.Fatalf("expected 1 worker, got %d", pool.TotalWorkers())
	}
}
