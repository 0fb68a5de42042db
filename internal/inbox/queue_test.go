package inbox

import (
	"errors"
	"sync"
	"testing"
)

type delivery struct {
	name  string
	cells []int
}

func sample(name string) delivery {
	return delivery{name: name, cells: []int{len(name)}}
}

func TestQueueDrainReleasesReferences(t *testing.T) {
	q := NewQueue[delivery]()

	for i := 0; i < 4; i++ {
		if err := q.Enqueue(sample(string(rune('a' + i)))); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	batch := q.Drain(0)
	if len(batch) != 4 {
		t.Fatalf("expected 4 items in batch, got %d", len(batch))
	}
	if q.pending != nil {
		t.Fatalf("expected queue storage to be reset, got len=%d cap=%d", len(q.pending), cap(q.pending))
	}
	if len(batch[0].cells) == 0 {
		t.Fatalf("expected drained batch to preserve item data")
	}

	q.Enqueue(sample("first"))
	q.Enqueue(sample("second"))
	q.Enqueue(sample("third"))

	batch = q.Drain(2)
	if len(batch) != 2 {
		t.Fatalf("expected 2 items in partial batch, got %d", len(batch))
	}
	if batch[0].name != "first" || batch[1].name != "second" {
		t.Fatalf("expected arrival order, got %q %q", batch[0].name, batch[1].name)
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 item to remain in queue, got %d", q.Len())
	}
	if q.pending[0].name != "third" {
		t.Fatalf("expected remaining item to be 'third', got %s", q.pending[0].name)
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue[int]()
	q.Enqueue(1)
	q.Close()

	if err := q.Enqueue(2); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if got := q.Drain(0); got != nil {
		t.Fatalf("expected closed queue to be empty, got %v", got)
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()
	var wg sync.WaitGroup
	for p := 0; p < 8; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Enqueue(i)
			}
		}()
	}
	wg.Wait()

	if got := len(q.Drain(0)); got != 800 {
		t.Fatalf("expected 800 items, got %d", got)
	}
}
