// Package tasks runs prioritised background jobs on a fixed set of worker
// goroutines.
package tasks

import (
	"container/heap"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// Priority orders queued tasks: lower Class first, then lower Within.
type Priority struct {
	Class  int
	Within int
}

func (p Priority) Less(o Priority) bool {
	if p.Class != o.Class {
		return p.Class < o.Class
	}
	return p.Within < o.Within
}

// TaskID names a submitted task. The zero TaskID is never issued.
type TaskID uint64

type task struct {
	id       TaskID
	priority Priority
	fn       func()
	index    int
}

// taskQueue is a min-heap on (priority, id); ids grow with submission so equal
// priorities run first come first served.
type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority.Less(q[j].priority)
	}
	return q[i].id < q[j].id
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Pool executes submitted functions on its workers, highest priority first.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   taskQueue
	byID    map[TaskID]*task
	running int
	closed  bool
	nextID  TaskID

	group   errgroup.Group
	workers int

	active    *atomic.Int64
	submitted *atomic.Int64
	cancelled *atomic.Int64
	completed *atomic.Int64

	log *slog.Logger
}

// NewPool starts workers goroutines; workers <= 0 uses GOMAXPROCS.
func NewPool(workers int, log *slog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{
		byID:      make(map[TaskID]*task),
		workers:   workers,
		active:    atomic.NewInt64(0),
		submitted: atomic.NewInt64(0),
		cancelled: atomic.NewInt64(0),
		completed: atomic.NewInt64(0),
		log:       log,
	}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.group.Go(p.work)
	}
	log.Debug("task pool started", "workers", workers)
	return p
}

// Submit queues fn. Tasks submitted after Close are dropped and get the zero
// TaskID.
func (p *Pool) Submit(priority Priority, fn func()) TaskID {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.log.Warn("task submitted to closed pool", "class", priority.Class)
		return 0
	}
	p.nextID++
	t := &task{id: p.nextID, priority: priority, fn: fn}
	heap.Push(&p.queue, t)
	p.byID[t.id] = t
	p.submitted.Inc()
	p.cond.Broadcast()
	return t.id
}

// CancelIfPending removes a task that has not started yet. It returns false
// for running, finished or unknown tasks.
func (p *Pool) CancelIfPending(id TaskID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&p.queue, t.index)
	delete(p.byID, id)
	p.cancelled.Inc()
	p.cond.Broadcast()
	return true
}

// BlockUntilFinished waits until the queue is empty and no task is running.
func (p *Pool) BlockUntilFinished() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) > 0 || p.running > 0 {
		p.cond.Wait()
	}
}

// Close drops pending tasks and waits for running ones to return.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	dropped := len(p.queue)
	p.queue = nil
	p.byID = make(map[TaskID]*task)
	p.cond.Broadcast()
	p.mu.Unlock()

	err := p.group.Wait()
	p.log.Debug("task pool stopped", "dropped", dropped, "completed", p.completed.Load())
	return err
}

func (p *Pool) TotalWorkers() int {
	return p.workers
}

// ActiveWorkers is the number of workers currently running a task.
func (p *Pool) ActiveWorkers() int {
	return int(p.active.Load())
}

// Pending is the number of queued tasks not yet started.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Stats is a snapshot of the pool counters.
type Stats struct {
	Workers   int
	Active    int
	Pending   int
	Submitted int64
	Cancelled int64
	Completed int64
}

func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		Active:    p.ActiveWorkers(),
		Pending:   p.Pending(),
		Submitted: p.submitted.Load(),
		Cancelled: p.cancelled.Load(),
		Completed: p.completed.Load(),
	}
}

func (p *Pool) work() error {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return nil
		}
		t := heap.Pop(&p.queue).(*task)
		delete(p.byID, t.id)
		p.running++
		p.mu.Unlock()

		p.run(t)

		p.mu.Lock()
		p.running--
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

func (p *Pool) run(t *task) {
	p.active.Inc()
	defer p.active.Dec()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task panicked", "task", t.id, "panic", fmt.Sprint(r))
		}
	}()
	t.fn()
	p.completed.Inc()
}
