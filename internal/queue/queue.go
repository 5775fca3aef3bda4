package queue

import (
	"container/heap"
	"sync"
)

// Queue is a generic thread-safe FIFO used to buffer ledger rows until a run ends.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// New creates a new empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
	}
}

// Push appends items to the queue.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, items...)
}

// Drain removes and returns every queued item in insertion order.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = make([]T, 0, len(out))
	return out
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// PriorityQueue is a min-priority queue. It is not safe for concurrent use;
// the distance transform owns one per call.
type PriorityQueue[T any] struct {
	h entries[T]
}

type entry[T any] struct {
	value    T
	priority float64
	seq      uint64
}

// entries implements heap.Interface. Equal priorities pop in push order so
// results do not depend on heap layout.
type entries[T any] struct {
	items []entry[T]
	next  uint64
}

func (e *entries[T]) Len() int { return len(e.items) }

func (e *entries[T]) Less(i, j int) bool {
	a, b := e.items[i], e.items[j]
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

func (e *entries[T]) Swap(i, j int) { e.items[i], e.items[j] = e.items[j], e.items[i] }

func (e *entries[T]) Push(x any) { e.items = append(e.items, x.(entry[T])) }

func (e *entries[T]) Pop() any {
	n := len(e.items)
	it := e.items[n-1]
	e.items = e.items[:n-1]
	return it
}

// NewPriority creates an empty priority queue with room for capacity items.
func NewPriority[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{h: entries[T]{items: make([]entry[T], 0, capacity)}}
}

// Push adds value with the given priority.
func (q *PriorityQueue[T]) Push(value T, priority float64) {
	heap.Push(&q.h, entry[T]{value: value, priority: priority, seq: q.h.next})
	q.h.next++
}

// Pop removes the lowest-priority value. ok is false when the queue is empty.
func (q *PriorityQueue[T]) Pop() (value T, priority float64, ok bool) {
	if q.h.Len() == 0 {
		return value, 0, false
	}
	it := heap.Pop(&q.h).(entry[T])
	return it.value, it.priority, true
}

// Len returns the number of queued values.
func (q *PriorityQueue[T]) Len() int { return q.h.Len() }

// Empty returns true if the queue has no values.
func (q *PriorityQueue[T]) Empty() bool { return q.h.Len() == 0 }
