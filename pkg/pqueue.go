// Package pkg is a package that provides utilities for sift.
package pkg

import "container/heap"

// PriorityQueue is a generic min-priority queue. Items with equal
// priority come out in insertion order, which keeps consumers that need
// reproducible traversal (like the decision search) deterministic.
type PriorityQueue[T any] struct {
	entries pqEntries[T]
	seq     uint64
}

// NewPriorityQueue returns an empty queue.
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{}
}

// Push adds an item with the given priority.
func (q *PriorityQueue[T]) Push(item T, priority float64) {
	q.seq++

	heap.Push(&q.entries, pqEntry[T]{
		item:     item,
		priority: priority,
		seq:      q.seq,
	})
}

// Pop removes and returns the lowest-priority item. The second return
// value is false when the queue is empty.
func (q *PriorityQueue[T]) Pop() (T, bool) {
	if q.entries.Len() == 0 {
		var zero T
		return zero, false
	}

	entry, _ := heap.Pop(&q.entries).(pqEntry[T])

	return entry.item, true
}

// Len returns the number of queued items.
func (q *PriorityQueue[T]) Len() int {
	return q.entries.Len()
}

type pqEntry[T any] struct {
	item     T
	priority float64
	seq      uint64
}

type pqEntries[T any] []pqEntry[T]

func (e pqEntries[T]) Len() int { return len(e) }

func (e pqEntries[T]) Less(i, j int) bool {
	if e[i].priority != e[j].priority {
		return e[i].priority < e[j].priority
	}

	return e[i].seq < e[j].seq
}

func (e pqEntries[T]) Swap(i, j int) { e[i], e[j] = e[j], e[i] }

func (e *pqEntries[T]) Push(x any) {
	entry, _ := x.(pqEntry[T])
	*e = append(*e, entry)
}

func (e *pqEntries[T]) Pop() any {
	old := *e
	n := len(old)
	entry := old[n-1]
	*e = old[:n-1]

	return entry
}
