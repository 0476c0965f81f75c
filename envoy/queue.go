package envoy

import (
	"errors"
	"sync"
)

// ErrQueueFull indicates a push onto a queue already at capacity.
var ErrQueueFull = errors.New("queue capacity exceeded")

// Queue is a bounded FIFO of envoys, safe for concurrent use.
type Queue struct {
	items    []Envoy
	head     int
	capacity int

	mu sync.Mutex
}

// NewQueue creates a queue holding at most capacity envoys.
// A capacity below one is raised to one.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{
		items:    make([]Envoy, 0, min(capacity, 64)),
		capacity: capacity,
	}
}

// Push appends an envoy. The capacity check and the append happen under the
// same lock so concurrent pushers cannot overfill the queue.
func (q *Queue) Push(e Envoy) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items)-q.head >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, e)
	return nil
}

// Pop removes and returns the oldest envoy.
func (q *Queue) Pop() (Envoy, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return Envoy{}, false
	}

	e := q.items[q.head]
	q.items[q.head] = Envoy{}
	q.head++
	q.compact()
	return e, true
}

// PopIf removes the oldest envoy only when accept returns true for it.
// It reports the head envoy (if any) and whether it was removed.
func (q *Queue) PopIf(accept func(Envoy) bool) (Envoy, bool, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return Envoy{}, false, false
	}

	e := q.items[q.head]
	if !accept(e) {
		return e, true, false
	}
	q.items[q.head] = Envoy{}
	q.head++
	q.compact()
	return e, true, true
}

// Peek returns the oldest envoy without removing it.
func (q *Queue) Peek() (Envoy, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return Envoy{}, false
	}
	return q.items[q.head], true
}

// Len returns the number of queued envoys.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return q.capacity
}

// Drain removes and returns every queued envoy in order.
func (q *Queue) Drain() []Envoy {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Envoy, len(q.items)-q.head)
	copy(out, q.items[q.head:])
	q.items = q.items[:0]
	q.head = 0
	return out
}

// compact reclaims the consumed prefix once it dominates the slice.
// Caller must hold q.mu.
func (q *Queue) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head >= 64 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		for i := n; i < len(q.items); i++ {
			q.items[i] = Envoy{}
		}
		q.items = q.items[:n]
		q.head = 0
	}
}
