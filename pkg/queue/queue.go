// Package queue provides the producer-owned pending-job container that the
// pool observes. The pool itself never stores or orders jobs; it only reads
// this queue's emptiness and is told its depth after each enqueue. Dequeue
// order is the queue's business, not the pool's.
package queue

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrFull is returned when the queue is at capacity (backpressure).
	ErrFull = errors.New("job queue is full")

	// ErrClosed is returned when pushing to a closed queue.
	ErrClosed = errors.New("job queue is closed")
)

// Job is a unit of work executed by one worker.
type Job func()

// Queue is a bounded FIFO of pending jobs, safe for concurrent producers
// and consumers.
type Queue struct {
	ch       chan Job
	closed   int32 // atomic flag
	capacity int
}

// New creates a bounded queue. capacity < 1 falls back to a default.
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 100
	}
	return &Queue{
		ch:       make(chan Job, capacity),
		capacity: capacity,
	}
}

// Push enqueues a job without blocking. A full queue is reported as
// backpressure rather than waited out.
func (q *Queue) Push(job Job) error {
	if atomic.LoadInt32(&q.closed) == 1 {
		return ErrClosed
	}
	select {
	case q.ch <- job:
		return nil
	default:
		return ErrFull
	}
}

// TryPop dequeues one job without blocking. ok reports whether a job was
// available.
func (q *Queue) TryPop() (job Job, ok bool) {
	select {
	case job, ok = <-q.ch:
		return job, ok
	default:
		return nil, false
	}
}

// Len returns the current depth; this is the value producers report to the
// pool via JobQueued.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Empty reports whether no jobs are pending. The pool consults this as a
// boundary condition for worker exit eligibility.
func (q *Queue) Empty() bool {
	return len(q.ch) == 0
}

// Capacity returns the fixed capacity.
func (q *Queue) Capacity() int {
	return q.capacity
}

// Close rejects further pushes. Pending jobs remain poppable.
func (q *Queue) Close() {
	atomic.CompareAndSwapInt32(&q.closed, 0, 1)
}

// IsClosed reports whether Close has been called.
func (q *Queue) IsClosed() bool {
	return atomic.LoadInt32(&q.closed) == 1
}
