// Package eventloop provides the single-goroutine completion loop the pool's
// workers post back into, plus the timer substrate that drives the pool's
// periodic idle reaping.
//
// The loop makes two guarantees the pool depends on:
//
//   - Callbacks run one at a time, on the loop goroutine. A timer callback is
//     therefore never concurrent with itself.
//   - Close does not return while a work guard is outstanding, so a worker
//     holding a guard can always post its final completion.
package eventloop

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when posting to, or acquiring a guard from, a loop
// that has begun shutting down.
var ErrClosed = errors.New("event loop is closed")

// Loop is a single-goroutine event loop.
type Loop struct {
	tasks   chan func()
	closing int32 // atomic flag, set once by Close
	guards  sync.WaitGroup
	stopped chan struct{}

	mu sync.Mutex // serializes Close against Guard
}

// New creates and starts an event loop. capacity bounds the number of
// callbacks that may be pending before Post reports backpressure.
func New(capacity int) *Loop {
	if capacity < 1 {
		capacity = 1024
	}
	l := &Loop{
		tasks:   make(chan func(), capacity),
		stopped: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.stopped)
	for fn := range l.tasks {
		if fn == nil {
			// stop sentinel, posted by Close after the guards drain
			return
		}
		fn()
	}
}

// Post schedules fn to run on the loop goroutine. It never blocks: a full
// queue or a closing loop is reported as an error.
func (l *Loop) Post(fn func()) error {
	if atomic.LoadInt32(&l.closing) == 1 {
		return ErrClosed
	}
	select {
	case l.tasks <- fn:
		return nil
	default:
		return errors.New("event loop queue is full")
	}
}

// Guard acquires a keep-alive token. While any guard is outstanding, Close
// blocks; this is what lets a worker post its last completion before the
// loop goes away.
func (l *Loop) Guard() (*WorkGuard, error) {
	// Taken under mu so an Add cannot race the Wait in Close.
	l.mu.Lock()
	defer l.mu.Unlock()
	if atomic.LoadInt32(&l.closing) == 1 {
		return nil, ErrClosed
	}
	l.guards.Add(1)
	return &WorkGuard{loop: l}, nil
}

// Close waits for all outstanding guards to be released, drains remaining
// callbacks, and stops the loop goroutine. Safe to call more than once.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !atomic.CompareAndSwapInt32(&l.closing, 0, 1) {
		<-l.stopped
		return
	}
	l.guards.Wait()
	l.tasks <- nil
	<-l.stopped
}

// WorkGuard keeps the loop alive until released. Release is idempotent.
type WorkGuard struct {
	loop     *Loop
	released int32
}

// Release gives the token back. Further calls are no-ops.
func (g *WorkGuard) Release() {
	if atomic.CompareAndSwapInt32(&g.released, 0, 1) {
		g.loop.guards.Done()
	}
}

// Post schedules fn on the guarded loop. Unlike Loop.Post it succeeds even
// while the loop is waiting to close, because the guard holds it open.
func (g *WorkGuard) Post(fn func()) error {
	if atomic.LoadInt32(&g.released) == 1 {
		return ErrClosed
	}
	select {
	case g.loop.tasks <- fn:
		return nil
	default:
		return errors.New("event loop queue is full")
	}
}
