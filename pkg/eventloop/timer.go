package eventloop

import (
	"sync"
	"time"
)

// TimerFunc is a scheduled callback. canceled reports whether Cancel was
// called before the callback ran; a callback that observes canceled must
// treat the firing as void.
type TimerFunc func(canceled bool)

// Timer is a single outstanding scheduled callback.
type Timer struct {
	mu       sync.Mutex
	inner    *time.Timer
	canceled bool
}

// ScheduleTimer runs fn on the loop goroutine after d has elapsed. Cancel
// stops a pending firing; if the callback has already been queued onto the
// loop it still runs, but observes canceled == true.
func (l *Loop) ScheduleTimer(d time.Duration, fn TimerFunc) *Timer {
	t := &Timer{}
	t.inner = time.AfterFunc(d, func() {
		// Post may fail if the loop is gone; the callback contract is
		// then the same as a cancellation: it simply never runs.
		_ = l.Post(func() {
			t.mu.Lock()
			canceled := t.canceled
			t.mu.Unlock()
			fn(canceled)
		})
	})
	return t
}

// Cancel voids the timer. Idempotent; safe to call from any goroutine.
func (t *Timer) Cancel() {
	t.mu.Lock()
	t.canceled = true
	t.mu.Unlock()
	t.inner.Stop()
}
