package pool

import (
	"testing"
	"time"

	"github.com/spindleio/spindle/pkg/eventloop"
	"github.com/spindleio/spindle/pkg/queue"
)

// Scenario: 4 idle workers, sampled window minimum of 3 -> exactly 3 asked
// to exit, pool ends the cycle with 1 worker.
func TestReapRequestsWindowMinimumExits(t *testing.T) {
	p, _, _ := newTestPool(t, 4)

	if err := p.JobQueued(4); err != nil {
		t.Fatalf("JobQueued() error = %v", err)
	}
	waitUntil(t, 2*time.Second, func() bool { return p.NumIdleThreads() == 4 },
		"workers never went idle")

	// The window saw the idle count dip to 3.
	p.minIdle.Store(3)
	p.reapIdleThreads(false)

	waitUntil(t, 5*time.Second, func() bool { return p.NumThreads() == 1 },
		"pool did not shrink to 1 worker")
	waitUntil(t, 2*time.Second, func() bool { return p.threadsToExit.Load() == 0 },
		"exit slots were not all claimed")
}

// A window whose idle count touched zero warrants no shrinkage.
func TestReapSkipsBusyWindow(t *testing.T) {
	p, _, _ := newTestPool(t, 4)

	if err := p.JobQueued(2); err != nil {
		t.Fatalf("JobQueued() error = %v", err)
	}
	waitUntil(t, 2*time.Second, func() bool { return p.NumIdleThreads() == 2 },
		"workers never went idle")

	// minIdle still holds its initial 0: some instant in the window had no
	// idle workers to spare.
	p.reapIdleThreads(false)

	time.Sleep(50 * time.Millisecond)
	if got := p.NumThreads(); got != 2 {
		t.Errorf("NumThreads() = %d after busy-window reap, want 2", got)
	}
}

// A canceled firing does nothing, even with reapable workers.
func TestReapCanceledFiring(t *testing.T) {
	p, _, _ := newTestPool(t, 2)

	if err := p.JobQueued(2); err != nil {
		t.Fatalf("JobQueued() error = %v", err)
	}
	waitUntil(t, 2*time.Second, func() bool { return p.NumIdleThreads() == 2 },
		"workers never went idle")

	p.minIdle.Store(2)
	p.reapIdleThreads(true)

	time.Sleep(50 * time.Millisecond)
	if got := p.NumThreads(); got != 2 {
		t.Errorf("NumThreads() = %d after canceled firing, want 2", got)
	}
}

// End to end with a real timer: an all-idle pool is reaped to empty within
// two intervals (the first sample starts the window, the second shrinks),
// the timer is canceled on the empty roster, and the next JobQueued re-arms
// it and regrows the pool.
func TestReaperDrainsIdlePoolAndRearms(t *testing.T) {
	q := queue.New(64)
	l := eventloop.New(64)
	p := New(drainLoop(q), q, l, Config{
		MaxThreads:   2,
		ReapInterval: 30 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})
	t.Cleanup(func() {
		p.Abort(true)
		l.Close()
	})

	if err := p.JobQueued(2); err != nil {
		t.Fatalf("JobQueued() error = %v", err)
	}
	waitUntil(t, 5*time.Second, func() bool { return p.NumThreads() == 0 },
		"reaper did not drain the idle pool")

	if err := p.JobQueued(1); err != nil {
		t.Fatalf("JobQueued() after drain error = %v", err)
	}
	if got := p.NumThreads(); got != 1 {
		t.Errorf("NumThreads() = %d after regrow, want 1", got)
	}
}
