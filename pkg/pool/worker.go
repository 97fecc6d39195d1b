package pool

import (
	"time"

	"github.com/google/uuid"

	"github.com/spindleio/spindle/pkg/eventloop"
	"github.com/spindleio/spindle/pkg/failfast"
)

// Worker is the handle for one pool-owned worker. The entry point receives
// it to reach the pool's wait primitive and the keep-alive guard for the
// event loop.
type Worker struct {
	id    uuid.UUID
	pool  *Pool
	guard *eventloop.WorkGuard
	done  chan struct{} // closed when the entry point returns
}

func newWorker(p *Pool, guard *eventloop.WorkGuard) *Worker {
	return &Worker{
		id:    uuid.New(),
		pool:  p,
		guard: guard,
		done:  make(chan struct{}),
	}
}

// ID returns the worker's identity within the roster.
func (w *Worker) ID() string {
	return w.id.String()
}

// Guard returns the keep-alive token for posting completions to the event
// loop. The pool releases it when the entry point returns.
func (w *Worker) Guard() *eventloop.WorkGuard {
	return w.guard
}

func (w *Worker) run(fn WorkerFunc) {
	defer close(w.done)
	defer w.guard.Release()
	fn(w)
}

// WaitForJob blocks until the producer's queue has work or this worker is
// told to terminate. It returns true when the worker must exit; the entry
// point then returns. It returns false when there is work to pull.
func (w *Worker) WaitForJob() bool {
	return w.pool.waitForJob(w)
}

func (p *Pool) waitForJob(w *Worker) bool {
	// Only go idle if there is nothing to do. Going idle and straight back
	// to active on every call would drag the reaper's window minimum below
	// its true value, and skipping the round trip is cheaper anyway.
	if !p.jobQueue.Empty() {
		return false
	}

	p.threadIdle()
	for {
		// A shrink request makes this worker eligible to exit, unless it
		// is the last one and jobs are still pending: the last worker must
		// stay to drain them.
		if p.shouldExit() &&
			(p.jobQueue.Empty() || p.NumThreads() > 1) &&
			p.tryThreadExit(w) {
			// One last active transition keeps the min-idle sample
			// consistent.
			p.threadActive()
			return true
		}

		p.mu.Lock()
		wake := p.wake
		p.mu.Unlock()

		// Bounded wait: an exit request issued while we sleep is noticed
		// within one poll interval even if its wake raced past us.
		select {
		case <-wake:
		case <-time.After(p.cfg.PollInterval):
		}

		if !p.jobQueue.Empty() {
			break
		}
	}
	p.threadActive()
	return false
}

// tryThreadExit races to claim one exit slot and, on success, removes this
// worker from the roster. A worker terminating on its own initiative needs
// no join, so it simply drops out of the roster; during abort the shutdown
// coordinator owns the roster and the worker leaves it untouched.
func (p *Pool) tryThreadExit(w *Worker) bool {
	for {
		toExit := p.threadsToExit.Load()
		if toExit <= 0 {
			return false
		}
		if p.threadsToExit.CompareAndSwap(toExit, toExit-1) {
			break
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.aborting {
		idx := -1
		for i, cand := range p.workers {
			if cand == w {
				idx = i
				break
			}
		}
		failfast.If(idx >= 0, "exiting worker %s not found in roster", w.id)
		p.workers = append(p.workers[:idx], p.workers[idx+1:]...)
		p.metrics.WorkersChanged(len(p.workers))
		if len(p.workers) == 0 && p.idleTimer != nil {
			p.idleTimer.Cancel()
		}
	}
	return true
}
