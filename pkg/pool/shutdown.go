package pool

import (
	"fmt"

	"github.com/spindleio/spindle/pkg/failfast"
)

// Abort shuts the pool down. Idempotent; the first call wins and later
// calls return immediately. All current workers are asked to exit and woken.
// With wait true, Abort blocks until every worker has fully terminated,
// releasing the pool lock around each join so a worker that needs the lock
// to finish exiting cannot deadlock against it. With wait false, workers
// are detached and terminate asynchronously, untracked.
func (p *Pool) Abort(wait bool) {
	p.mu.Lock()
	if p.aborting {
		p.mu.Unlock()
		return
	}
	p.aborting = true
	if p.idleTimer != nil {
		p.idleTimer.Cancel()
	}
	p.stopThreadsLocked(len(p.workers))

	for _, w := range p.workers {
		if wait {
			// Must release mu: the worker claims its exit slot under it.
			p.mu.Unlock()
			<-w.done
			p.mu.Lock()
		}
	}
	p.workers = nil
	p.metrics.WorkersChanged(0)
	p.mu.Unlock()
}

// Close destroys the pool: it aborts with wait, so no worker outlives it.
// A panic raised while unwinding is captured as a diagnostic and returned
// as an error rather than lost.
//
// Calling Close with workers that cannot drain, or with jobs still pending,
// is a programming defect in the surrounding system; the pool asserts on
// both rather than returning a recoverable error.
func (p *Pool) Close() error {
	func() {
		defer func() {
			if r := recover(); r != nil {
				p.closeErr = fmt.Errorf("pool shutdown: %v", r)
			}
		}()
		p.Abort(true)
	}()
	if p.closeErr != nil {
		return p.closeErr
	}

	failfast.If(p.NumThreads() == 0, "workers outlived pool destruction: %d remain", p.NumThreads())
	failfast.If(p.jobQueue.Empty(), "job queue not drained at pool destruction")
	return nil
}
