package pool

import (
	"fmt"
)

// JobQueued tells the pool the producer's queue now holds queueSize jobs.
// The pool cancels any exit requests for workers it is about to need again,
// then starts new workers until idle capacity covers the reported depth or
// the ceiling is reached. queueSize may be stale by the time the pool
// reacts; such races are tolerated.
//
// The returned error is non-nil only when a worker could not be started
// (the event loop refused a keep-alive guard); the pool keeps operating
// with however many workers it already has.
func (p *Pool) JobQueued(queueSize int) error {
	// Enough idle capacity already; skip the lock on the hot path.
	if int(p.numIdle.Load()) >= queueSize {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.aborting {
		return nil
	}

	p.metrics.JobQueuedObserved(queueSize)

	// Un-ask workers that were told to exit but are needed for these jobs.
	for {
		toExit := p.threadsToExit.Load()
		target := int32(max(0, int(p.numIdle.Load())-queueSize))
		if toExit <= target || p.threadsToExit.CompareAndSwap(toExit, target) {
			break
		}
	}

	// Start workers one at a time until we can service every queued job
	// without blocking, or we hit the ceiling.
	for i := int(p.numIdle.Load()); i < queueSize && len(p.workers) < p.maxThreads; i++ {
		// First worker into an empty roster arms the reaper timer.
		if len(p.workers) == 0 {
			p.armIdleTimerLocked()
		}

		// The guard keeps the event loop from shutting down while this
		// worker might still post a completion back into it.
		guard, err := p.loop.Guard()
		if err != nil {
			return fmt.Errorf("starting worker %d for queue depth %d: %w",
				len(p.workers)+1, queueSize, err)
		}

		w := newWorker(p, guard)
		p.workers = append(p.workers, w)
		p.metrics.WorkersChanged(len(p.workers))
		go w.run(p.threadFun)
	}
	return nil
}

// Notify wakes every worker blocked in the idle wait so freshly queued work
// is picked up without waiting out the poll interval. Producers call it
// after enqueueing; the bounded poll makes it advisory rather than
// required for correctness.
func (p *Pool) Notify() {
	if p.numIdle.Load() == 0 {
		return
	}
	p.mu.Lock()
	p.notifyAllLocked()
	p.mu.Unlock()
}

// SetMaxThreads adjusts the ceiling at runtime. Raising it only records the
// new value; workers are started lazily by future JobQueued calls. Lowering
// it below the current roster size requests exactly the surplus to exit,
// without blocking.
func (p *Pool) SetMaxThreads(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n == p.maxThreads {
		return
	}
	p.maxThreads = n
	if len(p.workers) < n {
		return
	}
	p.stopThreadsLocked(len(p.workers) - n)
}
