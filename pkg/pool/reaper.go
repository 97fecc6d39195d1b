package pool

// armIdleTimerLocked schedules the next reap. Armed by the first worker
// started into an empty roster and re-armed by every successful firing;
// canceled on abort and when the roster empties. Caller holds mu.
func (p *Pool) armIdleTimerLocked() {
	p.idleTimer = p.loop.ScheduleTimer(p.cfg.ReapInterval, p.reapIdleThreads)
}

// reapIdleThreads runs on the event loop goroutine, so it is never
// concurrent with itself. It samples the minimum number of idle workers
// observed over the window that just ended and requests that many exits.
//
// Sampling the window minimum rather than the instantaneous idle count is
// what keeps the pool from reaping workers that were only briefly idle
// between bursts: the pool never shrinks below what was actually needed at
// every instant in the window.
func (p *Pool) reapIdleThreads(canceled bool) {
	if canceled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.aborting || len(p.workers) == 0 {
		return
	}
	p.armIdleTimerLocked()

	minIdle := p.sampleMinIdle()
	if minIdle <= 0 {
		return
	}
	// Shrink by the idle surplus observed over the whole window, and by at
	// least enough to respect a lowered ceiling, whichever is larger.
	toStop := max(minIdle, len(p.workers)-p.maxThreads)
	p.logger.Debugf("reaper: window min idle %d, requesting %d of %d workers to exit",
		minIdle, toStop, len(p.workers))
	p.stopThreadsLocked(toStop)
}
