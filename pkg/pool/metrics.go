package pool

// MetricsObserver receives pool state changes. Implementations must be safe
// for concurrent use and cheap: IdleTransition fires on every job and every
// idle wait, on the hot path.
//
// Defined here rather than importing the metrics backend so the pool stays
// free of it; pkg/observability/prometheus provides the real implementation.
type MetricsObserver interface {
	// WorkersChanged reports the roster size after a grow or shrink.
	WorkersChanged(total int)

	// IdleTransition reports the idle-worker count after a worker entered
	// or left the idle wait.
	IdleTransition(idle int)

	// ExitRequested reports a shrink request for n workers (reaper,
	// lowered ceiling, or abort).
	ExitRequested(n int)

	// JobQueuedObserved reports the queue depth passed to JobQueued, for
	// calls that took the slow path.
	JobQueuedObserved(depth int)
}

type noopMetrics struct{}

func (noopMetrics) WorkersChanged(int)    {}
func (noopMetrics) IdleTransition(int)    {}
func (noopMetrics) ExitRequested(int)     {}
func (noopMetrics) JobQueuedObserved(int) {}
