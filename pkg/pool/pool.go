// Package pool implements a self-sizing worker pool for I/O-bound jobs.
//
// The pool does not store jobs and makes no promises about execution order.
// A producer enqueues work into its own queue and reports the depth via
// JobQueued; the pool grows the worker count to match the offered load (up
// to a runtime-adjustable ceiling), shrinks it back down during idle periods
// using a sliding-window low-water-mark, and tears down without losing
// in-flight jobs or leaking workers.
//
// Hot paths (the capacity check on every enqueue, idle transitions on every
// job) run on lock-free atomic counters; the roster of worker handles is
// guarded by a single mutex because it changes rarely. The two views may be
// transiently inconsistent with each other; every algorithm here tolerates
// that window.
package pool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/spindleio/spindle/pkg/eventloop"
	"github.com/spindleio/spindle/pkg/failfast"
)

// JobQueue is the pool's read-only view of the producer's pending-job
// container. The pool consults emptiness as a boundary condition for worker
// exit eligibility; storage and dequeue order stay with the producer.
type JobQueue interface {
	Empty() bool
}

// WorkerFunc is the entry point run once per spawned worker. It is expected
// to repeatedly pull jobs from the producer's queue and, when none are
// available, call w.WaitForJob, terminating when that returns true.
type WorkerFunc func(w *Worker)

// Config holds the pool's tunables.
type Config struct {
	// MaxThreads is the initial ceiling on concurrently running workers.
	// Zero means no workers are started until SetMaxThreads raises it.
	MaxThreads int

	// ReapInterval is how often the idle reaper samples the window minimum
	// of idle workers and requests that many exits.
	ReapInterval time.Duration

	// PollInterval bounds the idle wait so an exit request issued while a
	// worker is asleep is noticed promptly even without an explicit wake.
	PollInterval time.Duration
}

// DefaultConfig returns the reference policy: reap every 60 seconds, poll
// every second, no workers until the ceiling is raised.
func DefaultConfig() Config {
	return Config{
		MaxThreads:   0,
		ReapInterval: 60 * time.Second,
		PollInterval: time.Second,
	}
}

// Pool is the shared state: roster, capacity limits, abort flag, counters.
type Pool struct {
	cfg       Config
	threadFun WorkerFunc
	jobQueue  JobQueue
	loop      *eventloop.Loop

	// roster and structural flags, guarded by mu
	mu         sync.Mutex
	workers    []*Worker
	maxThreads int
	aborting   bool
	wake       chan struct{} // closed and replaced under mu to broadcast
	idleTimer  *eventloop.Timer

	// lock-free counters, updated with CAS retry loops on the hot paths
	threadsToExit atomic.Int32
	numIdle       atomic.Int32
	minIdle       atomic.Int32

	closeErr error // diagnostic captured while unwinding in Close

	metrics MetricsObserver
	logger  Logger
}

// New creates a pool. threadFun runs once per spawned worker; jobQueue is
// the producer's container, observed for emptiness only; loop is the
// timer/completion substrate workers post back into.
func New(threadFun WorkerFunc, jobQueue JobQueue, loop *eventloop.Loop, cfg Config) *Pool {
	failfast.NotNil(threadFun, "worker entry point")
	failfast.NotNil(jobQueue, "job queue")
	failfast.NotNil(loop, "event loop")

	if cfg.MaxThreads < 0 {
		cfg.MaxThreads = 0
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = 60 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}

	return &Pool{
		cfg:        cfg,
		threadFun:  threadFun,
		jobQueue:   jobQueue,
		loop:       loop,
		maxThreads: cfg.MaxThreads,
		wake:       make(chan struct{}),
		metrics:    noopMetrics{},
		logger:     newDefaultSimpleLogger(),
	}
}

// SetMetricsObserver installs an observer for pool state changes. Call
// before the first JobQueued; the default observer discards everything.
func (p *Pool) SetMetricsObserver(m MetricsObserver) {
	failfast.NotNil(m, "metrics observer")
	p.metrics = m
}

// SetLogger swaps the pool's logger.
func (p *Pool) SetLogger(l Logger) {
	failfast.NotNil(l, "logger")
	p.logger = l
}

// NumThreads returns the current roster size.
func (p *Pool) NumThreads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// NumIdleThreads returns the number of workers currently blocked waiting
// for work.
func (p *Pool) NumIdleThreads() int {
	return int(p.numIdle.Load())
}

// MaxThreads returns the current ceiling.
func (p *Pool) MaxThreads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxThreads
}

// FirstWorkerID returns the id of the oldest worker in the roster, or ""
// when the pool is empty. Embedders use this to designate one worker for a
// dedicated role.
func (p *Pool) FirstWorkerID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.workers) == 0 {
		return ""
	}
	return p.workers[0].ID()
}

// threadIdle records a worker entering the idle wait.
func (p *Pool) threadIdle() {
	n := p.numIdle.Add(1)
	p.metrics.IdleTransition(int(n))
}

// threadActive records a worker leaving the idle wait, either to do work or
// to exit, and opportunistically drags the window minimum down with it so
// the reaper's sample stays correct between firings.
func (p *Pool) threadActive() {
	n := p.numIdle.Add(-1)
	failfast.If(n >= 0, "idle worker count went negative: %d", n)
	for {
		cur := p.minIdle.Load()
		if n >= cur || p.minIdle.CompareAndSwap(cur, n) {
			break
		}
	}
	p.metrics.IdleTransition(int(n))
}

// sampleMinIdle atomically reads the minimum idle count observed since the
// last sample and starts the next window at the current idle count.
func (p *Pool) sampleMinIdle() int {
	return int(p.minIdle.Swap(p.numIdle.Load()))
}

func (p *Pool) shouldExit() bool {
	return p.threadsToExit.Load() > 0
}

// stopThreadsLocked requests that n workers voluntarily terminate and wakes
// every idle worker so they race to claim the exit slots. Caller holds mu.
func (p *Pool) stopThreadsLocked(n int) {
	p.threadsToExit.Store(int32(n))
	p.metrics.ExitRequested(n)
	p.notifyAllLocked()
}

// notifyAllLocked broadcasts to every worker blocked in the idle wait.
// Caller holds mu.
func (p *Pool) notifyAllLocked() {
	close(p.wake)
	p.wake = make(chan struct{})
}
