// Package prometheus exposes the pool's sizing behavior as Prometheus
// metrics. It implements pool.MetricsObserver so the pool itself stays free
// of any metrics backend.
package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DefaultRegistry is the default Prometheus registry
	DefaultRegistry = prometheus.NewRegistry()

	// DefaultRegisterer is the default Prometheus registerer
	DefaultRegisterer = prometheus.WrapRegistererWith(prometheus.Labels{"service": "spindle"}, DefaultRegistry)

	metricsOnce sync.Once
	metrics     *Metrics
)

// Metrics holds all pool Prometheus metrics.
type Metrics struct {
	// Sizing gauges
	PoolWorkers     prometheus.Gauge
	PoolIdleWorkers prometheus.Gauge

	// Flow counters
	ExitRequestsTotal prometheus.Counter
	JobsQueuedTotal   prometheus.Counter

	// Depth of the producer queue as last reported to the pool
	QueueDepth prometheus.Gauge
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = NewMetrics(DefaultRegisterer)
	})
	return metrics
}

// NewMetrics creates a new metrics collection registered with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = DefaultRegisterer
	}

	return &Metrics{
		PoolWorkers: promauto.With(registerer).NewGauge(prometheus.GaugeOpts{
			Name: "spindle_pool_workers",
			Help: "Current number of workers in the pool roster",
		}),
		PoolIdleWorkers: promauto.With(registerer).NewGauge(prometheus.GaugeOpts{
			Name: "spindle_pool_idle_workers",
			Help: "Number of workers currently blocked waiting for work",
		}),
		ExitRequestsTotal: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "spindle_pool_exit_requests_total",
			Help: "Total worker exits requested by the reaper, ceiling changes, or abort",
		}),
		JobsQueuedTotal: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "spindle_pool_jobs_queued_total",
			Help: "Total JobQueued notifications that took the slow path",
		}),
		QueueDepth: promauto.With(registerer).NewGauge(prometheus.GaugeOpts{
			Name: "spindle_pool_queue_depth",
			Help: "Producer queue depth as last reported to the pool",
		}),
	}
}

// WorkersChanged implements pool.MetricsObserver.
func (m *Metrics) WorkersChanged(total int) {
	m.PoolWorkers.Set(float64(total))
}

// IdleTransition implements pool.MetricsObserver.
func (m *Metrics) IdleTransition(idle int) {
	m.PoolIdleWorkers.Set(float64(idle))
}

// ExitRequested implements pool.MetricsObserver.
func (m *Metrics) ExitRequested(n int) {
	m.ExitRequestsTotal.Add(float64(n))
}

// JobQueuedObserved implements pool.MetricsObserver.
func (m *Metrics) JobQueuedObserved(depth int) {
	m.JobsQueuedTotal.Inc()
	m.QueueDepth.Set(float64(depth))
}
