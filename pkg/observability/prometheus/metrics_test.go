package prometheus

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/spindleio/spindle/pkg/eventloop"
	"github.com/spindleio/spindle/pkg/pool"
	"github.com/spindleio/spindle/pkg/queue"
)

func gaugeValue(t *testing.T, registry *prom.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			m := mf.GetMetric()[0]
			if g := m.GetGauge(); g != nil {
				return g.GetValue()
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestMetricsImplementsObserver(t *testing.T) {
	var _ pool.MetricsObserver = (*Metrics)(nil)
}

func TestMetricsDirectUpdates(t *testing.T) {
	registry := prom.NewRegistry()
	m := NewMetrics(registry)

	m.WorkersChanged(3)
	m.IdleTransition(2)
	m.ExitRequested(1)
	m.ExitRequested(2)
	m.JobQueuedObserved(7)

	if got := gaugeValue(t, registry, "spindle_pool_workers"); got != 3 {
		t.Errorf("spindle_pool_workers = %v, want 3", got)
	}
	if got := gaugeValue(t, registry, "spindle_pool_idle_workers"); got != 2 {
		t.Errorf("spindle_pool_idle_workers = %v, want 2", got)
	}
	if got := gaugeValue(t, registry, "spindle_pool_exit_requests_total"); got != 3 {
		t.Errorf("spindle_pool_exit_requests_total = %v, want 3", got)
	}
	if got := gaugeValue(t, registry, "spindle_pool_jobs_queued_total"); got != 1 {
		t.Errorf("spindle_pool_jobs_queued_total = %v, want 1", got)
	}
	if got := gaugeValue(t, registry, "spindle_pool_queue_depth"); got != 7 {
		t.Errorf("spindle_pool_queue_depth = %v, want 7", got)
	}
}

func TestPoolReportsThroughMetrics(t *testing.T) {
	registry := prom.NewRegistry()
	m := NewMetrics(registry)

	q := queue.New(64)
	l := eventloop.New(64)
	defer l.Close()

	p := pool.New(func(w *pool.Worker) {
		for {
			if job, ok := q.TryPop(); ok {
				job()
				continue
			}
			if w.WaitForJob() {
				return
			}
		}
	}, q, l, pool.Config{
		MaxThreads:   2,
		ReapInterval: time.Hour,
		PollInterval: 10 * time.Millisecond,
	})
	p.SetMetricsObserver(m)
	defer p.Abort(true)

	if err := p.JobQueued(2); err != nil {
		t.Fatalf("JobQueued() error = %v", err)
	}

	if got := gaugeValue(t, registry, "spindle_pool_workers"); got != 2 {
		t.Errorf("spindle_pool_workers = %v after growth, want 2", got)
	}
	if got := gaugeValue(t, registry, "spindle_pool_queue_depth"); got != 2 {
		t.Errorf("spindle_pool_queue_depth = %v, want 2", got)
	}

	p.Abort(true)
	if got := gaugeValue(t, registry, "spindle_pool_workers"); got != 0 {
		t.Errorf("spindle_pool_workers = %v after abort, want 0", got)
	}
}
