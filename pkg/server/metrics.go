package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/GustavoMelloGit/qwik/pkg/qwik"
)

// Metrics holds the Prometheus collectors for task lifecycle activity.
//
// Metrics collected:
//   - <ns>_task_runs_total: counter of task runs by kind and status
//   - <ns>_task_run_duration_seconds: histogram of body execution time
//   - <ns>_task_cleanup_errors_total: counter of suppressed cleanup panics
//   - <ns>_tasks_destroyed_total: counter of destroyed descriptors
type Metrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	cleanupErrors prometheus.Counter
	destroyed     prometheus.Counter
}

// NewMetrics registers the collectors with registry under namespace.
// A nil registry uses prometheus.DefaultRegisterer.
func NewMetrics(namespace string, registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "Total number of task body executions",
		}, []string{"kind", "status"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_run_duration_seconds",
			Help:      "Task body execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		cleanupErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_cleanup_errors_total",
			Help:      "Total number of suppressed task cleanup panics",
		}),

		destroyed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_destroyed_total",
			Help:      "Total number of destroyed task descriptors",
		}),
	}
}

// Observe records one task lifecycle event.
func (m *Metrics) Observe(ev qwik.TaskEvent) {
	switch ev.Kind {
	case qwik.EventTaskRun, qwik.EventMountRun:
		status := "success"
		if ev.Err != nil {
			status = "error"
		}
		kind := ev.Kind.String()
		m.runsTotal.WithLabelValues(kind, status).Inc()
		m.runDuration.WithLabelValues(kind).Observe(ev.Elapsed.Seconds())

	case qwik.EventCleanupError:
		m.cleanupErrors.Inc()

	case qwik.EventTaskDestroyed:
		m.destroyed.Inc()
	}
}
