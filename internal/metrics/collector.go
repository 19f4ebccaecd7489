package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Collector struct {
	deploymentsStarted  prometheus.Counter
	deploymentsFinished *prometheus.CounterVec
	buildDuration       prometheus.Histogram
	stuckDeployments    prometheus.Counter
	sweepRuns           prometheus.Counter
}

func NewCollector() *Collector {
	return &Collector{
		deploymentsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_deployments_started_total",
			Help: "Deployments accepted by the orchestrator",
		}),
		deploymentsFinished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "launchpad_deployments_finished_total",
			Help: "Deployments that reached a terminal status",
		}, []string{"status"}),
		buildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "launchpad_build_duration_seconds",
			Help:    "Wall-clock build duration",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		stuckDeployments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_stuck_deployments_total",
			Help: "Deployments forced to error by the reconciliation sweep",
		}),
		sweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "launchpad_reconciler_sweeps_total",
			Help: "Reconciliation sweep executions",
		}),
	}
}

// A nil Collector is valid and records nothing; tests pass nil.

func (c *Collector) RecordDeploymentStarted() {
	if c == nil {
		return
	}
	c.deploymentsStarted.Inc()
}

func (c *Collector) RecordDeploymentFinished(status string, durationSeconds float64) {
	if c == nil {
		return
	}
	c.deploymentsFinished.WithLabelValues(status).Inc()
	c.buildDuration.Observe(durationSeconds)
}

func (c *Collector) RecordSweep(stuck int) {
	if c == nil {
		return
	}
	c.sweepRuns.Inc()
	c.stuckDeployments.Add(float64(stuck))
}
