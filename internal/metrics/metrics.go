// Package metrics exposes Prometheus metrics for scheduling and checking.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	sourcesScheduled *prometheus.CounterVec
	immediateChecks  prometheus.Counter
	schedulingErrors prometheus.Counter
	checkDuration    *prometheus.HistogramVec
	queueDepth       *prometheus.GaugeVec
}

// New registers the service collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		sourcesScheduled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "discovery_sources_scheduled_total",
			Help: "Number of source check jobs enqueued by scheduling passes, per tier.",
		}, []string{"tier"}),
		immediateChecks: factory.NewCounter(prometheus.CounterOpts{
			Name: "discovery_immediate_checks_total",
			Help: "Number of on-demand source checks enqueued.",
		}),
		schedulingErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "discovery_scheduling_errors_total",
			Help: "Number of scheduling passes aborted by an error.",
		}),
		checkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discovery_check_duration_seconds",
			Help:    "Duration of source checks, by outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		queueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "discovery_queue_depth",
			Help: "Current job counts per tier queue and state.",
		}, []string{"tier", "state"}),
	}
}

// RecordScheduled counts jobs enqueued for a tier during a scheduling pass.
func (m *Metrics) RecordScheduled(tier string, count int) {
	if m == nil {
		return
	}
	m.sourcesScheduled.WithLabelValues(tier).Add(float64(count))
}

// RecordImmediateCheck counts one on-demand check.
func (m *Metrics) RecordImmediateCheck() {
	if m == nil {
		return
	}
	m.immediateChecks.Inc()
}

// RecordSchedulingError counts one aborted scheduling pass.
func (m *Metrics) RecordSchedulingError() {
	if m == nil {
		return
	}
	m.schedulingErrors.Inc()
}

// ObserveCheckDuration records how long a source check took.
func (m *Metrics) ObserveCheckDuration(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.checkDuration.WithLabelValues(status).Observe(d.Seconds())
}

// SetQueueDepth records a queue counter snapshot.
func (m *Metrics) SetQueueDepth(tier, state string, count int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(tier, state).Set(float64(count))
}
