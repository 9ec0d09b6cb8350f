// Package metrics provides Prometheus metrics collection for creditwatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for creditwatch.
type Collector struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Adapter metrics
	AdapterFetches  *prometheus.CounterVec
	AdapterFallback *prometheus.CounterVec

	// Alert metrics
	AlertsGenerated *prometheus.CounterVec

	// Snapshot job metrics
	SnapshotRuns     prometheus.Counter
	SnapshotFailures prometheus.Counter
	SnapshotServices prometheus.Gauge
}

// New creates a new metrics collector with all metrics registered.
func New() *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "creditwatch",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "creditwatch",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path", "status"},
		),

		AdapterFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "creditwatch",
				Name:      "adapter_fetches_total",
				Help:      "Total number of upstream credit/usage fetches",
			},
			[]string{"provider", "outcome"},
		),
		AdapterFallback: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "creditwatch",
				Name:      "adapter_fallbacks_total",
				Help:      "Total number of fetches degraded to a fallback constant",
			},
			[]string{"provider", "reason"},
		),

		AlertsGenerated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "creditwatch",
				Name:      "alerts_generated_total",
				Help:      "Total number of alerts emitted, by severity",
			},
			[]string{"severity"},
		),

		SnapshotRuns: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "creditwatch",
				Name:      "snapshot_runs_total",
				Help:      "Total number of spend snapshot job runs",
			},
		),
		SnapshotFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "creditwatch",
				Name:      "snapshot_failures_total",
				Help:      "Total number of failed spend snapshot job runs",
			},
		),
		SnapshotServices: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "creditwatch",
				Name:      "snapshot_services",
				Help:      "Number of service rows written by the last snapshot",
			},
		),
	}
}

// RecordFetch counts an adapter fetch outcome.
func (c *Collector) RecordFetch(provider string, fallback bool, reason string) {
	if c == nil {
		return
	}
	outcome := "live"
	if fallback {
		outcome = "fallback"
		c.AdapterFallback.WithLabelValues(provider, reason).Inc()
	}
	c.AdapterFetches.WithLabelValues(provider, outcome).Inc()
}

// RecordAlerts counts generated alerts by severity.
func (c *Collector) RecordAlerts(severities map[string]int) {
	if c == nil {
		return
	}
	for severity, n := range severities {
		c.AlertsGenerated.WithLabelValues(severity).Add(float64(n))
	}
}
