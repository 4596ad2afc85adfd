// Package observability holds the Prometheus metrics exposed on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "roadcast"

// Metrics holds the Prometheus counters, histograms, and gauges for the engine.
type Metrics struct {
	// Upstream weather provider metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: operation={current,forecast}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: operation={current,forecast}

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: kind={current,comprehensive}, result={hit,miss}
	CacheEntries prometheus.Gauge

	// Warmer metrics.
	WarmerSweeps    *prometheus.CounterVec // labels: outcome={complete,partial,failed}
	WarmerLocations *prometheus.CounterVec // labels: outcome={success,error}
	WarmerDuration  prometheus.Histogram

	// Impact publishing metrics.
	ImpactsPublished prometheus.Counter
	PublishErrors    prometheus.Counter

	// Job intake metrics.
	JobsProcessed *prometheus.CounterVec // labels: job_type, outcome={ack,nack}
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Weather provider requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Weather cache lookups by query kind and result.",
		}, []string{"kind", "result"}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Entries currently held by the weather cache, including expired ones.",
		}),
		WarmerSweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warmer_sweeps_total",
			Help:      "Cache warmer sweeps by outcome.",
		}, []string{"outcome"}),
		WarmerLocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warmer_locations_total",
			Help:      "Locations refreshed by the cache warmer by outcome.",
		}, []string{"outcome"}),
		WarmerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "warmer_sweep_duration_seconds",
			Help:      "Duration of a complete cache warmer sweep.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ImpactsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impacts_published_total",
			Help:      "Impact assessments written to the impact topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impact_publish_errors_total",
			Help:      "Failed impact topic writes.",
		}),
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Pub/Sub jobs handled by type and outcome.",
		}, []string{"job_type", "outcome"}),
	}
}

// NewMetrics creates and registers all engine metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheLookups,
		m.CacheEntries,
		m.WarmerSweeps,
		m.WarmerLocations,
		m.WarmerDuration,
		m.ImpactsPublished,
		m.PublishErrors,
		m.JobsProcessed,
	}
}
