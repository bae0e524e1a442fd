// Package metrics is the ambient Prometheus instrumentation layer: cache
// tier hit/miss counters, rate-limiter throttling, connector latency, and
// batch-run duration. It exposes no HTTP surface of its own — spec.md's
// Non-goals exclude a metrics/observability API.
//
// Grounded on the teacher's internal/interfaces/http.MetricsRegistry
// (struct of typed collectors registered together, helper methods per
// concern), adapted to use a private prometheus.Registry per instance
// rather than the default global one so tests can construct independent
// registries without hitting duplicate-registration panics.
package metrics

import (
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every collector the screening engine emits.
type Registry struct {
	reg *prometheus.Registry

	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	CacheEvictions prometheus.Counter
	CacheHitRatio  prometheus.Gauge

	RateLimitWaits    *prometheus.CounterVec
	RateLimitExceeded *prometheus.CounterVec

	ConnectorLatency *prometheus.HistogramVec
	ConnectorErrors  *prometheus.CounterVec

	BatchDuration   prometheus.Histogram
	BatchSubmarkets *prometheus.CounterVec
}

// New builds and registers a fresh metrics registry.
func New() *Registry {
	reg := prometheus.NewRegistry()
	m := &Registry{
		reg: reg,
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submarket_screen_cache_hits_total",
			Help: "Cache hits by tier (hot, warm, cold)",
		}, []string{"tier"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submarket_screen_cache_misses_total",
			Help: "Cache misses by tier (hot, warm, cold)",
		}, []string{"tier"}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submarket_screen_cache_evictions_total",
			Help: "Hot-tier evictions due to byte-budget enforcement",
		}),
		CacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "submarket_screen_cache_hit_ratio",
			Help: "Combined hot+warm cache hit ratio for the most recent run",
		}),
		RateLimitWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submarket_screen_ratelimit_waits_total",
			Help: "Calls that blocked on a per-source rate limiter",
		}, []string{"source"}),
		RateLimitExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submarket_screen_ratelimit_exceeded_total",
			Help: "Calls rejected due to an exhausted daily quota",
		}, []string{"source"}),
		ConnectorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "submarket_screen_connector_fetch_seconds",
			Help:    "Connector Fetch() duration",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"source"}),
		ConnectorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submarket_screen_connector_errors_total",
			Help: "Connector Fetch/Parse/Validate failures by source and error kind",
		}, []string{"source", "kind"}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "submarket_screen_batch_duration_seconds",
			Help:    "Wall-clock duration of a full scoring batch run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		BatchSubmarkets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submarket_screen_batch_submarkets_total",
			Help: "Submarkets processed by a batch run, by outcome status",
		}, []string{"status"}),
	}
	reg.MustRegister(
		m.CacheHits, m.CacheMisses, m.CacheEvictions, m.CacheHitRatio,
		m.RateLimitWaits, m.RateLimitExceeded,
		m.ConnectorLatency, m.ConnectorErrors,
		m.BatchDuration, m.BatchSubmarkets,
	)
	return m
}

// Gather returns the current metric families in the registry, for a
// caller that wants to write them out itself (e.g. to a file or a
// collaborator-owned HTTP server). The core exposes no HTTP handler of
// its own.
func (m *Registry) Gather() ([]*dto.MetricFamily, error) {
	return m.reg.Gather()
}

// RecordCacheHit increments the hit counter for tier ("hot", "warm", "cold").
func (m *Registry) RecordCacheHit(tier string) {
	m.CacheHits.WithLabelValues(tier).Inc()
}

// RecordCacheMiss increments the miss counter for tier.
func (m *Registry) RecordCacheMiss(tier string) {
	m.CacheMisses.WithLabelValues(tier).Inc()
}

// RecordCacheEviction increments the hot-tier eviction counter.
func (m *Registry) RecordCacheEviction() {
	m.CacheEvictions.Inc()
}

// SetCacheHitRatio publishes a point-in-time combined hit ratio, typically
// taken from a RunManifest's CacheStats after a batch completes.
func (m *Registry) SetCacheHitRatio(ratio float64) {
	m.CacheHitRatio.Set(ratio)
}

// RecordRateLimitWait increments the throttled-call counter for source.
func (m *Registry) RecordRateLimitWait(source string) {
	m.RateLimitWaits.WithLabelValues(source).Inc()
}

// RecordRateLimitExceeded increments the quota-exhaustion counter for source.
func (m *Registry) RecordRateLimitExceeded(source string) {
	m.RateLimitExceeded.WithLabelValues(source).Inc()
}

// ObserveConnectorLatency records a Fetch() duration for source.
func (m *Registry) ObserveConnectorLatency(source string, d time.Duration) {
	m.ConnectorLatency.WithLabelValues(source).Observe(d.Seconds())
}

// RecordConnectorError increments the error counter for source/kind (e.g.
// "rate_limit", "network", "validation").
func (m *Registry) RecordConnectorError(source, kind string) {
	m.ConnectorErrors.WithLabelValues(source, kind).Inc()
}

// ObserveBatchDuration records a full batch run's wall-clock duration.
func (m *Registry) ObserveBatchDuration(d time.Duration) {
	m.BatchDuration.Observe(d.Seconds())
}

// RecordSubmarketOutcome increments the per-status batch counter (e.g.
// "success", "partial", "failed").
func (m *Registry) RecordSubmarketOutcome(status string) {
	m.BatchSubmarkets.WithLabelValues(status).Inc()
}
