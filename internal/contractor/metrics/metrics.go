package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contractor reconciliation module.
// All record/observe helpers are nil-safe so wiring metrics stays optional
// in tests.
type Metrics struct {
	ReconcileOutcomes  *prometheus.CounterVec
	ReconcileFailures  *prometheus.CounterVec
	ReconcileDuration  prometheus.Histogram
	FetchDuration      *prometheus.HistogramVec
	FetchFailures      *prometheus.CounterVec
	RowCacheHits       *prometheus.CounterVec
	RowCacheMisses     *prometheus.CounterVec
	EventPublishErrors prometheus.Counter
}

// New creates a Metrics instance with all module metrics registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		ReconcileOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pankas_reconcile_outcomes_total",
			Help: "Reconciliations by outcome tag (created, loadedExisting, refreshed)",
		}, []string{"outcome"}),
		ReconcileFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pankas_reconcile_failures_total",
			Help: "Reconciliations that surfaced a failure to the caller, by error code",
		}, []string{"code"}),
		ReconcileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pankas_reconcile_duration_seconds",
			Help:    "End-to-end reconciliation duration",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pankas_registry_fetch_duration_seconds",
			Help:    "Duration of external registry fetches (including retries)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"registry"}),
		FetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pankas_registry_fetch_failures_total",
			Help: "Registry fetches that failed after retries, by registry",
		}, []string{"registry"}),
		RowCacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pankas_row_cache_hits_total",
			Help: "Raw-row cache hits by registry",
		}, []string{"registry"}),
		RowCacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pankas_row_cache_misses_total",
			Help: "Raw-row cache misses by registry",
		}, []string{"registry"}),
		EventPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pankas_event_publish_errors_total",
			Help: "Outcome events that failed to publish",
		}),
	}
}

// RecordOutcome counts a completed reconciliation by its outcome tag.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ReconcileOutcomes.WithLabelValues(outcome).Inc()
}

// RecordFailure counts a caller-visible reconciliation failure.
func (m *Metrics) RecordFailure(code string) {
	if m == nil {
		return
	}
	m.ReconcileFailures.WithLabelValues(code).Inc()
}

// ObserveReconcile records the duration of a reconciliation. Call with
// time.Now() captured at the start.
func (m *Metrics) ObserveReconcile(start time.Time) {
	if m == nil {
		return
	}
	m.ReconcileDuration.Observe(time.Since(start).Seconds())
}

// ObserveFetch records the duration of a registry fetch.
func (m *Metrics) ObserveFetch(registry string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(registry).Observe(d.Seconds())
}

// RecordFetchFailure counts a registry fetch that failed after retries.
func (m *Metrics) RecordFetchFailure(registry string) {
	if m == nil {
		return
	}
	m.FetchFailures.WithLabelValues(registry).Inc()
}

// RecordRowCacheHit counts a raw-row cache hit.
func (m *Metrics) RecordRowCacheHit(registry string) {
	if m == nil {
		return
	}
	m.RowCacheHits.WithLabelValues(registry).Inc()
}

// RecordRowCacheMiss counts a raw-row cache miss.
func (m *Metrics) RecordRowCacheMiss(registry string) {
	if m == nil {
		return
	}
	m.RowCacheMisses.WithLabelValues(registry).Inc()
}

// RecordEventPublishError counts a failed outcome-event publish.
func (m *Metrics) RecordEventPublishError() {
	if m == nil {
		return
	}
	m.EventPublishErrors.Inc()
}
