package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Snapshot cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Snapshot load metrics
	SnapshotRecords       prometheus.Gauge
	SnapshotLoadsTotal    *prometheus.CounterVec
	SnapshotLoadDuration  *prometheus.HistogramVec
	SnapshotPublishedUnix prometheus.Gauge

	// Engine metrics
	QueryDurationSeconds *prometheus.HistogramVec
	QueryResults         *prometheus.HistogramVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Snapshot cache metrics
		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ntpu_snapshot_cache_hits_total",
				Help: "Total number of snapshot view cache hits by view",
			},
			[]string{"view"}, // view: latest, period
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ntpu_snapshot_cache_misses_total",
				Help: "Total number of snapshot view cache misses by view",
			},
			[]string{"view"},
		),

		// Snapshot load metrics
		SnapshotRecords: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "ntpu_snapshot_records",
				Help: "Number of course records in the published snapshot",
			},
		),

		SnapshotLoadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ntpu_snapshot_loads_total",
				Help: "Total number of snapshot loads by source and status",
			},
			[]string{"source", "status"}, // source: csv, zstd, sqlite, r2; status: success, error, unchanged
		),

		SnapshotLoadDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ntpu_snapshot_load_duration_seconds",
				Help:    "Snapshot load duration in seconds by source",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"source"},
		),

		SnapshotPublishedUnix: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "ntpu_snapshot_published_timestamp_seconds",
				Help: "Unix time the current snapshot was published",
			},
		),

		// Engine metrics
		QueryDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ntpu_query_duration_seconds",
				Help:    "Engine operation duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}, // In-memory scans
			},
			[]string{"operation"}, // operation: search, by_class, recommend, history, stats, ...
		),

		QueryResults: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ntpu_query_results",
				Help:    "Number of records returned per engine operation",
				Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000},
			},
			[]string{"operation"},
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ntpu_http_errors_total",
				Help: "Total HTTP errors by type and operation",
			},
			[]string{"error_type", "operation"}, // error_type: not_found, invalid_input, internal
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ntpu_singleflight_dedup_total",
				Help: "Total number of deduplicated view computations (callers that waited instead of executing)",
			},
			[]string{"view"},
		),
	}

	return m
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(view string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(view).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(view string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(view).Inc()
}

// RecordSnapshotLoad records a snapshot load attempt
func (m *Metrics) RecordSnapshotLoad(source, status string, duration float64) {
	if m == nil {
		return
	}
	m.SnapshotLoadsTotal.WithLabelValues(source, status).Inc()
	m.SnapshotLoadDuration.WithLabelValues(source).Observe(duration)
}

// RecordSnapshotPublished records the size and time of a newly published snapshot
func (m *Metrics) RecordSnapshotPublished(records int, unixSeconds float64) {
	if m == nil {
		return
	}
	m.SnapshotRecords.Set(float64(records))
	m.SnapshotPublishedUnix.Set(unixSeconds)
}

// RecordQuery records an engine operation
func (m *Metrics) RecordQuery(operation string, results int, duration float64) {
	if m == nil {
		return
	}
	m.QueryDurationSeconds.WithLabelValues(operation).Observe(duration)
	m.QueryResults.WithLabelValues(operation).Observe(float64(results))
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, operation string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType, operation).Inc()
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(view string) {
	if m == nil {
		return
	}
	m.SingleflightDedupTotal.WithLabelValues(view).Inc()
}
