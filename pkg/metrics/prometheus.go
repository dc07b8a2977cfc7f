package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultStoreBuckets are tuned for local SQLite reads, in milliseconds.
var defaultStoreBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500}

// Manager owns the engine's Prometheus collectors.
type Manager struct {
	namespace    string
	subsystem    string
	httpBuckets  []float64
	storeBuckets []float64
	enabled      bool
	constLabels  prometheus.Labels
	registry     prometheus.Registerer

	// Engine
	evaluations  *prometheus.CounterVec
	triggers     *prometheus.CounterVec
	unserved     prometheus.Counter
	nonCompliant prometheus.Counter
	rankingRows  *prometheus.GaugeVec

	// Store
	storeErrors       *prometheus.CounterVec
	storeQueryLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// globalManager backs the package-level helpers.
var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics singleton

// customRegistry keeps default Go collectors out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    "cardwatch",
		subsystem:    "discipline",
		httpBuckets:  prometheus.DefBuckets,
		storeBuckets: defaultStoreBuckets,
		enabled:      true,
		registry:     prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.evaluations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "evaluations_total",
		Help:        "Engine evaluations by operation",
		ConstLabels: m.constLabels,
	}, []string{"operation"})

	m.triggers = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "suspension_triggers_total",
		Help:        "Suspension triggers found during reconciliation, by rule",
		ConstLabels: m.constLabels,
	}, []string{"rule"})

	m.unserved = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unserved_suspensions_total",
		Help:        "Unserved suspensions reported by reconciliation",
		ConstLabels: m.constLabels,
	})

	m.nonCompliant = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "noncompliant_reports_total",
		Help:        "Compliance reports with at least one unserved suspension",
		ConstLabels: m.constLabels,
	})

	m.rankingRows = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "ranking_rows",
		Help:        "Rows in the most recent ranking, by kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "errors_total",
		Help:        "Event store failures by operation",
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.storeQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "query_duration_milliseconds",
		Help:        "Event store query latency in milliseconds",
		Buckets:     m.storeBuckets,
		ConstLabels: m.constLabels,
	}, []string{"op"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "HTTP requests by endpoint, method and status",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.httpBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordEvaluation counts one engine operation.
func (m *Manager) RecordEvaluation(operation string) {
	if m.enabled {
		m.evaluations.WithLabelValues(operation).Inc()
	}
}

// RecordTrigger counts one suspension trigger under rule.
func (m *Manager) RecordTrigger(rule string) {
	if m.enabled {
		m.triggers.WithLabelValues(rule).Inc()
	}
}

// RecordUnserved adds n unserved suspensions; a positive n also counts a
// non-compliant report.
func (m *Manager) RecordUnserved(n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.unserved.Add(float64(n))
	m.nonCompliant.Inc()
}

// UpdateRankingSize sets the row count of the last ranking of kind.
func (m *Manager) UpdateRankingSize(kind string, n int) {
	if m.enabled {
		m.rankingRows.WithLabelValues(kind).Set(float64(n))
	}
}

// RecordStoreError counts one store failure.
func (m *Manager) RecordStoreError(op string) {
	if m.enabled {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}

// RecordStoreQueryLatency observes one store query.
func (m *Manager) RecordStoreQueryLatency(op string, latencyMs float64) {
	if m.enabled {
		m.storeQueryLatency.WithLabelValues(op).Observe(latencyMs)
	}
}

// RecordHTTPRequest counts one HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method string, status int) {
	if m.enabled {
		m.httpRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	}
}

// RecordHTTPRequestDuration observes one HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method string, status int, durationMs float64) {
	if m.enabled {
		m.httpRequestDuration.WithLabelValues(endpoint, method, strconv.Itoa(status)).Observe(durationMs)
	}
}

// Package-level helpers delegate to the global manager.

// RecordEvaluation counts one engine operation.
func RecordEvaluation(operation string) { globalManager.RecordEvaluation(operation) }

// RecordTrigger counts one suspension trigger under rule.
func RecordTrigger(rule string) { globalManager.RecordTrigger(rule) }

// RecordUnserved adds n unserved suspensions.
func RecordUnserved(n int) { globalManager.RecordUnserved(n) }

// UpdateRankingSize sets the row count of the last ranking of kind.
func UpdateRankingSize(kind string, n int) { globalManager.UpdateRankingSize(kind, n) }

// RecordStoreError counts one store failure.
func RecordStoreError(op string) { globalManager.RecordStoreError(op) }

// RecordStoreQueryLatency observes one store query in milliseconds.
func RecordStoreQueryLatency(op string, latencyMs float64) {
	globalManager.RecordStoreQueryLatency(op, latencyMs)
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method string, status int) {
	globalManager.RecordHTTPRequest(endpoint, method, status)
}

// RecordHTTPRequestDuration observes one HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method string, status int, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, status, durationMs)
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
