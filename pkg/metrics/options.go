package metrics

import (
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager before its collectors are registered.
type Option func(*Manager)

// WithNamespace prefixes every metric name. Empty keeps "cardwatch".
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the middle name segment. Empty keeps "discipline".
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHTTPBuckets replaces the request latency buckets, in milliseconds.
// Unsorted or empty bucket lists are ignored.
func WithHTTPBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if validBuckets(buckets) {
			m.httpBuckets = slices.Clone(buckets)
		}
	}
}

// WithStoreBuckets replaces the store query latency buckets, in milliseconds.
// Unsorted or empty bucket lists are ignored.
func WithStoreBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if validBuckets(buckets) {
			m.storeBuckets = slices.Clone(buckets)
		}
	}
}

// WithMetricsEnabled turns recording on or off. Collectors stay registered.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) { m.enabled = enabled }
}

// WithConstLabels attaches labels to every collector, e.g. the league name.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.constLabels = prometheus.Labels(maps.Clone(labels))
		}
	}
}

// WithPrometheusRegistry registers collectors with r instead of the default
// registerer.
func WithPrometheusRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

func validBuckets(b []float64) bool {
	return len(b) > 0 && slices.IsSorted(b)
}
