package telemetry

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bizconsole"

// Metrics owns a private registry with the console's collectors
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	simulatedFailures *prometheus.CounterVec

	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec
	cacheEntries       prometheus.Gauge
}

// NewMetrics creates and registers the collectors plus the Go and process collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		simulatedFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "crm", Name: "simulated_failures_total",
			Help: "Mock API calls failed on purpose by the network simulator.",
		}, []string{"operation"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tag_cache", Name: "hits_total",
			Help: "Query cache hits by endpoint.",
		}, []string{"endpoint"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tag_cache", Name: "misses_total",
			Help: "Query cache misses by endpoint.",
		}, []string{"endpoint"}),
		cacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "tag_cache", Name: "invalidated_entries_total",
			Help: "Cache entries dropped by tag invalidation, by tag type.",
		}, []string{"tag"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "tag_cache", Name: "entries",
			Help: "Entries currently cached.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.simulatedFailures,
		m.cacheHits, m.cacheMisses, m.cacheInvalidations, m.cacheEntries,
	)
	return m
}

// Registry exposes the registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RegisterDB adds connection pool statistics for db
func (m *Metrics) RegisterDB(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// ObserveHTTP records one finished request
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SimulatedFailure counts a mock API failure for operation
func (m *Metrics) SimulatedFailure(operation string) {
	m.simulatedFailures.WithLabelValues(operation).Inc()
}

// CacheHit counts a query served from cache
func (m *Metrics) CacheHit(endpoint string) { m.cacheHits.WithLabelValues(endpoint).Inc() }

// CacheMiss counts a query that went to the server
func (m *Metrics) CacheMiss(endpoint string) { m.cacheMisses.WithLabelValues(endpoint).Inc() }

// CacheInvalidated counts entries dropped for a tag type
func (m *Metrics) CacheInvalidated(tagType string, n int) {
	m.cacheInvalidations.WithLabelValues(tagType).Add(float64(n))
}

// CacheSize sets the current number of cached entries
func (m *Metrics) CacheSize(n int) { m.cacheEntries.Set(float64(n)) }
