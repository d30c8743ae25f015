// Package metrics defines the Prometheus collectors used across the engine
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the engine. Collectors are
// registered on a private registry so multiple instances (one per test, for
// example) never collide.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       prometheus.Histogram
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	DocsIndexedTotal    prometheus.Counter
	IndexSize           *prometheus.GaugeVec
	StoredDocuments     prometheus.Gauge
}

// New creates and registers all engine metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by outcome (hits, empty).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "query_cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "documents_indexed_total",
				Help: "Total documents indexed.",
			},
		),
		IndexSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "term_index_size",
				Help: "Number of distinct terms per index.",
			},
			[]string{"index"},
		),
		StoredDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stored_documents",
				Help: "Number of articles in the document store.",
			},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocsIndexedTotal,
		m.IndexSize,
		m.StoredDocuments,
	)

	return m
}

// Handler returns the Prometheus scrape handler for this instance's
// registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
