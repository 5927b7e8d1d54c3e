// Package metrics define los colectores Prometheus del servicio de reportes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportes_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportes_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ReportGenerationTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reportes_generation_duration_seconds",
			Help:    "Report generation time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report_type", "format"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportes_cache_hits_total",
			Help: "Cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportes_cache_misses_total",
			Help: "Cache misses",
		},
		[]string{"cache_type"},
	)

	DatabaseQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reportes_database_queries_total",
			Help: "Database queries executed",
		},
		[]string{"query_type"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reportes_active_requests",
			Help: "Active requests",
		},
	)
)
