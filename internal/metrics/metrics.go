package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_workbench_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdf_workbench_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdf_workbench_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Thumbnail cache metrics
var (
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdf_workbench_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdf_workbench_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_workbench_thumbnail_cache_evictions_total",
			Help: "Total number of thumbnail cache evictions",
		},
		[]string{"reason"}, // "expired", "capacity"
	)

	CacheOversized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdf_workbench_thumbnail_cache_oversized_total",
			Help: "Entries stored despite exceeding the configured capacity",
		},
	)

	CacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdf_workbench_thumbnail_cache_size_bytes",
			Help: "Estimated bytes currently held by the thumbnail cache",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdf_workbench_thumbnail_cache_entries",
			Help: "Number of entries currently in the thumbnail cache",
		},
	)
)

// Thumbnail rendering metrics
var (
	ThumbnailsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_workbench_thumbnails_rendered_total",
			Help: "Total number of thumbnails rendered",
		},
		[]string{"status"}, // "success", "error"
	)

	ThumbnailRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdf_workbench_thumbnail_render_duration_seconds",
			Help:    "Thumbnail render duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

// Processing metrics
var (
	OperationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_workbench_operations_dispatched_total",
			Help: "Total number of operations dispatched to the processing worker",
		},
		[]string{"operation"}, // "merge", "extract"
	)

	OperationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_workbench_operations_completed_total",
			Help: "Total number of processing operations by outcome",
		},
		[]string{"operation", "status"}, // status: "success", "error", "cancelled"
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdf_workbench_operation_duration_seconds",
			Help:    "Processing operation duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	OperationProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdf_workbench_operation_progress_percent",
			Help: "Progress of the most recent processing operation (0-100)",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_workbench_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdf_workbench_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DocumentsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdf_workbench_documents_stored",
			Help: "Number of documents currently stored",
		},
	)
)
