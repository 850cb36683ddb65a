package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// === Lookup Metrics ===

	// LookupsTotal counts rain-webcam lookups by outcome
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_lookups_total",
			Help: "Total number of rain-webcam lookups by outcome",
		},
		[]string{"outcome"}, // pool_match, fallback_match, no_match
	)

	// LookupDuration measures end-to-end lookup latency
	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "raincam_lookup_duration_seconds",
			Help:    "Time spent finding a rainy webcam",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s to ~2min
		},
	)

	// PoolSize tracks the size of the last aggregated candidate pool
	PoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raincam_pool_size",
			Help: "Number of candidates in the last aggregated pool",
		},
	)

	// PoolCandidatesTotal counts candidates contributed per source adapter
	PoolCandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_pool_candidates_total",
			Help: "Total candidates contributed to pools by source",
		},
		[]string{"source"}, // seeds, popular, sample
	)

	// CandidatesAssessedTotal counts candidates evaluated during pool scans
	CandidatesAssessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raincam_candidates_assessed_total",
			Help: "Total candidates evaluated against the rain predicate",
		},
	)

	// FallbackProbesTotal counts randomized fallback probe attempts
	FallbackProbesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raincam_fallback_probes_total",
			Help: "Total randomized coordinate probes during fallback search",
		},
	)

	// === Weather Oracle Metrics ===

	// WeatherRequestsTotal counts upstream weather lookups by status
	WeatherRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_weather_requests_total",
			Help: "Total upstream weather requests by status",
		},
		[]string{"status"}, // ok, error
	)

	// WeatherCacheHitsTotal counts assessment cache hits
	WeatherCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raincam_weather_cache_hits_total",
			Help: "Total assessment cache hits",
		},
	)

	// WeatherCacheMissesTotal counts assessment cache misses
	WeatherCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "raincam_weather_cache_misses_total",
			Help: "Total assessment cache misses",
		},
	)

	// WeatherCacheEntries tracks the size of the assessment cache
	WeatherCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raincam_weather_cache_entries",
			Help: "Number of entries in the assessment cache",
		},
	)

	// === Camera Directory Metrics ===

	// DirectoryRequestsTotal counts webcam directory requests
	DirectoryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_directory_requests_total",
			Help: "Total webcam directory requests by endpoint and status",
		},
		[]string{"endpoint", "status"}, // nearby/popular/page/total, ok/error
	)

	// === Image Snapshot Metrics ===

	// ImageFetchTotal counts snapshot fetches by status and origin host
	ImageFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_image_fetch_total",
			Help: "Total webcam image snapshot fetches by status and origin",
		},
		[]string{"status", "origin"}, // success/error/unchanged, origin host
	)

	// ImageFetchSizeBytes measures snapshot sizes
	ImageFetchSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "raincam_image_fetch_size_bytes",
			Help:    "Size of fetched webcam snapshots in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to 4MB
		},
	)

	// === HTTP Metrics ===

	// HTTPRequestDuration measures HTTP request latency by path
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "raincam_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsTotal counts HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks active HTTP requests
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raincam_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// CacheHits tracks HTTP cache hits by path
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_http_cache_hits_total",
			Help: "Total number of HTTP cache hits (304 Not Modified responses)",
		},
		[]string{"path"},
	)

	// PageViewsTotal tracks page views by page
	PageViewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_page_views_total",
			Help: "Total page views by page",
		},
		[]string{"page"},
	)

	// ErrorsByType tracks application errors by type
	ErrorsByType = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raincam_errors_total",
			Help: "Total number of application errors by type",
		},
		[]string{"error_type"},
	)

	// MemoryUsageBytes tracks application memory usage
	MemoryUsageBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raincam_memory_usage_bytes",
			Help: "Application memory usage in bytes",
		},
	)
)
