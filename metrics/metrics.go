package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forensics_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_ai_requests_total",
			Help: "Total number of completions requested from AI providers",
		},
		[]string{"provider", "operation", "status"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forensics_ai_request_duration_seconds",
			Help:    "Latency of AI provider completions",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	ThreatIntelLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_threat_intel_lookups_total",
			Help: "Total number of reputation lookups by target type and verdict",
		},
		[]string{"type", "category"},
	)

	ThreatIntelProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_threat_intel_provider_errors_total",
			Help: "Total number of failed threat intelligence provider calls",
		},
		[]string{"provider"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"cache", "operation"},
	)

	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_rate_limit_exceeded_total",
			Help: "Total number of requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)

	EvidenceUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_evidence_uploads_total",
			Help: "Total number of evidence file uploads by outcome",
		},
		[]string{"status"},
	)

	HTTPPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forensics_http_panics_total",
			Help: "Total number of handler panics recovered",
		},
		[]string{"method", "route"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forensics_websocket_clients",
			Help: "Number of connected dashboard websocket clients",
		},
	)
)
