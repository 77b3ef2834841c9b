package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finder_backend_requests_total",
			Help: "Requests sent to the restaurant backend",
		},
		[]string{"endpoint", "outcome"},
	)

	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finder_backend_request_duration_seconds",
			Help:    "Latency of restaurant backend requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	StaleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finder_stale_responses_total",
			Help: "Backend responses dropped because a newer request superseded them",
		},
		[]string{"kind"},
	)

	DebouncedQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "finder_debounced_queries_total",
			Help: "Search queries issued after the debounce window elapsed",
		},
	)

	SuggestionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finder_suggestion_cache_lookups_total",
			Help: "Suggestion cache lookups by result",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "finder_active_sessions",
			Help: "Visitor sessions currently held in memory",
		},
	)
)
