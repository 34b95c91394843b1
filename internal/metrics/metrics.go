// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Build Metrics
	BuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinecorr_build_duration_seconds",
			Help:    "Duration of snapshot build stages in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"stage"}, // "load", "matrix", "similarity", "popularity", "total"
	)

	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecorr_builds_total",
			Help: "Total number of snapshot builds by outcome",
		},
		[]string{"outcome"}, // "success", "error", "canceled"
	)

	MalformedRatings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecorr_malformed_ratings_total",
			Help: "Total number of rating records rejected and skipped",
		},
		[]string{"stage", "reason"},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinecorr_snapshot_version",
			Help: "Version of the published recommendation snapshot",
		},
	)

	SnapshotTitles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinecorr_snapshot_titles",
			Help: "Number of rated titles in the published snapshot",
		},
	)

	SnapshotUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinecorr_snapshot_users",
			Help: "Number of users in the published snapshot",
		},
	)

	SnapshotPairs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinecorr_snapshot_defined_pairs",
			Help: "Number of title pairs with a defined correlation",
		},
	)

	// Query Metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecorr_queries_total",
			Help: "Total number of recommendation queries by outcome",
		},
		[]string{"outcome"}, // "success", "unknown_title", "not_ready", "error"
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinecorr_query_duration_seconds",
			Help:    "Recommendation query latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	QueryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinecorr_query_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	QueryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinecorr_query_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Source circuit breaker
	SourceBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinecorr_source_breaker_state",
			Help: "Data source circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"source"},
	)

	SourceLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecorr_source_loads_total",
			Help: "Data source loads through the circuit breaker",
		},
		[]string{"source", "result"}, // success, failure, rejected
	)

	SourceBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinecorr_source_breaker_transitions_total",
			Help: "Data source circuit breaker state transitions",
		},
		[]string{"source", "from_state", "to_state"},
	)

	// WebSocket
	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinecorr_ws_clients",
			Help: "Connected snapshot event subscribers",
		},
	)

	WSEventsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinecorr_ws_events_sent_total",
			Help: "Snapshot events delivered to subscribers",
		},
	)

	WSEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinecorr_ws_events_dropped_total",
			Help: "Snapshot events dropped for slow subscribers",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordBuildStage records the duration of one build stage.
func RecordBuildStage(stage string, duration time.Duration) {
	BuildDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordBuild records a finished build.
func RecordBuild(outcome string, duration time.Duration) {
	BuildsTotal.WithLabelValues(outcome).Inc()
	RecordBuildStage("total", duration)
}

// RecordMalformed adds rejected records of one stage, keyed by reason.
func RecordMalformed(stage string, byReason map[string]int) {
	for reason, n := range byReason {
		MalformedRatings.WithLabelValues(stage, reason).Add(float64(n))
	}
}

// UpdateSnapshot publishes the gauges of a newly published snapshot.
func UpdateSnapshot(version int64, titles, users, pairs int) {
	SnapshotVersion.Set(float64(version))
	SnapshotTitles.Set(float64(titles))
	SnapshotUsers.Set(float64(users))
	SnapshotPairs.Set(float64(pairs))
}

// RecordQuery records a recommendation query.
func RecordQuery(outcome string, duration time.Duration) {
	QueriesTotal.WithLabelValues(outcome).Inc()
	QueryDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a result cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		QueryCacheHits.Inc()
	} else {
		QueryCacheMisses.Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordSourceLoad records a load attempt through the source breaker.
func RecordSourceLoad(source, result string) {
	SourceLoadsTotal.WithLabelValues(source, result).Inc()
}

// RecordBreakerTransition records a breaker state change. state values
// follow SourceBreakerState.
func RecordBreakerTransition(source, from, to string, state float64) {
	SourceBreakerState.WithLabelValues(source).Set(state)
	SourceBreakerTransitions.WithLabelValues(source, from, to).Inc()
}
