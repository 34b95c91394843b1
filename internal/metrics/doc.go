// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Build Metrics:
  - cinecorr_build_duration_seconds: Build stage latency (histogram)
    Labels: stage (load, matrix, similarity, popularity, total)
  - cinecorr_builds_total: Finished builds (counter)
    Labels: outcome (success, error, canceled)
  - cinecorr_malformed_ratings_total: Rejected rating records (counter)
    Labels: stage (load, matrix), reason
  - cinecorr_snapshot_version, cinecorr_snapshot_titles,
    cinecorr_snapshot_users, cinecorr_snapshot_defined_pairs (gauges)

Query Metrics:
  - cinecorr_queries_total: Queries (counter)
    Labels: outcome (success, unknown_title, not_ready, error)
  - cinecorr_query_duration_seconds: Query latency (histogram)
  - cinecorr_query_cache_hits_total, cinecorr_query_cache_misses_total (counters)

HTTP Metrics:
  - api_requests_total: Requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint

# Usage

	metrics.RecordBuildStage("similarity", time.Since(start))
	metrics.RecordQuery("success", time.Since(start))

All collectors register with the default registry through promauto.
*/
package metrics
