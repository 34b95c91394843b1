// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

// Package models defines the JSON envelope shared by every API endpoint.
//
// Successful responses:
//
//	{"status": "success", "data": {...}, "metadata": {"timestamp": "...", "query_time_ms": 3}}
//
// Failed responses:
//
//	{"status": "error", "data": null, "metadata": {...},
//	 "error": {"code": "UNKNOWN_TITLE", "message": "...", "details": {"reason": "not_rated"}}}
package models

import "time"

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnknownTitle = "UNKNOWN_TITLE"
	ErrCodeNotReady     = "NOT_READY"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// APIResponse is the standard response envelope.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine readable error.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the body of /health.
type HealthStatus struct {
	Status          string    `json:"status"`
	Ready           bool      `json:"ready"`
	SnapshotVersion int64     `json:"snapshot_version"`
	BuiltAt         time.Time `json:"built_at"`
	UptimeSeconds   float64   `json:"uptime_seconds"`
}

// TitleList is the body of /api/v1/titles.
type TitleList struct {
	Titles []string `json:"titles"`
	Count  int      `json:"count"`
	Sample int      `json:"sample,omitempty"`
	Seed   int64    `json:"seed,omitempty"`
	Prefix string   `json:"prefix,omitempty"`
}

// RebuildAccepted is the body of POST /api/v1/rebuild.
type RebuildAccepted struct {
	Queued          bool  `json:"queued"`
	SnapshotVersion int64 `json:"snapshot_version"`
}
