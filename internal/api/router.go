// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

// Package api serves the recommendation engine over HTTP using the chi
// router.
//
// Routes:
//
//	GET  /health                   200 once a snapshot is published, 503 before
//	GET  /metrics                  Prometheus exposition
//	GET  /ws                       snapshot events over websocket
//	GET  /api/v1/recommendations   ?title=&limit=&min_count=
//	GET  /api/v1/titles            ?sample=&seed= or ?prefix=&limit=
//	GET  /api/v1/status
//	POST /api/v1/rebuild
//
// Every /api/v1 response uses the models.APIResponse envelope.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/cinecorr/internal/middleware"
)

// NewRouter wires the handlers and middleware.
func NewRouter(h *Handler, cfg MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(cfg)) // global so OPTIONS preflight reaches it

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", h.Events) // outside /api/v1: the gzip writer cannot hijack

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg))
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Compression)

		r.Get("/recommendations", h.Recommendations)
		r.Get("/titles", h.Titles)
		r.Get("/status", h.Status)
		r.Post("/rebuild", h.Rebuild)
	})

	return r
}
