// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinecorr/internal/api"
	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/movielens"
	"github.com/tomtom215/cinecorr/internal/recommend"
	"github.com/tomtom215/cinecorr/internal/supervisor"
	"github.com/tomtom215/cinecorr/internal/supervisor/services"
	ws "github.com/tomtom215/cinecorr/internal/websocket"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations over HTTP",
		Long: "Serve runs the HTTP API and the rebuild service under a supervisor tree. " +
			"The first snapshot is built in the background; /health answers 503 until it is published.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logging.Info().
		Str("addr", cfg.Addr()).
		Str("reader", cfg.Data.Reader).
		Str("ratings", cfg.Data.RatingsPath).
		Str("movies", cfg.Data.MoviesPath).
		Msg("Starting Cinecorr with supervisor tree")

	src, err := a.source()
	if err != nil {
		return err
	}
	if cfg.Data.BreakerFailures > 0 {
		src = movielens.NewBreakerSource(src, movielens.BreakerConfig{
			MaxFailures: uint32(cfg.Data.BreakerFailures), //nolint:gosec // validated non-negative
			Cooldown:    cfg.Data.BreakerCooldown,
		})
	}
	engine, err := recommend.NewEngine(cfg.EngineConfig(), logging.WithComponent("engine"))
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	rebuild := services.NewRebuildService(engine, src, services.RebuildServiceConfig{
		Interval:     cfg.Data.RefreshInterval,
		BuildTimeout: cfg.Data.BuildTimeout,
	}, logging.WithComponent("supervisor"))
	tree.AddDataService(rebuild)

	hub := ws.NewHub()
	rebuild.Notify(hub)
	tree.AddAPIService(services.NewWebSocketHubService(hub))

	handler := api.NewHandler(engine, rebuild)
	handler.EnableEvents(hub, cfg.API.CORSOrigins)

	router := api.NewRouter(handler, api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.API.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.API.RateLimitRequests,
		RateLimitWindow:    cfg.API.RateLimitWindow,
	})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("supervisor")))

	logging.Info().Msg("Supervisor tree starting")
	err = tree.Serve(ctx)

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop within timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Cinecorr stopped")
	return nil
}
