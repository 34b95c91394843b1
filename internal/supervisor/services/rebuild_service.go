// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecorr/internal/movielens"
	"github.com/tomtom215/cinecorr/internal/recommend"
)

// Rebuilder publishes a new snapshot from a data provider.
type Rebuilder interface {
	Rebuild(ctx context.Context, provider recommend.DataProvider) (*recommend.Snapshot, error)
}

// SnapshotNotifier is told about every snapshot the service publishes.
// It must not block.
type SnapshotNotifier interface {
	SnapshotPublished(snap *recommend.Snapshot, cause string)
}

// RebuildServiceConfig configures RebuildService.
type RebuildServiceConfig struct {
	// Interval between fingerprint checks. Zero disables periodic checks;
	// the service then only builds at start and on Trigger.
	Interval time.Duration

	// BuildTimeout bounds a single build.
	// Default: 30m
	BuildTimeout time.Duration
}

// RebuildService keeps the engine's snapshot in step with the source
// files. It builds once at start, then rebuilds when the source
// fingerprint changes or Trigger is called. A failed build is logged and
// the previously published snapshot keeps serving.
type RebuildService struct {
	engine  Rebuilder
	source  movielens.Source
	config  RebuildServiceConfig
	logger  zerolog.Logger
	trigger chan struct{}
	name    string

	notifiers []SnapshotNotifier

	// last is the fingerprint of the last successful build; only the
	// Serve goroutine touches it.
	last movielens.Fingerprint
}

// NewRebuildService creates a RebuildService.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRebuildService(engine Rebuilder, source movielens.Source, cfg RebuildServiceConfig, logger zerolog.Logger) *RebuildService {
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = 30 * time.Minute
	}
	return &RebuildService{
		engine:  engine,
		source:  source,
		config:  cfg,
		logger:  logger.With().Str("service", "rebuild").Str("reader", source.Name()).Logger(),
		trigger: make(chan struct{}, 1),
		name:    "rebuild-service",
	}
}

// Notify registers n for published snapshots. Call it before Serve.
func (s *RebuildService) Notify(n SnapshotNotifier) {
	s.notifiers = append(s.notifiers, n)
}

// Trigger queues a rebuild. It never blocks and reports false when a
// rebuild is already pending.
func (s *RebuildService) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Serve implements suture.Service.
func (s *RebuildService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.config.Interval).Msg("rebuild service starting")

	s.rebuild(ctx, "startup")

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("rebuild service shutting down")
			return ctx.Err()

		case <-s.trigger:
			s.rebuild(ctx, "manual")

		case <-tick:
			if s.changed() {
				s.rebuild(ctx, "source_changed")
			}
		}
	}
}

// changed reports whether the source differs from the last successful
// build. An unreadable source counts as unchanged.
func (s *RebuildService) changed() bool {
	fp, err := s.source.Fingerprint()
	if err != nil {
		s.logger.Warn().Err(err).Msg("cannot fingerprint source")
		return false
	}
	return fp != s.last
}

func (s *RebuildService) rebuild(ctx context.Context, cause string) {
	// Taken before loading so edits during the build trigger another one.
	fp, fpErr := s.source.Fingerprint()

	buildCtx, cancel := context.WithTimeout(ctx, s.config.BuildTimeout)
	defer cancel()

	start := time.Now()
	snap, err := s.engine.Rebuild(buildCtx, s.source)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error().Err(err).
			Str("cause", cause).
			Dur("duration", time.Since(start)).
			Msg("rebuild failed, keeping previous snapshot")
		return
	}

	if fpErr == nil {
		s.last = fp
	}
	s.logger.Info().
		Str("cause", cause).
		Int64("version", snap.Version).
		Dur("duration", time.Since(start)).
		Msg("rebuild complete")

	for _, n := range s.notifiers {
		n.SnapshotPublished(snap, cause)
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *RebuildService) String() string {
	return s.name
}
