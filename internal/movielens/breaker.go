// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package movielens

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/metrics"
	"github.com/tomtom215/cinecorr/internal/recommend"
)

// ErrSourceUnavailable is returned while the breaker rejects loads.
var ErrSourceUnavailable = errors.New("data source unavailable")

// BreakerConfig configures BreakerSource.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failed loads that opens
	// the breaker.
	// Default: 3
	MaxFailures uint32

	// Cooldown is how long the breaker stays open before one trial load
	// is let through.
	// Default: 5m
	Cooldown time.Duration
}

// BreakerSource guards a Source with a circuit breaker. After
// MaxFailures consecutive failed loads it rejects loads for Cooldown,
// so a broken file is not re-parsed on every trigger. Fingerprint and
// Name pass through unguarded.
type BreakerSource struct {
	Source
	cb *gobreaker.CircuitBreaker[*recommend.RatingStore]
}

// NewBreakerSource wraps src.
func NewBreakerSource(src Source, cfg BreakerConfig) *BreakerSource {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}

	name := src.Name()
	metrics.SourceBreakerState.WithLabelValues(name).Set(stateValue(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[*recommend.RatingStore](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// A canceled load says nothing about the files.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("source", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("source breaker state change")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), stateValue(to))
		},
	})

	return &BreakerSource{Source: src, cb: cb}
}

// LoadRatingStore loads through the breaker.
func (s *BreakerSource) LoadRatingStore(ctx context.Context) (*recommend.RatingStore, error) {
	store, err := s.cb.Execute(func() (*recommend.RatingStore, error) {
		return s.Source.LoadRatingStore(ctx)
	})

	switch {
	case err == nil:
		metrics.RecordSourceLoad(s.Name(), "success")
		return store, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordSourceLoad(s.Name(), "rejected")
		return nil, fmt.Errorf("%w: %s breaker is %s", ErrSourceUnavailable, s.Name(), s.cb.State())
	default:
		metrics.RecordSourceLoad(s.Name(), "failure")
		return nil, err
	}
}

// State returns the breaker state: closed, half-open or open.
func (s *BreakerSource) State() string {
	return s.cb.State().String()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
