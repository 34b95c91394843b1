// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinecorr/internal/config"
	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/movielens"
	"github.com/tomtom215/cinecorr/internal/recommend"
)

// app carries state shared by subcommands once the root pre-run loaded
// the configuration.
type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "cinecorr",
		Short:         "Correlation-based movie recommendations",
		Long:          "Cinecorr ranks movies by the Pearson correlation of their user ratings with a chosen movie.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.Init(cfg.LoggingConfig())
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(newServeCmd(a), newRecommendCmd(a), newTitlesCmd(a))
	return root
}

// source builds the configured rating file reader.
func (a *app) source() (movielens.Source, error) {
	return movielens.NewSource(a.cfg.Data.Reader, a.cfg.Data.RatingsPath, a.cfg.Data.MoviesPath)
}

// loadEngine builds an engine and publishes one snapshot from the
// configured files, for the one-shot commands.
func (a *app) loadEngine(ctx context.Context) (*recommend.Engine, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	engine, err := recommend.NewEngine(a.cfg.EngineConfig(), logging.WithComponent("engine"))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Data.BuildTimeout)
	defer cancel()
	if _, err := engine.Rebuild(ctx, src); err != nil {
		return nil, fmt.Errorf("build snapshot from %s files: %w", src.Name(), err)
	}
	return engine, nil
}
