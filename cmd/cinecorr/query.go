// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cinecorr/internal/recommend"
)

func newRecommendCmd(a *app) *cobra.Command {
	var (
		req    recommend.Request
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the movies most correlated with a title",
		Example: `  cinecorr recommend --title "Heat (1995)"
  cinecorr recommend --title "Hamlet (1990) [#1411]" --limit 20 --min-count 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := engine.Recommend(cmd.Context(), req)
			if err != nil {
				var unknown *recommend.UnknownTitleError
				if errors.As(err, &unknown) && len(unknown.Candidates) > 0 {
					_ = renderTitles(cmd.ErrOrStderr(), unknown.Candidates)
				}
				return err
			}

			if asJSON {
				return renderJSON(cmd.OutOrStdout(), resp)
			}
			return renderRecommendations(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "movie title or label to find neighbours for")
	cmd.Flags().IntVarP(&req.Limit, "limit", "n", 0, "number of rows (default from config)")
	cmd.Flags().IntVar(&req.MinRatingCount, "min-count", 0, "skip movies rated fewer times than this")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTitlesCmd(a *app) *cobra.Command {
	var (
		sample int
		seed   int64
		prefix string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "titles",
		Short: "Print catalog titles, all, a seeded random sample, or prefix completions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			var titles []string
			if cmd.Flags().Changed("prefix") {
				titles, err = engine.Search(prefix, limit)
			} else {
				titles, err = engine.Titles(sample, seed)
			}
			if err != nil {
				return err
			}
			return renderTitles(cmd.OutOrStdout(), titles)
		},
	}

	cmd.Flags().IntVar(&sample, "sample", 0, "print this many random titles instead of all")
	cmd.Flags().Int64Var(&seed, "seed", 0, "sampling seed (default from config)")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "complete titles starting with this prefix, most rated first")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum completions (default from config)")
	cmd.MarkFlagsMutuallyExclusive("prefix", "sample")
	return cmd
}
