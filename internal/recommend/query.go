// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"fmt"
	"slices"
	"sort"
)

// QueryOptions refines a recommendation query.
type QueryOptions struct {
	// Limit caps the returned rows. Zero returns all rows.
	Limit int

	// MinRatingCount drops rows rated fewer times than this.
	MinRatingCount int
}

// Recommend ranks the titles correlated with target.
//
// It fails with an *UnknownTitleError when target has no row in sim.
// The genres index doubles as the catalog: a target present there but
// absent from sim was never rated (ReasonNotRated) or fell outside the
// title cap (ReasonBeyondCap). A target with a row but no defined
// neighbors yields an empty, non-nil result.
func Recommend(target string, sim *SimilarityMatrix, pop PopularityIndex, genres GenreIndex) ([]Recommendation, error) {
	recs, _, err := RecommendWithOptions(target, sim, pop, genres, QueryOptions{})
	return recs, err
}

// RecommendWithOptions is Recommend with filtering and a row limit. It also
// returns the number of ranked rows before the limit was applied.
func RecommendWithOptions(target string, sim *SimilarityMatrix, pop PopularityIndex, genres GenreIndex, opts QueryOptions) ([]Recommendation, int, error) {
	if sim == nil {
		return nil, 0, fmt.Errorf("recommend %q: nil similarity matrix", target)
	}
	row, ok := sim.Row(target)
	if !ok {
		return nil, 0, unknownTarget(target, sim, genres)
	}

	recs := make([]Recommendation, 0, len(row))
	for _, n := range row {
		if n.Title == target {
			continue
		}

		rec := Recommendation{
			Title:       n.Title,
			Correlation: n.Correlation,
			Overlap:     n.Overlap,
			Genres:      []string{},
		}
		if e, ok := pop[n.Title]; ok {
			mean := e.MeanRating
			rec.MeanRating = &mean
			rec.RatingCount = e.RatingCount
		}
		if g, ok := genres[n.Title]; ok && len(g) > 0 {
			rec.Genres = slices.Clone(g)
		}

		if rec.RatingCount < opts.MinRatingCount {
			continue
		}
		recs = append(recs, rec)
	}

	Rank(recs)

	total := len(recs)
	if opts.Limit > 0 && len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	return recs, total, nil
}

// Rank orders recs by correlation descending, then rating count
// descending. The sort is stable, so rows equal on both keys keep their
// input order.
func Rank(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Correlation != recs[j].Correlation {
			return recs[i].Correlation > recs[j].Correlation
		}
		return recs[i].RatingCount > recs[j].RatingCount
	})
}

func unknownTarget(target string, sim *SimilarityMatrix, genres GenreIndex) error {
	reason := ReasonNotInCatalog
	switch {
	case sim.Knows(target):
		reason = ReasonBeyondCap
	case genres != nil && hasKey(genres, target):
		reason = ReasonNotRated
	}
	return &UnknownTitleError{Title: target, Reason: reason}
}

func hasKey(g GenreIndex, k string) bool {
	_, ok := g[k]
	return ok
}
