// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"
)

// scenarioMovies is a small catalog. "Unrated" never receives a rating.
func scenarioMovies() []Movie {
	return []Movie{
		{ID: 1, Title: "A", Genres: []string{"Drama"}},
		{ID: 2, Title: "B", Genres: []string{"Comedy", "Drama"}},
		{ID: 3, Title: "C", Genres: []string{}},
		{ID: 4, Title: "Unrated", Genres: []string{"Horror"}},
	}
}

// scenarioRatings gives A and B five common raters with r = 7/sqrt(62.4).
// C shares only two raters with A and B.
func scenarioRatings() []Rating {
	return []Rating{
		{UserID: 1, MovieID: 1, Value: 5}, {UserID: 1, MovieID: 2, Value: 4},
		{UserID: 2, MovieID: 1, Value: 5}, {UserID: 2, MovieID: 2, Value: 5},
		{UserID: 3, MovieID: 1, Value: 1}, {UserID: 3, MovieID: 2, Value: 2},
		{UserID: 4, MovieID: 1, Value: 4}, {UserID: 4, MovieID: 2, Value: 3},
		{UserID: 5, MovieID: 1, Value: 5}, {UserID: 5, MovieID: 2, Value: 4},
		{UserID: 1, MovieID: 3, Value: 3},
		{UserID: 2, MovieID: 3, Value: 4},
	}
}

var scenarioAB = 7 / math.Sqrt(62.4)

func scenarioStore() *RatingStore {
	return &RatingStore{Ratings: scenarioRatings(), Movies: scenarioMovies()}
}

func mustBuildMatrix(t *testing.T, ratings []Rating, catalog *Catalog, scale Scale) (*RatingMatrix, Diagnostics) {
	t.Helper()
	m, diag, err := BuildMatrix(ratings, catalog, scale)
	if err != nil {
		t.Fatalf("BuildMatrix() error = %v", err)
	}
	return m, diag
}

func buildScenario(t *testing.T, minOverlap int) (*Catalog, *RatingMatrix, *SimilarityMatrix) {
	t.Helper()
	catalog := NewCatalog(scenarioMovies(), DuplicateDisambiguate)
	matrix, _ := mustBuildMatrix(t, scenarioRatings(), catalog, DefaultScale())
	sim, err := Correlate(context.Background(), matrix, CorrelateOptions{MinOverlap: minOverlap, Workers: 2})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	return catalog, matrix, sim
}

// randomStore generates a dense-ish store on the half-star scale.
func randomStore(seed int64, users, titles int, density float64) *RatingStore {
	rng := rand.New(rand.NewSource(seed))
	store := &RatingStore{}
	for m := 1; m <= titles; m++ {
		store.Movies = append(store.Movies, Movie{ID: m, Title: "Movie " + string(rune('A'+m-1))})
	}
	for u := 1; u <= users; u++ {
		for m := 1; m <= titles; m++ {
			if rng.Float64() < density {
				store.Ratings = append(store.Ratings, Rating{
					UserID:  u,
					MovieID: m,
					Value:   float64(rng.Intn(10)+1) / 2,
				})
			}
		}
	}
	return store
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// stubProvider implements DataProvider for testing.
type stubProvider struct {
	store *RatingStore
	err   error
	calls atomic.Int32
}

func (p *stubProvider) LoadRatingStore(ctx context.Context) (*RatingStore, error) {
	p.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.store, nil
}
