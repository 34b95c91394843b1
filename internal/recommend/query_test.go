// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// tieStore extends the scenario with B2 and B3, which copy B's ratings so
// that their correlation with A is identical. B2 has one extra rater who
// never rated A.
func tieStore() *RatingStore {
	store := scenarioStore()
	store.Movies = append(store.Movies,
		Movie{ID: 5, Title: "B2"},
		Movie{ID: 6, Title: "B3"},
	)
	for _, r := range scenarioRatings() {
		if r.MovieID == 2 {
			store.Ratings = append(store.Ratings,
				Rating{UserID: r.UserID, MovieID: 5, Value: r.Value},
				Rating{UserID: r.UserID, MovieID: 6, Value: r.Value},
			)
		}
	}
	store.Ratings = append(store.Ratings, Rating{UserID: 9, MovieID: 5, Value: 1})
	return store
}

func buildStore(t *testing.T, store *RatingStore, minOverlap int) (*Catalog, *SimilarityMatrix, PopularityIndex) {
	t.Helper()
	catalog := NewCatalog(store.Movies, DuplicateDisambiguate)
	m, _ := mustBuildMatrix(t, store.Ratings, catalog, DefaultScale())
	sim, err := Correlate(context.Background(), m, CorrelateOptions{MinOverlap: minOverlap})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	pop, _ := Summarize(store.Ratings, catalog, DefaultScale())
	return catalog, sim, pop
}

func titles(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestRecommend_Scenario(t *testing.T) {
	catalog, _, sim := buildScenario(t, 5)
	pop, _ := Summarize(scenarioRatings(), catalog, DefaultScale())

	recs, err := Recommend("A", sim, pop, catalog.GenreIndex())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("Recommend() = %v, want single row", titles(recs))
	}

	got := recs[0]
	if got.Title != "B" || !approxEqual(got.Correlation, scenarioAB, 1e-12) {
		t.Errorf("row = %+v, want B with r %v", got, scenarioAB)
	}
	if got.MeanRating == nil || !approxEqual(*got.MeanRating, 3.6, 1e-12) || got.RatingCount != 5 {
		t.Errorf("row popularity = %v/%d, want 3.6/5", got.MeanRating, got.RatingCount)
	}
	if !slices.Equal(got.Genres, []string{"Comedy", "Drama"}) {
		t.Errorf("row genres = %v, want [Comedy Drama]", got.Genres)
	}
}

func TestRecommend_OverlapExcludesPair(t *testing.T) {
	catalog, _, sim := buildScenario(t, 6)
	pop, _ := Summarize(scenarioRatings(), catalog, DefaultScale())

	recs, err := Recommend("A", sim, pop, catalog.GenreIndex())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if slices.Contains(titles(recs), "B") {
		t.Errorf("Recommend() = %v, B must not appear with minOverlap 6", titles(recs))
	}
}

func TestRecommend_RatedWithoutOverlapIsEmpty(t *testing.T) {
	catalog, _, sim := buildScenario(t, 5)
	pop, _ := Summarize(scenarioRatings(), catalog, DefaultScale())

	recs, err := Recommend("C", sim, pop, catalog.GenreIndex())
	if err != nil {
		t.Fatalf("Recommend(C) error = %v, want empty result", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("Recommend(C) = %#v, want empty non-nil", recs)
	}
}

func TestRecommend_ExcludesSelf(t *testing.T) {
	store := randomStore(3, 40, 8, 0.8)
	catalog, sim, pop := buildStore(t, store, 3)

	for _, label := range sim.Labels() {
		recs, err := Recommend(label, sim, pop, catalog.GenreIndex())
		if err != nil {
			t.Fatalf("Recommend(%s) error = %v", label, err)
		}
		if slices.Contains(titles(recs), label) {
			t.Errorf("Recommend(%s) contains the target", label)
		}
	}
}

func TestRecommend_TieBreak(t *testing.T) {
	catalog, sim, pop := buildStore(t, tieStore(), 5)

	recs, err := Recommend("A", sim, pop, catalog.GenreIndex())
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	// Equal correlation: B2 has more ratings; B and B3 tie on both keys and
	// keep label order.
	want := []string{"B2", "B", "B3"}
	if got := titles(recs); !slices.Equal(got, want) {
		t.Errorf("Recommend() = %v, want %v", got, want)
	}
}

func TestRecommend_UnknownTitle(t *testing.T) {
	catalog := NewCatalog(scenarioMovies(), DuplicateDisambiguate)
	m, _ := mustBuildMatrix(t, scenarioRatings(), catalog, DefaultScale())
	capped, err := Correlate(context.Background(), m, CorrelateOptions{MinOverlap: 2, MaxTitles: 2})
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}

	tests := []struct {
		name   string
		target string
		genres GenreIndex
		want   UnknownTitleReason
	}{
		{"not in catalog", "Nope", catalog.GenreIndex(), ReasonNotInCatalog},
		{"never rated", "Unrated", catalog.GenreIndex(), ReasonNotRated},
		{"beyond cap", "C", catalog.GenreIndex(), ReasonBeyondCap},
		{"no genre index", "Unrated", nil, ReasonNotInCatalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Recommend(tt.target, capped, nil, tt.genres)
			var ute *UnknownTitleError
			if !errors.As(err, &ute) {
				t.Fatalf("Recommend(%s) error = %v, want *UnknownTitleError", tt.target, err)
			}
			if ute.Reason != tt.want {
				t.Errorf("Reason = %q, want %q", ute.Reason, tt.want)
			}
			if !errors.Is(err, ErrUnknownTitle) {
				t.Error("errors.Is(err, ErrUnknownTitle) = false")
			}
		})
	}
}

func TestRecommendWithOptions_LeftJoin(t *testing.T) {
	_, _, sim := buildScenario(t, 5)

	recs, _, err := RecommendWithOptions("A", sim, PopularityIndex{}, nil, QueryOptions{})
	if err != nil {
		t.Fatalf("RecommendWithOptions() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d rows, want 1", len(recs))
	}
	if recs[0].MeanRating != nil || recs[0].RatingCount != 0 {
		t.Errorf("missing popularity = %v/%d, want nil/0", recs[0].MeanRating, recs[0].RatingCount)
	}
	if recs[0].Genres == nil {
		t.Error("Genres = nil, want empty slice")
	}
}

func TestRecommendWithOptions_LimitAndFilter(t *testing.T) {
	catalog, sim, pop := buildStore(t, tieStore(), 5)

	tests := []struct {
		name      string
		opts      QueryOptions
		want      []string
		wantTotal int
	}{
		{"no options", QueryOptions{}, []string{"B2", "B", "B3"}, 3},
		{"limit", QueryOptions{Limit: 2}, []string{"B2", "B"}, 3},
		{"min count", QueryOptions{MinRatingCount: 6}, []string{"B2"}, 1},
		{"min count drops all", QueryOptions{MinRatingCount: 100}, []string{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, total, err := RecommendWithOptions("A", sim, pop, catalog.GenreIndex(), tt.opts)
			if err != nil {
				t.Fatalf("RecommendWithOptions() error = %v", err)
			}
			if got := titles(recs); !slices.Equal(got, tt.want) {
				t.Errorf("titles = %v, want %v", got, tt.want)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}

func TestRank(t *testing.T) {
	recs := []Recommendation{
		{Title: "low", Correlation: 0.1, RatingCount: 100},
		{Title: "first-tie", Correlation: 0.5, RatingCount: 10},
		{Title: "popular-tie", Correlation: 0.5, RatingCount: 20},
		{Title: "second-tie", Correlation: 0.5, RatingCount: 10},
		{Title: "negative", Correlation: -0.9, RatingCount: 1},
		{Title: "top", Correlation: 0.95, RatingCount: 1},
	}

	Rank(recs)

	want := []string{"top", "popular-tie", "first-tie", "second-tie", "low", "negative"}
	if got := titles(recs); !slices.Equal(got, want) {
		t.Errorf("Rank() = %v, want %v", got, want)
	}
}

func TestRecommendWithOptions_NilSimilarity(t *testing.T) {
	recs, total, err := RecommendWithOptions("A", nil, PopularityIndex{}, nil, QueryOptions{})
	if err == nil {
		t.Fatal("RecommendWithOptions(nil similarity) error = nil, want error")
	}
	if errors.Is(err, ErrUnknownTitle) {
		t.Errorf("error = %v, must not report an unknown title", err)
	}
	if recs != nil || total != 0 {
		t.Errorf("RecommendWithOptions() = %v, %d; want nil, 0", recs, total)
	}
}
