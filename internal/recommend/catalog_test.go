// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"errors"
	"slices"
	"testing"
)

func duplicateMovies() []Movie {
	return []Movie{
		{ID: 20, Title: "Hamlet (1990)", Genres: []string{"Drama"}},
		{ID: 10, Title: "Hamlet (1990)", Genres: []string{"Romance", "Drama"}},
		{ID: 30, Title: "Heat (1995)", Genres: []string{"Crime", "Action"}},
	}
}

func TestCatalog_Disambiguate(t *testing.T) {
	c := NewCatalog(duplicateMovies(), DuplicateDisambiguate)

	tests := []struct {
		id   int
		want string
	}{
		{10, "Hamlet (1990) [#10]"},
		{20, "Hamlet (1990) [#20]"},
		{30, "Heat (1995)"},
	}
	for _, tt := range tests {
		got, ok := c.Label(tt.id)
		if !ok || got != tt.want {
			t.Errorf("Label(%d) = %q, %v; want %q", tt.id, got, ok, tt.want)
		}
	}

	want := []string{"Hamlet (1990) [#10]", "Hamlet (1990) [#20]", "Heat (1995)"}
	if got := c.Labels(); !slices.Equal(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
	if got := c.Genres("Heat (1995)"); !slices.Equal(got, []string{"Action", "Crime"}) {
		t.Errorf("Genres(Heat) = %v, want sorted genres", got)
	}
}

func TestCatalog_Merge(t *testing.T) {
	c := NewCatalog(duplicateMovies(), DuplicateMerge)

	if c.Policy() != DuplicateMerge {
		t.Errorf("Policy() = %q, want merge", c.Policy())
	}
	if got := c.MovieIDs("Hamlet (1990)"); !slices.Equal(got, []int{10, 20}) {
		t.Errorf("MovieIDs() = %v, want [10 20]", got)
	}
	if got := c.Genres("Hamlet (1990)"); !slices.Equal(got, []string{"Drama", "Romance"}) {
		t.Errorf("Genres() = %v, want union [Drama Romance]", got)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestCatalog_Resolve(t *testing.T) {
	c := NewCatalog(duplicateMovies(), DuplicateDisambiguate)

	tests := []struct {
		name       string
		title      string
		want       string
		wantReason UnknownTitleReason
	}{
		{"exact label", "Hamlet (1990) [#20]", "Hamlet (1990) [#20]", ""},
		{"plain unique title", "Heat (1995)", "Heat (1995)", ""},
		{"surrounding whitespace", "  Heat (1995) ", "Heat (1995)", ""},
		{"ambiguous title", "Hamlet (1990)", "", ReasonAmbiguous},
		{"missing title", "Nope (2001)", "", ReasonNotInCatalog},
		{"empty title", "", "", ReasonNotInCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Resolve(tt.title)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("Resolve(%q) error = %v", tt.title, err)
				}
				if got != tt.want {
					t.Errorf("Resolve(%q) = %q, want %q", tt.title, got, tt.want)
				}
				return
			}

			if !errors.Is(err, ErrUnknownTitle) {
				t.Fatalf("Resolve(%q) error = %v, want ErrUnknownTitle", tt.title, err)
			}
			var ute *UnknownTitleError
			if !errors.As(err, &ute) || ute.Reason != tt.wantReason {
				t.Errorf("Resolve(%q) reason = %v, want %q", tt.title, err, tt.wantReason)
			}
		})
	}
}

func TestCatalog_ResolveAmbiguousCandidates(t *testing.T) {
	c := NewCatalog(duplicateMovies(), DuplicateDisambiguate)

	_, err := c.Resolve("Hamlet (1990)")
	var ute *UnknownTitleError
	if !errors.As(err, &ute) {
		t.Fatalf("Resolve() error = %v, want *UnknownTitleError", err)
	}
	want := []string{"Hamlet (1990) [#10]", "Hamlet (1990) [#20]"}
	if !slices.Equal(ute.Candidates, want) {
		t.Errorf("Candidates = %v, want %v", ute.Candidates, want)
	}
}

func TestCatalog_RepeatedMovieIDKeepsLastRow(t *testing.T) {
	c := NewCatalog([]Movie{
		{ID: 1, Title: "Old Title"},
		{ID: 1, Title: "New Title", Genres: []string{"Drama"}},
	}, DuplicateDisambiguate)

	if got, _ := c.Label(1); got != "New Title" {
		t.Errorf("Label(1) = %q, want New Title", got)
	}
	if _, err := c.Resolve("Old Title"); !errors.Is(err, ErrUnknownTitle) {
		t.Errorf("Resolve(Old Title) error = %v, want ErrUnknownTitle", err)
	}
}

func TestCatalog_GenresNeverNil(t *testing.T) {
	c := NewCatalog([]Movie{{ID: 1, Title: "Bare"}}, DuplicateDisambiguate)

	if g := c.Genres("Bare"); g == nil || len(g) != 0 {
		t.Errorf("Genres(Bare) = %#v, want empty non-nil", g)
	}
	if g := c.Genres("Missing"); g == nil {
		t.Error("Genres(Missing) = nil, want empty non-nil")
	}
	if g, ok := c.GenreIndex()["Bare"]; !ok || g == nil {
		t.Errorf("GenreIndex()[Bare] = %#v, %v; want empty non-nil", g, ok)
	}
}

func TestCatalog_InvalidPolicyFallsBack(t *testing.T) {
	c := NewCatalog(duplicateMovies(), DuplicatePolicy("bogus"))
	if c.Policy() != DuplicateDisambiguate {
		t.Errorf("Policy() = %q, want disambiguate", c.Policy())
	}
}
