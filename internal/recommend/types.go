// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"context"
	"time"
)

// Rating is a single user rating observation.
type Rating struct {
	// UserID identifies the rater.
	UserID int `json:"user_id"`

	// MovieID references Movie.ID in the catalog.
	MovieID int `json:"movie_id"`

	// Value is the rating on the configured Scale.
	Value float64 `json:"value"`

	// Timestamp is the rating time in Unix seconds.
	Timestamp int64 `json:"timestamp"`
}

// Movie is catalog metadata for one movie.
type Movie struct {
	// ID is the movie identifier, the join key for correctness.
	ID int `json:"id"`

	// Title is the display title, the join key for presentation.
	Title string `json:"title"`

	// Genres is the set of genre names. May be empty.
	Genres []string `json:"genres"`
}

// RatingStore holds the raw observations supplied by a loader.
// The core treats it as read-only for the duration of a build.
type RatingStore struct {
	// Ratings are the rating rows in load order.
	Ratings []Rating

	// Movies is the movie catalog.
	Movies []Movie

	// Load describes rows the loader rejected before they reached the core.
	Load Diagnostics
}

// DataProvider supplies RatingStores for engine rebuilds.
type DataProvider interface {
	// LoadRatingStore reads a complete RatingStore.
	LoadRatingStore(ctx context.Context) (*RatingStore, error)
}

// DuplicatePolicy controls how movies sharing a title are labeled.
type DuplicatePolicy string

const (
	// DuplicateDisambiguate gives every movie whose title collides a label
	// of the form "Title [#movieId]", keeping them as separate columns.
	DuplicateDisambiguate DuplicatePolicy = "disambiguate"

	// DuplicateMerge labels movies by plain title. Colliding movies share a
	// column, and the most recently loaded rating wins per user.
	DuplicateMerge DuplicatePolicy = "merge"
)

// Valid reports whether p is a known policy.
func (p DuplicatePolicy) Valid() bool {
	return p == DuplicateDisambiguate || p == DuplicateMerge
}

// Scale is the closed interval of acceptable rating values.
type Scale struct {
	Min float64 `json:"min" koanf:"min"`
	Max float64 `json:"max" koanf:"max"`
}

// DefaultScale is the MovieLens half-star scale.
func DefaultScale() Scale {
	return Scale{Min: 0.5, Max: 5.0}
}

// Contains reports whether v lies within the scale.
func (s Scale) Contains(v float64) bool {
	return v >= s.Min && v <= s.Max
}

// PopularityEntry summarizes all ratings of one label.
type PopularityEntry struct {
	// MeanRating is the arithmetic mean of the ratings.
	MeanRating float64 `json:"mean_rating"`

	// RatingCount is the number of ratings.
	RatingCount int `json:"rating_count"`
}

// PopularityIndex maps a label to its PopularityEntry.
type PopularityIndex map[string]PopularityEntry

// GenreIndex maps every catalog label to its genre set.
type GenreIndex map[string][]string

// Recommendation is one row of a recommendation result.
type Recommendation struct {
	// Title is the label of the recommended movie.
	Title string `json:"title"`

	// Correlation is the Pearson correlation with the target, in [-1, 1].
	Correlation float64 `json:"correlation"`

	// Overlap is the number of users who rated both movies.
	Overlap int `json:"overlap"`

	// MeanRating is nil when the title has no popularity entry.
	MeanRating *float64 `json:"mean_rating"`

	// RatingCount is zero when the title has no popularity entry.
	RatingCount int `json:"rating_count"`

	// Genres is never nil.
	Genres []string `json:"genres"`
}

// Request is a recommendation query.
type Request struct {
	// Title is the target, either a label or an unambiguous plain title.
	Title string `json:"title"`

	// Limit caps the number of rows. Defaults to Config.Limits.DefaultK
	// and is clamped to Config.Limits.MaxK.
	Limit int `json:"limit,omitempty"`

	// MinRatingCount drops rows rated fewer times than this.
	MinRatingCount int `json:"min_rating_count,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response is a ranked recommendation result.
type Response struct {
	// Target is the resolved label of the requested title.
	Target string `json:"target"`

	// Items is the ranked result, best first.
	Items []Recommendation `json:"items"`

	// Total is the number of ranked rows before Limit was applied.
	Total int `json:"total"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID       string    `json:"request_id"`
	SnapshotVersion int64     `json:"snapshot_version"`
	BuiltAt         time.Time `json:"built_at"`
	LatencyMS       int64     `json:"latency_ms"`
	CacheHit        bool      `json:"cache_hit"`
}

// Status describes the published snapshot.
type Status struct {
	Ready           bool             `json:"ready"`
	SnapshotVersion int64            `json:"snapshot_version"`
	BuiltAt         time.Time        `json:"built_at"`
	BuildDurationMS int64            `json:"build_duration_ms"`
	Movies          int              `json:"movies"`
	Titles          int              `json:"titles"`
	Users           int              `json:"users"`
	Cells           int              `json:"cells"`
	DefinedPairs    int              `json:"defined_pairs"`
	MinOverlap      int              `json:"min_overlap"`
	Diagnostics     BuildDiagnostics `json:"diagnostics"`
	Rebuilding      bool             `json:"rebuilding"`
	LastError       string           `json:"last_error,omitempty"`
}
