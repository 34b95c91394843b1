// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package movielens

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/cinecorr/internal/recommend"
)

// Reader kinds accepted by NewSource.
const (
	ReaderCSV    = "csv"
	ReaderDuckDB = "duckdb"
)

// Required column names.
const (
	colUserID    = "userId"
	colMovieID   = "movieId"
	colRating    = "rating"
	colTimestamp = "timestamp"
	colTitle     = "title"
	colGenres    = "genres"
)

// noGenres is the MovieLens marker for an empty genre set.
const noGenres = "(no genres listed)"

// ErrMissingColumn is returned when a file lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// Source is a rating data provider backed by files on disk.
type Source interface {
	recommend.DataProvider

	// Fingerprint identifies the current contents of the source files.
	Fingerprint() (Fingerprint, error)

	// Name returns the reader kind.
	Name() string
}

// NewSource returns the reader of the given kind for the two files.
func NewSource(kind, ratingsPath, moviesPath string) (Source, error) {
	if ratingsPath == "" || moviesPath == "" {
		return nil, errors.New("ratings and movies paths are required")
	}
	switch kind {
	case ReaderCSV, "":
		return &CSVSource{RatingsPath: ratingsPath, MoviesPath: moviesPath}, nil
	case ReaderDuckDB:
		return &DuckDBSource{RatingsPath: ratingsPath, MoviesPath: moviesPath}, nil
	default:
		return nil, fmt.Errorf("unknown reader %q (want %q or %q)", kind, ReaderCSV, ReaderDuckDB)
	}
}

// ParseGenres splits a pipe separated genre list. Never nil.
func ParseGenres(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == noGenres {
		return []string{}
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" && p != noGenres {
			out = append(out, p)
		}
	}
	return out
}

// Fingerprint identifies file contents by size and modification time.
type Fingerprint string

// Stat fingerprints the given files. A missing file is an error.
func Stat(paths ...string) (Fingerprint, error) {
	var b strings.Builder
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", p, err)
		}
		b.WriteString(p)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(info.Size(), 10))
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10))
		b.WriteByte(';')
	}
	return Fingerprint(b.String()), nil
}

// rowError records a rejected row in diag.
func rowError(diag *recommend.Diagnostics, line, userID, movieID int, reason recommend.MalformedReason, detail string) {
	diag.Reject(&recommend.MalformedRatingError{
		Line:    line,
		UserID:  userID,
		MovieID: movieID,
		Reason:  reason,
		Detail:  detail,
	})
}
