// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package movielens

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/recommend"
)

// ctxCheckInterval is how many rows are read between cancellation checks.
const ctxCheckInterval = 1 << 14

// CSVSource reads ratings.csv and movies.csv with encoding/csv.
type CSVSource struct {
	RatingsPath string
	MoviesPath  string
}

// Name returns the reader kind.
func (s *CSVSource) Name() string {
	return ReaderCSV
}

// Fingerprint identifies the current contents of both files.
func (s *CSVSource) Fingerprint() (Fingerprint, error) {
	return Stat(s.RatingsPath, s.MoviesPath)
}

// LoadRatingStore reads both files into a RatingStore.
func (s *CSVSource) LoadRatingStore(ctx context.Context) (*recommend.RatingStore, error) {
	start := time.Now()
	store := &recommend.RatingStore{}

	movies, err := readFile(s.MoviesPath, func(r io.Reader) ([]recommend.Movie, error) {
		return ReadMovies(ctx, r, &store.Load)
	})
	if err != nil {
		return nil, err
	}
	store.Movies = movies

	ratings, err := readFile(s.RatingsPath, func(r io.Reader) ([]recommend.Rating, error) {
		return ReadRatings(ctx, r, &store.Load)
	})
	if err != nil {
		return nil, err
	}
	store.Ratings = ratings

	logging.Info().
		Str("reader", ReaderCSV).
		Int("movies", len(store.Movies)).
		Int("ratings", len(store.Ratings)).
		Int("skipped", store.Load.Skipped).
		Dur("duration", time.Since(start)).
		Msg("rating store loaded")

	return store, nil
}

func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	out, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// ReadRatings parses a ratings.csv stream. Unparseable rows are recorded
// in diag and skipped. Range checks are left to the recommend package.
func ReadRatings(ctx context.Context, r io.Reader, diag *recommend.Diagnostics) ([]recommend.Rating, error) {
	cr, cols, err := openCSV(r, colUserID, colMovieID, colRating, colTimestamp)
	if err != nil {
		return nil, err
	}

	var ratings []recommend.Rating
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		if len(record) < cols.width {
			rowError(diag, line, 0, 0, recommend.ReasonShortRecord,
				fmt.Sprintf("%d fields, want %d", len(record), cols.width))
			continue
		}

		userID, errU := strconv.Atoi(strings.TrimSpace(record[cols.index[colUserID]]))
		movieID, errM := strconv.Atoi(strings.TrimSpace(record[cols.index[colMovieID]]))
		value, errV := strconv.ParseFloat(strings.TrimSpace(record[cols.index[colRating]]), 64)
		ts, errT := strconv.ParseInt(strings.TrimSpace(record[cols.index[colTimestamp]]), 10, 64)
		if err := errors.Join(errU, errM, errV, errT); err != nil {
			rowError(diag, line, userID, movieID, recommend.ReasonNonNumeric, firstLine(err))
			continue
		}

		ratings = append(ratings, recommend.Rating{
			UserID:    userID,
			MovieID:   movieID,
			Value:     value,
			Timestamp: ts,
		})
	}
	return ratings, nil
}

// ReadMovies parses a movies.csv stream. Rows with an unparseable movieId
// are recorded in diag and skipped.
func ReadMovies(ctx context.Context, r io.Reader, diag *recommend.Diagnostics) ([]recommend.Movie, error) {
	cr, cols, err := openCSV(r, colMovieID, colTitle, colGenres)
	if err != nil {
		return nil, err
	}

	var movies []recommend.Movie
	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		if len(record) < cols.width {
			rowError(diag, line, 0, 0, recommend.ReasonShortRecord, "movies.csv")
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(record[cols.index[colMovieID]]))
		if err != nil {
			rowError(diag, line, 0, 0, recommend.ReasonNonNumeric, "movies.csv: "+firstLine(err))
			continue
		}

		movies = append(movies, recommend.Movie{
			ID:     id,
			Title:  strings.TrimSpace(record[cols.index[colTitle]]),
			Genres: ParseGenres(record[cols.index[colGenres]]),
		})
	}
	return movies, nil
}

// columns maps required column names to record positions.
type columns struct {
	index map[string]int

	// width is the minimum record length that holds every required column.
	width int
}

func openCSV(r io.Reader, required ...string) (*csv.Reader, columns, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, columns{}, errors.New("empty file")
	}
	if err != nil {
		return nil, columns{}, fmt.Errorf("read header: %w", err)
	}

	cols := columns{index: make(map[string]int, len(required))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols.index[name]; !dup {
			cols.index[name] = i
		}
	}

	var missing []string
	for _, name := range required {
		i, ok := cols.index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if i+1 > cols.width {
			cols.width = i + 1
		}
	}
	if len(missing) > 0 {
		return nil, columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cr, cols, nil
}

// firstLine keeps the first message of a joined error.
func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
