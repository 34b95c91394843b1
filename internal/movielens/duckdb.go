// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package movielens

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// DuckDB driver - read_csv parses and casts the MovieLens files
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/recommend"
)

// DuckDBSource reads ratings.csv and movies.csv through an in-memory DuckDB
// connection. Rows are returned in file order, so the store matches the one
// CSVSource builds except that short rows are padded with NULL and reported
// as non_numeric.
type DuckDBSource struct {
	RatingsPath string
	MoviesPath  string
}

// Name returns the reader kind.
func (s *DuckDBSource) Name() string {
	return ReaderDuckDB
}

// Fingerprint identifies the current contents of both files.
func (s *DuckDBSource) Fingerprint() (Fingerprint, error) {
	return Stat(s.RatingsPath, s.MoviesPath)
}

// LoadRatingStore reads both files into a RatingStore.
func (s *DuckDBSource) LoadRatingStore(ctx context.Context) (*recommend.RatingStore, error) {
	start := time.Now()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close() //nolint:errcheck // in-memory database

	store := &recommend.RatingStore{}

	if err := checkColumns(ctx, db, s.MoviesPath, colMovieID, colTitle, colGenres); err != nil {
		return nil, err
	}
	if store.Movies, err = queryMovies(ctx, db, s.MoviesPath, &store.Load); err != nil {
		return nil, err
	}

	if err := checkColumns(ctx, db, s.RatingsPath, colUserID, colMovieID, colRating, colTimestamp); err != nil {
		return nil, err
	}
	if store.Ratings, err = queryRatings(ctx, db, s.RatingsPath, &store.Load); err != nil {
		return nil, err
	}

	logging.Info().
		Str("reader", ReaderDuckDB).
		Int("movies", len(store.Movies)).
		Int("ratings", len(store.Ratings)).
		Int("skipped", store.Load.Skipped).
		Dur("duration", time.Since(start)).
		Msg("rating store loaded")

	return store, nil
}

// readCSV returns a read_csv table expression that keeps every column as
// text so that casting failures surface per row.
func readCSV(path string) string {
	return fmt.Sprintf("read_csv(%s, header = true, all_varchar = true, null_padding = true)", sqlString(path))
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func checkColumns(ctx context.Context, db *sql.DB, path string, required ...string) error {
	rows, err := db.QueryContext(ctx, "SELECT column_name FROM (DESCRIBE SELECT * FROM "+readCSV(path)+")")
	if err != nil {
		return fmt.Errorf("describe %s: %w", path, err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("describe %s: %w", path, err)
		}
		present[strings.TrimSpace(name)] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("describe %s: %w", path, err)
	}

	var missing []string
	for _, name := range required {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("read %s: %w: %s", path, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

func queryRatings(ctx context.Context, db *sql.DB, path string, diag *recommend.Diagnostics) ([]recommend.Rating, error) {
	query := `
		SELECT
			TRY_CAST(trim("userId") AS BIGINT),
			TRY_CAST(trim("movieId") AS BIGINT),
			TRY_CAST(trim("rating") AS DOUBLE),
			TRY_CAST(trim("timestamp") AS BIGINT)
		FROM ` + readCSV(path)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	defer rows.Close()

	var ratings []recommend.Rating
	// Line 1 is the header.
	for line := 2; rows.Next(); line++ {
		var userID, movieID, ts sql.NullInt64
		var value sql.NullFloat64
		if err := rows.Scan(&userID, &movieID, &value, &ts); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}

		if !userID.Valid || !movieID.Valid || !value.Valid || !ts.Valid {
			rowError(diag, line, int(userID.Int64), int(movieID.Int64), recommend.ReasonNonNumeric, "field is not a number")
			continue
		}

		ratings = append(ratings, recommend.Rating{
			UserID:    int(userID.Int64),
			MovieID:   int(movieID.Int64),
			Value:     value.Float64,
			Timestamp: ts.Int64,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", path, err)
	}
	return ratings, nil
}

func queryMovies(ctx context.Context, db *sql.DB, path string, diag *recommend.Diagnostics) ([]recommend.Movie, error) {
	query := `
		SELECT
			TRY_CAST(trim("movieId") AS BIGINT),
			trim(coalesce("title", '')),
			coalesce("genres", '')
		FROM ` + readCSV(path)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	defer rows.Close()

	var movies []recommend.Movie
	for line := 2; rows.Next(); line++ {
		var id sql.NullInt64
		var title, genres string
		if err := rows.Scan(&id, &title, &genres); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		if !id.Valid {
			rowError(diag, line, 0, 0, recommend.ReasonNonNumeric, "movies.csv: movieId is not a number")
			continue
		}
		movies = append(movies, recommend.Movie{
			ID:     int(id.Int64),
			Title:  title,
			Genres: ParseGenres(genres),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", path, err)
	}
	return movies, nil
}
