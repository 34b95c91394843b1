// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

/*
Package movielens loads MovieLens style rating data into a recommend.RatingStore.

Two readers are available and produce the same store for well-formed input:

  - CSVSource streams ratings.csv and movies.csv with encoding/csv.
  - DuckDBSource reads both files through an in-memory DuckDB connection
    using read_csv, casting columns with TRY_CAST.

# File Format

ratings.csv carries the header userId,movieId,rating,timestamp and
movies.csv the header movieId,title,genres. Columns are located by header
name, so their order does not matter. A missing required column aborts
the load. Individual rows that cannot be parsed are skipped and recorded
in RatingStore.Load with their 1-based line number.

Genres are pipe separated. The MovieLens marker "(no genres listed)"
yields an empty genre set.

# Change Detection

Stat returns a Fingerprint (size and modification time of every file) so
that a rebuild loop can skip unchanged inputs.
*/
package movielens
