// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

// Command cinecorr recommends movies by item-to-item Pearson correlation
// over MovieLens style rating files.
//
// # Commands
//
//	cinecorr serve                          run the HTTP API under the supervisor tree
//	cinecorr recommend --title "Heat (1995)" print the most correlated movies
//	cinecorr titles --sample 20             print catalog titles
//
// # Configuration
//
// Settings come from built-in defaults, then a YAML file (--config,
// CONFIG_PATH or ./config.yaml), then environment variables, optionally
// seeded from a .env file. The data files are required:
//
//	export RATINGS_PATH=ml-latest-small/ratings.csv
//	export MOVIES_PATH=ml-latest-small/movies.csv
//	export DATA_READER=duckdb   # or csv (default)
//	cinecorr recommend --title "Toy Story (1995)" --limit 5
//
// # Signal Handling
//
// serve shuts down gracefully on SIGINT and SIGTERM: the HTTP server stops
// accepting connections and in-flight requests get SHUTDOWN_TIMEOUT to
// finish.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
