// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

// Package recommend implements item-to-item movie recommendations driven by
// the Pearson correlation of user ratings.
//
// # Architecture
//
// A build turns a RatingStore into four derived, immutable structures:
//
//   - Catalog: movieId to presentation label, genre sets, title resolution
//   - RatingMatrix: sparse (user, label) to rating pivot
//   - SimilarityMatrix: pairwise Pearson correlation between labels,
//     defined only for pairs with at least MinOverlap common raters
//   - PopularityIndex: mean rating and rating count per label
//
// A query extracts the target's similarity row, joins popularity and
// genres, and ranks by correlation then rating count.
//
// # Undefined Similarity
//
// A pair with fewer than MinOverlap co-raters, or where either side has
// zero variance, has no correlation. Such pairs are absent from the
// SimilarityMatrix; they are never stored as zero.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//
//	if _, err := engine.Rebuild(ctx, provider); err != nil {
//	    return err
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    Title: "Toy Story (1995)",
//	    Limit: 10,
//	})
//
// # Thread Safety
//
// Snapshots are never mutated after publication. Rebuilds produce a new
// Snapshot and swap it in atomically, so queries run without locks while a
// rebuild is in progress.
package recommend
