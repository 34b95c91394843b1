// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// DefaultMinOverlap is the number of common raters required for a pair.
const DefaultMinOverlap = 5

// CorrelateOptions controls the similarity computation.
type CorrelateOptions struct {
	// MinOverlap is the minimum number of users who rated both titles.
	// Values below 1 use DefaultMinOverlap.
	MinOverlap int

	// Workers is the number of parallel row shards.
	// Values below 1 use runtime.NumCPU().
	Workers int

	// MaxTitles caps the correlated titles to the most rated ones.
	// Zero means no cap.
	MaxTitles int
}

// link is one defined similarity between a row and column.
type link struct {
	col     int
	r       float64
	overlap int
}

// Neighbor is a title with a defined similarity to some row title.
type Neighbor struct {
	Title       string  `json:"title"`
	Correlation float64 `json:"correlation"`
	Overlap     int     `json:"overlap"`
}

// SimilarityMatrix holds the Pearson correlation of every title pair with
// sufficient overlap. Undefined pairs are absent, never zero. The matrix is
// symmetric and immutable once built.
type SimilarityMatrix struct {
	labels []string
	index  map[string]int

	// active[c] is false for titles beyond MaxTitles; they have no row.
	active []bool

	// rows[c] holds the defined links of labels[c], sorted by column.
	rows [][]link

	minOverlap int
	pairs      int
}

// Correlate computes the pairwise Pearson correlation of matrix columns.
//
// Only pairs that co-occur for some user are visited: each row walks the
// raters of its title and, for each rater, the titles that rater also rated.
// A pair is defined when at least MinOverlap users rated both titles and
// neither paired vector has zero variance.
//
// Rows are computed in parallel. Each worker writes only its own row slot,
// and the symmetric matrix is assembled after all workers finish, so the
// output is identical for identical input regardless of scheduling.
func Correlate(ctx context.Context, matrix *RatingMatrix, opts CorrelateOptions) (*SimilarityMatrix, error) {
	if matrix == nil {
		return nil, fmt.Errorf("correlate: nil rating matrix")
	}
	if opts.MinOverlap < 1 {
		opts.MinOverlap = DefaultMinOverlap
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}

	n := matrix.NumTitles()
	active := selectTitles(matrix, opts.MaxTitles)
	upper := make([][]link, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for a := 0; a < n; a++ {
		if !active[a] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			upper[a] = correlateRow(matrix, a, active, opts.MinOverlap)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("correlate: %w", err)
	}

	sim := &SimilarityMatrix{
		labels:     matrix.labels,
		index:      matrix.col,
		active:     active,
		rows:       make([][]link, n),
		minOverlap: opts.MinOverlap,
	}

	// Row a receives columns below a from earlier iterations before its own
	// columns above a, so every row ends up sorted without a final sort.
	for a := 0; a < n; a++ {
		for _, l := range upper[a] {
			sim.rows[a] = append(sim.rows[a], l)
			sim.rows[l.col] = append(sim.rows[l.col], link{col: a, r: l.r, overlap: l.overlap})
			sim.pairs++
		}
	}

	return sim, nil
}

// pairedRatings collects the ratings two titles received from common users.
type pairedRatings struct {
	x, y []float64
}

// correlateRow computes the defined links between title a and every active
// title with a higher column index.
func correlateRow(m *RatingMatrix, a int, active []bool, minOverlap int) []link {
	pairs := make(map[int]*pairedRatings)

	for _, rater := range m.byTitle[a] {
		cells := m.byUser[rater.idx]
		start := sort.Search(len(cells), func(i int) bool { return cells[i].idx > a })
		for _, c := range cells[start:] {
			if !active[c.idx] {
				continue
			}
			p := pairs[c.idx]
			if p == nil {
				p = &pairedRatings{}
				pairs[c.idx] = p
			}
			p.x = append(p.x, rater.value)
			p.y = append(p.y, c.value)
		}
	}

	cols := make([]int, 0, len(pairs))
	for b, p := range pairs {
		if len(p.x) >= minOverlap {
			cols = append(cols, b)
		}
	}
	slices.Sort(cols)

	links := make([]link, 0, len(cols))
	for _, b := range cols {
		p := pairs[b]
		if r, ok := pearson(p.x, p.y); ok {
			links = append(links, link{col: b, r: r, overlap: len(p.x)})
		}
	}
	return links
}

// pearson returns the Pearson correlation of paired samples. It reports
// false when the coefficient is undefined: fewer than two pairs, or zero
// variance on either side.
func pearson(x, y []float64) (float64, bool) {
	if len(x) < 2 || len(x) != len(y) {
		return 0, false
	}
	if constant(x) || constant(y) {
		return 0, false
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, false
	}

	// Rounding can push a perfect correlation just past the bounds.
	return math.Max(-1, math.Min(1, r)), true
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// selectTitles marks the columns to correlate: all of them, or the
// maxTitles most rated ones with ties broken by label order.
func selectTitles(m *RatingMatrix, maxTitles int) []bool {
	n := m.NumTitles()
	active := make([]bool, n)
	if maxTitles <= 0 || maxTitles >= n {
		for c := range active {
			active[c] = true
		}
		return active
	}

	order := make([]int, n)
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(m.byTitle[order[i]]) > len(m.byTitle[order[j]])
	})
	for _, c := range order[:maxTitles] {
		active[c] = true
	}
	return active
}

// Get returns the similarity of a and b. Self-similarity is 1 for any
// title that has a row.
func (s *SimilarityMatrix) Get(a, b string) (float64, bool) {
	ia, ok := s.index[a]
	if !ok || !s.active[ia] {
		return 0, false
	}
	ib, ok := s.index[b]
	if !ok || !s.active[ib] {
		return 0, false
	}
	if ia == ib {
		return 1, true
	}
	row := s.rows[ia]
	i := sort.Search(len(row), func(i int) bool { return row[i].col >= ib })
	if i < len(row) && row[i].col == ib {
		return row[i].r, true
	}
	return 0, false
}

// Row returns the defined neighbors of label in label order, excluding the
// label itself. It reports false when label has no row.
func (s *SimilarityMatrix) Row(label string) ([]Neighbor, bool) {
	c, ok := s.index[label]
	if !ok || !s.active[c] {
		return nil, false
	}
	row := s.rows[c]
	out := make([]Neighbor, 0, len(row))
	for _, l := range row {
		out = append(out, Neighbor{Title: s.labels[l.col], Correlation: l.r, Overlap: l.overlap})
	}
	return out, true
}

// Has reports whether label has a row.
func (s *SimilarityMatrix) Has(label string) bool {
	c, ok := s.index[label]
	return ok && s.active[c]
}

// Knows reports whether label was a column of the source matrix, whether
// or not it was correlated.
func (s *SimilarityMatrix) Knows(label string) bool {
	_, ok := s.index[label]
	return ok
}

// Labels returns the labels that have a row, in sorted order.
func (s *SimilarityMatrix) Labels() []string {
	out := make([]string, 0, len(s.labels))
	for c, label := range s.labels {
		if s.active[c] {
			out = append(out, label)
		}
	}
	return out
}

// PairCount returns the number of defined unordered pairs.
func (s *SimilarityMatrix) PairCount() int {
	return s.pairs
}

// MinOverlap returns the overlap threshold the matrix was built with.
func (s *SimilarityMatrix) MinOverlap() int {
	return s.minOverlap
}
