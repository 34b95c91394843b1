// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// cell is one stored rating. idx is a column index in user rows and a user
// index in title columns.
type cell struct {
	idx   int
	value float64
}

// RatingMatrix is a sparse users by labels pivot of ratings.
// A missing cell means "no rating", which is distinct from a rating of zero.
// A RatingMatrix is immutable once built.
type RatingMatrix struct {
	labels []string
	col    map[string]int

	users []int
	row   map[int]int

	// byUser[u] holds the ratings of users[u], sorted by column.
	byUser [][]cell

	// byTitle[c] holds the ratings of labels[c], sorted by user index.
	byTitle [][]cell

	cells int
}

// BuildMatrix pivots ratings into a RatingMatrix keyed by (userId, label).
//
// Records with a non-finite or out-of-scale value, or an unknown movieId,
// are rejected with a *MalformedRatingError recorded in the returned
// Diagnostics and skipped. When a user rated the same label more than once
// (duplicate rows, or merged duplicate titles), the most recently loaded
// value wins.
//
//nolint:gocritic // rangeValCopy: Rating is passed by value in range, acceptable for clarity
func BuildMatrix(ratings []Rating, catalog *Catalog, scale Scale) (*RatingMatrix, Diagnostics, error) {
	var diag Diagnostics
	if catalog == nil {
		return nil, diag, fmt.Errorf("build matrix: nil catalog")
	}

	pivot := make(map[int]map[string]float64)
	for i, r := range ratings {
		label, err := checkRating(r, catalog, scale)
		if err != nil {
			if err.Line == 0 {
				err.Line = i + 1
			}
			diag.Reject(err)
			continue
		}
		diag.Accept()

		userRow := pivot[r.UserID]
		if userRow == nil {
			userRow = make(map[string]float64)
			pivot[r.UserID] = userRow
		}
		if _, dup := userRow[label]; dup {
			diag.Overwritten++
		}
		userRow[label] = r.Value
	}

	return newRatingMatrix(pivot), diag, nil
}

// checkRating validates one record and returns its label.
//
//nolint:gocritic // hugeParam: Rating passed by value for immutability
func checkRating(r Rating, catalog *Catalog, scale Scale) (string, *MalformedRatingError) {
	reject := func(reason MalformedReason) *MalformedRatingError {
		return &MalformedRatingError{UserID: r.UserID, MovieID: r.MovieID, Reason: reason}
	}

	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return "", reject(ReasonNonFinite)
	}
	if !scale.Contains(r.Value) {
		return "", reject(ReasonOutOfScale)
	}
	label, ok := catalog.Label(r.MovieID)
	if !ok {
		return "", reject(ReasonUnknownMovie)
	}
	return label, nil
}

func newRatingMatrix(pivot map[int]map[string]float64) *RatingMatrix {
	m := &RatingMatrix{
		col: make(map[string]int),
		row: make(map[int]int, len(pivot)),
	}

	for userID, userRow := range pivot {
		m.users = append(m.users, userID)
		for label := range userRow {
			if _, ok := m.col[label]; !ok {
				m.col[label] = 0
				m.labels = append(m.labels, label)
			}
		}
	}
	slices.Sort(m.users)
	sort.Strings(m.labels)
	for c, label := range m.labels {
		m.col[label] = c
	}

	m.byUser = make([][]cell, len(m.users))
	m.byTitle = make([][]cell, len(m.labels))
	for u, userID := range m.users {
		m.row[userID] = u
		userRow := pivot[userID]
		cells := make([]cell, 0, len(userRow))
		for label, value := range userRow {
			cells = append(cells, cell{idx: m.col[label], value: value})
		}
		sort.Slice(cells, func(i, j int) bool { return cells[i].idx < cells[j].idx })
		m.byUser[u] = cells
		m.cells += len(cells)

		// Users are visited in ascending order, so columns stay sorted by user.
		for _, c := range cells {
			m.byTitle[c.idx] = append(m.byTitle[c.idx], cell{idx: u, value: c.value})
		}
	}

	return m
}

// Labels returns the column labels in sorted order.
func (m *RatingMatrix) Labels() []string {
	return slices.Clone(m.labels)
}

// Users returns the row user IDs in ascending order.
func (m *RatingMatrix) Users() []int {
	return slices.Clone(m.users)
}

// NumTitles returns the number of columns.
func (m *RatingMatrix) NumTitles() int {
	return len(m.labels)
}

// NumUsers returns the number of rows.
func (m *RatingMatrix) NumUsers() int {
	return len(m.users)
}

// NumCells returns the number of stored ratings.
func (m *RatingMatrix) NumCells() int {
	return m.cells
}

// HasTitle reports whether label has at least one rating.
func (m *RatingMatrix) HasTitle(label string) bool {
	_, ok := m.col[label]
	return ok
}

// RaterCount returns the number of users who rated label.
func (m *RatingMatrix) RaterCount(label string) int {
	c, ok := m.col[label]
	if !ok {
		return 0
	}
	return len(m.byTitle[c])
}

// Value returns the rating userID gave label.
func (m *RatingMatrix) Value(userID int, label string) (float64, bool) {
	u, ok := m.row[userID]
	if !ok {
		return 0, false
	}
	c, ok := m.col[label]
	if !ok {
		return 0, false
	}
	cells := m.byUser[u]
	i := sort.Search(len(cells), func(i int) bool { return cells[i].idx >= c })
	if i < len(cells) && cells[i].idx == c {
		return cells[i].value, true
	}
	return 0, false
}
