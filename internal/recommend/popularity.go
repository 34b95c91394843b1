// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import "sort"

// Summarize computes the mean rating and rating count of every rated label.
//
// Every accepted row counts, including repeated ratings of the same label
// by one user. Rows are validated exactly as BuildMatrix does, and rejected
// rows are skipped. Labels without accepted ratings never appear.
//
//nolint:gocritic // rangeValCopy: Rating is passed by value in range, acceptable for clarity
func Summarize(ratings []Rating, catalog *Catalog, scale Scale) (PopularityIndex, Diagnostics) {
	var diag Diagnostics

	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[string]*acc)

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

		a := sums[label]
		if a == nil {
			a = &acc{}
			sums[label] = a
		}
		a.sum += r.Value
		a.count++
	}

	index := make(PopularityIndex, len(sums))
	for label, a := range sums {
		index[label] = PopularityEntry{
			MeanRating:  a.sum / float64(a.count),
			RatingCount: a.count,
		}
	}
	return index, diag
}

// TopRated returns up to k labels ordered by rating count, then mean
// rating, then label. Labels rated fewer than minCount times are skipped.
func (p PopularityIndex) TopRated(k, minCount int) []string {
	labels := make([]string, 0, len(p))
	for label, e := range p {
		if e.RatingCount >= minCount {
			labels = append(labels, label)
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		a, b := p[labels[i]], p[labels[j]]
		if a.RatingCount != b.RatingCount {
			return a.RatingCount > b.RatingCount
		}
		if a.MeanRating != b.MeanRating {
			return a.MeanRating > b.MeanRating
		}
		return labels[i] < labels[j]
	})
	if k > 0 && len(labels) > k {
		labels = labels[:k]
	}
	return labels
}
