// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Catalog indexes movie metadata and assigns each movie its label.
//
// The label is the presentation key used as RatingMatrix column. Under
// DuplicateDisambiguate, movies sharing a title get distinct labels so that
// two different movies are never merged.
type Catalog struct {
	policy DuplicatePolicy

	movies  map[int]Movie
	labels  map[int]string
	byLabel map[string][]int
	byTitle map[string][]string
	genres  GenreIndex
}

// NewCatalog builds a catalog. A movieId listed twice keeps its last row.
// An unknown policy falls back to DuplicateDisambiguate.
func NewCatalog(movies []Movie, policy DuplicatePolicy) *Catalog {
	if !policy.Valid() {
		policy = DuplicateDisambiguate
	}

	c := &Catalog{
		policy:  policy,
		movies:  make(map[int]Movie, len(movies)),
		labels:  make(map[int]string, len(movies)),
		byLabel: make(map[string][]int, len(movies)),
		byTitle: make(map[string][]string),
		genres:  make(GenreIndex, len(movies)),
	}

	for _, m := range movies {
		c.movies[m.ID] = m
	}

	titleIDs := make(map[string][]int)
	for id, m := range c.movies {
		titleIDs[m.Title] = append(titleIDs[m.Title], id)
	}

	for title, ids := range titleIDs {
		slices.Sort(ids)
		for _, id := range ids {
			label := title
			if len(ids) > 1 && policy == DuplicateDisambiguate {
				label = disambiguatedLabel(title, id)
			}
			c.labels[id] = label
			c.byLabel[label] = append(c.byLabel[label], id)
			c.genres[label] = mergeGenres(c.genres[label], c.movies[id].Genres)
		}
		for label := range labelSet(c.labels, ids) {
			c.byTitle[title] = append(c.byTitle[title], label)
		}
		sort.Strings(c.byTitle[title])
	}

	return c
}

func disambiguatedLabel(title string, id int) string {
	return fmt.Sprintf("%s [#%d]", title, id)
}

func labelSet(labels map[int]string, ids []int) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[labels[id]] = struct{}{}
	}
	return set
}

// mergeGenres returns the sorted union of a and b. Never nil.
func mergeGenres(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	for _, g := range b {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Policy returns the duplicate-title policy in effect.
func (c *Catalog) Policy() DuplicatePolicy {
	return c.policy
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.movies)
}

// Label returns the label of a movie.
func (c *Catalog) Label(movieID int) (string, bool) {
	label, ok := c.labels[movieID]
	return label, ok
}

// MovieIDs returns the movies behind a label in ascending order.
func (c *Catalog) MovieIDs(label string) []int {
	return slices.Clone(c.byLabel[label])
}

// Genres returns the genre set of a label. Never nil.
func (c *Catalog) Genres(label string) []string {
	g, ok := c.genres[label]
	if !ok {
		return []string{}
	}
	return slices.Clone(g)
}

// GenreIndex returns the label to genre set mapping. It covers every
// label, including movies without ratings. Callers must not modify it.
func (c *Catalog) GenreIndex() GenreIndex {
	return c.genres
}

// Labels returns all labels in sorted order.
func (c *Catalog) Labels() []string {
	out := make([]string, 0, len(c.byLabel))
	for label := range c.byLabel {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Resolve maps a user supplied title to a label. An exact label wins;
// otherwise a plain title resolves when it names exactly one label.
func (c *Catalog) Resolve(title string) (string, error) {
	title = strings.TrimSpace(title)
	if _, ok := c.byLabel[title]; ok {
		return title, nil
	}

	switch candidates := c.byTitle[title]; len(candidates) {
	case 0:
		return "", &UnknownTitleError{Title: title, Reason: ReasonNotInCatalog}
	case 1:
		return candidates[0], nil
	default:
		return "", &UnknownTitleError{
			Title:      title,
			Reason:     ReasonAmbiguous,
			Candidates: slices.Clone(candidates),
		}
	}
}
