// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinecorr/internal/recommend"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// renderRecommendations writes resp as a table.
func renderRecommendations(w io.Writer, resp *recommend.Response) error {
	if len(resp.Items) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("No movie shares enough raters with %q.", resp.Target)))
		return err
	}

	rows := make([][]string, len(resp.Items))
	for i, item := range resp.Items {
		mean := "-"
		if item.MeanRating != nil {
			mean = strconv.FormatFloat(*item.MeanRating, 'f', 2, 64)
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			item.Title,
			strconv.FormatFloat(item.Correlation, 'f', 3, 64),
			strconv.Itoa(item.Overlap),
			mean,
			strconv.Itoa(item.RatingCount),
			strings.Join(item.Genres, ", "),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Title", "Correlation", "Overlap", "Mean", "Ratings", "Genres").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})

	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n",
		headerStyle.Render("Movies like "+resp.Target),
		t.Render(),
		mutedStyle.Render(fmt.Sprintf("%d of %d shown, snapshot v%d", len(resp.Items), resp.Total, resp.Metadata.SnapshotVersion)),
	)
	return err
}

// renderTitles writes one title per line.
func renderTitles(w io.Writer, titles []string) error {
	for _, title := range titles {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	return nil
}

// renderJSON writes v as indented JSON.
func renderJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
