// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedRating marks a rating record that was rejected and skipped.
	ErrMalformedRating = errors.New("malformed rating")

	// ErrUnknownTitle marks a query target that cannot be resolved.
	ErrUnknownTitle = errors.New("unknown title")

	// ErrNotReady is returned by queries before the first snapshot exists.
	ErrNotReady = errors.New("recommendation snapshot not ready")
)

// MalformedReason classifies a rejected rating record.
type MalformedReason string

const (
	// ReasonNonNumeric means a numeric field could not be parsed.
	ReasonNonNumeric MalformedReason = "non_numeric"
	// ReasonNonFinite means the rating value is NaN or infinite.
	ReasonNonFinite MalformedReason = "non_finite"
	// ReasonOutOfScale means the rating value lies outside the Scale.
	ReasonOutOfScale MalformedReason = "out_of_scale"
	// ReasonUnknownMovie means the movieId is not in the catalog.
	ReasonUnknownMovie MalformedReason = "unknown_movie"
	// ReasonShortRecord means a row had fewer fields than the header.
	ReasonShortRecord MalformedReason = "short_record"
)

// MalformedRatingError describes one rejected rating record.
type MalformedRatingError struct {
	// Line is the 1-based source line, or 0 when unknown.
	Line    int
	UserID  int
	MovieID int
	Reason  MalformedReason
	Detail  string
}

func (e *MalformedRatingError) Error() string {
	var b strings.Builder
	b.WriteString("malformed rating")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.UserID != 0 || e.MovieID != 0 {
		fmt.Fprintf(&b, " (user %d, movie %d)", e.UserID, e.MovieID)
	}
	fmt.Fprintf(&b, ": %s", e.Reason)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is reports whether target is ErrMalformedRating.
func (e *MalformedRatingError) Is(target error) bool {
	return target == ErrMalformedRating
}

// UnknownTitleReason tells apart the causes of ErrUnknownTitle.
type UnknownTitleReason string

const (
	// ReasonNotInCatalog means no movie has this title or label.
	ReasonNotInCatalog UnknownTitleReason = "not_in_catalog"
	// ReasonNotRated means the movie exists but has no accepted ratings.
	ReasonNotRated UnknownTitleReason = "not_rated"
	// ReasonBeyondCap means the title fell outside Config.MaxTitles.
	ReasonBeyondCap UnknownTitleReason = "beyond_cap"
	// ReasonAmbiguous means a plain title matches several movies.
	ReasonAmbiguous UnknownTitleReason = "ambiguous"
)

// UnknownTitleError is returned when a query target cannot be resolved.
type UnknownTitleError struct {
	Title  string
	Reason UnknownTitleReason

	// Candidates lists matching labels when Reason is ReasonAmbiguous.
	Candidates []string
}

func (e *UnknownTitleError) Error() string {
	switch e.Reason {
	case ReasonAmbiguous:
		return fmt.Sprintf("unknown title %q: ambiguous, candidates: %s", e.Title, strings.Join(e.Candidates, ", "))
	case ReasonNotRated:
		return fmt.Sprintf("unknown title %q: in catalog but never rated", e.Title)
	case ReasonBeyondCap:
		return fmt.Sprintf("unknown title %q: not among the correlated titles", e.Title)
	default:
		return fmt.Sprintf("unknown title %q: not in catalog", e.Title)
	}
}

// Is reports whether target is ErrUnknownTitle.
func (e *UnknownTitleError) Is(target error) bool {
	return target == ErrUnknownTitle
}

// maxDiagnosticSamples bounds the retained sample errors.
const maxDiagnosticSamples = 10

// Diagnostics counts accepted and rejected records of one pass.
type Diagnostics struct {
	Accepted int `json:"accepted"`
	Skipped  int `json:"skipped"`

	// Overwritten counts (user, label) cells replaced by a later rating.
	Overwritten int `json:"overwritten,omitempty"`

	ByReason map[MalformedReason]int `json:"by_reason,omitempty"`

	// Samples holds the first rejections, in order.
	Samples []*MalformedRatingError `json:"-"`
}

// Reject records a skipped record.
func (d *Diagnostics) Reject(err *MalformedRatingError) {
	d.Skipped++
	if d.ByReason == nil {
		d.ByReason = make(map[MalformedReason]int)
	}
	d.ByReason[err.Reason]++
	if len(d.Samples) < maxDiagnosticSamples {
		d.Samples = append(d.Samples, err)
	}
}

// Accept records an accepted record.
func (d *Diagnostics) Accept() {
	d.Accepted++
}

// Err joins the sample errors, or returns nil when nothing was skipped.
func (d *Diagnostics) Err() error {
	if d.Skipped == 0 {
		return nil
	}
	errs := make([]error, 0, len(d.Samples))
	for _, s := range d.Samples {
		errs = append(errs, s)
	}
	return errors.Join(errs...)
}

// BuildDiagnostics groups the diagnostics of one engine build.
type BuildDiagnostics struct {
	// Load covers rows rejected by the loader.
	Load Diagnostics `json:"load"`

	// Matrix covers ratings rejected while pivoting.
	Matrix Diagnostics `json:"matrix"`
}
