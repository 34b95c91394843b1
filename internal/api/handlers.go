// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/cinecorr/internal/logging"
	"github.com/tomtom215/cinecorr/internal/models"
	"github.com/tomtom215/cinecorr/internal/recommend"
	"github.com/tomtom215/cinecorr/internal/validation"
	ws "github.com/tomtom215/cinecorr/internal/websocket"
)

// Recommender is the query side of recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Titles(sample int, seed int64) ([]string, error)
	Search(prefix string, limit int) ([]string, error)
	Status() recommend.Status
}

// RebuildTrigger requests an out-of-band rebuild. Trigger reports whether
// the request was queued; false means one is already pending.
type RebuildTrigger interface {
	Trigger() bool
}

// Handler serves the HTTP API.
type Handler struct {
	engine       Recommender
	rebuild      RebuildTrigger
	started      time.Time
	queryTimeout time.Duration

	hub       *ws.Hub
	wsOrigins []string
}

// NewHandler creates a Handler. rebuild may be nil, in which case
// POST /api/v1/rebuild answers 503.
func NewHandler(engine Recommender, rebuild RebuildTrigger) *Handler {
	return &Handler{
		engine:       engine,
		rebuild:      rebuild,
		started:      time.Now(),
		queryTimeout: 10 * time.Second,
	}
}

type recommendationsQuery struct {
	Title    string `query:"title" validate:"required,max=512"`
	Limit    int    `query:"limit" validate:"min=0"`
	MinCount int    `query:"min_count" validate:"min=0"`
}

type titlesQuery struct {
	Sample int    `query:"sample" validate:"min=0,max=100000"`
	Seed   int64  `query:"seed"`
	Prefix string `query:"prefix" validate:"max=512"`
	Limit  int    `query:"limit" validate:"min=0"`
}

// intParam parses an optional integer query parameter.
func intParam(q url.Values, name string) (int64, *models.APIError) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: fmt.Sprintf("%s must be an integer", name),
			Details: map[string]interface{}{"field": name, "value": raw},
		}
	}
	return v, nil
}

// Recommendations handles GET /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, apiErr := intParam(q, "limit")
	if apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}
	minCount, apiErr := intParam(q, "min_count")
	if apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	params := recommendationsQuery{
		Title:    q.Get("title"),
		Limit:    int(limit),
		MinCount: int(minCount),
	}
	if err := validation.ValidateStruct(&params); err != nil {
		respondError(w, r, http.StatusBadRequest, err.ToAPIError(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	resp, err := h.engine.Recommend(ctx, recommend.Request{
		Title:          params.Title,
		Limit:          params.Limit,
		MinRatingCount: params.MinCount,
		RequestID:      logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, resp, models.Metadata{
		QueryTimeMS: resp.Metadata.LatencyMS,
		Cached:      resp.Metadata.CacheHit,
	})
}

// Titles handles GET /api/v1/titles. A prefix parameter switches from
// listing to completion, ranked by rating count.
func (h *Handler) Titles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var ints [3]int64
	for i, name := range []string{"sample", "seed", "limit"} {
		v, apiErr := intParam(q, name)
		if apiErr != nil {
			respondError(w, r, http.StatusBadRequest, apiErr, nil)
			return
		}
		ints[i] = v
	}

	params := titlesQuery{
		Sample: int(ints[0]),
		Seed:   ints[1],
		Prefix: q.Get("prefix"),
		Limit:  int(ints[2]),
	}
	if err := validation.ValidateStruct(&params); err != nil {
		respondError(w, r, http.StatusBadRequest, err.ToAPIError(), nil)
		return
	}

	start := time.Now()
	var (
		titles []string
		err    error
	)
	if q.Has("prefix") {
		titles, err = h.engine.Search(params.Prefix, params.Limit)
	} else {
		titles, err = h.engine.Titles(params.Sample, params.Seed)
	}
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, models.TitleList{
		Titles: titles,
		Count:  len(titles),
		Sample: params.Sample,
		Seed:   params.Seed,
		Prefix: params.Prefix,
	}, models.Metadata{QueryTimeMS: time.Since(start).Milliseconds()})
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, h.engine.Status(), models.Metadata{})
}

// Rebuild handles POST /api/v1/rebuild.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if h.rebuild == nil {
		respondError(w, r, http.StatusServiceUnavailable, &models.APIError{
			Code:    models.ErrCodeNotReady,
			Message: "rebuilds are not enabled",
		}, nil)
		return
	}

	queued := h.rebuild.Trigger()
	logging.Ctx(r.Context()).Info().Bool("queued", queued).Msg("rebuild requested")

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: models.StatusSuccess,
		Data: models.RebuildAccepted{
			Queued:          queued,
			SnapshotVersion: h.engine.Status().SnapshotVersion,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// Health handles GET /health: 200 once a snapshot is published, 503 before.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	st := h.engine.Status()
	health := models.HealthStatus{
		Status:          "healthy",
		Ready:           st.Ready,
		SnapshotVersion: st.SnapshotVersion,
		BuiltAt:         st.BuiltAt,
		UptimeSeconds:   time.Since(h.started).Seconds(),
	}

	status := http.StatusOK
	if !st.Ready {
		health.Status = "starting"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   models.StatusSuccess,
		Data:     health,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
