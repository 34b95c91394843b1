// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinecorr/internal/cache"
	"github.com/tomtom215/cinecorr/internal/metrics"
)

// Snapshot is one immutable build of every derived structure.
type Snapshot struct {
	Version       int64
	BuiltAt       time.Time
	BuildDuration time.Duration

	Catalog    *Catalog
	Matrix     *RatingMatrix
	Similarity *SimilarityMatrix
	Popularity PopularityIndex

	// TitleIndex completes label prefixes, weighted by rating count.
	TitleIndex *cache.Trie

	Diagnostics BuildDiagnostics
}

// Engine builds snapshots and answers queries against the published one.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	snapshot atomic.Pointer[Snapshot]
	version  atomic.Int64

	// buildMu serializes rebuilds; queries never take it.
	buildMu    sync.Mutex
	rebuilding atomic.Bool

	errMu     sync.RWMutex
	lastError string

	results *cache.LRU[*Response]
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	if cfg.Cache.Enabled {
		e.results = cache.NewLRU[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Snapshot returns the published snapshot, or nil before the first build.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Build derives a snapshot from store without publishing it.
func (e *Engine) Build(ctx context.Context, store *RatingStore) (*Snapshot, error) {
	if store == nil {
		return nil, errors.New("build: nil rating store")
	}
	start := time.Now()

	catalog := NewCatalog(store.Movies, e.config.DuplicateTitles)

	stageStart := time.Now()
	matrix, diag, err := BuildMatrix(store.Ratings, catalog, e.config.Scale)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	metrics.RecordBuildStage("matrix", time.Since(stageStart))

	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	stageStart = time.Now()
	sim, err := Correlate(ctx, matrix, e.config.CorrelateOptions())
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	metrics.RecordBuildStage("similarity", time.Since(stageStart))

	// Summarize applies the same validation as BuildMatrix, so its
	// diagnostics duplicate diag and are not kept.
	stageStart = time.Now()
	pop, _ := Summarize(store.Ratings, catalog, e.config.Scale)
	metrics.RecordBuildStage("popularity", time.Since(stageStart))

	index := cache.NewTrie()
	for _, label := range catalog.Labels() {
		index.Insert(label, pop[label].RatingCount)
	}

	return &Snapshot{
		BuiltAt:       time.Now(),
		BuildDuration: time.Since(start),
		Catalog:       catalog,
		Matrix:        matrix,
		Similarity:    sim,
		Popularity:    pop,
		TitleIndex:    index,
		Diagnostics: BuildDiagnostics{
			Load:   store.Load,
			Matrix: diag,
		},
	}, nil
}

// LoadStore builds a snapshot from store and publishes it.
func (e *Engine) LoadStore(ctx context.Context, store *RatingStore) (*Snapshot, error) {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	return e.buildAndPublish(ctx, time.Now(), func(context.Context) (*RatingStore, error) {
		return store, nil
	})
}

// Rebuild loads a RatingStore from provider, builds a snapshot and
// publishes it. On failure the previously published snapshot stays in
// service.
func (e *Engine) Rebuild(ctx context.Context, provider DataProvider) (*Snapshot, error) {
	if provider == nil {
		return nil, errors.New("rebuild: nil data provider")
	}

	e.buildMu.Lock()
	defer e.buildMu.Unlock()

	return e.buildAndPublish(ctx, time.Now(), provider.LoadRatingStore)
}

// buildAndPublish must be called with buildMu held.
func (e *Engine) buildAndPublish(ctx context.Context, start time.Time, load func(context.Context) (*RatingStore, error)) (*Snapshot, error) {
	e.rebuilding.Store(true)
	defer e.rebuilding.Store(false)

	e.logger.Info().Msg("building recommendation snapshot")

	stageStart := time.Now()
	store, err := load(ctx)
	if err != nil {
		return nil, e.buildFailed(start, fmt.Errorf("load rating store: %w", err))
	}
	metrics.RecordBuildStage("load", time.Since(stageStart))

	snap, err := e.Build(ctx, store)
	if err != nil {
		return nil, e.buildFailed(start, err)
	}

	e.publish(snap)
	metrics.RecordBuild("success", time.Since(start))
	return snap, nil
}

func (e *Engine) buildFailed(start time.Time, err error) error {
	outcome := "error"
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		outcome = "canceled"
	}
	metrics.RecordBuild(outcome, time.Since(start))

	e.errMu.Lock()
	e.lastError = err.Error()
	e.errMu.Unlock()

	e.logger.Error().Err(err).Str("outcome", outcome).Msg("snapshot build failed")
	return err
}

// publish assigns the next version to snap and makes it visible to queries.
func (e *Engine) publish(snap *Snapshot) {
	snap.Version = e.version.Add(1)
	e.snapshot.Store(snap)
	if e.results != nil {
		e.results.Purge()
	}

	e.errMu.Lock()
	e.lastError = ""
	e.errMu.Unlock()

	diag := snap.Diagnostics
	metrics.RecordMalformed("load", reasonCounts(diag.Load))
	metrics.RecordMalformed("matrix", reasonCounts(diag.Matrix))
	metrics.UpdateSnapshot(snap.Version, snap.Matrix.NumTitles(), snap.Matrix.NumUsers(), snap.Similarity.PairCount())

	event := e.logger.Info()
	if diag.Load.Skipped > 0 || diag.Matrix.Skipped > 0 {
		event = e.logger.Warn().
			Int("load_skipped", diag.Load.Skipped).
			Int("matrix_skipped", diag.Matrix.Skipped).
			AnErr("first_rejections", diag.Matrix.Err())
	}
	event.
		Int64("version", snap.Version).
		Int("movies", snap.Catalog.Len()).
		Int("titles", snap.Matrix.NumTitles()).
		Int("users", snap.Matrix.NumUsers()).
		Int("ratings", snap.Matrix.NumCells()).
		Int("defined_pairs", snap.Similarity.PairCount()).
		Dur("duration", snap.BuildDuration).
		Msg("recommendation snapshot published")
}

func reasonCounts(d Diagnostics) map[string]int {
	out := make(map[string]int, len(d.ByReason))
	for reason, n := range d.ByReason {
		out[string(reason)] = n
	}
	return out
}

// Recommend answers a query against the published snapshot.
//
// The returned Response may be shared with the result cache; callers must
// not modify its Items.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		metrics.RecordQuery("error", time.Since(start))
		return nil, err
	}

	snap := e.snapshot.Load()
	if snap == nil {
		metrics.RecordQuery("not_ready", time.Since(start))
		return nil, ErrNotReady
	}

	req = e.prepareRequest(req)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("title", req.Title).
		Logger()

	label, err := snap.Catalog.Resolve(req.Title)
	if err != nil {
		metrics.RecordQuery("unknown_title", time.Since(start))
		logger.Debug().Err(err).Msg("title not resolvable")
		return nil, err
	}

	key := fmt.Sprintf("%d|%s|%d|%d", snap.Version, label, req.Limit, req.MinRatingCount)
	if e.results != nil {
		cached, ok := e.results.Get(key)
		metrics.RecordCacheLookup(ok)
		if ok {
			resp := *cached
			resp.Metadata.RequestID = req.RequestID
			resp.Metadata.CacheHit = true
			resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
			metrics.RecordQuery("success", time.Since(start))
			logger.Debug().Msg("cache hit")
			return &resp, nil
		}
	}

	items, total, err := RecommendWithOptions(label, snap.Similarity, snap.Popularity, snap.Catalog.GenreIndex(), QueryOptions{
		Limit:          req.Limit,
		MinRatingCount: req.MinRatingCount,
	})
	if err != nil {
		metrics.RecordQuery("unknown_title", time.Since(start))
		logger.Debug().Err(err).Msg("title has no similarity row")
		return nil, err
	}

	resp := &Response{
		Target: label,
		Items:  items,
		Total:  total,
		Metadata: ResponseMetadata{
			RequestID:       req.RequestID,
			SnapshotVersion: snap.Version,
			BuiltAt:         snap.BuiltAt,
			LatencyMS:       time.Since(start).Milliseconds(),
		},
	}
	if e.results != nil {
		e.results.Add(key, resp)
	}

	metrics.RecordQuery("success", time.Since(start))
	logger.Debug().
		Str("target", label).
		Int("total", total).
		Int("returned", len(items)).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Limit <= 0 {
		req.Limit = e.config.Limits.DefaultK
	}
	if req.Limit > e.config.Limits.MaxK {
		req.Limit = e.config.Limits.MaxK
	}
	if req.MinRatingCount < 0 {
		req.MinRatingCount = 0
	}
	return req
}

// Titles lists catalog labels for a selection front end. With sample > 0
// it returns up to sample labels in a random order determined by seed; a
// zero seed uses Config.Seed.
func (e *Engine) Titles(sample int, seed int64) ([]string, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	labels := snap.Catalog.Labels()
	if sample <= 0 {
		return labels, nil
	}

	if seed == 0 {
		seed = e.config.Seed
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for title sampling
	rng.Shuffle(len(labels), func(i, j int) { labels[i], labels[j] = labels[j], labels[i] })
	if sample < len(labels) {
		labels = labels[:sample]
	}
	return labels, nil
}

// Search completes a case-insensitive title prefix. The most rated labels
// come first. limit follows the same defaults and cap as Recommend.
func (e *Engine) Search(prefix string, limit int) ([]string, error) {
	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNotReady
	}

	if limit <= 0 {
		limit = e.config.Limits.DefaultK
	}
	if limit > e.config.Limits.MaxK {
		limit = e.config.Limits.MaxK
	}

	matches := snap.TitleIndex.Complete(strings.TrimSpace(prefix), limit)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Value
	}
	return out, nil
}

// Status reports the published snapshot and build state.
func (e *Engine) Status() Status {
	e.errMu.RLock()
	lastError := e.lastError
	e.errMu.RUnlock()

	st := Status{
		Rebuilding: e.rebuilding.Load(),
		LastError:  lastError,
		MinOverlap: e.config.MinOverlap,
	}

	snap := e.snapshot.Load()
	if snap == nil {
		return st
	}

	st.Ready = true
	st.SnapshotVersion = snap.Version
	st.BuiltAt = snap.BuiltAt
	st.BuildDurationMS = snap.BuildDuration.Milliseconds()
	st.Movies = snap.Catalog.Len()
	st.Titles = snap.Matrix.NumTitles()
	st.Users = snap.Matrix.NumUsers()
	st.Cells = snap.Matrix.NumCells()
	st.DefinedPairs = snap.Similarity.PairCount()
	st.MinOverlap = snap.Similarity.MinOverlap()
	st.Diagnostics = snap.Diagnostics
	return st
}
