// Package analytics is the read-only query layer over the unified dataset.
// An Engine owns the current snapshot plus a per-snapshot cache of computed
// results; Reload builds a complete replacement snapshot and swaps it in
// atomically, so queries always observe one consistent dataset.
package analytics

import (
	"context"
	"log/slog"
	"sync"

	"freightcli/internal/config"
	"freightcli/internal/errors"
	"freightcli/internal/loader"
	"freightcli/internal/pipeline"
	"freightcli/internal/scoring"
)

// Engine serves every aggregation and scoring query. All methods are safe
// for concurrent use; queries run lock-free against an immutable snapshot.
type Engine struct {
	loader  *loader.Loader
	builder *pipeline.Builder
	heur    config.HeuristicsConfig
	logger  *slog.Logger

	mu    sync.RWMutex
	snap  *pipeline.Snapshot
	cache *snapshotCache
}

// snapshotCache memoizes derived results for exactly one snapshot. A reload
// discards the whole cache with the snapshot it belonged to. Only the
// unfiltered aggregations are memoized; filtered queries depend on the
// request and are computed per call.
type snapshotCache struct {
	mu        sync.Mutex
	scorecard []scoring.CarrierScore
	scored    bool

	categories  []CategoryCost
	trend       []MonthlyTrend
	carrierPerf []CarrierPerformance
}

// NewEngine creates an engine over the given loader and builder. No data is
// loaded until Reload is called.
func NewEngine(l *loader.Loader, b *pipeline.Builder, heur config.HeuristicsConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		loader:  l,
		builder: b,
		heur:    heur,
		logger:  logger.With(slog.String("component", "analytics")),
	}
}

// Reload loads the five source tables, builds a fresh snapshot and publishes
// it. On failure the previous snapshot, if any, stays in place.
func (e *Engine) Reload(ctx context.Context) error {
	tables, err := e.loader.LoadAll(ctx)
	if err != nil {
		return err
	}

	snap, err := e.builder.Build(ctx, tables)
	if err != nil {
		return err
	}

	e.install(snap)

	e.logger.InfoContext(ctx, "snapshot published",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Int("orders", len(snap.Orders)))
	return nil
}

// install publishes a snapshot with a fresh cache.
func (e *Engine) install(snap *pipeline.Snapshot) {
	e.mu.Lock()
	e.snap = snap
	e.cache = &snapshotCache{}
	e.mu.Unlock()
}

// Loaded reports whether a snapshot has been published.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap != nil
}

// Snapshot returns the current snapshot, or a not-found error before the
// first successful Reload.
func (e *Engine) Snapshot() (*pipeline.Snapshot, error) {
	snap, _, err := e.current()
	return snap, err
}

func (e *Engine) current() (*pipeline.Snapshot, *snapshotCache, error) {
	e.mu.RLock()
	snap, cache := e.snap, e.cache
	e.mu.RUnlock()
	if snap == nil {
		return nil, nil, errors.NewNotFoundError("unified dataset")
	}
	return snap, cache, nil
}

// CarrierScores returns the weighted carrier scorecard, best first. The
// scorecard is computed once per snapshot and shared with Recommendations.
func (e *Engine) CarrierScores() ([]scoring.CarrierScore, error) {
	snap, cache, err := e.current()
	if err != nil {
		return nil, err
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if !cache.scored {
		cache.scorecard = scoring.Calculate(snap.Orders, scoring.DefaultWeights())
		cache.scored = true
	}
	return cache.scorecard, nil
}

// Recommendations derives the carrier-shift recommendation from the cached
// scorecard. Fewer than two scored carriers yields an empty list, not an
// error.
func (e *Engine) Recommendations() ([]scoring.Recommendation, error) {
	scores, err := e.CarrierScores()
	if err != nil {
		return nil, err
	}
	snap, _, err := e.current()
	if err != nil {
		return nil, err
	}
	return scoring.Recommendations(scores, snap.Orders), nil
}
