package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sbhasm/pkg/cache"
	"github.com/matzehuels/sbhasm/pkg/core/anneal"
	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	"github.com/matzehuels/sbhasm/pkg/core/greedy"
	"github.com/matzehuels/sbhasm/pkg/core/overlap"
	"github.com/matzehuels/sbhasm/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // entry lifetime; zero means DefaultTTL
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete overlap → seed → anneal pipeline with caching.
//
// If ctx is cancelled during annealing, Execute returns the best result
// found so far together with the context error. Such partial results are
// never cached.
func (r *Runner) Execute(ctx context.Context, set fragment.Set, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	start := time.Now()

	fp := cache.Fingerprint(set.Strings())
	resultKey := r.Keyer.ResultKey(fp, opts.ResultKeyOpts())
	if !opts.Refresh {
		if res, ok := r.cachedResult(ctx, resultKey); ok {
			res.CacheInfo.ResultHit = true
			res.Stats.Elapsed = time.Since(start)
			logger.Info("using cached result", "score", res.Score, "length", res.Length)
			return res, nil
		}
	}

	result := &Result{
		Fragments:   set.Len(),
		Width:       set.Width(),
		Fingerprint: fp,
	}

	// Stage 1: Overlap
	m, hit, err := r.OverlapsWithCacheInfo(ctx, set, opts)
	if err != nil {
		return nil, fmt.Errorf("overlap: %w", err)
	}
	result.CacheInfo.MatrixHit = hit
	result.Stats.OverlapTime = time.Since(start)
	logger.Info("computed overlaps",
		"fragments", set.Len(),
		"cached", hit,
		"duration", result.Stats.OverlapTime)

	asm := assembly.New(set, m)
	rng := NewRNG(opts.Seed)

	// Stage 2: Seed
	seedStart := time.Now()
	observability.Pipeline().OnSeedStart(ctx, opts.Restarts)
	seed, err := greedy.Seed(ctx, asm, rng, opts.SeedOptions())
	result.Stats.SeedTime = time.Since(seedStart)
	observability.Pipeline().OnSeedComplete(ctx, seed.Score, result.Stats.SeedTime, err)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	result.SeedStart, result.SeedScore = seed.Start, seed.Score
	logger.Info("built greedy seed",
		"restarts", opts.Restarts,
		"score", seed.Score,
		"length", seed.Length,
		"duration", result.Stats.SeedTime)

	// Stage 3: Anneal
	annealStart := time.Now()
	opt, err := anneal.New(asm, opts.AnnealOptions())
	if err != nil {
		return nil, fmt.Errorf("anneal: %w", err)
	}
	observability.Pipeline().OnAnnealStart(ctx, opts.Iterations)
	ar, runErr := opt.Run(ctx, anneal.State{Order: seed.Order, Score: seed.Score, Length: seed.Length}, rng)
	result.Stats.AnnealTime = time.Since(annealStart)
	observability.Pipeline().OnAnnealComplete(ctx, ar.Best.Score, ar.Iterations, result.Stats.AnnealTime, runErr)
	if runErr != nil && ctx.Err() == nil {
		return nil, fmt.Errorf("anneal: %w", runErr)
	}

	result.Order = ar.Best.Order
	result.Sequence = ar.Sequence
	result.Score = ar.Best.Score
	result.Length = ar.Best.Length
	result.Iterations = ar.Iterations
	result.Accepted = ar.Accepted
	result.Declined = ar.Declined
	result.Rejected = ar.Rejected
	result.FinalTemp = ar.FinalTemp
	result.Stats.Elapsed = time.Since(start)

	if runErr != nil {
		logger.Warn("annealing interrupted", "iterations", ar.Iterations, "score", ar.Best.Score)
		return result, fmt.Errorf("anneal: %w", runErr)
	}
	logger.Info("annealed",
		"iterations", ar.Iterations,
		"accepted", ar.Accepted,
		"score", ar.Best.Score,
		"duration", result.Stats.AnnealTime)

	r.store(ctx, "result", resultKey, result)
	return result, nil
}

// OverlapsWithCacheInfo computes the overlap matrix of set with caching and
// returns cache hit info.
func (r *Runner) OverlapsWithCacheInfo(ctx context.Context, set fragment.Set, opts Options) (*overlap.Matrix, bool, error) {
	r.applyLogger(&opts)
	key := r.Keyer.MatrixKey(cache.Fingerprint(set.Strings()))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var m overlap.Matrix
			if err := json.Unmarshal(data, &m); err == nil && m.Size() == set.Len() {
				observability.Cache().OnCacheHit(ctx, "matrix")
				return &m, true, nil
			}
			// If deserialization fails, fall through to recompute
		} else if err != nil {
			opts.Logger.Debug("cache read failed", "key", "matrix", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "matrix")
	}

	start := time.Now()
	observability.Pipeline().OnOverlapStart(ctx, set.Len())
	m, err := overlap.Compute(ctx, set.Strings(), opts.Workers)
	observability.Pipeline().OnOverlapComplete(ctx, set.Len(), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.store(ctx, "matrix", key, m)
	return m, false, nil
}

// Overlaps is a convenience wrapper that calls OverlapsWithCacheInfo and discards the cache hit info.
func (r *Runner) Overlaps(ctx context.Context, set fragment.Set, opts Options) (*overlap.Matrix, error) {
	m, _, err := r.OverlapsWithCacheInfo(ctx, set, opts)
	return m, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "key", "result", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "result")
	return &res, true
}

// store writes v to the cache. Failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, keyType, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Debug("cache encode failed", "key", keyType, "err", err)
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "key", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
