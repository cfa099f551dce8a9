// Package pipeline provides the assembly pipeline for sbhasm.
//
// This package implements the complete fragments → overlap → seed → anneal
// pipeline that is shared by the CLI and the HTTP API, so that both apply
// the same defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Overlap: compute the pairwise suffix/prefix overlap matrix
//  2. Seed: run randomized greedy restarts and keep the best path
//  3. Anneal: refine the seed path by simulated annealing
//
// A single *rand.Rand seeded from [Options.Seed] drives the seed and anneal
// stages, so a run is reproducible from its options alone.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	set, _ := fragment.Import("reads.txt")
//	result, err := runner.Execute(ctx, set, pipeline.Options{MaxLen: 209})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Sequence, result.Score)
package pipeline

import (
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sbhasm/pkg/cache"
	"github.com/matzehuels/sbhasm/pkg/core/anneal"
	"github.com/matzehuels/sbhasm/pkg/core/greedy"
	errs "github.com/matzehuels/sbhasm/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultRestarts is the number of greedy restarts.
	DefaultRestarts = greedy.DefaultRestarts

	// DefaultIterations is the number of annealing iterations.
	DefaultIterations = anneal.DefaultIterations

	// DefaultTTL is how long overlap matrices and results stay cached.
	DefaultTTL = 7 * 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one assembly run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Search options
	MaxLen     int    `json:"max_len"`
	Restarts   int    `json:"restarts,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`
	Workers    int    `json:"workers,omitempty"` // parallelism for overlap and seeding; results do not depend on it

	// Schedule options
	InitialTemp float64 `json:"t0,omitempty"`
	Cooling     float64 `json:"alpha,omitempty"`
	MinTemp     float64 `json:"t_min,omitempty"`

	// Refresh skips cache lookups (results are still written).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger        *log.Logger           `json:"-"`
	Trace         func(anneal.Step)     `json:"-"`
	Progress      func(anneal.Progress) `json:"-"`
	ProgressEvery int                   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Order    []int  `json:"order"`
	Sequence string `json:"sequence"`
	Score    int    `json:"score"`
	Length   int    `json:"length"`

	// Input shape
	Fragments   int    `json:"fragments"`
	Width       int    `json:"width"`
	Fingerprint string `json:"fingerprint"`

	// Seed stage
	SeedStart int `json:"seed_start"`
	SeedScore int `json:"seed_score"`

	// Anneal stage
	Iterations int     `json:"iterations"`
	Accepted   int     `json:"accepted"`
	Declined   int     `json:"declined"`
	Rejected   int     `json:"rejected"`
	FinalTemp  float64 `json:"final_temp"`

	// Stats contains timing information for this invocation.
	Stats Stats `json:"-"`

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo `json:"-"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	OverlapTime time.Duration
	SeedTime    time.Duration
	AnnealTime  time.Duration
	Elapsed     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	MatrixHit bool // Whether the overlap matrix came from cache
	ResultHit bool // Whether the whole result came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errs.ValidateMaxLen(o.MaxLen); err != nil {
		return err
	}
	if err := errs.ValidateCount("restarts", o.Restarts); err != nil {
		return err
	}
	if err := errs.ValidateCount("workers", o.Workers); err != nil {
		return err
	}
	o.SetSearchDefaults()
	if err := o.AnnealOptions().Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetSearchDefaults sets default values for the seed and anneal stages.
func (o *Options) SetSearchDefaults() {
	if o.Restarts == 0 {
		o.Restarts = DefaultRestarts
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.InitialTemp == 0 {
		o.InitialTemp = anneal.DefaultInitialTemp
	}
	if o.Cooling == 0 {
		o.Cooling = anneal.DefaultCooling
	}
	if o.MinTemp == 0 {
		o.MinTemp = anneal.DefaultMinTemp
	}
	if o.ProgressEvery == 0 {
		o.ProgressEvery = anneal.DefaultProgressEvery
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SeedOptions returns the options for the greedy seed stage.
func (o *Options) SeedOptions() greedy.Options {
	return greedy.Options{
		Restarts: o.Restarts,
		MaxLen:   o.MaxLen,
		Workers:  o.Workers,
	}
}

// AnnealOptions returns the options for the annealing stage.
func (o *Options) AnnealOptions() anneal.Options {
	return anneal.Options{
		Iterations:    o.Iterations,
		InitialTemp:   o.InitialTemp,
		Cooling:       o.Cooling,
		MinTemp:       o.MinTemp,
		MaxLen:        o.MaxLen,
		Trace:         o.Trace,
		Progress:      o.Progress,
		ProgressEvery: o.ProgressEvery,
	}
}

// ResultKeyOpts returns cache key options for the run result.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{
		MaxLen:      o.MaxLen,
		Restarts:    o.Restarts,
		Iterations:  o.Iterations,
		Seed:        o.Seed,
		InitialTemp: o.InitialTemp,
		Cooling:     o.Cooling,
		MinTemp:     o.MinTemp,
	}
}

// NewRNG returns the generator used for a run with the given seed.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}
