// Package cache stores expensive intermediate results between runs.
//
// Two things are worth caching in sbhasm: the overlap matrix of a fragment
// set, which is quadratic to compute and depends only on the fragments, and
// the final result of a fully seeded run, which is reproducible given the
// fragments and every search parameter.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (--redis-url, API server)
//   - [NullCache]: caching disabled (--no-cache)
//
// # Keys
//
// Keys come from a [Keyer] so that backends never see raw fragment text:
//
//	k := cache.NewDefaultKeyer()
//	fp := cache.Fingerprint(set.Strings())
//	data, ok, err := c.Get(ctx, k.MatrixKey(fp))
//
// Cache failures are never fatal to callers; a failed Get is a miss.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// MatrixKey identifies the overlap matrix of a fragment set.
	MatrixKey(fingerprint string) string

	// ResultKey identifies the outcome of a run over a fragment set.
	ResultKey(fingerprint string, opts ResultKeyOpts) string
}

// ResultKeyOpts holds every parameter that influences a run's outcome.
// Worker count is deliberately absent: it does not change results.
type ResultKeyOpts struct {
	MaxLen      int     `json:"max_len"`
	Restarts    int     `json:"restarts"`
	Iterations  int     `json:"iterations"`
	Seed        uint64  `json:"seed"`
	InitialTemp float64 `json:"t0"`
	Cooling     float64 `json:"alpha"`
	MinTemp     float64 `json:"t_min"`
}

// DefaultKeyer produces "matrix:<sha256>" and "result:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MatrixKey implements Keyer.
func (DefaultKeyer) MatrixKey(fingerprint string) string {
	return hashKey("matrix", fingerprint)
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(fingerprint string, opts ResultKeyOpts) string {
	return hashKey("result", fingerprint, opts)
}
