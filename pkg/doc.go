// Package pkg provides the core libraries for sbhasm sequence reconstruction.
//
// # Overview
//
// sbhasm rebuilds a sequence from equal-length overlapping fragments, as
// produced by sequencing by hybridization, under a maximum total length.
// The pkg directory is organized into four main areas:
//
//  1. [core] - Domain logic (fragments, overlaps, greedy paths, annealing)
//  2. [pipeline] - Orchestration (overlap → seed → anneal) with caching
//  3. Infrastructure - [cache], [runlog], [config], [observability], [errors]
//  4. Outputs - [api], [render/pathviz], [io]
//
// # Architecture
//
// The typical data flow through sbhasm:
//
//	Fragment file
//	      ↓
//	[core/fragment] (read and validate)
//	      ↓
//	[core/overlap] (pairwise suffix/prefix matrix)
//	      ↓
//	[core/greedy] (best of many greedy paths)
//	      ↓
//	[core/anneal] (simulated annealing under the length budget)
//	      ↓
//	order, sequence, score → report, run log, JSON, diagram
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/sbhasm/pkg/core/fragment"
//	    "github.com/matzehuels/sbhasm/pkg/pipeline"
//	)
//
//	set, _ := fragment.Import("reads.txt")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, _ := runner.Execute(ctx, set, pipeline.Options{MaxLen: 209})
//	fmt.Println(res.Sequence, res.Score)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/fragment] - Fragment sets: one fragment per line, equal lengths.
//
// [core/overlap] - The overlap matrix, computed row-parallel.
//
// [core/assembly] - Assembling an order into a sequence, its length, and
// its coverage score.
//
// [core/greedy] - Greedy paths with lowest-index tie-breaks and seeded
// restarts.
//
// [core/anneal] - Swap/delete/insert moves with Metropolis acceptance and
// geometric cooling.
//
// ## Infrastructure
//
// [pipeline] - The complete pipeline used by CLI and API. Ensures consistent
// defaults, validation and caching across entry points.
//
// [cache] - File, Redis and null caches for overlap matrices and results.
//
// [runlog] - Append-only run records in a text file or MongoDB.
//
// [config] - TOML configuration file.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// ## Outputs
//
// [api] - HTTP API (chi).
//
// [render/pathviz] - Fragment path diagrams via Graphviz.
//
// [io] - Result JSON import and export.
//
// # Testing
//
// Run tests:
//
//	go test ./...                      # All tests
//	go test ./pkg/core/...             # Algorithm packages
//	go test -run Example ./pkg/...     # Examples only
//	REDIS_URL=redis://localhost:6379 go test ./pkg/cache
//	MONGO_URI=mongodb://localhost:27017 go test ./pkg/runlog
//
// [core]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/core
// [core/fragment]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/core/fragment
// [core/overlap]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/core/overlap
// [core/assembly]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/core/assembly
// [core/greedy]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/core/greedy
// [core/anneal]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/core/anneal
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/cache
// [runlog]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/runlog
// [config]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/errors
// [api]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/api
// [render/pathviz]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/render/pathviz
// [io]: https://pkg.go.dev/github.com/matzehuels/sbhasm/pkg/io
package pkg
