// Package greedy builds initial fragment orders for the annealing search.
//
// [Build] grows a path from one start fragment, always appending the unused
// fragment with the largest overlap against the current last fragment, as
// long as the assembled length stays within the budget. Candidates are
// scanned in ascending index order and only a strictly larger overlap
// replaces the current choice, so ties always go to the lowest index.
//
// [Seed] runs Build from a shuffled subset of start fragments and keeps the
// best-scoring path. Starts are evaluated concurrently but merged in restart
// order, so the winner depends only on the random source, never on
// goroutine scheduling.
package greedy

import (
	"context"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	"github.com/matzehuels/sbhasm/pkg/core/overlap"
)

// DefaultRestarts is the number of start fragments tried by [Seed].
const DefaultRestarts = 100

// Build returns the greedy path from start under maxLen.
//
// width is the common fragment length. If a single fragment already exceeds
// maxLen, Build returns an empty order; otherwise the result always begins
// with start and may cover fewer than all fragments.
func Build(start int, m *overlap.Matrix, width, maxLen int) []int {
	if width > maxLen {
		return []int{}
	}
	n := m.Size()
	used := make([]bool, n)
	used[start] = true
	order := []int{start}
	length := width
	current := start

	for {
		best, bestOv := -1, -1
		for i := range n {
			if used[i] {
				continue
			}
			ov := m.At(current, i)
			if length+width-ov <= maxLen && ov > bestOv {
				best, bestOv = i, ov
			}
		}
		if best < 0 {
			return order
		}
		order = append(order, best)
		used[best] = true
		length += width - bestOv
		current = best
	}
}

// Candidate is one evaluated greedy path.
type Candidate struct {
	Start    int    // start fragment; -1 when no restart ran
	Order    []int  // fragment indices in assembly order
	Sequence string // assembled sequence
	Score    int    // fragments covered by Sequence
	Length   int    // len(Sequence)
}

// Options configures [Seed].
type Options struct {
	Restarts int // start fragments to try; <= 0 means DefaultRestarts
	MaxLen   int // assembled length budget
	Workers  int // concurrent builds; <= 0 means runtime.GOMAXPROCS(0)
}

// Starts returns the start fragments Seed would try: a Fisher-Yates
// shuffle of 0..n-1 drawn from rng, truncated to min(restarts, n).
func Starts(rng *rand.Rand, n, restarts int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng.Shuffle(n, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx[:min(restarts, n)]
}

// Seed evaluates greedy paths from several start fragments and returns the
// highest-scoring one. On equal scores the earlier restart wins.
//
// rng is consumed only for the start shuffle. The returned error is non-nil
// only when ctx is cancelled.
func Seed(ctx context.Context, asm *assembly.Assembler, rng *rand.Rand, opts Options) (Candidate, error) {
	if opts.Restarts <= 0 {
		opts.Restarts = DefaultRestarts
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	set := asm.Fragments()
	starts := Starts(rng, set.Len(), opts.Restarts)
	results := make([]Candidate, len(starts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for r, start := range starts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			order := Build(start, asm.Overlaps(), set.Width(), opts.MaxLen)
			seq, score, length := asm.Evaluate(order)
			results[r] = Candidate{Start: start, Order: order, Sequence: seq, Score: score, Length: length}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Candidate{}, err
	}

	best := Candidate{Start: -1, Order: []int{}, Score: -1}
	for _, c := range results {
		if c.Score > best.Score {
			best = c
		}
	}
	if best.Score < 0 {
		best.Score = 0
	}
	return best, nil
}
