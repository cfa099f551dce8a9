// Package anneal refines a fragment order by simulated annealing under a
// hard length budget.
//
// # The Search
//
// The optimizer holds a current state (order, score, length) and a
// separately snapshotted best-ever state. Every iteration it:
//
//  1. Picks swap, delete or insert uniformly at random and applies it to a
//     copy of the current order.
//  2. Rejects the candidate outright if it is empty or longer than MaxLen.
//  3. Otherwise assembles and scores it, and accepts it if the score did not
//     drop, or with probability exp(delta/T) if it did (Metropolis rule).
//  4. Snapshots the current state as best-ever on a strictly higher score.
//  5. Cools the temperature: T = max(T*Cooling, MinTemp).
//
// Cooling happens every iteration, rejected or not, so the schedule depends
// only on the iteration count.
//
// # Randomness
//
// All draws come from the *rand.Rand passed to [Optimizer.Run]: the move
// kind, positions, the inserted fragment, and the acceptance draw. A fixed
// seed reproduces the whole trajectory.
//
// # Usage
//
//	opt, err := anneal.New(asm, anneal.Options{MaxLen: 200})
//	if err != nil {
//	    return err
//	}
//	res, err := opt.Run(ctx, anneal.State{Order: seed.Order, Score: seed.Score, Length: seed.Length}, rng)
package anneal

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	errs "github.com/matzehuels/sbhasm/pkg/errors"
)

// State is a point in the search space.
type State struct {
	Order  []int // distinct fragment indices
	Score  int   // fragments covered by the assembled order
	Length int   // assembled length
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Order = slices.Clone(s.Order)
	if s.Order == nil {
		s.Order = []int{}
	}
	return s
}

// Outcome classifies what happened to a candidate.
type Outcome int

const (
	// Accepted candidates became the current state.
	Accepted Outcome = iota
	// Declined candidates were scored but lost the Metropolis draw.
	Declined
	// Rejected candidates were empty or over budget and never scored.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Declined:
		return "declined"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Step describes one finished iteration. It is passed to [Options.Trace].
type Step struct {
	Iteration   int
	Move        Move
	Applied     bool    // false when the move had nothing to act on
	Outcome     Outcome // fate of the candidate
	Temperature float64 // temperature used for the acceptance decision
	Current     State
	Best        State
}

// Progress is a periodic summary passed to [Options.Progress].
type Progress struct {
	Iteration    int
	Iterations   int
	CurrentScore int
	BestScore    int
	Temperature  float64
	Accepted     int
	Rejected     int
}

// Result is the outcome of [Optimizer.Run].
type Result struct {
	Best       State
	Sequence   string // assembled sequence of Best.Order
	Iterations int    // iterations actually performed
	Accepted   int
	Declined   int
	Rejected   int
	FinalTemp  float64
}

// Optimizer runs the annealing search over one fragment set.
// It is stateless between runs; each call to Run owns its own buffers.
type Optimizer struct {
	asm  *assembly.Assembler
	opts Options
}

// New validates opts (after applying defaults) and returns an Optimizer.
func New(asm *assembly.Assembler, opts Options) (*Optimizer, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{asm: asm, opts: opts}, nil
}

// Options returns the effective options.
func (o *Optimizer) Options() Options { return o.opts }

// Run anneals from seed using rng and returns the best state seen.
//
// seed must contain distinct indices and fit the budget; its Score and
// Length are trusted as given. If ctx is cancelled, Run stops at the next
// progress interval and returns the best state so far along with ctx.Err().
func (o *Optimizer) Run(ctx context.Context, seed State, rng *rand.Rand) (Result, error) {
	n := o.asm.Fragments().Len()
	inOrder := make([]bool, n)
	for _, f := range seed.Order {
		if f < 0 || f >= n || inOrder[f] {
			return Result{}, errs.New(errs.ErrCodeInvalidInput, "seed order has invalid or repeated fragment %d", f)
		}
		inOrder[f] = true
	}
	if seed.Length > o.opts.MaxLen {
		return Result{}, errs.New(errs.ErrCodeInvalidInput, "seed length %d exceeds max length %d", seed.Length, o.opts.MaxLen)
	}

	cur := seed.Clone()
	best := seed.Clone()
	cand := make([]int, 0, n)
	absent := make([]int, 0, n)
	temp := o.opts.InitialTemp
	res := Result{}

	report := func(it int) {
		if o.opts.Progress != nil {
			o.opts.Progress(Progress{
				Iteration:    it,
				Iterations:   o.opts.Iterations,
				CurrentScore: cur.Score,
				BestScore:    best.Score,
				Temperature:  temp,
				Accepted:     res.Accepted,
				Rejected:     res.Rejected,
			})
		}
	}
	finish := func(err error) (Result, error) {
		res.Best = best
		res.Sequence = o.asm.Assemble(best.Order)
		res.FinalTemp = temp
		report(res.Iterations)
		return res, err
	}

	for it := range o.opts.Iterations {
		if it > 0 && it%o.opts.ProgressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return finish(err)
			}
			report(it)
		}

		move := Move(rng.IntN(numMoves))
		cand = append(cand[:0], cur.Order...)
		var e edit
		cand, e = apply(move, cand, rng, inOrder, &absent)

		step := Step{Iteration: it, Move: move, Applied: e.applied, Temperature: temp}
		length := o.asm.Length(cand)
		if len(cand) == 0 || length > o.opts.MaxLen {
			step.Outcome = Rejected
			res.Rejected++
		} else {
			score := o.asm.Score(o.asm.Assemble(cand))
			delta := score - cur.Score
			if accept(delta, temp, rng) {
				step.Outcome = Accepted
				res.Accepted++
				cur.Order, cand = cand, cur.Order
				cur.Score, cur.Length = score, length
				if e.added >= 0 {
					inOrder[e.added] = true
				}
				if e.removed >= 0 {
					inOrder[e.removed] = false
				}
			} else {
				step.Outcome = Declined
				res.Declined++
			}
		}

		if cur.Score > best.Score {
			best = cur.Clone()
		}
		temp = max(temp*o.opts.Cooling, o.opts.MinTemp)
		res.Iterations = it + 1

		if o.opts.Trace != nil {
			step.Current, step.Best = cur, best
			o.opts.Trace(step)
		}
	}
	return finish(nil)
}

// accept applies the Metropolis rule: a non-negative delta is always taken,
// a negative one with probability exp(delta/temp). No draw is made for
// delta >= 0.
func accept(delta int, temp float64, rng *rand.Rand) bool {
	if delta >= 0 {
		return true
	}
	return rng.Float64() < math.Exp(float64(delta)/temp)
}
