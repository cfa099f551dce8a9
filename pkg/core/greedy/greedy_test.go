package greedy

import (
	"context"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sbhasm/pkg/core/assembly"
	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	"github.com/matzehuels/sbhasm/pkg/core/overlap"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func newAssembler(t *testing.T, frags ...string) *assembly.Assembler {
	t.Helper()
	set, err := fragment.New(frags)
	require.NoError(t, err)
	m, err := overlap.Compute(context.Background(), set.Strings(), 1)
	require.NoError(t, err)
	return assembly.New(set, m)
}

func TestBuild_Chain(t *testing.T) {
	a := newAssembler(t, "AAAB", "AABC", "ABCD")

	order := Build(0, a.Overlaps(), 4, 6)
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 6, a.Length(order))
	assert.Equal(t, "AAABCD", a.Assemble(order))
}

func TestBuild_RespectsBudget(t *testing.T) {
	a := newAssembler(t, "AAAB", "AABC", "ABCD")

	// From AABC only ABCD fits under 6; AAAB would need 4 more characters.
	assert.Equal(t, []int{1, 2}, Build(1, a.Overlaps(), 4, 6))
	assert.Equal(t, []int{2}, Build(2, a.Overlaps(), 4, 6))
	assert.Equal(t, []int{0, 1}, Build(0, a.Overlaps(), 4, 5))
}

func TestBuild_BudgetBelowWidth(t *testing.T) {
	a := newAssembler(t, "AAAB", "AABC")
	order := Build(0, a.Overlaps(), 4, 3)
	assert.Empty(t, order)
	assert.Zero(t, a.Length(order))
}

func TestBuild_BudgetEqualsWidth(t *testing.T) {
	a := newAssembler(t, "AAAB", "AABC")
	assert.Equal(t, []int{1}, Build(1, a.Overlaps(), 4, 4))
}

func TestBuild_TieBreakLowestIndex(t *testing.T) {
	// Fragments 2 and 3 both overlap ABCD by 2; 2 must always win.
	a := newAssembler(t, "ABCD", "QQQQ", "CDZW", "CDXY")

	for range 20 {
		assert.Equal(t, []int{0, 2}, Build(0, a.Overlaps(), 4, 6))
	}

	// Swapping the two tied fragments flips the winner to the new lower index.
	b := newAssembler(t, "ABCD", "QQQQ", "CDXY", "CDZW")
	order := Build(0, b.Overlaps(), 4, 6)
	assert.Equal(t, []int{0, 2}, order)
	assert.Equal(t, "ABCDXY", b.Assemble(order))
}

func TestBuild_NoRepeats(t *testing.T) {
	a := newAssembler(t, "AAAA", "AAAA", "AAAA", "AAAA")
	order := Build(2, a.Overlaps(), 4, 100)
	assert.Len(t, order, 4)

	sorted := slices.Clone(order)
	slices.Sort(sorted)
	assert.Equal(t, []int{0, 1, 2, 3}, sorted)
	assert.Equal(t, "AAAA", a.Assemble(order))
}

func TestStarts(t *testing.T) {
	s := Starts(newRNG(1), 10, 4)
	assert.Len(t, s, 4)

	seen := map[int]bool{}
	for _, v := range s {
		assert.False(t, seen[v], "duplicate start %d", v)
		assert.True(t, v >= 0 && v < 10)
		seen[v] = true
	}

	assert.Equal(t, s, Starts(newRNG(1), 10, 4), "same seed must give same starts")
	assert.Len(t, Starts(newRNG(1), 3, 100), 3)
}

func TestSeed_FindsFullChain(t *testing.T) {
	a := newAssembler(t, "AAAB", "AABC", "ABCD")

	c, err := Seed(context.Background(), a, newRNG(42), Options{Restarts: 100, MaxLen: 6})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, c.Order)
	assert.Equal(t, 0, c.Start)
	assert.Equal(t, "AAABCD", c.Sequence)
	assert.Equal(t, 3, c.Score)
	assert.Equal(t, 6, c.Length)
}

func TestSeed_FirstRestartWinsTies(t *testing.T) {
	// No overlaps and room for one fragment: every restart scores 1.
	a := newAssembler(t, "AAAA", "CCCC", "GGGG", "TTTT")

	c, err := Seed(context.Background(), a, newRNG(9), Options{Restarts: 4, MaxLen: 4})
	require.NoError(t, err)

	starts := Starts(newRNG(9), 4, 4)
	assert.Equal(t, starts[0], c.Start)
	assert.Equal(t, 1, c.Score)
}

func TestSeed_WorkersDoNotChangeResult(t *testing.T) {
	rng := newRNG(77)
	frags := make([]string, 60)
	for i := range frags {
		b := make([]byte, 6)
		for j := range b {
			b[j] = "ACG"[rng.IntN(3)]
		}
		frags[i] = string(b)
	}
	a := newAssembler(t, frags...)

	serial, err := Seed(context.Background(), a, newRNG(5), Options{Restarts: 30, MaxLen: 40, Workers: 1})
	require.NoError(t, err)
	parallel, err := Seed(context.Background(), a, newRNG(5), Options{Restarts: 30, MaxLen: 40, Workers: 8})
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
	assert.LessOrEqual(t, serial.Length, 40)
}

func TestSeed_BudgetBelowWidth(t *testing.T) {
	a := newAssembler(t, "AAAB", "AABC", "ABCD")

	c, err := Seed(context.Background(), a, newRNG(1), Options{Restarts: 3, MaxLen: 2})
	require.NoError(t, err)
	assert.Empty(t, c.Order)
	assert.Zero(t, c.Score)
	assert.Zero(t, c.Length)
}

func TestSeed_Cancelled(t *testing.T) {
	a := newAssembler(t, "AAAB", "AABC", "ABCD")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Seed(ctx, a, newRNG(1), Options{Restarts: 3, MaxLen: 6, Workers: 1})
	require.ErrorIs(t, err, context.Canceled)
}
