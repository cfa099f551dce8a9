package overlap

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bruteOverlap checks every k independently instead of stopping at the first hit.
func bruteOverlap(a, b string) int {
	best := 0
	for k := 1; k <= len(a) && k <= len(b); k++ {
		if a[len(a)-k:] == b[:k] {
			best = k
		}
	}
	return best
}

func randomFragments(rng *rand.Rand, n, l int, alphabet string) []string {
	out := make([]string, n)
	for i := range out {
		b := make([]byte, l)
		for j := range b {
			b[j] = alphabet[rng.IntN(len(alphabet))]
		}
		out[i] = string(b)
	}
	return out
}

func TestPair(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"ABCAB", "CABDE", 3},
		{"AAAB", "AABC", 3},
		{"AABC", "ABCD", 3},
		{"AAAB", "ABCD", 2},
		{"ABCD", "AAAB", 0},
		{"AAAA", "AAAA", 4},
		{"ACGT", "TTTT", 1},
		{"", "ACGT", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pair(tt.a, tt.b), "Pair(%q, %q)", tt.a, tt.b)
	}
}

func TestCompute_Small(t *testing.T) {
	frags := []string{"AAAB", "AABC", "ABCD"}
	m, err := Compute(context.Background(), frags, 2)
	require.NoError(t, err)

	want := [][]int{
		{0, 3, 2},
		{0, 0, 3},
		{0, 0, 0},
	}
	for i := range want {
		assert.Equal(t, want[i], m.Row(i), "row %d", i)
	}
}

func TestCompute_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7^0xdeadbeef))
	frags := randomFragments(rng, 40, 8, "AC")

	m, err := Compute(context.Background(), frags, 4)
	require.NoError(t, err)
	require.Equal(t, len(frags), m.Size())

	for i := range frags {
		assert.Zero(t, m.At(i, i), "diagonal %d", i)
		for j := range frags {
			if i == j {
				continue
			}
			got := m.At(i, j)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, min(len(frags[i]), len(frags[j])))
			assert.Equal(t, bruteOverlap(frags[i], frags[j]), got, "pair (%d,%d)", i, j)
		}
	}
}

func TestCompute_WorkerCountDoesNotMatter(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11^0xdeadbeef))
	frags := randomFragments(rng, 25, 6, "ACGT")

	serial, err := Compute(context.Background(), frags, 1)
	require.NoError(t, err)
	parallel, err := Compute(context.Background(), frags, 8)
	require.NoError(t, err)
	defaults, err := Compute(context.Background(), frags, 0)
	require.NoError(t, err)

	assert.Equal(t, serial.cells, parallel.cells)
	assert.Equal(t, serial.cells, defaults.cells)
}

func TestCompute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compute(ctx, []string{"AAAB", "AABC"}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]int{{0, 2}, {1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 2, m.At(0, 1))
	assert.Equal(t, 1, m.At(1, 0))

	_, err = FromRows([][]int{{0, 2}, {1}})
	require.Error(t, err)
}

func TestMatrixJSON(t *testing.T) {
	m, err := Compute(context.Background(), []string{"ABCAB", "CABDE", "BDEAB"}, 1)
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var back Matrix
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, m.Size(), back.Size())
	assert.Equal(t, m.cells, back.cells)

	var bad Matrix
	require.Error(t, json.Unmarshal([]byte(`{"n":2,"cells":[0,1,2]}`), &bad))
}
