// Package assembly turns fragment orders into sequences and scores them.
//
// An order is a slice of distinct fragment indices. Its assembled sequence
// is the first fragment followed, for every later fragment, by the part of
// that fragment beyond its overlap with the predecessor:
//
//	AAAB
//	 AABC   (overlap 3)
//	  ABCD  (overlap 3)
//	------
//	AAABCD
//
// [Assembler.Length] computes the same length without building the string,
// which is what the search loop uses to reject over-budget candidates
// cheaply. Length(order) == len(Assemble(order)) holds for every order.
//
// The score of a sequence is the number of input fragments that occur in it
// as a substring. Duplicate fragments count once per occurrence in the input.
package assembly

import (
	"strings"

	"github.com/matzehuels/sbhasm/pkg/core/fragment"
	"github.com/matzehuels/sbhasm/pkg/core/overlap"
)

// Assembler binds a fragment set to its overlap matrix.
// It holds no mutable state and is safe for concurrent use.
type Assembler struct {
	set     fragment.Set
	overlap *overlap.Matrix

	// distinct fragments with their multiplicity, in first-seen order
	distinct []string
	counts   []int
}

// New returns an Assembler for set. m must be the overlap matrix of set.
func New(set fragment.Set, m *overlap.Matrix) *Assembler {
	a := &Assembler{set: set, overlap: m}
	seen := make(map[string]int, set.Len())
	for i := range set.Len() {
		f := set.At(i)
		if idx, ok := seen[f]; ok {
			a.counts[idx]++
			continue
		}
		seen[f] = len(a.distinct)
		a.distinct = append(a.distinct, f)
		a.counts = append(a.counts, 1)
	}
	return a
}

// Fragments returns the fragment set.
func (a *Assembler) Fragments() fragment.Set { return a.set }

// Overlaps returns the overlap matrix.
func (a *Assembler) Overlaps() *overlap.Matrix { return a.overlap }

// Assemble builds the sequence for order. An empty order yields "".
func (a *Assembler) Assemble(order []int) string {
	if len(order) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(a.Length(order))
	sb.WriteString(a.set.At(order[0]))
	for i := 1; i < len(order); i++ {
		ov := a.overlap.At(order[i-1], order[i])
		sb.WriteString(a.set.At(order[i])[ov:])
	}
	return sb.String()
}

// Length returns len(Assemble(order)) without allocating the sequence.
func (a *Assembler) Length(order []int) int {
	if len(order) == 0 {
		return 0
	}
	l := a.set.Width()
	n := l
	for i := 1; i < len(order); i++ {
		n += l - a.overlap.At(order[i-1], order[i])
	}
	return n
}

// Score returns how many input fragments occur in seq, counting duplicates
// separately. It agrees with [Coverage] on the same input.
func (a *Assembler) Score(seq string) int {
	score := 0
	for i, f := range a.distinct {
		if strings.Contains(seq, f) {
			score += a.counts[i]
		}
	}
	return score
}

// Evaluate assembles order and returns the sequence with its score and length.
func (a *Assembler) Evaluate(order []int) (seq string, score, length int) {
	seq = a.Assemble(order)
	return seq, a.Score(seq), len(seq)
}

// Coverage counts the fragments of frags that occur in seq, one test per
// fragment. It is the reference definition of the score.
func Coverage(frags []string, seq string) int {
	count := 0
	for _, f := range frags {
		if strings.Contains(seq, f) {
			count++
		}
	}
	return count
}
