package anneal

import (
	"math/rand/v2"
	"slices"
)

// Move is a local edit applied to a fragment order.
type Move int

const (
	// MoveSwap exchanges the fragments at two distinct positions.
	MoveSwap Move = iota
	// MoveDelete removes the fragment at one position.
	MoveDelete
	// MoveInsert adds an absent fragment at any position, ends included.
	MoveInsert

	numMoves = 3
)

func (m Move) String() string {
	switch m {
	case MoveSwap:
		return "swap"
	case MoveDelete:
		return "delete"
	case MoveInsert:
		return "insert"
	}
	return "unknown"
}

// edit records what a move changed so membership can be updated on acceptance.
type edit struct {
	applied bool
	added   int // fragment inserted, or -1
	removed int // fragment deleted, or -1
}

// apply performs m on order in place and returns the edited slice.
//
// Swap and delete are skipped when order has fewer than two elements, and
// insert is skipped when every fragment is already present; order is
// returned unchanged in those cases. absent is scratch space reused across
// calls and inOrder reports membership of the fragments currently in order.
func apply(m Move, order []int, rng *rand.Rand, inOrder []bool, absent *[]int) ([]int, edit) {
	e := edit{added: -1, removed: -1}
	switch m {
	case MoveSwap:
		if len(order) < 2 {
			return order, e
		}
		i := rng.IntN(len(order))
		j := rng.IntN(len(order))
		for j == i {
			j = rng.IntN(len(order))
		}
		order[i], order[j] = order[j], order[i]
		e.applied = true

	case MoveDelete:
		if len(order) < 2 {
			return order, e
		}
		i := rng.IntN(len(order))
		e.removed = order[i]
		order = slices.Delete(order, i, i+1)
		e.applied = true

	case MoveInsert:
		*absent = (*absent)[:0]
		for f, in := range inOrder {
			if !in {
				*absent = append(*absent, f)
			}
		}
		if len(*absent) == 0 {
			return order, e
		}
		f := (*absent)[rng.IntN(len(*absent))]
		pos := rng.IntN(len(order) + 1)
		order = slices.Insert(order, pos, f)
		e.added = f
		e.applied = true
	}
	return order, e
}
