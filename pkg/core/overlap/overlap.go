// Package overlap computes suffix/prefix overlaps between fragments.
//
// The overlap of an ordered pair (a, b) is the largest k such that the last
// k characters of a equal the first k characters of b. The [Matrix] holds
// this value for every ordered pair of distinct fragments; its diagonal is
// always zero.
//
// Rows are independent, so [Compute] fills them concurrently. Each worker
// writes only its own row, which keeps the result identical to a sequential
// computation regardless of the worker count.
package overlap

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Matrix is a dense n×n table of pairwise overlaps stored row-major.
// It is read-only once computed and safe for concurrent readers.
type Matrix struct {
	n     int
	cells []int
}

// Pair returns the overlap of a followed by b, scanning candidate lengths
// from min(len(a), len(b)) down to 1. It returns 0 when nothing matches.
func Pair(a, b string) int {
	for k := min(len(a), len(b)); k > 0; k-- {
		if a[len(a)-k:] == b[:k] {
			return k
		}
	}
	return 0
}

// Compute builds the overlap matrix for frags using up to workers
// goroutines. A non-positive workers value means runtime.GOMAXPROCS(0).
//
// The only error Compute returns is ctx's, when it is cancelled before all
// rows are filled.
func Compute(ctx context.Context, frags []string, workers int) (*Matrix, error) {
	n := len(frags)
	m := &Matrix{n: n, cells: make([]int, n*n)}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := m.cells[i*n : (i+1)*n]
			for j := range n {
				if i != j {
					row[j] = Pair(frags[i], frags[j])
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromRows builds a Matrix from explicit rows. It is mainly useful for tests
// and for callers that computed overlaps elsewhere.
func FromRows(rows [][]int) (*Matrix, error) {
	n := len(rows)
	m := &Matrix{n: n, cells: make([]int, 0, n*n)}
	for i, r := range rows {
		if len(r) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(r), n)
		}
		m.cells = append(m.cells, r...)
	}
	return m, nil
}

// Size returns the number of fragments the matrix covers.
func (m *Matrix) Size() int { return m.n }

// At returns the overlap of fragment i followed by fragment j.
func (m *Matrix) At(i, j int) int { return m.cells[i*m.n+j] }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []int {
	return append([]int(nil), m.cells[i*m.n:(i+1)*m.n]...)
}

type matrixJSON struct {
	N     int   `json:"n"`
	Cells []int `json:"cells"`
}

// MarshalJSON encodes the matrix as {"n": size, "cells": [...]} in row-major order.
func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{N: m.n, Cells: m.cells})
}

// UnmarshalJSON decodes a matrix produced by MarshalJSON.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw matrixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.N < 0 || len(raw.Cells) != raw.N*raw.N {
		return fmt.Errorf("overlap matrix: %d cells for size %d", len(raw.Cells), raw.N)
	}
	m.n, m.cells = raw.N, raw.Cells
	return nil
}
