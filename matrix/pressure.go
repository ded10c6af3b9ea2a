// SPDX-License-Identifier: MIT
// Package: vaxsim/matrix
//
// pressure.go - sparse symmetric appreciation (peer-pressure) matrix.
//
// Contract:
//   • Square n×n; row/column i is the i-th row of the population table.
//   • Symmetric after every mutation: SetSymmetric and Remove touch both cells.
//   • Zero diagonal: a tie from i to itself is rejected with ErrSelfLoop.
//   • Weights are finite and ≥ 0; a zero weight is the absence of a tie.
//   • Each row is kept sorted by column, so At is a binary search and
//     Neighbors iterates in ascending column order (deterministic reductions).
//
// Concurrency:
//   • Reads (At, Neighbors, Degree, ...) are safe from many goroutines as long
//     as nobody mutates. The network builder is the only writer and runs
//     before any propagation round.

package matrix

import (
	"fmt"
	"math"
	"sort"
)

// Tie is one non-zero cell of a Pressure row.
type Tie struct {
	// To is the column index of the neighbor.
	To int
	// Weight is the appreciation weight; always > 0 for stored ties.
	Weight float64
}

// Pressure is a sparse, symmetric, zero-diagonal weight matrix.
type Pressure struct {
	rows [][]Tie
	ties int // number of undirected ties (i<j pairs)
}

// NewPressure returns an empty n×n matrix. n may be zero (an empty
// population). A negative n fails with ErrBadShape.
// Complexity: O(n) time and space for the row headers.
func NewPressure(n int) (*Pressure, error) {
	if n < 0 {
		return nil, fmt.Errorf("NewPressure: n=%d: %w", n, ErrBadShape)
	}

	return &Pressure{rows: make([][]Tie, n)}, nil
}

// N returns the matrix dimension.
func (p *Pressure) N() int { return len(p.rows) }

// Ties returns the number of undirected ties.
func (p *Pressure) Ties() int { return p.ties }

func (p *Pressure) checkIndex(method string, i, j int) error {
	if p == nil {
		return fmt.Errorf("%s: %w", method, ErrNilMatrix)
	}
	n := len(p.rows)
	if i < 0 || i >= n || j < 0 || j >= n {
		return fmt.Errorf("%s(%d,%d): n=%d: %w", method, i, j, n, ErrOutOfRange)
	}

	return nil
}

// find returns the position of column j in row i and whether it is present.
func (p *Pressure) find(i, j int) (int, bool) {
	row := p.rows[i]
	k := sort.Search(len(row), func(x int) bool { return row[x].To >= j })

	return k, k < len(row) && row[k].To == j
}

// At returns the weight of cell (i,j); zero when there is no tie.
// Out-of-range indices fail with ErrOutOfRange, a nil receiver with
// ErrNilMatrix.
// Complexity: O(log d) for the degree d of row i.
func (p *Pressure) At(i, j int) (float64, error) {
	if err := p.checkIndex("At", i, j); err != nil {
		return 0, err
	}
	if k, ok := p.find(i, j); ok {
		return p.rows[i][k].Weight, nil
	}

	return 0, nil
}

// SetSymmetric writes w into (i,j) and (j,i). A zero weight removes the tie.
//
// Errors, in priority order: ErrNilMatrix, ErrOutOfRange, ErrSelfLoop
// (i == j), ErrNaNInf, ErrNegativeWeight. On error the matrix is unchanged.
//
// Complexity: O(d) per row for the sorted insertion.
func (p *Pressure) SetSymmetric(i, j int, w float64) error {
	if err := p.checkIndex("SetSymmetric", i, j); err != nil {
		return err
	}
	if i == j {
		return fmt.Errorf("SetSymmetric(%d,%d): %w", i, j, ErrSelfLoop)
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("SetSymmetric(%d,%d): w=%v: %w", i, j, w, ErrNaNInf)
	}
	if w < 0 {
		return fmt.Errorf("SetSymmetric(%d,%d): w=%g: %w", i, j, w, ErrNegativeWeight)
	}
	if w == 0 {
		p.remove(i, j)
		return nil
	}

	if p.upsert(i, j, w) {
		p.ties++
	}
	p.upsert(j, i, w)

	return nil
}

// Remove deletes the tie between i and j (both cells). Removing a missing tie
// is a no-op; out-of-range indices fail with ErrOutOfRange.
// Complexity: O(d) per row.
func (p *Pressure) Remove(i, j int) error {
	if err := p.checkIndex("Remove", i, j); err != nil {
		return err
	}
	p.remove(i, j)

	return nil
}

// upsert writes one cell and reports whether it was newly inserted.
func (p *Pressure) upsert(i, j int, w float64) bool {
	k, ok := p.find(i, j)
	if ok {
		p.rows[i][k].Weight = w
		return false
	}
	row := append(p.rows[i], Tie{})
	copy(row[k+1:], row[k:])
	row[k] = Tie{To: j, Weight: w}
	p.rows[i] = row

	return true
}

func (p *Pressure) remove(i, j int) {
	if i == j {
		return
	}
	k, ok := p.find(i, j)
	if !ok {
		return
	}
	p.rows[i] = append(p.rows[i][:k], p.rows[i][k+1:]...)
	if k, ok = p.find(j, i); ok {
		p.rows[j] = append(p.rows[j][:k], p.rows[j][k+1:]...)
	}
	p.ties--
}

// Has reports whether i and j are tied. Out-of-range indices report false.
func (p *Pressure) Has(i, j int) bool {
	if p.checkIndex("Has", i, j) != nil {
		return false
	}
	_, ok := p.find(i, j)

	return ok
}

// Neighbors returns row i in ascending column order. The slice aliases
// internal storage and must not be modified; it is invalidated by the next
// mutation of row i. Out-of-range rows fail with ErrOutOfRange.
// Complexity: O(1).
func (p *Pressure) Neighbors(i int) ([]Tie, error) {
	if err := p.checkIndex("Neighbors", i, i); err != nil {
		return nil, err
	}

	return p.rows[i], nil
}

// Degree returns the number of ties of i, or ErrOutOfRange.
// Complexity: O(1).
func (p *Pressure) Degree(i int) (int, error) {
	if err := p.checkIndex("Degree", i, i); err != nil {
		return 0, err
	}

	return len(p.rows[i]), nil
}

// Clone returns a deep copy of p; mutations of either side do not leak.
// Complexity: O(n + T) time and space.
func (p *Pressure) Clone() *Pressure {
	out := &Pressure{rows: make([][]Tie, len(p.rows)), ties: p.ties}
	for i, row := range p.rows {
		out.rows[i] = append([]Tie(nil), row...)
	}

	return out
}

// Validate re-checks every structural invariant: sorted rows, zero diagonal,
// finite positive weights, and |w(i,j) - w(j,i)| ≤ eps.
// Complexity: O(T log d) for T stored cells and maximum degree d.
func (p *Pressure) Validate(eps float64) error {
	if p == nil {
		return fmt.Errorf("Validate: %w", ErrNilMatrix)
	}
	cells := 0
	for i, row := range p.rows {
		for k, t := range row {
			if t.To < 0 || t.To >= len(p.rows) {
				return fmt.Errorf("Validate: row %d col %d: %w", i, t.To, ErrOutOfRange)
			}
			if k > 0 && row[k-1].To >= t.To {
				return fmt.Errorf("Validate: row %d unsorted at %d: %w", i, k, ErrOutOfRange)
			}
			if t.To == i {
				return fmt.Errorf("Validate: row %d: %w", i, ErrSelfLoop)
			}
			if math.IsNaN(t.Weight) || math.IsInf(t.Weight, 0) {
				return fmt.Errorf("Validate: (%d,%d): %w", i, t.To, ErrNaNInf)
			}
			if t.Weight <= 0 {
				return fmt.Errorf("Validate: (%d,%d) w=%g: %w", i, t.To, t.Weight, ErrNegativeWeight)
			}
			back, ok := p.find(t.To, i)
			if !ok || math.Abs(p.rows[t.To][back].Weight-t.Weight) > eps {
				return fmt.Errorf("Validate: (%d,%d): %w", i, t.To, ErrAsymmetry)
			}
			cells++
		}
	}
	if cells != 2*p.ties {
		return fmt.Errorf("Validate: %d cells for %d ties: %w", cells, p.ties, ErrAsymmetry)
	}

	return nil
}
