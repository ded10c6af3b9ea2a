// SPDX-License-Identifier: MIT
// Package: vaxsim/matrix
//
// conversions.go - bridges between Pressure and gonum/mat.
//
// Contract:
//   • ToSymDense materializes a dense copy (O(n²) memory); meant for analysis
//     and export, never for the propagation hot path.
//   • FromMatrix ingests any square gonum matrix: off-diagonal pairs must agree
//     within eps (stored as their mean), the diagonal must be zero within eps,
//     values must be finite and non-negative.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ToSymDense returns a dense symmetric copy of p.
func (p *Pressure) ToSymDense() *mat.SymDense {
	n := len(p.rows)
	if n == 0 {
		// gonum rejects zero-sized dense matrices.
		return &mat.SymDense{}
	}
	out := mat.NewSymDense(n, nil)
	for i, row := range p.rows {
		for _, t := range row {
			if t.To > i {
				out.SetSym(i, t.To, t.Weight)
			}
		}
	}

	return out
}

// FromMatrix builds a Pressure from a square, symmetric, zero-diagonal matrix.
// eps is the tolerance for both the diagonal and the symmetry check; zero
// cells stay empty.
//
// Errors: ErrNilMatrix, ErrNonSquare, ErrSelfLoop (diagonal above eps),
// ErrAsymmetry, ErrNaNInf, ErrNegativeWeight.
//
// Complexity: O(n²) reads of m.
func FromMatrix(m mat.Matrix, eps float64) (*Pressure, error) {
	if m == nil {
		return nil, fmt.Errorf("FromMatrix: %w", ErrNilMatrix)
	}
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("FromMatrix: %dx%d: %w", r, c, ErrNonSquare)
	}
	p, err := NewPressure(r)
	if err != nil {
		return nil, fmt.Errorf("FromMatrix: %w", err)
	}

	for i := 0; i < r; i++ {
		if d := m.At(i, i); math.IsNaN(d) || math.Abs(d) > eps {
			return nil, fmt.Errorf("FromMatrix: diagonal (%d,%d)=%v: %w", i, i, d, ErrSelfLoop)
		}
		for j := i + 1; j < r; j++ {
			a, b := m.At(i, j), m.At(j, i)
			if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
				return nil, fmt.Errorf("FromMatrix: (%d,%d): %w", i, j, ErrNaNInf)
			}
			if math.Abs(a-b) > eps {
				return nil, fmt.Errorf("FromMatrix: (%d,%d)=%g vs %g: %w", i, j, a, b, ErrAsymmetry)
			}
			w := (a + b) / 2
			if w == 0 {
				continue
			}
			if err = p.SetSymmetric(i, j, w); err != nil {
				return nil, fmt.Errorf("FromMatrix: %w", err)
			}
		}
	}

	return p, nil
}
