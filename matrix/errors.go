// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// All methods return these sentinels (wrapped with method context) and tests
// check them via errors.Is. Nothing in this package panics on user input.

package matrix

import "errors"

// Every message is prefixed with "matrix: ..." for easy grepping across logs.
//
// ERROR PRIORITY (enforced in tests):
// shape/index -> self-loop -> NaN/Inf -> negative weight -> symmetry.

var (
	// ErrBadShape is returned when a requested dimension is negative
	// (NewPressure).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that a row or column index is outside [0,n).
	// Public indexers (At, SetSymmetric, Remove, Neighbors, Degree) return it
	// instead of panicking.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrNonSquare signals that a square matrix was required but the input
	// wasn't. Only FromMatrix ingests foreign shapes.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrAsymmetry signals that a matrix expected to be symmetric violated
	// symmetry within the configured epsilon (FromMatrix, Validate).
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrSelfLoop signals a tie from an entity to itself (non-zero diagonal).
	// An entity's own attitude enters propagation through its self weight,
	// never through the matrix.
	ErrSelfLoop = errors.New("matrix: self-loop")

	// ErrNaNInf signals a NaN or ±Inf weight at write or ingestion time.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNegativeWeight signals a negative appreciation weight. Zero is legal
	// and means "no tie".
	ErrNegativeWeight = errors.New("matrix: negative weight")

	// ErrNilMatrix indicates that a nil receiver or argument was used, e.g. a
	// traversal over a nil *Pressure or FromMatrix(nil).
	ErrNilMatrix = errors.New("matrix: nil receiver")
)
