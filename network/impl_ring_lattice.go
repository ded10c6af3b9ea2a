// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// impl_ring_lattice.go - RingLattice(k) constructor.
//
// Contract:
//   • k is even and 0 ≤ k < n (else ErrTooFewVertices).
//   • Node i is tied to i±1..i±k/2 (mod n) with the structural weight 1.
//   • Emission order: for j=1..k/2, for i asc, tie {i,(i+j)%n}.
//
// Complexity:
//   • Time O(n·k·log k), space O(n·k) inside the matrix.

package network

import (
	"fmt"

	"github.com/katalvlaran/vaxsim/matrix"
)

const methodRingLattice = "RingLattice"

// RingLattice returns a Constructor that ties every node to its k nearest ring
// neighbors.
func RingLattice(k int) Constructor {
	return func(p *matrix.Pressure, _ config) error {
		n := p.N()
		if err := validateLatticeDegree(methodRingLattice, n, k); err != nil {
			return err
		}

		for j := 1; j <= k/2; j++ {
			for i := 0; i < n; i++ {
				if err := p.SetSymmetric(i, (i+j)%n, structuralWeight); err != nil {
					return fmt.Errorf("%s: tie {%d,%d}: %v: %w", methodRingLattice, i, (i+j)%n, err, ErrConstructFailed)
				}
			}
		}

		return nil
	}
}

// validateLatticeDegree enforces n ≥ 1, k even, 0 ≤ k < n.
func validateLatticeDegree(method string, n, k int) error {
	if n < 1 {
		return fmt.Errorf("%s: n=%d < 1: %w", method, n, ErrTooFewVertices)
	}
	if k < 0 || k%2 != 0 {
		return fmt.Errorf("%s: degree k=%d must be even and ≥ 0: %w", method, k, ErrTooFewVertices)
	}
	if k >= n {
		return fmt.Errorf("%s: degree k=%d must be < n=%d: %w", method, k, n, ErrTooFewVertices)
	}

	return nil
}
