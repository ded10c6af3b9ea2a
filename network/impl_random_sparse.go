// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// impl_random_sparse.go - RandomSparse(prob) constructor.
//
// Canonical model:
//   • Erdős–Rényi G(n,p): each unordered pair {i,j}, i<j, is tied
//     independently with probability p.
//
// Contract:
//   • n ≥ 1 (else ErrTooFewVertices); 0 ≤ p ≤ 1 (else ErrInvalidProbability).
//   • cfg.rng is required only when 0 < p < 1; p ∈ {0,1} is deterministic.
//
// Determinism:
//   • Stable trial order i asc, j asc.

package network

import (
	"fmt"

	"github.com/katalvlaran/vaxsim/matrix"
)

const methodRandomSparse = "RandomSparse"

// RandomSparse returns a Constructor that samples G(n,prob).
func RandomSparse(prob float64) Constructor {
	return func(p *matrix.Pressure, cfg config) error {
		n := p.N()
		if n < 1 {
			return fmt.Errorf("%s: n=%d < 1: %w", methodRandomSparse, n, ErrTooFewVertices)
		}
		if !(prob >= 0 && prob <= 1) {
			return fmt.Errorf("%s: p=%.6f not in [0,1]: %w", methodRandomSparse, prob, ErrInvalidProbability)
		}
		if cfg.rng == nil && prob > 0 && prob < 1 {
			return fmt.Errorf("%s: rng is required: %w", methodRandomSparse, ErrNeedRandSource)
		}
		if prob == 0 {
			return nil
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if prob < 1 && cfg.rng.Float64() >= prob {
					continue
				}
				if err := p.SetSymmetric(i, j, structuralWeight); err != nil {
					return fmt.Errorf("%s: tie {%d,%d}: %v: %w", methodRandomSparse, i, j, err, ErrConstructFailed)
				}
			}
		}

		return nil
	}
}
