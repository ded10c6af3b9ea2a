// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// impl_random_regular.go - RandomRegular(d) constructor.
//
// Canonical model:
//   • d-regular simple network via stub matching. Stubs are paired one random
//     pair at a time; a pair that would form a self-loop or a duplicate tie is
//     redrawn a bounded number of times, after which the attempt restarts
//     from an empty network.
//
// Contract:
//   • n ≥ 1; 0 ≤ d < n; n·d even (else ErrTooFewVertices).
//   • cfg.rng must be non-nil when d > 0 (else ErrNeedRandSource).
//   • Either a valid realization is produced or ErrConstructFailed after
//     cfg.maxAttempts restarts.
//
// Complexity:
//   • ~O(n·d) expected per attempt; O(n·d) temporary space for stubs.

package network

import (
	"fmt"

	"github.com/katalvlaran/vaxsim/matrix"
)

const (
	methodRandomRegular = "RandomRegular"
	pairRedraws         = 64
)

// RandomRegular returns a Constructor that ties every node to exactly d others.
func RandomRegular(d int) Constructor {
	return func(p *matrix.Pressure, cfg config) error {
		n := p.N()
		if n < 1 {
			return fmt.Errorf("%s: n=%d < 1: %w", methodRandomRegular, n, ErrTooFewVertices)
		}
		if d < 0 || d >= n {
			return fmt.Errorf("%s: degree must be in [0,%d), got %d: %w", methodRandomRegular, n, d, ErrTooFewVertices)
		}
		if (n*d)%2 != 0 {
			return fmt.Errorf("%s: n*d must be even (n=%d, d=%d): %w", methodRandomRegular, n, d, ErrTooFewVertices)
		}
		if d == 0 {
			return nil
		}
		if cfg.rng == nil {
			return fmt.Errorf("%s: rng is required: %w", methodRandomRegular, ErrNeedRandSource)
		}

		rng := cfg.rng
		stubs := make([]int, 0, n*d)
		for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
			work := p.Clone()
			stubs = stubs[:0]
			for i := 0; i < n; i++ {
				for k := 0; k < d; k++ {
					stubs = append(stubs, i)
				}
			}

			ok := true
			for len(stubs) > 0 && ok {
				ok = false
				for try := 0; try < pairRedraws; try++ {
					a := rng.IntN(len(stubs))
					b := rng.IntN(len(stubs))
					u, v := stubs[a], stubs[b]
					if a == b || u == v || work.Has(u, v) {
						continue
					}
					if err := work.SetSymmetric(u, v, structuralWeight); err != nil {
						return fmt.Errorf("%s: tie {%d,%d}: %v: %w", methodRandomRegular, u, v, err, ErrConstructFailed)
					}
					// Swap-remove both stubs, larger index first.
					if a < b {
						a, b = b, a
					}
					last := len(stubs) - 1
					stubs[a] = stubs[last]
					stubs = stubs[:last]
					last--
					stubs[b] = stubs[last]
					stubs = stubs[:last]
					ok = true
					break
				}
			}

			if ok {
				*p = *work
				cfg.logger.Debug("random regular matched", "n", n, "d", d, "attempt", attempt)
				return nil
			}
		}

		return fmt.Errorf("%s: failed to construct after %d attempts: %w",
			methodRandomRegular, cfg.maxAttempts, ErrConstructFailed)
	}
}
