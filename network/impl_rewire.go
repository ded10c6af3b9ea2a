// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// impl_rewire.go - Watts–Strogatz rewiring with in-group bias.
//
// Canonical model:
//   • Every lattice tie {i,(i+j)%n}, j=1..k/2, is visited once in the order
//     j asc, i asc. With probability β it is moved to {i,m}.
//   • The new endpoint m is uniform over the chosen pool of nodes that are
//     neither i nor already tied to i. With probability bias(i) the pool is
//     the in-group {m : inGroup(i,m)}, otherwise the out-group. An empty pool
//     falls back to the other one; if both are empty the tie stays.
//   • Without WithInGroupBias there is a single pool of all eligible nodes.
//
// Contract:
//   • Tie count is preserved exactly (one removal per insertion), so the mean
//     degree stays k.
//   • cfg.rng is required when 0 < β (else ErrNeedRandSource).
//
// Complexity:
//   • O(n·k) coin flips plus O(n) pool scan per rewired tie.

package network

import (
	"fmt"

	"github.com/katalvlaran/vaxsim/matrix"
)

const methodRewire = "Rewire"

// Rewire returns a Constructor that rewires the k-lattice already present in p.
func Rewire(k int) Constructor {
	return func(p *matrix.Pressure, cfg config) error {
		n := p.N()
		if err := validateLatticeDegree(methodRewire, n, k); err != nil {
			return err
		}
		beta := cfg.rewiring
		if beta < 0 || beta > 1 {
			return fmt.Errorf("%s: β=%g: %w", methodRewire, beta, ErrInvalidProbability)
		}
		if beta == 0 || k == 0 {
			return nil
		}
		if cfg.rng == nil {
			return fmt.Errorf("%s: rng is required: %w", methodRewire, ErrNeedRandSource)
		}

		rng := cfg.rng
		in := make([]int, 0, n)
		out := make([]int, 0, n)
		for j := 1; j <= k/2; j++ {
			for i := 0; i < n; i++ {
				if rng.Float64() >= beta {
					continue
				}
				old := (i + j) % n
				if !p.Has(i, old) {
					// Unvisited lattice ties are never touched by earlier moves.
					continue
				}

				// Collect eligible endpoints, split by group when partitioned.
				in, out = in[:0], out[:0]
				for m := 0; m < n; m++ {
					if m == i || p.Has(i, m) {
						continue
					}
					if cfg.bias == nil || cfg.sameGroup(i, m) {
						in = append(in, m)
					} else {
						out = append(out, m)
					}
				}

				pool, alt := in, out
				if cfg.bias != nil && rng.Float64() >= cfg.bias(i) {
					pool, alt = out, in
				}
				if len(pool) == 0 {
					pool = alt
				}
				if len(pool) == 0 {
					continue
				}
				m := pool[rng.IntN(len(pool))]

				w, _ := p.At(i, old)
				if err := p.Remove(i, old); err != nil {
					return fmt.Errorf("%s: Remove(%d,%d): %v: %w", methodRewire, i, old, err, ErrConstructFailed)
				}
				if err := p.SetSymmetric(i, m, w); err != nil {
					return fmt.Errorf("%s: tie {%d,%d}: %v: %w", methodRewire, i, m, err, ErrConstructFailed)
				}
			}
		}

		return nil
	}
}
