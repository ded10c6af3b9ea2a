// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// impl_weigh.go - Weigh() assigns appreciation weights to existing ties.
//
// Contract:
//   • cfg.weight is called once per tie {i,j} with i < j, in i asc, j asc order.
//   • A nil cfg.weight is a no-op (ties keep the structural weight).
//   • A zero weight removes the tie; negative or non-finite weights fail with
//     ErrConstructFailed wrapping the matrix sentinel.

package network

import (
	"fmt"

	"github.com/katalvlaran/vaxsim/matrix"
)

const methodWeigh = "Weigh"

type tiePair struct{ i, j int }

// Weigh returns a Constructor that rewrites every tie weight with cfg.weight.
func Weigh() Constructor {
	return func(p *matrix.Pressure, cfg config) error {
		if cfg.weight == nil {
			return nil
		}

		// Snapshot the ties first: zero weights shrink rows while we iterate.
		pairs := make([]tiePair, 0, p.Ties())
		for i := 0; i < p.N(); i++ {
			row, _ := p.Neighbors(i)
			for _, t := range row {
				if t.To > i {
					pairs = append(pairs, tiePair{i, t.To})
				}
			}
		}

		for _, e := range pairs {
			w := cfg.weight(e.i, e.j, cfg.sameGroup(e.i, e.j))
			if err := p.SetSymmetric(e.i, e.j, w); err != nil {
				return fmt.Errorf("%s: tie {%d,%d}: %w: %w", methodWeigh, e.i, e.j, ErrConstructFailed, err)
			}
		}

		return nil
	}
}
