// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// api.go - public entry points of the network package.
//
// Design contract:
//   • One orchestrator: Build(n, opts, cons...). Creates the matrix, resolves
//     cfg, runs cons in order.
//   • Connect is the small-world generator used by the simulator; Generate
//     runs any registered topology followed by Weigh.
//   • Determinism: same inputs, options, seed and constructor order produce
//     identical matrices.

package network

import (
	"fmt"

	"github.com/katalvlaran/vaxsim/matrix"
)

// Predicate reports whether nodes i and j belong to the same group.
type Predicate func(i, j int) bool

// WeightFn returns the appreciation weight of the tie {i,j}; it is called once
// per tie with i < j. A zero weight removes the tie.
type WeightFn func(i, j int, inGroup bool) float64

// Constructor applies a deterministic mutation to p using the resolved config.
// Constructors validate parameters early, return sentinel errors and never
// panic.
type Constructor func(p *matrix.Pressure, cfg config) error

// Build creates an n×n Pressure, resolves the configuration from opts and
// applies every constructor in order. Constructor errors are wrapped with
// "Build: %w" and returned immediately; no partial cleanup is attempted.
//
// Errors:
//   - ErrTooFewVertices when n < 0 or a constructor rejects its degree.
//   - ErrConstructFailed for a nil constructor or a tie the matrix refused.
//   - any constructor sentinel (ErrInvalidProbability, ErrNeedRandSource).
//
// Complexity: the sum of the constructors plus O(N + T) for the summary log.
func Build(n int, opts []Option, cons ...Constructor) (*matrix.Pressure, error) {
	p, err := matrix.NewPressure(n)
	if err != nil {
		return nil, fmt.Errorf("Build: n=%d: %w", n, ErrTooFewVertices)
	}
	cfg := newConfig(opts...)

	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("Build: nil constructor at index %d: %w", i, ErrConstructFailed)
		}
		if err = fn(p, cfg); err != nil {
			return nil, fmt.Errorf("Build: %w", err)
		}
	}

	s := p.DegreeStats()
	_, components := Components(p)
	cfg.logger.Debug("network built",
		"n", n, "ties", p.Ties(), "components", components,
		"degree_mean", s.Mean, "degree_std", s.StdDev,
		"degree_min", s.Min, "degree_max", s.Max)

	return p, nil
}

// Connect builds the small-world appreciation network: a ring lattice of even
// degree k, Watts–Strogatz rewiring with probability WithRewiring (biased
// toward the in-group by WithInGroupBias), then one weight per tie.
// A nil inGroup puts every node in one group; a nil weight keeps weight 1.
// A positive rewiring probability requires WithRand or WithSeed, else
// ErrNeedRandSource. k must be even and smaller than n (ErrTooFewVertices).
// Complexity: O(n·k) ties, O(n) pool scan per rewired tie.
func Connect(n, k int, inGroup Predicate, weight WeightFn, opts ...Option) (*matrix.Pressure, error) {
	return Generate(n, SmallWorld(k), inGroup, weight, opts...)
}

// Generate builds topology over n nodes and weighs every resulting tie. It is
// the configuration-driven entry point: topology usually comes from Topology.
// inGroup and weight follow the same rules as in Connect; the caller's opts
// slice is never modified.
func Generate(n int, topology Constructor, inGroup Predicate, weight WeightFn, opts ...Option) (*matrix.Pressure, error) {
	if inGroup != nil {
		opts = append(opts[:len(opts):len(opts)], func(c *config) { c.inGroup = inGroup })
	}
	if weight != nil {
		opts = append(opts[:len(opts):len(opts)], func(c *config) { c.weight = weight })
	}

	return Build(n, opts, topology, Weigh())
}

// SmallWorld is RingLattice(k) followed by Rewire(k) over an empty matrix.
func SmallWorld(k int) Constructor {
	return func(p *matrix.Pressure, cfg config) error {
		if err := RingLattice(k)(p, cfg); err != nil {
			return err
		}
		return Rewire(k)(p, cfg)
	}
}
