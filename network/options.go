// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// options.go - functional options for network construction.
//
// Contract:
//   • Options are functional (type Option func(*config)).
//   • Option constructors validate and PANIC on meaningless inputs; the
//     constructors themselves never panic.
//   • Determinism is explicit: seeding is done via WithSeed or WithRand.

package network

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

// Option customizes network construction by mutating a config before the
// first constructor runs. Later options override earlier ones.
// Complexity: applying N options costs O(N) time, O(1) space.
type Option func(*config)

// WithRand provides an explicit RNG for stochastic constructors (Rewire,
// RandomRegular, RandomSparse). The simulator passes a stream forked from
// the run context so that networks replay with the run seed.
// Panics on nil; prefer WithSeed for standalone reproducible builds.
// Complexity: O(1) time, O(1) space.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("network: WithRand(nil)")
	}
	return func(c *config) {
		// Shared with the caller: draws advance the caller's stream.
		c.rng = r
	}
}

// WithSeed creates a PCG-backed *rand.Rand from seed. The same seed,
// options and constructor order always produce the same matrix.
// Complexity: O(1) time, O(1) space.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewPCG(seed, seed^pcgStreamSalt))
	}
}

// WithRewiring sets the Watts–Strogatz rewiring probability β used by
// Rewire and therefore by Connect and SmallWorld. β=0 keeps the ring
// lattice; β=1 moves every lattice tie once. The default is 0.
// Panics if β is outside [0,1] or NaN.
// Complexity: O(1) time, O(1) space.
func WithRewiring(beta float64) Option {
	if !(beta >= 0 && beta <= 1) {
		panic(fmt.Sprintf("network: WithRewiring(%g) outside [0,1]", beta))
	}
	return func(c *config) {
		c.rewiring = beta
	}
}

// WithInGroupBias sets the per-node probability that a rewired tie is drawn
// from the in-group pool. Without it the population is not partitioned and
// rewired endpoints are uniform over all eligible nodes.
// The bias of node i is read once per rewired tie of i and is clamped by
// the coin flip itself: values ≤ 0 always pick the out-group, values ≥ 1
// always the in-group. An empty pool falls back to the other one.
// Panics on nil.
// Complexity: O(1) time, O(1) space.
func WithInGroupBias(bias func(i int) float64) Option {
	if bias == nil {
		panic("network: WithInGroupBias(nil)")
	}
	return func(c *config) {
		c.bias = bias
	}
}

// WithMaxAttempts bounds the restarts of RandomRegular. When every attempt
// dead-ends the constructor fails with ErrConstructFailed. The default is 64.
// Panics if n < 1.
// Complexity: O(1) time, O(1) space.
func WithMaxAttempts(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("network: WithMaxAttempts(%d)", n))
	}
	return func(c *config) {
		c.maxAttempts = n
	}
}

// WithLogger routes construction summaries (tie count, degree statistics,
// component count) to l at debug level. The default discards them.
// Panics on nil.
// Complexity: O(1) time, O(1) space.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("network: WithLogger(nil)")
	}
	return func(c *config) {
		c.logger = l
	}
}
