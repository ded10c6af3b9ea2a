// SPDX-License-Identifier: MIT

// Package network generates the weighted social graph over which attitudes
// propagate, as a matrix.Pressure.
//
// The package follows a functional-options builder design:
//
//   - Option:      a function that mutates the build configuration
//     (WithSeed, WithRand, WithRewiring, WithInGroupBias, WithMaxAttempts,
//     WithLogger).
//   - Constructor: a deterministic mutation of the matrix (RingLattice, Rewire,
//     SmallWorld, RandomRegular, RandomSparse, Weigh).
//   - Build:       runs constructors in order over a fresh n×n matrix.
//   - Connect:     the small-world generator (lattice, biased rewiring, weights).
//   - Topology:    name → Constructor registry for configuration files.
//
// Guarantees:
//
//   - No self-loops and a symmetric matrix after every mutation (enforced by
//     matrix.Pressure itself).
//   - Rewiring preserves the tie count, so the mean degree of Connect is k.
//   - Same seed, options and constructor order produce the same matrix.
//
// Errors:
//
//	ErrTooFewVertices     - n or degree outside the constructor's domain.
//	ErrInvalidProbability - probability outside [0,1].
//	ErrNeedRandSource     - stochastic constructor without WithSeed/WithRand.
//	ErrConstructFailed    - attempts exhausted or the matrix refused a tie.
//	ErrUnknownTopology    - unregistered topology name.
package network
