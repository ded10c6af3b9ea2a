// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// errors.go - sentinel errors for the network package.
//
// Error policy:
//   • Only package-level sentinels are exposed; callers branch with errors.Is.
//   • Implementations attach context with "%s: detail: %w" (method first).
//   • Constructors never panic; option constructors (WithX) panic on
//     meaningless values, which is a programmer error.
//
// Priority when several validations fail:
//   ErrTooFewVertices → ErrInvalidProbability → ErrNeedRandSource → ErrConstructFailed.

package network

import "errors"

// ErrTooFewVertices indicates that n or a degree parameter is outside the
// domain of the requested constructor (e.g. odd lattice degree, k ≥ n).
var ErrTooFewVertices = errors.New("network: parameter too small")

// ErrInvalidProbability indicates a probability outside [0,1].
var ErrInvalidProbability = errors.New("network: probability out of range")

// ErrNeedRandSource indicates that a stochastic constructor ran without an RNG
// (WithSeed or WithRand must be set).
var ErrNeedRandSource = errors.New("network: rng is required")

// ErrConstructFailed indicates that a constructor exhausted its attempts or
// produced a tie the matrix refused.
var ErrConstructFailed = errors.New("network: construction failed")

// ErrUnknownTopology indicates a registry lookup for an unregistered name.
var ErrUnknownTopology = errors.New("network: unknown topology")
