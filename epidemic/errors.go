// SPDX-License-Identifier: MIT
// Package: vaxsim/epidemic
//
// errors.go - sentinel errors of the epidemic kernel.
//
// Error policy:
//   - Configuration errors (ErrNegativeCount, ErrBadModel, ErrUnknownAlgorithm)
//     surface from constructors and the registry.
//   - ErrInvariant is a domain violation: a run that hits it must stop.

package epidemic

import "errors"

var (
	// ErrNegativeCount indicates a negative initial count, or an exogenous
	// move that would drive a compartment below zero.
	ErrNegativeCount = errors.New("epidemic: negative compartment count")

	// ErrBadModel indicates an unusable transition list (no or several
	// infection transitions, non-adjacent compartments, bad rates).
	ErrBadModel = errors.New("epidemic: malformed model")

	// ErrUnknownAlgorithm indicates a registry key with no kernel behind it.
	ErrUnknownAlgorithm = errors.New("epidemic: unknown algorithm")

	// ErrInvariant indicates that counts stopped summing to the population
	// size or went negative after a commit.
	ErrInvariant = errors.New("epidemic: conservation invariant violated")

	// ErrStaleEvent indicates a Commit of an event that is not the current
	// proposal of the kernel.
	ErrStaleEvent = errors.New("epidemic: event is not the pending proposal")

	// ErrClockReversal indicates AdvanceTo with a time before the kernel clock.
	ErrClockReversal = errors.New("epidemic: time moves backwards")
)
