// SPDX-License-Identifier: MIT
// Package: vaxsim/attitude
//
// errors.go - sentinel errors of the attitude propagator.

package attitude

import "errors"

var (
	// ErrShapeMismatch indicates a pressure matrix whose order differs from
	// the population table length.
	ErrShapeMismatch = errors.New("attitude: pressure matrix and table sizes differ")

	// ErrUnknownFilter indicates a filter name with no registered policy.
	ErrUnknownFilter = errors.New("attitude: unknown filter")

	// ErrUnknownBarrier indicates a barrier name with no registered formula.
	ErrUnknownBarrier = errors.New("attitude: unknown barrier")

	// ErrBadThreshold indicates a willingness threshold outside [0,1].
	ErrBadThreshold = errors.New("attitude: threshold must lie in [0,1]")
)
