// SPDX-License-Identifier: MIT

package scheduler

import "errors"

// Sentinel errors.
var (
	// ErrPastTime indicates an action scheduled before Now (or at a NaN time).
	ErrPastTime = errors.New("scheduler: time is in the past")

	// ErrMalformedTiming indicates an unusable recurring timing
	// (non-positive period, bad cron expression, nil timing).
	ErrMalformedTiming = errors.New("scheduler: malformed timing")

	// ErrNilAction indicates a nil action.
	ErrNilAction = errors.New("scheduler: nil action")
)
