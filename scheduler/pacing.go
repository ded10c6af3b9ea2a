// SPDX-License-Identifier: MIT
// Package: vaxsim/scheduler
//
// pacing.go - optional wall-clock pacing of the virtual timeline.
//
// Pacing lives outside the core loop: it is a BeforeAdvance hook that sleeps
// in bounded chunks so cancellation is noticed promptly.

package scheduler

import (
	"context"
	"math"
	"time"
)

const pacingChunk = 250 * time.Millisecond

// Pacing returns a hook that sleeps perUnit of wall time per virtual time
// unit advanced. A non-positive perUnit disables pacing.
func Pacing(perUnit time.Duration) BeforeAdvance {
	return func(ctx context.Context, from, to float64) error {
		if perUnit <= 0 || math.IsInf(to, 0) {
			return nil
		}
		remaining := time.Duration((to - from) * float64(perUnit))
		for remaining > 0 {
			chunk := min(remaining, pacingChunk)
			timer := time.NewTimer(chunk)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			remaining -= chunk
		}

		return nil
	}
}
