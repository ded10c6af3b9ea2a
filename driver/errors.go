// SPDX-License-Identifier: MIT
// Package: vaxsim/driver
//
// errors.go - configuration sentinels and the fatal run error.

package driver

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/population"
)

var (
	// ErrConfig indicates a driver that cannot be assembled as requested.
	ErrConfig = errors.New("driver: invalid configuration")

	// ErrAlreadyRan indicates a second Run on the same driver.
	ErrAlreadyRan = errors.New("driver: run already started")

	// ErrUnknownAction indicates Stop on an activity that is not scheduled.
	ErrUnknownAction = errors.New("driver: unknown action")
)

// Snapshot is the simulation state at the moment a run failed.
type Snapshot struct {
	Counts map[string]epidemic.Counts
	Rows   []population.Row
}

// RunError is the fatal error of a run. It records where on the timeline
// the run stopped and how to replay it.
type RunError struct {
	Err      error
	Time     float64
	Seed     uint64
	RunID    uuid.UUID
	Snapshot Snapshot
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s (seed %d) failed at t=%g: %v", e.RunID, e.Seed, e.Time, e.Err)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *RunError) Unwrap() error { return e.Err }
