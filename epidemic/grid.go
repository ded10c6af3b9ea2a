// SPDX-License-Identifier: MIT
// Package: vaxsim/epidemic
//
// grid.go - fixed-step snapshots of an event-driven trajectory, and the
// standalone simulation loop.
//
// Contract:
//   • Trajectories are right-continuous step functions: a snapshot at grid
//     point g shows every event with time ≤ g applied.
//   • Snapshots never move event times; they only sample the step function.

package epidemic

import (
	"fmt"
	"math"
)

// Snapshot is the state of a kernel at a grid point.
type Snapshot struct {
	Time   float64
	Counts Counts
}

// Grid emits snapshots every dt starting at start.
type Grid struct {
	dt   float64
	k    int64
	from float64
}

// NewGrid returns a grid with step dt > 0.
func NewGrid(start, dt float64) (*Grid, error) {
	if !(dt > 0) || math.IsInf(dt, 0) || math.IsNaN(start) || math.IsInf(start, 0) {
		return nil, fmt.Errorf("NewGrid(%g, %g): %w", start, dt, ErrBadModel)
	}
	return &Grid{dt: dt, from: start}, nil
}

// next returns the next grid point to emit.
func (g *Grid) next() float64 { return g.from + float64(g.k)*g.dt }

// Before emits every grid point strictly before t with state c.
func (g *Grid) Before(t float64, c Counts, emit func(Snapshot)) {
	if g == nil {
		return
	}
	for p := g.next(); p < t; p = g.next() {
		emit(Snapshot{Time: p, Counts: c})
		g.k++
	}
}

// Through emits every grid point up to and including t with state c.
func (g *Grid) Through(t float64, c Counts, emit func(Snapshot)) {
	if g == nil || math.IsInf(t, 1) {
		return
	}
	for p := g.next(); p <= t; p = g.next() {
		emit(Snapshot{Time: p, Counts: c})
		g.k++
	}
}

// Simulate runs k until no event is left before horizon, sampling the
// trajectory on grid (which may be nil). It returns the number of committed
// events. With a finite horizon the kernel clock ends at the horizon.
func Simulate(k Kernel, horizon float64, grid *Grid, emit func(Snapshot)) (int, error) {
	if emit == nil {
		emit = func(Snapshot) {}
	}
	var events int
	for {
		e, ok := k.Propose()
		if !ok || e.Time > horizon {
			break
		}
		grid.Before(e.Time, k.Counts(), emit)
		if err := k.Commit(e); err != nil {
			return events, err
		}
		events++
	}
	grid.Through(horizon, k.Counts(), emit)
	if !math.IsInf(horizon, 1) && horizon > k.Time() {
		if err := k.AdvanceTo(horizon); err != nil {
			return events, err
		}
	}

	return events, nil
}
