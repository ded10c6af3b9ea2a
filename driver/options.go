// SPDX-License-Identifier: MIT
// Package: vaxsim/driver
//
// options.go - functional options for assembling a Driver.
//
// Every recurring activity is opt-in. Options validate their arguments and
// panic on programmer error (nil values, negative sizes); values that come
// from configuration are validated by New and reported as ErrConfig.

package driver

import (
	"time"

	"github.com/katalvlaran/vaxsim/attitude"
	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/household"
	"github.com/katalvlaran/vaxsim/scheduler"
)

// Option configures a Driver.
type Option func(*settings)

type settings struct {
	horizon   float64
	statEvery float64
	pace      time.Duration

	propagator  *attitude.Propagator
	propagation scheduler.Timing

	gathering     scheduler.Timing
	gatheringSize dist.Sampler

	demography scheduler.Timing
	households int
	opWeights  map[household.Op]float64

	vaccination scheduler.Timing
	uptake      float64

	barrier   attitude.Barrier
	threshold float64

	imports []Importation
}

// Importation moves Count susceptibles of Region to infectious at Time.
type Importation struct {
	Time   float64
	Region string
	Count  int64
}

func defaultSettings() settings {
	return settings{
		barrier:   attitude.AverageBarrier,
		threshold: 0.5,
	}
}

// WithHorizon sets the end of the run (required, finite, > 0).
func WithHorizon(h float64) Option {
	return func(s *settings) { s.horizon = h }
}

// WithStatistics publishes aggregate statistics every dt, starting at 0.
func WithStatistics(dt float64) Option {
	return func(s *settings) { s.statEvery = dt }
}

// WithPacing paces the virtual clock at perUnit of wall time per unit.
func WithPacing(perUnit time.Duration) Option {
	return func(s *settings) { s.pace = perUnit }
}

// WithPropagation runs a propagation round of p at every instant of timing.
func WithPropagation(p *attitude.Propagator, timing scheduler.Timing) Option {
	if p == nil || timing == nil {
		panic("driver: WithPropagation(nil)")
	}
	return func(s *settings) { s.propagator, s.propagation = p, timing }
}

// WithGatherings holds a gathering at every instant of timing. size draws
// the number of guests; it is clipped to the host's degree.
func WithGatherings(timing scheduler.Timing, size dist.Sampler) Option {
	if timing == nil || size == nil {
		panic("driver: WithGatherings(nil)")
	}
	return func(s *settings) { s.gathering, s.gatheringSize = timing, size }
}

// WithDemography applies household transitions at every instant of timing:
// per round, households random households each draw an operation with the
// given relative weights. Undefined transitions are skipped.
func WithDemography(timing scheduler.Timing, households int, weights map[household.Op]float64) Option {
	if timing == nil || households < 0 {
		panic("driver: WithDemography(nil timing or negative households)")
	}
	return func(s *settings) { s.demography, s.households, s.opWeights = timing, households, weights }
}

// WithVaccination moves uptake·willingness of every region's susceptibles to
// recovered at every instant of timing.
func WithVaccination(timing scheduler.Timing, uptake float64) Option {
	if timing == nil {
		panic("driver: WithVaccination(nil)")
	}
	return func(s *settings) { s.vaccination, s.uptake = timing, uptake }
}

// WithBarrier selects the willingness rule for statistics and vaccination
// (default AverageBarrier below 0.5).
func WithBarrier(b attitude.Barrier, threshold float64) Option {
	if b == nil {
		panic("driver: WithBarrier(nil)")
	}
	return func(s *settings) { s.barrier, s.threshold = b, threshold }
}

// WithImportation schedules an exogenous S→I move.
func WithImportation(imp Importation) Option {
	return func(s *settings) { s.imports = append(s.imports, imp) }
}
