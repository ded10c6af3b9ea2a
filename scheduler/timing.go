// SPDX-License-Identifier: MIT
// Package: vaxsim/scheduler
//
// timing.go - lazy, restartable recurrence sequences.
//
// Contract:
//   • Next(from) returns the first instant ≥ from, or ok=false when the
//     sequence is exhausted. It is pure: the same from always yields the same
//     answer, so a Timing can be shared and restarted.
//   • The scheduler asks for the successor of a firing at t with
//     Next(math.Nextafter(t, +Inf)); implementations therefore guard against
//     float rounding returning t itself.

package scheduler

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
)

// Timing yields the instants of a recurring action in virtual time.
type Timing interface {
	Next(from float64) (float64, bool)
}

// TimingFunc adapts a function to Timing.
type TimingFunc func(from float64) (float64, bool)

// Next calls f.
func (f TimingFunc) Next(from float64) (float64, bool) { return f(from) }

type every struct{ period, offset float64 }

// Every fires at offset, offset+period, offset+2·period, ...
func Every(period, offset float64) (Timing, error) {
	if !(period > 0) || math.IsInf(period, 0) || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return nil, fmt.Errorf("Every(%g, %g): %w", period, offset, ErrMalformedTiming)
	}

	return every{period: period, offset: offset}, nil
}

func (e every) Next(from float64) (float64, bool) {
	if from <= e.offset {
		return e.offset, true
	}
	k := math.Ceil((from - e.offset) / e.period)
	v := e.offset + k*e.period
	for v < from {
		k++
		v = e.offset + k*e.period
	}

	return v, true
}

type instants []float64

// Instants fires once at each of ts (duplicates collapse).
func Instants(ts ...float64) Timing {
	out := make([]float64, 0, len(ts))
	for _, t := range ts {
		if !math.IsNaN(t) {
			out = append(out, t)
		}
	}
	sort.Float64s(out)

	return instants(out)
}

func (in instants) Next(from float64) (float64, bool) {
	k := sort.SearchFloat64s(in, from)
	if k == len(in) {
		return 0, false
	}

	return in[k], true
}

type cronTiming struct {
	sched cron.Schedule
	epoch time.Time
	unit  time.Duration
}

// Cron adapts a standard 5-field cron expression (or a descriptor such as
// "@daily") to virtual time: instant t corresponds to wall time
// epoch + t·unit. With vaxsim's day-based clock, unit is 24h.
func Cron(spec string, epoch time.Time, unit time.Duration) (Timing, error) {
	if unit <= 0 {
		return nil, fmt.Errorf("Cron(%q): unit=%s: %w", spec, unit, ErrMalformedTiming)
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("Cron(%q): %v: %w", spec, err, ErrMalformedTiming)
	}

	return cronTiming{sched: sched, epoch: epoch, unit: unit}, nil
}

func (c cronTiming) Next(from float64) (float64, bool) {
	if math.IsNaN(from) || math.IsInf(from, 0) {
		return 0, false
	}
	ns := math.Ceil(from * float64(c.unit))
	if ns > math.MaxInt64/2 {
		return 0, false
	}
	wall := c.epoch.Add(time.Duration(ns))
	// cron's Next is strictly after its argument.
	probe := wall.Add(-time.Nanosecond)
	for attempt := 0; attempt < 4; attempt++ {
		next := c.sched.Next(probe)
		if next.IsZero() {
			return 0, false
		}
		v := float64(next.Sub(c.epoch)) / float64(c.unit)
		if v >= from {
			return v, true
		}
		probe = next
	}

	return 0, false
}
