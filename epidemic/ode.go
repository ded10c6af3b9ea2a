// SPDX-License-Identifier: MIT
// Package: vaxsim/epidemic
//
// ode.go - deterministic mean-field solution, used as a regression oracle.

package epidemic

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// State holds real-valued compartment sizes.
type State [compartmentCount]float64

// Of returns the size of compartment x.
func (s State) Of(x Compartment) float64 { return s[x] }

// SolveODE integrates the mean-field equations of m from initial over [0, t]
// with classical fourth-order Runge-Kutta in the given number of steps.
func SolveODE(m Model, initial Counts, t float64, steps int) (State, error) {
	if err := m.Validate(); err != nil {
		return State{}, fmt.Errorf("SolveODE: %w", err)
	}
	if steps <= 0 || !(t >= 0) {
		return State{}, fmt.Errorf("SolveODE: t=%g steps=%d: %w", t, steps, ErrBadModel)
	}
	for i, v := range initial {
		if v < 0 {
			return State{}, fmt.Errorf("SolveODE: %s=%d: %w", compartmentNames[i], v, ErrNegativeCount)
		}
	}

	y := make([]float64, compartmentCount)
	for i, v := range initial {
		y[i] = float64(v)
	}
	n := floats.Sum(y)
	h := t / float64(steps)
	var (
		k1  = make([]float64, compartmentCount)
		k2  = make([]float64, compartmentCount)
		k3  = make([]float64, compartmentCount)
		k4  = make([]float64, compartmentCount)
		tmp = make([]float64, compartmentCount)
	)
	for s := 0; s < steps; s++ {
		derive(m, n, y, k1)
		floats.AddScaledTo(tmp, y, h/2, k1)
		derive(m, n, tmp, k2)
		floats.AddScaledTo(tmp, y, h/2, k2)
		derive(m, n, tmp, k3)
		floats.AddScaledTo(tmp, y, h, k3)
		derive(m, n, tmp, k4)

		floats.AddScaled(y, h/6, k1)
		floats.AddScaled(y, h/3, k2)
		floats.AddScaled(y, h/3, k3)
		floats.AddScaled(y, h/6, k4)
	}

	var out State
	copy(out[:], y)

	return out, nil
}

// derive writes dy/dt into dst.
func derive(m Model, n float64, y, dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for _, tr := range m.Transitions {
		var flow float64
		switch {
		case tr.Infection && n > 0:
			flow = tr.Rate * y[Susceptible] * y[Infectious] / n
		case !tr.Infection:
			flow = tr.Rate * y[tr.From]
		}
		dst[tr.From] -= flow
		dst[tr.To] += flow
	}
}
