// SPDX-License-Identifier: MIT
// Package: vaxsim/epidemic
//
// model.go - compartments, counts and transition lists.
//
// Contract:
//   • A Model has exactly one infection transition S→E or S→I with
//     propensity β·S·I/N; every other transition is linear, rate·count(From).
//   • Transitions connect adjacent compartments (M→S, S→E, E→I, I→R) and a
//     compartment has at most one outgoing transition, so per-individual
//     delays are well defined for the Sellke construction.

package epidemic

import (
	"fmt"
	"math"
	"strings"
)

// Compartment is one of the M/S/E/I/R disease states.
type Compartment uint8

const (
	Maternal Compartment = iota
	Susceptible
	Exposed
	Infectious
	Recovered

	compartmentCount = int(Recovered) + 1
)

var compartmentNames = [compartmentCount]string{"M", "S", "E", "I", "R"}
var compartmentLong = [compartmentCount]string{"maternal", "susceptible", "exposed", "infectious", "recovered"}

// Compartments lists every compartment in M/S/E/I/R order.
func Compartments() []Compartment {
	return []Compartment{Maternal, Susceptible, Exposed, Infectious, Recovered}
}

// String returns the one-letter name of c.
func (c Compartment) String() string {
	if int(c) < compartmentCount {
		return compartmentNames[c]
	}
	return fmt.Sprintf("compartment(%d)", uint8(c))
}

// ParseCompartment accepts the one-letter or the long name, in any case.
func ParseCompartment(s string) (Compartment, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := 0; i < compartmentCount; i++ {
		if s == strings.ToLower(compartmentNames[i]) || s == compartmentLong[i] {
			return Compartment(i), nil
		}
	}

	return 0, fmt.Errorf("ParseCompartment(%q): %w", s, ErrBadModel)
}

// Counts holds the number of individuals per compartment.
type Counts [compartmentCount]int64

// N returns the population size.
func (c Counts) N() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}

// Of returns the count of compartment x.
func (c Counts) Of(x Compartment) int64 { return c[x] }

// String renders c as "M=0 S=999 E=0 I=1 R=0".
func (c Counts) String() string {
	var b strings.Builder
	for i, v := range c {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%d", compartmentNames[i], v)
	}
	return b.String()
}

// checkConservation verifies non-negativity and the population total.
func checkConservation(c Counts, n int64) error {
	for i, v := range c {
		if v < 0 {
			return fmt.Errorf("%s=%d: %w", compartmentNames[i], v, ErrInvariant)
		}
	}
	if got := c.N(); got != n {
		return fmt.Errorf("sum=%d want %d: %w", got, n, ErrInvariant)
	}

	return nil
}

// Transition is one edge of the compartment flow.
type Transition struct {
	Name      string
	From, To  Compartment
	Rate      float64
	Infection bool
}

// Model is an ordered list of transitions.
type Model struct {
	Name        string
	Transitions []Transition
}

// SIR returns S→I (β) and I→R (γ).
func SIR(beta, gamma float64) Model {
	return Model{Name: "SIR", Transitions: []Transition{
		{Name: "infection", From: Susceptible, To: Infectious, Rate: beta, Infection: true},
		{Name: "recovery", From: Infectious, To: Recovered, Rate: gamma},
	}}
}

// SEIR adds a latent stage with onset rate σ.
func SEIR(beta, sigma, gamma float64) Model {
	return Model{Name: "SEIR", Transitions: []Transition{
		{Name: "infection", From: Susceptible, To: Exposed, Rate: beta, Infection: true},
		{Name: "onset", From: Exposed, To: Infectious, Rate: sigma},
		{Name: "recovery", From: Infectious, To: Recovered, Rate: gamma},
	}}
}

// MSEIR adds waning maternal immunity with rate ω in front of SEIR.
func MSEIR(omega, beta, sigma, gamma float64) Model {
	m := SEIR(beta, sigma, gamma)
	m.Name = "MSEIR"
	m.Transitions = append([]Transition{
		{Name: "waning", From: Maternal, To: Susceptible, Rate: omega},
	}, m.Transitions...)

	return m
}

// Validate checks the structural rules listed in the file contract.
func (m Model) Validate() error {
	if len(m.Transitions) == 0 {
		return fmt.Errorf("Validate(%s): no transitions: %w", m.Name, ErrBadModel)
	}
	var infections int
	var seen [compartmentCount]bool
	for i, tr := range m.Transitions {
		if int(tr.From) >= compartmentCount || int(tr.To) >= compartmentCount {
			return fmt.Errorf("Validate(%s): transition %d: unknown compartment: %w", m.Name, i, ErrBadModel)
		}
		if math.IsNaN(tr.Rate) || math.IsInf(tr.Rate, 0) || tr.Rate < 0 {
			return fmt.Errorf("Validate(%s): %s rate=%g: %w", m.Name, tr.Name, tr.Rate, ErrBadModel)
		}
		if seen[tr.From] {
			return fmt.Errorf("Validate(%s): second transition out of %s: %w", m.Name, tr.From, ErrBadModel)
		}
		seen[tr.From] = true
		if tr.Infection {
			infections++
			if tr.From != Susceptible || (tr.To != Exposed && tr.To != Infectious) {
				return fmt.Errorf("Validate(%s): infection %s→%s: %w", m.Name, tr.From, tr.To, ErrBadModel)
			}
			continue
		}
		if tr.To != tr.From+1 {
			return fmt.Errorf("Validate(%s): %s %s→%s not adjacent: %w", m.Name, tr.Name, tr.From, tr.To, ErrBadModel)
		}
	}
	if infections != 1 {
		return fmt.Errorf("Validate(%s): %d infection transitions: %w", m.Name, infections, ErrBadModel)
	}

	return nil
}

// Propensity returns the rate of transition i in state c.
func (m Model) Propensity(i int, c Counts) float64 {
	tr := m.Transitions[i]
	if !tr.Infection {
		return tr.Rate * float64(c[tr.From])
	}
	n := c.N()
	if n == 0 {
		return 0
	}
	return tr.Rate * float64(c[Susceptible]) * float64(c[Infectious]) / float64(n)
}

// TotalRate returns the sum of all propensities in state c.
func (m Model) TotalRate(c Counts) float64 {
	var total float64
	for i := range m.Transitions {
		total += m.Propensity(i, c)
	}
	return total
}

// infection returns the index of the infection transition.
func (m Model) infection() int {
	for i, tr := range m.Transitions {
		if tr.Infection {
			return i
		}
	}
	return -1
}

// outflow maps each compartment to the index of its outgoing transition, -1
// when it has none.
func (m Model) outflow() [compartmentCount]int {
	var out [compartmentCount]int
	for i := range out {
		out[i] = -1
	}
	for i, tr := range m.Transitions {
		out[tr.From] = i
	}
	return out
}

// R0 returns the basic reproduction number: the infection rate times the
// mean infectious period. A model whose infectious compartment never empties
// has R0 = +Inf.
func R0(m Model) float64 {
	inf := m.infection()
	if inf < 0 {
		return math.NaN()
	}
	var leave float64
	for _, tr := range m.Transitions {
		if tr.From == Infectious {
			leave += tr.Rate
		}
	}
	if leave == 0 {
		return math.Inf(1)
	}

	return m.Transitions[inf].Rate / leave
}
