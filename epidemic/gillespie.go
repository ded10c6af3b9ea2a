// SPDX-License-Identifier: MIT
// Package: vaxsim/epidemic
//
// gillespie.go - Gillespie direct method at the count level.
//
// Algorithm:
//   1. total = Σ propensities; total == 0 means no proposal.
//   2. dt ~ Exp(total).
//   3. The firing transition is drawn categorically with weights ∝ rates.
//
// Complexity:
//   • Propose: O(T) for T transitions. Commit: O(1).

package epidemic

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/vaxsim/logging"
)

// Gillespie is the exact stochastic simulation algorithm.
type Gillespie struct {
	model  Model
	counts Counts
	n      int64
	now    float64
	src    rand.Source
	props  []float64
	logger *slog.Logger

	pending *Event
}

// NewGillespie validates the model and the initial counts.
func NewGillespie(m Model, initial Counts, src rand.Source, opts ...Option) (*Gillespie, error) {
	if err := validateInitial("NewGillespie", m, initial, src); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	return &Gillespie{
		model:  m,
		counts: initial,
		n:      initial.N(),
		now:    o.start,
		src:    src,
		props:  make([]float64, len(m.Transitions)),
		logger: o.logger,
	}, nil
}

// Name returns "gillespie".
func (g *Gillespie) Name() string { return "gillespie" }

// Time returns the kernel clock.
func (g *Gillespie) Time() float64 { return g.now }

// Counts returns a copy of the current counts.
func (g *Gillespie) Counts() Counts { return g.counts }

// Propose draws the next event, or returns the cached one.
func (g *Gillespie) Propose() (Event, bool) {
	if g.pending != nil {
		return *g.pending, true
	}
	for i := range g.props {
		g.props[i] = g.model.Propensity(i, g.counts)
	}
	total := floats.Sum(g.props)
	if !(total > 0) {
		return Event{}, false
	}

	dt := distuv.Exponential{Rate: total, Src: g.src}.Rand()
	k := 0
	if len(g.props) > 1 {
		k = int(distuv.NewCategorical(g.props, g.src).Rand())
	}
	tr := g.model.Transitions[k]
	g.pending = &Event{Time: g.now + dt, Transition: k, From: tr.From, To: tr.To}

	return *g.pending, true
}

// Commit applies the pending proposal.
func (g *Gillespie) Commit(e Event) error {
	if g.pending == nil || *g.pending != e {
		return fmt.Errorf("Commit(t=%g, %s→%s): %w", e.Time, e.From, e.To, ErrStaleEvent)
	}
	g.pending = nil
	g.counts[e.From]--
	g.counts[e.To]++
	g.now = e.Time
	if err := checkConservation(g.counts, g.n); err != nil {
		return fmt.Errorf("Commit(t=%g, %s→%s): %w", e.Time, e.From, e.To, err)
	}
	logging.Trace(g.logger, "gillespie commit", "t", e.Time, "from", e.From, "to", e.To)

	return nil
}

// AdvanceTo moves the clock to t and drops the proposal.
func (g *Gillespie) AdvanceTo(t float64) error {
	if t < g.now {
		return fmt.Errorf("AdvanceTo(%g): now=%g: %w", t, g.now, ErrClockReversal)
	}
	g.now = t
	g.pending = nil

	return nil
}

// Move applies an exogenous transition of n individuals.
func (g *Gillespie) Move(from, to Compartment, n int64) error {
	if err := applyMove("Move", &g.counts, from, to, n); err != nil {
		return err
	}
	g.pending = nil

	return nil
}
