// SPDX-License-Identifier: MIT
// Package: vaxsim/epidemic
//
// sellke.go - Sellke construction with per-individual thresholds and delays.
//
// Algorithm:
//   • Every susceptible holds a resistance threshold θ ~ Exp(1). Between
//     events the infection pressure λ = β·I/N is constant, and the cumulative
//     pressure A(t) = ∫ λ dt grows linearly.
//   • The next infection happens when A reaches min θ:
//       t_inf = now + (min θ − A)/λ.
//   • Every individual entering a compartment with a linear outflow draws its
//     delay Exp(rate) on entry; delays live in a min-heap of absolute times.
//   • The kernel advances to the earlier of the two streams.
//   • A susceptible created later (waning, exogenous moves) gets θ = A(now)+Exp(1).
//
// Complexity:
//   • Propose: O(1). Commit: O(log n). Move: O(n) (heap filter + rebuild).

package epidemic

import (
	"container/heap"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/vaxsim/logging"
)

// Sellke is the threshold-based construction of the Markov epidemic.
type Sellke struct {
	model  Model
	counts Counts
	n      int64
	now    float64
	infIdx int
	out    [compartmentCount]int

	pressure   float64 // A(now)
	thresholds floatHeap
	delays     delayHeap

	unit   distuv.Exponential
	rng    *rand.Rand
	logger *slog.Logger

	pending *Event
}

// NewSellke draws one threshold per initial susceptible and one delay per
// initial member of every compartment with an outflow.
func NewSellke(m Model, initial Counts, src rand.Source, opts ...Option) (*Sellke, error) {
	if err := validateInitial("NewSellke", m, initial, src); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	s := &Sellke{
		model:  m,
		counts: initial,
		n:      initial.N(),
		now:    o.start,
		infIdx: m.infection(),
		out:    m.outflow(),
		unit:   distuv.Exponential{Rate: 1, Src: src},
		rng:    rand.New(src),
		logger: o.logger,
	}
	s.thresholds = make(floatHeap, 0, initial[Susceptible])
	for i := int64(0); i < initial[Susceptible]; i++ {
		s.thresholds = append(s.thresholds, s.unit.Rand())
	}
	heap.Init(&s.thresholds)
	for _, c := range Compartments() {
		if c == Susceptible {
			continue
		}
		for i := int64(0); i < initial[c]; i++ {
			s.scheduleDelay(c)
		}
	}
	heap.Init(&s.delays)

	return s, nil
}

// Name returns "sellke".
func (s *Sellke) Name() string { return "sellke" }

// Time returns the kernel clock.
func (s *Sellke) Time() float64 { return s.now }

// Counts returns a copy of the current counts.
func (s *Sellke) Counts() Counts { return s.counts }

// lambda is the current per-susceptible infection pressure rate.
func (s *Sellke) lambda() float64 {
	if s.n == 0 {
		return 0
	}
	return s.model.Transitions[s.infIdx].Rate * float64(s.counts[Infectious]) / float64(s.n)
}

// scheduleDelay pushes the exit time of one individual entering c.
func (s *Sellke) scheduleDelay(c Compartment) {
	k := s.out[c]
	if k < 0 || k == s.infIdx {
		return
	}
	rate := s.model.Transitions[k].Rate
	if rate <= 0 {
		return
	}
	heap.Push(&s.delays, delay{t: s.now + s.unit.Rand()/rate, tr: k})
}

// Propose returns the earlier of the next infection and the next delay.
func (s *Sellke) Propose() (Event, bool) {
	if s.pending != nil {
		return *s.pending, true
	}
	tInf := math.Inf(1)
	if lam := s.lambda(); lam > 0 && len(s.thresholds) > 0 {
		gap := math.Max(0, s.thresholds[0]-s.pressure)
		tInf = s.now + gap/lam
	}
	tDel := math.Inf(1)
	if len(s.delays) > 0 {
		tDel = math.Max(s.now, s.delays[0].t)
	}
	if math.IsInf(tInf, 1) && math.IsInf(tDel, 1) {
		return Event{}, false
	}

	k := s.infIdx
	t := tInf
	if tDel <= tInf {
		k, t = s.delays[0].tr, tDel
	}
	tr := s.model.Transitions[k]
	s.pending = &Event{Time: t, Transition: k, From: tr.From, To: tr.To}

	return *s.pending, true
}

// Commit applies the pending proposal.
func (s *Sellke) Commit(e Event) error {
	if s.pending == nil || *s.pending != e {
		return fmt.Errorf("Commit(t=%g, %s→%s): %w", e.Time, e.From, e.To, ErrStaleEvent)
	}
	s.pending = nil
	s.integrate(e.Time)

	if e.Transition == s.infIdx {
		heap.Pop(&s.thresholds)
	} else {
		heap.Pop(&s.delays)
	}
	s.counts[e.From]--
	s.counts[e.To]++
	s.enter(e.To, 1)
	if err := checkConservation(s.counts, s.n); err != nil {
		return fmt.Errorf("Commit(t=%g, %s→%s): %w", e.Time, e.From, e.To, err)
	}
	logging.Trace(s.logger, "sellke commit", "t", e.Time, "from", e.From, "to", e.To, "pressure", s.pressure)

	return nil
}

// integrate accumulates pressure up to t and moves the clock.
func (s *Sellke) integrate(t float64) {
	if t > s.now {
		s.pressure += s.lambda() * (t - s.now)
		s.now = t
	}
}

// enter gives n new members of c their threshold or delay.
func (s *Sellke) enter(c Compartment, n int64) {
	for i := int64(0); i < n; i++ {
		if c == Susceptible {
			heap.Push(&s.thresholds, s.pressure+s.unit.Rand())
			continue
		}
		s.scheduleDelay(c)
	}
}

// AdvanceTo integrates the pressure up to t.
func (s *Sellke) AdvanceTo(t float64) error {
	if t < s.now {
		return fmt.Errorf("AdvanceTo(%g): now=%g: %w", t, s.now, ErrClockReversal)
	}
	s.integrate(t)
	s.pending = nil

	return nil
}

// Move applies an exogenous transition of n individuals chosen uniformly at
// random from the source compartment.
func (s *Sellke) Move(from, to Compartment, n int64) error {
	if err := applyMove("Move", &s.counts, from, to, n); err != nil {
		return err
	}
	s.pending = nil
	s.leave(from, n)
	s.enter(to, n)

	return nil
}

// leave drops the thresholds or delays of n random members of c.
func (s *Sellke) leave(c Compartment, n int64) {
	if n == 0 {
		return
	}
	if c == Susceptible {
		for i := int64(0); i < n; i++ {
			heap.Remove(&s.thresholds, s.rng.IntN(len(s.thresholds)))
		}
		return
	}
	k := s.out[c]
	if k < 0 {
		return
	}
	// Members of c are the delay entries of transition k; pick n of them.
	var idx []int
	for i, d := range s.delays {
		if d.tr == k {
			idx = append(idx, i)
		}
	}
	s.rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	drop := make(map[int]bool, n)
	for _, i := range idx[:min(int(n), len(idx))] {
		drop[i] = true
	}
	kept := s.delays[:0]
	for i, d := range s.delays {
		if !drop[i] {
			kept = append(kept, d)
		}
	}
	s.delays = kept
	heap.Init(&s.delays)
}

// floatHeap is a min-heap of thresholds.
type floatHeap []float64

func (h floatHeap) Len() int           { return len(h) }
func (h floatHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h floatHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *floatHeap) Push(x any)        { *h = append(*h, x.(float64)) }
func (h *floatHeap) Pop() any {
	old := *h
	v := old[len(old)-1]
	*h = old[:len(old)-1]
	return v
}

// delay is the scheduled exit of one individual through transition tr.
type delay struct {
	t  float64
	tr int
}

type delayHeap []delay

func (h delayHeap) Len() int           { return len(h) }
func (h delayHeap) Less(i, j int) bool { return h[i].t < h[j].t }
func (h delayHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *delayHeap) Push(x any)        { *h = append(*h, x.(delay)) }
func (h *delayHeap) Pop() any {
	old := *h
	v := old[len(old)-1]
	*h = old[:len(old)-1]
	return v
}
