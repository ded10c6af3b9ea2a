// SPDX-License-Identifier: MIT
// Package: vaxsim/epidemic
//
// kernel.go - the Kernel interface, options and the algorithm registry.
//
// Contract:
//   • Propose is idempotent until Commit, AdvanceTo or Move invalidates the
//     cached proposal. ok=false means the total active rate is zero.
//   • Commit accepts only the pending proposal and checks conservation after
//     applying it (ErrInvariant).
//   • AdvanceTo moves the clock without an event and drops the proposal. The
//     caller commits every event up to t first; the kernels are Markov, so a
//     discarded Gillespie proposal is statistically harmless.

package epidemic

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/katalvlaran/vaxsim/logging"
)

// Event is one proposed or committed transition of a kernel.
type Event struct {
	Time       float64
	Transition int // index into Model.Transitions
	From, To   Compartment
}

// Kernel is a stochastic transmission algorithm over one sub-population.
type Kernel interface {
	Name() string
	Time() float64
	Counts() Counts
	Propose() (Event, bool)
	Commit(e Event) error
	AdvanceTo(t float64) error
	Move(from, to Compartment, n int64) error
}

// Option configures a kernel.
type Option func(*options)

type options struct {
	start  float64
	logger *slog.Logger
}

// WithStart sets the initial kernel time (default 0).
func WithStart(t float64) Option {
	return func(o *options) { o.start = t }
}

// WithLogger routes trace output to l. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("epidemic: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Factory constructs a kernel for model m with the given initial counts,
// drawing every random number from src.
type Factory func(m Model, initial Counts, src rand.Source, opts ...Option) (Kernel, error)

var registry = map[string]Factory{
	"gillespie": func(m Model, c Counts, src rand.Source, opts ...Option) (Kernel, error) {
		return NewGillespie(m, c, src, opts...)
	},
	"sellke": func(m Model, c Counts, src rand.Source, opts ...Option) (Kernel, error) {
		return NewSellke(m, c, src, opts...)
	},
}

// Lookup resolves an algorithm name (case-insensitive).
func Lookup(name string) (Factory, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("Lookup(%q): %w", name, ErrUnknownAlgorithm)
	}
	return f, nil
}

// Algorithms returns the registered names, sorted.
func Algorithms() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// validateInitial is shared by the constructors.
func validateInitial(method string, m Model, c Counts, src rand.Source) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	for i, v := range c {
		if v < 0 {
			return fmt.Errorf("%s: %s=%d: %w", method, compartmentNames[i], v, ErrNegativeCount)
		}
	}
	if src == nil {
		return fmt.Errorf("%s: nil random source: %w", method, ErrBadModel)
	}

	return nil
}

// applyMove is the count bookkeeping shared by Move implementations.
func applyMove(method string, c *Counts, from, to Compartment, n int64) error {
	if int(from) >= compartmentCount || int(to) >= compartmentCount || from == to {
		return fmt.Errorf("%s(%s→%s): %w", method, from, to, ErrBadModel)
	}
	if n < 0 || c[from] < n {
		return fmt.Errorf("%s(%s→%s, %d): have %d: %w", method, from, to, n, c[from], ErrNegativeCount)
	}
	c[from] -= n
	c[to] += n

	return nil
}
