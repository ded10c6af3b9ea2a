// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// config.go - internal configuration and deterministic defaults.
//
// Deterministic defaults:
//   • rng         = nil   (stochastic constructors fail with ErrNeedRandSource)
//   • rewiring    = 0     (pure ring lattice)
//   • bias        = nil   (no partition)
//   • inGroup     = nil   (everyone shares one group)
//   • weight      = nil   (ties keep their structural weight 1)
//   • maxAttempts = 64
//   • logger      = discard

package network

import (
	"log/slog"
	"math/rand/v2"

	"github.com/katalvlaran/vaxsim/logging"
)

const (
	// structuralWeight is the weight topology constructors give to a tie
	// before Weigh assigns the appreciation.
	structuralWeight = 1.0

	defaultMaxAttempts = 64

	pcgStreamSalt = 0x6a09e667f3bcc909
)

// config aggregates every knob used by constructors. It is passed by value.
type config struct {
	rng         *rand.Rand
	rewiring    float64
	bias        func(i int) float64
	inGroup     Predicate
	weight      WeightFn
	maxAttempts int
	logger      *slog.Logger
}

func newConfig(opts ...Option) config {
	cfg := config{
		maxAttempts: defaultMaxAttempts,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// sameGroup resolves the in-group predicate; nil means one shared group.
func (c config) sameGroup(i, j int) bool {
	if c.inGroup == nil {
		return true
	}
	return c.inGroup(i, j)
}
