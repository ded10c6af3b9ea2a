// SPDX-License-Identifier: MIT
// Package: vaxsim/simctx
//
// context.go - per-run simulation context.
//
// Contract:
//   • One Context per run, constructed by the outer layer and closed at the
//     end of the run. It owns the seeded RNG streams, the parsed-distribution
//     cache, the event bus, the logger and the run id.
//   • Every random stream is derived from (Seed, stream id) only, so Fork(k)
//     returns the same sequence no matter how many other forks were taken.
//   • A Context is not safe for concurrent use. Parallel work takes its own
//     Fork before fanning out.

package simctx

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/event"
	"github.com/katalvlaran/vaxsim/logging"
)

// ErrClosed indicates use of a Context after Close.
var ErrClosed = errors.New("simctx: context closed")

// Reserved stream ids. User forks should use ids ≥ StreamUser.
const (
	StreamMain uint64 = iota
	StreamDistributions
	StreamNetwork
	StreamPopulation
	StreamGathering
	StreamDemography
	StreamVaccination

	// StreamKernels+r is the stream of the epidemic kernel of region r.
	StreamKernels = 1 << 8
	StreamUser    = 1 << 16
)

const (
	defaultCacheSize = 256
	streamSalt       = 0x9e3779b97f4a7c15
)

// Context is the per-run environment shared by the simulation components.
type Context struct {
	runID  uuid.UUID
	seed   uint64
	rng    *rand.Rand
	distSr rand.Source
	cache  *lru.Cache[string, dist.Sampler]
	bus    *event.Bus
	logger *slog.Logger
	closed bool
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the run logger. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("simctx: WithLogger(nil)")
	}
	return func(c *Context) { c.logger = l }
}

// WithBus shares an existing event bus. Panics on nil.
func WithBus(b *event.Bus) Option {
	if b == nil {
		panic("simctx: WithBus(nil)")
	}
	return func(c *Context) { c.bus = b }
}

// WithRunID pins the run id (replays, ensemble members).
func WithRunID(id uuid.UUID) Option {
	return func(c *Context) { c.runID = id }
}

// New creates a Context seeded with seed. cacheSize ≤ 0 selects the default.
func New(seed uint64, cacheSize int, opts ...Option) (*Context, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, dist.Sampler](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("simctx.New: %w", err)
	}
	c := &Context{
		runID:  uuid.New(),
		seed:   seed,
		rng:    rand.New(stream(seed, StreamMain)),
		distSr: stream(seed, StreamDistributions),
		cache:  cache,
		bus:    event.NewBus(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("run", c.runID.String())

	return c, nil
}

func stream(seed, id uint64) *rand.PCG {
	return rand.NewPCG(seed, id*streamSalt+1)
}

// RunID identifies the run in logs and error reports.
func (c *Context) RunID() uuid.UUID { return c.runID }

// Seed returns the root seed.
func (c *Context) Seed() uint64 { return c.seed }

// Rand returns the main stream.
func (c *Context) Rand() *rand.Rand { return c.rng }

// Fork returns an independent generator for stream id.
func (c *Context) Fork(id uint64) *rand.Rand { return rand.New(c.ForkSource(id)) }

// ForkSource returns an independent source for stream id (for gonum samplers).
func (c *Context) ForkSource(id uint64) rand.Source { return stream(c.seed, id) }

// Bus returns the run's event bus.
func (c *Context) Bus() *event.Bus { return c.bus }

// Logger returns the run logger, tagged with the run id.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Distribution parses spec once per run and returns the cached Sampler on
// later calls. Cached samplers draw from the dedicated distribution stream.
func (c *Context) Distribution(spec string) (dist.Sampler, error) {
	if c.closed {
		return nil, fmt.Errorf("Distribution(%q): %w", spec, ErrClosed)
	}
	key := strings.Join(strings.Fields(strings.ToLower(spec)), "")
	if s, ok := c.cache.Get(key); ok {
		return s, nil
	}
	s, err := dist.Parse(spec, c.distSr)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, s)
	logging.Trace(c.logger, "distribution parsed", "spec", spec)

	return s, nil
}

// Close discards undelivered events and drops the distribution cache.
// Closing twice is a no-op.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if n := c.bus.Pending(); n > 0 {
		c.logger.Warn("discarding undelivered events", "count", n)
	}
	c.bus.Discard()
	c.cache.Purge()

	return nil
}
