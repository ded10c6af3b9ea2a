// SPDX-License-Identifier: MIT
// Package: vaxsim/ensemble
//
// ensemble.go - parallel independent replications with summary statistics.
//
// Contract:
//   • Member k draws only from the stream ForkSource(base+k) of the run
//     context, so results are identical for any worker count.
//   • Values are reported in member order.
//   • The first failing member cancels the others; its error is returned
//     wrapped with the member index.

package ensemble

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/logging"
	"github.com/katalvlaran/vaxsim/simctx"
)

// ErrNoMembers indicates an ensemble of size < 1.
var ErrNoMembers = errors.New("ensemble: need at least one member")

// Replication runs one member and reports a scalar observable.
type Replication func(ctx context.Context, member int, src rand.Source) (float64, error)

// Option configures Run.
type Option func(*config)

type config struct {
	workers int
	base    uint64
	logger  *slog.Logger
}

// WithWorkers bounds the number of members in flight (default GOMAXPROCS).
// Panics on n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("ensemble: WithWorkers(n<1)")
	}
	return func(c *config) { c.workers = n }
}

// WithStreamBase offsets the member stream ids, so that two ensembles on one
// context draw independent numbers (default simctx.StreamUser).
func WithStreamBase(id uint64) Option {
	return func(c *config) { c.base = id }
}

// WithLogger routes progress output to l. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("ensemble: WithLogger(nil)")
	}
	return func(c *config) { c.logger = l }
}

// Result holds the member values and their summary.
type Result struct {
	Values  []float64
	Summary Summary
}

// Run executes members replications of fn in parallel.
func Run(ctx context.Context, sc *simctx.Context, members int, fn Replication, opts ...Option) (Result, error) {
	if members < 1 {
		return Result{}, fmt.Errorf("Run: members=%d: %w", members, ErrNoMembers)
	}
	cfg := config{workers: runtime.GOMAXPROCS(0), base: simctx.StreamUser, logger: logging.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}

	values := make([]float64, members)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for k := 0; k < members; k++ {
		src := sc.ForkSource(cfg.base + uint64(k))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(gctx, k, src)
			if err != nil {
				return fmt.Errorf("member %d: %w", k, err)
			}
			values[k] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("Run: %w", err)
	}

	res := Result{Values: values, Summary: Summarize(values)}
	cfg.logger.Debug("ensemble done", "members", members, "mean", res.Summary.Mean, "sd", res.Summary.StdDev)

	return res, nil
}

// Summary describes a sample.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Q05    float64
	Median float64
	Q95    float64
	Max    float64
}

// Summarize computes the summary of xs; the zero Summary for an empty sample.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	s := Summary{
		N:      len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q05:    stat.Quantile(0.05, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q95:    stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	if len(sorted) == 1 {
		s.Mean = sorted[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(sorted, nil)

	return s
}

// KS returns the two-sample Kolmogorov-Smirnov distance between a and b.
func KS(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.NaN()
	}
	x := append([]float64(nil), a...)
	y := append([]float64(nil), b...)
	sort.Float64s(x)
	sort.Float64s(y)

	return stat.KolmogorovSmirnov(x, nil, y, nil)
}

// CountAt is a Replication that runs a fresh kernel to horizon and reports
// the size of compartment c. With an infinite horizon it runs to extinction.
func CountAt(factory epidemic.Factory, m epidemic.Model, initial epidemic.Counts, horizon float64, c epidemic.Compartment) Replication {
	return func(ctx context.Context, _ int, src rand.Source) (float64, error) {
		k, err := factory(m, initial, src)
		if err != nil {
			return 0, err
		}
		if _, err := epidemic.Simulate(k, horizon, nil, nil); err != nil {
			return 0, err
		}
		return float64(k.Counts().Of(c)), ctx.Err()
	}
}

// FinalSize reports the number of individuals ever infected: recoveries at
// extinction minus the initially recovered.
func FinalSize(factory epidemic.Factory, m epidemic.Model, initial epidemic.Counts) Replication {
	at := CountAt(factory, m, initial, math.Inf(1), epidemic.Recovered)
	return func(ctx context.Context, member int, src rand.Source) (float64, error) {
		r, err := at(ctx, member, src)
		return r - float64(initial.Of(epidemic.Recovered)), err
	}
}
