// SPDX-License-Identifier: MIT
// Package: vaxsim/attitude
//
// propagator.go - one synchronous round of weighted-average attitude updates.
//
// Algorithm, per non-attractor entity i:
//   1. w(i,j) = filter(pressure(i,j), calculation(i)) for every tie j.
//   2. sumW = Σ w. sumW == 0 leaves i unchanged.
//   3. With an attractor a: selfW = sumW·Self(a), attrW = sumW·Attractor(a).
//      Without one: selfW = sumW·Self(i), attrW = 0.
//   4. new = (Σ w·v_j + selfW·v_i + attrW·v_a) / (sumW + selfW + attrW).
//   5. peerCount = #{j : w > 0}; i changed iff peerCount > 0.
//
// Concurrency:
//   • Rows are split into contiguous chunks, one goroutine each. Chunks read
//     the committed buffers and write only their own indices of the next
//     buffers, then Table.Commit swaps every column in one batch.
//
// Complexity:
//   • O(N + T) per column for T ties.

package attitude

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/vaxsim/logging"
	"github.com/katalvlaran/vaxsim/matrix"
	"github.com/katalvlaran/vaxsim/population"
)

// roundingSlack absorbs the last-ulp drift of a convex combination of
// values that all sit on a boundary of [0,1].
const roundingSlack = 1e-12

// Propagator runs propagation rounds. It holds no per-round state and may be
// reused; a single round must not overlap another on the same table.
type Propagator struct {
	filter  Filter
	columns []population.Column
	workers int
	logger  *slog.Logger
}

// Option configures a Propagator.
type Option func(*Propagator)

// WithFilter selects the appreciation filter (default Threshold). Panics on nil.
func WithFilter(f Filter) Option {
	if f == nil {
		panic("attitude: WithFilter(nil)")
	}
	return func(p *Propagator) { p.filter = f }
}

// WithColumns selects the propagated columns (default Confidence and
// Complacency). Panics when empty.
func WithColumns(cols ...population.Column) Option {
	if len(cols) == 0 {
		panic("attitude: WithColumns()")
	}
	return func(p *Propagator) { p.columns = append([]population.Column(nil), cols...) }
}

// WithWorkers bounds the fan-out (default GOMAXPROCS). Panics on n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("attitude: WithWorkers(n<1)")
	}
	return func(p *Propagator) { p.workers = n }
}

// WithLogger routes round summaries to l. Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("attitude: WithLogger(nil)")
	}
	return func(p *Propagator) { p.logger = l }
}

// New returns a propagator with the given options applied over the defaults.
func New(opts ...Option) *Propagator {
	p := &Propagator{
		filter:  Threshold,
		columns: []population.Column{population.Confidence, population.Complacency},
		workers: runtime.GOMAXPROCS(0),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Columns returns the propagated columns.
func (p *Propagator) Columns() []population.Column {
	return append([]population.Column(nil), p.columns...)
}

// Propagate runs one round and returns entity id → peer count for every
// changed entity. On error the table keeps its previous committed state.
func (p *Propagator) Propagate(ctx context.Context, pressure *matrix.Pressure, table *population.Table) (map[int64]int, error) {
	n := table.Len()
	if pressure == nil || pressure.N() != n {
		got := -1
		if pressure != nil {
			got = pressure.N()
		}
		return nil, fmt.Errorf("Propagate: matrix order %d, table rows %d: %w", got, n, ErrShapeMismatch)
	}

	workers := min(p.workers, max(n, 1))
	chunk := (n + workers - 1) / max(workers, 1)
	peers := make([]int, n) // written by the owning chunk only

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			return p.span(gctx, pressure, table, lo, hi, peers)
		})
	}
	if err := g.Wait(); err != nil {
		table.Discard()
		return nil, fmt.Errorf("Propagate: %w", err)
	}

	changedRows := make(map[int]int)
	changed := make(map[int64]int)
	for i, c := range peers {
		if c > 0 {
			changedRows[i] = c
			changed[table.ID(i)] = c
		}
	}
	if err := table.Commit(changedRows, p.columns...); err != nil {
		return nil, fmt.Errorf("Propagate: %w", err)
	}
	p.logger.Debug("propagation round", "entities", n, "changed", len(changed), "ties", pressure.Ties())

	return changed, nil
}

// span updates rows [lo, hi).
func (p *Propagator) span(ctx context.Context, pressure *matrix.Pressure, table *population.Table, lo, hi int, peers []int) error {
	cur := make([][]float64, len(p.columns))
	next := make([][]float64, len(p.columns))
	for k, c := range p.columns {
		cur[k] = table.Current(c)
		next[k] = table.Next(c)
	}
	calc := table.Current(population.Calculation)
	acc := make([]float64, len(p.columns))

	for i := lo; i < hi; i++ {
		if (i-lo)%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if table.IsAttractor(i) {
			continue
		}
		ties, err := pressure.Neighbors(i)
		if err != nil {
			return err
		}

		var sumW float64
		var count int
		for k := range acc {
			acc[k] = 0
		}
		for _, tie := range ties {
			w := p.filter(tie.Weight, calc[i])
			if !(w > 0) {
				continue
			}
			sumW += w
			count++
			for k := range acc {
				acc[k] += w * cur[k][tie.To]
			}
		}
		if count == 0 {
			continue
		}

		var selfW, attrW float64
		a, hasAttr := table.AttractorOf(i)
		if hasAttr {
			aw := table.Weights(a)
			selfW, attrW = sumW*aw.Self, sumW*aw.Attractor
		} else {
			selfW = sumW * table.Weights(i).Self
		}
		den := sumW + selfW + attrW
		for k := range acc {
			num := acc[k] + selfW*cur[k][i]
			if hasAttr {
				num += attrW * cur[k][a]
			}
			next[k][i] = snap(num / den)
		}
		peers[i] = count
	}

	return nil
}

// snap pulls values within roundingSlack of the unit interval onto it.
func snap(v float64) float64 {
	switch {
	case v < 0 && v > -roundingSlack:
		return 0
	case v > 1 && v < 1+roundingSlack:
		return 1
	}
	return v
}
