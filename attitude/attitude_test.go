// SPDX-License-Identifier: MIT

package attitude_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vaxsim/attitude"
	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/matrix"
	"github.com/katalvlaran/vaxsim/network"
	"github.com/katalvlaran/vaxsim/population"
)

const eps = 1e-12

func TestFilters(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.8, attitude.Threshold(0.8, 0.5))
	assert.Equal(t, 0.5, attitude.Threshold(0.5, 0.5))
	assert.Zero(t, attitude.Threshold(0.49, 0.5))
	assert.Zero(t, attitude.Threshold(0.99, 0))
	assert.Equal(t, 0.1, attitude.Threshold(0.1, 1))

	assert.InDelta(t, 0.8, attitude.Shifted(0.8, 0.5), eps)
	assert.InDelta(t, 0.3, attitude.Shifted(0.6, 0.2), eps)
	assert.Zero(t, attitude.Shifted(0.2, 0.1))

	assert.Equal(t, []string{"shifted", "threshold"}, attitude.Filters())
	f, err := attitude.LookupFilter(" SHIFTED ")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, f(0.6, 0.2), eps)
	_, err = attitude.LookupFilter("sigmoid")
	assert.ErrorIs(t, err, attitude.ErrUnknownFilter)
}

func TestBarriers(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.5, attitude.AverageBarrier(0.5, 0.5), eps)
	assert.InDelta(t, 0.0, attitude.AverageBarrier(1, 0), eps)
	assert.InDelta(t, 1.0, attitude.AverageBarrier(0, 1), eps)
	assert.InDelta(t, 0.3, attitude.DifferenceBarrier(0.4, 0.7), eps)
	assert.Zero(t, attitude.DifferenceBarrier(0.7, 0.4))

	assert.Equal(t, []string{"average", "difference"}, attitude.Barriers())
	_, err := attitude.LookupBarrier("ratio")
	assert.ErrorIs(t, err, attitude.ErrUnknownBarrier)
}

// smallWorld is a hand-checkable population:
//
//	100 attractor (conf 0.9, compl 0.1; Self=1, Attractor=2)
//	101 → 100, calc 0.5, conf 0.2, compl 0.8
//	102 → 100, calc 0.5, conf 0.6, compl 0.4
//	103 no attractor, calc 0, conf 0.5, compl 0.5, Self=1
//
// ties: 100–101 (1.0), 101–102 (0.8), 102–103 (0.6).
func smallWorld(t *testing.T) (*matrix.Pressure, *population.Table) {
	t.Helper()
	rows := []population.Row{
		{ID: 100, Attractor: population.IsAttractor, Confidence: 0.9, Complacency: 0.1,
			Weights: population.Weights{Self: 1, Attractor: 2}},
		{ID: 101, Attractor: 100, Calculation: 0.5, Confidence: 0.2, Complacency: 0.8},
		{ID: 102, Attractor: 100, Calculation: 0.5, Confidence: 0.6, Complacency: 0.4},
		{ID: 103, Attractor: population.NoAttractor, Confidence: 0.5, Complacency: 0.5,
			Weights: population.Weights{Self: 1}},
	}
	tbl, err := population.NewTable(rows)
	require.NoError(t, err)
	p, err := matrix.NewPressure(4)
	require.NoError(t, err)
	require.NoError(t, p.SetSymmetric(0, 1, 1.0))
	require.NoError(t, p.SetSymmetric(1, 2, 0.8))
	require.NoError(t, p.SetSymmetric(2, 3, 0.6))
	return p, tbl
}

func TestPropagate_WeightedAverage(t *testing.T) {
	t.Parallel()

	p, tbl := smallWorld(t)
	changed, err := attitude.New(attitude.WithWorkers(2)).Propagate(context.Background(), p, tbl)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{101: 2, 102: 2}, changed)

	// 101: sumW = 1.0+0.8, selfW = sumW·1, attrW = sumW·2.
	conf101 := (1.0*0.9 + 0.8*0.6 + 1.8*0.2 + 3.6*0.9) / 7.2
	// 102 reads the pre-round value of 101 (0.2).
	conf102 := (0.8*0.2 + 0.6*0.5 + 1.4*0.6 + 2.8*0.9) / 5.6
	compl101 := (1.0*0.1 + 0.8*0.4 + 1.8*0.8 + 3.6*0.1) / 7.2

	assert.InDelta(t, conf101, tbl.Value(population.Confidence, 1), eps)
	assert.InDelta(t, conf102, tbl.Value(population.Confidence, 2), eps)
	assert.InDelta(t, compl101, tbl.Value(population.Complacency, 1), eps)

	// Attractor untouched; 103 filtered out (calculation 0 needs appreciation 1).
	assert.Equal(t, 0.9, tbl.Value(population.Confidence, 0))
	assert.Equal(t, 0.5, tbl.Value(population.Confidence, 3))

	r, _ := tbl.Lookup(101)
	assert.Equal(t, int64(1), r.Rounds)
	assert.Equal(t, int64(2), r.PeerFeeds)
	r, _ = tbl.Lookup(103)
	assert.Zero(t, r.Rounds)
}

func TestPropagate_ShiftedWithoutAttractor(t *testing.T) {
	t.Parallel()

	p, tbl := smallWorld(t)
	changed, err := attitude.New(
		attitude.WithFilter(attitude.Shifted),
		attitude.WithColumns(population.Confidence),
	).Propagate(context.Background(), p, tbl)
	require.NoError(t, err)
	assert.Contains(t, changed, int64(103))

	// 103: w = 0.6-0.5+0 = 0.1, selfW = 0.1·1, attrW = 0.
	want := (0.1*0.6 + 0.1*0.5) / 0.2
	assert.InDelta(t, want, tbl.Value(population.Confidence, 3), eps)
	// Complacency was not propagated.
	assert.Equal(t, 0.5, tbl.Value(population.Complacency, 3))
	assert.Equal(t, 0.8, tbl.Value(population.Complacency, 1))
}

func TestPropagate_ZeroAppreciationNeverInfluences(t *testing.T) {
	t.Parallel()

	rows := []population.Row{
		{ID: 1, Attractor: population.NoAttractor, Calculation: 1, Confidence: 0.1, Complacency: 0.9,
			Weights: population.Weights{Self: 1}},
		{ID: 2, Attractor: population.NoAttractor, Calculation: 1, Confidence: 0.9, Complacency: 0.1,
			Weights: population.Weights{Self: 1}},
	}
	tbl, err := population.NewTable(rows)
	require.NoError(t, err)
	p, err := matrix.NewPressure(2)
	require.NoError(t, err)
	require.NoError(t, p.SetSymmetric(0, 1, 0.5))
	require.NoError(t, p.SetSymmetric(0, 1, 0)) // appreciation withdrawn

	prop := attitude.New(attitude.WithFilter(attitude.Shifted))
	for round := 0; round < 5; round++ {
		changed, err := prop.Propagate(context.Background(), p, tbl)
		require.NoError(t, err)
		assert.Empty(t, changed)
	}
	assert.Equal(t, rows, tbl.Rows())
}

func TestPropagate_SumWZeroLeavesEntityUnchanged(t *testing.T) {
	t.Parallel()

	p, tbl := smallWorld(t)
	before := tbl.Row(3)
	// Threshold with calculation 0 zeroes every tie of 103.
	for round := 0; round < 3; round++ {
		changed, err := attitude.New().Propagate(context.Background(), p, tbl)
		require.NoError(t, err)
		assert.NotContains(t, changed, int64(103))
	}
	assert.Equal(t, before, tbl.Row(3))
}

func synthetic(t testing.TB, seed uint64) (*matrix.Pressure, []population.Row) {
	t.Helper()
	src := rand.NewPCG(seed, 1)
	uni, err := dist.Uniform(0, 1, src)
	require.NoError(t, err)
	rows, err := population.Synthesize(population.Spec{
		Size:        400,
		Attractors:  4,
		Calculation: uni,
		Confidence:  uni,
		Complacency: uni,
	}, src)
	require.NoError(t, err)

	weight := func(i, j int, _ bool) float64 { return float64((i*7+j*13)%10)/10 + 0.05 }
	p, err := network.Connect(len(rows), 8, nil, weight, network.WithSeed(seed), network.WithRewiring(0.2))
	require.NoError(t, err)
	return p, rows
}

func TestPropagate_BoundedAndWorkerIndependent(t *testing.T) {
	t.Parallel()

	p, rows := synthetic(t, 9)
	serial, err := population.NewTable(rows)
	require.NoError(t, err)
	parallel, err := population.NewTable(rows)
	require.NoError(t, err)

	for _, filter := range []attitude.Filter{attitude.Threshold, attitude.Shifted} {
		one := attitude.New(attitude.WithFilter(filter), attitude.WithWorkers(1))
		many := attitude.New(attitude.WithFilter(filter), attitude.WithWorkers(7))
		for round := 0; round < 15; round++ {
			a, err := one.Propagate(context.Background(), p, serial)
			require.NoError(t, err)
			b, err := many.Propagate(context.Background(), p, parallel)
			require.NoError(t, err)
			require.Equal(t, a, b)
		}
	}
	require.Equal(t, serial.Rows(), parallel.Rows())

	for _, c := range []population.Column{population.Confidence, population.Complacency} {
		for i, v := range serial.Current(c) {
			require.True(t, v >= 0 && v <= 1, "row %d %s=%v", i, c, v)
		}
	}
	// Attractors stay fixed across all rounds.
	for i := 0; i < 4; i++ {
		assert.Equal(t, rows[i], serial.Row(i))
	}
}

func TestPropagate_Errors(t *testing.T) {
	t.Parallel()

	p, tbl := smallWorld(t)
	small, err := matrix.NewPressure(3)
	require.NoError(t, err)
	_, err = attitude.New().Propagate(context.Background(), small, tbl)
	assert.ErrorIs(t, err, attitude.ErrShapeMismatch)
	_, err = attitude.New().Propagate(context.Background(), nil, tbl)
	assert.ErrorIs(t, err, attitude.ErrShapeMismatch)

	before := tbl.Rows()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = attitude.New().Propagate(ctx, p, tbl)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, tbl.Rows())

	assert.Panics(t, func() { attitude.WithWorkers(0) })
	assert.Panics(t, func() { attitude.WithFilter(nil) })
	assert.Panics(t, func() { attitude.WithColumns() })
}

func TestWillingness(t *testing.T) {
	t.Parallel()

	_, tbl := smallWorld(t)
	// Average barriers: 101 → 0.8, 102 → 0.4, 103 → 0.5 (attractor excluded).
	w, err := attitude.Willingness(tbl, attitude.AverageBarrier, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, w, eps)

	w, err = attitude.Willingness(tbl, attitude.DifferenceBarrier, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, w, eps)

	_, err = attitude.Willingness(tbl, attitude.AverageBarrier, 1.5)
	assert.ErrorIs(t, err, attitude.ErrBadThreshold)

	empty, err := population.NewTable(nil)
	require.NoError(t, err)
	w, err = attitude.Willingness(empty, attitude.AverageBarrier, 0.5)
	require.NoError(t, err)
	assert.Zero(t, w)
}

func BenchmarkPropagate(b *testing.B) {
	p, rows := synthetic(b, 1)
	tbl, _ := population.NewTable(rows)
	prop := attitude.New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = prop.Propagate(context.Background(), p, tbl)
	}
}
