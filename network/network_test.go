// SPDX-License-Identifier: MIT

package network_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vaxsim/matrix"
	"github.com/katalvlaran/vaxsim/network"
)

const eps = 1e-12

func degrees(t *testing.T, p *matrix.Pressure) []int {
	t.Helper()
	out := make([]int, p.N())
	for i := range out {
		d, err := p.Degree(i)
		require.NoError(t, err)
		out[i] = d
	}
	return out
}

func TestRingLattice(t *testing.T) {
	t.Parallel()

	p, err := network.Build(10, nil, network.RingLattice(4))
	require.NoError(t, err)
	require.NoError(t, p.Validate(eps))
	assert.Equal(t, 20, p.Ties())
	for i, d := range degrees(t, p) {
		assert.Equal(t, 4, d, "node %d", i)
	}
	assert.True(t, p.Has(0, 9))
	assert.True(t, p.Has(0, 8))
	assert.False(t, p.Has(0, 5))
}

func TestConnect_PreservesMeanDegree(t *testing.T) {
	t.Parallel()

	for _, beta := range []float64{0, 0.05, 0.3, 1} {
		t.Run(fmt.Sprint(beta), func(t *testing.T) {
			p, err := network.Connect(200, 6, nil, nil, network.WithSeed(7), network.WithRewiring(beta))
			require.NoError(t, err)
			require.NoError(t, p.Validate(eps))

			s := p.DegreeStats()
			assert.InDelta(t, 6.0, s.Mean, eps)
			if beta <= 0.05 {
				assert.Less(t, s.StdDev, 1.0)
			}
		})
	}
}

func TestConnect_Deterministic(t *testing.T) {
	t.Parallel()

	a, err := network.Connect(100, 4, nil, nil, network.WithSeed(42), network.WithRewiring(0.2))
	require.NoError(t, err)
	b, err := network.Connect(100, 4, nil, nil, network.WithSeed(42), network.WithRewiring(0.2))
	require.NoError(t, err)
	c, err := network.Connect(100, 4, nil, nil, network.WithSeed(43), network.WithRewiring(0.2))
	require.NoError(t, err)

	same, differ := true, false
	for i := 0; i < 100; i++ {
		ra, _ := a.Neighbors(i)
		rb, _ := b.Neighbors(i)
		rc, _ := c.Neighbors(i)
		same = same && assert.ObjectsAreEqual(ra, rb)
		differ = differ || !assert.ObjectsAreEqual(ra, rc)
	}
	assert.True(t, same, "same seed must reproduce the network")
	assert.True(t, differ, "different seeds should give different networks")
}

func TestConnect_InGroupBias(t *testing.T) {
	t.Parallel()

	parity := func(i, j int) bool { return i%2 == j%2 }
	cross := func(p *matrix.Pressure) (n int) {
		for i := 0; i < p.N(); i++ {
			row, _ := p.Neighbors(i)
			for _, tie := range row {
				if tie.To > i && !parity(i, tie.To) {
					n++
				}
			}
		}
		return n
	}

	// Full rewiring toward the in-group leaves no cross-group ties.
	p, err := network.Connect(60, 4, parity, nil,
		network.WithSeed(1), network.WithRewiring(1),
		network.WithInGroupBias(func(int) float64 { return 1 }))
	require.NoError(t, err)
	assert.Zero(t, cross(p))
	assert.Equal(t, 120, p.Ties())

	// And toward the out-group leaves only cross-group ties.
	p, err = network.Connect(60, 4, parity, nil,
		network.WithSeed(1), network.WithRewiring(1),
		network.WithInGroupBias(func(int) float64 { return 0 }))
	require.NoError(t, err)
	assert.Equal(t, p.Ties(), cross(p))
}

func TestConnect_Weights(t *testing.T) {
	t.Parallel()

	parity := func(i, j int) bool { return i%2 == j%2 }
	weight := func(i, j int, in bool) float64 {
		if i >= j {
			panic("weight must be called with i < j")
		}
		if in {
			return 0.8
		}
		return 0.2
	}
	p, err := network.Connect(12, 4, parity, weight)
	require.NoError(t, err)
	require.NoError(t, p.Validate(eps))

	w, _ := p.At(0, 1)
	assert.Equal(t, 0.2, w)
	w, _ = p.At(0, 2)
	assert.Equal(t, 0.8, w)

	// Zero appreciation removes the tie altogether.
	p, err = network.Connect(12, 4, parity, func(_, _ int, in bool) float64 {
		if in {
			return 1
		}
		return 0
	})
	require.NoError(t, err)
	assert.Equal(t, 12, p.Ties())

	_, err = network.Connect(12, 4, nil, func(int, int, bool) float64 { return -1 })
	assert.ErrorIs(t, err, network.ErrConstructFailed)
	assert.ErrorIs(t, err, matrix.ErrNegativeWeight)
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    int
		cons network.Constructor
		opts []network.Option
		want error
	}{
		{"odd degree", 10, network.RingLattice(3), nil, network.ErrTooFewVertices},
		{"degree too large", 4, network.RingLattice(4), nil, network.ErrTooFewVertices},
		{"empty", 0, network.RingLattice(2), nil, network.ErrTooFewVertices},
		{"rewire without rng", 10, network.SmallWorld(2), []network.Option{network.WithRewiring(0.5)}, network.ErrNeedRandSource},
		{"regular parity", 5, network.RandomRegular(3), []network.Option{network.WithSeed(1)}, network.ErrTooFewVertices},
		{"regular without rng", 6, network.RandomRegular(2), nil, network.ErrNeedRandSource},
		{"sparse probability", 5, network.RandomSparse(1.5), nil, network.ErrInvalidProbability},
		{"sparse without rng", 5, network.RandomSparse(0.5), nil, network.ErrNeedRandSource},
		{"nil constructor", 5, nil, nil, network.ErrConstructFailed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := network.Build(tc.n, tc.opts, tc.cons)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Panics(t, func() { network.WithRewiring(1.5) })
	assert.Panics(t, func() { network.WithRewiring(math.NaN()) })
	assert.Panics(t, func() { network.WithInGroupBias(nil) })
	assert.Panics(t, func() { network.WithLogger(nil) })
	assert.Panics(t, func() { network.WithRand(nil) })
	assert.Panics(t, func() { network.WithMaxAttempts(0) })
}

func TestRandomRegular(t *testing.T) {
	t.Parallel()

	p, err := network.Build(50, []network.Option{network.WithSeed(3)}, network.RandomRegular(4))
	require.NoError(t, err)
	require.NoError(t, p.Validate(eps))
	for i, d := range degrees(t, p) {
		assert.Equal(t, 4, d, "node %d", i)
	}

	// K_4 is the only 3-regular network on 4 nodes.
	p, err = network.Build(4, []network.Option{network.WithSeed(9)}, network.RandomRegular(3))
	require.NoError(t, err)
	assert.Equal(t, 6, p.Ties())
}

func TestRandomSparse(t *testing.T) {
	t.Parallel()

	full, err := network.Build(6, nil, network.RandomSparse(1))
	require.NoError(t, err)
	assert.Equal(t, 15, full.Ties())

	none, err := network.Build(6, nil, network.RandomSparse(0))
	require.NoError(t, err)
	assert.Zero(t, none.Ties())

	p, err := network.Build(300, []network.Option{network.WithSeed(5)}, network.RandomSparse(0.05))
	require.NoError(t, err)
	require.NoError(t, p.Validate(eps))
	assert.InDelta(t, 0.05*299, p.DegreeStats().Mean, 1.0)
}

func TestTopologyRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"random-regular", "random-sparse", "ring", "small-world"}, network.Topologies())

	cons, err := network.Topology("Random-Regular", network.TopologyParams{Degree: 2})
	require.NoError(t, err)
	p, err := network.Generate(8, cons, nil, nil, network.WithSeed(2))
	require.NoError(t, err)
	for _, d := range degrees(t, p) {
		assert.Equal(t, 2, d)
	}

	_, err = network.Topology("scale-free", network.TopologyParams{})
	assert.True(t, errors.Is(err, network.ErrUnknownTopology))
}

func ExampleConnect() {
	p, err := network.Connect(20, 4, nil, nil, network.WithSeed(1), network.WithRewiring(0.1))
	if err != nil {
		fmt.Println(err)
		return
	}
	s := p.DegreeStats()
	fmt.Printf("ties=%d mean degree=%.1f\n", p.Ties(), s.Mean)
	// Output: ties=40 mean degree=4.0
}

func BenchmarkConnect(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = network.Connect(2000, 10, nil, nil, network.WithSeed(uint64(i)), network.WithRewiring(0.1))
	}
}

func TestDistances(t *testing.T) {
	t.Parallel()

	p, err := network.Build(10, nil, network.RingLattice(2))
	require.NoError(t, err)

	d, err := network.Distances(p, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 4, 3, 2, 1}, d)

	d, err = network.Distances(p, 3, 2)
	require.NoError(t, err)
	u := network.Unreached
	assert.Equal(t, []int{u, 2, 1, 0, 1, 2, u, u, u, u}, d)

	_, err = network.Distances(p, 10, -1)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = network.Distances(nil, 0, -1)
	assert.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestComponents(t *testing.T) {
	t.Parallel()

	p, err := matrix.NewPressure(6)
	require.NoError(t, err)
	require.NoError(t, p.SetSymmetric(0, 4, 1))
	require.NoError(t, p.SetSymmetric(4, 2, 0.5))
	require.NoError(t, p.SetSymmetric(1, 5, 1))

	labels, n := network.Components(p)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{0, 1, 0, 2, 0, 1}, labels)

	sw, err := network.Connect(200, 6, nil, nil, network.WithSeed(3), network.WithRewiring(0.3))
	require.NoError(t, err)
	_, n = network.Components(sw)
	assert.Equal(t, 1, n)
}
