// SPDX-License-Identifier: MIT

package population_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/household"
	"github.com/katalvlaran/vaxsim/population"
)

func sampleRows() []population.Row {
	return []population.Row{
		{ID: 10, Attractor: population.IsAttractor, Confidence: 0.9, Complacency: 0.1,
			Weights: population.Weights{Self: 2, Attractor: 3}},
		{ID: 11, Attractor: 10, Confidence: 0.4, Complacency: 0.6, Calculation: 0.5, NetworkSize: 2,
			Composition: household.Duo1Kid},
		{ID: 12, Attractor: population.NoAttractor, Confidence: 0.2, Complacency: 0.3},
	}
}

func TestNewTable(t *testing.T) {
	t.Parallel()

	tbl, err := population.NewTable(sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	i, ok := tbl.Index(11)
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.True(t, tbl.IsAttractor(0))
	a, ok := tbl.AttractorOf(1)
	assert.True(t, ok)
	assert.Equal(t, 0, a)
	_, ok = tbl.AttractorOf(2)
	assert.False(t, ok)
	_, ok = tbl.AttractorOf(0)
	assert.False(t, ok)

	r, err := tbl.Lookup(11)
	require.NoError(t, err)
	assert.Equal(t, sampleRows()[1], r)
	assert.Equal(t, sampleRows(), tbl.Rows())

	_, err = tbl.Lookup(99)
	assert.ErrorIs(t, err, population.ErrUnknownEntity)

	assert.InDelta(t, 0.3, tbl.Mean(population.Confidence), 1e-12) // attractor excluded
}

func TestNewTable_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(rows []population.Row) []population.Row
		want   error
	}{
		{"confidence above one", func(r []population.Row) []population.Row { r[1].Confidence = 1.2; return r }, population.ErrOutOfRange},
		{"negative complacency", func(r []population.Row) []population.Row { r[2].Complacency = -0.1; return r }, population.ErrOutOfRange},
		{"negative weight", func(r []population.Row) []population.Row { r[2].Weights.Self = -1; return r }, population.ErrOutOfRange},
		{"network too large", func(r []population.Row) []population.Row { r[1].NetworkSize = 3; return r }, population.ErrOutOfRange},
		{"negative id", func(r []population.Row) []population.Row { r[0].ID = -5; return r }, population.ErrOutOfRange},
		{"duplicate id", func(r []population.Row) []population.Row { r[2].ID = 11; return r }, population.ErrDuplicateID},
		{"missing attractor", func(r []population.Row) []population.Row { r[1].Attractor = 77; return r }, population.ErrUnknownAttractor},
		{"attractor is not one", func(r []population.Row) []population.Row { r[1].Attractor = 12; return r }, population.ErrUnknownAttractor},
		{"bad sentinel", func(r []population.Row) []population.Row { r[1].Attractor = -9; return r }, population.ErrUnknownAttractor},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := population.NewTable(tc.mutate(sampleRows()))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCommit_DoubleBuffer(t *testing.T) {
	t.Parallel()

	tbl, err := population.NewTable(sampleRows())
	require.NoError(t, err)

	next := tbl.Next(population.Confidence)
	next[1] = 0.55
	// Not visible before Commit.
	assert.Equal(t, 0.4, tbl.Value(population.Confidence, 1))

	require.NoError(t, tbl.Commit(map[int]int{1: 2}))
	assert.Equal(t, 0.55, tbl.Value(population.Confidence, 1))
	r := tbl.Row(1)
	assert.Equal(t, int64(1), r.Rounds)
	assert.Equal(t, int64(2), r.PeerFeeds)

	// Buffers are re-synchronized after the swap.
	assert.Equal(t, tbl.Current(population.Confidence), tbl.Next(population.Confidence))

	// An out-of-range value aborts the round without touching state.
	tbl.Next(population.Complacency)[2] = 1.5
	err = tbl.Commit(map[int]int{2: 1})
	require.ErrorIs(t, err, population.ErrAttitudeOutOfRange)
	assert.Equal(t, 0.3, tbl.Value(population.Complacency, 2))
	assert.Equal(t, 0.3, tbl.Next(population.Complacency)[2])
	assert.Zero(t, tbl.Row(2).Rounds)
}

func TestSetAndComposition(t *testing.T) {
	t.Parallel()

	tbl, err := population.NewTable(sampleRows())
	require.NoError(t, err)

	require.NoError(t, tbl.Set(population.Calculation, 2, 0.8))
	assert.Equal(t, 0.8, tbl.Value(population.Calculation, 2))
	assert.Equal(t, 0.8, tbl.Next(population.Calculation)[2])
	assert.ErrorIs(t, tbl.Set(population.Calculation, 2, 2), population.ErrOutOfRange)

	require.NoError(t, tbl.SetComposition(1, household.Duo2Kids))
	assert.Equal(t, household.Duo2Kids, tbl.Composition(1))
	assert.ErrorIs(t, tbl.SetComposition(1, household.Total), population.ErrOutOfRange)

	tbl.AddPeerFeeds(2, 4)
	assert.Equal(t, int64(4), tbl.Row(2).PeerFeeds)
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	mk := func() (population.Spec, rand.Source) {
		src := rand.NewPCG(1, 2)
		return population.Spec{
			Size:               200,
			Attractors:         4,
			Regions:            2,
			Confidence:         dist.MustParse("normal(0.6, 0.3)", src),
			NetworkSize:        dist.MustParse("poisson(8)", src),
			Compositions:       []household.Composition{household.SoloNoKids, household.Duo2Kids},
			CompositionWeights: []float64{1, 3},
		}, src
	}
	spec, src := mk()
	rows, err := population.Synthesize(spec, src)
	require.NoError(t, err)
	require.Len(t, rows, 200)

	tbl, err := population.NewTable(rows)
	require.NoError(t, err, "synthesized rows must pass table validation")

	attractors := 0
	duos := 0
	for i, r := range rows {
		if r.IsAttractor() {
			attractors++
		} else {
			assert.GreaterOrEqual(t, r.Attractor, int64(0))
			assert.Less(t, r.Attractor, int64(4))
		}
		assert.Equal(t, i%2, r.Region)
		if r.Composition == household.Duo2Kids {
			duos++
			assert.NotEqual(t, population.NoMember, r.Members.Partner)
			assert.NotEqual(t, population.NoMember, r.Members.Children[1])
			assert.Equal(t, population.NoMember, r.Members.Children[2])
		}
	}
	assert.Equal(t, 4, attractors)
	assert.InDelta(t, 150, duos, 30)
	assert.Equal(t, 200, tbl.Len())

	spec2, src2 := mk()
	again, err := population.Synthesize(spec2, src2)
	require.NoError(t, err)
	assert.Equal(t, rows, again, "same seed must reproduce the table")

	_, err = population.Synthesize(population.Spec{Size: 2, Attractors: 3}, src)
	assert.ErrorIs(t, err, population.ErrBadSpec)
	_, err = population.Synthesize(population.Spec{Size: 2, Compositions: []household.Composition{household.Total}, CompositionWeights: []float64{1}}, src)
	assert.ErrorIs(t, err, population.ErrBadSpec)
}

func TestTransition_KeepsMembers(t *testing.T) {
	t.Parallel()

	none := population.NoMember
	tbl, err := population.NewTable([]population.Row{{
		ID:          1,
		Attractor:   population.NoAttractor,
		Composition: household.SoloNoKids,
		Members:     population.Members{Referent: 100, Partner: none, Children: [3]int64{none, none, none}},
	}})
	require.NoError(t, err)

	steps := []struct {
		op      household.Op
		want    household.Composition
		members population.Members
	}{
		{household.OpPlusChild, household.Solo1Kid,
			population.Members{Referent: 100, Partner: none, Children: [3]int64{101, none, none}}},
		{household.OpPlusAdult, household.Duo1Kid,
			population.Members{Referent: 100, Partner: 102, Children: [3]int64{101, none, none}}},
		{household.OpPlusChild, household.Duo2Kids,
			population.Members{Referent: 100, Partner: 102, Children: [3]int64{101, 103, none}}},
		{household.OpPlusChild, household.Duo3PlusKids,
			population.Members{Referent: 100, Partner: 102, Children: [3]int64{101, 103, 104}}},
		{household.OpPlusChild, household.Duo3PlusKids, // saturated: no slot left
			population.Members{Referent: 100, Partner: 102, Children: [3]int64{101, 103, 104}}},
		{household.OpMinusChild, household.Duo2Kids,
			population.Members{Referent: 100, Partner: 102, Children: [3]int64{103, 104, none}}},
		{household.OpMinusAdult, household.Solo2Kids,
			population.Members{Referent: 100, Partner: none, Children: [3]int64{103, 104, none}}},
		{household.OpPlusAdult, household.Duo2Kids,
			population.Members{Referent: 100, Partner: 105, Children: [3]int64{103, 104, none}}},
	}
	for k, st := range steps {
		got, err := tbl.Transition(0, st.op)
		require.NoError(t, err, "step %d %s", k, st.op)
		assert.Equal(t, st.want, got, "step %d", k)
		assert.Equal(t, st.want, tbl.Composition(0), "step %d", k)
		m := tbl.Members(0)
		assert.Equal(t, st.members, m, "step %d", k)
		in := got.Info()
		assert.Equal(t, min(in.Adults, 2), m.AdultCount(), "step %d", k)
		assert.Equal(t, min(in.Children, 3), m.ChildCount(), "step %d", k)
		assert.True(t, m.Fits(got), "step %d", k)
	}

	before := tbl.Members(0)
	_, err = tbl.Transition(0, household.OpPlusAdult)
	assert.ErrorIs(t, err, household.ErrUndefinedTransition)
	assert.Equal(t, household.Duo2Kids, tbl.Composition(0))
	assert.Equal(t, before, tbl.Members(0), "a refused transition leaves members alone")
}

func TestSetMembers(t *testing.T) {
	t.Parallel()

	none := population.NoMember
	tbl, err := population.NewTable([]population.Row{{
		ID:          1,
		Attractor:   population.NoAttractor,
		Composition: household.Solo1Kid,
		Members:     population.Members{Referent: 7, Partner: none, Children: [3]int64{8, none, none}},
	}})
	require.NoError(t, err)

	bad := population.Members{Referent: 7, Partner: 9, Children: [3]int64{8, none, none}}
	assert.ErrorIs(t, tbl.SetMembers(0, bad), population.ErrMembership)

	ok := population.Members{Referent: 20, Partner: none, Children: [3]int64{21, none, none}}
	require.NoError(t, tbl.SetMembers(0, ok))
	assert.Equal(t, ok, tbl.Row(0).Members)

	_, err = tbl.Transition(0, household.OpPlusChild)
	require.NoError(t, err)
	assert.Equal(t, int64(22), tbl.Members(0).Children[1], "fresh ids follow the largest one seen")
}
