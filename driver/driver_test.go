// SPDX-License-Identifier: MIT

package driver_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/vaxsim/attitude"
	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/driver"
	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/event"
	"github.com/katalvlaran/vaxsim/household"
	"github.com/katalvlaran/vaxsim/matrix"
	"github.com/katalvlaran/vaxsim/network"
	"github.com/katalvlaran/vaxsim/population"
	"github.com/katalvlaran/vaxsim/scheduler"
	"github.com/katalvlaran/vaxsim/simctx"
)

type fixture struct {
	sc       *simctx.Context
	table    *population.Table
	pressure *matrix.Pressure
}

func newFixture(t *testing.T, seed uint64, spec population.Spec) fixture {
	t.Helper()
	sc, err := simctx.New(seed, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Close() })

	if spec.Size == 0 {
		spec.Size, spec.Attractors = 60, 2
	}
	rows, err := population.Synthesize(spec, sc.ForkSource(simctx.StreamPopulation))
	require.NoError(t, err)
	table, err := population.NewTable(rows)
	require.NoError(t, err)
	p, err := network.Connect(len(rows), 4, nil, nil,
		network.WithRand(sc.Fork(simctx.StreamNetwork)), network.WithRewiring(0.1))
	require.NoError(t, err)

	return fixture{sc: sc, table: table, pressure: p}
}

func sirRegion(t *testing.T, f fixture, name string, region uint64, c epidemic.Counts, beta, gamma float64) driver.Region {
	t.Helper()
	k, err := epidemic.NewGillespie(epidemic.SIR(beta, gamma), c, f.sc.ForkSource(simctx.StreamKernels+region))
	require.NoError(t, err)
	return driver.Region{Name: name, Kernel: k}
}

func TestRun_StatisticsAndKernelEvents(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 1, population.Spec{})
	regions := []driver.Region{
		sirRegion(t, f, "north", 0, epidemic.Counts{0, 195, 0, 5, 0}, 1.5, 0.5),
		sirRegion(t, f, "south", 1, epidemic.Counts{0, 98, 0, 2, 0}, 1.5, 0.5),
	}
	d, err := driver.New(f.sc, f.table, f.pressure, regions,
		driver.WithHorizon(10), driver.WithStatistics(1))
	require.NoError(t, err)

	var stats []driver.Statistics
	d.OnStatistics(func(s driver.Statistics) { stats = append(stats, s) })
	var transmissions, recoveries int64
	f.sc.Bus().Subscribe(func(e event.Event) {
		p := e.Payload.(event.TransitionPayload)
		assert.False(t, p.Exogenous)
		assert.Equal(t, event.NoEntity, e.EntityID)
		if e.Kind == event.Transmission {
			transmissions++
		} else {
			recoveries++
		}
	}, event.Transmission, event.Recovery)

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, 10.0, d.Now())
	require.Len(t, stats, 11)
	for k, s := range stats {
		assert.Equal(t, float64(k), s.Time)
		assert.Equal(t, int64(300), s.Total.N())
		require.Len(t, s.Regions, 2)
		assert.Equal(t, "north", s.Regions[0].Region)
		assert.Equal(t, int64(200), s.Regions[0].Counts.N())
	}
	assert.Equal(t, d.Totals().KernelEvents, transmissions+recoveries)
	assert.Positive(t, transmissions)

	final := d.Counts()
	assert.Equal(t, stats[10].Regions[1].Counts, final["south"])

	err = d.Run(context.Background())
	assert.ErrorIs(t, err, driver.ErrAlreadyRan)
}

func TestRun_Reproducible(t *testing.T) {
	t.Parallel()

	run := func() []driver.Statistics {
		f := newFixture(t, 99, population.Spec{})
		every, _ := scheduler.Every(2, 0.5)
		d, err := driver.New(f.sc, f.table, f.pressure,
			[]driver.Region{sirRegion(t, f, "all", 0, epidemic.Counts{0, 290, 0, 10, 0}, 2, 1)},
			driver.WithHorizon(8), driver.WithStatistics(0.5),
			driver.WithPropagation(attitude.New(attitude.WithWorkers(3)), every),
			driver.WithVaccination(every, 0.2))
		require.NoError(t, err)
		var out []driver.Statistics
		d.OnStatistics(func(s driver.Statistics) { out = append(out, s) })
		require.NoError(t, d.Run(context.Background()))
		return out
	}
	assert.Equal(t, run(), run())
}

func TestRun_Propagation(t *testing.T) {
	t.Parallel()

	src := dist.Constant{Value: 0.7}
	f := newFixture(t, 5, population.Spec{Size: 40, Attractors: 2, Calculation: src})
	every, err := scheduler.Every(1, 1)
	require.NoError(t, err)
	d, err := driver.New(f.sc, f.table, f.pressure,
		[]driver.Region{sirRegion(t, f, "r", 0, epidemic.Counts{0, 10, 0, 0, 0}, 1, 1)},
		driver.WithHorizon(3.5), driver.WithStatistics(1),
		driver.WithPropagation(attitude.New(), every))
	require.NoError(t, err)

	var times []float64
	f.sc.Bus().Subscribe(func(e event.Event) {
		p := e.Payload.(event.AttitudePayload)
		assert.Positive(t, p.Peers)
		if len(times) == 0 || times[len(times)-1] != e.Time {
			times = append(times, e.Time)
		}
	}, event.AttitudeChange)
	var changed []int
	d.OnStatistics(func(s driver.Statistics) { changed = append(changed, s.Changed) })

	require.NoError(t, d.Run(context.Background()))

	assert.Equal(t, int64(3), d.Totals().Rounds)
	assert.Equal(t, []float64{1, 2, 3}, times)
	// Every non-attractor keeps at least its own lattice ties, so all 38 change.
	assert.Equal(t, []int{0, 38, 38, 38}, changed)
	r, err := d.Table().Lookup(10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Rounds)
}

func TestStop_Propagation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5, population.Spec{Size: 40, Attractors: 2, Calculation: dist.Constant{Value: 0.7}})
	every, err := scheduler.Every(1, 1)
	require.NoError(t, err)
	d, err := driver.New(f.sc, f.table, f.pressure,
		[]driver.Region{sirRegion(t, f, "r", 0, epidemic.Counts{0, 10, 0, 0, 0}, 1, 1)},
		driver.WithHorizon(5.5), driver.WithStatistics(1),
		driver.WithPropagation(attitude.New(), every))
	require.NoError(t, err)
	assert.ErrorIs(t, d.Stop(driver.ActionPropagation), driver.ErrUnknownAction, "nothing is scheduled before Run")

	var (
		changed []int
		atStop  []population.Row
		stopErr []error
	)
	d.OnStatistics(func(s driver.Statistics) {
		changed = append(changed, s.Changed)
		if s.Time == 2 {
			atStop = d.Table().Rows()
			stopErr = append(stopErr, d.Stop(driver.ActionPropagation), d.Stop(driver.ActionPropagation))
			stopErr = append(stopErr, d.Stop(driver.ActionGathering))
		}
	})

	require.NoError(t, d.Run(context.Background()))

	require.Len(t, stopErr, 3)
	assert.NoError(t, stopErr[0])
	assert.NoError(t, stopErr[1], "stopping twice is a no-op")
	assert.ErrorIs(t, stopErr[2], driver.ErrUnknownAction, "gatherings were never configured")

	assert.Equal(t, int64(2), d.Totals().Rounds)
	assert.Equal(t, []int{0, 38, 38, 0, 0, 0}, changed)
	assert.Equal(t, atStop, d.Table().Rows(), "attitudes applied before the stop stay in place")
	r, err := d.Table().Lookup(10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Rounds)
	assert.Equal(t, 5.5, d.Now())
}

func TestRun_Vaccination(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 7, population.Spec{
		Size: 30, Attractors: 2,
		Confidence: dist.Constant{Value: 1}, Complacency: dist.Constant{Value: 0},
	})
	every, err := scheduler.Every(1, 1)
	require.NoError(t, err)
	d, err := driver.New(f.sc, f.table, f.pressure,
		[]driver.Region{sirRegion(t, f, "r", 0, epidemic.Counts{0, 50, 0, 0, 0}, 1, 1)},
		driver.WithHorizon(1.5), driver.WithStatistics(1), driver.WithVaccination(every, 1))
	require.NoError(t, err)

	var got []event.TransitionPayload
	f.sc.Bus().Subscribe(func(e event.Event) {
		got = append(got, e.Payload.(event.TransitionPayload))
	}, event.Recovery)
	var willingness []float64
	d.OnStatistics(func(s driver.Statistics) { willingness = append(willingness, s.Willingness) })

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, []float64{1, 1}, willingness)
	require.Len(t, got, 1)
	assert.Equal(t, event.TransitionPayload{Region: "r", From: "S", To: "R", Count: 50, Exogenous: true}, got[0])
	assert.Equal(t, int64(50), d.Totals().Vaccinated)
	assert.Equal(t, epidemic.Counts{0, 0, 0, 0, 50}, d.Counts()["r"])
}

func TestRun_Importation(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 3, population.Spec{})
	d, err := driver.New(f.sc, f.table, nil,
		[]driver.Region{
			sirRegion(t, f, "a", 0, epidemic.Counts{0, 100, 0, 0, 0}, 0.5, 5),
			sirRegion(t, f, "b", 1, epidemic.Counts{0, 2, 0, 0, 0}, 0.5, 5),
		},
		driver.WithHorizon(4),
		driver.WithImportation(driver.Importation{Time: 2, Region: "a", Count: 3}),
		driver.WithImportation(driver.Importation{Time: 1, Region: "b", Count: 10}))
	require.NoError(t, err)

	var imported []event.Event
	f.sc.Bus().Subscribe(func(e event.Event) {
		if e.Payload.(event.TransitionPayload).Exogenous {
			imported = append(imported, e)
		}
	}, event.Transmission)

	require.NoError(t, d.Run(context.Background()))
	require.Len(t, imported, 2)
	assert.Equal(t, 1.0, imported[0].Time)
	assert.Equal(t, int64(2), imported[0].Payload.(event.TransitionPayload).Count, "clipped to S")
	assert.Equal(t, 2.0, imported[1].Time)
	assert.Equal(t, int64(3), imported[1].Payload.(event.TransitionPayload).Count)
	assert.Equal(t, int64(5), d.Totals().Imported)
	assert.Equal(t, int64(100), d.Counts()["a"].N())
	assert.Equal(t, int64(0), d.Counts()["b"].Of(epidemic.Susceptible))
}

func TestRun_Gatherings(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 11, population.Spec{})
	every, err := scheduler.Every(1, 1)
	require.NoError(t, err)
	d, err := driver.New(f.sc, f.table, f.pressure,
		[]driver.Region{sirRegion(t, f, "r", 0, epidemic.Counts{0, 10, 0, 0, 0}, 1, 1)},
		driver.WithHorizon(5.5), driver.WithGatherings(every, dist.Constant{Value: 2}))
	require.NoError(t, err)

	var hosts int
	f.sc.Bus().Subscribe(func(e event.Event) {
		hosts++
		p := e.Payload.(event.GatheringPayload)
		require.Len(t, p.Members, 2)
		assert.NotEqual(t, p.Members[0], p.Members[1])
		assert.NotContains(t, p.Members, e.EntityID)
	}, event.Gathering)

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, 5, hosts)
	assert.Equal(t, int64(5), d.Totals().Gatherings)

	var feeds int64
	for _, r := range d.Table().Rows() {
		feeds += r.PeerFeeds
	}
	assert.Equal(t, int64(5*4), feeds, "host gets 2, each guest 1")
}

func TestRun_Demography(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 13, population.Spec{})
	every, err := scheduler.Every(1, 1)
	require.NoError(t, err)
	d, err := driver.New(f.sc, f.table, nil,
		[]driver.Region{sirRegion(t, f, "r", 0, epidemic.Counts{0, 10, 0, 0, 0}, 1, 1)},
		driver.WithHorizon(1.5),
		driver.WithDemography(every, 10, map[household.Op]float64{household.OpPlusChild: 1}))
	require.NoError(t, err)

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, int64(10), d.Totals().Demography)

	var children int
	for _, r := range d.Table().Rows() {
		if r.IsAttractor() {
			assert.Equal(t, household.SoloNoKids, r.Composition)
			continue
		}
		children += r.Composition.Info().Children
		assert.True(t, r.Members.Fits(r.Composition), "row %d: %+v on %s", r.ID, r.Members, r.Composition)
	}
	assert.Equal(t, 10, children)
}

// faulty proposes one event and refuses to commit it.
type faulty struct{ epidemic.Kernel }

func (faulty) Propose() (epidemic.Event, bool) {
	return epidemic.Event{Time: 0.5, From: epidemic.Susceptible, To: epidemic.Infectious}, true
}

func (faulty) Commit(epidemic.Event) error {
	return fmt.Errorf("commit: %w", epidemic.ErrInvariant)
}

func TestRun_FailureCarriesSnapshot(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 17, population.Spec{})
	good := sirRegion(t, f, "good", 0, epidemic.Counts{0, 10, 0, 0, 0}, 1, 1)
	bad := driver.Region{Name: "bad", Kernel: faulty{good.Kernel}}
	d, err := driver.New(f.sc, f.table, nil, []driver.Region{good, bad},
		driver.WithHorizon(2), driver.WithStatistics(1))
	require.NoError(t, err)

	err = d.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, epidemic.ErrInvariant)

	var re *driver.RunError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 0.0, re.Time)
	assert.Equal(t, uint64(17), re.Seed)
	assert.Equal(t, f.sc.RunID(), re.RunID)
	assert.Len(t, re.Snapshot.Rows, 60)
	assert.Equal(t, epidemic.Counts{0, 10, 0, 0, 0}, re.Snapshot.Counts["good"])
	assert.Contains(t, re.Error(), "seed 17")
	assert.Contains(t, re.Error(), "region bad")
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 19, population.Spec{})
	r := sirRegion(t, f, "r", 0, epidemic.Counts{0, 10, 0, 0, 0}, 1, 1)
	every, err := scheduler.Every(1, 0)
	require.NoError(t, err)
	small, err := network.Connect(5, 2, nil, nil)
	require.NoError(t, err)

	cases := []struct {
		name     string
		pressure *matrix.Pressure
		regions  []driver.Region
		opts     []driver.Option
	}{
		{"zero horizon", f.pressure, []driver.Region{r}, []driver.Option{driver.WithHorizon(0)}},
		{"no regions", f.pressure, nil, nil},
		{"duplicate region", f.pressure, []driver.Region{r, r}, nil},
		{"unknown import region", f.pressure, []driver.Region{r},
			[]driver.Option{driver.WithImportation(driver.Importation{Time: 1, Region: "x", Count: 1})}},
		{"import after horizon", f.pressure, []driver.Region{r},
			[]driver.Option{driver.WithHorizon(5), driver.WithImportation(driver.Importation{Time: 6, Region: "r", Count: 1})}},
		{"matrix order", small, []driver.Region{r}, nil},
		{"propagation without matrix", nil, []driver.Region{r},
			[]driver.Option{driver.WithPropagation(attitude.New(), every)}},
		{"uptake", f.pressure, []driver.Region{r}, []driver.Option{driver.WithVaccination(every, 1.5)}},
		{"threshold", f.pressure, []driver.Region{r}, []driver.Option{driver.WithBarrier(attitude.DifferenceBarrier, -1)}},
		{"op weight", f.pressure, []driver.Region{r},
			[]driver.Option{driver.WithDemography(every, 1, map[household.Op]float64{household.OpMinusAdult: -1})}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]driver.Option{driver.WithHorizon(10)}, tc.opts...)
			_, err := driver.New(f.sc, f.table, tc.pressure, tc.regions, opts...)
			assert.ErrorIs(t, err, driver.ErrConfig)
		})
	}

	_, err = driver.New(f.sc, f.table, f.pressure, []driver.Region{r}, driver.WithHorizon(10))
	assert.NoError(t, err)
}
