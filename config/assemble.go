// SPDX-License-Identifier: MIT
// Package: vaxsim/config
//
// assemble.go - Config → simctx + population + network + kernels + driver.
//
// Contract:
//   • Each component draws from its own simctx stream, so the same Config
//     and seed rebuild the same run.
//   • The caller owns the returned Context and must Close it.

package config

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/katalvlaran/vaxsim/attitude"
	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/driver"
	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/household"
	"github.com/katalvlaran/vaxsim/matrix"
	"github.com/katalvlaran/vaxsim/network"
	"github.com/katalvlaran/vaxsim/population"
	"github.com/katalvlaran/vaxsim/simctx"
)

// distributionCache bounds the parsed-spec cache of an assembled run.
const distributionCache = 64

// ToDriver validates c and assembles a ready driver. logger may be nil.
func (c *Config) ToDriver(logger *slog.Logger) (*driver.Driver, *simctx.Context, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	var sopts []simctx.Option
	if logger != nil {
		sopts = append(sopts, simctx.WithLogger(logger))
	}
	sc, err := simctx.New(c.Run.Seed, distributionCache, sopts...)
	if err != nil {
		return nil, nil, err
	}
	d, err := c.assemble(sc)
	if err != nil {
		_ = sc.Close()
		return nil, nil, err
	}

	return d, sc, nil
}

func (c *Config) assemble(sc *simctx.Context) (*driver.Driver, error) {
	rows, err := c.synthesize(sc)
	if err != nil {
		return nil, err
	}
	table, err := population.NewTable(rows)
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	pressure, err := c.connect(sc, rows)
	if err != nil {
		return nil, err
	}
	regions, err := c.Regions(sc)
	if err != nil {
		return nil, err
	}
	opts, err := c.driverOptions(sc)
	if err != nil {
		return nil, err
	}

	return driver.New(sc, table, pressure, regions, opts...)
}

func (c *Config) synthesize(sc *simctx.Context) ([]population.Row, error) {
	p := c.Population
	spec := population.Spec{
		Size:       p.Size,
		Attractors: p.Attractors,
		Regions:    len(c.Epidemic.Regions),
	}
	for _, f := range []struct {
		spec string
		dst  *dist.Sampler
	}{
		{p.Calculation, &spec.Calculation},
		{p.Confidence, &spec.Confidence},
		{p.Complacency, &spec.Complacency},
		{p.Assortativity, &spec.Assortativity},
		{p.InGroup, &spec.InGroup},
		{p.OutGroup, &spec.OutGroup},
		{p.SelfWeight, &spec.SelfWeight},
		{p.AttractorWeight, &spec.AttractorWeight},
		{p.NetworkSize, &spec.NetworkSize},
	} {
		if f.spec == "" {
			continue
		}
		s, err := sc.Distribution(f.spec)
		if err != nil {
			return nil, fmt.Errorf("population: %w", err)
		}
		*f.dst = s
	}

	// Sorted so that the categorical draw does not depend on map order.
	names := make([]string, 0, len(p.Compositions))
	for name := range p.Compositions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		comp, err := household.Parse(name)
		if err != nil {
			return nil, err
		}
		spec.Compositions = append(spec.Compositions, comp)
		spec.CompositionWeights = append(spec.CompositionWeights, p.Compositions[name])
	}

	rows, err := population.Synthesize(spec, sc.ForkSource(simctx.StreamPopulation))
	if err != nil {
		return nil, fmt.Errorf("population: %w", err)
	}
	return rows, nil
}

// connect builds the appreciation network. Entities of one region form an
// in-group; a tie weighs the mean of its endpoints' in- or out-group weight.
func (c *Config) connect(sc *simctx.Context, rows []population.Row) (*matrix.Pressure, error) {
	n := c.Network
	topology, err := network.Topology(n.Topology, network.TopologyParams{Degree: n.Degree, Probability: n.Probability})
	if err != nil {
		return nil, err
	}
	opts := []network.Option{
		network.WithRand(sc.Fork(simctx.StreamNetwork)),
		network.WithRewiring(n.Rewiring),
		network.WithLogger(sc.Logger()),
	}
	if n.Assortative {
		opts = append(opts, network.WithInGroupBias(func(i int) float64 { return rows[i].Assortativity }))
	}
	inGroup := func(i, j int) bool { return rows[i].Region == rows[j].Region }
	weight := func(i, j int, in bool) float64 {
		a, b := rows[i].Weights, rows[j].Weights
		if in {
			return (a.InGroup + b.InGroup) / 2
		}
		return (a.OutGroup + b.OutGroup) / 2
	}

	p, err := network.Generate(len(rows), topology, inGroup, weight, opts...)
	if err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}
	return p, nil
}

// Regions builds one kernel per configured region on stream StreamKernels+r.
func (c *Config) Regions(sc *simctx.Context) ([]driver.Region, error) {
	factory, err := epidemic.Lookup(c.Run.Algorithm)
	if err != nil {
		return nil, err
	}
	m, err := c.Model()
	if err != nil {
		return nil, err
	}
	out := make([]driver.Region, len(c.Epidemic.Regions))
	for r, reg := range c.Epidemic.Regions {
		counts, err := reg.Counts()
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", reg.Name, err)
		}
		k, err := factory(m, counts, sc.ForkSource(simctx.StreamKernels+uint64(r)), epidemic.WithLogger(sc.Logger()))
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", reg.Name, err)
		}
		out[r] = driver.Region{Name: reg.Name, Kernel: k}
	}

	return out, nil
}

func (c *Config) driverOptions(sc *simctx.Context) ([]driver.Option, error) {
	opts := []driver.Option{
		driver.WithHorizon(c.Run.Horizon),
		driver.WithStatistics(c.Run.Statistics),
	}
	if c.Run.Pace > 0 {
		opts = append(opts, driver.WithPacing(c.Run.Pace))
	}

	a := c.Attitude
	barrier, err := attitude.LookupBarrier(a.Barrier)
	if err != nil {
		return nil, err
	}
	opts = append(opts, driver.WithBarrier(barrier, a.Threshold))
	if a.Enabled() {
		filter, err := attitude.LookupFilter(a.Filter)
		if err != nil {
			return nil, err
		}
		popts := []attitude.Option{attitude.WithFilter(filter), attitude.WithLogger(sc.Logger())}
		if a.Workers > 0 {
			popts = append(popts, attitude.WithWorkers(a.Workers))
		}
		timing, err := c.timing(a.Schedule)
		if err != nil {
			return nil, err
		}
		opts = append(opts, driver.WithPropagation(attitude.New(popts...), timing))
	}

	if g := c.Gathering; g.Enabled() {
		size, err := sc.Distribution(g.Size)
		if err != nil {
			return nil, fmt.Errorf("gathering: %w", err)
		}
		timing, err := c.timing(g.Schedule)
		if err != nil {
			return nil, err
		}
		opts = append(opts, driver.WithGatherings(timing, size))
	}

	if h := c.Households; h.Enabled() && h.Count > 0 {
		ops, err := h.ops()
		if err != nil {
			return nil, err
		}
		timing, err := c.timing(h.Schedule)
		if err != nil {
			return nil, err
		}
		opts = append(opts, driver.WithDemography(timing, h.Count, ops))
	}

	if v := c.Vaccination; v.Enabled() {
		timing, err := c.timing(v.Schedule)
		if err != nil {
			return nil, err
		}
		opts = append(opts, driver.WithVaccination(timing, v.Uptake))
	}

	for _, imp := range c.Importations {
		opts = append(opts, driver.WithImportation(driver.Importation{Time: imp.Time, Region: imp.Region, Count: imp.Count}))
	}

	return opts, nil
}
