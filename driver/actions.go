// SPDX-License-Identifier: MIT
// Package: vaxsim/driver
//
// actions.go - the recurring and one-shot actions of a run.

package driver

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/katalvlaran/vaxsim/attitude"
	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/event"
	"github.com/katalvlaran/vaxsim/household"
	"github.com/katalvlaran/vaxsim/logging"
	"github.com/katalvlaran/vaxsim/population"
	"github.com/katalvlaran/vaxsim/simctx"
)

// propagate runs one attitude round and reports every changed entity.
func (d *Driver) propagate(ctx context.Context, now float64) error {
	changed, err := d.cfg.propagator.Propagate(ctx, d.pressure, d.table)
	if err != nil {
		return err
	}
	d.totals.Rounds++
	d.changed += len(changed)

	ids := make([]int64, 0, len(changed))
	for id := range changed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for _, id := range ids {
		i, _ := d.table.Index(id)
		d.bus.Publish(event.Event{
			Kind:     event.AttitudeChange,
			EntityID: id,
			Time:     now,
			Payload: event.AttitudePayload{
				Confidence:  d.table.Value(population.Confidence, i),
				Complacency: d.table.Value(population.Complacency, i),
				Peers:       changed[id],
			},
		})
	}
	d.logger.Debug("propagation round", "t", now, "changed", len(changed))

	return nil
}

// gatherer returns the gathering action: a random host invites a random
// subset of its ties.
func (d *Driver) gatherer() (func(context.Context, float64) error, error) {
	rng := d.sc.Fork(simctx.StreamGathering)
	size := d.cfg.gatheringSize

	return func(_ context.Context, now float64) error {
		if len(d.members) == 0 {
			return nil
		}
		host := d.members[rng.IntN(len(d.members))]
		ties, err := d.pressure.Neighbors(host)
		if err != nil {
			return err
		}
		n := int(math.Round(size.Rand()))
		n = min(max(n, 0), len(ties))
		if n == 0 {
			return nil
		}
		guests := make([]int64, 0, n)
		for _, k := range rng.Perm(len(ties))[:n] {
			j := ties[k].To
			guests = append(guests, d.table.ID(j))
			d.table.AddPeerFeeds(j, 1)
		}
		d.table.AddPeerFeeds(host, int64(n))
		d.totals.Gatherings++
		d.bus.Publish(event.Event{
			Kind:     event.Gathering,
			EntityID: d.table.ID(host),
			Time:     now,
			Payload:  event.GatheringPayload{Members: guests},
		})

		return nil
	}, nil
}

// demographer returns the household dynamics action.
func (d *Driver) demographer() (func(context.Context, float64) error, error) {
	src := d.sc.ForkSource(simctx.StreamDemography)
	rng := rand.New(src)
	ops := household.Ops()
	weights := make([]float64, len(ops))
	var sum float64
	for k, op := range ops {
		weights[k] = d.cfg.opWeights[op]
		sum += weights[k]
	}
	if sum == 0 {
		for k := range weights {
			weights[k] = 1
		}
	}
	pick, err := dist.Categorical(weights, src)
	if err != nil {
		return nil, fmt.Errorf("demography: %w", err)
	}

	return func(_ context.Context, now float64) error {
		if len(d.members) == 0 {
			return nil
		}
		var applied, skipped int
		for h := 0; h < d.cfg.households; h++ {
			i := d.members[rng.IntN(len(d.members))]
			op := ops[int(pick.Rand())]
			if !d.table.Composition(i).Defined(op) {
				skipped++
				continue
			}
			if _, err := d.table.Transition(i, op); err != nil {
				return err
			}
			applied++
		}
		d.totals.Demography += int64(applied)
		logging.Trace(d.logger, "demography", "t", now, "applied", applied, "skipped", skipped)

		return nil
	}, nil
}

// vaccinator returns the vaccination action. The expected number moved per
// region is uptake·willingness·S, rounded stochastically.
func (d *Driver) vaccinator() func(context.Context, float64) error {
	rng := d.sc.Fork(simctx.StreamVaccination)

	return func(_ context.Context, now float64) error {
		w, err := attitude.Willingness(d.table, d.cfg.barrier, d.cfg.threshold)
		if err != nil {
			return err
		}
		for _, r := range d.regions {
			s := r.Kernel.Counts().Of(epidemic.Susceptible)
			x := d.cfg.uptake * w * float64(s)
			n := int64(x)
			if rng.Float64() < x-float64(n) {
				n++
			}
			n = min(n, s)
			if n == 0 {
				continue
			}
			if err := r.Kernel.Move(epidemic.Susceptible, epidemic.Recovered, n); err != nil {
				return fmt.Errorf("region %s: %w", r.Name, err)
			}
			d.totals.Vaccinated += n
			d.publishTransition(r.Name, now, epidemic.Susceptible, epidemic.Recovered, n, true)
		}

		return nil
	}
}

// importer returns the one-shot importation action for imp.
func (d *Driver) importer(imp Importation) func(context.Context, float64) error {
	return func(_ context.Context, now float64) error {
		k := d.regions[d.byName[imp.Region]].Kernel
		n := min(imp.Count, k.Counts().Of(epidemic.Susceptible))
		if n == 0 {
			return nil
		}
		if err := k.Move(epidemic.Susceptible, epidemic.Infectious, n); err != nil {
			return fmt.Errorf("region %s: %w", imp.Region, err)
		}
		d.totals.Imported += n
		d.publishTransition(imp.Region, now, epidemic.Susceptible, epidemic.Infectious, n, true)

		return nil
	}
}
