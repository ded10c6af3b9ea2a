// SPDX-License-Identifier: MIT
// Package: vaxsim/driver
//
// driver.go - wires kernels, propagator and recurring actions onto one
// timeline.
//
// Contract:
//   • The driver owns the population table and the pressure matrix and lends
//     them to the propagator for one round at a time.
//   • Before the clock moves to t, every region kernel commits its events
//     with time ≤ t and is advanced to t, so exogenous actions at t see the
//     kernel state at t.
//   • The event bus is drained after every action and every kernel sync.
//   • Any error ends the run as a *RunError carrying the virtual time, the
//     seed, the run id and a state snapshot.

package driver

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/event"
	"github.com/katalvlaran/vaxsim/matrix"
	"github.com/katalvlaran/vaxsim/population"
	"github.com/katalvlaran/vaxsim/scheduler"
	"github.com/katalvlaran/vaxsim/simctx"
)

// Activity names accepted by Stop.
const (
	ActionPropagation = "propagation"
	ActionGathering   = "gathering"
	ActionDemography  = "demography"
	ActionVaccination = "vaccination"
	ActionStatistics  = "statistics"
	ActionImportation = "importation"
)

// Region is one sub-population with its own epidemic kernel.
type Region struct {
	Name   string
	Kernel epidemic.Kernel
}

// Driver runs one simulation.
type Driver struct {
	sc       *simctx.Context
	table    *population.Table
	pressure *matrix.Pressure
	regions  []Region
	byName   map[string]int
	members  []int // non-attractor rows
	cfg      settings

	sched   *scheduler.Scheduler
	handles map[string][]*scheduler.Handle
	bus     *event.Bus
	logger  *slog.Logger
	onStats []func(Statistics)
	started bool

	changed int // entities changed since the last statistics
	totals  Totals
}

// Totals counts what happened during a run.
type Totals struct {
	KernelEvents int64
	Rounds       int64
	Gatherings   int64
	Demography   int64
	Vaccinated   int64
	Imported     int64
}

// New validates the assembly. pressure may be nil when neither propagation
// nor gatherings are configured.
func New(sc *simctx.Context, table *population.Table, pressure *matrix.Pressure, regions []Region, opts ...Option) (*Driver, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	if sc == nil || table == nil {
		return nil, fmt.Errorf("New: nil context or table: %w", ErrConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	if pressure != nil && pressure.N() != table.Len() {
		return nil, fmt.Errorf("New: matrix order %d, table rows %d: %w", pressure.N(), table.Len(), ErrConfig)
	}
	if pressure == nil && (cfg.propagation != nil || cfg.gathering != nil) {
		return nil, fmt.Errorf("New: propagation and gatherings need a pressure matrix: %w", ErrConfig)
	}
	if len(regions) == 0 {
		return nil, fmt.Errorf("New: no regions: %w", ErrConfig)
	}
	byName := make(map[string]int, len(regions))
	for i, r := range regions {
		if r.Name == "" || r.Kernel == nil {
			return nil, fmt.Errorf("New: region %d: empty name or nil kernel: %w", i, ErrConfig)
		}
		if _, dup := byName[r.Name]; dup {
			return nil, fmt.Errorf("New: region %q twice: %w", r.Name, ErrConfig)
		}
		byName[r.Name] = i
	}
	for _, imp := range cfg.imports {
		if _, ok := byName[imp.Region]; !ok {
			return nil, fmt.Errorf("New: importation into unknown region %q: %w", imp.Region, ErrConfig)
		}
	}

	d := &Driver{
		sc:       sc,
		table:    table,
		pressure: pressure,
		regions:  append([]Region(nil), regions...),
		byName:   byName,
		cfg:      cfg,
		bus:      sc.Bus(),
		logger:   sc.Logger(),
	}
	for i := 0; i < table.Len(); i++ {
		if !table.IsAttractor(i) {
			d.members = append(d.members, i)
		}
	}

	return d, nil
}

func (s settings) validate() error {
	switch {
	case !(s.horizon > 0) || math.IsInf(s.horizon, 0):
		return fmt.Errorf("horizon=%g must be finite and > 0: %w", s.horizon, ErrConfig)
	case !(s.statEvery >= 0) || math.IsInf(s.statEvery, 0):
		return fmt.Errorf("statistics dt=%g: %w", s.statEvery, ErrConfig)
	case !(s.uptake >= 0 && s.uptake <= 1):
		return fmt.Errorf("uptake=%g not in [0,1]: %w", s.uptake, ErrConfig)
	case !(s.threshold >= 0 && s.threshold <= 1):
		return fmt.Errorf("barrier threshold=%g not in [0,1]: %w", s.threshold, ErrConfig)
	case s.pace < 0:
		return fmt.Errorf("pace=%s: %w", s.pace, ErrConfig)
	}
	for op, w := range s.opWeights {
		if !(w >= 0) || math.IsInf(w, 0) {
			return fmt.Errorf("household %s weight=%g: %w", op, w, ErrConfig)
		}
	}
	for _, imp := range s.imports {
		if imp.Count < 0 || !(imp.Time >= 0 && imp.Time <= s.horizon) {
			return fmt.Errorf("importation %+v: %w", imp, ErrConfig)
		}
	}

	return nil
}

// OnStatistics registers fn to receive every statistics record.
func (d *Driver) OnStatistics(fn func(Statistics)) {
	if fn == nil {
		panic("driver: OnStatistics(nil)")
	}
	d.onStats = append(d.onStats, fn)
}

// Table returns the population table. Read it only outside Run.
func (d *Driver) Table() *population.Table { return d.table }

// Totals returns the activity counters of the run.
func (d *Driver) Totals() Totals { return d.totals }

// Now returns the virtual time (0 before Run).
func (d *Driver) Now() float64 {
	if d.sched == nil {
		return 0
	}
	return d.sched.Now()
}

// Counts returns the compartment counts of every region.
func (d *Driver) Counts() map[string]epidemic.Counts {
	out := make(map[string]epidemic.Counts, len(d.regions))
	for _, r := range d.regions {
		out[r.Name] = r.Kernel.Counts()
	}
	return out
}

// Run executes the simulation up to the horizon.
func (d *Driver) Run(ctx context.Context) error {
	if d.started {
		return fmt.Errorf("Run: %w", ErrAlreadyRan)
	}
	d.started = true

	sopts := []scheduler.Option{scheduler.WithHorizon(d.cfg.horizon), scheduler.WithLogger(d.logger)}
	if d.cfg.pace > 0 {
		sopts = append(sopts, scheduler.WithBeforeAdvance(scheduler.Pacing(d.cfg.pace)))
	}
	sopts = append(sopts, scheduler.WithBeforeAdvance(d.syncKernels))
	d.sched = scheduler.New(sopts...)

	if err := d.schedule(); err != nil {
		return d.fail(err)
	}
	d.logger.Info("run start",
		"seed", d.sc.Seed(), "horizon", d.cfg.horizon, "regions", len(d.regions),
		"entities", d.table.Len(), "actions", d.sched.Pending())

	err := d.sched.Run(ctx)
	d.bus.Drain()
	if err != nil {
		return d.fail(err)
	}
	d.logger.Info("run end",
		"t", d.sched.Now(), "kernel_events", d.totals.KernelEvents, "rounds", d.totals.Rounds,
		"gatherings", d.totals.Gatherings, "vaccinated", d.totals.Vaccinated)

	return nil
}

// schedule queues every configured activity. Statistics go last so that at
// a shared instant they observe the other actions' effects.
func (d *Driver) schedule() error {
	type recurring struct {
		name   string
		timing scheduler.Timing
		action scheduler.Action
	}
	var plan []recurring
	if d.cfg.propagation != nil {
		plan = append(plan, recurring{ActionPropagation, d.cfg.propagation, d.propagate})
	}
	if d.cfg.gathering != nil {
		gather, err := d.gatherer()
		if err != nil {
			return err
		}
		plan = append(plan, recurring{ActionGathering, d.cfg.gathering, gather})
	}
	if d.cfg.demography != nil {
		demo, err := d.demographer()
		if err != nil {
			return err
		}
		plan = append(plan, recurring{ActionDemography, d.cfg.demography, demo})
	}
	if d.cfg.vaccination != nil {
		plan = append(plan, recurring{ActionVaccination, d.cfg.vaccination, d.vaccinator()})
	}
	if d.cfg.statEvery > 0 {
		every, err := scheduler.Every(d.cfg.statEvery, 0)
		if err != nil {
			return err
		}
		plan = append(plan, recurring{ActionStatistics, every, d.publishStatistics})
	}

	d.handles = make(map[string][]*scheduler.Handle, len(plan)+1)
	for _, imp := range d.cfg.imports {
		h, err := d.sched.ScheduleAt(imp.Time, d.wrap(ActionImportation, d.importer(imp)))
		if err != nil {
			return err
		}
		d.handles[ActionImportation] = append(d.handles[ActionImportation], h)
	}
	for _, p := range plan {
		h, err := d.sched.ScheduleRecurring(p.timing, d.wrap(p.name, p.action))
		if err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
		d.handles[p.name] = append(d.handles[p.name], h)
	}

	return nil
}

// Stop disposes every pending firing of the named activity (one of the
// Action* names). State changes already applied stay in place. Stop is only
// meaningful once Run has scheduled the activities, typically from an
// OnStatistics subscriber; stopping twice is a no-op.
func (d *Driver) Stop(name string) error {
	hs, ok := d.handles[name]
	if !ok {
		return fmt.Errorf("Stop(%q): %w", name, ErrUnknownAction)
	}
	for _, h := range hs {
		h.Dispose()
	}
	d.logger.Info("action stopped", "action", name, "t", d.Now())

	return nil
}

// wrap names the action in errors and drains the bus after it.
func (d *Driver) wrap(name string, a scheduler.Action) scheduler.Action {
	return func(ctx context.Context, now float64) error {
		if err := a(ctx, now); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		d.bus.Drain()
		return nil
	}
}

// syncKernels commits every kernel event up to t, then advances the kernels.
func (d *Driver) syncKernels(_ context.Context, _, t float64) error {
	for _, r := range d.regions {
		for {
			e, ok := r.Kernel.Propose()
			if !ok || e.Time > t {
				break
			}
			if err := r.Kernel.Commit(e); err != nil {
				return fmt.Errorf("region %s: %w", r.Name, err)
			}
			d.totals.KernelEvents++
			d.publishTransition(r.Name, e.Time, e.From, e.To, 1, false)
		}
		if err := r.Kernel.AdvanceTo(t); err != nil {
			return fmt.Errorf("region %s: %w", r.Name, err)
		}
	}
	d.bus.Drain()

	return nil
}

func (d *Driver) publishTransition(region string, t float64, from, to epidemic.Compartment, n int64, exogenous bool) {
	kind := event.Progression
	switch {
	case from == epidemic.Susceptible && (to == epidemic.Exposed || to == epidemic.Infectious):
		kind = event.Transmission
	case to == epidemic.Recovered:
		kind = event.Recovery
	}
	d.bus.Publish(event.Event{
		Kind:     kind,
		EntityID: event.NoEntity,
		Time:     t,
		Payload: event.TransitionPayload{
			Region:    region,
			From:      from.String(),
			To:        to.String(),
			Count:     n,
			Exogenous: exogenous,
		},
	})
}

// fail wraps err into a RunError with a snapshot of the current state.
func (d *Driver) fail(err error) error {
	re := &RunError{
		Err:   err,
		Time:  d.Now(),
		Seed:  d.sc.Seed(),
		RunID: d.sc.RunID(),
		Snapshot: Snapshot{
			Counts: d.Counts(),
			Rows:   d.table.Rows(),
		},
	}
	d.logger.Error("run failed", "t", re.Time, "err", err)

	return re
}
