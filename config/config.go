// SPDX-License-Identifier: MIT
// Package: vaxsim/config
//
// config.go - the YAML run description, its defaults and environment
// overrides.
//
// Contract:
//   • Load order: Default() → YAML file (if any) → VAXSIM_* variables.
//   • Fields absent from the file keep their defaults.
//   • Validate reports the first problem wrapped with ErrInvalid.

package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/vaxsim/attitude"
	"github.com/katalvlaran/vaxsim/dist"
	"github.com/katalvlaran/vaxsim/epidemic"
	"github.com/katalvlaran/vaxsim/household"
	"github.com/katalvlaran/vaxsim/network"
	"github.com/katalvlaran/vaxsim/scheduler"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VAXSIM_"

// Config is a complete run description.
type Config struct {
	Run          RunConfig           `yaml:"run"`
	Logging      LoggingConfig       `yaml:"logging"`
	Epidemic     EpidemicConfig      `yaml:"epidemic"`
	Population   PopulationConfig    `yaml:"population"`
	Network      NetworkConfig       `yaml:"network"`
	Attitude     AttitudeConfig      `yaml:"attitude"`
	Households   HouseholdConfig     `yaml:"households"`
	Gathering    GatheringConfig     `yaml:"gathering"`
	Vaccination  VaccinationConfig   `yaml:"vaccination"`
	Importations []ImportationConfig `yaml:"importations"`
}

// RunConfig holds the timeline and the random seed.
type RunConfig struct {
	Seed    uint64  `yaml:"seed" env:"SEED"`
	Horizon float64 `yaml:"horizon" env:"HORIZON"`
	// Statistics is the republication interval; 0 disables statistics.
	Statistics float64 `yaml:"statistics"`
	Algorithm  string  `yaml:"algorithm" env:"ALGORITHM"`
	// Epoch and Unit map virtual time onto wall time for cron timings.
	Epoch string        `yaml:"epoch"`
	Unit  time.Duration `yaml:"unit"`
	// Pace throttles the run to this much wall time per virtual unit.
	Pace time.Duration `yaml:"pace" env:"PACE"`
}

// LoggingConfig sets the log verbosity: error, warn, info, debug or trace.
type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// EpidemicConfig selects the compartment model and the regions.
type EpidemicConfig struct {
	Model   string         `yaml:"model"` // sir, seir or mseir
	Beta    float64        `yaml:"beta"`
	Sigma   float64        `yaml:"sigma"`
	Gamma   float64        `yaml:"gamma"`
	Omega   float64        `yaml:"omega"`
	Regions []RegionConfig `yaml:"regions"`
}

// RegionConfig is one region with its initial counts keyed by compartment
// ("S" or "susceptible").
type RegionConfig struct {
	Name    string           `yaml:"name"`
	Initial map[string]int64 `yaml:"initial"`
}

// PopulationConfig drives population.Synthesize. Every distribution field is
// a dist specification string; empty keeps the synthesizer default.
type PopulationConfig struct {
	Size            int                `yaml:"size"`
	Attractors      int                `yaml:"attractors"`
	Calculation     string             `yaml:"calculation"`
	Confidence      string             `yaml:"confidence"`
	Complacency     string             `yaml:"complacency"`
	Assortativity   string             `yaml:"assortativity"`
	InGroup         string             `yaml:"in_group"`
	OutGroup        string             `yaml:"out_group"`
	SelfWeight      string             `yaml:"self_weight"`
	AttractorWeight string             `yaml:"attractor_weight"`
	NetworkSize     string             `yaml:"network_size"`
	Compositions    map[string]float64 `yaml:"compositions"`
}

// NetworkConfig selects the appreciation network topology.
type NetworkConfig struct {
	Topology    string  `yaml:"topology"`
	Degree      int     `yaml:"degree"`
	Probability float64 `yaml:"probability"`
	Rewiring    float64 `yaml:"rewiring"`
	// Assortative biases rewiring toward the same region with each entity's
	// assortativity as the probability.
	Assortative bool `yaml:"assortative"`
}

// Schedule is a recurring timing: a period with an offset, or a cron spec.
// The zero Schedule is disabled.
type Schedule struct {
	Every  float64 `yaml:"every"`
	Offset float64 `yaml:"offset"`
	Cron   string  `yaml:"cron"`
}

// Enabled reports whether s describes a timing.
func (s Schedule) Enabled() bool { return s.Every > 0 || s.Cron != "" }

// AttitudeConfig configures propagation rounds and the vaccination barrier.
type AttitudeConfig struct {
	Schedule  `yaml:",inline"`
	Filter    string  `yaml:"filter"`
	Barrier   string  `yaml:"barrier"`
	Threshold float64 `yaml:"threshold"`
	Workers   int     `yaml:"workers"`
}

// HouseholdConfig configures household demography. Rates are relative
// weights keyed by transition name (PlusAdult, MinusAdult, PlusChild,
// MinusChild).
type HouseholdConfig struct {
	Schedule `yaml:",inline"`
	Count    int                `yaml:"count"`
	Rates    map[string]float64 `yaml:"rates"`
}

// GatheringConfig configures gatherings; Size is a dist specification.
type GatheringConfig struct {
	Schedule `yaml:",inline"`
	Size     string `yaml:"size"`
}

// VaccinationConfig configures vaccination rounds.
type VaccinationConfig struct {
	Schedule `yaml:",inline"`
	Uptake   float64 `yaml:"uptake"`
}

// ImportationConfig is one S→I importation.
type ImportationConfig struct {
	Time   float64 `yaml:"time"`
	Region string  `yaml:"region"`
	Count  int64   `yaml:"count"`
}

// Default returns a small single-region SIR run with weekly propagation.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Seed:       1,
			Horizon:    100,
			Statistics: 1,
			Algorithm:  "gillespie",
			Epoch:      "2024-01-01",
			Unit:       24 * time.Hour,
		},
		Logging: LoggingConfig{Level: "info"},
		Epidemic: EpidemicConfig{
			Model: "sir",
			Beta:  0.3,
			Gamma: 0.1,
			Regions: []RegionConfig{
				{Name: "all", Initial: map[string]int64{"S": 990, "I": 10}},
			},
		},
		Population: PopulationConfig{
			Size:        200,
			Attractors:  4,
			Calculation: "uniform(0,1)",
			Confidence:  "uniform(0,1)",
			Complacency: "uniform(0,1)",
		},
		Network: NetworkConfig{
			Topology: "small-world",
			Degree:   6,
			Rewiring: 0.1,
		},
		Attitude: AttitudeConfig{
			Schedule:  Schedule{Every: 7, Offset: 7},
			Filter:    "threshold",
			Barrier:   "average",
			Threshold: 0.5,
		},
		Gathering: GatheringConfig{Size: "poisson(3)"},
	}
}

// Load reads path over Default and applies the environment overrides. An
// empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from VAXSIM_* variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) validate() error {
	r := c.Run
	switch {
	case !(r.Horizon > 0) || math.IsInf(r.Horizon, 0):
		return fmt.Errorf("run.horizon=%g must be finite and > 0", r.Horizon)
	case !(r.Statistics >= 0):
		return fmt.Errorf("run.statistics=%g must be >= 0", r.Statistics)
	case r.Pace < 0:
		return fmt.Errorf("run.pace=%s must be >= 0", r.Pace)
	}
	if _, err := epidemic.Lookup(r.Algorithm); err != nil {
		return fmt.Errorf("run.algorithm: %w (known: %s)", err, strings.Join(epidemic.Algorithms(), ", "))
	}
	if _, err := c.epoch(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "error", "warn", "info", "debug", "trace":
	default:
		return fmt.Errorf("logging.level %q (valid: error, warn, info, debug, trace)", c.Logging.Level)
	}

	if _, err := c.Model(); err != nil {
		return fmt.Errorf("epidemic: %w", err)
	}
	if len(c.Epidemic.Regions) == 0 {
		return fmt.Errorf("epidemic.regions: at least one region is required")
	}
	seen := make(map[string]bool, len(c.Epidemic.Regions))
	for i, reg := range c.Epidemic.Regions {
		if reg.Name == "" || seen[reg.Name] {
			return fmt.Errorf("epidemic.regions[%d]: empty or duplicate name %q", i, reg.Name)
		}
		seen[reg.Name] = true
		if _, err := reg.Counts(); err != nil {
			return fmt.Errorf("epidemic.regions[%d]: %w", i, err)
		}
	}

	if err := c.Population.validate(); err != nil {
		return err
	}
	if _, err := network.Topology(c.Network.Topology, network.TopologyParams{}); err != nil {
		return fmt.Errorf("network.topology: %w (known: %s)", err, strings.Join(network.Topologies(), ", "))
	}
	if c.Network.Degree < 0 || !(c.Network.Rewiring >= 0 && c.Network.Rewiring <= 1) ||
		!(c.Network.Probability >= 0 && c.Network.Probability <= 1) {
		return fmt.Errorf("network: degree=%d rewiring=%g probability=%g", c.Network.Degree, c.Network.Rewiring, c.Network.Probability)
	}

	a := c.Attitude
	if _, err := attitude.LookupFilter(a.Filter); err != nil {
		return fmt.Errorf("attitude.filter: %w", err)
	}
	if _, err := attitude.LookupBarrier(a.Barrier); err != nil {
		return fmt.Errorf("attitude.barrier: %w", err)
	}
	if !(a.Threshold >= 0 && a.Threshold <= 1) || a.Workers < 0 {
		return fmt.Errorf("attitude: threshold=%g workers=%d", a.Threshold, a.Workers)
	}

	if c.Households.Count < 0 {
		return fmt.Errorf("households.count=%d must be >= 0", c.Households.Count)
	}
	if _, err := c.Households.ops(); err != nil {
		return err
	}
	if c.Gathering.Enabled() {
		if _, err := dist.Parse(c.Gathering.Size, nopSource{}); err != nil {
			return fmt.Errorf("gathering.size: %w", err)
		}
	}
	if u := c.Vaccination.Uptake; !(u >= 0 && u <= 1) {
		return fmt.Errorf("vaccination.uptake=%g not in [0,1]", u)
	}
	for name, s := range c.schedules() {
		if _, err := c.timing(s); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	for i, imp := range c.Importations {
		if !seen[imp.Region] || imp.Count < 0 || !(imp.Time >= 0 && imp.Time <= r.Horizon) {
			return fmt.Errorf("importations[%d]: %+v", i, imp)
		}
	}

	return nil
}

func (p PopulationConfig) validate() error {
	if p.Size <= 0 || p.Attractors < 0 || p.Attractors > p.Size {
		return fmt.Errorf("population: size=%d attractors=%d", p.Size, p.Attractors)
	}
	for name, spec := range p.specs() {
		if spec == "" {
			continue
		}
		if _, err := dist.Parse(spec, nopSource{}); err != nil {
			return fmt.Errorf("population.%s: %w", name, err)
		}
	}
	for name, w := range p.Compositions {
		if _, err := household.Parse(name); err != nil {
			return fmt.Errorf("population.compositions: %w", err)
		}
		if !(w >= 0) || math.IsInf(w, 0) {
			return fmt.Errorf("population.compositions[%s]=%g", name, w)
		}
	}

	return nil
}

func (p PopulationConfig) specs() map[string]string {
	return map[string]string{
		"calculation":      p.Calculation,
		"confidence":       p.Confidence,
		"complacency":      p.Complacency,
		"assortativity":    p.Assortativity,
		"in_group":         p.InGroup,
		"out_group":        p.OutGroup,
		"self_weight":      p.SelfWeight,
		"attractor_weight": p.AttractorWeight,
		"network_size":     p.NetworkSize,
	}
}

// Model builds the configured compartment model.
func (c *Config) Model() (epidemic.Model, error) {
	e := c.Epidemic
	var m epidemic.Model
	switch strings.ToLower(strings.TrimSpace(e.Model)) {
	case "sir":
		m = epidemic.SIR(e.Beta, e.Gamma)
	case "seir":
		m = epidemic.SEIR(e.Beta, e.Sigma, e.Gamma)
	case "mseir":
		m = epidemic.MSEIR(e.Omega, e.Beta, e.Sigma, e.Gamma)
	default:
		return epidemic.Model{}, fmt.Errorf("model %q (valid: sir, seir, mseir): %w", e.Model, epidemic.ErrBadModel)
	}
	if err := m.Validate(); err != nil {
		return epidemic.Model{}, err
	}

	return m, nil
}

// Counts converts the initial map into compartment counts.
func (r RegionConfig) Counts() (epidemic.Counts, error) {
	var c epidemic.Counts
	for name, n := range r.Initial {
		x, err := epidemic.ParseCompartment(name)
		if err != nil {
			return c, err
		}
		if n < 0 {
			return c, fmt.Errorf("initial %s=%d: %w", name, n, epidemic.ErrNegativeCount)
		}
		c[x] += n
	}

	return c, nil
}

// ops resolves the rate map onto household transitions.
func (h HouseholdConfig) ops() (map[household.Op]float64, error) {
	out := make(map[household.Op]float64, len(h.Rates))
	for name, w := range h.Rates {
		op, ok := parseOp(name)
		if !ok {
			return nil, fmt.Errorf("households.rates: unknown transition %q", name)
		}
		if !(w >= 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("households.rates[%s]=%g", name, w)
		}
		out[op] = w
	}

	return out, nil
}

func parseOp(name string) (household.Op, bool) {
	for _, op := range household.Ops() {
		if strings.EqualFold(op.String(), strings.TrimSpace(name)) {
			return op, true
		}
	}
	return 0, false
}

func (c *Config) schedules() map[string]Schedule {
	return map[string]Schedule{
		"attitude":    c.Attitude.Schedule,
		"households":  c.Households.Schedule,
		"gathering":   c.Gathering.Schedule,
		"vaccination": c.Vaccination.Schedule,
	}
}

func (c *Config) epoch() (time.Time, error) {
	if c.Run.Epoch == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, c.Run.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("run.epoch: %w", err)
	}
	return t, nil
}

// timing resolves s; a disabled Schedule yields nil.
func (c *Config) timing(s Schedule) (scheduler.Timing, error) {
	switch {
	case s.Cron != "":
		epoch, err := c.epoch()
		if err != nil {
			return nil, err
		}
		unit := c.Run.Unit
		if unit == 0 {
			unit = 24 * time.Hour
		}
		return scheduler.Cron(s.Cron, epoch, unit)
	case s.Every > 0:
		return scheduler.Every(s.Every, s.Offset)
	case s.Every < 0 || s.Offset != 0:
		return nil, fmt.Errorf("every=%g offset=%g: %w", s.Every, s.Offset, scheduler.ErrMalformedTiming)
	}
	return nil, nil
}

// nopSource lets Validate parse distribution specs without a run.
type nopSource struct{}

func (nopSource) Uint64() uint64 { return 0 }
