// SPDX-License-Identifier: MIT
// Package: vaxsim/dist
//
// dist.go - validated constructors over gonum distuv.
//
// Contract:
//   • Constructors validate parameters and return ErrBadParameter (never panic).
//   • The returned Sampler draws exclusively from src; a nil src falls back to
//     gonum's global source (non-reproducible, tests and examples always seed).
//   • Means are analytic (distuv), used by oracles and config summaries.

package dist

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws one real value per call. It is satisfied by gonum distuv
// types directly, which keeps the library free of wrapper allocations.
type Sampler interface {
	// Rand returns a random sample.
	Rand() float64
	// Mean returns the analytic mean of the distribution.
	Mean() float64
}

// Constant is the degenerate distribution at Value.
type Constant struct {
	Value float64
}

// Rand returns Value.
func (c Constant) Rand() float64 { return c.Value }

// Mean returns Value.
func (c Constant) Mean() float64 { return c.Value }

// Compile-time assertions: gonum types are Samplers as-is.
var (
	_ Sampler = Constant{}
	_ Sampler = distuv.Exponential{}
	_ Sampler = distuv.Uniform{}
	_ Sampler = distuv.Normal{}
	_ Sampler = distuv.LogNormal{}
	_ Sampler = distuv.Gamma{}
	_ Sampler = distuv.Weibull{}
	_ Sampler = distuv.Triangle{}
	_ Sampler = distuv.Categorical{}
	_ Sampler = distuv.Poisson{}
)

// finite reports whether every value is a finite float.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Exponential returns Exp(rate), mean 1/rate. Requires rate > 0.
func Exponential(rate float64, src rand.Source) (Sampler, error) {
	if !finite(rate) || rate <= 0 {
		return nil, fmt.Errorf("Exponential: rate=%g must be > 0: %w", rate, ErrBadParameter)
	}
	return distuv.Exponential{Rate: rate, Src: src}, nil
}

// ExponentialMean returns an exponential distribution parameterized by its mean.
func ExponentialMean(mean float64, src rand.Source) (Sampler, error) {
	if !finite(mean) || mean <= 0 {
		return nil, fmt.Errorf("ExponentialMean: mean=%g must be > 0: %w", mean, ErrBadParameter)
	}
	return distuv.Exponential{Rate: 1 / mean, Src: src}, nil
}

// Uniform returns U[min,max). min == max degenerates to Constant.
func Uniform(min, max float64, src rand.Source) (Sampler, error) {
	if !finite(min, max) || max < min {
		return nil, fmt.Errorf("Uniform: require min<=max, got min=%g max=%g: %w", min, max, ErrBadParameter)
	}
	if min == max {
		return Constant{Value: min}, nil
	}
	return distuv.Uniform{Min: min, Max: max, Src: src}, nil
}

// Normal returns N(mu, sigma). Requires sigma >= 0; sigma == 0 is Constant.
func Normal(mu, sigma float64, src rand.Source) (Sampler, error) {
	if !finite(mu, sigma) || sigma < 0 {
		return nil, fmt.Errorf("Normal: sigma=%g must be >= 0: %w", sigma, ErrBadParameter)
	}
	if sigma == 0 {
		return Constant{Value: mu}, nil
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: src}, nil
}

// LogNormal returns a log-normal distribution with log-mean mu and log-sd sigma > 0.
func LogNormal(mu, sigma float64, src rand.Source) (Sampler, error) {
	if !finite(mu, sigma) || sigma <= 0 {
		return nil, fmt.Errorf("LogNormal: sigma=%g must be > 0: %w", sigma, ErrBadParameter)
	}
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: src}, nil
}

// Gamma returns Gamma(shape, rate). Both must be > 0.
func Gamma(shape, rate float64, src rand.Source) (Sampler, error) {
	if !finite(shape, rate) || shape <= 0 || rate <= 0 {
		return nil, fmt.Errorf("Gamma: shape=%g rate=%g must be > 0: %w", shape, rate, ErrBadParameter)
	}
	return distuv.Gamma{Alpha: shape, Beta: rate, Src: src}, nil
}

// Weibull returns Weibull(k, lambda). Both must be > 0.
func Weibull(k, lambda float64, src rand.Source) (Sampler, error) {
	if !finite(k, lambda) || k <= 0 || lambda <= 0 {
		return nil, fmt.Errorf("Weibull: k=%g lambda=%g must be > 0: %w", k, lambda, ErrBadParameter)
	}
	return distuv.Weibull{K: k, Lambda: lambda, Src: src}, nil
}

// Triangular returns the triangular distribution on [min,max] with the given mode.
// Requires min < max and min <= mode <= max.
func Triangular(min, mode, max float64, src rand.Source) (Sampler, error) {
	if !finite(min, mode, max) || min >= max || mode < min || mode > max {
		return nil, fmt.Errorf("Triangular: require min<=mode<=max and min<max, got (%g,%g,%g): %w",
			min, mode, max, ErrBadParameter)
	}
	// distuv argument order is (lower, upper, mode).
	return distuv.NewTriangle(min, max, mode, src), nil
}

// Categorical returns a distribution over indices 0..len(weights)-1 with
// probability proportional to weights. Weights must be non-negative with a
// positive sum. Rand returns the index as a float64.
func Categorical(weights []float64, src rand.Source) (Sampler, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("Categorical: no weights: %w", ErrBadParameter)
	}
	var sum float64
	for i, w := range weights {
		if !finite(w) || w < 0 {
			return nil, fmt.Errorf("Categorical: weight[%d]=%g must be >= 0: %w", i, w, ErrBadParameter)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("Categorical: weights sum to zero: %w", ErrBadParameter)
	}
	// NewCategorical keeps its own copy of the weights.
	return distuv.NewCategorical(weights, src), nil
}

// Poisson returns Poisson(lambda). Requires lambda > 0.
func Poisson(lambda float64, src rand.Source) (Sampler, error) {
	if !finite(lambda) || lambda <= 0 {
		return nil, fmt.Errorf("Poisson: lambda=%g must be > 0: %w", lambda, ErrBadParameter)
	}
	return distuv.Poisson{Lambda: lambda, Src: src}, nil
}

// Clamp01 wraps s so that every sample is clipped to [0,1]. It is used for
// attitude attributes, whose domain is the unit interval.
func Clamp01(s Sampler) Sampler {
	return clamped{s: s}
}

type clamped struct{ s Sampler }

func (c clamped) Rand() float64 {
	v := c.s.Rand()
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Mean returns the mean of the unclipped distribution clipped to [0,1]; it is
// an approximation used only for reporting.
func (c clamped) Mean() float64 {
	return math.Min(1, math.Max(0, c.s.Mean()))
}
