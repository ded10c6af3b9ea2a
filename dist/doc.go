// SPDX-License-Identifier: MIT

// Package dist is the distribution library of vaxsim: seeded samplers for
// rates, delays and synthetic population attributes.
//
// Every sampler is a thin value over gonum's distuv types (or a Constant),
// bound to an explicit random source so that a run is reproducible from its
// seed alone. Samplers are pure apart from the state of that source.
//
// The package offers:
//
//   - Constructors with validation: Exponential, ExponentialMean, Uniform,
//     Normal, LogNormal, Gamma, Weibull, Triangular, Categorical, Poisson,
//     Constant.
//   - Parse: turns a specification string such as "exponential(12)" or
//     "triangular(0.2, 0.5, 0.9)" into a Sampler via an explicit registry of
//     factories (no reflection). Unknown names fail with ErrUnknownDistribution.
//
// Parse belongs to the outer (configuration) layer; kernels and propagators
// only ever receive ready Samplers.
//
// Errors:
//
//	ErrBadParameter        - a distribution parameter is out of its domain.
//	ErrMalformedSpec       - a specification string cannot be tokenized.
//	ErrUnknownDistribution - a specification names no registered family.
package dist
