// SPDX-License-Identifier: MIT

// Package vaxsim is a stochastic simulation kernel for epidemics coupled to
// vaccination attitudes spreading over a social network.
//
// The pieces, bottom-up:
//
//	dist/       - distribution samplers and their "name(args)" spec strings
//	event/      - domain events and the deferred-delivery bus
//	simctx/     - per-run seed, random streams, distribution cache, logger
//	scheduler/  - discrete-event clock: one-shot, periodic and cron actions
//	epidemic/   - compartment models, Gillespie and Sellke kernels, ODE reference
//	matrix/     - the sparse symmetric pressure (appreciation) matrix
//	network/    - small-world and random topologies over a Pressure
//	household/  - household composition states and their transitions
//	population/ - the double-buffered entity table and its synthesizer
//	attitude/   - parallel propagation rounds, filters and vaccination barriers
//	driver/     - one run: kernels, rounds and recurring actions on one timeline
//	ensemble/   - parallel replications with summary statistics
//	config/     - YAML + VAXSIM_* environment → a ready driver
//	cmd/vaxsim  - the command-line front end
//
// Every stochastic component draws from its own stream forked from the run
// seed, so a run is reproducible from its seed alone regardless of worker
// counts.
package vaxsim
