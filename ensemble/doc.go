// SPDX-License-Identifier: MIT

// Package ensemble runs independent replications of a stochastic simulation
// in parallel and summarizes them.
//
// Every member gets its own random stream forked from the run context, so an
// ensemble is reproducible from the root seed whatever the worker count.
// Summaries and the two-sample Kolmogorov-Smirnov distance come from gonum's
// stat package; KS is how the Gillespie and Sellke kernels are checked
// against each other.
//
//	sc, _ := simctx.New(42, 0)
//	g, _ := epidemic.Lookup("gillespie")
//	res, err := ensemble.Run(ctx, sc, 1000, ensemble.FinalSize(g, epidemic.SIR(2, 1), start))
package ensemble
