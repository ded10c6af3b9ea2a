// SPDX-License-Identifier: MIT

// Package simctx carries the per-run simulation context: seeded random streams
// (PCG from math/rand/v2), a cache of parsed distributions, the event bus, the
// logger and the run id. The outer layer builds one Context per run and hands
// its parts to the core; the core never reaches for global state.
package simctx
