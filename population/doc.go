// SPDX-License-Identifier: MIT

// Package population holds the entity table of a vaxsim run: households (or
// individuals) with their attractor assignment, weights, attitudes and
// household composition.
//
// Table is a struct-of-arrays arena indexed by row; row i is also row i of the
// pressure matrix. Attitude columns (Calculation, Confidence, Complacency) are
// double-buffered: a propagation round reads Current, writes Next, and Commit
// swaps both in one batch after checking that every value stays in [0,1].
//
// Synthesize generates rows from dist.Samplers for runs that have no
// external population table.
package population
