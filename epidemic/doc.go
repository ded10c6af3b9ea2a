// SPDX-License-Identifier: MIT

// Package epidemic holds the stochastic transmission kernels of vaxsim.
//
// A Model lists the transitions between the M/S/E/I/R compartments of one
// sub-population: exactly one infection transition with propensity β·S·I/N
// and linear transitions rate·count(From) everywhere else. SIR, SEIR and
// MSEIR build the usual shapes.
//
// Two interchangeable kernels implement the Kernel interface:
//
//   - Gillespie: the direct method. The waiting time is Exp(total rate) and
//     the firing transition is drawn in proportion to its rate.
//   - Sellke: every susceptible carries an Exp(1) resistance threshold and
//     is infected when the cumulative infection pressure reaches it; every
//     other exit is a per-individual exponential delay.
//
// Both produce the same law for the final size. The registry (Lookup) maps
// the names "gillespie" and "sellke" to constructors.
//
// Kernels are driven one event at a time:
//
//	for {
//		e, ok := k.Propose()
//		if !ok || e.Time > horizon {
//			break
//		}
//		if err := k.Commit(e); err != nil {
//			return err
//		}
//	}
//
// Simulate is that loop plus optional Grid snapshots. Exogenous moves
// (importation, vaccination) go through Move, which invalidates the pending
// proposal.
//
// SolveODE integrates the deterministic mean-field limit with RK4. It is the
// regression oracle for the stochastic kernels; R0 gives the basic
// reproduction number of a model.
//
// Errors:
//
//	ErrNegativeCount    - a negative initial count or an impossible move.
//	ErrBadModel         - a malformed transition list or parameter.
//	ErrUnknownAlgorithm - Lookup of an unregistered name.
//	ErrInvariant        - counts stopped summing to N after a commit.
//	ErrStaleEvent       - Commit of an event that is not the current proposal.
//	ErrClockReversal    - AdvanceTo into the past.
package epidemic
