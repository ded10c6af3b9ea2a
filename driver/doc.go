// SPDX-License-Identifier: MIT

// Package driver runs a vaxsim simulation: one timeline, one epidemic kernel
// per region, and the recurring activities that couple the epidemic to the
// population's attitudes.
//
// The activities, each enabled by an option:
//
//   - propagation rounds of an attitude.Propagator (period or cron timing);
//   - gatherings, where a random host meets part of its network;
//   - household demography, applying defined composition transitions;
//   - vaccination, moving uptake·willingness of every region's susceptibles
//     to recovered;
//   - importations, one-shot S→I moves;
//   - statistics, republished every dt to OnStatistics subscribers.
//
// Stop disposes one activity mid-run, e.g. from a statistics subscriber; its
// future firings are dropped and the state it already changed stays.
//
// Kernel events are committed lazily: whenever the clock is about to move,
// every kernel catches up to the new time first. Domain events go to the
// event bus of the run context, which is drained after every action.
//
// A run either reaches its horizon or fails with a *RunError. The error
// carries the virtual time, the seed and run id needed to replay the run, and
// a snapshot of counts and rows.
package driver
