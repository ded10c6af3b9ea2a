// SPDX-License-Identifier: MIT

// Package attitude propagates vaccination attitudes (confidence and
// complacency) over the peer-pressure matrix of a population.
//
// One round moves every non-attractor entity toward the weighted average of
// its peers, its own attitude and the attitude of its attractor, an authority
// node whose row also supplies the self and attractor multipliers. The
// entity's calculation level gates which peers count at all, through one of
// two interchangeable filters:
//
//   - Threshold: a peer counts with its full appreciation once appreciation
//     reaches 1-calculation, otherwise not at all.
//   - Shifted: a linear ramp, max(0, appreciation-0.5+calculation).
//
// Rounds are synchronous. Every update reads the committed state, writes the
// next buffer of the population table, and Table.Commit swaps all columns at
// once, so the result does not depend on worker count or row order.
//
// Attitudes turn into a vaccination decision through a Barrier
// (AverageBarrier, DifferenceBarrier); Willingness reports the willing share
// of the population for a threshold.
package attitude
