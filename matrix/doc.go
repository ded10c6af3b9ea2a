// SPDX-License-Identifier: MIT

// Package matrix holds the peer-pressure (appreciation) matrix of a vaxsim
// population.
//
// Pressure is a sparse, symmetric, zero-diagonal n×n weight matrix whose row
// and column i correspond to row i of the population table. Rows are sorted
// tie lists, which keeps memory at O(n + ties) for the small-world networks the
// simulator builds, and makes every reduction over a row deterministic.
//
//   - NewPressure / SetSymmetric / Remove: mutation, symmetric by construction.
//   - At / Has / Neighbors / Degree / RowSum: read access for propagation.
//   - Validate(eps): re-check every invariant (used by tests and ingestion).
//   - ToSymDense / FromMatrix: bridges to gonum/mat for analysis and for
//     ingesting an externally built network.
//   - DegreeStats: degree distribution summary via gonum/stat.
//
// The network package is the only writer; propagation rounds only read.
package matrix
