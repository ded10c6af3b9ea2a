// SPDX-License-Identifier: MIT
// Package: vaxsim/matrix
//
// statistics.go - degree and weight summaries of a Pressure matrix.

package matrix

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DegreeSummary describes the degree distribution of a network.
type DegreeSummary struct {
	Mean   float64
	StdDev float64
	Min    int
	Max    int
}

// DegreeStats summarizes the per-row tie counts. An empty matrix yields the
// zero summary.
func (p *Pressure) DegreeStats() DegreeSummary {
	n := len(p.rows)
	if n == 0 {
		return DegreeSummary{}
	}
	deg := make([]float64, n)
	for i, row := range p.rows {
		deg[i] = float64(len(row))
	}
	mean, std := stat.MeanStdDev(deg, nil)
	if n == 1 {
		// stat returns NaN for a single observation.
		std = 0
	}

	return DegreeSummary{
		Mean:   mean,
		StdDev: std,
		Min:    int(floats.Min(deg)),
		Max:    int(floats.Max(deg)),
	}
}

// RowSum returns Σ_j w(i,j). Out-of-range rows sum to zero.
func (p *Pressure) RowSum(i int) float64 {
	if i < 0 || i >= len(p.rows) {
		return 0
	}
	var s float64
	for _, t := range p.rows[i] {
		s += t.Weight
	}

	return s
}
