// SPDX-License-Identifier: MIT
// Package: vaxsim/attitude
//
// strategy.go - appreciation filters and vaccination barriers, each behind a
// small name registry.
//
// Contract:
//   • A Filter maps (appreciation, calculation) to a non-negative weight.
//   • A Barrier maps (confidence, complacency) ∈ [0,1]² to a barrier in [0,1];
//     an entity is willing when its barrier is below the threshold.

package attitude

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/katalvlaran/vaxsim/population"
)

// Filter turns the appreciation an entity holds for a peer into the weight
// of that peer's opinion, given the entity's calculation level.
type Filter func(appreciation, calculation float64) float64

// Threshold counts a peer fully once appreciation reaches 1-calculation.
func Threshold(appreciation, calculation float64) float64 {
	if appreciation >= 1-calculation {
		return appreciation
	}
	return 0
}

// Shifted ramps the weight linearly: max(0, appreciation-0.5+calculation).
func Shifted(appreciation, calculation float64) float64 {
	return math.Max(0, appreciation-0.5+calculation)
}

// Barrier scores how far an attitude is from accepting vaccination.
type Barrier func(confidence, complacency float64) float64

// AverageBarrier is the mean of distrust (1-confidence) and complacency.
func AverageBarrier(confidence, complacency float64) float64 {
	return ((1 - confidence) + complacency) / 2
}

// DifferenceBarrier is the excess of complacency over confidence.
func DifferenceBarrier(confidence, complacency float64) float64 {
	return math.Max(0, complacency-confidence)
}

var filters = map[string]Filter{
	"threshold": Threshold,
	"shifted":   Shifted,
}

var barriers = map[string]Barrier{
	"average":    AverageBarrier,
	"difference": DifferenceBarrier,
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LookupFilter resolves "threshold" or "shifted".
func LookupFilter(name string) (Filter, error) {
	f, ok := filters[key(name)]
	if !ok {
		return nil, fmt.Errorf("LookupFilter(%q): %w", name, ErrUnknownFilter)
	}
	return f, nil
}

// Filters returns the registered filter names, sorted.
func Filters() []string { return sortedKeys(filters) }

// LookupBarrier resolves "average" or "difference".
func LookupBarrier(name string) (Barrier, error) {
	b, ok := barriers[key(name)]
	if !ok {
		return nil, fmt.Errorf("LookupBarrier(%q): %w", name, ErrUnknownBarrier)
	}
	return b, nil
}

// Barriers returns the registered barrier names, sorted.
func Barriers() []string { return sortedKeys(barriers) }

// Willingness returns the fraction of non-attractor entities whose barrier
// lies strictly below threshold. An empty population is 0.
func Willingness(table *population.Table, barrier Barrier, threshold float64) (float64, error) {
	if !(threshold >= 0 && threshold <= 1) {
		return 0, fmt.Errorf("Willingness: threshold=%g: %w", threshold, ErrBadThreshold)
	}
	conf := table.Current(population.Confidence)
	compl := table.Current(population.Complacency)
	var willing, total int
	for i := range conf {
		if table.IsAttractor(i) {
			continue
		}
		total++
		if barrier(conf[i], compl[i]) < threshold {
			willing++
		}
	}
	if total == 0 {
		return 0, nil
	}

	return float64(willing) / float64(total), nil
}
