// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// registry.go - named topologies for configuration-driven construction.

package network

import (
	"fmt"
	"sort"
	"strings"
)

// TopologyParams carries the numeric parameters a named topology may use.
type TopologyParams struct {
	// Degree is the lattice degree (small-world, ring) or the regular degree.
	Degree int
	// Probability is the tie probability of random-sparse.
	Probability float64
}

var topologies = map[string]func(TopologyParams) Constructor{
	"small-world":    func(tp TopologyParams) Constructor { return SmallWorld(tp.Degree) },
	"ring":           func(tp TopologyParams) Constructor { return RingLattice(tp.Degree) },
	"random-regular": func(tp TopologyParams) Constructor { return RandomRegular(tp.Degree) },
	"random-sparse":  func(tp TopologyParams) Constructor { return RandomSparse(tp.Probability) },
}

// Topology resolves a registered topology name (case-insensitive).
// Unknown names fail with ErrUnknownTopology.
func Topology(name string, tp TopologyParams) (Constructor, error) {
	f, ok := topologies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("Topology(%q): %w", name, ErrUnknownTopology)
	}

	return f(tp), nil
}

// Topologies lists the registered names in sorted order.
func Topologies() []string {
	out := make([]string, 0, len(topologies))
	for k := range topologies {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}
