// SPDX-License-Identifier: MIT
// Package: vaxsim/network
//
// reach.go - breadth-first traversal of an appreciation network.
//
// Contract:
//   • Ties are followed regardless of weight; a tie exists or it does not.
//   • Hop distances are exact (FIFO frontier); unreachable nodes get -1.
//
// Complexity:
//   • O(N + T) time and O(N) memory per traversal.

package network

import (
	"fmt"

	"github.com/katalvlaran/vaxsim/matrix"
)

// Unreached marks a node outside the explored region.
const Unreached = -1

// Distances returns the hop count from start to every node. maxDepth < 0
// explores without limit; otherwise nodes farther than maxDepth stay
// Unreached.
func Distances(p *matrix.Pressure, start, maxDepth int) ([]int, error) {
	if p == nil {
		return nil, fmt.Errorf("Distances: %w", matrix.ErrNilMatrix)
	}
	if start < 0 || start >= p.N() {
		return nil, fmt.Errorf("Distances: start=%d n=%d: %w", start, p.N(), matrix.ErrOutOfRange)
	}
	depth := make([]int, p.N())
	for i := range depth {
		depth[i] = Unreached
	}
	walk(p, start, maxDepth, depth, nil)

	return depth, nil
}

// Components labels every node with its connected component. Labels are
// assigned in order of each component's smallest node, starting at 0.
func Components(p *matrix.Pressure) (labels []int, count int) {
	n := p.N()
	labels = make([]int, n)
	depth := make([]int, n)
	for i := range depth {
		depth[i] = Unreached
	}
	for i := 0; i < n; i++ {
		if depth[i] != Unreached {
			continue
		}
		c := count
		walk(p, i, -1, depth, func(v int) { labels[v] = c })
		count++
	}

	return labels, count
}

// walk runs one BFS from start over nodes still Unreached in depth.
func walk(p *matrix.Pressure, start, maxDepth int, depth []int, visit func(int)) {
	queue := make([]int, 0, 16)
	depth[start] = 0
	queue = append(queue, start)
	for head := 0; head < len(queue); head++ {
		u := queue[head]
		if visit != nil {
			visit(u)
		}
		if maxDepth >= 0 && depth[u] >= maxDepth {
			continue
		}
		ties, _ := p.Neighbors(u) // u is in range by construction
		for _, tie := range ties {
			if depth[tie.To] != Unreached {
				continue
			}
			depth[tie.To] = depth[u] + 1
			queue = append(queue, tie.To)
		}
	}
}
