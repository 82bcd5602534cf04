// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"slices"

	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/pkg/errors"
)

// SortNodeList topologically sorts nodes by their value dependencies.
//
// It first regenerates every node's OutputValues against the union of all the nodes' outside inputs,
// so cross-cluster consumers become visible. There is an edge i -> j whenever an output of node i is
// an outside input of node j.
//
// It returns the indices of nodes in topological order and, for each node, the indices of its
// direct predecessors sorted by descending topological rank (nearest predecessor first).
//
// The ready set is a stack, seeded in index order: ties are broken deterministically, preferring the
// most recently readied node. It panics with ErrCycle if the nodes can't be sorted.
func SortNodeList(nodes []*GroupClusterNode) (order []int, preds [][]int) {
	succs := nodeEdges(nodes)
	n := len(nodes)
	inDegree := make([]int, n)
	preds = make([][]int, n)
	for i, next := range succs {
		for _, j := range next {
			inDegree[j]++
			preds[j] = append(preds[j], i)
		}
	}

	stack := make([]int, 0, n)
	for i, degree := range inDegree {
		if degree == 0 {
			stack = append(stack, i)
		}
	}
	order = make([]int, 0, n)
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, top)
		for _, next := range succs[top] {
			inDegree[next]--
			if inDegree[next] == 0 {
				stack = append(stack, next)
			}
		}
	}
	if len(order) != n {
		panic(errors.Wrapf(ErrCycle, "sorted %d out of %d cluster nodes", len(order), n))
	}

	rank := make([]int, n)
	for pos, idx := range order {
		rank[idx] = pos
	}
	for _, p := range preds {
		slices.SortFunc(p, func(a, b int) int { return rank[b] - rank[a] })
	}
	return order, preds
}

// nodeEdges regenerates the nodes' outputs and returns for each node the ascending list of its
// successors.
func nodeEdges(nodes []*GroupClusterNode) [][]int {
	insides := make([]sets.Set[ir.ValueID], len(nodes))
	for i, node := range nodes {
		insides[i] = node.OutsideInputs()
	}
	needed := sets.Union(insides...)
	for _, node := range nodes {
		node.GenerateOutputValues(needed)
	}

	succs := make([][]int, len(nodes))
	for i, node := range nodes {
		for j := range nodes {
			if i == j {
				continue
			}
			for _, v := range node.OutputValues {
				if insides[j].Has(v) {
					succs[i] = append(succs[i], j)
					break
				}
			}
		}
	}
	return succs
}
