// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"slices"

	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/gomlx/fusioncluster/pkg/support/xslices"
	"github.com/gomlx/fusioncluster/types/shapes"
)

// CanFuse returns whether the consumer cluster second can absorb its predecessor cluster first.
//
// When the fusion requires the consumer to realign its iteration space to first's, it also returns a
// non-empty broadcast ScheduleInfo to be passed to MergeNode.
func CanFuse(first, second *GroupClusterNode) (hint ir.ScheduleInfo, ok bool) {
	// Reshapes immediately preceding the block output are free.
	if second.isTerminalReshape() {
		return ir.ScheduleInfo{}, true
	}

	if first.Kind == ir.KindReduction && (second.Kind == ir.KindElementWise || second.Kind == ir.KindBroadcast) {
		if shapes.EqualDims(first.LoopRanges, second.LoopRanges) {
			return ir.ScheduleInfo{}, true
		}
		if !reductionBroadcastCompatible(first, second) {
			return ir.ScheduleInfo{}, false
		}
		hint = ir.ScheduleInfo{
			Type:    ir.ScheduleBroadcast,
			Axes:    slices.Clone(first.ReduceAxes),
			Factors: slices.Clone(first.LoopRanges),
		}
		return hint, true
	}

	return ir.ScheduleInfo{}, shapes.EqualDims(first.LoopRanges, second.LoopRanges) &&
		slices.Equal(first.ReduceAxes, second.ReduceAxes)
}

// reductionBroadcastCompatible checks that the iteration space of second is the one of the reduction
// first, either with the (trailing) reduced axes dropped or kept with dimension 1.
func reductionBroadcastCompatible(first, second *GroupClusterNode) bool {
	rank := len(first.LoopRanges)
	if len(first.ReduceAxes) == 0 {
		return false
	}
	normalized := xslices.Map(first.ReduceAxes, func(axis int) int {
		if axis < 0 {
			return axis + rank
		}
		return axis
	})
	reduceAxes := sets.MakeWith(normalized...)
	if xslices.Min(normalized) != rank-len(first.ReduceAxes) {
		return false
	}
	sameRank := rank == len(second.LoopRanges)
	if !sameRank && rank != len(second.LoopRanges)+len(first.ReduceAxes) {
		return false
	}
	cursor := 0
	for axis, dim := range first.LoopRanges {
		if !reduceAxes.Has(axis) {
			if cursor >= len(second.LoopRanges) || second.LoopRanges[cursor] != dim {
				return false
			}
			cursor++
			continue
		}
		if sameRank {
			if second.LoopRanges[cursor] != 1 {
				return false
			}
			cursor++
		}
	}
	return true
}

// canOpMergeNode is the stage 1 predecessor compatibility test: it returns whether the cluster
// owning predOp can be merged into curNode, the cluster being built for curOp.
func canOpMergeNode(oracle Oracle, predOp, curOp *ir.Op, predNode, curNode *GroupClusterNode) bool {
	if oracle.OpKind(predOp) == ir.KindReduction {
		// Reductions only absorb consumers in stage 2.
		return false
	}
	return !loopRangesMismatch(oracle, curOp, predNode, curNode)
}

// shouldOutputPreNode returns whether the cluster owning predOp must be finalized as a stage 1 output,
// because curOp consumes it but can't be merged with it.
func shouldOutputPreNode(oracle Oracle, predOp, curOp *ir.Op, predNode, curNode *GroupClusterNode) bool {
	if oracle.OpKind(predOp) == ir.KindReduction {
		return false
	}
	return loopRangesMismatch(oracle, curOp, predNode, curNode)
}

func loopRangesMismatch(oracle Oracle, curOp *ir.Op, predNode, curNode *GroupClusterNode) bool {
	return oracle.OpKind(curOp) != ir.KindBroadcast && !shapes.EqualDims(curNode.LoopRanges, predNode.LoopRanges)
}
