// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"slices"
	"strings"

	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/gomlx/fusioncluster/pkg/support/xslices"
	"github.com/gomlx/fusioncluster/types/shapes"
	"github.com/pkg/errors"
)

// ReplaceWithGroupOp creates a detached OpTypeFusion op holding clones of groupOps, which must be
// the ops of node sorted in block order.
//
// Operands of the clones are translated through mapping, which must already hold every value the
// group consumes from outside. The fusion op has one result per node.OutputValues, and on return
// mapping translates each of those values to the corresponding fusion op result, so groups fused later
// can use them.
//
// It panics with ErrInconsistentPartition if an op can't be cloned.
func ReplaceWithGroupOp(program *ir.Program, groupOps []*ir.Op, node *GroupClusterNode, mapping *ir.ValueMapping) *ir.Op {
	clones := make([]*ir.Op, 0, len(groupOps))
	names := make([]string, 0, len(groupOps))
	alignment := make(map[ir.OpID][]ir.ScheduleInfo)
	for _, op := range groupOps {
		clone, err := program.CloneOp(op, mapping)
		if err != nil {
			panic(errors.Wrapf(ErrInconsistentPartition, "fusing %s: %v", op.Type, err))
		}
		clones = append(clones, clone)
		names = append(names, clone.Type.String())
		if infos, found := node.AlignmentSchedule[op.ID]; found {
			alignment[clone.ID] = ir.CloneScheduleInfos(infos)
		}
	}

	innerOutputs := make([]ir.ValueID, len(node.OutputValues))
	resultShapes := make([]shapes.Shape, len(node.OutputValues))
	for ii, v := range node.OutputValues {
		inner, found := mapping.Lookup(v)
		if !found {
			panic(errors.Wrapf(ErrInconsistentPartition, "output value %s has no entry in the value mapping",
				program.ValueName(v)))
		}
		innerOutputs[ii] = inner
		resultShapes[ii] = program.Shape(v).Clone()
	}

	fusionOp := program.CreateOp(ir.OpTypeFusion, nil, resultShapes, nil)
	fusionOp.Group = &ir.GroupInfo{
		GroupID:           strings.Join(names, "_"),
		LoopRanges:        slices.Clone(node.LoopRanges),
		ReduceAxes:        slices.Clone(node.ReduceAxes),
		Kind:              node.Kind,
		AlignmentSchedule: alignment,
	}
	for _, clone := range clones {
		program.AppendOp(fusionOp.Body, clone)
	}
	program.NewYield(fusionOp.Body, innerOutputs...)

	for ii, v := range node.OutputValues {
		mapping.Add(v, fusionOp.Result(ii))
	}
	return fusionOp
}

// blockRewriter replaces the ops of a block by the fusion ops of a partition.
type blockRewriter struct {
	program *ir.Program
	block   *ir.Block
	mapping *ir.ValueMapping

	// positions of the original ops in the block.
	positions map[ir.OpID]int

	// lastFused is the last fusion op inserted, nil before the first.
	lastFused *ir.Op
}

// rewriteBlock replaces the ops of block by one fusion op per node, in the order given. It returns
// the fusion ops created.
//
// The partition is fully checked before the block is touched: it panics with ErrInconsistentPartition
// (leaving the program unchanged) if nodes don't cover each op of the block exactly once, or if some
// node consumes a value only produced by a later node.
func rewriteBlock(program *ir.Program, block *ir.Block, nodes []*GroupClusterNode) []*ir.Op {
	rw := &blockRewriter{
		program:   program,
		block:     block,
		mapping:   ir.NewValueMapping(),
		positions: xslices.PositionsOf(block.OpIDs()),
	}
	ops := blockOps(block)
	yield := block.Terminator()
	if yield == nil {
		panic(errors.Wrapf(ErrInconsistentPartition, "block is not terminated"))
	}

	insides := xslices.Map(nodes, func(node *GroupClusterNode) sets.Set[ir.ValueID] { return node.OutsideInputs() })
	needed := sets.Union(insides...)
	needed.Insert(yield.Operands()...)
	for _, node := range nodes {
		node.GenerateOutputValues(needed)
	}
	rw.checkPartition(ops, nodes, yield)

	for v := range OutsideInputs(program, xslices.Map(ops, func(op *ir.Op) ir.OpID { return op.ID })) {
		rw.mapping.Add(v, v)
	}
	fusionOps := make([]*ir.Op, 0, len(nodes))
	for _, node := range nodes {
		fusionOps = append(fusionOps, rw.fuse(node))
	}

	for ii, v := range yield.Operands() {
		if mapped, found := rw.mapping.Lookup(v); found {
			program.SetOperand(yield, ii, mapped)
		}
	}
	originals := xslices.Map(ops, func(op *ir.Op) ir.OpID { return op.ID })
	if err := program.EraseOps(originals...); err != nil {
		panic(errors.Wrapf(ErrInconsistentPartition, "erasing fused ops: %v", err))
	}
	return fusionOps
}

// fuse creates the fusion op for node and inserts it after its last member op, and after any
// previously inserted fusion op.
func (rw *blockRewriter) fuse(node *GroupClusterNode) *ir.Op {
	ids := slices.Clone(node.Ops)
	slices.SortFunc(ids, func(a, b ir.OpID) int { return rw.positions[a] - rw.positions[b] })
	ids = slices.Compact(ids)
	groupOps := xslices.Map(ids, rw.program.Op)

	fusionOp := ReplaceWithGroupOp(rw.program, groupOps, node, rw.mapping)
	pos := rw.block.Index(xslices.Last(ids)) + 1
	if rw.lastFused != nil {
		pos = max(pos, rw.block.Index(rw.lastFused.ID)+1)
	}
	rw.program.InsertOp(rw.block, pos, fusionOp)
	rw.lastFused = fusionOp
	return fusionOp
}

// checkPartition verifies that nodes is a partition of ops that can be materialized in order.
func (rw *blockRewriter) checkPartition(ops []*ir.Op, nodes []*GroupClusterNode, yield *ir.Op) {
	owner := make(map[ir.OpID]int, len(ops))
	for nodeIdx, node := range nodes {
		if len(node.Ops) == 0 {
			panic(errors.Wrapf(ErrInconsistentPartition, "cluster #%d is empty", nodeIdx))
		}
		for _, id := range node.Ops {
			op := rw.program.Op(id)
			if op.IsErased() || op.Parent() != rw.block || op.IsYield() {
				panic(errors.Wrapf(ErrInconsistentPartition, "cluster #%d holds op #%d (%s) which is not a fusable op of the block",
					nodeIdx, id, op.Type))
			}
			if op.Body != nil {
				panic(errors.Wrapf(ErrInconsistentPartition, "cluster #%d holds region op #%d (%s)", nodeIdx, id, op.Type))
			}
			if prev, found := owner[id]; found && prev != nodeIdx {
				panic(errors.Wrapf(ErrInconsistentPartition, "op #%d (%s) is in clusters #%d and #%d",
					id, op.Type, prev, nodeIdx))
			}
			owner[id] = nodeIdx
		}
	}
	for _, op := range ops {
		if _, found := owner[op.ID]; !found {
			panic(errors.Wrapf(ErrInconsistentPartition, "op #%d (%s) is not in any cluster", op.ID, op.Type))
		}
	}

	inner := InnerValues(rw.program, xslices.Map(ops, func(op *ir.Op) ir.OpID { return op.ID }))
	available := sets.Make[ir.ValueID]()
	for nodeIdx, node := range nodes {
		for v := range node.OutsideInputs() {
			if inner.Has(v) && !available.Has(v) {
				panic(errors.Wrapf(ErrInconsistentPartition, "cluster #%d uses %s before it is produced",
					nodeIdx, rw.program.ValueName(v)))
			}
		}
		available.Insert(node.OutputValues...)
	}
	for _, v := range yield.Operands() {
		if inner.Has(v) && !available.Has(v) {
			panic(errors.Wrapf(ErrInconsistentPartition, "block output %s is not produced by any cluster",
				rw.program.ValueName(v)))
		}
	}
}
