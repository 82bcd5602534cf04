// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/gomlx/fusioncluster/types/shapes"
)

// GroupClusterNode is a growing set of ops that will be compiled as one fused kernel, plus the metadata
// the downstream scheduler needs.
//
// A node is born wrapping a single op, grows only with MergeNode, and is consumed by the rewriter.
// Ops are referenced by handle: the node never owns them.
type GroupClusterNode struct {
	program *ir.Program

	// Ops in discovery order, not necessarily the order in the block.
	Ops []ir.OpID

	// Kind is the dominant pattern kind of the ops.
	Kind ir.PatternKind

	// ReduceAxes of LoopRanges, set when a reduction is merged in.
	ReduceAxes []int

	// LoopRanges is the canonical iteration space of the group.
	LoopRanges []int

	// AlignmentSchedule holds per-op realignment hints.
	AlignmentSchedule map[ir.OpID][]ir.ScheduleInfo

	// OutputValues are the values produced by Ops that are needed outside the group.
	// See GenerateOutputValues.
	OutputValues []ir.ValueID
}

// NewGroupClusterNode returns an empty ElementWise node.
func NewGroupClusterNode(program *ir.Program) *GroupClusterNode {
	return &GroupClusterNode{
		program:           program,
		Kind:              ir.KindElementWise,
		AlignmentSchedule: make(map[ir.OpID][]ir.ScheduleInfo),
	}
}

// Clone returns a deep copy of the node.
func (n *GroupClusterNode) Clone() *GroupClusterNode {
	n2 := &GroupClusterNode{
		program:           n.program,
		Ops:               slices.Clone(n.Ops),
		Kind:              n.Kind,
		ReduceAxes:        slices.Clone(n.ReduceAxes),
		LoopRanges:        slices.Clone(n.LoopRanges),
		AlignmentSchedule: make(map[ir.OpID][]ir.ScheduleInfo, len(n.AlignmentSchedule)),
		OutputValues:      slices.Clone(n.OutputValues),
	}
	for id, infos := range n.AlignmentSchedule {
		n2.AlignmentSchedule[id] = ir.CloneScheduleInfos(infos)
	}
	return n2
}

// OutsideInputs returns the values used by the node's ops but produced outside of it.
func (n *GroupClusterNode) OutsideInputs() sets.Set[ir.ValueID] {
	return OutsideInputs(n.program, n.Ops)
}

// Contains returns whether op is one of the node's ops.
func (n *GroupClusterNode) Contains(op ir.OpID) bool {
	return slices.Contains(n.Ops, op)
}

// IsBareReshape returns whether the node is a single Reshape op.
func (n *GroupClusterNode) IsBareReshape() bool {
	return len(n.Ops) == 1 && n.program.Op(n.Ops[0]).Type == ir.OpTypeReshape
}

// isTerminalReshape returns whether the node is a single Reshape op whose only use is the block output.
func (n *GroupClusterNode) isTerminalReshape() bool {
	return n.IsBareReshape() && IsTerminalReshape(n.program, n.program.Op(n.Ops[0]))
}

// GenerateOutputValues recomputes OutputValues: the values produced by the node's ops (in op order,
// skipping a Yield) that are in needed, without repetitions.
//
// It must be called again whenever the node's ops or the needed set change.
func (n *GroupClusterNode) GenerateOutputValues(needed sets.Set[ir.ValueID]) {
	n.OutputValues = n.OutputValues[:0]
	inserted := sets.Make[ir.ValueID]()
	for _, id := range n.Ops {
		op := n.program.Op(id)
		if op.IsYield() {
			continue
		}
		for _, result := range op.Results() {
			if needed.Has(result) && !inserted.Has(result) {
				n.OutputValues = append(n.OutputValues, result)
				inserted.Insert(result)
			}
		}
	}
}

// MergeNode absorbs the ops of other that are not yet in n, with their schedule infos.
//
// If hint is not empty it is attached to every op currently in n (before the absorbed ones are added):
// the realignment applies to the absorbing side.
//
// The iteration space of the merged node is dictated by its reduction or broadcast members:
//
//   - Kind becomes the larger of both kinds.
//   - If other is a Reduction or a Broadcast, its LoopRanges are adopted.
//   - If other is a Reduction, its ReduceAxes are adopted.
//   - If n was a bare Reshape, other's LoopRanges are always adopted.
func (n *GroupClusterNode) MergeNode(other *GroupClusterNode, hint ir.ScheduleInfo) {
	wasBareReshape := n.IsBareReshape()
	present := sets.MakeWith(n.Ops...)
	if !hint.IsEmpty() {
		for _, id := range n.Ops {
			n.AlignmentSchedule[id] = append(n.AlignmentSchedule[id], hint.Clone())
		}
	}
	for _, id := range other.Ops {
		if present.Has(id) {
			continue
		}
		present.Insert(id)
		n.Ops = append(n.Ops, id)
		if infos, found := other.AlignmentSchedule[id]; found {
			n.AlignmentSchedule[id] = ir.CloneScheduleInfos(infos)
		}
	}

	if n.Kind < other.Kind {
		n.Kind = other.Kind
	}
	if other.Kind == ir.KindReduction || other.Kind == ir.KindBroadcast {
		n.LoopRanges = slices.Clone(other.LoopRanges)
	}
	if other.Kind == ir.KindReduction {
		n.ReduceAxes = slices.Clone(other.ReduceAxes)
	}
	if wasBareReshape {
		n.LoopRanges = slices.Clone(other.LoopRanges)
	}
}

// DebugString returns a multi-line description of the node: kind, iteration space and ops with their
// schedule infos.
func (n *GroupClusterNode) DebugString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type %s\n", n.Kind)
	fmt.Fprintf(&sb, "loop range\t%v (%s elements)\n", n.LoopRanges,
		humanize.Comma(int64(shapes.DimsSize(n.LoopRanges))))
	fmt.Fprintf(&sb, "reduce axis\t%v\n", n.ReduceAxes)
	for _, id := range n.Ops {
		op := n.program.Op(id)
		fmt.Fprintf(&sb, "  #%d %s", id, n.program.OpString(op))
		for _, info := range n.AlignmentSchedule[id] {
			fmt.Fprintf(&sb, " [%s]", info)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
