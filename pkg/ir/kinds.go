// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// PatternKind classifies an op (or a group of fused ops) by its iteration pattern.
//
// Supported kinds are ordered KindElementWise < KindBroadcast < KindReduction: when two groups are fused,
// the fused group takes the larger of the two kinds.
type PatternKind int

//go:generate go tool enumer -type=PatternKind -trimprefix=Kind -output=gen_patternkind_enumer.go kinds.go

const (
	KindUnsupported PatternKind = iota
	KindElementWise
	KindBroadcast
	KindReduction
)

// IsSupported returns whether k is one of ElementWise, Broadcast or Reduction.
func (k PatternKind) IsSupported() bool {
	return k >= KindElementWise && k <= KindReduction
}

// ScheduleBroadcast is the only non-empty ScheduleInfo.Type so far.
const ScheduleBroadcast = "broadcast"

// ScheduleInfo tells the downstream scheduler that an op's iteration space must be reinterpreted
// using Axes and Factors (a shape) before being fused with its neighbours.
//
// The zero value means "no adjustment".
type ScheduleInfo struct {
	Type    string
	Axes    []int
	Factors []int
}

// IsEmpty returns whether s carries no adjustment.
func (s ScheduleInfo) IsEmpty() bool { return s.Type == "" }

// Clone returns a deep copy of s.
func (s ScheduleInfo) Clone() ScheduleInfo {
	return ScheduleInfo{Type: s.Type, Axes: slices.Clone(s.Axes), Factors: slices.Clone(s.Factors)}
}

// String implements fmt.Stringer.
func (s ScheduleInfo) String() string {
	if s.IsEmpty() {
		return "<none>"
	}
	return fmt.Sprintf("%s(axes=%v, factors=%v)", s.Type, s.Axes, s.Factors)
}

// GroupInfo is the metadata attached to an OpTypeFusion op: everything the downstream
// scheduler/code generator needs to emit a single kernel for the fused body.
type GroupInfo struct {
	// GroupID is the names of the fused ops, in body order, joined by "_".
	GroupID string

	// LoopRanges is the canonical iteration space of the fused kernel.
	LoopRanges []int

	// ReduceAxes of the iteration space, if Kind is KindReduction.
	ReduceAxes []int

	// Kind is the dominant pattern kind of the fused ops.
	Kind PatternKind

	// AlignmentSchedule holds per-op (ops of the fusion body) realignment hints.
	AlignmentSchedule map[OpID][]ScheduleInfo
}

// Clone returns a deep copy of the GroupInfo.
func (g *GroupInfo) Clone() *GroupInfo {
	if g == nil {
		return nil
	}
	g2 := &GroupInfo{
		GroupID:    g.GroupID,
		LoopRanges: slices.Clone(g.LoopRanges),
		ReduceAxes: slices.Clone(g.ReduceAxes),
		Kind:       g.Kind,
	}
	if g.AlignmentSchedule != nil {
		g2.AlignmentSchedule = make(map[OpID][]ScheduleInfo, len(g.AlignmentSchedule))
		for opID, infos := range g.AlignmentSchedule {
			g2.AlignmentSchedule[opID] = CloneScheduleInfos(infos)
		}
	}
	return g2
}

// String implements fmt.Stringer.
func (g *GroupInfo) String() string {
	if g == nil {
		return "<nil>"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "kind=%s loop_ranges=%v", g.Kind, g.LoopRanges)
	if len(g.ReduceAxes) > 0 {
		fmt.Fprintf(&sb, " reduce_axes=%v", g.ReduceAxes)
	}
	opIDs := slices.Sorted(maps.Keys(g.AlignmentSchedule))
	for _, opID := range opIDs {
		for _, info := range g.AlignmentSchedule[opID] {
			fmt.Fprintf(&sb, " align[#%d]=%s", opID, info)
		}
	}
	return sb.String()
}

// CloneScheduleInfos returns a deep copy of infos. It returns nil for nil.
func CloneScheduleInfos(infos []ScheduleInfo) []ScheduleInfo {
	if infos == nil {
		return nil
	}
	cloned := make([]ScheduleInfo, len(infos))
	for ii, info := range infos {
		cloned[ii] = info.Clone()
	}
	return cloned
}
