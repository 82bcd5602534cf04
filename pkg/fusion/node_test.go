// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"testing"

	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleton(p *ir.Program, op *ir.Op, kind ir.PatternKind, loopRanges []int, reduceAxes []int) *GroupClusterNode {
	node := NewGroupClusterNode(p)
	node.Ops = []ir.OpID{op.ID}
	node.Kind = kind
	node.LoopRanges = loopRanges
	node.ReduceAxes = reduceAxes
	return node
}

func TestMergeNode(t *testing.T) {
	g := newTestGraph(t, f32(4))
	x := g.param("x", 4, 8)
	r := g.op(ir.OpTypeReduceSum, reduceAttrs(1), []int{4}, x)
	e := g.op(ir.OpTypeExp, nil, []int{4}, r.Result(0))
	g.finish(e.Result(0))
	hint := ir.ScheduleInfo{Type: ir.ScheduleBroadcast, Axes: []int{1}, Factors: []int{4, 8}}

	t.Run("ElementWiseAbsorbsReduction", func(t *testing.T) {
		consumer := singleton(g.p, e, ir.KindElementWise, []int{4}, nil)
		reduction := singleton(g.p, r, ir.KindReduction, []int{4, 8}, []int{1})
		consumer.MergeNode(reduction, hint)
		assert.Equal(t, []ir.OpID{e.ID, r.ID}, consumer.Ops)
		assert.Equal(t, ir.KindReduction, consumer.Kind)
		assert.Equal(t, []int{4, 8}, consumer.LoopRanges)
		assert.Equal(t, []int{1}, consumer.ReduceAxes)
		assert.Equal(t, []ir.ScheduleInfo{hint}, consumer.AlignmentSchedule[e.ID], "hint goes to the absorbing side")
		assert.Empty(t, consumer.AlignmentSchedule[r.ID])

		// Merging again without a hint changes nothing.
		consumer.MergeNode(reduction, ir.ScheduleInfo{})
		assert.Len(t, consumer.Ops, 2)
		assert.Len(t, consumer.AlignmentSchedule[e.ID], 1)
	})

	t.Run("ReductionAbsorbsElementWise", func(t *testing.T) {
		reduction := singleton(g.p, r, ir.KindReduction, []int{4, 8}, []int{1})
		consumer := singleton(g.p, e, ir.KindElementWise, []int{4}, nil)
		reduction.MergeNode(consumer, ir.ScheduleInfo{})
		assert.Equal(t, ir.KindReduction, reduction.Kind)
		assert.Equal(t, []int{4, 8}, reduction.LoopRanges, "element-wise ranges never win")
		assert.Equal(t, []int{1}, reduction.ReduceAxes)
	})

	t.Run("BroadcastRanges", func(t *testing.T) {
		ew := singleton(g.p, e, ir.KindElementWise, []int{4}, nil)
		bc := singleton(g.p, r, ir.KindBroadcast, []int{2, 4}, nil)
		bc.AlignmentSchedule[r.ID] = []ir.ScheduleInfo{hint}
		ew.MergeNode(bc, ir.ScheduleInfo{})
		assert.Equal(t, ir.KindBroadcast, ew.Kind)
		assert.Equal(t, []int{2, 4}, ew.LoopRanges)
		assert.Nil(t, ew.ReduceAxes)
		assert.Equal(t, []ir.ScheduleInfo{hint}, ew.AlignmentSchedule[r.ID], "absorbed schedule infos are copied")

		// Copies are independent.
		ew.AlignmentSchedule[r.ID][0].Axes[0] = 7
		assert.Equal(t, []int{1}, bc.AlignmentSchedule[r.ID][0].Axes)
	})
}

func TestMergeNodeBareReshape(t *testing.T) {
	g := newTestGraph(t, f32(32))
	x := g.param("x", 8, 4)
	e := g.op(ir.OpTypeExp, nil, []int{8, 4}, x)
	rs := g.op(ir.OpTypeReshape, nil, []int{32}, e.Result(0))
	g.finish(rs.Result(0))

	reshape := singleton(g.p, rs, ir.KindElementWise, []int{32}, nil)
	require.True(t, reshape.IsBareReshape())
	reshape.MergeNode(singleton(g.p, e, ir.KindElementWise, []int{8, 4}, nil), ir.ScheduleInfo{})
	assert.Equal(t, []int{8, 4}, reshape.LoopRanges)
	assert.False(t, reshape.IsBareReshape())

	// A regular element-wise receiver keeps its ranges.
	ew := singleton(g.p, e, ir.KindElementWise, []int{8, 4}, nil)
	ew.MergeNode(singleton(g.p, rs, ir.KindElementWise, []int{32}, nil), ir.ScheduleInfo{})
	assert.Equal(t, []int{8, 4}, ew.LoopRanges)
}

func TestGenerateOutputValues(t *testing.T) {
	g := newTestGraph(t, f32(4), f32(4))
	x := g.param("x", 4)
	a := g.op(ir.OpTypeExp, nil, []int{4}, x)
	b := g.op(ir.OpTypeNeg, nil, []int{4}, a.Result(0))
	c := g.op(ir.OpTypeAbs, nil, []int{4}, b.Result(0))
	block := g.finish(c.Result(0), a.Result(0))

	node := NewGroupClusterNode(g.p)
	node.Ops = []ir.OpID{c.ID, a.ID, b.ID, block.Terminator().ID}
	needed := sets.MakeWith(a.Result(0), c.Result(0), x)
	node.GenerateOutputValues(needed)
	assert.Equal(t, []ir.ValueID{c.Result(0), a.Result(0)}, node.OutputValues, "member order, no inputs")
	first := append([]ir.ValueID(nil), node.OutputValues...)
	node.GenerateOutputValues(needed)
	assert.Equal(t, first, node.OutputValues)

	assert.True(t, node.OutsideInputs().Equal(sets.MakeWith(x)))
	clone := node.Clone()
	clone.Ops = clone.Ops[:1]
	clone.GenerateOutputValues(needed)
	assert.Equal(t, []ir.ValueID{c.Result(0)}, clone.OutputValues)
	assert.Len(t, node.OutputValues, 2)
	assert.True(t, node.Contains(b.ID))
	assert.False(t, clone.Contains(b.ID))

	text := node.DebugString()
	assert.Contains(t, text, "ElementWise")
	assert.Contains(t, text, "Neg")
}

func TestDebugStringSize(t *testing.T) {
	g := newTestGraph(t, f32(1000, 1000))
	x := g.param("x", 1000, 1000)
	e := g.op(ir.OpTypeExp, nil, []int{1000, 1000}, x)
	g.finish(e.Result(0))
	node := singleton(g.p, e, ir.KindElementWise, []int{1000, 1000}, nil)
	node.AlignmentSchedule[e.ID] = []ir.ScheduleInfo{{Type: ir.ScheduleBroadcast, Axes: []int{0}, Factors: []int{1000, 1000}}}
	text := node.DebugString()
	assert.Contains(t, text, "1,000,000 elements")
	assert.Contains(t, text, "broadcast(axes=[0], factors=[1000 1000])")
}
