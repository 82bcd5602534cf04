// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/gomlx/fusioncluster/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32(dims ...int) shapes.Shape { return shapes.Make(dtypes.Float32, dims...) }

// testGraph builds a program with a single Group op in its body.
type testGraph struct {
	t     *testing.T
	p     *ir.Program
	group *ir.Op
}

func newTestGraph(t *testing.T, outputs ...shapes.Shape) *testGraph {
	p := ir.New()
	return &testGraph{t: t, p: p, group: p.NewOp(p.Body, ir.OpTypeGroup, nil, outputs, nil)}
}

func (g *testGraph) param(name string, dims ...int) ir.ValueID {
	return g.p.Parameter(name, f32(dims...))
}

// op appends an op with a single float32 result of the given dimensions.
func (g *testGraph) op(opType ir.OpType, attrs ir.Attributes, dims []int, operands ...ir.ValueID) *ir.Op {
	return g.p.NewOp(g.group.Body, opType, operands, []shapes.Shape{f32(dims...)}, attrs)
}

func (g *testGraph) finish(outputs ...ir.ValueID) *ir.Block {
	g.p.NewYield(g.group.Body, outputs...)
	g.p.NewYield(g.p.Body, g.group.Results()...)
	require.NoError(g.t, g.p.Validate())
	return g.group.Body
}

func reduceAttrs(axes ...int) ir.Attributes { return ir.Attributes{AttrReduceAxes: axes} }

func broadcastAttrs(axes []int, outShape []int) ir.Attributes {
	return ir.Attributes{AttrBroadcastAxes: axes, AttrOutShape: outShape}
}

// buildSoftmax builds softmax over the last axis of a [4, 8] input, yielding the result and the sum.
func buildSoftmax(t *testing.T) (*testGraph, *ir.Block) {
	g := newTestGraph(t, f32(4, 8), f32(4))
	x := g.param("x", 4, 8)
	m := g.op(ir.OpTypeReduceMax, reduceAttrs(1), []int{4}, x)
	bm := g.op(ir.OpTypeBroadcastInDim, broadcastAttrs([]int{0}, []int{4, 8}), []int{4, 8}, m.Result(0))
	s := g.op(ir.OpTypeSub, nil, []int{4, 8}, x, bm.Result(0))
	e := g.op(ir.OpTypeExp, nil, []int{4, 8}, s.Result(0))
	sum := g.op(ir.OpTypeReduceSum, reduceAttrs(1), []int{4}, e.Result(0))
	bs := g.op(ir.OpTypeBroadcastInDim, broadcastAttrs([]int{0}, []int{4, 8}), []int{4, 8}, sum.Result(0))
	out := g.op(ir.OpTypeDiv, nil, []int{4, 8}, e.Result(0), bs.Result(0))
	return g, g.finish(out.Result(0), sum.Result(0))
}

// requirePartition checks that nodes cover every non-terminator op of block exactly once, and that every
// value needed outside its cluster is output by exactly one cluster.
func requirePartition(t *testing.T, p *ir.Program, block *ir.Block, nodes []*GroupClusterNode) {
	seen := sets.Make[ir.OpID]()
	for _, node := range nodes {
		for _, id := range node.Ops {
			require.Falsef(t, seen.Has(id), "op #%d in more than one cluster", id)
			seen.Insert(id)
		}
	}
	for _, op := range blockOps(block) {
		require.Truef(t, seen.Has(op.ID), "op #%d (%s) not in any cluster", op.ID, op.Type)
	}
	require.Equal(t, len(blockOps(block)), seen.Len())

	inner := InnerValues(p, block.OpIDs())
	needed := sets.MakeWith(block.Terminator().Operands()...)
	for _, node := range nodes {
		needed.InsertSet(node.OutsideInputs())
	}
	for v := range needed {
		if !inner.Has(v) {
			continue
		}
		count := 0
		for _, node := range nodes {
			node.GenerateOutputValues(needed)
			for _, out := range node.OutputValues {
				if out == v {
					count++
				}
			}
		}
		assert.Equalf(t, 1, count, "value %s output by %d clusters", p.ValueName(v), count)
	}
}

func TestGroupSplitReductionThenElementWise(t *testing.T) {
	g := newTestGraph(t, f32(4))
	x := g.param("x", 4, 8)
	r := g.op(ir.OpTypeReduceSum, reduceAttrs(1), []int{4}, x)
	e := g.op(ir.OpTypeExp, nil, []int{4}, r.Result(0))
	block := g.finish(e.Result(0))

	nodes := GroupSplit(g.p, block, DefaultOracle{}, Config{})
	require.Len(t, nodes, 1)
	node := nodes[0]
	assert.ElementsMatch(t, []ir.OpID{r.ID, e.ID}, node.Ops)
	assert.Equal(t, ir.KindReduction, node.Kind)
	assert.Equal(t, []int{4, 8}, node.LoopRanges)
	assert.Equal(t, []int{1}, node.ReduceAxes)

	// The consumer is realigned to the reduction's iteration space.
	require.Len(t, node.AlignmentSchedule[e.ID], 1)
	hint := node.AlignmentSchedule[e.ID][0]
	assert.Equal(t, ir.ScheduleBroadcast, hint.Type)
	assert.Equal(t, []int{1}, hint.Axes)
	assert.Equal(t, []int{4, 8}, hint.Factors)
	assert.Empty(t, node.AlignmentSchedule[r.ID])

	// Stage 1 only keeps the reduction as a boundary.
	nodes = GroupSplit(g.p, block, DefaultOracle{}, Config{DisableStage2: true})
	require.Len(t, nodes, 2)
	assert.Equal(t, []ir.OpID{r.ID}, nodes[0].Ops)
	assert.Equal(t, []ir.OpID{e.ID}, nodes[1].Ops)
}

func TestGroupSplitIndependent(t *testing.T) {
	g := newTestGraph(t, f32(4, 4), f32(4, 4))
	x := g.param("x", 4, 4)
	y := g.param("y", 4, 4)
	a := g.op(ir.OpTypeExp, nil, []int{4, 4}, x)
	b := g.op(ir.OpTypeNeg, nil, []int{4, 4}, y)
	block := g.finish(a.Result(0), b.Result(0))

	nodes := GroupSplit(g.p, block, DefaultOracle{}, Config{})
	require.Len(t, nodes, 2)
	var got [][]ir.OpID
	for _, node := range nodes {
		got = append(got, node.Ops)
	}
	assert.ElementsMatch(t, [][]ir.OpID{{a.ID}, {b.ID}}, got)
	requirePartition(t, g.p, block, nodes)
}

func TestGroupSplitTerminalReshape(t *testing.T) {
	g := newTestGraph(t, f32(32))
	x := g.param("x", 4)
	bc := g.op(ir.OpTypeBroadcastInDim, broadcastAttrs([]int{1}, []int{8, 4}), []int{8, 4}, x)
	rs := g.op(ir.OpTypeReshape, nil, []int{32}, bc.Result(0))
	block := g.finish(rs.Result(0))
	require.True(t, IsTerminalReshape(g.p, rs))
	require.False(t, IsTerminalReshape(g.p, bc))

	nodes := GroupSplit(g.p, block, DefaultOracle{}, Config{})
	require.Len(t, nodes, 1)
	node := nodes[0]
	assert.ElementsMatch(t, []ir.OpID{bc.ID, rs.ID}, node.Ops)
	assert.Equal(t, ir.KindBroadcast, node.Kind)
	assert.Equal(t, []int{8, 4}, node.LoopRanges, "bare reshape adopts the broadcast iteration space")
}

func TestGroupSplitLeadingReduceAxis(t *testing.T) {
	g := newTestGraph(t, f32(8))
	x := g.param("x", 4, 8)
	r := g.op(ir.OpTypeReduceSum, reduceAttrs(0), []int{8}, x)
	e := g.op(ir.OpTypeExp, nil, []int{8}, r.Result(0))
	block := g.finish(e.Result(0))

	nodes := GroupSplit(g.p, block, DefaultOracle{}, Config{})
	require.Len(t, nodes, 2)
	assert.Equal(t, []ir.OpID{r.ID}, nodes[0].Ops)
	assert.Equal(t, []ir.OpID{e.ID}, nodes[1].Ops)
	_, ok := CanFuse(nodes[0], nodes[1])
	assert.False(t, ok)
}

func TestGroupSplitSoftmax(t *testing.T) {
	g, block := buildSoftmax(t)

	nodes := GroupSplit(g.p, block, DefaultOracle{}, Config{DisableStage2: true})
	require.Len(t, nodes, 3)
	requirePartition(t, g.p, block, nodes)
	assert.Equal(t, ir.KindReduction, nodes[0].Kind)
	assert.Len(t, nodes[0].Ops, 1, "first stage 1 cluster is the max reduction alone")

	nodes = GroupSplit(g.p, block, DefaultOracle{}, Config{MaxMergeRounds: 1})
	require.Len(t, nodes, 2)
	requirePartition(t, g.p, block, nodes)

	nodes = GroupSplit(g.p, block, DefaultOracle{}, Config{})
	require.Len(t, nodes, 1)
	requirePartition(t, g.p, block, nodes)
	assert.Equal(t, ir.KindReduction, nodes[0].Kind)
	assert.Equal(t, []int{4, 8}, nodes[0].LoopRanges)
	assert.Equal(t, []int{1}, nodes[0].ReduceAxes)
}

func TestGroupSplitDiamond(t *testing.T) {
	g := newTestGraph(t, f32(4))
	x := g.param("x", 4)
	a := g.op(ir.OpTypeExp, nil, []int{4}, x)
	b := g.op(ir.OpTypeNeg, nil, []int{4}, a.Result(0))
	c := g.op(ir.OpTypeAbs, nil, []int{4}, a.Result(0))
	d := g.op(ir.OpTypeAdd, nil, []int{4}, b.Result(0), c.Result(0))
	block := g.finish(d.Result(0))

	nodes := GroupSplit(g.p, block, DefaultOracle{}, Config{DisableStage2: true})
	require.Len(t, nodes, 1)
	assert.Equal(t, []ir.OpID{a.ID, b.ID, c.ID, d.ID}, nodes[0].Ops)
	assert.Equal(t, ir.KindElementWise, nodes[0].Kind)
}

func TestGroupSplitLeftovers(t *testing.T) {
	// A value yielded twice and an op without uses still get a cluster.
	g := newTestGraph(t, f32(4), f32(4))
	x := g.param("x", 4)
	a := g.op(ir.OpTypeExp, nil, []int{4}, x)
	dead := g.op(ir.OpTypeNeg, nil, []int{4}, x)
	block := g.finish(a.Result(0), a.Result(0))

	nodes := GroupSplit(g.p, block, DefaultOracle{}, Config{})
	require.Len(t, nodes, 2)
	requirePartition(t, g.p, block, nodes)
	var got [][]ir.OpID
	for _, node := range nodes {
		got = append(got, node.Ops)
	}
	assert.ElementsMatch(t, [][]ir.OpID{{a.ID}, {dead.ID}}, got)
}

func TestGroupSplitUnsupported(t *testing.T) {
	g := newTestGraph(t, f32(4, 4))
	x := g.param("x", 4, 4)
	a := g.op(ir.OpTypeExp, nil, []int{4, 4}, x)
	dot := g.op(ir.OpTypeDotGeneral, nil, []int{4, 4}, a.Result(0), x)
	block := g.finish(dot.Result(0))

	err := exceptions.TryCatch[error](func() { GroupSplit(g.p, block, DefaultOracle{}, Config{}) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedOp))
	assert.Contains(t, err.Error(), "DotGeneral")

	// Reductions without axes can't be clustered either.
	g2 := newTestGraph(t, f32(4))
	y := g2.param("y", 4, 8)
	r := g2.op(ir.OpTypeReduceSum, nil, []int{4}, y)
	block2 := g2.finish(r.Result(0))
	err = exceptions.TryCatch[error](func() { GroupSplit(g2.p, block2, DefaultOracle{}, Config{}) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedOp))

	// Nor with an empty list of axes.
	g3 := newTestGraph(t, f32(4, 8))
	z := g3.param("z", 4, 8)
	r3 := g3.op(ir.OpTypeReduceSum, ir.Attributes{AttrReduceAxes: []int{}}, []int{4, 8}, z)
	block3 := g3.finish(r3.Result(0))
	err = exceptions.TryCatch[error](func() { GroupSplit(g3.p, block3, DefaultOracle{}, Config{}) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedOp))
	assert.Contains(t, err.Error(), "reduce axes")
}

func TestContractionCycle(t *testing.T) {
	// 0 -> 1 -> 2 and 0 -> 2.
	c := newContraction([][]int{nil, {0}, {1, 0}})
	assert.True(t, c.createsCycle(0, 2), "0 reaches 2 through 1")
	assert.False(t, c.createsCycle(1, 2))
	assert.False(t, c.createsCycle(0, 1))

	c.merge(1, 2)
	assert.Equal(t, c.groupOf[2], c.groupOf[1])
	assert.False(t, c.createsCycle(0, 2), "1 and 2 are now the same group")
}
