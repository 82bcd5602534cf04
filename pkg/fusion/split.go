// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"slices"

	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/gomlx/fusioncluster/pkg/support/xslices"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// GroupSplit partitions the ops of block (its terminator excluded) into disjoint clusters that cover all
// of them, returned in topological order.
//
// Stage 1 scans the ops in block order, greedily merging each op with the clusters of its compatible
// predecessors. Stage 2 repeatedly merges clusters into their consumers, nearest predecessor first, until
// a fixed point (see Config for how to limit it).
//
// It panics with ErrCycle if the clusters can't be ordered, and with ErrUnsupportedOp if:
//
//   - the oracle classifies an op as neither ElementWise, Broadcast nor Reduction;
//   - a reduction has no operand, or an empty list of reduce axes (a reduction over no axes is not
//     clustered, even though CanFuse could handle it);
//   - an element-wise or broadcast op has no results.
func GroupSplit(program *ir.Program, block *ir.Block, oracle Oracle, config Config) []*GroupClusterNode {
	nodes := splitStageOne(program, block, oracle)
	klog.V(1).Infof("fusion: block of %d ops split into %d stage 1 clusters", len(blockOps(block)), len(nodes))
	if len(nodes) <= 1 {
		return nodes
	}
	if !config.DisableStage2 {
		nodes = mergeStageTwo(nodes, config.MaxMergeRounds)
		if len(nodes) == 1 {
			return nodes
		}
	}
	order, _ := SortNodeList(nodes)
	return xslices.Map(order, func(idx int) *GroupClusterNode { return nodes[idx] })
}

// blockOps returns the ops of block except its terminator.
func blockOps(block *ir.Block) []*ir.Op {
	ops := block.Ops()
	if len(ops) > 0 && xslices.Last(ops).IsYield() {
		ops = ops[:len(ops)-1]
	}
	return ops
}

// stageOne holds the state of the linear scan of stage 1.
type stageOne struct {
	program *ir.Program
	oracle  Oracle

	// owner maps visited ops to the cluster currently holding them.
	owner map[ir.OpID]*GroupClusterNode

	// frozen clusters were already output, they are never merged again.
	frozen sets.Set[*GroupClusterNode]

	// absorbed clusters were merged into another one and are empty husks.
	absorbed sets.Set[*GroupClusterNode]

	created []*GroupClusterNode
	output  []*GroupClusterNode
}

func splitStageOne(program *ir.Program, block *ir.Block, oracle Oracle) []*GroupClusterNode {
	s := &stageOne{
		program:  program,
		oracle:   oracle,
		owner:    make(map[ir.OpID]*GroupClusterNode),
		frozen:   sets.Make[*GroupClusterNode](),
		absorbed: sets.Make[*GroupClusterNode](),
	}
	ops := blockOps(block)
	inner := InnerValues(program, xslices.Map(ops, func(op *ir.Op) ir.OpID { return op.ID }))

	yieldOutputs := sets.Make[ir.OpID]()
	if yield := block.Terminator(); yield != nil {
		for _, v := range yield.Operands() {
			producer := program.Producer(v)
			if producer != nil && producer.Parent() == block && usedOnlyByYield(program, producer) {
				yieldOutputs.Insert(producer.ID)
			}
		}
	}

	for _, op := range ops {
		node, hint := s.classify(op)
		s.created = append(s.created, node)
		for _, pred := range predecessorOps(program, inner, op) {
			predNode, found := s.owner[pred.ID]
			if !found || predNode == node {
				continue
			}
			merge := canOpMergeNode(oracle, pred, op, predNode, node)
			flush := shouldOutputPreNode(oracle, pred, op, predNode, node)
			if merge && !s.frozen.Has(predNode) {
				s.absorb(node, predNode, hint)
			}
			if flush {
				s.flush(predNode)
			}
		}
		node.Ops = append(node.Ops, op.ID)
		s.owner[op.ID] = node
		if yieldOutputs.Has(op.ID) || oracle.OpKind(op) == ir.KindReduction {
			s.flush(node)
		}
	}

	// Clusters never output by the scan: ops without uses, or whose values are yielded more than once.
	for _, node := range s.created {
		if !s.absorbed.Has(node) && !s.frozen.Has(node) && len(node.Ops) > 0 {
			s.flush(node)
		}
	}
	return s.output
}

// classify creates the singleton cluster for op (without adding op to it yet) and the schedule hint
// its merges must carry.
func (s *stageOne) classify(op *ir.Op) (*GroupClusterNode, ir.ScheduleInfo) {
	node := NewGroupClusterNode(s.program)
	node.Kind = s.oracle.OpKind(op)
	var hint ir.ScheduleInfo
	switch node.Kind {
	case ir.KindReduction:
		node.ReduceAxes = s.oracle.ReduceAxes(op)
		if op.NumOperands() == 0 || len(node.ReduceAxes) == 0 {
			panic(errors.Wrapf(ErrUnsupportedOp, "reduction op #%d (%s) must have an operand and reduce axes",
				op.ID, op.Type))
		}
		node.LoopRanges = slices.Clone(s.program.Shape(op.Operand(0)).Dimensions)
	case ir.KindElementWise, ir.KindBroadcast:
		if op.NumResults() == 0 {
			panic(errors.Wrapf(ErrUnsupportedOp, "op #%d (%s) has no results", op.ID, op.Type))
		}
		node.LoopRanges = slices.Clone(s.program.Shape(op.Result(0)).Dimensions)
		if node.Kind == ir.KindBroadcast {
			hint = ir.ScheduleInfo{
				Type:    ir.ScheduleBroadcast,
				Axes:    s.oracle.BroadcastAxes(op),
				Factors: s.oracle.OutShape(op),
			}
		}
	default:
		panic(errors.Wrapf(ErrUnsupportedOp, "op #%d (%s) has pattern kind %s, only ElementWise, Broadcast and Reduction are supported",
			op.ID, op.Type, node.Kind))
	}
	return node, hint
}

// absorb moves all ops of from into node.
func (s *stageOne) absorb(node, from *GroupClusterNode, hint ir.ScheduleInfo) {
	node.MergeNode(from, hint)
	for _, id := range from.Ops {
		s.owner[id] = node
	}
	from.Ops = nil
	s.absorbed.Insert(from)
}

// flush outputs node, at most once.
func (s *stageOne) flush(node *GroupClusterNode) {
	if s.frozen.Has(node) {
		return
	}
	s.frozen.Insert(node)
	s.output = append(s.output, node)
}

// mergeStageTwo merges clusters into their consumers until a fixed point, or for at most maxRounds
// rounds if maxRounds > 0.
func mergeStageTwo(nodes []*GroupClusterNode, maxRounds int) []*GroupClusterNode {
	for round := 0; maxRounds <= 0 || round < maxRounds; round++ {
		next, fused := mergeRound(nodes)
		klog.V(2).Infof("fusion: stage 2 round %d: %d -> %d clusters", round, len(nodes), len(next))
		if len(next) >= len(nodes) {
			break
		}
		nodes = next
		if !fused {
			break
		}
	}
	return nodes
}

// mergeRound visits the clusters downstream to upstream, and lets each one absorb its direct
// predecessors (nearest first) accepted by CanFuse. Each cluster is output exactly once.
func mergeRound(nodes []*GroupClusterNode) (next []*GroupClusterNode, fused bool) {
	order, preds := SortNodeList(nodes)
	contracted := newContraction(preds)
	consumed := sets.Make[int]()
	for _, idx := range slices.Backward(order) {
		if consumed.Has(idx) {
			continue
		}
		node := nodes[idx]
		for _, predIdx := range preds[idx] {
			if consumed.Has(predIdx) {
				continue
			}
			hint, ok := CanFuse(nodes[predIdx], node)
			if !ok || contracted.createsCycle(predIdx, idx) {
				continue
			}
			node.MergeNode(nodes[predIdx], hint)
			contracted.merge(predIdx, idx)
			consumed.Insert(predIdx)
			fused = true
		}
		next = xslices.Prepend(next, node)
	}
	return next, fused
}

// contraction tracks which clusters of a round were merged together, to detect merges that would
// make the cluster graph cyclic.
type contraction struct {
	succs   [][]int
	groupOf []int
	members [][]int
}

func newContraction(preds [][]int) *contraction {
	n := len(preds)
	c := &contraction{
		succs:   make([][]int, n),
		groupOf: make([]int, n),
		members: make([][]int, n),
	}
	for j, ps := range preds {
		for _, i := range ps {
			c.succs[i] = append(c.succs[i], j)
		}
	}
	for i := range n {
		c.groupOf[i] = i
		c.members[i] = []int{i}
	}
	return c
}

// createsCycle returns whether merging the group of from into the group of to would create a cycle:
// that is, whether to can be reached from from through some other group.
func (c *contraction) createsCycle(from, to int) bool {
	src, dst := c.groupOf[from], c.groupOf[to]
	visited := sets.MakeWith(src)
	var queue []int
	push := func(group int) {
		for _, member := range c.members[group] {
			for _, succ := range c.succs[member] {
				g := c.groupOf[succ]
				if g == dst || visited.Has(g) {
					continue
				}
				visited.Insert(g)
				queue = append(queue, g)
			}
		}
	}
	push(src)
	for len(queue) > 0 {
		group := queue[0]
		queue = queue[1:]
		for _, member := range c.members[group] {
			for _, succ := range c.succs[member] {
				if c.groupOf[succ] == dst {
					return true
				}
			}
		}
		push(group)
	}
	return false
}

// merge moves the members of from's group into to's group.
func (c *contraction) merge(from, to int) {
	src, dst := c.groupOf[from], c.groupOf[to]
	if src == dst {
		return
	}
	for _, member := range c.members[src] {
		c.groupOf[member] = dst
	}
	c.members[dst] = append(c.members[dst], c.members[src]...)
	c.members[src] = nil
}
