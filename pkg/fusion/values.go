// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
)

// InnerValues returns every value produced by the given ops.
func InnerValues(program *ir.Program, ops []ir.OpID) sets.Set[ir.ValueID] {
	inner := sets.Make[ir.ValueID](len(ops))
	for _, id := range ops {
		inner.Insert(program.Op(id).Results()...)
	}
	return inner
}

// OutsideInputs returns every operand of the given ops that is not produced by one of them: the values
// crossing the boundary of the group inwards.
func OutsideInputs(program *ir.Program, ops []ir.OpID) sets.Set[ir.ValueID] {
	inner := InnerValues(program, ops)
	outside := sets.Make[ir.ValueID]()
	for _, id := range ops {
		for _, operand := range program.Op(id).Operands() {
			if !inner.Has(operand) {
				outside.Insert(operand)
			}
		}
	}
	return outside
}

// IsTerminalReshape returns whether op produces exactly one result, used exactly once, by the
// terminating Yield of its own block.
func IsTerminalReshape(program *ir.Program, op *ir.Op) bool {
	return op.NumResults() == 1 && usedOnlyByYield(program, op)
}

// usedOnlyByYield returns whether the first result of op has a single use, by the terminator of op's block.
func usedOnlyByYield(program *ir.Program, op *ir.Op) bool {
	if op.NumResults() == 0 {
		return false
	}
	value := program.Value(op.Result(0))
	if value.NumUses() != 1 {
		return false
	}
	user := program.Op(value.Uses()[0].Op)
	return user.IsYield() && user.Parent() != nil && user.Parent() == op.Parent()
}

// predecessorOps returns the producers of op's operands that are among the inner values of the
// block being clustered, in operand order. Repeated producers are listed once.
func predecessorOps(program *ir.Program, inner sets.Set[ir.ValueID], op *ir.Op) []*ir.Op {
	var preds []*ir.Op
	seen := sets.Make[ir.OpID]()
	for _, operand := range op.Operands() {
		if !inner.Has(operand) {
			continue
		}
		producer := program.Producer(operand)
		if seen.Has(producer.ID) {
			continue
		}
		seen.Insert(producer.ID)
		preds = append(preds, producer)
	}
	return preds
}
