// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"slices"

	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/pkg/errors"
)

// Validate checks the structural invariants of the program:
//
//   - Every block is terminated by exactly one Yield, its last op.
//   - Every operand is defined before its use: earlier in the same block, before the region op in an
//     enclosing block, or as a program parameter.
//   - Region ops yield as many values as they have results.
//   - Use lists match the operands of live ops.
func (p *Program) Validate() error {
	available := sets.MakeWith(p.parameters...)
	if err := p.validateBlock(p.Body, available); err != nil {
		return err
	}
	return p.validateUses()
}

func (p *Program) validateBlock(block *Block, enclosing sets.Set[ValueID]) error {
	terminator := block.Terminator()
	if terminator == nil {
		return errors.Errorf("block owned by op #%d is not terminated by a Yield", block.owner)
	}
	available := sets.Union(enclosing)
	for pos, id := range block.ops {
		op := p.ops[id]
		if op.erased {
			return errors.Errorf("block owned by op #%d holds erased op #%d (%s)", block.owner, id, op.Type)
		}
		if op.parent != block {
			return errors.Errorf("op #%d (%s) is listed in block owned by op #%d but has another parent", id, op.Type, block.owner)
		}
		if op.IsYield() && pos != len(block.ops)-1 {
			return errors.Errorf("Yield op #%d is not the last op of its block (position %d of %d)", id, pos, len(block.ops))
		}
		for ii, operand := range op.operands {
			if !available.Has(operand) {
				return errors.Errorf("op #%d (%s) operand #%d uses value %%%d before its definition", id, op.Type, ii, operand)
			}
		}
		if op.Body != nil {
			if err := p.validateBlock(op.Body, available); err != nil {
				return errors.WithMessagef(err, "in body of op #%d (%s)", id, op.Type)
			}
			if yielded := op.Body.Terminator().NumOperands(); yielded != len(op.results) {
				return errors.Errorf("region op #%d (%s) has %d results but its body yields %d values",
					id, op.Type, len(op.results), yielded)
			}
		}
		available.Insert(op.results...)
	}
	return nil
}

func (p *Program) validateUses() error {
	for _, op := range p.ops {
		if op.erased {
			continue
		}
		for ii, operand := range op.operands {
			if !slices.Contains(p.values[operand].uses, Use{Op: op.ID, Operand: ii}) {
				return errors.Errorf("op #%d (%s) operand #%d (%%%d) is missing from the value use list", op.ID, op.Type, ii, operand)
			}
		}
	}
	for _, value := range p.values {
		for _, use := range value.uses {
			user := p.ops[use.Op]
			if user.erased {
				return errors.Errorf("value %%%d is used by erased op #%d (%s)", value.ID, user.ID, user.Type)
			}
			if use.Operand >= len(user.operands) || user.operands[use.Operand] != value.ID {
				return errors.Errorf("value %%%d use (#%d, operand %d) doesn't match the op operands", value.ID, use.Op, use.Operand)
			}
		}
	}
	return nil
}
