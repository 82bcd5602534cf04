// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/fusioncluster/pkg/support/sets"
	"github.com/gomlx/fusioncluster/types/shapes"
	"github.com/pkg/errors"
)

// ValueMapping maps values of the original program to their replacements, used when cloning ops.
type ValueMapping struct {
	m map[ValueID]ValueID
}

// NewValueMapping returns an empty mapping.
func NewValueMapping() *ValueMapping {
	return &ValueMapping{m: make(map[ValueID]ValueID)}
}

// Add maps from to to, replacing any previous mapping of from.
func (m *ValueMapping) Add(from, to ValueID) {
	m.m[from] = to
}

// Lookup returns the value mapped from v.
func (m *ValueMapping) Lookup(v ValueID) (ValueID, bool) {
	to, found := m.m[v]
	if !found {
		return InvalidValue, false
	}
	return to, true
}

// Has returns whether v is mapped.
func (m *ValueMapping) Has(v ValueID) bool {
	_, found := m.m[v]
	return found
}

// Len returns the number of mapped values.
func (m *ValueMapping) Len() int { return len(m.m) }

// CloneOp creates a detached copy of op, with operands translated through mapping.
//
// The results of the clone are new values with the same shapes (so shape metadata propagates),
// and are added to mapping. It returns an error if an operand has no entry in mapping.
// Region ops can't be cloned.
func (p *Program) CloneOp(op *Op, mapping *ValueMapping) (*Op, error) {
	if op.Body != nil {
		return nil, errors.Errorf("ir.Program.CloneOp(#%d %s): cloning region ops is not supported", op.ID, op.Type)
	}
	operands := make([]ValueID, len(op.operands))
	for ii, operand := range op.operands {
		mapped, found := mapping.Lookup(operand)
		if !found {
			return nil, errors.Errorf("ir.Program.CloneOp(#%d %s): operand #%d (%%%d) has no entry in the value mapping",
				op.ID, op.Type, ii, operand)
		}
		operands[ii] = mapped
	}
	resultShapes := make([]shapes.Shape, len(op.results))
	for ii, result := range op.results {
		resultShapes[ii] = p.values[result].Shape.Clone()
	}
	clone := p.CreateOp(op.Type, operands, resultShapes, op.Attributes.Clone())
	clone.Name = op.Name
	for ii, result := range op.results {
		mapping.Add(result, clone.results[ii])
	}
	return clone, nil
}

// SetOperand changes the operand idx of op to v, keeping the use lists up-to-date.
func (p *Program) SetOperand(op *Op, idx int, v ValueID) {
	if idx < 0 || idx >= len(op.operands) {
		exceptions.Panicf("ir.Program.SetOperand(#%d %s): operand index %d out of range", op.ID, op.Type, idx)
	}
	old := op.operands[idx]
	if old == v {
		return
	}
	p.removeUse(old, Use{Op: op.ID, Operand: idx})
	op.operands[idx] = v
	p.Value(v).uses = append(p.values[v].uses, Use{Op: op.ID, Operand: idx})
}

// ReplaceAllUsesWith makes every user of from use to instead. It returns the number of replaced uses.
func (p *Program) ReplaceAllUsesWith(from, to ValueID) int {
	if from == to {
		return 0
	}
	uses := p.Value(from).Uses()
	for _, use := range uses {
		p.SetOperand(p.ops[use.Op], use.Operand, to)
	}
	return len(uses)
}

func (p *Program) removeUse(v ValueID, use Use) {
	value := p.values[v]
	idx := slices.Index(value.uses, use)
	if idx < 0 {
		exceptions.Panicf("ir.Program: use (#%d, operand %d) of value %%%d not registered", use.Op, use.Operand, v)
	}
	value.uses = slices.Delete(value.uses, idx, idx+1)
}

// EraseOps removes the given ops (and the contents of their bodies) from the program.
//
// It fails, without changing anything, if a result of an erased op is still used by an op that is
// not being erased.
func (p *Program) EraseOps(ids ...OpID) error {
	toErase := sets.Make[OpID](len(ids))
	var ordered []OpID
	var collect func(id OpID)
	collect = func(id OpID) {
		if toErase.Has(id) {
			return
		}
		toErase.Insert(id)
		ordered = append(ordered, id)
		if body := p.ops[id].Body; body != nil {
			for _, inner := range body.ops {
				collect(inner)
			}
		}
	}
	for _, id := range ids {
		op := p.Op(id)
		if op.erased {
			return errors.Errorf("ir.Program.EraseOps: op #%d (%s) already erased", id, op.Type)
		}
		collect(id)
	}
	for _, id := range ordered {
		for _, result := range p.ops[id].results {
			for _, use := range p.values[result].uses {
				if !toErase.Has(use.Op) {
					return errors.Errorf("ir.Program.EraseOps: result %%%d of op #%d (%s) is still used by op #%d (%s)",
						result, id, p.ops[id].Type, use.Op, p.ops[use.Op].Type)
				}
			}
		}
	}
	for _, id := range ordered {
		op := p.ops[id]
		for ii, operand := range op.operands {
			p.removeUse(operand, Use{Op: id, Operand: ii})
		}
	}
	for _, id := range ordered {
		op := p.ops[id]
		if op.parent != nil {
			if pos := op.parent.Index(id); pos >= 0 {
				op.parent.ops = slices.Delete(op.parent.ops, pos, pos+1)
			}
		}
		op.parent = nil
		op.erased = true
	}
	return nil
}
