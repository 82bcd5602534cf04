// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ir defines the operation graph the fusion pass works on.
//
// A Program is an arena of values and operations addressed by stable handles (ValueID and OpID):
// handles are indices into the arena and are never reused, so erasing or cloning operations never
// invalidates outstanding references. Operations live in ordered Blocks terminated by a Yield op,
// whose operands are the block's outputs. Region ops (Group and Fusion) own a body Block, and ops
// in a body block may use any value defined before the region op in an enclosing block.
//
// Program building methods panic (with github.com/gomlx/exceptions) on misuse, like graph building
// in GoMLX. Rewrite-time mutation methods that can legitimately fail return errors instead.
package ir

import (
	"maps"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/fusioncluster/types/shapes"
)

// OpID is the handle of an Op in a Program.
type OpID int32

// ValueID is the handle of a Value in a Program.
type ValueID int32

const (
	// InvalidOp is used as the producer of program parameters.
	InvalidOp OpID = -1

	// InvalidValue is returned by lookups that fail.
	InvalidValue ValueID = -1
)

// Use is one use of a Value: the operand Operand of op Op.
type Use struct {
	Op      OpID
	Operand int
}

// Value is a single typed result produced by exactly one op, or a program parameter.
type Value struct {
	ID    ValueID
	Name  string
	Shape shapes.Shape

	// Producer is the op that produced the value, or InvalidOp for parameters.
	Producer OpID

	// ResultIndex is the index of the value in its producer results.
	ResultIndex int

	uses []Use
}

// Uses returns a copy of the current uses of the value, in the order they were created.
func (v *Value) Uses() []Use { return slices.Clone(v.uses) }

// NumUses returns the number of uses of the value.
func (v *Value) NumUses() int { return len(v.uses) }

// IsParameter returns whether v is a program parameter.
func (v *Value) IsParameter() bool { return v.Producer == InvalidOp }

// Attributes of an op. Integer lists are stored as []int, see Ints.
type Attributes map[string]any

// Ints returns the attribute name as a list of ints. It accepts []int, []int64 and []any holding
// integers (as produced by decoders). It returns false if the attribute is missing or has another type.
func (a Attributes) Ints(name string) ([]int, bool) {
	raw, found := a[name]
	if !found {
		return nil, false
	}
	switch v := raw.(type) {
	case []int:
		return slices.Clone(v), true
	case []int64:
		ints := make([]int, len(v))
		for ii, x := range v {
			ints[ii] = int(x)
		}
		return ints, true
	case []any:
		ints := make([]int, len(v))
		for ii, x := range v {
			switch xv := x.(type) {
			case int:
				ints[ii] = xv
			case int64:
				ints[ii] = int(xv)
			default:
				return nil, false
			}
		}
		return ints, true
	}
	return nil, false
}

// Clone returns a copy of the attributes. Integer lists are deep-copied.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	a2 := maps.Clone(a)
	for key, value := range a2 {
		if ints, ok := value.([]int); ok {
			a2[key] = slices.Clone(ints)
		}
	}
	return a2
}

// Op is one operation of the Program.
type Op struct {
	ID         OpID
	Type       OpType
	Name       string
	Attributes Attributes

	// Body is set for region ops (OpTypeGroup and OpTypeFusion).
	Body *Block

	// Group is set for OpTypeFusion ops.
	Group *GroupInfo

	operands []ValueID
	results  []ValueID
	parent   *Block
	erased   bool
}

// Operands returns the op operands. The returned slice must not be modified, use Program.SetOperand.
func (op *Op) Operands() []ValueID { return op.operands }

// Operand returns the i-th operand.
func (op *Op) Operand(i int) ValueID { return op.operands[i] }

// NumOperands returns the number of operands.
func (op *Op) NumOperands() int { return len(op.operands) }

// Results returns the values produced by the op. The returned slice must not be modified.
func (op *Op) Results() []ValueID { return op.results }

// Result returns the i-th result.
func (op *Op) Result(i int) ValueID { return op.results[i] }

// NumResults returns the number of results.
func (op *Op) NumResults() int { return len(op.results) }

// Parent returns the block holding the op, or nil if the op is detached (or erased).
func (op *Op) Parent() *Block { return op.parent }

// IsErased returns whether the op was erased from the program.
func (op *Op) IsErased() bool { return op.erased }

// IsYield returns whether this is a block terminator.
func (op *Op) IsYield() bool { return op.Type == OpTypeYield }

// Block is an ordered list of ops, terminated by a Yield op once complete.
type Block struct {
	program *Program
	owner   OpID
	ops     []OpID
}

// Owner returns the region op that owns the block, or InvalidOp for the program body.
func (b *Block) Owner() OpID { return b.owner }

// Len returns the number of ops in the block, including the terminator.
func (b *Block) Len() int { return len(b.ops) }

// At returns the op at position i.
func (b *Block) At(i int) *Op { return b.program.ops[b.ops[i]] }

// OpIDs returns a copy of the ids of the ops in the block, in order.
func (b *Block) OpIDs() []OpID { return slices.Clone(b.ops) }

// Ops returns the ops of the block, in order, including the terminator.
func (b *Block) Ops() []*Op {
	ops := make([]*Op, len(b.ops))
	for ii, id := range b.ops {
		ops[ii] = b.program.ops[id]
	}
	return ops
}

// Index returns the position of the op in the block, or -1 if it is not in the block.
func (b *Block) Index(id OpID) int {
	return slices.Index(b.ops, id)
}

// Terminator returns the Yield op ending the block, or nil if the block is not terminated yet.
func (b *Block) Terminator() *Op {
	if len(b.ops) == 0 {
		return nil
	}
	last := b.program.ops[b.ops[len(b.ops)-1]]
	if !last.IsYield() {
		return nil
	}
	return last
}

// Program is the arena holding all values and ops.
type Program struct {
	values     []*Value
	ops        []*Op
	parameters []ValueID

	// Body is the top-level block of the program. Its Yield operands are the program outputs.
	Body *Block
}

// New creates an empty Program.
func New() *Program {
	p := &Program{}
	p.Body = &Block{program: p, owner: InvalidOp}
	return p
}

// Parameter creates a new program input with the given name and shape.
func (p *Program) Parameter(name string, shape shapes.Shape) ValueID {
	id := p.newValue(shape, InvalidOp, 0)
	p.values[id].Name = name
	p.parameters = append(p.parameters, id)
	return id
}

// Parameters returns the program inputs, in creation order.
func (p *Program) Parameters() []ValueID { return slices.Clone(p.parameters) }

// NumOps returns the number of ops ever created, including erased ones.
func (p *Program) NumOps() int { return len(p.ops) }

// NumValues returns the number of values ever created.
func (p *Program) NumValues() int { return len(p.values) }

// Value returns the value for the given handle. It panics for an invalid handle.
func (p *Program) Value(id ValueID) *Value {
	if id < 0 || int(id) >= len(p.values) {
		exceptions.Panicf("ir.Program.Value(%d): invalid value handle, program has %d values", id, len(p.values))
	}
	return p.values[id]
}

// Op returns the op for the given handle. It panics for an invalid handle.
func (p *Program) Op(id OpID) *Op {
	if id < 0 || int(id) >= len(p.ops) {
		exceptions.Panicf("ir.Program.Op(%d): invalid op handle, program has %d ops", id, len(p.ops))
	}
	return p.ops[id]
}

// Producer returns the op that produced v, or nil if v is a parameter.
func (p *Program) Producer(v ValueID) *Op {
	producer := p.Value(v).Producer
	if producer == InvalidOp {
		return nil
	}
	return p.ops[producer]
}

// Shape is a shortcut to the shape of the value v.
func (p *Program) Shape(v ValueID) shapes.Shape {
	return p.Value(v).Shape
}

// Users returns the ops using v, in use order, without repetitions.
func (p *Program) Users(v ValueID) []*Op {
	var users []*Op
	for _, use := range p.Value(v).uses {
		op := p.ops[use.Op]
		if !slices.Contains(users, op) {
			users = append(users, op)
		}
	}
	return users
}

func (p *Program) newValue(shape shapes.Shape, producer OpID, resultIndex int) ValueID {
	id := ValueID(len(p.values))
	p.values = append(p.values, &Value{
		ID:          id,
		Shape:       shape,
		Producer:    producer,
		ResultIndex: resultIndex,
	})
	return id
}

// CreateOp creates a detached op: it is not part of any block until inserted with InsertOp or AppendOp.
//
// The uses of the operands are registered immediately. Region op types get an empty body block.
func (p *Program) CreateOp(opType OpType, operands []ValueID, resultShapes []shapes.Shape, attrs Attributes) *Op {
	if !opType.IsValid() {
		exceptions.Panicf("ir.Program.CreateOp: invalid op type %s", opType)
	}
	op := &Op{
		ID:         OpID(len(p.ops)),
		Type:       opType,
		Attributes: attrs,
		operands:   slices.Clone(operands),
	}
	for ii, operand := range operands {
		if operand < 0 || int(operand) >= len(p.values) {
			exceptions.Panicf("ir.Program.CreateOp(%s): operand #%d has invalid value handle %d", opType, ii, operand)
		}
		if producer := p.values[operand].Producer; producer != InvalidOp && p.ops[producer].erased {
			exceptions.Panicf("ir.Program.CreateOp(%s): operand #%d (%%%d) was produced by an erased op", opType, ii, operand)
		}
	}
	p.ops = append(p.ops, op)
	for ii, operand := range operands {
		p.values[operand].uses = append(p.values[operand].uses, Use{Op: op.ID, Operand: ii})
	}
	op.results = make([]ValueID, len(resultShapes))
	for ii, shape := range resultShapes {
		op.results[ii] = p.newValue(shape, op.ID, ii)
	}
	if opType.IsRegion() {
		op.Body = &Block{program: p, owner: op.ID}
	}
	return op
}

// InsertOp inserts the detached op at position pos of block.
func (p *Program) InsertOp(block *Block, pos int, op *Op) {
	if op.parent != nil || op.erased {
		exceptions.Panicf("ir.Program.InsertOp(#%d %s): op is already in a block or erased", op.ID, op.Type)
	}
	if pos < 0 || pos > len(block.ops) {
		exceptions.Panicf("ir.Program.InsertOp(#%d %s): position %d out of range for block of length %d",
			op.ID, op.Type, pos, len(block.ops))
	}
	block.ops = slices.Insert(block.ops, pos, op.ID)
	op.parent = block
}

// AppendOp inserts the detached op at the end of the block, before its terminator if there is one.
func (p *Program) AppendOp(block *Block, op *Op) {
	pos := len(block.ops)
	if block.Terminator() != nil {
		pos--
	}
	p.InsertOp(block, pos, op)
}

// NewOp creates an op and appends it to the block (before its terminator, if any).
func (p *Program) NewOp(block *Block, opType OpType, operands []ValueID, resultShapes []shapes.Shape, attrs Attributes) *Op {
	op := p.CreateOp(opType, operands, resultShapes, attrs)
	p.AppendOp(block, op)
	return op
}

// NewYield terminates the block with a Yield of the given values.
func (p *Program) NewYield(block *Block, values ...ValueID) *Op {
	if block.Terminator() != nil {
		exceptions.Panicf("ir.Program.NewYield: block already terminated")
	}
	op := p.CreateOp(OpTypeYield, values, nil, nil)
	p.InsertOp(block, len(block.ops), op)
	return op
}
