// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"github.com/gomlx/fusioncluster/pkg/ir"
)

// Attribute names read by DefaultOracle.
const (
	AttrReduceAxes    = "dim"
	AttrBroadcastAxes = "broadcast_axes"
	AttrOutShape      = "out_shape"
)

// Oracle bundles the collaborators the pass needs to know about individual ops: their pattern kind and
// the attributes describing reductions and broadcasts.
//
// OpKind must return ir.KindUnsupported for ops the pass can't handle, the pass then fails for the
// whole block.
type Oracle interface {
	OpKind(op *ir.Op) ir.PatternKind
	ReduceAxes(op *ir.Op) []int
	BroadcastAxes(op *ir.Op) []int
	OutShape(op *ir.Op) []int
}

// DefaultOracle classifies ops by their type and reads the AttrReduceAxes, AttrBroadcastAxes and
// AttrOutShape attributes.
type DefaultOracle struct{}

var _ Oracle = DefaultOracle{}

var defaultOpKinds = map[ir.OpType]ir.PatternKind{
	ir.OpTypeConstant:     ir.KindElementWise,
	ir.OpTypeIdentity:     ir.KindElementWise,
	ir.OpTypeAbs:          ir.KindElementWise,
	ir.OpTypeCeil:         ir.KindElementWise,
	ir.OpTypeConvertDType: ir.KindElementWise,
	ir.OpTypeCos:          ir.KindElementWise,
	ir.OpTypeExp:          ir.KindElementWise,
	ir.OpTypeFloor:        ir.KindElementWise,
	ir.OpTypeLog:          ir.KindElementWise,
	ir.OpTypeLogistic:     ir.KindElementWise,
	ir.OpTypeNeg:          ir.KindElementWise,
	ir.OpTypeRound:        ir.KindElementWise,
	ir.OpTypeRsqrt:        ir.KindElementWise,
	ir.OpTypeSign:         ir.KindElementWise,
	ir.OpTypeSin:          ir.KindElementWise,
	ir.OpTypeSqrt:         ir.KindElementWise,
	ir.OpTypeTanh:         ir.KindElementWise,
	ir.OpTypeAdd:          ir.KindElementWise,
	ir.OpTypeDiv:          ir.KindElementWise,
	ir.OpTypeEqual:        ir.KindElementWise,
	ir.OpTypeGreaterThan:  ir.KindElementWise,
	ir.OpTypeLessThan:     ir.KindElementWise,
	ir.OpTypeMax:          ir.KindElementWise,
	ir.OpTypeMin:          ir.KindElementWise,
	ir.OpTypeMul:          ir.KindElementWise,
	ir.OpTypePow:          ir.KindElementWise,
	ir.OpTypeSub:          ir.KindElementWise,
	ir.OpTypeWhere:        ir.KindElementWise,
	ir.OpTypeReshape:      ir.KindElementWise,

	ir.OpTypeBroadcastInDim: ir.KindBroadcast,

	ir.OpTypeReduceMax:     ir.KindReduction,
	ir.OpTypeReduceMin:     ir.KindReduction,
	ir.OpTypeReduceProduct: ir.KindReduction,
	ir.OpTypeReduceSum:     ir.KindReduction,
}

// OpKind implements Oracle.
func (DefaultOracle) OpKind(op *ir.Op) ir.PatternKind {
	kind, found := defaultOpKinds[op.Type]
	if !found {
		return ir.KindUnsupported
	}
	return kind
}

// ReduceAxes implements Oracle.
func (DefaultOracle) ReduceAxes(op *ir.Op) []int {
	axes, _ := op.Attributes.Ints(AttrReduceAxes)
	return axes
}

// BroadcastAxes implements Oracle.
func (DefaultOracle) BroadcastAxes(op *ir.Op) []int {
	axes, _ := op.Attributes.Ints(AttrBroadcastAxes)
	return axes
}

// OutShape implements Oracle.
func (DefaultOracle) OutShape(op *ir.Op) []int {
	dims, _ := op.Attributes.Ints(AttrOutShape)
	return dims
}
