// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

// OpType is an enum of all operations that can appear in a Program.
//
// Notice that not every op type is supported by the fusion pass: only those the classification
// oracle maps to an element-wise, broadcast or reduction pattern.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -output=gen_optype_enumer.go optype.go

const (
	OpTypeInvalid OpType = iota

	// Structural ops.

	OpTypeYield
	OpTypeGroup
	OpTypeFusion

	OpTypeConstant
	OpTypeIdentity

	// Element-wise unary ops.

	OpTypeAbs
	OpTypeCeil
	OpTypeConvertDType
	OpTypeCos
	OpTypeExp
	OpTypeFloor
	OpTypeLog
	OpTypeLogistic
	OpTypeNeg
	OpTypeRound
	OpTypeRsqrt
	OpTypeSign
	OpTypeSin
	OpTypeSqrt
	OpTypeTanh

	// Element-wise binary (and ternary) ops.

	OpTypeAdd
	OpTypeDiv
	OpTypeEqual
	OpTypeGreaterThan
	OpTypeLessThan
	OpTypeMax
	OpTypeMin
	OpTypeMul
	OpTypePow
	OpTypeSub
	OpTypeWhere

	// Shape ops.

	OpTypeReshape
	OpTypeBroadcastInDim
	OpTypeTranspose
	OpTypeSlice
	OpTypeConcatenate

	// Reductions.

	OpTypeReduceMax
	OpTypeReduceMin
	OpTypeReduceProduct
	OpTypeReduceSum

	// Others.

	OpTypeDotGeneral
	OpTypeGather

	// OpTypeLast should always be kept the last, it is used as a counter/marker for OpType.
	OpTypeLast
)

// IsValid returns whether t is one of the op types between OpTypeInvalid and OpTypeLast (both excluded).
func (t OpType) IsValid() bool {
	return t > OpTypeInvalid && t < OpTypeLast
}

// IsRegion returns whether ops of this type own a body Block.
func (t OpType) IsRegion() bool {
	return t == OpTypeGroup || t == OpTypeFusion
}
