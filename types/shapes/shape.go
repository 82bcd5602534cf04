// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape, the static type of every value flowing through the operation graph.
//
// A Shape is a DType (github.com/gomlx/gopjrt/dtypes) plus a list of dimensions. The fusion pass
// only cares about the dimensions: they become the "loop ranges" (iteration space) of a cluster.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a value.
//   - Axis: the index of a dimension. Negative axes count from the end, so -1 is the last axis.
//   - Dimension: the size of a value along one of its axes.
//   - Scalar: a shape with no axes.
//
// Example: `shapes.Make(dtypes.Float32, 4, 8)` has rank 2, axis 0 has dimension 4 and axis 1
// has dimension 8.
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Shape represents the shape of a value in the operation graph.
//
// Use Make to create a new shape.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape structure filled with the values given.
//
// It panics if any dimension is <= 0.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions), DType: dtype}
	for _, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension <= 0", s)
		}
	}
	return s
}

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// Size returns the number of elements of DType are needed for this shape. It's the product of all dimensions.
func (s Shape) Size() int { return DimsSize(s.Dimensions) }

// Equal compares two shapes for equality: dtype and dimensions are compared.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	return EqualDims(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.Dimensions = slices.Clone(s.Dimensions)
	return
}

// EqualDims reports whether two dimension lists are identical. A nil list and an empty list are
// considered equal, both describe a scalar.
func EqualDims(dims0, dims1 []int) bool {
	return slices.Equal(dims0, dims1)
}

// DimsSize returns the number of elements of an iteration space given by its dimensions.
func DimsSize(dims []int) (size int) {
	size = 1
	for _, d := range dims {
		size *= d
	}
	return
}
