// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package irio

import (
	"slices"
	"testing"

	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	program := must.M1(Load("testdata/softmax.yaml"))
	params := program.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "x", program.Value(params[0]).Name)
	assert.Equal(t, []int{4, 8}, program.Shape(params[0]).Dimensions)
	assert.Equal(t, dtypes.Float32, program.Shape(params[1]).DType)

	// Two groups and the program terminator.
	require.Equal(t, 3, program.Body.Len())
	softmax, scaled := program.Body.At(0), program.Body.At(1)
	require.Equal(t, ir.OpTypeGroup, softmax.Type)
	assert.Equal(t, "softmax", softmax.Name)
	assert.Equal(t, "scaled", scaled.Name)
	assert.Equal(t, 8, softmax.Body.Len())
	assert.Equal(t, 3, scaled.Body.Len())
	assert.Equal(t, slices.Concat(softmax.Results(), scaled.Results()), program.Body.Terminator().Operands())

	reduceMax := softmax.Body.At(0)
	assert.Equal(t, ir.OpTypeReduceMax, reduceMax.Type)
	assert.Equal(t, []ir.ValueID{params[0]}, reduceMax.Operands())
	dims, ok := reduceMax.Attributes.Ints("dim")
	require.True(t, ok)
	assert.Equal(t, []int{1}, dims)
	axes, ok := softmax.Body.At(1).Attributes.Ints("broadcast_axes")
	require.True(t, ok)
	assert.Equal(t, []int{0}, axes)

	// Outputs of earlier groups are referenced through the group results.
	mul := scaled.Body.At(0)
	assert.Equal(t, []ir.ValueID{softmax.Result(0), params[1]}, mul.Operands())
	assert.Equal(t, []int{32}, program.Shape(scaled.Result(0)).Dimensions)
}

func TestParseDefaults(t *testing.T) {
	program := must.M1(Parse([]byte(`
parameters:
  - {name: n, dtype: Int32, shape: [3]}
groups:
  - ops:
      - {name: a, type: Neg, operands: [n], shape: [3]}
      - {name: b, type: Exp, shape: [2], dtype: float64}
    outputs: [a, b, n]
`)))
	group := program.Body.At(0)
	assert.Equal(t, dtypes.Int32, program.Shape(group.Result(0)).DType, "dtype of the first operand")
	assert.Equal(t, dtypes.Float64, program.Shape(group.Result(1)).DType)
	assert.Equal(t, group.Result(2), program.Body.Terminator().Operand(2))
	assert.Equal(t, program.Parameters()[0], group.Body.Terminator().Operand(2))
}

func TestParseErrors(t *testing.T) {
	testCases := map[string]string{
		"undefined value": `
groups:
  - ops: [{name: a, type: Neg, operands: [z], shape: [3]}]
    outputs: [a]`,
		"defined more than once": `
parameters: [{name: x, shape: [3]}]
groups:
  - ops:
      - {name: a, type: Neg, operands: [x], shape: [3]}
      - {name: a, type: Exp, operands: [x], shape: [3]}
    outputs: [a]`,
		"Frobnicate": `
parameters: [{name: x, shape: [3]}]
groups:
  - ops: [{name: a, type: Frobnicate, operands: [x], shape: [3]}]
    outputs: [a]`,
		"can't be of type": `
parameters: [{name: x, shape: [3]}]
groups:
  - ops: [{name: a, type: Group, operands: [x], shape: [3]}]
    outputs: [a]`,
		"can't be of type Last": `
parameters: [{name: x, shape: [3]}]
groups:
  - ops: [{name: a, type: Last, operands: [x], shape: [3]}]
    outputs: [a]`,
		"unknown dtype": `
parameters: [{name: x, dtype: float33, shape: [3]}]`,
		"has no outputs": `
parameters: [{name: x, shape: [3]}]
groups:
  - ops: [{name: a, type: Neg, operands: [x], shape: [3]}]`,
		"failed to parse": `parameters: [`,
	}
	for want, data := range testCases {
		_, err := Parse([]byte(data))
		require.Errorf(t, err, "expected error with %q", want)
		assert.ErrorContains(t, err, want)
	}

	_, err := Load("testdata/missing.yaml")
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing.yaml")
}
