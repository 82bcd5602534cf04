// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package irio reads ir.Program descriptions written in YAML.
//
// A description lists the program parameters and a sequence of groups. Each group becomes an
// ir.OpTypeGroup op in the program body, holding the listed ops and yielding the listed outputs.
// Operands are referenced by name: parameters, earlier ops of the same group, or outputs of earlier
// groups. The program yields the results of every group, in order.
//
//	parameters:
//	  - {name: x, dtype: float32, shape: [4, 8]}
//	groups:
//	  - name: softmax
//	    ops:
//	      - {name: m, type: ReduceMax, operands: [x], shape: [4], attrs: {dim: [1]}}
//	      - ...
//	    outputs: [out]
package irio

import (
	"os"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/pkg/support/fsutil"
	"github.com/gomlx/fusioncluster/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProgramSpec is the YAML description of a program.
type ProgramSpec struct {
	Parameters []ValueSpec `yaml:"parameters"`
	Groups     []GroupSpec `yaml:"groups"`
}

// ValueSpec describes a program parameter.
type ValueSpec struct {
	Name  string `yaml:"name"`
	DType string `yaml:"dtype"`
	Shape []int  `yaml:"shape"`
}

// GroupSpec describes a group op and its body.
type GroupSpec struct {
	Name    string   `yaml:"name"`
	Ops     []OpSpec `yaml:"ops"`
	Outputs []string `yaml:"outputs"`
}

// OpSpec describes an op with a single result.
type OpSpec struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Operands []string       `yaml:"operands"`
	Shape    []int          `yaml:"shape"`
	Attrs    map[string]any `yaml:"attrs"`

	// DType of the result. It defaults to the dtype of the first operand, or float32.
	DType string `yaml:"dtype"`
}

// Load reads the YAML description in fileName and builds the program. A leading "~" in fileName is
// expanded to the home directory.
func Load(fileName string) (*ir.Program, error) {
	resolved, err := fsutil.ResolveInput(fileName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read program description %q", fileName)
	}
	program, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "in %q", fileName)
	}
	return program, nil
}

// Parse builds the program described by the YAML data.
func Parse(data []byte) (*ir.Program, error) {
	var spec ProgramSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(err, "failed to parse program description")
	}
	return Build(&spec)
}

// Build creates the program described by spec, and validates it.
func Build(spec *ProgramSpec) (program *ir.Program, err error) {
	err = exceptions.TryCatch[error](func() { program = build(spec) })
	if err != nil {
		return nil, err
	}
	if err = program.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid program description")
	}
	return program, nil
}

// scope maps names to values.
type scope map[string]ir.ValueID

func (s scope) define(name string, v ir.ValueID) {
	if name == "" {
		return
	}
	if _, found := s[name]; found {
		exceptions.Panicf("irio: name %q defined more than once", name)
	}
	s[name] = v
}

func (s scope) lookup(name string) ir.ValueID {
	v, found := s[name]
	if !found {
		exceptions.Panicf("irio: undefined value %q", name)
	}
	return v
}

func build(spec *ProgramSpec) *ir.Program {
	program := ir.New()
	outer := make(scope)
	for _, param := range spec.Parameters {
		if param.Name == "" {
			exceptions.Panicf("irio: parameters must have a name")
		}
		dtype := parseDType(param.DType, dtypes.Float32)
		outer.define(param.Name, program.Parameter(param.Name, shapes.Make(dtype, param.Shape...)))
	}

	var programOutputs []ir.ValueID
	for groupIdx, groupSpec := range spec.Groups {
		inner := make(scope, len(outer)+len(groupSpec.Ops))
		for name, v := range outer {
			inner[name] = v
		}
		var body []*ir.Op
		for _, opSpec := range groupSpec.Ops {
			op := buildOp(program, inner, opSpec)
			body = append(body, op)
			if opSpec.Name != "" {
				inner[opSpec.Name] = op.Result(0)
			}
		}
		if len(groupSpec.Outputs) == 0 {
			exceptions.Panicf("irio: group #%d (%q) has no outputs", groupIdx, groupSpec.Name)
		}
		outputs := make([]ir.ValueID, len(groupSpec.Outputs))
		resultShapes := make([]shapes.Shape, len(groupSpec.Outputs))
		for ii, name := range groupSpec.Outputs {
			outputs[ii] = inner.lookup(name)
			resultShapes[ii] = program.Shape(outputs[ii]).Clone()
		}

		group := program.NewOp(program.Body, ir.OpTypeGroup, nil, resultShapes, nil)
		group.Name = groupSpec.Name
		for _, op := range body {
			program.AppendOp(group.Body, op)
		}
		program.NewYield(group.Body, outputs...)
		for ii, name := range groupSpec.Outputs {
			delete(outer, name)
			outer.define(name, group.Result(ii))
		}
		programOutputs = append(programOutputs, group.Results()...)
	}
	program.NewYield(program.Body, programOutputs...)
	return program
}

func buildOp(program *ir.Program, s scope, spec OpSpec) *ir.Op {
	opType, err := ir.OpTypeString(spec.Type)
	if err != nil {
		panic(errors.WithMessagef(err, "irio: op %q", spec.Name))
	}
	if !opType.IsValid() || opType.IsRegion() || opType == ir.OpTypeYield {
		exceptions.Panicf("irio: op %q can't be of type %s", spec.Name, opType)
	}
	operands := make([]ir.ValueID, len(spec.Operands))
	for ii, name := range spec.Operands {
		operands[ii] = s.lookup(name)
	}
	defaultDType := dtypes.Float32
	if len(operands) > 0 {
		defaultDType = program.Shape(operands[0]).DType
	}
	if _, found := s[spec.Name]; found && spec.Name != "" {
		exceptions.Panicf("irio: name %q defined more than once", spec.Name)
	}
	shape := shapes.Make(parseDType(spec.DType, defaultDType), spec.Shape...)
	op := program.CreateOp(opType, operands, []shapes.Shape{shape}, ir.Attributes(spec.Attrs))
	op.Name = spec.Name
	program.Value(op.Result(0)).Name = spec.Name
	return op
}

// parseDType accepts the names in dtypes.MapOfNames (e.g. "float32") and the DType names
// (e.g. "Float32").
func parseDType(name string, defaultDType dtypes.DType) dtypes.DType {
	if name == "" {
		return defaultDType
	}
	if dtype, found := dtypes.MapOfNames[name]; found {
		return dtype
	}
	if dtype, found := dtypes.MapOfNames[strings.ToLower(name)]; found {
		return dtype
	}
	dtype, err := dtypes.DTypeString(name)
	if err != nil {
		panic(errors.Wrapf(err, "irio: unknown dtype %q", name))
	}
	return dtype
}
