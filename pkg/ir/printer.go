// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// String pretty-prints the program, one op per line, with region bodies indented.
func (p *Program) String() string {
	var sb strings.Builder
	for _, param := range p.parameters {
		fmt.Fprintf(&sb, "%s: %s\n", p.ValueName(param), p.values[param].Shape)
	}
	p.writeBlock(&sb, p.Body, "")
	return sb.String()
}

// ValueName returns a printable name for the value: its name if it has one, or "%<id>".
func (p *Program) ValueName(v ValueID) string {
	if name := p.Value(v).Name; name != "" {
		return "%" + name
	}
	return fmt.Sprintf("%%%d", v)
}

// OpString returns the single line representation of op, without its body.
func (p *Program) OpString(op *Op) string {
	var sb strings.Builder
	if len(op.results) > 0 {
		parts := make([]string, len(op.results))
		for ii, result := range op.results {
			parts[ii] = fmt.Sprintf("%s%s", p.ValueName(result), p.values[result].Shape)
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString(" = ")
	}
	sb.WriteString(op.Type.String())
	if op.Name != "" {
		fmt.Fprintf(&sb, "[%s]", op.Name)
	}
	operands := make([]string, len(op.operands))
	for ii, operand := range op.operands {
		operands[ii] = p.ValueName(operand)
	}
	fmt.Fprintf(&sb, "(%s)", strings.Join(operands, ", "))
	if len(op.Attributes) > 0 {
		keys := slices.Sorted(maps.Keys(op.Attributes))
		attrs := make([]string, len(keys))
		for ii, key := range keys {
			attrs[ii] = fmt.Sprintf("%s=%v", key, op.Attributes[key])
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(attrs, ", "))
	}
	if op.Group != nil {
		fmt.Fprintf(&sb, " <%s>", op.Group)
	}
	return sb.String()
}

func (p *Program) writeBlock(sb *strings.Builder, block *Block, indent string) {
	for _, id := range block.ops {
		op := p.ops[id]
		fmt.Fprintf(sb, "%s#%d %s", indent, id, p.OpString(op))
		if op.Body != nil {
			sb.WriteString(" {\n")
			p.writeBlock(sb, op.Body, indent+"  ")
			sb.WriteString(indent + "}")
		}
		sb.WriteString("\n")
	}
}
