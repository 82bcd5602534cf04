// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/fusioncluster/pkg/ir"
	"github.com/gomlx/fusioncluster/types/shapes"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable() *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(rowStyle)
}

// rowStyle styles the header set with Table.Headers, and alternates the data rows (indexed from 0).
func rowStyle(row, col int) (s lipgloss.Style) {
	if row == lgtable.HeaderRow {
		return headerRowStyle
	}
	if row%2 == 0 {
		s = oddRowStyle
	} else {
		s = evenRowStyle
	}
	if col == 0 {
		s = s.Align(lipgloss.Right)
	} else {
		s = s.Align(lipgloss.Left)
	}
	return
}

func printSummary(fileName string, program *ir.Program, groups []*ir.Op) {
	fmt.Println(titleStyle.Render("Summary"))
	table := newPlainTable()
	table.Row("program", fileName)
	table.Row("# parameters", humanize.Comma(int64(len(program.Parameters()))))
	var numElements int
	for _, param := range program.Parameters() {
		numElements += program.Shape(param).Size()
	}
	table.Row("# parameter elements", humanize.Comma(int64(numElements)))
	table.Row("# groups", humanize.Comma(int64(len(groups))))
	var numOps int
	for _, group := range groups {
		numOps += group.Body.Len() - 1
	}
	table.Row("# ops in groups", humanize.Comma(int64(numOps)))
	fmt.Println(table.Render())
}

// groupReport holds the fusion ops created for one group.
type groupReport struct {
	group     *ir.Op
	numOps    int
	fusionOps []*ir.Op
}

func printFusions(program *ir.Program, reports []groupReport) {
	fmt.Println(titleStyle.Render("Fusions"))
	table := newPlainTable()
	table.Headers("Group", "Fusion", "Kind", "Loop Ranges", "Elements", "Reduce Axes", "# Ops", "Outputs", "Fused Ops")
	for _, report := range reports {
		for ii, fusionOp := range report.fusionOps {
			info := fusionOp.Group
			reduceAxes := "-"
			if len(info.ReduceAxes) > 0 {
				reduceAxes = fmt.Sprintf("%v", info.ReduceAxes)
			}
			table.Row(
				groupName(report.group),
				fmt.Sprintf("%d/%d", ii+1, len(report.fusionOps)),
				info.Kind.String(),
				fmt.Sprintf("%v", info.LoopRanges),
				humanize.Comma(int64(shapes.DimsSize(info.LoopRanges))),
				reduceAxes,
				humanize.Comma(int64(fusionOp.Body.Len()-1)),
				outputShapes(program, fusionOp),
				info.GroupID,
			)
		}
	}
	fmt.Println(table.Render())

	var numOps, numFusions int
	for _, report := range reports {
		numOps += report.numOps
		numFusions += len(report.fusionOps)
	}
	if numFusions > 0 {
		fmt.Printf("%s ops fused into %s kernels (%.1f ops per kernel)\n",
			humanize.Comma(int64(numOps)), humanize.Comma(int64(numFusions)), float64(numOps)/float64(numFusions))
	}
}

func outputShapes(program *ir.Program, op *ir.Op) string {
	parts := make([]string, op.NumResults())
	for ii, v := range op.Results() {
		parts[ii] = program.Shape(v).String()
	}
	return strings.Join(parts, ", ")
}
