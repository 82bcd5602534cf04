// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/stretchr/testify/assert"
)

func TestRowStyle(t *testing.T) {
	assert.True(t, rowStyle(lgtable.HeaderRow, 0).GetReverse())
	assert.True(t, rowStyle(lgtable.HeaderRow, 3).GetReverse())

	// Data rows are indexed from 0: the first fusion row is not styled as a header.
	for row := range 3 {
		for col := range 2 {
			assert.Falsef(t, rowStyle(row, col).GetReverse(), "row %d, col %d", row, col)
		}
	}
	assert.Equal(t, lipgloss.Right, rowStyle(0, 0).GetAlignHorizontal())
	assert.Equal(t, lipgloss.Left, rowStyle(0, 1).GetAlignHorizontal())
	assert.NotEqual(t, rowStyle(0, 1).GetForeground(), rowStyle(1, 1).GetForeground())
}

func TestFusionsTableHeader(t *testing.T) {
	table := newPlainTable()
	table.Headers("Group", "Fusion")
	table.Row("\"softmax\"", "1/1")
	lines := strings.Split(table.Render(), "\n")
	headerLine, dataLine := -1, -1
	for ii, line := range lines {
		if strings.Contains(line, "Group") {
			headerLine = ii
		}
		if strings.Contains(line, "softmax") {
			dataLine = ii
		}
	}
	assert.NotEqual(t, -1, headerLine)
	assert.Greater(t, dataLine, headerLine, "the header is rendered above the data rows")
}
