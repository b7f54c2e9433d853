// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package automata

import (
	"slices"

	"github.com/gogpu/automata/surface"
)

// Grid is the host copy of the cell states, row-major with axis 0
// varying fastest.
//
// Get and Set panic on coordinates outside the grid, like slice indexing.
type Grid struct {
	layout surface.Layout
	cells  []uint8
}

func newGrid(layout surface.Layout, fill uint8) *Grid {
	cells := make([]uint8, layout.Len())
	if fill != 0 {
		for i := range cells {
			cells[i] = fill
		}
	}
	return &Grid{layout: layout, cells: cells}
}

// Shape returns the extent of every axis.
func (g *Grid) Shape() []int { return g.layout.Shape() }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Get returns the state at coord.
func (g *Grid) Get(coord ...int) uint8 {
	return g.cells[g.layout.Index(coord)]
}

// Set stores value at coord.
func (g *Grid) Set(value uint8, coord ...int) {
	g.cells[g.layout.Index(coord)] = value
}

// Fill sets every cell to value.
func (g *Grid) Fill(value uint8) {
	for i := range g.cells {
		g.cells[i] = value
	}
}

// Cells returns a copy of all states in storage order.
func (g *Grid) Cells() []uint8 { return slices.Clone(g.cells) }

// Count returns the number of cells holding value.
func (g *Grid) Count(value uint8) int {
	n := 0
	for _, c := range g.cells {
		if c == value {
			n++
		}
	}
	return n
}
