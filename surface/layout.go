// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// BytesPerPixel is the size of one packed RGBA8 cell.
const BytesPerPixel = 4

// MaxCells bounds the number of cells a Layout may address.
const MaxCells = math.MaxInt32

// Channel selects the color channel that holds a cell state.
type Channel int

// Red is the only channel used by the packed encoding.
const Red Channel = 0

// ErrInvalidShape is returned for empty shapes or non-positive extents.
var ErrInvalidShape = errors.New("surface: invalid shape")

// Layout is the fixed grid-to-surface mapping for one grid shape.
// The zero value is not usable; create layouts with NewLayout.
type Layout struct {
	shape   []int
	strides []int
	width   int
	height  int
	cells   int
}

// NewLayout validates shape and computes its surface tiling.
func NewLayout(shape []int) (Layout, error) {
	if len(shape) == 0 {
		return Layout{}, fmt.Errorf("%w: no dimensions", ErrInvalidShape)
	}

	strides := make([]int, len(shape))
	n := 1
	for i, s := range shape {
		if s <= 0 {
			return Layout{}, fmt.Errorf("%w: extent %d of axis %d", ErrInvalidShape, s, i)
		}
		strides[i] = n
		if n > MaxCells/s {
			return Layout{}, fmt.Errorf("%w: more than %d cells", ErrInvalidShape, MaxCells)
		}
		n *= s
	}

	return Layout{
		shape:   slices.Clone(shape),
		strides: strides,
		width:   shape[0],
		height:  n / shape[0],
		cells:   n,
	}, nil
}

// Shape returns a copy of the grid shape.
func (l Layout) Shape() []int { return slices.Clone(l.shape) }

// Dimension returns the number of grid axes.
func (l Layout) Dimension() int { return len(l.shape) }

// Width returns the surface width in pixels.
func (l Layout) Width() int { return l.width }

// Height returns the surface height in pixels.
func (l Layout) Height() int { return l.height }

// Len returns the number of cells.
func (l Layout) Len() int { return l.cells }

// PackedLen returns the size of a packed RGBA buffer.
func (l Layout) PackedLen() int { return l.cells * BytesPerPixel }

// Strides returns the linear index stride of each axis.
func (l Layout) Strides() []int { return slices.Clone(l.strides) }

// Equal reports whether l and o describe the same grid shape.
func (l Layout) Equal(o Layout) bool {
	return slices.Equal(l.shape, o.shape)
}

// Contains reports whether coord addresses a cell of the grid.
func (l Layout) Contains(coord []int) bool {
	if len(coord) != len(l.shape) {
		return false
	}
	for i, c := range coord {
		if c < 0 || c >= l.shape[i] {
			return false
		}
	}
	return true
}

// Index returns the linear cell index of coord.
// It panics if coord is outside the grid.
func (l Layout) Index(coord []int) int {
	if !l.Contains(coord) {
		panic(fmt.Sprintf("surface: coordinate %v out of range for shape %v", coord, l.shape))
	}
	i := 0
	for axis, c := range coord {
		i += c * l.strides[axis]
	}
	return i
}

// Coord returns the coordinate of linear cell index i.
func (l Layout) Coord(i int) []int {
	if i < 0 || i >= l.cells {
		panic(fmt.Sprintf("surface: index %d out of range [0,%d)", i, l.cells))
	}
	coord := make([]int, len(l.shape))
	for axis, s := range l.shape {
		coord[axis] = i % s
		i /= s
	}
	return coord
}

// Encode maps a grid coordinate to its surface pixel and channel.
func (l Layout) Encode(coord []int) (u, v int, ch Channel) {
	i := l.Index(coord)
	return i % l.width, i / l.width, Red
}

// Decode maps a surface pixel back to its grid coordinate.
func (l Layout) Decode(u, v int) []int {
	if u < 0 || u >= l.width || v < 0 || v >= l.height {
		panic(fmt.Sprintf("surface: pixel (%d,%d) out of range %dx%d", u, v, l.width, l.height))
	}
	return l.Coord(v*l.width + u)
}

// Pack encodes cells, indexed by linear cell index, as RGBA8 pixels in
// surface order. It panics if len(cells) != l.Len().
func (l Layout) Pack(cells []uint8) []byte {
	if len(cells) != l.cells {
		panic(fmt.Sprintf("surface: pack %d cells into layout of %d", len(cells), l.cells))
	}
	out := make([]byte, l.PackedLen())
	for i, c := range cells {
		out[i*BytesPerPixel+int(Red)] = c
		out[i*BytesPerPixel+3] = 0xFF
	}
	return out
}

// Unpack decodes packed RGBA8 pixels into cells. cells is written only
// when both lengths match.
func (l Layout) Unpack(pixels []byte, cells []uint8) error {
	if len(pixels) != l.PackedLen() {
		return fmt.Errorf("surface: unpack %d bytes, want %d", len(pixels), l.PackedLen())
	}
	if len(cells) != l.cells {
		return fmt.Errorf("surface: unpack into %d cells, want %d", len(cells), l.cells)
	}
	for i := range cells {
		cells[i] = pixels[i*BytesPerPixel+int(Red)]
	}
	return nil
}
