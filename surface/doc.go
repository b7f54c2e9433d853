// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface maps N-dimensional cell grids onto 2D RGBA surfaces.
//
// A Layout fixes one tiling for a grid shape. Cells are numbered row-major
// with axis 0 varying fastest:
//
//	i = c0 + s0*(c1 + s1*(c2 + ...))
//
// The surface is s0 pixels wide and s1*s2*... pixels high (1 for a 1D
// grid), and cell i lives at u = i mod s0, v = i div s0. For a 3D grid this
// stacks the z slices vertically, each one s1 rows high.
//
// Cell states are stored in the red channel of an RGBA8 pixel as
// {state, 0, 0, 255}. The same layout drives host packing (Pack, Unpack)
// and the addressing code emitted by the kernel package, which reads
// Strides and Width from the same Layout.
//
// # Usage
//
//	l, err := surface.NewLayout([]int{16, 8, 4})
//	if err != nil {
//		return err
//	}
//	u, v, ch := l.Encode([]int{3, 2, 1}) // 3, 2+8*1, Red
//	pixels := l.Pack(cells)
//	img := l.Snapshot(pixels, 4)
package surface
