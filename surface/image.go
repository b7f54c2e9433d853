// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"

	"golang.org/x/image/draw"
)

// Image returns the state channel of packed pixels as a grayscale image
// the size of the surface. It returns nil if pixels has the wrong length.
func (l Layout) Image(pixels []byte) *image.Gray {
	if len(pixels) != l.PackedLen() {
		return nil
	}
	img := image.NewGray(image.Rect(0, 0, l.width, l.height))
	for i := 0; i < l.cells; i++ {
		img.Pix[i] = pixels[i*BytesPerPixel+int(Red)]
	}
	return img
}

// Snapshot returns the surface enlarged by an integer factor with
// nearest-neighbour sampling, so every cell stays a sharp square.
// A scale below 1 is treated as 1.
func (l Layout) Snapshot(pixels []byte, scale int) image.Image {
	src := l.Image(pixels)
	if src == nil {
		return nil
	}
	if scale <= 1 {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, l.width*scale, l.height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
