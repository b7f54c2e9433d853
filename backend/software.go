// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"

	"github.com/gogpu/automata/kernel"
	"github.com/gogpu/automata/surface"
)

// DefaultMaxSurfaceDimension is the largest surface edge the software
// backend accepts. It matches the WebGPU default 2D texture limit so both
// backends reject the same layouts.
const DefaultMaxSurfaceDimension = 8192

// SoftwareBackend runs kernel plans on the CPU over two packed RGBA8
// buffers. It is the fallback when no GPU is available.
type SoftwareBackend struct {
	// MaxSurfaceDimension bounds the surface width and height.
	// Zero means DefaultMaxSurfaceDimension.
	MaxSurfaceDimension int

	initialized bool
	configured  bool
	layout      surface.Layout
	targets     [2][]byte
	front       int
	latch       Latch
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() Backend {
		return NewSoftwareBackend()
	})
}

// NewSoftwareBackend creates a new software backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init initializes the backend.
func (b *SoftwareBackend) Init() error {
	if err := b.latch.Check("init"); err != nil {
		return err
	}
	b.initialized = true
	return nil
}

// Configure allocates front and back buffers for layout.
func (b *SoftwareBackend) Configure(layout surface.Layout) error {
	if err := b.latch.Check("configure"); err != nil {
		return err
	}
	if !b.initialized {
		return ErrNotInitialized
	}

	limit := b.MaxSurfaceDimension
	if limit <= 0 {
		limit = DefaultMaxSurfaceDimension
	}
	if layout.Width() > limit || layout.Height() > limit {
		return b.latch.Fail(&ResourceError{
			Op:  "configure",
			Err: fmt.Errorf("surface %dx%d exceeds limit %d", layout.Width(), layout.Height(), limit),
		})
	}

	b.layout = layout
	b.targets[0] = make([]byte, layout.PackedLen())
	b.targets[1] = make([]byte, layout.PackedLen())
	b.front = 0
	b.configured = true
	Logger().Debug("software: configured", "width", layout.Width(), "height", layout.Height())
	return nil
}

// Upload copies pixels into the front buffer.
func (b *SoftwareBackend) Upload(pixels []byte) error {
	if err := b.ready("upload"); err != nil {
		return err
	}
	if len(pixels) != b.layout.PackedLen() {
		return fmt.Errorf("%w: upload %d bytes, want %d", ErrLayoutMismatch, len(pixels), b.layout.PackedLen())
	}
	copy(b.targets[b.front], pixels)
	return nil
}

// Run steps the plan of p iterations times.
func (b *SoftwareBackend) Run(p *kernel.Program, iterations int) error {
	if err := b.ready("run"); err != nil {
		return err
	}
	if p == nil || p.Plan == nil {
		return fmt.Errorf("backend: run: nil program")
	}
	if iterations < 0 {
		return fmt.Errorf("backend: run: negative iteration count %d", iterations)
	}
	if !p.Layout().Equal(b.layout) {
		return fmt.Errorf("%w: program shape %v, configured %v", ErrLayoutMismatch, p.Layout().Shape(), b.layout.Shape())
	}

	for range iterations {
		b.front ^= 1
		if err := p.Plan.Step(b.targets[b.front^1], b.targets[b.front]); err != nil {
			return err
		}
	}
	return nil
}

// Download returns a copy of the front buffer.
func (b *SoftwareBackend) Download() ([]byte, error) {
	if err := b.ready("download"); err != nil {
		return nil, err
	}
	out := make([]byte, len(b.targets[b.front]))
	copy(out, b.targets[b.front])
	return out, nil
}

// Close releases the buffers.
func (b *SoftwareBackend) Close() {
	b.targets = [2][]byte{}
	b.configured = false
	b.initialized = false
}

func (b *SoftwareBackend) ready(op string) error {
	if err := b.latch.Check(op); err != nil {
		return err
	}
	if !b.initialized {
		return ErrNotInitialized
	}
	if !b.configured {
		return ErrNotConfigured
	}
	return nil
}
