// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"github.com/gogpu/automata/kernel"
	"github.com/gogpu/automata/surface"
)

// Backend executes transition programs over a double-buffered pair of
// surfaces. It is owned by a single caller and is not safe for concurrent
// use.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Init acquires the execution context.
	// This should be called before any other operation.
	Init() error

	// Configure (re)creates the front and back surfaces for layout.
	// Programs compiled for a previous layout are released.
	Configure(layout surface.Layout) error

	// Upload writes packed RGBA8 cells into the front surface.
	Upload(pixels []byte) error

	// Run executes p for the given number of iterations. Each iteration
	// swaps the surface roles and draws from the back surface into the
	// front surface, so iteration k+1 reads exactly the output of k.
	Run(p *kernel.Program, iterations int) error

	// Download reads back the front surface as packed RGBA8 cells.
	Download() ([]byte, error)

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()
}
