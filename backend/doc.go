// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend provides the pluggable execution backend abstraction.
//
// A Backend owns two surfaces (front and back) holding packed cell states,
// runs synthesized kernel programs over them and transfers states to and
// from the host.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is automatically registered on import. The GPU
// backend registers itself when its package is imported:
//
//	import _ "github.com/gogpu/automata/backend/wgpu"
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b := backend.Get("software")
//
// InitDefault walks the priority list and returns the first backend whose
// Init succeeds.
//
// # Execution
//
//	if err := b.Configure(layout); err != nil {
//		return err
//	}
//	if err := b.Upload(layout.Pack(cells)); err != nil {
//		return err
//	}
//	if err := b.Run(program, 8); err != nil {
//		return err
//	}
//	pixels, err := b.Download()
//
// # Errors
//
// Resource failures are reported as *ResourceError and are fatal to the
// instance: every later call fails with ErrBackendFailed. Shader
// compilation failures are reported as *CompileError with the source
// attached.
//
// # Available Backends
//
// - "software": CPU execution of kernel plans (always available)
// - "wgpu": GPU execution via gogpu/wgpu
package backend
