// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements the GPU backend on top of the gogpu/wgpu HAL.
//
// Importing the package registers the "wgpu" backend:
//
//	import _ "github.com/gogpu/automata/backend/wgpu"
//
// The backend keeps the front and back surfaces in two RGBA8 textures.
// Every iteration draws one full-surface triangle with the synthesized
// fragment program, sampling the previous texture and writing the other.
// Programs are compiled from WGSL to SPIR-V with naga and linked pipelines
// are cached by program key until the layout changes.
//
// By default the device is created headless on the Vulkan HAL. Pass a
// Shared acquirer to run on a device owned by a host application:
//
//	b := wgpu.New(wgpu.Config{Acquirer: wgpu.Shared{Provider: provider}})
//
// Build with the nogpu tag to exclude the package.
package wgpu
