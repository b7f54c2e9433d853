// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package kernel compiles a rule and a neighbourhood into a per-cell
// transition program.
//
// Synthesize validates its inputs once and produces a Program holding two
// WGSL sources and a Plan:
//
//   - Vertex: a pass-through stage drawing one full-surface triangle.
//   - Fragment: the transition stage. It decodes its own grid coordinate
//     from the pixel position, samples every neighbour in an unrolled block
//     with the boundary policy baked in, aggregates the neighbour states for
//     the rule family and writes the next state as {next/255, 0, 0, 1}.
//   - Plan: the same transition over packed RGBA8 buffers on the CPU.
//
// Both sources and the plan are derived from the same validated
// description, so a GPU backend running the WGSL and a software backend
// running the plan produce identical generations.
//
// Synthesis is deterministic: identical inputs give byte-identical sources
// and the same Program.Key.
//
// # Boundary policies
//
// Boundary is a tagged value. Fixed(v) substitutes v for every neighbour
// outside the grid; Wrap() addresses the grid as a torus.
package kernel
