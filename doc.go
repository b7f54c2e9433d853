// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package automata runs N-dimensional cellular automata on the GPU.
//
// # Overview
//
// A rule string is compiled into a per-cell transition program that is
// iterated over a double-buffered pair of surfaces. Grids of any
// dimension are folded onto a 2D surface; see package surface for the
// tiling.
//
// # Quick Start
//
//	import (
//		"github.com/gogpu/automata"
//		_ "github.com/gogpu/automata/backend/wgpu" // GPU backend
//	)
//
//	a, err := automata.New([]int{128, 128})
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//
//	a.FillWithDistribution(automata.Distribution{
//		automata.Weighted(0, 90),
//		automata.Weighted(1, 10),
//	}, nil)
//	a.SetWrap()
//	if err := a.Apply("23/3", 100); err != nil {
//		return err
//	}
//	if err := a.Finalize(); err != nil {
//		return err
//	}
//	alive := a.Grid().Count(1)
//
// # Batching
//
// SetRule, Iterate and Apply only record work. The first Iterate of a rule
// synthesizes its kernel and appends it to the batch; later calls add to
// its count. Finalize uploads the grid once, runs every batch entry in
// order for its accumulated iterations and downloads once:
//
//	a.Apply("E 2,7,8/3,8", 15)
//	a.Apply("LUKY 3323", 1)
//	a.Apply("E 2,7,8/3,8", 3) // a separate entry, never merged
//	a.Finalize()
//
// Changing the boundary invalidates the kernel of the current rule, so all
// of its accumulated iterations run under the new boundary.
//
// # Rule Dialects
//
// Life ("23/3", "S23/B3"), Generations ("23/3/8"), Extended
// ("E 2,7,8/3,8"), Vote ("vote 5678"), LUKY ("LUKY 3323"), NLUKY
// ("NLUKY 43323") and Cyclic ("cyclic R1/T3/C4/NM"). An optional suffix selects
// the neighbourhood: "23/3 V" for von Neumann, "23/3 M2" for Moore range 2.
// See package rule.
//
// # Backends
//
// Without options New picks the highest priority registered backend that
// initializes: "wgpu" when its package is imported and a GPU is present,
// otherwise "software". See package backend.
//
// # Logging
//
// The package is silent by default. SetLogger enables structured logging
// through log/slog for this package and its backends.
package automata
