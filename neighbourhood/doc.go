// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package neighbourhood enumerates the relative offsets that make up a cell
// neighbourhood and puts them in a canonical order.
//
// Six topology families are supported for any dimensionality d and range r.
// The origin is never part of a neighbourhood.
//
//   - moore: Chebyshev distance 1..r (8 cells for r=1, d=2)
//   - von-neumann: Manhattan distance 1..r (4 cells for r=1, d=2)
//   - axis: exactly one non-zero coordinate
//   - corner: every coordinate is ±r
//   - edge: at least d-1 coordinates are ±r
//   - face: at least one coordinate is ±r (the hypercube shell)
//
// [Resolve] is what kernel synthesis consumes: it applies defaults, falls
// back to moore for unknown types and sorts offsets by their comma-joined
// string form so generated kernel source is deterministic.
package neighbourhood
