// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package rule parses cellular automaton rule strings into immutable rule
// descriptors.
//
// Supported dialects:
//
//	23/3            Life, survival/birth digit lists
//	B3/S23          Life, prefixed parts in any order
//	E 2,7,8/3,8     Extended, comma lists with inclusive a..b ranges
//	23/3/8          Generations, survival/birth/states
//	vote 13579      Vote, counts include the cell itself
//	LUKY 3323       LUKY, birth with L..U, survival with K..Y
//	NLUKY 8 3 3 2 3 NLUKY, LUKY with N states
//	cyclic R1/T3/C3/NM
//
// Any rule may be followed by a neighbourhood token: M (moore), V or N
// (von-neumann), A (axis), C (corner), E (edge) or F (face), with an
// optional range, e.g. "23/3 V2". Keywords are case-insensitive.
//
// A trailing token is always read as a neighbourhood, so "B3/S23 C8" is a
// Life rule over the range 8 corner neighbourhood. Write "B3/S23/C8" for a
// Generations rule with 8 states.
package rule
