// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package automata

import "errors"

var (
	// ErrNoRule is returned by Iterate when no rule has been set.
	ErrNoRule = errors.New("automata: no rule defined")

	// ErrNegativeIterations is returned for iteration counts below zero.
	ErrNegativeIterations = errors.New("automata: negative iteration count")

	// ErrClosed is returned by operations on a closed Automaton.
	ErrClosed = errors.New("automata: closed")
)
