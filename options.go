// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package automata

import (
	"github.com/gogpu/automata/backend"
	"github.com/gogpu/automata/kernel"
)

// Option configures an Automaton during creation.
// Use functional options to customize Automaton behavior.
//
// Example:
//
//	// Best available backend, all cells 0, fixed boundary 0
//	a, err := automata.New([]int{64, 64})
//
//	// Forced CPU execution on a torus
//	a, err := automata.New([]int{64, 64},
//		automata.WithBackendName(backend.BackendSoftware),
//		automata.WithBoundary(kernel.Wrap()))
type Option func(*options)

// options holds optional configuration for Automaton creation.
type options struct {
	backend      backend.Backend
	backendName  string
	defaultValue uint8
	boundary     kernel.Boundary
}

// defaultOptions returns the default automaton options.
func defaultOptions() options {
	return options{
		boundary: kernel.Fixed(0),
	}
}

// WithBackend sets the backend the Automaton runs on.
// The caller keeps ownership: Close does not close it.
//
// Example:
//
//	sw := backend.NewSoftwareBackend()
//	a, err := automata.New([]int{32, 32}, automata.WithBackend(sw))
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithBackendName selects a registered backend by name instead of the
// highest priority one. Ignored when WithBackend is also given.
func WithBackendName(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithDefaultValue sets the state every cell starts with.
func WithDefaultValue(v uint8) Option {
	return func(o *options) {
		o.defaultValue = v
	}
}

// WithBoundary sets the initial boundary policy.
func WithBoundary(b kernel.Boundary) Option {
	return func(o *options) {
		o.boundary = b
	}
}
