// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import "time"

// Defaults applied by Config.withDefaults.
const (
	DefaultPassesPerSubmit   = 64
	DefaultFenceTimeout      = 5 * time.Second
	DefaultPipelineCacheSize = 16
)

// Config configures a Backend.
type Config struct {
	// Acquirer provides the device and queue.
	// If nil, defaults to Headless{}.
	Acquirer Acquirer

	// PassesPerSubmit is the number of iterations encoded into one
	// command buffer before it is submitted and waited on.
	// If 0, defaults to DefaultPassesPerSubmit.
	PassesPerSubmit int

	// FenceTimeout bounds each wait for submitted work.
	// If 0, defaults to DefaultFenceTimeout.
	FenceTimeout time.Duration

	// PipelineCacheSize is the number of linked programs kept per layout.
	// If 0, defaults to DefaultPipelineCacheSize.
	PipelineCacheSize int
}

func (c Config) withDefaults() Config {
	if c.Acquirer == nil {
		c.Acquirer = Headless{}
	}
	if c.PassesPerSubmit <= 0 {
		c.PassesPerSubmit = DefaultPassesPerSubmit
	}
	if c.FenceTimeout <= 0 {
		c.FenceTimeout = DefaultFenceTimeout
	}
	if c.PipelineCacheSize <= 0 {
		c.PipelineCacheSize = DefaultPipelineCacheSize
	}
	return c
}
