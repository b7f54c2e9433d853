// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cache provides a generic LRU cache with a soft limit.
//
// It backs the neighbourhood resolution cache and the GPU pipeline cache:
//
//	c := cache.New[string, *pipeline](32)
//	c.OnEvict(func(_ string, p *pipeline) { p.destroy() })
//	p, err := c.GetOrCreate(key, build)
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
