// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/automata/backend"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Context is an acquired device with the surface size it was sized for.
type Context interface {
	Device() hal.Device
	Queue() hal.Queue
	Limits() gputypes.Limits

	// Resize re-targets the context to a width x height surface.
	Resize(width, height int) error

	// Destroy releases what the context owns. Shared devices are left alone.
	Destroy()
}

// Acquirer creates a Context for a width x height surface.
type Acquirer interface {
	Acquire(width, height int) (Context, error)
}

// API creates HAL instances. hal.GetBackend results and noop.API satisfy it.
type API interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Headless opens a device without a window.
type Headless struct {
	// API is the HAL to open. If nil, the registered Vulkan HAL is used.
	API API
}

// Acquire enumerates adapters, prefers a discrete or integrated GPU and
// opens it with default limits.
func (h Headless) Acquire(width, height int) (Context, error) {
	api := h.API
	if api == nil {
		vk, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, fmt.Errorf("%w: vulkan backend not available", backend.ErrContextUnavailable)
		}
		api = vk
	}

	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %v", backend.ErrContextUnavailable, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", backend.ErrContextUnavailable)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	limits := gputypes.DefaultLimits()
	openDev, err := selected.Adapter.Open(gputypes.Features(0), limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %v", backend.ErrContextUnavailable, err)
	}
	backend.Logger().Info("wgpu: device opened", "adapter", selected.Info.Name)

	ctx := &headlessContext{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		limits:   limits,
	}
	if err := ctx.Resize(width, height); err != nil {
		ctx.Destroy()
		return nil, err
	}
	return ctx, nil
}

type headlessContext struct {
	instance      hal.Instance
	device        hal.Device
	queue         hal.Queue
	limits        gputypes.Limits
	width, height int
}

func (c *headlessContext) Device() hal.Device      { return c.device }
func (c *headlessContext) Queue() hal.Queue        { return c.queue }
func (c *headlessContext) Limits() gputypes.Limits { return c.limits }

func (c *headlessContext) Resize(width, height int) error {
	if err := checkSize(c.limits, width, height); err != nil {
		return err
	}
	c.width, c.height = width, height
	return nil
}

func (c *headlessContext) Destroy() {
	if c.device != nil {
		c.device.Destroy()
		c.device = nil
		c.queue = nil
	}
	if c.instance != nil {
		c.instance.Destroy()
		c.instance = nil
	}
}

// Shared runs on the device of a host application. The provider must
// also expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
type Shared struct {
	Provider gpucontext.DeviceProvider
}

// Acquire borrows the provider's device. The returned context never
// destroys it.
func (s Shared) Acquire(width, height int) (Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := s.Provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", backend.ErrContextUnavailable)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", backend.ErrContextUnavailable)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", backend.ErrContextUnavailable)
	}

	ctx := &sharedContext{device: device, queue: queue, limits: gputypes.DefaultLimits()}
	if err := ctx.Resize(width, height); err != nil {
		return nil, err
	}
	return ctx, nil
}

type sharedContext struct {
	device        hal.Device
	queue         hal.Queue
	limits        gputypes.Limits
	width, height int
}

func (c *sharedContext) Device() hal.Device      { return c.device }
func (c *sharedContext) Queue() hal.Queue        { return c.queue }
func (c *sharedContext) Limits() gputypes.Limits { return c.limits }

func (c *sharedContext) Resize(width, height int) error {
	if err := checkSize(c.limits, width, height); err != nil {
		return err
	}
	c.width, c.height = width, height
	return nil
}

func (c *sharedContext) Destroy() {
	c.device = nil
	c.queue = nil
}

func checkSize(limits gputypes.Limits, width, height int) error {
	limit := int(limits.MaxTextureDimension2D)
	if width <= 0 || height <= 0 || width > limit || height > limit {
		return fmt.Errorf("surface %dx%d outside 1..%d", width, height, limit)
	}
	return nil
}
