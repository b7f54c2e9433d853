// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/automata/backend"
	"github.com/gogpu/automata/internal/cache"
	"github.com/gogpu/automata/kernel"
	"github.com/gogpu/automata/surface"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL used by Headless.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

const targetFormat = gputypes.TextureFormatRGBA8Unorm

func init() {
	backend.Register(backend.BackendWGPU, func() backend.Backend {
		return New(Config{})
	})
}

// target is one of the two state textures.
type target struct {
	tex   hal.Texture
	view  hal.TextureView
	bind  hal.BindGroup
	usage gputypes.TextureUsage
}

// pipeline is a linked program.
type pipeline struct {
	vertex   hal.ShaderModule
	fragment hal.ShaderModule
	pipe     hal.RenderPipeline
}

// Backend runs kernel programs as render passes on a HAL device.
type Backend struct {
	cfg Config

	ctx    Context
	device hal.Device
	queue  hal.Queue

	layout     surface.Layout
	configured bool
	targets    [2]target
	front      int

	vertexBuf  hal.Buffer
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  *cache.Cache[string, *pipeline]

	latch backend.Latch
}

// New creates an uninitialized GPU backend.
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg.withDefaults()}
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendWGPU
}

// Init acquires the device. Calling Init on an initialized backend is a
// no-op.
func (b *Backend) Init() error {
	if err := b.latch.Check("init"); err != nil {
		return err
	}
	if b.ctx != nil {
		return nil
	}
	ctx, err := b.cfg.Acquirer.Acquire(1, 1)
	if err != nil {
		return b.latch.Fail(&backend.ResourceError{Op: "init", Err: err})
	}
	b.ctx = ctx
	b.device = ctx.Device()
	b.queue = ctx.Queue()

	if err := b.createShared(); err != nil {
		return b.latch.Fail(&backend.ResourceError{Op: "init", Err: err})
	}

	b.pipelines = cache.New[string, *pipeline](b.cfg.PipelineCacheSize)
	b.pipelines.OnEvict(func(_ string, p *pipeline) { b.destroyPipeline(p) })
	return nil
}

// createShared creates the resources that do not depend on the layout.
func (b *Backend) createShared() error {
	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "automata_state_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	b.bindLayout = bindLayout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "automata_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout

	vertices := triangleBytes()
	vertexBuf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "automata_triangle",
		Size:  uint64(len(vertices)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	b.vertexBuf = vertexBuf
	b.queue.WriteBuffer(b.vertexBuf, 0, vertices)
	return nil
}

func triangleBytes() []byte {
	buf := make([]byte, 0, len(kernel.FullSurfaceTriangle)*4)
	for _, f := range kernel.FullSurfaceTriangle {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// Configure (re)creates both state textures for layout. Cached pipelines
// are dropped.
func (b *Backend) Configure(layout surface.Layout) error {
	if err := b.latch.Check("configure"); err != nil {
		return err
	}
	if b.ctx == nil {
		return backend.ErrNotInitialized
	}

	b.destroyTargets()
	b.clearPipelines()
	b.configured = false

	if err := b.ctx.Resize(layout.Width(), layout.Height()); err != nil {
		return b.latch.Fail(&backend.ResourceError{Op: "configure", Err: err})
	}
	for i := range b.targets {
		if err := b.createTarget(i, layout); err != nil {
			return b.latch.Fail(&backend.ResourceError{Op: "configure", Err: err})
		}
	}

	b.layout = layout
	b.front = 0
	b.configured = true
	backend.Logger().Debug("wgpu: configured", "width", layout.Width(), "height", layout.Height())
	return nil
}

func (b *Backend) createTarget(i int, layout surface.Layout) error {
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label: fmt.Sprintf("automata_state_%d", i),
		Size: hal.Extent3D{
			Width:              uint32(layout.Width()),  //nolint:gosec // bounded by device limits
			Height:             uint32(layout.Height()), //nolint:gosec // bounded by device limits
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        targetFormat,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create state texture %d: %w", i, err)
	}
	b.targets[i].tex = tex

	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         fmt.Sprintf("automata_state_%d_view", i),
		Format:        targetFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create state view %d: %w", i, err)
	}
	b.targets[i].view = view

	bind, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  fmt.Sprintf("automata_state_%d_bind", i),
		Layout: b.bindLayout,
		Entries: []gputypes.BindGroupEntry{{
			Binding:  0,
			Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()},
		}},
	})
	if err != nil {
		return fmt.Errorf("create state bind group %d: %w", i, err)
	}
	b.targets[i].bind = bind
	return nil
}

// Upload writes pixels into the front texture.
func (b *Backend) Upload(pixels []byte) error {
	if err := b.ready("upload"); err != nil {
		return err
	}
	if len(pixels) != b.layout.PackedLen() {
		return fmt.Errorf("%w: upload %d bytes, want %d", backend.ErrLayoutMismatch, len(pixels), b.layout.PackedLen())
	}
	w, h := b.extent()
	b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: b.targets[b.front].tex, MipLevel: 0},
		pixels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * surface.BytesPerPixel, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	b.targets[b.front].usage = gputypes.TextureUsageCopyDst
	return nil
}

// Run draws p iterations times, swapping front and back after each pass.
// Passes are submitted in chunks of Config.PassesPerSubmit.
func (b *Backend) Run(p *kernel.Program, iterations int) error {
	if err := b.ready("run"); err != nil {
		return err
	}
	if p == nil || p.Plan == nil {
		return fmt.Errorf("wgpu: run: nil program")
	}
	if iterations < 0 {
		return fmt.Errorf("wgpu: run: negative iteration count %d", iterations)
	}
	if !p.Layout().Equal(b.layout) {
		return fmt.Errorf("%w: program shape %v, configured %v", backend.ErrLayoutMismatch, p.Layout().Shape(), b.layout.Shape())
	}

	pl, err := b.pipelines.GetOrCreate(p.Key(), func() (*pipeline, error) {
		return b.link(p)
	})
	if err != nil {
		return b.latch.Fail(err)
	}

	for done := 0; done < iterations; {
		n := min(b.cfg.PassesPerSubmit, iterations-done)
		if err := b.submit("automata_step", func(enc hal.CommandEncoder) {
			for range n {
				b.encodeStep(enc, pl)
			}
		}); err != nil {
			return b.latch.Fail(&backend.ResourceError{Op: "run", Err: err})
		}
		done += n
	}
	return nil
}

func (b *Backend) encodeStep(enc hal.CommandEncoder, pl *pipeline) {
	b.front ^= 1
	src, dst := b.front^1, b.front
	b.transition(enc, src, gputypes.TextureUsageTextureBinding)
	b.transition(enc, dst, gputypes.TextureUsageRenderAttachment)

	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "automata_step",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       b.targets[dst].view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{},
		}},
	})
	rp.SetPipeline(pl.pipe)
	rp.SetBindGroup(0, b.targets[src].bind, nil)
	rp.SetVertexBuffer(0, b.vertexBuf, 0)
	rp.Draw(3, 1, 0, 0)
	rp.End()
}

// transition records a barrier moving target i to usage.
func (b *Backend) transition(enc hal.CommandEncoder, i int, usage gputypes.TextureUsage) {
	t := &b.targets[i]
	if t.usage == usage {
		return
	}
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage:   hal.TextureUsageTransition{OldUsage: t.usage, NewUsage: usage},
	}})
	t.usage = usage
}

// Download copies the front texture into a staging buffer and returns the
// packed pixels without row padding.
func (b *Backend) Download() ([]byte, error) {
	if err := b.ready("download"); err != nil {
		return nil, err
	}
	w, h := b.extent()
	bytesPerRow := w * surface.BytesPerPixel
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "automata_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, b.latch.Fail(&backend.ResourceError{Op: "download", Err: fmt.Errorf("create staging buffer: %w", err)})
	}
	defer b.device.DestroyBuffer(staging)

	front := b.targets[b.front].tex
	err = b.submit("automata_readback", func(enc hal.CommandEncoder) {
		b.transition(enc, b.front, gputypes.TextureUsageCopySrc)
		enc.CopyTextureToBuffer(front, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: front, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
	})
	if err != nil {
		return nil, b.latch.Fail(&backend.ResourceError{Op: "download", Err: err})
	}

	readback := make([]byte, stagingSize)
	if err := b.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, b.latch.Fail(&backend.ResourceError{Op: "download", Err: fmt.Errorf("readback: %w", err)})
	}
	return stripPadding(readback, int(bytesPerRow), int(alignedBytesPerRow), int(h)), nil
}

func stripPadding(readback []byte, bytesPerRow, alignedBytesPerRow, rows int) []byte {
	if bytesPerRow == alignedBytesPerRow {
		return readback[:bytesPerRow*rows]
	}
	tight := make([]byte, bytesPerRow*rows)
	for row := range rows {
		copy(tight[row*bytesPerRow:(row+1)*bytesPerRow], readback[row*alignedBytesPerRow:])
	}
	return tight
}

// submit records commands with record, submits them and waits for the
// fence.
func (b *Backend) submit(label string, record func(enc hal.CommandEncoder)) error {
	enc, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	record(enc)
	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return b.wait(fence, b.cfg.FenceTimeout)
}

func (b *Backend) wait(fence hal.Fence, timeout time.Duration) error {
	ok, err := b.device.Wait(fence, 1, timeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("wait for GPU: timed out after %v", timeout)
	}
	return nil
}

// Close releases every resource. The backend may not be reused.
func (b *Backend) Close() {
	if b.ctx == nil {
		return
	}
	if b.pipelines != nil {
		b.clearPipelines()
	}
	b.destroyTargets()
	if b.vertexBuf != nil {
		b.device.DestroyBuffer(b.vertexBuf)
		b.vertexBuf = nil
	}
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.bindLayout != nil {
		b.device.DestroyBindGroupLayout(b.bindLayout)
		b.bindLayout = nil
	}
	b.ctx.Destroy()
	b.ctx = nil
	b.device = nil
	b.queue = nil
	b.configured = false
}

func (b *Backend) destroyTargets() {
	for i := range b.targets {
		t := &b.targets[i]
		if t.bind != nil {
			b.device.DestroyBindGroup(t.bind)
		}
		if t.view != nil {
			b.device.DestroyTextureView(t.view)
		}
		if t.tex != nil {
			b.device.DestroyTexture(t.tex)
		}
		*t = target{}
	}
}

func (b *Backend) ready(op string) error {
	if err := b.latch.Check(op); err != nil {
		return err
	}
	if b.ctx == nil {
		return backend.ErrNotInitialized
	}
	if !b.configured {
		return backend.ErrNotConfigured
	}
	return nil
}

func (b *Backend) extent() (w, h uint32) {
	return uint32(b.layout.Width()), uint32(b.layout.Height()) //nolint:gosec // bounded by device limits
}
