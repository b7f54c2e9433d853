// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/automata/backend"
	"github.com/gogpu/automata/kernel"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(stage, source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, &backend.CompileError{Stage: stage, Source: source, Err: err}
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

func (b *Backend) shaderModule(stage, source string) (hal.ShaderModule, error) {
	words, err := compileSPIRV(stage, source)
	if err != nil {
		return nil, err
	}
	module, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "automata_" + stage,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return nil, &backend.ResourceError{Op: "compile", Err: fmt.Errorf("create %s module: %w", stage, err)}
	}
	return module, nil
}

// link compiles both stages of p and links them into a render pipeline.
func (b *Backend) link(p *kernel.Program) (*pipeline, error) {
	pl := &pipeline{}
	var err error
	if pl.vertex, err = b.shaderModule("vertex", p.Vertex); err != nil {
		return nil, err
	}
	if pl.fragment, err = b.shaderModule("fragment", p.Fragment); err != nil {
		b.destroyPipeline(pl)
		return nil, err
	}

	pl.pipe, err = b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "automata_step",
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     pl.vertex,
			EntryPoint: kernel.VertexEntry,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: 8,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes: []gputypes.VertexAttribute{
					{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     pl.fragment,
			EntryPoint: kernel.FragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    targetFormat,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		b.destroyPipeline(pl)
		return nil, &backend.ResourceError{Op: "link", Err: err}
	}
	backend.Logger().Debug("wgpu: linked program", "key", p.Key()[:12])
	return pl, nil
}

func (b *Backend) destroyPipeline(pl *pipeline) {
	if b.device == nil || pl == nil {
		return
	}
	if pl.pipe != nil {
		b.device.DestroyRenderPipeline(pl.pipe)
	}
	if pl.fragment != nil {
		b.device.DestroyShaderModule(pl.fragment)
	}
	if pl.vertex != nil {
		b.device.DestroyShaderModule(pl.vertex)
	}
}

// clearPipelines releases every linked program.
func (b *Backend) clearPipelines() {
	s := b.pipelines.Stats()
	backend.Logger().Debug("wgpu: pipeline cache cleared",
		"programs", s.Len, "hits", s.Hits, "misses", s.Misses, "hit_rate", s.HitRate)
	b.pipelines.Clear()
}

// CachedPrograms returns the number of linked programs held for the
// current layout.
func (b *Backend) CachedPrograms() int {
	if b.pipelines == nil {
		return 0
	}
	return b.pipelines.Len()
}
