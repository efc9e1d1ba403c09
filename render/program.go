// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// programDesc describes one render pipeline.
type programDesc struct {
	label   string
	source  string
	entry   string
	buffers []gputypes.VertexBufferLayout
}

// program is a compiled shader with its pipeline layout and render
// pipeline.
type program struct {
	device hal.Device

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// newProgram compiles desc against the globals bind group layout with
// premultiplied alpha blending into the context's color format.
func newProgram(ctx *gpu.Context, globals *Globals, desc programDesc) (*program, error) { //nolint:dupl // mirrors the other GPU pipeline builders
	p := &program{device: ctx.Device()}

	shader, err := ctx.ShaderModule(desc.label+"_shader", desc.source)
	if err != nil {
		return nil, err
	}
	p.shader = shader

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{globals.Layout()},
	})
	if err != nil {
		p.Destroy()
		return nil, fmt.Errorf("create %s pipeline layout: %w", desc.label, err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: desc.entry,
			Buffers:    desc.buffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    ctx.Format(),
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
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
		p.Destroy()
		return nil, fmt.Errorf("create %s pipeline: %w", desc.label, err)
	}
	p.pipeline = pipeline
	return p, nil
}

// Destroy releases pipeline resources in reverse creation order.
func (p *program) Destroy() {
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// Vertex layouts. Attribute locations match the WGSL inputs; the vertex
// array layouts interleave the mesh vertex with the instance record.
const (
	f32Size = 4

	nodeMeshStride = 2 * f32Size
	edgeMeshStride = 3 * f32Size
)

func nodeAttributes(base uint64) []gputypes.VertexAttribute {
	return []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x2, Offset: base + 0, ShaderLocation: 1},  // center
		{Format: gputypes.VertexFormatFloat32, Offset: base + 8, ShaderLocation: 2},    // size
		{Format: gputypes.VertexFormatUint32, Offset: base + 12, ShaderLocation: 3},    // color
		{Format: gputypes.VertexFormatFloat32x2, Offset: base + 16, ShaderLocation: 4}, // bias, multiplier
	}
}

func edgeAttributes(base uint64, directed bool) []gputypes.VertexAttribute {
	attrs := []gputypes.VertexAttribute{
		{Format: gputypes.VertexFormatFloat32x4, Offset: base + 0, ShaderLocation: 1},  // source, target
		{Format: gputypes.VertexFormatFloat32, Offset: base + 16, ShaderLocation: 2},   // thickness
		{Format: gputypes.VertexFormatUint32, Offset: base + 20, ShaderLocation: 3},    // color
		{Format: gputypes.VertexFormatFloat32x2, Offset: base + 24, ShaderLocation: 4}, // bias, multiplier
	}
	if directed {
		attrs = append(attrs, gputypes.VertexAttribute{
			Format: gputypes.VertexFormatFloat32, Offset: base + 32, ShaderLocation: 5, // target size
		})
	}
	return attrs
}

// instancedLayout is a mesh buffer at slot 0 and an instance buffer at
// slot 1.
func instancedLayout(meshStride uint64, meshFormat gputypes.VertexFormat, stride int, attrs []gputypes.VertexAttribute) []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: meshStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes:  []gputypes.VertexAttribute{{Format: meshFormat, Offset: 0, ShaderLocation: 0}},
		},
		{
			ArrayStride: uint64(stride * f32Size), //nolint:gosec // G115: record strides are small
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes:  attrs,
		},
	}
}

// vertexArrayLayout is a single buffer of mesh vertices, each followed by
// its instance record.
func vertexArrayLayout(meshStride uint64, meshFormat gputypes.VertexFormat, stride int, attrs []gputypes.VertexAttribute) []gputypes.VertexBufferLayout {
	all := append([]gputypes.VertexAttribute{{Format: meshFormat, Offset: 0, ShaderLocation: 0}}, attrs...)
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: meshStride + uint64(stride*f32Size), //nolint:gosec // G115: record strides are small
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes:  all,
		},
	}
}
