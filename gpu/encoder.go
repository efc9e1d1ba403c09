// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"github.com/gogpu/wgpu/hal"
)

// DrawEncoder is the part of a render pass the renderers record into.
// hal.RenderPassEncoder satisfies it.
type DrawEncoder interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndirect(buffer hal.Buffer, offset uint64)
}

var _ DrawEncoder = hal.RenderPassEncoder(nil)

// DrawCall is one recorded draw.
type DrawCall struct {
	Indirect       bool
	VertexCount    uint32
	InstanceCount  uint32
	FirstVertex    uint32
	FirstInstance  uint32
	IndirectOffset uint64
	Pipeline       hal.RenderPipeline
	VertexBuffers  int
}

// Recorder is a DrawEncoder that remembers draw calls instead of issuing
// them. It backs headless frames and tests.
type Recorder struct {
	Calls []DrawCall

	pipeline hal.RenderPipeline
	vertex   int
}

// SetPipeline records the active pipeline.
func (r *Recorder) SetPipeline(p hal.RenderPipeline) {
	r.pipeline = p
	r.vertex = 0
}

// SetBindGroup is a no-op.
func (r *Recorder) SetBindGroup(uint32, hal.BindGroup, []uint32) {}

// SetVertexBuffer counts the vertex buffers bound since the last pipeline.
func (r *Recorder) SetVertexBuffer(slot uint32, _ hal.Buffer, _ uint64) {
	r.vertex = max(r.vertex, int(slot)+1)
}

// Draw records a direct draw.
func (r *Recorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.Calls = append(r.Calls, DrawCall{
		VertexCount:   vertexCount,
		InstanceCount: instanceCount,
		FirstVertex:   firstVertex,
		FirstInstance: firstInstance,
		Pipeline:      r.pipeline,
		VertexBuffers: r.vertex,
	})
}

// DrawIndirect records an indirect draw.
func (r *Recorder) DrawIndirect(_ hal.Buffer, offset uint64) {
	r.Calls = append(r.Calls, DrawCall{
		Indirect:       true,
		IndirectOffset: offset,
		Pipeline:       r.pipeline,
		VertexBuffers:  r.vertex,
	})
}

// Reset forgets the recorded calls.
func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }
