// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/layers"
	"github.com/gogpu/graphview/lod"
	"github.com/gogpu/graphview/pipeline"
	"github.com/gogpu/gputypes"
)

// EdgeRenderer draws the edges of one kind as quads, with an arrowhead for
// directed edges.
type EdgeRenderer struct {
	drawer
	pipe     *pipeline.EdgePipeline
	directed bool
	meshBuf  *gpu.Buffer
}

var _ Renderer = (*EdgeRenderer)(nil)

// NewEdgeRenderer creates the edge program and buffers for the context's
// backend.
func NewEdgeRenderer(ctx *gpu.Context, globals *Globals, pipe *pipeline.EdgePipeline, opts ...Option) (*EdgeRenderer, error) {
	r := &EdgeRenderer{pipe: pipe, directed: pipe.Kind() == pipeline.EdgeKindDirected}
	stride := pipe.Stride()
	if err := r.init(pipe.Name(), ctx, globals, stride, edgeMeshStride/f32Size, opts); err != nil {
		r.Destroy()
		return nil, err
	}

	attrs := edgeAttributes(0, r.directed)
	var buffers []gputypes.VertexBufferLayout
	if r.backend.Instanced() {
		buf, err := newMeshBuffer(ctx, r.name+"_mesh", edgeMesh(r.directed))
		if err != nil {
			r.Destroy()
			return nil, err
		}
		r.meshBuf = buf
		buffers = instancedLayout(edgeMeshStride, gputypes.VertexFormatFloat32x3, stride, attrs)
	} else {
		attrs = edgeAttributes(edgeMeshStride, r.directed)
		buffers = vertexArrayLayout(edgeMeshStride, gputypes.VertexFormatFloat32x3, stride, attrs)
	}

	entry := "vs_undirected"
	if r.directed {
		entry = "vs_directed"
	}
	prog, err := newProgram(ctx, globals, programDesc{
		label:   r.name,
		source:  edgeShaderSource,
		entry:   entry,
		buffers: buffers,
	})
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: %s program: %w", r.name, err)
	}
	r.program = prog
	return r, nil
}

// Layers returns the edge layers.
func (r *EdgeRenderer) Layers() []layers.Layer {
	return []layers.Layer{layers.EdgesUnselected, layers.EdgesSelected}
}

// WorldUpdated promotes the edge pipeline and uploads the new slot.
func (r *EdgeRenderer) WorldUpdated() error {
	r.pipe.Promote()
	return r.upload(r.pipe.Front(), r)
}

// Render draws the partition that belongs to layer.
func (r *EdgeRenderer) Render(layer layers.Layer, enc gpu.DrawEncoder) {
	switch layer {
	case layers.EdgesUnselected:
		r.draw(enc, unselectedPart)
	case layers.EdgesSelected:
		r.draw(enc, selectedPart)
	}
}

// Destroy releases the program, mesh and buffers.
func (r *EdgeRenderer) Destroy() {
	r.destroy()
	r.meshBuf.Destroy()
}

func (r *EdgeRenderer) mesh(lod.Tier) ([]float32, *gpu.Buffer) {
	return edgeMesh(r.directed), r.meshBuf
}

func (r *EdgeRenderer) tier([]float32, float32) lod.Tier { return lod.Tier8 }
