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

// NodeRenderer draws node discs with a level-of-detail circle mesh.
type NodeRenderer struct {
	drawer
	pipe   *pipeline.NodePipeline
	meshes [lod.NumTiers]*gpu.Buffer
}

var _ Renderer = (*NodeRenderer)(nil)

// NewNodeRenderer creates the node program and buffers for the context's
// backend.
func NewNodeRenderer(ctx *gpu.Context, globals *Globals, pipe *pipeline.NodePipeline, opts ...Option) (*NodeRenderer, error) {
	r := &NodeRenderer{pipe: pipe}
	if err := r.init(pipe.Name(), ctx, globals, pipeline.NodeStride, nodeMeshStride/f32Size, opts); err != nil {
		r.Destroy()
		return nil, err
	}

	var buffers []gputypes.VertexBufferLayout
	if r.backend.Instanced() {
		meshes, err := newNodeMeshes(ctx)
		if err != nil {
			r.Destroy()
			return nil, err
		}
		r.meshes = meshes
		buffers = instancedLayout(nodeMeshStride, gputypes.VertexFormatFloat32x2, pipeline.NodeStride, nodeAttributes(0))
	} else {
		buffers = vertexArrayLayout(nodeMeshStride, gputypes.VertexFormatFloat32x2, pipeline.NodeStride, nodeAttributes(nodeMeshStride))
	}

	prog, err := newProgram(ctx, globals, programDesc{
		label:   "node",
		source:  nodeShaderSource,
		entry:   "vs_main",
		buffers: buffers,
	})
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("render: node program: %w", err)
	}
	r.program = prog
	return r, nil
}

// Layers returns the node layers.
func (r *NodeRenderer) Layers() []layers.Layer {
	return []layers.Layer{layers.NodesUnselected, layers.NodesSelected}
}

// WorldUpdated promotes the node pipeline and uploads the new slot.
func (r *NodeRenderer) WorldUpdated() error {
	r.pipe.Promote()
	return r.upload(r.pipe.Front(), r)
}

// Render draws the partition that belongs to layer.
func (r *NodeRenderer) Render(layer layers.Layer, enc gpu.DrawEncoder) {
	switch layer {
	case layers.NodesUnselected:
		r.draw(enc, unselectedPart)
	case layers.NodesSelected:
		r.draw(enc, selectedPart)
	}
}

// Destroy releases the program, meshes and buffers.
func (r *NodeRenderer) Destroy() {
	r.destroy()
	for _, m := range r.meshes {
		m.Destroy()
	}
}

func (r *NodeRenderer) mesh(t lod.Tier) ([]float32, *gpu.Buffer) {
	return lod.Mesh(t), r.meshes[t]
}

func (r *NodeRenderer) tier(rec []float32, zoom float32) lod.Tier {
	return lod.ForNode(rec[2], zoom)
}
