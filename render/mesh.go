// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/lod"
	"github.com/gogpu/gputypes"
)

// Edge meshes as (along, across, arrow) triples. along runs from the source
// (0) to the target (1).
var (
	edgeQuad = []float32{
		0, -0.5, 0, 1, -0.5, 0, 1, 0.5, 0,
		0, -0.5, 0, 1, 0.5, 0, 0, 0.5, 0,
	}

	// edgeArrow is the quad followed by the arrowhead triangle: two base
	// corners and the tip.
	edgeArrow = append(append([]float32(nil), edgeQuad...),
		0, -1, 1, 0, 1, 1, 1, 0, 1,
	)
)

// edgeMesh returns the mesh of an edge kind.
func edgeMesh(directed bool) []float32 {
	if directed {
		return edgeArrow
	}
	return edgeQuad
}

// newMeshBuffer uploads a fixed mesh into an immutable vertex buffer.
func newMeshBuffer(ctx *gpu.Context, label string, mesh []float32) (*gpu.Buffer, error) {
	b, err := ctx.NewBuffer(gpu.BufferDescriptor{
		Label:     label,
		Size:      uint64(len(mesh) * f32Size), //nolint:gosec // G115: meshes are small
		Usage:     gputypes.BufferUsageVertex,
		Immutable: true,
	})
	if err != nil {
		return nil, err
	}
	if err := b.WriteFloats(0, mesh); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// newNodeMeshes uploads one circle mesh per LOD tier.
func newNodeMeshes(ctx *gpu.Context) ([lod.NumTiers]*gpu.Buffer, error) {
	var out [lod.NumTiers]*gpu.Buffer
	for t := range lod.NumTiers {
		tier := lod.Tier(t) //nolint:gosec // G115: tier count is tiny
		b, err := newMeshBuffer(ctx, "node_mesh_"+tier.String(), lod.Mesh(tier))
		if err != nil {
			for _, m := range out {
				m.Destroy()
			}
			return out, err
		}
		out[t] = b
	}
	return out, nil
}

// expand writes, for each record, every mesh vertex followed by the record
// into dst, returning the extended slice.
func expand(dst, mesh []float32, meshStride int, rec []float32) []float32 {
	for v := 0; v+meshStride <= len(mesh); v += meshStride {
		dst = append(dst, mesh[v:v+meshStride]...)
		dst = append(dst, rec...)
	}
	return dst
}
