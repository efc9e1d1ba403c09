// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sync/atomic"

	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/lod"
	"github.com/gogpu/graphview/pipeline"
	"github.com/gogpu/gputypes"
)

// indirectArgsSize is the size of one DrawIndirectArgs record.
const indirectArgsSize = 4 * 4

// Partition indices within a slot.
const (
	unselectedPart = 0
	selectedPart   = 1
)

// Option configures a renderer.
type Option func(*config)

type config struct {
	mode gpu.UpdateMode
}

// WithUpdateMode sets how the instance buffer receives new data.
func WithUpdateMode(m gpu.UpdateMode) Option {
	return func(c *config) { c.mode = m }
}

// shape supplies the meshes of an element kind.
type shape interface {
	// mesh returns the mesh for a tier and its uploaded buffer.
	mesh(t lod.Tier) ([]float32, *gpu.Buffer)

	// tier picks the mesh tier of one record on the vertex array path.
	tier(rec []float32, zoom float32) lod.Tier
}

// part is the draw range of one partition. first and count index instances,
// or vertices on the vertex array path.
type part struct {
	first    uint32
	count    uint32
	vertices uint32
	mesh     *gpu.Buffer
}

// drawer holds the GPU buffers and draw ranges shared by the node and edge
// renderers.
type drawer struct {
	name       string
	ctx        *gpu.Context
	globals    *Globals
	program    *program
	backend    gpu.Backend
	stride     int
	meshStride int

	data     *gpu.Buffer
	indirect *gpu.Buffer

	parts    [2]part
	gen      uint64
	uploaded bool
	scratch  []float32
	args     [8]uint32

	// Counters are read by metrics scrapes off the render goroutine.
	uploads     atomic.Uint64
	uploadBytes atomic.Uint64
	draws       atomic.Uint64
}

func (d *drawer) init(name string, ctx *gpu.Context, globals *Globals, stride, meshStride int, opts []Option) error {
	cfg := config{mode: gpu.UpdateOrphan}
	for _, opt := range opts {
		opt(&cfg)
	}
	d.name = name
	d.ctx = ctx
	d.globals = globals
	d.backend = ctx.Backend()
	d.stride = stride
	d.meshStride = meshStride

	data, err := ctx.NewBuffer(gpu.BufferDescriptor{
		Label: name + "_data",
		Usage: gputypes.BufferUsageVertex,
		Mode:  cfg.mode,
	})
	if err != nil {
		return err
	}
	d.data = data

	if d.backend == gpu.BackendIndirect {
		ind, err := ctx.NewBuffer(gpu.BufferDescriptor{
			Label:     name + "_indirect",
			Size:      2 * indirectArgsSize,
			Usage:     gputypes.BufferUsageIndirect,
			Immutable: true,
		})
		if err != nil {
			return err
		}
		d.indirect = ind
	}
	return nil
}

// Name returns the renderer name.
func (d *drawer) Name() string { return d.name }

// Stats returns upload and draw counters.
func (d *drawer) Stats() Stats {
	return Stats{
		Uploads:     d.uploads.Load(),
		UploadBytes: d.uploadBytes.Load(),
		Draws:       d.draws.Load(),
	}
}

// upload refreshes the draw ranges from a promoted frame and uploads its
// data when the generation changed.
func (d *drawer) upload(f pipeline.Frame, s shape) error {
	if f.Counts.Total() == 0 {
		d.parts = [2]part{}
		return nil
	}
	if d.uploaded && f.Generation == d.gen {
		return nil
	}

	var err error
	if d.backend == gpu.BackendVertexArray {
		err = d.uploadVertices(f, s)
	} else {
		err = d.uploadInstances(f, s)
	}
	if err != nil {
		d.uploaded = false
		d.parts = [2]part{}
		return err
	}
	d.gen, d.uploaded = f.Generation, true
	d.uploads.Add(1)
	return nil
}

func (d *drawer) uploadInstances(f pipeline.Frame, s shape) error {
	if err := d.data.WriteFloats(0, f.Data); err != nil {
		return err
	}
	d.uploadBytes.Add(uint64(len(f.Data) * f32Size)) //nolint:gosec // G115: length is non-negative

	//nolint:gosec // G115: instance counts fit uint32
	ranges := [2][2]uint32{
		{0, uint32(f.Counts.Unselected)},
		{uint32(f.Counts.Unselected), uint32(f.Counts.Selected)},
	}
	tiers := [2]lod.Tier{f.Counts.UnselectedTier, f.Counts.SelectedTier}
	for i, r := range ranges {
		mesh, buf := s.mesh(tiers[i])
		d.parts[i] = part{
			first:    r[0],
			count:    r[1],
			vertices: uint32(len(mesh) / d.meshStride), //nolint:gosec // G115: meshes are small
			mesh:     buf,
		}
	}

	if d.indirect == nil {
		return nil
	}
	for i, p := range d.parts {
		d.args[4*i+0] = p.vertices
		d.args[4*i+1] = p.count
		d.args[4*i+2] = 0
		d.args[4*i+3] = p.first
	}
	return d.indirect.WriteUint32s(0, d.args[:])
}

func (d *drawer) uploadVertices(f pipeline.Frame, s shape) error {
	zoom := d.globals.cam.Zoom()
	d.scratch = d.scratch[:0]
	vertexFloats := d.meshStride + d.stride

	bounds := [2][2]int{
		{0, f.Counts.Unselected},
		{f.Counts.Unselected, f.Counts.Total()},
	}
	for i, b := range bounds {
		start := len(d.scratch) / vertexFloats
		for r := b[0]; r < b[1]; r++ {
			rec := f.Data[r*d.stride : (r+1)*d.stride]
			mesh, _ := s.mesh(s.tier(rec, zoom))
			d.scratch = expand(d.scratch, mesh, d.meshStride, rec)
		}
		end := len(d.scratch) / vertexFloats
		//nolint:gosec // G115: vertex counts fit uint32
		d.parts[i] = part{first: uint32(start), count: uint32(end - start)}
	}

	if err := d.data.WriteFloats(0, d.scratch); err != nil {
		return err
	}
	d.uploadBytes.Add(uint64(len(d.scratch) * f32Size)) //nolint:gosec // G115: length is non-negative
	return nil
}

// draw records the draw call of partition i.
func (d *drawer) draw(enc gpu.DrawEncoder, i int) {
	p := d.parts[i]
	if p.count == 0 {
		return
	}
	if err := d.globals.Sync(); err != nil {
		slogger().Error("render: globals upload failed", "renderer", d.name, "err", err)
		return
	}

	enc.SetPipeline(d.program.pipeline)
	enc.SetBindGroup(0, d.globals.BindGroup(), nil)
	switch d.backend {
	case gpu.BackendIndirect:
		enc.SetVertexBuffer(0, p.mesh.Raw(), 0)
		enc.SetVertexBuffer(1, d.data.Raw(), 0)
		enc.DrawIndirect(d.indirect.Raw(), uint64(i*indirectArgsSize)) //nolint:gosec // G115: i is 0 or 1
	case gpu.BackendInstanced:
		offset := uint64(p.first) * uint64(d.stride*f32Size) //nolint:gosec // G115: stride is small
		enc.SetVertexBuffer(0, p.mesh.Raw(), 0)
		enc.SetVertexBuffer(1, d.data.Raw(), offset)
		enc.Draw(p.vertices, p.count, 0, 0)
	default:
		enc.SetVertexBuffer(0, d.data.Raw(), 0)
		enc.Draw(p.count, 1, p.first, 0)
	}
	d.draws.Add(1)
}

func (d *drawer) destroy() {
	if d.program != nil {
		d.program.Destroy()
	}
	d.data.Destroy()
	d.indirect.Destroy()
}
