// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/graphview/camera"
	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"
)

// globalsSize is the uniform block size in bytes: a column-major mat4x4
// followed by the background color.
const globalsSize = (16 + 4) * 4

// Globals is the uniform block shared by every program: the camera MVP and
// the background color the shaders blend toward.
type Globals struct {
	ctx  *gpu.Context
	cam  *camera.Camera
	opts *options.Store

	buf    *gpu.Buffer
	layout hal.BindGroupLayout
	group  hal.BindGroup

	written    bool
	mvp        f32.Mat4
	background graph.Color
	block      [16 + 4]float32
}

// NewGlobals creates the uniform buffer and its bind group.
func NewGlobals(ctx *gpu.Context, cam *camera.Camera, opts *options.Store) (*Globals, error) {
	g := &Globals{ctx: ctx, cam: cam, opts: opts}

	buf, err := ctx.NewBuffer(gpu.BufferDescriptor{
		Label:     "globals",
		Size:      globalsSize,
		Usage:     gputypes.BufferUsageUniform,
		Immutable: true,
	})
	if err != nil {
		return nil, err
	}
	g.buf = buf

	device := ctx.Device()
	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "globals_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		g.Destroy()
		return nil, fmt.Errorf("create globals layout: %w", err)
	}
	g.layout = layout

	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "globals",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: buf.Raw().NativeHandle(), Offset: 0, Size: globalsSize}},
		},
	})
	if err != nil {
		g.Destroy()
		return nil, fmt.Errorf("create globals bind group: %w", err)
	}
	g.group = group
	return g, nil
}

// Layout returns the bind group layout programs are built against.
func (g *Globals) Layout() hal.BindGroupLayout { return g.layout }

// BindGroup returns the bind group to set at index 0.
func (g *Globals) BindGroup() hal.BindGroup { return g.group }

// Sync uploads the uniform block if the camera or background changed since
// the last upload.
func (g *Globals) Sync() error {
	mvp := g.cam.MVP()
	bg := g.opts.Load().BackgroundColor
	if g.written && mvp == g.mvp && bg == g.background {
		return nil
	}

	// WGSL matrices are column-major.
	for r := range 4 {
		for c := range 4 {
			g.block[4*c+r] = mvp[4*r+c]
		}
	}
	cr, cg, cb, ca := bg.Channels()
	g.block[16] = float32(cr) / 255
	g.block[17] = float32(cg) / 255
	g.block[18] = float32(cb) / 255
	g.block[19] = float32(ca) / 255

	if err := g.buf.WriteFloats(0, g.block[:]); err != nil {
		return err
	}
	g.written, g.mvp, g.background = true, mvp, bg
	return nil
}

// Destroy releases the bind group, its layout and the buffer.
func (g *Globals) Destroy() {
	device := g.ctx.Device()
	if g.group != nil {
		device.DestroyBindGroup(g.group)
		g.group = nil
	}
	if g.layout != nil {
		device.DestroyBindGroupLayout(g.layout)
		g.layout = nil
	}
	g.buf.Destroy()
}
