// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/layers"
)

// Renderer draws one kind of element.
type Renderer interface {
	// Name identifies the renderer in logs and metrics.
	Name() string

	// Layers returns the layers the renderer draws in.
	Layers() []layers.Layer

	// WorldUpdated promotes the pipeline's last completed tick and uploads
	// it. It is called once per completed update round, before any draw.
	WorldUpdated() error

	// Render records the draw calls for layer into enc.
	Render(layer layers.Layer, enc gpu.DrawEncoder)

	// Destroy releases GPU resources.
	Destroy()
}

// Stats counts renderer activity.
type Stats struct {
	Uploads     uint64
	UploadBytes uint64
	Draws       uint64
}
