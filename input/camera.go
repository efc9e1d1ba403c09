// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package input

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/graphview/camera"
	"github.com/gogpu/graphview/geom"
)

// DefaultZoomStep is the zoom factor applied per scrolled line.
const DefaultZoomStep = 1.1

// pixelsPerLine converts pixel scroll deltas to lines.
const pixelsPerLine = 40

// BoundsSource supplies the graph bounding box the fit key centers on.
type BoundsSource interface {
	GraphBoundingBox() geom.Rect
}

// CameraController pans on drag, zooms at the cursor on scroll, reshapes on
// resize and fits the graph when F is pressed.
type CameraController struct {
	cam    *camera.Camera
	bounds BoundsSource

	// ZoomStep is the zoom factor per scrolled line.
	ZoomStep float32

	dragging bool
	lastX    float32
	lastY    float32
}

// NewCameraController returns a controller driving cam. bounds may be nil,
// which disables the fit key.
func NewCameraController(cam *camera.Camera, bounds BoundsSource) *CameraController {
	return &CameraController{cam: cam, bounds: bounds, ZoomStep: DefaultZoomStep}
}

// HandleEvent implements Listener. Camera events are never consumed, so a
// selection controller later in the chain still sees clicks.
func (c *CameraController) HandleEvent(ev Event) bool {
	switch ev.Kind {
	case KindPointer:
		c.pointer(ev)
	case KindScroll:
		c.scroll(ev.Scroll)
	case KindResize:
		if ev.Width > 0 && ev.Height > 0 {
			c.cam.Reshape(ev.Width, ev.Height)
		}
	case KindKey:
		if ev.Pressed && ev.Key == gpucontext.KeyF && c.bounds != nil {
			c.cam.Fit(c.bounds.GraphBoundingBox())
		}
	}
	return false
}

func (c *CameraController) pointer(ev Event) {
	x, y := ev.Position()
	p := ev.Pointer
	switch p.Type {
	case gpucontext.PointerDown:
		// Shift-drag belongs to rectangle selection.
		if p.Button == gpucontext.ButtonLeft && p.Modifiers.HasShift() {
			return
		}
		if p.Button == gpucontext.ButtonLeft || p.Button == gpucontext.ButtonMiddle {
			c.dragging, c.lastX, c.lastY = true, x, y
		}
	case gpucontext.PointerMove:
		if !c.dragging {
			return
		}
		c.cam.Pan(x-c.lastX, y-c.lastY)
		c.lastX, c.lastY = x, y
	case gpucontext.PointerUp, gpucontext.PointerCancel:
		c.dragging = false
	}
}

func (c *CameraController) scroll(ev gpucontext.ScrollEvent) {
	lines := float32(ev.DeltaY)
	switch ev.DeltaMode {
	case gpucontext.ScrollDeltaPixel:
		lines /= pixelsPerLine
	case gpucontext.ScrollDeltaPage:
		lines *= 10
	}
	if lines == 0 {
		return
	}
	// Scrolling down zooms out.
	c.cam.ZoomAt(float32(ev.X), float32(ev.Y), math32.Pow(c.ZoomStep, -lines))
}

// Dragging reports whether a pan drag is in progress.
func (c *CameraController) Dragging() bool { return c.dragging }
