// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package camera implements the 2D orthographic camera used for culling,
// picking and vertex transformation.
//
// The view is scale(zoom) applied after translate; the projection is an
// orthographic box of the viewport size centered on the origin. The MVP and
// its inverse are recomputed on every mutation, so readers always see a
// consistent View.
package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/gogpu/graphview/geom"
	"golang.org/x/image/math/f32"
)

// Zoom limits.
const (
	MinZoom float32 = 0.001
	MaxZoom float32 = 1000
)

// View is an immutable snapshot of the camera state.
type View struct {
	Zoom      float32
	Translate geom.Point

	// Width and Height are the viewport size in pixels.
	Width, Height float32

	MVP    f32.Mat4
	InvMVP f32.Mat4

	// Bounds is the world-space rectangle covered by the NDC unit square.
	Bounds geom.Rect
}

// ScreenToWorld maps a pixel position (origin top-left, Y down) to world
// space.
func (v *View) ScreenToWorld(sx, sy float32) geom.Point {
	nx := 2*sx/v.Width - 1
	ny := 1 - 2*sy/v.Height
	x, y := Transform(v.InvMVP, nx, ny)
	return geom.Pt(x, y)
}

// WorldToScreen maps a world position to pixels.
func (v *View) WorldToScreen(p geom.Point) (sx, sy float32) {
	nx, ny := Transform(v.MVP, p.X, p.Y)
	return (nx + 1) * v.Width / 2, (1 - ny) * v.Height / 2
}

// Camera is a concurrency-safe 2D camera. The render goroutine mutates it in
// response to input; update workers read it through View.
type Camera struct {
	mu   sync.RWMutex
	view View
}

// New returns a camera for a viewport of the given size, zoom 1, looking at
// the world origin.
func New(width, height int) *Camera {
	c := &Camera{}
	c.view.Zoom = 1
	c.view.Width = float32(max(width, 1))
	c.view.Height = float32(max(height, 1))
	c.recompute()
	return c
}

// View returns a snapshot of the current state.
func (c *Camera) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// Zoom returns the current zoom factor.
func (c *Camera) Zoom() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.Zoom
}

// Translation returns the current world translation.
func (c *Camera) Translation() geom.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.Translate
}

// Size returns the viewport size in pixels.
func (c *Camera) Size() (width, height float32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.Width, c.view.Height
}

// MVP returns the model-view-projection matrix.
func (c *Camera) MVP() f32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.MVP
}

// ViewBoundaries returns the world-space rectangle currently visible.
func (c *Camera) ViewBoundaries() geom.Rect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.Bounds
}

// ScreenToWorld maps a pixel position to world space.
func (c *Camera) ScreenToWorld(sx, sy float32) geom.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.ScreenToWorld(sx, sy)
}

// WorldToScreen maps a world position to pixels.
func (c *Camera) WorldToScreen(p geom.Point) (sx, sy float32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view.WorldToScreen(p)
}

// Reshape sets the viewport size. Non-positive sizes are clamped to one
// pixel.
func (c *Camera) Reshape(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Width = float32(max(width, 1))
	c.view.Height = float32(max(height, 1))
	c.recompute()
}

// SetZoom sets the zoom factor, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Zoom = clampZoom(z)
	c.recompute()
}

// SetTranslate sets the world translation.
func (c *Camera) SetTranslate(p geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Translate = p
	c.recompute()
}

// Translate adds d to the world translation.
func (c *Camera) Translate(d geom.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Translate = c.view.Translate.Add(d)
	c.recompute()
}

// Pan moves the view by a screen-space delta in pixels, so that content
// follows a drag.
func (c *Camera) Pan(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	z := c.view.Zoom
	c.view.Translate = c.view.Translate.Add(geom.Pt(dx/z, -dy/z))
	c.recompute()
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// the screen position (sx, sy) fixed.
func (c *Camera) ZoomAt(sx, sy, factor float32) {
	if factor <= 0 || math32.IsNaN(factor) || math32.IsInf(factor, 0) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	anchor := c.view.ScreenToWorld(sx, sy)
	z := clampZoom(c.view.Zoom * factor)

	// Pixel offset of the cursor from the viewport center, Y up.
	dx := sx - c.view.Width/2
	dy := c.view.Height/2 - sy

	c.view.Zoom = z
	c.view.Translate = geom.Pt(dx/z-anchor.X, dy/z-anchor.Y)
	c.recompute()
}

// CenterOn centers the view on p and zooms out, if needed, so that a
// w-by-h world box around p fits the viewport.
func (c *Camera) CenterOn(p geom.Point, w, h float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.view.Translate = geom.Pt(-p.X, -p.Y)

	z := c.view.Zoom
	visibleW := c.view.Width / z
	visibleH := c.view.Height / z
	if w*z > 1 || h*z > 1 {
		ratio := math32.Max(w/visibleW, h/visibleH)
		if ratio > 0 {
			c.view.Zoom = clampZoom(z / ratio)
		}
	}
	c.recompute()
}

// Fit centers the view on r so that it fills the viewport. Empty rects are
// ignored.
func (c *Camera) Fit(r geom.Rect) {
	if r.Empty() {
		return
	}
	c.CenterOn(r.Center(), r.Width(), r.Height())
}

// recompute rebuilds the matrices and the visible rect. The caller holds the
// write lock.
func (c *Camera) recompute() {
	v := &c.view
	view := Mul(scaling(v.Zoom), translation(v.Translate.X, v.Translate.Y))
	proj := ortho(-v.Width/2, v.Width/2, -v.Height/2, v.Height/2)
	v.MVP = Mul(proj, view)

	inv, ok := Invert(v.MVP)
	if !ok {
		// Only reachable with a degenerate zoom, which clampZoom rules out.
		panic("camera: singular MVP")
	}
	v.InvMVP = inv

	x0, y0 := Transform(inv, -1, -1)
	x1, y1 := Transform(inv, 1, 1)
	v.Bounds = geom.RectFromPoints(geom.Pt(x0, y0), geom.Pt(x1, y1))
}

func clampZoom(z float32) float32 {
	if math32.IsNaN(z) {
		return 1
	}
	return math32.Max(MinZoom, math32.Min(MaxZoom, z))
}
