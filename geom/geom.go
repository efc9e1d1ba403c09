// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package geom provides the float32 world-space primitives shared by the
// camera, the spatial index and the selection model.
//
// World coordinates use the mathematical convention (Y up). Screen
// coordinates are converted by the camera package.
package geom

import "github.com/chewxy/math32"

// Point is a 2D point or vector in world space.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p*s.
func (p Point) Scale(s float32) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float32 {
	return p.X*q.X + p.Y*q.Y
}

// Len returns the Euclidean length of p.
func (p Point) Len() float32 {
	return math32.Hypot(p.X, p.Y)
}

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float32 {
	return p.Sub(q).Len()
}

// Dist2 returns the squared distance between p and q.
func (p Point) Dist2(q Point) float32 {
	d := p.Sub(q)
	return d.X*d.X + d.Y*d.Y
}

// Rect is an axis-aligned rectangle. Min is inclusive, Max is inclusive.
// A Rect with Min.X > Max.X or Min.Y > Max.Y is empty.
type Rect struct {
	Min, Max Point
}

// RectFromPoints returns the smallest Rect containing both a and b.
func RectFromPoints(a, b Point) Rect {
	return Rect{
		Min: Point{X: math32.Min(a.X, b.X), Y: math32.Min(a.Y, b.Y)},
		Max: Point{X: math32.Max(a.X, b.X), Y: math32.Max(a.Y, b.Y)},
	}
}

// EmptyRect returns a Rect that contains nothing and acts as the identity
// for Union and Extend.
func EmptyRect() Rect {
	return Rect{
		Min: Point{X: math32.Inf(1), Y: math32.Inf(1)},
		Max: Point{X: math32.Inf(-1), Y: math32.Inf(-1)},
	}
}

// Empty reports whether r contains no points.
func (r Rect) Empty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float32 {
	if r.Empty() {
		return 0
	}
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent of r.
func (r Rect) Height() float32 {
	if r.Empty() {
		return 0
	}
	return r.Max.Y - r.Min.Y
}

// Center returns the center point of r.
func (r Rect) Center() Point {
	return Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

// Contains reports whether p lies inside r, boundary included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ContainsRect reports whether o lies entirely inside r.
func (r Rect) ContainsRect(o Rect) bool {
	if o.Empty() {
		return true
	}
	return o.Min.X >= r.Min.X && o.Max.X <= r.Max.X && o.Min.Y >= r.Min.Y && o.Max.Y <= r.Max.Y
}

// Intersects reports whether r and o share at least one point.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X && r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Union returns the smallest Rect containing r and o.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		Min: Point{X: math32.Min(r.Min.X, o.Min.X), Y: math32.Min(r.Min.Y, o.Min.Y)},
		Max: Point{X: math32.Max(r.Max.X, o.Max.X), Y: math32.Max(r.Max.Y, o.Max.Y)},
	}
}

// Extend returns the smallest Rect containing r and p.
func (r Rect) Extend(p Point) Rect {
	return r.Union(Rect{Min: p, Max: p})
}

// Grow returns r expanded by d on every side.
func (r Rect) Grow(d float32) Rect {
	if r.Empty() {
		return r
	}
	return Rect{
		Min: Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Max: Point{X: r.Max.X + d, Y: r.Max.Y + d},
	}
}

// CircleBounds returns the bounding box of the circle centered at c with
// radius r.
func CircleBounds(c Point, r float32) Rect {
	r = math32.Abs(r)
	return Rect{
		Min: Point{X: c.X - r, Y: c.Y - r},
		Max: Point{X: c.X + r, Y: c.Y + r},
	}
}
