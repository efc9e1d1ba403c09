// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import "github.com/chewxy/math32"

// PointInCircle reports whether p lies inside or on the circle (c, r).
func PointInCircle(p, c Point, r float32) bool {
	return p.Dist2(c) <= r*r
}

// CirclesIntersect reports whether circles (c1, r1) and (c2, r2) overlap.
func CirclesIntersect(c1 Point, r1 float32, c2 Point, r2 float32) bool {
	s := r1 + r2
	return c1.Dist2(c2) <= s*s
}

// RectIntersectsCircle reports whether the rectangle and the circle (c, r)
// overlap. The test clamps c to the rectangle and compares the distance of
// the clamped point against r.
func RectIntersectsCircle(rect Rect, c Point, r float32) bool {
	if rect.Empty() {
		return false
	}
	nearest := Point{
		X: clamp(c.X, rect.Min.X, rect.Max.X),
		Y: clamp(c.Y, rect.Min.Y, rect.Max.Y),
	}
	return nearest.Dist2(c) <= r*r
}

// SegmentDist2 returns the squared distance from p to segment ab.
func SegmentDist2(a, b, p Point) float32 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Dist2(a)
	}
	t := clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return p.Dist2(a.Add(ab.Scale(t)))
}

// SegmentIntersectsCircle reports whether segment ab passes within r of c.
func SegmentIntersectsCircle(a, b, c Point, r float32) bool {
	return SegmentDist2(a, b, c) <= r*r
}

// SegmentIntersectsRect reports whether segment ab touches the rectangle.
// It uses Liang-Barsky clipping.
func SegmentIntersectsRect(a, b Point, rect Rect) bool {
	if rect.Empty() {
		return false
	}
	if rect.Contains(a) || rect.Contains(b) {
		return true
	}
	d := b.Sub(a)
	t0, t1 := float32(0), float32(1)
	clip := func(p, q float32) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			t0 = math32.Max(t0, t)
		} else {
			if t < t0 {
				return false
			}
			t1 = math32.Min(t1, t)
		}
		return true
	}
	return clip(-d.X, a.X-rect.Min.X) &&
		clip(d.X, rect.Max.X-a.X) &&
		clip(-d.Y, a.Y-rect.Min.Y) &&
		clip(d.Y, rect.Max.Y-a.Y) &&
		t0 <= t1
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
