// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lod maps on-screen node size to a circle tessellation tier.
package lod

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Tier is a circle mesh tessellation level.
type Tier uint8

// Tiers from coarsest to finest.
const (
	Tier8 Tier = iota
	Tier16
	Tier32
	Tier64

	// NumTiers is the number of tiers.
	NumTiers = int(Tier64) + 1
)

// Observed-size thresholds in pixels. A size strictly greater than a
// threshold selects the finer tier.
const (
	threshold64 float32 = 128
	threshold32 float32 = 16
	threshold16 float32 = 2
)

// Segments returns the number of rim segments of the tier's polygon.
func (t Tier) Segments() int {
	return 8 << t
}

// String returns the tier name, such as "16-gon".
func (t Tier) String() string {
	if int(t) >= NumTiers {
		return fmt.Sprintf("Tier(%d)", t)
	}
	return fmt.Sprintf("%d-gon", t.Segments())
}

// ObservedSize returns the on-screen size of an element.
func ObservedSize(size, zoom float32) float32 {
	return size * zoom
}

// Select returns the tier for an observed size.
func Select(observed float32) Tier {
	switch {
	case observed > threshold64:
		return Tier64
	case observed > threshold32:
		return Tier32
	case observed > threshold16:
		return Tier16
	default:
		return Tier8
	}
}

// ForNode returns the tier for a node of the given world size at zoom.
func ForNode(size, zoom float32) Tier {
	return Select(ObservedSize(size, zoom))
}

// Batch accumulates the largest observed size over a batch of instances,
// for draw paths that use one mesh per batch.
type Batch struct {
	max float32
}

// Add records one instance.
func (b *Batch) Add(size, zoom float32) {
	b.max = math32.Max(b.max, ObservedSize(size, zoom))
}

// Tier returns the tier for the largest instance seen.
func (b *Batch) Tier() Tier {
	return Select(b.max)
}

// Reset forgets all instances.
func (b *Batch) Reset() {
	b.max = 0
}

// meshes holds the unit circle triangle lists per tier.
var meshes = func() [NumTiers][]float32 {
	var m [NumTiers][]float32
	for t := range NumTiers {
		m[t] = circle(Tier(t).Segments())
	}
	return m
}()

// Mesh returns the unit circle of tier t as a triangle list of (x, y)
// pairs, three vertices per segment. The slice is shared and must not be
// modified.
func Mesh(t Tier) []float32 {
	return meshes[t]
}

// VertexCount returns the number of vertices in Mesh(t).
func VertexCount(t Tier) int {
	return 3 * t.Segments()
}

func circle(n int) []float32 {
	out := make([]float32, 0, 6*n)
	step := 2 * math32.Pi / float32(n)
	for i := range n {
		s0, c0 := math32.Sincos(step * float32(i))
		s1, c1 := math32.Sincos(step * float32(i+1))
		out = append(out, 0, 0, c0, s0, c1, s1)
	}
	return out
}
