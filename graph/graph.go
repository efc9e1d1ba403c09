// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package graph defines the graph model contract consumed by the rendering
// core and an in-memory implementation of it.
//
// The rendering core only reads the model. Every read happens between RLock
// and RUnlock; writers (layout, import) take the write lock through the
// concrete implementation.
package graph

import (
	"image/color"
	"iter"
	"math"

	"github.com/gogpu/graphview/geom"
)

// NodeID identifies a node within a model.
type NodeID int64

// EdgeID identifies an edge within a model.
type EdgeID int64

// Color is a packed 0xRRGGBBAA color.
type Color uint32

// RGBA packs 8-bit channels into a Color.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a))
}

// FromColor converts any color.Color into a packed Color.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	//nolint:gosec // G115: shifts keep values within 8 bits
	return RGBA(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
}

// Channels returns the unpacked 8-bit channels.
func (c Color) Channels() (r, g, b, a uint8) {
	//nolint:gosec // G115: masks keep values within 8 bits
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Bits returns c reinterpreted as a float32 so it can travel inside a float
// attribute record. The shader reinterprets the bits back to a uint.
func (c Color) Bits() float32 {
	return math.Float32frombits(uint32(c))
}

// ColorFromBits is the inverse of Color.Bits.
func ColorFromBits(f float32) Color {
	return Color(math.Float32bits(f))
}

// Node is a vertex of the graph as seen by the renderer.
type Node struct {
	ID    NodeID
	X, Y  float32
	Size  float32
	Color Color
}

// Position returns the node center.
func (n Node) Position() geom.Point {
	return geom.Point{X: n.X, Y: n.Y}
}

// Bounds returns the bounding box of the node disc.
func (n Node) Bounds() geom.Rect {
	return geom.CircleBounds(n.Position(), n.Size)
}

// Edge connects two nodes.
type Edge struct {
	ID       EdgeID
	Source   NodeID
	Target   NodeID
	Weight   float32
	Color    Color
	Directed bool
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool {
	return e.Source == e.Target
}

// Other returns the endpoint of e opposite to id.
func (e Edge) Other(id NodeID) NodeID {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// Model is the read contract the rendering core consumes.
//
// All methods except RLock, RUnlock and Version require the caller to hold
// the read lock.
type Model interface {
	RLock()
	RUnlock()

	// Version increases on every structural or positional mutation.
	Version() uint64

	NodeCount() int
	EdgeCount() int

	Node(id NodeID) (Node, bool)
	Edge(id EdgeID) (Edge, bool)

	Nodes() iter.Seq[Node]
	Edges() iter.Seq[Edge]

	// IncidentEdges yields every edge that has id as source or target.
	// Self loops are yielded once.
	IncidentEdges(id NodeID) iter.Seq[Edge]

	// BoxIndex returns the bounding-box spatial structure over this model.
	BoxIndex() BoxIndex
}

// BoxIndex narrows nodes and edges by axis-aligned bounding box. Results may
// contain elements whose box intersects r but whose exact shape does not.
//
// The caller must hold the model read lock while iterating. Iteration stops
// as soon as yield returns false.
type BoxIndex interface {
	NodesInBox(r geom.Rect) iter.Seq[Node]
	EdgesInBox(r geom.Rect) iter.Seq[Edge]

	// Bounds returns the bounding box of all node discs, empty when the
	// model has no nodes.
	Bounds() geom.Rect
}

// WeightIndexer is implemented by models that maintain the edge weight
// range incrementally. The caller must hold the read lock.
type WeightIndexer interface {
	EdgeWeightRange() (lo, hi float32, ok bool)
}
