// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package spatial answers visibility and hit-test queries over a graph model.
//
// Box narrowing is delegated to the model's graph.BoxIndex. This package adds
// exact geometric refinement on top of it and caches the edge weight range
// per model version.
//
// Every query returns an iter.Seq that holds the model read lock only while
// it is being ranged over. Breaking out of the loop releases the lock. Loop
// bodies must not mutate the model.
package spatial

import (
	"iter"
	"sync"

	"github.com/chewxy/math32"
	"github.com/gogpu/graphview/geom"
	"github.com/gogpu/graphview/graph"
)

// VisibleEdge is an edge together with its resolved endpoints.
type VisibleEdge struct {
	graph.Edge
	Src graph.Node
	Dst graph.Node
}

// Segment returns the edge as a world-space segment.
func (e VisibleEdge) Segment() (a, b geom.Point) {
	return e.Src.Position(), e.Dst.Position()
}

// Index is the spatial query surface over one graph model.
type Index struct {
	model graph.Model

	bindOnce sync.Once
	box      graph.BoxIndex

	weightMu      sync.Mutex
	weightVersion uint64
	weightValid   bool
	weightLo      float32
	weightHi      float32
}

// New returns an Index over m. The model's box index is bound on first use.
func New(m graph.Model) *Index {
	return &Index{model: m}
}

// Model returns the indexed graph model.
func (x *Index) Model() graph.Model { return x.model }

// bind resolves the box index once. Idempotent and safe for concurrent use.
func (x *Index) bind() graph.BoxIndex {
	x.bindOnce.Do(func() {
		x.box = x.model.BoxIndex()
	})
	return x.box
}

// NodeCount returns the number of nodes in the model.
func (x *Index) NodeCount() int {
	x.model.RLock()
	defer x.model.RUnlock()
	return x.model.NodeCount()
}

// EdgeCount returns the number of edges in the model.
func (x *Index) EdgeCount() int {
	x.model.RLock()
	defer x.model.RUnlock()
	return x.model.EdgeCount()
}

// GraphBoundingBox returns the bounding box of all node discs. It is empty
// when the model has no nodes.
func (x *Index) GraphBoundingBox() geom.Rect {
	box := x.bind()
	x.model.RLock()
	defer x.model.RUnlock()
	return box.Bounds()
}

// EdgeWeightRange returns the minimum and maximum edge weight. A model
// without edges yields (1, 1). The result is cached until the model version
// changes.
func (x *Index) EdgeWeightRange() (lo, hi float32) {
	x.model.RLock()
	defer x.model.RUnlock()

	if x.model.EdgeCount() == 0 {
		return 1, 1
	}

	v := x.model.Version()
	x.weightMu.Lock()
	defer x.weightMu.Unlock()
	if x.weightValid && x.weightVersion == v {
		return x.weightLo, x.weightHi
	}

	var ok bool
	if wi, isIndexed := x.model.(graph.WeightIndexer); isIndexed {
		lo, hi, ok = wi.EdgeWeightRange()
	}
	if !ok {
		lo, hi = math32.Inf(1), math32.Inf(-1)
		for e := range x.model.Edges() {
			lo = math32.Min(lo, e.Weight)
			hi = math32.Max(hi, e.Weight)
		}
	}

	x.weightLo, x.weightHi = lo, hi
	x.weightVersion, x.weightValid = v, true
	return lo, hi
}

// VisibleNodes yields nodes whose bounding box intersects the world rect r.
func (x *Index) VisibleNodes(r geom.Rect) iter.Seq[graph.Node] {
	return x.nodes(r, nil)
}

// VisibleEdges yields edges whose endpoint bounding box intersects the world
// rect r, with both endpoints resolved. Edges with a missing endpoint are
// skipped.
func (x *Index) VisibleEdges(r geom.Rect) iter.Seq[VisibleEdge] {
	return x.edges(r, nil)
}

// NodesUnderPoint yields nodes whose disc contains p.
func (x *Index) NodesUnderPoint(p geom.Point) iter.Seq[graph.Node] {
	return x.nodes(geom.Rect{Min: p, Max: p}, func(n graph.Node) bool {
		return geom.PointInCircle(p, n.Position(), n.Size)
	})
}

// NodesInCircle yields nodes whose disc intersects the circle (c, r).
func (x *Index) NodesInCircle(c geom.Point, r float32) iter.Seq[graph.Node] {
	return x.nodes(geom.CircleBounds(c, r), func(n graph.Node) bool {
		return geom.CirclesIntersect(n.Position(), n.Size, c, r)
	})
}

// NodesInRect yields nodes whose disc intersects rect.
func (x *Index) NodesInRect(rect geom.Rect) iter.Seq[graph.Node] {
	return x.nodes(rect, func(n graph.Node) bool {
		return geom.RectIntersectsCircle(rect, n.Position(), n.Size)
	})
}

// EdgesInRect yields edges whose segment crosses rect.
func (x *Index) EdgesInRect(rect geom.Rect) iter.Seq[VisibleEdge] {
	return x.edges(rect, func(e VisibleEdge) bool {
		a, b := e.Segment()
		return geom.SegmentIntersectsRect(a, b, rect)
	})
}

// EdgesInCircle yields edges whose segment passes within r of c.
func (x *Index) EdgesInCircle(c geom.Point, r float32) iter.Seq[VisibleEdge] {
	return x.edges(geom.CircleBounds(c, r), func(e VisibleEdge) bool {
		a, b := e.Segment()
		return geom.SegmentIntersectsCircle(a, b, c, r)
	})
}

func (x *Index) nodes(box geom.Rect, keep func(graph.Node) bool) iter.Seq[graph.Node] {
	return func(yield func(graph.Node) bool) {
		bi := x.bind()
		x.model.RLock()
		defer x.model.RUnlock()

		for n := range bi.NodesInBox(box) {
			if keep != nil && !keep(n) {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}
}

func (x *Index) edges(box geom.Rect, keep func(VisibleEdge) bool) iter.Seq[VisibleEdge] {
	return func(yield func(VisibleEdge) bool) {
		bi := x.bind()
		x.model.RLock()
		defer x.model.RUnlock()

		for e := range bi.EdgesInBox(box) {
			src, ok := x.model.Node(e.Source)
			if !ok {
				continue
			}
			dst, ok := x.model.Node(e.Target)
			if !ok {
				continue
			}
			ve := VisibleEdge{Edge: e, Src: src, Dst: dst}
			if keep != nil && !keep(ve) {
				continue
			}
			if !yield(ve) {
				return
			}
		}
	}
}
