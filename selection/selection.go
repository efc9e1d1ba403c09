// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package selection tracks selected nodes, edges and neighbors.
//
// Every logical change publishes a new immutable Snapshot with a single
// atomic pointer swap, so update workers never observe a partially applied
// selection.
package selection

import (
	"maps"
	"sync"
	"sync/atomic"

	"github.com/gogpu/graphview/camera"
	"github.com/gogpu/graphview/geom"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/graphview/spatial"
)

// Model owns the current selection.
type Model struct {
	index *spatial.Index
	cam   *camera.Camera
	opts  *options.Store

	// mu serializes writers. Readers only touch cur.
	mu  sync.Mutex
	cur atomic.Pointer[Snapshot]
}

// New returns an empty selection over index. cam converts screen positions
// for Pick and the rectangle drag; opts supplies AutoSelectNeighbors.
func New(index *spatial.Index, cam *camera.Camera, opts *options.Store) *Model {
	m := &Model{index: index, cam: cam, opts: opts}
	m.cur.Store(emptySnapshot)
	return m
}

// Snapshot returns the current selection.
func (m *Model) Snapshot() *Snapshot {
	return m.cur.Load()
}

// Pick selects the front-most node under the screen position (sx, sy).
//
// Among overlapping hits the node whose center is nearest to the cursor
// wins, then the smallest ID. The hit becomes the only selected node, its
// incident edges the selected edges and, with AutoSelectNeighbors, its
// neighbors the neighbor set. No hit clears the selection. It reports
// whether a node was hit.
func (m *Model) Pick(sx, sy float32) bool {
	p := m.cam.ScreenToWorld(sx, sy)

	var (
		best     graph.NodeID
		bestDist float32
		found    bool
	)
	for n := range m.index.NodesUnderPoint(p) {
		d := n.Position().Dist2(p)
		if !found || d < bestDist || (d == bestDist && n.ID < best) {
			best, bestDist, found = n.ID, d, true
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !found {
		m.publish(&Snapshot{})
		return false
	}
	m.publish(m.closure(map[graph.NodeID]struct{}{best: {}}))
	return true
}

// SelectNodes replaces the selection with ids, their incident edges and,
// with AutoSelectNeighbors, their neighbors.
func (m *Model) SelectNodes(ids ...graph.NodeID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publish(m.closure(setOf(ids)))
}

// SetNodes replaces the selected nodes, keeping the selected edges.
func (m *Model) SetNodes(ids ...graph.NodeID) {
	m.mutateNodes(func(map[graph.NodeID]struct{}) map[graph.NodeID]struct{} {
		return setOf(ids)
	})
}

// AddNodes adds ids to the selected nodes.
func (m *Model) AddNodes(ids ...graph.NodeID) {
	m.mutateNodes(func(cur map[graph.NodeID]struct{}) map[graph.NodeID]struct{} {
		next := maps.Clone(cur)
		if next == nil {
			next = make(map[graph.NodeID]struct{}, len(ids))
		}
		for _, id := range ids {
			next[id] = struct{}{}
		}
		return next
	})
}

// RemoveNodes removes ids from the selected nodes.
func (m *Model) RemoveNodes(ids ...graph.NodeID) {
	m.mutateNodes(func(cur map[graph.NodeID]struct{}) map[graph.NodeID]struct{} {
		next := maps.Clone(cur)
		for _, id := range ids {
			delete(next, id)
		}
		return next
	})
}

// ClearNodes deselects every node.
func (m *Model) ClearNodes() {
	m.mutateNodes(func(map[graph.NodeID]struct{}) map[graph.NodeID]struct{} { return nil })
}

// SetEdges replaces the selected edges.
func (m *Model) SetEdges(ids ...graph.EdgeID) {
	m.mutateEdges(func(map[graph.EdgeID]struct{}) map[graph.EdgeID]struct{} {
		return setOf(ids)
	})
}

// AddEdges adds ids to the selected edges.
func (m *Model) AddEdges(ids ...graph.EdgeID) {
	m.mutateEdges(func(cur map[graph.EdgeID]struct{}) map[graph.EdgeID]struct{} {
		next := maps.Clone(cur)
		if next == nil {
			next = make(map[graph.EdgeID]struct{}, len(ids))
		}
		for _, id := range ids {
			next[id] = struct{}{}
		}
		return next
	})
}

// RemoveEdges removes ids from the selected edges.
func (m *Model) RemoveEdges(ids ...graph.EdgeID) {
	m.mutateEdges(func(cur map[graph.EdgeID]struct{}) map[graph.EdgeID]struct{} {
		next := maps.Clone(cur)
		for _, id := range ids {
			delete(next, id)
		}
		return next
	})
}

// ClearEdges deselects every edge.
func (m *Model) ClearEdges() {
	m.mutateEdges(func(map[graph.EdgeID]struct{}) map[graph.EdgeID]struct{} { return nil })
}

// Clear empties the node, edge and neighbor sets in one change. A
// rectangle drag in progress is kept.
func (m *Model) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.cur.Load()
	m.publish(&Snapshot{rectActive: old.rectActive, rectStart: old.rectStart, rectEnd: old.rectEnd})
}

// StartRect begins a rectangle drag at the screen position (sx, sy).
func (m *Model) StartRect(sx, sy float32) {
	p := m.cam.ScreenToWorld(sx, sy)
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.closure(nil)
	next.rectActive, next.rectStart, next.rectEnd = true, p, p
	m.publish(next)
}

// UpdateRect moves the drag corner to (sx, sy) and replaces the selection
// with every node intersecting the drag rectangle. It is a no-op when no
// drag is in progress.
func (m *Model) UpdateRect(sx, sy float32) {
	p := m.cam.ScreenToWorld(sx, sy)
	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.cur.Load()
	if !old.rectActive {
		return
	}
	r := geom.RectFromPoints(old.rectStart, p)
	ids := make(map[graph.NodeID]struct{})
	for n := range m.index.NodesInRect(r) {
		ids[n.ID] = struct{}{}
	}
	next := m.closure(ids)
	next.rectActive, next.rectStart, next.rectEnd = true, old.rectStart, p
	m.publish(next)
}

// StopRect ends the drag, keeping the last computed selection.
func (m *Model) StopRect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.cur.Load()
	if !old.rectActive {
		return
	}
	next := *old
	next.rectActive = false
	m.publish(&next)
}

// RectActive reports whether a rectangle drag is in progress.
func (m *Model) RectActive() bool {
	return m.cur.Load().rectActive
}

// closure builds a snapshot selecting nodes, their incident edges and,
// with AutoSelectNeighbors, the other endpoints of those edges. The caller
// holds mu.
func (m *Model) closure(nodes map[graph.NodeID]struct{}) *Snapshot {
	s := &Snapshot{nodes: nodes}
	if len(nodes) == 0 {
		return s
	}

	auto := m.opts.Load().AutoSelectNeighbors
	model := m.index.Model()
	model.RLock()
	defer model.RUnlock()

	s.edges = make(map[graph.EdgeID]struct{})
	if auto {
		s.neighbors = make(map[graph.NodeID]struct{})
	}
	for id := range nodes {
		for e := range model.IncidentEdges(id) {
			s.edges[e.ID] = struct{}{}
			if !auto {
				continue
			}
			if other := e.Other(id); other != id {
				if _, sel := nodes[other]; !sel {
					s.neighbors[other] = struct{}{}
				}
			}
		}
	}
	return s
}

// neighborsOf returns the neighbor set of nodes, or nil when
// AutoSelectNeighbors is off. The caller holds mu.
func (m *Model) neighborsOf(nodes map[graph.NodeID]struct{}) map[graph.NodeID]struct{} {
	if len(nodes) == 0 || !m.opts.Load().AutoSelectNeighbors {
		return nil
	}
	return m.closure(nodes).neighbors
}

func (m *Model) mutateNodes(fn func(map[graph.NodeID]struct{}) map[graph.NodeID]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.cur.Load()
	next := *old
	next.nodes = fn(old.nodes)
	next.neighbors = m.neighborsOf(next.nodes)
	m.publish(&next)
}

func (m *Model) mutateEdges(fn func(map[graph.EdgeID]struct{}) map[graph.EdgeID]struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.cur.Load()
	next := *old
	next.edges = fn(old.edges)
	m.publish(&next)
}

// publish swaps in s. The caller holds mu.
func (m *Model) publish(s *Snapshot) {
	s.seq = m.cur.Load().seq + 1
	m.cur.Store(s)
}

func setOf[K comparable](ids []K) map[K]struct{} {
	s := make(map[K]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}
