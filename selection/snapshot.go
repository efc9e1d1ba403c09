// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package selection

import (
	"github.com/gogpu/graphview/geom"
	"github.com/gogpu/graphview/graph"
)

// Snapshot is an immutable view of the selection. IDs that no longer exist
// in the model are kept but match nothing during rendering.
type Snapshot struct {
	nodes     map[graph.NodeID]struct{}
	edges     map[graph.EdgeID]struct{}
	neighbors map[graph.NodeID]struct{}

	rectActive bool
	rectStart  geom.Point
	rectEnd    geom.Point

	seq uint64
}

var emptySnapshot = &Snapshot{}

// Seq increases with every published change.
func (s *Snapshot) Seq() uint64 { return s.seq }

// Active reports whether any node or edge is selected.
func (s *Snapshot) Active() bool {
	return len(s.nodes) > 0 || len(s.edges) > 0
}

// NodeCount returns the number of selected nodes.
func (s *Snapshot) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of selected edges.
func (s *Snapshot) EdgeCount() int { return len(s.edges) }

// NeighborCount returns the number of neighbor nodes.
func (s *Snapshot) NeighborCount() int { return len(s.neighbors) }

// HasNode reports whether id is selected.
func (s *Snapshot) HasNode(id graph.NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// HasEdge reports whether id is selected.
func (s *Snapshot) HasEdge(id graph.EdgeID) bool {
	_, ok := s.edges[id]
	return ok
}

// IsNeighbor reports whether id is a neighbor of the selection.
func (s *Snapshot) IsNeighbor(id graph.NodeID) bool {
	_, ok := s.neighbors[id]
	return ok
}

// Highlighted reports whether a node is drawn as selected: selected itself
// or a neighbor of the selection.
func (s *Snapshot) Highlighted(id graph.NodeID) bool {
	return s.HasNode(id) || s.IsNeighbor(id)
}

// Nodes returns the selected node IDs in no particular order.
func (s *Snapshot) Nodes() []graph.NodeID { return keys(s.nodes) }

// Edges returns the selected edge IDs in no particular order.
func (s *Snapshot) Edges() []graph.EdgeID { return keys(s.edges) }

// Neighbors returns the neighbor node IDs in no particular order.
func (s *Snapshot) Neighbors() []graph.NodeID { return keys(s.neighbors) }

// Rect returns the rectangle-selection drag in world space. ok is false
// when no drag is in progress.
func (s *Snapshot) Rect() (r geom.Rect, ok bool) {
	if !s.rectActive {
		return geom.EmptyRect(), false
	}
	return geom.RectFromPoints(s.rectStart, s.rectEnd), true
}

func keys[K comparable](m map[K]struct{}) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
