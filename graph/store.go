// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/gogpu/graphview/geom"
)

// Store errors.
var (
	// ErrDuplicateNode is returned when adding a node whose ID already exists.
	ErrDuplicateNode = errors.New("graph: duplicate node id")

	// ErrDuplicateEdge is returned when adding an edge whose ID already exists.
	ErrDuplicateEdge = errors.New("graph: duplicate edge id")

	// ErrUnknownNode is returned when an edge references a missing endpoint.
	ErrUnknownNode = errors.New("graph: unknown node")
)

// Store is a concurrency-safe in-memory Model.
//
// Mutating methods take the write lock themselves. Readers follow the Model
// contract and bracket their reads with RLock/RUnlock.
type Store struct {
	mu      sync.RWMutex
	version atomic.Uint64

	nodes    []Node
	nodeIdx  map[NodeID]int
	edges    []Edge
	edgeIdx  map[EdgeID]int
	incident map[NodeID][]EdgeID

	// gridMu serializes lazy grid rebuilds between concurrent readers.
	gridMu sync.Mutex
	grid   *grid

	weightMu    sync.Mutex
	weightLo    float32
	weightHi    float32
	weightDirty bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		nodeIdx:  make(map[NodeID]int),
		edgeIdx:  make(map[EdgeID]int),
		incident: make(map[NodeID][]EdgeID),
	}
}

// Compile-time interface checks.
var (
	_ Model         = (*Store)(nil)
	_ BoxIndex      = (*Store)(nil)
	_ WeightIndexer = (*Store)(nil)
)

// RLock acquires the read lock.
func (s *Store) RLock() { s.mu.RLock() }

// RUnlock releases the read lock.
func (s *Store) RUnlock() { s.mu.RUnlock() }

// Version returns the mutation counter.
func (s *Store) Version() uint64 { return s.version.Load() }

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// Node returns the node with the given ID.
func (s *Store) Node(id NodeID) (Node, bool) {
	i, ok := s.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return s.nodes[i], true
}

// Edge returns the edge with the given ID.
func (s *Store) Edge(id EdgeID) (Edge, bool) {
	i, ok := s.edgeIdx[id]
	if !ok {
		return Edge{}, false
	}
	return s.edges[i], true
}

// Nodes yields all nodes in storage order.
func (s *Store) Nodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range s.nodes {
			if !yield(n) {
				return
			}
		}
	}
}

// Edges yields all edges in storage order.
func (s *Store) Edges() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, e := range s.edges {
			if !yield(e) {
				return
			}
		}
	}
}

// IncidentEdges yields the edges touching id.
func (s *Store) IncidentEdges(id NodeID) iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		for _, eid := range s.incident[id] {
			if !yield(s.edges[s.edgeIdx[eid]]) {
				return
			}
		}
	}
}

// BoxIndex returns the store itself; the uniform grid is rebuilt lazily
// after mutations.
func (s *Store) BoxIndex() BoxIndex { return s }

// AddNode inserts n.
func (s *Store) AddNode(n Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodeIdx[n.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
	}
	s.nodeIdx[n.ID] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	s.version.Add(1)
	return nil
}

// AddEdge inserts e. Both endpoints must exist.
func (s *Store) AddEdge(e Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.edgeIdx[e.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateEdge, e.ID)
	}
	if _, ok := s.nodeIdx[e.Source]; !ok {
		return fmt.Errorf("%w: source %d of edge %d", ErrUnknownNode, e.Source, e.ID)
	}
	if _, ok := s.nodeIdx[e.Target]; !ok {
		return fmt.Errorf("%w: target %d of edge %d", ErrUnknownNode, e.Target, e.ID)
	}

	s.edgeIdx[e.ID] = len(s.edges)
	s.edges = append(s.edges, e)
	s.incident[e.Source] = append(s.incident[e.Source], e.ID)
	if !e.IsSelfLoop() {
		s.incident[e.Target] = append(s.incident[e.Target], e.ID)
	}

	s.weightMu.Lock()
	if len(s.edges) == 1 {
		s.weightLo, s.weightHi, s.weightDirty = e.Weight, e.Weight, false
	} else if !s.weightDirty {
		s.weightLo = math32.Min(s.weightLo, e.Weight)
		s.weightHi = math32.Max(s.weightHi, e.Weight)
	}
	s.weightMu.Unlock()

	s.version.Add(1)
	return nil
}

// RemoveEdge deletes the edge with the given ID. It reports whether the
// edge existed.
func (s *Store) RemoveEdge(id EdgeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeEdgeLocked(id) {
		return false
	}
	s.version.Add(1)
	return true
}

// RemoveNode deletes the node and all of its incident edges.
func (s *Store) RemoveNode(id NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.nodeIdx[id]
	if !ok {
		return false
	}
	for _, eid := range append([]EdgeID(nil), s.incident[id]...) {
		s.removeEdgeLocked(eid)
	}
	delete(s.incident, id)

	last := len(s.nodes) - 1
	if i != last {
		s.nodes[i] = s.nodes[last]
		s.nodeIdx[s.nodes[i].ID] = i
	}
	s.nodes = s.nodes[:last]
	delete(s.nodeIdx, id)

	s.version.Add(1)
	return true
}

// MoveNode sets the position of a node.
func (s *Store) MoveNode(id NodeID, x, y float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.nodeIdx[id]
	if !ok {
		return false
	}
	s.nodes[i].X, s.nodes[i].Y = x, y
	s.version.Add(1)
	return true
}

// SetNodeColor sets the color of a node.
func (s *Store) SetNodeColor(id NodeID, c Color) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.nodeIdx[id]
	if !ok {
		return false
	}
	s.nodes[i].Color = c
	s.version.Add(1)
	return true
}

// EdgeWeightRange returns the minimum and maximum edge weight. ok is false
// when the store has no edges. The caller must hold the read lock.
func (s *Store) EdgeWeightRange() (lo, hi float32, ok bool) {
	if len(s.edges) == 0 {
		return 0, 0, false
	}

	s.weightMu.Lock()
	defer s.weightMu.Unlock()

	if s.weightDirty {
		lo, hi = math32.Inf(1), math32.Inf(-1)
		for _, e := range s.edges {
			lo = math32.Min(lo, e.Weight)
			hi = math32.Max(hi, e.Weight)
		}
		s.weightLo, s.weightHi, s.weightDirty = lo, hi, false
	}
	return s.weightLo, s.weightHi, true
}

func (s *Store) removeEdgeLocked(id EdgeID) bool {
	i, ok := s.edgeIdx[id]
	if !ok {
		return false
	}
	e := s.edges[i]

	s.incident[e.Source] = removeID(s.incident[e.Source], id)
	if !e.IsSelfLoop() {
		s.incident[e.Target] = removeID(s.incident[e.Target], id)
	}

	last := len(s.edges) - 1
	if i != last {
		s.edges[i] = s.edges[last]
		s.edgeIdx[s.edges[i].ID] = i
	}
	s.edges = s.edges[:last]
	delete(s.edgeIdx, id)

	s.weightMu.Lock()
	if e.Weight <= s.weightLo || e.Weight >= s.weightHi {
		s.weightDirty = true
	}
	s.weightMu.Unlock()
	return true
}

func removeID(ids []EdgeID, id EdgeID) []EdgeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// NodesInBox yields nodes whose disc bounding box intersects r.
func (s *Store) NodesInBox(r geom.Rect) iter.Seq[Node] {
	g := s.currentGrid()
	return func(yield func(Node) bool) {
		g.query(r, g.nodeCells, g.nodeBoxes, func(i int32) bool {
			return yield(s.nodes[i])
		})
	}
}

// EdgesInBox yields edges whose endpoint bounding box intersects r.
func (s *Store) EdgesInBox(r geom.Rect) iter.Seq[Edge] {
	g := s.currentGrid()
	return func(yield func(Edge) bool) {
		g.query(r, g.edgeCells, g.edgeBoxes, func(i int32) bool {
			return yield(s.edges[i])
		})
	}
}

// Bounds returns the bounding box of all node discs.
func (s *Store) Bounds() geom.Rect {
	return s.currentGrid().bounds
}

// currentGrid returns a grid matching the current version, rebuilding it if
// a mutation happened since the last build. Called under the read lock, so
// the node and edge slices cannot change during the rebuild.
func (s *Store) currentGrid() *grid {
	s.gridMu.Lock()
	defer s.gridMu.Unlock()

	v := s.version.Load()
	if s.grid == nil || s.grid.version != v {
		s.grid = buildGrid(v, s.nodes, s.edges, s.nodeIdx)
	}
	return s.grid
}
