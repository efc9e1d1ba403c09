// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package spatial

import (
	"slices"
	"sync"
	"testing"

	"github.com/gogpu/graphview/geom"
	"github.com/gogpu/graphview/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainModel hides the store's weight index so the scan path is used.
type plainModel struct {
	graph.Model
	boxCalls int
	mu       sync.Mutex
}

func (m *plainModel) BoxIndex() graph.BoxIndex {
	m.mu.Lock()
	m.boxCalls++
	m.mu.Unlock()
	return m.Model.BoxIndex()
}

func fixture(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	nodes := []graph.Node{
		{ID: 1, X: 0, Y: 0, Size: 5},
		{ID: 2, X: 20, Y: 0, Size: 5},
		{ID: 3, X: 0, Y: 20, Size: 5},
		{ID: 4, X: 100, Y: 100, Size: 10},
		{ID: 5, X: 3, Y: 0, Size: 5}, // overlaps node 1
	}
	for _, n := range nodes {
		require.NoError(t, s.AddNode(n))
	}
	edges := []graph.Edge{
		{ID: 1, Source: 1, Target: 2, Weight: 3},
		{ID: 2, Source: 1, Target: 3, Weight: 0.5},
		{ID: 3, Source: 2, Target: 4, Weight: 8},
	}
	for _, e := range edges {
		require.NoError(t, s.AddEdge(e))
	}
	return s
}

func nodeIDs(seq func(func(graph.Node) bool)) []graph.NodeID {
	var ids []graph.NodeID
	for n := range seq {
		ids = append(ids, n.ID)
	}
	slices.Sort(ids)
	return ids
}

func edgeIDs(seq func(func(VisibleEdge) bool)) []graph.EdgeID {
	var ids []graph.EdgeID
	for e := range seq {
		ids = append(ids, e.ID)
	}
	slices.Sort(ids)
	return ids
}

// =============================================================================
// Counts and Ranges
// =============================================================================

func TestIndex_EmptyGraph(t *testing.T) {
	x := New(graph.NewStore())

	lo, hi := x.EdgeWeightRange()
	assert.Equal(t, float32(1), lo)
	assert.Equal(t, float32(1), hi)
	assert.Zero(t, x.NodeCount())
	assert.Zero(t, x.EdgeCount())
	assert.True(t, x.GraphBoundingBox().Empty())

	everything := geom.RectFromPoints(geom.Pt(-1e6, -1e6), geom.Pt(1e6, 1e6))
	assert.Empty(t, nodeIDs(x.VisibleNodes(everything)))
	assert.Empty(t, edgeIDs(x.VisibleEdges(everything)))
}

func TestIndex_EdgeWeightRange(t *testing.T) {
	tests := []struct {
		name  string
		model func(*graph.Store) graph.Model
	}{
		{"indexed", func(s *graph.Store) graph.Model { return s }},
		{"scanned", func(s *graph.Store) graph.Model { return &plainModel{Model: s} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := fixture(t)
			x := New(tt.model(s))

			lo, hi := x.EdgeWeightRange()
			assert.Equal(t, float32(0.5), lo)
			assert.Equal(t, float32(8), hi)

			// The cache follows the model version.
			require.NoError(t, s.AddEdge(graph.Edge{ID: 9, Source: 3, Target: 4, Weight: 20}))
			_, hi = x.EdgeWeightRange()
			assert.Equal(t, float32(20), hi)
		})
	}
}

func TestIndex_BindsOnce(t *testing.T) {
	m := &plainModel{Model: fixture(t)}
	x := New(m)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = x.GraphBoundingBox()
			_ = nodeIDs(x.VisibleNodes(geom.RectFromPoints(geom.Pt(-1, -1), geom.Pt(1, 1))))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.boxCalls)
}

// =============================================================================
// Queries
// =============================================================================

func TestIndex_VisibleNodes(t *testing.T) {
	x := New(fixture(t))
	got := nodeIDs(x.VisibleNodes(geom.RectFromPoints(geom.Pt(-10, -10), geom.Pt(30, 30))))
	assert.Equal(t, []graph.NodeID{1, 2, 3, 5}, got)
}

func TestIndex_VisibleEdgesResolveEndpoints(t *testing.T) {
	x := New(fixture(t))
	for e := range x.VisibleEdges(geom.RectFromPoints(geom.Pt(90, 90), geom.Pt(110, 110))) {
		assert.Equal(t, graph.EdgeID(3), e.ID)
		assert.Equal(t, e.Source, e.Src.ID)
		assert.Equal(t, e.Target, e.Dst.ID)
	}
}

func TestIndex_NodesUnderPoint(t *testing.T) {
	x := New(fixture(t))

	assert.Equal(t, []graph.NodeID{1, 5}, nodeIDs(x.NodesUnderPoint(geom.Pt(1, 0))))
	assert.Equal(t, []graph.NodeID{2}, nodeIDs(x.NodesUnderPoint(geom.Pt(20, 4))))
	assert.Empty(t, nodeIDs(x.NodesUnderPoint(geom.Pt(50, 50))))
}

func TestIndex_NodesInCircle(t *testing.T) {
	x := New(fixture(t))

	// A circle far from the origin along Y only. A degenerate bounding box
	// that reused one coordinate for both Y bounds would miss node 3.
	got := nodeIDs(x.NodesInCircle(geom.Pt(0, 30), 6))
	assert.Equal(t, []graph.NodeID{3}, got)

	got = nodeIDs(x.NodesInCircle(geom.Pt(10, 0), 6))
	assert.Equal(t, []graph.NodeID{1, 2, 5}, got)
}

func TestIndex_NodesInRect(t *testing.T) {
	x := New(fixture(t))

	// The rect corner is inside node 4's box but outside its disc.
	got := nodeIDs(x.NodesInRect(geom.RectFromPoints(geom.Pt(108, 108), geom.Pt(120, 120))))
	assert.Empty(t, got)

	got = nodeIDs(x.NodesInRect(geom.RectFromPoints(geom.Pt(95, 95), geom.Pt(120, 120))))
	assert.Equal(t, []graph.NodeID{4}, got)
}

func TestIndex_EdgesInRectAndCircle(t *testing.T) {
	x := New(fixture(t))

	// Crosses the 1-2 edge along y=0.
	got := edgeIDs(x.EdgesInRect(geom.RectFromPoints(geom.Pt(9, -1), geom.Pt(11, 1))))
	assert.Equal(t, []graph.EdgeID{1}, got)

	// Inside the 2-4 edge's box but away from the segment.
	got = edgeIDs(x.EdgesInRect(geom.RectFromPoints(geom.Pt(25, 80), geom.Pt(30, 90))))
	assert.Empty(t, got)

	got = edgeIDs(x.EdgesInCircle(geom.Pt(-1, 10), 2))
	assert.Equal(t, []graph.EdgeID{2}, got)
}

func TestIndex_EarlyStopReleasesLock(t *testing.T) {
	s := fixture(t)
	x := New(s)

	for range x.VisibleNodes(x.GraphBoundingBox()) {
		break
	}

	// A write lock can only be taken if the read lock was released.
	require.True(t, s.MoveNode(1, 1, 1))
}
