// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"context"
	"iter"
	"testing"

	"github.com/gogpu/graphview/camera"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/internal/arena"
	"github.com/gogpu/graphview/lod"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/graphview/selection"
	"github.com/gogpu/graphview/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	g     *graph.Store
	src   Sources
	sel   *selection.Model
	opts  *options.Store
	cam   *camera.Camera
	index *spatial.Index
}

func newFixture(t *testing.T, g *graph.Store) *fixture {
	t.Helper()
	index := spatial.New(g)
	cam := camera.New(800, 600)
	opts := options.NewStore(options.Default())
	sel := selection.New(index, cam, opts)
	return &fixture{
		g:     g,
		src:   Sources{Index: index, Camera: cam, Selection: sel, Options: opts},
		sel:   sel,
		opts:  opts,
		cam:   cam,
		index: index,
	}
}

// star: node 1 at the origin linked to 2, 3 and 4; 5 hangs off 2. Edge 2
// is directed 2 -> 1.
func star(t *testing.T) *graph.Store {
	t.Helper()
	s := graph.NewStore()
	for _, n := range []graph.Node{
		{ID: 1, X: 0, Y: 0, Size: 10, Color: graph.RGBA(10, 20, 30, 255)},
		{ID: 2, X: 100, Y: 0, Size: 10},
		{ID: 3, X: 0, Y: 100, Size: 20},
		{ID: 4, X: -100, Y: 0, Size: 10},
		{ID: 5, X: 200, Y: 200, Size: 10},
	} {
		require.NoError(t, s.AddNode(n))
	}
	for _, e := range []graph.Edge{
		{ID: 1, Source: 1, Target: 2, Weight: 1},
		{ID: 2, Source: 2, Target: 1, Weight: 3, Directed: true},
		{ID: 3, Source: 1, Target: 3, Weight: 5},
		{ID: 4, Source: 4, Target: 1, Weight: 2, Directed: true},
		{ID: 5, Source: 2, Target: 5, Weight: 1},
	} {
		require.NoError(t, s.AddEdge(e))
	}
	return s
}

func count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}

// records splits a promoted frame into per-element slices.
func records(f Frame) [][]float32 {
	out := make([][]float32, 0, f.Counts.Total())
	for i := 0; i+f.Stride <= len(f.Data); i += f.Stride {
		out = append(out, f.Data[i:i+f.Stride])
	}
	return out
}

// =============================================================================
// Node Pipeline Tests
// =============================================================================

func TestNodePipeline_CountsSumToVisible(t *testing.T) {
	g := graph.Generate(graph.GenerateConfig{Nodes: 2000, Edges: 0, Seed: 7})
	f := newFixture(t, g)
	f.cam.SetZoom(2) // show only part of the graph

	visible := count(f.index.VisibleNodes(f.cam.ViewBoundaries()))
	require.Positive(t, visible)
	require.Less(t, visible, 2000)

	p := NewNodePipeline(f.src)
	require.NoError(t, p.Update(context.Background()))
	c := p.Computed()
	assert.Equal(t, visible, c.Total())
	assert.Zero(t, c.Selected)

	// Select a few visible nodes: the partition changes, the sum does not.
	var picked []graph.NodeID
	for n := range f.index.VisibleNodes(f.cam.ViewBoundaries()) {
		picked = append(picked, n.ID)
		if len(picked) == 5 {
			break
		}
	}
	f.sel.SelectNodes(picked...)
	require.NoError(t, p.Update(context.Background()))
	c = p.Computed()
	assert.Equal(t, visible, c.Total())
	assert.GreaterOrEqual(t, c.Selected, 5)
}

func TestNodePipeline_PromoteIsIdempotent(t *testing.T) {
	f := newFixture(t, star(t))
	p := NewNodePipeline(f.src)

	assert.Equal(t, Counts{}, p.ToDraw())
	require.NoError(t, p.Update(context.Background()))
	assert.Equal(t, Counts{}, p.ToDraw(), "computed counts are not visible before Promote")

	require.True(t, p.Promote())
	first := p.ToDraw()
	gen := p.Front().Generation

	assert.False(t, p.Promote())
	assert.Equal(t, first, p.ToDraw())
	assert.Equal(t, gen, p.Front().Generation)
	assert.Equal(t, 5, first.Total())
}

func TestNodePipeline_PartitionOrderAndModulation(t *testing.T) {
	f := newFixture(t, star(t))
	require.NoError(t, f.opts.Update(func(o *options.Options) { o.LightenNonSelected = false }))
	p := NewNodePipeline(f.src)

	f.sel.SelectNodes(5) // 5 and its neighbor 2 are highlighted
	require.NoError(t, p.Update(context.Background()))
	p.Promote()
	fr := p.Front()
	require.Equal(t, Counts{Unselected: 3, Selected: 2, UnselectedTier: lod.Tier32, SelectedTier: lod.Tier16}, fr.Counts)

	recs := records(fr)
	for i, r := range recs {
		id := idAt(t, f.g, r[0], r[1])
		selected := id == 2 || id == 5
		assert.Equal(t, selected, i >= fr.Counts.Unselected, "node %d at index %d", id, i)
		if selected {
			assert.Equal(t, []float32{blendBias, blendMultiplier}, r[4:6])
		} else {
			assert.Equal(t, []float32{plainBias, plainMultiplier}, r[4:6])
		}
	}
}

func idAt(t *testing.T, g *graph.Store, x, y float32) graph.NodeID {
	t.Helper()
	g.RLock()
	defer g.RUnlock()
	for n := range g.Nodes() {
		if n.X == x && n.Y == y {
			return n.ID
		}
	}
	t.Fatalf("no node at (%v, %v)", x, y)
	return 0
}

func TestNodePipeline_RecordLayout(t *testing.T) {
	f := newFixture(t, star(t))
	p := NewNodePipeline(f.src)
	f.sel.SelectNodes(1)
	require.NoError(t, p.Update(context.Background()))
	p.Promote()

	fr := p.Front()
	require.Equal(t, NodeStride, fr.Stride)
	// Node 1 is the only selected node that is not a neighbor; neighbors
	// 2, 3 and 4 follow in the selected partition too.
	require.Equal(t, 1, fr.Counts.Unselected)
	for _, r := range records(fr)[1:] {
		if r[0] == 0 && r[1] == 0 {
			assert.Equal(t, float32(10), r[2])
			assert.Equal(t, graph.RGBA(10, 20, 30, 255), graph.ColorFromBits(r[3]))
			return
		}
	}
	t.Fatal("node 1 not in the selected partition")
}

func TestNodePipeline_HideNonSelected(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*options.Options)
	}{
		{"hide option", func(o *options.Options) { o.HideNonSelected = true }},
		{"fully lightened", func(o *options.Options) {
			o.LightenNonSelected = true
			o.LightenNonSelectedFactor = 1
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, star(t))
			require.NoError(t, f.opts.Update(tt.modify))
			p := NewNodePipeline(f.src)

			// Without a selection nothing is hidden.
			require.NoError(t, p.Update(context.Background()))
			assert.Equal(t, 5, p.Computed().Unselected)

			f.sel.SelectNodes(4)
			require.NoError(t, p.Update(context.Background()))
			assert.Equal(t, Counts{Selected: 2, SelectedTier: lod.Tier16}, p.Computed())
		})
	}
}

func TestNodePipeline_LightenModulation(t *testing.T) {
	f := newFixture(t, star(t))
	require.NoError(t, f.opts.Update(func(o *options.Options) {
		o.LightenNonSelected = true
		o.LightenNonSelectedFactor = 0.25
	}))
	p := NewNodePipeline(f.src)
	f.sel.SelectNodes(5)
	require.NoError(t, p.Update(context.Background()))
	p.Promote()

	r := records(p.Front())[0]
	assert.Equal(t, []float32{0.25, 0.75}, r[4:6])
}

func TestNodePipeline_ShowNodesOff(t *testing.T) {
	f := newFixture(t, star(t))
	p := NewNodePipeline(f.src)
	require.NoError(t, p.Update(context.Background()))
	p.Promote()

	require.NoError(t, f.opts.Update(func(o *options.Options) { o.ShowNodes = false }))
	require.NoError(t, p.Update(context.Background()))
	p.Promote()
	assert.Equal(t, Counts{}, p.ToDraw())
	assert.Empty(t, p.Front().Data)
}

func TestNodePipeline_EmptyGraph(t *testing.T) {
	f := newFixture(t, graph.NewStore())
	lo, hi := f.index.EdgeWeightRange()
	assert.Equal(t, [2]float32{1, 1}, [2]float32{lo, hi})

	p := NewNodePipeline(f.src)
	e := NewEdgePipeline(EdgeKindUndirected, f.src)
	require.NoError(t, p.Update(context.Background()))
	require.NoError(t, e.Update(context.Background()))
	p.Promote()
	e.Promote()
	assert.Zero(t, p.ToDraw().Total())
	assert.Zero(t, e.ToDraw().Total())
}

func TestNodePipeline_SmallBatchMatchesDefault(t *testing.T) {
	g := graph.Generate(graph.GenerateConfig{Nodes: 300, Seed: 3})
	f := newFixture(t, g)
	f.cam.Fit(f.index.GraphBoundingBox())

	small := NewNodePipeline(f.src, WithBatchSize(7))
	big := NewNodePipeline(f.src)
	require.NoError(t, small.Update(context.Background()))
	require.NoError(t, big.Update(context.Background()))
	small.Promote()
	big.Promote()

	assert.Equal(t, 300, big.ToDraw().Total())
	assert.Equal(t, big.Front().Data, small.Front().Data)
}

func TestNodePipeline_CanceledTickIsDiscarded(t *testing.T) {
	g := graph.Generate(graph.GenerateConfig{Nodes: 100, Seed: 1})
	f := newFixture(t, g)
	f.cam.Fit(f.index.GraphBoundingBox())
	p := NewNodePipeline(f.src, WithBatchSize(10))

	require.NoError(t, p.Update(context.Background()))
	before := p.Computed()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Update(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, p.Computed())
	assert.Equal(t, uint64(1), p.Stats().Failures)
	assert.NotContains(t, p.arena.Roles(), arena.Writing)

	// The arena is usable again.
	require.NoError(t, p.Update(context.Background()))
	assert.True(t, p.Promote())
}

// =============================================================================
// Edge Pipeline Tests
// =============================================================================

func TestEdgePipeline_KindsPartitionVisibleEdges(t *testing.T) {
	g := graph.Generate(graph.GenerateConfig{Nodes: 400, Edges: 1200, DirectedRatio: 0.3, Seed: 11})
	f := newFixture(t, g)
	f.cam.Fit(f.index.GraphBoundingBox())

	un := NewEdgePipeline(EdgeKindUndirected, f.src)
	di := NewEdgePipeline(EdgeKindDirected, f.src)
	require.NoError(t, un.Update(context.Background()))
	require.NoError(t, di.Update(context.Background()))

	visible := count(f.index.VisibleEdges(f.cam.ViewBoundaries()))
	assert.Equal(t, visible, un.Computed().Total()+di.Computed().Total())
	assert.Positive(t, di.Computed().Total())
	assert.Equal(t, "edges-directed", di.Name())
	assert.Equal(t, DirectedEdgeStride, di.Stride())
}

func TestEdgePipeline_DistinctSelectionColors(t *testing.T) {
	f := newFixture(t, star(t))
	require.NoError(t, f.opts.Update(func(o *options.Options) {
		o.SelectionColorMode = options.SelectionColorDistinct
	}))
	o := f.opts.Load()
	f.sel.SelectNodes(1)

	un := NewEdgePipeline(EdgeKindUndirected, f.src)
	di := NewEdgePipeline(EdgeKindDirected, f.src)
	require.NoError(t, un.Update(context.Background()))
	require.NoError(t, di.Update(context.Background()))
	un.Promote()
	di.Promote()

	// Undirected: 1 -> 2 and 1 -> 3 are selected (out), 2 -> 5 is not.
	uf := un.Front()
	require.Equal(t, 1, uf.Counts.Unselected)
	require.Equal(t, 2, uf.Counts.Selected)
	for _, r := range records(uf)[1:] {
		assert.Equal(t, o.EdgeOutSelectionColor, graph.ColorFromBits(r[5]))
		assert.Equal(t, []float32{plainBias, plainMultiplier}, r[6:8])
	}

	// Directed: 2 -> 1 and 4 -> 1 both point into the selection.
	df := di.Front()
	require.Equal(t, Counts{Selected: 2}, df.Counts)
	for _, r := range records(df) {
		assert.Equal(t, o.EdgeInSelectionColor, graph.ColorFromBits(r[5]))
		assert.Equal(t, float32(10), r[8], "target size")
	}

	f.sel.SelectNodes(1, 2)
	require.NoError(t, un.Update(context.Background()))
	un.Promote()
	var both int
	for _, r := range records(un.Front()) {
		if graph.ColorFromBits(r[5]) == o.EdgeBothSelectionColor {
			both++
		}
	}
	assert.Equal(t, 1, both, "only 1 -> 2 has both endpoints selected")
}

func TestEdgePipeline_BlendSelection(t *testing.T) {
	f := newFixture(t, star(t))
	f.sel.SelectNodes(4)

	di := NewEdgePipeline(EdgeKindDirected, f.src)
	require.NoError(t, di.Update(context.Background()))
	di.Promote()
	fr := di.Front()
	require.Equal(t, 1, fr.Counts.Selected)
	sel := records(fr)[fr.Counts.Unselected]
	assert.Equal(t, []float32{blendBias, blendMultiplier}, sel[6:8])
}

func TestEdgePipeline_Thickness(t *testing.T) {
	f := newFixture(t, star(t))
	require.NoError(t, f.opts.Update(func(o *options.Options) {
		o.EdgeScale = 2
		o.EdgeWeightRatio = 3
	}))
	un := NewEdgePipeline(EdgeKindUndirected, f.src)
	require.NoError(t, un.Update(context.Background()))
	un.Promote()

	// Weights span [1, 5]: weight 1 -> 2, weight 5 -> 6.
	got := map[float32]bool{}
	for _, r := range records(un.Front()) {
		got[r[4]] = true
	}
	assert.Equal(t, map[float32]bool{2: true, 6: true}, got)
}

func TestThickness(t *testing.T) {
	tests := []struct {
		name string
		th   thickness
		w    float32
		want float32
	}{
		{"flat range", thickness{scale: 1.5, lo: 2, hi: 2, ratio: 4}, 2, 1.5},
		{"min", thickness{scale: 1, lo: 0, hi: 10, ratio: 4}, 0, 1},
		{"max", thickness{scale: 1, lo: 0, hi: 10, ratio: 4}, 10, 4},
		{"mid", thickness{scale: 2, lo: 0, hi: 10, ratio: 3}, 5, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.th.of(tt.w); got != tt.want {
				t.Errorf("of(%v) = %v, want %v", tt.w, got, tt.want)
			}
		})
	}
}

func TestEdgePipeline_ShowEdgesOff(t *testing.T) {
	f := newFixture(t, star(t))
	require.NoError(t, f.opts.Update(func(o *options.Options) { o.ShowEdges = false }))
	un := NewEdgePipeline(EdgeKindUndirected, f.src)
	require.NoError(t, un.Update(context.Background()))
	assert.Equal(t, Counts{}, un.Computed())
	assert.Equal(t, uint64(1), un.Stats().Ticks)
}

func TestSources_NilPanics(t *testing.T) {
	assert.Panics(t, func() { NewNodePipeline(Sources{}) })
}
