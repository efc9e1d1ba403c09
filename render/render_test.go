// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gogpu/graphview/camera"
	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/layers"
	"github.com/gogpu/graphview/lod"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/graphview/pipeline"
	"github.com/gogpu/graphview/selection"
	"github.com/gogpu/graphview/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx     *gpu.Context
	globals *Globals
	src     pipeline.Sources
	sel     *selection.Model
	opts    *options.Store
	cam     *camera.Camera
}

func newFixture(t *testing.T, backend gpu.Backend) *fixture {
	t.Helper()
	ctx, err := gpu.OpenHeadless(gpu.WithBackend(backend))
	require.NoError(t, err)
	t.Cleanup(ctx.Destroy)

	g := graph.NewStore()
	for _, n := range []graph.Node{
		{ID: 1, X: 0, Y: 0, Size: 10},
		{ID: 2, X: 100, Y: 0, Size: 10},
		{ID: 3, X: 0, Y: 100, Size: 20},
		{ID: 4, X: -100, Y: 0, Size: 10},
	} {
		require.NoError(t, g.AddNode(n))
	}
	for _, e := range []graph.Edge{
		{ID: 1, Source: 1, Target: 2, Weight: 1},
		{ID: 2, Source: 2, Target: 1, Weight: 3, Directed: true},
		{ID: 3, Source: 1, Target: 3, Weight: 5},
		{ID: 4, Source: 4, Target: 1, Weight: 2, Directed: true},
	} {
		require.NoError(t, g.AddEdge(e))
	}

	index := spatial.New(g)
	cam := camera.New(800, 600)
	opts := options.NewStore(options.Default())
	sel := selection.New(index, cam, opts)

	globals, err := NewGlobals(ctx, cam, opts)
	require.NoError(t, err)
	t.Cleanup(globals.Destroy)

	return &fixture{
		ctx:     ctx,
		globals: globals,
		src:     pipeline.Sources{Index: index, Camera: cam, Selection: sel, Options: opts},
		sel:     sel,
		opts:    opts,
		cam:     cam,
	}
}

func (f *fixture) nodes(t *testing.T) (*pipeline.NodePipeline, *NodeRenderer) {
	t.Helper()
	p := pipeline.NewNodePipeline(f.src)
	r, err := NewNodeRenderer(f.ctx, f.globals, p)
	require.NoError(t, err)
	t.Cleanup(r.Destroy)
	return p, r
}

func (f *fixture) edges(t *testing.T, kind pipeline.EdgeKind) (*pipeline.EdgePipeline, *EdgeRenderer) {
	t.Helper()
	p := pipeline.NewEdgePipeline(kind, f.src)
	r, err := NewEdgeRenderer(f.ctx, f.globals, p)
	require.NoError(t, err)
	t.Cleanup(r.Destroy)
	return p, r
}

// frame runs one update tick, promotes it and records every layer the
// renderer draws.
func frame(t *testing.T, u interface{ Update(context.Context) error }, r Renderer) *gpu.Recorder {
	t.Helper()
	require.NoError(t, u.Update(context.Background()))
	require.NoError(t, r.WorldUpdated())
	rec := &gpu.Recorder{}
	for _, l := range r.Layers() {
		r.Render(l, rec)
	}
	return rec
}

var backends = []gpu.Backend{gpu.BackendIndirect, gpu.BackendInstanced, gpu.BackendVertexArray}

// =============================================================================
// Node Renderer Tests
// =============================================================================

func TestNodeRenderer_NoSelectionDrawsOnce(t *testing.T) {
	for _, b := range backends {
		t.Run(b.String(), func(t *testing.T) {
			f := newFixture(t, b)
			p, r := f.nodes(t)

			rec := frame(t, p, r)
			require.Len(t, rec.Calls, 1, "selected partition is empty")
			assert.Equal(t, 4, p.ToDraw().Unselected)
			assert.Equal(t, uint64(1), r.Stats().Draws)
		})
	}
}

func TestNodeRenderer_Instanced(t *testing.T) {
	f := newFixture(t, gpu.BackendInstanced)
	p, r := f.nodes(t)
	f.sel.SelectNodes(3)

	rec := frame(t, p, r)
	c := p.ToDraw()
	require.Len(t, rec.Calls, 2)

	unsel, sel := rec.Calls[0], rec.Calls[1]
	assert.False(t, unsel.Indirect)
	assert.Equal(t, 2, unsel.VertexBuffers)
	assert.Equal(t, uint32(c.Unselected), unsel.InstanceCount) //nolint:gosec // test sizes
	assert.Equal(t, uint32(lod.VertexCount(c.UnselectedTier)), unsel.VertexCount) //nolint:gosec // test sizes
	assert.Equal(t, uint32(c.Selected), sel.InstanceCount) //nolint:gosec // test sizes
	assert.Equal(t, uint32(lod.VertexCount(c.SelectedTier)), sel.VertexCount) //nolint:gosec // test sizes
	assert.Equal(t, 4, c.Total())
}

func TestNodeRenderer_Indirect(t *testing.T) {
	f := newFixture(t, gpu.BackendIndirect)
	p, r := f.nodes(t)
	f.sel.SelectNodes(3)

	rec := frame(t, p, r)
	c := p.ToDraw()
	require.Len(t, rec.Calls, 2)
	for i, call := range rec.Calls {
		assert.True(t, call.Indirect)
		assert.Equal(t, uint64(i*indirectArgsSize), call.IndirectOffset) //nolint:gosec // test sizes
		assert.Equal(t, 2, call.VertexBuffers)
	}

	raw, err := r.indirect.ReadBack(0, 2*indirectArgsSize)
	require.NoError(t, err)
	args := make([]uint32, 8)
	for i := range args {
		args[i] = binary.LittleEndian.Uint32(raw[4*i:])
	}
	//nolint:gosec // test sizes
	want := []uint32{
		uint32(lod.VertexCount(c.UnselectedTier)), uint32(c.Unselected), 0, 0,
		uint32(lod.VertexCount(c.SelectedTier)), uint32(c.Selected), 0, uint32(c.Unselected),
	}
	assert.Equal(t, want, args)
}

func TestNodeRenderer_VertexArray(t *testing.T) {
	f := newFixture(t, gpu.BackendVertexArray)
	p, r := f.nodes(t)
	f.sel.SelectNodes(3)

	rec := frame(t, p, r)
	require.Len(t, rec.Calls, 2)

	front := p.Front()
	zoom := f.cam.Zoom()
	var want [2]int
	for i := range front.Counts.Total() {
		size := front.Data[i*front.Stride+2]
		part := 0
		if i >= front.Counts.Unselected {
			part = 1
		}
		want[part] += lod.VertexCount(lod.ForNode(size, zoom))
	}

	unsel, sel := rec.Calls[0], rec.Calls[1]
	assert.Equal(t, 1, unsel.VertexBuffers)
	assert.Equal(t, uint32(1), unsel.InstanceCount)
	assert.Equal(t, uint32(want[0]), unsel.VertexCount) //nolint:gosec // test sizes
	assert.Equal(t, uint32(0), unsel.FirstVertex)
	assert.Equal(t, uint32(want[1]), sel.VertexCount) //nolint:gosec // test sizes
	assert.Equal(t, uint32(want[0]), sel.FirstVertex) //nolint:gosec // test sizes
}

func TestNodeRenderer_SkipsUnchangedGeneration(t *testing.T) {
	f := newFixture(t, gpu.BackendInstanced)
	p, r := f.nodes(t)

	frame(t, p, r)
	require.Equal(t, uint64(1), r.Stats().Uploads)

	// No new tick: promoting again finds nothing and keeps the upload.
	require.NoError(t, r.WorldUpdated())
	assert.Equal(t, uint64(1), r.Stats().Uploads)

	frame(t, p, r)
	assert.Equal(t, uint64(2), r.Stats().Uploads)
}

func TestNodeRenderer_HiddenDrawsNothing(t *testing.T) {
	f := newFixture(t, gpu.BackendInstanced)
	p, r := f.nodes(t)
	frame(t, p, r)

	require.NoError(t, f.opts.Update(func(o *options.Options) { o.ShowNodes = false }))
	rec := frame(t, p, r)
	assert.Empty(t, rec.Calls)
}

func TestNodeRenderer_IgnoresForeignLayers(t *testing.T) {
	f := newFixture(t, gpu.BackendInstanced)
	p, r := f.nodes(t)
	frame(t, p, r)

	rec := &gpu.Recorder{}
	r.Render(layers.EdgesUnselected, rec)
	r.Render(layers.Overlay, rec)
	assert.Empty(t, rec.Calls)
}

// =============================================================================
// Edge Renderer Tests
// =============================================================================

func TestEdgeRenderer_MeshPerKind(t *testing.T) {
	tests := []struct {
		kind     pipeline.EdgeKind
		vertices uint32
	}{
		{pipeline.EdgeKindUndirected, 6},
		{pipeline.EdgeKindDirected, 9},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			f := newFixture(t, gpu.BackendInstanced)
			p, r := f.edges(t, tt.kind)

			rec := frame(t, p, r)
			require.Len(t, rec.Calls, 1)
			assert.Equal(t, tt.vertices, rec.Calls[0].VertexCount)
			assert.Equal(t, uint32(2), rec.Calls[0].InstanceCount)
		})
	}
}

func TestEdgeRenderer_SelectedPartition(t *testing.T) {
	for _, b := range backends {
		t.Run(b.String(), func(t *testing.T) {
			f := newFixture(t, b)
			p, r := f.edges(t, pipeline.EdgeKindUndirected)
			f.sel.SelectNodes(3)

			rec := frame(t, p, r)
			require.Len(t, rec.Calls, 2)
			c := p.ToDraw()
			assert.Equal(t, 1, c.Unselected)
			assert.Equal(t, 1, c.Selected)
			if b == gpu.BackendVertexArray {
				assert.Equal(t, uint32(6), rec.Calls[1].VertexCount)
				assert.Equal(t, uint32(6), rec.Calls[1].FirstVertex)
			}
		})
	}
}

func TestEdgeRenderer_Layers(t *testing.T) {
	f := newFixture(t, gpu.BackendInstanced)
	_, r := f.edges(t, pipeline.EdgeKindDirected)
	assert.Equal(t, []layers.Layer{layers.EdgesUnselected, layers.EdgesSelected}, r.Layers())
	assert.Equal(t, "edges-directed", r.Name())
}

// =============================================================================
// Globals Tests
// =============================================================================

func TestGlobals_SyncUploadsOnChange(t *testing.T) {
	f := newFixture(t, gpu.BackendInstanced)
	require.NoError(t, f.globals.Sync())
	first := f.globals.block

	require.NoError(t, f.globals.Sync())
	assert.Equal(t, first, f.globals.block)

	f.cam.SetZoom(2)
	require.NoError(t, f.globals.Sync())
	assert.NotEqual(t, first, f.globals.block)
}

func TestShaders(t *testing.T) {
	got := Shaders()
	require.Len(t, got, 2)
	for _, s := range got {
		assert.NotEmpty(t, s.Source, s.Name)
		assert.Contains(t, s.Source, "fn fs_main", s.Name)
	}
}
