// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render uploads promoted attribute records to the GPU and records
// the draw calls for nodes and edges.
//
// # Key Principle
//
// Renderers RECEIVE a gpu.Context from the host, they do NOT create their own
// device. Everything in this package runs on the render goroutine.
//
// # Draw Paths
//
// The path is fixed by the context's gpu.Backend:
//
//   - BackendIndirect: one shared mesh per LOD tier, instance records in a
//     vertex buffer, draw arguments in an indirect buffer.
//   - BackendInstanced: the same buffers, with the partition addressed by the
//     instance buffer offset.
//   - BackendVertexArray: every instance expanded into its own vertices on
//     the CPU at upload time, with a tier chosen per instance.
//
// # Usage
//
//	globals, _ := render.NewGlobals(ctx, cam, opts)
//	nodes, _ := render.NewNodeRenderer(ctx, globals, nodePipeline)
//
//	// After every completed update round:
//	nodes.WorldUpdated()
//
//	// Every frame, for each layer in order:
//	nodes.Render(layers.NodesUnselected, pass)
package render
