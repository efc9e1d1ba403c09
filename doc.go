// Package graphview renders large node-link graphs in real time on a GPU.
//
// # Overview
//
// Graph traversal runs on a small worker pool while a single render
// goroutine owns the GPU device. Each attribute pipeline writes visible
// elements into a rotating set of CPU slots; the render goroutine promotes
// a finished slot once per completed update round, uploads it and draws.
// Frames in between redraw the last promoted data, so the frame rate never
// depends on how long traversal takes.
//
// # Quick Start
//
//	ctx, _ := gpu.OpenHeadless()
//	store := graph.Generate(graph.GenerateConfig{Nodes: 10000, Edges: 20000})
//
//	v, err := graphview.NewViewer(store, ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer v.Close()
//
//	var rec gpu.Recorder
//	for range 60 {
//		v.Frame(&rec)
//	}
//
// With a window, pass the render pass encoder of each frame to Frame and
// the window's event source to Attach.
//
// # Architecture
//
// The library is organized into:
//   - Model: graph (contract and in-memory store), spatial (visibility)
//   - View: camera, selection, options, lod, layers
//   - Data preparation: pipeline, internal/arena
//   - Execution: scheduler, internal/parallel
//   - GPU: gpu (device, buffers, shaders), render (node and edge renderers)
//   - Surface: input, metrics, config, cmd/graphview
//
// NewViewer wires them explicitly; every component can also be built and
// tested on its own.
package graphview
