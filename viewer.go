package graphview

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/graphview/camera"
	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/input"
	"github.com/gogpu/graphview/metrics"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/graphview/pipeline"
	"github.com/gogpu/graphview/render"
	"github.com/gogpu/graphview/scheduler"
	"github.com/gogpu/graphview/selection"
	"github.com/gogpu/graphview/spatial"
)

// ErrViewerClosed is returned when operating on a closed Viewer.
var ErrViewerClosed = errors.New("graphview: viewer closed")

// Viewer wires the rendering core for one graph and one GPU context.
//
// Frame, Close and the GPU-facing accessors belong to the render goroutine.
// Camera, Selection and Options are safe for concurrent use.
type Viewer struct {
	model   graph.Model
	gpu     *gpu.Context
	index   *spatial.Index
	camera  *camera.Camera
	options *options.Store
	sel     *selection.Model

	nodes      *pipeline.NodePipeline
	undirected *pipeline.EdgePipeline
	directed   *pipeline.EdgePipeline

	globals   *render.Globals
	renderers []render.Renderer

	queue *input.Queue
	chain *input.Chain

	sched   *scheduler.Scheduler
	metrics *metrics.Collector
	timeout time.Duration
	closed  bool
}

// NewViewer builds every component for model on ctx. The caller keeps
// ownership of ctx.
func NewViewer(model graph.Model, ctx *gpu.Context, opts ...ViewerOption) (*Viewer, error) {
	o := defaultViewerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("graphview: %w", err)
	}
	if o.timeout < 0 {
		o.timeout = time.Duration(cfg.Scheduler.CloseTimeout)
	}

	store := o.store
	if store == nil {
		opt, err := cfg.Options()
		if err != nil {
			return nil, fmt.Errorf("graphview: %w", err)
		}
		store = options.NewStore(opt)
	}
	mode, err := cfg.UpdateMode()
	if err != nil {
		return nil, fmt.Errorf("graphview: %w", err)
	}

	v := &Viewer{
		model:   model,
		gpu:     ctx,
		index:   spatial.New(model),
		camera:  camera.New(cfg.Camera.Width, cfg.Camera.Height),
		options: store,
		queue:   input.NewQueue(),
		chain:   &input.Chain{},
		metrics: o.metrics,
		timeout: o.timeout,
	}
	v.camera.SetZoom(cfg.Camera.Zoom)
	if cfg.Camera.Fit {
		v.camera.Fit(v.index.GraphBoundingBox())
	}
	v.sel = selection.New(v.index, v.camera, store)

	src := pipeline.Sources{Index: v.index, Camera: v.camera, Selection: v.sel, Options: store}
	popts := []pipeline.Option{
		pipeline.WithBatchSize(cfg.Pipeline.BatchSize),
		pipeline.WithSlots(cfg.Pipeline.Slots),
	}
	v.nodes = pipeline.NewNodePipeline(src, popts...)
	v.undirected = pipeline.NewEdgePipeline(pipeline.EdgeKindUndirected, src, popts...)
	v.directed = pipeline.NewEdgePipeline(pipeline.EdgeKindDirected, src, popts...)

	if err := v.initRenderers(render.WithUpdateMode(mode)); err != nil {
		v.destroy()
		return nil, err
	}

	// Selection sees pointer events first so shift-drags never pan.
	v.chain.Add(input.NewSelectionController(v.sel))
	v.chain.Add(input.NewCameraController(v.camera, v.index))

	sopts := []scheduler.Option{
		scheduler.WithMaxWorkers(cfg.Scheduler.MaxWorkers),
		scheduler.WithContext(o.ctx),
		scheduler.WithInput(v.queue, v.chain),
	}
	if v.metrics != nil {
		if err := v.watch(); err != nil {
			v.destroy()
			return nil, err
		}
		sopts = append(sopts, scheduler.WithObserver(v.metrics))
	}
	updaters := []scheduler.Updater{v.undirected, v.directed, v.nodes}
	v.sched = scheduler.New(updaters, v.renderers, sopts...)

	logger.Load().Info("graphview: viewer ready",
		"backend", ctx.Backend().String(),
		"nodes", v.index.NodeCount(),
		"edges", v.index.EdgeCount())
	return v, nil
}

func (v *Viewer) initRenderers(opts ...render.Option) error {
	globals, err := render.NewGlobals(v.gpu, v.camera, v.options)
	if err != nil {
		return fmt.Errorf("graphview: %w", err)
	}
	v.globals = globals

	for _, pipe := range []*pipeline.EdgePipeline{v.undirected, v.directed} {
		r, err := render.NewEdgeRenderer(v.gpu, globals, pipe, opts...)
		if err != nil {
			return fmt.Errorf("graphview: %w", err)
		}
		v.renderers = append(v.renderers, r)
	}
	r, err := render.NewNodeRenderer(v.gpu, globals, v.nodes, opts...)
	if err != nil {
		return fmt.Errorf("graphview: %w", err)
	}
	v.renderers = append(v.renderers, r)
	return nil
}

func (v *Viewer) watch() error {
	for _, p := range []metrics.Pipeline{v.nodes, v.undirected, v.directed} {
		if err := v.metrics.WatchPipeline(p); err != nil {
			return fmt.Errorf("graphview: %w", err)
		}
	}
	for _, r := range v.renderers {
		mr, ok := r.(metrics.Renderer)
		if !ok {
			continue
		}
		if err := v.metrics.WatchRenderer(mr); err != nil {
			return fmt.Errorf("graphview: %w", err)
		}
	}
	return nil
}

// Frame drains input, promotes a finished update round, records this
// frame's draw calls into enc and starts the next round when none is
// running. It never waits for update workers.
func (v *Viewer) Frame(enc gpu.DrawEncoder) scheduler.FrameInfo {
	if v.closed {
		return scheduler.FrameInfo{State: v.sched.State()}
	}
	return v.sched.Frame(enc)
}

// Attach subscribes the input queue to a host event source. See
// input.Queue.Attach for the interfaces recognized.
func (v *Viewer) Attach(src any) {
	v.queue.Attach(src)
}

// Push queues one input event for the next frame.
func (v *Viewer) Push(ev input.Event) {
	v.queue.Push(ev)
}

// Model returns the graph being drawn.
func (v *Viewer) Model() graph.Model { return v.model }

// Index returns the visibility index over the model.
func (v *Viewer) Index() *spatial.Index { return v.index }

// Camera returns the viewport transform.
func (v *Viewer) Camera() *camera.Camera { return v.camera }

// Selection returns the selection model.
func (v *Viewer) Selection() *selection.Model { return v.sel }

// Options returns the rendering options store.
func (v *Viewer) Options() *options.Store { return v.options }

// Scheduler returns the frame scheduler, for layer visibility and stats.
func (v *Viewer) Scheduler() *scheduler.Scheduler { return v.sched }

// Background returns the clear color for the next render pass.
func (v *Viewer) Background() graph.Color { return v.options.Load().BackgroundColor }

// Close waits for running update tasks up to the close timeout and then
// releases GPU resources. The GPU context itself is left to the caller.
// scheduler.ErrCloseTimeout is returned when workers had to be abandoned.
func (v *Viewer) Close() error {
	if v.closed {
		return ErrViewerClosed
	}
	v.closed = true
	err := v.sched.Close(v.timeout)
	v.destroy()
	if err != nil {
		return fmt.Errorf("graphview: close: %w", err)
	}
	return nil
}

func (v *Viewer) destroy() {
	for _, r := range v.renderers {
		r.Destroy()
	}
	v.renderers = nil
	if v.globals != nil {
		v.globals.Destroy()
		v.globals = nil
	}
}
