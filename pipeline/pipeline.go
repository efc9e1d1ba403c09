// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pipeline builds the per-element attribute records the renderers
// upload to the GPU.
//
// Each pipeline writes one update tick into a slot of its own arena:
// unselected elements first, then selected ones, so a single offset splits
// the two partitions. Update runs on a pool worker; Promote and Front are
// called from the render goroutine between ticks.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/graphview/camera"
	"github.com/gogpu/graphview/internal/arena"
	"github.com/gogpu/graphview/lod"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/graphview/selection"
	"github.com/gogpu/graphview/spatial"
)

// Record strides in float32 values.
const (
	// NodeStride: x, y, size, color, colorBias, colorMultiplier.
	NodeStride = 6

	// EdgeStride: sx, sy, tx, ty, thickness, color, colorBias,
	// colorMultiplier.
	EdgeStride = 8

	// DirectedEdgeStride: EdgeStride followed by the target node size, used
	// to pull the arrowhead back to the node rim.
	DirectedEdgeStride = EdgeStride + 1
)

// DefaultBatchSize is the number of records buffered before they are
// flushed into the write slot.
const DefaultBatchSize = 32768

// Color modulation written into each record. The shader computes
// rgb*multiplier + background*bias.
const (
	plainBias       float32 = 0
	plainMultiplier float32 = 1

	blendBias       float32 = 0.5
	blendMultiplier float32 = 0.5
)

// SelectionSource supplies the current selection snapshot.
type SelectionSource interface {
	Snapshot() *selection.Snapshot
}

// Counts is the instance counter of one pipeline. Unselected records come
// first in the slot, Selected records follow.
type Counts struct {
	Unselected int
	Selected   int

	// Tiers are the circle mesh tiers for each partition, from the largest
	// observed size in it. Edge pipelines leave them at lod.Tier8.
	UnselectedTier lod.Tier
	SelectedTier   lod.Tier
}

// Total returns the number of records.
func (c Counts) Total() int { return c.Unselected + c.Selected }

// Frame is the stable data a renderer draws from.
type Frame struct {
	// Data holds Counts.Total() records. It stays valid until the next
	// Promote.
	Data   []float32
	Counts Counts
	Stride int

	// Generation increases with every committed tick; a renderer skips
	// uploads when it has not changed.
	Generation uint64
}

// Stats describes the last tick.
type Stats struct {
	Ticks    uint64
	Failures uint64
	Duration time.Duration
}

// Config holds pipeline construction settings.
type Config struct {
	BatchSize int
	Slots     int
}

// Option configures a pipeline.
type Option func(*Config)

// WithBatchSize sets the scratch batch size in records.
func WithBatchSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.BatchSize = n
		}
	}
}

// WithSlots sets the number of arena slots. Values below arena.MinSlots
// are raised to it.
func WithSlots(n int) Option {
	return func(c *Config) {
		c.Slots = max(n, arena.MinSlots)
	}
}

func newConfig(opts []Option) Config {
	c := Config{BatchSize: DefaultBatchSize, Slots: arena.MinSlots}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Sources are the collaborators every pipeline reads from.
type Sources struct {
	Index     *spatial.Index
	Camera    *camera.Camera
	Selection SelectionSource
	Options   *options.Store
}

func (s Sources) validate() {
	if s.Index == nil || s.Camera == nil || s.Selection == nil || s.Options == nil {
		panic("pipeline: Sources has a nil collaborator")
	}
}

// core is the state shared by the node and edge pipelines.
type core struct {
	name string
	src  Sources

	arena   *arena.Arena
	scratch []float32

	// mu pairs counters with the slot they describe.
	mu       sync.Mutex
	computed Counts
	toDraw   Counts
	stats    Stats
}

func newCore(name string, src Sources, stride int, opts []Option) core {
	src.validate()
	cfg := newConfig(opts)
	return core{
		name:    name,
		src:     src,
		arena:   arena.New(cfg.Slots, stride),
		scratch: make([]float32, cfg.BatchSize*stride),
	}
}

// Name returns the pipeline name used in logs and metrics.
func (c *core) Name() string { return c.name }

// Stride returns the record size in floats.
func (c *core) Stride() int { return c.arena.Stride() }

// Promote makes the last completed tick the one drawn: computed counts are
// copied to the draw counts and the Ready slot becomes the Front slot. A
// second call without a new tick changes nothing. It reports whether a new
// slot was promoted.
func (c *core) Promote() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	promoted := c.arena.Promote()
	c.toDraw = c.computed
	return promoted
}

// Computed returns the counts of the last completed tick.
func (c *core) Computed() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computed
}

// ToDraw returns the counts the renderer draws with.
func (c *core) ToDraw() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toDraw
}

// Stats returns tick statistics.
func (c *core) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Front returns the promoted data. Before the first promotion Data is nil.
func (c *core) Front() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := Frame{Counts: c.toDraw, Stride: c.arena.Stride()}
	if s := c.arena.Front(); s != nil {
		f.Data = s.Data()
		f.Generation = s.Generation()
	}
	if n := f.Counts.Total() * f.Stride; n < len(f.Data) {
		f.Data = f.Data[:n]
	}
	return f
}

// hidden zeroes the computed counts without writing a slot.
func (c *core) hidden() {
	c.mu.Lock()
	c.computed = Counts{}
	c.stats.Ticks++
	c.mu.Unlock()
}

// tick runs fill against a fresh write slot. The slot is committed with
// the returned counts, or discarded if fill fails or panics.
func (c *core) tick(ctx context.Context, fill func(w *writer) (Counts, error)) (err error) {
	start := time.Now()
	slot := c.arena.Begin()
	w := &writer{ctx: ctx, slot: slot, scratch: c.scratch, stride: c.arena.Stride()}

	committed := false
	defer func() {
		if committed {
			return
		}
		c.arena.Discard(slot)
		c.mu.Lock()
		c.stats.Failures++
		c.mu.Unlock()
		if err != nil {
			slogger().Warn("pipeline: tick discarded", "pipeline", c.name, "err", err)
		}
	}()

	counts, err := fill(w)
	if err == nil {
		err = w.flush()
	}
	if err != nil {
		return fmt.Errorf("pipeline %s: %w", c.name, err)
	}
	if got, want := slot.Len(), counts.Total(); got != want {
		return fmt.Errorf("pipeline %s: wrote %d records, counted %d", c.name, got, want)
	}

	c.mu.Lock()
	c.arena.Commit(slot)
	c.computed = counts
	c.stats.Ticks++
	c.stats.Duration = time.Since(start)
	c.mu.Unlock()
	committed = true

	slogger().Debug("pipeline: tick",
		"pipeline", c.name,
		"unselected", counts.Unselected,
		"selected", counts.Selected,
		"elapsed", time.Since(start))
	return nil
}

// writer buffers records in the scratch array and flushes full batches into
// the write slot.
type writer struct {
	ctx     context.Context
	slot    *arena.Slot
	scratch []float32
	stride  int
	n       int
	err     error
}

// record returns the next record to fill, or nil once the context is done.
func (w *writer) record() []float32 {
	if w.err != nil {
		return nil
	}
	if w.n+w.stride > len(w.scratch) {
		if w.err = w.flush(); w.err != nil {
			return nil
		}
	}
	r := w.scratch[w.n : w.n+w.stride]
	w.n += w.stride
	return r
}

func (w *writer) flush() error {
	if w.err != nil {
		return w.err
	}
	if w.n > 0 {
		w.slot.Write(w.scratch[:w.n])
		w.n = 0
	}
	return w.ctx.Err()
}
