// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package scheduler runs graph traversal on a worker pool concurrently with
// drawing on the render goroutine.
//
// Each call to Frame drains input, promotes the results of a finished
// update round, draws every layer and, when no round is in flight, starts
// the next one. Frame never waits for workers: it polls the round once.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/input"
	"github.com/gogpu/graphview/internal/parallel"
	"github.com/gogpu/graphview/layers"
	"github.com/gogpu/graphview/render"
)

// Scheduler errors.
var (
	// ErrCloseTimeout is returned by Close when update tasks were still
	// running after the timeout. Their workers are abandoned.
	ErrCloseTimeout = errors.New("scheduler: update tasks did not finish before the close timeout")

	// ErrClosed is returned when operating on a closed scheduler.
	ErrClosed = errors.New("scheduler: closed")
)

// MaxWorkers caps the pool size.
const MaxWorkers = 4

// DefaultCloseTimeout is the close timeout used by callers without one.
const DefaultCloseTimeout = 2 * time.Second

// State is the update round state.
type State uint8

const (
	// Idle means no round is running; the next Frame dispatches one.
	Idle State = iota

	// UpdateInFlight means update tasks are running on the pool.
	UpdateInFlight

	// UpdateComplete means every task of the round has finished and its
	// results wait for promotion.
	UpdateComplete
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case UpdateInFlight:
		return "update-in-flight"
	case UpdateComplete:
		return "update-complete"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Updater is one unit of per-round work, typically an attribute pipeline.
type Updater interface {
	Name() string
	Update(ctx context.Context) error
}

// FrameInfo describes one call to Frame.
type FrameInfo struct {
	// Events is the number of input events drained.
	Events int

	// Promoted is true when a finished round was promoted this frame.
	// Frames without promotion redraw the previous data.
	Promoted bool

	// Dispatched is true when a new round was started.
	Dispatched bool

	// Draws is the number of (layer, renderer) pairs rendered.
	Draws int

	// State is the round state when the frame returned.
	State State

	Duration time.Duration
}

// Stats are cumulative scheduler counters.
type Stats struct {
	Frames      uint64
	Rounds      uint64
	Failures    uint64
	StaleFrames uint64
}

// Config holds scheduler settings.
type Config struct {
	MaxWorkers int
	Observer   Observer
	Context    context.Context
	Queue      *input.Queue
	Chain      *input.Chain
}

// Option configures a Scheduler.
type Option func(*Config)

// WithMaxWorkers overrides MaxWorkers. Values below 1 are ignored.
func WithMaxWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxWorkers = n
		}
	}
}

// WithObserver reports frames, rounds and update tasks to o.
func WithObserver(o Observer) Option {
	return func(c *Config) {
		if o != nil {
			c.Observer = o
		}
	}
}

// WithContext sets the context passed to update tasks.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		if ctx != nil {
			c.Context = ctx
		}
	}
}

// WithInput drains q into chain at the start of every frame.
func WithInput(q *input.Queue, chain *input.Chain) Option {
	return func(c *Config) {
		c.Queue, c.Chain = q, chain
	}
}

// Scheduler coordinates update rounds and frames. All methods must be
// called from the render goroutine.
type Scheduler struct {
	cfg       Config
	updaters  []Updater
	renderers []render.Renderer
	orderer   *layers.Orderer[render.Renderer]
	pool      *parallel.WorkerPool

	state      State
	round      *parallel.Group
	roundStart time.Time
	elapsed    []time.Duration

	stats  Stats
	closed bool
}

// New creates a scheduler and its worker pool. Every renderer is
// registered on each of its layers, in the given order.
func New(updaters []Updater, renderers []render.Renderer, opts ...Option) *Scheduler {
	cfg := Config{MaxWorkers: MaxWorkers, Observer: nopObserver{}, Context: context.Background()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Scheduler{
		cfg:       cfg,
		updaters:  updaters,
		renderers: renderers,
		orderer:   layers.New[render.Renderer](),
		pool:      parallel.NewWorkerPool(PoolSize(len(updaters), cfg.MaxWorkers)),
		elapsed:   make([]time.Duration, len(updaters)),
	}
	for _, r := range renderers {
		for _, l := range r.Layers() {
			s.orderer.Register(l, r)
		}
	}
	slogger().Info("scheduler: started",
		"updaters", len(updaters),
		"renderers", len(renderers),
		"workers", s.pool.Workers())
	return s
}

// PoolSize returns the worker count for n updaters: min(limit, n), at
// least 1.
func PoolSize(n, limit int) int {
	return max(min(limit, n), 1)
}

// Workers returns the pool size.
func (s *Scheduler) Workers() int { return s.pool.Workers() }

// Orderer returns the layer orderer, for hiding layers or registering
// overlay renderers.
func (s *Scheduler) Orderer() *layers.Orderer[render.Renderer] { return s.orderer }

// State returns the round state.
func (s *Scheduler) State() State { return s.state }

// Stats returns the cumulative counters.
func (s *Scheduler) Stats() Stats { return s.stats }

// Frame runs one frame and records draw calls into enc.
func (s *Scheduler) Frame(enc gpu.DrawEncoder) FrameInfo {
	start := time.Now()
	var info FrameInfo

	if s.cfg.Queue != nil && s.cfg.Chain != nil {
		info.Events = s.cfg.Queue.Drain(s.cfg.Chain)
	}

	if s.state == UpdateInFlight && s.round.Done() {
		s.finishRound()
	}
	if s.state == UpdateComplete {
		for _, r := range s.renderers {
			if err := r.WorldUpdated(); err != nil {
				slogger().Error("scheduler: upload failed", "renderer", r.Name(), "err", err)
			}
		}
		s.state = Idle
		info.Promoted = true
	}

	for l, r := range s.orderer.All() {
		r.Render(l, enc)
		info.Draws++
	}

	if s.state == Idle && !s.closed {
		s.dispatch()
		info.Dispatched = true
	}

	s.stats.Frames++
	if !info.Promoted {
		s.stats.StaleFrames++
	}
	info.State = s.state
	info.Duration = time.Since(start)
	s.cfg.Observer.Frame(info)
	return info
}

func (s *Scheduler) dispatch() {
	tasks := make([]parallel.Task, len(s.updaters))
	for i, u := range s.updaters {
		tasks[i] = s.task(i, u)
	}
	s.roundStart = time.Now()
	s.round = s.pool.Go(s.cfg.Context, tasks...)
	s.state = UpdateInFlight
}

// task times u. The deferred store runs even when u panics; the pool turns
// the panic into an error.
func (s *Scheduler) task(i int, u Updater) parallel.Task {
	return func(ctx context.Context) error {
		start := time.Now()
		defer func() { s.elapsed[i] = time.Since(start) }()
		return u.Update(ctx)
	}
}

// finishRound collects the errors of a resolved round.
func (s *Scheduler) finishRound() {
	failures := 0
	for i, err := range s.round.Errs() {
		name := s.updaters[i].Name()
		s.cfg.Observer.Update(name, s.elapsed[i], err)
		if err == nil {
			continue
		}
		failures++
		var pe *parallel.PanicError
		if errors.As(err, &pe) {
			slogger().Error("scheduler: update panicked", "updater", name, "panic", pe.Value, "stack", string(pe.Stack))
		} else {
			slogger().Warn("scheduler: update failed", "updater", name, "err", err)
		}
	}
	elapsed := time.Since(s.roundStart)
	s.cfg.Observer.Round(elapsed, failures)

	s.stats.Rounds++
	s.stats.Failures += uint64(failures) //nolint:gosec // G115: failures is non-negative
	s.round = nil
	s.state = UpdateComplete
	slogger().Debug("scheduler: round complete", "elapsed", elapsed, "failures", failures)
}

// Close stops dispatching and waits up to timeout for running update
// tasks. Tasks are never canceled; on timeout their workers are abandoned
// and ErrCloseTimeout is returned.
func (s *Scheduler) Close(timeout time.Duration) error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if !s.pool.CloseTimeout(timeout) {
		slogger().Warn("scheduler: abandoning update workers", "timeout", timeout)
		return ErrCloseTimeout
	}
	slogger().Info("scheduler: closed", "frames", s.stats.Frames, "rounds", s.stats.Rounds)
	return nil
}
