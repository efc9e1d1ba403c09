// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package metrics exports scheduler, pipeline and renderer counters to
// Prometheus.
//
// A Collector owns its registry, so several viewers in one process do not
// collide on metric names.
package metrics

import (
	"net/http"
	"time"

	"github.com/gogpu/graphview/pipeline"
	"github.com/gogpu/graphview/render"
	"github.com/gogpu/graphview/scheduler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "graphview"

// Pipeline is the part of an attribute pipeline the collector reads.
type Pipeline interface {
	Name() string
	ToDraw() pipeline.Counts
	Stats() pipeline.Stats
}

// Renderer is the part of a renderer the collector reads.
type Renderer interface {
	Name() string
	Stats() render.Stats
}

// Collector records scheduler events and exposes pipeline and renderer
// state. It implements scheduler.Observer.
type Collector struct {
	reg *prometheus.Registry

	frames       prometheus.Counter
	staleFrames  prometheus.Counter
	events       prometheus.Counter
	frameSeconds prometheus.Histogram

	rounds       prometheus.Counter
	roundSeconds prometheus.Histogram

	updateSeconds  *prometheus.HistogramVec
	updateFailures *prometheus.CounterVec
}

var _ scheduler.Observer = (*Collector)(nil)

// New creates a collector with its own registry. withRuntime adds the Go
// runtime and process collectors.
func New(withRuntime bool) *Collector {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		reg: reg,
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_total",
			Help:      "Frames drawn.",
		}),
		staleFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "stale_frames_total",
			Help:      "Frames that redrew the previous data because no update round had finished.",
		}),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "input_events_total",
			Help:      "Input events drained into the listener chain.",
		}),
		frameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "frame_seconds",
			Help:      "Time spent in one frame on the render goroutine.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "update_rounds_total",
			Help:      "Completed update rounds.",
		}),
		roundSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "update_round_seconds",
			Help:      "Wall time from dispatch to the frame that noticed completion.",
			Buckets:   prometheus.DefBuckets,
		}),
		updateSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "update_seconds",
			Help:      "Update task time by updater.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"updater"}),
		updateFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "update_failures_total",
			Help:      "Update tasks that returned an error or panicked, by updater.",
		}, []string{"updater"}),
	}
	reg.MustRegister(
		c.frames, c.staleFrames, c.events, c.frameSeconds,
		c.rounds, c.roundSeconds,
		c.updateSeconds, c.updateFailures,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

// Frame implements scheduler.Observer.
func (c *Collector) Frame(info scheduler.FrameInfo) {
	c.frames.Inc()
	if !info.Promoted {
		c.staleFrames.Inc()
	}
	c.events.Add(float64(info.Events))
	c.frameSeconds.Observe(info.Duration.Seconds())
}

// Round implements scheduler.Observer.
func (c *Collector) Round(elapsed time.Duration, _ int) {
	c.rounds.Inc()
	c.roundSeconds.Observe(elapsed.Seconds())
}

// Update implements scheduler.Observer.
func (c *Collector) Update(name string, elapsed time.Duration, err error) {
	c.updateSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		c.updateFailures.WithLabelValues(name).Inc()
	}
}

// WatchPipeline exports the drawn instance counts of p.
func (c *Collector) WatchPipeline(p Pipeline) error {
	labels := prometheus.Labels{"pipeline": p.Name()}
	for _, part := range []struct {
		name string
		fn   func(pipeline.Counts) int
	}{
		{"unselected", func(n pipeline.Counts) int { return n.Unselected }},
		{"selected", func(n pipeline.Counts) int { return n.Selected }},
	} {
		g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   Namespace,
			Name:        "instances_" + part.name,
			Help:        "Instances drawn from the promoted slot.",
			ConstLabels: labels,
		}, func() float64 { return float64(part.fn(p.ToDraw())) })
		if err := c.reg.Register(g); err != nil {
			return err
		}
	}
	ticks := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   Namespace,
		Name:        "pipeline_ticks_total",
		Help:        "Update ticks run by the pipeline.",
		ConstLabels: labels,
	}, func() float64 { return float64(p.Stats().Ticks) })
	discarded := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace:   Namespace,
		Name:        "pipeline_discarded_ticks_total",
		Help:        "Ticks whose slot was discarded after a failure.",
		ConstLabels: labels,
	}, func() float64 { return float64(p.Stats().Failures) })
	if err := c.reg.Register(ticks); err != nil {
		return err
	}
	return c.reg.Register(discarded)
}

// WatchRenderer exports the upload and draw counters of r.
func (c *Collector) WatchRenderer(r Renderer) error {
	labels := prometheus.Labels{"renderer": r.Name()}
	for _, m := range []struct {
		name, help string
		fn         func(render.Stats) uint64
	}{
		{"uploads_total", "Instance data uploads.", func(s render.Stats) uint64 { return s.Uploads }},
		{"upload_bytes_total", "Bytes written to instance buffers.", func(s render.Stats) uint64 { return s.UploadBytes }},
		{"draws_total", "Draw calls issued.", func(s render.Stats) uint64 { return s.Draws }},
	} {
		f := prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "renderer",
			Name:        m.name,
			Help:        m.help,
			ConstLabels: labels,
		}, func() float64 { return float64(m.fn(r.Stats())) })
		if err := c.reg.Register(f); err != nil {
			return err
		}
	}
	return nil
}
