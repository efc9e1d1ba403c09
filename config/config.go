// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config reads viewer settings from a TOML file and hot-reloads the
// rendering options when the file changes.
package config

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/graphview/gpu"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/internal/arena"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/graphview/pipeline"
	"github.com/gogpu/graphview/scheduler"
	"golang.org/x/image/colornames"
)

// ErrInvalidConfig is returned for values that cannot be applied.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config is the viewer configuration file.
type Config struct {
	Render    RenderConfig    `toml:"render"`
	Pipeline  PipelineConfig  `toml:"pipeline"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Camera    CameraConfig    `toml:"camera"`
}

// RenderConfig holds the draw backend and the rendering options. Only this
// section is applied on hot reload.
type RenderConfig struct {
	Backend    string `toml:"backend"`     // auto, indirect, instanced, vertex-array
	UpdateMode string `toml:"update_mode"` // orphan, partial

	ShowNodes  bool `toml:"show_nodes"`
	ShowEdges  bool `toml:"show_edges"`
	ShowLabels bool `toml:"show_labels"`

	EdgeScale       float32 `toml:"edge_scale"`
	EdgeWeightRatio float32 `toml:"edge_weight_ratio"`

	HideNonSelected          bool    `toml:"hide_non_selected"`
	LightenNonSelected       bool    `toml:"lighten_non_selected"`
	LightenNonSelectedFactor float32 `toml:"lighten_non_selected_factor"`

	SelectionColorMode     string `toml:"selection_color_mode"` // blend, distinct
	EdgeBothSelectionColor Color  `toml:"edge_both_selection_color"`
	EdgeOutSelectionColor  Color  `toml:"edge_out_selection_color"`
	EdgeInSelectionColor   Color  `toml:"edge_in_selection_color"`

	AutoSelectNeighbors bool  `toml:"auto_select_neighbors"`
	BackgroundColor     Color `toml:"background_color"`
}

// PipelineConfig sizes the attribute pipelines.
type PipelineConfig struct {
	BatchSize int `toml:"batch_size"`
	Slots     int `toml:"slots"`
}

// SchedulerConfig sizes the worker pool.
type SchedulerConfig struct {
	MaxWorkers   int      `toml:"max_workers"`
	CloseTimeout Duration `toml:"close_timeout"`
}

// CameraConfig is the initial viewport.
type CameraConfig struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Zoom   float32 `toml:"zoom"`
	Fit    bool    `toml:"fit"`
}

// Default returns the built-in configuration.
func Default() *Config {
	o := options.Default()
	return &Config{
		Render: RenderConfig{
			Backend:                  gpu.BackendAuto.String(),
			UpdateMode:               gpu.UpdateOrphan.String(),
			ShowNodes:                o.ShowNodes,
			ShowEdges:                o.ShowEdges,
			ShowLabels:               o.ShowLabels,
			EdgeScale:                o.EdgeScale,
			EdgeWeightRatio:          o.EdgeWeightRatio,
			HideNonSelected:          o.HideNonSelected,
			LightenNonSelected:       o.LightenNonSelected,
			LightenNonSelectedFactor: o.LightenNonSelectedFactor,
			SelectionColorMode:       o.SelectionColorMode.String(),
			EdgeBothSelectionColor:   Color(o.EdgeBothSelectionColor),
			EdgeOutSelectionColor:    Color(o.EdgeOutSelectionColor),
			EdgeInSelectionColor:     Color(o.EdgeInSelectionColor),
			AutoSelectNeighbors:      o.AutoSelectNeighbors,
			BackgroundColor:          Color(o.BackgroundColor),
		},
		Pipeline: PipelineConfig{
			BatchSize: pipeline.DefaultBatchSize,
			Slots:     arena.MinSlots,
		},
		Scheduler: SchedulerConfig{
			MaxWorkers:   scheduler.MaxWorkers,
			CloseTimeout: Duration(scheduler.DefaultCloseTimeout),
		},
		Camera: CameraConfig{Width: 1280, Height: 720, Zoom: 1, Fit: true},
	}
}

// Load reads path over the defaults. Keys the file sets that no field
// matches are an error, so typos do not go unnoticed.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return finish(cfg, md, path)
}

// Decode reads a configuration from r over the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return finish(cfg, md, "input")
}

func finish(cfg *Config, md toml.MetaData, name string) (*Config, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, name, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", name, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate reports the first value that cannot be applied.
func (c *Config) Validate() error {
	if _, err := c.Backend(); err != nil {
		return err
	}
	if _, err := c.UpdateMode(); err != nil {
		return err
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	if c.Pipeline.BatchSize < 1 {
		return fmt.Errorf("%w: pipeline.batch_size %d", ErrInvalidConfig, c.Pipeline.BatchSize)
	}
	if c.Pipeline.Slots < arena.MinSlots {
		return fmt.Errorf("%w: pipeline.slots %d, need at least %d", ErrInvalidConfig, c.Pipeline.Slots, arena.MinSlots)
	}
	if c.Scheduler.MaxWorkers < 1 {
		return fmt.Errorf("%w: scheduler.max_workers %d", ErrInvalidConfig, c.Scheduler.MaxWorkers)
	}
	if c.Scheduler.CloseTimeout < 0 {
		return fmt.Errorf("%w: scheduler.close_timeout %v", ErrInvalidConfig, c.Scheduler.CloseTimeout)
	}
	if c.Camera.Width < 1 || c.Camera.Height < 1 {
		return fmt.Errorf("%w: camera size %dx%d", ErrInvalidConfig, c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.Zoom <= 0 {
		return fmt.Errorf("%w: camera.zoom %v", ErrInvalidConfig, c.Camera.Zoom)
	}
	return nil
}

// Backend parses render.backend.
func (c *Config) Backend() (gpu.Backend, error) {
	b, err := gpu.ParseBackend(c.Render.Backend)
	if err != nil {
		return gpu.BackendAuto, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return b, nil
}

// UpdateMode parses render.update_mode.
func (c *Config) UpdateMode() (gpu.UpdateMode, error) {
	switch c.Render.UpdateMode {
	case "", gpu.UpdateOrphan.String():
		return gpu.UpdateOrphan, nil
	case gpu.UpdatePartial.String():
		return gpu.UpdatePartial, nil
	}
	return gpu.UpdateOrphan, fmt.Errorf("%w: render.update_mode %q", ErrInvalidConfig, c.Render.UpdateMode)
}

// Options converts the render section into validated rendering options.
func (c *Config) Options() (options.Options, error) {
	r := c.Render
	mode, err := options.ParseSelectionColorMode(r.SelectionColorMode)
	if err != nil {
		return options.Options{}, err
	}
	o := options.Options{
		ShowNodes:                r.ShowNodes,
		ShowEdges:                r.ShowEdges,
		ShowLabels:               r.ShowLabels,
		EdgeScale:                r.EdgeScale,
		EdgeWeightRatio:          r.EdgeWeightRatio,
		HideNonSelected:          r.HideNonSelected,
		LightenNonSelected:       r.LightenNonSelected,
		LightenNonSelectedFactor: r.LightenNonSelectedFactor,
		SelectionColorMode:       mode,
		EdgeBothSelectionColor:   graph.Color(r.EdgeBothSelectionColor),
		EdgeOutSelectionColor:    graph.Color(r.EdgeOutSelectionColor),
		EdgeInSelectionColor:     graph.Color(r.EdgeInSelectionColor),
		AutoSelectNeighbors:      r.AutoSelectNeighbors,
		BackgroundColor:          graph.Color(r.BackgroundColor),
	}
	if err := o.Validate(); err != nil {
		return options.Options{}, err
	}
	return o, nil
}

// Color is a packed color written as "#rrggbb", "#rrggbbaa" or an SVG
// color name.
type Color graph.Color

// MarshalText writes the hex form.
func (c Color) MarshalText() ([]byte, error) {
	r, g, b, a := graph.Color(c).Channels()
	if a == 0xff {
		return fmt.Appendf(nil, "#%02x%02x%02x", r, g, b), nil
	}
	return fmt.Appendf(nil, "#%02x%02x%02x%02x", r, g, b, a), nil
}

// UnmarshalText parses the hex form or a color name.
func (c *Color) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if named, ok := colornames.Map[s]; ok {
		*c = Color(graph.FromColor(named))
		return nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return fmt.Errorf("%w: color %q", ErrInvalidConfig, text)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fmt.Errorf("%w: color %q", ErrInvalidConfig, text)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	*c = Color(graph.RGBA(uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v))) //nolint:gosec // G115: bytes of a 32-bit value
	return nil
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

// MarshalText writes d as "1.5s".
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalidConfig, text)
	}
	*d = Duration(v)
	return nil
}
