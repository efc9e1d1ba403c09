// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package options holds the rendering options read by the attribute
// pipelines on every update tick.
package options

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/graphview/graph"
	"golang.org/x/image/colornames"
)

// ErrInvalidOptions is returned by Validate.
var ErrInvalidOptions = errors.New("options: invalid value")

// SelectionColorMode selects how selected edges are colored.
type SelectionColorMode uint8

const (
	// SelectionColorBlend draws selected elements in their own color blended
	// toward the background.
	SelectionColorBlend SelectionColorMode = iota

	// SelectionColorDistinct draws selected edges in the Both/Out/In colors
	// depending on which endpoints are selected.
	SelectionColorDistinct
)

// String returns the mode name.
func (m SelectionColorMode) String() string {
	switch m {
	case SelectionColorBlend:
		return "blend"
	case SelectionColorDistinct:
		return "distinct"
	default:
		return fmt.Sprintf("SelectionColorMode(%d)", m)
	}
}

// ParseSelectionColorMode parses the output of String.
func ParseSelectionColorMode(s string) (SelectionColorMode, error) {
	switch s {
	case "blend", "":
		return SelectionColorBlend, nil
	case "distinct":
		return SelectionColorDistinct, nil
	}
	return 0, fmt.Errorf("%w: selection color mode %q", ErrInvalidOptions, s)
}

// Options is the rendering options surface.
type Options struct {
	ShowNodes  bool
	ShowEdges  bool
	ShowLabels bool

	// EdgeScale multiplies every edge thickness.
	EdgeScale float32

	// EdgeWeightRatio is the thickness of the heaviest edge relative to the
	// lightest one. Values below 1 are treated as 1.
	EdgeWeightRatio float32

	HideNonSelected bool

	LightenNonSelected bool

	// LightenNonSelectedFactor in [0, 1] dims elements outside the
	// selection. 1 hides them entirely.
	LightenNonSelectedFactor float32

	SelectionColorMode SelectionColorMode

	EdgeBothSelectionColor graph.Color
	EdgeOutSelectionColor  graph.Color
	EdgeInSelectionColor   graph.Color

	AutoSelectNeighbors bool

	BackgroundColor graph.Color
}

// Default returns the default options.
func Default() Options {
	return Options{
		ShowNodes:                true,
		ShowEdges:                true,
		ShowLabels:               false,
		EdgeScale:                1,
		EdgeWeightRatio:          4,
		HideNonSelected:          false,
		LightenNonSelected:       true,
		LightenNonSelectedFactor: 0.7,
		SelectionColorMode:       SelectionColorBlend,
		EdgeBothSelectionColor:   graph.FromColor(colornames.Orangered),
		EdgeOutSelectionColor:    graph.FromColor(colornames.Limegreen),
		EdgeInSelectionColor:     graph.FromColor(colornames.Royalblue),
		AutoSelectNeighbors:      true,
		BackgroundColor:          graph.FromColor(colornames.White),
	}
}

// Validate reports the first out-of-range value.
func (o Options) Validate() error {
	if o.EdgeScale < 0 {
		return fmt.Errorf("%w: edge scale %v", ErrInvalidOptions, o.EdgeScale)
	}
	if o.LightenNonSelectedFactor < 0 || o.LightenNonSelectedFactor > 1 {
		return fmt.Errorf("%w: lighten factor %v not in [0, 1]", ErrInvalidOptions, o.LightenNonSelectedFactor)
	}
	if o.SelectionColorMode > SelectionColorDistinct {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, o.SelectionColorMode)
	}
	return nil
}

// HidesNonSelected reports whether elements outside an active selection
// should be skipped entirely: either hiding is requested or lightening
// would make them invisible anyway.
func (o Options) HidesNonSelected() bool {
	return o.HideNonSelected || (o.LightenNonSelected && o.LightenNonSelectedFactor >= 1)
}

// DistinctSelectionColors reports whether selected edges use the
// Both/Out/In colors.
func (o Options) DistinctSelectionColors() bool {
	return o.SelectionColorMode == SelectionColorDistinct
}

// Store publishes Options to concurrent readers. Readers get a consistent
// copy; writers replace the whole value.
type Store struct {
	ptr     atomic.Pointer[Options]
	version atomic.Uint64
}

// NewStore returns a Store holding o.
func NewStore(o Options) *Store {
	s := &Store{}
	s.ptr.Store(&o)
	return s
}

// Load returns the current options.
func (s *Store) Load() Options {
	if o := s.ptr.Load(); o != nil {
		return *o
	}
	return Default()
}

// Version increases on every Set or Update.
func (s *Store) Version() uint64 { return s.version.Load() }

// Set validates and stores o.
func (s *Store) Set(o Options) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.ptr.Store(&o)
	s.version.Add(1)
	return nil
}

// Update applies fn to a copy of the current options and stores the result.
// Concurrent updates are serialized by compare-and-swap.
func (s *Store) Update(fn func(*Options)) error {
	for {
		old := s.ptr.Load()
		var next Options
		if old != nil {
			next = *old
		} else {
			next = Default()
		}
		fn(&next)
		if err := next.Validate(); err != nil {
			return err
		}
		if s.ptr.CompareAndSwap(old, &next) {
			s.version.Add(1)
			return nil
		}
	}
}
