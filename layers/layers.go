// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layers orders draw calls so that unselected elements are drawn
// before selected ones.
package layers

import (
	"fmt"
	"iter"
	"slices"
)

// Layer is a z-order. Lower layers are drawn first.
type Layer int

// Standard layers. The gaps leave room for custom layers.
const (
	EdgesUnselected Layer = 100
	NodesUnselected Layer = 200
	EdgesSelected   Layer = 300
	NodesSelected   Layer = 400
	Overlay         Layer = 1000
)

// Standard returns the standard layers in draw order.
func Standard() []Layer {
	return []Layer{EdgesUnselected, NodesUnselected, EdgesSelected, NodesSelected, Overlay}
}

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case EdgesUnselected:
		return "edges-unselected"
	case NodesUnselected:
		return "nodes-unselected"
	case EdgesSelected:
		return "edges-selected"
	case NodesSelected:
		return "nodes-selected"
	case Overlay:
		return "overlay"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Selected reports whether l is one of the selected-element layers.
func (l Layer) Selected() bool {
	return l == EdgesSelected || l == NodesSelected
}

type layer[T any] struct {
	entries []T
	visible bool
}

// Orderer maps registered drawers to layers. Drawers run in ascending layer
// order, then in registration order within a layer.
//
// Orderer is not safe for concurrent use; it belongs to the render
// goroutine.
type Orderer[T any] struct {
	layers map[Layer]*layer[T]
	zOrder []Layer // cached sorted layer list, nil when stale
}

// New returns an empty Orderer.
func New[T any]() *Orderer[T] {
	return &Orderer[T]{layers: make(map[Layer]*layer[T])}
}

// Register appends d to layer l.
func (o *Orderer[T]) Register(l Layer, d T) {
	ly, ok := o.layers[l]
	if !ok {
		ly = &layer[T]{visible: true}
		o.layers[l] = ly
		o.zOrder = nil
	}
	ly.entries = append(ly.entries, d)
}

// RemoveLayer drops layer l and its drawers.
func (o *Orderer[T]) RemoveLayer(l Layer) error {
	if _, ok := o.layers[l]; !ok {
		return fmt.Errorf("layers: %v does not exist", l)
	}
	delete(o.layers, l)
	o.zOrder = nil
	return nil
}

// SetVisible shows or hides a layer without removing its drawers.
func (o *Orderer[T]) SetVisible(l Layer, visible bool) {
	if ly, ok := o.layers[l]; ok {
		ly.visible = visible
	}
}

// Layers returns the registered layers in draw order.
func (o *Orderer[T]) Layers() []Layer {
	if o.zOrder == nil {
		o.zOrder = make([]Layer, 0, len(o.layers))
		for l := range o.layers {
			o.zOrder = append(o.zOrder, l)
		}
		slices.Sort(o.zOrder)
	}
	return slices.Clone(o.zOrder)
}

// All yields every drawer of every visible layer in draw order.
func (o *Orderer[T]) All() iter.Seq2[Layer, T] {
	return func(yield func(Layer, T) bool) {
		for _, l := range o.Layers() {
			ly := o.layers[l]
			if !ly.visible {
				continue
			}
			for _, d := range ly.entries {
				if !yield(l, d) {
					return
				}
			}
		}
	}
}
