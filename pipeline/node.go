// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"context"

	"github.com/gogpu/graphview/camera"
	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/lod"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/graphview/selection"
)

// NodePipeline builds node records.
type NodePipeline struct {
	core
}

// NewNodePipeline returns a node pipeline reading from src.
func NewNodePipeline(src Sources, opts ...Option) *NodePipeline {
	return &NodePipeline{core: newCore("nodes", src, NodeStride, opts)}
}

// Update walks the visible nodes once and writes the next slot. Nodes
// outside an active selection are written first, then selected nodes and
// their neighbors.
func (p *NodePipeline) Update(ctx context.Context) error {
	o := p.src.Options.Load()
	if !o.ShowNodes {
		p.hidden()
		return nil
	}
	snap := p.src.Selection.Snapshot()
	view := p.src.Camera.View()

	return p.tick(ctx, func(w *writer) (Counts, error) {
		return p.fill(w, o, snap, &view)
	})
}

func (p *NodePipeline) fill(w *writer, o options.Options, snap *selection.Snapshot, view *camera.View) (Counts, error) {
	var (
		c      Counts
		batch  lod.Batch
		active = snap.Active()
		hide   = active && o.HidesNonSelected()
	)

	bias, mult := unselectedModulation(o, active)
	if !hide {
		for n := range p.src.Index.VisibleNodes(view.Bounds) {
			if active && snap.Highlighted(n.ID) {
				continue
			}
			r := w.record()
			if r == nil {
				break
			}
			writeNode(r, n, bias, mult)
			batch.Add(n.Size, view.Zoom)
			c.Unselected++
		}
		if w.err != nil {
			return c, w.err
		}
		c.UnselectedTier = batch.Tier()
	}
	if !active {
		return c, nil
	}

	batch.Reset()
	bias, mult = selectedModulation(o)
	for n := range p.src.Index.VisibleNodes(view.Bounds) {
		if !snap.Highlighted(n.ID) {
			continue
		}
		r := w.record()
		if r == nil {
			break
		}
		writeNode(r, n, bias, mult)
		batch.Add(n.Size, view.Zoom)
		c.Selected++
	}
	c.SelectedTier = batch.Tier()
	return c, w.err
}

func writeNode(r []float32, n graph.Node, bias, mult float32) {
	r[0] = n.X
	r[1] = n.Y
	r[2] = n.Size
	r[3] = n.Color.Bits()
	r[4] = bias
	r[5] = mult
}

// unselectedModulation dims elements outside an active selection toward
// the background when lightening is on.
func unselectedModulation(o options.Options, active bool) (bias, mult float32) {
	if active && o.LightenNonSelected && o.LightenNonSelectedFactor > 0 {
		return o.LightenNonSelectedFactor, 1 - o.LightenNonSelectedFactor
	}
	return plainBias, plainMultiplier
}

func selectedModulation(o options.Options) (bias, mult float32) {
	if o.DistinctSelectionColors() {
		return plainBias, plainMultiplier
	}
	return blendBias, blendMultiplier
}
