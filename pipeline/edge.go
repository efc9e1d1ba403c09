// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pipeline

import (
	"context"
	"fmt"

	"github.com/gogpu/graphview/graph"
	"github.com/gogpu/graphview/options"
	"github.com/gogpu/graphview/selection"
	"github.com/gogpu/graphview/spatial"
)

// EdgeKind partitions edges by directedness. Each kind has its own
// pipeline, counter and mesh.
type EdgeKind uint8

const (
	// EdgeKindUndirected edges are drawn as quads.
	EdgeKindUndirected EdgeKind = iota

	// EdgeKindDirected edges are drawn as a quad plus an arrowhead.
	EdgeKindDirected
)

// String returns the kind name.
func (k EdgeKind) String() string {
	switch k {
	case EdgeKindUndirected:
		return "undirected"
	case EdgeKindDirected:
		return "directed"
	default:
		return fmt.Sprintf("EdgeKind(%d)", k)
	}
}

// Stride returns the record size of the kind.
func (k EdgeKind) Stride() int {
	if k == EdgeKindDirected {
		return DirectedEdgeStride
	}
	return EdgeStride
}

func (k EdgeKind) matches(e graph.Edge) bool {
	return e.Directed == (k == EdgeKindDirected)
}

// EdgePipeline builds edge records of one kind.
type EdgePipeline struct {
	core
	kind EdgeKind
}

// NewEdgePipeline returns an edge pipeline for kind reading from src.
func NewEdgePipeline(kind EdgeKind, src Sources, opts ...Option) *EdgePipeline {
	return &EdgePipeline{
		core: newCore("edges-"+kind.String(), src, kind.Stride(), opts),
		kind: kind,
	}
}

// Kind returns the edge kind.
func (p *EdgePipeline) Kind() EdgeKind { return p.kind }

// Update walks the visible edges of the pipeline's kind and writes the next
// slot, unselected edges first.
func (p *EdgePipeline) Update(ctx context.Context) error {
	o := p.src.Options.Load()
	if !o.ShowEdges {
		p.hidden()
		return nil
	}
	snap := p.src.Selection.Snapshot()
	bounds := p.src.Camera.ViewBoundaries()
	lo, hi := p.src.Index.EdgeWeightRange()
	th := thickness{scale: o.EdgeScale, lo: lo, hi: hi, ratio: max(o.EdgeWeightRatio, 1)}

	return p.tick(ctx, func(w *writer) (Counts, error) {
		var c Counts
		active := snap.Active()
		hide := active && o.HidesNonSelected()

		bias, mult := unselectedModulation(o, active)
		if !hide {
			for e := range p.src.Index.VisibleEdges(bounds) {
				if !p.kind.matches(e.Edge) || (active && snap.HasEdge(e.ID)) {
					continue
				}
				r := w.record()
				if r == nil {
					break
				}
				p.write(r, e, th.of(e.Weight), e.Color, bias, mult)
				c.Unselected++
			}
			if w.err != nil {
				return c, w.err
			}
		}
		if !active {
			return c, nil
		}

		for e := range p.src.Index.VisibleEdges(bounds) {
			if !p.kind.matches(e.Edge) || !snap.HasEdge(e.ID) {
				continue
			}
			r := w.record()
			if r == nil {
				break
			}
			color, bias, mult := selectedEdgeColor(e.Edge, snap, o)
			p.write(r, e, th.of(e.Weight), color, bias, mult)
			c.Selected++
		}
		return c, w.err
	})
}

func (p *EdgePipeline) write(r []float32, e spatial.VisibleEdge, t float32, c graph.Color, bias, mult float32) {
	r[0] = e.Src.X
	r[1] = e.Src.Y
	r[2] = e.Dst.X
	r[3] = e.Dst.Y
	r[4] = t
	r[5] = c.Bits()
	r[6] = bias
	r[7] = mult
	if p.kind == EdgeKindDirected {
		r[8] = e.Dst.Size
	}
}

// selectedEdgeColor returns the color and modulation of a selected edge.
// With distinct colors the edge takes the Both, Out or In color depending
// on which endpoints are selected.
func selectedEdgeColor(e graph.Edge, snap *selection.Snapshot, o options.Options) (graph.Color, float32, float32) {
	if !o.DistinctSelectionColors() {
		return e.Color, blendBias, blendMultiplier
	}
	src, dst := snap.HasNode(e.Source), snap.HasNode(e.Target)
	switch {
	case src && dst:
		return o.EdgeBothSelectionColor, plainBias, plainMultiplier
	case src:
		return o.EdgeOutSelectionColor, plainBias, plainMultiplier
	case dst:
		return o.EdgeInSelectionColor, plainBias, plainMultiplier
	default:
		return e.Color, plainBias, plainMultiplier
	}
}

// thickness maps an edge weight into [scale, scale*ratio] linearly over the
// graph's weight range.
type thickness struct {
	scale, lo, hi, ratio float32
}

func (t thickness) of(w float32) float32 {
	if t.hi <= t.lo {
		return t.scale
	}
	return t.scale * (1 + (w-t.lo)/(t.hi-t.lo)*(t.ratio-1))
}
