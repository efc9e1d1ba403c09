// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package graph

import (
	"github.com/chewxy/math32"
	"github.com/gogpu/graphview/geom"
)

const (
	// gridItemsPerCell is the target node density of a grid cell.
	gridItemsPerCell = 4

	// gridMaxCellsPerSide bounds the grid resolution.
	gridMaxCellsPerSide = 512
)

// grid is an immutable uniform-grid bounding-box index built for one model
// version. Items are stored by index into the model's node and edge slices
// and registered in every cell their box overlaps.
type grid struct {
	version uint64
	bounds  geom.Rect
	cell    float32
	cols    int
	rows    int

	nodeCells [][]int32
	nodeBoxes []geom.Rect
	edgeCells [][]int32
	edgeBoxes []geom.Rect
}

func buildGrid(version uint64, nodes []Node, edges []Edge, nodeIdx map[NodeID]int) *grid {
	g := &grid{version: version, bounds: geom.EmptyRect()}

	g.nodeBoxes = make([]geom.Rect, len(nodes))
	for i, n := range nodes {
		b := n.Bounds()
		g.nodeBoxes[i] = b
		g.bounds = g.bounds.Union(b)
	}

	g.edgeBoxes = make([]geom.Rect, len(edges))
	for i, e := range edges {
		src, tgt := nodes[nodeIdx[e.Source]], nodes[nodeIdx[e.Target]]
		g.edgeBoxes[i] = geom.RectFromPoints(src.Position(), tgt.Position())
	}

	if g.bounds.Empty() {
		return g
	}

	side := int(math32.Ceil(math32.Sqrt(float32(len(nodes)) / gridItemsPerCell)))
	side = max(1, min(side, gridMaxCellsPerSide))
	g.cell = math32.Max(g.bounds.Width(), g.bounds.Height()) / float32(side)
	if g.cell <= 0 {
		g.cell = 1
	}
	g.cols = int(g.bounds.Width()/g.cell) + 1
	g.rows = int(g.bounds.Height()/g.cell) + 1

	g.nodeCells = g.fill(g.nodeBoxes)
	g.edgeCells = g.fill(g.edgeBoxes)
	return g
}

func (g *grid) fill(boxes []geom.Rect) [][]int32 {
	cells := make([][]int32, g.cols*g.rows)
	for i, b := range boxes {
		cx0, cy0, cx1, cy1 := g.cellRange(b)
		for cy := cy0; cy <= cy1; cy++ {
			for cx := cx0; cx <= cx1; cx++ {
				k := cy*g.cols + cx
				//nolint:gosec // G115: model sizes fit in int32
				cells[k] = append(cells[k], int32(i))
			}
		}
	}
	return cells
}

func (g *grid) cellRange(r geom.Rect) (cx0, cy0, cx1, cy1 int) {
	return g.cellX(r.Min.X), g.cellY(r.Min.Y), g.cellX(r.Max.X), g.cellY(r.Max.Y)
}

func (g *grid) cellX(x float32) int {
	return clampInt(int((x-g.bounds.Min.X)/g.cell), 0, g.cols-1)
}

func (g *grid) cellY(y float32) int {
	return clampInt(int((y-g.bounds.Min.Y)/g.cell), 0, g.rows-1)
}

// query visits every item whose box intersects r exactly once, in row-major
// cell order. An item spanning several cells is reported from the first cell
// of the overlap between its cell range and the query's cell range.
func (g *grid) query(r geom.Rect, cells [][]int32, boxes []geom.Rect, visit func(int32) bool) {
	if len(cells) == 0 || !r.Intersects(g.bounds) {
		return
	}
	qx0, qy0, qx1, qy1 := g.cellRange(r)
	for cy := qy0; cy <= qy1; cy++ {
		for cx := qx0; cx <= qx1; cx++ {
			for _, i := range cells[cy*g.cols+cx] {
				b := boxes[i]
				if !b.Intersects(r) {
					continue
				}
				ix0, iy0, _, _ := g.cellRange(b)
				if cx != max(ix0, qx0) || cy != max(iy0, qy0) {
					continue
				}
				if !visit(i) {
					return
				}
			}
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
