// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package input

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/graphview/selection"
)

// DefaultClickSlop is the distance in pixels a pointer may travel between
// down and up and still count as a click.
const DefaultClickSlop = 4

// SelectionController picks the node under a click and runs rectangle
// selection on shift-drag.
type SelectionController struct {
	model *selection.Model

	// ClickSlop is the click tolerance in pixels.
	ClickSlop float32

	down         bool
	rect         bool
	downX, downY float32
}

// NewSelectionController returns a controller driving model.
func NewSelectionController(model *selection.Model) *SelectionController {
	return &SelectionController{model: model, ClickSlop: DefaultClickSlop}
}

// HandleEvent implements Listener. Rectangle drags are consumed; clicks are
// not.
func (s *SelectionController) HandleEvent(ev Event) bool {
	if ev.Kind != KindPointer {
		return false
	}
	x, y := ev.Position()
	p := ev.Pointer

	switch p.Type {
	case gpucontext.PointerDown:
		if p.Button != gpucontext.ButtonLeft {
			return false
		}
		s.down, s.downX, s.downY = true, x, y
		if p.Modifiers.HasShift() {
			s.rect = true
			s.model.StartRect(x, y)
			return true
		}
	case gpucontext.PointerMove:
		if s.rect {
			s.model.UpdateRect(x, y)
			return true
		}
	case gpucontext.PointerUp:
		if p.Button != gpucontext.ButtonLeft || !s.down {
			return false
		}
		s.down = false
		if s.rect {
			s.rect = false
			s.model.UpdateRect(x, y)
			s.model.StopRect()
			return true
		}
		if s.isClick(x, y) {
			s.model.Pick(x, y)
		}
	case gpucontext.PointerCancel:
		s.down = false
		if s.rect {
			s.rect = false
			s.model.StopRect()
		}
	}
	return false
}

func (s *SelectionController) isClick(x, y float32) bool {
	dx, dy := x-s.downX, y-s.downY
	return dx*dx+dy*dy <= s.ClickSlop*s.ClickSlop
}
