// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package input

import (
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
)

// Queue is a FIFO of events. Push is safe from any goroutine; Drain is
// called by the render goroutine.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	spare   []Event

	// Last pointer position, for sources that report scrolls without one.
	lastX, lastY float64
	start        time.Time
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{start: time.Now()}
}

// Push appends ev.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	if ev.Kind == KindPointer {
		q.lastX, q.lastY = ev.Pointer.X, ev.Pointer.Y
	}
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain delivers every queued event to c in arrival order and returns how
// many were delivered. Events pushed during delivery wait for the next
// Drain.
func (q *Queue) Drain(c *Chain) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.mu.Unlock()

	for _, ev := range batch {
		c.Dispatch(ev)
	}

	q.mu.Lock()
	clear(batch)
	q.spare = batch[:0]
	q.mu.Unlock()
	return len(batch)
}

// Attach registers the queue with a host event source. Sources with
// detailed pointer or scroll events are preferred; the basic mouse and
// scroll callbacks of gpucontext.EventSource are used otherwise.
func (q *Queue) Attach(src any) {
	ps, hasPointer := src.(gpucontext.PointerEventSource)
	if hasPointer {
		ps.OnPointer(func(ev gpucontext.PointerEvent) { q.Push(PointerEvent(ev)) })
	}
	ss, hasScroll := src.(gpucontext.ScrollEventSource)
	if hasScroll {
		ss.OnScrollEvent(func(ev gpucontext.ScrollEvent) { q.Push(ScrollEvent(ev)) })
	}

	es, ok := src.(gpucontext.EventSource)
	if !ok {
		return
	}
	es.OnKeyPress(func(k gpucontext.Key, m gpucontext.Modifiers) { q.Push(KeyEvent(k, m, true)) })
	es.OnKeyRelease(func(k gpucontext.Key, m gpucontext.Modifiers) { q.Push(KeyEvent(k, m, false)) })
	es.OnResize(func(w, h int) { q.Push(ResizeEvent(w, h)) })

	if !hasPointer {
		var buttons gpucontext.Buttons
		es.OnMouseMove(func(x, y float64) {
			q.Push(PointerEvent(q.mouse(gpucontext.PointerMove, gpucontext.ButtonNone, buttons, x, y)))
		})
		es.OnMousePress(func(b gpucontext.MouseButton, x, y float64) {
			btn := pointerButton(b)
			buttons |= buttonMask(btn)
			q.Push(PointerEvent(q.mouse(gpucontext.PointerDown, btn, buttons, x, y)))
		})
		es.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) {
			btn := pointerButton(b)
			buttons &^= buttonMask(btn)
			q.Push(PointerEvent(q.mouse(gpucontext.PointerUp, btn, buttons, x, y)))
		})
	}
	if !hasScroll {
		es.OnScroll(func(dx, dy float64) {
			q.mu.Lock()
			x, y := q.lastX, q.lastY
			q.mu.Unlock()
			q.Push(ScrollEvent(gpucontext.ScrollEvent{
				X: x, Y: y, DeltaX: dx, DeltaY: dy,
				DeltaMode: gpucontext.ScrollDeltaLine,
				Timestamp: time.Since(q.start),
			}))
		})
	}
}

func (q *Queue) mouse(t gpucontext.PointerEventType, b gpucontext.Button, bs gpucontext.Buttons, x, y float64) gpucontext.PointerEvent {
	return gpucontext.PointerEvent{
		Type:        t,
		PointerID:   1,
		X:           x,
		Y:           y,
		PointerType: gpucontext.PointerTypeMouse,
		IsPrimary:   true,
		Button:      b,
		Buttons:     bs,
		Timestamp:   time.Since(q.start),
	}
}

func pointerButton(b gpucontext.MouseButton) gpucontext.Button {
	switch b {
	case gpucontext.MouseButtonLeft:
		return gpucontext.ButtonLeft
	case gpucontext.MouseButtonRight:
		return gpucontext.ButtonRight
	case gpucontext.MouseButtonMiddle:
		return gpucontext.ButtonMiddle
	case gpucontext.MouseButton4:
		return gpucontext.ButtonX1
	case gpucontext.MouseButton5:
		return gpucontext.ButtonX2
	default:
		return gpucontext.ButtonNone
	}
}

func buttonMask(b gpucontext.Button) gpucontext.Buttons {
	switch b {
	case gpucontext.ButtonLeft:
		return gpucontext.ButtonsLeft
	case gpucontext.ButtonRight:
		return gpucontext.ButtonsRight
	case gpucontext.ButtonMiddle:
		return gpucontext.ButtonsMiddle
	case gpucontext.ButtonX1:
		return gpucontext.ButtonsX1
	case gpucontext.ButtonX2:
		return gpucontext.ButtonsX2
	default:
		return gpucontext.ButtonsNone
	}
}
