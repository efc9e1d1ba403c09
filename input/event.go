// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package input turns host window events into a neutral event stream that
// the render goroutine drains once per frame.
//
// Host callbacks may fire on any goroutine; they only append to a Queue.
// Listeners run on the render goroutine inside the scheduler's frame, before
// any pipeline promotion.
package input

import (
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Kind identifies the payload of an Event.
type Kind uint8

const (
	// KindPointer carries a pointer down, move or up.
	KindPointer Kind = iota

	// KindScroll carries a wheel or touchpad scroll.
	KindScroll

	// KindKey carries a key press or release.
	KindKey

	// KindResize carries a new viewport size.
	KindResize
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindScroll:
		return "scroll"
	case KindKey:
		return "key"
	case KindResize:
		return "resize"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Event is one queued input event. Only the fields of its Kind are set.
type Event struct {
	Kind Kind

	Pointer gpucontext.PointerEvent
	Scroll  gpucontext.ScrollEvent

	Key       gpucontext.Key
	Modifiers gpucontext.Modifiers
	Pressed   bool

	Width, Height int
}

// PointerEvent wraps a pointer event.
func PointerEvent(ev gpucontext.PointerEvent) Event {
	return Event{Kind: KindPointer, Pointer: ev, Modifiers: ev.Modifiers}
}

// ScrollEvent wraps a scroll event.
func ScrollEvent(ev gpucontext.ScrollEvent) Event {
	return Event{Kind: KindScroll, Scroll: ev, Modifiers: ev.Modifiers}
}

// KeyEvent wraps a key press or release.
func KeyEvent(key gpucontext.Key, mods gpucontext.Modifiers, pressed bool) Event {
	return Event{Kind: KindKey, Key: key, Modifiers: mods, Pressed: pressed}
}

// ResizeEvent wraps a viewport resize.
func ResizeEvent(width, height int) Event {
	return Event{Kind: KindResize, Width: width, Height: height}
}

// Position returns the screen position of pointer and scroll events.
func (e Event) Position() (x, y float32) {
	switch e.Kind {
	case KindPointer:
		return float32(e.Pointer.X), float32(e.Pointer.Y)
	case KindScroll:
		return float32(e.Scroll.X), float32(e.Scroll.Y)
	default:
		return 0, 0
	}
}
