// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package arena implements the rotating CPU attribute buffers shared by an
// update worker and the render goroutine.
//
// Each slot carries an explicit role. A slot moves Free → Writing → Ready →
// Front → Free. At most one slot is Writing, at most one is Ready and at most
// one is Front, so the slot being written is never the slot being uploaded.
// Role transitions are the only synchronization needed for slot contents.
package arena

import (
	"fmt"
	"sync"
)

// MinSlots is the smallest arena that can hold one slot per role.
const MinSlots = 3

// Role is the state of a slot.
type Role uint8

// Slot roles.
const (
	Free Role = iota
	Writing
	Ready
	Front
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case Free:
		return "free"
	case Writing:
		return "writing"
	case Ready:
		return "ready"
	case Front:
		return "front"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

// Slot is one CPU buffer of fixed-stride float32 records.
type Slot struct {
	id     int
	role   Role
	stride int
	data   []float32
	gen    uint64
}

// ID returns the slot index within its arena.
func (s *Slot) ID() int { return s.id }

// Data returns the records written so far. The slice is valid until the
// slot returns to Free.
func (s *Slot) Data() []float32 { return s.data }

// Len returns the number of complete records.
func (s *Slot) Len() int { return len(s.data) / s.stride }

// Generation returns the commit counter value this slot was committed with.
func (s *Slot) Generation() uint64 { return s.gen }

// Write appends whole records. p must be a multiple of the stride.
func (s *Slot) Write(p []float32) {
	if s.role != Writing {
		panic(fmt.Sprintf("arena: write to %s slot %d", s.role, s.id))
	}
	if len(p)%s.stride != 0 {
		panic(fmt.Sprintf("arena: write of %d floats is not a multiple of stride %d", len(p), s.stride))
	}
	s.data = append(s.data, p...)
}

// Arena is a fixed set of slots for one attribute stream.
type Arena struct {
	mu     sync.Mutex
	slots  []*Slot
	stride int
	gen    uint64

	writing *Slot
	ready   *Slot
	front   *Slot
}

// New returns an arena of n slots holding records of stride floats.
// It panics if n < MinSlots or stride < 1.
func New(n, stride int) *Arena {
	if n < MinSlots {
		panic(fmt.Sprintf("arena: %d slots, need at least %d", n, MinSlots))
	}
	if stride < 1 {
		panic(fmt.Sprintf("arena: invalid stride %d", stride))
	}
	a := &Arena{stride: stride, slots: make([]*Slot, n)}
	for i := range a.slots {
		a.slots[i] = &Slot{id: i, stride: stride}
	}
	return a
}

// Stride returns the record size in floats.
func (a *Arena) Stride() int { return a.stride }

// Begin hands out a Free slot for writing, emptied but with its capacity
// kept. It panics if a slot is already being written.
func (a *Arena) Begin() *Slot {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.writing != nil {
		panic(fmt.Sprintf("arena: slot %d is already being written", a.writing.id))
	}
	for _, s := range a.slots {
		if s.role == Free {
			s.role = Writing
			s.data = s.data[:0]
			a.writing = s
			return s
		}
	}
	// Unreachable with n >= MinSlots: at most one slot per other role.
	panic("arena: no free slot")
}

// Commit marks the writing slot Ready. A Ready slot that was never promoted
// is superseded and returns to Free.
func (a *Arena) Commit(s *Slot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.checkWriting(s)
	if a.ready != nil {
		a.ready.role = Free
	}
	a.gen++
	s.gen = a.gen
	s.role = Ready
	a.ready = s
	a.writing = nil
}

// Discard abandons the writing slot. Its partial contents are never
// promoted.
func (a *Arena) Discard(s *Slot) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.checkWriting(s)
	s.role = Free
	s.data = s.data[:0]
	a.writing = nil
}

// Promote moves the Ready slot to Front and frees the previous Front slot.
// It reports whether a new slot was promoted; without a Ready slot it does
// nothing.
func (a *Arena) Promote() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ready == nil {
		return false
	}
	if a.front != nil {
		a.front.role = Free
	}
	a.ready.role = Front
	a.front = a.ready
	a.ready = nil
	return true
}

// Front returns the slot currently exposed to the renderer, or nil before
// the first promotion.
func (a *Arena) Front() *Slot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.front
}

// Roles returns the role of every slot, for diagnostics and tests.
func (a *Arena) Roles() []Role {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]Role, len(a.slots))
	for i, s := range a.slots {
		out[i] = s.role
	}
	return out
}

func (a *Arena) checkWriting(s *Slot) {
	if s == nil || s != a.writing || s.role != Writing {
		panic("arena: slot is not the one being written")
	}
}
