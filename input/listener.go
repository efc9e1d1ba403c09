// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package input

import "sync"

// Listener receives drained events. HandleEvent returns true when it
// consumed the event; later listeners then do not see it.
type Listener interface {
	HandleEvent(ev Event) bool
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ev Event) bool

// HandleEvent calls f.
func (f ListenerFunc) HandleEvent(ev Event) bool { return f(ev) }

// Chain calls listeners in registration order until one consumes the
// event.
type Chain struct {
	mu        sync.RWMutex
	listeners []Listener
}

// Add appends l to the chain.
func (c *Chain) Add(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Len returns the number of listeners.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.listeners)
}

// Dispatch delivers ev and reports whether a listener consumed it.
func (c *Chain) Dispatch(ev Event) bool {
	c.mu.RLock()
	ls := c.listeners
	c.mu.RUnlock()
	for _, l := range ls {
		if l.HandleEvent(ev) {
			return true
		}
	}
	return false
}
