// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu wraps the wgpu HAL device and queue used by the renderers.
//
// A Context owns the device for the lifetime of a viewer. It is touched only
// from the render goroutine: buffers, shader modules and pipelines are
// created, written and destroyed there.
package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Context errors.
var (
	// ErrNoAdapter is returned when an instance exposes no adapter.
	ErrNoAdapter = errors.New("gpu: no adapter available")

	// ErrUnsupportedProvider is returned when a device provider does not
	// expose HAL handles.
	ErrUnsupportedProvider = errors.New("gpu: device provider does not expose hal.Device and hal.Queue")

	// ErrContextDestroyed is returned when using a destroyed context.
	ErrContextDestroyed = errors.New("gpu: context has been destroyed")
)

// Caps is the subset of adapter capabilities the renderers care about.
type Caps struct {
	Features  gputypes.Features
	Downlevel hal.DownlevelFlags
	Limits    gputypes.Limits
}

// CapsOf extracts Caps from an enumerated adapter.
func CapsOf(a hal.ExposedAdapter) Caps {
	return Caps{
		Features:  a.Features,
		Downlevel: a.Capabilities.DownlevelCapabilities.Flags,
		Limits:    a.Capabilities.Limits,
	}
}

// DefaultCaps returns the capabilities assumed when the adapter is unknown.
func DefaultCaps() Caps {
	return Caps{Limits: gputypes.DefaultLimits()}
}

// Context is a GPU device, its queue and the draw backend chosen for it.
type Context struct {
	device  hal.Device
	queue   hal.Queue
	caps    Caps
	backend Backend
	format  gputypes.TextureFormat

	// release tears down what the context opened itself, nil for borrowed
	// devices.
	release   func()
	destroyed bool
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithBackend forces a draw backend instead of the capability-based choice.
// BackendAuto restores the automatic choice.
func WithBackend(b Backend) ContextOption {
	return func(c *Context) {
		if b != BackendAuto {
			c.backend = b
		}
	}
}

// WithFormat sets the color target format render pipelines are built for.
// TextureFormatUndefined keeps the default.
func WithFormat(f gputypes.TextureFormat) ContextOption {
	return func(c *Context) {
		if f != gputypes.TextureFormatUndefined {
			c.format = f
		}
	}
}

// DefaultFormat is the color target format used when none is known.
const DefaultFormat = gputypes.TextureFormatBGRA8Unorm

// NewContext wraps a device and queue opened elsewhere. The caller keeps
// ownership of both.
func NewContext(device hal.Device, queue hal.Queue, caps Caps, opts ...ContextOption) *Context {
	c := &Context{
		device:  device,
		queue:   queue,
		caps:    caps,
		backend: SelectBackend(caps),
		format:  DefaultFormat,
	}
	for _, opt := range opts {
		opt(c)
	}
	slogger().Info("gpu: context ready", "backend", c.backend.String(), "format", c.format)
	return c
}

// FromProvider builds a Context from a host application's device provider.
// The provider's device and queue must be HAL handles.
func FromProvider(p gpucontext.DeviceProvider, opts ...ContextOption) (*Context, error) {
	device, ok := p.Device().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("%w: device is %T", ErrUnsupportedProvider, p.Device())
	}
	queue, ok := p.Queue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("%w: queue is %T", ErrUnsupportedProvider, p.Queue())
	}
	caps := DefaultCaps()
	if a, ok := p.Adapter().(hal.ExposedAdapter); ok {
		caps = CapsOf(a)
	}
	opts = append([]ContextOption{WithFormat(p.SurfaceFormat())}, opts...)
	return NewContext(device, queue, caps, opts...), nil
}

// OpenHeadless opens the first adapter of the noop HAL backend. It is used
// for benchmarks and tests where no real GPU is present.
func OpenHeadless(opts ...ContextOption) (*Context, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	exposed := adapters[0]
	open, err := exposed.Adapter.Open(0, exposed.Capabilities.Limits)
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open adapter %q: %w", exposed.Info.Name, err)
	}

	c := NewContext(open.Device, open.Queue, CapsOf(exposed), opts...)
	c.release = func() {
		open.Device.Destroy()
		exposed.Adapter.Destroy()
		instance.Destroy()
	}
	return c, nil
}

// Device returns the HAL device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the HAL queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// Caps returns the adapter capabilities.
func (c *Context) Caps() Caps { return c.caps }

// Format returns the color target format.
func (c *Context) Format() gputypes.TextureFormat { return c.format }

// Backend returns the draw backend in use.
func (c *Context) Backend() Backend { return c.backend }

// Destroy releases resources the context opened itself. Borrowed devices
// are left to their owner. Safe to call multiple times.
func (c *Context) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.release != nil {
		c.release()
	}
}
