// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Buffer errors.
var (
	// ErrBufferDestroyed is returned when operating on a destroyed buffer.
	ErrBufferDestroyed = errors.New("gpu: buffer has been destroyed")

	// ErrNilBuffer is returned when operating on a buffer that was never
	// created.
	ErrNilBuffer = errors.New("gpu: buffer is nil")

	// ErrInvalidBufferSize is returned when a buffer size is invalid.
	ErrInvalidBufferSize = errors.New("gpu: invalid buffer size")

	// ErrImmutableBuffer is returned when an immutable buffer would have to
	// grow. It signals a configuration error: the buffer was sized for a
	// fixed workload that was exceeded.
	ErrImmutableBuffer = errors.New("gpu: immutable buffer cannot grow")

	// ErrBufferTooLarge is returned when the required size exceeds the
	// device limit.
	ErrBufferTooLarge = errors.New("gpu: buffer exceeds device limit")
)

// UpdateMode selects how a mutable buffer receives new contents.
type UpdateMode uint8

const (
	// UpdatePartial writes only the changed sub-range into the existing
	// allocation.
	UpdatePartial UpdateMode = iota

	// UpdateOrphan re-specifies the whole allocation before writing, so the
	// driver never waits for in-flight draws reading the old storage.
	UpdateOrphan
)

// String returns the mode name.
func (m UpdateMode) String() string {
	switch m {
	case UpdatePartial:
		return "partial"
	case UpdateOrphan:
		return "orphan"
	default:
		return fmt.Sprintf("UpdateMode(%d)", m)
	}
}

// BufferDescriptor describes a buffer to create.
type BufferDescriptor struct {
	// Label is an optional debug name.
	Label string

	// Size is the initial size in bytes. It is rounded up to a power of
	// two; zero creates a minimal buffer.
	Size uint64

	// Usage specifies how the buffer will be used. CopyDst is always added.
	Usage gputypes.BufferUsage

	// Immutable buffers keep their initial allocation forever.
	Immutable bool

	// Mode applies to mutable buffers.
	Mode UpdateMode
}

// minBufferSize is the smallest allocation, matching the copy alignment.
const minBufferSize = 256

// Buffer is a growable GPU buffer.
//
// Capacity only grows, to the next power of two that fits the request.
// Growing drops the previous contents; callers rewrite the whole buffer after
// Reserve reports growth.
type Buffer struct {
	ctx  *Context
	desc BufferDescriptor

	buf       hal.Buffer
	capacity  uint64
	destroyed bool

	// scratch holds the little-endian encoding of float writes.
	scratch []byte

	// grows and orphans count reallocations, for metrics.
	grows   int
	orphans int
}

// NewBuffer creates a buffer on the context's device.
func (c *Context) NewBuffer(desc BufferDescriptor) (*Buffer, error) {
	if c.destroyed {
		return nil, ErrContextDestroyed
	}
	b := &Buffer{ctx: c, desc: desc}
	b.desc.Usage |= gputypes.BufferUsageCopyDst
	if err := b.allocate(NextCapacity(0, max(desc.Size, minBufferSize))); err != nil {
		return nil, err
	}
	return b, nil
}

// NextCapacity returns the capacity needed to hold need bytes: cur if it is
// already large enough, otherwise the next power of two at or above need.
func NextCapacity(cur, need uint64) uint64 {
	if need <= cur {
		return cur
	}
	if need <= 1 {
		return 1
	}
	return 1 << bits.Len64(need-1)
}

// Raw returns the underlying HAL buffer.
// It panics if the buffer was destroyed, which is a programming error.
func (b *Buffer) Raw() hal.Buffer {
	if b == nil {
		panic(ErrNilBuffer)
	}
	if b.destroyed {
		panic(ErrBufferDestroyed)
	}
	return b.buf
}

// Label returns the debug name.
func (b *Buffer) Label() string { return b.desc.Label }

// Capacity returns the allocation size in bytes.
func (b *Buffer) Capacity() uint64 { return b.capacity }

// Immutable reports whether the buffer can grow.
func (b *Buffer) Immutable() bool { return b.desc.Immutable }

// Grows returns how many times the buffer was reallocated to grow.
func (b *Buffer) Grows() int { return b.grows }

// Orphans returns how many times the allocation was re-specified.
func (b *Buffer) Orphans() int { return b.orphans }

// Reserve makes room for size bytes. It reports whether the buffer was
// reallocated, in which case previous contents are lost.
func (b *Buffer) Reserve(size uint64) (grew bool, err error) {
	if err := b.check(); err != nil {
		return false, err
	}
	if size <= b.capacity {
		return false, nil
	}
	if b.desc.Immutable {
		return false, fmt.Errorf("%w: %q needs %d bytes, has %d", ErrImmutableBuffer, b.desc.Label, size, b.capacity)
	}

	newCap := NextCapacity(b.capacity, size)
	old := b.capacity
	if err := b.reallocate(newCap); err != nil {
		return false, err
	}
	b.grows++
	slogger().Debug("gpu: buffer grown", "label", b.desc.Label, "from", old, "to", newCap)
	return true, nil
}

// Write copies data at offset, growing the buffer if needed. With
// UpdateOrphan the allocation is re-specified first.
func (b *Buffer) Write(offset uint64, data []byte) error {
	if err := b.check(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	end := offset + uint64(len(data))
	grew, err := b.Reserve(end)
	if err != nil {
		return err
	}
	if !grew && !b.desc.Immutable && b.desc.Mode == UpdateOrphan {
		if err := b.reallocate(b.capacity); err != nil {
			return err
		}
		b.orphans++
	}
	if err := b.ctx.queue.WriteBuffer(b.buf, offset, data); err != nil {
		return fmt.Errorf("gpu: write %q [%d:%d]: %w", b.desc.Label, offset, end, err)
	}
	return nil
}

// WriteFloats writes little-endian float32 values at a byte offset.
func (b *Buffer) WriteFloats(offset uint64, data []float32) error {
	n := len(data) * 4
	if cap(b.scratch) < n {
		b.scratch = make([]byte, n)
	}
	out := b.scratch[:n]
	for i, f := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return b.Write(offset, out)
}

// WriteUint32s writes little-endian uint32 values at a byte offset.
func (b *Buffer) WriteUint32s(offset uint64, data []uint32) error {
	n := len(data) * 4
	if cap(b.scratch) < n {
		b.scratch = make([]byte, n)
	}
	out := b.scratch[:n]
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return b.Write(offset, out)
}

// ReadBack copies n bytes starting at offset out of a mappable buffer.
func (b *Buffer) ReadBack(offset, n uint64) ([]byte, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	if offset+n > b.capacity {
		return nil, fmt.Errorf("gpu: read %q [%d:%d] beyond capacity %d", b.desc.Label, offset, offset+n, b.capacity)
	}
	if n == 0 {
		return nil, nil
	}
	m, err := b.ctx.device.MapBuffer(b.buf, offset, n)
	if err != nil {
		return nil, fmt.Errorf("gpu: map %q: %w", b.desc.Label, err)
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(m.Ptr), n))
	if err := b.ctx.device.UnmapBuffer(b.buf); err != nil {
		return nil, fmt.Errorf("gpu: unmap %q: %w", b.desc.Label, err)
	}
	return out, nil
}

// Destroy releases the GPU allocation. Safe to call multiple times.
func (b *Buffer) Destroy() {
	if b == nil || b.destroyed {
		return
	}
	b.destroyed = true
	if b.buf != nil {
		b.ctx.device.DestroyBuffer(b.buf)
		b.buf = nil
	}
}

func (b *Buffer) check() error {
	if b == nil {
		return ErrNilBuffer
	}
	if b.destroyed {
		return ErrBufferDestroyed
	}
	return nil
}

func (b *Buffer) reallocate(size uint64) error {
	old := b.buf
	if err := b.allocate(size); err != nil {
		return err
	}
	if old != nil {
		b.ctx.device.DestroyBuffer(old)
	}
	return nil
}

func (b *Buffer) allocate(size uint64) error {
	if size == 0 {
		return ErrInvalidBufferSize
	}
	if limit := b.ctx.caps.Limits.MaxBufferSize; limit > 0 && size > limit {
		return fmt.Errorf("%w: %q needs %d bytes, limit %d", ErrBufferTooLarge, b.desc.Label, size, limit)
	}
	buf, err := b.ctx.device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.desc.Label,
		Size:  size,
		Usage: b.desc.Usage,
	})
	if err != nil {
		return fmt.Errorf("gpu: create buffer %q (%d bytes): %w", b.desc.Label, size, err)
	}
	b.buf = buf
	b.capacity = size
	return nil
}
