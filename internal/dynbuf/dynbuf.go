// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package dynbuf implements growable device buffers for per-frame geometry.
//
// A Buffer tracks a logical length (elements last written) and a capacity
// (elements allocated). Writes that fit reuse the allocation; larger writes
// reallocate, copy the old logical contents into the new buffer on the
// device and release the old one. Capacity never shrinks.
package dynbuf

import (
	"errors"
	"fmt"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/gpucore"
)

// ErrInvalidStride is returned when a buffer is created with a non-positive stride.
var ErrInvalidStride = errors.New("dynbuf: stride must be positive")

// ErrUnalignedWrite is returned when written data is not a whole number of elements.
var ErrUnalignedWrite = errors.New("dynbuf: data is not a multiple of the stride")

// defaultCapacity is used when Desc.Capacity is zero.
const defaultCapacity = 64

// Desc describes a dynamic buffer.
type Desc struct {
	// Label is an optional debug label.
	Label string

	// Usage is the device usage. CopySrc and CopyDst are always added so
	// the contents can be carried over on growth.
	Usage gpucore.BufferUsage

	// Stride is the element size in bytes.
	Stride int

	// Capacity is the initial capacity in elements. Default: 64
	Capacity int
}

// Buffer is a device buffer that grows on demand.
type Buffer struct {
	device   gpucore.Device
	id       gpucore.BufferID
	label    string
	usage    gpucore.BufferUsage
	stride   int
	capacity int
	length   int
	grows    int
}

// New allocates a buffer with the initial capacity.
func New(device gpucore.Device, desc Desc) (*Buffer, error) {
	if desc.Stride <= 0 {
		return nil, ErrInvalidStride
	}
	if desc.Capacity <= 0 {
		desc.Capacity = defaultCapacity
	}
	b := &Buffer{
		device:   device,
		label:    desc.Label,
		usage:    desc.Usage | gpucore.BufferUsageCopySrc | gpucore.BufferUsageCopyDst,
		stride:   desc.Stride,
		capacity: desc.Capacity,
	}
	id, err := b.allocate(desc.Capacity)
	if err != nil {
		return nil, err
	}
	b.id = id
	return b, nil
}

func (b *Buffer) allocate(elements int) (gpucore.BufferID, error) {
	id, err := b.device.CreateBuffer(&gpucore.BufferDesc{
		Label: b.label,
		Size:  uint64(elements) * uint64(b.stride),
		Usage: b.usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("dynbuf: create %s (%d elements): %w", b.label, elements, err)
	}
	return id, nil
}

// EnsureCapacity grows the buffer so it holds at least n elements. The new
// capacity is max(n, 2*Capacity()). The first Len() elements are preserved
// at the same offsets.
func (b *Buffer) EnsureCapacity(n int) error {
	if n <= b.capacity {
		return nil
	}
	newCap := max(n, 2*b.capacity)
	id, err := b.allocate(newCap)
	if err != nil {
		return err
	}
	if b.length > 0 {
		size := uint64(b.length) * uint64(b.stride)
		if err := b.device.CopyBuffer(b.id, id, size); err != nil {
			b.device.DestroyBuffer(id)
			return fmt.Errorf("dynbuf: copy %s on growth: %w", b.label, err)
		}
	}
	debugdraw.Logger().Debug("dynbuf: buffer grown",
		"label", b.label,
		"old_capacity", b.capacity,
		"new_capacity", newCap,
		"preserved", b.length)

	b.device.DestroyBuffer(b.id)
	b.id = id
	b.capacity = newCap
	b.grows++
	return nil
}

// Write replaces the logical contents with data, growing first if needed.
// Data is uploaded at offset 0.
func (b *Buffer) Write(data []byte) error {
	if len(data)%b.stride != 0 {
		return fmt.Errorf("%w: %d bytes, stride %d", ErrUnalignedWrite, len(data), b.stride)
	}
	n := len(data) / b.stride
	if err := b.EnsureCapacity(n); err != nil {
		return err
	}
	if n > 0 {
		if err := b.device.WriteBuffer(b.id, 0, data); err != nil {
			return fmt.Errorf("dynbuf: write %s: %w", b.label, err)
		}
	}
	b.length = n
	return nil
}

// Read returns the logical contents from the device.
func (b *Buffer) Read() ([]byte, error) {
	if b.length == 0 {
		return nil, nil
	}
	return b.device.ReadBuffer(b.id, 0, uint64(b.length)*uint64(b.stride))
}

// ID returns the current device buffer. It changes when the buffer grows.
func (b *Buffer) ID() gpucore.BufferID { return b.id }

// Capacity returns the allocated size in elements.
func (b *Buffer) Capacity() int { return b.capacity }

// Len returns the number of elements last written.
func (b *Buffer) Len() int { return b.length }

// Stride returns the element size in bytes.
func (b *Buffer) Stride() int { return b.stride }

// Grows returns how many times the buffer has been reallocated.
func (b *Buffer) Grows() int { return b.grows }

// Destroy releases the device buffer. The Buffer must not be used afterwards.
func (b *Buffer) Destroy() {
	if b.id != gpucore.InvalidID {
		b.device.DestroyBuffer(b.id)
		b.id = gpucore.InvalidID
	}
	b.capacity, b.length = 0, 0
}
