// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/gpucore"
)

// Backend is the name reported in gpucore.Capabilities.
const Backend = "wgpu"

// Errors returned by the device.
var (
	// ErrNilDevice is returned when New is called without a HAL device or queue.
	ErrNilDevice = errors.New("wgpu: nil device or queue")

	// ErrNoHALProvider is returned when a provider does not expose HAL types.
	ErrNoHALProvider = errors.New("wgpu: provider does not expose HAL device and queue")

	// ErrNoTarget is returned by Draw and ReadPixels when no target is set.
	ErrNoTarget = errors.New("wgpu: no render target")

	// ErrNotOffscreen is returned by ReadPixels for surface targets.
	ErrNotOffscreen = errors.New("wgpu: target is not offscreen")
)

type buffer struct {
	buf  hal.Buffer
	size uint64
}

type texture struct {
	tex           hal.Texture
	view          hal.TextureView
	width, height uint32
}

// Option configures a Device.
type Option func(*Device)

// WithSPIRV compiles WGSL to SPIR-V with naga before creating shader modules.
// Needed for HAL backends that only accept SPIR-V.
func WithSPIRV() Option {
	return func(d *Device) { d.spirv = true }
}

// WithSurfaceFormat sets the color format of surface targets.
// Default: gputypes.TextureFormatBGRA8Unorm.
func WithSurfaceFormat(f gputypes.TextureFormat) Option {
	return func(d *Device) { d.surfaceFormat = f }
}

// WithMaxBufferSize overrides the buffer size limit reported by
// Capabilities. Default: gputypes.DefaultLimits().MaxBufferSize.
func WithMaxBufferSize(n uint64) Option {
	return func(d *Device) { d.caps.MaxBufferSize = n }
}

// Device is a gpucore.Device backed by a HAL device and queue. The HAL
// objects are borrowed; Destroy releases only what the Device created.
type Device struct {
	device hal.Device
	queue  hal.Queue

	caps          gpucore.Capabilities
	spirv         bool
	surfaceFormat gputypes.TextureFormat

	nextID   uint64
	buffers  map[gpucore.BufferID]*buffer
	textures map[gpucore.TextureID]*texture
	samplers map[gpucore.SamplerID]hal.Sampler
	programs map[gpucore.ProgramID]*program

	target *target
	owned  *standalone
}

var _ gpucore.Device = (*Device)(nil)

// New wraps a HAL device and queue.
func New(device hal.Device, queue hal.Queue, opts ...Option) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	d := &Device{
		device: device,
		queue:  queue,
		caps: gpucore.Capabilities{
			ShaderModel:   gpucore.ShaderModelWGSL,
			MaxBufferSize: gputypes.DefaultLimits().MaxBufferSize,
			Backend:       Backend,
		},
		surfaceFormat: gputypes.TextureFormatBGRA8Unorm,
		buffers:       make(map[gpucore.BufferID]*buffer),
		textures:      make(map[gpucore.TextureID]*texture),
		samplers:      make(map[gpucore.SamplerID]hal.Sampler),
		programs:      make(map[gpucore.ProgramID]*program),
	}
	for _, opt := range opts {
		opt(d)
	}
	debugdraw.Logger().Debug("wgpu: device ready",
		"spirv", d.spirv, "surface_format", d.surfaceFormat)
	return d, nil
}

// NewFromProvider shares the device of a gpucontext.DeviceProvider, for
// example a gogpu window. The provider must also implement HalDevice() any
// and HalQueue() any returning hal.Device and hal.Queue. The provider's
// surface format is used unless opts override it.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		opts = append([]Option{WithSurfaceFormat(f)}, opts...)
	}
	return New(device, queue, opts...)
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// Capabilities implements gpucore.Device.
func (d *Device) Capabilities() gpucore.Capabilities { return d.caps }

// bufferUsage maps gpucore usage flags to WebGPU usage flags.
func bufferUsage(u gpucore.BufferUsage) gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u.Has(gpucore.BufferUsageCopySrc) {
		out |= gputypes.BufferUsageCopySrc
	}
	if u.Has(gpucore.BufferUsageCopyDst) {
		out |= gputypes.BufferUsageCopyDst
	}
	if u.Has(gpucore.BufferUsageIndex) {
		out |= gputypes.BufferUsageIndex
	}
	if u.Has(gpucore.BufferUsageVertex) {
		out |= gputypes.BufferUsageVertex
	}
	if u.Has(gpucore.BufferUsageUniform) {
		out |= gputypes.BufferUsageUniform
	}
	return out
}

// align4 rounds n up to the copy alignment of WebGPU buffers.
func align4(n uint64) uint64 { return (n + 3) &^ 3 }

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if d.caps.MaxBufferSize > 0 && desc.Size > d.caps.MaxBufferSize {
		return gpucore.InvalidID, fmt.Errorf("wgpu: CreateBuffer %q (%d bytes): %w",
			desc.Label, desc.Size, gpucore.ErrBufferTooLarge)
	}
	// Readback and copies need both copy directions.
	usage := bufferUsage(desc.Usage) | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  max(align4(desc.Size), 4),
		Usage: usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create buffer %q: %w", desc.Label, err)
	}
	id := gpucore.BufferID(d.id())
	d.buffers[id] = &buffer{buf: buf, size: desc.Size}
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	d.device.DestroyBuffer(b.buf)
	delete(d.buffers, id)
}

func (d *Device) buffer(id gpucore.BufferID) (*buffer, error) {
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("wgpu: buffer %d: %w", id, gpucore.ErrUnknownResource)
	}
	return b, nil
}

// WriteBuffer implements gpucore.Device.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	b, err := d.buffer(id)
	if err != nil {
		return err
	}
	if offset+uint64(len(data)) > b.size {
		return fmt.Errorf("wgpu: write %d bytes at %d into %d-byte buffer: %w",
			len(data), offset, b.size, gpucore.ErrOutOfBounds)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.queue.WriteBuffer(b.buf, offset, data); err != nil {
		return fmt.Errorf("wgpu: write buffer: %w", err)
	}
	return nil
}

// CopyBuffer implements gpucore.Device. The copy is submitted and waited on.
func (d *Device) CopyBuffer(src, dst gpucore.BufferID, size uint64) error {
	s, err := d.buffer(src)
	if err != nil {
		return err
	}
	t, err := d.buffer(dst)
	if err != nil {
		return err
	}
	if size > s.size || size > t.size {
		return fmt.Errorf("wgpu: copy %d bytes (%d -> %d): %w", size, s.size, t.size, gpucore.ErrOutOfBounds)
	}
	if size == 0 {
		return nil
	}
	return d.submit("copy_buffer", func(enc hal.CommandEncoder) error {
		enc.CopyBufferToBuffer(s.buf, t.buf, []hal.BufferCopy{{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      align4(size),
		}})
		return nil
	})
}

// ReadBuffer implements gpucore.Device. It copies the range into a mappable
// staging buffer and waits for the queue.
func (d *Device) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	b, err := d.buffer(id)
	if err != nil {
		return nil, err
	}
	if offset+size > b.size {
		return nil, fmt.Errorf("wgpu: read %d bytes at %d from %d-byte buffer: %w",
			size, offset, b.size, gpucore.ErrOutOfBounds)
	}
	if size == 0 {
		return []byte{}, nil
	}
	// Copy offsets must be 4-byte aligned; read the enclosing aligned range.
	start := offset &^ 3
	span := align4(offset+size) - start
	return d.readback(span, func(enc hal.CommandEncoder, staging hal.Buffer) {
		enc.CopyBufferToBuffer(b.buf, staging, []hal.BufferCopy{{
			SrcOffset: start,
			DstOffset: 0,
			Size:      span,
		}})
	}, offset-start, size)
}

// readback records copy into a fresh staging buffer of span bytes, submits,
// waits and returns size bytes starting at skip.
func (d *Device) readback(span uint64, record func(hal.CommandEncoder, hal.Buffer), skip, size uint64) ([]byte, error) {
	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "debugdraw_staging",
		Size:  span,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	err = d.submit("readback", func(enc hal.CommandEncoder) error {
		record(enc, staging)
		return nil
	})
	if err != nil {
		return nil, err
	}

	mapping, err := d.device.MapBuffer(staging, 0, span)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), span)[skip:skip+size])
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return out, nil
}

// submit encodes one command buffer, submits it and waits for the device
// to go idle.
func (d *Device) submit(label string, record func(hal.CommandEncoder) error) error {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	if err := record(enc); err != nil {
		enc.DiscardEncoding()
		return err
	}
	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	return nil
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("wgpu: texture %q has size %dx%d: %w",
			desc.Label, desc.Width, desc.Height, gpucore.ErrOutOfBounds)
	}
	w, h := uint32(desc.Width), uint32(desc.Height) //nolint:gosec // checked positive above
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return gpucore.InvalidID, fmt.Errorf("wgpu: create texture view %q: %w", desc.Label, err)
	}
	id := gpucore.TextureID(d.id())
	d.textures[id] = &texture{tex: tex, view: view, width: w, height: h}
	return id, nil
}

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("wgpu: texture %d: %w", id, gpucore.ErrUnknownResource)
	}
	want := int(t.width) * int(t.height) * 4
	if len(data) != want {
		return fmt.Errorf("wgpu: texture upload of %d bytes, want %d: %w", len(data), want, gpucore.ErrOutOfBounds)
	}
	err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: t.width * 4, RowsPerImage: t.height},
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("wgpu: write texture: %w", err)
	}
	return nil
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.tex)
	delete(d.textures, id)
}

// CreateSampler implements gpucore.Device.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	filter := gputypes.FilterModeNearest
	if desc.Filter == gpucore.FilterLinear {
		filter = gputypes.FilterModeLinear
	}
	wrap := gputypes.AddressModeClampToEdge
	if desc.Wrap == gpucore.WrapRepeat {
		wrap = gputypes.AddressModeRepeat
	}
	s, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: wrap,
		AddressModeV: wrap,
		AddressModeW: wrap,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("wgpu: create sampler %q: %w", desc.Label, err)
	}
	id := gpucore.SamplerID(d.id())
	d.samplers[id] = s
	return id, nil
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	s, ok := d.samplers[id]
	if !ok {
		return
	}
	d.device.DestroySampler(s)
	delete(d.samplers, id)
}

// Destroy releases every resource still owned by the device, including the
// offscreen target. Borrowed HAL devices are left alive; devices opened by
// NewStandalone are closed.
func (d *Device) Destroy() {
	for id := range d.programs {
		d.DestroyProgram(id)
	}
	for id := range d.buffers {
		d.DestroyBuffer(id)
	}
	for id := range d.textures {
		d.DestroyTexture(id)
	}
	for id := range d.samplers {
		d.DestroySampler(id)
	}
	d.releaseTarget()
	d.closeStandalone()
}
