// Package headless provides an in-memory gpucore.Device.
//
// The device keeps buffer and texture contents in byte slices, validates
// programs the way a driver would reject obviously broken sources, and
// records every draw together with the geometry it referenced. It is the
// device double used by the renderer tests and by tools that only need the
// generated geometry (for example golden-file dumps).
package headless

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/debugdraw/gpucore"
)

// Draw is a recorded draw call.
type Draw struct {
	// Command is a copy of the submitted command.
	Command gpucore.DrawCommand

	// Program is the descriptor the program was created with.
	Program gpucore.ProgramDesc

	// Indices are the indices consumed by an indexed draw.
	Indices []uint32

	// Vertices holds the vertex bytes referenced by the draw, from offset 0.
	Vertices []byte
}

// VertexCount returns the number of whole vertices in d.Vertices.
func (d *Draw) VertexCount() int {
	if d.Program.Layout.Stride == 0 {
		return 0
	}
	return len(d.Vertices) / int(d.Program.Layout.Stride)
}

type buffer struct {
	desc gpucore.BufferDesc
	data []byte
}

type texture struct {
	desc gpucore.TextureDesc
	data []byte
}

// Option configures a Device.
type Option func(*Device)

// WithShaderModel sets the tier reported by Capabilities.
// Default: gpucore.ShaderModelGLSL150.
func WithShaderModel(m gpucore.ShaderModel) Option {
	return func(d *Device) { d.caps.ShaderModel = m }
}

// WithMaxBufferSize limits buffer allocations. Zero means unlimited.
func WithMaxBufferSize(n uint64) Option {
	return func(d *Device) { d.caps.MaxBufferSize = n }
}

// Device is an in-memory gpucore.Device. It is not safe for concurrent use.
type Device struct {
	caps     gpucore.Capabilities
	nextID   uint64
	buffers  map[gpucore.BufferID]*buffer
	textures map[gpucore.TextureID]*texture
	samplers map[gpucore.SamplerID]gpucore.SamplerDesc
	programs map[gpucore.ProgramID]*gpucore.ProgramDesc
	draws    []Draw
	faults   map[string]error
	writes   int
	copies   int
}

var _ gpucore.Device = (*Device)(nil)

// New creates an empty device.
func New(opts ...Option) *Device {
	d := &Device{
		caps: gpucore.Capabilities{
			ShaderModel: gpucore.ShaderModelGLSL150,
			Backend:     "headless",
		},
		buffers:  make(map[gpucore.BufferID]*buffer),
		textures: make(map[gpucore.TextureID]*texture),
		samplers: make(map[gpucore.SamplerID]gpucore.SamplerDesc),
		programs: make(map[gpucore.ProgramID]*gpucore.ProgramDesc),
		faults:   make(map[string]error),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Operation names accepted by SetFault.
const (
	OpCreateProgram = "CreateProgram"
	OpCreateBuffer  = "CreateBuffer"
	OpWriteBuffer   = "WriteBuffer"
	OpCopyBuffer    = "CopyBuffer"
	OpReadBuffer    = "ReadBuffer"
	OpCreateTexture = "CreateTexture"
	OpCreateSampler = "CreateSampler"
	OpDraw          = "Draw"
)

// SetFault makes every subsequent call of op fail with err.
// A nil err clears the fault.
func (d *Device) SetFault(op string, err error) {
	if err == nil {
		delete(d.faults, op)
		return
	}
	d.faults[op] = err
}

func (d *Device) fault(op string) error {
	if err, ok := d.faults[op]; ok {
		return fmt.Errorf("headless: %s: %w", op, err)
	}
	return nil
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// Capabilities implements gpucore.Device.
func (d *Device) Capabilities() gpucore.Capabilities { return d.caps }

// CreateProgram implements gpucore.Device.
func (d *Device) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	if err := d.fault(OpCreateProgram); err != nil {
		return gpucore.InvalidID, err
	}
	if err := d.validateProgram(desc); err != nil {
		return gpucore.InvalidID, err
	}
	cp := *desc
	cp.Layout.Attributes = append([]gpucore.VertexAttribute(nil), desc.Layout.Attributes...)
	id := gpucore.ProgramID(d.id())
	d.programs[id] = &cp
	return id, nil
}

func (d *Device) validateProgram(desc *gpucore.ProgramDesc) error {
	fail := func(stage, format string, args ...any) error {
		return &gpucore.ShaderCompileError{
			Model: desc.Model,
			Stage: stage,
			Err:   fmt.Errorf(format, args...),
		}
	}
	if !d.caps.ShaderModel.Supports(desc.Model) {
		return fail(gpucore.StageModule, "tier %s not accepted by %s device", desc.Model, d.caps.ShaderModel)
	}
	switch desc.Model {
	case gpucore.ShaderModelWGSL:
		src := desc.VertexSource
		for _, entry := range []string{"fn vs_main", "fn fs_main"} {
			if !strings.Contains(src, entry) && !strings.Contains(desc.FragmentSource, entry) {
				return fail(gpucore.StageModule, "missing entry point %q", strings.TrimPrefix(entry, "fn "))
			}
		}
	case gpucore.ShaderModelGLSL120, gpucore.ShaderModelGLSL150:
		version := "#version 120"
		if desc.Model == gpucore.ShaderModelGLSL150 {
			version = "#version 150"
		}
		stages := []struct{ name, src string }{
			{gpucore.StageVertex, desc.VertexSource},
			{gpucore.StageFragment, desc.FragmentSource},
		}
		for _, s := range stages {
			src := strings.TrimSpace(s.src)
			if src == "" {
				return fail(s.name, "empty source")
			}
			if !strings.HasPrefix(src, version) {
				return fail(s.name, "expected %q directive", version)
			}
			if !strings.Contains(src, "void main") {
				return fail(s.name, "no main function")
			}
		}
	}
	if desc.Layout.Stride == 0 {
		return fail(gpucore.StageLink, "zero vertex stride")
	}
	for _, a := range desc.Layout.Attributes {
		if a.Offset+uint64(a.Format.Size()) > desc.Layout.Stride {
			return fail(gpucore.StageLink, "attribute %q overruns stride %d", a.Name, desc.Layout.Stride)
		}
	}
	return nil
}

// DestroyProgram implements gpucore.Device.
func (d *Device) DestroyProgram(id gpucore.ProgramID) { delete(d.programs, id) }

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if err := d.fault(OpCreateBuffer); err != nil {
		return gpucore.InvalidID, err
	}
	if d.caps.MaxBufferSize != 0 && desc.Size > d.caps.MaxBufferSize {
		return gpucore.InvalidID, fmt.Errorf("%w: %d > %d", gpucore.ErrBufferTooLarge, desc.Size, d.caps.MaxBufferSize)
	}
	id := gpucore.BufferID(d.id())
	d.buffers[id] = &buffer{desc: *desc, data: make([]byte, desc.Size)}
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) { delete(d.buffers, id) }

func (d *Device) buffer(id gpucore.BufferID) (*buffer, error) {
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: buffer %d", gpucore.ErrUnknownResource, id)
	}
	return b, nil
}

func checkRange(b *buffer, offset, size uint64) error {
	if offset+size > uint64(len(b.data)) {
		return fmt.Errorf("%w: [%d, %d) of %d-byte buffer %q",
			gpucore.ErrOutOfBounds, offset, offset+size, len(b.data), b.desc.Label)
	}
	return nil
}

// WriteBuffer implements gpucore.Device.
func (d *Device) WriteBuffer(id gpucore.BufferID, offset uint64, data []byte) error {
	if err := d.fault(OpWriteBuffer); err != nil {
		return err
	}
	b, err := d.buffer(id)
	if err != nil {
		return err
	}
	if err := checkRange(b, offset, uint64(len(data))); err != nil {
		return err
	}
	copy(b.data[offset:], data)
	d.writes++
	return nil
}

// CopyBuffer implements gpucore.Device.
func (d *Device) CopyBuffer(src, dst gpucore.BufferID, size uint64) error {
	if err := d.fault(OpCopyBuffer); err != nil {
		return err
	}
	s, err := d.buffer(src)
	if err != nil {
		return err
	}
	t, err := d.buffer(dst)
	if err != nil {
		return err
	}
	if err := checkRange(s, 0, size); err != nil {
		return err
	}
	if err := checkRange(t, 0, size); err != nil {
		return err
	}
	copy(t.data[:size], s.data[:size])
	d.copies++
	return nil
}

// ReadBuffer implements gpucore.Device.
func (d *Device) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	if err := d.fault(OpReadBuffer); err != nil {
		return nil, err
	}
	b, err := d.buffer(id)
	if err != nil {
		return nil, err
	}
	if err := checkRange(b, offset, size); err != nil {
		return nil, err
	}
	return append([]byte(nil), b.data[offset:offset+size]...), nil
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if err := d.fault(OpCreateTexture); err != nil {
		return gpucore.InvalidID, err
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("headless: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	id := gpucore.TextureID(d.id())
	d.textures[id] = &texture{desc: *desc, data: make([]byte, desc.Width*desc.Height*4)}
	return id, nil
}

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, id)
	}
	if len(data) != len(t.data) {
		return fmt.Errorf("%w: %d bytes for %dx%d texture", gpucore.ErrOutOfBounds, len(data), t.desc.Width, t.desc.Height)
	}
	copy(t.data, data)
	return nil
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) { delete(d.textures, id) }

// CreateSampler implements gpucore.Device.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	if err := d.fault(OpCreateSampler); err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.SamplerID(d.id())
	d.samplers[id] = *desc
	return id, nil
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(id gpucore.SamplerID) { delete(d.samplers, id) }

// Draw implements gpucore.Device. The draw is validated against the bound
// resources and recorded.
func (d *Device) Draw(cmd *gpucore.DrawCommand) error {
	if err := d.fault(OpDraw); err != nil {
		return err
	}
	prog, ok := d.programs[cmd.Program]
	if !ok {
		return fmt.Errorf("%w: program %d", gpucore.ErrUnknownResource, cmd.Program)
	}
	vb, err := d.buffer(cmd.VertexBuffer)
	if err != nil {
		return err
	}
	if prog.Textured {
		if _, ok := d.textures[cmd.Texture]; !ok {
			return fmt.Errorf("%w: texture %d", gpucore.ErrUnknownResource, cmd.Texture)
		}
		if _, ok := d.samplers[cmd.Sampler]; !ok {
			return fmt.Errorf("%w: sampler %d", gpucore.ErrUnknownResource, cmd.Sampler)
		}
	}

	rec := Draw{Command: *cmd, Program: *prog}
	stride := prog.Layout.Stride
	vertexCount := uint64(cmd.VertexCount)
	if cmd.Indexed() {
		ib, err := d.buffer(cmd.IndexBuffer)
		if err != nil {
			return err
		}
		size := uint64(cmd.IndexCount) * 4
		if err := checkRange(ib, 0, size); err != nil {
			return err
		}
		rec.Indices = make([]uint32, cmd.IndexCount)
		vertexCount = 0
		for i := range rec.Indices {
			idx := binary.LittleEndian.Uint32(ib.data[i*4:])
			rec.Indices[i] = idx
			vertexCount = max(vertexCount, uint64(idx)+1)
		}
	}
	if err := checkRange(vb, 0, vertexCount*stride); err != nil {
		return err
	}
	rec.Vertices = append([]byte(nil), vb.data[:vertexCount*stride]...)
	d.draws = append(d.draws, rec)
	return nil
}

// Draws returns the recorded draws.
func (d *Device) Draws() []Draw {
	return append([]Draw(nil), d.draws...)
}

// ResetDraws forgets the recorded draws.
func (d *Device) ResetDraws() { d.draws = d.draws[:0] }

// LiveBuffers returns the number of buffers not yet destroyed.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// LiveTextures returns the number of textures not yet destroyed.
func (d *Device) LiveTextures() int { return len(d.textures) }

// LivePrograms returns the number of programs not yet destroyed.
func (d *Device) LivePrograms() int { return len(d.programs) }

// LiveSamplers returns the number of samplers not yet destroyed.
func (d *Device) LiveSamplers() int { return len(d.samplers) }

// BufferSize returns the allocated size of a buffer in bytes.
func (d *Device) BufferSize(id gpucore.BufferID) (uint64, bool) {
	b, ok := d.buffers[id]
	if !ok {
		return 0, false
	}
	return uint64(len(b.data)), true
}

// TextureData returns a copy of a texture's pixels.
func (d *Device) TextureData(id gpucore.TextureID) ([]byte, bool) {
	t, ok := d.textures[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), t.data...), true
}

// Writes returns the number of successful WriteBuffer calls.
func (d *Device) Writes() int { return d.writes }

// Copies returns the number of successful CopyBuffer calls.
func (d *Device) Copies() int { return d.copies }

// ErrInjected is a convenience error for SetFault in tests.
var ErrInjected = errors.New("headless: injected fault")
