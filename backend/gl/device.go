// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/gpucore"
)

// Backend is the name reported in gpucore.Capabilities.
const Backend = "gl"

// ErrGL wraps errors reported by glGetError.
var ErrGL = errors.New("gl: error")

type buffer struct {
	name uint32
	size uint64
}

type texture struct {
	name          uint32
	width, height int
}

type program struct {
	name      uint32
	desc      gpucore.ProgramDesc
	mvp       int32
	screen    int32
	fontUnit  int32
	primitive uint32
}

// Option configures a Device.
type Option func(*Device)

// WithShaderModel caps the tier reported by Capabilities, for example to
// run the GLSL 1.20 variants on a newer context.
func WithShaderModel(m gpucore.ShaderModel) Option {
	return func(d *Device) { d.override = m }
}

// WithMaxBufferSize limits buffer allocations. Zero means unlimited.
func WithMaxBufferSize(n uint64) Option {
	return func(d *Device) { d.caps.MaxBufferSize = n }
}

// Device is a gpucore.Device on the current OpenGL context.
type Device struct {
	caps     gpucore.Capabilities
	override gpucore.ShaderModel
	version  string

	vao      uint32
	nextID   uint64
	buffers  map[gpucore.BufferID]*buffer
	textures map[gpucore.TextureID]*texture
	samplers map[gpucore.SamplerID]gpucore.SamplerDesc
	programs map[gpucore.ProgramID]*program
}

var _ gpucore.Device = (*Device)(nil)

// New loads the GL function pointers for the current context and queries
// its shading language version.
func New(opts ...Option) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl: init: %w", err)
	}
	d := &Device{
		caps:     gpucore.Capabilities{Backend: Backend},
		buffers:  make(map[gpucore.BufferID]*buffer),
		textures: make(map[gpucore.TextureID]*texture),
		samplers: make(map[gpucore.SamplerID]gpucore.SamplerDesc),
		programs: make(map[gpucore.ProgramID]*program),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.version = gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))
	major, minor, err := ParseGLSLVersion(d.version)
	if err != nil {
		return nil, err
	}
	d.caps.ShaderModel = ShaderModelFor(major, minor)
	if d.override != gpucore.ShaderModelUnsupported && d.caps.ShaderModel.Supports(d.override) {
		d.caps.ShaderModel = d.override
	}

	gl.GenVertexArrays(1, &d.vao)
	debugdraw.Logger().Debug("gl: device ready",
		"glsl", d.version,
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
		"shader_model", d.caps.ShaderModel.String())
	return d, checkError("init")
}

// GLSLVersion returns the GL_SHADING_LANGUAGE_VERSION string.
func (d *Device) GLSLVersion() string { return d.version }

// Capabilities implements gpucore.Device.
func (d *Device) Capabilities() gpucore.Capabilities { return d.caps }

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

func checkError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%w 0x%04x in %s", ErrGL, code, op)
	}
	return nil
}

// compileShader compiles one stage, returning the info log on failure.
func compileShader(shaderType uint32, source string) (uint32, string, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, strings.TrimRight(log, "\x00"), errors.New("compile failed")
	}
	return shader, "", nil
}

// CreateProgram implements gpucore.Device. Attribute locations are bound
// by name before linking so that they match the vertex layout.
func (d *Device) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	if !d.caps.ShaderModel.Supports(desc.Model) || desc.Model == gpucore.ShaderModelWGSL {
		return gpucore.InvalidID, &gpucore.ShaderCompileError{
			Model: desc.Model, Stage: gpucore.StageModule,
			Err: fmt.Errorf("device runs %s", d.caps.ShaderModel),
		}
	}

	vs, log, err := compileShader(gl.VERTEX_SHADER, desc.VertexSource)
	if err != nil {
		return gpucore.InvalidID, &gpucore.ShaderCompileError{Model: desc.Model, Stage: gpucore.StageVertex, Log: log, Err: err}
	}
	defer gl.DeleteShader(vs)
	fs, log, err := compileShader(gl.FRAGMENT_SHADER, desc.FragmentSource)
	if err != nil {
		return gpucore.InvalidID, &gpucore.ShaderCompileError{Model: desc.Model, Stage: gpucore.StageFragment, Log: log, Err: err}
	}
	defer gl.DeleteShader(fs)

	name := gl.CreateProgram()
	gl.AttachShader(name, vs)
	gl.AttachShader(name, fs)
	for _, a := range desc.Layout.Attributes {
		gl.BindAttribLocation(name, a.Location, gl.Str(a.Name+"\x00"))
	}
	if desc.Model == gpucore.ShaderModelGLSL150 {
		gl.BindFragDataLocation(name, 0, gl.Str("out_color\x00"))
	}
	gl.LinkProgram(name)

	var status int32
	gl.GetProgramiv(name, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(name, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(name, logLength, nil, gl.Str(log))
		gl.DeleteProgram(name)
		return gpucore.InvalidID, &gpucore.ShaderCompileError{
			Model: desc.Model, Stage: gpucore.StageLink,
			Log: strings.TrimRight(log, "\x00"), Err: errors.New("link failed"),
		}
	}

	p := &program{
		name:      name,
		desc:      *desc,
		mvp:       gl.GetUniformLocation(name, gl.Str("u_model_view_proj\x00")),
		screen:    gl.GetUniformLocation(name, gl.Str("u_screen_size\x00")),
		fontUnit:  gl.GetUniformLocation(name, gl.Str("u_tex_font\x00")),
		primitive: gl.TRIANGLES,
	}
	if desc.Topology == gpucore.TopologyLineList {
		p.primitive = gl.LINES
	}
	id := gpucore.ProgramID(d.id())
	d.programs[id] = p
	debugdraw.Logger().Debug("gl: program linked", "label", desc.Label, "model", desc.Model.String())
	return id, checkError("CreateProgram")
}

// DestroyProgram implements gpucore.Device.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	gl.DeleteProgram(p.name)
	delete(d.programs, id)
}

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if d.caps.MaxBufferSize > 0 && desc.Size > d.caps.MaxBufferSize {
		return gpucore.InvalidID, fmt.Errorf("gl: CreateBuffer %q (%d bytes): %w",
			desc.Label, desc.Size, gpucore.ErrBufferTooLarge)
	}
	b := &buffer{size: desc.Size}
	gl.GenBuffers(1, &b.name)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.name)
	gl.BufferData(gl.COPY_WRITE_BUFFER, int(desc.Size), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	if err := checkError("CreateBuffer"); err != nil {
		gl.DeleteBuffers(1, &b.name)
		return gpucore.InvalidID, err
	}
	id := gpucore.BufferID(d.id())
	d.buffers[id] = b
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	b, ok := d.buffers[id]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &b.name)
	delete(d.buffers, id)
}

func (d *Device) buffer(id gpucore.BufferID) (*buffer, error) {
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("gl: buffer %d: %w", id, gpucore.ErrUnknownResource)
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
		return fmt.Errorf("gl: write %d bytes at %d into %d-byte buffer: %w",
			len(data), offset, b.size, gpucore.ErrOutOfBounds)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.name)
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, int(offset), len(data), gl.Ptr(data))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return checkError("WriteBuffer")
}

// CopyBuffer implements gpucore.Device.
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
		return fmt.Errorf("gl: copy %d bytes (%d -> %d): %w", size, s.size, t.size, gpucore.ErrOutOfBounds)
	}
	if size == 0 {
		return nil
	}
	gl.BindBuffer(gl.COPY_READ_BUFFER, s.name)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, t.name)
	gl.CopyBufferSubData(gl.COPY_READ_BUFFER, gl.COPY_WRITE_BUFFER, 0, 0, int(size))
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return checkError("CopyBuffer")
}

// ReadBuffer implements gpucore.Device.
func (d *Device) ReadBuffer(id gpucore.BufferID, offset, size uint64) ([]byte, error) {
	b, err := d.buffer(id)
	if err != nil {
		return nil, err
	}
	if offset+size > b.size {
		return nil, fmt.Errorf("gl: read %d bytes at %d from %d-byte buffer: %w",
			size, offset, b.size, gpucore.ErrOutOfBounds)
	}
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}
	gl.BindBuffer(gl.COPY_READ_BUFFER, b.name)
	gl.GetBufferSubData(gl.COPY_READ_BUFFER, int(offset), int(size), gl.Ptr(out))
	gl.BindBuffer(gl.COPY_READ_BUFFER, 0)
	return out, checkError("ReadBuffer")
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return gpucore.InvalidID, fmt.Errorf("gl: texture %q has size %dx%d: %w",
			desc.Label, desc.Width, desc.Height, gpucore.ErrOutOfBounds)
	}
	t := &texture{width: desc.Width, height: desc.Height}
	gl.GenTextures(1, &t.name)
	gl.BindTexture(gl.TEXTURE_2D, t.name)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if err := checkError("CreateTexture"); err != nil {
		gl.DeleteTextures(1, &t.name)
		return gpucore.InvalidID, err
	}
	id := gpucore.TextureID(d.id())
	d.textures[id] = t
	return id, nil
}

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("gl: texture %d: %w", id, gpucore.ErrUnknownResource)
	}
	if want := t.width * t.height * 4; len(data) != want {
		return fmt.Errorf("gl: texture upload of %d bytes, want %d: %w", len(data), want, gpucore.ErrOutOfBounds)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.name)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.width), int32(t.height),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return checkError("WriteTexture")
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &t.name)
	delete(d.textures, id)
}

// CreateSampler implements gpucore.Device. Sampler state is applied to the
// texture at bind time, which also works on GLSL 1.20 contexts.
func (d *Device) CreateSampler(desc *gpucore.SamplerDesc) (gpucore.SamplerID, error) {
	id := gpucore.SamplerID(d.id())
	d.samplers[id] = *desc
	return id, nil
}

// DestroySampler implements gpucore.Device.
func (d *Device) DestroySampler(id gpucore.SamplerID) {
	delete(d.samplers, id)
}

// Destroy releases every resource still owned by the device.
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
	clear(d.samplers)
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}
