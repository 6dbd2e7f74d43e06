package gpucore

import (
	"encoding/binary"
	"math"
)

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.
// IDs are uint64 to accommodate various backend handle sizes.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// SamplerID is an opaque handle to a texture sampler.
type SamplerID uint64

// ProgramID is an opaque handle to a linked shader program together with
// its fixed-function render state.
type ProgramID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageCopySrc indicates the buffer can be used as a copy source.
	BufferUsageCopySrc BufferUsage = 1 << 0

	// BufferUsageCopyDst indicates the buffer can be used as a copy destination.
	BufferUsageCopyDst BufferUsage = 1 << 1

	// BufferUsageIndex indicates the buffer can be used as an index buffer.
	BufferUsageIndex BufferUsage = 1 << 2

	// BufferUsageVertex indicates the buffer can be used as a vertex buffer.
	BufferUsageVertex BufferUsage = 1 << 3

	// BufferUsageUniform indicates the buffer can be used as a uniform buffer.
	BufferUsageUniform BufferUsage = 1 << 4
)

// Has reports whether all flags in f are set.
func (u BufferUsage) Has(f BufferUsage) bool { return u&f == f }

// ShaderModel identifies a shading-language tier accepted by a device.
type ShaderModel uint32

// Shader models, ordered from least to most capable within a family.
const (
	// ShaderModelUnsupported means the device accepts no known tier.
	ShaderModelUnsupported ShaderModel = iota

	// ShaderModelGLSL120 is GLSL 1.20 (OpenGL 2.1).
	ShaderModelGLSL120

	// ShaderModelGLSL150 is GLSL 1.50 (OpenGL 3.2 core).
	ShaderModelGLSL150

	// ShaderModelWGSL is the WebGPU shading language.
	ShaderModelWGSL
)

// String returns the tier name.
func (m ShaderModel) String() string {
	switch m {
	case ShaderModelGLSL120:
		return "glsl120"
	case ShaderModelGLSL150:
		return "glsl150"
	case ShaderModelWGSL:
		return "wgsl"
	default:
		return "unsupported"
	}
}

// Supports reports whether a device at tier m can run programs written for
// tier other. GLSL tiers are backward compatible within the GLSL family;
// WGSL only accepts WGSL.
func (m ShaderModel) Supports(other ShaderModel) bool {
	switch m {
	case ShaderModelGLSL150:
		return other == ShaderModelGLSL120 || other == ShaderModelGLSL150
	case ShaderModelGLSL120:
		return other == ShaderModelGLSL120
	case ShaderModelWGSL:
		return other == ShaderModelWGSL
	default:
		return false
	}
}

// Capabilities describes what a device can do.
type Capabilities struct {
	// ShaderModel is the most capable tier the device accepts.
	ShaderModel ShaderModel

	// MaxBufferSize is the largest buffer the device can allocate in bytes.
	// Zero means unlimited.
	MaxBufferSize uint64

	// Backend is a short human-readable backend name.
	Backend string
}

// Topology is the primitive assembly mode of a draw.
type Topology uint32

// Topologies.
const (
	TopologyTriangleList Topology = iota
	TopologyLineList
)

// VertexFormat is the type of a single vertex attribute.
type VertexFormat uint32

// Vertex formats.
const (
	VertexFormatFloat32x2 VertexFormat = iota + 1
	VertexFormatFloat32x3
	VertexFormatFloat32x4
	VertexFormatUint32
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() int {
	switch f {
	case VertexFormatFloat32x2:
		return 8
	case VertexFormatFloat32x3:
		return 12
	case VertexFormatFloat32x4:
		return 16
	case VertexFormatUint32:
		return 4
	default:
		return 0
	}
}

// Components returns the number of scalar components.
func (f VertexFormat) Components() int {
	switch f {
	case VertexFormatFloat32x2:
		return 2
	case VertexFormatFloat32x3:
		return 3
	case VertexFormatFloat32x4:
		return 4
	case VertexFormatUint32:
		return 1
	default:
		return 0
	}
}

// VertexAttribute describes one attribute of an interleaved vertex.
type VertexAttribute struct {
	// Name is the attribute name in GLSL sources.
	Name string

	// Location is the shader location (WGSL @location, GLSL bind location).
	Location uint32

	// Format is the attribute type.
	Format VertexFormat

	// Offset is the byte offset within a vertex.
	Offset uint64
}

// VertexLayout describes an interleaved vertex buffer.
type VertexLayout struct {
	// Stride is the size of one vertex in bytes.
	Stride uint64

	// Attributes lists the vertex attributes.
	Attributes []VertexAttribute
}

// ProgramDesc describes a shader program and its render state.
type ProgramDesc struct {
	// Label is an optional debug label.
	Label string

	// Model is the tier the sources are written for.
	Model ShaderModel

	// VertexSource and FragmentSource hold the stage sources. For WGSL both
	// carry the same module with entry points vs_main and fs_main.
	VertexSource   string
	FragmentSource string

	// Layout is the vertex buffer layout.
	Layout VertexLayout

	// Topology is the primitive topology.
	Topology Topology

	// Blend enables straight-alpha blending (src_alpha, one_minus_src_alpha).
	Blend bool

	// DepthTest enables depth testing against the bound depth buffer.
	DepthTest bool

	// Textured reports whether the program samples a texture at binding 1/2
	// (u_tex_font in GLSL).
	Textured bool
}

// BufferDesc describes a buffer.
type BufferDesc struct {
	// Label is an optional debug label.
	Label string

	// Size is the buffer size in bytes.
	Size uint64

	// Usage is a bitmask of BufferUsage flags.
	Usage BufferUsage
}

// TextureDesc describes a 2D RGBA8 texture.
type TextureDesc struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the texture dimensions in pixels.
	Width, Height int
}

// FilterMode is a texture filter.
type FilterMode uint32

// Filter modes.
const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// WrapMode is a texture address mode.
type WrapMode uint32

// Wrap modes.
const (
	WrapClampToEdge WrapMode = iota
	WrapRepeat
)

// SamplerDesc describes a sampler.
type SamplerDesc struct {
	// Label is an optional debug label.
	Label string

	// Filter applies to both minification and magnification.
	Filter FilterMode

	// Wrap applies to all axes.
	Wrap WrapMode
}

// UniformsSize is the size of the packed uniform block in bytes:
// mat4x4 (64) + vec2 (8) + padding (8).
const UniformsSize = 80

// Uniforms is the per-draw uniform block shared by all debug programs.
type Uniforms struct {
	// ModelViewProjection is a column-major 4x4 matrix (u_model_view_proj).
	ModelViewProjection [16]float32

	// ScreenSize is the frame size in pixels (u_screen_size).
	ScreenSize [2]float32
}

// Bytes packs the uniform block in std140-compatible little-endian layout.
func (u *Uniforms) Bytes() []byte {
	buf := make([]byte, UniformsSize)
	for i, f := range u.ModelViewProjection {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	binary.LittleEndian.PutUint32(buf[64:], math.Float32bits(u.ScreenSize[0]))
	binary.LittleEndian.PutUint32(buf[68:], math.Float32bits(u.ScreenSize[1]))
	return buf
}

// DrawCommand describes a single draw call.
type DrawCommand struct {
	// Program is the program to draw with.
	Program ProgramID

	// VertexBuffer holds interleaved vertices matching the program layout.
	VertexBuffer BufferID

	// IndexBuffer holds uint32 indices. InvalidID draws non-indexed.
	IndexBuffer BufferID

	// IndexCount is the number of indices to draw from offset 0.
	IndexCount uint32

	// VertexCount is the number of vertices for non-indexed draws.
	VertexCount uint32

	// Uniforms is the uniform block for this draw.
	Uniforms Uniforms

	// Texture and Sampler are bound for textured programs.
	Texture TextureID
	Sampler SamplerID
}

// Indexed reports whether the draw uses an index buffer.
func (c *DrawCommand) Indexed() bool { return c.IndexBuffer != InvalidID }
