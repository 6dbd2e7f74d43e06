// Package line batches and renders debug line segments in world space.
//
// Each segment contributes two vertices to a line-list draw. Like the text
// renderer, a frame's segments are uploaded once by Update and drawn with a
// single non-indexed draw call by Render, which then empties the batch.
package line

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/debugdraw/internal/dynbuf"
	"github.com/gogpu/debugdraw/shader"
)

// ErrNilDevice is returned when a renderer is created without a device.
var ErrNilDevice = errors.New("line: nil device")

// VertexStride is the size of an encoded Vertex in bytes.
const VertexStride = 28

// Vertex is one end of a line segment.
type Vertex struct {
	Position [3]float32
	Color    [4]float32
}

// Layout is the vertex buffer layout matching Vertex and the line shaders.
var Layout = gpucore.VertexLayout{
	Stride: VertexStride,
	Attributes: []gpucore.VertexAttribute{
		{Name: "position", Location: 0, Format: gpucore.VertexFormatFloat32x3, Offset: 0},
		{Name: "color", Location: 1, Format: gpucore.VertexFormatFloat32x4, Offset: 12},
	},
}

// EncodeVertices packs vertices as little-endian floats.
func EncodeVertices(vs []Vertex) []byte {
	out := make([]byte, len(vs)*VertexStride)
	for i, v := range vs {
		dst := out[i*VertexStride:]
		fs := [7]float32{v.Position[0], v.Position[1], v.Position[2], v.Color[0], v.Color[1], v.Color[2], v.Color[3]}
		for j, f := range fs {
			binary.LittleEndian.PutUint32(dst[j*4:], math.Float32bits(f))
		}
	}
	return out
}

// DecodeVertex reads a Vertex from src.
func DecodeVertex(src []byte) Vertex {
	f := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:])) }
	return Vertex{
		Position: [3]float32{f(0), f(1), f(2)},
		Color:    [4]float32{f(3), f(4), f(5), f(6)},
	}
}

// Config holds configuration for a line Renderer.
type Config struct {
	// Capabilities selects the shader tier. Zero value: queried from the device.
	Capabilities gpucore.Capabilities

	// InitialCapacity is the initial vertex capacity. Default: 1024
	InitialCapacity int

	// Variants overrides the shader table. Default: shader.Line()
	Variants shader.Set

	// DepthTest enables depth testing of segments.
	DepthTest bool
}

// Stats reports per-frame counters of a Renderer.
type Stats struct {
	Lines          int
	Draws, Frames  uint64
	VertexCapacity int
	Grows          int
	ShaderModel    gpucore.ShaderModel
}

// Renderer draws batched line segments.
type Renderer struct {
	device   gpucore.Device
	model    gpucore.ShaderModel
	program  gpucore.ProgramID
	buffer   *dynbuf.Buffer
	vertices []Vertex
	uniforms gpucore.Uniforms
	stats    Stats
}

// New creates a line renderer. Resources created before a failure are released.
func New(device gpucore.Device, cfg Config) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if cfg.Capabilities == (gpucore.Capabilities{}) {
		cfg.Capabilities = device.Capabilities()
	}
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = 1024
	}
	if cfg.Variants == nil {
		cfg.Variants = shader.Line()
	}

	tier, variant, err := cfg.Variants.Choose(cfg.Capabilities.ShaderModel)
	if err != nil {
		return nil, fmt.Errorf("line: %w", err)
	}
	r := &Renderer{
		device:   device,
		model:    tier,
		uniforms: gpucore.Uniforms{ModelViewProjection: debugdraw.Identity()},
	}
	r.stats.ShaderModel = tier

	r.program, err = device.CreateProgram(&gpucore.ProgramDesc{
		Label:          "debugdraw lines",
		Model:          tier,
		VertexSource:   variant.Vertex,
		FragmentSource: variant.Fragment,
		Layout:         Layout,
		Topology:       gpucore.TopologyLineList,
		Blend:          true,
		DepthTest:      cfg.DepthTest,
	})
	if err != nil {
		return nil, fmt.Errorf("line: create program: %w", err)
	}
	r.buffer, err = dynbuf.New(device, dynbuf.Desc{
		Label:    "debugdraw line vertices",
		Usage:    gpucore.BufferUsageVertex,
		Stride:   VertexStride,
		Capacity: cfg.InitialCapacity,
	})
	if err != nil {
		r.Destroy()
		return nil, fmt.Errorf("line: %w", err)
	}

	debugdraw.Logger().Debug("line: renderer created",
		"shader_model", tier,
		"capacity", cfg.InitialCapacity)
	return r, nil
}

// Resize updates the frame size uniform.
func (r *Renderer) Resize(width, height uint32) {
	r.uniforms.ScreenSize = [2]float32{float32(width), float32(height)}
}

// DrawLine queues a segment from start to end in world space.
func (r *Renderer) DrawLine(start, end [3]float32, color [4]float32) {
	r.vertices = append(r.vertices,
		Vertex{Position: start, Color: color},
		Vertex{Position: end, Color: color},
	)
}

// Len returns the number of queued segments.
func (r *Renderer) Len() int { return len(r.vertices) / 2 }

// Discard empties the batch without drawing.
func (r *Renderer) Discard() { r.vertices = r.vertices[:0] }

// Vertices returns the queued vertices. The slice is owned by the renderer.
func (r *Renderer) Vertices() []Vertex { return r.vertices }

// Update uploads the queued segments, growing the device buffer if needed.
func (r *Renderer) Update() error {
	if err := r.buffer.Write(EncodeVertices(r.vertices)); err != nil {
		return fmt.Errorf("line: update: %w", err)
	}
	return nil
}

// Render draws the segments uploaded by the last Update with the given
// column-major projection and empties the batch. Without an Update in the
// same frame it draws the previous upload.
func (r *Renderer) Render(projection [16]float32) error {
	defer r.Discard()

	r.uniforms.ModelViewProjection = projection
	r.stats.Frames++
	r.stats.Lines = r.Len()
	r.stats.VertexCapacity = r.buffer.Capacity()
	r.stats.Grows = r.buffer.Grows()
	n := r.buffer.Len()
	if n == 0 {
		return nil
	}
	err := r.device.Draw(&gpucore.DrawCommand{
		Program:      r.program,
		VertexBuffer: r.buffer.ID(),
		VertexCount:  uint32(n), //nolint:gosec // bounded by buffer capacity
		Uniforms:     r.uniforms,
	})
	if err != nil {
		return fmt.Errorf("line: draw: %w", err)
	}
	r.stats.Draws++
	return nil
}

// ShaderModel returns the selected shader tier.
func (r *Renderer) ShaderModel() gpucore.ShaderModel { return r.model }

// Stats returns the renderer counters.
func (r *Renderer) Stats() Stats { return r.stats }

// Destroy releases all device resources owned by the renderer.
func (r *Renderer) Destroy() {
	if r.buffer != nil {
		r.buffer.Destroy()
		r.buffer = nil
	}
	if r.program != gpucore.InvalidID {
		r.device.DestroyProgram(r.program)
		r.program = gpucore.InvalidID
	}
}
