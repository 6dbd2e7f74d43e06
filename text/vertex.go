package text

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/debugdraw/gpucore"
)

// VertexStride is the size of an encoded Vertex in bytes.
const VertexStride = 48

// Vertex is one corner of a glyph quad.
//
// Encoded layout (little-endian):
//
//	offset  0: Position       f32x2
//	offset  8: TexCoords      f32x2
//	offset 16: WorldPosition  f32x3
//	offset 28: ScreenRelative u32
//	offset 32: Color          f32x4
type Vertex struct {
	// Position is the corner in pixels relative to the text origin (world
	// text) or to the top-left of the frame (screen text).
	Position [2]float32

	// TexCoords is the atlas coordinate in [0, 1].
	TexCoords [2]float32

	// WorldPosition is the anchor in world space; zero for screen text.
	WorldPosition [3]float32

	// ScreenRelative is 1 for screen-anchored text and 0 otherwise.
	ScreenRelative uint32

	// Color is the straight-alpha RGBA color.
	Color [4]float32
}

// Layout is the vertex buffer layout matching Vertex and the text shaders.
var Layout = gpucore.VertexLayout{
	Stride: VertexStride,
	Attributes: []gpucore.VertexAttribute{
		{Name: "position", Location: 0, Format: gpucore.VertexFormatFloat32x2, Offset: 0},
		{Name: "texcoords", Location: 1, Format: gpucore.VertexFormatFloat32x2, Offset: 8},
		{Name: "world_position", Location: 2, Format: gpucore.VertexFormatFloat32x3, Offset: 16},
		{Name: "screen_relative", Location: 3, Format: gpucore.VertexFormatUint32, Offset: 28},
		{Name: "color", Location: 4, Format: gpucore.VertexFormatFloat32x4, Offset: 32},
	},
}

func putFloats(dst []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
	}
}

// Put encodes v into dst, which must hold at least VertexStride bytes.
func (v *Vertex) Put(dst []byte) {
	putFloats(dst[0:], v.Position[0], v.Position[1])
	putFloats(dst[8:], v.TexCoords[0], v.TexCoords[1])
	putFloats(dst[16:], v.WorldPosition[0], v.WorldPosition[1], v.WorldPosition[2])
	binary.LittleEndian.PutUint32(dst[28:], v.ScreenRelative)
	putFloats(dst[32:], v.Color[0], v.Color[1], v.Color[2], v.Color[3])
}

// DecodeVertex reads a Vertex from src.
func DecodeVertex(src []byte) Vertex {
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(src[off:])) }
	return Vertex{
		Position:       [2]float32{f(0), f(4)},
		TexCoords:      [2]float32{f(8), f(12)},
		WorldPosition:  [3]float32{f(16), f(20), f(24)},
		ScreenRelative: binary.LittleEndian.Uint32(src[28:]),
		Color:          [4]float32{f(32), f(36), f(40), f(44)},
	}
}

// EncodeVertices packs vertices into a byte slice.
func EncodeVertices(vs []Vertex) []byte {
	out := make([]byte, len(vs)*VertexStride)
	for i := range vs {
		vs[i].Put(out[i*VertexStride:])
	}
	return out
}

// EncodeIndices packs indices as little-endian uint32.
func EncodeIndices(idx []uint32) []byte {
	out := make([]byte, len(idx)*4)
	for i, v := range idx {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}
