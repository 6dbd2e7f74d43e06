package text

import (
	"encoding/binary"
	"testing"
)

func TestVertexLayoutMatchesEncoding(t *testing.T) {
	end := uint64(0)
	for _, a := range Layout.Attributes {
		if a.Offset < end {
			t.Errorf("attribute %s overlaps previous", a.Name)
		}
		end = a.Offset + uint64(a.Format.Size())
	}
	if end != VertexStride || Layout.Stride != VertexStride {
		t.Errorf("layout ends at %d with stride %d, want %d", end, Layout.Stride, VertexStride)
	}
}

func TestVertexPutDecode(t *testing.T) {
	v := Vertex{
		Position:       [2]float32{1, 2},
		TexCoords:      [2]float32{0.25, 0.5},
		WorldPosition:  [3]float32{-1, 0, 7},
		ScreenRelative: 1,
		Color:          [4]float32{0.1, 0.2, 0.3, 0.4},
	}
	buf := EncodeVertices([]Vertex{v, v})
	if len(buf) != 2*VertexStride {
		t.Fatalf("len = %d, want %d", len(buf), 2*VertexStride)
	}
	if got := binary.LittleEndian.Uint32(buf[VertexStride+28:]); got != 1 {
		t.Errorf("screen_relative at offset 28 = %d, want 1", got)
	}
	if got := DecodeVertex(buf[VertexStride:]); got != v {
		t.Errorf("DecodeVertex() = %+v, want %+v", got, v)
	}
}

func TestEncodeIndices(t *testing.T) {
	buf := EncodeIndices([]uint32{0, 1, 3, 0x01020304})
	if len(buf) != 16 {
		t.Fatalf("len = %d, want 16", len(buf))
	}
	if buf[12] != 0x04 || buf[15] != 0x01 {
		t.Errorf("index encoding is not little-endian: % x", buf[12:])
	}
}
