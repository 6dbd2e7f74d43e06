package text

import (
	"testing"

	"github.com/gogpu/debugdraw/font"
)

// testFont has two glyphs in a 128x64 atlas.
func testFont() *font.Font {
	return font.New(128, 64, map[rune]font.Glyph{
		'A':      {X: 10, Y: 20, Width: 8, Height: 12, XOffset: 1, YOffset: 2, XAdvance: 9},
		'B':      {X: 20, Y: 20, Width: 7, Height: 12, XOffset: 0, YOffset: 2, XAdvance: 8},
		'\u00e9': {X: 30, Y: 20, Width: 7, Height: 14, XOffset: 0, YOffset: 0, XAdvance: 8},
	})
}

var white = [4]float32{1, 1, 1, 1}

func equalIndices(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDrawTextAtPositionSingleGlyph(t *testing.T) {
	b := NewBatch(testFont())
	b.DrawTextAtPosition("A", [3]float32{1, 2, 3}, white)

	vs := b.Vertices()
	if len(vs) != 4 {
		t.Fatalf("len(Vertices()) = %d, want 4", len(vs))
	}
	want := []struct {
		pos, uv [2]float32
	}{
		{[2]float32{1, 2}, [2]float32{10.0 / 128, 20.0 / 64}},  // top left
		{[2]float32{1, 14}, [2]float32{10.0 / 128, 32.0 / 64}}, // bottom left
		{[2]float32{9, 14}, [2]float32{18.0 / 128, 32.0 / 64}}, // bottom right
		{[2]float32{9, 2}, [2]float32{18.0 / 128, 20.0 / 64}},  // top right
	}
	for i, w := range want {
		v := vs[i]
		if v.Position != w.pos {
			t.Errorf("vertex %d Position = %v, want %v", i, v.Position, w.pos)
		}
		if v.TexCoords != w.uv {
			t.Errorf("vertex %d TexCoords = %v, want %v", i, v.TexCoords, w.uv)
		}
		if v.WorldPosition != [3]float32{1, 2, 3} {
			t.Errorf("vertex %d WorldPosition = %v, want [1 2 3]", i, v.WorldPosition)
		}
		if v.ScreenRelative != 0 {
			t.Errorf("vertex %d ScreenRelative = %d, want 0", i, v.ScreenRelative)
		}
		if v.Color != white {
			t.Errorf("vertex %d Color = %v, want %v", i, v.Color, white)
		}
	}
	if got := b.Indices(); !equalIndices(got, []uint32{0, 1, 3, 3, 1, 2}) {
		t.Errorf("Indices() = %v, want [0 1 3 3 1 2]", got)
	}
}

func TestDrawTextOnScreenTwoCalls(t *testing.T) {
	b := NewBatch(testFont())
	red := [4]float32{1, 0, 0, 1}
	b.DrawTextOnScreen("A", [2]int32{10, 20}, red)
	b.DrawTextOnScreen("B", [2]int32{0, 0}, white)

	if len(b.Vertices()) != 8 || len(b.Indices()) != 12 {
		t.Fatalf("got %d vertices, %d indices, want 8, 12", len(b.Vertices()), len(b.Indices()))
	}
	if got := b.Indices()[6:]; !equalIndices(got, []uint32{4, 5, 7, 7, 5, 6}) {
		t.Errorf("second quad indices = %v, want [4 5 7 7 5 6]", got)
	}
	for i, v := range b.Vertices() {
		if v.ScreenRelative != 1 {
			t.Errorf("vertex %d ScreenRelative = %d, want 1", i, v.ScreenRelative)
		}
		if v.WorldPosition != ([3]float32{}) {
			t.Errorf("vertex %d WorldPosition = %v, want zero", i, v.WorldPosition)
		}
	}
	if got := b.Vertices()[0].Position; got != [2]float32{11, 22} {
		t.Errorf("first quad top-left = %v, want [11 22]", got)
	}
	if got := b.Vertices()[0].Color; got != red {
		t.Errorf("first quad color = %v, want %v", got, red)
	}
	if got := b.Vertices()[4].Position; got != [2]float32{0, 2} {
		t.Errorf("second quad top-left = %v, want [0 2]", got)
	}
}

func TestCursorAdvances(t *testing.T) {
	b := NewBatch(testFont())
	b.DrawTextOnScreen("AB", [2]int32{100, 50}, white)
	vs := b.Vertices()
	// A: x = 100 + 1; B starts at 100 + 9 (A's advance) + 0.
	if vs[0].Position[0] != 101 || vs[4].Position[0] != 109 {
		t.Errorf("quad x = %v, %v, want 101, 109", vs[0].Position[0], vs[4].Position[0])
	}
	// y stays on the same line.
	if vs[0].Position[1] != vs[4].Position[1] {
		t.Errorf("quad y = %v, %v, want equal", vs[0].Position[1], vs[4].Position[1])
	}
}

func TestQuadCountPerRune(t *testing.T) {
	tests := []string{"", "A", "ABBA", "A?B", "???", "héllo"}
	for _, s := range tests {
		b := NewBatch(testFont())
		b.DrawTextAtPosition(s, [3]float32{}, white)
		n := len([]rune(s))
		if len(b.Vertices()) != 4*n || len(b.Indices()) != 6*n {
			t.Errorf("%q: %d vertices, %d indices, want %d, %d", s, len(b.Vertices()), len(b.Indices()), 4*n, 6*n)
		}
		if b.Len() != n {
			t.Errorf("%q: Len() = %d, want %d", s, b.Len(), n)
		}
		for i, idx := range b.Indices() {
			if int(idx) >= len(b.Vertices()) {
				t.Errorf("%q: index %d = %d out of range", s, i, idx)
			}
		}
	}
}

func TestMissingGlyphIsDegenerate(t *testing.T) {
	b := NewBatch(testFont())
	b.DrawTextOnScreen("?A", [2]int32{5, 5}, white)
	vs := b.Vertices()
	for i := 0; i < 4; i++ {
		if vs[i].Position != [2]float32{5, 5} || vs[i].TexCoords != ([2]float32{}) {
			t.Errorf("missing glyph vertex %d = %+v, want degenerate at cursor", i, vs[i])
		}
	}
	// Zero advance: A is placed as if the missing rune were absent.
	if got := vs[4].Position; got != [2]float32{6, 7} {
		t.Errorf("A top-left = %v, want [6 7]", got)
	}
}

func TestNormalize(t *testing.T) {
	decomposed := "e\u0301"
	b := NewBatch(testFont())
	b.DrawTextOnScreen(decomposed, [2]int32{}, white)
	if b.Len() != 2 {
		t.Errorf("unnormalized Len() = %d, want 2", b.Len())
	}

	b = NewBatch(testFont())
	b.SetNormalize(true)
	b.DrawTextOnScreen(decomposed, [2]int32{}, white)
	if b.Len() != 1 {
		t.Fatalf("normalized Len() = %d, want 1", b.Len())
	}
	if got := b.Vertices()[2].Position; got != [2]float32{7, 14} {
		t.Errorf("é bottom-right = %v, want [7 14]", got)
	}
}

func TestReset(t *testing.T) {
	b := NewBatch(testFont())
	b.DrawTextOnScreen("AB", [2]int32{}, white)
	b.Reset()
	if b.Len() != 0 || len(b.Indices()) != 0 {
		t.Error("Reset() left geometry behind")
	}
	b.DrawTextOnScreen("A", [2]int32{}, white)
	if got := b.Indices(); !equalIndices(got, []uint32{0, 1, 3, 3, 1, 2}) {
		t.Errorf("indices after Reset = %v, want base 0", got)
	}
}
