package text

import (
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/debugdraw/font"
)

// Quad index pattern relative to the quad's first vertex: top-left
// triangle then bottom-right triangle, both counter-clockwise.
var quadIndices = [6]uint32{0, 1, 3, 3, 1, 2}

// Batch accumulates glyph quads for one frame.
type Batch struct {
	font      *font.Font
	normalize bool
	vertices  []Vertex
	indices   []uint32
}

// NewBatch creates an empty batch laying out text with f.
func NewBatch(f *font.Font) *Batch {
	return &Batch{font: f}
}

// SetNormalize enables NFC normalization of strings before layout, so
// decomposed sequences find their precomposed glyphs.
func (b *Batch) SetNormalize(on bool) { b.normalize = on }

// DrawTextAtPosition queues text anchored at a world-space point. Glyphs are
// laid out from a cursor at (0, 0) pixels relative to the projected anchor.
func (b *Batch) DrawTextAtPosition(s string, world [3]float32, color [4]float32) {
	b.add(s, [2]int32{0, 0}, world, 0, color)
}

// DrawTextOnScreen queues text at a pixel position, top-left origin.
func (b *Batch) DrawTextOnScreen(s string, screen [2]int32, color [4]float32) {
	b.add(s, screen, [3]float32{}, 1, color)
}

func (b *Batch) add(s string, cursor [2]int32, world [3]float32, screenRelative uint32, color [4]float32) {
	if b.normalize {
		s = norm.NFC.String(s)
	}
	scaleW := float32(b.font.ScaleW())
	scaleH := float32(b.font.ScaleH())
	x, y := cursor[0], cursor[1]

	for _, r := range s {
		g := b.font.Lookup(r)
		base := uint32(len(b.vertices))

		x0 := float32(x + int32(g.XOffset))
		y0 := float32(y + int32(g.YOffset))
		x1 := x0 + float32(g.Width)
		y1 := y0 + float32(g.Height)
		u0 := float32(g.X) / scaleW
		v0 := float32(g.Y) / scaleH
		u1 := float32(g.X+g.Width) / scaleW
		v1 := float32(g.Y+g.Height) / scaleH

		corner := func(px, py, u, v float32) Vertex {
			return Vertex{
				Position:       [2]float32{px, py},
				TexCoords:      [2]float32{u, v},
				WorldPosition:  world,
				ScreenRelative: screenRelative,
				Color:          color,
			}
		}
		b.vertices = append(b.vertices,
			corner(x0, y0, u0, v0), // top left
			corner(x0, y1, u0, v1), // bottom left
			corner(x1, y1, u1, v1), // bottom right
			corner(x1, y0, u1, v0), // top right
		)
		for _, i := range quadIndices {
			b.indices = append(b.indices, base+i)
		}

		x += int32(g.XAdvance)
	}
}

// Vertices returns the queued vertices. The slice is owned by the batch.
func (b *Batch) Vertices() []Vertex { return b.vertices }

// Indices returns the queued indices. The slice is owned by the batch.
func (b *Batch) Indices() []uint32 { return b.indices }

// Len returns the number of queued quads.
func (b *Batch) Len() int { return len(b.vertices) / 4 }

// Reset empties the batch, keeping its storage.
func (b *Batch) Reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
}
