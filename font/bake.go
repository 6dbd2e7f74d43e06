package font

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"tinygo.org/x/tinyfont"
)

// glyphPadding separates atlas cells so nearest sampling never bleeds.
const glyphPadding = 1

// grid lays out n cells of cellW x cellH in a roughly square atlas.
type grid struct {
	cols, cellW, cellH int
}

func newGrid(n, cellW, cellH int) grid {
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	if cols < 1 {
		cols = 1
	}
	return grid{cols: cols, cellW: cellW + glyphPadding, cellH: cellH + glyphPadding}
}

func (g grid) cell(i int) image.Point {
	return image.Pt((i%g.cols)*g.cellW, (i/g.cols)*g.cellH)
}

func (g grid) size(n int) (w, h int) {
	rows := (n + g.cols - 1) / g.cols
	return g.cols * g.cellW, rows * g.cellH
}

func uniqueRunes(runes []rune) []rune {
	seen := make(map[rune]bool, len(runes))
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

// faceCovers reports whether r is in one of the face's ranges. The face
// itself falls back to U+FFFD for unknown runes, which must not be baked
// under the requested rune.
func faceCovers(face *basicfont.Face, r rune) bool {
	for _, rng := range face.Ranges {
		if rng.Low <= r && r < rng.High {
			return true
		}
	}
	return false
}

// BakeFace copies the pre-rendered glyph masks of an x/image bitmap face
// into a new atlas. Runes the face does not cover are skipped.
func BakeFace(face *basicfont.Face, runes []rune) (*Font, *image.NRGBA) {
	covered := make([]rune, 0, len(runes))
	for _, r := range uniqueRunes(runes) {
		if faceCovers(face, r) {
			covered = append(covered, r)
		}
	}

	lineHeight := face.Ascent + face.Descent
	g := newGrid(len(covered), face.Width, lineHeight)
	w, h := g.size(len(covered))
	atlas := image.NewNRGBA(image.Rect(0, 0, w, h))

	glyphs := make(map[rune]Glyph, len(covered))
	dot := fixed.P(0, face.Ascent)
	for i, r := range covered {
		dr, mask, maskp, advance, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		at := g.cell(i)
		dst := image.Rectangle{Min: at, Max: at.Add(dr.Size())}
		draw.DrawMask(atlas, dst, image.White, image.Point{}, mask, maskp, draw.Src)
		glyphs[r] = Glyph{
			X: at.X, Y: at.Y,
			Width: dr.Dx(), Height: dr.Dy(),
			XOffset: dr.Min.X, YOffset: dr.Min.Y,
			XAdvance: advance.Round(),
		}
	}

	f := New(w, h, glyphs)
	f.lineHeight = lineHeight
	return f, atlas
}

// Default bakes printable ASCII (U+0020..U+007E) from basicfont.Face7x13.
// It is used when the renderer is not given a font.
func Default() (*Font, *image.NRGBA) {
	runes := make([]rune, 0, 0x7f-0x20)
	for r := rune(0x20); r < 0x7f; r++ {
		runes = append(runes, r)
	}
	f, atlas := BakeFace(basicfont.Face7x13, runes)
	f.name = "basicfont 7x13"
	return f, atlas
}

// atlasDisplay adapts an NRGBA atlas to the drivers.Displayer interface so
// tinyfont glyphs can draw into it. Pixels outside the atlas are dropped.
type atlasDisplay struct {
	img *image.NRGBA
}

func (d atlasDisplay) Size() (x, y int16) {
	b := d.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (d atlasDisplay) SetPixel(x, y int16, c color.RGBA) {
	p := image.Pt(int(x), int(y))
	if !p.In(d.img.Bounds()) {
		return
	}
	d.img.SetNRGBA(p.X, p.Y, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: c.A})
}

func (d atlasDisplay) Display() error { return nil }

// BakeTinyFont draws tinyfont bitmap glyphs into a new atlas. Glyph offsets
// in tinyfont are relative to the baseline; they are rebased so YOffset is
// measured from the top of the line as in BMFont.
func BakeTinyFont(f tinyfont.Fonter, runes []rune) (*Font, *image.NRGBA) {
	runes = uniqueRunes(runes)
	infos := make([]tinyfont.GlyphInfo, len(runes))
	var maxW, maxH, ascent int
	for i, r := range runes {
		info := f.GetGlyph(r).Info()
		infos[i] = info
		maxW = max(maxW, int(info.Width))
		maxH = max(maxH, int(info.Height))
		ascent = max(ascent, -int(info.YOffset))
	}

	g := newGrid(len(runes), maxW, maxH)
	w, h := g.size(len(runes))
	atlas := image.NewNRGBA(image.Rect(0, 0, w, h))
	disp := atlasDisplay{img: atlas}

	glyphs := make(map[rune]Glyph, len(runes))
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	for i, r := range runes {
		info := infos[i]
		at := g.cell(i)
		// Draw places the bitmap at (x+XOffset, y+YOffset); shift so it lands on the cell.
		x := int16(at.X) - int16(info.XOffset)
		y := int16(at.Y) - int16(info.YOffset)
		f.GetGlyph(r).Draw(disp, x, y, white)
		glyphs[r] = Glyph{
			X: at.X, Y: at.Y,
			Width: int(info.Width), Height: int(info.Height),
			XOffset: int(info.XOffset), YOffset: ascent + int(info.YOffset),
			XAdvance: int(info.XAdvance),
		}
	}

	out := New(w, h, glyphs)
	out.lineHeight = int(f.GetYAdvance())
	return out, atlas
}
