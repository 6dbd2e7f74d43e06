package font

// Glyph locates one character inside the atlas and describes how to place
// it relative to the pen position. All values are in atlas pixels.
type Glyph struct {
	// X, Y is the top-left corner of the glyph in the atlas.
	X, Y int

	// Width, Height is the glyph rectangle size.
	Width, Height int

	// XOffset, YOffset shift the quad from the pen position.
	XOffset, YOffset int

	// XAdvance moves the pen after the glyph is drawn.
	XAdvance int
}

// Font is an immutable glyph catalog for one atlas texture.
type Font struct {
	name       string
	scaleW     int
	scaleH     int
	lineHeight int
	glyphs     map[rune]Glyph
}

// New creates a catalog for an atlas of scaleW x scaleH pixels.
// The glyph map is copied.
func New(scaleW, scaleH int, glyphs map[rune]Glyph) *Font {
	f := &Font{
		scaleW: scaleW,
		scaleH: scaleH,
		glyphs: make(map[rune]Glyph, len(glyphs)),
	}
	for r, g := range glyphs {
		f.glyphs[r] = g
		if g.Height+g.YOffset > f.lineHeight {
			f.lineHeight = g.Height + g.YOffset
		}
	}
	return f
}

// Lookup returns the glyph for r, or the zero Glyph if r is not in the catalog.
func (f *Font) Lookup(r rune) Glyph {
	return f.glyphs[r]
}

// Has reports whether r is in the catalog.
func (f *Font) Has(r rune) bool {
	_, ok := f.glyphs[r]
	return ok
}

// Len returns the number of glyphs.
func (f *Font) Len() int { return len(f.glyphs) }

// ScaleW returns the atlas width in pixels.
func (f *Font) ScaleW() int { return f.scaleW }

// ScaleH returns the atlas height in pixels.
func (f *Font) ScaleH() int { return f.scaleH }

// LineHeight returns the distance between baselines in pixels.
func (f *Font) LineHeight() int { return f.lineHeight }

// Name returns the face name, if known.
func (f *Font) Name() string { return f.name }

// Runes returns the catalog's runes in no particular order.
func (f *Font) Runes() []rune {
	out := make([]rune, 0, len(f.glyphs))
	for r := range f.glyphs {
		out = append(out, r)
	}
	return out
}
