package font

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Kerning is a pair adjustment from a BMFont descriptor.
type Kerning struct {
	First, Second rune
	Amount        int
}

// Descriptor is a parsed AngelCode BMFont file.
type Descriptor struct {
	Face       string
	Size       int
	LineHeight int

	// Base is the distance from the top of a line to the baseline. The
	// renderer places glyphs from the top of the line and does not use it;
	// it is kept for callers aligning text to a baseline.
	Base int

	ScaleW int
	ScaleH int

	// Pages lists atlas image files by page id.
	Pages []string

	// Chars holds glyphs of page 0. Glyphs on other pages are dropped
	// because the renderer binds a single atlas.
	Chars map[rune]Glyph

	// Kernings lists the pair adjustments in file order. Glyphs are laid
	// out with XAdvance only, so the renderer ignores them; callers that
	// measure or lay out text themselves can apply them.
	Kernings []Kerning
}

// Font builds the glyph catalog.
func (d *Descriptor) Font() *Font {
	f := New(d.ScaleW, d.ScaleH, d.Chars)
	f.name = d.Face
	if d.LineHeight > 0 {
		f.lineHeight = d.LineHeight
	}
	return f
}

func (d *Descriptor) validate() error {
	if len(d.Chars) == 0 {
		return ErrNoGlyphs
	}
	if d.ScaleW <= 0 || d.ScaleH <= 0 {
		return fmt.Errorf("font: invalid atlas size %dx%d", d.ScaleW, d.ScaleH)
	}
	return nil
}

// Load reads a BMFont descriptor from disk, detecting the XML and text formats.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: read descriptor: %w", err)
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n\uFEFF")
	switch {
	case len(trimmed) == 0:
		return nil, ErrEmptyDescriptor
	case bytes.HasPrefix(trimmed, []byte("BMF")):
		return nil, ErrBinaryDescriptor
	case trimmed[0] == '<':
		return ParseXML(bytes.NewReader(trimmed))
	default:
		return ParseText(bytes.NewReader(trimmed))
	}
}

// ParseText parses the BMFont text format. Each line is a tag followed by
// key=value pairs; quoted values may contain spaces.
func ParseText(r io.Reader) (*Descriptor, error) {
	d := &Descriptor{Chars: make(map[rune]Glyph)}
	sc := bufio.NewScanner(r)
	lineNo := 0
	empty := true
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		empty = false
		words, err := shellwords.Parse(dropLetter(line))
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
		if len(words) == 0 {
			continue
		}
		attrs, err := splitAttrs(words[1:])
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
		if err := d.applyTag(words[0], attrs); err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("font: read descriptor: %w", err)
	}
	if empty {
		return nil, ErrEmptyDescriptor
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

var (
	letterAttr = regexp.MustCompile(`\sletter=`)
	nextAttr   = regexp.MustCompile(`\s+[A-Za-z]+=`)
)

// dropLetter removes the letter= attribute some generators add to char
// lines. Its value is the glyph itself, unescaped, so `letter="\"` and
// `letter="""` are not valid quoted words.
func dropLetter(line string) string {
	loc := letterAttr.FindStringIndex(line)
	if loc == nil {
		return line
	}
	start, value := loc[0], loc[1]
	end := len(line)
	if value+1 < len(line) {
		// The value holds at least one character, which may itself be a space.
		if m := nextAttr.FindStringIndex(line[value+1:]); m != nil {
			end = value + 1 + m[0]
		}
	}
	return line[:start] + line[end:]
}

type attrs map[string]string

func splitAttrs(words []string) (attrs, error) {
	a := make(attrs, len(words))
	for _, w := range words {
		k, v, ok := strings.Cut(w, "=")
		if !ok {
			return nil, fmt.Errorf("malformed attribute %q", w)
		}
		a[k] = v
	}
	return a, nil
}

// num returns the integer value of key, or 0 when absent. List values such
// as padding=1,1,1,1 yield their first element.
func (a attrs) num(key string) (int, error) {
	v, ok := a[key]
	if !ok || v == "" {
		return 0, nil
	}
	if first, _, found := strings.Cut(v, ","); found {
		v = first
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", key, err)
	}
	return n, nil
}

func (a attrs) nums(keys ...string) ([]int, error) {
	out := make([]int, len(keys))
	for i, k := range keys {
		n, err := a.num(k)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func (d *Descriptor) applyTag(tag string, a attrs) error {
	switch tag {
	case "info":
		d.Face = a["face"]
		n, err := a.num("size")
		if err != nil {
			return err
		}
		d.Size = n
	case "common":
		v, err := a.nums("lineHeight", "base", "scaleW", "scaleH")
		if err != nil {
			return err
		}
		d.LineHeight, d.Base, d.ScaleW, d.ScaleH = v[0], v[1], v[2], v[3]
	case "page":
		id, err := a.num("id")
		if err != nil {
			return err
		}
		d.setPage(id, a["file"])
	case "char":
		v, err := a.nums("id", "x", "y", "width", "height", "xoffset", "yoffset", "xadvance", "page")
		if err != nil {
			return err
		}
		if v[8] != 0 {
			return nil
		}
		d.Chars[rune(v[0])] = Glyph{
			X: v[1], Y: v[2],
			Width: v[3], Height: v[4],
			XOffset: v[5], YOffset: v[6],
			XAdvance: v[7],
		}
	case "kerning":
		v, err := a.nums("first", "second", "amount")
		if err != nil {
			return err
		}
		d.Kernings = append(d.Kernings, Kerning{First: rune(v[0]), Second: rune(v[1]), Amount: v[2]})
	case "chars", "kernings":
		// Counts only.
	default:
		return fmt.Errorf("unknown tag %q", tag)
	}
	return nil
}

func (d *Descriptor) setPage(id int, file string) {
	if id < 0 {
		return
	}
	for len(d.Pages) <= id {
		d.Pages = append(d.Pages, "")
	}
	d.Pages[id] = file
}

type xmlFont struct {
	XMLName xml.Name `xml:"font"`
	Info    struct {
		Face string `xml:"face,attr"`
		Size int    `xml:"size,attr"`
	} `xml:"info"`
	Common struct {
		LineHeight int `xml:"lineHeight,attr"`
		Base       int `xml:"base,attr"`
		ScaleW     int `xml:"scaleW,attr"`
		ScaleH     int `xml:"scaleH,attr"`
	} `xml:"common"`
	Pages []struct {
		ID   int    `xml:"id,attr"`
		File string `xml:"file,attr"`
	} `xml:"pages>page"`
	Chars []struct {
		ID       int `xml:"id,attr"`
		X        int `xml:"x,attr"`
		Y        int `xml:"y,attr"`
		Width    int `xml:"width,attr"`
		Height   int `xml:"height,attr"`
		XOffset  int `xml:"xoffset,attr"`
		YOffset  int `xml:"yoffset,attr"`
		XAdvance int `xml:"xadvance,attr"`
		Page     int `xml:"page,attr"`
	} `xml:"chars>char"`
	Kernings []struct {
		First  int `xml:"first,attr"`
		Second int `xml:"second,attr"`
		Amount int `xml:"amount,attr"`
	} `xml:"kernings>kerning"`
}

// ParseXML parses the BMFont XML format.
func ParseXML(r io.Reader) (*Descriptor, error) {
	var x xmlFont
	if err := xml.NewDecoder(r).Decode(&x); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyDescriptor
		}
		return nil, fmt.Errorf("font: parse xml descriptor: %w", err)
	}
	d := &Descriptor{
		Face:       x.Info.Face,
		Size:       x.Info.Size,
		LineHeight: x.Common.LineHeight,
		Base:       x.Common.Base,
		ScaleW:     x.Common.ScaleW,
		ScaleH:     x.Common.ScaleH,
		Chars:      make(map[rune]Glyph, len(x.Chars)),
	}
	for _, p := range x.Pages {
		d.setPage(p.ID, p.File)
	}
	for _, c := range x.Chars {
		if c.Page != 0 {
			continue
		}
		d.Chars[rune(c.ID)] = Glyph{
			X: c.X, Y: c.Y,
			Width: c.Width, Height: c.Height,
			XOffset: c.XOffset, YOffset: c.YOffset,
			XAdvance: c.XAdvance,
		}
	}
	for _, k := range x.Kernings {
		d.Kernings = append(d.Kernings, Kerning{First: rune(k.First), Second: rune(k.Second), Amount: k.Amount})
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}
