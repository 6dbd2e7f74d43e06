package font

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const textDescriptor = `info face="Debug Mono" size=16 bold=0 italic=0 charset="" unicode=1 stretchH=100 smooth=1 aa=1 padding=0,0,0,0 spacing=1,1
common lineHeight=18 base=14 scaleW=128 scaleH=64 pages=1 packed=0
page id=0 file="debug_0.png"
chars count=2
char id=65   x=10   y=20   width=8    height=12   xoffset=1    yoffset=2    xadvance=9    page=0  chnl=15
char id=66   x=20   y=20   width=7    height=12   xoffset=-1   yoffset=2    xadvance=8    page=0  chnl=15
char id=67   x=0    y=0    width=7    height=12   xoffset=0    yoffset=2    xadvance=8    page=1  chnl=15
kernings count=1
kerning first=65 second=66 amount=-1
`

const xmlDescriptor = `<?xml version="1.0"?>
<font>
  <info face="Debug Mono" size="16"/>
  <common lineHeight="18" base="14" scaleW="128" scaleH="64" pages="1"/>
  <pages>
    <page id="0" file="debug_0.png"/>
  </pages>
  <chars count="2">
    <char id="65" x="10" y="20" width="8" height="12" xoffset="1" yoffset="2" xadvance="9" page="0" chnl="15"/>
    <char id="66" x="20" y="20" width="7" height="12" xoffset="-1" yoffset="2" xadvance="8" page="0" chnl="15"/>
  </chars>
  <kernings count="1">
    <kerning first="65" second="66" amount="-1"/>
  </kernings>
</font>
`

func checkDescriptor(t *testing.T, d *Descriptor) {
	t.Helper()
	if d.Face != "Debug Mono" {
		t.Errorf("Face = %q, want %q", d.Face, "Debug Mono")
	}
	if d.Size != 16 || d.LineHeight != 18 || d.Base != 14 {
		t.Errorf("Size/LineHeight/Base = %d/%d/%d, want 16/18/14", d.Size, d.LineHeight, d.Base)
	}
	if d.ScaleW != 128 || d.ScaleH != 64 {
		t.Errorf("scale = %dx%d, want 128x64", d.ScaleW, d.ScaleH)
	}
	if len(d.Pages) != 1 || d.Pages[0] != "debug_0.png" {
		t.Errorf("Pages = %v, want [debug_0.png]", d.Pages)
	}
	if len(d.Chars) != 2 {
		t.Fatalf("len(Chars) = %d, want 2", len(d.Chars))
	}
	want := Glyph{X: 10, Y: 20, Width: 8, Height: 12, XOffset: 1, YOffset: 2, XAdvance: 9}
	if got := d.Chars['A']; got != want {
		t.Errorf("Chars['A'] = %+v, want %+v", got, want)
	}
	if got := d.Chars['B'].XOffset; got != -1 {
		t.Errorf("Chars['B'].XOffset = %d, want -1", got)
	}
	if len(d.Kernings) != 1 || d.Kernings[0] != (Kerning{First: 'A', Second: 'B', Amount: -1}) {
		t.Errorf("Kernings = %+v", d.Kernings)
	}

	f := d.Font()
	if f.Name() != "Debug Mono" || f.LineHeight() != 18 || f.Len() != 2 {
		t.Errorf("Font() = name %q lineHeight %d len %d", f.Name(), f.LineHeight(), f.Len())
	}
}

func TestParseText(t *testing.T) {
	d, err := ParseText(strings.NewReader(textDescriptor))
	if err != nil {
		t.Fatalf("ParseText() error = %v", err)
	}
	checkDescriptor(t, d)
	if _, ok := d.Chars['C']; ok {
		t.Error("glyph on page 1 should be dropped")
	}
}

func TestParseTextLetterAttribute(t *testing.T) {
	const header = "common lineHeight=18 base=14 scaleW=128 scaleH=64 pages=1\n" +
		"page id=0 file=\"debug_0.png\"\n"
	tests := []struct {
		name string
		char string
	}{
		{"backslash", `char id=92 x=1 y=2 width=5 height=9 xoffset=0 yoffset=3 xadvance=6 page=0 chnl=15 letter="\"`},
		{"double quote", `char id=34 x=1 y=2 width=5 height=9 xoffset=0 yoffset=3 xadvance=6 page=0 chnl=15 letter="""`},
		{"space", `char id=32 x=1 y=2 width=5 height=9 xoffset=0 yoffset=3 xadvance=6 page=0 chnl=15 letter=" "`},
		{"named", `char id=32 x=1 y=2 width=5 height=9 xoffset=0 yoffset=3 xadvance=6 page=0 chnl=15 letter="space"`},
		{"followed by attributes", `char id=92 x=1 y=2 width=5 height=9 xoffset=0 yoffset=3 letter="\" xadvance=6 page=0`},
		{"quote followed by attributes", `char id=34 x=1 y=2 width=5 height=9 xoffset=0 yoffset=3 letter=""" xadvance=6 page=0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseText(strings.NewReader(header + tt.char + "\n"))
			if err != nil {
				t.Fatalf("ParseText() error = %v", err)
			}
			if len(d.Chars) != 1 {
				t.Fatalf("len(Chars) = %d, want 1", len(d.Chars))
			}
			for r, g := range d.Chars {
				want := Glyph{X: 1, Y: 2, Width: 5, Height: 9, YOffset: 3, XAdvance: 6}
				if g != want {
					t.Errorf("Chars[%q] = %+v, want %+v", r, g, want)
				}
			}
		})
	}
}

func TestParseXML(t *testing.T) {
	d, err := ParseXML(strings.NewReader(xmlDescriptor))
	if err != nil {
		t.Fatalf("ParseXML() error = %v", err)
	}
	checkDescriptor(t, d)
}

func TestParseTextErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantLine int
	}{
		{"empty", "", ErrEmptyDescriptor, 0},
		{"blank lines", "\n\n  \n", ErrEmptyDescriptor, 0},
		{"no chars", "common lineHeight=18 base=14 scaleW=128 scaleH=64\n", ErrNoGlyphs, 0},
		{"bad number", "common lineHeight=18 base=14 scaleW=128 scaleH=64\nchar id=x\n", nil, 2},
		{"unknown tag", "bogus a=1\n", nil, 1},
		{"missing equals", "info face\n", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ParseText() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseText() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantLine != 0 {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("ParseText() error = %T, want *ParseError", err)
				}
				if pe.Line != tt.wantLine {
					t.Errorf("ParseError.Line = %d, want %d", pe.Line, tt.wantLine)
				}
			}
		})
	}
}

func TestParseXMLEmpty(t *testing.T) {
	if _, err := ParseXML(strings.NewReader("")); !errors.Is(err, ErrEmptyDescriptor) {
		t.Errorf("ParseXML(\"\") error = %v, want ErrEmptyDescriptor", err)
	}
}

func TestLoadSniffsFormat(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"font.fnt", textDescriptor, nil},
		{"font.xml", xmlDescriptor, nil},
		{"binary.fnt", "BMF\x03", ErrBinaryDescriptor},
		{"empty.fnt", "  \n", ErrEmptyDescriptor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			d, err := Load(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			checkDescriptor(t, d)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.fnt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}
