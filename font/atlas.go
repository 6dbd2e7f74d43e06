package font

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png" // register PNG decoder for atlas pages
	"os"

	"golang.org/x/image/draw"
)

// LoadAtlas decodes an atlas image from disk and converts it to NRGBA.
func LoadAtlas(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("font: open atlas: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("font: decode atlas %s: %w", path, err)
	}
	return AtlasFromImage(img), nil
}

// AtlasFromImage converts img to a zero-origin NRGBA image. Single-channel
// images (alpha or gray masks) become white glyphs whose alpha is the mask.
func AtlasFromImage(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src := img.(type) {
	case *image.NRGBA:
		if b.Min == (image.Point{}) {
			copy(dst.Pix, src.Pix)
			return dst
		}
	case *image.Alpha:
		draw.DrawMask(dst, dst.Bounds(), image.White, image.Point{}, src, b.Min, draw.Src)
		return dst
	case *image.Gray:
		draw.DrawMask(dst, dst.Bounds(), image.White, image.Point{}, grayMask{src}, b.Min, draw.Src)
		return dst
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// grayMask reads a gray image as an alpha mask.
type grayMask struct{ *image.Gray }

func (g grayMask) ColorModel() color.Model { return color.AlphaModel }

func (g grayMask) At(x, y int) color.Color {
	return color.Alpha{A: g.GrayAt(x, y).Y}
}

// Pixels returns the atlas as tightly packed RGBA8 bytes suitable for
// gpucore.Device.WriteTexture.
func Pixels(img *image.NRGBA) []byte {
	b := img.Bounds()
	w := b.Dx() * 4
	if img.Stride == w {
		return img.Pix[:w*b.Dy()]
	}
	out := make([]byte, 0, w*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		out = append(out, img.Pix[y*img.Stride:y*img.Stride+w]...)
	}
	return out
}
