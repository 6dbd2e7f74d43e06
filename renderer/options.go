package renderer

import (
	"github.com/gogpu/debugdraw/font"
	"github.com/gogpu/debugdraw/gpucore"
)

// Option configures a DebugRenderer during creation.
//
// Example:
//
//	r, err := renderer.New(dev,
//	    renderer.WithFrameSize(1280, 720),
//	    renderer.WithInitialCapacity(4096),
//	)
type Option func(*options)

// options holds optional configuration for DebugRenderer creation.
type options struct {
	width, height uint32
	capacity      int
	font          *font.Font
	fontTexture   gpucore.TextureID
	caps          gpucore.Capabilities
	normalize     bool
	depthTest     bool
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		width:    800,
		height:   600,
		capacity: 1024,
	}
}

// WithFrameSize sets the initial frame size in pixels.
func WithFrameSize(width, height uint32) Option {
	return func(o *options) {
		o.width, o.height = width, height
	}
}

// WithInitialCapacity sets the initial buffer capacity in elements for all
// geometry buffers.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithFont sets the glyph catalog and its uploaded atlas texture. The
// texture remains owned by the caller.
//
// Example:
//
//	desc, _ := font.Load("assets/debug.fnt")
//	atlas, _ := font.LoadAtlas("assets/" + desc.Pages[0])
//	tex, _ := text.UploadAtlas(dev, atlas)
//	r, err := renderer.New(dev, renderer.WithFont(desc.Font(), tex))
func WithFont(f *font.Font, texture gpucore.TextureID) Option {
	return func(o *options) {
		o.font, o.fontTexture = f, texture
	}
}

// WithCapabilities overrides the device capabilities used for shader
// selection.
func WithCapabilities(caps gpucore.Capabilities) Option {
	return func(o *options) {
		o.caps = caps
	}
}

// WithNormalizeText enables Unicode NFC normalization of queued strings.
func WithNormalizeText(on bool) Option {
	return func(o *options) {
		o.normalize = on
	}
}

// WithDepthTest enables depth testing for lines and text.
func WithDepthTest(on bool) Option {
	return func(o *options) {
		o.depthTest = on
	}
}
