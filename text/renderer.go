package text

import (
	"fmt"
	"image"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/font"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/debugdraw/internal/dynbuf"
	"github.com/gogpu/debugdraw/shader"
)

// Config holds configuration for a text Renderer.
type Config struct {
	// Capabilities selects the shader tier. Zero value: queried from the device.
	Capabilities gpucore.Capabilities

	// FrameWidth and FrameHeight are the initial frame size in pixels.
	// Default: 800x600
	FrameWidth, FrameHeight uint32

	// InitialCapacity is the initial vertex and index buffer capacity in
	// elements. Default: 1024
	InitialCapacity int

	// Font is the glyph catalog. When nil, font.Default is baked and
	// uploaded, and FontTexture is ignored.
	Font *font.Font

	// FontTexture is the uploaded atlas of Font. It is not released by the
	// renderer.
	FontTexture gpucore.TextureID

	// Variants overrides the shader table. Default: shader.Text()
	Variants shader.Set

	// NormalizeText applies Unicode NFC normalization to queued strings.
	NormalizeText bool

	// DepthTest enables depth testing of glyph quads.
	DepthTest bool
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		FrameWidth:      800,
		FrameHeight:     600,
		InitialCapacity: 1024,
	}
}

func (c *Config) fillDefaults(device gpucore.Device) {
	def := DefaultConfig()
	if c.Capabilities == (gpucore.Capabilities{}) {
		c.Capabilities = device.Capabilities()
	}
	if c.FrameWidth == 0 {
		c.FrameWidth = def.FrameWidth
	}
	if c.FrameHeight == 0 {
		c.FrameHeight = def.FrameHeight
	}
	if c.InitialCapacity <= 0 {
		c.InitialCapacity = def.InitialCapacity
	}
	if c.Variants == nil {
		c.Variants = shader.Text()
	}
}

// Stats reports per-frame counters of a Renderer.
type Stats struct {
	// Quads, Vertices and Indices describe the last rendered batch.
	Quads, Vertices, Indices int

	// Draws counts issued draw calls; Frames counts Render calls.
	Draws, Frames uint64

	// VertexCapacity and IndexCapacity are the device buffer capacities in elements.
	VertexCapacity, IndexCapacity int

	// Grows counts buffer reallocations.
	Grows int

	// ShaderModel is the selected tier.
	ShaderModel gpucore.ShaderModel
}

// Renderer draws batched text with one draw call per frame.
type Renderer struct {
	device gpucore.Device
	batch  *Batch
	model  gpucore.ShaderModel

	program  gpucore.ProgramID
	sampler  gpucore.SamplerID
	texture  gpucore.TextureID
	ownsTex  bool
	vertices *dynbuf.Buffer
	indices  *dynbuf.Buffer

	uniforms gpucore.Uniforms
	stats    Stats
}

// New creates a text renderer. Shader selection or compilation failures are
// returned as shader.ErrNoCompatibleVariant or *gpucore.ShaderCompileError;
// resources created before the failure are released.
func New(device gpucore.Device, cfg Config) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	cfg.fillDefaults(device)

	r := &Renderer{
		device: device,
		uniforms: gpucore.Uniforms{
			ModelViewProjection: debugdraw.Identity(),
			ScreenSize:          [2]float32{float32(cfg.FrameWidth), float32(cfg.FrameHeight)},
		},
	}
	if err := r.init(&cfg); err != nil {
		r.Destroy()
		return nil, err
	}

	debugdraw.Logger().Debug("text: renderer created",
		"shader_model", r.model,
		"backend", cfg.Capabilities.Backend,
		"capacity", cfg.InitialCapacity,
		"glyphs", r.batch.font.Len())
	return r, nil
}

func (r *Renderer) init(cfg *Config) error {
	tier, variant, err := cfg.Variants.Choose(cfg.Capabilities.ShaderModel)
	if err != nil {
		return fmt.Errorf("text: %w", err)
	}
	r.model = tier
	r.stats.ShaderModel = tier

	r.program, err = r.device.CreateProgram(&gpucore.ProgramDesc{
		Label:          "debugdraw text",
		Model:          tier,
		VertexSource:   variant.Vertex,
		FragmentSource: variant.Fragment,
		Layout:         Layout,
		Topology:       gpucore.TopologyTriangleList,
		Blend:          true,
		DepthTest:      cfg.DepthTest,
		Textured:       true,
	})
	if err != nil {
		return fmt.Errorf("text: create program: %w", err)
	}

	r.vertices, err = dynbuf.New(r.device, dynbuf.Desc{
		Label:    "debugdraw text vertices",
		Usage:    gpucore.BufferUsageVertex,
		Stride:   VertexStride,
		Capacity: cfg.InitialCapacity,
	})
	if err != nil {
		return fmt.Errorf("text: %w", err)
	}
	r.indices, err = dynbuf.New(r.device, dynbuf.Desc{
		Label:    "debugdraw text indices",
		Usage:    gpucore.BufferUsageIndex,
		Stride:   4,
		Capacity: cfg.InitialCapacity,
	})
	if err != nil {
		return fmt.Errorf("text: %w", err)
	}

	r.sampler, err = r.device.CreateSampler(&gpucore.SamplerDesc{
		Label:  "debugdraw font sampler",
		Filter: gpucore.FilterNearest,
		Wrap:   gpucore.WrapClampToEdge,
	})
	if err != nil {
		return fmt.Errorf("text: create sampler: %w", err)
	}

	f := cfg.Font
	switch {
	case f == nil:
		var atlas *image.NRGBA
		f, atlas = font.Default()
		r.texture, err = UploadAtlas(r.device, atlas)
		if err != nil {
			return err
		}
		r.ownsTex = true
	case cfg.FontTexture == gpucore.InvalidID:
		return ErrNoFontTexture
	default:
		r.texture = cfg.FontTexture
	}

	r.batch = NewBatch(f)
	r.batch.SetNormalize(cfg.NormalizeText)
	return nil
}

// Resize updates the frame size used to place glyphs.
func (r *Renderer) Resize(width, height uint32) {
	r.uniforms.ScreenSize = [2]float32{float32(width), float32(height)}
}

// DrawTextAtPosition queues text anchored at a world-space point.
func (r *Renderer) DrawTextAtPosition(s string, world [3]float32, color [4]float32) {
	r.batch.DrawTextAtPosition(s, world, color)
}

// DrawTextOnScreen queues text at a pixel position.
func (r *Renderer) DrawTextOnScreen(s string, screen [2]int32, color [4]float32) {
	r.batch.DrawTextOnScreen(s, screen, color)
}

// Update uploads the queued geometry, growing the device buffers if needed.
func (r *Renderer) Update() error {
	if err := r.vertices.Write(EncodeVertices(r.batch.Vertices())); err != nil {
		return fmt.Errorf("text: update vertices: %w", err)
	}
	if err := r.indices.Write(EncodeIndices(r.batch.Indices())); err != nil {
		return fmt.Errorf("text: update indices: %w", err)
	}
	return nil
}

// Render draws the geometry uploaded by the last Update with the given
// column-major projection and empties the batch. Without an Update in the
// same frame it draws the previous upload.
func (r *Renderer) Render(projection [16]float32) error {
	defer r.batch.Reset()

	r.uniforms.ModelViewProjection = projection
	n := r.indices.Len()
	r.stats.Frames++
	r.stats.Quads = r.batch.Len()
	r.stats.Vertices = len(r.batch.Vertices())
	r.stats.Indices = len(r.batch.Indices())
	r.stats.VertexCapacity = r.vertices.Capacity()
	r.stats.IndexCapacity = r.indices.Capacity()
	r.stats.Grows = r.vertices.Grows() + r.indices.Grows()
	if n == 0 {
		return nil
	}

	err := r.device.Draw(&gpucore.DrawCommand{
		Program:      r.program,
		VertexBuffer: r.vertices.ID(),
		IndexBuffer:  r.indices.ID(),
		IndexCount:   uint32(n),
		VertexCount:  uint32(r.vertices.Len()),
		Uniforms:     r.uniforms,
		Texture:      r.texture,
		Sampler:      r.sampler,
	})
	if err != nil {
		return fmt.Errorf("text: draw: %w", err)
	}
	r.stats.Draws++
	return nil
}

// Batch returns the pending batch.
func (r *Renderer) Batch() *Batch { return r.batch }

// ShaderModel returns the selected shader tier.
func (r *Renderer) ShaderModel() gpucore.ShaderModel { return r.model }

// Uniforms returns the uniform block used by the last or next draw.
func (r *Renderer) Uniforms() gpucore.Uniforms { return r.uniforms }

// Stats returns the renderer counters.
func (r *Renderer) Stats() Stats { return r.stats }

// Destroy releases all device resources owned by the renderer.
func (r *Renderer) Destroy() {
	if r.vertices != nil {
		r.vertices.Destroy()
		r.vertices = nil
	}
	if r.indices != nil {
		r.indices.Destroy()
		r.indices = nil
	}
	if r.sampler != gpucore.InvalidID {
		r.device.DestroySampler(r.sampler)
		r.sampler = gpucore.InvalidID
	}
	if r.ownsTex && r.texture != gpucore.InvalidID {
		r.device.DestroyTexture(r.texture)
	}
	r.texture = gpucore.InvalidID
	if r.program != gpucore.InvalidID {
		r.device.DestroyProgram(r.program)
		r.program = gpucore.InvalidID
	}
}

// UploadAtlas creates a texture holding img.
func UploadAtlas(device gpucore.Device, img image.Image) (gpucore.TextureID, error) {
	atlas, ok := img.(*image.NRGBA)
	if !ok || atlas.Rect.Min != (image.Point{}) {
		atlas = font.AtlasFromImage(img)
	}
	b := atlas.Bounds()
	id, err := device.CreateTexture(&gpucore.TextureDesc{
		Label:  "debugdraw font atlas",
		Width:  b.Dx(),
		Height: b.Dy(),
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("text: create atlas texture: %w", err)
	}
	if err := device.WriteTexture(id, font.Pixels(atlas)); err != nil {
		device.DestroyTexture(id)
		return gpucore.InvalidID, fmt.Errorf("text: upload atlas: %w", err)
	}
	return id, nil
}
