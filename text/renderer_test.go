package text

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/backend/headless"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/debugdraw/shader"
)

func newTestRenderer(t *testing.T, dev *headless.Device, cfg Config) *Renderer {
	t.Helper()
	if cfg.Font == nil {
		cfg.Font = testFont()
		tex, err := UploadAtlas(dev, image.NewNRGBA(image.Rect(0, 0, 128, 64)))
		if err != nil {
			t.Fatal(err)
		}
		cfg.FontTexture = tex
	}
	r, err := New(dev, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(r.Destroy)
	return r
}

func frame(t *testing.T, r *Renderer, proj [16]float32) {
	t.Helper()
	if err := r.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := r.Render(proj); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}

func decodeAll(d headless.Draw) []Vertex {
	out := make([]Vertex, d.VertexCount())
	for i := range out {
		out[i] = DecodeVertex(d.Vertices[i*VertexStride:])
	}
	return out
}

func TestRendererSingleDrawPerFrame(t *testing.T) {
	dev := headless.New()
	r := newTestRenderer(t, dev, Config{})

	r.DrawTextAtPosition("A", [3]float32{1, 2, 3}, white)
	r.DrawTextOnScreen("BA", [2]int32{4, 4}, white)
	frame(t, r, debugdraw.Identity())

	draws := dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	d := draws[0]
	if d.Command.IndexCount != 18 {
		t.Errorf("IndexCount = %d, want 18", d.Command.IndexCount)
	}
	if !d.Program.Blend || !d.Program.Textured || d.Program.Topology != gpucore.TopologyTriangleList {
		t.Errorf("program state = %+v, want blended textured triangle list", d.Program)
	}
	if d.Command.Uniforms.ScreenSize != [2]float32{800, 600} {
		t.Errorf("ScreenSize = %v, want default 800x600", d.Command.Uniforms.ScreenSize)
	}
	vs := decodeAll(d)
	if len(vs) != 12 {
		t.Fatalf("draw references %d vertices, want 12", len(vs))
	}
	if vs[0].WorldPosition != [3]float32{1, 2, 3} || vs[4].ScreenRelative != 1 {
		t.Error("uploaded vertices do not match queued text")
	}
}

func TestRenderEmptiesBatch(t *testing.T) {
	dev := headless.New()
	r := newTestRenderer(t, dev, Config{})
	r.DrawTextOnScreen("AB", [2]int32{}, white)
	frame(t, r, debugdraw.Identity())
	if r.Batch().Len() != 0 {
		t.Errorf("batch Len() after Render = %d, want 0", r.Batch().Len())
	}

	// Nothing queued: no draw, batch stays empty.
	frame(t, r, debugdraw.Identity())
	if n := len(dev.Draws()); n != 1 {
		t.Errorf("len(Draws()) = %d after empty frame, want 1", n)
	}
	if s := r.Stats(); s.Frames != 2 || s.Draws != 1 || s.Quads != 0 {
		t.Errorf("Stats() = %+v, want 2 frames, 1 draw, 0 quads", s)
	}
}

func TestScreenTextIgnoresProjection(t *testing.T) {
	dev := headless.New()
	r := newTestRenderer(t, dev, Config{FrameWidth: 640, FrameHeight: 480})
	projections := []debugdraw.Mat4{
		debugdraw.Identity(),
		debugdraw.Perspective(1.2, 4.0/3, 0.1, 50).Mul(debugdraw.Translate(0, 0, -4)),
	}
	var got [][2]float32
	for _, p := range projections {
		r.DrawTextOnScreen("AB", [2]int32{20, 30}, white)
		frame(t, r, p)
		draws := dev.Draws()
		d := draws[len(draws)-1]
		for _, v := range decodeAll(d) {
			got = append(got, shader.TextVertexPosition(v.Position, v.WorldPosition, v.ScreenRelative, d.Command.Uniforms))
		}
	}
	half := len(got) / 2
	for i := 0; i < half; i++ {
		if got[i] != got[half+i] {
			t.Errorf("vertex %d moved with projection: %v vs %v", i, got[i], got[half+i])
		}
	}
}

func TestResizeOnlyChangesUniforms(t *testing.T) {
	dev := headless.New()
	r := newTestRenderer(t, dev, Config{})
	r.DrawTextAtPosition("AB", [3]float32{1, 1, 1}, white)
	frame(t, r, debugdraw.Identity())

	r.Resize(1920, 1080)
	r.DrawTextAtPosition("AB", [3]float32{1, 1, 1}, white)
	frame(t, r, debugdraw.Identity())

	draws := dev.Draws()
	a, b := decodeAll(draws[0]), decodeAll(draws[1])
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("vertex %d differs after Resize: %+v vs %+v", i, a[i], b[i])
		}
	}
	if got := draws[1].Command.Uniforms.ScreenSize; got != [2]float32{1920, 1080} {
		t.Errorf("ScreenSize = %v, want [1920 1080]", got)
	}
}

func TestBuffersGrowAcrossFrames(t *testing.T) {
	dev := headless.New()
	r := newTestRenderer(t, dev, Config{InitialCapacity: 2})

	r.DrawTextOnScreen("A", [2]int32{}, white)
	r.DrawTextOnScreen("B", [2]int32{0, 20}, white)
	r.DrawTextOnScreen("AB", [2]int32{0, 40}, white)
	frame(t, r, debugdraw.Identity())

	s := r.Stats()
	if s.VertexCapacity < 16 || s.IndexCapacity < 24 {
		t.Errorf("capacities = %d/%d, want >= 16/24", s.VertexCapacity, s.IndexCapacity)
	}
	if s.Grows == 0 {
		t.Error("Grows = 0, want > 0")
	}
	d := dev.Draws()[0]
	if d.Command.IndexCount != 24 || len(d.Indices) != 24 {
		t.Errorf("IndexCount = %d, want 24", d.Command.IndexCount)
	}
	if got := d.Indices[18:]; !equalIndices(got, []uint32{12, 13, 15, 15, 13, 14}) {
		t.Errorf("last quad indices = %v", got)
	}
}

func TestNewShaderFailuresReleaseResources(t *testing.T) {
	tests := []struct {
		name     string
		device   gpucore.ShaderModel
		variants shader.Set
		check    func(error) bool
	}{
		{
			name:     "no compatible tier",
			device:   gpucore.ShaderModelUnsupported,
			variants: nil,
			check:    func(err error) bool { return errors.Is(err, shader.ErrNoCompatibleVariant) },
		},
		{
			name:     "glsl120 device with 150-only table",
			device:   gpucore.ShaderModelGLSL120,
			variants: shader.Set{gpucore.ShaderModelGLSL150: shader.Text()[gpucore.ShaderModelGLSL150]},
			check:    func(err error) bool { return errors.Is(err, shader.ErrNoCompatibleVariant) },
		},
		{
			name:     "broken source",
			device:   gpucore.ShaderModelGLSL150,
			variants: shader.Set{gpucore.ShaderModelGLSL150: {Vertex: "#version 150\nvoid main(", Fragment: "oops"}},
			check: func(err error) bool {
				var sce *gpucore.ShaderCompileError
				return errors.As(err, &sce) && sce.Stage == gpucore.StageFragment
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := headless.New(headless.WithShaderModel(tt.device))
			r, err := New(dev, Config{Variants: tt.variants})
			if err == nil {
				r.Destroy()
				t.Fatal("New() error = nil")
			}
			if r != nil {
				t.Error("New() returned a renderer on failure")
			}
			if !tt.check(err) {
				t.Errorf("New() error = %v", err)
			}
			if dev.LiveBuffers()+dev.LivePrograms()+dev.LiveSamplers()+dev.LiveTextures() != 0 {
				t.Error("failed New() leaked device resources")
			}
		})
	}
}

func TestNewSelectsTier(t *testing.T) {
	for _, m := range []gpucore.ShaderModel{gpucore.ShaderModelGLSL120, gpucore.ShaderModelGLSL150, gpucore.ShaderModelWGSL} {
		dev := headless.New(headless.WithShaderModel(m))
		r := newTestRenderer(t, dev, Config{})
		if r.ShaderModel() != m {
			t.Errorf("device %v: ShaderModel() = %v", m, r.ShaderModel())
		}
	}
}

func TestDeviceErrorsPropagate(t *testing.T) {
	dev := headless.New()
	r := newTestRenderer(t, dev, Config{InitialCapacity: 1})
	r.DrawTextOnScreen("AB", [2]int32{}, white)

	dev.SetFault(headless.OpCreateBuffer, headless.ErrInjected)
	if err := r.Update(); !errors.Is(err, headless.ErrInjected) {
		t.Errorf("Update() error = %v, want ErrInjected", err)
	}
	dev.SetFault(headless.OpCreateBuffer, nil)
	if err := r.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	dev.SetFault(headless.OpDraw, headless.ErrInjected)
	if err := r.Render(debugdraw.Identity()); !errors.Is(err, headless.ErrInjected) {
		t.Errorf("Render() error = %v, want ErrInjected", err)
	}
	if r.Batch().Len() != 0 {
		t.Error("failed Render() kept the batch")
	}
}

func TestDefaultFont(t *testing.T) {
	dev := headless.New()
	r, err := New(dev, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if dev.LiveTextures() != 1 {
		t.Errorf("LiveTextures() = %d, want 1", dev.LiveTextures())
	}
	r.DrawTextOnScreen("hi", [2]int32{}, white)
	if r.Batch().Len() != 2 {
		t.Errorf("batch Len() = %d, want 2", r.Batch().Len())
	}
	r.Destroy()
	if n := dev.LiveBuffers() + dev.LivePrograms() + dev.LiveSamplers() + dev.LiveTextures(); n != 0 {
		t.Errorf("%d resources alive after Destroy", n)
	}
}

func TestFontWithoutTexture(t *testing.T) {
	dev := headless.New()
	if _, err := New(dev, Config{Font: testFont()}); !errors.Is(err, ErrNoFontTexture) {
		t.Errorf("New() error = %v, want ErrNoFontTexture", err)
	}
	if dev.LiveBuffers() != 0 {
		t.Error("failed New() leaked buffers")
	}
}

func TestNewNilDevice(t *testing.T) {
	if _, err := New(nil, Config{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("New(nil) error = %v, want ErrNilDevice", err)
	}
}

func TestUploadAtlas(t *testing.T) {
	dev := headless.New()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Pix[3] = 0xff
	id, err := UploadAtlas(dev, img)
	if err != nil {
		t.Fatalf("UploadAtlas() error = %v", err)
	}
	data, ok := dev.TextureData(id)
	if !ok || len(data) != 16 || data[3] != 0xff {
		t.Errorf("TextureData() = %v, %v", data, ok)
	}
}

func TestRenderWithoutUpdateDrawsPreviousUpload(t *testing.T) {
	dev := headless.New()
	r := newTestRenderer(t, dev, Config{InitialCapacity: 4})

	// Nothing uploaded yet: nothing to draw.
	r.DrawTextOnScreen("AB", [2]int32{}, white)
	if err := r.Render(debugdraw.Identity()); err != nil {
		t.Fatalf("Render() before any Update error = %v", err)
	}
	if len(dev.Draws()) != 0 {
		t.Fatalf("Render() before any Update issued %d draws", len(dev.Draws()))
	}

	r.DrawTextOnScreen("A", [2]int32{}, white)
	frame(t, r, debugdraw.Identity())

	// The batch outgrows the uploaded geometry but is never uploaded.
	r.DrawTextOnScreen("ABAB", [2]int32{}, white)
	if err := r.Render(debugdraw.Identity()); err != nil {
		t.Fatalf("Render() without Update error = %v", err)
	}
	draws := dev.Draws()
	if len(draws) != 2 {
		t.Fatalf("len(Draws()) = %d, want 2", len(draws))
	}
	if got := draws[1].Command.IndexCount; got != 6 {
		t.Errorf("stale IndexCount = %d, want 6", got)
	}
	if got := draws[1].Command.VertexCount; got != 4 {
		t.Errorf("stale VertexCount = %d, want 4", got)
	}
	if r.Batch().Len() != 0 {
		t.Error("Render() kept the batch")
	}
}
