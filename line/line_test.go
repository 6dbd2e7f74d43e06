package line

import (
	"errors"
	"testing"

	"github.com/gogpu/debugdraw"
	"github.com/gogpu/debugdraw/backend/headless"
	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/debugdraw/shader"
)

func TestLineFrame(t *testing.T) {
	dev := headless.New()
	r, err := New(dev, Config{InitialCapacity: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Destroy()

	r.DrawLine([3]float32{0, 0, 0}, [3]float32{1, 0, 0}, debugdraw.Red)
	r.DrawLine([3]float32{0, 0, 0}, [3]float32{0, 1, 0}, debugdraw.Green)
	r.DrawLine([3]float32{0, 0, 0}, [3]float32{0, 0, 1}, debugdraw.Blue)
	if r.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", r.Len())
	}
	if err := r.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := r.Render(debugdraw.Identity()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	draws := dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	d := draws[0]
	if d.Command.Indexed() || d.Command.VertexCount != 6 {
		t.Errorf("command = %+v, want non-indexed 6 vertices", d.Command)
	}
	if d.Program.Topology != gpucore.TopologyLineList {
		t.Errorf("Topology = %v, want line list", d.Program.Topology)
	}
	if got := DecodeVertex(d.Vertices[5*VertexStride:]); got.Position != [3]float32{0, 0, 1} || got.Color != debugdraw.Blue {
		t.Errorf("last vertex = %+v", got)
	}
	if r.Len() != 0 {
		t.Error("Render() did not empty the batch")
	}
	if s := r.Stats(); s.Lines != 3 || s.VertexCapacity < 6 || s.Grows != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestLineEmptyFrameSkipsDraw(t *testing.T) {
	dev := headless.New()
	r, _ := New(dev, Config{})
	defer r.Destroy()
	if err := r.Update(); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(debugdraw.Identity()); err != nil {
		t.Fatal(err)
	}
	if len(dev.Draws()) != 0 {
		t.Error("empty frame issued a draw")
	}
}

func TestLineNoCompatibleVariant(t *testing.T) {
	dev := headless.New(headless.WithShaderModel(gpucore.ShaderModelUnsupported))
	if _, err := New(dev, Config{}); !errors.Is(err, shader.ErrNoCompatibleVariant) {
		t.Errorf("New() error = %v, want ErrNoCompatibleVariant", err)
	}
	if dev.LivePrograms()+dev.LiveBuffers() != 0 {
		t.Error("failed New() leaked resources")
	}
}

func TestLineBufferFailureReleasesProgram(t *testing.T) {
	dev := headless.New()
	dev.SetFault(headless.OpCreateBuffer, headless.ErrInjected)
	if _, err := New(dev, Config{}); !errors.Is(err, headless.ErrInjected) {
		t.Errorf("New() error = %v, want ErrInjected", err)
	}
	if dev.LivePrograms() != 0 {
		t.Error("program leaked after buffer failure")
	}
}

func TestLineWGSL(t *testing.T) {
	dev := headless.New(headless.WithShaderModel(gpucore.ShaderModelWGSL))
	r, err := New(dev, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Destroy()
	if r.ShaderModel() != gpucore.ShaderModelWGSL {
		t.Errorf("ShaderModel() = %v, want wgsl", r.ShaderModel())
	}
}

func TestLineRenderWithoutUpdateDrawsPreviousUpload(t *testing.T) {
	dev := headless.New()
	r, err := New(dev, Config{InitialCapacity: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()

	r.DrawLine([3]float32{}, [3]float32{1, 0, 0}, debugdraw.Red)
	if err := r.Update(); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(debugdraw.Identity()); err != nil {
		t.Fatal(err)
	}

	for range 4 {
		r.DrawLine([3]float32{}, [3]float32{0, 1, 0}, debugdraw.Green)
	}
	if err := r.Render(debugdraw.Identity()); err != nil {
		t.Fatalf("Render() without Update error = %v", err)
	}
	draws := dev.Draws()
	if len(draws) != 2 || draws[1].Command.VertexCount != 2 {
		t.Fatalf("draws = %+v, want a second draw of the 2 uploaded vertices", draws)
	}
	if r.Len() != 0 {
		t.Error("Render() kept the batch")
	}
}
