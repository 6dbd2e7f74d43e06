package headless

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gogpu/debugdraw/gpucore"
)

func glslProgram(model gpucore.ShaderModel, version string) *gpucore.ProgramDesc {
	return &gpucore.ProgramDesc{
		Label:          "test",
		Model:          model,
		VertexSource:   version + "\nvoid main() {}\n",
		FragmentSource: version + "\nvoid main() {}\n",
		Layout: gpucore.VertexLayout{
			Stride: 12,
			Attributes: []gpucore.VertexAttribute{
				{Name: "position", Location: 0, Format: gpucore.VertexFormatFloat32x3},
			},
		},
	}
}

func TestCreateProgramValidation(t *testing.T) {
	tests := []struct {
		name      string
		device    gpucore.ShaderModel
		desc      *gpucore.ProgramDesc
		wantStage string
	}{
		{"valid 150", gpucore.ShaderModelGLSL150, glslProgram(gpucore.ShaderModelGLSL150, "#version 150 core"), ""},
		{"valid 120 on 150 device", gpucore.ShaderModelGLSL150, glslProgram(gpucore.ShaderModelGLSL120, "#version 120"), ""},
		{"150 on 120 device", gpucore.ShaderModelGLSL120, glslProgram(gpucore.ShaderModelGLSL150, "#version 150"), gpucore.StageModule},
		{"wrong version", gpucore.ShaderModelGLSL150, glslProgram(gpucore.ShaderModelGLSL150, "#version 120"), gpucore.StageVertex},
		{
			"empty fragment", gpucore.ShaderModelGLSL150,
			func() *gpucore.ProgramDesc {
				d := glslProgram(gpucore.ShaderModelGLSL150, "#version 150")
				d.FragmentSource = "  "
				return d
			}(),
			gpucore.StageFragment,
		},
		{
			"attribute overruns stride", gpucore.ShaderModelGLSL150,
			func() *gpucore.ProgramDesc {
				d := glslProgram(gpucore.ShaderModelGLSL150, "#version 150")
				d.Layout.Attributes[0].Offset = 4
				return d
			}(),
			gpucore.StageLink,
		},
		{
			"wgsl missing entry point", gpucore.ShaderModelWGSL,
			&gpucore.ProgramDesc{
				Model:          gpucore.ShaderModelWGSL,
				VertexSource:   "@vertex fn vs_main() {}",
				FragmentSource: "@vertex fn vs_main() {}",
				Layout:         gpucore.VertexLayout{Stride: 4},
			},
			gpucore.StageModule,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(WithShaderModel(tt.device))
			id, err := d.CreateProgram(tt.desc)
			if tt.wantStage == "" {
				if err != nil {
					t.Fatalf("CreateProgram() error = %v", err)
				}
				if id == gpucore.InvalidID {
					t.Error("CreateProgram() returned InvalidID")
				}
				return
			}
			var sce *gpucore.ShaderCompileError
			if !errors.As(err, &sce) {
				t.Fatalf("CreateProgram() error = %v, want *ShaderCompileError", err)
			}
			if sce.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", sce.Stage, tt.wantStage)
			}
			if d.LivePrograms() != 0 {
				t.Error("failed program was registered")
			}
		})
	}
}

func TestBufferWriteCopyRead(t *testing.T) {
	d := New()
	a, err := d.CreateBuffer(&gpucore.BufferDesc{Label: "a", Size: 8})
	if err != nil {
		t.Fatal(err)
	}
	b, err := d.CreateBuffer(&gpucore.BufferDesc{Label: "b", Size: 16})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.WriteBuffer(a, 2, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteBuffer() error = %v", err)
	}
	if err := d.CopyBuffer(a, b, 8); err != nil {
		t.Fatalf("CopyBuffer() error = %v", err)
	}
	got, err := d.ReadBuffer(b, 0, 8)
	if err != nil {
		t.Fatalf("ReadBuffer() error = %v", err)
	}
	if want := []byte{0, 0, 1, 2, 3, 0, 0, 0}; !bytes.Equal(got, want) {
		t.Errorf("ReadBuffer() = %v, want %v", got, want)
	}
	if d.Writes() != 1 || d.Copies() != 1 {
		t.Errorf("Writes/Copies = %d/%d, want 1/1", d.Writes(), d.Copies())
	}

	if err := d.WriteBuffer(a, 6, []byte{1, 2, 3}); !errors.Is(err, gpucore.ErrOutOfBounds) {
		t.Errorf("overflowing write error = %v, want ErrOutOfBounds", err)
	}
	if err := d.CopyBuffer(b, a, 16); !errors.Is(err, gpucore.ErrOutOfBounds) {
		t.Errorf("overflowing copy error = %v, want ErrOutOfBounds", err)
	}

	d.DestroyBuffer(a)
	if _, err := d.ReadBuffer(a, 0, 1); !errors.Is(err, gpucore.ErrUnknownResource) {
		t.Errorf("read of destroyed buffer error = %v, want ErrUnknownResource", err)
	}
	if d.LiveBuffers() != 1 {
		t.Errorf("LiveBuffers() = %d, want 1", d.LiveBuffers())
	}
}

func TestMaxBufferSize(t *testing.T) {
	d := New(WithMaxBufferSize(64))
	if _, err := d.CreateBuffer(&gpucore.BufferDesc{Size: 64}); err != nil {
		t.Errorf("CreateBuffer(64) error = %v", err)
	}
	if _, err := d.CreateBuffer(&gpucore.BufferDesc{Size: 65}); !errors.Is(err, gpucore.ErrBufferTooLarge) {
		t.Errorf("CreateBuffer(65) error = %v, want ErrBufferTooLarge", err)
	}
}

func TestDrawRecordsGeometry(t *testing.T) {
	d := New()
	prog, err := d.CreateProgram(glslProgram(gpucore.ShaderModelGLSL150, "#version 150"))
	if err != nil {
		t.Fatal(err)
	}
	vb, _ := d.CreateBuffer(&gpucore.BufferDesc{Size: 12 * 8})
	ib, _ := d.CreateBuffer(&gpucore.BufferDesc{Size: 4 * 16})
	idx := make([]byte, 12)
	for i, v := range []uint32{0, 2, 1} {
		binary.LittleEndian.PutUint32(idx[i*4:], v)
	}
	if err := d.WriteBuffer(ib, 0, idx); err != nil {
		t.Fatal(err)
	}

	cmd := &gpucore.DrawCommand{Program: prog, VertexBuffer: vb, IndexBuffer: ib, IndexCount: 3}
	if err := d.Draw(cmd); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	draws := d.Draws()
	if len(draws) != 1 {
		t.Fatalf("len(Draws()) = %d, want 1", len(draws))
	}
	if got := draws[0].Indices; len(got) != 3 || got[1] != 2 {
		t.Errorf("Indices = %v, want [0 2 1]", got)
	}
	if got := draws[0].VertexCount(); got != 3 {
		t.Errorf("VertexCount() = %d, want 3", got)
	}

	cmd.IndexCount = 17
	if err := d.Draw(cmd); !errors.Is(err, gpucore.ErrOutOfBounds) {
		t.Errorf("Draw() past index buffer error = %v, want ErrOutOfBounds", err)
	}

	d.ResetDraws()
	if len(d.Draws()) != 0 {
		t.Error("ResetDraws() kept draws")
	}
}

func TestDrawRequiresTextureForTexturedProgram(t *testing.T) {
	d := New()
	desc := glslProgram(gpucore.ShaderModelGLSL150, "#version 150")
	desc.Textured = true
	prog, err := d.CreateProgram(desc)
	if err != nil {
		t.Fatal(err)
	}
	vb, _ := d.CreateBuffer(&gpucore.BufferDesc{Size: 12})
	err = d.Draw(&gpucore.DrawCommand{Program: prog, VertexBuffer: vb, VertexCount: 1})
	if !errors.Is(err, gpucore.ErrUnknownResource) {
		t.Errorf("Draw() without texture error = %v, want ErrUnknownResource", err)
	}
}

func TestSetFault(t *testing.T) {
	d := New()
	d.SetFault(OpCreateBuffer, ErrInjected)
	if _, err := d.CreateBuffer(&gpucore.BufferDesc{Size: 4}); !errors.Is(err, ErrInjected) {
		t.Errorf("CreateBuffer() error = %v, want ErrInjected", err)
	}
	d.SetFault(OpCreateBuffer, nil)
	if _, err := d.CreateBuffer(&gpucore.BufferDesc{Size: 4}); err != nil {
		t.Errorf("CreateBuffer() after clearing fault error = %v", err)
	}
}

func TestTextureRoundTrip(t *testing.T) {
	d := New()
	id, err := d.CreateTexture(&gpucore.TextureDesc{Width: 2, Height: 1})
	if err != nil {
		t.Fatal(err)
	}
	px := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if err := d.WriteTexture(id, px); err != nil {
		t.Fatalf("WriteTexture() error = %v", err)
	}
	got, ok := d.TextureData(id)
	if !ok || !bytes.Equal(got, px) {
		t.Errorf("TextureData() = %v, %v", got, ok)
	}
	if err := d.WriteTexture(id, px[:4]); !errors.Is(err, gpucore.ErrOutOfBounds) {
		t.Errorf("short WriteTexture() error = %v, want ErrOutOfBounds", err)
	}
	if _, err := d.CreateTexture(&gpucore.TextureDesc{}); err == nil {
		t.Error("CreateTexture(0x0) error = nil")
	}
}
