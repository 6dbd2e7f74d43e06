// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/debugdraw/gpucore"
	"github.com/gogpu/debugdraw/shader"
)

// depthFormat is the format of the depth attachment of offscreen targets.
const depthFormat = gputypes.TextureFormatDepth24Plus

var errNotWGSL = errors.New("wgpu: only WGSL programs are supported")

// pipelineKey identifies a pipeline variant: pipelines are specialized for
// the color format and the presence of a depth attachment.
type pipelineKey struct {
	format gputypes.TextureFormat
	depth  bool
}

type program struct {
	desc       gpucore.ProgramDesc
	module     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	uniform    hal.Buffer
	pipelines  map[pipelineKey]hal.RenderPipeline
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

func vertexFormat(f gpucore.VertexFormat) gputypes.VertexFormat {
	switch f {
	case gpucore.VertexFormatFloat32x2:
		return gputypes.VertexFormatFloat32x2
	case gpucore.VertexFormatFloat32x3:
		return gputypes.VertexFormatFloat32x3
	case gpucore.VertexFormatFloat32x4:
		return gputypes.VertexFormatFloat32x4
	case gpucore.VertexFormatUint32:
		return gputypes.VertexFormatUint32
	default:
		return 0
	}
}

func vertexLayout(l gpucore.VertexLayout) []gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = gputypes.VertexAttribute{
			Format:         vertexFormat(a.Format),
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: l.Stride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  attrs,
	}}
}

func topology(t gpucore.Topology) gputypes.PrimitiveTopology {
	if t == gpucore.TopologyLineList {
		return gputypes.PrimitiveTopologyLineList
	}
	return gputypes.PrimitiveTopologyTriangleList
}

func compileError(stage string, err error) *gpucore.ShaderCompileError {
	return &gpucore.ShaderCompileError{Model: gpucore.ShaderModelWGSL, Stage: stage, Err: err}
}

// CreateProgram implements gpucore.Device. The pipeline itself is built
// lazily on first draw, once the target format is known.
func (d *Device) CreateProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	if desc.Model != gpucore.ShaderModelWGSL {
		return gpucore.InvalidID, &gpucore.ShaderCompileError{Model: desc.Model, Stage: gpucore.StageModule, Err: errNotWGSL}
	}
	for _, a := range desc.Layout.Attributes {
		if vertexFormat(a.Format) == 0 || a.Offset+uint64(a.Format.Size()) > desc.Layout.Stride {
			return gpucore.InvalidID, compileError(gpucore.StageLink,
				fmt.Errorf("attribute %q does not fit the %d-byte vertex", a.Name, desc.Layout.Stride))
		}
	}
	for _, entry := range []string{shader.VertexEntryPoint, shader.FragmentEntryPoint} {
		if !strings.Contains(desc.VertexSource, "fn "+entry) {
			return gpucore.InvalidID, compileError(gpucore.StageModule, fmt.Errorf("missing entry point %s", entry))
		}
	}

	p := &program{desc: *desc, pipelines: make(map[pipelineKey]hal.RenderPipeline)}
	if err := d.initProgram(p); err != nil {
		d.releaseProgram(p)
		return gpucore.InvalidID, err
	}
	id := gpucore.ProgramID(d.id())
	d.programs[id] = p
	return id, nil
}

func (d *Device) initProgram(p *program) error {
	src := hal.ShaderSource{WGSL: p.desc.VertexSource}
	if d.spirv {
		words, err := compileSPIRV(p.desc.VertexSource)
		if err != nil {
			return compileError(gpucore.StageModule, err)
		}
		src = hal.ShaderSource{SPIRV: words}
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.desc.Label + "_shader",
		Source: src,
	})
	if err != nil {
		return compileError(gpucore.StageModule, err)
	}
	p.module = module

	// Binding 0: uniforms; 1: atlas texture; 2: sampler.
	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	if p.desc.Textured {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	bindLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.desc.Label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		return compileError(gpucore.StageLink, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.desc.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return compileError(gpucore.StageLink, err)
	}
	p.pipeLayout = pipeLayout

	uniform, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.desc.Label + "_uniforms",
		Size:  gpucore.UniformsSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create uniform buffer: %w", err)
	}
	p.uniform = uniform
	return nil
}

// pipeline returns the pipeline variant for key, creating it on first use.
func (d *Device) pipeline(p *program, key pipelineKey) (hal.RenderPipeline, error) {
	if pl, ok := p.pipelines[key]; ok {
		return pl, nil
	}
	target := gputypes.ColorTargetState{
		Format:    key.format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if p.desc.Blend {
		blend := gputypes.BlendStateAlpha()
		target.Blend = &blend
	}
	desc := &hal.RenderPipelineDescriptor{
		Label:  p.desc.Label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    vertexLayout(p.desc.Layout),
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets:    []gputypes.ColorTargetState{target},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology(p.desc.Topology),
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if key.depth {
		// Programs without depth testing still need a matching depth state
		// when the pass has a depth attachment.
		compare := gputypes.CompareFunctionAlways
		if p.desc.DepthTest {
			compare = gputypes.CompareFunctionLess
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: p.desc.DepthTest,
			DepthCompare:      compare,
			StencilFront:      hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways},
			StencilBack:       hal.StencilFaceState{Compare: gputypes.CompareFunctionAlways},
		}
	}
	pl, err := d.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, compileError(gpucore.StageLink, err)
	}
	p.pipelines[key] = pl
	return pl, nil
}

func (d *Device) releaseProgram(p *program) {
	for key, pl := range p.pipelines {
		d.device.DestroyRenderPipeline(pl)
		delete(p.pipelines, key)
	}
	if p.uniform != nil {
		d.device.DestroyBuffer(p.uniform)
		p.uniform = nil
	}
	if p.pipeLayout != nil {
		d.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		d.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.module != nil {
		d.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// DestroyProgram implements gpucore.Device.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	d.releaseProgram(p)
	delete(d.programs, id)
}
