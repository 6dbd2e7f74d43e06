// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/debugdraw/gpucore"
)

func samplerParams(desc gpucore.SamplerDesc) (filter, wrap int32) {
	filter, wrap = gl.NEAREST, gl.CLAMP_TO_EDGE
	if desc.Filter == gpucore.FilterLinear {
		filter = gl.LINEAR
	}
	if desc.Wrap == gpucore.WrapRepeat {
		wrap = gl.REPEAT
	}
	return filter, wrap
}

func setCap(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

// Draw implements gpucore.Device.
func (d *Device) Draw(cmd *gpucore.DrawCommand) error {
	p, ok := d.programs[cmd.Program]
	if !ok {
		return fmt.Errorf("gl: program %d: %w", cmd.Program, gpucore.ErrUnknownResource)
	}
	vb, err := d.buffer(cmd.VertexBuffer)
	if err != nil {
		return err
	}
	var ib *buffer
	if cmd.Indexed() {
		if ib, err = d.buffer(cmd.IndexBuffer); err != nil {
			return err
		}
		if uint64(cmd.IndexCount)*4 > ib.size {
			return fmt.Errorf("gl: %d indices in %d-byte buffer: %w", cmd.IndexCount, ib.size, gpucore.ErrOutOfBounds)
		}
	}

	var (
		tex *texture
		smp gpucore.SamplerDesc
	)
	if p.desc.Textured {
		if tex, ok = d.textures[cmd.Texture]; !ok {
			return fmt.Errorf("gl: texture %d: %w", cmd.Texture, gpucore.ErrUnknownResource)
		}
		if smp, ok = d.samplers[cmd.Sampler]; !ok {
			return fmt.Errorf("gl: sampler %d: %w", cmd.Sampler, gpucore.ErrUnknownResource)
		}
	}

	gl.UseProgram(p.name)
	gl.BindVertexArray(d.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, vb.name)
	stride := int32(p.desc.Layout.Stride) //nolint:gosec // vertex strides are small
	for _, a := range p.desc.Layout.Attributes {
		gl.EnableVertexAttribArray(a.Location)
		offset := gl.PtrOffset(int(a.Offset))
		switch {
		case a.Format == gpucore.VertexFormatUint32 && p.desc.Model == gpucore.ShaderModelGLSL150:
			gl.VertexAttribIPointer(a.Location, 1, gl.UNSIGNED_INT, stride, offset)
		case a.Format == gpucore.VertexFormatUint32:
			// GLSL 1.20 has no integer attributes; the value arrives as float.
			gl.VertexAttribPointer(a.Location, 1, gl.UNSIGNED_INT, false, stride, offset)
		default:
			gl.VertexAttribPointer(a.Location, int32(a.Format.Components()), gl.FLOAT, false, stride, offset)
		}
	}

	gl.UniformMatrix4fv(p.mvp, 1, false, &cmd.Uniforms.ModelViewProjection[0])
	gl.Uniform2f(p.screen, cmd.Uniforms.ScreenSize[0], cmd.Uniforms.ScreenSize[1])

	if p.desc.Textured {
		filter, wrap := samplerParams(smp)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.name)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
		gl.Uniform1i(p.fontUnit, 0)
	}

	setCap(gl.BLEND, p.desc.Blend)
	if p.desc.Blend {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	setCap(gl.DEPTH_TEST, p.desc.DepthTest)

	if ib != nil {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.name)
		gl.DrawElements(p.primitive, int32(cmd.IndexCount), gl.UNSIGNED_INT, gl.PtrOffset(0)) //nolint:gosec // bounded by buffer size
	} else {
		gl.DrawArrays(p.primitive, 0, int32(cmd.VertexCount)) //nolint:gosec // bounded by buffer size
	}

	for _, a := range p.desc.Layout.Attributes {
		gl.DisableVertexAttribArray(a.Location)
	}
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	return checkError("Draw")
}
