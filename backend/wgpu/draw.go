// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/debugdraw/gpucore"
)

// Draw implements gpucore.Device. Each draw is one render pass that loads
// the current target, submitted and waited on before returning.
func (d *Device) Draw(cmd *gpucore.DrawCommand) error {
	if d.target == nil {
		return ErrNoTarget
	}
	p, ok := d.programs[cmd.Program]
	if !ok {
		return fmt.Errorf("wgpu: program %d: %w", cmd.Program, gpucore.ErrUnknownResource)
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
			return fmt.Errorf("wgpu: %d indices in %d-byte buffer: %w", cmd.IndexCount, ib.size, gpucore.ErrOutOfBounds)
		}
	}

	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: p.uniform.NativeHandle(), Offset: 0, Size: gpucore.UniformsSize,
		}},
	}
	if p.desc.Textured {
		tex, ok := d.textures[cmd.Texture]
		if !ok {
			return fmt.Errorf("wgpu: texture %d: %w", cmd.Texture, gpucore.ErrUnknownResource)
		}
		smp, ok := d.samplers[cmd.Sampler]
		if !ok {
			return fmt.Errorf("wgpu: sampler %d: %w", cmd.Sampler, gpucore.ErrUnknownResource)
		}
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: tex.view.NativeHandle()}},
			gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: smp.NativeHandle()}},
		)
	}

	pl, err := d.pipeline(p, pipelineKey{format: d.target.format, depth: d.target.depthView != nil})
	if err != nil {
		return err
	}
	if err := d.queue.WriteBuffer(p.uniform, 0, cmd.Uniforms.Bytes()); err != nil {
		return fmt.Errorf("wgpu: write uniforms: %w", err)
	}
	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.desc.Label + "_bind",
		Layout:  p.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	defer d.device.DestroyBindGroup(bindGroup)

	return d.submit("debugdraw_draw", func(enc hal.CommandEncoder) error {
		rp := enc.BeginRenderPass(d.passDescriptor(gputypes.LoadOpLoad, gputypes.Color{}))
		rp.SetPipeline(pl)
		rp.SetBindGroup(0, bindGroup, nil)
		rp.SetVertexBuffer(0, vb.buf, 0)
		if ib != nil {
			rp.SetIndexBuffer(ib.buf, gputypes.IndexFormatUint32, 0)
			rp.DrawIndexed(cmd.IndexCount, 1, 0, 0, 0)
		} else {
			rp.Draw(cmd.VertexCount, 1, 0, 0)
		}
		rp.End()
		return nil
	})
}
