// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the WebGPU row alignment of texture-buffer copies.
const copyPitchAlignment = 256

// target is the color attachment draws render into, plus the depth
// attachment for offscreen targets. Surface views are borrowed.
type target struct {
	view          hal.TextureView
	format        gputypes.TextureFormat
	width, height uint32

	// Owned only for offscreen targets.
	colorTex  hal.Texture
	depthTex  hal.Texture
	depthView hal.TextureView
}

func (t *target) offscreen() bool { return t.colorTex != nil }

// SetSurfaceTarget makes draws render into a borrowed view, typically the
// swapchain texture acquired for the current frame. Surface targets have no
// depth attachment.
func (d *Device) SetSurfaceTarget(view hal.TextureView, width, height uint32) {
	d.releaseTarget()
	d.target = &target{view: view, format: d.surfaceFormat, width: width, height: height}
}

// SetOffscreenTarget allocates an RGBA8 color texture and a depth texture
// of the given size, clears both and makes draws render into them.
func (d *Device) SetOffscreenTarget(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("wgpu: offscreen target %dx%d: %w", width, height, ErrNoTarget)
	}
	d.releaseTarget()

	size := hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	t := &target{format: gputypes.TextureFormatRGBA8Unorm, width: width, height: height}

	colorTex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "debugdraw_target_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        t.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target texture: %w", err)
	}
	t.colorTex = colorTex

	view, err := d.device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: "debugdraw_target_color_view",
	})
	if err != nil {
		d.destroyTarget(t)
		return fmt.Errorf("wgpu: create target view: %w", err)
	}
	t.view = view

	depthTex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "debugdraw_target_depth",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        depthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		d.destroyTarget(t)
		return fmt.Errorf("wgpu: create depth texture: %w", err)
	}
	t.depthTex = depthTex

	depthView, err := d.device.CreateTextureView(depthTex, &hal.TextureViewDescriptor{
		Label: "debugdraw_target_depth_view",
	})
	if err != nil {
		d.destroyTarget(t)
		return fmt.Errorf("wgpu: create depth view: %w", err)
	}
	t.depthView = depthView

	d.target = t
	return d.Clear(gputypes.Color{})
}

// Clear clears the current target to c and its depth attachment to 1.
func (d *Device) Clear(c gputypes.Color) error {
	if d.target == nil {
		return ErrNoTarget
	}
	return d.submit("debugdraw_clear", func(enc hal.CommandEncoder) error {
		rp := enc.BeginRenderPass(d.passDescriptor(gputypes.LoadOpClear, c))
		rp.End()
		return nil
	})
}

// TargetSize returns the size of the current target, or zero without one.
func (d *Device) TargetSize() (width, height uint32) {
	if d.target == nil {
		return 0, 0
	}
	return d.target.width, d.target.height
}

func (d *Device) passDescriptor(load gputypes.LoadOp, clear gputypes.Color) *hal.RenderPassDescriptor {
	desc := &hal.RenderPassDescriptor{
		Label: "debugdraw_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.target.view,
			LoadOp:     load,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clear,
		}},
	}
	if d.target.depthView != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            d.target.depthView,
			DepthLoadOp:     load,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
			StencilLoadOp:   gputypes.LoadOpLoad,
			StencilStoreOp:  gputypes.StoreOpDiscard,
			StencilReadOnly: true,
		}
	}
	return desc
}

// ReadPixels copies the offscreen target back to the CPU.
func (d *Device) ReadPixels() (*image.RGBA, error) {
	if d.target == nil {
		return nil, ErrNoTarget
	}
	if !d.target.offscreen() {
		return nil, ErrNotOffscreen
	}
	w, h := d.target.width, d.target.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	span := uint64(alignedBytesPerRow) * uint64(h)

	data, err := d.readback(span, func(enc hal.CommandEncoder, staging hal.Buffer) {
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: d.target.colorTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		enc.CopyTextureToBuffer(d.target.colorTex, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: d.target.colorTex, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		enc.TransitionTextures([]hal.TextureBarrier{{
			Texture: d.target.colorTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
	}, 0, span)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := range int(h) {
		src := data[row*int(alignedBytesPerRow):][:bytesPerRow]
		copy(img.Pix[row*img.Stride:], src)
	}
	return img, nil
}

func (d *Device) releaseTarget() {
	if d.target == nil {
		return
	}
	d.destroyTarget(d.target)
	d.target = nil
}

func (d *Device) destroyTarget(t *target) {
	if !t.offscreen() {
		return
	}
	if t.depthView != nil {
		d.device.DestroyTextureView(t.depthView)
	}
	if t.depthTex != nil {
		d.device.DestroyTexture(t.depthTex)
	}
	if t.view != nil {
		d.device.DestroyTextureView(t.view)
	}
	d.device.DestroyTexture(t.colorTex)
}
