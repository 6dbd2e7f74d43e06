// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gpucore.Device on top of the gogpu/wgpu HAL.
//
// The device runs WGSL programs, either handed to the HAL as WGSL or
// compiled to SPIR-V with naga first (WithSPIRV). Every Draw is recorded in
// its own render pass that loads the current target, so draws issued by the
// debug renderers composite over whatever the application rendered before.
//
// A target must be selected before drawing:
//
//	dev, err := wgpu.New(halDevice, halQueue)
//	if err != nil {
//		return err
//	}
//	if err := dev.SetOffscreenTarget(800, 600); err != nil {
//		return err
//	}
//	// ... renderer.New(dev) and frames ...
//	img, err := dev.ReadPixels()
//
// Windowed applications call SetSurfaceTarget with the acquired swapchain
// view once per frame instead.
//
// The device is not safe for concurrent use. Operations that read back
// (ReadBuffer, ReadPixels) and buffer copies wait for the queue to idle.
package wgpu
