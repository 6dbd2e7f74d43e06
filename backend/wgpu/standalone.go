// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/debugdraw"
)

// ErrNoAdapter is returned by NewStandalone when the backend exposes no adapter.
var ErrNoAdapter = errors.New("wgpu: no GPU adapters found")

// standalone holds the HAL objects a Device opened itself.
type standalone struct {
	instance hal.Instance
	device   hal.Device
	adapter  gputypes.AdapterInfo
}

// NewStandalone opens its own device on the best registered HAL backend,
// preferring discrete and integrated GPUs. Backends register themselves
// when imported, e.g. with a blank import of
// github.com/gogpu/wgpu/hal/allbackends. Destroy closes the device.
func NewStandalone(opts ...Option) (*Device, error) {
	backend, err := hal.SelectBestBackend()
	if err != nil {
		return nil, fmt.Errorf("wgpu: select backend: %w", err)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	d, err := New(openDev.Device, openDev.Queue, opts...)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.owned = &standalone{instance: instance, device: openDev.Device, adapter: selected.Info}
	debugdraw.Logger().Info("wgpu: standalone device opened",
		"backend", backend.Variant().String(), "adapter", selected.Info.Name)
	return d, nil
}

// AdapterInfo returns the adapter of a standalone device, or the zero value
// for borrowed devices.
func (d *Device) AdapterInfo() gputypes.AdapterInfo {
	if d.owned == nil {
		return gputypes.AdapterInfo{}
	}
	return d.owned.adapter
}

func (d *Device) closeStandalone() {
	if d.owned == nil {
		return
	}
	if err := d.device.WaitIdle(); err != nil {
		debugdraw.Logger().Warn("wgpu: wait idle before close", "err", err)
	}
	d.owned.device.Destroy()
	d.owned.instance.Destroy()
	d.owned = nil
}
