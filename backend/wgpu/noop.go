// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/glscene/backend"
)

func init() {
	backend.Register(backend.BackendNoop, func(cfg backend.Config) (backend.Device, error) {
		var opts []Option
		if cfg.Width > 0 && cfg.Height > 0 {
			opts = append(opts, WithSize(cfg.Width, cfg.Height))
		}
		return OpenNoop(opts...)
	})
}

// OpenNoop creates a Device on a new noop HAL instance. The noop HAL
// validates descriptors and compiles shaders but draws nothing, which makes
// it suitable for checking scenes without a GPU. Close releases the
// instance along with the device.
func OpenNoop(opts ...Option) (*Device, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpu: noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("wgpu: noop instance has no adapters")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: noop adapter: %w", err)
	}
	release := func() {
		open.Device.Destroy()
		instance.Destroy()
	}

	d, err := New(open.Device, open.Queue, opts...)
	if err != nil {
		release()
		return nil, err
	}
	d.release = release
	return d, nil
}

// Close destroys the device like Destroy, then releases the HAL device and
// instance if the Device created them.
func (d *Device) Close() {
	d.Destroy()
	if d.release != nil {
		d.release()
		d.release = nil
	}
}
