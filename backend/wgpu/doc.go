// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements [gl.Device] on top of the gogpu/wgpu HAL.
//
// Scene nodes speak a small GL-style API: handles, bind points, a current
// program, vertex-array state and immediate draws. This package keeps that
// state on the CPU and turns every draw into WebGPU work:
//
//   - shaders are WGSL, compiled to SPIR-V by gogpu/naga
//   - a program links a vs_main and an fs_main stage; vertex inputs are
//     reflected from @location declarations, uniforms from
//     @group(0) @binding(N) var<uniform> declarations
//   - each program owns one uniform buffer and one bind group
//   - render pipelines are cached per program, topology and vertex layout
//   - each draw or clear is one render pass on an offscreen color target,
//     submitted and fenced before the call returns
//
// # Limitations
//
// Only float vertex attributes are supported. line_loop and triangle_fan
// topologies and u8 element indices have no WebGPU equivalent and return
// [ErrUnsupported].
//
// # Usage
//
//	dev, err := wgpu.New(halDevice, halQueue, wgpu.WithSize(640, 480))
//	if err != nil {
//		return err
//	}
//	defer dev.Destroy()
//	root := glscene.NewRoot(dev)
//
// A host that already owns a device passes its [gpucontext.DeviceProvider]
// to [NewFromProvider]. [OpenNoop] builds a device on the noop HAL, which
// compiles and validates everything but draws nothing; importing this
// package registers it with the backend registry as "noop".
//
// Device is not safe for concurrent use.
package wgpu
