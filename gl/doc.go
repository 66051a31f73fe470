// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gl defines the immediate-mode graphics device consumed by glscene.
//
// The scene graph never talks to a concrete graphics API. Every node renders
// itself into calls on a [Device], which the host application supplies
// already bound to a valid surface. The contract follows the GL/WebGL object
// model: buffers, shader stages, programs and vertex-array objects are
// created, bound and deleted explicitly, and state calls affect subsequent
// draws.
//
// # Implementations
//
//   - gl/recorder: records every call as a typed command (tests, debugging)
//   - backend/wgpu: emulates the contract on top of gogpu/wgpu HAL devices
//
// # Handles
//
// Object handles are small integer newtypes. The zero value of every handle
// type means "no object"; binding a zero handle unbinds.
//
// # Thread Safety
//
// Devices are NOT thread-safe. All calls must come from the render thread.
package gl
