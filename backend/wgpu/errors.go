// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/glscene/gl"
)

var (
	// ErrUnsupported is returned for GL features WebGPU cannot express.
	ErrUnsupported = errors.New("wgpu: unsupported")

	// ErrNoProgram is returned by draws without a linked current program.
	ErrNoProgram = errors.New("wgpu: no linked program in use")

	// ErrNoElementBuffer is returned by DrawElements without a bound,
	// filled element buffer.
	ErrNoElementBuffer = errors.New("wgpu: no element buffer bound")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("wgpu: nil DeviceProvider")

	// ErrNotHAL is returned when a provider does not expose HAL objects.
	ErrNotHAL = errors.New("wgpu: provider does not expose HAL types")

	// ErrGPUTimeout is returned when a submitted pass does not finish in time.
	ErrGPUTimeout = errors.New("wgpu: timed out waiting for GPU")
)

// UnsupportedError reports a mode or component type with no WebGPU
// equivalent. It unwraps to ErrUnsupported.
type UnsupportedError struct {
	What string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("wgpu: unsupported %s", e.What)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

func unsupportedMode(m gl.Mode) error {
	return &UnsupportedError{What: "mode " + m.String()}
}

func unsupportedType(t gl.Type, use string) error {
	return &UnsupportedError{What: use + " type " + t.String()}
}

// AttributeError reports a vertex input of the current program that cannot
// be fed from the current vertex-array state.
type AttributeError struct {
	Location uint32
	Reason   string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("wgpu: attribute %d: %s", e.Location, e.Reason)
}
