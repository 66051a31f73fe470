package backend

import (
	"errors"

	"github.com/gogpu/glscene/gl"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend names registered by the packages of this module.
const (
	// BackendRecorder records every device call (gl/recorder).
	BackendRecorder = "recorder"
	// BackendNoop is the wgpu device on a noop HAL instance (backend/wgpu).
	BackendNoop = "noop"
)

// Config sizes an opened device. Zero fields select the backend default.
type Config struct {
	Width, Height uint32
}

// Device is an opened device that owns its native resources.
// It must not be used after Close.
type Device interface {
	gl.Device

	// Close releases every resource the device holds.
	Close()
}
