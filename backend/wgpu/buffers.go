// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glscene/gl"
)

// buffer is the HAL side of a gl.Buffer. The HAL buffer is re-created on
// every BufferData call; size is the length of the last upload.
type buffer struct {
	buf   hal.Buffer
	size  uint64
	usage gl.Usage
}

// attribState is one vertex input slot of a vertex array.
type attribState struct {
	enabled    bool
	buffer     gl.Buffer
	size       int
	typ        gl.Type
	normalized bool
	stride     int
	offset     int
}

// vertexArray captures attribute pointers and the element buffer.
type vertexArray struct {
	attribs  map[uint32]*attribState
	elements gl.Buffer
}

func newVertexArray() vertexArray {
	return vertexArray{attribs: make(map[uint32]*attribState)}
}

func (v *vertexArray) attrib(index uint32) *attribState {
	a, ok := v.attribs[index]
	if !ok {
		a = &attribState{}
		v.attribs[index] = a
	}
	return a
}

// CreateBuffer allocates a buffer handle. Storage is created by BufferData.
func (d *Device) CreateBuffer() (gl.Buffer, error) {
	h := gl.Buffer(d.newID())
	d.buffers[h] = &buffer{}
	return h, nil
}

// DeleteBuffer destroys a buffer and unbinds it.
func (d *Device) DeleteBuffer(h gl.Buffer) {
	b, ok := d.buffers[h]
	if !ok {
		return
	}
	if b.buf != nil {
		d.device.DestroyBuffer(b.buf)
	}
	delete(d.buffers, h)
	if d.arrayBuffer == h {
		d.arrayBuffer = gl.NoBuffer
	}
	if d.vao.elements == h {
		d.vao.elements = gl.NoBuffer
	}
}

// BindBuffer binds h to target. The element binding belongs to the bound
// vertex array.
func (d *Device) BindBuffer(target gl.Target, h gl.Buffer) {
	switch target {
	case gl.ArrayBuffer:
		d.arrayBuffer = h
	case gl.ElementArrayBuffer:
		d.vao.elements = h
	}
}

func (d *Device) bound(target gl.Target) gl.Buffer {
	if target == gl.ElementArrayBuffer {
		return d.vao.elements
	}
	return d.arrayBuffer
}

// BufferData replaces the storage of the buffer bound to target.
func (d *Device) BufferData(target gl.Target, data []byte, usage gl.Usage) error {
	h := d.bound(target)
	b, ok := d.buffers[h]
	if !ok {
		return fmt.Errorf("wgpu: BufferData(%s): no buffer bound", target)
	}
	if b.buf != nil {
		d.device.DestroyBuffer(b.buf)
		b.buf, b.size = nil, 0
	}
	b.usage = usage
	if len(data) == 0 {
		return nil
	}

	// Queue writes must be a multiple of four bytes.
	padded := data
	if rem := len(data) % 4; rem != 0 {
		padded = make([]byte, len(data)+4-rem)
		copy(padded, data)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("glscene_buffer_%d", h),
		Size:  uint64(len(padded)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create buffer %d: %w", h, err)
	}
	d.queue.WriteBuffer(buf, 0, padded)
	b.buf, b.size = buf, uint64(len(data))
	d.logger().Debug("wgpu buffer upload", "buffer", h, "target", target, "bytes", len(data), "usage", usage)
	return nil
}

// CreateVertexArray allocates an empty vertex array.
func (d *Device) CreateVertexArray() (gl.VertexArray, error) {
	h := gl.VertexArray(d.newID())
	v := newVertexArray()
	d.vaos[h] = &v
	return h, nil
}

// BindVertexArray makes h current. NoVertexArray selects the default state.
func (d *Device) BindVertexArray(h gl.VertexArray) {
	if v, ok := d.vaos[h]; ok {
		d.vao = v
		return
	}
	d.vao = &d.defaultVAO
}

// DeleteVertexArray deletes h, falling back to the default state if h was
// bound.
func (d *Device) DeleteVertexArray(h gl.VertexArray) {
	v, ok := d.vaos[h]
	if !ok {
		return
	}
	if d.vao == v {
		d.vao = &d.defaultVAO
	}
	delete(d.vaos, h)
}

// EnableVertexAttribArray switches index to array mode.
func (d *Device) EnableVertexAttribArray(index uint32) {
	d.vao.attrib(index).enabled = true
}

// VertexAttribPointer records an array pointer into the bound array buffer.
// Non-float types are rejected at draw time.
func (d *Device) VertexAttribPointer(index uint32, size int, typ gl.Type, normalized bool, stride, offset int) {
	a := d.vao.attrib(index)
	a.buffer = d.arrayBuffer
	a.size = size
	a.typ = typ
	a.normalized = normalized
	a.stride = stride
	a.offset = offset
}

// VertexAttrib1f sets the constant value of index.
func (d *Device) VertexAttrib1f(index uint32, x float32) {
	d.constants[index] = [4]float32{x, 0, 0, 1}
}

// VertexAttrib2f sets the constant value of index.
func (d *Device) VertexAttrib2f(index uint32, x, y float32) {
	d.constants[index] = [4]float32{x, y, 0, 1}
}

// VertexAttrib3f sets the constant value of index.
func (d *Device) VertexAttrib3f(index uint32, x, y, z float32) {
	d.constants[index] = [4]float32{x, y, z, 1}
}

// VertexAttrib4f sets the constant value of index.
func (d *Device) VertexAttrib4f(index uint32, x, y, z, w float32) {
	d.constants[index] = [4]float32{x, y, z, w}
}

// vertexFormat maps a float attribute of 1 to 4 components.
func vertexFormat(size int) (gputypes.VertexFormat, bool) {
	switch size {
	case 1:
		return gputypes.VertexFormatFloat32, true
	case 2:
		return gputypes.VertexFormatFloat32x2, true
	case 3:
		return gputypes.VertexFormatFloat32x3, true
	case 4:
		return gputypes.VertexFormatFloat32x4, true
	default:
		var zero gputypes.VertexFormat
		return zero, false
	}
}
