// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glscene/gl"
)

// uniformAlign is the WebGPU default minUniformBufferOffsetAlignment.
const uniformAlign = 256

// uniformKind is the WGSL type of a uniform binding. cols is zero for
// scalars and vectors.
type uniformKind struct {
	comps int
	cols  int
	isInt bool
}

// size returns the host-shareable size of the type.
func (k uniformKind) size() uint64 {
	switch {
	case k.cols == 0:
		return uint64(4 * k.comps)
	case k.cols == 3:
		// vec3 columns are padded to 16 bytes.
		return 48
	default:
		return uint64(4 * k.cols * k.cols)
	}
}

// bindingSize rounds size up to 16 bytes.
func (k uniformKind) bindingSize() uint64 {
	return (k.size() + 15) &^ 15
}

var uniformKinds = map[string]uniformKind{
	"f32":         {comps: 1},
	"i32":         {comps: 1, isInt: true},
	"vec2<f32>":   {comps: 2},
	"vec3<f32>":   {comps: 3},
	"vec4<f32>":   {comps: 4},
	"vec2f":       {comps: 2},
	"vec3f":       {comps: 3},
	"vec4f":       {comps: 4},
	"vec2<i32>":   {comps: 2, isInt: true},
	"vec3<i32>":   {comps: 3, isInt: true},
	"vec4<i32>":   {comps: 4, isInt: true},
	"vec2i":       {comps: 2, isInt: true},
	"vec3i":       {comps: 3, isInt: true},
	"vec4i":       {comps: 4, isInt: true},
	"mat2x2<f32>": {comps: 4, cols: 2},
	"mat3x3<f32>": {comps: 9, cols: 3},
	"mat4x4<f32>": {comps: 16, cols: 4},
	"mat2x2f":     {comps: 4, cols: 2},
	"mat3x3f":     {comps: 9, cols: 3},
	"mat4x4f":     {comps: 16, cols: 4},
}

func parseUniformKind(s string) (uniformKind, bool) {
	k, ok := uniformKinds[strings.ReplaceAll(s, " ", "")]
	return k, ok
}

// uniformSlot is one uniform binding and its range in the program's
// uniform buffer.
type uniformSlot struct {
	name    string
	binding uint32
	kind    uniformKind
	offset  uint64
}

// createUniformStorage lays out the uniform buffer, creates the bind group
// layout, pipeline layout and bind group of p.
func (d *Device) createUniformStorage(p *program) error {
	var size uint64
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(p.uniforms))
	for i := range p.uniforms {
		u := &p.uniforms[i]
		u.offset = size
		size += (u.kind.bindingSize() + uniformAlign - 1) &^ (uniformAlign - 1)
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    u.binding,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}

	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   fmt.Sprintf("glscene_program_%d_layout", p.handle),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.bindLayout = layout

	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            fmt.Sprintf("glscene_program_%d_pipe_layout", p.handle),
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	if len(p.uniforms) == 0 {
		return nil
	}
	ubuf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("glscene_program_%d_uniforms", p.handle),
		Size:  size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	p.ubuf = ubuf
	p.data = make([]byte, size)
	d.queue.WriteBuffer(ubuf, 0, p.data)

	groupEntries := make([]gputypes.BindGroupEntry, 0, len(p.uniforms))
	for _, u := range p.uniforms {
		groupEntries = append(groupEntries, gputypes.BindGroupEntry{
			Binding: u.binding,
			Resource: gputypes.BufferBinding{
				Buffer: ubuf.NativeHandle(), Offset: u.offset, Size: u.kind.bindingSize(),
			},
		})
	}
	bindGroup, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   fmt.Sprintf("glscene_program_%d_bind", p.handle),
		Layout:  layout,
		Entries: groupEntries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	p.bindGroup = bindGroup
	return nil
}

// destroyUniformStorage releases resources in reverse creation order.
func (d *Device) destroyUniformStorage(p *program) {
	if p.bindGroup != nil {
		d.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.ubuf != nil {
		d.device.DestroyBuffer(p.ubuf)
		p.ubuf = nil
	}
	if p.pipeLayout != nil {
		d.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		d.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	p.data = nil
}

// slot returns the uniform at loc of the current program if its type has
// n components of the given scalar kind.
func (d *Device) slot(loc gl.UniformLocation, n int, isInt bool, matrix bool) (*uniformSlot, bool) {
	p := d.current
	if p == nil || !p.linked || loc < 0 || int(loc) >= len(p.uniforms) {
		return nil, false
	}
	u := &p.uniforms[loc]
	if u.kind.comps != n || u.kind.isInt != isInt || (u.kind.cols != 0) != matrix {
		d.logger().Warn("wgpu uniform type mismatch", "uniform", u.name, "components", n)
		return nil, false
	}
	return u, true
}

// write stores b at the slot offset and uploads it.
func (d *Device) write(u *uniformSlot, b []byte) {
	p := d.current
	copy(p.data[u.offset:], b)
	d.queue.WriteBuffer(p.ubuf, u.offset, b)
}

func (d *Device) uniformf(loc gl.UniformLocation, v []float32) {
	if u, ok := d.slot(loc, len(v), false, false); ok {
		d.write(u, float32Bytes(v))
	}
}

func (d *Device) uniformi(loc gl.UniformLocation, v []int32) {
	if u, ok := d.slot(loc, len(v), true, false); ok {
		b := make([]byte, 0, 4*len(v))
		for _, x := range v {
			b = binary.LittleEndian.AppendUint32(b, uint32(x)) //nolint:gosec // bit pattern
		}
		d.write(u, b)
	}
}

// uniformMatrix uploads an n×n column-major matrix. vec3 columns are
// padded to 16 bytes.
func (d *Device) uniformMatrix(loc gl.UniformLocation, n int, transpose bool, v []float32) {
	if len(v) != n*n {
		return
	}
	u, ok := d.slot(loc, n*n, false, true)
	if !ok {
		return
	}
	stride := n
	if n == 3 {
		stride = 4
	}
	cols := make([]float32, stride*n)
	for c := range n {
		for r := range n {
			x := v[c*n+r]
			if transpose {
				x = v[r*n+c]
			}
			cols[c*stride+r] = x
		}
	}
	d.write(u, float32Bytes(cols))
}

func float32Bytes(v []float32) []byte {
	b := make([]byte, 0, 4*len(v))
	for _, x := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(x))
	}
	return b
}

// Uniform1i sets an i32 uniform of the current program.
func (d *Device) Uniform1i(loc gl.UniformLocation, v int32) { d.uniformi(loc, []int32{v}) }

// Uniform1f sets an f32 uniform of the current program.
func (d *Device) Uniform1f(loc gl.UniformLocation, v float32) { d.uniformf(loc, []float32{v}) }

func (d *Device) Uniform2fv(loc gl.UniformLocation, v []float32) { d.uniformf(loc, v) }
func (d *Device) Uniform3fv(loc gl.UniformLocation, v []float32) { d.uniformf(loc, v) }
func (d *Device) Uniform4fv(loc gl.UniformLocation, v []float32) { d.uniformf(loc, v) }
func (d *Device) Uniform2iv(loc gl.UniformLocation, v []int32)   { d.uniformi(loc, v) }
func (d *Device) Uniform3iv(loc gl.UniformLocation, v []int32)   { d.uniformi(loc, v) }
func (d *Device) Uniform4iv(loc gl.UniformLocation, v []int32)   { d.uniformi(loc, v) }

func (d *Device) UniformMatrix2fv(loc gl.UniformLocation, transpose bool, v []float32) {
	d.uniformMatrix(loc, 2, transpose, v)
}

func (d *Device) UniformMatrix3fv(loc gl.UniformLocation, transpose bool, v []float32) {
	d.uniformMatrix(loc, 3, transpose, v)
}

func (d *Device) UniformMatrix4fv(loc gl.UniformLocation, transpose bool, v []float32) {
	d.uniformMatrix(loc, 4, transpose, v)
}
