// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glscene/gl"
)

// pipelineKey identifies a render pipeline. layout is the signature of the
// vertex buffer layouts.
type pipelineKey struct {
	program  gl.Program
	topology gputypes.PrimitiveTopology
	layout   string
}

// vertexBinding is one vertex buffer bound for a draw.
type vertexBinding struct {
	buf    hal.Buffer
	offset uint64
}

// ClearColor sets the color used by Clear.
func (d *Device) ClearColor(r, g, b, a float32) {
	d.clearColor = gputypes.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)}
}

// Clear clears the color target. The target has no depth or stencil
// planes, so only ColorBufferBit has an effect.
func (d *Device) Clear(mask gl.ClearMask) error {
	if mask&gl.ColorBufferBit == 0 {
		return nil
	}
	return d.submit("glscene_clear", gputypes.LoadOpClear, func(hal.RenderPassEncoder) {})
}

// DrawArrays draws count vertices starting at first.
func (d *Device) DrawArrays(mode gl.Mode, first, count int) error {
	if first < 0 || count < 0 {
		return fmt.Errorf("wgpu: DrawArrays: negative first or count")
	}
	pc, err := d.prepareDraw(mode)
	if err != nil {
		return err
	}
	defer pc.release(d)
	if count == 0 {
		return nil
	}
	return d.submit("glscene_draw", gputypes.LoadOpLoad, func(rp hal.RenderPassEncoder) {
		pc.bind(rp)
		rp.Draw(uint32(count), 1, uint32(first), 0) //nolint:gosec // checked non-negative
	})
}

// DrawElements draws count indices of type typ read from the element
// buffer at byte offset.
func (d *Device) DrawElements(mode gl.Mode, count int, typ gl.Type, offset int) error {
	var format gputypes.IndexFormat
	switch typ {
	case gl.UnsignedShort:
		format = gputypes.IndexFormatUint16
	case gl.UnsignedInt:
		format = gputypes.IndexFormatUint32
	default:
		return unsupportedType(typ, "index")
	}
	if count < 0 || offset < 0 || offset%typ.Size() != 0 {
		return fmt.Errorf("wgpu: DrawElements: bad count %d or offset %d", count, offset)
	}
	eb, ok := d.buffers[d.vao.elements]
	if !ok || eb.buf == nil {
		return ErrNoElementBuffer
	}
	pc, err := d.prepareDraw(mode)
	if err != nil {
		return err
	}
	defer pc.release(d)
	if count == 0 {
		return nil
	}
	first := uint32(offset / typ.Size()) //nolint:gosec // checked non-negative
	return d.submit("glscene_draw_indexed", gputypes.LoadOpLoad, func(rp hal.RenderPassEncoder) {
		pc.bind(rp)
		rp.SetIndexBuffer(eb.buf, format, 0)
		rp.DrawIndexed(uint32(count), 1, first, 0, 0) //nolint:gosec // checked non-negative
	})
}

// preparedDraw is the pipeline and bindings of one draw. constants are
// buffers created for this draw only.
type preparedDraw struct {
	pipeline  hal.RenderPipeline
	bindGroup hal.BindGroup
	vertices  []vertexBinding
	constants []hal.Buffer
}

func (pc *preparedDraw) bind(rp hal.RenderPassEncoder) {
	rp.SetPipeline(pc.pipeline)
	if pc.bindGroup != nil {
		rp.SetBindGroup(0, pc.bindGroup, nil)
	}
	for i, v := range pc.vertices {
		rp.SetVertexBuffer(uint32(i), v.buf, v.offset) //nolint:gosec // few slots
	}
}

func (pc *preparedDraw) release(d *Device) {
	for _, b := range pc.constants {
		d.device.DestroyBuffer(b)
	}
}

// prepareDraw resolves the vertex inputs of the current program against
// the bound vertex array and finds or creates the pipeline.
func (d *Device) prepareDraw(mode gl.Mode) (*preparedDraw, error) {
	p := d.current
	if p == nil || !p.linked {
		return nil, ErrNoProgram
	}
	topology, err := topologyOf(mode)
	if err != nil {
		return nil, err
	}

	pc := &preparedDraw{bindGroup: p.bindGroup}
	layouts := make([]gputypes.VertexBufferLayout, 0, len(p.inputs))
	var sig strings.Builder
	for _, loc := range p.inputs {
		layout, vb, err := d.vertexInput(loc, pc)
		if err != nil {
			pc.release(d)
			return nil, err
		}
		layouts = append(layouts, layout)
		pc.vertices = append(pc.vertices, vb)
		a := layout.Attributes[0]
		fmt.Fprintf(&sig, "%d:%d:%v;", a.ShaderLocation, layout.ArrayStride, a.Format)
	}

	key := pipelineKey{program: p.handle, topology: topology, layout: sig.String()}
	pipeline, err := d.pipelines.GetOrCreate(key, func() (hal.RenderPipeline, error) {
		return d.createPipeline(p, topology, layouts)
	})
	if err != nil {
		pc.release(d)
		return nil, err
	}
	pc.pipeline = pipeline
	return pc, nil
}

// vertexInput builds the layout and binding of one vertex input. Inputs
// without an enabled array read the current constant through a
// zero-stride buffer.
func (d *Device) vertexInput(loc uint32, pc *preparedDraw) (gputypes.VertexBufferLayout, vertexBinding, error) {
	var layout gputypes.VertexBufferLayout
	a := d.vao.attribs[loc]
	if a == nil || !a.enabled {
		value, ok := d.constants[loc]
		if !ok {
			value = [4]float32{0, 0, 0, 1}
		}
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("glscene_constant_%d", loc),
			Size:  16,
			Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return layout, vertexBinding{}, fmt.Errorf("wgpu: constant attribute %d: %w", loc, err)
		}
		d.queue.WriteBuffer(buf, 0, float32Bytes(value[:]))
		pc.constants = append(pc.constants, buf)
		layout = gputypes.VertexBufferLayout{
			ArrayStride: 0,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: loc},
			},
		}
		return layout, vertexBinding{buf: buf}, nil
	}

	if a.typ != gl.Float {
		return layout, vertexBinding{}, unsupportedType(a.typ, "attribute")
	}
	format, ok := vertexFormat(a.size)
	if !ok {
		return layout, vertexBinding{}, &AttributeError{Location: loc, Reason: fmt.Sprintf("size %d", a.size)}
	}
	b, ok := d.buffers[a.buffer]
	if !ok || b.buf == nil {
		return layout, vertexBinding{}, &AttributeError{Location: loc, Reason: "no buffer data"}
	}
	stride := a.stride
	if stride == 0 {
		stride = a.size * a.typ.Size()
	}
	layout = gputypes.VertexBufferLayout{
		ArrayStride: uint64(stride), //nolint:gosec // stride is validated by the node
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: format, Offset: 0, ShaderLocation: loc},
		},
	}
	return layout, vertexBinding{buf: b.buf, offset: uint64(a.offset)}, nil //nolint:gosec // offset is validated by the node
}

func (d *Device) createPipeline(p *program, topology gputypes.PrimitiveTopology, layouts []gputypes.VertexBufferLayout) (hal.RenderPipeline, error) {
	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("glscene_program_%d_pipeline", p.handle),
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vs.module,
			EntryPoint: VertexEntry,
			Buffers:    layouts,
		},
		Fragment: &hal.FragmentState{
			Module:     p.fs.module,
			EntryPoint: FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    d.cfg.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline: %w", err)
	}
	d.logger().Debug("wgpu pipeline created", "program", p.handle, "topology", topology)
	return pipeline, nil
}

func topologyOf(m gl.Mode) (gputypes.PrimitiveTopology, error) {
	switch m {
	case gl.Points:
		return gputypes.PrimitiveTopologyPointList, nil
	case gl.Lines:
		return gputypes.PrimitiveTopologyLineList, nil
	case gl.LineStrip:
		return gputypes.PrimitiveTopologyLineStrip, nil
	case gl.Triangles:
		return gputypes.PrimitiveTopologyTriangleList, nil
	case gl.TriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip, nil
	default:
		var zero gputypes.PrimitiveTopology
		return zero, unsupportedMode(m)
	}
}

// submit encodes one render pass on the color target, submits it and
// waits for the GPU.
func (d *Device) submit(label string, load gputypes.LoadOp, record func(hal.RenderPassEncoder)) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       d.targetView,
				LoadOp:     load,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: d.clearColor,
			},
		},
	})
	record(rp)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, d.cfg.timeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait: %w", err)
	}
	if !ok {
		return ErrGPUTimeout
	}

	d.stats.Passes++
	if load == gputypes.LoadOpLoad {
		d.stats.Draws++
	}
	return nil
}
