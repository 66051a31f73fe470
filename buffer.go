package glscene

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/propdiff"
)

// Buffer owns a device buffer and binds it when rendered.
//
// Props:
//   - target: "array" (default) or "element_array"
//   - usage: "static", "dynamic" or "stream" (default)
//   - data: a numeric slice; untyped numbers are stored as float32 for
//     array buffers and uint16 for element buffers
type Buffer struct {
	node
	target gl.Target
	usage  gl.Usage
	data   []byte
	handle gl.Buffer
}

func newBuffer(id uint64) *Buffer {
	b := &Buffer{target: gl.ArrayBuffer, usage: gl.StreamDraw}
	b.init(b, TagBuffer, id, true, propdiff.Of("target", "array", "usage", "stream"))
	return b
}

// Target returns the validated binding target.
func (b *Buffer) Target() gl.Target { return b.target }

// Usage returns the validated usage hint.
func (b *Buffer) Usage() gl.Usage { return b.usage }

// Data returns the encoded buffer contents.
func (b *Buffer) Data() []byte { return b.data }

// Handle returns the device buffer, or gl.NoBuffer before mount.
func (b *Buffer) Handle() gl.Buffer { return b.handle }

// UpdateProps implements Node. A mounted buffer re-uploads when any prop
// changes.
func (b *Buffer) UpdateProps(d propdiff.Diff) error {
	next, err := b.applied(d)
	if err != nil {
		return err
	}
	dec := newDecoder(b.tag, next)
	target := gl.ArrayBuffer
	if s := dec.string("target", ""); s != "" {
		t, ok := gl.ParseTarget(s)
		if !ok {
			dec.fail("target", s, "unknown buffer target")
		}
		target = t
	}
	usage := gl.StreamDraw
	if s := dec.string("usage", ""); s != "" {
		u, ok := gl.ParseUsage(s)
		if !ok {
			dec.fail("usage", s, "unknown usage hint")
		}
		usage = u
	}
	if dec.err != nil {
		return dec.err
	}
	var data []byte
	if v, ok := dec.lookup("data"); ok {
		data, err = encodeData(v, target)
		if err != nil {
			return &PropError{Tag: b.tag, Key: "data", Value: v, Reason: err.Error()}
		}
	}

	b.props, b.target, b.usage, b.data = next, target, usage, data
	if b.handle != gl.NoBuffer && (d.Has("data") || d.Has("target") || d.Has("usage")) {
		return b.upload(b.root.dev)
	}
	return nil
}

// Mount allocates the device buffer and uploads the data.
func (b *Buffer) Mount(root *Root) error {
	b.bind(root)
	if b.handle != gl.NoBuffer {
		return nil
	}
	h, err := root.dev.CreateBuffer()
	if err != nil {
		return fmt.Errorf("glscene: create buffer: %w", err)
	}
	b.handle = h
	return b.upload(root.dev)
}

func (b *Buffer) upload(dev gl.Device) error {
	dev.BindBuffer(b.target, b.handle)
	err := dev.BufferData(b.target, b.data, b.usage)
	dev.BindBuffer(b.target, gl.NoBuffer)
	if err != nil {
		return fmt.Errorf("glscene: upload buffer %d: %w", b.handle, err)
	}
	Logger().Debug("buffer uploaded", "buffer", b.handle, "target", b.target, "bytes", len(b.data))
	return nil
}

// Unmount deletes the device buffer.
func (b *Buffer) Unmount() {
	if b.handle != gl.NoBuffer {
		b.root.dev.DeleteBuffer(b.handle)
		b.handle = gl.NoBuffer
	}
	b.node.Unmount()
}

// Render binds the buffer to its target.
func (b *Buffer) Render(f *Frame) error {
	f.dev.BindBuffer(b.target, b.handle)
	return nil
}

// encodeData converts a numeric slice to little-endian bytes.
func encodeData(v any, target gl.Target) ([]byte, error) {
	switch s := v.(type) {
	case []byte:
		return s, nil
	case []int8, []int16, []uint16, []int32, []uint32, []float32:
		return binary.Append(nil, binary.LittleEndian, s)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("want a numeric sequence, got %T", v)
	}
	if target == gl.ElementArrayBuffer {
		out := make([]uint16, rv.Len())
		for i := range out {
			f, ok := propdiff.ToFloat64(rv.Index(i).Interface())
			if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxUint16 {
				return nil, fmt.Errorf("element %d is not a u16 index", i)
			}
			out[i] = uint16(f)
		}
		return binary.Append(nil, binary.LittleEndian, out)
	}
	out, ok := toFloat32s(v)
	if !ok {
		return nil, fmt.Errorf("want a numeric sequence, got %T", v)
	}
	return binary.Append(nil, binary.LittleEndian, out)
}
