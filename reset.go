package glscene

import (
	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/propdiff"
)

// Reset clears the color buffer to its color prop.
//
// Props:
//   - color: RGBA, four numbers, default [0, 0, 0, 0]
type Reset struct {
	node
	color [4]float32
}

func newReset(id uint64) *Reset {
	r := &Reset{}
	r.init(r, TagReset, id, true, propdiff.Of("color", []float32{0, 0, 0, 0}))
	return r
}

// Color returns the validated clear color.
func (r *Reset) Color() [4]float32 { return r.color }

// UpdateProps implements Node.
func (r *Reset) UpdateProps(d propdiff.Diff) error {
	next, err := r.applied(d)
	if err != nil {
		return err
	}
	dec := newDecoder(r.tag, next)
	c := dec.floats("color")
	if dec.err != nil {
		return dec.err
	}
	var color [4]float32
	if c != nil {
		if len(c) != 4 {
			return &PropError{Tag: r.tag, Key: "color", Value: c, Reason: "want 4 components"}
		}
		copy(color[:], c)
	}
	r.props, r.color = next, color
	return nil
}

// Render sets the clear color and clears the color buffer.
func (r *Reset) Render(f *Frame) error {
	f.dev.ClearColor(r.color[0], r.color[1], r.color[2], r.color[3])
	return f.dev.Clear(gl.ColorBufferBit)
}
