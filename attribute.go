package glscene

import (
	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/propdiff"
)

// Attribute configures one vertex attribute.
//
// The attribute is located by index when the index prop is set, otherwise
// by name through the active program. Two forms are accepted:
//
//   - fixed: {fixed: true, value: [1 to 4 numbers]} sets a constant value
//   - array: {size: 1..4, type, normalized, stride, offset} points the
//     attribute at the bound array buffer
type Attribute struct {
	node
	cfg attributeConfig
}

type attributeConfig struct {
	name     string
	index    int
	hasIndex bool

	fixed bool
	value []float32

	size       int
	typ        gl.Type
	normalized bool
	stride     int
	offset     int
}

func newAttribute(id uint64) *Attribute {
	a := &Attribute{cfg: attributeConfig{size: 4, typ: gl.Float}}
	a.init(a, TagAttribute, id, true, nil)
	return a
}

// Name returns the attribute name, which may be empty.
func (a *Attribute) Name() string { return a.cfg.name }

// Fixed reports whether the attribute is a constant value.
func (a *Attribute) Fixed() bool { return a.cfg.fixed }

// UpdateProps implements Node.
func (a *Attribute) UpdateProps(d propdiff.Diff) error {
	next, err := a.applied(d)
	if err != nil {
		return err
	}
	dec := newDecoder(a.tag, next)
	cfg := attributeConfig{
		name:       dec.string("name", ""),
		hasIndex:   dec.has("index"),
		index:      dec.int("index", 0),
		fixed:      dec.bool("fixed", false),
		value:      dec.floats("value"),
		size:       dec.int("size", 4),
		typ:        dec.glType("type", gl.Float, gl.Byte, gl.Short, gl.UnsignedByte, gl.UnsignedShort, gl.Float),
		normalized: dec.bool("normalized", false),
		stride:     dec.int("stride", 0),
		offset:     dec.int("offset", 0),
	}
	if dec.err == nil && !cfg.fixed && (cfg.size < 1 || cfg.size > 4) {
		dec.fail("size", cfg.size, "want 1 to 4 components")
	}
	if dec.err != nil {
		return dec.err
	}
	a.props, a.cfg = next, cfg
	return nil
}

// location resolves the attribute index for this frame.
func (a *Attribute) location(f *Frame) (uint32, bool) {
	if a.cfg.hasIndex {
		return uint32(a.cfg.index), true //nolint:gosec // validated non-negative
	}
	p := f.Program()
	if p == nil || a.cfg.name == "" {
		Logger().Warn("attribute has no index and no active program", "node", a.id, "name", a.cfg.name)
		return 0, false
	}
	loc := p.Attribute(a.cfg.name)
	if loc < 0 {
		Logger().Warn("attribute not found in program", "node", a.id, "name", a.cfg.name)
		return 0, false
	}
	return uint32(loc), true //nolint:gosec // checked above
}

// Render issues the fixed value or the array pointer for the attribute.
// A fixed value with other than 1 to 4 components fails with
// UnsupportedSizeError.
func (a *Attribute) Render(f *Frame) error {
	if a.cfg.fixed {
		v := a.cfg.value
		if len(v) < 1 || len(v) > 4 {
			return &UnsupportedSizeError{Size: len(v)}
		}
		loc, ok := a.location(f)
		if !ok {
			return nil
		}
		switch len(v) {
		case 1:
			f.dev.VertexAttrib1f(loc, v[0])
		case 2:
			f.dev.VertexAttrib2f(loc, v[0], v[1])
		case 3:
			f.dev.VertexAttrib3f(loc, v[0], v[1], v[2])
		case 4:
			f.dev.VertexAttrib4f(loc, v[0], v[1], v[2], v[3])
		}
		return nil
	}

	loc, ok := a.location(f)
	if !ok {
		return nil
	}
	f.dev.EnableVertexAttribArray(loc)
	f.dev.VertexAttribPointer(loc, a.cfg.size, a.cfg.typ, a.cfg.normalized, a.cfg.stride, a.cfg.offset)
	return nil
}
