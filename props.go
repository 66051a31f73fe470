package glscene

import (
	"math"
	"reflect"

	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/propdiff"
)

// decoder reads typed values out of a prop record. The first failure
// sticks; later reads return defaults and err reports the first problem.
type decoder struct {
	tag Tag
	rec *propdiff.Record
	err error
}

func newDecoder(tag Tag, rec *propdiff.Record) *decoder {
	return &decoder{tag: tag, rec: rec}
}

func (d *decoder) fail(key string, v any, reason string) {
	if d.err == nil {
		d.err = &PropError{Tag: d.tag, Key: key, Value: v, Reason: reason}
	}
}

// lookup returns the value under key, treating nil as absent.
func (d *decoder) lookup(key string) (any, bool) {
	v, ok := d.rec.Get(key)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (d *decoder) has(key string) bool {
	_, ok := d.lookup(key)
	return ok
}

func (d *decoder) string(key, def string) string {
	v, ok := d.lookup(key)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, v, "want a string")
		return def
	}
	return s
}

func (d *decoder) bool(key string, def bool) bool {
	v, ok := d.lookup(key)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(key, v, "want a bool")
		return def
	}
	return b
}

func (d *decoder) number(key string, def float64) float64 {
	v, ok := d.lookup(key)
	if !ok {
		return def
	}
	f, ok := propdiff.ToFloat64(v)
	if !ok {
		d.fail(key, v, "want a number")
		return def
	}
	return f
}

// int reads a non-negative integer.
func (d *decoder) int(key string, def int) int {
	v, ok := d.lookup(key)
	if !ok {
		return def
	}
	f, ok := propdiff.ToFloat64(v)
	if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		d.fail(key, v, "want a non-negative integer")
		return def
	}
	return int(f)
}

// floats reads a numeric sequence as float32s. It returns nil when the key
// is absent.
func (d *decoder) floats(key string) []float32 {
	v, ok := d.lookup(key)
	if !ok {
		return nil
	}
	out, ok := toFloat32s(v)
	if !ok {
		d.fail(key, v, "want a sequence of numbers")
		return nil
	}
	return out
}

func (d *decoder) mode(key string, def gl.Mode) gl.Mode {
	s := d.string(key, "")
	if s == "" {
		return def
	}
	m, ok := gl.ParseMode(s)
	if !ok {
		d.fail(key, s, "unknown primitive mode")
		return def
	}
	return m
}

// glType reads a component type restricted to allowed.
func (d *decoder) glType(key string, def gl.Type, allowed ...gl.Type) gl.Type {
	s := d.string(key, "")
	if s == "" {
		return def
	}
	t, ok := gl.ParseType(s)
	if !ok {
		d.fail(key, s, "unknown component type")
		return def
	}
	for _, a := range allowed {
		if a == t {
			return t
		}
	}
	d.fail(key, s, "component type not allowed here")
	return def
}

func toFloat32s(v any) ([]float32, bool) {
	switch s := v.(type) {
	case []float32:
		return s, true
	case []float64:
		out := make([]float32, len(s))
		for i, f := range s {
			out[i] = float32(f)
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]float32, rv.Len())
	for i := range out {
		f, ok := propdiff.ToFloat64(rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}

func toInt32s(v any) ([]int32, bool) {
	if s, ok := v.([]int32); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]int32, rv.Len())
	for i := range out {
		f, ok := propdiff.ToFloat64(rv.Index(i).Interface())
		if !ok || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return nil, false
		}
		out[i] = int32(f)
	}
	return out, true
}
