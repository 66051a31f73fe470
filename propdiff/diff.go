package propdiff

import (
	"reflect"
	"strings"
)

// PathSeparator splits flattened keys into nested record paths.
const PathSeparator = "-"

// Change is a single (key, new value) pair.
type Change struct {
	Key   string
	Value any
}

// Diff is an ordered list of changes.
type Diff []Change

// Keys returns the changed keys in order.
func (d Diff) Keys() []string {
	keys := make([]string, len(d))
	for i, c := range d {
		keys[i] = c.Key
	}
	return keys
}

// Has reports whether key changed.
func (d Diff) Has(key string) bool {
	for _, c := range d {
		if c.Key == key {
			return true
		}
	}
	return false
}

// HasPrefix reports whether any changed key is prefix itself or routes into
// the nested record named prefix.
func (d Diff) HasPrefix(prefix string) bool {
	for _, c := range d {
		if c.Key == prefix || strings.HasPrefix(c.Key, prefix+PathSeparator) {
			return true
		}
	}
	return false
}

// Compute returns the changes that turn prev into curr.
//
// Keys are visited in curr's order; the reserved "children" key is skipped.
// Keys present only in prev are not reported. A nil prev is an empty record.
func Compute(prev, curr *Record) (Diff, error) {
	var out Diff
	if curr == nil {
		return out, nil
	}
	for _, f := range curr.fields {
		if f.Key == ChildrenKey {
			continue
		}
		eq, err := equal(f.Key, prev.Value(f.Key), f.Value)
		if err != nil {
			return nil, err
		}
		if !eq {
			out = append(out, Change{Key: f.Key, Value: f.Value})
		}
	}
	return out, nil
}

// Apply assigns every change onto target, routing flattened keys into
// nested records. Intermediate records are never created. A nil target
// accepts only an empty diff.
func Apply(d Diff, target *Record) error {
	if target == nil && len(d) > 0 {
		return &PathError{Key: d[0].Key}
	}
	for _, c := range d {
		path := strings.Split(c.Key, PathSeparator)
		last := path[len(path)-1]
		rec := target
		for _, seg := range path[:len(path)-1] {
			next, ok := rec.Value(seg).(*Record)
			if !ok || next == nil {
				return &PathError{Key: c.Key, Segment: seg}
			}
			rec = next
		}
		rec.Set(last, c.Value)
	}
	return nil
}

// KindOf classifies v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNil
	case bool:
		return KindBool
	case string:
		return KindString
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case *Record, map[string]any:
		return KindRecord
	case []float32, []float64, []int, []int32, []uint16, []uint8, []string, []any:
		return KindSequence
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Map, reflect.Struct:
		return KindRecord
	case reflect.Pointer:
		if rv.IsNil() {
			return KindNil
		}
		return KindOf(rv.Elem().Interface())
	}
	return KindOther
}

// equal is the strict comparison used by Compute.
func equal(key string, a, b any) (bool, error) {
	ka, kb := KindOf(a), KindOf(b)
	if ka == KindNil || kb == KindNil {
		return ka == kb, nil
	}
	if ka != kb {
		return false, &TypeMismatchError{Key: key, Prev: ka, Curr: kb}
	}
	switch ka {
	case KindRecord:
		if sameReference(a, b) {
			return true, nil
		}
		return false, &UnsupportedCompareError{Key: key, Kind: ka}
	case KindOther:
		return false, &UnsupportedCompareError{Key: key, Kind: ka}
	case KindSequence:
		return equalSequence(key, a, b)
	default:
		return scalarEqual(a, b), nil
	}
}

// sameReference reports whether a and b are the same record pointer or map.
func sameReference(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map:
		return ra.Pointer() == rb.Pointer()
	}
	return false
}

func equalSequence(key string, a, b any) (bool, error) {
	// Fast path for the common typed vertex/uniform arrays.
	switch av := a.(type) {
	case []float32:
		if bv, ok := b.([]float32); ok {
			return equalSlice(av, bv), nil
		}
	case []float64:
		if bv, ok := b.([]float64); ok {
			return equalSlice(av, bv), nil
		}
	case []uint16:
		if bv, ok := b.([]uint16); ok {
			return equalSlice(av, bv), nil
		}
	case []string:
		if bv, ok := b.([]string); ok {
			return equalSlice(av, bv), nil
		}
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	for i := 0; i < ra.Len(); i++ {
		if k := KindOf(ra.Index(i).Interface()); k == KindSequence || k == KindRecord || k == KindOther {
			return false, &UnsupportedCompareError{Key: key, Kind: k}
		}
	}
	for i := 0; i < rb.Len(); i++ {
		if k := KindOf(rb.Index(i).Interface()); k == KindSequence || k == KindRecord || k == KindOther {
			return false, &UnsupportedCompareError{Key: key, Kind: k}
		}
	}
	if ra.Len() != rb.Len() {
		return false, nil
	}
	for i := 0; i < ra.Len(); i++ {
		if !scalarEqual(ra.Index(i).Interface(), rb.Index(i).Interface()) {
			return false, nil
		}
	}
	return true, nil
}

func equalSlice[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// scalarEqual compares two scalars. Values of different kinds are unequal;
// numbers compare by value across Go numeric types.
func scalarEqual(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNil:
		return true
	case KindNumber:
		if reflect.TypeOf(a) == reflect.TypeOf(b) {
			return a == b
		}
		fa, _ := ToFloat64(a)
		fb, _ := ToFloat64(b)
		return fa == fb
	case KindBool:
		return reflect.ValueOf(a).Bool() == reflect.ValueOf(b).Bool()
	case KindString:
		return reflect.ValueOf(a).String() == reflect.ValueOf(b).String()
	}
	return false
}

// ToFloat64 converts any Go numeric value to float64.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
