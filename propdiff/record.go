// Package propdiff computes and applies minimal property changes between two
// prop records.
//
// A [Record] keeps its keys in insertion order, so a diff lists changed keys
// in the order the newer record declares them. Only scalars and flat
// sequences of scalars are diffable; nested records can be updated through
// flattened keys ("attr-test" assigns key "test" of the nested record
// "attr").
package propdiff

// ChildrenKey is the reserved key skipped by Compute.
const ChildrenKey = "children"

// Field is one key/value pair of a Record.
type Field struct {
	Key   string
	Value any
}

// Record is an insertion-ordered property record.
// The zero value is an empty record ready to use.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields, in order. Later duplicates
// overwrite earlier values in place.
func NewRecord(fields ...Field) *Record {
	r := &Record{}
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Of builds a record from alternating key/value arguments.
// It panics on an odd argument count or a non-string key.
func Of(kv ...any) *Record {
	if len(kv)%2 != 0 {
		panic("propdiff: Of called with odd argument count")
	}
	r := &Record{}
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("propdiff: Of key is not a string")
		}
		r.Set(k, kv[i+1])
	}
	return r
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r == nil || r.index == nil {
		return nil, false
	}
	i, ok := r.index[key]
	if !ok {
		return nil, false
	}
	return r.fields[i].Value, true
}

// Value returns the value stored under key, or nil.
func (r *Record) Value(key string) any {
	v, _ := r.Get(key)
	return v
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set stores value under key. An existing key keeps its position.
func (r *Record) Set(key string, value any) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// Delete removes key. It reports whether the key was present.
func (r *Record) Delete(key string) bool {
	if r == nil || r.index == nil {
		return false
	}
	i, ok := r.index[key]
	if !ok {
		return false
	}
	r.fields = append(r.fields[:i], r.fields[i+1:]...)
	delete(r.index, key)
	for j := i; j < len(r.fields); j++ {
		r.index[r.fields[j].Key] = j
	}
	return true
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the fields in insertion order.
func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Clone returns a copy of r. Nested records are cloned; other values,
// including slices, are shared.
func (r *Record) Clone() *Record {
	out := &Record{}
	if r == nil {
		return out
	}
	for _, f := range r.fields {
		if nested, ok := f.Value.(*Record); ok {
			out.Set(f.Key, nested.Clone())
			continue
		}
		out.Set(f.Key, f.Value)
	}
	return out
}
