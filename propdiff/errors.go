package propdiff

import (
	"errors"
	"fmt"
)

// ErrUsage is the category shared by every error returned from this
// package. The caller supplied values that cannot be diffed or applied.
var ErrUsage = errors.New("propdiff: usage error")

// Kind classifies a prop value for comparison.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindString
	KindNumber
	KindSequence
	KindRecord
	KindOther
)

var kindNames = [...]string{
	KindNil:      "nil",
	KindBool:     "bool",
	KindString:   "string",
	KindNumber:   "number",
	KindSequence: "sequence",
	KindRecord:   "record",
	KindOther:    "other",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// TypeMismatchError is returned when the previous and current values of a
// key have different kinds.
type TypeMismatchError struct {
	Key  string
	Prev Kind
	Curr Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("propdiff: type mismatched for %q: %s vs %s", e.Key, e.Prev, e.Curr)
}

func (e *TypeMismatchError) Unwrap() error { return ErrUsage }

// UnsupportedCompareError is returned when a key holds a value that cannot
// be compared: a keyed record or a sequence with non-scalar elements.
type UnsupportedCompareError struct {
	Key  string
	Kind Kind
}

func (e *UnsupportedCompareError) Error() string {
	return fmt.Sprintf("propdiff: cannot compare %s value of %q", e.Kind, e.Key)
}

func (e *UnsupportedCompareError) Unwrap() error { return ErrUsage }

// PathError is returned by Apply when an intermediate segment of a
// flattened key does not name a nested record. Segment is empty when
// there is no target record at all.
type PathError struct {
	Key     string
	Segment string
}

func (e *PathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("propdiff: cannot apply %q: no target record", e.Key)
	}
	return fmt.Sprintf("propdiff: cannot apply %q: segment %q is not a record", e.Key, e.Segment)
}

func (e *PathError) Unwrap() error { return ErrUsage }
