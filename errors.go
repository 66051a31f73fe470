package glscene

import (
	"errors"
	"fmt"

	"github.com/gogpu/glscene/program"
	"github.com/gogpu/glscene/propdiff"
)

// ErrUsage is the sentinel wrapped by every usage error: a request the
// caller should not have made. Usage errors are never retried.
var ErrUsage = errors.New("glscene: usage error")

// ErrNotCompiled is returned by a shader node whose last compile failed.
var ErrNotCompiled = program.ErrNotCompiled

// CompileError and LinkError carry the device diagnostic text of a failed
// shader build.
type (
	CompileError = program.CompileError
	LinkError    = program.LinkError
)

// IsUsageError reports whether err is a usage error raised by glscene or
// by prop diffing.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrUsage) || errors.Is(err, propdiff.ErrUsage)
}

// UnsupportedTagError is returned when creating a node of an unknown tag.
type UnsupportedTagError struct {
	Tag string
}

func (e *UnsupportedTagError) Error() string {
	return fmt.Sprintf("glscene: unsupported tag %q", e.Tag)
}

func (e *UnsupportedTagError) Unwrap() error { return ErrUsage }

// InvalidOperationError is returned for a structural edit the node cannot
// accept, such as giving children to a leaf.
type InvalidOperationError struct {
	Tag Tag
	Msg string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("glscene: %s %s", e.Tag, e.Msg)
}

func (e *InvalidOperationError) Unwrap() error { return ErrUsage }

func cannotHaveChildren(tag Tag) error {
	return &InvalidOperationError{Tag: tag, Msg: "cannot have children"}
}

// UnsupportedSizeError is returned by a fixed attribute whose value does
// not have 1 to 4 components.
type UnsupportedSizeError struct {
	Size int
}

func (e *UnsupportedSizeError) Error() string {
	return fmt.Sprintf("glscene: unsupported attribute size %d", e.Size)
}

func (e *UnsupportedSizeError) Unwrap() error { return ErrUsage }

// PropError reports a prop value that failed validation.
type PropError struct {
	Tag    Tag
	Key    string
	Value  any
	Reason string
}

func (e *PropError) Error() string {
	return fmt.Sprintf("glscene: %s.%s = %v: %s", e.Tag, e.Key, e.Value, e.Reason)
}

func (e *PropError) Unwrap() error { return ErrUsage }
