// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gl

// Language identifies a shading language.
type Language uint8

const (
	GLSL Language = iota
	WGSL
)

// String returns the language name.
func (l Language) String() string {
	switch l {
	case GLSL:
		return "glsl"
	case WGSL:
		return "wgsl"
	default:
		return "unknown"
	}
}

// Target is a buffer binding point.
type Target uint8

const (
	ArrayBuffer Target = iota
	ElementArrayBuffer
)

var targetNames = [...]string{
	ArrayBuffer:        "array",
	ElementArrayBuffer: "element_array",
}

// String returns the prop spelling of the target.
func (t Target) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return "unknown"
}

// ParseTarget parses a target name ("array", "element_array").
func ParseTarget(s string) (Target, bool) {
	return parseName(targetNames[:], s, Target(0))
}

// Usage is a buffer data usage hint.
type Usage uint8

const (
	StaticDraw Usage = iota
	DynamicDraw
	StreamDraw
)

var usageNames = [...]string{
	StaticDraw:  "static",
	DynamicDraw: "dynamic",
	StreamDraw:  "stream",
}

// String returns the prop spelling of the usage hint.
func (u Usage) String() string {
	if int(u) < len(usageNames) {
		return usageNames[u]
	}
	return "unknown"
}

// ParseUsage parses a usage hint name ("static", "dynamic", "stream").
func ParseUsage(s string) (Usage, bool) {
	return parseName(usageNames[:], s, Usage(0))
}

// Mode is a primitive topology.
type Mode uint8

const (
	Points Mode = iota
	Lines
	LineLoop
	LineStrip
	Triangles
	TriangleStrip
	TriangleFan
)

var modeNames = [...]string{
	Points:        "points",
	Lines:         "lines",
	LineLoop:      "line_loop",
	LineStrip:     "line_strip",
	Triangles:     "triangles",
	TriangleStrip: "triangle_strip",
	TriangleFan:   "triangle_fan",
}

// String returns the prop spelling of the mode.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// ParseMode parses one of the seven primitive topology names.
func ParseMode(s string) (Mode, bool) {
	return parseName(modeNames[:], s, Mode(0))
}

// Type is a component type for vertex attributes and element indices.
type Type uint8

const (
	Byte Type = iota
	Short
	UnsignedByte
	UnsignedShort
	UnsignedInt
	Float
)

var typeNames = [...]string{
	Byte:          "byte",
	Short:         "short",
	UnsignedByte:  "u8",
	UnsignedShort: "u16",
	UnsignedInt:   "u32",
	Float:         "float",
}

// String returns the prop spelling of the type.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Size returns the component size in bytes.
func (t Type) Size() int {
	switch t {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	default:
		return 0
	}
}

// ParseType parses a component type name.
func ParseType(s string) (Type, bool) {
	return parseName(typeNames[:], s, Type(0))
}

// ShaderStage is a programmable pipeline stage.
type ShaderStage uint8

const (
	VertexShader ShaderStage = iota
	FragmentShader
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return "unknown"
	}
}

// ClearMask selects the framebuffer planes cleared by Device.Clear.
type ClearMask uint8

const (
	ColorBufferBit ClearMask = 1 << iota
	DepthBufferBit
	StencilBufferBit
)

func parseName[T ~uint8](names []string, s string, _ T) (T, bool) {
	for i, n := range names {
		if n == s {
			return T(i), true //nolint:gosec // name tables are tiny
		}
	}
	return 0, false
}
