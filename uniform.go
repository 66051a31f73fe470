package glscene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/glscene/propdiff"
)

// UniformType is the declared type of a uniform value.
type UniformType uint8

// Uniform types.
const (
	UniformInt UniformType = iota
	UniformFloat
	UniformVec2
	UniformVec3
	UniformVec4
	UniformIVec2
	UniformIVec3
	UniformIVec4
	UniformMat2
	UniformMat3
	UniformMat4
)

var uniformTypeNames = [...]string{
	UniformInt:   "int",
	UniformFloat: "float",
	UniformVec2:  "vec2",
	UniformVec3:  "vec3",
	UniformVec4:  "vec4",
	UniformIVec2: "ivec2",
	UniformIVec3: "ivec3",
	UniformIVec4: "ivec4",
	UniformMat2:  "mat2",
	UniformMat3:  "mat3",
	UniformMat4:  "mat4",
}

var uniformComponents = [...]int{
	UniformInt: 1, UniformFloat: 1,
	UniformVec2: 2, UniformVec3: 3, UniformVec4: 4,
	UniformIVec2: 2, UniformIVec3: 3, UniformIVec4: 4,
	UniformMat2: 4, UniformMat3: 9, UniformMat4: 16,
}

func (t UniformType) String() string {
	if int(t) < len(uniformTypeNames) {
		return uniformTypeNames[t]
	}
	return "unknown"
}

// Components returns the number of scalar components of t.
func (t UniformType) Components() int { return uniformComponents[t] }

// IsMatrix reports whether t is a matrix type.
func (t UniformType) IsMatrix() bool { return t >= UniformMat2 }

func (t UniformType) isInt() bool {
	return t == UniformInt || (t >= UniformIVec2 && t <= UniformIVec4)
}

// ParseUniformType parses a uniform type name.
func ParseUniformType(s string) (UniformType, bool) {
	for i, n := range uniformTypeNames {
		if n == s {
			return UniformType(i), true //nolint:gosec // tiny table
		}
	}
	return 0, false
}

// Uniform sets one uniform of the active program.
//
// Props:
//   - name: uniform name
//   - type: int, float, vec2-4, ivec2-4 or mat2-4
//   - value: a number, or a sequence with exactly the type's component
//     count; matrices are column-major
//   - transpose: matrices only, passed to the device unchanged
type Uniform struct {
	node
	name      string
	typ       UniformType
	transpose bool
	set       bool

	ints   []int32
	floats []float32
	vec2   mgl32.Vec2
	vec3   mgl32.Vec3
	vec4   mgl32.Vec4
	mat2   mgl32.Mat2
	mat3   mgl32.Mat3
	mat4   mgl32.Mat4
}

func newUniform(id uint64) *Uniform {
	u := &Uniform{}
	u.init(u, TagUniform, id, true, nil)
	return u
}

// Name returns the uniform name.
func (u *Uniform) Name() string { return u.name }

// Type returns the declared uniform type.
func (u *Uniform) Type() UniformType { return u.typ }

// UpdateProps implements Node.
func (u *Uniform) UpdateProps(d propdiff.Diff) error {
	next, err := u.applied(d)
	if err != nil {
		return err
	}
	dec := newDecoder(u.tag, next)
	nu := Uniform{node: u.node}
	nu.name = dec.string("name", "")
	nu.transpose = dec.bool("transpose", false)
	typeName := dec.string("type", "")
	if dec.err != nil {
		return dec.err
	}

	v, hasValue := dec.lookup("value")
	switch {
	case typeName == "" && hasValue:
		return &PropError{Tag: u.tag, Key: "type", Value: nil, Reason: "required when value is set"}
	case typeName != "":
		t, ok := ParseUniformType(typeName)
		if !ok {
			return &PropError{Tag: u.tag, Key: "type", Value: typeName, Reason: "unknown uniform type"}
		}
		nu.typ = t
	}
	if nu.transpose && !nu.typ.IsMatrix() {
		return &PropError{Tag: u.tag, Key: "transpose", Value: true, Reason: "only matrices can be transposed"}
	}
	if hasValue {
		if err := nu.decodeValue(v); err != nil {
			return err
		}
	}

	u.props = next
	u.name, u.typ, u.transpose, u.set = nu.name, nu.typ, nu.transpose, nu.set
	u.ints, u.floats = nu.ints, nu.floats
	u.vec2, u.vec3, u.vec4 = nu.vec2, nu.vec3, nu.vec4
	u.mat2, u.mat3, u.mat4 = nu.mat2, nu.mat3, nu.mat4
	return nil
}

// decodeValue converts v into the typed value for u.typ.
func (u *Uniform) decodeValue(v any) error {
	n := u.typ.Components()
	bad := func(reason string) error {
		return &PropError{Tag: u.tag, Key: "value", Value: v, Reason: reason}
	}

	if u.typ.isInt() {
		var ints []int32
		if n == 1 {
			if s, ok := toInt32s([]any{v}); ok {
				ints = s
			}
		} else if s, ok := toInt32s(v); ok {
			ints = s
		}
		if len(ints) != n {
			return bad("want " + u.typ.String() + " integer components")
		}
		u.ints, u.set = ints, true
		return nil
	}

	var fs []float32
	if n == 1 {
		if f, ok := propdiff.ToFloat64(v); ok {
			fs = []float32{float32(f)}
		}
	} else if s, ok := toFloat32s(v); ok {
		fs = s
	}
	if len(fs) != n {
		return bad("want " + u.typ.String() + " components")
	}
	u.floats = fs
	switch u.typ {
	case UniformVec2:
		u.vec2 = mgl32.Vec2{fs[0], fs[1]}
	case UniformVec3:
		u.vec3 = mgl32.Vec3{fs[0], fs[1], fs[2]}
	case UniformVec4:
		u.vec4 = mgl32.Vec4{fs[0], fs[1], fs[2], fs[3]}
	case UniformMat2:
		copy(u.mat2[:], fs)
	case UniformMat3:
		copy(u.mat3[:], fs)
	case UniformMat4:
		copy(u.mat4[:], fs)
	}
	u.set = true
	return nil
}

// Vec4 returns the value of a vec4 uniform.
func (u *Uniform) Vec4() mgl32.Vec4 { return u.vec4 }

// Mat4 returns the value of a mat4 uniform.
func (u *Uniform) Mat4() mgl32.Mat4 { return u.mat4 }

// Render uploads the value through the device call matching the type.
func (u *Uniform) Render(f *Frame) error {
	if !u.set {
		return nil
	}
	p := f.Program()
	if p == nil {
		Logger().Warn("uniform outside a shader program", "node", u.id, "name", u.name)
		return nil
	}
	loc, ok := p.Uniform(u.name)
	if !ok {
		Logger().Warn("uniform not found in program", "node", u.id, "name", u.name)
		return nil
	}
	dev := f.dev
	switch u.typ {
	case UniformInt:
		dev.Uniform1i(loc, u.ints[0])
	case UniformFloat:
		dev.Uniform1f(loc, u.floats[0])
	case UniformVec2:
		dev.Uniform2fv(loc, u.vec2[:])
	case UniformVec3:
		dev.Uniform3fv(loc, u.vec3[:])
	case UniformVec4:
		dev.Uniform4fv(loc, u.vec4[:])
	case UniformIVec2:
		dev.Uniform2iv(loc, u.ints)
	case UniformIVec3:
		dev.Uniform3iv(loc, u.ints)
	case UniformIVec4:
		dev.Uniform4iv(loc, u.ints)
	case UniformMat2:
		dev.UniformMatrix2fv(loc, u.transpose, u.mat2[:])
	case UniformMat3:
		dev.UniformMatrix3fv(loc, u.transpose, u.mat3[:])
	case UniformMat4:
		dev.UniformMatrix4fv(loc, u.transpose, u.mat4[:])
	}
	return nil
}
