// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gl

// Buffer is a handle to a device buffer object.
type Buffer uint32

// Shader is a handle to a single compiled shader stage.
type Shader uint32

// Program is a handle to a linked program object.
type Program uint32

// VertexArray is a handle to a vertex-array object.
type VertexArray uint32

// UniformLocation identifies a uniform inside a linked program.
type UniformLocation int32

// Zero handles.
const (
	NoBuffer      Buffer      = 0
	NoShader      Shader      = 0
	NoProgram     Program     = 0
	NoVertexArray VertexArray = 0
)

// Device is the graphics API consumed by scene nodes.
//
// Creation calls, uploads, clears and draws report failures through their
// error result. State calls never fail; invalid state shows up as an error
// from the next draw.
type Device interface {
	// Language reports the shading language accepted by CompileShader.
	Language() Language

	// Buffers.
	CreateBuffer() (Buffer, error)
	DeleteBuffer(b Buffer)
	BindBuffer(target Target, b Buffer)
	BufferData(target Target, data []byte, usage Usage) error

	// Shader stages.
	CreateShader(stage ShaderStage) (Shader, error)
	ShaderSource(s Shader, source string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	// Programs.
	CreateProgram() (Program, error)
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)
	AttribLocation(p Program, name string) int
	UniformLocation(p Program, name string) (UniformLocation, bool)

	// Vertex-array objects.
	CreateVertexArray() (VertexArray, error)
	BindVertexArray(v VertexArray)
	DeleteVertexArray(v VertexArray)

	// Vertex attributes.
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int, typ Type, normalized bool, stride, offset int)
	VertexAttrib1f(index uint32, x float32)
	VertexAttrib2f(index uint32, x, y float32)
	VertexAttrib3f(index uint32, x, y, z float32)
	VertexAttrib4f(index uint32, x, y, z, w float32)

	// Uniforms. Vector and matrix variants take exactly the number of
	// components of the uniform type.
	Uniform1i(loc UniformLocation, v int32)
	Uniform1f(loc UniformLocation, v float32)
	Uniform2fv(loc UniformLocation, v []float32)
	Uniform3fv(loc UniformLocation, v []float32)
	Uniform4fv(loc UniformLocation, v []float32)
	Uniform2iv(loc UniformLocation, v []int32)
	Uniform3iv(loc UniformLocation, v []int32)
	Uniform4iv(loc UniformLocation, v []int32)
	UniformMatrix2fv(loc UniformLocation, transpose bool, v []float32)
	UniformMatrix3fv(loc UniformLocation, transpose bool, v []float32)
	UniformMatrix4fv(loc UniformLocation, transpose bool, v []float32)

	// Framebuffer.
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask) error

	// Draws.
	DrawArrays(mode Mode, first, count int) error
	DrawElements(mode Mode, count int, typ Type, offset int) error
}
