// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package recorder

import (
	"fmt"
	"strings"

	"github.com/gogpu/glscene/gl"
)

// CommandType identifies a recorded device call.
type CommandType uint8

const (
	// Buffers
	CmdCreateBuffer CommandType = iota
	CmdDeleteBuffer
	CmdBindBuffer
	CmdBufferData

	// Shaders and programs
	CmdCreateShader
	CmdShaderSource
	CmdCompileShader
	CmdDeleteShader
	CmdCreateProgram
	CmdAttachShader
	CmdLinkProgram
	CmdDeleteProgram
	CmdUseProgram
	CmdAttribLocation
	CmdUniformLocation

	// Vertex arrays and attributes
	CmdCreateVertexArray
	CmdBindVertexArray
	CmdDeleteVertexArray
	CmdEnableVertexAttribArray
	CmdVertexAttribPointer
	CmdVertexAttrib1f
	CmdVertexAttrib2f
	CmdVertexAttrib3f
	CmdVertexAttrib4f

	// Uniforms
	CmdUniform1i
	CmdUniform1f
	CmdUniform2fv
	CmdUniform3fv
	CmdUniform4fv
	CmdUniform2iv
	CmdUniform3iv
	CmdUniform4iv
	CmdUniformMatrix2fv
	CmdUniformMatrix3fv
	CmdUniformMatrix4fv

	// Framebuffer and draws
	CmdClearColor
	CmdClear
	CmdDrawArrays
	CmdDrawElements
)

var commandTypeNames = [...]string{
	CmdCreateBuffer:            "CreateBuffer",
	CmdDeleteBuffer:            "DeleteBuffer",
	CmdBindBuffer:              "BindBuffer",
	CmdBufferData:              "BufferData",
	CmdCreateShader:            "CreateShader",
	CmdShaderSource:            "ShaderSource",
	CmdCompileShader:           "CompileShader",
	CmdDeleteShader:            "DeleteShader",
	CmdCreateProgram:           "CreateProgram",
	CmdAttachShader:            "AttachShader",
	CmdLinkProgram:             "LinkProgram",
	CmdDeleteProgram:           "DeleteProgram",
	CmdUseProgram:              "UseProgram",
	CmdAttribLocation:          "AttribLocation",
	CmdUniformLocation:         "UniformLocation",
	CmdCreateVertexArray:       "CreateVertexArray",
	CmdBindVertexArray:         "BindVertexArray",
	CmdDeleteVertexArray:       "DeleteVertexArray",
	CmdEnableVertexAttribArray: "EnableVertexAttribArray",
	CmdVertexAttribPointer:     "VertexAttribPointer",
	CmdVertexAttrib1f:          "VertexAttrib1f",
	CmdVertexAttrib2f:          "VertexAttrib2f",
	CmdVertexAttrib3f:          "VertexAttrib3f",
	CmdVertexAttrib4f:          "VertexAttrib4f",
	CmdUniform1i:               "Uniform1i",
	CmdUniform1f:               "Uniform1f",
	CmdUniform2fv:              "Uniform2fv",
	CmdUniform3fv:              "Uniform3fv",
	CmdUniform4fv:              "Uniform4fv",
	CmdUniform2iv:              "Uniform2iv",
	CmdUniform3iv:              "Uniform3iv",
	CmdUniform4iv:              "Uniform4iv",
	CmdUniformMatrix2fv:        "UniformMatrix2fv",
	CmdUniformMatrix3fv:        "UniformMatrix3fv",
	CmdUniformMatrix4fv:        "UniformMatrix4fv",
	CmdClearColor:              "ClearColor",
	CmdClear:                   "Clear",
	CmdDrawArrays:              "DrawArrays",
	CmdDrawElements:            "DrawElements",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded device call. Only the fields meaningful for the
// command type are set.
type Command struct {
	Type CommandType

	// Handle is the object the call targets or returns (buffer, shader,
	// program or vertex array).
	Handle uint32
	// Other is the secondary object (the shader in AttachShader).
	Other uint32

	Target gl.Target
	Usage  gl.Usage
	Stage  gl.ShaderStage
	Mode   gl.Mode
	Kind   gl.Type
	Mask   gl.ClearMask

	Index      uint32
	Location   gl.UniformLocation
	Size       int
	Normalized bool
	Stride     int
	Offset     int
	First      int
	Count      int
	Transpose  bool

	Name   string
	Source string
	Data   []byte
	Floats []float32
	Ints   []int32
}

// String formats the command as one log line.
func (c Command) String() string {
	var b strings.Builder
	b.WriteString(c.Type.String())
	switch c.Type {
	case CmdCreateBuffer, CmdDeleteBuffer, CmdCreateProgram, CmdDeleteProgram, CmdUseProgram,
		CmdCompileShader, CmdDeleteShader, CmdLinkProgram,
		CmdCreateVertexArray, CmdBindVertexArray, CmdDeleteVertexArray:
		fmt.Fprintf(&b, "(%d)", c.Handle)
	case CmdBindBuffer:
		fmt.Fprintf(&b, "(%s, %d)", c.Target, c.Handle)
	case CmdBufferData:
		fmt.Fprintf(&b, "(%s, %d bytes, %s)", c.Target, len(c.Data), c.Usage)
	case CmdCreateShader:
		fmt.Fprintf(&b, "(%s) = %d", c.Stage, c.Handle)
	case CmdShaderSource:
		fmt.Fprintf(&b, "(%d, %d chars)", c.Handle, len(c.Source))
	case CmdAttachShader:
		fmt.Fprintf(&b, "(%d, %d)", c.Handle, c.Other)
	case CmdAttribLocation, CmdUniformLocation:
		fmt.Fprintf(&b, "(%d, %q) = %d", c.Handle, c.Name, c.Location)
	case CmdEnableVertexAttribArray:
		fmt.Fprintf(&b, "(%d)", c.Index)
	case CmdVertexAttribPointer:
		fmt.Fprintf(&b, "(%d, %d, %s, %t, %d, %d)", c.Index, c.Size, c.Kind, c.Normalized, c.Stride, c.Offset)
	case CmdVertexAttrib1f, CmdVertexAttrib2f, CmdVertexAttrib3f, CmdVertexAttrib4f:
		fmt.Fprintf(&b, "(%d, %v)", c.Index, c.Floats)
	case CmdUniform1i, CmdUniform2iv, CmdUniform3iv, CmdUniform4iv:
		fmt.Fprintf(&b, "(%d, %v)", c.Location, c.Ints)
	case CmdUniform1f, CmdUniform2fv, CmdUniform3fv, CmdUniform4fv:
		fmt.Fprintf(&b, "(%d, %v)", c.Location, c.Floats)
	case CmdUniformMatrix2fv, CmdUniformMatrix3fv, CmdUniformMatrix4fv:
		fmt.Fprintf(&b, "(%d, %t, %v)", c.Location, c.Transpose, c.Floats)
	case CmdClearColor:
		fmt.Fprintf(&b, "%v", c.Floats)
	case CmdClear:
		fmt.Fprintf(&b, "(%#x)", uint8(c.Mask))
	case CmdDrawArrays:
		fmt.Fprintf(&b, "(%s, %d, %d)", c.Mode, c.First, c.Count)
	case CmdDrawElements:
		fmt.Fprintf(&b, "(%s, %d, %s, %d)", c.Mode, c.Count, c.Kind, c.Offset)
	}
	return b.String()
}
