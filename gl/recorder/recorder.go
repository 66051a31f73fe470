// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package recorder provides a gl.Device that records every call instead of
// executing it.
//
// The recorder is the reference fake for scene tests and the default
// backend of the glscene command. It hands out sequential handles, tracks
// which objects are alive, and emulates just enough of a GLSL toolchain to
// make programs behave: sources containing "#error" fail to compile with
// the rest of that line as the log, attribute and uniform locations are
// assigned from declarations in source order.
//
//	rec := recorder.New()
//	root := glscene.NewRoot(rec)
//	...
//	for _, cmd := range rec.Commands() {
//	    fmt.Println(cmd)
//	}
package recorder

import (
	"regexp"
	"slices"
	"strings"

	"github.com/gogpu/glscene/gl"
)

// CompileHook decides whether a shader compiles. It returns the info log
// and false to fail the compile.
type CompileHook func(stage gl.ShaderStage, source string) (log string, ok bool)

// LinkHook decides whether a program links given its stage sources.
type LinkHook func(vert, frag string) (log string, ok bool)

// Option configures a Recorder.
type Option func(*Recorder)

// WithCompileHook replaces the default "#error" compile rule.
func WithCompileHook(h CompileHook) Option {
	return func(r *Recorder) { r.compileHook = h }
}

// WithLinkHook adds a link rule applied after the built-in checks.
func WithLinkHook(h LinkHook) Option {
	return func(r *Recorder) { r.linkHook = h }
}

// WithLanguage sets the language reported by Language. Defaults to GLSL.
func WithLanguage(l gl.Language) Option {
	return func(r *Recorder) { r.language = l }
}

// Live counts objects that were created and not yet deleted.
type Live struct {
	Buffers      int
	Shaders      int
	Programs     int
	VertexArrays int
}

// Total returns the sum of all live objects.
func (l Live) Total() int {
	return l.Buffers + l.Shaders + l.Programs + l.VertexArrays
}

type shaderState struct {
	stage    gl.ShaderStage
	source   string
	compiled bool
	log      string
}

type programState struct {
	shaders  []gl.Shader
	linked   bool
	log      string
	attribs  map[string]int
	uniforms map[string]gl.UniformLocation
}

// Recorder is a gl.Device that records calls.
// Recorder is NOT safe for concurrent use.
type Recorder struct {
	commands []Command
	nextID   uint32

	language    gl.Language
	compileHook CompileHook
	linkHook    LinkHook

	buffers  map[gl.Buffer]struct{}
	shaders  map[gl.Shader]*shaderState
	programs map[gl.Program]*programState
	vaos     map[gl.VertexArray]struct{}

	// Deleted shaders stay referenced by programs they are attached to.
	detached map[gl.Shader]*shaderState
}

var _ gl.Device = (*Recorder)(nil)

// New creates an empty recorder.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		language:    gl.GLSL,
		compileHook: defaultCompileHook,
		buffers:     make(map[gl.Buffer]struct{}),
		shaders:     make(map[gl.Shader]*shaderState),
		programs:    make(map[gl.Program]*programState),
		vaos:        make(map[gl.VertexArray]struct{}),
		detached:    make(map[gl.Shader]*shaderState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultCompileHook(_ gl.ShaderStage, source string) (string, bool) {
	for _, line := range strings.Split(source, "\n") {
		if _, after, found := strings.Cut(line, "#error"); found {
			return "ERROR: " + strings.TrimSpace(after), false
		}
	}
	return "", true
}

func (r *Recorder) record(c Command) {
	r.commands = append(r.commands, c)
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []Command {
	return slices.Clone(r.commands)
}

// Filter returns the recorded commands of the given types, in order.
func (r *Recorder) Filter(types ...CommandType) []Command {
	var out []Command
	for _, c := range r.commands {
		if slices.Contains(types, c.Type) {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many commands of type t were recorded.
func (r *Recorder) Count(t CommandType) int {
	n := 0
	for _, c := range r.commands {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Reset clears the command log. Object state is kept.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
}

// Live returns the number of objects currently alive.
func (r *Recorder) Live() Live {
	return Live{
		Buffers:      len(r.buffers),
		Shaders:      len(r.shaders),
		Programs:     len(r.programs),
		VertexArrays: len(r.vaos),
	}
}

// Log formats the command log, one command per line.
func (r *Recorder) Log() string {
	var b strings.Builder
	for _, c := range r.commands {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Language implements gl.Device.
func (r *Recorder) Language() gl.Language { return r.language }

// CreateBuffer implements gl.Device.
func (r *Recorder) CreateBuffer() (gl.Buffer, error) {
	b := gl.Buffer(r.id())
	r.buffers[b] = struct{}{}
	r.record(Command{Type: CmdCreateBuffer, Handle: uint32(b)})
	return b, nil
}

// DeleteBuffer implements gl.Device.
func (r *Recorder) DeleteBuffer(b gl.Buffer) {
	delete(r.buffers, b)
	r.record(Command{Type: CmdDeleteBuffer, Handle: uint32(b)})
}

// BindBuffer implements gl.Device.
func (r *Recorder) BindBuffer(target gl.Target, b gl.Buffer) {
	r.record(Command{Type: CmdBindBuffer, Target: target, Handle: uint32(b)})
}

// BufferData implements gl.Device.
func (r *Recorder) BufferData(target gl.Target, data []byte, usage gl.Usage) error {
	r.record(Command{Type: CmdBufferData, Target: target, Data: slices.Clone(data), Usage: usage})
	return nil
}

// CreateShader implements gl.Device.
func (r *Recorder) CreateShader(stage gl.ShaderStage) (gl.Shader, error) {
	s := gl.Shader(r.id())
	r.shaders[s] = &shaderState{stage: stage}
	r.record(Command{Type: CmdCreateShader, Stage: stage, Handle: uint32(s)})
	return s, nil
}

// ShaderSource implements gl.Device.
func (r *Recorder) ShaderSource(s gl.Shader, source string) {
	if st, ok := r.shaders[s]; ok {
		st.source = source
	}
	r.record(Command{Type: CmdShaderSource, Handle: uint32(s), Source: source})
}

// CompileShader implements gl.Device.
func (r *Recorder) CompileShader(s gl.Shader) {
	r.record(Command{Type: CmdCompileShader, Handle: uint32(s)})
	st, ok := r.shaders[s]
	if !ok {
		return
	}
	st.log, st.compiled = r.compileHook(st.stage, st.source)
}

// ShaderCompiled implements gl.Device.
func (r *Recorder) ShaderCompiled(s gl.Shader) bool {
	st, ok := r.shaders[s]
	return ok && st.compiled
}

// ShaderInfoLog implements gl.Device.
func (r *Recorder) ShaderInfoLog(s gl.Shader) string {
	if st, ok := r.shaders[s]; ok {
		return st.log
	}
	return ""
}

// DeleteShader implements gl.Device.
func (r *Recorder) DeleteShader(s gl.Shader) {
	if st, ok := r.shaders[s]; ok {
		r.detached[s] = st
		delete(r.shaders, s)
	}
	r.record(Command{Type: CmdDeleteShader, Handle: uint32(s)})
}

// CreateProgram implements gl.Device.
func (r *Recorder) CreateProgram() (gl.Program, error) {
	p := gl.Program(r.id())
	r.programs[p] = &programState{}
	r.record(Command{Type: CmdCreateProgram, Handle: uint32(p)})
	return p, nil
}

// AttachShader implements gl.Device.
func (r *Recorder) AttachShader(p gl.Program, s gl.Shader) {
	if ps, ok := r.programs[p]; ok {
		ps.shaders = append(ps.shaders, s)
	}
	r.record(Command{Type: CmdAttachShader, Handle: uint32(p), Other: uint32(s)})
}

func (r *Recorder) shader(s gl.Shader) *shaderState {
	if st, ok := r.shaders[s]; ok {
		return st
	}
	return r.detached[s]
}

// LinkProgram implements gl.Device.
func (r *Recorder) LinkProgram(p gl.Program) {
	r.record(Command{Type: CmdLinkProgram, Handle: uint32(p)})
	ps, ok := r.programs[p]
	if !ok {
		return
	}
	var vert, frag *shaderState
	for _, s := range ps.shaders {
		st := r.shader(s)
		if st == nil || !st.compiled {
			continue
		}
		switch st.stage {
		case gl.VertexShader:
			vert = st
		case gl.FragmentShader:
			frag = st
		}
	}
	switch {
	case vert == nil:
		ps.linked, ps.log = false, "missing compiled vertex shader"
	case frag == nil:
		ps.linked, ps.log = false, "missing compiled fragment shader"
	default:
		ps.linked, ps.log = true, ""
		if r.linkHook != nil {
			ps.log, ps.linked = r.linkHook(vert.source, frag.source)
		}
	}
	if ps.linked {
		ps.attribs = reflectAttributes(vert.source)
		ps.uniforms = reflectUniforms(vert.source, frag.source)
	}
}

// ProgramLinked implements gl.Device.
func (r *Recorder) ProgramLinked(p gl.Program) bool {
	ps, ok := r.programs[p]
	return ok && ps.linked
}

// ProgramInfoLog implements gl.Device.
func (r *Recorder) ProgramInfoLog(p gl.Program) string {
	if ps, ok := r.programs[p]; ok {
		return ps.log
	}
	return ""
}

// DeleteProgram implements gl.Device.
func (r *Recorder) DeleteProgram(p gl.Program) {
	if ps, ok := r.programs[p]; ok {
		for _, s := range ps.shaders {
			delete(r.detached, s)
		}
		delete(r.programs, p)
	}
	r.record(Command{Type: CmdDeleteProgram, Handle: uint32(p)})
}

// UseProgram implements gl.Device.
func (r *Recorder) UseProgram(p gl.Program) {
	r.record(Command{Type: CmdUseProgram, Handle: uint32(p)})
}

// AttribLocation implements gl.Device.
func (r *Recorder) AttribLocation(p gl.Program, name string) int {
	loc := -1
	if ps, ok := r.programs[p]; ok && ps.linked {
		if l, ok := ps.attribs[name]; ok {
			loc = l
		}
	}
	r.record(Command{Type: CmdAttribLocation, Handle: uint32(p), Name: name, Location: gl.UniformLocation(loc)})
	return loc
}

// UniformLocation implements gl.Device.
func (r *Recorder) UniformLocation(p gl.Program, name string) (gl.UniformLocation, bool) {
	loc, found := gl.UniformLocation(-1), false
	if ps, ok := r.programs[p]; ok && ps.linked {
		loc, found = ps.uniforms[name]
		if !found {
			loc = -1
		}
	}
	r.record(Command{Type: CmdUniformLocation, Handle: uint32(p), Name: name, Location: loc})
	return loc, found
}

// CreateVertexArray implements gl.Device.
func (r *Recorder) CreateVertexArray() (gl.VertexArray, error) {
	v := gl.VertexArray(r.id())
	r.vaos[v] = struct{}{}
	r.record(Command{Type: CmdCreateVertexArray, Handle: uint32(v)})
	return v, nil
}

// BindVertexArray implements gl.Device.
func (r *Recorder) BindVertexArray(v gl.VertexArray) {
	r.record(Command{Type: CmdBindVertexArray, Handle: uint32(v)})
}

// DeleteVertexArray implements gl.Device.
func (r *Recorder) DeleteVertexArray(v gl.VertexArray) {
	delete(r.vaos, v)
	r.record(Command{Type: CmdDeleteVertexArray, Handle: uint32(v)})
}

// EnableVertexAttribArray implements gl.Device.
func (r *Recorder) EnableVertexAttribArray(index uint32) {
	r.record(Command{Type: CmdEnableVertexAttribArray, Index: index})
}

// VertexAttribPointer implements gl.Device.
func (r *Recorder) VertexAttribPointer(index uint32, size int, typ gl.Type, normalized bool, stride, offset int) {
	r.record(Command{
		Type: CmdVertexAttribPointer, Index: index, Size: size, Kind: typ,
		Normalized: normalized, Stride: stride, Offset: offset,
	})
}

// VertexAttrib1f implements gl.Device.
func (r *Recorder) VertexAttrib1f(index uint32, x float32) {
	r.record(Command{Type: CmdVertexAttrib1f, Index: index, Floats: []float32{x}})
}

// VertexAttrib2f implements gl.Device.
func (r *Recorder) VertexAttrib2f(index uint32, x, y float32) {
	r.record(Command{Type: CmdVertexAttrib2f, Index: index, Floats: []float32{x, y}})
}

// VertexAttrib3f implements gl.Device.
func (r *Recorder) VertexAttrib3f(index uint32, x, y, z float32) {
	r.record(Command{Type: CmdVertexAttrib3f, Index: index, Floats: []float32{x, y, z}})
}

// VertexAttrib4f implements gl.Device.
func (r *Recorder) VertexAttrib4f(index uint32, x, y, z, w float32) {
	r.record(Command{Type: CmdVertexAttrib4f, Index: index, Floats: []float32{x, y, z, w}})
}

// Uniform1i implements gl.Device.
func (r *Recorder) Uniform1i(loc gl.UniformLocation, v int32) {
	r.record(Command{Type: CmdUniform1i, Location: loc, Ints: []int32{v}})
}

// Uniform1f implements gl.Device.
func (r *Recorder) Uniform1f(loc gl.UniformLocation, v float32) {
	r.record(Command{Type: CmdUniform1f, Location: loc, Floats: []float32{v}})
}

// Uniform2fv implements gl.Device.
func (r *Recorder) Uniform2fv(loc gl.UniformLocation, v []float32) {
	r.record(Command{Type: CmdUniform2fv, Location: loc, Floats: slices.Clone(v)})
}

// Uniform3fv implements gl.Device.
func (r *Recorder) Uniform3fv(loc gl.UniformLocation, v []float32) {
	r.record(Command{Type: CmdUniform3fv, Location: loc, Floats: slices.Clone(v)})
}

// Uniform4fv implements gl.Device.
func (r *Recorder) Uniform4fv(loc gl.UniformLocation, v []float32) {
	r.record(Command{Type: CmdUniform4fv, Location: loc, Floats: slices.Clone(v)})
}

// Uniform2iv implements gl.Device.
func (r *Recorder) Uniform2iv(loc gl.UniformLocation, v []int32) {
	r.record(Command{Type: CmdUniform2iv, Location: loc, Ints: slices.Clone(v)})
}

// Uniform3iv implements gl.Device.
func (r *Recorder) Uniform3iv(loc gl.UniformLocation, v []int32) {
	r.record(Command{Type: CmdUniform3iv, Location: loc, Ints: slices.Clone(v)})
}

// Uniform4iv implements gl.Device.
func (r *Recorder) Uniform4iv(loc gl.UniformLocation, v []int32) {
	r.record(Command{Type: CmdUniform4iv, Location: loc, Ints: slices.Clone(v)})
}

// UniformMatrix2fv implements gl.Device.
func (r *Recorder) UniformMatrix2fv(loc gl.UniformLocation, transpose bool, v []float32) {
	r.record(Command{Type: CmdUniformMatrix2fv, Location: loc, Transpose: transpose, Floats: slices.Clone(v)})
}

// UniformMatrix3fv implements gl.Device.
func (r *Recorder) UniformMatrix3fv(loc gl.UniformLocation, transpose bool, v []float32) {
	r.record(Command{Type: CmdUniformMatrix3fv, Location: loc, Transpose: transpose, Floats: slices.Clone(v)})
}

// UniformMatrix4fv implements gl.Device.
func (r *Recorder) UniformMatrix4fv(loc gl.UniformLocation, transpose bool, v []float32) {
	r.record(Command{Type: CmdUniformMatrix4fv, Location: loc, Transpose: transpose, Floats: slices.Clone(v)})
}

// ClearColor implements gl.Device.
func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.record(Command{Type: CmdClearColor, Floats: []float32{red, green, blue, alpha}})
}

// Clear implements gl.Device.
func (r *Recorder) Clear(mask gl.ClearMask) error {
	r.record(Command{Type: CmdClear, Mask: mask})
	return nil
}

// DrawArrays implements gl.Device.
func (r *Recorder) DrawArrays(mode gl.Mode, first, count int) error {
	r.record(Command{Type: CmdDrawArrays, Mode: mode, First: first, Count: count})
	return nil
}

// DrawElements implements gl.Device.
func (r *Recorder) DrawElements(mode gl.Mode, count int, typ gl.Type, offset int) error {
	r.record(Command{Type: CmdDrawElements, Mode: mode, Count: count, Kind: typ, Offset: offset})
	return nil
}

var (
	// "layout(location = N) in vec2 name;", "in vec2 name;", "attribute vec2 name;"
	attribRe  = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?(?:in|attribute)\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)\s*;`)
	uniformRe = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:lowp|mediump|highp)\s+)?\w+\s+(\w+)\s*(?:\[\s*\d+\s*\])?\s*;`)
)

// reflectAttributes assigns attribute locations: explicit layout locations
// first, the rest in declaration order skipping taken slots.
func reflectAttributes(vert string) map[string]int {
	out := make(map[string]int)
	taken := make(map[int]bool)
	var implicit []string
	for _, m := range attribRe.FindAllStringSubmatch(vert, -1) {
		if m[1] != "" {
			loc := 0
			for _, c := range m[1] {
				loc = loc*10 + int(c-'0')
			}
			out[m[2]] = loc
			taken[loc] = true
			continue
		}
		implicit = append(implicit, m[2])
	}
	next := 0
	for _, name := range implicit {
		for taken[next] {
			next++
		}
		out[name] = next
		taken[next] = true
	}
	return out
}

func reflectUniforms(sources ...string) map[string]gl.UniformLocation {
	out := make(map[string]gl.UniformLocation)
	for _, src := range sources {
		for _, m := range uniformRe.FindAllStringSubmatch(src, -1) {
			if _, ok := out[m[1]]; !ok {
				out[m[1]] = gl.UniformLocation(len(out))
			}
		}
	}
	return out
}
