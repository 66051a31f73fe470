// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package program owns a compiled shader program and the lookups that make
// re-rendering it cheap.
//
// A [Program] memoizes attribute and uniform locations by name and keeps a
// keyed cache of vertex-array objects recorded against it. Every cached
// entry belongs to one program generation: Recompile drops all of them
// together with the previous program object.
//
// Program is NOT safe for concurrent use.
package program

import (
	"errors"
	"fmt"

	"github.com/gogpu/glscene/gl"
)

// ErrNotCompiled is returned when a program is used before a successful
// compile.
var ErrNotCompiled = errors.New("program: not compiled")

// CompileError reports a shader stage that failed to compile.
type CompileError struct {
	Stage gl.ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("program: %s shader failed to compile: %s", e.Stage, e.Log)
}

// LinkError reports a program that failed to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "program: link failed: " + e.Log
}

// Stats counts cache activity since the program was created.
type Stats struct {
	Generation     uint64
	AttribQueries  int
	UniformQueries int
	VAOHits        int
	VAOMisses      int
	CachedVAOs     int
}

type uniformEntry struct {
	loc gl.UniformLocation
	ok  bool
}

// Program is a compiled program plus its per-generation caches.
type Program struct {
	dev        gl.Device
	handle     gl.Program
	generation uint64

	attributes map[string]int
	uniforms   map[string]uniformEntry
	vaos       map[string]gl.VertexArray

	stats Stats
}

// New returns an uncompiled program bound to dev.
func New(dev gl.Device) *Program {
	return &Program{
		dev:        dev,
		attributes: make(map[string]int),
		uniforms:   make(map[string]uniformEntry),
		vaos:       make(map[string]gl.VertexArray),
	}
}

// Compiled reports whether the program holds a linked program object.
func (p *Program) Compiled() bool { return p.handle != gl.NoProgram }

// Handle returns the linked program object, or gl.NoProgram.
func (p *Program) Handle() gl.Program { return p.handle }

// Generation increments on every successful compile.
func (p *Program) Generation() uint64 { return p.generation }

// Recompile replaces the program with one built from vert and frag.
//
// All cached locations and vertex arrays are released first, then the
// previous program object. On failure the program is left uncompiled and
// every object created during the attempt has been deleted.
func (p *Program) Recompile(vert, frag string) error {
	p.invalidate()
	if p.handle != gl.NoProgram {
		p.dev.DeleteProgram(p.handle)
		p.handle = gl.NoProgram
	}

	prog, err := p.dev.CreateProgram()
	if err != nil {
		return fmt.Errorf("program: create program: %w", err)
	}

	vs, err := compileShader(p.dev, gl.VertexShader, vert)
	if err != nil {
		p.dev.DeleteProgram(prog)
		return err
	}
	fs, err := compileShader(p.dev, gl.FragmentShader, frag)
	if err != nil {
		p.dev.DeleteShader(vs)
		p.dev.DeleteProgram(prog)
		return err
	}

	p.dev.AttachShader(prog, vs)
	p.dev.AttachShader(prog, fs)
	p.dev.LinkProgram(prog)
	// Attached stages stay alive until the program is deleted.
	p.dev.DeleteShader(vs)
	p.dev.DeleteShader(fs)

	if !p.dev.ProgramLinked(prog) {
		log := p.dev.ProgramInfoLog(prog)
		p.dev.DeleteProgram(prog)
		return &LinkError{Log: log}
	}

	p.handle = prog
	p.generation++
	p.stats.Generation = p.generation
	logger().Debug("program compiled", "program", prog, "generation", p.generation)
	return nil
}

func compileShader(dev gl.Device, stage gl.ShaderStage, source string) (gl.Shader, error) {
	s, err := dev.CreateShader(stage)
	if err != nil {
		return gl.NoShader, fmt.Errorf("program: create %s shader: %w", stage, err)
	}
	dev.ShaderSource(s, source)
	dev.CompileShader(s)
	if !dev.ShaderCompiled(s) {
		log := dev.ShaderInfoLog(s)
		dev.DeleteShader(s)
		return gl.NoShader, &CompileError{Stage: stage, Log: log}
	}
	return s, nil
}

// invalidate drops every cache tied to the current generation.
func (p *Program) invalidate() {
	clear(p.attributes)
	clear(p.uniforms)
	for key, vao := range p.vaos {
		p.dev.DeleteVertexArray(vao)
		delete(p.vaos, key)
	}
	p.stats.CachedVAOs = 0
}

// Attribute returns the location of the named vertex attribute, or -1.
// The first lookup of a name queries the device.
func (p *Program) Attribute(name string) int {
	if loc, ok := p.attributes[name]; ok {
		return loc
	}
	if p.handle == gl.NoProgram {
		return -1
	}
	loc := p.dev.AttribLocation(p.handle, name)
	p.stats.AttribQueries++
	p.attributes[name] = loc
	return loc
}

// Uniform returns the location of the named uniform. Missing uniforms are
// memoized as absent.
func (p *Program) Uniform(name string) (gl.UniformLocation, bool) {
	if e, ok := p.uniforms[name]; ok {
		return e.loc, e.ok
	}
	if p.handle == gl.NoProgram {
		return 0, false
	}
	loc, ok := p.dev.UniformLocation(p.handle, name)
	p.stats.UniformQueries++
	p.uniforms[name] = uniformEntry{loc: loc, ok: ok}
	return loc, ok
}

// VAO binds the vertex array cached under key. On a miss it creates and
// binds a new vertex array, runs record to capture state into it, and
// caches it. hit reports whether the cached array was reused.
func (p *Program) VAO(key string, record func() error) (hit bool, err error) {
	if vao, ok := p.vaos[key]; ok {
		p.dev.BindVertexArray(vao)
		p.stats.VAOHits++
		return true, nil
	}
	p.stats.VAOMisses++
	vao, err := p.dev.CreateVertexArray()
	if err != nil {
		return false, fmt.Errorf("program: create vertex array: %w", err)
	}
	p.dev.BindVertexArray(vao)
	if record != nil {
		if err := record(); err != nil {
			p.dev.BindVertexArray(gl.NoVertexArray)
			p.dev.DeleteVertexArray(vao)
			return false, err
		}
	}
	p.vaos[key] = vao
	p.stats.CachedVAOs = len(p.vaos)
	logger().Debug("vertex array recorded", "key", key, "generation", p.generation)
	return false, nil
}

// HasVAO reports whether key has a cached vertex array.
func (p *Program) HasVAO(key string) bool {
	_, ok := p.vaos[key]
	return ok
}

// DeleteVAO releases the vertex array cached under key, if any.
func (p *Program) DeleteVAO(key string) {
	vao, ok := p.vaos[key]
	if !ok {
		return
	}
	delete(p.vaos, key)
	p.dev.DeleteVertexArray(vao)
	p.stats.CachedVAOs = len(p.vaos)
}

// Use makes the program current on the device.
func (p *Program) Use() error {
	if p.handle == gl.NoProgram {
		return ErrNotCompiled
	}
	p.dev.UseProgram(p.handle)
	return nil
}

// Release deletes the program object and every cached vertex array.
// Safe to call multiple times or on a program that never compiled.
func (p *Program) Release() {
	p.invalidate()
	if p.handle != gl.NoProgram {
		p.dev.DeleteProgram(p.handle)
		p.handle = gl.NoProgram
	}
}

// Stats returns a snapshot of cache counters.
func (p *Program) Stats() Stats {
	return p.stats
}
