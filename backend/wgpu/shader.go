// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/glscene/gl"
)

// Entry points a linked program must provide.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// shader is one compiled WGSL stage. A deleted shader stays alive while a
// program still holds it.
type shader struct {
	stage    gl.ShaderStage
	source   string
	module   hal.ShaderModule
	compiled bool
	log      string
	refs     int
	deleted  bool
}

// program is a linked pair of stages with its reflected interface and
// uniform storage.
type program struct {
	handle gl.Program
	stages [2]gl.Shader
	linked bool
	log    string

	vs, fs   *shader
	attribs  map[string]uint32
	inputs   []uint32
	uniforms []uniformSlot
	byName   map[string]int

	ubuf       hal.Buffer
	data       []byte
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	bindGroup  hal.BindGroup
}

// CreateShader allocates a shader of the given stage.
func (d *Device) CreateShader(stage gl.ShaderStage) (gl.Shader, error) {
	h := gl.Shader(d.newID())
	d.shaders[h] = &shader{stage: stage}
	return h, nil
}

// ShaderSource sets the WGSL source of h.
func (d *Device) ShaderSource(h gl.Shader, source string) {
	if s, ok := d.shaders[h]; ok {
		s.source = source
	}
}

// CompileShader compiles the source of h with naga and creates the shader
// module. A compile error becomes the info log.
func (d *Device) CompileShader(h gl.Shader) {
	s, ok := d.shaders[h]
	if !ok {
		return
	}
	d.destroyModule(s)
	s.compiled, s.log = false, ""

	spirv, err := compileWGSL(s.source)
	if err != nil {
		s.log = err.Error()
		d.logger().Debug("wgpu shader compile failed", "shader", h, "stage", s.stage, "err", err)
		return
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  fmt.Sprintf("glscene_%s_%d", s.stage, h),
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		s.log = fmt.Sprintf("create shader module: %v", err)
		return
	}
	s.module, s.compiled = module, true
	d.logger().Debug("wgpu shader compiled", "shader", h, "stage", s.stage, "words", len(spirv))
}

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// ShaderCompiled reports whether the last compile of h succeeded.
func (d *Device) ShaderCompiled(h gl.Shader) bool {
	s, ok := d.shaders[h]
	return ok && s.compiled
}

// ShaderInfoLog returns the compiler output of h.
func (d *Device) ShaderInfoLog(h gl.Shader) string {
	if s, ok := d.shaders[h]; ok {
		return s.log
	}
	return ""
}

// DeleteShader flags h for deletion. The module is destroyed once no
// program holds it.
func (d *Device) DeleteShader(h gl.Shader) {
	s, ok := d.shaders[h]
	if !ok {
		return
	}
	s.deleted = true
	d.releaseShader(h, s)
}

func (d *Device) releaseShader(h gl.Shader, s *shader) {
	if !s.deleted || s.refs > 0 {
		return
	}
	d.destroyModule(s)
	delete(d.shaders, h)
}

func (d *Device) destroyModule(s *shader) {
	if s.module != nil {
		d.device.DestroyShaderModule(s.module)
		s.module = nil
	}
}

// CreateProgram allocates an empty program.
func (d *Device) CreateProgram() (gl.Program, error) {
	h := gl.Program(d.newID())
	d.programs[h] = &program{handle: h}
	return h, nil
}

// AttachShader attaches s to the stage slot of its shader type, replacing
// a previous shader of that stage.
func (d *Device) AttachShader(ph gl.Program, sh gl.Shader) {
	p, ok := d.programs[ph]
	s, sok := d.shaders[sh]
	if !ok || !sok || int(s.stage) >= len(p.stages) {
		return
	}
	d.detach(p, s.stage)
	p.stages[s.stage] = sh
	s.refs++
}

func (d *Device) detach(p *program, stage gl.ShaderStage) {
	prev := p.stages[stage]
	p.stages[stage] = gl.NoShader
	if s, ok := d.shaders[prev]; ok {
		s.refs--
		d.releaseShader(prev, s)
	}
}

// LinkProgram links the attached stages. The vertex stage must define
// vs_main and the fragment stage fs_main.
func (d *Device) LinkProgram(ph gl.Program) {
	p, ok := d.programs[ph]
	if !ok {
		return
	}
	d.unlink(p)
	if err := d.link(p); err != nil {
		p.log = err.Error()
		d.unlink(p)
		d.logger().Debug("wgpu program link failed", "program", ph, "err", err)
		return
	}
	p.linked = true
	d.logger().Debug("wgpu program linked", "program", ph,
		"attributes", len(p.attribs), "uniforms", len(p.uniforms))
}

func (d *Device) link(p *program) error {
	vs, ok := d.shaders[p.stages[gl.VertexShader]]
	if !ok || !vs.compiled {
		return fmt.Errorf("missing compiled vertex shader")
	}
	fs, ok := d.shaders[p.stages[gl.FragmentShader]]
	if !ok || !fs.compiled {
		return fmt.Errorf("missing compiled fragment shader")
	}
	if !hasEntry(vs.source, VertexEntry) {
		return fmt.Errorf("vertex stage has no %s entry point", VertexEntry)
	}
	if !hasEntry(fs.source, FragmentEntry) {
		return fmt.Errorf("fragment stage has no %s entry point", FragmentEntry)
	}
	p.vs, p.fs = vs, fs

	p.attribs = reflectInputs(vs.source)
	p.inputs = p.inputs[:0]
	for _, loc := range p.attribs {
		p.inputs = append(p.inputs, loc)
	}
	slices.Sort(p.inputs)

	slots, err := reflectUniforms(vs.source, fs.source)
	if err != nil {
		return err
	}
	p.uniforms = slots
	p.byName = make(map[string]int, len(slots))
	for i, u := range slots {
		p.byName[u.name] = i
	}
	return d.createUniformStorage(p)
}

// unlink drops everything a previous link created.
func (d *Device) unlink(p *program) {
	d.pipelines.DeleteFunc(func(k pipelineKey) bool { return k.program == p.handle })
	d.destroyUniformStorage(p)
	p.linked, p.log = false, ""
	p.vs, p.fs = nil, nil
	p.attribs, p.uniforms, p.byName = nil, nil, nil
}

// ProgramLinked reports whether the last link of h succeeded.
func (d *Device) ProgramLinked(h gl.Program) bool {
	p, ok := d.programs[h]
	return ok && p.linked
}

// ProgramInfoLog returns the linker output of h.
func (d *Device) ProgramInfoLog(h gl.Program) string {
	if p, ok := d.programs[h]; ok {
		return p.log
	}
	return ""
}

// DeleteProgram destroys h, its pipelines and its uniform storage, and
// releases its stages.
func (d *Device) DeleteProgram(h gl.Program) {
	p, ok := d.programs[h]
	if !ok {
		return
	}
	d.unlink(p)
	d.detach(p, gl.VertexShader)
	d.detach(p, gl.FragmentShader)
	if d.current == p {
		d.current = nil
	}
	delete(d.programs, h)
}

// UseProgram makes h the program of subsequent uniform calls and draws.
func (d *Device) UseProgram(h gl.Program) {
	d.current = d.programs[h]
}

// AttribLocation returns the @location of a vs_main input, or -1.
func (d *Device) AttribLocation(h gl.Program, name string) int {
	p, ok := d.programs[h]
	if !ok || !p.linked {
		return -1
	}
	loc, ok := p.attribs[name]
	if !ok {
		return -1
	}
	return int(loc)
}

// UniformLocation returns the location of a uniform binding by variable
// name.
func (d *Device) UniformLocation(h gl.Program, name string) (gl.UniformLocation, bool) {
	p, ok := d.programs[h]
	if !ok || !p.linked {
		return 0, false
	}
	i, ok := p.byName[name]
	if !ok {
		return 0, false
	}
	return gl.UniformLocation(i), true //nolint:gosec // slot count is small
}

var (
	structRe   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRe = regexp.MustCompile(`@location\(\s*(\d+)\s*\)\s*(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:`)
	paramRe    = regexp.MustCompile(`(?:^|,)\s*(\w+)\s*:\s*(\w+)\s*$`)
	uniformRe  = regexp.MustCompile(`@group\(\s*0\s*\)\s*@binding\(\s*(\d+)\s*\)\s*var<uniform>\s+(\w+)\s*:\s*([\w<>, ]+?)\s*;`)
)

func hasEntry(source, name string) bool {
	return regexp.MustCompile(`fn\s+` + name + `\s*\(`).MatchString(source)
}

// entryParams returns the text between the parentheses of fn name(...).
func entryParams(source, name string) string {
	loc := regexp.MustCompile(`fn\s+` + name + `\s*\(`).FindStringIndex(source)
	if loc == nil {
		return ""
	}
	depth := 1
	for i := loc[1]; i < len(source); i++ {
		switch source[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return source[loc[1]:i]
			}
		}
	}
	return ""
}

// reflectInputs maps vs_main input names to their locations. Inputs are
// either annotated parameters or fields of a struct parameter.
func reflectInputs(source string) map[string]uint32 {
	params := entryParams(source, VertexEntry)
	out := make(map[string]uint32)
	addLocations(out, params)

	structs := make(map[string]string)
	for _, m := range structRe.FindAllStringSubmatch(source, -1) {
		structs[m[1]] = m[2]
	}
	for _, param := range strings.Split(params, ",") {
		if strings.Contains(param, "@") {
			continue
		}
		m := paramRe.FindStringSubmatch("," + param)
		if m == nil {
			continue
		}
		if body, ok := structs[m[2]]; ok {
			addLocations(out, body)
		}
	}
	return out
}

func addLocations(out map[string]uint32, text string) {
	for _, m := range locationRe.FindAllStringSubmatch(text, -1) {
		loc, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		out[m[2]] = uint32(loc)
	}
}

// reflectUniforms collects the group 0 uniform bindings of both stages in
// binding order. A name declared in both stages must agree.
func reflectUniforms(sources ...string) ([]uniformSlot, error) {
	seen := make(map[string]uniformSlot)
	var slots []uniformSlot
	for _, src := range sources {
		for _, m := range uniformRe.FindAllStringSubmatch(src, -1) {
			binding, err := strconv.ParseUint(m[1], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("uniform %s: bad binding %q", m[2], m[1])
			}
			kind, ok := parseUniformKind(m[3])
			if !ok {
				return nil, fmt.Errorf("uniform %s: unsupported type %s", m[2], m[3])
			}
			slot := uniformSlot{name: m[2], binding: uint32(binding), kind: kind}
			if prev, dup := seen[slot.name]; dup {
				if prev.binding != slot.binding || prev.kind != slot.kind {
					return nil, fmt.Errorf("uniform %s: stages disagree", slot.name)
				}
				continue
			}
			for _, s := range slots {
				if s.binding == slot.binding {
					return nil, fmt.Errorf("uniform %s: binding %d already used by %s", slot.name, slot.binding, s.name)
				}
			}
			seen[slot.name] = slot
			slots = append(slots, slot)
		}
	}
	slices.SortFunc(slots, func(a, b uniformSlot) int { return int(a.binding) - int(b.binding) })
	return slots, nil
}
