package glscene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/program"
	"github.com/gogpu/glscene/propdiff"
)

// ShaderProgram compiles a vertex and fragment stage, renders its children
// with itself as the active program, then issues one draw call.
//
// Props:
//   - vert, frag: stage sources in the device's shading language
//   - defines: nested record of preprocessor constants, updated through
//     flattened "defines-NAME" keys
//   - mode: primitive topology, default "triangles"
//   - count: vertex or index count
//   - offset: first vertex, or byte offset into the element buffer
//   - index: "u8", "u16" or "u32"; when set the draw is indexed
type ShaderProgram struct {
	node
	cfg  shaderConfig
	prog *program.Program
}

type shaderConfig struct {
	vert, frag string
	defines    []propdiff.Field
	mode       gl.Mode
	count      int
	offset     int
	index      gl.Type
	indexed    bool
}

func newShaderProgram(id uint64) *ShaderProgram {
	s := &ShaderProgram{cfg: shaderConfig{mode: gl.Triangles}}
	s.init(s, TagShaderProgram, id, false, propdiff.Of(
		"vert", "",
		"frag", "",
		"defines", &propdiff.Record{},
		"mode", "triangles",
		"count", 0,
		"offset", 0,
	))
	return s
}

// Program returns the node's program cache, or nil before mount.
func (s *ShaderProgram) Program() *program.Program { return s.prog }

// Mode returns the validated primitive topology.
func (s *ShaderProgram) Mode() gl.Mode { return s.cfg.mode }

// UpdateProps implements Node. On a mounted node a change to vert, frag
// or any define recompiles. A failed recompile leaves the node without a
// program until a later update compiles.
func (s *ShaderProgram) UpdateProps(d propdiff.Diff) error {
	next, err := s.applied(d)
	if err != nil {
		return err
	}
	dec := newDecoder(s.tag, next)
	cfg := shaderConfig{
		vert:    dec.string("vert", ""),
		frag:    dec.string("frag", ""),
		mode:    dec.mode("mode", gl.Triangles),
		count:   dec.int("count", 0),
		offset:  dec.int("offset", 0),
		indexed: dec.has("index"),
		index:   dec.glType("index", gl.UnsignedShort, gl.UnsignedByte, gl.UnsignedShort, gl.UnsignedInt),
	}
	if v, ok := dec.lookup("defines"); ok {
		rec, isRec := v.(*propdiff.Record)
		if !isRec {
			dec.fail("defines", v, "want a record")
		} else {
			cfg.defines = rec.Fields()
			for _, f := range cfg.defines {
				if k := propdiff.KindOf(f.Value); k != propdiff.KindBool && k != propdiff.KindNumber && k != propdiff.KindString {
					dec.fail("defines"+propdiff.PathSeparator+f.Key, f.Value, "want a scalar")
				}
			}
		}
	}
	if dec.err != nil {
		return dec.err
	}
	s.props, s.cfg = next, cfg

	if s.prog != nil && (d.Has("vert") || d.Has("frag") || d.HasPrefix("defines")) {
		return s.recompile()
	}
	return nil
}

// Mount creates the program cache and compiles the sources.
func (s *ShaderProgram) Mount(root *Root) error {
	s.bind(root)
	if s.prog == nil {
		s.prog = program.New(root.dev)
	}
	return s.recompile()
}

func (s *ShaderProgram) recompile() error {
	lang := s.root.dev.Language()
	vert := withDefines(lang, s.cfg.vert, s.cfg.defines)
	frag := withDefines(lang, s.cfg.frag, s.cfg.defines)
	err := s.prog.Recompile(vert, frag)
	s.root.metrics.compiled(err)
	if err != nil {
		Logger().Warn("shader program failed to build", "node", s.id, "err", err)
		return fmt.Errorf("glscene: shader %d: %w", s.id, err)
	}
	return nil
}

// Unmount deletes the program and every vertex array cached in it.
func (s *ShaderProgram) Unmount() {
	if s.prog != nil {
		s.prog.Release()
	}
	s.node.Unmount()
}

// Render makes the program current, renders the children with it as the
// active program and issues the draw call.
func (s *ShaderProgram) Render(f *Frame) error {
	if s.prog == nil {
		return ErrNotCompiled
	}
	if err := f.use(s.prog); err != nil {
		return err
	}
	f.push(s.prog)
	outerVAO := f.vaoBound
	f.vaoBound = false
	defer func() {
		if f.vaoBound {
			f.dev.BindVertexArray(gl.NoVertexArray)
		}
		f.pop()
		f.vaoBound = outerVAO
	}()

	if err := s.renderChildren(f); err != nil {
		return err
	}
	// A nested shader may have switched programs.
	if err := f.use(s.prog); err != nil {
		return err
	}

	var err error
	if s.cfg.indexed {
		err = f.dev.DrawElements(s.cfg.mode, s.cfg.count, s.cfg.index, s.cfg.offset)
	} else {
		err = f.dev.DrawArrays(s.cfg.mode, s.cfg.offset, s.cfg.count)
	}
	f.stats.DrawCalls++
	if err != nil {
		return fmt.Errorf("glscene: shader %d: draw: %w", s.id, err)
	}
	return nil
}

// withDefines prepends the defines to source in the syntax of lang. GLSL
// defines go after a leading #version line.
func withDefines(lang gl.Language, source string, defines []propdiff.Field) string {
	if len(defines) == 0 {
		return source
	}
	var pre strings.Builder
	for _, d := range defines {
		switch lang {
		case gl.WGSL:
			fmt.Fprintf(&pre, "const %s = %s;\n", d.Key, defineValue(lang, d.Value))
		default:
			fmt.Fprintf(&pre, "#define %s %s\n", d.Key, defineValue(lang, d.Value))
		}
	}
	if lang == gl.GLSL {
		trimmed := strings.TrimLeft(source, " \t\r\n")
		if strings.HasPrefix(trimmed, "#version") {
			line, rest, _ := strings.Cut(trimmed, "\n")
			return line + "\n" + pre.String() + rest
		}
	}
	return pre.String() + source
}

func defineValue(lang gl.Language, v any) string {
	switch x := v.(type) {
	case bool:
		if lang == gl.GLSL {
			if x {
				return "1"
			}
			return "0"
		}
		return strconv.FormatBool(x)
	case string:
		return x
	}
	f, _ := propdiff.ToFloat64(v)
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// IsBuildError reports whether err is a shader compile or link failure.
func IsBuildError(err error) bool {
	var ce *CompileError
	var le *LinkError
	return errors.As(err, &ce) || errors.As(err, &le)
}
