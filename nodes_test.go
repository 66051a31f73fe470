package glscene

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/gl/recorder"
	"github.com/gogpu/glscene/propdiff"
)

func TestResetScenario(t *testing.T) {
	fx := newFixture(t)
	initial := propdiff.Of()
	n := fx.attach(t, fx.build(t, TagReset, initial))
	reset := n.(*Reset)

	if got := n.Props().Value("color"); !reflect.DeepEqual(got, []float32{0, 0, 0, 0}) {
		t.Errorf("default color = %v", got)
	}

	next := propdiff.Of("color", []float32{1, 0, 0, 1})
	d, err := fx.drv.CommitUpdate(n, initial, next)
	if err != nil {
		t.Fatalf("CommitUpdate() error = %v", err)
	}
	if !reflect.DeepEqual(d.Keys(), []string{"color"}) {
		t.Errorf("diff keys = %v, want [color]", d.Keys())
	}
	if reset.Color() != [4]float32{1, 0, 0, 1} {
		t.Errorf("Color() = %v", reset.Color())
	}

	fx.rec.Reset()
	fx.frame(t)
	cmds := fx.rec.Commands()
	if len(cmds) != 2 {
		t.Fatalf("commands:\n%s", fx.rec.Log())
	}
	if cmds[0].Type != recorder.CmdClearColor || !reflect.DeepEqual(cmds[0].Floats, []float32{1, 0, 0, 1}) {
		t.Errorf("first command = %v", cmds[0])
	}
	if cmds[1].Type != recorder.CmdClear || cmds[1].Mask != gl.ColorBufferBit {
		t.Errorf("second command = %v", cmds[1])
	}
}

func TestLaterResetWins(t *testing.T) {
	fx := newFixture(t)
	fx.attach(t, fx.build(t, TagReset, propdiff.Of("color", []float32{1, 0, 0, 1})))
	fx.attach(t, fx.build(t, TagReset, propdiff.Of("color", []float32{0, 0, 1, 1})))
	fx.frame(t)

	colors := fx.rec.Filter(recorder.CmdClearColor)
	if len(colors) != 2 || !reflect.DeepEqual(colors[1].Floats, []float32{0, 0, 1, 1}) {
		t.Errorf("clear colors = %v", colors)
	}
}

func TestShaderDrawScenario(t *testing.T) {
	fx := newFixture(t)
	attr := fx.build(t, TagAttribute, propdiff.Of("name", "a_position", "size", 2))
	tint := fx.build(t, TagUniform, propdiff.Of("name", "u_tint", "type", "vec4", "value", []float64{1, 1, 1, 1}))
	fx.attach(t, fx.build(t, TagShaderProgram, shaderProps(), attr, tint))

	fx.rec.Reset()
	st := fx.frame(t)

	cmds := fx.rec.Commands()
	if n := fx.rec.Count(recorder.CmdDrawArrays) + fx.rec.Count(recorder.CmdDrawElements); n != 1 {
		t.Fatalf("draw calls = %d, want 1", n)
	}
	last := cmds[len(cmds)-1]
	if last.Type != recorder.CmdDrawArrays || last.Mode != gl.Triangles || last.First != 0 || last.Count != 3 {
		t.Errorf("draw = %v", last)
	}
	if indexOf(cmds, recorder.CmdUseProgram) != 0 {
		t.Errorf("program should be used first:\n%s", fx.rec.Log())
	}
	if i := indexOf(cmds, recorder.CmdUniform4fv); i < 0 || i >= len(cmds)-1 {
		t.Errorf("uniform should precede the draw:\n%s", fx.rec.Log())
	}
	if st.DrawCalls != 1 || st.Nodes != 3 {
		t.Errorf("FrameStats = %+v", st)
	}
}

func TestShaderIndexedDraw(t *testing.T) {
	fx := newFixture(t)
	fx.attach(t, fx.build(t, TagShaderProgram, shaderProps("mode", "triangle_strip", "index", "u16", "offset", 6, "count", 4)))
	fx.frame(t)

	draws := fx.rec.Filter(recorder.CmdDrawElements)
	if len(draws) != 1 || fx.rec.Count(recorder.CmdDrawArrays) != 0 {
		t.Fatalf("log:\n%s", fx.rec.Log())
	}
	d := draws[0]
	if d.Mode != gl.TriangleStrip || d.Count != 4 || d.Kind != gl.UnsignedShort || d.Offset != 6 {
		t.Errorf("DrawElements = %v", d)
	}
}

func TestShaderCompileErrorScenario(t *testing.T) {
	fx := newFixture(t)
	n, err := fx.drv.CreateInstance(string(TagShaderProgram), shaderProps("frag", brokenFrag))
	if err != nil {
		t.Fatal(err)
	}
	_, err = fx.drv.FinalizeInitialChildren(n)

	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("mount error = %v, want *CompileError", err)
	}
	if ce.Stage != gl.FragmentShader || !strings.Contains(ce.Log, "undeclared identifier u_missing") {
		t.Errorf("CompileError = %+v", ce)
	}
	if !IsBuildError(err) || IsUsageError(err) {
		t.Error("compile failure is a build error, not a usage error")
	}
	if fx.rec.Count(recorder.CmdDeleteProgram) != 1 {
		t.Error("the program object must be released")
	}
	if live := fx.rec.Live(); live.Programs != 0 || live.Shaders != 0 {
		t.Errorf("leaked objects: %+v", live)
	}

	fx.attach(t, n)
	if _, err := fx.root.RenderFrame(context.Background()); !errors.Is(err, ErrNotCompiled) {
		t.Errorf("RenderFrame() error = %v, want ErrNotCompiled", err)
	}
}

func TestShaderRecompileInvalidatesLocations(t *testing.T) {
	fx := newFixture(t)
	attr := fx.build(t, TagAttribute, propdiff.Of("name", "a_position", "size", 2))
	prev := shaderProps()
	shader := fx.attach(t, fx.build(t, TagShaderProgram, prev, attr)).(*ShaderProgram)

	fx.frame(t)
	fx.frame(t)
	if n := fx.rec.Count(recorder.CmdAttribLocation); n != 1 {
		t.Fatalf("AttribLocation queries = %d, want 1", n)
	}
	oldHandle := shader.Program().Handle()

	next := shaderProps("vert", "// v2\n"+testVert)
	if _, err := fx.drv.CommitUpdate(shader, prev, next); err != nil {
		t.Fatalf("CommitUpdate() error = %v", err)
	}
	if shader.Program().Generation() != 2 {
		t.Errorf("Generation() = %d", shader.Program().Generation())
	}
	deleted := fx.rec.Filter(recorder.CmdDeleteProgram)
	if len(deleted) != 1 || deleted[0].Handle != uint32(oldHandle) {
		t.Errorf("DeleteProgram = %v, want handle %d", deleted, oldHandle)
	}

	fx.frame(t)
	if n := fx.rec.Count(recorder.CmdAttribLocation); n != 2 {
		t.Errorf("AttribLocation queries after recompile = %d, want 2", n)
	}
}

func TestShaderBrokenThenFixed(t *testing.T) {
	fx := newFixture(t)
	good := shaderProps()
	shader := fx.attach(t, fx.build(t, TagShaderProgram, good))

	bad := shaderProps("frag", brokenFrag)
	if _, err := fx.drv.CommitUpdate(shader, good, bad); !IsBuildError(err) {
		t.Fatalf("CommitUpdate(bad) error = %v", err)
	}
	if _, err := fx.root.RenderFrame(context.Background()); !errors.Is(err, ErrNotCompiled) {
		t.Fatalf("RenderFrame() error = %v, want ErrNotCompiled", err)
	}
	if _, err := fx.drv.CommitUpdate(shader, bad, good); err != nil {
		t.Fatalf("CommitUpdate(good) error = %v", err)
	}
	fx.frame(t)

	// Count changes do not recompile.
	if _, err := fx.drv.CommitUpdate(shader, good, shaderProps("count", 6)); err != nil {
		t.Fatal(err)
	}
	if n := fx.rec.Count(recorder.CmdCreateProgram); n != 3 {
		t.Errorf("CreateProgram count = %d, want 3", n)
	}
}

func TestShaderDefines(t *testing.T) {
	fx := newFixture(t)
	prev := shaderProps("defines-LIGHTS", 2)
	shader := fx.build(t, TagShaderProgram, prev)

	src := fx.rec.Filter(recorder.CmdShaderSource)
	if len(src) != 2 || !strings.HasPrefix(src[0].Source, "#define LIGHTS 2\n") {
		t.Fatalf("ShaderSource = %v", src)
	}
	defines, _ := shader.Props().Value("defines").(*propdiff.Record)
	if defines.Value("LIGHTS") != 2 {
		t.Errorf("defines = %v", defines.Fields())
	}

	if _, err := fx.drv.CommitUpdate(shader, prev, shaderProps("defines-LIGHTS", 3)); err != nil {
		t.Fatal(err)
	}
	if fx.rec.Count(recorder.CmdCreateProgram) != 2 {
		t.Error("changing a define should recompile")
	}
}

func TestWithDefines(t *testing.T) {
	defs := []propdiff.Field{{Key: "N", Value: 4}, {Key: "USE_FOG", Value: true}, {Key: "SCALE", Value: 1.5}}
	tests := []struct {
		name   string
		lang   gl.Language
		source string
		want   string
	}{
		{
			name:   "glsl version line",
			lang:   gl.GLSL,
			source: "#version 300 es\nvoid main() {}",
			want:   "#version 300 es\n#define N 4\n#define USE_FOG 1\n#define SCALE 1.5\nvoid main() {}",
		},
		{
			name:   "glsl no version",
			lang:   gl.GLSL,
			source: "void main() {}",
			want:   "#define N 4\n#define USE_FOG 1\n#define SCALE 1.5\nvoid main() {}",
		},
		{
			name:   "wgsl",
			lang:   gl.WGSL,
			source: "@vertex fn vs_main() {}",
			want:   "const N = 4;\nconst USE_FOG = true;\nconst SCALE = 1.5;\n@vertex fn vs_main() {}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := withDefines(tt.lang, tt.source, defs); got != tt.want {
				t.Errorf("withDefines() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
	if got := withDefines(gl.GLSL, "x", nil); got != "x" {
		t.Errorf("no defines should leave the source alone, got %q", got)
	}
}

func TestVertexArrayCaching(t *testing.T) {
	fx := newFixture(t)
	buf := fx.build(t, TagBuffer, propdiff.Of("data", []float32{0, 0, 1, 0, 0, 1}))
	pos := fx.build(t, TagAttribute, propdiff.Of("name", "a_position", "size", 2))
	vao := fx.build(t, TagVertexArray, nil, buf, pos)
	fx.attach(t, fx.build(t, TagShaderProgram, shaderProps(), vao))

	first := fx.frame(t)
	second := fx.frame(t)
	if first.VAOMisses != 1 || second.VAOHits != 1 {
		t.Errorf("frame stats = %+v, %+v", first, second)
	}
	if n := fx.rec.Count(recorder.CmdCreateVertexArray); n != 1 {
		t.Errorf("CreateVertexArray = %d, want 1", n)
	}
	if n := fx.rec.Count(recorder.CmdVertexAttribPointer); n != 1 {
		t.Errorf("children rendered %d times, want 1", n)
	}

	// Every draw is followed by an unbind.
	binds := fx.rec.Filter(recorder.CmdBindVertexArray)
	if len(binds) != 4 || binds[1].Handle != 0 || binds[3].Handle != 0 {
		t.Errorf("BindVertexArray = %v", binds)
	}

	color := fx.build(t, TagAttribute, propdiff.Of("name", "a_color", "size", 3))
	if err := fx.drv.AppendChild(vao, color); err != nil {
		t.Fatal(err)
	}
	third := fx.frame(t)
	fx.frame(t)
	if third.VAOMisses != 1 {
		t.Errorf("third frame stats = %+v", third)
	}
	if n := fx.rec.Count(recorder.CmdVertexAttribPointer); n != 3 {
		t.Errorf("VertexAttribPointer = %d, want exactly one re-record", n)
	}
	if n := fx.rec.Count(recorder.CmdDeleteVertexArray); n != 1 {
		t.Errorf("DeleteVertexArray = %d, want the stale recording released", n)
	}
	if fx.rec.Live().VertexArrays != 1 {
		t.Errorf("Live() = %+v", fx.rec.Live())
	}
}

func TestVertexArrayMovesBetweenPrograms(t *testing.T) {
	fx := newFixture(t)
	buf := fx.build(t, TagBuffer, propdiff.Of("data", []float32{0, 0, 1, 0, 0, 1}))
	pos := fx.build(t, TagAttribute, propdiff.Of("name", "a_position", "size", 2))
	vao := fx.build(t, TagVertexArray, nil, buf, pos)
	a := fx.attach(t, fx.build(t, TagShaderProgram, shaderProps(), vao))
	b := fx.attach(t, fx.build(t, TagShaderProgram, shaderProps()))
	fx.frame(t)

	if err := fx.drv.AppendChild(b, vao); err != nil {
		t.Fatal(err)
	}
	if st := fx.frame(t); st.VAOMisses != 1 || st.VAOHits != 0 {
		t.Errorf("after move to b: %+v, want a fresh recording", st)
	}
	if got := fx.rec.Live().VertexArrays; got != 1 {
		t.Errorf("live vertex arrays = %d, want a's recording released", got)
	}

	color := fx.build(t, TagAttribute, propdiff.Of("name", "a_color", "size", 3))
	if err := fx.drv.AppendChild(vao, color); err != nil {
		t.Fatal(err)
	}
	fx.frame(t)

	if err := fx.drv.AppendChild(a, vao); err != nil {
		t.Fatal(err)
	}
	before := fx.rec.Count(recorder.CmdVertexAttribPointer)
	st := fx.frame(t)
	if st.VAOMisses != 1 || st.VAOHits != 0 {
		t.Errorf("after move back to a: %+v, want a re-record", st)
	}
	if n := fx.rec.Count(recorder.CmdVertexAttribPointer) - before; n != 2 {
		t.Errorf("VertexAttribPointer in last frame = %d, want both attributes recorded", n)
	}
	if got := fx.rec.Live().VertexArrays; got != 1 {
		t.Errorf("live vertex arrays = %d, want 1", got)
	}
}

func TestVertexArrayOwnedThenInProgram(t *testing.T) {
	fx := newFixture(t)
	attr := fx.build(t, TagAttribute, propdiff.Of("index", 0, "size", 2))
	vao := fx.attach(t, fx.build(t, TagVertexArray, nil, attr))
	fx.frame(t)

	shader := fx.build(t, TagShaderProgram, shaderProps())
	fx.attach(t, shader)
	if err := fx.drv.AppendChild(shader, vao); err != nil {
		t.Fatal(err)
	}
	fx.frame(t)
	if got := fx.rec.Live().VertexArrays; got != 1 {
		t.Errorf("live vertex arrays = %d, want the owned one released", got)
	}
}

func TestShaderUnbindsVertexArrayOnChildError(t *testing.T) {
	fx := newFixture(t)
	pos := fx.build(t, TagAttribute, propdiff.Of("name", "a_position", "size", 2))
	vao := fx.build(t, TagVertexArray, nil, pos)
	bad := fx.build(t, TagAttribute, propdiff.Of("name", "a_color", "fixed", true, "value", []float32{1, 2, 3, 4, 5}))
	fx.attach(t, fx.build(t, TagShaderProgram, shaderProps(), vao, bad))

	_, err := fx.root.RenderFrame(context.Background())
	var se *UnsupportedSizeError
	if !errors.As(err, &se) {
		t.Fatalf("RenderFrame() error = %v, want *UnsupportedSizeError", err)
	}
	binds := fx.rec.Filter(recorder.CmdBindVertexArray)
	if len(binds) != 2 || binds[1].Handle != 0 {
		t.Errorf("BindVertexArray = %v, want bind then unbind", binds)
	}
}

func TestVertexArrayWithoutProgram(t *testing.T) {
	fx := newFixture(t)
	attr := fx.build(t, TagAttribute, propdiff.Of("index", 0, "size", 2))
	vao := fx.attach(t, fx.build(t, TagVertexArray, nil, attr))

	fx.frame(t)
	fx.frame(t)
	if fx.rec.Count(recorder.CmdCreateVertexArray) != 1 || fx.rec.Count(recorder.CmdVertexAttribPointer) != 1 {
		t.Errorf("log:\n%s", fx.rec.Log())
	}
	if err := fx.drv.RemoveChildFromContainer(vao); err != nil {
		t.Fatal(err)
	}
	if fx.rec.Live().VertexArrays != 0 {
		t.Error("owned vertex array should be released on removal")
	}
}

func TestFixedAttributeSizes(t *testing.T) {
	tests := []struct {
		value []float32
		want  recorder.CommandType
		err   bool
	}{
		{value: []float32{}, err: true},
		{value: []float32{1}, want: recorder.CmdVertexAttrib1f},
		{value: []float32{1, 2}, want: recorder.CmdVertexAttrib2f},
		{value: []float32{1, 2, 3}, want: recorder.CmdVertexAttrib3f},
		{value: []float32{1, 2, 3, 4}, want: recorder.CmdVertexAttrib4f},
		{value: []float32{1, 2, 3, 4, 5}, err: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("size %d", len(tt.value)), func(t *testing.T) {
			fx := newFixture(t)
			fx.attach(t, fx.build(t, TagAttribute, propdiff.Of("index", 3, "fixed", true, "value", tt.value)))
			_, err := fx.root.RenderFrame(context.Background())

			if tt.err {
				var se *UnsupportedSizeError
				if !errors.As(err, &se) || se.Size != len(tt.value) {
					t.Fatalf("error = %v, want *UnsupportedSizeError", err)
				}
				if !IsUsageError(err) {
					t.Error("size error should be a usage error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			cmds := fx.rec.Filter(tt.want)
			if len(cmds) != 1 || cmds[0].Index != 3 || !reflect.DeepEqual(cmds[0].Floats, tt.value) {
				t.Errorf("%s = %v", tt.want, cmds)
			}
		})
	}
}

func TestAttributeArrayPointer(t *testing.T) {
	fx := newFixture(t)
	attr := fx.build(t, TagAttribute, propdiff.Of(
		"name", "a_color", "size", 3, "type", "u8", "normalized", true, "stride", 12, "offset", 8,
	))
	fx.attach(t, fx.build(t, TagShaderProgram, shaderProps(), attr))
	fx.frame(t)

	ptr := fx.rec.Filter(recorder.CmdVertexAttribPointer)
	want := recorder.Command{
		Type: recorder.CmdVertexAttribPointer, Index: 1, Size: 3, Kind: gl.UnsignedByte,
		Normalized: true, Stride: 12, Offset: 8,
	}
	if len(ptr) != 1 || !reflect.DeepEqual(ptr[0], want) {
		t.Errorf("VertexAttribPointer = %v, want %v", ptr, want)
	}
	if en := fx.rec.Filter(recorder.CmdEnableVertexAttribArray); len(en) != 1 || en[0].Index != 1 {
		t.Errorf("EnableVertexAttribArray = %v", en)
	}
}

func TestAttributeUnresolvedIsNoop(t *testing.T) {
	fx := newFixture(t)
	attr := fx.build(t, TagAttribute, propdiff.Of("name", "a_missing", "size", 2))
	fx.attach(t, fx.build(t, TagShaderProgram, shaderProps(), attr))
	fx.frame(t)
	if fx.rec.Count(recorder.CmdVertexAttribPointer) != 0 {
		t.Error("an unresolved attribute should not issue a pointer call")
	}
}

func TestUniformDispatch(t *testing.T) {
	ident := mgl32.Ident4()
	tests := []struct {
		typ       string
		value     any
		transpose bool
		want      recorder.CommandType
		floats    []float32
		ints      []int32
	}{
		{typ: "int", value: 7, want: recorder.CmdUniform1i, ints: []int32{7}},
		{typ: "float", value: 0.5, want: recorder.CmdUniform1f, floats: []float32{0.5}},
		{typ: "vec2", value: []float64{1, 2}, want: recorder.CmdUniform2fv, floats: []float32{1, 2}},
		{typ: "vec3", value: mgl32.Vec3{1, 2, 3}, want: recorder.CmdUniform3fv, floats: []float32{1, 2, 3}},
		{typ: "vec4", value: []any{1, 2, 3, 4}, want: recorder.CmdUniform4fv, floats: []float32{1, 2, 3, 4}},
		{typ: "ivec2", value: []int{1, 2}, want: recorder.CmdUniform2iv, ints: []int32{1, 2}},
		{typ: "ivec3", value: []int32{1, 2, 3}, want: recorder.CmdUniform3iv, ints: []int32{1, 2, 3}},
		{typ: "ivec4", value: []float64{1, 2, 3, 4}, want: recorder.CmdUniform4iv, ints: []int32{1, 2, 3, 4}},
		{typ: "mat2", value: []float32{1, 0, 0, 1}, want: recorder.CmdUniformMatrix2fv, floats: []float32{1, 0, 0, 1}},
		{typ: "mat3", value: mgl32.Ident3(), want: recorder.CmdUniformMatrix3fv, floats: []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}},
		{typ: "mat4", value: ident, transpose: true, want: recorder.CmdUniformMatrix4fv, floats: ident[:]},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			fx := newFixture(t)
			props := propdiff.Of("name", "u_tint", "type", tt.typ, "value", tt.value)
			if tt.transpose {
				props.Set("transpose", true)
			}
			u := fx.build(t, TagUniform, props)
			fx.attach(t, fx.build(t, TagShaderProgram, shaderProps(), u))
			fx.frame(t)

			cmds := fx.rec.Filter(tt.want)
			if len(cmds) != 1 {
				t.Fatalf("log:\n%s", fx.rec.Log())
			}
			c := cmds[0]
			if c.Transpose != tt.transpose {
				t.Errorf("Transpose = %t, want %t", c.Transpose, tt.transpose)
			}
			if tt.floats != nil && !reflect.DeepEqual(c.Floats, tt.floats) {
				t.Errorf("Floats = %v, want %v", c.Floats, tt.floats)
			}
			if tt.ints != nil && !reflect.DeepEqual(c.Ints, tt.ints) {
				t.Errorf("Ints = %v, want %v", c.Ints, tt.ints)
			}
		})
	}
}

func TestPropValidation(t *testing.T) {
	tests := []struct {
		name  string
		tag   Tag
		props *propdiff.Record
		key   string
	}{
		{"reset color length", TagReset, propdiff.Of("color", []float32{1, 0, 0}), "color"},
		{"buffer target", TagBuffer, propdiff.Of("target", "uniform"), "target"},
		{"buffer usage", TagBuffer, propdiff.Of("usage", "forever"), "usage"},
		{"buffer element index range", TagBuffer, propdiff.Of("target", "element_array", "data", []any{1, 70000}), "data"},
		{"attribute type", TagAttribute, propdiff.Of("type", "u32"), "type"},
		{"attribute size", TagAttribute, propdiff.Of("size", 5), "size"},
		{"uniform type", TagUniform, propdiff.Of("name", "u", "type", "vec5", "value", 1), "type"},
		{"uniform components", TagUniform, propdiff.Of("name", "u", "type", "vec3", "value", []float32{1, 2}), "value"},
		{"uniform transpose", TagUniform, propdiff.Of("name", "u", "type", "vec4", "transpose", true), "transpose"},
		{"uniform missing type", TagUniform, propdiff.Of("name", "u", "value", 1), "type"},
		{"shader mode", TagShaderProgram, propdiff.Of("mode", "hexagons"), "mode"},
		{"shader index type", TagShaderProgram, propdiff.Of("index", "float"), "index"},
		{"shader count", TagShaderProgram, propdiff.Of("count", -1), "count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			_, err := fx.drv.CreateInstance(string(tt.tag), tt.props)
			var pe *PropError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *PropError", err)
			}
			if pe.Key != tt.key {
				t.Errorf("Key = %q, want %q", pe.Key, tt.key)
			}
			if !IsUsageError(err) {
				t.Error("prop errors should be usage errors")
			}
		})
	}
}

func TestFailedUpdateKeepsProps(t *testing.T) {
	fx := newFixture(t)
	prev := propdiff.Of("color", []float32{1, 1, 1, 1})
	n := fx.build(t, TagReset, prev)

	_, err := fx.drv.CommitUpdate(n, prev, propdiff.Of("color", []float32{0, 0}))
	if !IsUsageError(err) {
		t.Fatalf("error = %v", err)
	}
	if got := n.(*Reset).Color(); got != [4]float32{1, 1, 1, 1} {
		t.Errorf("Color() = %v, want unchanged", got)
	}
	if got := n.Props().Value("color"); !reflect.DeepEqual(got, []float32{1, 1, 1, 1}) {
		t.Errorf("props color = %v, want unchanged", got)
	}
}

func TestBufferUpload(t *testing.T) {
	fx := newFixture(t)
	prev := propdiff.Of("target", "element_array", "usage", "static", "data", []any{0, 1, 2})
	n := fx.attach(t, fx.build(t, TagBuffer, prev))
	buf := n.(*Buffer)

	uploads := fx.rec.Filter(recorder.CmdBufferData)
	if len(uploads) != 1 || len(uploads[0].Data) != 6 || uploads[0].Usage != gl.StaticDraw {
		t.Fatalf("BufferData = %v", uploads)
	}
	binds := fx.rec.Filter(recorder.CmdBindBuffer)
	if len(binds) != 2 || binds[0].Handle != uint32(buf.Handle()) || binds[1].Handle != 0 {
		t.Errorf("mount should bind then unbind, got %v", binds)
	}

	next := propdiff.Of("target", "element_array", "usage", "static", "data", []any{0, 1, 2, 3})
	if _, err := fx.drv.CommitUpdate(n, prev, next); err != nil {
		t.Fatal(err)
	}
	uploads = fx.rec.Filter(recorder.CmdBufferData)
	if len(uploads) != 2 || len(uploads[1].Data) != 8 {
		t.Errorf("re-upload = %v", uploads)
	}

	fx.rec.Reset()
	fx.frame(t)
	binds = fx.rec.Filter(recorder.CmdBindBuffer)
	if len(binds) != 1 || binds[0].Target != gl.ElementArrayBuffer || binds[0].Handle != uint32(buf.Handle()) {
		t.Errorf("render bind = %v", binds)
	}
}

func TestEncodeData(t *testing.T) {
	tests := []struct {
		name   string
		v      any
		target gl.Target
		want   int
	}{
		{"float32", []float32{1, 2}, gl.ArrayBuffer, 8},
		{"untyped array", []float64{1, 2, 3}, gl.ArrayBuffer, 12},
		{"untyped elements", []int{1, 2, 3}, gl.ElementArrayBuffer, 6},
		{"u32 elements", []uint32{1, 2}, gl.ElementArrayBuffer, 8},
		{"bytes", []byte{1, 2, 3}, gl.ArrayBuffer, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeData(tt.v, tt.target)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
	if _, err := encodeData("nope", gl.ArrayBuffer); err == nil {
		t.Error("a string should not encode")
	}
}
