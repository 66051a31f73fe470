// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/gl/recorder"
)

const (
	vert = `attribute vec2 a_position;
uniform vec4 u_color;
void main() {}`
	frag = `uniform vec4 u_color;
void main() {}`
	badFrag = "void main() {\n#error undeclared identifier\n}"
)

func newCompiled(t *testing.T) (*Program, *recorder.Recorder) {
	t.Helper()
	rec := recorder.New()
	p := New(rec)
	if err := p.Recompile(vert, frag); err != nil {
		t.Fatalf("Recompile() error = %v", err)
	}
	return p, rec
}

func TestRecompileSuccess(t *testing.T) {
	p, rec := newCompiled(t)
	if !p.Compiled() || p.Generation() != 1 {
		t.Fatalf("Compiled()=%t Generation()=%d", p.Compiled(), p.Generation())
	}
	live := rec.Live()
	if live.Programs != 1 || live.Shaders != 0 {
		t.Errorf("Live() = %+v, want one program and no loose shaders", live)
	}
	if err := p.Use(); err != nil {
		t.Fatalf("Use() error = %v", err)
	}
	if rec.Count(recorder.CmdUseProgram) != 1 {
		t.Error("Use() should issue UseProgram")
	}
}

func TestRecompileFailures(t *testing.T) {
	tests := []struct {
		name      string
		vert      string
		frag      string
		opts      []recorder.Option
		wantStage gl.ShaderStage
		wantLink  bool
	}{
		{name: "vertex", vert: badFrag, frag: frag, wantStage: gl.VertexShader},
		{name: "fragment", vert: vert, frag: badFrag, wantStage: gl.FragmentShader},
		{
			name: "link",
			vert: vert, frag: frag,
			opts: []recorder.Option{recorder.WithLinkHook(func(_, _ string) (string, bool) {
				return "too many varyings", false
			})},
			wantLink: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recorder.New(tt.opts...)
			p := New(rec)
			err := p.Recompile(tt.vert, tt.frag)

			if tt.wantLink {
				var le *LinkError
				if !errors.As(err, &le) || le.Log != "too many varyings" {
					t.Fatalf("error = %v, want *LinkError", err)
				}
			} else {
				var ce *CompileError
				if !errors.As(err, &ce) {
					t.Fatalf("error = %v, want *CompileError", err)
				}
				if ce.Stage != tt.wantStage || !strings.Contains(ce.Log, "undeclared identifier") {
					t.Errorf("CompileError = %+v", ce)
				}
			}

			if live := rec.Live().Total(); live != 0 {
				t.Errorf("%d objects leaked: %+v", live, rec.Live())
			}
			if rec.Count(recorder.CmdDeleteProgram) != 1 {
				t.Error("the program object must be deleted")
			}
			if p.Compiled() {
				t.Error("program must be left uncompiled")
			}
			if !errors.Is(p.Use(), ErrNotCompiled) {
				t.Error("Use() on a broken program should return ErrNotCompiled")
			}
		})
	}
}

func TestRecompileReleasesPrevious(t *testing.T) {
	p, rec := newCompiled(t)
	old := p.Handle()
	if _, err := p.VAO("a", nil); err != nil {
		t.Fatal(err)
	}
	rec.Reset()

	if err := p.Recompile(vert, frag); err != nil {
		t.Fatal(err)
	}
	deletes := rec.Filter(recorder.CmdDeleteVertexArray, recorder.CmdDeleteProgram)
	if len(deletes) != 2 || deletes[1].Handle != uint32(old) {
		t.Errorf("deletes = %v, want the VAO then program %d", deletes, old)
	}
	if p.Generation() != 2 || p.HasVAO("a") {
		t.Errorf("Generation()=%d HasVAO(a)=%t", p.Generation(), p.HasVAO("a"))
	}
	if rec.Live().Programs != 1 {
		t.Errorf("Live().Programs = %d", rec.Live().Programs)
	}
}

func TestLocationsMemoizedPerGeneration(t *testing.T) {
	p, rec := newCompiled(t)

	for range 3 {
		if loc := p.Attribute("a_position"); loc != 0 {
			t.Fatalf("Attribute() = %d", loc)
		}
		if loc := p.Attribute("a_missing"); loc != -1 {
			t.Fatalf("Attribute(missing) = %d", loc)
		}
		if _, ok := p.Uniform("u_color"); !ok {
			t.Fatal("Uniform(u_color) missing")
		}
		if _, ok := p.Uniform("u_none"); ok {
			t.Fatal("Uniform(u_none) should be absent")
		}
	}
	if n := rec.Count(recorder.CmdAttribLocation); n != 2 {
		t.Errorf("AttribLocation queries = %d, want 2", n)
	}
	if n := rec.Count(recorder.CmdUniformLocation); n != 2 {
		t.Errorf("UniformLocation queries = %d, want 2", n)
	}

	if err := p.Recompile(vert, frag); err != nil {
		t.Fatal(err)
	}
	p.Attribute("a_position")
	p.Uniform("u_color")
	if n := rec.Count(recorder.CmdAttribLocation); n != 3 {
		t.Errorf("after recompile AttribLocation queries = %d, want 3", n)
	}
	if n := rec.Count(recorder.CmdUniformLocation); n != 3 {
		t.Errorf("after recompile UniformLocation queries = %d, want 3", n)
	}
	st := p.Stats()
	if st.AttribQueries != 3 || st.UniformQueries != 3 || st.Generation != 2 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestVAOCache(t *testing.T) {
	p, rec := newCompiled(t)
	records := 0
	record := func() error { records++; return nil }

	hit, err := p.VAO("k", record)
	if err != nil || hit {
		t.Fatalf("first VAO() = %t, %v", hit, err)
	}
	hit, err = p.VAO("k", record)
	if err != nil || !hit {
		t.Fatalf("second VAO() = %t, %v", hit, err)
	}
	if records != 1 {
		t.Errorf("record ran %d times, want 1", records)
	}
	if rec.Count(recorder.CmdCreateVertexArray) != 1 || rec.Count(recorder.CmdBindVertexArray) != 2 {
		t.Errorf("log:\n%s", rec.Log())
	}

	p.DeleteVAO("k")
	p.DeleteVAO("k")
	if rec.Live().VertexArrays != 0 {
		t.Error("DeleteVAO should release the vertex array")
	}

	st := p.Stats()
	if st.VAOHits != 1 || st.VAOMisses != 1 || st.CachedVAOs != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestVAORecordFailure(t *testing.T) {
	p, rec := newCompiled(t)
	boom := errors.New("boom")
	if _, err := p.VAO("k", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("VAO() error = %v", err)
	}
	if p.HasVAO("k") || rec.Live().VertexArrays != 0 {
		t.Error("a failed recording must not be cached")
	}
}

func TestRelease(t *testing.T) {
	p, rec := newCompiled(t)
	if _, err := p.VAO("k", nil); err != nil {
		t.Fatal(err)
	}
	p.Release()
	p.Release()
	if rec.Live().Total() != 0 {
		t.Errorf("Live() after Release = %+v", rec.Live())
	}
	if rec.Count(recorder.CmdDeleteProgram) != 1 {
		t.Error("double Release must delete once")
	}

	never := New(rec)
	never.Release()
}
