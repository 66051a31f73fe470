package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/glscene"
	"github.com/gogpu/glscene/backend"
	"github.com/gogpu/glscene/gl/recorder"
	"github.com/gogpu/glscene/hclscene"
)

const glslScene = `
reset {
  color = clear
}

shader "tri" {
  vert  = "attribute vec2 a_position; void main() {}"
  frag  = "void main() {}"
  count = 3

  vertex_array {
    buffer {
      data = [0, 0, 1, 0, 0, 1]
    }
    attribute {
      name = "a_position"
      size = 2
    }
  }
}
`

const wgslShader = `@group(0) @binding(0) var<uniform> u_tint: vec4<f32>;

@vertex
fn vs_main(@location(0) position: vec2<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(position, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return u_tint;
}`

const wgslScene = `
reset {
  color = [0, 0, 0, 1]
}

shader "tri" {
  vert  = <<-EOT
SHADER
EOT
  frag  = <<-EOT
SHADER
EOT
  count = 3

  uniform {
    name  = "u_tint"
    type  = "vec4"
    value = [1, 0, 0, 1]
  }

  vertex_array {
    buffer {
      data = [0, 0, 1, 0, 0, 1]
    }
    attribute {
      name = "position"
      size = 2
    }
  }
}
`

func writeScene(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.hcl")
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

var clearVar = []string{"clear=[0, 0, 0, 1]"}

func TestParseVars(t *testing.T) {
	tests := []struct {
		name    string
		vars    []string
		want    map[string]cty.Value
		wantErr bool
	}{
		{"empty", nil, map[string]cty.Value{}, false},
		{"number", []string{"n=3"}, map[string]cty.Value{"n": cty.NumberIntVal(3)}, false},
		{"string", []string{`s="x=y"`}, map[string]cty.Value{"s": cty.StringVal("x=y")}, false},
		{"tuple", []string{"c=[1, 0]"}, map[string]cty.Value{
			"c": cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(0)}),
		}, false},
		{"missing equals", []string{"n"}, nil, true},
		{"missing name", []string{"=1"}, nil, true},
		{"bad expression", []string{"n=[1,"}, nil, true},
		{"unknown variable", []string{"n=other"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVars(tt.vars)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseVars() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseVars() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if !got[k].Equals(v).True() {
					t.Errorf("%s = %#v, want %#v", k, got[k], v)
				}
			}
		})
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name string
		cfg  backendFlags
		log  bool
		want string
	}{
		{"recorder summary", backendFlags{name: backend.BackendRecorder}, false, "recorder: 0 commands"},
		{"recorder log", backendFlags{name: backend.BackendRecorder}, true, ""},
		{"noop", backendFlags{name: backend.BackendNoop, width: 64, height: 32}, false, "wgpu 64x32: passes=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, err := openBackend(tt.cfg)
			if err != nil {
				t.Fatalf("openBackend() error = %v", err)
			}
			defer dev.Close()
			var buf bytes.Buffer
			report(&buf, dev, tt.log)
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Errorf("report() = %q, want prefix %q", buf.String(), tt.want)
			}
		})
	}
	if _, err := openBackend(backendFlags{name: "vulkan"}); err == nil {
		t.Error("unknown backend should fail")
	}
}

func TestRunRender(t *testing.T) {
	path := writeScene(t, glslScene)
	bf := backendFlags{name: backend.BackendRecorder}
	if err := runRender(context.Background(), path, bf, clearVar, 2, false, true); err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	if err := runRender(context.Background(), path, bf, nil, 1, false, false); err == nil {
		t.Error("undefined variable should fail to load")
	}
	if err := runRender(context.Background(), path, bf, clearVar, 0, false, false); err == nil {
		t.Error("zero frames should be rejected")
	}
}

func TestRunCheck(t *testing.T) {
	wgsl := writeScene(t, strings.ReplaceAll(wgslScene, "SHADER", wgslShader))
	if err := runCheck(context.Background(), wgsl, backendFlags{name: backend.BackendNoop, width: 16, height: 16}, nil); err != nil {
		t.Fatalf("runCheck(noop) error = %v", err)
	}

	broken := writeScene(t, strings.Replace(glslScene, `frag  = "void main() {}"`, `frag  = "#error boom"`, 1))
	err := runCheck(context.Background(), broken, backendFlags{name: backend.BackendRecorder}, clearVar)
	if err == nil {
		t.Fatal("runCheck() should report the compile failure")
	}
	if !strings.Contains(err.Error(), "does not compile") || !strings.Contains(err.Error(), "ERROR: boom") {
		t.Errorf("error = %q, want the compile log", err)
	}

	unknown := writeScene(t, "canvas {}\n")
	if err := runCheck(context.Background(), unknown, backendFlags{name: backend.BackendRecorder}, nil); err == nil {
		t.Error("unknown tag should fail validation")
	}
}

func TestReloadLoop(t *testing.T) {
	path := writeScene(t, glslScene)
	elems, err := loadScene(path, clearVar)
	if err != nil {
		t.Fatal(err)
	}
	rec := recorder.New()
	drv := glscene.NewDriver(glscene.NewRoot(rec))
	if err := hclscene.Mount(context.Background(), drv, elems); err != nil {
		t.Fatal(err)
	}
	shader := elems[1].Node()

	edited := strings.Replace(glslScene, "color = clear", "color = [1, 0, 0, 1]", 1)
	if err := os.WriteFile(path, []byte(edited), 0o600); err != nil {
		t.Fatal(err)
	}
	// A zero mod time makes the first tick reload.
	ticks := make(chan time.Time, 1)
	ticks <- time.Now()
	close(ticks)
	if err := reloadLoop(context.Background(), path, clearVar, drv, elems, time.Time{}, ticks); err != nil {
		t.Fatalf("reloadLoop() error = %v", err)
	}

	colors := rec.Filter(recorder.CmdClearColor)
	if len(colors) != 1 {
		t.Fatalf("ClearColor calls = %d, want 1", len(colors))
	}
	if colors[0].Floats[0] != 1 {
		t.Errorf("color after reload = %v, want red", colors[0].Floats)
	}
	if got := drv.Root().Children()[1]; got != shader {
		t.Error("reload should reuse the shader node")
	}
	if n := rec.Count(recorder.CmdLinkProgram); n != 1 {
		t.Errorf("LinkProgram count = %d, want 1", n)
	}
}

func TestReloadLoopKeepsSceneOnParseError(t *testing.T) {
	path := writeScene(t, glslScene)
	elems, err := loadScene(path, clearVar)
	if err != nil {
		t.Fatal(err)
	}
	rec := recorder.New()
	drv := glscene.NewDriver(glscene.NewRoot(rec))
	if err := hclscene.Mount(context.Background(), drv, elems); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("reset {"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticks := make(chan time.Time)
	go func() {
		ticks <- time.Now()
		ticks <- time.Now()
		cancel()
	}()
	err = reloadLoop(ctx, path, clearVar, drv, elems, time.Time{}, ticks)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("reloadLoop() error = %v, want context.Canceled", err)
	}
	if n := rec.Count(recorder.CmdDrawArrays); n != 2 {
		t.Errorf("DrawArrays count = %d, want 2", n)
	}
}

func TestRunLoopDuration(t *testing.T) {
	path := writeScene(t, glslScene)
	f := runFlags{
		backend:  backendFlags{name: backend.BackendRecorder},
		vars:     clearVar,
		fps:      100,
		duration: 30 * time.Millisecond,
	}
	if err := runLoop(context.Background(), path, f); err != nil {
		t.Errorf("runLoop() error = %v", err)
	}
	f.fps = 0
	if err := runLoop(context.Background(), path, f); err == nil {
		t.Error("zero fps should be rejected")
	}
}

func TestPrintMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "builds_total"}, []string{"result"})
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "nodes"})
	reg.MustRegister(c, g)
	c.WithLabelValues("ok").Add(2)
	g.Set(5)

	var buf bytes.Buffer
	if err := printMetrics(&buf, reg); err != nil {
		t.Fatal(err)
	}
	want := "builds_total{result=\"ok\"} 2\nnodes 5\n"
	if buf.String() != want {
		t.Errorf("printMetrics() = %q, want %q", buf.String(), want)
	}
}
