package glscene

import (
	"context"
	"testing"

	"github.com/gogpu/glscene/gl/recorder"
	"github.com/gogpu/glscene/propdiff"
)

const (
	testVert = `attribute vec2 a_position;
attribute vec3 a_color;
uniform vec4 u_tint;
void main() {}`
	testFrag = `uniform vec4 u_tint;
void main() {}`
	brokenFrag = "void main() {\n#error undeclared identifier u_missing\n}"
)

type fixture struct {
	rec  *recorder.Recorder
	root *Root
	drv  *Driver
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	rec := recorder.New()
	root := NewRoot(rec, opts...)
	return &fixture{rec: rec, root: root, drv: NewDriver(root)}
}

// build creates, fills and mounts a node the way a reconciler does.
func (fx *fixture) build(t *testing.T, tag Tag, props *propdiff.Record, children ...Node) Node {
	t.Helper()
	n, err := fx.drv.CreateInstance(string(tag), props)
	if err != nil {
		t.Fatalf("CreateInstance(%s) error = %v", tag, err)
	}
	for _, c := range children {
		if err := fx.drv.AppendInitialChild(n, c); err != nil {
			t.Fatalf("AppendInitialChild(%s) error = %v", tag, err)
		}
	}
	if commit, err := fx.drv.FinalizeInitialChildren(n); err != nil || commit {
		t.Fatalf("FinalizeInitialChildren(%s) = %t, %v", tag, commit, err)
	}
	return n
}

// attach builds n and appends it to the root.
func (fx *fixture) attach(t *testing.T, n Node) Node {
	t.Helper()
	if err := fx.drv.AppendChildToContainer(n); err != nil {
		t.Fatalf("AppendChildToContainer() error = %v", err)
	}
	return n
}

func (fx *fixture) frame(t *testing.T) FrameStats {
	t.Helper()
	st, err := fx.root.RenderFrame(context.Background())
	if err != nil {
		t.Fatalf("RenderFrame() error = %v", err)
	}
	return st
}

func shaderProps(kv ...any) *propdiff.Record {
	r := propdiff.Of("vert", testVert, "frag", testFrag, "mode", "triangles", "count", 3)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

func indexOf(cmds []recorder.Command, t recorder.CommandType) int {
	for i, c := range cmds {
		if c.Type == t {
			return i
		}
	}
	return -1
}
