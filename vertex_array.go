package glscene

import (
	"fmt"

	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/program"
	"github.com/gogpu/glscene/propdiff"
)

// VertexArray records the state set by its children into a vertex-array
// object and replays it by binding.
//
// Inside a shader program the array lives in that program's cache under a
// key derived from the node identity, so a recompile drops it. Outside any
// program the node owns the vertex array itself. A structural change to
// the children forces exactly one re-record on the next render.
type VertexArray struct {
	node
	key   string
	dirty bool

	// owner is the program whose cache holds the recording.
	owner *program.Program
	// vao is used when rendered outside any program.
	vao gl.VertexArray
	dev gl.Device
}

func newVertexArray(id uint64) *VertexArray {
	v := &VertexArray{key: fmt.Sprintf("vao#%d", id)}
	v.init(v, TagVertexArray, id, false, nil)
	return v
}

// Key returns the cache key used in the active program's VAO cache.
func (v *VertexArray) Key() string { return v.key }

// UpdateProps implements Node. Vertex arrays accept and keep any props.
func (v *VertexArray) UpdateProps(d propdiff.Diff) error {
	next, err := v.applied(d)
	if err != nil {
		return err
	}
	v.props = next
	return nil
}

// NotifyChildren invalidates the recording.
func (v *VertexArray) NotifyChildren() {
	v.dirty = true
}

// Render binds the recorded vertex array, recording it first on a miss.
func (v *VertexArray) Render(f *Frame) error {
	p := f.Program()
	// A recording held by another program, or owned outside one, is stale
	// once the node renders under p.
	if v.dirty || (v.owner != nil && v.owner != p) || (p != nil && v.vao != gl.NoVertexArray) {
		v.release()
		v.dirty = false
	}
	f.vaoBound = true

	if p != nil {
		hit, err := p.VAO(v.key, func() error { return v.renderChildren(f) })
		if err != nil {
			return err
		}
		v.owner = p
		v.count(f, hit)
		return nil
	}

	if v.vao != gl.NoVertexArray {
		f.dev.BindVertexArray(v.vao)
		v.count(f, true)
		return nil
	}
	vao, err := f.dev.CreateVertexArray()
	if err != nil {
		return fmt.Errorf("glscene: create vertex array: %w", err)
	}
	f.dev.BindVertexArray(vao)
	if err := v.renderChildren(f); err != nil {
		f.dev.BindVertexArray(gl.NoVertexArray)
		f.dev.DeleteVertexArray(vao)
		return err
	}
	v.vao, v.dev = vao, f.dev
	v.count(f, false)
	return nil
}

func (v *VertexArray) count(f *Frame, hit bool) {
	if hit {
		f.stats.VAOHits++
	} else {
		f.stats.VAOMisses++
	}
}

// release drops the recording wherever it lives.
func (v *VertexArray) release() {
	if v.owner != nil {
		v.owner.DeleteVAO(v.key)
		v.owner = nil
	}
	if v.vao != gl.NoVertexArray {
		v.dev.DeleteVertexArray(v.vao)
	}
	v.vao = gl.NoVertexArray
}

// Unmount releases the recording.
func (v *VertexArray) Unmount() {
	v.release()
	v.node.Unmount()
}
