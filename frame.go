package glscene

import (
	"context"

	"github.com/gogpu/glscene/gl"
	"github.com/gogpu/glscene/program"
)

// FrameStats counts the work done by one render pass.
type FrameStats struct {
	// Nodes is the number of nodes rendered.
	Nodes int
	// Hidden is the number of hidden subtrees skipped.
	Hidden int
	// DrawCalls is the number of draw calls issued.
	DrawCalls int
	// VAOHits and VAOMisses count vertex-array cache lookups.
	VAOHits   int
	VAOMisses int
}

// Frame is the render context of one pass over the tree.
//
// It replaces ambient global state: the active-program stack and the
// vertex-array binding are threaded through Render calls so that nested
// attribute and uniform nodes resolve names against the innermost
// enclosing shader program.
type Frame struct {
	ctx context.Context
	dev gl.Device

	programs []*program.Program
	current  *program.Program // program last made current on the device
	vaoBound bool

	stats FrameStats
}

func newFrame(ctx context.Context, dev gl.Device) *Frame {
	return &Frame{ctx: ctx, dev: dev}
}

// Context returns the context the frame was started with.
func (f *Frame) Context() context.Context { return f.ctx }

// Device returns the device being rendered to.
func (f *Frame) Device() gl.Device { return f.dev }

// Program returns the innermost active program, or nil outside any shader
// node.
func (f *Frame) Program() *program.Program {
	if len(f.programs) == 0 {
		return nil
	}
	return f.programs[len(f.programs)-1]
}

// Depth returns the number of active programs.
func (f *Frame) Depth() int { return len(f.programs) }

// Stats returns the counters accumulated so far.
func (f *Frame) Stats() FrameStats { return f.stats }

func (f *Frame) push(p *program.Program) { f.programs = append(f.programs, p) }

func (f *Frame) pop() { f.programs = f.programs[:len(f.programs)-1] }

// use makes p current on the device unless it already is.
func (f *Frame) use(p *program.Program) error {
	if f.current == p {
		return nil
	}
	if err := p.Use(); err != nil {
		return err
	}
	f.current = p
	return nil
}

// render renders one node unless it is hidden.
func (f *Frame) render(n Node) error {
	if n.Hidden() {
		f.stats.Hidden++
		return nil
	}
	f.stats.Nodes++
	return n.Render(f)
}

// renderAll renders nodes in order and stops at the first error.
func (f *Frame) renderAll(nodes []Node) error {
	for _, n := range nodes {
		if err := f.render(n); err != nil {
			return err
		}
	}
	return nil
}
