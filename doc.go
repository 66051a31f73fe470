// Package glscene is a retained-mode scene graph for a GL-like device.
//
// # Overview
//
// A declarative tree builder (a component reconciler) describes the scene as
// a tree of tagged elements. glscene keeps a persistent tree of [Node]
// instances for those elements, applies the reconciler's structural and prop
// edits through a [Driver], and renders the tree once per display tick
// through a [Root]. Rendering turns each node into device calls on a
// [gl.Device].
//
// # Quick Start
//
//	rec := recorder.New()
//	root := glscene.NewRoot(rec)
//	drv := glscene.NewDriver(root)
//
//	clear, _ := drv.CreateInstance("reset", propdiff.Of("color", []float32{0, 0, 0, 1}))
//	drv.FinalizeInitialChildren(clear)
//	drv.AppendChildToContainer(clear)
//
//	root.RenderFrame(ctx)
//
// # Nodes
//
// Seven variants are supported, named by tag:
//   - reset: clears the color buffer
//   - group: container without device calls
//   - buffer: owns a device buffer, binds it when rendered
//   - attribute: fixed value or array pointer for one vertex attribute
//   - uniform: sets one uniform of the active program
//   - vertex_array: records its children into a cached vertex array
//   - shader: compiles a program, renders its children, draws once
//
// reset, buffer, attribute and uniform are leaves.
//
// # Active program
//
// A shader node pushes its program onto the [Frame] while its children
// render, so attribute and uniform names resolve against the innermost
// enclosing shader. There is no global state; the frame carries it.
//
// # Errors
//
// Usage errors (unknown tag, children on a leaf, bad prop values, diffs
// across value kinds) satisfy [IsUsageError]. Shader failures are
// [CompileError] and [LinkError] with the device log. Nothing is retried.
package glscene
