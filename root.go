package glscene

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogpu/glscene/gl"
)

// Root holds the top-level nodes and renders them once per frame.
//
// Children render in order: insertion order is paint order, so later
// nodes win (a later reset overwrites an earlier clear color).
//
// Root is NOT safe for concurrent use. Tree edits and frames must happen
// on one goroutine, with every edit of a commit applied before the next
// frame.
type Root struct {
	dev      gl.Device
	children []Node
	nextID   uint64

	metrics *metrics
	tracer  trace.Tracer
}

// NewRoot creates an empty root rendering to dev.
func NewRoot(dev gl.Device, opts ...Option) *Root {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}
	propagateLogger(dev, Logger())

	r := &Root{
		dev:     dev,
		metrics: newMetrics(o.registerer, o.namespace),
		tracer:  o.tracer,
	}
	Logger().Info("glscene: root created", "language", dev.Language())
	return r
}

// Device returns the device the root renders to.
func (r *Root) Device() gl.Device { return r.dev }

// Children returns a copy of the top-level nodes.
func (r *Root) Children() []Node { return slices.Clone(r.children) }

func (r *Root) newID() uint64 {
	r.nextID++
	return r.nextID
}

func (r *Root) indexOf(n Node) int { return slices.Index(r.children, n) }

func (r *Root) appendChild(n Node) {
	r.children = append(r.children, n)
	r.metrics.setRootNodes(len(r.children))
}

func (r *Root) insertBefore(n, anchor Node) error {
	i := r.indexOf(anchor)
	if i < 0 {
		return &InvalidOperationError{Tag: "root", Msg: "does not contain the insert-before anchor"}
	}
	r.children = slices.Insert(r.children, i, n)
	r.metrics.setRootNodes(len(r.children))
	return nil
}

func (r *Root) removeChild(n Node) error {
	i := r.indexOf(n)
	if i < 0 {
		return &InvalidOperationError{Tag: "root", Msg: "does not contain the child to remove"}
	}
	r.children = slices.Delete(r.children, i, i+1)
	r.metrics.setRootNodes(len(r.children))
	return nil
}

func (r *Root) clear() []Node {
	dropped := r.children
	r.children = nil
	r.metrics.setRootNodes(0)
	return dropped
}

// RenderFrame performs one render pass: every visible top-level node is
// rendered depth-first in order. The pass stops at the first error.
func (r *Root) RenderFrame(ctx context.Context) (FrameStats, error) {
	ctx, span := r.tracer.Start(ctx, "glscene.frame")
	defer span.End()

	start := time.Now()
	f := newFrame(ctx, r.dev)
	err := f.renderAll(r.children)
	st := f.Stats()
	r.metrics.frame(st, time.Since(start), err)

	span.SetAttributes(
		attribute.Int("glscene.nodes", st.Nodes),
		attribute.Int("glscene.draw_calls", st.DrawCalls),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return st, err
}

// Run renders one frame per tick until ctx is done or ticks is closed.
// It returns the first render error, or ctx.Err() on cancellation.
//
// Example:
//
//	ticker := time.NewTicker(time.Second / 60)
//	defer ticker.Stop()
//	err := root.Run(ctx, ticker.C)
func (r *Root) Run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if _, err := r.RenderFrame(ctx); err != nil {
				return err
			}
		}
	}
}
