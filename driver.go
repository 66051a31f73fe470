package glscene

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogpu/glscene/propdiff"
)

// Driver applies reconciler edits to a root's tree.
//
// Every method mutates the tree immediately. Errors are returned to the
// caller and never swallowed: usage errors ([IsUsageError]) and shader
// build failures both abort the edit that raised them.
//
// Driver is NOT safe for concurrent use.
type Driver struct {
	root *Root

	span  trace.Span
	edits commitEdits
}

// commitEdits counts the edits applied inside one commit.
type commitEdits struct {
	creates, inserts, removes, updates int
}

// NewDriver returns a driver for root.
func NewDriver(root *Root) *Driver {
	return &Driver{root: root}
}

// Root returns the driven root.
func (d *Driver) Root() *Root { return d.root }

// CreateInstance creates a node for tag and applies the initial props to
// its defaults. Unknown tags fail with UnsupportedTagError.
func (d *Driver) CreateInstance(tag string, props *propdiff.Record) (Node, error) {
	n, err := d.newNode(Tag(tag))
	if err != nil {
		return nil, err
	}
	diff, err := propdiff.Compute(n.Props(), props)
	if err != nil {
		return nil, err
	}
	if err := n.UpdateProps(diff); err != nil {
		return nil, err
	}
	d.edits.creates++
	return n, nil
}

func (d *Driver) newNode(tag Tag) (Node, error) {
	id := d.root.newID()
	switch tag {
	case TagReset:
		return newReset(id), nil
	case TagGroup:
		return newGroup(id), nil
	case TagBuffer:
		return newBuffer(id), nil
	case TagAttribute:
		return newAttribute(id), nil
	case TagUniform:
		return newUniform(id), nil
	case TagVertexArray:
		return newVertexArray(id), nil
	case TagShaderProgram:
		return newShaderProgram(id), nil
	}
	return nil, &UnsupportedTagError{Tag: string(tag)}
}

// AppendInitialChild appends child to a parent that is still being built.
func (d *Driver) AppendInitialChild(parent, child Node) error {
	if err := checkParent(parent, child); err != nil {
		return err
	}
	if err := d.detach(child); err != nil {
		return err
	}
	return parent.base().appendChild(child)
}

// FinalizeInitialChildren mounts n once its initial children are attached.
// It never requests a CommitMount call.
func (d *Driver) FinalizeInitialChildren(n Node) (bool, error) {
	return false, n.Mount(d.root)
}

// AppendChild appends child to parent, moving it if it is attached
// elsewhere, and notifies parent.
func (d *Driver) AppendChild(parent, child Node) error {
	if err := checkParent(parent, child); err != nil {
		return err
	}
	if err := d.detach(child); err != nil {
		return err
	}
	if err := parent.base().appendChild(child); err != nil {
		return err
	}
	d.edits.inserts++
	parent.NotifyChildren()
	return nil
}

// AppendChildToContainer appends child to the root.
func (d *Driver) AppendChildToContainer(child Node) error {
	if err := d.detach(child); err != nil {
		return err
	}
	d.root.appendChild(child)
	d.edits.inserts++
	return nil
}

// InsertBefore inserts child into parent before anchor and notifies
// parent. An anchor that is not a child of parent is an
// InvalidOperationError.
func (d *Driver) InsertBefore(parent, child, anchor Node) error {
	if child == anchor {
		return &InvalidOperationError{Tag: child.Tag(), Msg: "cannot be inserted before itself"}
	}
	if err := checkParent(parent, child); err != nil {
		return err
	}
	pb := parent.base()
	if pb.indexOf(anchor) < 0 {
		return &InvalidOperationError{Tag: parent.Tag(), Msg: "does not contain the insert-before anchor"}
	}
	if err := d.detach(child); err != nil {
		return err
	}
	if err := pb.insertBefore(child, anchor); err != nil {
		return err
	}
	d.edits.inserts++
	parent.NotifyChildren()
	return nil
}

// InsertInContainerBefore inserts child into the root before anchor.
func (d *Driver) InsertInContainerBefore(child, anchor Node) error {
	if child == anchor {
		return &InvalidOperationError{Tag: child.Tag(), Msg: "cannot be inserted before itself"}
	}
	if d.root.indexOf(anchor) < 0 {
		return &InvalidOperationError{Tag: "root", Msg: "does not contain the insert-before anchor"}
	}
	if err := d.detach(child); err != nil {
		return err
	}
	if err := d.root.insertBefore(child, anchor); err != nil {
		return err
	}
	d.edits.inserts++
	return nil
}

// RemoveChild detaches child from parent, notifies parent and unmounts the
// removed subtree.
func (d *Driver) RemoveChild(parent, child Node) error {
	if err := parent.base().removeChild(child); err != nil {
		return err
	}
	d.edits.removes++
	parent.NotifyChildren()
	unmountTree(child)
	return nil
}

// RemoveChildFromContainer detaches child from the root and unmounts the
// removed subtree.
func (d *Driver) RemoveChildFromContainer(child Node) error {
	if err := d.root.removeChild(child); err != nil {
		return err
	}
	d.edits.removes++
	unmountTree(child)
	return nil
}

// CommitUpdate diffs prev against next and applies the result to n. It
// returns the applied diff. Shader nodes recompile here when a source
// changes; a failed build is returned and leaves the node broken.
func (d *Driver) CommitUpdate(n Node, prev, next *propdiff.Record) (propdiff.Diff, error) {
	diff, err := propdiff.Compute(prev, next)
	if err != nil {
		return nil, err
	}
	if len(diff) == 0 {
		return diff, nil
	}
	if err := n.UpdateProps(diff); err != nil {
		return diff, err
	}
	d.edits.updates++
	return diff, nil
}

// CommitMount runs the node's commit hook.
func (d *Driver) CommitMount(n Node) {
	n.Commit()
}

// HideInstance marks n hidden. Hidden nodes and their subtrees are skipped
// by the render walk.
func (d *Driver) HideInstance(n Node) { n.SetHidden(true) }

// UnhideInstance clears the hidden flag of n.
func (d *Driver) UnhideInstance(n Node) { n.SetHidden(false) }

// ClearContainer empties the root without unmounting the dropped nodes
// and returns them. Callers that did not remove the nodes one by one
// first own their release.
func (d *Driver) ClearContainer() []Node {
	dropped := d.root.clear()
	mounted := 0
	for _, n := range dropped {
		if n.Mounted() {
			mounted++
		}
	}
	if mounted > 0 {
		Logger().Warn("container cleared with mounted nodes", "dropped", len(dropped), "mounted", mounted)
	}
	return dropped
}

// PrepareForCommit starts a commit. Edits until ResetAfterCommit are
// reported as one trace span.
func (d *Driver) PrepareForCommit(ctx context.Context) context.Context {
	if d.span != nil {
		d.span.End()
	}
	ctx, d.span = d.root.tracer.Start(ctx, "glscene.commit")
	d.edits = commitEdits{}
	return ctx
}

// ResetAfterCommit ends the commit started by PrepareForCommit.
func (d *Driver) ResetAfterCommit() {
	d.root.metrics.committed()
	if d.span == nil {
		return
	}
	d.span.SetAttributes(
		attribute.Int("glscene.creates", d.edits.creates),
		attribute.Int("glscene.inserts", d.edits.inserts),
		attribute.Int("glscene.removes", d.edits.removes),
		attribute.Int("glscene.updates", d.edits.updates),
	)
	d.span.End()
	d.span = nil
}

// detach removes child from its current parent or from the root, without
// unmounting it.
func (d *Driver) detach(child Node) error {
	if p := child.Parent(); p != nil {
		if err := p.base().removeChild(child); err != nil {
			return err
		}
		p.NotifyChildren()
		return nil
	}
	if d.root.indexOf(child) >= 0 {
		return d.root.removeChild(child)
	}
	return nil
}

// checkParent reports whether parent can take child.
func checkParent(parent, child Node) error {
	if parent.base().leaf {
		return cannotHaveChildren(parent.Tag())
	}
	for p := parent; p != nil; p = p.Parent() {
		if p == child {
			return &InvalidOperationError{Tag: child.Tag(), Msg: "cannot become its own descendant"}
		}
	}
	return nil
}

// unmountTree unmounts the children of n depth-first, then n.
func unmountTree(n Node) {
	if b := n.base(); !b.leaf {
		for _, c := range b.children {
			unmountTree(c)
		}
	}
	n.Unmount()
}
