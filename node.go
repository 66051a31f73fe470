package glscene

import (
	"slices"

	"github.com/gogpu/glscene/propdiff"
)

// Tag names a node variant.
type Tag string

// Node tags.
const (
	TagReset         Tag = "reset"
	TagGroup         Tag = "group"
	TagBuffer        Tag = "buffer"
	TagAttribute     Tag = "attribute"
	TagUniform       Tag = "uniform"
	TagVertexArray   Tag = "vertex_array"
	TagShaderProgram Tag = "shader"
)

// Tags returns every supported tag.
func Tags() []Tag {
	return []Tag{TagReset, TagGroup, TagBuffer, TagAttribute, TagUniform, TagVertexArray, TagShaderProgram}
}

// Node is a persistent instance in the render tree.
//
// The set of variants is closed: nodes are created by [Driver.CreateInstance]
// and mutated through the driver. Leaf variants (reset, buffer, attribute,
// uniform) return an [InvalidOperationError] from Children.
type Node interface {
	Tag() Tag
	// ID is unique within the root that created the node.
	ID() uint64
	// Props returns the node's live prop record. Callers must not modify it.
	Props() *propdiff.Record
	Children() ([]Node, error)
	Parent() Node
	Hidden() bool
	SetHidden(hidden bool)
	Root() *Root
	Mounted() bool

	// NotifyChildren is called after every structural change to the
	// children.
	NotifyChildren()
	// UpdateProps applies d onto the props and re-derives variant state.
	// A validation failure leaves the props unchanged.
	UpdateProps(d propdiff.Diff) error
	// Mount binds the node to root and acquires device resources.
	Mount(root *Root) error
	// Unmount releases device resources. Safe to call repeatedly.
	Unmount()
	Commit()
	// Render emits the node's device calls.
	Render(f *Frame) error

	base() *node
}

// node carries the state shared by all variants and their default
// behavior. Variants embed it and override what they need.
type node struct {
	self     Node
	tag      Tag
	id       uint64
	leaf     bool
	props    *propdiff.Record
	hidden   bool
	mounted  bool
	root     *Root
	parent   Node
	children []Node
}

func (n *node) init(self Node, tag Tag, id uint64, leaf bool, defaults *propdiff.Record) {
	n.self = self
	n.tag = tag
	n.id = id
	n.leaf = leaf
	n.props = defaults
	if n.props == nil {
		n.props = &propdiff.Record{}
	}
}

func (n *node) base() *node { return n }

func (n *node) Tag() Tag                { return n.tag }
func (n *node) ID() uint64              { return n.id }
func (n *node) Props() *propdiff.Record { return n.props }
func (n *node) Parent() Node            { return n.parent }
func (n *node) Hidden() bool            { return n.hidden }
func (n *node) SetHidden(hidden bool)   { n.hidden = hidden }
func (n *node) Root() *Root             { return n.root }
func (n *node) Mounted() bool           { return n.mounted }
func (n *node) NotifyChildren()         {}
func (n *node) Commit()                 {}
func (n *node) Render(*Frame) error     { return nil }
func (n *node) Unmount()                { n.mounted = false }

func (n *node) Children() ([]Node, error) {
	if n.leaf {
		return nil, cannotHaveChildren(n.tag)
	}
	return slices.Clone(n.children), nil
}

func (n *node) Mount(root *Root) error {
	n.bind(root)
	return nil
}

// bind sets the root back-reference. The first root wins.
func (n *node) bind(root *Root) {
	if n.root == nil {
		n.root = root
	}
	n.mounted = true
}

// applied returns a copy of the props with d applied.
func (n *node) applied(d propdiff.Diff) (*propdiff.Record, error) {
	next := n.props.Clone()
	if err := propdiff.Apply(d, next); err != nil {
		return nil, err
	}
	return next, nil
}

func (n *node) indexOf(child Node) int {
	return slices.Index(n.children, child)
}

func (n *node) appendChild(child Node) error {
	if n.leaf {
		return cannotHaveChildren(n.tag)
	}
	n.children = append(n.children, child)
	child.base().parent = n.self
	return nil
}

func (n *node) insertBefore(child, anchor Node) error {
	if n.leaf {
		return cannotHaveChildren(n.tag)
	}
	i := n.indexOf(anchor)
	if i < 0 {
		return &InvalidOperationError{Tag: n.tag, Msg: "does not contain the insert-before anchor"}
	}
	n.children = slices.Insert(n.children, i, child)
	child.base().parent = n.self
	return nil
}

func (n *node) removeChild(child Node) error {
	if n.leaf {
		return cannotHaveChildren(n.tag)
	}
	i := n.indexOf(child)
	if i < 0 {
		return &InvalidOperationError{Tag: n.tag, Msg: "does not contain the child to remove"}
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.base().parent = nil
	return nil
}

// renderChildren renders the children in order through the frame walk.
func (n *node) renderChildren(f *Frame) error {
	return f.renderAll(n.children)
}
