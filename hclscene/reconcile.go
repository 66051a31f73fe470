package hclscene

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/glscene"
)

// Mount builds elems and appends them to the root of drv in one commit.
// On error the nodes built for the failing element are unmounted; elements
// already appended stay in place.
func Mount(ctx context.Context, drv *glscene.Driver, elems []*Element) error {
	drv.PrepareForCommit(ctx)
	defer drv.ResetAfterCommit()

	root := container{drv: drv}
	for _, e := range elems {
		n, err := build(drv, e)
		if err != nil {
			return err
		}
		if err := root.append(n); err != nil {
			discard(n)
			return err
		}
	}
	glscene.Logger().Debug("hclscene mounted", "elements", len(elems))
	return nil
}

// Sync turns the tree mounted from prev into next in one commit. Nodes are
// reused when tag and key match, or tag and position for unkeyed elements;
// their props are diffed. Everything else is removed or built. Edits made
// before an error are kept.
func Sync(ctx context.Context, drv *glscene.Driver, prev, next []*Element) error {
	drv.PrepareForCommit(ctx)
	defer drv.ResetAfterCommit()
	return syncChildren(drv, container{drv: drv}, prev, next)
}

func syncChildren(drv *glscene.Driver, c container, prev, next []*Element) error {
	matched := match(prev, next)
	kept := make(map[*Element]bool, len(matched))
	for _, m := range matched {
		if m != nil {
			kept[m] = true
		}
	}
	for _, p := range prev {
		if !kept[p] && p.node != nil {
			if err := c.remove(p.node); err != nil {
				return err
			}
			p.node = nil
		}
	}

	desired := make([]glscene.Node, 0, len(next))
	for i, e := range next {
		m := matched[i]
		if m == nil {
			n, err := build(drv, e)
			if err != nil {
				return err
			}
			desired = append(desired, n)
			continue
		}

		if _, err := drv.CommitUpdate(m.node, m.Props, e.Props); err != nil {
			return fmt.Errorf("hclscene: %s: %w", e.Range, err)
		}
		e.node = m.node
		switch {
		case e.Hidden && !m.Hidden:
			drv.HideInstance(e.node)
		case !e.Hidden && m.Hidden:
			drv.UnhideInstance(e.node)
		}
		if len(m.Children) > 0 || len(e.Children) > 0 {
			if err := syncChildren(drv, container{drv: drv, node: e.node}, m.Children, e.Children); err != nil {
				return err
			}
		}
		desired = append(desired, e.node)
	}
	return c.arrange(desired)
}

type elementKey struct {
	tag, key string
}

// match pairs each element of next with the prev element whose node it
// reuses, or nil.
func match(prev, next []*Element) []*Element {
	keyed := make(map[elementKey]*Element)
	for _, p := range prev {
		if p.Key != "" && p.node != nil {
			keyed[elementKey{p.Tag, p.Key}] = p
		}
	}
	used := make(map[*Element]bool)
	out := make([]*Element, len(next))
	for i, e := range next {
		var m *Element
		if e.Key != "" {
			m = keyed[elementKey{e.Tag, e.Key}]
		} else if i < len(prev) && prev[i].Key == "" && prev[i].Tag == e.Tag && prev[i].node != nil {
			m = prev[i]
		}
		if m != nil && !used[m] {
			used[m] = true
			out[i] = m
		}
	}
	return out
}

// build creates the node tree for e and mounts it, detached.
func build(drv *glscene.Driver, e *Element) (glscene.Node, error) {
	n, err := drv.CreateInstance(e.Tag, e.Props)
	if err != nil {
		return nil, fmt.Errorf("hclscene: %s: %w", e.Range, err)
	}
	for _, c := range e.Children {
		child, err := build(drv, c)
		if err != nil {
			discard(n)
			return nil, err
		}
		if err := drv.AppendInitialChild(n, child); err != nil {
			discard(child)
			discard(n)
			return nil, fmt.Errorf("hclscene: %s: %w", c.Range, err)
		}
	}
	commit, err := drv.FinalizeInitialChildren(n)
	if err != nil {
		discard(n)
		return nil, fmt.Errorf("hclscene: %s: %w", e.Range, err)
	}
	if commit {
		drv.CommitMount(n)
	}
	if e.Hidden {
		drv.HideInstance(n)
	}
	e.node = n
	return n, nil
}

// discard unmounts a detached subtree, children first.
func discard(n glscene.Node) {
	children, err := n.Children()
	if err == nil {
		for _, c := range children {
			discard(c)
		}
	}
	n.Unmount()
}

// container is the root or a node seen as a parent.
type container struct {
	drv  *glscene.Driver
	node glscene.Node
}

func (c container) children() []glscene.Node {
	if c.node == nil {
		return c.drv.Root().Children()
	}
	children, _ := c.node.Children()
	return children
}

func (c container) append(n glscene.Node) error {
	if c.node == nil {
		return c.drv.AppendChildToContainer(n)
	}
	return c.drv.AppendChild(c.node, n)
}

func (c container) insertBefore(n, anchor glscene.Node) error {
	if c.node == nil {
		return c.drv.InsertInContainerBefore(n, anchor)
	}
	return c.drv.InsertBefore(c.node, n, anchor)
}

func (c container) remove(n glscene.Node) error {
	if c.node == nil {
		return c.drv.RemoveChildFromContainer(n)
	}
	return c.drv.RemoveChild(c.node, n)
}

// arrange places desired in order, moving only nodes that are out of
// place. Working back to front, every node is put right before its
// successor.
func (c container) arrange(desired []glscene.Node) error {
	var errs []error
	for i := len(desired) - 1; i >= 0; i-- {
		n := desired[i]
		cur := c.children()
		idx := slices.Index(cur, n)
		var anchor glscene.Node
		if i+1 < len(desired) {
			anchor = desired[i+1]
		}
		if idx >= 0 {
			if anchor == nil && idx == len(cur)-1 {
				continue
			}
			if anchor != nil && idx+1 < len(cur) && cur[idx+1] == anchor {
				continue
			}
		}
		var err error
		if anchor == nil {
			err = c.append(n)
		} else {
			err = c.insertBefore(n, anchor)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
