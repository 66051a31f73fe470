package glscene

import "github.com/gogpu/glscene/propdiff"

// Group is a pure container. It has no props and issues no device calls
// of its own.
type Group struct {
	node
}

func newGroup(id uint64) *Group {
	g := &Group{}
	g.init(g, TagGroup, id, false, nil)
	return g
}

// UpdateProps implements Node. Groups accept and keep any props.
func (g *Group) UpdateProps(d propdiff.Diff) error {
	next, err := g.applied(d)
	if err != nil {
		return err
	}
	g.props = next
	return nil
}

// Render renders the children in order.
func (g *Group) Render(f *Frame) error {
	return g.renderChildren(f)
}
