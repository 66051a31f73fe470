package hclscene

import (
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/glscene"
	"github.com/gogpu/glscene/propdiff"
)

// HiddenAttr is the attribute that hides an element instead of becoming a
// prop.
const HiddenAttr = "hidden"

// Element is one block of a scene file.
type Element struct {
	Tag      string
	Key      string
	Hidden   bool
	Props    *propdiff.Record
	Children []*Element
	Range    hcl.Range

	node glscene.Node
}

// Node returns the node built for e by Mount or Sync, or nil.
func (e *Element) Node() glscene.Node { return e.node }

type parseConfig struct {
	vars map[string]cty.Value
}

// ParseOption configures Parse and Load.
type ParseOption func(*parseConfig)

// WithVariables makes vars available to attribute expressions.
func WithVariables(vars map[string]cty.Value) ParseOption {
	return func(c *parseConfig) {
		c.vars = vars
	}
}

// Load reads and parses the scene file at path.
func Load(path string, opts ...ParseOption) ([]*Element, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hclscene: %w", err)
	}
	return Parse(src, path, opts...)
}

// Parse parses scene source. filename is used in diagnostics.
func Parse(src []byte, filename string, opts ...ParseOption) ([]*Element, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("hclscene: failed to parse %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("hclscene: %s is not native HCL syntax", filename)
	}
	if attrs := sortedAttributes(body); len(attrs) > 0 {
		a := attrs[0]
		return nil, fmt.Errorf("hclscene: %s: top-level attribute %q; scene files hold blocks only", a.SrcRange, a.Name)
	}

	ctx := &hcl.EvalContext{Variables: cfg.vars}
	elems := make([]*Element, 0, len(body.Blocks))
	for _, b := range body.Blocks {
		e, err := decodeBlock(ctx, b)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return elems, nil
}

func decodeBlock(ctx *hcl.EvalContext, b *hclsyntax.Block) (*Element, error) {
	e := &Element{Tag: b.Type, Props: propdiff.NewRecord(), Range: b.DefRange()}
	switch len(b.Labels) {
	case 0:
	case 1:
		e.Key = b.Labels[0]
	default:
		return nil, fmt.Errorf("hclscene: %s: %s block takes at most one label", b.DefRange(), b.Type)
	}

	for _, a := range sortedAttributes(b.Body) {
		val, diags := a.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("hclscene: failed to evaluate %s.%s: %w", b.Type, a.Name, diags)
		}
		if a.Name == HiddenAttr {
			if val.Type() != cty.Bool || val.IsNull() || !val.IsKnown() {
				return nil, fmt.Errorf("hclscene: %s: hidden must be a bool", a.SrcRange)
			}
			e.Hidden = val.True()
			continue
		}
		if err := setProp(e.Props, a.Name, val); err != nil {
			return nil, fmt.Errorf("hclscene: %s: %w", a.SrcRange, err)
		}
	}

	for _, child := range b.Body.Blocks {
		c, err := decodeBlock(ctx, child)
		if err != nil {
			return nil, err
		}
		e.Children = append(e.Children, c)
	}
	return e, nil
}

// sortedAttributes returns the attributes of body in source order.
func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	slices.SortFunc(attrs, func(a, b *hclsyntax.Attribute) int {
		return a.SrcRange.Start.Byte - b.SrcRange.Start.Byte
	})
	return attrs
}

// Validate reports the first element whose tag glscene does not know.
func Validate(elems []*Element) error {
	known := glscene.Tags()
	var walk func([]*Element) error
	walk = func(es []*Element) error {
		for _, e := range es {
			if !slices.Contains(known, glscene.Tag(e.Tag)) {
				return fmt.Errorf("hclscene: %s: %w", e.Range, &glscene.UnsupportedTagError{Tag: e.Tag})
			}
			if err := walk(e.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(elems)
}
