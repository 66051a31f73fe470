package hclscene

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/glscene/propdiff"
)

// setProp stores val under key, flattening objects and maps into
// dash-separated keys.
func setProp(rec *propdiff.Record, key string, val cty.Value) error {
	ty := val.Type()
	if val.IsKnown() && !val.IsNull() && (ty.IsObjectType() || ty.IsMapType()) {
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			if err := setProp(rec, key+propdiff.PathSeparator+k.AsString(), v); err != nil {
				return err
			}
		}
		return nil
	}
	v, err := toNative(val)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	rec.Set(key, v)
	return nil
}

// toNative converts a cty value to the prop value kinds glscene decodes:
// nil, bool, float64, string, []float64, []string and []any.
func toNative(val cty.Value) (any, error) {
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	if val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		return sequence(val)
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}

// sequence converts a list, tuple or set. Homogeneous numbers and strings
// get typed slices.
func sequence(val cty.Value) (any, error) {
	var items []any
	numbers, strs := true, true
	for it := val.ElementIterator(); it.Next(); {
		_, v := it.Element()
		x, err := toNative(v)
		if err != nil {
			return nil, err
		}
		switch x.(type) {
		case float64:
			strs = false
		case string:
			numbers = false
		default:
			numbers, strs = false, false
		}
		items = append(items, x)
	}
	switch {
	case len(items) == 0:
		return []float64{}, nil
	case numbers:
		out := make([]float64, len(items))
		for i, x := range items {
			out[i] = x.(float64)
		}
		return out, nil
	case strs:
		out := make([]string, len(items))
		for i, x := range items {
			out[i] = x.(string)
		}
		return out, nil
	default:
		return items, nil
	}
}
