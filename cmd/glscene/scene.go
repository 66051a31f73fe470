package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/glscene/hclscene"
)

// loadScene parses and validates a scene file. vars are name=expr pairs
// exposed to the file as top-level variables.
func loadScene(path string, vars []string) ([]*hclscene.Element, error) {
	values, err := parseVars(vars)
	if err != nil {
		return nil, err
	}
	elems, err := hclscene.Load(path, hclscene.WithVariables(values))
	if err != nil {
		return nil, err
	}
	if err := hclscene.Validate(elems); err != nil {
		return nil, err
	}
	return elems, nil
}

func parseVars(vars []string) (map[string]cty.Value, error) {
	values := make(map[string]cty.Value, len(vars))
	for _, kv := range vars {
		name, src, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: want name=value", kv)
		}
		expr, diags := hclsyntax.ParseExpression([]byte(src), "--var "+name, hcl.Pos{Line: 1, Column: 1})
		if diags.HasErrors() {
			return nil, fmt.Errorf("--var %s: %w", name, diags)
		}
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("--var %s: %w", name, diags)
		}
		values[name] = val
	}
	return values, nil
}

// printMetrics writes every gathered counter and gauge as name{labels} value.
// Histograms print their sample count and sum.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + labelString(m.GetLabel())
			switch {
			case m.Counter != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.Gauge != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetGauge().GetValue())
			case m.Histogram != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
	return nil
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
