package propdiff

import (
	"errors"
	"reflect"
	"testing"
)

func TestComputeOrderAndEquality(t *testing.T) {
	prev := Of("a", 1, "b", "x", "c", []float32{1, 2})
	curr := Of("c", []float32{1, 3}, "b", "x", "a", 2, "d", true)

	d, err := Compute(prev, curr)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	want := []string{"c", "a", "d"}
	if got := d.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestComputeNumbersAcrossTypes(t *testing.T) {
	d, err := Compute(Of("n", int(3), "v", []float64{1, 2}), Of("n", float64(3), "v", []any{1, 2.0}))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if len(d) != 0 {
		t.Errorf("numerically equal values should not diff, got %v", d.Keys())
	}
}

func TestComputeSkipsChildren(t *testing.T) {
	tests := []struct {
		name string
		prev any
		curr any
	}{
		{"absent before", nil, []any{"x"}},
		{"record valued", Of("a", 1), Of("a", 2)},
		{"kind change", "text", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := &Record{}
			if tt.prev != nil {
				prev.Set(ChildrenKey, tt.prev)
			}
			d, err := Compute(prev, Of(ChildrenKey, tt.curr, "k", 1))
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if d.Has(ChildrenKey) {
				t.Error("diff must not contain children")
			}
			if !d.Has("k") {
				t.Error("diff should contain k")
			}
		})
	}
}

func TestComputeTypeMismatch(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr any
	}{
		{"scalar vs sequence", 1.0, []float32{1}},
		{"sequence vs scalar", []int{1}, 2},
		{"string vs number", "1", 1},
		{"bool vs string", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(Of("k", tt.prev), Of("k", tt.curr))
			var tm *TypeMismatchError
			if !errors.As(err, &tm) {
				t.Fatalf("error = %v, want *TypeMismatchError", err)
			}
			if tm.Key != "k" {
				t.Errorf("Key = %q, want k", tm.Key)
			}
			if !errors.Is(err, ErrUsage) {
				t.Error("TypeMismatchError should unwrap to ErrUsage")
			}
		})
	}
}

func TestComputeUnsupportedCompare(t *testing.T) {
	tests := []struct {
		name       string
		prev, curr any
	}{
		{"records", Of("x", 1), Of("x", 1)},
		{"maps", map[string]any{"x": 1}, map[string]any{"x": 2}},
		{"nested sequences", []any{[]int{1}}, []any{[]int{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(Of("k", tt.prev), Of("k", tt.curr))
			var uc *UnsupportedCompareError
			if !errors.As(err, &uc) {
				t.Fatalf("error = %v, want *UnsupportedCompareError", err)
			}
		})
	}
}

func TestComputeSameReference(t *testing.T) {
	rec := Of("x", 1)
	m := map[string]any{"x": 1}
	tests := []struct {
		name string
		v    any
	}{
		{"record", rec},
		{"map", m},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Compute(Of("k", tt.v), Of("k", tt.v))
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if len(d) != 0 {
				t.Errorf("Compute() = %v, want no changes", d)
			}
		})
	}
}

func TestComputeNilHandling(t *testing.T) {
	d, err := Compute(nil, Of("a", 1, "b", nil))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !reflect.DeepEqual(d.Keys(), []string{"a"}) {
		t.Errorf("Keys() = %v, want [a]", d.Keys())
	}

	d, err = Compute(Of("a", 1), Of("a", nil))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if !d.Has("a") {
		t.Error("clearing a value should be reported")
	}
}

func TestApplyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		p    *Record
		next *Record
	}{
		{
			name: "scalar edits",
			p:    Of("count", 3, "mode", "triangles"),
			next: Of("count", 6, "mode", "lines"),
		},
		{
			name: "sequence edit and new key",
			p:    Of("color", []float32{0, 0, 0, 0}),
			next: Of("color", []float32{1, 0, 0, 1}, "offset", 4),
		},
		{
			name: "unchanged",
			p:    Of("vert", "void main(){}", "frag", "void main(){}"),
			next: Of("vert", "void main(){}", "frag", "void main(){}"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Compute(tt.p, tt.next)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			target := tt.p.Clone()
			if err := Apply(d, target); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			for _, f := range tt.next.Fields() {
				if got := target.Value(f.Key); !reflect.DeepEqual(got, f.Value) {
					t.Errorf("%s = %v, want %v", f.Key, got, f.Value)
				}
			}
		})
	}
}

func TestApplyNestedPath(t *testing.T) {
	attr := Of("test", 1)
	target := Of("attr", attr)

	if err := Apply(Diff{{Key: "attr-test", Value: 2}, {Key: "attr-other", Value: "x"}}, target); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := attr.Value("test"); got != 2 {
		t.Errorf("attr.test = %v, want 2", got)
	}
	if got := attr.Value("other"); got != "x" {
		t.Errorf("attr.other = %v, want x", got)
	}
	if target.Has("attr-test") {
		t.Error("flattened key must not be stored on the outer record")
	}
}

func TestApplyMissingIntermediate(t *testing.T) {
	tests := []struct {
		name   string
		target *Record
		key    string
	}{
		{"absent", Of("a", 1), "missing-x"},
		{"not a record", Of("a", 1), "a-x"},
		{"deep absent", Of("a", Of("b", 1)), "a-c-d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.target.Len()
			err := Apply(Diff{{Key: tt.key, Value: 1}}, tt.target)
			var pe *PathError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *PathError", err)
			}
			if tt.target.Len() != before {
				t.Error("Apply must not create containers")
			}
		})
	}
}

func TestApplyNilTarget(t *testing.T) {
	if err := Apply(nil, nil); err != nil {
		t.Errorf("Apply(empty, nil) error = %v", err)
	}
	err := Apply(Diff{{Key: "a", Value: 1}}, nil)
	var pe *PathError
	if !errors.As(err, &pe) || pe.Key != "a" {
		t.Fatalf("error = %v, want *PathError for a", err)
	}
	if !errors.Is(err, ErrUsage) {
		t.Error("PathError should unwrap to ErrUsage")
	}
}

func TestRecordSetKeepsPosition(t *testing.T) {
	r := Of("a", 1, "b", 2, "c", 3)
	r.Set("b", 20)
	if !reflect.DeepEqual(r.Keys(), []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v", r.Keys())
	}
	if !r.Delete("a") || r.Delete("a") {
		t.Error("Delete should report presence once")
	}
	if !reflect.DeepEqual(r.Keys(), []string{"b", "c"}) || r.Value("c") != 3 {
		t.Errorf("after delete: keys %v, c=%v", r.Keys(), r.Value("c"))
	}
}
