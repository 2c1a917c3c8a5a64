package criteria

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(items []RuleSet) []string {
	out := make([]string, len(items))
	for i, rs := range items {
		out[i] = rs.ID()
	}
	return out
}

func TestChainPreventOverride(t *testing.T) {
	a1 := NewFilter(def("A", FieldConfig{Key: "a", Search: StringEquals}), Params{"a": "1"})
	b := NewFilter(def("B", FieldConfig{Key: "b", Search: StringEquals}), Params{"b": "2"})
	a2 := NewFilter(def("A", FieldConfig{Key: "a", Search: StringEquals}), Params{"a": "3"})

	c := NewChain(true)
	c.Push(a1)
	c.Push(b)
	c.Push(a2)
	if diff := cmp.Diff([]string{"B", "A"}, ids(c.Items())); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if c.Items()[1] != RuleSet(a2) {
		t.Fatalf("the latest push must win")
	}

	c = NewChain(false)
	c.Push(a1)
	c.Push(a2)
	if c.Len() != 2 {
		t.Fatalf("without prevent-override both entries stay, got %d", c.Len())
	}
}

func TestChainApplyOrderAndFold(t *testing.T) {
	d1 := def("first", FieldConfig{Key: "a", Search: StringEquals})
	d1.ReturnFields = []string{"a"}
	d2 := def("second", FieldConfig{Key: "b", Search: StringEquals})
	d2.With = []string{"rel"}

	c := NewChain(true)
	c.Push(NewCriteria(d1, Params{"a": "x"}))
	c.Push(NewCriteria(d2, Params{"b": "y"}))

	var folded []Result
	q := newRecorder()
	got, err := c.Apply(Scope{Query: q}, func(r Result) error {
		folded = append(folded, r)
		return nil
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got != q {
		t.Fatalf("Apply must return the final query")
	}
	if s := q.String(); s != "AND a = ?; AND b = ?" {
		t.Fatalf("sql = %q", s)
	}
	if len(folded) != 2 || folded[0].ReturnFields[0] != "a" || folded[1].With[0] != "rel" {
		t.Fatalf("unexpected contributions: %+v", folded)
	}
}

func TestChainSkip(t *testing.T) {
	c := NewChain(true)
	c.Push(NewCriteria(def("a", FieldConfig{Key: "a", Search: StringEquals}), Params{"a": "x"}))
	c.Skip(true)
	q := newRecorder()
	if _, err := c.Apply(Scope{Query: q}, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(q.clauses) != 0 || !c.Skipped() {
		t.Fatalf("skipped chain must not touch the query")
	}
	c.Skip(false)
	if _, err := c.Apply(Scope{Query: q}, nil); err != nil || len(q.clauses) != 1 {
		t.Fatalf("chain should apply again after Skip(false): %v, %s", err, q)
	}
}

func TestChainErrorNamesRuleSet(t *testing.T) {
	f := NewFilter(def("Order.status", FieldConfig{Key: "status", Search: StringEquals}), Params{"x": 1})
	_ = f.PushCompulsory("status")
	c := NewChain(true)
	c.Push(f)
	_, err := c.Apply(Scope{Query: newRecorder()}, nil)
	if !errors.Is(err, ErrValidation) || !strings.Contains(err.Error(), "Order.status") {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Remove("Order.status")
	if c.Len() != 0 {
		t.Fatalf("Remove left %d items", c.Len())
	}
}
