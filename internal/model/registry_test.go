package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"YrestCriteria/internal/criteria"

	"github.com/google/go-cmp/cmp"
)

func loadShop(t *testing.T) *Registry {
	t.Helper()
	reg, err := InitRegistry(filepath.Join("testdata", "shop"))
	if err != nil {
		t.Fatalf("InitRegistry: %v", err)
	}
	return reg
}

func TestInitRegistryLoadsShop(t *testing.T) {
	reg := loadShop(t)
	want := []string{"Customer", "Order", "OrderItem", "Product", "Profile"}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	c, ok := reg.Get("Customer")
	if !ok || c.Table != "customers" || c.Name != "Customer" {
		t.Fatalf("unexpected customer model: %+v", c)
	}
	if p, _ := reg.Get("Profile"); !p.Document {
		t.Fatalf("Profile should be a document model")
	}
}

func TestLinkFillsKeys(t *testing.T) {
	reg := loadShop(t)
	customer, _ := reg.Get("Customer")
	order, _ := reg.Get("Order")

	orders := customer.Relations["orders"]
	if orders.FK != "customer_id" || orders.PK != "id" || orders.ModelRef() != order {
		t.Fatalf("has_many keys: %+v", orders)
	}
	back := order.Relations["customer"]
	if back.FK != "customer_id" || back.PK != "id" || back.ModelRef() != customer {
		t.Fatalf("belongs_to keys: %+v", back)
	}

	products := order.Relations["products"]
	if products.FK != "order_id" || products.ThroughRef() == nil {
		t.Fatalf("through keys: %+v", products)
	}
	final := products.Final()
	if final == nil || final.FK != "product_id" || final.PK != "id" {
		t.Fatalf("through final relation: %+v", final)
	}
}

func TestRelationNameResolution(t *testing.T) {
	reg := loadShop(t)
	customer, _ := reg.Get("Customer")
	for _, name := range []string{"orders", "Order", "Orders"} {
		if customer.Relation(name) == nil {
			t.Fatalf("Relation(%q) not resolved", name)
		}
	}
	if customer.Relation("Invoice") != nil {
		t.Fatalf("unknown relation resolved")
	}
	order, _ := reg.Get("Order")
	if order.Relation("PaidItem") == nil {
		t.Fatalf("PaidItem should resolve to paid_items")
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	cases := map[string]string{
		"model key":    "table: t\ncolour: red\n",
		"relation key": "table: t\nrelations:\n  x:\n    model: X\n    kind: has_one\n",
		"filter key":   "table: t\nfilters:\n  f:\n    fieldz: []\n",
		"field key":    "table: t\nfilters:\n  f:\n    fields:\n      - key: a\n        search: string_equals\n        weight: 2\n",
		"search name":  "table: t\nfilters:\n  f:\n    fields:\n      - key: a\n        search: fuzzy\n",
		"filter kind":  "table: t\nfilters:\n  f:\n    kind: preset\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(src)); err == nil {
				t.Fatalf("expected a validation error")
			}
		})
	}
}

func TestParseFreeFormMaps(t *testing.T) {
	src := "table: t\nfilters:\n  f:\n    fields:\n      - key: a\n        search: search_in\n    value_map:\n      a: anything\n    defaults:\n      a: [1, 2]\n"
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	spec := m.Filters["f"]
	if spec.Fields[0].Search != criteria.SearchIn || spec.ValueMap["a"] != "anything" {
		t.Fatalf("unexpected spec: %+v", spec)
	}
}

func TestLinkErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing model": {
			"A": "table: a\nrelations:\n  b:\n    model: B\n    type: has_many\n",
		},
		"bad type": {
			"A": "table: a\nrelations:\n  b:\n    model: B\n    type: many_to_many\n",
			"B": "table: b\n",
		},
		"belongs_to through": {
			"A": "table: a\nrelations:\n  b:\n    model: B\n    type: belongs_to\n    through: C\n",
			"B": "table: b\n",
			"C": "table: c\n",
		},
		"through without path": {
			"A": "table: a\nrelations:\n  b:\n    model: B\n    type: has_many\n    through: C\n",
			"B": "table: b\n",
			"C": "table: c\n",
		},
	}
	for name, files := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			for model, src := range files {
				if err := os.WriteFile(filepath.Join(dir, model+".yml"), []byte(src), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if _, err := InitRegistry(dir); err == nil || !strings.Contains(err.Error(), "link error") {
				t.Fatalf("expected a link error, got %v", err)
			}
		})
	}
}

func TestValidateFilters(t *testing.T) {
	cases := map[string]string{
		"compulsory": "table: a\nfilters:\n  f:\n    fields:\n      - key: x\n        search: string_equals\n    compulsory: [y]\n",
		"with":       "table: a\nfilters:\n  f:\n    fields:\n      - key: x\n        search: string_equals\n    with: [ghost]\n",
		"relation":   "table: a\nfilters:\n  f:\n    fields:\n      - key: Ghost@x\n        search: string_equals\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "A.yml"), []byte(src), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := InitRegistry(dir)
			if err == nil || !strings.Contains(err.Error(), "validation error") {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if name == "relation" && !errors.Is(err, criteria.ErrRelation) {
				t.Fatalf("relation failures must wrap ErrRelation: %v", err)
			}
		})
	}
}

func TestValidateFiltersUsesDotPathMode(t *testing.T) {
	m, err := Parse([]byte("table: a\ndocument: true\nfilters:\n  f:\n    fields:\n      - key: meta.color\n        search: string_equals\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m.Name = "A"
	if err := m.ValidateFilters(true); err != nil {
		t.Fatalf("document paths need no relation: %v", err)
	}
	if err := m.ValidateFilters(false); !errors.Is(err, criteria.ErrRelation) {
		t.Fatalf("relation paths must name a relation, got %v", err)
	}
}

func TestDeclaredFilters(t *testing.T) {
	reg := loadShop(t)
	customer, _ := reg.Get("Customer")

	f, err := customer.NewFilter("index", nil)
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	if f.ID() != "Customer.index" {
		t.Fatalf("ID = %q", f.ID())
	}
	if diff := cmp.Diff([]string{"name"}, f.CompulsoryFields()); diff != "" {
		t.Fatalf("compulsory mismatch (-want +got):\n%s", diff)
	}

	if _, err := customer.NewFilter("recent", nil); err == nil {
		t.Fatalf("a criteria declaration must not build a filter")
	}
	c, err := customer.NewCriteria("recent", criteria.Params{"since": "2024-01-01"})
	if err != nil {
		t.Fatalf("NewCriteria: %v", err)
	}
	if c.Definition().Fields[0].Search != criteria.DateBetween {
		t.Fatalf("unexpected definition: %+v", c.Definition())
	}
	if _, err := customer.NewCriteria("index", nil); err == nil {
		t.Fatalf("a filter declaration must not build criteria")
	}
	if _, err := customer.Definition("missing"); err == nil {
		t.Fatalf("expected an error for an unknown filter")
	}

	order, _ := reg.Get("Order")
	def, err := order.Definition("status")
	if err != nil {
		t.Fatalf("Definition: %v", err)
	}
	if def.ValueMap["state"] != "states" || def.Defaults["status"] != "active" {
		t.Fatalf("value map or defaults lost: %+v", def)
	}
}
