package query

import (
	"testing"

	"YrestCriteria/internal/model"
)

var shopModels = map[string]string{
	"Customer": `
table: customers
relations:
  orders:
    model: Order
    type: has_many
  profile:
    model: Profile
    type: has_one
`,
	"Order": `
table: orders
relations:
  customer:
    model: Customer
    type: belongs_to
  products:
    model: Product
    type: has_many
    through: OrderItem
  paid_items:
    model: OrderItem
    type: has_many
    where: .paid = true
`,
	"OrderItem": `
table: order_items
relations:
  order:
    model: Order
    type: belongs_to
  product:
    model: Product
    type: belongs_to
`,
	"Product": "table: products\n",
	"Profile": `
table: profiles
document: true
`,
}

func shop(t *testing.T) *model.Registry {
	t.Helper()
	reg := model.NewRegistry()
	for name, src := range shopModels {
		m, err := model.Parse([]byte(src))
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		reg.Register(name, m)
	}
	if err := reg.Link(); err != nil {
		t.Fatalf("link: %v", err)
	}
	return reg
}

func mustModel(t *testing.T, reg *model.Registry, name string) *model.Model {
	t.Helper()
	m, ok := reg.Get(name)
	if !ok {
		t.Fatalf("model %s not registered", name)
	}
	return m
}
