package model

import "YrestCriteria/internal/criteria"

// Model описывает сущность: таблицу, связи и объявленные фильтры
type Model struct {
	Name        string                 `yaml:"-"` // logical name of the model
	Table       string                 `yaml:"table"`
	PrimaryKeys []string               `yaml:"primary_keys"` // optional, e.g. ["id"]
	Document    bool                   `yaml:"document"`     // dotted fields address JSONB paths
	Relations   map[string]*Relation   `yaml:"relations"`
	Filters     map[string]*FilterSpec `yaml:"filters"`
}

// Relation описывает связь между моделями
type Relation struct {
	Type        string `yaml:"type"`    // has_one, has_many, belongs_to
	Model       string `yaml:"model"`   // logical name of the related model
	FK          string `yaml:"fk"`      // belongs_to: column here; has_*: column there
	PK          string `yaml:"pk"`      // referenced key, "id" by default
	Through     string `yaml:"through"` // intermediate model for has_*_through
	Where       string `yaml:"where"`   // extra SQL condition, table prefix "." is replaced with the alias
	Polymorphic bool   `yaml:"polymorphic"`

	modelRef   *Model
	throughRef *Model
}

// FilterSpec is a rule set declared in YAML.
type FilterSpec struct {
	Kind         string                 `yaml:"kind"` // filter (default) or criteria
	Fields       []criteria.FieldConfig `yaml:"fields"`
	ValueMap     map[string]string      `yaml:"value_map"`
	Defaults     map[string]any         `yaml:"defaults"`
	Compulsory   []string               `yaml:"compulsory"`
	ReturnFields []string               `yaml:"return_fields"`
	With         []string               `yaml:"with"`
}

const (
	KindFilter   = "filter"
	KindCriteria = "criteria"
)

// GetPrimaryKeys возвращает список полей первичного ключа, по умолчанию ["id"].
func (m *Model) GetPrimaryKeys() []string {
	if len(m.PrimaryKeys) > 0 {
		return m.PrimaryKeys
	}
	return []string{"id"}
}

// PrimaryKey is the first primary key column.
func (m *Model) PrimaryKey() string {
	return m.GetPrimaryKeys()[0]
}

// Relation resolves a relation by name. "Order" also matches a relation
// declared as "order" or "orders".
func (m *Model) Relation(name string) *Relation {
	if m == nil || m.Relations == nil || name == "" {
		return nil
	}
	if rel, ok := m.Relations[name]; ok {
		return rel
	}
	snake := toSnakeCase(name)
	if rel, ok := m.Relations[snake]; ok {
		return rel
	}
	if rel, ok := m.Relations[snake+"s"]; ok {
		return rel
	}
	return nil
}

func (r *Relation) ModelRef() *Model { return r.modelRef }

func (r *Relation) ThroughRef() *Model { return r.throughRef }

func (r *Relation) SetModelRef(m *Model) { r.modelRef = m }

func (r *Relation) SetThroughRef(m *Model) { r.throughRef = m }

// Final returns the relation of the through model that points at the
// target model.
func (r *Relation) Final() *Relation {
	if r.throughRef == nil {
		return nil
	}
	for _, sub := range r.throughRef.Relations {
		if sub.modelRef == r.modelRef || sub.Model == r.Model {
			return sub
		}
	}
	return nil
}
