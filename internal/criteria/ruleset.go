package criteria

import (
	"fmt"
	"slices"
)

// FieldConfig binds a field key to the search type it is compiled with.
type FieldConfig struct {
	Key     string     `yaml:"key" json:"key"`
	Search  SearchType `yaml:"search" json:"search"`
	OrWhere bool       `yaml:"or" json:"or"`
}

// Hook runs before field resolution. It may rewrite p.Params or add fixed
// predicates through p.Where.
type Hook func(p *Pass) error

// Definition is the static declaration of one searchable rule set.
type Definition struct {
	// ID identifies the rule set inside a pipeline; pushing a second rule
	// set with the same ID replaces the first one.
	ID     string
	Fields []FieldConfig
	// ValueMap lets one parameter satisfy other field indexes.
	ValueMap map[string]string
	Defaults Params
	// ReturnFields and With are handed back to the query session.
	ReturnFields []string
	With         []string
	Before       Hook
}

// Validate checks that every declared field can be compiled.
func (d *Definition) Validate() error {
	if d == nil {
		return &ConfigurationError{Field: "", Reason: "missing rule set definition"}
	}
	if d.ID == "" {
		return &ConfigurationError{Field: "", Reason: "rule set definition has no id"}
	}
	for _, f := range d.Fields {
		if f.Key == "" {
			return &ConfigurationError{Field: f.Key, Reason: "empty field key"}
		}
		if _, ok := Lookup(f.Search); !ok {
			return &ConfigurationError{Field: f.Key, Reason: fmt.Sprintf("no operation for search type %s", f.Search)}
		}
	}
	return nil
}

// Keys lists the declared field keys in declaration order.
func (d *Definition) Keys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Key
	}
	return keys
}

// RuleSet is anything a query session can hold in its filter or criteria
// pipeline.
type RuleSet interface {
	ID() string
	Apply(scope Scope) (Result, error)
}

type ruleSet struct {
	def  *Definition
	data Params
}

func (r *ruleSet) ID() string {
	if r.def == nil {
		return ""
	}
	return r.def.ID
}

func (r *ruleSet) Definition() *Definition { return r.def }

// Data returns the parameters the rule set was filled with.
func (r *ruleSet) Data() Params { return r.data }

func (r *ruleSet) apply(scope Scope, compulsory []string) (Result, error) {
	if err := r.def.Validate(); err != nil {
		return Result{}, err
	}
	if scope.Query == nil {
		return Result{}, &ConfigurationError{Field: "", Reason: fmt.Sprintf("rule set %s applied without a query", r.def.ID)}
	}

	params := r.data
	if len(params) == 0 {
		params = scope.Params
	}
	p := newPass(scope.Query, params.clone(), scope.clock())

	for _, field := range compulsory {
		if _, ok := r.value(p, ParseTag(field)); !ok {
			return Result{}, &ValidationError{Field: field, Reason: "marked compulsory but not present in the filtering parameters"}
		}
	}

	if r.def.Before != nil {
		if err := r.def.Before(p); err != nil {
			return Result{}, err
		}
	}

	for _, f := range r.def.Fields {
		tag := ParseTag(f.Key)
		value, ok := r.value(p, tag)
		if !ok {
			continue
		}
		op, _ := Lookup(f.Search)
		join := And
		if f.OrWhere {
			join = Or
		}
		if err := p.dispatch(tag, f.Search, op, value, join); err != nil {
			return Result{}, err
		}
	}

	return Result{
		ReturnFields: slices.Clone(r.def.ReturnFields),
		With:         slices.Clone(r.def.With),
		Query:        p.Query,
	}, nil
}

// value resolves a field: direct parameter, then alias, then default. Range
// tags also accept their bounds under the keys named in the suffix.
func (r *ruleSet) value(p *Pass, tag Tag) (any, bool) {
	v := r.lookup(p, tag.Index)
	if v == nil && tag.Between && tag.RangeKeys[0] != "" {
		lo, hi := r.lookup(p, tag.RangeKeys[0]), r.lookup(p, tag.RangeKeys[1])
		if !blank(lo) || !blank(hi) {
			v = []any{lo, hi}
		}
	}
	if blank(v) {
		return nil, false
	}
	return v, true
}

func (r *ruleSet) lookup(p *Pass, index string) any {
	if v, ok := p.Params[index]; ok && v != nil {
		return v
	}
	if alias, ok := r.def.ValueMap[index]; ok {
		if v, ok := p.Params[alias]; ok && v != nil {
			return v
		}
	}
	if v, ok := r.def.Defaults[index]; ok && v != nil {
		return v
	}
	return nil
}

// dispatch runs op directly or, for relation-scoped tags, inside a relation
// sub-query. Nested paths such as "orders.items.total" recurse one relation
// per segment.
func (p *Pass) dispatch(tag Tag, search SearchType, op Operation, value any, join Join) error {
	scoped := tag.RelationalWhere || (tag.Dotted && !p.Query.NativeDotPath())
	if !scoped {
		if requiresRelation(search) && p.depth == 0 {
			return &RelationError{Field: tag.Key}
		}
		field := tag.Field
		if tag.Dotted {
			field = tag.Path()
		}
		return op(p, field, value, join)
	}

	if tag.Relation == "" {
		return &RelationError{Field: tag.Key}
	}
	if !p.Query.HasRelation(tag.Relation) {
		return &RelationError{Field: tag.Key, Relation: tag.Relation}
	}
	inner := ParseTag(tag.Field)
	inner.Key = tag.Key
	return p.Query.WhereHas(join, tag.Relation, func(sub Query) error {
		return p.derive(sub).dispatch(inner, search, op, value, And)
	})
}

// Criteria is a rule set applied to every read of a query session.
type Criteria struct {
	ruleSet
}

// NewCriteria binds def to data. An empty data map makes the criteria fall
// back to the session's request parameters.
func NewCriteria(def *Definition, data Params) *Criteria {
	return &Criteria{ruleSet{def: def, data: data}}
}

// Fill replaces the parameters.
func (c *Criteria) Fill(data Params) *Criteria {
	c.data = data
	return c
}

func (c *Criteria) Apply(scope Scope) (Result, error) {
	return c.apply(scope, nil)
}

// Filter is a rule set that can additionally require parameters.
type Filter struct {
	ruleSet
	compulsory []string
}

func NewFilter(def *Definition, data Params) *Filter {
	return &Filter{ruleSet: ruleSet{def: def, data: data}}
}

func (f *Filter) Fill(data Params) *Filter {
	f.data = data
	return f
}

// PushCompulsory marks declared fields as required.
func (f *Filter) PushCompulsory(fields ...string) error {
	if f.def == nil {
		return &ConfigurationError{Field: "", Reason: "filter has no definition"}
	}
	keys := f.def.Keys()
	for _, field := range fields {
		if !slices.Contains(keys, field) {
			return &ConfigurationError{Field: field, Reason: "compulsory field must be among the searchable fields"}
		}
	}
	for _, field := range fields {
		if !slices.Contains(f.compulsory, field) {
			f.compulsory = append(f.compulsory, field)
		}
	}
	return nil
}

// CompulsoryFields returns the required field keys.
func (f *Filter) CompulsoryFields() []string {
	return slices.Clone(f.compulsory)
}

func (f *Filter) Apply(scope Scope) (Result, error) {
	return f.apply(scope, f.compulsory)
}
