package model

import (
	"fmt"

	"YrestCriteria/internal/criteria"
)

// Definition builds the rule set definition of a YAML-declared filter.
// Its ID is "<Model>.<filter>".
func (m *Model) Definition(name string) (*criteria.Definition, error) {
	spec, ok := m.Filters[name]
	if !ok || spec == nil {
		return nil, fmt.Errorf("filter %q not found in model %s", name, m.Name)
	}
	defaults := make(criteria.Params, len(spec.Defaults))
	for k, v := range spec.Defaults {
		defaults[k] = v
	}
	return &criteria.Definition{
		ID:           m.Name + "." + name,
		Fields:       spec.Fields,
		ValueMap:     spec.ValueMap,
		Defaults:     defaults,
		ReturnFields: spec.ReturnFields,
		With:         spec.With,
	}, nil
}

// NewFilter instantiates a declared filter with its compulsory fields.
func (m *Model) NewFilter(name string, data criteria.Params) (*criteria.Filter, error) {
	def, err := m.Definition(name)
	if err != nil {
		return nil, err
	}
	if kind := m.Filters[name].Kind; kind != "" && kind != KindFilter {
		return nil, fmt.Errorf("%s is declared as %s, not as a filter", def.ID, kind)
	}
	f := criteria.NewFilter(def, data)
	if err := f.PushCompulsory(m.Filters[name].Compulsory...); err != nil {
		return nil, err
	}
	return f, nil
}

// NewCriteria instantiates a declared criteria rule set.
func (m *Model) NewCriteria(name string, data criteria.Params) (*criteria.Criteria, error) {
	def, err := m.Definition(name)
	if err != nil {
		return nil, err
	}
	if kind := m.Filters[name].Kind; kind != KindCriteria {
		return nil, fmt.Errorf("%s is not declared with kind: criteria", def.ID)
	}
	return criteria.NewCriteria(def, data), nil
}
