package model

import (
	"fmt"
	"maps"
	"slices"

	"YrestCriteria/internal/criteria"
)

// Validate checks every declared filter against its model: search types
// must compile, compulsory fields must be declared, eager loads and
// relation-scoped fields must name known relations.
func (r *Registry) Validate() error {
	for _, modelName := range r.Names() {
		m := r.models[modelName]
		if err := m.ValidateFilters(m.Document); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFilters checks the declared filters with dotted fields read as
// document paths when native is set and as relation paths otherwise.
func (m *Model) ValidateFilters(native bool) error {
	for _, name := range slices.Sorted(maps.Keys(m.Filters)) {
		if err := m.validateFilter(name, native); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) validateFilter(name string, native bool) error {
	def, err := m.Definition(name)
	if err != nil {
		return err
	}
	if err := def.Validate(); err != nil {
		return fmt.Errorf("filter %s: %w", def.ID, err)
	}
	spec := m.Filters[name]
	keys := def.Keys()
	for _, field := range spec.Compulsory {
		if !slices.Contains(keys, field) {
			return fmt.Errorf("filter %s: compulsory field %q is not among the searchable fields", def.ID, field)
		}
	}
	for _, rel := range spec.With {
		if m.Relation(rel) == nil {
			return fmt.Errorf("filter %s: eager load of unknown relation %q", def.ID, rel)
		}
	}
	for _, f := range def.Fields {
		tag := criteria.ParseTag(f.Key)
		scoped := tag.RelationalWhere || (tag.Dotted && !native)
		if scoped && m.Relation(tag.Relation) == nil {
			return fmt.Errorf("filter %s: %w", def.ID, &criteria.RelationError{Field: f.Key, Relation: tag.Relation})
		}
	}
	return nil
}
