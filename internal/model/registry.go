package model

import (
	"fmt"
	"sort"
)

// Registry holds every loaded model by logical name.
type Registry struct {
	models map[string]*Model
}

func NewRegistry() *Registry {
	return &Registry{models: map[string]*Model{}}
}

// InitRegistry loads, links and validates all models found in dir.
func InitRegistry(dir string) (*Registry, error) {
	r := NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		return nil, fmt.Errorf("load error: %w", err)
	}
	if err := r.Link(); err != nil {
		return nil, fmt.Errorf("link error: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return r, nil
}

// Register adds m under name; Link must run afterwards.
func (r *Registry) Register(name string, m *Model) {
	m.Name = name
	r.models[name] = m
}

func (r *Registry) Get(name string) (*Model, bool) {
	m, ok := r.models[name]
	return m, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
