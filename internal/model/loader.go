package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"YrestCriteria/internal/logger"

	"gopkg.in/yaml.v3"
)

func (r *Registry) LoadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		r.Register(name, m)
		logger.Info("model_loaded", map[string]any{
			"model":     name,
			"relations": len(m.Relations),
			"filters":   len(m.Filters),
		})
	}
	return nil
}

// Parse validates the YAML structure of one model file and decodes it.
func Parse(data []byte) (*Model, error) {
	// 1. Разбираем в yaml.Node для структурной валидации
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("empty YAML")
	}
	if err := validateYAMLNode(root.Content[0], "model"); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	// 2. Теперь уже Decode в модель
	var m Model
	if err := root.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	return &m, nil
}
