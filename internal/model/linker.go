package model

import (
	"fmt"
	"unicode"
)

// Link resolves model references of every relation and fills FK/PK defaults.
func (r *Registry) Link() error {
	for modelName, model := range r.models {
		for relName, rel := range model.Relations {
			if rel.Polymorphic {
				continue
			}
			targetModel, ok := r.models[rel.Model]
			if !ok {
				return fmt.Errorf("invalid relation: model '%s' not found in '%s.%s'", rel.Model, modelName, relName)
			}
			rel.modelRef = targetModel

			switch rel.Type {
			case "belongs_to":
				// FK в текущей модели, указывает на связанную
				if rel.FK == "" {
					rel.FK = toSnakeCase(relName) + "_id"
				}
			case "has_one", "has_many":
				// FK в связанной (или промежуточной) модели, указывает на текущую
				if rel.FK == "" {
					rel.FK = toSnakeCase(modelName) + "_id"
				}
			default:
				return fmt.Errorf("relation '%s.%s' must have valid Type (has_many, has_one, belongs_to), got '%s'", modelName, relName, rel.Type)
			}

			if rel.PK == "" {
				if rel.Type == "belongs_to" {
					rel.PK = targetModel.PrimaryKey()
				} else {
					rel.PK = model.PrimaryKey()
				}
			}

			if rel.Through != "" {
				if rel.Type == "belongs_to" {
					return fmt.Errorf("invalid through: belongs_to relation '%s.%s' cannot go through '%s'", modelName, relName, rel.Through)
				}
				throughModel, ok := r.models[rel.Through]
				if !ok {
					return fmt.Errorf("invalid through: model '%s' not found in '%s.%s'", rel.Through, modelName, relName)
				}
				rel.throughRef = throughModel
				if rel.Final() == nil {
					return fmt.Errorf("invalid through: no relation from '%s' to '%s' found in '%s.%s'", rel.Through, rel.Model, modelName, relName)
				}
			}
		}
	}
	return nil
}

func toSnakeCase(s string) string {
	var result []rune
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result = append(result, '_')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}
