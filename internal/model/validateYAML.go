package model

import (
	"fmt"

	"YrestCriteria/internal/criteria"

	"gopkg.in/yaml.v3"
)

// Разрешённые ключи для объектов
var allowedModelKeys = map[string]bool{
	"table":        true,
	"primary_keys": true,
	"document":     true,
	"relations":    true,
	"filters":      true,
}

var allowedRelationKeys = map[string]bool{
	"model":       true,
	"type":        true,
	"fk":          true,
	"pk":          true,
	"through":     true,
	"where":       true,
	"polymorphic": true,
}

var allowedFilterKeys = map[string]bool{
	"kind":          true,
	"fields":        true,
	"value_map":     true,
	"defaults":      true,
	"compulsory":    true,
	"return_fields": true,
	"with":          true,
}

var allowedFieldKeys = map[string]bool{
	"key":    true,
	"search": true,
	"or":     true,
}

var allowedKindValues = map[string]bool{
	KindFilter:   true,
	KindCriteria: true,
}

func validateYAMLNode(node *yaml.Node, context string) error {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			if err := validateYAMLNode(child, "model"); err != nil {
				return err
			}
		}

	case yaml.MappingNode:
		var allowedKeys map[string]bool
		switch context {
		case "model":
			allowedKeys = allowedModelKeys
		case "relation":
			allowedKeys = allowedRelationKeys
		case "filter":
			allowedKeys = allowedFilterKeys
		case "field":
			allowedKeys = allowedFieldKeys
		default:
			allowedKeys = nil // свободная форма (value_map, defaults)
		}

		for i := 0; i < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]
			key := keyNode.Value

			if allowedKeys != nil && !allowedKeys[key] {
				return fmt.Errorf("unknown key '%s' in %s", key, context)
			}

			if context == "field" && key == "search" {
				if _, err := criteria.ParseSearchType(valNode.Value); err != nil {
					return fmt.Errorf("line %d: %w", valNode.Line, err)
				}
			}
			if context == "filter" && key == "kind" && !allowedKindValues[valNode.Value] {
				return fmt.Errorf("unknown filter kind '%s' at line %d", valNode.Value, valNode.Line)
			}

			// Определяем новый контекст
			nextContext := ""
			switch {
			case context == "model" && key == "relations":
				nextContext = "relations-map"
			case context == "relations-map":
				nextContext = "relation"
			case context == "model" && key == "filters":
				nextContext = "filters-map"
			case context == "filters-map":
				nextContext = "filter"
			case context == "filter" && key == "fields":
				nextContext = "fields-seq"
			case context == "filter":
				nextContext = "filter-value"
			case context == "field":
				nextContext = "field-value"
			default:
				nextContext = context
			}

			if err := validateYAMLNode(valNode, nextContext); err != nil {
				return err
			}
		}

	case yaml.SequenceNode:
		itemContext := context
		if context == "fields-seq" {
			itemContext = "field"
		}
		for _, item := range node.Content {
			if err := validateYAMLNode(item, itemContext); err != nil {
				return err
			}
		}

	case yaml.ScalarNode:
		// скаляры не валидируем на ключи — они уже проверяются при разборе MappingNode
	}

	return nil
}
