package repository

import (
	"context"
	"fmt"

	"YrestCriteria/internal/query"
)

// loadRelations runs one statement per eager load and attaches the related
// rows under the relation name: a slice for has_many, a row or nil otherwise.
func (r *Repository) loadRelations(ctx context.Context, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	for _, l := range r.with {
		rel := r.model.Relation(l.Relation)
		if rel == nil {
			return fmt.Errorf("%w: %s.%s", query.ErrUnknownRelation, r.model.Name, l.Relation)
		}
		parentKey := query.ParentKey(rel)

		seen := map[string]bool{}
		keys := make([]any, 0, len(rows))
		for _, row := range rows {
			v, ok := row[parentKey]
			if !ok || v == nil {
				continue
			}
			k := fmt.Sprint(v)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, v)
			}
		}

		eq, err := query.Eager(r.model, l.Relation, l.Columns, keys)
		if err != nil {
			return err
		}
		var related []map[string]any
		if len(keys) > 0 {
			related, err = r.run(ctx, "eager:"+l.Relation, eq.Select)
			if err != nil {
				return err
			}
		}

		grouped := map[string][]map[string]any{}
		for _, child := range related {
			k := fmt.Sprint(child[eq.ChildKey])
			if eq.ChildKey == query.ParentKeyColumn {
				delete(child, query.ParentKeyColumn)
			}
			grouped[k] = append(grouped[k], child)
		}
		for _, row := range rows {
			children := grouped[fmt.Sprint(row[parentKey])]
			if row[parentKey] == nil {
				children = nil
			}
			if eq.Many {
				if children == nil {
					children = []map[string]any{}
				}
				row[eq.Relation] = children
				continue
			}
			if len(children) > 0 {
				row[eq.Relation] = children[0]
			} else {
				row[eq.Relation] = nil
			}
		}
	}
	return nil
}
