package query

import (
	"fmt"
	"slices"

	"YrestCriteria/internal/model"

	"github.com/Masterminds/squirrel"
)

// ParentKeyColumn carries the owning parent key on rows loaded through an
// intermediate table.
const ParentKeyColumn = "__parent_key"

// EagerQuery loads the related rows of a set of parent rows in one statement.
type EagerQuery struct {
	Relation string
	// ParentKey is the parent row column whose values were collected.
	ParentKey string
	// ChildKey is the loaded row column matching ParentKey.
	ChildKey string
	// Many is true for has_many relations.
	Many   bool
	Select squirrel.SelectBuilder
}

// Eager builds the load of relation for the given parent key values. Empty
// columns select every column; otherwise the matching key and the related
// model's identity column are always added.
func Eager(parent *model.Model, relation string, columns []string, keys []any) (*EagerQuery, error) {
	rel := parent.Relation(relation)
	if rel == nil || rel.Polymorphic || rel.ModelRef() == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, parent.Name, relation)
	}
	target := rel.ModelRef()
	q := &EagerQuery{Relation: relation, Many: rel.Type == "has_many"}

	var matchColumn string
	q.ParentKey = ParentKey(rel)
	switch {
	case rel.Through != "":
		q.ChildKey = ParentKeyColumn
	case rel.Type == "belongs_to":
		q.ChildKey, matchColumn = rel.PK, rel.PK
	default:
		q.ChildKey, matchColumn = rel.FK, rel.FK
	}

	selected := []string{MainAlias + ".*"}
	if len(columns) > 0 {
		cols := slices.Clone(columns)
		if id := target.PrimaryKey(); !slices.Contains(cols, id) {
			cols = append(cols, id)
		}
		if matchColumn != "" && !slices.Contains(cols, matchColumn) {
			cols = append(cols, matchColumn)
		}
		selected = selected[:0]
		for _, c := range cols {
			selected = append(selected, MainAlias+"."+c)
		}
	}

	sb := squirrel.Select(selected...).
		From(fmt.Sprintf("%s AS %s", target.Table, MainAlias)).
		PlaceholderFormat(squirrel.Dollar)

	if rel.Through != "" {
		final := rel.Final()
		if final == nil || rel.ThroughRef() == nil {
			return nil, fmt.Errorf("relation through %s is not linked", rel.Through)
		}
		const throughAlias = "t"
		sb = sb.Column(fmt.Sprintf("%s.%s AS %s", throughAlias, rel.FK, ParentKeyColumn)).
			Join(fmt.Sprintf("%s AS %s ON %s.%s = %s.%s", rel.ThroughRef().Table, throughAlias, throughAlias, final.FK, MainAlias, final.PK)).
			Where(squirrel.Eq{throughAlias + "." + rel.FK: keys})
	} else {
		sb = sb.Where(squirrel.Eq{MainAlias + "." + matchColumn: keys})
	}
	if where := replaceTableWithAlias(rel.Where, MainAlias); where != "" {
		sb = sb.Where(where)
	}
	q.Select = sb
	return q, nil
}

// ParentKey is the parent column whose values select the related rows.
func ParentKey(rel *model.Relation) string {
	if rel.Type == "belongs_to" && rel.Through == "" {
		return rel.FK
	}
	return rel.PK
}
