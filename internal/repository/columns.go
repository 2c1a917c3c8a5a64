package repository

import (
	"slices"
	"strings"
)

// Bucket names a source of return columns.
type Bucket string

const (
	Manual         Bucket = "manual"
	Returned       Bucket = "return"
	CriteriaFields Bucket = "criteria"
)

// EagerLoad is one relation loaded alongside the main rows. Empty Columns
// loads every column.
type EagerLoad struct {
	Relation string
	Columns  []string
}

// ModifyReturnFields merges fields into bucket. A bucket still holding the
// wildcard is replaced instead.
func (r *Repository) ModifyReturnFields(fields []string, bucket Bucket) *Repository {
	if len(fields) == 0 {
		return r
	}
	current := r.returnFields[bucket]
	if len(current) == 0 || slices.Contains(current, "*") {
		r.returnFields[bucket] = uniq(fields)
		return r
	}
	r.returnFields[bucket] = uniq(append(slices.Clone(current), fields...))
	return r
}

func (r *Repository) SetReturnFields(fields []string, bucket Bucket) *Repository {
	if len(fields) == 0 {
		fields = []string{"*"}
	}
	r.returnFields[bucket] = uniq(fields)
	return r
}

func (r *Repository) ReturnFields(bucket Bucket) []string {
	return slices.Clone(r.returnFields[bucket])
}

// Columns resolves the columns of the next read: manual, then criteria,
// then request fields, then the wildcard.
func (r *Repository) Columns() []string {
	for _, b := range []Bucket{Manual, CriteriaFields, Returned} {
		if cols := r.returnFields[b]; len(cols) > 0 && !slices.Contains(cols, "*") {
			return slices.Clone(cols)
		}
	}
	return []string{"*"}
}

// With adds eager loads; a relation already loaded is kept as is.
func (r *Repository) With(relations ...string) *Repository {
	for _, rel := range relations {
		if rel == "" || r.loads(rel) {
			continue
		}
		r.with = append(r.with, EagerLoad{Relation: rel})
	}
	return r
}

// WithColumns loads relation limited to columns.
func (r *Repository) WithColumns(relation string, columns ...string) *Repository {
	for i := range r.with {
		if r.with[i].Relation == relation {
			if len(r.with[i].Columns) > 0 {
				r.with[i].Columns = uniq(append(r.with[i].Columns, columns...))
			}
			return r
		}
	}
	r.with = append(r.with, EagerLoad{Relation: relation, Columns: uniq(columns)})
	return r
}

func (r *Repository) WithCount(relations ...string) *Repository {
	for _, rel := range relations {
		if rel != "" && !slices.Contains(r.withCount, rel) {
			r.withCount = append(r.withCount, rel)
		}
	}
	return r
}

func (r *Repository) EagerLoads() []EagerLoad {
	out := make([]EagerLoad, len(r.with))
	for i, l := range r.with {
		out[i] = EagerLoad{Relation: l.Relation, Columns: slices.Clone(l.Columns)}
	}
	return out
}

func (r *Repository) loads(relation string) bool {
	return slices.ContainsFunc(r.with, func(l EagerLoad) bool { return l.Relation == relation })
}

// splitColumns moves "relation.column" entries naming another table into
// column-limited eager loads and returns the remaining root columns.
// Columns of relations that are already eager loaded are dropped.
func (r *Repository) splitColumns(columns []string) []string {
	root := make([]string, 0, len(columns))
	grouped := map[string][]string{}
	var order []string
	for _, c := range columns {
		rel, col, dotted := strings.Cut(c, ".")
		if !dotted || r.query.NativeDotPath() {
			root = append(root, c)
			continue
		}
		if rel == r.model.Table {
			root = append(root, col)
			continue
		}
		if r.loads(rel) {
			continue
		}
		if _, seen := grouped[rel]; !seen {
			order = append(order, rel)
		}
		grouped[rel] = append(grouped[rel], col)
	}
	for _, rel := range order {
		r.WithColumns(rel, grouped[rel]...)
	}
	if len(root) == 0 {
		root = append(root, "*")
	}
	return root
}

func uniq(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
