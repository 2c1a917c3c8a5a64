package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"YrestCriteria/internal/criteria"
	"YrestCriteria/internal/logger"
	"YrestCriteria/internal/query"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// Page is one page of results with its pagination headers.
type Page struct {
	Data        []map[string]any `json:"data"`
	Total       int64            `json:"total"`
	PerPage     uint64           `json:"per_page"`
	CurrentPage uint64           `json:"current_page"`
	LastPage    uint64           `json:"last_page"`
	From        uint64           `json:"from"`
	To          uint64           `json:"to"`
}

// Condition is one FindWhere entry. An empty Operator means equality.
type Condition struct {
	Field    string
	Operator string
	Value    any
}

// All returns every row matching the pipelines.
func (r *Repository) All(ctx context.Context) ([]map[string]any, error) {
	b, err := r.Prepare()
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, b)
}

// Paginate applies the pipelines and returns the configured page. The total
// is read through the count cache when one is set.
func (r *Repository) Paginate(ctx context.Context) (*Page, error) {
	b, err := r.Prepare()
	if err != nil {
		return nil, err
	}
	total, err := r.count(ctx, b)
	if err != nil {
		return nil, err
	}

	limit := r.limit
	if limit == 0 {
		limit = 15
	}
	b.Limit(limit)
	b.Offset((r.page - 1) * limit)

	rows, err := r.fetch(ctx, b)
	if err != nil {
		return nil, err
	}
	p := &Page{
		Data:        rows,
		Total:       total,
		PerPage:     limit,
		CurrentPage: r.page,
		LastPage:    uint64(math.Max(1, math.Ceil(float64(total)/float64(limit)))),
	}
	if len(rows) > 0 {
		p.From = (r.page-1)*limit + 1
		p.To = p.From + uint64(len(rows)) - 1
	}
	return p, nil
}

// Find returns the row with the given primary key.
func (r *Repository) Find(ctx context.Context, id any) (map[string]any, error) {
	return r.FindBy(ctx, r.model.PrimaryKey(), id)
}

func (r *Repository) FindBy(ctx context.Context, field string, value any) (map[string]any, error) {
	b, err := r.Prepare()
	if err != nil {
		return nil, err
	}
	b.Where(criteria.And, squirrel.Eq{b.Column(field): value})
	b.Limit(1)
	rows, err := r.fetch(ctx, b)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (r *Repository) FindAllBy(ctx context.Context, field string, values ...any) ([]map[string]any, error) {
	b, err := r.Prepare()
	if err != nil {
		return nil, err
	}
	var v any = values
	if len(values) == 1 {
		v = values[0]
	}
	b.Where(criteria.And, squirrel.Eq{b.Column(field): v})
	return r.fetch(ctx, b)
}

// FindWhere chains the conditions after the pipelines. With or set every
// condition after the first is joined with OR.
func (r *Repository) FindWhere(ctx context.Context, conditions []Condition, or bool) ([]map[string]any, error) {
	b, err := r.Prepare()
	if err != nil {
		return nil, err
	}
	join := criteria.And
	if or {
		join = criteria.Or
	}
	var group query.Group
	for _, c := range conditions {
		pred, err := conditionPredicate(b.Column(c.Field), c)
		if err != nil {
			return nil, err
		}
		group.Add(join, pred)
	}
	b.Where(criteria.And, group.Sqlizer())
	return r.fetch(ctx, b)
}

// Pluck returns the values of one column.
func (r *Repository) Pluck(ctx context.Context, column string) ([]any, error) {
	b, err := r.Prepare()
	if err != nil {
		return nil, err
	}
	rows, err := r.run(ctx, "pluck", b.Select([]string{column}))
	if err != nil {
		return nil, err
	}
	name := columnName(column)
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, row[name])
	}
	return out, nil
}

// Lists maps key column values onto value column values.
func (r *Repository) Lists(ctx context.Context, value, key string) (map[string]any, error) {
	b, err := r.Prepare()
	if err != nil {
		return nil, err
	}
	rows, err := r.run(ctx, "lists", b.Select([]string{value, key}))
	if err != nil {
		return nil, err
	}
	vn, kn := columnName(value), columnName(key)
	out := make(map[string]any, len(rows))
	for _, row := range rows {
		out[cast.ToString(row[kn])] = row[vn]
	}
	return out, nil
}

// Explain compiles the read All would run, without executing it.
func (r *Repository) Explain() (string, []any, error) {
	b, err := r.Prepare()
	if err != nil {
		return "", nil, err
	}
	sb, err := r.selectFor(b)
	if err != nil {
		return "", nil, err
	}
	return sb.ToSql()
}

func (r *Repository) fetch(ctx context.Context, b *query.Builder) ([]map[string]any, error) {
	sb, err := r.selectFor(b)
	if err != nil {
		return nil, err
	}
	rows, err := r.run(ctx, "select", sb)
	if err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) selectFor(b *query.Builder) (squirrel.SelectBuilder, error) {
	columns := r.splitColumns(r.Columns())
	if !slices.Contains(columns, "*") {
		for _, l := range r.with {
			if rel := r.model.Relation(l.Relation); rel != nil {
				if pk := query.ParentKey(rel); !slices.Contains(columns, pk) {
					columns = append(columns, pk)
				}
			}
		}
	}
	extra := make([]squirrel.Sqlizer, 0, len(r.withCount))
	for _, rel := range r.withCount {
		c, err := b.RelationCount(rel)
		if err != nil {
			return squirrel.SelectBuilder{}, err
		}
		extra = append(extra, c)
	}
	return b.Select(columns, extra...), nil
}

func (r *Repository) count(ctx context.Context, b *query.Builder) (int64, error) {
	sql, args, err := b.Count().ToSql()
	if err != nil {
		return 0, err
	}
	cache := r.opts.CountCache
	if cache != nil {
		if total, ok, err := cache.Get(ctx, sql, args); err != nil {
			logger.Warn("count_cache_get_failed", map[string]any{"model": r.model.Name, "error": err.Error()})
		} else if ok {
			return total, nil
		}
	}

	rows, err := r.runSQL(ctx, "count", sql, args)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, errors.New("repository: count returned no rows")
	}
	var total int64
	for _, v := range rows[0] {
		total, err = cast.ToInt64E(v)
		if err != nil {
			return 0, fmt.Errorf("repository: count: %w", err)
		}
	}

	if cache != nil {
		if err := cache.Set(ctx, sql, args, total); err != nil {
			logger.Warn("count_cache_set_failed", map[string]any{"model": r.model.Name, "error": err.Error()})
		}
	}
	return total, nil
}

func (r *Repository) run(ctx context.Context, op string, sb squirrel.SelectBuilder) ([]map[string]any, error) {
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	return r.runSQL(ctx, op, sql, args)
}

func (r *Repository) runSQL(ctx context.Context, op, sql string, args []any) ([]map[string]any, error) {
	if r.exec == nil {
		return nil, errors.New("repository: no executor")
	}
	opID := uuid.NewString()
	if logger.DebugEnabled() {
		logger.Debug("sql", map[string]any{
			"op_id": opID,
			"op":    op,
			"model": r.model.Name,
			"sql":   sql,
			"args":  args,
		})
	}
	rows, err := r.exec.Query(ctx, sql, args...)
	if err != nil {
		logger.Error("query_failed", map[string]any{"op_id": opID, "op": op, "model": r.model.Name, "error": err.Error()})
		return nil, err
	}
	return rows, nil
}

func conditionPredicate(column string, c Condition) (squirrel.Sqlizer, error) {
	switch strings.ToLower(strings.TrimSpace(c.Operator)) {
	case "", "=":
		return squirrel.Eq{column: c.Value}, nil
	case "!=", "<>":
		return squirrel.NotEq{column: c.Value}, nil
	case "<":
		return squirrel.Lt{column: c.Value}, nil
	case "<=":
		return squirrel.LtOrEq{column: c.Value}, nil
	case ">":
		return squirrel.Gt{column: c.Value}, nil
	case ">=":
		return squirrel.GtOrEq{column: c.Value}, nil
	case "like":
		return squirrel.Like{column: c.Value}, nil
	case "ilike":
		return squirrel.ILike{column: c.Value}, nil
	case "in":
		return squirrel.Eq{column: c.Value}, nil
	case "not in":
		return squirrel.NotEq{column: c.Value}, nil
	}
	return nil, fmt.Errorf("repository: unsupported operator %q on %s", c.Operator, c.Field)
}

// columnName is the key a selected column comes back under.
func columnName(column string) string {
	if i := strings.LastIndex(column, "."); i >= 0 {
		return column[i+1:]
	}
	return column
}
