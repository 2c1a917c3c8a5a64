package repository

import (
	"context"
	"errors"
	"fmt"

	"YrestCriteria/internal/logger"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Create inserts data and returns the stored row.
func (r *Repository) Create(ctx context.Context, data map[string]any) (map[string]any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("repository: create %s: no attributes", r.model.Name)
	}
	sb := squirrel.Insert(r.model.Table).
		SetMap(data).
		Suffix("RETURNING *").
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.runSQL(ctx, "create", sql, args)
	if err != nil {
		return nil, err
	}
	r.flushCounts(ctx)
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Update writes data to the row identified by the primary key in data.
// It reports whether a row was changed.
func (r *Repository) Update(ctx context.Context, data map[string]any) (bool, error) {
	pk := r.model.PrimaryKey()
	id, ok := data[pk]
	if !ok || blankID(id) {
		return false, fmt.Errorf("repository: update %s: missing %s", r.model.Name, pk)
	}
	rest := make(map[string]any, len(data))
	for k, v := range data {
		if k != pk {
			rest[k] = v
		}
	}
	n, err := r.UpdateByField(ctx, pk, id, rest)
	return n > 0, err
}

// UpdateByField writes data to every row whose attribute equals value.
func (r *Repository) UpdateByField(ctx context.Context, attribute string, value any, data map[string]any) (int64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	sb := squirrel.Update(r.model.Table).
		SetMap(data).
		Where(squirrel.Eq{attribute: value}).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return 0, err
	}
	return r.execSQL(ctx, "update", sql, args)
}

// Delete removes the rows matching the pipelines and the base query.
func (r *Repository) Delete(ctx context.Context) (int64, error) {
	b, err := r.Prepare()
	if err != nil {
		return 0, err
	}
	if b.Condition() == nil {
		return 0, ErrUnscopedDelete
	}
	sql, args, err := b.Delete().ToSql()
	if err != nil {
		return 0, err
	}
	return r.execSQL(ctx, "delete", sql, args)
}

// DeleteByID removes one row by primary key.
func (r *Repository) DeleteByID(ctx context.Context, id any) (int64, error) {
	if blankID(id) {
		return 0, fmt.Errorf("repository: delete %s: missing %s", r.model.Name, r.model.PrimaryKey())
	}
	sql, args, err := squirrel.Delete(r.model.Table).
		Where(squirrel.Eq{r.model.PrimaryKey(): id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}
	return r.execSQL(ctx, "delete", sql, args)
}

func (r *Repository) execSQL(ctx context.Context, op, sql string, args []any) (int64, error) {
	if r.exec == nil {
		return 0, errors.New("repository: no executor")
	}
	opID := uuid.NewString()
	if logger.DebugEnabled() {
		logger.Debug("sql", map[string]any{"op_id": opID, "op": op, "model": r.model.Name, "sql": sql, "args": args})
	}
	n, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error("exec_failed", map[string]any{"op_id": opID, "op": op, "model": r.model.Name, "error": err.Error()})
		return 0, err
	}
	if n > 0 {
		r.flushCounts(ctx)
	}
	return n, nil
}

func (r *Repository) flushCounts(ctx context.Context) {
	if r.opts.CountCache == nil {
		return
	}
	if err := r.opts.CountCache.Flush(ctx); err != nil {
		logger.Warn("count_cache_flush_failed", map[string]any{"model": r.model.Name, "error": err.Error()})
	}
}

func blankID(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}
