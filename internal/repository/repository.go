package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"YrestCriteria/internal/criteria"
	"YrestCriteria/internal/model"
	"YrestCriteria/internal/query"
)

var (
	ErrNotFound       = errors.New("repository: record not found")
	ErrUnscopedDelete = errors.New("repository: refusing to delete without conditions")
)

// Executor runs compiled statements. Rows come back as column→value maps.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) ([]map[string]any, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

// CountCache stores pagination totals keyed by the compiled count statement.
type CountCache interface {
	Get(ctx context.Context, sql string, args []any) (int64, bool, error)
	Set(ctx context.Context, sql string, args []any, total int64) error
	// Flush drops every cached total; writes call it so later pages see
	// the new row count.
	Flush(ctx context.Context) error
}

// Sort is one ORDER BY entry.
type Sort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Request is the already-extracted request state a session starts from.
type Request struct {
	Params       criteria.Params `json:"params"`
	Page         uint64          `json:"page"`
	Limit        uint64          `json:"limit"`
	ReturnFields []string        `json:"return_fields"`
	Sort         []Sort          `json:"sort"`
}

type Options struct {
	PreventFilterOverwriting   bool
	PreventCriteriaOverwriting bool
	DefaultLimit               uint64
	DefaultSort                []Sort
	NativeDotPath              *bool
	CountCache                 CountCache
	Now                        func() time.Time
}

func DefaultOptions() Options {
	return Options{
		PreventFilterOverwriting:   true,
		PreventCriteriaOverwriting: true,
		DefaultLimit:               15,
	}
}

// Repository is the query session of one model: it owns the query handle,
// the filter and criteria pipelines and the column/eager-load state.
type Repository struct {
	model *model.Model
	exec  Executor
	opts  Options

	query    *query.Builder
	request  Request
	filters  *criteria.Chain
	criteria *criteria.Chain

	returnFields map[Bucket][]string
	with         []EagerLoad
	withCount    []string
	page, limit  uint64
}

func New(m *model.Model, exec Executor, req Request, opts Options) (*Repository, error) {
	if m == nil {
		return nil, fmt.Errorf("repository: nil model")
	}
	var qopts []query.Option
	if opts.NativeDotPath != nil {
		if *opts.NativeDotPath != m.Document {
			if err := m.ValidateFilters(*opts.NativeDotPath); err != nil {
				return nil, fmt.Errorf("repository: %s: %w", m.Name, err)
			}
		}
		qopts = append(qopts, query.WithNativeDotPath(*opts.NativeDotPath))
	}
	r := &Repository{
		model:    m,
		exec:     exec,
		opts:     opts,
		query:    query.New(m, qopts...),
		request:  req,
		filters:  criteria.NewChain(opts.PreventFilterOverwriting),
		criteria: criteria.NewChain(opts.PreventCriteriaOverwriting),
		returnFields: map[Bucket][]string{
			Manual:         {"*"},
			Returned:       {"*"},
			CriteriaFields: {"*"},
		},
	}

	r.page = req.Page
	if r.page == 0 {
		r.page = 1
	}
	r.limit = req.Limit
	if r.limit == 0 {
		r.limit = opts.DefaultLimit
	}
	if len(req.ReturnFields) > 0 {
		r.returnFields[Returned] = append([]string(nil), req.ReturnFields...)
	}
	sorts := req.Sort
	if len(sorts) == 0 {
		sorts = opts.DefaultSort
	}
	if err := r.Sort(sorts...); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) Model() *model.Model { return r.model }

// Query is the base handle; GetByFilter and GetByCriterion write into it.
func (r *Repository) Query() *query.Builder { return r.query }

func (r *Repository) Sort(sorts ...Sort) error {
	for _, s := range sorts {
		if err := r.query.OrderBy(s.Field, s.Direction); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GroupBy(fields ...string) *Repository {
	if len(fields) > 0 {
		r.query.GroupBy(fields...)
	}
	return r
}

// SetLimit changes the page size used by Paginate.
func (r *Repository) SetLimit(limit uint64) *Repository {
	if limit > 0 {
		r.limit = limit
	}
	return r
}

func (r *Repository) SetPage(page uint64) *Repository {
	if page > 0 {
		r.page = page
	}
	return r
}

func (r *Repository) now() func() time.Time {
	if r.opts.Now != nil {
		return r.opts.Now
	}
	return time.Now
}
