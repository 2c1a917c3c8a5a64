package repository

import (
	"fmt"

	"YrestCriteria/internal/criteria"
	"YrestCriteria/internal/query"
)

func (r *Repository) PushFilter(f *criteria.Filter) *Repository {
	r.filters.Push(f)
	return r
}

func (r *Repository) PushCriterion(c *criteria.Criteria) *Repository {
	r.criteria.Push(c)
	return r
}

// Filters returns the pushed filters in application order.
func (r *Repository) Filters() []criteria.RuleSet { return r.filters.Items() }

func (r *Repository) Criteria() []criteria.RuleSet { return r.criteria.Items() }

func (r *Repository) SkipFilter(status bool) *Repository {
	r.filters.Skip(status)
	return r
}

func (r *Repository) SkipCriteria(status bool) *Repository {
	r.criteria.Skip(status)
	return r
}

func (r *Repository) ResetScope() *Repository {
	r.filters.Skip(false)
	r.criteria.Skip(false)
	return r
}

// GetByFilter applies f right away to the base query.
func (r *Repository) GetByFilter(f *criteria.Filter) error {
	return r.applyNow(f)
}

func (r *Repository) GetByCriterion(c *criteria.Criteria) error {
	return r.applyNow(c)
}

// GetByAttributes requires the given fields of f and pushes it.
func (r *Repository) GetByAttributes(f *criteria.Filter, attributes ...string) error {
	if err := f.PushCompulsory(attributes...); err != nil {
		return err
	}
	r.PushFilter(f)
	return nil
}

func (r *Repository) applyNow(rs criteria.RuleSet) error {
	r.query.Seal()
	res, err := criteria.ApplyGrouped(rs, r.scope(r.query))
	if err != nil {
		return fmt.Errorf("apply %s: %w", rs.ID(), err)
	}
	b, err := r.fold(res)
	if err != nil {
		return err
	}
	r.query = b
	return nil
}

// Prepare copies the base query and runs the filter pipeline, then the
// criteria pipeline, on the copy. The result is sealed, so predicates
// chained onto it narrow every pipeline's condition.
func (r *Repository) Prepare() (*query.Builder, error) {
	b, err := r.ApplyFilter(r.query.Clone())
	if err != nil {
		return nil, err
	}
	if b, err = r.ApplyCriteria(b); err != nil {
		return nil, err
	}
	b.Seal()
	return b, nil
}

// ApplyFilter runs the pushed filters on b, in push order. Return fields and
// eager loads they contribute are merged into the session.
func (r *Repository) ApplyFilter(b *query.Builder) (*query.Builder, error) {
	return r.applyChain(r.filters, b)
}

func (r *Repository) ApplyCriteria(b *query.Builder) (*query.Builder, error) {
	return r.applyChain(r.criteria, b)
}

func (r *Repository) applyChain(chain *criteria.Chain, b *query.Builder) (*query.Builder, error) {
	b.Seal()
	work := b
	_, err := chain.Apply(r.scope(b), func(res criteria.Result) error {
		next, err := r.fold(res)
		if err != nil {
			return err
		}
		work = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return work, nil
}

func (r *Repository) scope(b *query.Builder) criteria.Scope {
	return criteria.Scope{Query: b, Params: r.request.Params, Now: r.now()}
}

// fold merges one contribution and returns the query handle to continue with.
func (r *Repository) fold(res criteria.Result) (*query.Builder, error) {
	if len(res.ReturnFields) > 0 {
		r.ModifyReturnFields(res.ReturnFields, CriteriaFields)
	}
	if len(res.With) > 0 {
		r.With(res.With...)
	}
	b, ok := res.Query.(*query.Builder)
	if !ok {
		return nil, fmt.Errorf("repository: rule set returned a %T query handle", res.Query)
	}
	return b, nil
}
