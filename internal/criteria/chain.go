package criteria

import "fmt"

// Chain is an ordered collection of rule sets applied one after another to
// the same query.
type Chain struct {
	preventOverride bool
	skip            bool
	items           []RuleSet
}

// NewChain returns an empty chain. With preventOverride set, pushing a rule
// set replaces any earlier one carrying the same ID.
func NewChain(preventOverride bool) *Chain {
	return &Chain{preventOverride: preventOverride}
}

func (c *Chain) Push(rs RuleSet) {
	if c.preventOverride {
		c.Remove(rs.ID())
	}
	c.items = append(c.items, rs)
}

// Remove drops every rule set with the given ID.
func (c *Chain) Remove(id string) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ID() != id {
			kept = append(kept, item)
		}
	}
	clear(c.items[len(kept):])
	c.items = kept
}

func (c *Chain) Items() []RuleSet {
	out := make([]RuleSet, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Chain) Len() int { return len(c.items) }

func (c *Chain) Skip(status bool) { c.skip = status }

func (c *Chain) Skipped() bool { return c.skip }

// Apply runs every rule set in insertion order. Each one sees the query the
// previous one returned; fold receives every contribution. The final query
// is returned.
func (c *Chain) Apply(scope Scope, fold func(Result) error) (Query, error) {
	if c.skip {
		return scope.Query, nil
	}
	for _, rs := range c.items {
		res, err := ApplyGrouped(rs, scope)
		if err != nil {
			return scope.Query, fmt.Errorf("apply %s: %w", rs.ID(), err)
		}
		if res.Query != nil {
			scope.Query = res.Query
		}
		if fold != nil {
			if err := fold(res); err != nil {
				return scope.Query, err
			}
		}
	}
	return scope.Query, nil
}

// ApplyGrouped applies rs so that its predicates join the scope query as one
// AND-ed condition. Handles that are not a Grouper receive them directly.
func ApplyGrouped(rs RuleSet, scope Scope) (Result, error) {
	g, ok := scope.Query.(Grouper)
	if !ok {
		return rs.Apply(scope)
	}
	inner := scope
	inner.Query = g.Group()
	res, err := rs.Apply(inner)
	if err != nil {
		return res, err
	}
	if res.Query != nil {
		g.WhereGroup(And, res.Query)
	}
	res.Query = scope.Query
	return res, nil
}
