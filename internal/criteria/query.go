package criteria

import (
	"time"

	"github.com/Masterminds/squirrel"
)

// Params is the flat field→value map a rule set is compiled against.
type Params map[string]any

func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Query is the predicate-building capability rule sets write into. The
// query session owns it; rule sets only chain predicates onto it.
type Query interface {
	// Where chains pred onto the predicates already collected.
	Where(join Join, pred squirrel.Sqlizer)
	// WhereHas chains an existence test against relation; scope receives a
	// handle bound to the related table and fills in the inner predicates.
	WhereHas(join Join, relation string, scope func(Query) error) error
	HasRelation(relation string) bool
	// Column qualifies a field name for use in a predicate.
	Column(field string) string
	// NativeDotPath reports whether dotted fields address nested document
	// values directly instead of going through a relation.
	NativeDotPath() bool
}

// Grouper is implemented by handles that can collect one rule set's
// predicates apart and chain them back as a single condition.
type Grouper interface {
	Group() Query
	WhereGroup(join Join, group Query)
}

// Scope is what one Apply call works against.
type Scope struct {
	Query Query
	// Params are the ambient request parameters, used when the rule set
	// was constructed without data of its own.
	Params Params
	Now    func() time.Time
}

func (s Scope) clock() func() time.Time {
	if s.Now != nil {
		return s.Now
	}
	return time.Now
}

// Result is what a rule set contributes back to the query session.
type Result struct {
	ReturnFields []string
	With         []string
	Query        Query
}

// Pass carries the state of a single compilation pass. Relation sub-queries
// get a derived pass bound to the nested handle.
type Pass struct {
	Params Params
	Query  Query

	now   func() time.Time
	depth int
}

func newPass(q Query, params Params, now func() time.Time) *Pass {
	return &Pass{Params: params, Query: q, now: now}
}

func (p *Pass) derive(q Query) *Pass {
	return &Pass{Params: p.Params, Query: q, now: p.now, depth: p.depth + 1}
}

// Where is a shortcut for hooks that add fixed predicates.
func (p *Pass) Where(join Join, pred squirrel.Sqlizer) {
	p.Query.Where(join, pred)
}

// Depth is 0 for the top-level pass and grows by one per relation sub-query.
func (p *Pass) Depth() int { return p.depth }
