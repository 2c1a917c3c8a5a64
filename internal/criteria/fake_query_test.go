package criteria

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// recorder is a Query that keeps every chained predicate in rendered form.
type recorder struct {
	native    bool
	relations map[string]bool
	clauses   []recorded
}

type recorded struct {
	join     Join
	sql      string
	args     []any
	relation string
	sub      *recorder
}

func newRecorder(relations ...string) *recorder {
	r := &recorder{relations: map[string]bool{}}
	for _, rel := range relations {
		r.relations[rel] = true
	}
	return r
}

func (r *recorder) Where(join Join, pred squirrel.Sqlizer) {
	sql, args, err := pred.ToSql()
	if err != nil {
		panic(err)
	}
	r.clauses = append(r.clauses, recorded{join: join, sql: sql, args: args})
}

func (r *recorder) WhereHas(join Join, relation string, scope func(Query) error) error {
	sub := &recorder{relations: r.relations}
	if err := scope(sub); err != nil {
		return err
	}
	r.clauses = append(r.clauses, recorded{join: join, relation: relation, sub: sub})
	return nil
}

func (r *recorder) HasRelation(relation string) bool { return r.relations[relation] }

func (r *recorder) Column(field string) string { return field }

func (r *recorder) NativeDotPath() bool { return r.native }

// String renders clauses as "AND a = ?; OR EXISTS Order{AND total = ?}".
func (r *recorder) String() string {
	parts := make([]string, 0, len(r.clauses))
	for _, c := range r.clauses {
		if c.sub != nil {
			parts = append(parts, fmt.Sprintf("%s EXISTS %s{%s}", c.join, c.relation, c.sub))
			continue
		}
		parts = append(parts, c.join.String()+" "+c.sql)
	}
	return strings.Join(parts, "; ")
}

func (r *recorder) args() []any {
	var out []any
	for _, c := range r.clauses {
		if c.sub != nil {
			out = append(out, c.sub.args()...)
			continue
		}
		out = append(out, c.args...)
	}
	return out
}
