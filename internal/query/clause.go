package query

import (
	"strings"

	"YrestCriteria/internal/criteria"

	"github.com/Masterminds/squirrel"
)

type clause struct {
	join criteria.Join
	pred squirrel.Sqlizer
}

// Predicate is the rendered form of one chained clause.
type Predicate struct {
	Join criteria.Join
	SQL  string
	Args []any
}

// clauseList renders clauses left to right with plain SQL precedence,
// "(a) AND (b) OR (c)". The join of the first clause is ignored. Lists that
// contain an OR are wrapped so later conditions cannot bind into them.
type clauseList []clause

func (l clauseList) ToSql() (string, []any, error) {
	sql, args, hasOr, err := l.render()
	if err != nil || !hasOr {
		return sql, args, err
	}
	return "(" + sql + ")", args, nil
}

func (l clauseList) render() (string, []any, bool, error) {
	var (
		sb    strings.Builder
		args  []any
		hasOr bool
		n     int
	)
	for _, c := range l {
		sql, a, err := c.pred.ToSql()
		if err != nil {
			return "", nil, false, err
		}
		if sql == "" {
			continue
		}
		if n > 0 {
			sb.WriteString(" ")
			sb.WriteString(c.join.String())
			sb.WriteString(" ")
			hasOr = hasOr || c.join == criteria.Or
		}
		sb.WriteString("(")
		sb.WriteString(sql)
		sb.WriteString(")")
		args = append(args, a...)
		n++
	}
	return sb.String(), args, hasOr, nil
}

// hasOr reports whether any clause after the first is OR-joined.
func (l clauseList) hasOr() bool {
	for i, c := range l {
		if i > 0 && c.join == criteria.Or {
			return true
		}
	}
	return false
}

// nestedList is a clause list chained as a single clause of an outer list,
// which already parenthesizes each of its clauses.
type nestedList clauseList

func (l nestedList) ToSql() (string, []any, error) {
	sql, args, _, err := clauseList(l).render()
	return sql, args, err
}

// Group collects predicates rendered together as one condition.
type Group struct {
	clauses clauseList
}

func (g *Group) Add(join criteria.Join, pred squirrel.Sqlizer) {
	if pred != nil {
		g.clauses = append(g.clauses, clause{join: join, pred: pred})
	}
}

func (g *Group) Len() int { return len(g.clauses) }

// Sqlizer is nil for an empty group.
func (g *Group) Sqlizer() squirrel.Sqlizer {
	if len(g.clauses) == 0 {
		return nil
	}
	return nestedList(g.clauses)
}
