package query

import (
	"errors"
	"fmt"
	"strings"

	"YrestCriteria/internal/criteria"
	"YrestCriteria/internal/model"

	"github.com/Masterminds/squirrel"
)

// MainAlias is the alias of the root table in every generated statement.
const MainAlias = "main"

var ErrUnknownRelation = errors.New("query: unknown relation")

// Builder collects predicates, ordering and paging for one model and turns
// them into squirrel statements. It implements criteria.Query.
type Builder struct {
	model   *model.Model
	alias   string
	native  bool
	clauses []clause
	orders  []string
	groups  []string
	limit   uint64
	offset  uint64
	seq     *int
}

type Option func(*Builder)

// WithNativeDotPath overrides the model's document flag.
func WithNativeDotPath(enabled bool) Option {
	return func(b *Builder) { b.native = enabled }
}

func New(m *model.Model, opts ...Option) *Builder {
	b := &Builder{model: m, alias: MainAlias, native: m.Document, seq: new(int)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Model() *model.Model { return b.model }

func (b *Builder) Alias() string { return b.alias }

func (b *Builder) NativeDotPath() bool { return b.native }

func (b *Builder) Where(join criteria.Join, pred squirrel.Sqlizer) {
	if pred == nil {
		return
	}
	b.clauses = append(b.clauses, clause{join: join, pred: pred})
}

// Group returns an empty handle on the same table. Predicates chained onto it
// are joined back with WhereGroup.
func (b *Builder) Group() criteria.Query {
	return &Builder{model: b.model, alias: b.alias, native: b.native, seq: b.seq}
}

// WhereGroup chains the predicates collected on g as one condition. A group
// without OR joins is spliced in clause by clause.
func (b *Builder) WhereGroup(join criteria.Join, g criteria.Query) {
	sub, ok := g.(*Builder)
	if !ok || sub == b || len(sub.clauses) == 0 {
		return
	}
	list := clauseList(sub.clauses)
	if !list.hasOr() {
		first := list[0]
		first.join = join
		b.clauses = append(b.clauses, first)
		b.clauses = append(b.clauses, list[1:]...)
		return
	}
	b.clauses = append(b.clauses, clause{join: join, pred: nestedList(list)})
}

// Seal folds the chained clauses into one condition when they contain an OR,
// so predicates chained later apply to all of them.
func (b *Builder) Seal() {
	list := clauseList(b.clauses)
	if !list.hasOr() {
		return
	}
	b.clauses = []clause{{join: criteria.And, pred: nestedList(list)}}
}

func (b *Builder) HasRelation(relation string) bool {
	rel := b.model.Relation(relation)
	return rel != nil && !rel.Polymorphic && rel.ModelRef() != nil
}

// WhereHas chains EXISTS (SELECT 1 FROM <related> WHERE <link> AND <scope>).
func (b *Builder) WhereHas(join criteria.Join, relation string, scope func(criteria.Query) error) error {
	rel := b.model.Relation(relation)
	if rel == nil || rel.Polymorphic || rel.ModelRef() == nil {
		return fmt.Errorf("%w: %s.%s", ErrUnknownRelation, b.model.Name, relation)
	}
	sub := b.nested(rel.ModelRef())
	if scope != nil {
		if err := scope(sub); err != nil {
			return err
		}
	}
	sb, err := b.relationSelect(rel, sub, "1")
	if err != nil {
		return err
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		return fmt.Errorf("relation %s: %w", relation, err)
	}
	b.Where(join, squirrel.Expr("EXISTS ("+sql+")", args...))
	return nil
}

// RelationCount is a correlated COUNT(*) sub-select named <relation>_count.
func (b *Builder) RelationCount(relation string) (squirrel.Sqlizer, error) {
	rel := b.model.Relation(relation)
	if rel == nil || rel.Polymorphic || rel.ModelRef() == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownRelation, b.model.Name, relation)
	}
	sb, err := b.relationSelect(rel, b.nested(rel.ModelRef()), "COUNT(*)")
	if err != nil {
		return nil, err
	}
	return squirrel.Alias(sb, relation+"_count"), nil
}

func (b *Builder) nested(target *model.Model) *Builder {
	*b.seq++
	return &Builder{
		model:  target,
		alias:  fmt.Sprintf("r%d", *b.seq),
		native: target.Document,
		seq:    b.seq,
	}
}

// relationSelect correlates sub with b following the relation type:
// belongs_to parent.fk = sub.pk, has_one/has_many sub.fk = parent.pk.
func (b *Builder) relationSelect(rel *model.Relation, sub *Builder, column string) (squirrel.SelectBuilder, error) {
	target := rel.ModelRef()
	sb := squirrel.Select(column).PlaceholderFormat(squirrel.Question)

	switch {
	case rel.Through != "":
		final := rel.Final()
		if final == nil || rel.ThroughRef() == nil {
			return sb, fmt.Errorf("relation through %s is not linked", rel.Through)
		}
		throughAlias := sub.alias + "_t"
		sb = sb.From(fmt.Sprintf("%s AS %s", rel.ThroughRef().Table, throughAlias)).
			Join(fmt.Sprintf("%s AS %s ON %s.%s = %s.%s", target.Table, sub.alias, throughAlias, final.FK, sub.alias, final.PK)).
			Where(fmt.Sprintf("%s.%s = %s.%s", throughAlias, rel.FK, b.alias, rel.PK))
	case rel.Type == "belongs_to":
		sb = sb.From(fmt.Sprintf("%s AS %s", target.Table, sub.alias)).
			Where(fmt.Sprintf("%s.%s = %s.%s", b.alias, rel.FK, sub.alias, rel.PK))
	case rel.Type == "has_one", rel.Type == "has_many":
		sb = sb.From(fmt.Sprintf("%s AS %s", target.Table, sub.alias)).
			Where(fmt.Sprintf("%s.%s = %s.%s", sub.alias, rel.FK, b.alias, rel.PK))
	default:
		return sb, fmt.Errorf("unsupported relation type: %s", rel.Type)
	}

	if where := replaceTableWithAlias(rel.Where, sub.alias); where != "" {
		sb = sb.Where(where)
	}
	if cond := sub.Condition(); cond != nil {
		sb = sb.Where(cond)
	}
	return sb, nil
}

// Column qualifies field with the builder's alias. In document mode dotted
// fields become JSONB text lookups.
func (b *Builder) Column(field string) string {
	if b.native && strings.Contains(field, ".") {
		parts := strings.Split(field, ".")
		if len(parts) == 2 {
			return fmt.Sprintf("%s.%s->>'%s'", b.alias, parts[0], parts[1])
		}
		return fmt.Sprintf("%s.%s#>>'{%s}'", b.alias, parts[0], strings.Join(parts[1:], ","))
	}
	return b.alias + "." + field
}

// Condition is the combined WHERE condition, nil when nothing was chained.
func (b *Builder) Condition() squirrel.Sqlizer {
	if len(b.clauses) == 0 {
		return nil
	}
	return clauseList(b.clauses)
}

// Predicates renders every chained clause separately, in order.
func (b *Builder) Predicates() ([]Predicate, error) {
	out := make([]Predicate, 0, len(b.clauses))
	for _, c := range b.clauses {
		sql, args, err := c.pred.ToSql()
		if err != nil {
			return nil, err
		}
		out = append(out, Predicate{Join: c.join, SQL: sql, Args: args})
	}
	return out, nil
}

func (b *Builder) OrderBy(field, direction string) error {
	dir := strings.ToUpper(strings.TrimSpace(direction))
	if dir != "" && dir != "ASC" && dir != "DESC" {
		return fmt.Errorf("invalid sort direction %q for %s", direction, field)
	}
	if strings.Contains(field, ".") && !b.native {
		return fmt.Errorf("cannot sort %s by relation field %s", b.model.Name, field)
	}
	expr := b.Column(field)
	if dir != "" {
		expr += " " + dir
	}
	b.orders = append(b.orders, expr)
	return nil
}

func (b *Builder) GroupBy(fields ...string) {
	for _, f := range fields {
		b.groups = append(b.groups, b.Column(f))
	}
}

func (b *Builder) Limit(n uint64) { b.limit = n }

func (b *Builder) Offset(n uint64) { b.offset = n }

// Select renders the read statement. "*" selects every column of the root
// table; extra carries computed columns such as relation counts.
func (b *Builder) Select(columns []string, extra ...squirrel.Sqlizer) squirrel.SelectBuilder {
	sb := squirrel.Select().
		From(fmt.Sprintf("%s AS %s", b.model.Table, b.alias)).
		PlaceholderFormat(squirrel.Dollar)

	if len(columns) == 0 {
		columns = []string{"*"}
	}
	for _, c := range columns {
		sb = sb.Column(b.Column(c))
	}
	for _, e := range extra {
		sb = sb.Column(e)
	}
	if cond := b.Condition(); cond != nil {
		sb = sb.Where(cond)
	}
	if len(b.groups) > 0 {
		sb = sb.GroupBy(b.groups...)
	}
	if len(b.orders) > 0 {
		sb = sb.OrderBy(b.orders...)
	}
	if b.limit > 0 {
		sb = sb.Limit(b.limit)
	}
	if b.offset > 0 {
		sb = sb.Offset(b.offset)
	}
	return sb
}

// Count renders SELECT COUNT(*) over the same predicates, without paging.
// Grouped queries count their groups.
func (b *Builder) Count() squirrel.SelectBuilder {
	if len(b.groups) > 0 {
		inner := squirrel.Select(b.groups...).
			From(fmt.Sprintf("%s AS %s", b.model.Table, b.alias)).
			GroupBy(b.groups...)
		if cond := b.Condition(); cond != nil {
			inner = inner.Where(cond)
		}
		return squirrel.Select("COUNT(*)").
			FromSelect(inner, "c").
			PlaceholderFormat(squirrel.Dollar)
	}
	sb := squirrel.Select("COUNT(*)").
		From(fmt.Sprintf("%s AS %s", b.model.Table, b.alias)).
		PlaceholderFormat(squirrel.Dollar)
	if cond := b.Condition(); cond != nil {
		sb = sb.Where(cond)
	}
	return sb
}

// Delete renders DELETE over the same predicates.
func (b *Builder) Delete() squirrel.DeleteBuilder {
	db := squirrel.Delete(fmt.Sprintf("%s AS %s", b.model.Table, b.alias)).
		PlaceholderFormat(squirrel.Dollar)
	if cond := b.Condition(); cond != nil {
		db = db.Where(cond)
	}
	return db
}

// Clone copies the builder so further chaining does not affect b.
func (b *Builder) Clone() *Builder {
	cp := *b
	cp.clauses = append([]clause(nil), b.clauses...)
	cp.orders = append([]string(nil), b.orders...)
	cp.groups = append([]string(nil), b.groups...)
	seq := *b.seq
	cp.seq = &seq
	return &cp
}

// Reset drops predicates, ordering and paging.
func (b *Builder) Reset() {
	b.clauses = nil
	b.orders = nil
	b.groups = nil
	b.limit, b.offset = 0, 0
	*b.seq = 0
}

func replaceTableWithAlias(where string, alias string) string {
	if where == "" {
		return ""
	}
	return strings.ReplaceAll(where, ".", alias+".")
}
