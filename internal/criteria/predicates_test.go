package criteria

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func run(t *testing.T, st SearchType, value any, or bool) *recorder {
	t.Helper()
	q := newRecorder()
	p := newPass(q, Params{}, func() time.Time {
		return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	})
	op, ok := Lookup(st)
	if !ok {
		t.Fatalf("no operation for %s", st)
	}
	join := And
	if or {
		join = Or
	}
	if err := op(p, "col", value, join); err != nil {
		t.Fatalf("%s(%v): %v", st, value, err)
	}
	return q
}

func TestOperationsRender(t *testing.T) {
	cases := []struct {
		name  string
		st    SearchType
		value any
		sql   string
		args  []any
	}{
		{"starts with", StringStartsWith, "Jo", "AND col LIKE ?", []any{"Jo%"}},
		{"ends with", StringEndsWith, "son", "AND col LIKE ?", []any{"%son"}},
		{"contains tokens", StringContains, "red  car", "AND col LIKE ?; AND col LIKE ?", []any{"%red%", "%car%"}},
		{"equals", StringEquals, "active", "AND col = ?", []any{"active"}},
		{"less than", NumLessThan, "10", "AND col < ?", []any{int64(10)}},
		{"less or equal", NumLessThanOrEquals, 10, "AND col <= ?", []any{int64(10)}},
		{"num equals", NumEquals, 0, "AND col = ?", []any{int64(0)}},
		{"num not equals", NumNotEquals, 3, "AND col <> ?", []any{int64(3)}},
		{"greater than", NumGreaterThan, 3, "AND col > ?", []any{int64(3)}},
		{"greater or equal", NumGreaterThanOrEquals, 3, "AND col >= ?", []any{int64(3)}},
		{"between", NumBetween, []any{100, 500}, "AND (col >= ? AND col <= ?)", []any{int64(100), int64(500)}},
		{"between exclusive", NumBetweenExclusive, []int{1, 5}, "AND (col > ? AND col < ?)", []any{int64(1), int64(5)}},
		{"between left exclusive", NumBetweenLeftExclusive, []any{1, 5}, "AND (col > ? AND col <= ?)", []any{int64(1), int64(5)}},
		{"between right exclusive", NumBetweenRightExclusive, []any{1, 5}, "AND (col >= ? AND col < ?)", []any{int64(1), int64(5)}},
		{"date after", DateAfter, "2024-01-15", "AND col >= ?", []any{"2024-01-15 00:00:00"}},
		{"date on", DateOn, "2024-01-15", "AND (col >= ? AND col <= ?)", []any{"2024-01-15 00:00:00", "2024-01-15 23:59:59"}},
		{"date after exclusive", DateAfterExclusive, "2024-01-15", "AND col > ?", []any{"2024-01-15 23:59:59"}},
		{"date before", DateBefore, "2024-01-15", "AND col <= ?", []any{"2024-01-15 23:59:59"}},
		{"date before exclusive", DateBeforeExclusive, "2024-01-15", "AND col < ?", []any{"2024-01-15 23:59:59"}},
		{"date keeps clock", DateAfter, "2024-01-15 08:00:00", "AND col >= ?", []any{"2024-01-15 08:00:00"}},
		{"date between", DateBetween, []any{"2024-01-01", "2024-01-31"}, "AND (col >= ? AND col <= ?)", []any{"2024-01-01 00:00:00", "2024-01-31 23:59:59"}},
		{"date between open end", DateBetween, []any{"2024-01-01"}, "AND (col >= ? AND col <= ?)", []any{"2024-01-01 00:00:00", "2024-03-01 12:30:00"}},
		{"date between exclusive", DateBetweenExclusive, []any{"2024-01-01", "2024-01-31"}, "AND (col > ? AND col < ?)", []any{"2024-01-01 23:59:59", "2024-01-31 23:59:59"}},
		{"date between left exclusive", DateBetweenLeftExclusive, []any{"2024-01-01", "2024-01-31"}, "AND (col > ? AND col <= ?)", []any{"2024-01-01 23:59:59", "2024-01-31 23:59:59"}},
		{"date between right exclusive", DateBetweenRightExclusive, []any{"2024-01-01", "2024-01-31"}, "AND (col >= ? AND col < ?)", []any{"2024-01-01 00:00:00", "2024-01-31 23:59:59"}},
		{"in", SearchIn, []any{1, 2, 3}, "AND col IN (?,?,?)", []any{1, 2, 3}},
		{"boolean true", SearchBoolean, "1", "AND col = ?", []any{true}},
		{"boolean false", SearchBoolean, "0", "AND col = ?", []any{false}},
		{"null", SearchNull, 0, "AND col IS NULL", nil},
		{"not null", SearchNull, "1", "AND col IS NOT NULL", nil},
		{"relation list", WhereRelation, []any{"a", "b"}, "AND col IN (?,?)", []any{"a", "b"}},
		{"relation scalar", WhereRelation, 7, "AND col = ?", []any{7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := run(t, tc.st, tc.value, false)
			if got := q.String(); got != tc.sql {
				t.Fatalf("sql = %q, want %q", got, tc.sql)
			}
			if diff := cmp.Diff(tc.args, q.args()); diff != "" {
				t.Fatalf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Leading wildcard belongs to ends-with, trailing to starts-with.
func TestStringAffixWildcards(t *testing.T) {
	if got := run(t, StringStartsWith, "abc", false).args(); got[0] != "abc%" {
		t.Fatalf("starts with pattern = %v", got[0])
	}
	if got := run(t, StringEndsWith, "abc", false).args(); got[0] != "%abc" {
		t.Fatalf("ends with pattern = %v", got[0])
	}
}

func TestRangeIsOneClauseUnderOr(t *testing.T) {
	q := run(t, NumBetween, []any{1, 2}, true)
	if len(q.clauses) != 1 || q.clauses[0].join != Or {
		t.Fatalf("range must be chained as one OR clause, got %s", q)
	}
}

func TestDateOnIsOneClauseUnderOr(t *testing.T) {
	q := run(t, DateOn, "2024-01-15", true)
	if got := q.String(); got != "OR (col >= ? AND col <= ?)" {
		t.Fatalf("sql = %q", got)
	}
}

func TestWhereInIgnoresScalarsAndEmptyLists(t *testing.T) {
	for _, v := range []any{"single", 5, []any{}, []string{}} {
		if q := run(t, SearchIn, v, false); len(q.clauses) != 0 {
			t.Fatalf("SearchIn(%v) should add nothing, got %s", v, q)
		}
	}
}

func TestRangeRequiresTwoBounds(t *testing.T) {
	q := newRecorder()
	p := newPass(q, Params{}, time.Now)
	op, _ := Lookup(NumBetween)
	err := op(p, "total", []any{1}, And)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	err = op(p, "total", "not-a-range", And)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected a validation error for a scalar, got %v", err)
	}
}

func TestNumericRejectsGarbage(t *testing.T) {
	q := newRecorder()
	p := newPass(q, Params{}, time.Now)
	op, _ := Lookup(NumEquals)
	var verr *ValidationError
	if err := op(p, "price", "ten", And); !errors.As(err, &verr) || verr.Field != "price" {
		t.Fatalf("expected a ValidationError naming price, got %v", err)
	}
}

func TestBlank(t *testing.T) {
	for _, v := range []any{nil, "", []any{}, map[string]any{}, (*int)(nil)} {
		if !blank(v) {
			t.Fatalf("blank(%#v) = false", v)
		}
	}
	for _, v := range []any{0, "0", false, []any{nil}} {
		if blank(v) {
			t.Fatalf("blank(%#v) = true", v)
		}
	}
}
