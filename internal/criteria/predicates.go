package criteria

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

func stringStartsWith(p *Pass, field string, value any, join Join) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	p.Query.Where(join, squirrel.Like{p.Query.Column(field): s + "%"})
	return nil
}

func stringEndsWith(p *Pass, field string, value any, join Join) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	p.Query.Where(join, squirrel.Like{p.Query.Column(field): "%" + s})
	return nil
}

// stringContains requires every whitespace separated token to appear.
func stringContains(p *Pass, field string, value any, join Join) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	col := p.Query.Column(field)
	for _, token := range strings.Fields(s) {
		p.Query.Where(join, squirrel.Like{col: "%" + token + "%"})
	}
	return nil
}

func stringEquals(p *Pass, field string, value any, join Join) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	p.Query.Where(join, squirrel.Eq{p.Query.Column(field): s})
	return nil
}

func compareInt(build func(col string, n int64) squirrel.Sqlizer) Operation {
	return func(p *Pass, field string, value any, join Join) error {
		n, err := asInt(field, value)
		if err != nil {
			return err
		}
		p.Query.Where(join, build(p.Query.Column(field), n))
		return nil
	}
}

var (
	numLessThan = compareInt(func(col string, n int64) squirrel.Sqlizer {
		return squirrel.Lt{col: n}
	})
	numLessThanOrEquals = compareInt(func(col string, n int64) squirrel.Sqlizer {
		return squirrel.LtOrEq{col: n}
	})
	numEquals = compareInt(func(col string, n int64) squirrel.Sqlizer {
		return squirrel.Eq{col: n}
	})
	numNotEquals = compareInt(func(col string, n int64) squirrel.Sqlizer {
		return squirrel.NotEq{col: n}
	})
	numGreaterThan = compareInt(func(col string, n int64) squirrel.Sqlizer {
		return squirrel.Gt{col: n}
	})
	numGreaterThanOrEquals = compareInt(func(col string, n int64) squirrel.Sqlizer {
		return squirrel.GtOrEq{col: n}
	})
)

// rangeInt builds a two-bound predicate that is chained as one unit, so an
// OR join applies to the range as a whole.
func rangeInt(lower, upper func(col string, n int64) squirrel.Sqlizer) Operation {
	return func(p *Pass, field string, value any, join Join) error {
		rawLo, rawHi, err := asPair(field, value, false)
		if err != nil {
			return err
		}
		lo, err := asInt(field, rawLo)
		if err != nil {
			return err
		}
		hi, err := asInt(field, rawHi)
		if err != nil {
			return err
		}
		col := p.Query.Column(field)
		p.Query.Where(join, squirrel.And{lower(col, lo), upper(col, hi)})
		return nil
	}
}

func gte(col string, n int64) squirrel.Sqlizer { return squirrel.GtOrEq{col: n} }
func gt(col string, n int64) squirrel.Sqlizer  { return squirrel.Gt{col: n} }
func lte(col string, n int64) squirrel.Sqlizer { return squirrel.LtOrEq{col: n} }
func lt(col string, n int64) squirrel.Sqlizer  { return squirrel.Lt{col: n} }

var (
	numBetween               = rangeInt(gte, lte)
	numBetweenExclusive      = rangeInt(gt, lt)
	numBetweenLeftExclusive  = rangeInt(gt, lte)
	numBetweenRightExclusive = rangeInt(gte, lt)
)

func dateAfter(p *Pass, field string, value any, join Join) error {
	start, err := dateBound(field, value, true)
	if err != nil {
		return err
	}
	p.Query.Where(join, squirrel.GtOrEq{p.Query.Column(field): start})
	return nil
}

func dateOn(p *Pass, field string, value any, join Join) error {
	start, err := dateBound(field, value, true)
	if err != nil {
		return err
	}
	end, err := dateBound(field, value, false)
	if err != nil {
		return err
	}
	col := p.Query.Column(field)
	p.Query.Where(join, squirrel.And{squirrel.GtOrEq{col: start}, squirrel.LtOrEq{col: end}})
	return nil
}

func dateAfterExclusive(p *Pass, field string, value any, join Join) error {
	end, err := dateBound(field, value, false)
	if err != nil {
		return err
	}
	p.Query.Where(join, squirrel.Gt{p.Query.Column(field): end})
	return nil
}

func dateBefore(p *Pass, field string, value any, join Join) error {
	end, err := dateBound(field, value, false)
	if err != nil {
		return err
	}
	p.Query.Where(join, squirrel.LtOrEq{p.Query.Column(field): end})
	return nil
}

func dateBeforeExclusive(p *Pass, field string, value any, join Join) error {
	end, err := dateBound(field, value, false)
	if err != nil {
		return err
	}
	p.Query.Where(join, squirrel.Lt{p.Query.Column(field): end})
	return nil
}

// dateEdge is one side of a date range: which end of the day the bound is
// padded to and the comparison applied to it. Exclusive lower bounds skip
// the whole day.
type dateEdge struct {
	startOfDay bool
	build      func(col, bound string) squirrel.Sqlizer
}

var (
	afterInclusive  = dateEdge{true, func(col, b string) squirrel.Sqlizer { return squirrel.GtOrEq{col: b} }}
	afterExclusive  = dateEdge{false, func(col, b string) squirrel.Sqlizer { return squirrel.Gt{col: b} }}
	beforeInclusive = dateEdge{false, func(col, b string) squirrel.Sqlizer { return squirrel.LtOrEq{col: b} }}
	beforeExclusive = dateEdge{false, func(col, b string) squirrel.Sqlizer { return squirrel.Lt{col: b} }}
)

// rangeDate defaults an empty upper bound to the current time.
func rangeDate(lower, upper dateEdge) Operation {
	return func(p *Pass, field string, value any, join Join) error {
		rawLo, rawHi, err := asPair(field, value, true)
		if err != nil {
			return err
		}
		lo, err := dateBound(field, rawLo, lower.startOfDay)
		if err != nil {
			return err
		}
		var hi string
		if blank(rawHi) {
			hi = p.now().Format(dateTimeLayout)
		} else if hi, err = dateBound(field, rawHi, upper.startOfDay); err != nil {
			return err
		}
		col := p.Query.Column(field)
		p.Query.Where(join, squirrel.And{lower.build(col, lo), upper.build(col, hi)})
		return nil
	}
}

var (
	dateBetween               = rangeDate(afterInclusive, beforeInclusive)
	dateBetweenExclusive      = rangeDate(afterExclusive, beforeExclusive)
	dateBetweenLeftExclusive  = rangeDate(afterExclusive, beforeInclusive)
	dateBetweenRightExclusive = rangeDate(afterInclusive, beforeExclusive)
)

// whereIn ignores scalars and empty lists.
func whereIn(p *Pass, field string, value any, join Join) error {
	items, ok := asSlice(value)
	if !ok || len(items) == 0 {
		return nil
	}
	p.Query.Where(join, squirrel.Eq{p.Query.Column(field): items})
	return nil
}

func searchBool(p *Pass, field string, value any, join Join) error {
	p.Query.Where(join, squirrel.Eq{p.Query.Column(field): truthy(value)})
	return nil
}

func searchNull(p *Pass, field string, value any, join Join) error {
	col := p.Query.Column(field)
	n, _ := asInt(field, value)
	if n != 0 {
		p.Query.Where(join, squirrel.NotEq{col: nil})
	} else {
		p.Query.Where(join, squirrel.Eq{col: nil})
	}
	return nil
}

// relationEquals is the equality used when a field is declared with
// WhereRelation; lists become IN tests.
func relationEquals(p *Pass, field string, value any, join Join) error {
	if items, ok := asSlice(value); ok {
		return whereIn(p, field, items, join)
	}
	p.Query.Where(join, squirrel.Eq{p.Query.Column(field): value})
	return nil
}
