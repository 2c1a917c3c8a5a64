package criteria

// Operation compiles one resolved field value into predicates on p.Query.
type Operation func(p *Pass, field string, value any, join Join) error

var operations = map[SearchType]Operation{
	StringStartsWith: stringStartsWith,
	StringEndsWith:   stringEndsWith,
	StringContains:   stringContains,
	StringEquals:     stringEquals,

	NumLessThan:              numLessThan,
	NumLessThanOrEquals:      numLessThanOrEquals,
	NumEquals:                numEquals,
	NumNotEquals:             numNotEquals,
	NumGreaterThan:           numGreaterThan,
	NumGreaterThanOrEquals:   numGreaterThanOrEquals,
	NumBetween:               numBetween,
	NumBetweenExclusive:      numBetweenExclusive,
	NumBetweenLeftExclusive:  numBetweenLeftExclusive,
	NumBetweenRightExclusive: numBetweenRightExclusive,

	DateAfter:                 dateAfter,
	DateOn:                    dateOn,
	DateAfterExclusive:        dateAfterExclusive,
	DateBefore:                dateBefore,
	DateBeforeExclusive:       dateBeforeExclusive,
	DateBetween:               dateBetween,
	DateBetweenExclusive:      dateBetweenExclusive,
	DateBetweenLeftExclusive:  dateBetweenLeftExclusive,
	DateBetweenRightExclusive: dateBetweenRightExclusive,

	SearchIn:      whereIn,
	SearchBoolean: searchBool,
	SearchNull:    searchNull,
	WhereRelation: relationEquals,
}

// Lookup returns the operation registered for t.
func Lookup(t SearchType) (Operation, bool) {
	op, ok := operations[t]
	return op, ok
}

// requiresRelation lists search types that only make sense inside a
// relation sub-query.
func requiresRelation(t SearchType) bool {
	return t == WhereRelation
}
