package criteria

import (
	"fmt"
	"strings"
)

// SearchType names the predicate family a searchable field is compiled with.
type SearchType int

const (
	SearchUnknown SearchType = iota

	StringStartsWith
	StringEndsWith
	StringContains
	StringEquals

	NumLessThan
	NumLessThanOrEquals
	NumEquals
	NumNotEquals
	NumGreaterThan
	NumGreaterThanOrEquals
	NumBetween
	NumBetweenExclusive
	NumBetweenLeftExclusive
	NumBetweenRightExclusive

	DateAfter
	DateOn
	DateAfterExclusive
	DateBefore
	DateBeforeExclusive
	DateBetween
	DateBetweenExclusive
	DateBetweenLeftExclusive
	DateBetweenRightExclusive

	SearchIn
	SearchBoolean
	SearchNull
	WhereRelation
)

var searchTypeNames = map[SearchType]string{
	StringStartsWith:          "string_starts_with",
	StringEndsWith:            "string_ends_with",
	StringContains:            "string_contains",
	StringEquals:              "string_equals",
	NumLessThan:               "num_less_than",
	NumLessThanOrEquals:       "num_less_than_or_equals",
	NumEquals:                 "num_equals",
	NumNotEquals:              "num_not_equals",
	NumGreaterThan:            "num_greater_than",
	NumGreaterThanOrEquals:    "num_greater_than_or_equals",
	NumBetween:                "num_between",
	NumBetweenExclusive:       "num_between_exclusive",
	NumBetweenLeftExclusive:   "num_between_left_exclusive",
	NumBetweenRightExclusive:  "num_between_right_exclusive",
	DateAfter:                 "date_after",
	DateOn:                    "date_on",
	DateAfterExclusive:        "date_after_exclusive",
	DateBefore:                "date_before",
	DateBeforeExclusive:       "date_before_exclusive",
	DateBetween:               "date_between",
	DateBetweenExclusive:      "date_between_exclusive",
	DateBetweenLeftExclusive:  "date_between_left_exclusive",
	DateBetweenRightExclusive: "date_between_right_exclusive",
	SearchIn:                  "search_in",
	SearchBoolean:             "search_boolean",
	SearchNull:                "search_null",
	WhereRelation:             "where_relation",
}

var searchTypesByName = func() map[string]SearchType {
	out := make(map[string]SearchType, len(searchTypeNames))
	for t, name := range searchTypeNames {
		out[name] = t
	}
	return out
}()

func (t SearchType) String() string {
	if name, ok := searchTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("search_type(%d)", int(t))
}

// ParseSearchType resolves the configuration name of a search type.
func ParseSearchType(name string) (SearchType, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if t, ok := searchTypesByName[key]; ok {
		return t, nil
	}
	return SearchUnknown, fmt.Errorf("unknown search type %q", name)
}

// UnmarshalText lets search types be decoded straight from YAML or JSON config.
func (t *SearchType) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t SearchType) MarshalText() ([]byte, error) {
	name, ok := searchTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown search type %d", int(t))
	}
	return []byte(name), nil
}

// Join decides how a predicate is chained onto the ones before it.
type Join int

const (
	And Join = iota
	Or
)

func (j Join) String() string {
	if j == Or {
		return "OR"
	}
	return "AND"
}
