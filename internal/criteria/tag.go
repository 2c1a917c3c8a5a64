package criteria

import "strings"

// Tag is the structural breakdown of a searchable field key such as
// "status", "orders.total", "Order@total" or "created(from - to)".
type Tag struct {
	Key string
	// Index is the parameter name the field value is looked up under.
	Index string
	// Field is the bare column name once relation and range parts are removed.
	Field    string
	Relation string

	Dotted          bool
	RelationalWhere bool
	Between         bool
	// RangeKeys holds the parameter names written inside the range suffix,
	// e.g. {"from", "to"} for "created(from - to)".
	RangeKeys [2]string
}

const rangeSeparator = " - "

// ParseTag never fails: keys that carry no marker are plain columns.
func ParseTag(key string) Tag {
	t := Tag{Key: key, Between: strings.Contains(key, rangeSeparator)}

	base := key
	if open := strings.Index(key, "("); open >= 0 {
		if end := strings.LastIndex(key, ")"); end > open {
			inner := key[open+1 : end]
			if t.Between {
				if parts := strings.SplitN(inner, rangeSeparator, 2); len(parts) == 2 {
					t.RangeKeys = [2]string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
				}
			}
			base = strings.TrimSpace(key[:open])
		}
	}

	switch {
	case strings.Contains(base, "@"):
		at := strings.Index(base, "@")
		t.RelationalWhere = true
		t.Relation = base[:at]
		t.Field = base[at+1:]
		t.Index = strings.NewReplacer("@", "_", ".", "_").Replace(base)
	case strings.Contains(base, "."):
		dot := strings.Index(base, ".")
		t.Dotted = true
		t.Relation = base[:dot]
		t.Field = base[dot+1:]
		t.Index = strings.ReplaceAll(base, ".", "_")
	default:
		t.Field = base
		t.Index = base
	}
	return t
}

// Path is the storage-level name of the field, relation prefix included.
func (t Tag) Path() string {
	if t.Relation == "" {
		return t.Field
	}
	return t.Relation + "." + t.Field
}
