package criteria

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/spf13/cast"
)

const dateTimeLayout = "2006-01-02 15:04:05"

var hasClock = regexp.MustCompile(`\d+:\d+:\d+`)

// blank reports whether v counts as "not supplied". Numeric zero, "0" and
// false are real values.
func blank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// asSlice flattens any slice or array into []any. ok is false for scalars.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asString(field string, v any) (string, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", &ValidationError{Field: field, Reason: fmt.Sprintf("expected a string, got %T", v)}
	}
	return s, nil
}

func asInt(field string, v any) (int64, error) {
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("expected an integer, got %v", v)}
	}
	return n, nil
}

// asPair reads a two-valued range input. When upperOptional is set a single
// element is accepted and the upper bound comes back nil.
func asPair(field string, v any, upperOptional bool) (any, any, error) {
	items, ok := asSlice(v)
	if !ok || len(items) == 0 || (len(items) < 2 && !upperOptional) {
		return nil, nil, &ValidationError{Field: field, Reason: "expected a two-element range"}
	}
	if len(items) < 2 {
		return items[0], nil, nil
	}
	return items[0], items[1], nil
}

// dateBound normalizes a date input to a full datetime string. Inputs that
// already carry a clock component are kept as-is.
func dateBound(field string, v any, startOfDay bool) (string, error) {
	if t, ok := v.(time.Time); ok {
		return t.Format(dateTimeLayout), nil
	}
	s, err := asString(field, v)
	if err != nil {
		return "", err
	}
	if hasClock.MatchString(s) {
		return s, nil
	}
	if startOfDay {
		return s + " 00:00:00", nil
	}
	return s + " 23:59:59", nil
}

func truthy(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	s := cast.ToString(v)
	return s == "1" || s == "true"
}
