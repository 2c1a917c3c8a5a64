package criteria

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration = errors.New("criteria: configuration error")
	ErrValidation    = errors.New("criteria: validation error")
	ErrRelation      = errors.New("criteria: relation error")
)

// ConfigurationError reports a rule declaration that cannot be compiled,
// such as a search type with no registered operation.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("criteria: field %q: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ValidationError reports input parameters that break the declared contract.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("criteria: field %q: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RelationError reports a relational predicate whose relation cannot be resolved.
type RelationError struct {
	Field    string
	Relation string
}

func (e *RelationError) Error() string {
	if e.Relation == "" {
		return fmt.Sprintf("criteria: field %q: no relation assigned", e.Field)
	}
	return fmt.Sprintf("criteria: field %q: unknown relation %q", e.Field, e.Relation)
}

func (e *RelationError) Is(target error) bool { return target == ErrRelation }
