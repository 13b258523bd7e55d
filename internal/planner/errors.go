package planner

import "fmt"

// ErrNoPrimaryKey indicates an operation that requires a primary key on a
// model that declares none.
var ErrNoPrimaryKey = fmt.Errorf("model has no primary key")

// UnknownFieldError indicates a filter key that is neither a field, a
// relationship, nor a combinator of the model it is applied to.
type UnknownFieldError struct {
	Model string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q on model %q", e.Field, e.Model)
}

// InvalidFilterOperatorError indicates an operator that does not exist, is not
// applicable to the field's kind, or received an ill-typed operand.
type InvalidFilterOperatorError struct {
	Field    string
	Operator string
	Reason   string
}

func (e *InvalidFilterOperatorError) Error() string {
	return fmt.Sprintf("invalid operator %s on field %q: %s", e.Operator, e.Field, e.Reason)
}

// InvalidFilterShapeError indicates a structurally malformed filter value,
// such as a non-list under _and or a non-object field filter.
type InvalidFilterShapeError struct {
	Path   string
	Reason string
}

func (e *InvalidFilterShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid filter: %s", e.Reason)
	}
	return fmt.Sprintf("invalid filter at %s: %s", e.Path, e.Reason)
}
