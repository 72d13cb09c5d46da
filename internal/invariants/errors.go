package invariants

import "fmt"

// Reason classifies a ValidationError.
type Reason string

const (
	ReasonMissingRequiredField Reason = "missing_required_field"
	ReasonNotAllowed           Reason = "not_allowed"
	ReasonInvalidField         Reason = "invalid_field"
)

// ValidationError names the field that made a record unsaveable.
// Value is set for NotAllowed only.
type ValidationError struct {
	Reason Reason
	Field  string
	Value  string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissingRequiredField:
		return fmt.Sprintf("%s is required", e.Field)
	case ReasonNotAllowed:
		return fmt.Sprintf("%s %q is not allowed", e.Field, e.Value)
	default:
		return fmt.Sprintf("%s is invalid", e.Field)
	}
}

// Is matches any ValidationError with the same reason.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Reason == e.Reason
}

var (
	ErrMissingRequiredField = &ValidationError{Reason: ReasonMissingRequiredField}
	ErrNotAllowed           = &ValidationError{Reason: ReasonNotAllowed}
	ErrInvalidField         = &ValidationError{Reason: ReasonInvalidField}
)

func missing(field string) error {
	return &ValidationError{Reason: ReasonMissingRequiredField, Field: field}
}

func notAllowed(field, value string) error {
	return &ValidationError{Reason: ReasonNotAllowed, Field: field, Value: value}
}

// InvalidField reports a field whose value cannot be accepted.
func InvalidField(field string) error {
	return &ValidationError{Reason: ReasonInvalidField, Field: field}
}
