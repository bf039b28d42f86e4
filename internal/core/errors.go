package core

import "fmt"

// ValidationError reports a malformed or missing input field. No state is
// mutated when an operation fails with a ValidationError.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a lookup of an unknown entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
