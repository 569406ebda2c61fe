package respond

import "fmt"

// ValidationError reports malformed or missing input: unknown enum values,
// justifications below the minimum length, missing required fields. Fields
// carries field-level detail for the 422 response body.
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with optional field detail
// given as alternating field/message pairs.
func NewValidationError(msg string, fieldPairs ...string) *ValidationError {
	e := &ValidationError{Msg: msg}
	if len(fieldPairs) > 0 {
		e.Fields = make(map[string]string, len(fieldPairs)/2)
		for i := 0; i+1 < len(fieldPairs); i += 2 {
			e.Fields[fieldPairs[i]] = fieldPairs[i+1]
		}
	}
	return e
}

// ConflictError reports an operation rejected by current entity state:
// admitting an enrollee who already has an active admission, discharging a
// non-active admission, re-converting an FFS treatment, transitioning a
// terminal alert. Entity optionally carries the conflicting record so the
// caller can display it.
type ConflictError struct {
	Msg    string
	Entity interface{}
}

func (e *ConflictError) Error() string { return e.Msg }

// NewConflictError builds a ConflictError. entity may be nil.
func NewConflictError(msg string, entity interface{}) *ConflictError {
	return &ConflictError{Msg: msg, Entity: entity}
}

// NotFoundError reports a missing path-bound entity (claim, treatment, alert).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}
