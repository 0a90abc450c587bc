package models

import "fmt"

// ValidationErrorKind tags a user-input validation failure with the
// category the dialogue layer uses to pick an error message.
type ValidationErrorKind string

const (
	BadDateFormat      ValidationErrorKind = "bad_date_format"
	BadTimeFormat      ValidationErrorKind = "bad_time_format"
	NotPositiveInteger ValidationErrorKind = "not_positive_integer"
	BadDecimal         ValidationErrorKind = "bad_decimal"
	BadWeekday         ValidationErrorKind = "bad_weekday"
	BadChoice          ValidationErrorKind = "bad_choice"
	EmptyField         ValidationErrorKind = "empty_field"
	NotFound           ValidationErrorKind = "not_found"
)

// ValidationError is returned by input validators. It is recoverable: the
// dialogue stays in its current state and the user is re-prompted. Message
// overrides the default error text for the kind when set.
type ValidationError struct {
	Kind    ValidationErrorKind
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Kind)
}

// NewValidationError builds a ValidationError for the given kind.
func NewValidationError(kind ValidationErrorKind) *ValidationError {
	return &ValidationError{Kind: kind}
}

// NewValidationMessage builds a ValidationError carrying a custom
// user-facing message.
func NewValidationMessage(kind ValidationErrorKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}
