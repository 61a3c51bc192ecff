package domain

import "fmt"

// ValidationError reports a malformed or out-of-range input. The offending
// field is always named; no partial results accompany it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InsufficientDataError reports a baseline window too short to estimate from.
// Distinct from "valid but zero" data: zero orders on observed days is valid,
// absence of observed days is not. Callers may retry with a longer window.
type InsufficientDataError struct {
	ObservedDays int
	RequiredDays int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient historical data: %d observed days, need at least %d",
		e.ObservedDays, e.RequiredDays)
}

// ComputationLimitError reports a request exceeding the supported bounds for
// trials or forecast length. Callers should clamp or reject.
type ComputationLimitError struct {
	Field     string
	Requested int
	Limit     int
}

func (e *ComputationLimitError) Error() string {
	return fmt.Sprintf("%s=%d exceeds supported limit %d", e.Field, e.Requested, e.Limit)
}
