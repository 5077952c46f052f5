package premium

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the estimation pipeline
var (
	// ErrInvalidInput is returned when an input field is outside its domain
	ErrInvalidInput = errors.New("invalid input")

	// ErrEncoding is returned when an input cannot be mapped into the shape a model expects
	ErrEncoding = errors.New("encoding error")

	// ErrModel is returned when the prediction function fails or returns a malformed result
	ErrModel = errors.New("model error")

	// ErrModelUnavailable is returned when the model artifact could not be loaded
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPredictionAnomaly is returned when a prediction is negative or not finite
	ErrPredictionAnomaly = errors.New("prediction anomaly")
)

// FieldError ties an error kind to the offending input field
type FieldError struct {
	Kind   error
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s=%v: %s", e.Kind, e.Field, e.Value, e.Reason)
}

// Unwrap exposes the error kind to errors.Is
func (e *FieldError) Unwrap() error {
	return e.Kind
}

func invalidField(field string, value any, reason string) error {
	return &FieldError{Kind: ErrInvalidInput, Field: field, Value: value, Reason: reason}
}

func encodingField(field string, value any, reason string) error {
	return &FieldError{Kind: ErrEncoding, Field: field, Value: value, Reason: reason}
}
