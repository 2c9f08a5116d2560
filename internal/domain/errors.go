package domain

import (
	"errors"
	"fmt"
)

// Submission error kinds. Match with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrIO           = errors.New("io error")
	ErrVerification = errors.New("verification failure")
)

// SubmissionError explains why a sighting was not accepted. Message is safe
// to show to the person who submitted it.
type SubmissionError struct {
	Kind    error
	Field   string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *SubmissionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short label for the error kind, used in API responses
// and metric labels.
func (e *SubmissionError) KindName() string {
	return KindName(e.Kind)
}

// KindName maps an error to "validation", "io", "verification" or "internal".
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrIO):
		return "io"
	case errors.Is(err, ErrVerification):
		return "verification"
	default:
		return "internal"
	}
}

// NewValidationError reports a missing or malformed field.
func NewValidationError(field, message string) *SubmissionError {
	return &SubmissionError{Kind: ErrValidation, Field: field, Message: message}
}

// NewIOError reports an upload that could not be read.
func NewIOError(field, message string, err error) *SubmissionError {
	return &SubmissionError{Kind: ErrIO, Field: field, Message: message, Err: err}
}

// NewVerificationError reports a photo rejected by the verifier.
func NewVerificationError(message string, err error) *SubmissionError {
	return &SubmissionError{Kind: ErrVerification, Field: "photo", Message: message, Err: err}
}
