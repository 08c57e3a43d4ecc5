package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrInvalidConfig marks configuration the pipeline cannot run with
	// (e.g. a non-positive chunk size).
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMalformedInput marks unparseable JSON/CSV at a stage boundary.
	// Fatal for the affected unit of work; never recovered locally.
	ErrMalformedInput = errors.New("malformed input")
	// ErrSubmission marks a batch the extraction service rejected. The core
	// never retries a submission: re-submitting creates new billable work.
	ErrSubmission = errors.New("batch submission failed")
	// ErrPersistence marks a document store write failure.
	ErrPersistence = errors.New("persistence failed")
	// ErrExtraction marks a single unreadable source file.
	ErrExtraction = errors.New("content extraction failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
