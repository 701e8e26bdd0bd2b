package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminal job failures
type ErrorKind string

const (
	KindInvalidArguments  ErrorKind = "invalid_arguments"
	KindCancelled         ErrorKind = "cancelled"
	KindExtractionFailure ErrorKind = "extraction_failure"
)

// Fixed user-visible messages
const (
	MessageVideoIDRequired = "Video ID required"
	MessageCancelled       = "Download cancelled"
)

var (
	// ErrInvalidArguments is returned for malformed invocations
	ErrInvalidArguments = errors.New(MessageVideoIDRequired)

	// ErrCancelled is returned when a job is aborted by a cancellation request
	ErrCancelled = errors.New(MessageCancelled)
)

// JobError is a terminal job failure with its kind and a user-visible message
type JobError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error formats the failure for logs
func (e *JobError) Error() string {
	if e.Err == nil || e.Err.Error() == e.Message {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the cause for errors.Is / errors.As
func (e *JobError) Unwrap() error {
	return e.Err
}

// NewCancelledError wraps cause (may be nil) as a cancellation
func NewCancelledError(cause error) *JobError {
	if cause == nil {
		cause = ErrCancelled
	} else if !errors.Is(cause, ErrCancelled) {
		cause = fmt.Errorf("%w: %w", ErrCancelled, cause)
	}
	return &JobError{Kind: KindCancelled, Message: MessageCancelled, Err: cause}
}

// NewExtractionError flattens any extractor failure into a single kind
func NewExtractionError(err error) *JobError {
	return &JobError{Kind: KindExtractionFailure, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err, defaulting to extraction failure
func KindOf(err error) ErrorKind {
	var jobErr *JobError
	if errors.As(err, &jobErr) {
		return jobErr.Kind
	}
	switch {
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	case errors.Is(err, ErrInvalidArguments):
		return KindInvalidArguments
	default:
		return KindExtractionFailure
	}
}
