// Package errors classifies command-level failures.
//
// Library packages return plain wrapped errors. The command layer wraps them
// here so exit handling can tell internal faults from unavailable external
// tools (Slurm CLIs, ssh) without string matching.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// Kind classifies an AppError.
type Kind string

const (
	KindInternal        Kind = "internal"
	KindExternalService Kind = "external_service"
	KindInvalidInput    Kind = "invalid_input"
)

// AppError is an error with a classification and a user-facing message.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapInternal wraps err as an internal failure. A canceled ctx is
// preserved as-is so callers can still detect cancellation.
func WrapInternal(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}
	if ctx != nil && ctx.Err() != nil && stderrors.Is(err, ctx.Err()) {
		return err
	}
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// NewExternalServiceError reports that an external tool or service is unusable.
func NewExternalServiceError(msg string) error {
	return &AppError{Kind: KindExternalService, Message: msg}
}

// WrapExternalService wraps err as an external tool failure.
func WrapExternalService(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &AppError{Kind: KindExternalService, Message: msg, Err: err}
}

// NewInvalidInput reports a user input problem.
func NewInvalidInput(msg string, err error) error {
	return &AppError{Kind: KindInvalidInput, Message: msg, Err: err}
}

// KindOf returns the Kind of the first AppError in err's chain, or "".
func KindOf(err error) Kind {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
