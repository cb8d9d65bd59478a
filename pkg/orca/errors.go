package orca

import (
	"errors"
	"fmt"
)

// Sentinel errors for document assembly.
var (
	// ErrConfiguration indicates an option combination with no sensible rendering.
	ErrConfiguration = errors.New("invalid document configuration")

	// ErrBlockNotFound indicates a literal block file does not exist.
	ErrBlockNotFound = errors.New("extra block file not found")
)

// WriteError wraps a filesystem failure while writing a document.
type WriteError struct {
	// Op is the step that failed (e.g., "mkdir", "write", "rename").
	Op string

	// Path is the output path being written.
	Path string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// IsConfiguration returns true if err is a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsBlockNotFound returns true if err reports a missing literal block file.
func IsBlockNotFound(err error) bool {
	return errors.Is(err, ErrBlockNotFound)
}

// IsWriteError returns true if err came from writing a document.
func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
