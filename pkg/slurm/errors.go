package slurm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidOptions indicates script options that cannot be rendered.
	ErrInvalidOptions = errors.New("invalid batch script options")

	// ErrCommandNotFound indicates a scheduler tool missing from PATH.
	ErrCommandNotFound = errors.New("command not found")

	// ErrUnexpectedOutput indicates scheduler output that could not be parsed.
	ErrUnexpectedOutput = errors.New("unexpected scheduler output")
)

// CommandError describes a failed external command.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Name, strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(": exit status %d", e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsCommandNotFound reports whether err stems from a missing executable.
func IsCommandNotFound(err error) bool {
	return errors.Is(err, ErrCommandNotFound)
}

// IsInvalidOptions reports whether err is an options validation failure.
func IsInvalidOptions(err error) bool {
	return errors.Is(err, ErrInvalidOptions)
}

func invalidOptionsf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}
