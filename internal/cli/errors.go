package cli

import (
	"errors"
	"fmt"

	"warehouse/internal/services"
)

// Exit codes of the warehouse binary.
const (
	ExitOK       = 0
	ExitRejected = 1 // the inventory refused the operation
	ExitFailed   = 2 // the command could not run: bad flags, configuration or storage
)

// exitError tags err with the code the process should exit with.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// failf reports a command that could not run.
func failf(format string, args ...interface{}) error {
	return &exitError{code: ExitFailed, err: fmt.Errorf(format, args...)}
}

// serviceError reports a failed inventory operation, prefixed with the
// formatted context. Validation failures, bad targets, missing products and
// empty stock are rejections; anything else failed in storage.
func serviceError(err error, format string, args ...interface{}) error {
	code := ExitFailed
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, services.ErrInvalidTarget),
		errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrOutOfStock):
		code = ExitRejected
	}
	return &exitError{code: code, err: fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)}
}

// ExitCode returns the process exit code for the error a command returned.
// Errors raised by cobra itself, such as unknown commands or flags, count as
// ExitFailed.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return ExitFailed
}
