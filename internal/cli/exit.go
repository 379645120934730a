package cli

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/imageoi/pkg/errors"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitValidation  = 2
	ExitLookup      = 3
	ExitIO          = 4
	ExitInterrupted = 130
)

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if stderrors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	switch errors.CategoryOf(err) {
	case errors.CategoryValidation:
		return ExitValidation
	case errors.CategoryConflict, errors.CategoryNotFound, errors.CategoryTypeNotSupported:
		return ExitLookup
	case errors.CategoryIO:
		return ExitIO
	}
	return ExitError
}

// ErrorMessage renders err for the terminal: the messages of the error
// chain without code prefixes.
func ErrorMessage(err error) string {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + ErrorMessage(e.Cause)
}
