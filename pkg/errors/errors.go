// Package errors provides structured error types for imageoi.
//
// This package defines error codes and types that enable:
//   - Consistent error handling between the core packages and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes are grouped by category:
//   - INVALID_*: shape, scale, option and keyword validation failures
//   - CONFLICT: two metadata sources disagree on a value
//   - NOT_FOUND, INDEX_OUT_OF_RANGE: section lookup misses
//   - TYPE_NOT_SUPPORTED: a referenced section has the wrong payload kind
//   - IO_ERROR, FILE_EXISTS: filesystem or container codec failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidShape, "expected %dx%d, got %dx%d", r, c, gr, gc)
//	if errors.Is(err, errors.ErrCodeInvalidShape) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidShape   Code = "INVALID_SHAPE"
	ErrCodeInvalidScale   Code = "INVALID_SCALE"
	ErrCodeInvalidOption  Code = "INVALID_OPTION"
	ErrCodeInvalidKeyword Code = "INVALID_KEYWORD"

	// Metadata merge errors
	ErrCodeConflict Code = "CONFLICT"

	// Lookup errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeIndexOutOfRange Code = "INDEX_OUT_OF_RANGE"

	// Payload errors
	ErrCodeTypeNotSupported Code = "TYPE_NOT_SUPPORTED"

	// Filesystem and codec errors
	ErrCodeIO         Code = "IO_ERROR"
	ErrCodeFileExists Code = "FILE_EXISTS"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Category groups codes into the broad failure classes callers act on.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryValidation
	CategoryConflict
	CategoryNotFound
	CategoryTypeNotSupported
	CategoryIO
)

var categories = map[Code]Category{
	ErrCodeInvalidInput:     CategoryValidation,
	ErrCodeInvalidShape:     CategoryValidation,
	ErrCodeInvalidScale:     CategoryValidation,
	ErrCodeInvalidOption:    CategoryValidation,
	ErrCodeInvalidKeyword:   CategoryValidation,
	ErrCodeConflict:         CategoryConflict,
	ErrCodeNotFound:         CategoryNotFound,
	ErrCodeIndexOutOfRange:  CategoryNotFound,
	ErrCodeTypeNotSupported: CategoryTypeNotSupported,
	ErrCodeIO:               CategoryIO,
	ErrCodeFileExists:       CategoryIO,
}

// CategoryOf returns the category of the first *Error in err's chain.
func CategoryOf(err error) Category {
	return categories[GetCode(err)]
}

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryConflict:
		return "conflict"
	case CategoryNotFound:
		return "not found"
	case CategoryTypeNotSupported:
		return "type not supported"
	case CategoryIO:
		return "io"
	}
	return "unknown"
}
