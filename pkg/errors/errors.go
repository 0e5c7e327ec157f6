// Package errors provides structured error types for cratec.
//
// Every fatal condition raised while compiling a manifest is an [*Error]
// carrying a machine-readable [Code]. Callers branch on the code with [Is]
// and show [UserMessage] to humans.
//
// # Error Codes
//
// Manifest compilation failures:
//   - INVALID_ENCODING: manifest bytes are not valid UTF-8
//   - INVALID_SYNTAX: the TOML parser rejected the manifest
//   - INVALID_MANIFEST: the tree does not match the expected descriptor shapes
//   - INVALID_VERSION: a version string is not valid semver
//   - MISSING_PACKAGE: neither [package] nor [project] is present
//   - NO_TARGETS: target synthesis produced nothing to build
//   - INVALID_SOURCE: a dependency source URL is malformed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoTargets, "either a [lib] or [[bin]] section must be present")
//	if errors.Is(err, errors.ErrCodeNoTargets) {
//	    // Handle the empty manifest
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, cause, "%s is not a valid manifest", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Manifest compilation errors
	ErrCodeInvalidEncoding Code = "INVALID_ENCODING"
	ErrCodeInvalidSyntax   Code = "INVALID_SYNTAX"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeMissingPackage  Code = "MISSING_PACKAGE"
	ErrCodeNoTargets       Code = "NO_TARGETS"
	ErrCodeInvalidSource   Code = "INVALID_SOURCE"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Loading errors
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeDependencyCycle Code = "DEPENDENCY_CYCLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// WrapPreserve wraps cause with a new message. The result keeps the code of
// the first coded error in cause's chain, or code when there is none.
func WrapPreserve(code Code, cause error, format string, args ...any) *Error {
	if c := GetCode(cause); c != "" {
		code = c
	}
	return Wrap(code, cause, format, args...)
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
// For *Error types the code prefix is dropped and wrapped causes are
// appended on their own paragraph, the way manifest errors are reported.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + "\n\n" + UserMessage(e.Cause)
}
