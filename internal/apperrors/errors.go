// Package apperrors provides typed error handling for the Mobbin proxy.
// It uses struct-based errors with separate user-safe and internal messages.
package apperrors

import "fmt"

// Code categorizes errors for consistent handling across the application.
type Code int

// Error codes for categorizing application errors.
const (
	// CodeUnknown indicates an unspecified error type
	CodeUnknown Code = iota
	// CodeConfiguration indicates a required configuration value is missing or invalid
	CodeConfiguration
	// CodeInvalidInput indicates malformed or invalid input
	CodeInvalidInput
	// CodeValidation indicates input failed validation rules
	CodeValidation
	// CodeAuthentication indicates a login attempt did not yield a usable session
	CodeAuthentication
	// CodeForbidden indicates a data operation was attempted without a session
	CodeForbidden
	// CodeUpstream indicates the upstream backend was unreachable, returned a
	// non-success status, or produced a malformed response
	CodeUpstream
)

// Error represents a domain error with separate user-safe and internal messages.
// The Message field is always safe to expose to clients.
// The Internal field contains debugging details and should only be logged.
type Error struct {
	Code     Code   // Error category for handler mapping
	Message  string // User-safe message (always exposable)
	Internal string // Internal details (for logging only)
	Err      error  // Wrapped underlying error
}

// Error implements the error interface.
// Returns the user-safe message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithInternal adds internal debugging details to the error.
func (e *Error) WithInternal(format string, args ...any) *Error {
	e.Internal = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Is reports whether target matches this error's code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeUnknown:
		return "unknown"
	case CodeConfiguration:
		return "configuration"
	case CodeInvalidInput:
		return "invalid_input"
	case CodeValidation:
		return "validation"
	case CodeAuthentication:
		return "authentication"
	case CodeForbidden:
		return "forbidden"
	case CodeUpstream:
		return "upstream"
	default:
		return fmt.Sprintf("unknown_code_%d", c)
	}
}

// Configuration creates a new configuration error with the given message.
func Configuration(message string) *Error {
	return &Error{
		Code:    CodeConfiguration,
		Message: message,
	}
}

// Authentication creates a new authentication error with the given message.
func Authentication(message string) *Error {
	return &Error{
		Code:    CodeAuthentication,
		Message: message,
	}
}

// Forbidden creates a new forbidden error with the given message.
func Forbidden(message string) *Error {
	return &Error{
		Code:    CodeForbidden,
		Message: message,
	}
}

// Upstream creates a new upstream error with the given message.
func Upstream(message string) *Error {
	return &Error{
		Code:    CodeUpstream,
		Message: message,
	}
}

// InvalidInput creates a new invalid input error with the given message.
func InvalidInput(message string) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Message: message,
	}
}
