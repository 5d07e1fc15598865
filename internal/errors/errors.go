// Package errors provides coded domain errors for memospeak.
//
// Every failure that reaches the user is one of the codes below. Callers
// match with errors.Is against the sentinel values, which compare by code:
//
//	if errors.Is(err, errors.ErrNoSpeech) {
//	    status = errors.UserMessage(err)
//	}
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeUnsupportedCapability Code = "UNSUPPORTED_CAPABILITY"
	CodePermissionDenied      Code = "PERMISSION_DENIED"
	CodeNoSpeech              Code = "NO_SPEECH"
	CodeFileTypeRejected      Code = "FILE_TYPE_REJECTED"
	CodeFileReadFailure       Code = "FILE_READ_FAILURE"
	CodeRecognitionFailed     Code = "RECOGNITION_FAILED"
	CodeValidation            Code = "VALIDATION"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code
	Message string
	Details any
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrUnsupportedCapability = &Error{Code: CodeUnsupportedCapability, Message: "unsupported capability"}
	ErrPermissionDenied      = &Error{Code: CodePermissionDenied, Message: "permission denied"}
	ErrNoSpeech              = &Error{Code: CodeNoSpeech, Message: "no speech detected"}
	ErrFileTypeRejected      = &Error{Code: CodeFileTypeRejected, Message: "file type rejected"}
	ErrFileReadFailure       = &Error{Code: CodeFileReadFailure, Message: "file read failure"}
	ErrRecognitionFailed     = &Error{Code: CodeRecognitionFailed, Message: "recognition failed"}
	ErrValidation            = &Error{Code: CodeValidation, Message: "validation error"}
)

// Unsupportedf creates an unsupported capability error with formatted message.
func Unsupportedf(format string, args ...any) *Error {
	return &Error{Code: CodeUnsupportedCapability, Message: fmt.Sprintf(format, args...)}
}

// PermissionDenied creates a permission denied error.
func PermissionDenied(msg string) *Error {
	return &Error{Code: CodePermissionDenied, Message: msg}
}

// NoSpeech creates a no speech error.
func NoSpeech(msg string) *Error {
	return &Error{Code: CodeNoSpeech, Message: msg}
}

// FileTypeRejectedf creates a file type rejected error with formatted message.
func FileTypeRejectedf(format string, args ...any) *Error {
	return &Error{Code: CodeFileTypeRejected, Message: fmt.Sprintf(format, args...)}
}

// FileReadFailure creates a file read failure error wrapping cause.
func FileReadFailure(msg string, cause error) *Error {
	return &Error{Code: CodeFileReadFailure, Message: msg, cause: cause}
}

// RecognitionFailed creates a recognition error wrapping cause.
func RecognitionFailed(msg string, cause error) *Error {
	return &Error{Code: CodeRecognitionFailed, Message: msg, cause: cause}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// CodeOf returns the code of the first domain error in err's chain, or "".
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// UserMessage returns a short human-readable message for the status line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch CodeOf(err) {
	case CodeUnsupportedCapability:
		return "Speech is not available on this system: " + err.Error()
	case CodePermissionDenied:
		return "Microphone access was denied."
	case CodeNoSpeech:
		return "No speech detected. Try again."
	case CodeFileTypeRejected:
		return "Only plain-text files can be loaded."
	case CodeFileReadFailure:
		return "Could not read the file: " + err.Error()
	case CodeRecognitionFailed:
		return "Recognition failed: " + err.Error()
	case CodeValidation:
		return err.Error()
	default:
		return "Error: " + err.Error()
	}
}
