package portal

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a portal failure.
type ErrorCode string

const (
	// CodeAuthenticationFailure: the login request failed or was rejected.
	CodeAuthenticationFailure ErrorCode = "AUTHENTICATION_FAILURE"
	// CodeEndpointUnavailable: one endpoint answered badly; the next candidate is tried.
	CodeEndpointUnavailable ErrorCode = "ENDPOINT_UNAVAILABLE"
	// CodeNoEndpointFound: every candidate for a capability was exhausted.
	CodeNoEndpointFound ErrorCode = "NO_ENDPOINT_FOUND"
	// CodeMalformedRecord: a single item could not be mapped and was dropped.
	CodeMalformedRecord ErrorCode = "MALFORMED_RECORD"
	// CodeMissingPrerequisite: an operation needed a user id that could not be found.
	CodeMissingPrerequisite ErrorCode = "MISSING_PREREQUISITE"
)

// Error is a classified failure. None of these escape the Client's public
// operations; they exist so internals and logs can tell failures apart.
type Error struct {
	Code    ErrorCode
	Message string
	Path    string
	Status  int
	cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Path != "" {
		msg += " (" + e.Path
		if e.Status != 0 {
			msg += fmt.Sprintf(", status %d", e.Status)
		}
		msg += ")"
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) at(path string, status int) *Error {
	e.Path = path
	e.Status = status
	return e
}

// GetCode returns the code of a portal error, or "" for any other error.
func GetCode(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err is a portal error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}
