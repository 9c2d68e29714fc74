package linkmeta

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EINTERNAL = "internal"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Fetch failure kinds.
var (
	// ErrInvalidResponse means the server answered with something that
	// could not be read as an HTTP response body.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrEmptyPayload means the server answered 2xx with a zero-length body.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrRenderingUnavailable means no rendering engine is available on this
	// host. It only triggers fallback to static fetching and never reaches
	// the caller.
	ErrRenderingUnavailable = errors.New("rendering unavailable")

	// ErrRenderingFailed means the renderer ran but produced no usable markup.
	ErrRenderingFailed = errors.New("rendering produced no usable markup")
)

// StatusError reports a non-2xx HTTP status.
type StatusError struct {
	Code int
	URL  string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// StatusCode returns the HTTP status carried by err, or 0 if err does not
// wrap a *StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
