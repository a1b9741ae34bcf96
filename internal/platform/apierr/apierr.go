// Package apierr holds transport-level request failures: bad path ids,
// unparseable bodies and query strings, missing credentials. Domain failures
// travel as aggregate errors instead.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Code    string
	Message string
	// Param names the path or query parameter that failed to parse.
	Param string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return http.StatusText(e.Status)
}

func (e *Error) Unwrap() error { return e.Cause }

// InvalidParam reports a path or query parameter with code invalid_<name>.
func InvalidParam(name, format string, args ...any) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    "invalid_" + name,
		Message: fmt.Sprintf(format, args...),
		Param:   name,
	}
}

// InvalidBody wraps a JSON decode or binding failure.
func InvalidBody(cause error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "invalid_json", Message: "request body is not valid JSON", Cause: cause}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: msg}
}

// From extracts an *Error anywhere in err's chain.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		if ae.Status == 0 {
			ae.Status = http.StatusBadRequest
		}
		return ae, true
	}
	return nil, false
}
