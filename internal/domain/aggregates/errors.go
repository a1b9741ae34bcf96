package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the failure class every content write reports. The HTTP layer
// maps it to a status; metrics use it as the outcome label.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "validation"
	CodeNotFound     ErrorCode = "not_found"
	CodeInvalidState ErrorCode = "invalid_state"
	CodeConflict     ErrorCode = "conflict"
	CodePermission   ErrorCode = "permission_denied"
	CodeRetryable    ErrorCode = "retryable"
	CodeInternal     ErrorCode = "internal"
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	// Field names the offending input for CodeValidation.
	Field string
	// Current carries the state that blocked a CodeInvalidState transition.
	Current string
	Cause   error
}

// Error renders "[code] op: message", omitting empty parts.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("[" + string(e.Code) + "]")
	if op := strings.TrimSpace(e.Op); op != "" {
		b.WriteString(" " + op)
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		if e.Op != "" {
			b.WriteString(":")
		}
		b.WriteString(" " + msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap keeps err as the cause and its text as the message.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func FieldError(op, field, message string) error {
	return &Error{Code: CodeValidation, Op: op, Field: field, Message: strings.TrimSpace(message)}
}

func InvalidState(op, current, message string) error {
	if current == "" {
		current = "legacy"
	}
	return &Error{Code: CodeInvalidState, Op: op, Current: current, Message: strings.TrimSpace(message)}
}

func NotFound(op, what string, id any) error {
	return &Error{Code: CodeNotFound, Op: op, Message: fmt.Sprintf("%s not found: %v", what, id)}
}

func PermissionDenied(op, required string) error {
	return &Error{Code: CodePermission, Op: op, Message: "requires " + required + " or higher"}
}

// AsError returns the aggregate error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var aggErr *Error
	if errors.As(err, &aggErr) && aggErr != nil {
		return aggErr, true
	}
	return nil, false
}

// CodeOf is "" for errors that never passed through an aggregate.
func CodeOf(err error) ErrorCode {
	if ae, ok := AsError(err); ok {
		return ae.Code
	}
	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
