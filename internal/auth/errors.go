package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code classifies a session failure.
type Code string

const (
	ErrTokenMalformed        Code = "AUTH_TOKEN_MALFORMED"
	ErrTokenExpired          Code = "AUTH_TOKEN_EXPIRED"
	ErrStorageFailed         Code = "AUTH_STORAGE_FAILED"
	ErrPermissionFetchFailed Code = "AUTH_PERMISSION_FETCH_FAILED"
	ErrRoleFetchFailed       Code = "AUTH_ROLE_FETCH_FAILED"
)

// Fields carries structured details for logs and error output.
type Fields map[string]any

// Error is returned by the token codec, the session and the storage
// backends.
type Error struct {
	Code    Code
	Message string
	Fields  Fields
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("session: ")
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Fields[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an Error without an underlying cause.
func NewError(code Code, message string, fields Fields) *Error {
	return &Error{Code: code, Message: message, Fields: fields}
}

// WrapError builds an Error around cause.
func WrapError(code Code, message string, cause error, fields Fields) *Error {
	return &Error{Code: code, Message: message, Fields: fields, Cause: cause}
}

// HasCode reports whether err wraps an *Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
