package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds reported to observers and used for exit-code mapping.
const (
	KindNetwork      = "network"
	KindUnauthorized = "unauthorized"
	KindForbidden    = "forbidden"
	KindNotFound     = "not_found"
	KindServer       = "server"
	KindHTTP         = "http"
	KindBusiness     = "business"
	KindDecode       = "decode"
)

// CodeOK is the envelope code of a successful backend result.
const CodeOK = 200

// Error is a failed backend call.
//
// Status is the HTTP status (0 when no response was received). Code is the
// envelope business code when the backend answered with one.
type Error struct {
	Method  string
	Route   string
	Status  int
	Code    int
	Message string
	Cause   error

	kind string
}

// Error implements the error interface.
func (e *Error) Error() string {
	where := e.Method + " " + e.Route
	switch {
	case e.Status == 0 && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", where, e.Message, e.Cause)
	case e.Code != 0 && e.Code != e.Status:
		return fmt.Sprintf("%s: %s (code %d)", where, e.Message, e.Code)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (status %d)", where, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// Unwrap returns the underlying transport or decode error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind classifies the error for metrics and exit codes.
func (e *Error) Kind() string {
	if e.kind != "" {
		return e.kind
	}
	switch {
	case e.Status == 0:
		return KindNetwork
	case e.Status == http.StatusUnauthorized:
		return KindUnauthorized
	case e.Status == http.StatusForbidden:
		return KindForbidden
	case e.Status == http.StatusNotFound:
		return KindNotFound
	case e.Status >= 500:
		return KindServer
	case e.Status >= 200 && e.Status < 300:
		return KindBusiness
	}
	return KindHTTP
}

// Temporary reports whether retrying the request may succeed.
func (e *Error) Temporary() bool {
	k := e.Kind()
	return k == KindNetwork || k == KindServer
}

const (
	msgUnauthorized = "unauthorized, please log in again"
	msgForbidden    = "no permission to access this resource"
	msgNotFound     = "requested resource does not exist"
	msgServer       = "server error"
	msgNetwork      = "network error, check the connection"
	msgFailed       = "request failed"
	msgDecode       = "malformed response"
)

// statusMessage is the fixed message for well-known statuses; other statuses
// use the backend's message when it sent one.
func statusMessage(status int, backend string) string {
	switch status {
	case http.StatusUnauthorized:
		return msgUnauthorized
	case http.StatusForbidden:
		return msgForbidden
	case http.StatusNotFound:
		return msgNotFound
	case http.StatusInternalServerError:
		return msgServer
	}
	if backend != "" {
		return backend
	}
	return msgFailed
}

func asError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is an HTTP 401 from the backend.
func IsUnauthorized(err error) bool {
	e, ok := asError(err)
	return ok && e.Status == http.StatusUnauthorized
}

// IsForbidden reports whether err is an HTTP 403 from the backend.
func IsForbidden(err error) bool {
	e, ok := asError(err)
	return ok && e.Status == http.StatusForbidden
}

// IsNotFound reports whether err is an HTTP 404 from the backend.
func IsNotFound(err error) bool {
	e, ok := asError(err)
	return ok && e.Status == http.StatusNotFound
}

// IsNetwork reports whether err means the backend could not be reached.
func IsNetwork(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind() == KindNetwork
}

// IsBusiness reports whether err is a non-success envelope code.
func IsBusiness(err error) bool {
	e, ok := asError(err)
	return ok && e.Kind() == KindBusiness
}
