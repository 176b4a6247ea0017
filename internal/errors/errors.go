package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeNotLoggedIn      ErrorCode = "AUTH-001"
	ErrCodeLoginFailed      ErrorCode = "AUTH-002"
	ErrCodeTokenMalformed   ErrorCode = "AUTH-003"
	ErrCodeTokenExpired     ErrorCode = "AUTH-004"
	ErrCodePermissionDenied ErrorCode = "AUTH-005"
	ErrCodeSessionStorage   ErrorCode = "AUTH-006"

	// Backend API errors (API-001 to API-099)
	ErrCodeAPIRequest      ErrorCode = "API-001"
	ErrCodeAPIBusiness     ErrorCode = "API-002"
	ErrCodeAPIUnauthorized ErrorCode = "API-003"
	ErrCodeAPIForbidden    ErrorCode = "API-004"
	ErrCodeAPINotFound     ErrorCode = "API-005"
	ErrCodeAPIServer       ErrorCode = "API-006"
	ErrCodeAPINetwork      ErrorCode = "API-007"

	// Navigation errors (NAV-001 to NAV-099)
	ErrCodeNavLoginRequired ErrorCode = "NAV-001"
	ErrCodeNavForbidden     ErrorCode = "NAV-002"
	ErrCodeNavUnknownRoute  ErrorCode = "NAV-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-001"
	ErrCodeConfigUnmarshal ErrorCode = "CONFIG-002"
	ErrCodeConfigWrite     ErrorCode = "CONFIG-003"
)

// GSMSError represents an enhanced error with code, suggestions, and documentation
type GSMSError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error renders "[CODE] message: cause" followed by the suggestions and
// the documentation link, each in its own paragraph.
func (e *GSMSError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}
	if e.DocsURL != "" {
		b.WriteString("\n\nDocumentation: " + e.DocsURL)
	}
	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *GSMSError) Unwrap() error {
	return e.Cause
}

// New creates a new GSMSError
func New(code ErrorCode, message string) *GSMSError {
	return &GSMSError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new GSMSError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *GSMSError {
	return &GSMSError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *GSMSError) WithSuggestion(suggestion string) *GSMSError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *GSMSError) WithSuggestions(suggestions ...string) *GSMSError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *GSMSError) WithDocs(url string) *GSMSError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of a GSMSError anywhere in the chain, or "".
func CodeOf(err error) ErrorCode {
	for err != nil {
		if gErr, ok := err.(*GSMSError); ok {
			return gErr.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// Common error constructors for frequently used errors

// NewNotLoggedInError creates an error for commands that need a session
func NewNotLoggedInError() *GSMSError {
	return New(ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run 'gsms auth login' to authenticate").
		WithSuggestion("Check that the session storage backend is reachable")
}

// NewLoginFailedError creates a login failure error
func NewLoginFailedError(username string, cause error) *GSMSError {
	return Wrap(ErrCodeLoginFailed, fmt.Sprintf("login failed for user: %s", username), cause).
		WithSuggestion("Check your username and password").
		WithSuggestion("Verify GSMS_API_URL points at the GSMS backend")
}

// NewTokenMalformedError creates an error for tokens the codec cannot read
func NewTokenMalformedError(cause error) *GSMSError {
	return Wrap(ErrCodeTokenMalformed, "authentication token is malformed", cause).
		WithSuggestion("Log in again with 'gsms auth login'")
}

// NewNavLoginRequiredError creates an error for a screen that requires a session
func NewNavLoginRequiredError(path string) *GSMSError {
	return New(ErrCodeNavLoginRequired, fmt.Sprintf("login required to open %s", path)).
		WithSuggestion(fmt.Sprintf("Run 'gsms auth login' and retry; you will be returned to %s", path))
}

// NewNavForbiddenError creates an access denied error for a screen
func NewNavForbiddenError(path string, required []string) *GSMSError {
	return New(ErrCodeNavForbidden, fmt.Sprintf("access denied to %s", path)).
		WithSuggestion(fmt.Sprintf("One of these permissions is required: %s", strings.Join(required, ", "))).
		WithSuggestion("Run 'gsms auth refresh' if your roles changed recently").
		WithSuggestion("Ask an administrator to grant the permission to one of your roles")
}

// NewConfigUnmarshalError creates a configuration parse error
func NewConfigUnmarshalError(path string, cause error) *GSMSError {
	return Wrap(ErrCodeConfigUnmarshal, fmt.Sprintf("failed to parse config file: %s", path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion("Run 'gsms config init --force' to regenerate the defaults")
}
