package exitcode

import (
	"errors"
	"strings"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/auth"
	gerrors "github.com/gsms/gsms/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an unreadable or invalid configuration
	ConfigError = 3

	// BackendError indicates the backend rejected or failed a request
	BackendError = 4

	// AuthError indicates a missing, expired or rejected session
	AuthError = 5

	// NetworkError indicates the backend could not be reached
	NetworkError = 6

	// Forbidden indicates the session lacks a required permission
	Forbidden = 7

	// Interrupted indicates the command was cancelled by a signal
	Interrupted = 130
)

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Structured errors are classified by code; anything else falls back to
// message matching.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if code := gerrors.CodeOf(err); code != "" {
		if exit, ok := byErrorCode(code); ok {
			return exit
		}
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind() {
		case api.KindUnauthorized:
			return AuthError
		case api.KindForbidden:
			return Forbidden
		case api.KindNetwork:
			return NetworkError
		default:
			return BackendError
		}
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		return AuthError
	}

	msg := strings.ToLower(err.Error())
	for _, m := range messageCodes {
		for _, frag := range m.fragments {
			if strings.Contains(msg, frag) {
				return m.code
			}
		}
	}
	return GeneralError
}

// messageCodes classify unstructured errors, mostly cobra's usage errors
// and raw dial failures.
var messageCodes = []struct {
	code      int
	fragments []string
}{
	{UsageError, []string{"invalid flag", "unknown command", "unknown flag", "required flag", "arg(s)"}},
	{NetworkError, []string{"connection refused", "no such host"}},
}

func byErrorCode(code gerrors.ErrorCode) (int, bool) {
	switch code {
	case gerrors.ErrCodeNotLoggedIn, gerrors.ErrCodeLoginFailed, gerrors.ErrCodeTokenMalformed,
		gerrors.ErrCodeTokenExpired, gerrors.ErrCodeSessionStorage,
		gerrors.ErrCodeAPIUnauthorized, gerrors.ErrCodeNavLoginRequired:
		return AuthError, true
	case gerrors.ErrCodePermissionDenied, gerrors.ErrCodeAPIForbidden, gerrors.ErrCodeNavForbidden:
		return Forbidden, true
	case gerrors.ErrCodeAPINetwork:
		return NetworkError, true
	case gerrors.ErrCodeAPIRequest, gerrors.ErrCodeAPIBusiness, gerrors.ErrCodeAPINotFound, gerrors.ErrCodeAPIServer:
		return BackendError, true
	case gerrors.ErrCodeNavUnknownRoute:
		return UsageError, true
	case gerrors.ErrCodeConfigInvalid, gerrors.ErrCodeConfigUnmarshal, gerrors.ErrCodeConfigWrite:
		return ConfigError, true
	}
	return 0, false
}

var descriptions = map[int]string{
	Success:      "Success",
	GeneralError: "General error",
	UsageError:   "Usage error (invalid flags or arguments)",
	ConfigError:  "Configuration error",
	BackendError: "Backend error",
	AuthError:    "Authentication error",
	NetworkError: "Network error",
	Forbidden:    "Permission denied",
	Interrupted:  "Interrupted",
}

// GetExitCodeDescription describes code for help output and logs.
func GetExitCodeDescription(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown error"
}
