package ux

import (
	"strings"
)

// ErrorWithSuggestion pairs an error with a next step for the user.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\nSuggestion: " + e.Suggestion
}

func (e *ErrorWithSuggestion) Unwrap() error { return e.Err }

// NewErrorWithSuggestion attaches suggestion to err. A nil err stays nil.
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{Err: err, Suggestion: suggestion}
}

// hint matches when the lowercased message contains every fragment of any
// one of its alternatives.
type hint struct {
	any        [][]string
	suggestion string
}

func (h hint) matches(msg string) bool {
	for _, all := range h.any {
		ok := true
		for _, frag := range all {
			if !strings.Contains(msg, frag) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// Order matters: the first matching hint wins.
var hints = []hint{
	{
		any:        [][]string{{"connection refused"}, {"no such host"}, {"network error"}},
		suggestion: "Check that the GSMS backend is running and that api.base_url (or GSMS_API_URL) points at it",
	},
	{
		any:        [][]string{{"unauthorized"}, {"please log in again"}},
		suggestion: "Your session is no longer valid. Run 'gsms auth login'",
	},
	{
		any:        [][]string{{"no permission"}},
		suggestion: "Run 'gsms perms list' to see what your roles grant, or ask an administrator",
	},
	{
		any:        [][]string{{"redis", "dial"}},
		suggestion: "Start Redis or switch session.backend to file with GSMS_SESSION_BACKEND=file",
	},
	{
		any:        [][]string{{"permission denied"}},
		suggestion: "Check permissions on ~/.gsms and the session file",
	},
	{
		any:        [][]string{{"config", "parse"}},
		suggestion: "Fix the YAML syntax or regenerate defaults with 'gsms config init --force'",
	},
}

// EnhanceError adds a suggestion to errors with a well-known cause and
// returns anything else unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, h := range hints {
		if h.matches(msg) {
			return NewErrorWithSuggestion(err, h.suggestion)
		}
	}
	return err
}
