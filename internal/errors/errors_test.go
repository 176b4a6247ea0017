package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorRendering(t *testing.T) {
	tests := []struct {
		name string
		err  *GSMSError
		want string
	}{
		{
			name: "message only",
			err:  New(ErrCodeNavForbidden, "access denied"),
			want: "[NAV-002] access denied",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeSessionStorage, "write failed", fmt.Errorf("permission denied")),
			want: "[AUTH-006] write failed: permission denied",
		},
		{
			name: "suggestions and docs",
			err: New(ErrCodeAPIBusiness, "project code already exists").
				WithSuggestion("Pick another code").
				WithSuggestions("Run 'gsms project list'").
				WithDocs("https://example.com/gsms#projects"),
			want: "[API-002] project code already exists\n\n" +
				"Suggestions:\n  • Pick another code\n  • Run 'gsms project list'\n\n" +
				"Documentation: https://example.com/gsms#projects",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(ErrCodeAPINetwork, "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, New(ErrCodeAPINetwork, "x").Unwrap())

	var target *GSMSError
	require.ErrorAs(t, fmt.Errorf("listing tasks: %w", err), &target)
	assert.Same(t, err, target)
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("opening users: %w", NewNavForbiddenError("/users", []string{"USER_VIEW"}))

	assert.Equal(t, ErrCodeNavForbidden, CodeOf(wrapped))
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *GSMSError
		code     ErrorCode
		contains string
	}{
		{"not logged in", NewNotLoggedInError(), ErrCodeNotLoggedIn, "gsms auth login"},
		{"login failed", NewLoginFailedError("alice", errors.New("bad password")), ErrCodeLoginFailed, "alice"},
		{"token malformed", NewTokenMalformedError(errors.New("3 segments")), ErrCodeTokenMalformed, "malformed"},
		{"login required", NewNavLoginRequiredError("/tasks"), ErrCodeNavLoginRequired, "/tasks"},
		{"forbidden", NewNavForbiddenError("/roles", []string{"ROLE_VIEW"}), ErrCodeNavForbidden, "ROLE_VIEW"},
		{"config", NewConfigUnmarshalError("/tmp/c.yaml", errors.New("yaml")), ErrCodeConfigUnmarshal, "/tmp/c.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Contains(t, tt.err.Error(), tt.contains)
			assert.NotEmpty(t, tt.err.Suggestions)
		})
	}
}
