package ux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWithSuggestion(t *testing.T) {
	assert.Nil(t, NewErrorWithSuggestion(nil, "ignored"))

	base := errors.New("GET /projects: network error")
	err := NewErrorWithSuggestion(base, "start the backend")
	assert.Equal(t, "GET /projects: network error\n\nSuggestion: start the backend", err.Error())
	assert.ErrorIs(t, err, base)

	assert.Equal(t, base.Error(), NewErrorWithSuggestion(base, "").Error())
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name string
		err  string
		want string
	}{
		{"backend down", "dial tcp 127.0.0.1:8080: connection refused", "GSMS_API_URL"},
		{"unknown host", "dial tcp: lookup gsms.internal: no such host", "api.base_url"},
		{"session expired", "GET /users/info: unauthorized", "gsms auth login"},
		{"backend 401 message", "未授权，请重新登录 (please log in again)", "gsms auth login"},
		{"backend 403 message", "no permission to access this resource", "gsms perms list"},
		{"redis down", "redis: dial tcp 10.0.0.5:6379: i/o timeout", "GSMS_SESSION_BACKEND=file"},
		{"unreadable session file", "open /home/u/.gsms/session.json: permission denied", "~/.gsms"},
		{"bad yaml", "config: yaml parse error on line 3", "gsms config init --force"},
		{"case insensitive", "Dial tcp: Connection Refused", "GSMS_API_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhanced := EnhanceError(errors.New(tt.err))

			var ws *ErrorWithSuggestion
			require.ErrorAs(t, enhanced, &ws)
			assert.Contains(t, ws.Suggestion, tt.want)
		})
	}
}

func TestEnhanceErrorLeavesUnknownErrors(t *testing.T) {
	assert.Nil(t, EnhanceError(nil))

	err := errors.New("project code already exists")
	assert.Same(t, err, EnhanceError(err))
}

func TestEnhanceErrorFirstHintWins(t *testing.T) {
	// A refused redis dial is a network problem before it is a redis one.
	err := EnhanceError(errors.New("redis: dial tcp 10.0.0.5:6379: connection refused"))

	var ws *ErrorWithSuggestion
	require.ErrorAs(t, err, &ws)
	assert.Contains(t, ws.Suggestion, "GSMS_API_URL")
}
