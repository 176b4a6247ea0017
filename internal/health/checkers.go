package health

import (
	"context"
	"time"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/auth"
)

// StorageChecker reads the token key from the session storage.
type StorageChecker struct {
	storage auth.Storage
	backend string
}

// NewStorageChecker creates a storage checker. backend names the storage
// kind (memory, file or redis) in the result.
func NewStorageChecker(storage auth.Storage, backend string) *StorageChecker {
	return &StorageChecker{storage: storage, backend: backend}
}

func (c *StorageChecker) Name() string { return "session-storage" }

func (c *StorageChecker) Check(ctx context.Context) Result {
	_, found, err := c.storage.Get(ctx, auth.KeyToken)
	if err != nil {
		return result(StatusUnhealthy, "session storage unavailable",
			"backend", c.backend, "error", err.Error())
	}
	return result(StatusHealthy, c.backend+" storage readable",
		"backend", c.backend, "token_stored", found)
}

// UserProbe fetches the user the session token belongs to.
type UserProbe interface {
	CurrentUser(ctx context.Context) (*api.UserInfo, error)
	BaseURL() string
}

// BackendChecker asks the backend who the token belongs to. A 401 still
// proves the backend is up and only degrades.
type BackendChecker struct {
	probe UserProbe
}

func NewBackendChecker(probe UserProbe) *BackendChecker {
	return &BackendChecker{probe: probe}
}

func (c *BackendChecker) Name() string { return "backend" }

func (c *BackendChecker) Check(ctx context.Context) Result {
	url := c.probe.BaseURL()
	user, err := c.probe.CurrentUser(ctx)
	switch {
	case err == nil:
		return result(StatusHealthy, "authenticated as "+user.Username, "url", url)
	case api.IsUnauthorized(err):
		return result(StatusDegraded, "reachable, token not accepted", "url", url)
	case api.IsNetwork(err):
		return result(StatusUnhealthy, "backend unreachable", "url", url, "error", err.Error())
	default:
		return result(StatusDegraded, "backend answered with an error", "url", url, "error", err.Error())
	}
}

// SessionState is the part of the session the token checker reads.
type SessionState interface {
	IsAuthenticated() bool
	Payload() (*auth.TokenPayload, error)
	Permissions() []string
}

// TokenChecker decodes the stored token locally and checks its expiry.
type TokenChecker struct {
	session SessionState
	warn    time.Duration
	now     func() time.Time
}

// NewTokenChecker creates a token checker. A token expiring within warn
// is degraded.
func NewTokenChecker(session SessionState, warn time.Duration) *TokenChecker {
	return &TokenChecker{session: session, warn: warn, now: time.Now}
}

func (c *TokenChecker) Name() string { return "token" }

func (c *TokenChecker) Check(ctx context.Context) Result {
	if !c.session.IsAuthenticated() {
		return result(StatusDegraded, "not logged in")
	}
	p, err := c.session.Payload()
	if err != nil {
		return result(StatusUnhealthy, "token cannot be decoded", "error", err.Error())
	}

	perms := len(c.session.Permissions())
	if !p.HasExpiry() {
		return result(StatusHealthy, "token valid", "permissions", perms, "expires", "never")
	}

	now, exp := c.now(), p.Expiry()
	expires := exp.Format(time.RFC3339)
	switch left := exp.Sub(now); {
	case p.Expired(now):
		return result(StatusUnhealthy, "token expired", "permissions", perms, "expires", expires)
	case left < c.warn:
		return result(StatusDegraded, "token expires in "+left.Round(time.Second).String(),
			"permissions", perms, "expires", expires)
	default:
		return result(StatusHealthy, "token valid", "permissions", perms, "expires", expires)
	}
}
