package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/gsms/gsms/internal/authz"
	"github.com/gsms/gsms/internal/log"
)

// Fetcher loads authorization data for a user from the backend.
type Fetcher interface {
	FetchUserPermissions(ctx context.Context, userID int64) ([]string, error)
	FetchUserRoles(ctx context.Context, userID int64) ([]int64, error)
}

// FetchObserver is notified of every permission or role fetch outcome.
// kind is "permissions" or "roles"; outcome is "success", "failure",
// "stale" or "skipped".
type FetchObserver interface {
	ObserveFetch(kind, outcome string)
}

// Fetch outcomes reported to a FetchObserver.
const (
	FetchSuccess = "success"
	FetchFailure = "failure"
	FetchStale   = "stale"
	FetchSkipped = "skipped"
)

// User is the identity of the logged-in user.
type User struct {
	ID       int64  `json:"userId" yaml:"userId"`
	Username string `json:"username" yaml:"username"`
}

// Session holds the authentication and authorization state of one client.
//
// A Session is safe for concurrent use. Every SetAuth, RestoreAuth and
// ClearAuth bumps a generation counter; fetch results captured under an
// older generation are discarded so permissions never outlive the token
// they were fetched for.
type Session struct {
	storage  Storage
	fetcher  Fetcher
	observer FetchObserver
	logger   *log.Logger
	now      func() time.Time
	lenient  bool

	mu          sync.RWMutex
	token       string
	userID      int64
	username    string
	permissions authz.PermissionSet
	roles       []int64
	generation  uint64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithFetcher sets the backend used by FetchUserPermissions and
// FetchUserRoles.
func WithFetcher(f Fetcher) SessionOption {
	return func(s *Session) { s.fetcher = f }
}

// WithFetchObserver sets an observer for fetch outcomes.
func WithFetchObserver(o FetchObserver) SessionOption {
	return func(s *Session) { s.observer = o }
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithLenientTokens makes SetAuth accept tokens it cannot decode. Such a
// session is authenticated with an unknown user id (0).
func WithLenientTokens() SessionOption {
	return func(s *Session) { s.lenient = true }
}

// NewSession creates an unauthenticated session persisting to storage.
func NewSession(storage Storage, opts ...SessionOption) *Session {
	s := &Session{
		storage:     storage,
		now:         time.Now,
		permissions: authz.NewPermissionSet(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.DefaultLogger()
	}
	s.logger = s.logger.With("component", "session")
	return s
}

// SetAuth installs token as the current credential after a login.
//
// The username is taken from the argument, else from the token's username
// claim, else the previous username is kept. Unless the session is lenient,
// a token that cannot be decoded or carries no positive userId is rejected
// with ErrTokenMalformed and the session is left untouched. Permissions and
// roles fetched for an earlier token are dropped.
func (s *Session) SetAuth(ctx context.Context, token, username string) error {
	payload, err := DecodeToken(token)
	if err == nil && !payload.Valid() {
		err = NewError(ErrTokenMalformed, "token does not carry a userId", nil)
	}
	if err != nil {
		if !s.lenient {
			return err
		}
		s.logger.WarnContext(ctx, "accepting undecodable token", "error", err.Error())
		payload = &TokenPayload{}
	}
	if payload.Expired(s.now()) {
		s.logger.WarnContext(ctx, "token is already expired", "expires_at", payload.Expiry())
	}

	s.mu.Lock()
	if username == "" {
		username = payload.Username
	}
	if username == "" {
		username = s.username
	}
	s.token = token
	s.userID = payload.UserID
	s.username = username
	s.permissions = authz.NewPermissionSet()
	s.roles = nil
	s.generation++
	userID := s.userID
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "session authenticated",
		"user_id", userID,
		"username", username,
		"token", Fingerprint(token),
	)

	return s.persist(ctx, token, userID, username)
}

func (s *Session) persist(ctx context.Context, token string, userID int64, username string) error {
	if err := s.storage.Set(ctx, KeyToken, token); err != nil {
		return WrapError(ErrStorageFailed, "failed to persist token", err, nil)
	}

	// All three keys are written together; an unknown user id is stored as "0".
	if err := s.storage.Set(ctx, KeyUserID, strconv.FormatInt(userID, 10)); err != nil {
		return WrapError(ErrStorageFailed, "failed to persist user id", err, nil)
	}
	if err := s.storage.Set(ctx, KeyUsername, username); err != nil {
		return WrapError(ErrStorageFailed, "failed to persist username", err, nil)
	}
	return nil
}

// RestoreAuth loads a previously persisted session from storage.
//
// A missing or unparsable userId restores as 0 unless the token itself
// carries one. A token whose "exp" lies before now is discarded through
// ClearAuth and reported as ErrTokenExpired in the log; the restore itself
// still succeeds. Tokens without "exp" are kept.
func (s *Session) RestoreAuth(ctx context.Context) error {
	token, ok, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		return WrapError(ErrStorageFailed, "failed to read token", err, nil)
	}
	if !ok || token == "" {
		return nil
	}

	var userID int64
	if raw, ok, err := s.storage.Get(ctx, KeyUserID); err != nil {
		return WrapError(ErrStorageFailed, "failed to read user id", err, nil)
	} else if ok {
		if id, perr := strconv.ParseInt(raw, 10, 64); perr == nil && id > 0 {
			userID = id
		}
	}

	username, _, err := s.storage.Get(ctx, KeyUsername)
	if err != nil {
		return WrapError(ErrStorageFailed, "failed to read username", err, nil)
	}

	payload, derr := DecodeToken(token)
	switch {
	case derr != nil && !s.lenient:
		s.logger.WarnContext(ctx, "discarding unreadable stored token", "error", derr.Error())
		return s.ClearAuth(ctx)
	case derr == nil && payload.Expired(s.now()):
		s.logger.WarnContext(ctx, "stored token has expired",
			"code", ErrTokenExpired,
			"expires_at", payload.Expiry(),
			"token", Fingerprint(token),
		)
		return s.ClearAuth(ctx)
	case derr == nil:
		if userID == 0 {
			userID = payload.UserID
		}
		if username == "" {
			username = payload.Username
		}
	}

	s.mu.Lock()
	s.token = token
	s.userID = userID
	s.username = username
	s.permissions = authz.NewPermissionSet()
	s.roles = nil
	s.generation++
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "session restored",
		"user_id", userID,
		"username", username,
		"token", Fingerprint(token),
	)
	return nil
}

// ClearAuth logs the session out. In-memory state is always reset; storage
// errors are returned after every key has been attempted. Calling ClearAuth
// on an empty session is a no-op apart from the storage deletes.
func (s *Session) ClearAuth(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.userID = 0
	s.username = ""
	s.permissions = authz.NewPermissionSet()
	s.roles = nil
	s.generation++
	s.mu.Unlock()

	var errs []error
	for _, key := range []string{KeyToken, KeyUserID, KeyUsername} {
		if err := s.storage.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return WrapError(ErrStorageFailed, "failed to clear stored session", err, nil)
	}
	return nil
}

// FetchUserPermissions replaces the permission set with the backend's view.
//
// Without a known user id this is a no-op. On failure the set is emptied so
// a stale set never grants access, and the error is returned.
func (s *Session) FetchUserPermissions(ctx context.Context) error {
	userID, gen, ok := s.fetchTarget(ctx, "permissions")
	if !ok {
		return nil
	}

	codes, err := s.fetcher.FetchUserPermissions(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.DebugContext(ctx, "discarding stale permissions", "user_id", userID)
		s.observe("permissions", FetchStale)
		return nil
	}
	if err != nil {
		s.permissions = authz.NewPermissionSet()
		s.logger.ErrorContext(ctx, "failed to fetch permissions", "user_id", userID, "error", err.Error())
		s.observe("permissions", FetchFailure)
		return WrapError(ErrPermissionFetchFailed, "failed to fetch permissions", err, Fields{
			"user_id": userID,
		})
	}
	s.permissions = authz.NewPermissionSet(codes...)
	s.observe("permissions", FetchSuccess)
	return nil
}

// FetchUserRoles replaces the role list with the backend's view, with the
// same no-op and failure rules as FetchUserPermissions.
func (s *Session) FetchUserRoles(ctx context.Context) error {
	userID, gen, ok := s.fetchTarget(ctx, "roles")
	if !ok {
		return nil
	}

	roles, err := s.fetcher.FetchUserRoles(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.DebugContext(ctx, "discarding stale roles", "user_id", userID)
		s.observe("roles", FetchStale)
		return nil
	}
	if err != nil {
		s.roles = nil
		s.logger.ErrorContext(ctx, "failed to fetch roles", "user_id", userID, "error", err.Error())
		s.observe("roles", FetchFailure)
		return WrapError(ErrRoleFetchFailed, "failed to fetch roles", err, Fields{
			"user_id": userID,
		})
	}
	s.roles = append([]int64(nil), roles...)
	s.observe("roles", FetchSuccess)
	return nil
}

func (s *Session) fetchTarget(ctx context.Context, kind string) (int64, uint64, bool) {
	s.mu.RLock()
	userID, gen := s.userID, s.generation
	s.mu.RUnlock()

	if userID == 0 {
		s.logger.WarnContext(ctx, "no user id, skipping fetch", "kind", kind)
		s.observe(kind, FetchSkipped)
		return 0, 0, false
	}
	if s.fetcher == nil {
		s.logger.WarnContext(ctx, "no fetcher configured, skipping fetch", "kind", kind)
		s.observe(kind, FetchSkipped)
		return 0, 0, false
	}
	return userID, gen, true
}

func (s *Session) observe(kind, outcome string) {
	if s.observer != nil {
		s.observer.ObserveFetch(kind, outcome)
	}
}

// RefreshAuth fetches permissions and roles concurrently and waits for
// both. Each fetch fails closed independently; the returned error joins
// both failures.
func (s *Session) RefreshAuth(ctx context.Context) error {
	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(s.FetchUserPermissions)
	p.Go(s.FetchUserRoles)
	return p.Wait()
}

// Token returns the current bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the current user id, or 0 when unknown.
func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Username returns the current username.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// IsAuthenticated reports whether a token is held.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// CurrentUser returns the current identity and whether one is known.
func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.userID == 0 {
		return User{}, false
	}
	return User{ID: s.userID, Username: s.username}, true
}

// Permissions returns the held permission codes in sorted order.
func (s *Session) Permissions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions.Codes()
}

// PermissionSet returns a copy of the held permission set.
func (s *Session) PermissionSet() authz.PermissionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions.Clone()
}

// Roles returns the role ids in backend order.
func (s *Session) Roles() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.roles...)
}

// Generation returns the current auth generation.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Payload decodes the current token.
func (s *Session) Payload() (*TokenPayload, error) {
	token := s.Token()
	if token == "" {
		return nil, NewError(ErrTokenMalformed, "no token", nil)
	}
	return DecodeToken(token)
}

// HasPermission implements authz.Oracle.
func (s *Session) HasPermission(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions.HasPermission(code)
}

// HasAnyPermission implements authz.Oracle.
func (s *Session) HasAnyPermission(codes ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions.HasAnyPermission(codes...)
}

// HasAllPermissions implements authz.Oracle.
func (s *Session) HasAllPermissions(codes ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions.HasAllPermissions(codes...)
}

var _ authz.Oracle = (*Session)(nil)
