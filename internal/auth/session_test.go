package auth

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsms/gsms/internal/log"
)

type fakeFetcher struct {
	mu          sync.Mutex
	permissions []string
	roles       []int64
	permErr     error
	roleErr     error
	calls       []int64

	// block, when set, holds FetchUserPermissions until closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeFetcher) FetchUserPermissions(ctx context.Context, userID int64) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if block != nil {
		close(entered)
		<-block
	}
	return f.permissions, f.permErr
}

func (f *fakeFetcher) FetchUserRoles(ctx context.Context, userID int64) ([]int64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, userID)
	f.mu.Unlock()
	return f.roles, f.roleErr
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) ObserveFetch(kind, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+outcome)
}

var testNow = time.Unix(1_700_000_000, 0)

func newTestSession(store Storage, opts ...SessionOption) *Session {
	opts = append([]SessionOption{
		WithLogger(log.Discard()),
		WithClock(func() time.Time { return testNow }),
	}, opts...)
	return NewSession(store, opts...)
}

func TestSession_SetAuthAndRestore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	token := signToken(t, jwt.MapClaims{"userId": int64(42), "exp": testNow.Unix() + 3600})

	s := newTestSession(store)
	require.NoError(t, s.SetAuth(ctx, token, "alice"))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int64(42), s.UserID())
	assert.Equal(t, "alice", s.Username())

	value, _, _ := store.Get(ctx, KeyUserID)
	assert.Equal(t, "42", value)

	restored := newTestSession(store)
	require.NoError(t, restored.RestoreAuth(ctx))
	assert.Equal(t, token, restored.Token())
	assert.Equal(t, int64(42), restored.UserID())
	assert.Equal(t, "alice", restored.Username())

	user, ok := restored.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, User{ID: 42, Username: "alice"}, user)
}

func TestSession_SetAuthUsernamePrecedence(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(NewMemoryStorage())

	withClaim := signToken(t, jwt.MapClaims{"userId": int64(1), "username": "claimed"})
	noClaim := signToken(t, jwt.MapClaims{"userId": int64(1)})

	require.NoError(t, s.SetAuth(ctx, withClaim, "explicit"))
	assert.Equal(t, "explicit", s.Username())

	require.NoError(t, s.SetAuth(ctx, withClaim, ""))
	assert.Equal(t, "claimed", s.Username())

	require.NoError(t, s.SetAuth(ctx, noClaim, ""))
	assert.Equal(t, "claimed", s.Username())
}

func TestSession_SetAuthRejectsMalformed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	s := newTestSession(store)

	good := signToken(t, jwt.MapClaims{"userId": int64(5)})
	require.NoError(t, s.SetAuth(ctx, good, "u"))
	gen := s.Generation()

	for _, bad := range []string{"garbage", rawToken(`{"alg":"HS256"}`, `{"username":"x"}`)} {
		err := s.SetAuth(ctx, bad, "other")
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrTokenMalformed))
	}

	assert.Equal(t, good, s.Token())
	assert.Equal(t, int64(5), s.UserID())
	assert.Equal(t, gen, s.Generation())
	value, _, _ := store.Get(ctx, KeyToken)
	assert.Equal(t, good, value)
}

func TestSession_SetAuthLenient(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	s := newTestSession(store, WithLenientTokens())

	require.NoError(t, s.SetAuth(ctx, "opaque-token", "bob"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, int64(0), s.UserID())
	assert.Equal(t, "bob", s.Username())

	value, ok, _ := store.Get(ctx, KeyUserID)
	assert.True(t, ok)
	assert.Equal(t, "0", value)
	value, _, _ = store.Get(ctx, KeyUsername)
	assert.Equal(t, "bob", value)
	_, known := s.CurrentUser()
	assert.False(t, known)

	restored := newTestSession(store, WithLenientTokens())
	require.NoError(t, restored.RestoreAuth(ctx))
	assert.Equal(t, int64(0), restored.UserID())
	assert.Equal(t, "bob", restored.Username())
}

func TestSession_RestoreExpiry(t *testing.T) {
	tests := []struct {
		name       string
		claims     jwt.MapClaims
		wantAuthed bool
	}{
		{"expired one second ago", jwt.MapClaims{"userId": int64(1), "exp": testNow.Unix() - 1}, false},
		{"expires in an hour", jwt.MapClaims{"userId": int64(1), "exp": testNow.Unix() + 3600}, true},
		{"no exp", jwt.MapClaims{"userId": int64(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStorage()
			require.NoError(t, store.Set(ctx, KeyToken, signToken(t, tt.claims)))
			require.NoError(t, store.Set(ctx, KeyUserID, "1"))

			var logs bytes.Buffer
			s := newTestSession(store, WithLogger(log.New(log.Config{
				Level:  log.LevelDebug,
				Format: log.FormatJSON,
				Output: &logs,
			})))
			require.NoError(t, s.RestoreAuth(ctx))
			assert.Equal(t, tt.wantAuthed, s.IsAuthenticated())

			_, ok, err := store.Get(ctx, KeyToken)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAuthed, ok)

			if tt.wantAuthed {
				assert.NotContains(t, logs.String(), string(ErrTokenExpired))
			} else {
				assert.Contains(t, logs.String(), `"code":"AUTH_TOKEN_EXPIRED"`)
			}
		})
	}
}

func TestSession_RestoreUserIDFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("missing userId uses claim", func(t *testing.T) {
		store := NewMemoryStorage()
		require.NoError(t, store.Set(ctx, KeyToken, signToken(t, jwt.MapClaims{"userId": int64(8), "username": "c"})))

		s := newTestSession(store)
		require.NoError(t, s.RestoreAuth(ctx))
		assert.Equal(t, int64(8), s.UserID())
		assert.Equal(t, "c", s.Username())
	})

	t.Run("unparsable userId in lenient mode", func(t *testing.T) {
		store := NewMemoryStorage()
		require.NoError(t, store.Set(ctx, KeyToken, "opaque"))
		require.NoError(t, store.Set(ctx, KeyUserID, "not-a-number"))

		s := newTestSession(store, WithLenientTokens())
		require.NoError(t, s.RestoreAuth(ctx))
		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, int64(0), s.UserID())
	})

	t.Run("unreadable token in strict mode", func(t *testing.T) {
		store := NewMemoryStorage()
		require.NoError(t, store.Set(ctx, KeyToken, "opaque"))

		s := newTestSession(store)
		require.NoError(t, s.RestoreAuth(ctx))
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, 0, store.Len())
	})

	t.Run("nothing stored", func(t *testing.T) {
		s := newTestSession(NewMemoryStorage())
		require.NoError(t, s.RestoreAuth(ctx))
		assert.False(t, s.IsAuthenticated())
		assert.Equal(t, uint64(0), s.Generation())
	})
}

func TestSession_ClearAuth(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	fetcher := &fakeFetcher{permissions: []string{"USER_VIEW"}, roles: []int64{1}}
	s := newTestSession(store, WithFetcher(fetcher))

	require.NoError(t, s.SetAuth(ctx, signToken(t, jwt.MapClaims{"userId": int64(3)}), "u"))
	require.NoError(t, s.RefreshAuth(ctx))
	require.True(t, s.HasPermission("USER_VIEW"))

	require.NoError(t, s.ClearAuth(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, int64(0), s.UserID())
	assert.Empty(t, s.Username())
	assert.False(t, s.HasPermission("USER_VIEW"))
	assert.Empty(t, s.Roles())
	assert.Equal(t, 0, store.Len())

	require.NoError(t, s.ClearAuth(ctx))
	assert.False(t, s.IsAuthenticated())
}

type failingStorage struct{ Storage }

func (failingStorage) Delete(ctx context.Context, key string) error {
	return errors.New("disk gone")
}

func TestSession_ClearAuthStorageFailureStillClearsMemory(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(failingStorage{NewMemoryStorage()}, WithLenientTokens())
	s.token = "tok"
	s.userID = 9

	err := s.ClearAuth(ctx)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrStorageFailed))
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, int64(0), s.UserID())
}

func TestSession_FetchWithoutUserIsNoop(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{permissions: []string{"USER_VIEW"}}
	observer := &recordingObserver{}
	s := newTestSession(NewMemoryStorage(), WithFetcher(fetcher), WithFetchObserver(observer))

	require.NoError(t, s.FetchUserPermissions(ctx))
	require.NoError(t, s.FetchUserRoles(ctx))
	assert.Empty(t, fetcher.calls)
	assert.Equal(t, []string{"permissions:skipped", "roles:skipped"}, observer.events)
}

func TestSession_FetchFailureClearsSet(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{permissions: []string{"USER_VIEW", "ROLE_VIEW"}, roles: []int64{1, 2}}
	s := newTestSession(NewMemoryStorage(), WithFetcher(fetcher))
	require.NoError(t, s.SetAuth(ctx, signToken(t, jwt.MapClaims{"userId": int64(4)}), ""))

	require.NoError(t, s.RefreshAuth(ctx))
	assert.Equal(t, []string{"ROLE_VIEW", "USER_VIEW"}, s.Permissions())
	assert.Equal(t, []int64{1, 2}, s.Roles())

	fetcher.permErr = errors.New("boom")
	fetcher.roleErr = errors.New("bang")
	err := s.RefreshAuth(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.permErr)
	assert.ErrorIs(t, err, fetcher.roleErr)
	assert.Empty(t, s.Permissions())
	assert.Empty(t, s.Roles())
	assert.False(t, s.HasAnyPermission("USER_VIEW", "ROLE_VIEW"))
}

func TestSession_StaleFetchDiscarded(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{
		permissions: []string{"USER_VIEW"},
		block:       make(chan struct{}),
		entered:     make(chan struct{}),
	}
	observer := &recordingObserver{}
	s := newTestSession(NewMemoryStorage(), WithFetcher(fetcher), WithFetchObserver(observer))
	require.NoError(t, s.SetAuth(ctx, signToken(t, jwt.MapClaims{"userId": int64(6)}), ""))

	done := make(chan error, 1)
	go func() { done <- s.FetchUserPermissions(ctx) }()

	<-fetcher.entered
	require.NoError(t, s.ClearAuth(ctx))
	close(fetcher.block)

	require.NoError(t, <-done)
	assert.False(t, s.HasPermission("USER_VIEW"))
	assert.Equal(t, []string{"permissions:stale"}, observer.events)
}

func TestSession_SetAuthDropsPreviousPermissions(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{permissions: []string{"ROLE_VIEW"}}
	s := newTestSession(NewMemoryStorage(), WithFetcher(fetcher))

	require.NoError(t, s.SetAuth(ctx, signToken(t, jwt.MapClaims{"userId": int64(1)}), ""))
	require.NoError(t, s.FetchUserPermissions(ctx))
	require.True(t, s.HasPermission("ROLE_VIEW"))

	before := s.Generation()
	require.NoError(t, s.SetAuth(ctx, signToken(t, jwt.MapClaims{"userId": int64(2)}), ""))
	assert.Greater(t, s.Generation(), before)
	assert.False(t, s.HasPermission("ROLE_VIEW"))
}

func TestSession_OracleEmptyLists(t *testing.T) {
	s := newTestSession(NewMemoryStorage())

	assert.False(t, s.HasAnyPermission())
	assert.True(t, s.HasAllPermissions())
}

func TestSession_Payload(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(NewMemoryStorage())

	_, err := s.Payload()
	require.Error(t, err)

	require.NoError(t, s.SetAuth(ctx, signToken(t, jwt.MapClaims{"userId": int64(11), "username": "z"}), ""))
	payload, err := s.Payload()
	require.NoError(t, err)
	assert.Equal(t, int64(11), payload.UserID)
}
