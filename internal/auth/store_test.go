package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storageContract exercises the behaviour every Storage must share.
func storageContract(t *testing.T, store Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyToken, "tok"))
	require.NoError(t, store.Set(ctx, KeyUserID, "7"))

	value, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", value)

	require.NoError(t, store.Set(ctx, KeyToken, "tok2"))
	value, _, err = store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok2", value)

	require.NoError(t, store.Delete(ctx, KeyToken))
	require.NoError(t, store.Delete(ctx, KeyToken))
	_, ok, err = store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	value, ok, err = store.Get(ctx, KeyUserID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", value)

	err = store.Set(ctx, "", "x")
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrStorageFailed))
}

func TestMemoryStorage(t *testing.T) {
	store := NewMemoryStorage()
	storageContract(t, store)
	assert.Equal(t, 1, store.Len())
}

func TestFileStorage(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFileStorage(fs, "/home/u/.gsms/session.json")
	storageContract(t, store)

	info, err := fs.Stat("/home/u/.gsms/session.json")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	exists, err := afero.Exists(fs, "/home/u/.gsms/session.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStorage_SharedAcrossInstances(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	first := NewFileStorage(fs, "/s/session.json")
	require.NoError(t, first.Set(ctx, KeyUsername, "alice"))

	second := NewFileStorage(fs, "/s/session.json")
	value, ok, err := second.Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", value)
}

func TestFileStorage_DeleteLastKeyRemovesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()
	store := NewFileStorage(fs, "/s/session.json")

	require.NoError(t, store.Set(ctx, KeyToken, "tok"))
	require.NoError(t, store.Delete(ctx, KeyToken))

	exists, err := afero.Exists(fs, "/s/session.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s/session.json", []byte("{not json"), 0o600))

	store := NewFileStorage(fs, "/s/session.json")
	_, _, err := store.Get(context.Background(), KeyToken)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrStorageFailed))
}

func TestFileStorage_ReadOnlyFs(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/s/session.json", []byte(`{"token":"tok"}`), 0o600))
	store := NewFileStorage(afero.NewReadOnlyFs(base), "/s/session.json")
	ctx := context.Background()

	value, ok, err := store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", value)

	err = store.Set(ctx, KeyUsername, "alice")
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrStorageFailed))
}

func TestRedisStorage_DefaultPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	store := NewRedisStorage(client, "")
	defer store.Close()

	assert.Equal(t, DefaultRedisPrefix, store.prefix)
	assert.Equal(t, "custom:", NewRedisStorage(client, "custom:").prefix)
}

func TestRedisStorage_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisStorage(client, "")
	defer store.Close()
	ctx := context.Background()

	_, _, err := store.Get(ctx, KeyToken)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrStorageFailed))

	err = store.Set(ctx, KeyToken, "tok")
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrStorageFailed))

	err = store.Delete(ctx, KeyToken)
	require.Error(t, err)
	assert.True(t, HasCode(err, ErrStorageFailed))
}
