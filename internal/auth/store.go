package auth

import (
	"context"
	"sync"
)

// Persisted storage keys.
const (
	KeyToken    = "token"
	KeyUserID   = "userId"
	KeyUsername = "username"
)

// Storage defines the key-value collaborator a Session persists to.
//
// Implementations must be safe for concurrent use. Values are plain strings;
// the user id is stored as a decimal string.
type Storage interface {
	// Get returns the value stored under key.
	// The boolean is false when the key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error
}

// MemoryStorage implements Storage in process memory.
//
// Nothing survives a restart; it backs tests and one-shot commands that are
// given a token explicitly.
type MemoryStorage struct {
	values sync.Map
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Get returns the value stored under key.
func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok := m.values.Load(key)
	if !ok {
		return "", false, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", false, NewError(ErrStorageFailed, "invalid stored value", Fields{
			"key": key,
		})
	}
	return s, true, nil
}

// Set stores value under key.
func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return NewError(ErrStorageFailed, "key cannot be empty", nil)
	}
	m.values.Store(key, value)
	return nil
}

// Delete removes key.
func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.values.Delete(key)
	return nil
}

// Len returns the number of stored keys.
// This is useful for testing.
func (m *MemoryStorage) Len() int {
	count := 0
	m.values.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}
