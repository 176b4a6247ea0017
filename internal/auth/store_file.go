package auth

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FileStorage implements Storage as a single JSON object on disk.
//
// The file is rewritten on every Set and Delete with 0600 permissions since it
// holds a bearer credential.
type FileStorage struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileStorage creates a storage backed by path on fs.
// The file and its parent directory are created on first write.
func NewFileStorage(fs afero.Fs, path string) *FileStorage {
	return &FileStorage{fs: fs, path: path}
}

// Path returns the location of the session file.
func (f *FileStorage) Path() string {
	return f.path
}

// Get returns the value stored under key.
func (f *FileStorage) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set stores value under key.
func (f *FileStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return NewError(ErrStorageFailed, "key cannot be empty", nil)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

// Delete removes key. Deleting the last key removes the file.
func (f *FileStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)

	if len(values) == 0 {
		if err := f.fs.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return WrapError(ErrStorageFailed, "failed to remove session file", err, Fields{
				"path": f.path,
			})
		}
		return nil
	}
	return f.save(values)
}

func (f *FileStorage) load() (map[string]string, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, WrapError(ErrStorageFailed, "failed to read session file", err, Fields{
			"path": f.path,
		})
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, WrapError(ErrStorageFailed, "session file is corrupt", err, Fields{
			"path": f.path,
		})
	}
	return values, nil
}

func (f *FileStorage) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return WrapError(ErrStorageFailed, "failed to encode session", err, nil)
	}

	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return WrapError(ErrStorageFailed, "failed to create session directory", err, Fields{
			"path": f.path,
		})
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o600); err != nil {
		return WrapError(ErrStorageFailed, "failed to write session file", err, Fields{
			"path": tmp,
		})
	}
	if err := f.fs.Rename(tmp, f.path); err != nil {
		_ = f.fs.Remove(tmp)
		return WrapError(ErrStorageFailed, "failed to replace session file", err, Fields{
			"path": f.path,
		})
	}
	return nil
}
