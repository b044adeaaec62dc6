package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStorage implements Storage on the local filesystem. Objects live at
// <root>/<ref[0:2]>/<ref>, sharded by the first reference byte to keep
// directory listings manageable. Safe for concurrent use: writes go through
// a temp file and an atomic rename.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates a local backend rooted at dir, creating it if
// needed.
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if dir == "" {
		return nil, ErrInvalidConfig
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Join(ErrFailedToCreateDir, err)
	}

	return &LocalStorage{root: abs}, nil
}

// Put stores data under its content reference. Existing objects are left
// untouched, the same bytes always land at the same path.
func (l *LocalStorage) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := Ref(data)
	path := l.path(ref)

	if _, err := os.Stat(path); err == nil {
		return ref, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Join(ErrFailedToCreateDir, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+ref+".*")
	if err != nil {
		return "", errors.Join(ErrFailedToWriteObject, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", errors.Join(ErrFailedToWriteObject, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", errors.Join(ErrFailedToWriteObject, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return "", errors.Join(ErrFailedToWriteObject, err)
	}

	return ref, nil
}

// Get retrieves the bytes stored under ref.
func (l *LocalStorage) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ValidRef(ref) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	data, err := os.ReadFile(l.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// Exists reports whether ref is already stored.
func (l *LocalStorage) Exists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !ValidRef(ref) {
		return false, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	_, err := os.Stat(l.path(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

func (l *LocalStorage) path(ref string) string {
	return filepath.Join(l.root, ref[:2], ref)
}
