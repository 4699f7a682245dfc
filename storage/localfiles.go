package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFileStore keeps resume files in a directory on disk
type LocalFileStore struct {
	dir string
}

var _ FileStore = (*LocalFileStore)(nil)

// NewLocalFileStore creates dir if needed
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{dir: dir}, nil
}

// Save writes data under a fresh resume file name and returns the key
func (l *LocalFileStore) Save(_ context.Context, originalName, _ string, data []byte) (string, error) {
	key := newFileName(originalName)
	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return key, nil
}

// Read returns the content stored under key
func (l *LocalFileStore) Read(_ context.Context, key string) ([]byte, error) {
	path, err := l.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// Delete removes the file stored under key
func (l *LocalFileStore) Delete(_ context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// List returns the regular files in the upload directory
func (l *LocalFileStore) List(_ context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list upload dir: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Key: e.Name(), Size: info.Size()})
	}
	return files, nil
}

// Close is a no-op
func (l *LocalFileStore) Close() error { return nil }

// path resolves key inside the upload directory; keys are bare file names
func (l *LocalFileStore) path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key {
		return "", fmt.Errorf("invalid file key %q", key)
	}
	return filepath.Join(l.dir, key), nil
}
