// Package local implements storage.Storage on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kbukum/tabkit/logger"
	"github.com/kbukum/tabkit/storage"
)

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(cfg storage.Config, _ *logger.Logger) (storage.Storage, error) {
		return NewStorage(cfg.BasePath)
	})
}

// Storage implements storage.Storage using the local filesystem.
type Storage struct {
	basePath string
}

// NewStorage creates a local filesystem storage. Relative paths are resolved
// against basePath; an empty basePath leaves them relative to the working
// directory. Absolute paths are always used as given.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return &Storage{}, nil
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve base path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: base path %s is not a directory", abs)
	}
	return &Storage{basePath: abs}, nil
}

func (s *Storage) resolve(path string) string {
	path = filepath.Clean(path)
	if s.basePath == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.basePath, path)
}

// Download returns a reader for the local file at the given path.
func (s *Storage) Download(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(s.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, path)
		}
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	info, err := f.Stat()
	if err == nil && info.IsDir() {
		f.Close() //nolint:errcheck // read-only
		return nil, fmt.Errorf("storage: %s is a directory", path)
	}
	return f, nil
}

// Exists checks whether a local file exists.
func (s *Storage) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(s.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat file: %w", err)
	}
	return true, nil
}

var _ storage.Storage = (*Storage)(nil)
