package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is wrapped by backends when the requested object is missing.
var ErrNotFound = errors.New("storage: object not found")

// ErrTooLarge is returned by ReadAll when an object exceeds the size limit.
var ErrTooLarge = errors.New("storage: object exceeds max file size")

// Storage is the read side of an object store. Source files are addressed by
// path; how a path maps to an object is up to the backend.
type Storage interface {
	// Download returns a reader for the object at the given path.
	// The caller is responsible for closing the returned ReadCloser.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks whether an object exists at the given path.
	Exists(ctx context.Context, path string) (bool, error)
}

// ReadAll downloads the whole object at path. A positive limit caps the
// number of bytes read; larger objects fail with ErrTooLarge.
func ReadAll(ctx context.Context, s Storage, path string, limit int64) ([]byte, error) {
	rc, err := s.Download(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck // read-only

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, path, limit)
	}
	return data, nil
}
