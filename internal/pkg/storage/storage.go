package storage

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidPath = errors.New("invalid blob path")
)

// Storage stores opaque blobs (message attachments and their thumbnails)
// under relative slash-separated paths.
type Storage interface {
	// Save writes content to path, creating parent directories as needed.
	Save(ctx context.Context, path string, content io.Reader) error

	// Get opens the blob at path. It returns ErrNotFound when nothing is stored there.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the blob at path. Deleting a missing blob is not an error.
	Delete(ctx context.Context, path string) error
}
