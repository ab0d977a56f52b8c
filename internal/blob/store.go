package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Download and Delete when no object exists at
// the given key.
var ErrNotFound = errors.New("object not found")

// Store is a flat key/value object store. Keys are slash-separated paths
// inside a single bucket; writes replace whole objects.
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}
