// Package storage persists uploaded media files. Two backends exist: a
// local disk directory served by the API itself, and an S3-compatible
// bucket (AWS or MinIO).
package storage

import (
	"context"
	"errors"
	"io"
)

// Common errors for storage operations.
var (
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage stores and removes media files by key. Keys are slash-separated
// relative paths like "recipes/5b1c.png".
type Storage interface {
	// Save writes the file under the given key, replacing any previous
	// content.
	Save(ctx context.Context, key string, data io.Reader, contentType string) error
	// Delete removes the file. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL the file is reachable at.
	URL(key string) string
}
