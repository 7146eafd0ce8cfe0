// Package storage defines the object-store abstraction for uploaded blobs:
// book PDFs, profile images, and voice recordings.
//
// Objects are addressed by a bucket-style path like "pdfs/al-muqaddimah.pdf".
// The store maps each object to a public URL that the HTTP layer serves or
// redirects to; database rows keep the URL, never the storage path.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Path       string
	Size       int64
	ModifiedAt time.Time
}

// Client defines the interface for object-store operations.
type Client interface {
	// Upload writes content to an object path. With overwrite false the
	// upload fails if the object already exists.
	Upload(ctx context.Context, path string, content io.Reader, overwrite bool) error

	// Open retrieves the contents of an object.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error

	// Exists checks if an object exists.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the objects under a path prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// PublicURL maps an object path to the URL clients fetch it from.
	PublicURL(path string) string
}
