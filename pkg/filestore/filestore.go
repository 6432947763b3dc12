// Package filestore abstracts where donation photos live. The donation
// service only depends on Store returning a stable reference string after the
// bytes are durably written; callers must not persist a reference before
// Store succeeds.
package filestore

import (
	"context"
	"io"
)

// FileStore stores uploaded files under an owner-scoped name.
type FileStore interface {
	// Store writes the file and returns the reference name to persist.
	Store(ctx context.Context, r io.Reader, ownerID, filename string) (string, error)
	// Load opens a previously stored file by its reference name.
	Load(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}
