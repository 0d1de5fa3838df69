package interfaces

import (
	"context"
	"io"
)

// WriteRequest describes a single artifact write routed through a
// StorageProvider. Paths are slash-separated and relative to the provider
// root. Metadata is advisory; providers may ignore it.
type WriteRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    string
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// StorageProvider abstracts the destination store for build artifacts so the
// generator can target a filesystem, an object store, or a test double.
type StorageProvider interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteRequest) error
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Remove(ctx context.Context, path string) error
	RemoveAll(ctx context.Context, path string) error
}
