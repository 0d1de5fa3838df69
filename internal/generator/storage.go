package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
)

const (
	categoryPage     = "page"
	categoryTag      = "tag"
	categoryAsset    = "asset"
	categorySitemap  = "sitemap"
	categoryRobots   = "robots"
	categoryFeed     = "feed"
	categoryManifest = "manifest"
)

// artifactWriter narrows the storage provider surface to the operations the
// generator performs, and swallows writes when no provider is configured.
type artifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req interfaces.WriteRequest) error
}

func newArtifactWriter(storage interfaces.StorageProvider) artifactWriter {
	if storage == nil {
		return noopWriter{}
	}
	return &storageWriter{storage: storage}
}

type storageWriter struct {
	storage interfaces.StorageProvider
}

func (w *storageWriter) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	return w.storage.EnsureDir(ctx, path)
}

func (w *storageWriter) WriteFile(ctx context.Context, req interfaces.WriteRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	return w.storage.WriteFile(ctx, req)
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, interfaces.WriteRequest) error { return nil }

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" || dir == "." {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}
