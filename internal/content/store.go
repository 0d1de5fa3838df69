package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Config controls how the content store discovers and parses documents.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	// Strict aborts enumeration on the first malformed document instead of
	// skipping it with a warning.
	Strict bool
}

// Store implements document enumeration for filesystem-backed content.
type Store struct {
	cfg    Config
	loader *Loader
	logger interfaces.Logger
}

// NewStore constructs a content store rooted at cfg.BasePath.
func NewStore(cfg Config, provider interfaces.LoggerProvider) (*Store, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	return NewStoreWithFS(cfg, filesystem, provider), nil
}

// NewStoreWithFS constructs a content store over an explicit fs.FS. Tests and
// embedded content use this directly.
func NewStoreWithFS(cfg Config, filesystem fs.FS, provider interfaces.LoggerProvider) *Store {
	loader := NewLoader(filesystem, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
	})

	return &Store{
		cfg:    cfg,
		loader: loader,
		logger: logging.ContentLogger(provider),
	}
}

// Load reads a single document relative to the configured base path.
func (s *Store) Load(ctx context.Context, path string) (*interfaces.Document, error) {
	return s.loader.LoadFile(ctx, s.normalisePath(path))
}

// LoadAll enumerates every document under the base path in deterministic
// (path-sorted) order. In lenient mode malformed documents are skipped with a
// warning and reported alongside the result; strict mode fails on the first
// one.
func (s *Store) LoadAll(ctx context.Context) ([]*interfaces.Document, []error, error) {
	docs, malformed, err := s.loader.LoadDirectory(ctx, ".")
	if err != nil {
		return nil, nil, err
	}

	if len(malformed) > 0 {
		if s.cfg.Strict {
			return nil, malformed, malformed[0]
		}
		for _, docErr := range malformed {
			s.logger.Warn("content.document.skipped", "error", docErr)
		}
	}

	if err := checkSlugConflicts(docs); err != nil {
		return nil, malformed, err
	}

	return docs, malformed, nil
}

// checkSlugConflicts enforces slug uniqueness across the document set. Two
// files mapping to the same slug would silently overwrite each other's output
// page, so this always fails the build.
func checkSlugConflicts(docs []*interfaces.Document) error {
	byKey := make(map[string][]string, len(docs))
	for _, doc := range docs {
		key := conflictKey(doc)
		byKey[key] = append(byKey[key], doc.FilePath)
	}
	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conflicts []error
	for _, key := range keys {
		if paths := byKey[key]; len(paths) > 1 {
			conflicts = append(conflicts, &SlugConflictError{Slug: key, Paths: paths})
		}
	}
	if len(conflicts) > 0 {
		return errors.Join(conflicts...)
	}
	return nil
}

func conflictKey(doc *interfaces.Document) string {
	date := doc.Date()
	if date.IsZero() {
		return doc.Slug
	}
	return fmt.Sprintf("%04d/%02d/%s", date.Year(), int(date.Month()), doc.Slug)
}

func (s *Store) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("content store: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
