package content

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// jekyllName matches the conventional YYYY-MM-DD-slug.md content filename.
var jekyllName = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// LoaderConfig configures how Markdown files are discovered within a base directory.
type LoaderConfig struct {
	// BasePath is the root directory where documents live.
	BasePath string
	// Pattern limits discovered files to those matching the supplied glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
}

// Loader turns filesystem paths into documents with metadata.
type Loader struct {
	fs        fs.FS
	basePath  string
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}

	return &Loader{
		fs:        filesystem,
		basePath:  filepath.Clean(cfg.BasePath),
		pattern:   pattern,
		recursive: cfg.Recursive,
	}
}

// LoadFile reads and parses a single document.
func (l *Loader) LoadFile(ctx context.Context, path string) (*interfaces.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel, err := l.makeRelative(path)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("content loader read %s: %w", rel, err)
	}

	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("content loader stat %s: %w", rel, err)
	}

	return BuildDocument(rel, data, info.ModTime())
}

// BuildDocument assembles a Document from the supplied path, raw content, and
// modification time. BodyHTML is intentionally left empty so callers can
// render lazily.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(path, source)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &MalformedDocumentError{
			Path:   path,
			Reason: "empty body",
			Cause:  ErrEmptyBody,
		}
	}

	slugValue, date, err := resolveIdentity(path, meta)
	if err != nil {
		return nil, err
	}
	meta.Date = date

	sum := sha256.Sum256(source)

	return &interfaces.Document{
		ID:           identity.DocumentUUID(path),
		FilePath:     path,
		Slug:         slugValue,
		FrontMatter:  meta,
		Body:         body,
		LastModified: modified,
		Checksum:     sum[:],
	}, nil
}

// LoadDirectory discovers documents under dir and returns them sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*interfaces.Document, []error, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	default:
	}

	root, err := l.makeRelative(dir)
	if err != nil {
		return nil, nil, err
	}
	root = filepath.Clean(root)

	var (
		docs      []*interfaces.Document
		malformed []error
	)

	walkErr := fs.WalkDir(l.fs, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if !l.shouldRecurse(root, path) {
				return fs.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel := filepath.ToSlash(path)
		if !l.matchesPattern(rel) {
			return nil
		}

		doc, err := l.LoadFile(ctx, rel)
		if err != nil {
			if errors.Is(err, ErrMalformedDocument) {
				malformed = append(malformed, err)
				return nil
			}
			return err
		}
		docs = append(docs, doc)
		return nil
	})

	if walkErr != nil {
		return nil, nil, walkErr
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FilePath < docs[j].FilePath
	})

	return docs, malformed, nil
}

// resolveIdentity derives the document slug and date, preferring frontmatter
// values over the YYYY-MM-DD-slug filename convention.
func resolveIdentity(path string, meta interfaces.FrontMatter) (string, time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	date := meta.Date
	slugSource := strings.TrimSpace(meta.Slug)

	if match := jekyllName.FindStringSubmatch(base); match != nil {
		if date.IsZero() {
			parsed, err := time.Parse("2006-01-02", match[1]+"-"+match[2]+"-"+match[3])
			if err != nil {
				return "", time.Time{}, &MalformedDocumentError{
					Path:   path,
					Reason: "invalid date in filename",
					Cause:  err,
				}
			}
			date = parsed
		}
		if slugSource == "" {
			slugSource = match[4]
		}
	}
	if slugSource == "" {
		slugSource = base
	}

	normalized, err := NormalizeSlug(slugSource)
	if err != nil || normalized == "" {
		return "", time.Time{}, &MalformedDocumentError{
			Path:   path,
			Reason: fmt.Sprintf("cannot derive slug from %q", slugSource),
			Cause:  ErrSlugInvalid,
		}
	}

	return normalized, date, nil
}

func (l *Loader) shouldRecurse(root, current string) bool {
	if l.recursive {
		return true
	}
	// If recursion is disabled, only walk the root directory.
	return filepath.Clean(root) == filepath.Clean(current)
}

func (l *Loader) matchesPattern(path string) bool {
	pattern := filepath.ToSlash(l.pattern)
	var target string
	if strings.Contains(pattern, "/") {
		target = path
	} else {
		target = filepath.Base(path)
	}
	match, err := filepath.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}

func (l *Loader) makeRelative(path string) (string, error) {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) {
		return clean, nil
	}
	if l.basePath == "" {
		return "", fmt.Errorf("content loader: absolute path %s provided without base path", path)
	}
	rel, err := filepath.Rel(l.basePath, clean)
	if err != nil {
		return "", fmt.Errorf("content loader: make relative %s: %w", path, err)
	}
	return rel, nil
}
