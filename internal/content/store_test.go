package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestStoreLoadAllLenientSkipsMalformed(t *testing.T) {
	fsys := fstest.MapFS{
		"2014-01-01-good.md": {Data: []byte("---\ntitle: Good\n---\nbody\n")},
		"broken.md":          {Data: []byte("no header\n")},
	}

	store := NewStoreWithFS(Config{Recursive: true}, fsys, nil)
	docs, malformed, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if len(malformed) != 1 {
		t.Fatalf("got %d malformed, want 1", len(malformed))
	}
}

func TestStoreLoadAllStrictFails(t *testing.T) {
	fsys := fstest.MapFS{
		"2014-01-01-good.md": {Data: []byte("---\ntitle: Good\n---\nbody\n")},
		"broken.md":          {Data: []byte("no header\n")},
	}

	store := NewStoreWithFS(Config{Recursive: true, Strict: true}, fsys, nil)
	_, _, err := store.LoadAll(context.Background())
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("err = %v, want ErrMalformedDocument", err)
	}
}

func TestStoreLoadAllSlugConflict(t *testing.T) {
	fsys := fstest.MapFS{
		"a/2014-01-01-dup.md": {Data: []byte("---\ntitle: A\n---\nbody\n")},
		"b/2014-01-01-dup.md": {Data: []byte("---\ntitle: B\n---\nbody\n")},
	}

	store := NewStoreWithFS(Config{Recursive: true}, fsys, nil)
	_, _, err := store.LoadAll(context.Background())
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("err = %v, want ErrSlugConflict", err)
	}
}

func TestStoreLoadAllAllowsSameSlugDifferentDates(t *testing.T) {
	fsys := fstest.MapFS{
		"2014-01-01-dup.md": {Data: []byte("---\ntitle: A\n---\nbody\n")},
		"2015-01-01-dup.md": {Data: []byte("---\ntitle: B\n---\nbody\n")},
	}

	store := NewStoreWithFS(Config{Recursive: true}, fsys, nil)
	docs, _, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
}

func TestStoreLoadAllEmpty(t *testing.T) {
	store := NewStoreWithFS(Config{Recursive: true}, fstest.MapFS{}, nil)
	docs, malformed, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(docs) != 0 || len(malformed) != 0 {
		t.Fatalf("expected empty result, got %d docs %d malformed", len(docs), len(malformed))
	}
}

func TestStoreSlugConflictOrderStable(t *testing.T) {
	fsys := fstest.MapFS{
		"2014-01-01-zulu.md":      {Data: []byte("---\ntitle: Zulu A\n---\nbody\n")},
		"sub/2014-01-01-zulu.md":  {Data: []byte("---\ntitle: Zulu B\n---\nbody\n")},
		"2014-01-01-alpha.md":     {Data: []byte("---\ntitle: Alpha A\n---\nbody\n")},
		"sub/2014-01-01-alpha.md": {Data: []byte("---\ntitle: Alpha B\n---\nbody\n")},
	}

	store := NewStoreWithFS(Config{Recursive: true}, fsys, nil)
	_, _, err := store.LoadAll(context.Background())
	if !errors.Is(err, ErrSlugConflict) {
		t.Fatalf("err = %v, want ErrSlugConflict", err)
	}

	msg := err.Error()
	alpha := strings.Index(msg, "2014/01/alpha")
	zulu := strings.Index(msg, "2014/01/zulu")
	if alpha == -1 || zulu == -1 {
		t.Fatalf("conflict keys missing from error: %q", msg)
	}
	if alpha > zulu {
		t.Errorf("conflicts not sorted: %q", msg)
	}
}
