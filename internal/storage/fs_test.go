package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-press/pkg/interfaces"
)

func newProvider(t *testing.T) *FilesystemProvider {
	t.Helper()
	provider, err := NewFilesystemProvider(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystemProvider: %v", err)
	}
	return provider
}

func TestWriteAndReadFile(t *testing.T) {
	provider := newProvider(t)
	ctx := context.Background()

	err := provider.WriteFile(ctx, interfaces.WriteRequest{
		Path:        "posts/testing-services/index.html",
		Content:     strings.NewReader("<html>ok</html>"),
		ContentType: "text/html; charset=utf-8",
	})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := provider.ReadFile(ctx, "posts/testing-services/index.html")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "<html>ok</html>" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteCreatesParentDirs(t *testing.T) {
	provider := newProvider(t)

	err := provider.WriteFile(context.Background(), interfaces.WriteRequest{
		Path:    "a/b/c/file.txt",
		Content: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := os.Stat(filepath.Join(provider.Root(), "a", "b", "c", "file.txt")); err != nil {
		t.Errorf("expected file on disk: %v", err)
	}
}

func TestWriteRejectsEscapingPaths(t *testing.T) {
	provider := newProvider(t)

	err := provider.WriteFile(context.Background(), interfaces.WriteRequest{
		Path:    "../outside.txt",
		Content: strings.NewReader("x"),
	})
	if err == nil {
		t.Fatal("expected error for path escaping root")
	}
}

func TestRemoveMissingFileIsQuiet(t *testing.T) {
	provider := newProvider(t)

	if err := provider.Remove(context.Background(), "never-written.txt"); err != nil {
		t.Errorf("Remove: %v", err)
	}
}

func TestRemoveAll(t *testing.T) {
	provider := newProvider(t)
	ctx := context.Background()

	for _, path := range []string{"tags/angular/index.html", "tags/jasmine/index.html"} {
		err := provider.WriteFile(ctx, interfaces.WriteRequest{Path: path, Content: strings.NewReader("x")})
		if err != nil {
			t.Fatalf("WriteFile %s: %v", path, err)
		}
	}

	if err := provider.RemoveAll(ctx, "tags"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if _, err := os.Stat(filepath.Join(provider.Root(), "tags")); !os.IsNotExist(err) {
		t.Errorf("tags directory still present: %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	provider := newProvider(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := provider.WriteFile(ctx, interfaces.WriteRequest{Path: "x.txt", Content: strings.NewReader("x")})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
