package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// FilesystemProvider writes build artifacts under a root directory on the
// local filesystem. Relative, slash-separated request paths are resolved
// against the root; attempts to escape it are rejected.
type FilesystemProvider struct {
	root string
}

// NewFilesystemProvider returns a provider rooted at dir. The directory does
// not need to exist yet; it is created on first write.
func NewFilesystemProvider(dir string) (*FilesystemProvider, error) {
	cleaned := filepath.Clean(strings.TrimSpace(dir))
	if cleaned == "" || cleaned == "." {
		return nil, fmt.Errorf("storage: root directory required")
	}
	return &FilesystemProvider{root: cleaned}, nil
}

// Root returns the provider's base directory.
func (p *FilesystemProvider) Root() string {
	return p.root
}

func (p *FilesystemProvider) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSpace(path)))
	if cleaned == "" || cleaned == "." {
		return p.root, nil
	}
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || cleaned == ".." {
		return "", fmt.Errorf("storage: path %q escapes root", path)
	}
	return filepath.Join(p.root, cleaned), nil
}

func (p *FilesystemProvider) EnsureDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := p.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("storage: ensure dir %s: %w", path, err)
	}
	return nil
}

func (p *FilesystemProvider) WriteFile(ctx context.Context, req interfaces.WriteRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Content == nil {
		return fmt.Errorf("storage: write %s: content required", req.Path)
	}
	target, err := p.resolve(req.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("storage: prepare dir for %s: %w", req.Path, err)
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", req.Path, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, req.Content); err != nil {
		return fmt.Errorf("storage: write %s: %w", req.Path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("storage: flush %s: %w", req.Path, err)
	}
	return nil
}

func (p *FilesystemProvider) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := p.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

func (p *FilesystemProvider) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := p.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove %s: %w", path, err)
	}
	return nil
}

func (p *FilesystemProvider) RemoveAll(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := p.resolve(path)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("storage: remove all %s: %w", path, err)
	}
	return nil
}

var _ interfaces.StorageProvider = (*FilesystemProvider)(nil)
