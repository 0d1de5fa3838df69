package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/identity"
)

// Theme describes an on-disk theme directory the renderer can select from.
type Theme struct {
	ID      uuid.UUID
	Name    string
	Version string
	Path    string
}

// NewTheme builds a theme record for the supplied directory. The ID is
// derived from the path so repeated builds address the same theme.
func NewTheme(name, path string) *Theme {
	return &Theme{
		ID:   identity.ThemeUUID(path),
		Name: strings.TrimSpace(name),
		Path: strings.TrimSpace(path),
	}
}

type ManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsManifestLoader struct{}

func (fsManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if cleaned == "" {
		return nil, fmt.Errorf("theme path required")
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

// ThemeSelector resolves theme selections through go-theme, caching loaded
// manifests per theme ID.
type ThemeSelector struct {
	registry       *gotheme.MemoryRegistry
	loader         ManifestLoader
	defaultTheme   string
	defaultVariant string

	mu        sync.Mutex
	manifests map[uuid.UUID]*gotheme.Manifest
}

// SelectorConfig controls the fallback theme and variant applied when a
// document does not request a specific one.
type SelectorConfig struct {
	DefaultTheme   string
	DefaultVariant string
}

func NewThemeSelector(cfg SelectorConfig, loader ManifestLoader) *ThemeSelector {
	if loader == nil {
		loader = fsManifestLoader{}
	}
	return &ThemeSelector{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		defaultTheme:   strings.TrimSpace(cfg.DefaultTheme),
		defaultVariant: strings.TrimSpace(cfg.DefaultVariant),
		manifests:      map[uuid.UUID]*gotheme.Manifest{},
	}
}

// Selection resolves the theme and variant into a go-theme selection. A nil
// theme yields a nil selection without error so callers can render unthemed.
func (s *ThemeSelector) Selection(theme *Theme, variant string) (*gotheme.Selection, error) {
	if theme == nil {
		return nil, nil
	}

	if _, err := s.ensureManifest(theme); err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   s.defaultTheme,
		DefaultVariant: s.defaultVariant,
	}

	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = s.defaultVariant
	}

	selection, err := selector.Select(theme.Name, resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("select theme %s: %w", theme.Name, err)
	}
	return selection, nil
}

func (s *ThemeSelector) ensureManifest(theme *Theme) (*gotheme.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if manifest, ok := s.manifests[theme.ID]; ok {
		return manifest, nil
	}

	manifest, err := s.loader.Load(theme.Path)
	if err != nil {
		return nil, fmt.Errorf("load theme manifest from %s: %w", theme.Path, err)
	}

	normalized := *manifest
	if strings.TrimSpace(normalized.Name) == "" || !strings.EqualFold(normalized.Name, theme.Name) {
		normalized.Name = theme.Name
	}
	if strings.TrimSpace(normalized.Version) == "" {
		normalized.Version = strings.TrimSpace(theme.Version)
	}
	if normalized.Name == "" {
		return nil, fmt.Errorf("theme name required for manifest registration")
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifests[theme.ID] = &normalized
	return &normalized, nil
}
