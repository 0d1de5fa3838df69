// Package runtimeconfig declares the configuration surface consumed by the
// press CLI and the library facade.
package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfigInvalid wraps any validation failure raised by Validate.
	ErrConfigInvalid = errors.New("runtimeconfig: invalid configuration")
)

// Config aggregates every tunable of a press site.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Build   BuildConfig   `yaml:"build"`
	Theme   ThemeConfig   `yaml:"theme"`
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig carries site identity and canonical URL data.
type SiteConfig struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Author      string            `yaml:"author"`
	BaseURL     string            `yaml:"base_url"`
	Permalinks  map[string]string `yaml:"permalinks,omitempty"`
}

// ContentConfig controls document discovery.
type ContentConfig struct {
	Dir       string `yaml:"dir"`
	Pattern   string `yaml:"pattern"`
	Recursive bool   `yaml:"recursive"`
	Strict    bool   `yaml:"strict"`
}

// BuildConfig controls generator behaviour.
type BuildConfig struct {
	OutputDir       string `yaml:"output_dir"`
	CleanBuild      bool   `yaml:"clean_build"`
	Incremental     bool   `yaml:"incremental"`
	CopyAssets      bool   `yaml:"copy_assets"`
	GenerateSitemap bool   `yaml:"generate_sitemap"`
	GenerateRobots  bool   `yaml:"generate_robots"`
	GenerateFeeds   bool   `yaml:"generate_feeds"`
	ValidateLinks   bool   `yaml:"validate_links"`
	Workers         int    `yaml:"workers"`
}

// ThemeConfig locates the active theme.
type ThemeConfig struct {
	Name              string `yaml:"name"`
	Path              string `yaml:"path"`
	Variant           string `yaml:"variant"`
	CSSVariablePrefix string `yaml:"css_variable_prefix"`
	DefaultTemplate   string `yaml:"default_template"`
	IndexTemplate     string `yaml:"index_template"`
	TagTemplate       string `yaml:"tag_template"`
}

// ServerConfig controls the local preview server.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Watch bool   `yaml:"watch"`
}

// CacheConfig controls build history persistence.
type CacheConfig struct {
	// Driver selects the backend: "file" or "sqlite".
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Keep   int    `yaml:"keep"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus,omitempty"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Title:   "press site",
			BaseURL: "http://localhost:8080",
		},
		Content: ContentConfig{
			Dir:       "content",
			Pattern:   "*.md",
			Recursive: true,
		},
		Build: BuildConfig{
			OutputDir:       "public",
			Incremental:     true,
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			GenerateFeeds:   true,
			ValidateLinks:   true,
		},
		Theme: ThemeConfig{
			Name: "default",
			Path: "themes/default",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Cache: CacheConfig{
			Driver: "file",
			Path:   ".press/history.json",
			Keep:   50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults. A missing
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("runtimeconfig: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("runtimeconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints before any build starts.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Site, validation.By(func(any) error { return c.Site.validate() })),
		validation.Field(&c.Content, validation.By(func(any) error { return c.Content.validate() })),
		validation.Field(&c.Build, validation.By(func(any) error { return c.Build.validate() })),
		validation.Field(&c.Cache, validation.By(func(any) error { return c.Cache.validate() })),
		validation.Field(&c.Logging, validation.By(func(any) error { return c.Logging.validate() })),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return nil
}

func (c SiteConfig) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required),
	)
}

func (c ContentConfig) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
	)
}

func (c BuildConfig) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Workers, validation.Min(0)),
	)
}

func (c CacheConfig) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.In("", "file", "sqlite")),
		validation.Field(&c.Keep, validation.Min(0)),
	)
}

func (c LoggingConfig) validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("", "trace", "debug", "info", "warn", "error", "fatal")),
		validation.Field(&c.Format, validation.In("", "console", "json", "pretty")),
	)
}
