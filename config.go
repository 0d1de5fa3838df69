package press

import (
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Config exports the runtime configuration consumed by New.
type Config = runtimeconfig.Config

// SiteConfig exports the site identity section.
type SiteConfig = runtimeconfig.SiteConfig

// ContentConfig exports the content discovery section.
type ContentConfig = runtimeconfig.ContentConfig

// BuildConfig exports the generator section.
type BuildConfig = runtimeconfig.BuildConfig

// ThemeConfig exports the theme section.
type ThemeConfig = runtimeconfig.ThemeConfig

// ServerConfig exports the preview server section.
type ServerConfig = runtimeconfig.ServerConfig

// CacheConfig exports the build history section.
type CacheConfig = runtimeconfig.CacheConfig

// LoggingConfig exports the logging section.
type LoggingConfig = runtimeconfig.LoggingConfig

// ErrConfigInvalid exports the configuration validation sentinel.
var ErrConfigInvalid = runtimeconfig.ErrConfigInvalid

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// BuildOptions exports the per-run generator options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the aggregated build report.
type BuildResult = generator.BuildResult

// Document exports the parsed content document DTO.
type Document = interfaces.Document

// FrontMatter exports the parsed document header DTO.
type FrontMatter = interfaces.FrontMatter

// Index exports the tag and recency index.
type Index = index.Index

// TagGroup exports one tag bucket of the index.
type TagGroup = index.TagGroup
