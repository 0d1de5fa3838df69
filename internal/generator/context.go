package generator

import (
	"time"

	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// SiteMetadata carries site-wide values into every template invocation.
type SiteMetadata struct {
	Title       string
	Description string
	Author      string
	BaseURL     string
	Metadata    map[string]any
}

// BuildMetadata records when and how the current build started.
type BuildMetadata struct {
	GeneratedAt time.Time
	Options     BuildOptions
}

// DocumentRenderingContext bundles everything a document template needs.
type DocumentRenderingContext struct {
	Document *interfaces.Document
	// HTML is the rendered Markdown body.
	HTML string
	// URL is the canonical permalink for the document.
	URL string
	// Tags holds the document's tag groups as resolved by the index.
	Tags []index.TagGroup
}

// TagRenderingContext bundles what a tag listing template needs.
type TagRenderingContext struct {
	Tag index.TagGroup
	URL string
}

// TemplateContext is the root object handed to every template.
type TemplateContext struct {
	Site     SiteMetadata
	Document *DocumentRenderingContext
	Tag      *TagRenderingContext
	Index    *index.Index
	Build    BuildMetadata
	Theme    ThemeContext
}

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	CSSVars   map[string]string
	Partials  map[string]string
	AssetURL  func(string) string
	Template  func(string, string) string
	Selection *gotheme.Selection
}

func buildThemeContext(selection *gotheme.Selection, cssPrefix string, partialFallbacks map[string]string) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
		AssetURL: func(string) string { return "" },
		Template: func(_ string, fallback string) string { return fallback },
	}
	if selection == nil {
		return empty
	}

	return ThemeContext{
		Name:      selection.Theme,
		Variant:   selection.Variant,
		Tokens:    selection.Tokens(),
		CSSVars:   selection.CSSVariables(cssPrefix),
		Partials:  selection.Partials(partialFallbacks),
		AssetURL:  func(key string) string { url, _ := selection.Asset(key); return url },
		Template:  selection.Template,
		Selection: selection,
	}
}

// RenderedPage is one finished HTML artifact ready for persistence.
type RenderedPage struct {
	DocumentID uuid.UUID
	Slug       string
	Route      string
	Template   string
	HTML       string
	Output     string
	Checksum   string
	// Hash fingerprints the render inputs; unchanged hashes allow
	// incremental builds to skip the page.
	Hash         string
	LastModified time.Time
	Duration     time.Duration
}

// RenderDiagnostic reports per-page render telemetry, including failures.
type RenderDiagnostic struct {
	DocumentID uuid.UUID
	Slug       string
	Route      string
	Template   string
	Duration   time.Duration
	Skipped    bool
	Err        error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	skipped    bool
	err        error
}

// BrokenReference describes an internal link pointing at a route the build
// did not produce.
type BrokenReference struct {
	Source string
	Target string
}
