package interfaces

import (
	"time"

	"github.com/google/uuid"
)

// Document represents a single authored content unit: a Markdown file with a
// parsed metadata header and raw body. The struct is shared between the
// interfaces package and internal implementations so consumers can depend on
// a stable contract.
type Document struct {
	ID           uuid.UUID
	FilePath     string
	Slug         string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	LastModified time.Time
	// Checksum stores a digest of the original file content (SHA-256) so
	// incremental builds can detect changes without re-rendering unchanged
	// documents.
	Checksum []byte
}

// Date returns the document's publication date, falling back to the file
// modification time when the metadata header carries none.
func (d *Document) Date() time.Time {
	if d == nil {
		return time.Time{}
	}
	if !d.FrontMatter.Date.IsZero() {
		return d.FrontMatter.Date
	}
	return d.LastModified
}

// Title returns the header title, falling back to the slug.
func (d *Document) Title() string {
	if d == nil {
		return ""
	}
	if d.FrontMatter.Title != "" {
		return d.FrontMatter.Title
	}
	return d.Slug
}

// FrontMatter models the metadata header extracted from a document. Fields
// stay flexible thanks to the Custom map for template- or site-specific
// values; Raw preserves everything as decoded for schema validation.
type FrontMatter struct {
	Title    string `yaml:"title" json:"title"`
	Slug     string `yaml:"slug" json:"slug"`
	Summary  string `yaml:"summary" json:"summary"`
	Template string `yaml:"template" json:"template"`
	// Permalink overrides the document's generated route when set.
	Permalink string         `yaml:"permalink" json:"permalink"`
	Tags      []string       `yaml:"tags" json:"tags"`
	Author    string         `yaml:"author" json:"author"`
	Date      time.Time      `yaml:"date" json:"date"`
	Draft     bool           `yaml:"draft" json:"draft"`
	Custom    map[string]any `yaml:",inline" json:"custom"`
	Raw       map[string]any `yaml:"-" json:"raw"`
}
