package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedDocument = errors.New("content: malformed document")
	ErrEmptyBody         = errors.New("content: document body is empty")
	ErrSlugRequired      = errors.New("content: slug is required")
	ErrSlugInvalid       = errors.New("content: slug contains invalid characters")
	ErrSlugConflict      = errors.New("content: slug conflict")
	ErrDocumentNotFound  = errors.New("content: document not found")
)

// MalformedDocumentError captures the offending path and underlying parse
// failure for a document whose metadata header is missing or unparsable.
type MalformedDocumentError struct {
	Path   string
	Reason string
	Cause  error
}

func (e *MalformedDocumentError) Error() string {
	if e == nil {
		return ErrMalformedDocument.Error()
	}
	path := strings.TrimSpace(e.Path)
	reason := strings.TrimSpace(e.Reason)
	switch {
	case path != "" && reason != "":
		return fmt.Sprintf("%s: %s: %s", ErrMalformedDocument.Error(), path, reason)
	case path != "":
		return fmt.Sprintf("%s: %s", ErrMalformedDocument.Error(), path)
	default:
		return ErrMalformedDocument.Error()
	}
}

func (e *MalformedDocumentError) Unwrap() error {
	return ErrMalformedDocument
}

// SlugConflictError captures two documents resolving to the same slug.
type SlugConflictError struct {
	Slug  string
	Paths []string
}

func (e *SlugConflictError) Error() string {
	if e == nil {
		return ErrSlugConflict.Error()
	}
	slug := strings.TrimSpace(e.Slug)
	if slug == "" {
		return ErrSlugConflict.Error()
	}
	if len(e.Paths) > 0 {
		return fmt.Sprintf("%s: slug=%s paths=%s", ErrSlugConflict.Error(), slug, strings.Join(e.Paths, ","))
	}
	return fmt.Sprintf("%s: slug=%s", ErrSlugConflict.Error(), slug)
}

func (e *SlugConflictError) Unwrap() error {
	return ErrSlugConflict
}
