package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID identifies a document by its store-relative path.
func DocumentUUID(path string) uuid.UUID {
	return UUID("go-press:document:" + strings.TrimSpace(path))
}

// TagUUID identifies a tag by its normalized label.
func TagUUID(label string) uuid.UUID {
	return UUID("go-press:tag:" + strings.ToLower(strings.TrimSpace(label)))
}

// ThemeUUID identifies a theme by its on-disk path.
func ThemeUUID(themePath string) uuid.UUID {
	return UUID("go-press:theme:" + strings.TrimSpace(themePath))
}
