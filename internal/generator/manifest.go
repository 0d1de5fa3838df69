package generator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	manifestFileName    = ".press-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores metadata about the last successful build to support
// incremental runs.
type buildManifest struct {
	Version     int                        `json:"version"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Documents   map[string]manifestEntry   `json:"documents"`
	Assets      map[string]manifestAsset   `json:"assets"`
	Metadata    map[string]json.RawMessage `json:"metadata,omitempty"`
}

type manifestEntry struct {
	DocumentID   string    `json:"document_id"`
	Slug         string    `json:"slug"`
	Route        string    `json:"route"`
	Output       string    `json:"output"`
	Template     string    `json:"template"`
	Hash         string    `json:"hash"`
	Checksum     string    `json:"checksum"`
	LastModified time.Time `json:"last_modified"`
	RenderedAt   time.Time `json:"rendered_at"`
}

type manifestAsset struct {
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version:   manifestFileVersion,
		Documents: map[string]manifestEntry{},
		Assets:    map[string]manifestAsset{},
		Metadata:  map[string]json.RawMessage{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var manifest buildManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if manifest.Documents == nil {
		manifest.Documents = map[string]manifestEntry{}
	}
	if manifest.Assets == nil {
		manifest.Assets = map[string]manifestAsset{}
	}
	if manifest.Metadata == nil {
		manifest.Metadata = map[string]json.RawMessage{}
	}
	if manifest.Version == 0 {
		manifest.Version = manifestFileVersion
	}
	return &manifest, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	cloned := *m
	if cloned.Version == 0 {
		cloned.Version = manifestFileVersion
	}

	// Stable ordering for deterministic output.
	type orderedManifest struct {
		Version     int                        `json:"version"`
		GeneratedAt time.Time                  `json:"generated_at"`
		Documents   []manifestEntry            `json:"documents"`
		Assets      []manifestAsset            `json:"assets"`
		Metadata    map[string]json.RawMessage `json:"metadata,omitempty"`
	}
	ordered := orderedManifest{
		Version:     cloned.Version,
		GeneratedAt: cloned.GeneratedAt,
		Metadata:    cloned.Metadata,
	}
	if len(cloned.Documents) > 0 {
		ordered.Documents = make([]manifestEntry, 0, len(cloned.Documents))
		for _, entry := range cloned.Documents {
			ordered.Documents = append(ordered.Documents, entry)
		}
		sort.Slice(ordered.Documents, func(i, j int) bool {
			return ordered.Documents[i].DocumentID < ordered.Documents[j].DocumentID
		})
	}
	if len(cloned.Assets) > 0 {
		ordered.Assets = make([]manifestAsset, 0, len(cloned.Assets))
		for _, entry := range cloned.Assets {
			ordered.Assets = append(ordered.Assets, entry)
		}
		sort.Slice(ordered.Assets, func(i, j int) bool {
			return ordered.Assets[i].Source < ordered.Assets[j].Source
		})
	}
	return json.MarshalIndent(ordered, "", "  ")
}

func (m *buildManifest) documentKey(id uuid.UUID) string {
	return strings.ToLower(id.String())
}

func (m *buildManifest) lookupDocument(id uuid.UUID) (manifestEntry, bool) {
	if m == nil || len(m.Documents) == 0 {
		return manifestEntry{}, false
	}
	entry, ok := m.Documents[m.documentKey(id)]
	return entry, ok
}

func (m *buildManifest) setDocument(entry manifestEntry) {
	if m == nil {
		return
	}
	if m.Documents == nil {
		m.Documents = map[string]manifestEntry{}
	}
	m.Documents[strings.ToLower(strings.TrimSpace(entry.DocumentID))] = entry
}

func (m *buildManifest) shouldSkipDocument(id uuid.UUID, hash, output string) bool {
	entry, ok := m.lookupDocument(id)
	if !ok {
		return false
	}
	if entry.Hash != hash {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

func (m *buildManifest) lookupAsset(source string) (manifestAsset, bool) {
	if m == nil || len(m.Assets) == 0 {
		return manifestAsset{}, false
	}
	entry, ok := m.Assets[strings.TrimSpace(source)]
	return entry, ok
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	m.Assets[strings.TrimSpace(entry.Source)] = entry
}

func (m *buildManifest) shouldSkipAsset(source, checksum, output string) bool {
	entry, ok := m.lookupAsset(source)
	if !ok {
		return false
	}
	if entry.Checksum != checksum {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

// pruneDocuments drops manifest entries whose document no longer exists so
// renamed or deleted sources do not keep stale skip records around.
func (m *buildManifest) pruneDocuments(keys map[string]struct{}) {
	if m == nil || len(m.Documents) == 0 {
		return
	}
	for key := range m.Documents {
		if _, ok := keys[key]; !ok {
			delete(m.Documents, key)
		}
	}
}
