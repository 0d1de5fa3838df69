package index

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/content"
	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// TagGroup aggregates the documents carrying a single tag. Documents keep the
// site-wide recency order.
type TagGroup struct {
	ID        uuid.UUID
	Label     string
	Slug      string
	Documents []*interfaces.Document
}

// ArchiveGroup buckets documents by publication year and month.
type ArchiveGroup struct {
	Year      int
	Month     int
	Documents []*interfaces.Document
}

// Index is an aggregate, read-only view over a document set. It is a pure
// function of its input: building it twice from the same documents yields the
// same groupings in the same order.
type Index struct {
	// Recent holds every document ordered by date descending; documents with
	// equal dates fall back to path order so the result stays deterministic.
	Recent []*interfaces.Document
	// Tags holds one group per distinct tag, ordered by slug.
	Tags []TagGroup
	// Archive holds year/month buckets, newest first.
	Archive []ArchiveGroup
}

// Build constructs the aggregate index for the supplied documents. Empty
// input produces an empty index, never an error.
func Build(docs []*interfaces.Document) *Index {
	idx := &Index{}
	if len(docs) == 0 {
		return idx
	}

	idx.Recent = make([]*interfaces.Document, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		idx.Recent = append(idx.Recent, doc)
	}
	sort.SliceStable(idx.Recent, func(i, j int) bool {
		left, right := idx.Recent[i].Date(), idx.Recent[j].Date()
		if left.Equal(right) {
			return idx.Recent[i].FilePath < idx.Recent[j].FilePath
		}
		return left.After(right)
	})

	idx.Tags = buildTagGroups(idx.Recent)
	idx.Archive = buildArchive(idx.Recent)
	return idx
}

// Tag returns the group for the supplied label, matching by normalized slug.
func (i *Index) Tag(label string) (TagGroup, bool) {
	slug := tagSlug(label)
	for _, group := range i.Tags {
		if group.Slug == slug {
			return group, true
		}
	}
	return TagGroup{}, false
}

func buildTagGroups(docs []*interfaces.Document) []TagGroup {
	bySlug := map[string]*TagGroup{}
	seen := map[string]map[uuid.UUID]struct{}{}

	for _, doc := range docs {
		for _, label := range doc.FrontMatter.Tags {
			slug := tagSlug(label)
			if slug == "" {
				continue
			}
			group := bySlug[slug]
			if group == nil {
				group = &TagGroup{
					ID:    identity.TagUUID(slug),
					Label: strings.TrimSpace(label),
					Slug:  slug,
				}
				bySlug[slug] = group
				seen[slug] = map[uuid.UUID]struct{}{}
			}
			// A document listing the same tag twice still appears once.
			if _, ok := seen[slug][doc.ID]; ok {
				continue
			}
			seen[slug][doc.ID] = struct{}{}
			group.Documents = append(group.Documents, doc)
		}
	}

	groups := make([]TagGroup, 0, len(bySlug))
	for _, group := range bySlug {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Slug < groups[j].Slug
	})
	return groups
}

func buildArchive(docs []*interfaces.Document) []ArchiveGroup {
	type bucket struct{ year, month int }
	byBucket := map[bucket]*ArchiveGroup{}

	for _, doc := range docs {
		date := doc.Date()
		if date.IsZero() {
			continue
		}
		key := bucket{date.Year(), int(date.Month())}
		group := byBucket[key]
		if group == nil {
			group = &ArchiveGroup{Year: key.year, Month: key.month}
			byBucket[key] = group
		}
		group.Documents = append(group.Documents, doc)
	}

	groups := make([]ArchiveGroup, 0, len(byBucket))
	for _, group := range byBucket {
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Year == groups[j].Year {
			return groups[i].Month > groups[j].Month
		}
		return groups[i].Year > groups[j].Year
	})
	return groups
}

func tagSlug(label string) string {
	normalized, err := content.NormalizeSlug(strings.TrimSpace(label))
	if err != nil {
		return ""
	}
	return normalized
}
