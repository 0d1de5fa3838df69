package index

import (
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

func doc(path, slug string, date time.Time, tags ...string) *interfaces.Document {
	return &interfaces.Document{
		ID:       identity.DocumentUUID(path),
		FilePath: path,
		Slug:     slug,
		FrontMatter: interfaces.FrontMatter{
			Title: slug,
			Tags:  tags,
			Date:  date,
		},
		Body: []byte("body"),
	}
}

func TestBuildEmptyInput(t *testing.T) {
	idx := Build(nil)
	if len(idx.Recent) != 0 || len(idx.Tags) != 0 || len(idx.Archive) != 0 {
		t.Fatalf("expected empty index, got %+v", idx)
	}
}

func TestBuildRecencyOrder(t *testing.T) {
	jan := time.Date(2014, 1, 20, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2014, 3, 2, 0, 0, 0, 0, time.UTC)

	idx := Build([]*interfaces.Document{
		doc("posts/2014-01-20-a.md", "a", jan),
		doc("posts/2014-03-02-b.md", "b", mar),
		doc("posts/2014-01-20-c.md", "c", jan),
	})

	if len(idx.Recent) != 3 {
		t.Fatalf("got %d documents, want 3", len(idx.Recent))
	}
	if idx.Recent[0].Slug != "b" {
		t.Errorf("newest first: got %q, want b", idx.Recent[0].Slug)
	}
	// Equal dates fall back to path order.
	if idx.Recent[1].Slug != "a" || idx.Recent[2].Slug != "c" {
		t.Errorf("tiebreak order = %q, %q", idx.Recent[1].Slug, idx.Recent[2].Slug)
	}
}

func TestBuildTagGroups(t *testing.T) {
	date := time.Date(2014, 1, 20, 0, 0, 0, 0, time.UTC)
	idx := Build([]*interfaces.Document{
		doc("posts/2014-01-20-x.md", "x", date, "a", "b"),
		doc("posts/2014-01-21-y.md", "y", date.AddDate(0, 0, 1), "a", "a"),
	})

	if len(idx.Tags) != 2 {
		t.Fatalf("got %d tag groups, want 2", len(idx.Tags))
	}

	groupA, ok := idx.Tag("a")
	if !ok {
		t.Fatal("missing tag group a")
	}
	if len(groupA.Documents) != 2 {
		t.Fatalf("tag a has %d documents, want 2", len(groupA.Documents))
	}
	// Duplicate tag on one document must not duplicate membership.
	counts := map[string]int{}
	for _, d := range groupA.Documents {
		counts[d.Slug]++
	}
	if counts["y"] != 1 {
		t.Errorf("document y appears %d times in tag a, want 1", counts["y"])
	}

	groupB, ok := idx.Tag("b")
	if !ok {
		t.Fatal("missing tag group b")
	}
	if len(groupB.Documents) != 1 || groupB.Documents[0].Slug != "x" {
		t.Errorf("tag b documents = %+v", groupB.Documents)
	}
}

func TestBuildTagCaseInsensitive(t *testing.T) {
	date := time.Date(2014, 1, 20, 0, 0, 0, 0, time.UTC)
	idx := Build([]*interfaces.Document{
		doc("posts/2014-01-20-x.md", "x", date, "Angular"),
		doc("posts/2014-01-21-y.md", "y", date, "angular"),
	})

	if len(idx.Tags) != 1 {
		t.Fatalf("got %d tag groups, want 1", len(idx.Tags))
	}
	if len(idx.Tags[0].Documents) != 2 {
		t.Errorf("merged group has %d documents, want 2", len(idx.Tags[0].Documents))
	}
}

func TestBuildArchiveNewestFirst(t *testing.T) {
	idx := Build([]*interfaces.Document{
		doc("posts/2013-12-01-a.md", "a", time.Date(2013, 12, 1, 0, 0, 0, 0, time.UTC)),
		doc("posts/2014-01-20-b.md", "b", time.Date(2014, 1, 20, 0, 0, 0, 0, time.UTC)),
		doc("posts/2014-01-25-c.md", "c", time.Date(2014, 1, 25, 0, 0, 0, 0, time.UTC)),
	})

	if len(idx.Archive) != 2 {
		t.Fatalf("got %d archive buckets, want 2", len(idx.Archive))
	}
	if idx.Archive[0].Year != 2014 || idx.Archive[0].Month != 1 {
		t.Errorf("first bucket = %d-%d, want 2014-1", idx.Archive[0].Year, idx.Archive[0].Month)
	}
	if len(idx.Archive[0].Documents) != 2 {
		t.Errorf("2014-01 bucket has %d documents, want 2", len(idx.Archive[0].Documents))
	}
}

func TestBuildDeterministic(t *testing.T) {
	date := time.Date(2014, 1, 20, 0, 0, 0, 0, time.UTC)
	docs := []*interfaces.Document{
		doc("posts/2014-01-20-x.md", "x", date, "b", "a"),
		doc("posts/2014-01-21-y.md", "y", date, "c"),
	}

	first := Build(docs)
	second := Build(docs)

	if len(first.Tags) != len(second.Tags) {
		t.Fatal("tag group count differs between runs")
	}
	for i := range first.Tags {
		if first.Tags[i].Slug != second.Tags[i].Slug {
			t.Errorf("tag order differs at %d: %q vs %q", i, first.Tags[i].Slug, second.Tags[i].Slug)
		}
		if first.Tags[i].ID != second.Tags[i].ID {
			t.Errorf("tag ID unstable for %q", first.Tags[i].Slug)
		}
	}
}
