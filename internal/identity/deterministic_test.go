package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDDeterministic(t *testing.T) {
	first := UUID("go-press:document:posts/2014-01-20-testing.md")
	second := UUID("go-press:document:posts/2014-01-20-testing.md")
	if first == uuid.Nil {
		t.Fatal("expected non-nil UUID")
	}
	if first != second {
		t.Fatalf("expected stable UUID, got %s and %s", first, second)
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected uuid.Nil for blank key, got %s", got)
	}
}

func TestEntityKeysDoNotCollide(t *testing.T) {
	doc := DocumentUUID("angular")
	tag := TagUUID("angular")
	theme := ThemeUUID("angular")

	if doc == tag || doc == theme || tag == theme {
		t.Fatalf("expected distinct IDs per entity type: doc=%s tag=%s theme=%s", doc, tag, theme)
	}
}

func TestTagUUIDNormalizesCase(t *testing.T) {
	if TagUUID("AngularJS") != TagUUID("angularjs") {
		t.Fatal("expected tag IDs to be case-insensitive")
	}
}
