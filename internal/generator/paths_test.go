package generator

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestOutputPathForRoute(t *testing.T) {
	cases := []struct {
		route string
		want  string
	}{
		{"/", "index.html"},
		{"/posts/testing-services/", "posts/testing-services/index.html"},
		{"/posts/testing-services", "posts/testing-services/index.html"},
		{"/tags/angularjs/", "tags/angularjs/index.html"},
		{"/feed.xml", "feed.xml"},
		{"/assets/site.css", "assets/site.css"},
		{"", "index.html"},
	}
	for _, tc := range cases {
		if got := outputPathForRoute(tc.route); got != tc.want {
			t.Errorf("outputPathForRoute(%q) = %q, want %q", tc.route, got, tc.want)
		}
	}
}

func TestValidateLinksReportsMissingTargets(t *testing.T) {
	pages := []RenderedPage{
		{
			Route: "/posts/testing-services/",
			HTML: `<a href="/posts/mocking-http/">mocks</a>` +
				`<a href="https://blog.example.com/tags/angularjs/">tag</a>` +
				`<a href="/posts/missing/">gone</a>` +
				`<a href="https://other.example.org/">external</a>` +
				`<img src="/assets/missing.png">`,
		},
	}
	known := map[string]struct{}{
		"posts/mocking-http/index.html": {},
		"tags/angularjs/index.html":     {},
	}

	broken := validateLinks(pages, "https://blog.example.com", known)
	if len(broken) != 2 {
		t.Fatalf("broken = %+v, want 2 entries", broken)
	}
	if broken[0].Target != "/assets/missing.png" {
		t.Errorf("broken[0] = %+v", broken[0])
	}
	if broken[1].Target != "/posts/missing/" {
		t.Errorf("broken[1] = %+v", broken[1])
	}
}

func TestValidateLinksDeduplicates(t *testing.T) {
	pages := []RenderedPage{
		{Route: "/a/", HTML: `<a href="/gone/">x</a><a href="/gone/">y</a>`},
	}

	broken := validateLinks(pages, "", map[string]struct{}{})
	if len(broken) != 1 {
		t.Errorf("broken = %+v, want single entry", broken)
	}
}

func TestBuildSitemapSortsAndDeduplicates(t *testing.T) {
	stamp := time.Date(2014, time.March, 2, 10, 0, 0, 0, time.UTC)
	pages := []RenderedPage{
		{Route: "/posts/z/", LastModified: stamp},
		{Route: "/posts/a/"},
		{Route: "/posts/z/", LastModified: stamp},
	}

	sitemap := buildSitemap("https://blog.example.com", pages, stamp)
	first := strings.Index(sitemap, "https://blog.example.com/posts/a/")
	second := strings.Index(sitemap, "https://blog.example.com/posts/z/")
	if first == -1 || second == -1 || first > second {
		t.Errorf("sitemap ordering wrong:\n%s", sitemap)
	}
	if strings.Count(sitemap, "/posts/z/") != 1 {
		t.Errorf("duplicate route not collapsed:\n%s", sitemap)
	}
	if !strings.Contains(sitemap, "2014-03-02T10:00:00Z") {
		t.Errorf("lastmod missing:\n%s", sitemap)
	}
}

func TestBuildRobotsIncludesSitemap(t *testing.T) {
	robots := buildRobots("https://blog.example.com", true)
	if !strings.Contains(robots, "Sitemap: https://blog.example.com/sitemap.xml") {
		t.Errorf("robots = %q", robots)
	}
}

func TestManifestRoundTripIsStable(t *testing.T) {
	manifest := newBuildManifest()
	manifest.GeneratedAt = time.Date(2014, time.April, 1, 0, 0, 0, 0, time.UTC)
	for _, slug := range []string{"zulu", "alpha", "mike"} {
		manifest.setDocument(manifestEntry{
			DocumentID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(slug)).String(),
			Slug:       slug,
			Route:      "/posts/" + slug + "/",
			Output:     "public/posts/" + slug + "/index.html",
			Hash:       "h-" + slug,
		})
	}

	first, err := manifest.marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := parseManifest(first)
	if err != nil {
		t.Fatalf("parseManifest: %v", err)
	}
	second, err := parsed.marshal()
	if err != nil {
		t.Fatalf("marshal again: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("marshal not stable:\n%s\nvs\n%s", first, second)
	}
}

func TestManifestShouldSkipDocument(t *testing.T) {
	id := uuid.New()
	manifest := newBuildManifest()
	manifest.setDocument(manifestEntry{
		DocumentID: id.String(),
		Output:     "public/posts/x/index.html",
		Hash:       "abc",
	})

	if !manifest.shouldSkipDocument(id, "abc", "public/posts/x/index.html") {
		t.Error("unchanged document not skipped")
	}
	if manifest.shouldSkipDocument(id, "def", "public/posts/x/index.html") {
		t.Error("changed hash skipped")
	}
	if manifest.shouldSkipDocument(id, "abc", "public/posts/y/index.html") {
		t.Error("moved output skipped")
	}
	if manifest.shouldSkipDocument(uuid.New(), "abc", "public/posts/x/index.html") {
		t.Error("unknown document skipped")
	}
}
