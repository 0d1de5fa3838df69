package permalink

import "testing"

func newResolver(t *testing.T, cfg Config) *Resolver {
	t.Helper()
	resolver, err := NewResolver(cfg)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return resolver
}

func TestPostURL(t *testing.T) {
	resolver := newResolver(t, Config{BaseURL: "https://blog.example.com"})

	url, err := resolver.Post("testing-services")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if url != "https://blog.example.com/posts/testing-services/" {
		t.Errorf("url = %q", url)
	}
}

func TestTagURL(t *testing.T) {
	resolver := newResolver(t, Config{BaseURL: "https://blog.example.com"})

	url, err := resolver.Tag("angularjs")
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if url != "https://blog.example.com/tags/angularjs/" {
		t.Errorf("url = %q", url)
	}
}

func TestArchiveURLZeroPadsMonth(t *testing.T) {
	resolver := newResolver(t, Config{BaseURL: "https://blog.example.com"})

	url, err := resolver.Archive(2014, 3)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if url != "https://blog.example.com/archive/2014/03/" {
		t.Errorf("url = %q", url)
	}
}

func TestCustomPathTemplate(t *testing.T) {
	resolver := newResolver(t, Config{
		BaseURL: "https://blog.example.com",
		Paths: map[string]string{
			RoutePost: "/:slug.html",
		},
	})

	url, err := resolver.Post("testing-services")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if url != "https://blog.example.com/testing-services.html" {
		t.Errorf("url = %q", url)
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	resolver := newResolver(t, Config{BaseURL: "https://blog.example.com/"})

	url, err := resolver.Feed()
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if url != "https://blog.example.com/feed.xml" {
		t.Errorf("url = %q", url)
	}
}
