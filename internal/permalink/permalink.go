package permalink

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// Route names registered under the site group.
const (
	RoutePost    = "post"
	RouteTag     = "tag"
	RouteArchive = "archive"
	RouteHome    = "home"
	RouteFeed    = "feed"
	RouteSitemap = "sitemap"
)

const siteGroup = "site"

// Config controls permalink construction for a site.
type Config struct {
	// BaseURL is the absolute site root, e.g. "https://blog.example.com".
	BaseURL string
	// Paths overrides the default route templates. Keys are route names,
	// values are urlkit path templates (":slug" style parameters).
	Paths map[string]string
}

func defaultPaths() map[string]string {
	return map[string]string{
		RoutePost:    "/posts/:slug/",
		RouteTag:     "/tags/:tag/",
		RouteArchive: "/archive/:year/:month/",
		RouteHome:    "/",
		RouteFeed:    "/feed.xml",
		RouteSitemap: "/sitemap.xml",
	}
}

// Resolver builds canonical URLs for site artifacts through a go-urlkit
// route manager. A single resolver serves the whole build.
type Resolver struct {
	manager *urlkit.RouteManager
	baseURL string
}

// NewResolver constructs a resolver from the supplied config. Missing routes
// fall back to the default templates.
func NewResolver(cfg Config) (*Resolver, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")

	paths := defaultPaths()
	for name, template := range cfg.Paths {
		trimmed := strings.TrimSpace(template)
		if trimmed == "" {
			continue
		}
		paths[strings.TrimSpace(name)] = trimmed
	}

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    siteGroup,
				BaseURL: base,
				Paths:   paths,
			},
		},
	})

	return &Resolver{manager: manager, baseURL: base}, nil
}

// BaseURL returns the configured site root without a trailing slash.
func (r *Resolver) BaseURL() string {
	return r.baseURL
}

// Post returns the canonical URL for a document slug.
func (r *Resolver) Post(slug string) (string, error) {
	return r.build(RoutePost, map[string]any{"slug": slug})
}

// Tag returns the canonical URL for a tag slug.
func (r *Resolver) Tag(tagSlug string) (string, error) {
	return r.build(RouteTag, map[string]any{"tag": tagSlug})
}

// Archive returns the canonical URL for a year/month archive page.
func (r *Resolver) Archive(year, month int) (string, error) {
	return r.build(RouteArchive, map[string]any{
		"year":  fmt.Sprintf("%04d", year),
		"month": fmt.Sprintf("%02d", month),
	})
}

// Home returns the canonical URL for the site root.
func (r *Resolver) Home() (string, error) {
	return r.build(RouteHome, nil)
}

// Feed returns the canonical URL for the RSS feed.
func (r *Resolver) Feed() (string, error) {
	return r.build(RouteFeed, nil)
}

// Sitemap returns the canonical URL for the sitemap.
func (r *Resolver) Sitemap() (string, error) {
	return r.build(RouteSitemap, nil)
}

func (r *Resolver) build(route string, params map[string]any) (url string, err error) {
	if r == nil || r.manager == nil {
		return "", fmt.Errorf("permalink: resolver not configured")
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("permalink: route %q: %v", route, rec)
		}
	}()

	builder := r.manager.Group(siteGroup).Builder(route)
	for key, val := range params {
		builder.WithParam(key, val)
	}
	return builder.Build()
}
