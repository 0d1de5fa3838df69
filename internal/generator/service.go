package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-press/internal/content"
	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/permalink"
	"github.com/goliatone/go-press/internal/render"
	"github.com/goliatone/go-press/internal/validation"
	"github.com/goliatone/go-press/pkg/interfaces"
)

var (
	// ErrRouteConflict indicates two documents resolve to the same output file.
	ErrRouteConflict    = errors.New("generator: route conflict")
	errRendererRequired = errors.New("generator: template renderer is required")
	errStoreRequired    = errors.New("generator: content store is required")
	errResolverRequired = errors.New("generator: permalink resolver is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	OutputDir       string
	BaseURL         string
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	ValidateLinks   bool
	Workers         int

	Site SiteMetadata

	ThemeVariant      string
	CSSVariablePrefix string
	PartialFallbacks  map[string]string

	// DefaultTemplate names the template used when a document's header does
	// not request one.
	DefaultTemplate string
	IndexTemplate   string
	TagTemplate     string
}

// BuildOptions narrows the scope of a single generator run.
type BuildOptions struct {
	// Slugs limits the run to the named documents. Empty builds everything.
	Slugs []string
	// Drafts includes documents marked draft in their header.
	Drafts bool
	// Force renders every document even when the manifest says it is current.
	Force bool
	// DryRun renders without persisting artifacts.
	DryRun bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	DocumentsBuilt   int
	DocumentsSkipped int
	TagsBuilt        int
	AssetsBuilt      int
	AssetsSkipped    int
	Duration         time.Duration
	Rendered         []RenderedPage
	Diagnostics      []RenderDiagnostic
	Warnings         []BrokenReference
	Errors           []error
	DryRun           bool
}

// Dependencies lists the collaborators required by the generator.
type Dependencies struct {
	Store      *content.Store
	Parser     interfaces.MarkdownParser
	Renderer   interfaces.TemplateRenderer
	Storage    interfaces.StorageProvider
	Permalinks *permalink.Resolver
	Validator  *validation.HeaderValidator
	Theme      *render.Theme
	Themes     *render.ThemeSelector
	// ThemeFS exposes the theme directory for asset copying, usually
	// os.DirFS(theme.Path).
	ThemeFS fs.FS
	Logger  interfaces.LoggerProvider
}

// NewService wires a generator with the provided configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if strings.TrimSpace(cfg.DefaultTemplate) == "" {
		cfg.DefaultTemplate = "post.html"
	}
	if strings.TrimSpace(cfg.IndexTemplate) == "" {
		cfg.IndexTemplate = "index.html"
	}
	if strings.TrimSpace(cfg.TagTemplate) == "" {
		cfg.TagTemplate = "tag.html"
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		logger: logging.BuildLogger(deps.Logger),
		now:    time.Now,
	}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if s.deps.Store == nil {
		return nil, errStoreRequired
	}
	if s.deps.Permalinks == nil {
		return nil, errResolverRequired
	}

	start := s.now()
	generatedAt := start.UTC()

	docs, _, err := s.deps.Store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{DryRun: opts.DryRun}
	var errorsSlice []error

	docs = s.filterDocuments(docs, opts, &errorsSlice)
	idx := index.Build(docs)

	// Listings, feeds, the sitemap, and manifest retention always cover the
	// full eligible set; a slug filter narrows per-document rendering only.
	renderDocs := scopeToSlugs(docs, opts.Slugs)

	docKeys := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		docKeys[strings.ToLower(doc.ID.String())] = struct{}{}
	}

	siteMeta := s.cfg.Site
	siteMeta.BaseURL = strings.TrimRight(strings.TrimSpace(s.cfg.BaseURL), "/")
	if siteMeta.Metadata == nil {
		siteMeta.Metadata = map[string]any{}
	}

	themeCtx, err := s.resolveThemeContext()
	if err != nil {
		return nil, err
	}

	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")

	force := opts.Force || s.cfg.CleanBuild || !s.cfg.Incremental
	manifest, manifestErr := s.loadManifest(ctx)
	if manifestErr != nil {
		s.logger.Warn("build.manifest.unreadable", "error", manifestErr)
		manifest = newBuildManifest()
		force = true
	}

	routes, err := s.resolveRoutes(docs)
	if err != nil {
		return nil, err
	}

	buildMeta := BuildMetadata{GeneratedAt: generatedAt, Options: opts}

	var (
		mu       sync.Mutex
		rendered = make([]RenderedPage, 0, len(renderDocs))
	)
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.DocumentsSkipped++
			return
		}
		result.DocumentsBuilt++
		rendered = append(rendered, outcome.page)
	}

	workers := s.effectiveWorkerCount(len(renderDocs))
	if workers <= 1 || len(renderDocs) <= 1 {
		for _, doc := range renderDocs {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			default:
				collect(s.renderDocument(ctx, siteMeta, buildMeta, themeCtx, idx, doc, routes[doc.ID.String()], manifest, baseDir, force))
			}
		}
	} else {
		s.renderConcurrently(ctx, siteMeta, buildMeta, themeCtx, idx, renderDocs, routes, manifest, baseDir, force, workers, collect)
		if err := ctx.Err(); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	listingPages, listingErrs := s.renderListings(ctx, siteMeta, buildMeta, themeCtx, idx)
	errorsSlice = append(errorsSlice, listingErrs...)
	for _, page := range listingPages {
		if page.Template == s.cfg.TagTemplate {
			result.TagsBuilt++
		}
	}

	if opts.DryRun {
		result.Rendered = append(rendered, listingPages...)
		result.Duration = time.Since(start)
		if s.cfg.ValidateLinks {
			result.Warnings = s.warnBrokenLinks(result.Rendered, routes)
		}
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	if s.cfg.CleanBuild && s.deps.Storage != nil {
		if err := s.deps.Storage.RemoveAll(ctx, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	writer := newArtifactWriter(s.deps.Storage)
	allPages := append(append([]RenderedPage(nil), rendered...), listingPages...)
	if err := s.persistPages(ctx, writer, allPages, baseDir); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	if s.cfg.CopyAssets {
		summary, err := s.copyThemeAssets(ctx, writer, s.deps.ThemeFS, manifest, joinOutputPath(baseDir, ""), force, generatedAt)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		} else {
			result.AssetsBuilt = summary.Built
			result.AssetsSkipped = summary.Skipped
		}
	}

	sitemapPages := s.mergeRenderedForSitemap(docs, routes, allPages, manifest)
	if s.cfg.GenerateSitemap {
		if err := s.writeSitemap(ctx, writer, siteMeta, sitemapPages, generatedAt, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer, siteMeta, baseDir, generatedAt); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}
	if s.cfg.GenerateFeeds {
		if err := s.writeFeeds(ctx, writer, siteMeta, idx.Recent, generatedAt, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.ValidateLinks {
		result.Warnings = s.warnBrokenLinks(allPages, routes)
	}

	if len(errorsSlice) == 0 {
		manifest.GeneratedAt = generatedAt
		manifest.pruneDocuments(docKeys)
		for _, page := range allPages {
			if page.DocumentID == uuid.Nil || strings.TrimSpace(page.Checksum) == "" {
				continue
			}
			manifest.setDocument(manifestEntry{
				DocumentID:   page.DocumentID.String(),
				Slug:         page.Slug,
				Route:        page.Route,
				Output:       page.Output,
				Template:     page.Template,
				Hash:         page.Hash,
				Checksum:     page.Checksum,
				LastModified: page.LastModified,
				RenderedAt:   generatedAt,
			})
		}
		if err := s.persistManifest(ctx, writer, manifest, baseDir); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = allPages
	result.Duration = time.Since(start)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// Clean removes the output directory contents, manifest included.
func (s *service) Clean(ctx context.Context) error {
	if s.deps.Storage == nil {
		return nil
	}
	baseDir := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	return s.deps.Storage.RemoveAll(ctx, baseDir)
}

func (s *service) filterDocuments(docs []*interfaces.Document, opts BuildOptions, errorsSlice *[]error) []*interfaces.Document {
	filtered := make([]*interfaces.Document, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if doc.FrontMatter.Draft && !opts.Drafts {
			s.logger.Debug("build.document.draft_excluded", "path", doc.FilePath)
			continue
		}
		if s.deps.Validator != nil {
			if err := s.deps.Validator.Validate(doc.FrontMatter.Raw); err != nil {
				*errorsSlice = append(*errorsSlice, fmt.Errorf("generator: header validation for %s: %w", doc.FilePath, err))
				continue
			}
		}
		filtered = append(filtered, doc)
	}
	return filtered
}

// scopeToSlugs narrows the render set to the requested documents. An empty
// filter returns the input unchanged.
func scopeToSlugs(docs []*interfaces.Document, slugs []string) []*interfaces.Document {
	wanted := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		trimmed := strings.ToLower(strings.TrimSpace(slug))
		if trimmed != "" {
			wanted[trimmed] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return docs
	}

	scoped := make([]*interfaces.Document, 0, len(wanted))
	for _, doc := range docs {
		if _, ok := wanted[strings.ToLower(doc.Slug)]; ok {
			scoped = append(scoped, doc)
		}
	}
	return scoped
}

func (s *service) resolveThemeContext() (ThemeContext, error) {
	if s.deps.Themes == nil || s.deps.Theme == nil {
		return buildThemeContext(nil, s.cfg.CSSVariablePrefix, s.cfg.PartialFallbacks), nil
	}
	selection, err := s.deps.Themes.Selection(s.deps.Theme, s.cfg.ThemeVariant)
	if err != nil {
		return ThemeContext{}, err
	}
	return buildThemeContext(selection, s.cfg.CSSVariablePrefix, s.cfg.PartialFallbacks), nil
}

// resolveRoutes maps every document to its site route and rejects documents
// whose permalinks collide on the same output file.
func (s *service) resolveRoutes(docs []*interfaces.Document) (map[string]string, error) {
	routes := make(map[string]string, len(docs))
	byOutput := map[string][]string{}

	for _, doc := range docs {
		var route string
		if override := strings.TrimSpace(doc.FrontMatter.Permalink); override != "" {
			if !strings.HasPrefix(override, "/") {
				override = "/" + override
			}
			route = override
		} else {
			url, err := s.deps.Permalinks.Post(doc.Slug)
			if err != nil {
				return nil, fmt.Errorf("generator: permalink for %s: %w", doc.FilePath, err)
			}
			route = routeFromURL(url, s.cfg.BaseURL)
		}
		routes[doc.ID.String()] = route
		output := outputPathForRoute(route)
		byOutput[output] = append(byOutput[output], doc.FilePath)
	}

	var conflicts []error
	for output, paths := range byOutput {
		if len(paths) > 1 {
			conflicts = append(conflicts, fmt.Errorf("%w: %s claimed by %s", ErrRouteConflict, output, strings.Join(paths, ", ")))
		}
	}
	if len(conflicts) > 0 {
		return nil, errors.Join(conflicts...)
	}
	return routes, nil
}

func routeFromURL(url, baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	route := url
	if base != "" {
		route = strings.TrimPrefix(route, base)
	}
	if route == "" {
		route = "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return route
}

func (s *service) renderConcurrently(
	ctx context.Context,
	siteMeta SiteMetadata,
	buildMeta BuildMetadata,
	themeCtx ThemeContext,
	idx *index.Index,
	docs []*interfaces.Document,
	routes map[string]string,
	manifest *buildManifest,
	baseDir string,
	force bool,
	workers int,
	collect func(renderOutcome),
) {
	jobs := make(chan *interfaces.Document)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					collect(s.renderDocument(ctx, siteMeta, buildMeta, themeCtx, idx, doc, routes[doc.ID.String()], manifest, baseDir, force))
				}
			}
		}()
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- doc:
		}
	}
	close(jobs)
	wg.Wait()
}

func (s *service) renderDocument(
	ctx context.Context,
	siteMeta SiteMetadata,
	buildMeta BuildMetadata,
	themeCtx ThemeContext,
	idx *index.Index,
	doc *interfaces.Document,
	route string,
	manifest *buildManifest,
	baseDir string,
	force bool,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			DocumentID: doc.ID,
			Slug:       doc.Slug,
			Route:      route,
		},
	}

	select {
	case <-ctx.Done():
		outcome.err = ctx.Err()
		outcome.diagnostic.Err = ctx.Err()
		return outcome
	default:
	}

	templateName := strings.TrimSpace(doc.FrontMatter.Template)
	if templateName == "" {
		templateName = s.cfg.DefaultTemplate
	}
	outcome.diagnostic.Template = templateName

	hash := s.documentHash(doc, templateName, themeCtx)
	expectedOutput := joinOutputPath(baseDir, outputPathForRoute(route))
	if !force && manifest != nil && manifest.shouldSkipDocument(doc.ID, hash, expectedOutput) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	html := doc.BodyHTML
	if len(html) == 0 && s.deps.Parser != nil {
		parsed, err := s.deps.Parser.Parse(doc.Body)
		if err != nil {
			wrapped := fmt.Errorf("generator: parse %s: %w", doc.FilePath, err)
			outcome.err = wrapped
			outcome.diagnostic.Err = wrapped
			return outcome
		}
		html = parsed
	}

	url, err := s.deps.Permalinks.Post(doc.Slug)
	if err != nil {
		url = absoluteURL(s.cfg.BaseURL, route)
	}

	templateCtx := TemplateContext{
		Site: siteMeta,
		Document: &DocumentRenderingContext{
			Document: doc,
			HTML:     string(html),
			URL:      url,
			Tags:     tagGroupsFor(idx, doc),
		},
		Index: idx,
		Build: buildMeta,
		Theme: themeCtx,
	}

	renderStart := time.Now()
	renderedHTML, err := s.deps.Renderer.RenderTemplate(templateName, templateCtx)
	outcome.diagnostic.Duration = time.Since(renderStart)
	if err != nil {
		wrapped := fmt.Errorf("generator: render template %q for %s: %w", templateName, doc.FilePath, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		DocumentID:   doc.ID,
		Slug:         doc.Slug,
		Route:        route,
		Template:     templateName,
		HTML:         renderedHTML,
		Hash:         hash,
		LastModified: doc.LastModified,
		Duration:     outcome.diagnostic.Duration,
	}
	return outcome
}

// renderListings produces the home page and one listing per tag group.
func (s *service) renderListings(
	ctx context.Context,
	siteMeta SiteMetadata,
	buildMeta BuildMetadata,
	themeCtx ThemeContext,
	idx *index.Index,
) ([]RenderedPage, []error) {
	var pages []RenderedPage
	var errs []error

	renderOne := func(templateName, route string, templateCtx TemplateContext) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return
		}
		renderStart := time.Now()
		html, err := s.deps.Renderer.RenderTemplate(templateName, templateCtx)
		if err != nil {
			errs = append(errs, fmt.Errorf("generator: render listing %q (%s): %w", templateName, route, err))
			return
		}
		pages = append(pages, RenderedPage{
			Route:    route,
			Template: templateName,
			HTML:     html,
			Duration: time.Since(renderStart),
		})
	}

	renderOne(s.cfg.IndexTemplate, "/", TemplateContext{
		Site:  siteMeta,
		Index: idx,
		Build: buildMeta,
		Theme: themeCtx,
	})

	for _, group := range idx.Tags {
		url, err := s.deps.Permalinks.Tag(group.Slug)
		if err != nil {
			errs = append(errs, fmt.Errorf("generator: tag permalink %q: %w", group.Slug, err))
			continue
		}
		route := routeFromURL(url, s.cfg.BaseURL)
		renderOne(s.cfg.TagTemplate, route, TemplateContext{
			Site:  siteMeta,
			Tag:   &TagRenderingContext{Tag: group, URL: url},
			Index: idx,
			Build: buildMeta,
			Theme: themeCtx,
		})
	}

	return pages, errs
}

func (s *service) persistPages(ctx context.Context, writer artifactWriter, pages []RenderedPage, baseDir string) error {
	if len(pages) == 0 {
		return nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return err
		}
	}
	for i := range pages {
		destRel := outputPathForRoute(pages[i].Route)
		fullPath := joinOutputPath(baseDir, destRel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(fullPath)); err != nil {
			return err
		}
		checksum := computeHashFromString(pages[i].HTML)
		pages[i].Output = fullPath
		pages[i].Checksum = checksum

		category := categoryPage
		if pages[i].Template == s.cfg.TagTemplate {
			category = categoryTag
		}
		metadata := map[string]string{
			"route":    pages[i].Route,
			"template": pages[i].Template,
		}
		if pages[i].DocumentID != uuid.Nil {
			metadata["document_id"] = pages[i].DocumentID.String()
		}
		req := interfaces.WriteRequest{
			Path:        fullPath,
			Content:     strings.NewReader(pages[i].HTML),
			Size:        int64(len(pages[i].HTML)),
			Category:    category,
			ContentType: "text/html; charset=utf-8",
			Checksum:    checksum,
			Metadata:    metadata,
		}
		if err := writer.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// mergeRenderedForSitemap combines this run's pages with manifest entries for
// documents that were skipped, so incremental builds still emit a full map.
func (s *service) mergeRenderedForSitemap(
	docs []*interfaces.Document,
	routes map[string]string,
	rendered []RenderedPage,
	manifest *buildManifest,
) []RenderedPage {
	byRoute := make(map[string]struct{}, len(rendered))
	merged := append([]RenderedPage(nil), rendered...)
	for _, page := range rendered {
		byRoute[page.Route] = struct{}{}
	}
	for _, doc := range docs {
		route := routes[doc.ID.String()]
		if _, ok := byRoute[route]; ok {
			continue
		}
		entry, ok := manifest.lookupDocument(doc.ID)
		if !ok {
			continue
		}
		merged = append(merged, RenderedPage{
			DocumentID:   doc.ID,
			Slug:         doc.Slug,
			Route:        entry.Route,
			Output:       entry.Output,
			Template:     entry.Template,
			Hash:         entry.Hash,
			Checksum:     entry.Checksum,
			LastModified: entry.LastModified,
		})
	}
	return merged
}

func (s *service) writeSitemap(ctx context.Context, writer artifactWriter, siteMeta SiteMetadata, pages []RenderedPage, generatedAt time.Time, baseDir string) error {
	content := buildSitemap(siteMeta.BaseURL, pages, generatedAt)
	fullPath := joinOutputPath(baseDir, "sitemap.xml")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	return writer.WriteFile(ctx, interfaces.WriteRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
		Metadata:    map[string]string{"generated_at": generatedAt.Format(time.RFC3339)},
	})
}

func (s *service) writeRobots(ctx context.Context, writer artifactWriter, siteMeta SiteMetadata, baseDir string, generatedAt time.Time) error {
	content := buildRobots(siteMeta.BaseURL, s.cfg.GenerateSitemap)
	fullPath := joinOutputPath(baseDir, "robots.txt")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(fullPath)); err != nil {
		return err
	}
	return writer.WriteFile(ctx, interfaces.WriteRequest{
		Path:        fullPath,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    categoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
		Metadata:    map[string]string{"generated_at": generatedAt.Format(time.RFC3339)},
	})
}

func (s *service) writeFeeds(ctx context.Context, writer artifactWriter, siteMeta SiteMetadata, docs []*interfaces.Document, generatedAt time.Time, baseDir string) error {
	items := s.buildFeedItems(docs)
	if len(items) == 0 {
		return nil
	}

	rssContent := buildRSSFeed(siteMeta, items, generatedAt)
	rssPath := joinOutputPath(baseDir, "feed.xml")
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(rssPath)); err != nil {
		return err
	}
	if err := writer.WriteFile(ctx, interfaces.WriteRequest{
		Path:        rssPath,
		Content:     strings.NewReader(rssContent),
		Size:        int64(len(rssContent)),
		Category:    categoryFeed,
		ContentType: "application/rss+xml",
		Checksum:    computeHashFromString(rssContent),
		Metadata:    map[string]string{"feed_type": "rss", "generated_at": generatedAt.Format(time.RFC3339)},
	}); err != nil {
		return err
	}

	atomContent := buildAtomFeed(siteMeta, items, generatedAt)
	atomPath := joinOutputPath(baseDir, "feed.atom.xml")
	return writer.WriteFile(ctx, interfaces.WriteRequest{
		Path:        atomPath,
		Content:     strings.NewReader(atomContent),
		Size:        int64(len(atomContent)),
		Category:    categoryFeed,
		ContentType: "application/atom+xml",
		Checksum:    computeHashFromString(atomContent),
		Metadata:    map[string]string{"feed_type": "atom", "generated_at": generatedAt.Format(time.RFC3339)},
	})
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	if s.deps.Storage == nil {
		return newBuildManifest(), nil
	}
	target := s.manifestTargetPath()
	data, err := s.deps.Storage.ReadFile(ctx, target)
	if err != nil {
		// A missing manifest means a cold build, not a failure.
		return newBuildManifest(), nil
	}
	return parseManifest(data)
}

func (s *service) manifestTargetPath() string {
	base := strings.Trim(strings.TrimSpace(s.cfg.OutputDir), "/")
	return joinOutputPath(base, manifestFileName)
}

func (s *service) persistManifest(ctx context.Context, writer artifactWriter, manifest *buildManifest, baseDir string) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	target := s.manifestTargetPath()
	if err := ensureDir(ctx, writer, map[string]struct{}{}, path.Dir(target)); err != nil {
		return err
	}
	return writer.WriteFile(ctx, interfaces.WriteRequest{
		Path:        target,
		Content:     strings.NewReader(string(data)),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
		Metadata:    map[string]string{"version": strconv.Itoa(manifest.Version)},
	})
}

func (s *service) warnBrokenLinks(pages []RenderedPage, routes map[string]string) []BrokenReference {
	known := map[string]struct{}{
		"index.html":  {},
		"feed.xml":    {},
		"sitemap.xml": {},
		"robots.txt":  {},
	}
	for _, page := range pages {
		known[outputPathForRoute(page.Route)] = struct{}{}
	}
	for _, route := range routes {
		known[outputPathForRoute(route)] = struct{}{}
	}

	broken := validateLinks(pages, s.cfg.BaseURL, known)
	for _, ref := range broken {
		s.logger.Warn("build.link.broken", "source", ref.Source, "target", ref.Target)
	}
	return broken
}

func (s *service) documentHash(doc *interfaces.Document, templateName string, themeCtx ThemeContext) string {
	var builder strings.Builder
	builder.Write(doc.Checksum)
	builder.WriteString("::")
	builder.WriteString(templateName)
	builder.WriteString("::")
	builder.WriteString(themeCtx.Name)
	builder.WriteString("::")
	builder.WriteString(themeCtx.Variant)
	return computeHashFromString(builder.String())
}

func (s *service) effectiveWorkerCount(docCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if docCount > 0 && workers > docCount {
		return docCount
	}
	return workers
}

func tagGroupsFor(idx *index.Index, doc *interfaces.Document) []index.TagGroup {
	var groups []index.TagGroup
	for _, label := range doc.FrontMatter.Tags {
		if group, ok := idx.Tag(label); ok {
			groups = append(groups, group)
		}
	}
	return groups
}
