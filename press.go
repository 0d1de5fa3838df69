// Package press assembles the content pipeline into a single embeddable
// module: a frontmatter content store, a Markdown renderer with themed
// templates, a tag and recency index, and a static site generator.
package press

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/buildcache"
	buildcmd "github.com/goliatone/go-press/internal/commands/build"
	"github.com/goliatone/go-press/internal/content"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/index"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/logging/gologger"
	"github.com/goliatone/go-press/internal/markdown"
	"github.com/goliatone/go-press/internal/permalink"
	"github.com/goliatone/go-press/internal/render"
	"github.com/goliatone/go-press/internal/storage"
	"github.com/goliatone/go-press/internal/validation"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/uptrace/bun"
)

// Module is the top level press runtime facade.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider

	store      *content.Store
	parser     interfaces.MarkdownParser
	renderer   interfaces.TemplateRenderer
	permalinks *permalink.Resolver
	validator  *validation.HeaderValidator
	theme      *render.Theme
	generator  generator.Service
	history    buildcache.Repository

	buildHandler *buildcmd.BuildSiteHandler
	cleanHandler *buildcmd.CleanSiteHandler

	db *bun.DB
}

// Option customizes module construction.
type Option func(*Module)

// WithLoggerProvider overrides the logger provider built from the
// configuration's logging section.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// New wires a press module from the provided configuration.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	store, err := content.NewStore(content.Config{
		BasePath:  cfg.Content.Dir,
		Pattern:   cfg.Content.Pattern,
		Recursive: cfg.Content.Recursive,
		Strict:    cfg.Content.Strict,
	}, m.provider)
	if err != nil {
		return nil, err
	}
	m.store = store

	m.parser = markdown.NewGoldmarkParser(interfaces.ParseOptions{})

	validator, err := validation.NewHeaderValidator(validation.DefaultHeaderSchema())
	if err != nil {
		return nil, err
	}
	m.validator = validator

	m.permalinks, err = permalink.NewResolver(permalink.Config{
		BaseURL: cfg.Site.BaseURL,
		Paths:   cfg.Site.Permalinks,
	})
	if err != nil {
		return nil, err
	}

	if err := m.wireTheme(); err != nil {
		return nil, err
	}
	if err := m.wireGenerator(); err != nil {
		return nil, err
	}
	if err := m.wireHistory(); err != nil {
		return nil, err
	}

	logger := logging.ModuleLogger(m.provider, "press")
	m.buildHandler = buildcmd.NewBuildSiteHandler(m.generator, logger)
	m.cleanHandler = buildcmd.NewCleanSiteHandler(m.generator, logger)

	return m, nil
}

func (m *Module) wireTheme() error {
	themePath := strings.TrimSpace(m.cfg.Theme.Path)
	if themePath == "" {
		return fmt.Errorf("press: theme path required")
	}

	// Directories without a theme.json manifest still supply templates,
	// they just render without design tokens.
	if _, err := os.Stat(filepath.Join(themePath, "theme.json")); err == nil {
		m.theme = render.NewTheme(m.cfg.Theme.Name, themePath)
	}

	renderer, err := render.NewTemplateRenderer(themePath)
	if err != nil {
		return err
	}
	m.renderer = renderer
	return nil
}

func (m *Module) wireGenerator() error {
	// Artifact paths already carry the output directory prefix, so the
	// storage provider is rooted at the working directory.
	root, err := os.Getwd()
	if err != nil {
		return err
	}
	store, err := storage.NewFilesystemProvider(root)
	if err != nil {
		return err
	}

	selector := render.NewThemeSelector(render.SelectorConfig{
		DefaultTheme:   m.cfg.Theme.Name,
		DefaultVariant: m.cfg.Theme.Variant,
	}, nil)

	m.generator = generator.NewService(generator.Config{
		OutputDir:       m.cfg.Build.OutputDir,
		BaseURL:         m.cfg.Site.BaseURL,
		CleanBuild:      m.cfg.Build.CleanBuild,
		Incremental:     m.cfg.Build.Incremental,
		CopyAssets:      m.cfg.Build.CopyAssets,
		GenerateSitemap: m.cfg.Build.GenerateSitemap,
		GenerateRobots:  m.cfg.Build.GenerateRobots,
		GenerateFeeds:   m.cfg.Build.GenerateFeeds,
		ValidateLinks:   m.cfg.Build.ValidateLinks,
		Workers:         m.cfg.Build.Workers,
		Site: generator.SiteMetadata{
			Title:       m.cfg.Site.Title,
			Description: m.cfg.Site.Description,
			Author:      m.cfg.Site.Author,
			BaseURL:     m.cfg.Site.BaseURL,
		},
		ThemeVariant:      m.cfg.Theme.Variant,
		CSSVariablePrefix: m.cfg.Theme.CSSVariablePrefix,
		DefaultTemplate:   m.cfg.Theme.DefaultTemplate,
		IndexTemplate:     m.cfg.Theme.IndexTemplate,
		TagTemplate:       m.cfg.Theme.TagTemplate,
	}, generator.Dependencies{
		Store:      m.store,
		Parser:     m.parser,
		Renderer:   m.renderer,
		Storage:    store,
		Permalinks: m.permalinks,
		Validator:  m.validator,
		Theme:      m.theme,
		Themes:     selector,
		ThemeFS:    os.DirFS(m.cfg.Theme.Path),
		Logger:     m.provider,
	})
	return nil
}

func (m *Module) wireHistory() error {
	switch strings.ToLower(strings.TrimSpace(m.cfg.Cache.Driver)) {
	case "sqlite":
		db, err := buildcache.OpenSQLite(context.Background(), m.cfg.Cache.Path)
		if err != nil {
			return err
		}
		m.db = db
		m.history = buildcache.NewBunRepository(db)
	default:
		m.history = buildcache.NewFileRepository(m.cfg.Cache.Path)
	}
	return nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.cfg
}

// Logger returns the module's logger provider.
func (m *Module) Logger() interfaces.LoggerProvider {
	return m.provider
}

// Store returns the content store.
func (m *Module) Store() *content.Store {
	return m.store
}

// Generator returns the static site generator service.
func (m *Module) Generator() GeneratorService {
	return m.generator
}

// Permalinks returns the URL resolver.
func (m *Module) Permalinks() *permalink.Resolver {
	return m.permalinks
}

// History returns the build history repository.
func (m *Module) History() buildcache.Repository {
	return m.history
}

// Build runs a generator build through the command layer and records the
// outcome in the build history.
func (m *Module) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	started := time.Now()

	var result *BuildResult
	msg := buildcmd.BuildSiteCommand{
		Slugs:  opts.Slugs,
		Drafts: opts.Drafts,
		Force:  opts.Force,
		DryRun: opts.DryRun,
		ResultCallback: func(env buildcmd.ResultEnvelope) {
			result = env.Result
		},
	}

	execErr := m.buildHandler.Execute(ctx, msg)
	m.recordBuild(ctx, started, result, execErr)
	if execErr != nil {
		return result, execErr
	}
	return result, nil
}

// Clean removes every generated artifact.
func (m *Module) Clean(ctx context.Context) error {
	return m.cleanHandler.Execute(ctx, buildcmd.CleanSiteCommand{})
}

// Index loads every document and builds the tag and recency index.
func (m *Module) Index(ctx context.Context) (*index.Index, error) {
	docs, _, err := m.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return index.Build(docs), nil
}

func (m *Module) recordBuild(ctx context.Context, started time.Time, result *BuildResult, execErr error) {
	if m.history == nil {
		return
	}

	record := &buildcache.Record{
		StartedAt: started,
		Succeeded: execErr == nil,
	}
	if execErr != nil {
		record.Error = execErr.Error()
	}
	if result != nil {
		record.Duration = result.Duration
		record.DocumentsBuilt = result.DocumentsBuilt
		record.DocumentsSkipped = result.DocumentsSkipped
		record.TagsBuilt = result.TagsBuilt
		record.AssetsBuilt = result.AssetsBuilt
		record.DryRun = result.DryRun
	}

	logger := logging.ModuleLogger(m.provider, "press")
	if err := m.history.Save(ctx, record); err != nil {
		logger.Warn("press.history.save_failed", "error", err)
		return
	}
	if keep := m.cfg.Cache.Keep; keep > 0 {
		if err := m.history.Prune(ctx, keep); err != nil {
			logger.Warn("press.history.prune_failed", "error", err)
		}
	}
}

// Close releases resources held by the module, such as the sqlite history
// database.
func (m *Module) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
