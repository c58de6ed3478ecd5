package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"website/internal/apps"
	"website/internal/cachestore"
	"website/internal/config"
	"website/internal/database"
	"website/internal/generators"
	"website/internal/gql"
	"website/internal/loader"
	"website/internal/markdown"
	"website/internal/pages"
	"website/internal/records"
	"website/internal/render"
	"website/internal/router"
)

const (
	sourceSQL     = "sql"
	sourceGraphQL = "graphql"

	cacheBackendMemory = "memory"
	cacheBackendRedis  = "redis"
)

// App is the assembled resolution stack shared by every command.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	DB       *database.DB
	Scanner  *pages.Scanner
	Index    *generators.Index
	Contexts *router.Cache
	Renderer *render.Engine

	closers []func() error
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}
	if err := app.build(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config
	fs := afero.NewOsFs()

	site, err := config.LoadSite(cfg.SiteFile)
	if err != nil {
		return err
	}
	registry, err := apps.Load(fs, site)
	if err != nil {
		return fmt.Errorf("load apps: %w", err)
	}

	highlighter := markdown.NewHighlighter(markdown.CodeStyles{Light: cfg.CodeStyleLight, Dark: cfg.CodeStyleDark})
	md, err := markdown.New(cfg.MarkdownEngine, markdown.Options{RootURL: cfg.RootURL, Highlighter: highlighter})
	if err != nil {
		return err
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	types := generators.NewRegistry()
	var graphQLSource *gql.RecordSource
	for _, t := range records.Types(md, site.Generators) {
		switch source := strings.ToLower(strings.TrimSpace(site.Generators[t.Name].Source)); source {
		case "", sourceSQL:
		case sourceGraphQL:
			if graphQLSource == nil {
				if strings.TrimSpace(cfg.GraphQLEndpoint) == "" {
					return fmt.Errorf("generator %q reads from graphql but WEBSITE_GRAPHQL_ENDPOINT is empty", t.Name)
				}
				graphQLSource = gql.NewRecordSource(gql.NewClient(cfg))
			}
			t.Source = graphQLSource
		default:
			return fmt.Errorf("generator %q: unknown source %q", t.Name, source)
		}
		types.Register(t)
	}

	templates := loader.New(fs, registry, render.Templates())
	a.Scanner = pages.NewScanner(fs, registry, pages.NewBuilder(fs, templates, md), store, pages.ScannerOptions{
		PackageMarker: cfg.PackageMarker,
		ReadCache:     cfg.CachingEnabled(),
		Logger:        a.Logger,
	})
	a.Index = generators.NewIndex(registry, types, generators.NewSQLSource(db), store, a.Logger)
	a.Contexts = router.NewCache(store, router.NewResolver(a.Scanner, a.Index), router.CacheOptions{
		CachingEnabled: cfg.CachingEnabled(),
		Logger:         a.Logger,
	}, a.Scanner, a.Index)
	a.Renderer = render.New(templates, render.WithHighlighter(highlighter))
	return nil
}

func (a *App) openStore(ctx context.Context) (cachestore.Store, error) {
	switch a.Config.CacheBackend {
	case "", cacheBackendMemory:
		return cachestore.NewMemory(a.Config.CacheMaxEntries), nil
	case cacheBackendRedis:
		store, err := cachestore.DialRedis(ctx, a.Config.RedisURL, a.Config.RedisKeyPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.Config.CacheBackend)
	}
}

func (a *App) Close() error {
	var errs []error
	for idx := len(a.closers) - 1; idx >= 0; idx-- {
		errs = append(errs, a.closers[idx]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
