package pages

import (
	"context"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"website/internal/apps"
	"website/internal/cachestore"
	"website/internal/logging"
)

// CacheKey holds the encoded page list in the cache store.
const CacheKey = "_website_pages"

// Roots are scanned in this order inside every app; the legacy root first.
var Roots = []string{filepath.Join("templates", "pages"), "www"}

type ScannerOptions struct {
	// PackageMarker, when set, is created empty in every scanned directory.
	PackageMarker string
	// ReadCache allows serving the page list from the cache store. The list
	// is written back either way.
	ReadCache bool
	Logger    *zap.Logger
}

// Scanner discovers file-based pages across installed apps.
type Scanner struct {
	fs      afero.Fs
	apps    apps.Registry
	builder *Builder
	opts    ScannerOptions
	logger  *zap.Logger
	cache   *cachestore.Value[[]Descriptor]
}

func NewScanner(fs afero.Fs, registry apps.Registry, builder *Builder, store cachestore.Store, opts ScannerOptions) *Scanner {
	return &Scanner{
		fs:      fs,
		apps:    registry,
		builder: builder,
		opts:    opts,
		logger:  logging.OrNop(opts.Logger),
		cache:   cachestore.NewValue[[]Descriptor](store, CacheKey),
	}
}

// Pages returns every discovered page in scan order.
func (s *Scanner) Pages(ctx context.Context) ([]Descriptor, error) {
	pages, err := s.cache.Get(ctx, s.opts.ReadCache, s.scan)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// Lookup finds the page for a route. When several files map to the same
// route the one discovered last wins.
func (s *Scanner) Lookup(ctx context.Context, route string) (Descriptor, bool, error) {
	pages, err := s.Pages(ctx)
	if err != nil {
		return Descriptor{}, false, err
	}

	var (
		found Descriptor
		ok    bool
	)
	for _, page := range pages {
		if page.RouteName == route {
			found, ok = page, true
		}
	}
	return found, ok, nil
}

func (s *Scanner) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

// Dirs lists the existing page roots in scan order.
func (s *Scanner) Dirs() []string {
	var dirs []string
	for _, app := range s.apps.InstalledApps() {
		for _, root := range Roots {
			dir := filepath.Join(s.apps.AppRootPath(app), root)
			if exists, _ := afero.DirExists(s.fs, dir); exists {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

func (s *Scanner) scan(ctx context.Context) ([]Descriptor, error) {
	pages := make([]Descriptor, 0, 32)
	seen := make(map[string]string)

	for _, app := range s.apps.InstalledApps() {
		appRoot := s.apps.AppRootPath(app)
		for _, root := range Roots {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			found, err := s.scanRoot(filepath.Join(appRoot, root), app, appRoot)
			if err != nil {
				return nil, err
			}

			for _, page := range found {
				if previous, dup := seen[page.RouteName]; dup {
					s.logger.Warn("page route defined twice",
						zap.String("route", page.RouteName),
						zap.String("previous", previous),
						zap.String("template", page.Template),
						zap.String("app", app),
					)
				}
				seen[page.RouteName] = page.Template
			}
			pages = append(pages, found...)
		}
	}

	s.logger.Debug("scanned pages", zap.Int("count", len(pages)))
	return pages, nil
}

func (s *Scanner) scanRoot(root, app, appRoot string) ([]Descriptor, error) {
	exists, err := afero.DirExists(s.fs, root)
	if err != nil {
		return nil, fmt.Errorf("stat page root %q: %w", root, err)
	}
	if !exists {
		return nil, nil
	}

	var pages []Descriptor
	err = afero.Walk(s.fs, root, func(name string, info iofs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return s.ensureMarker(name)
		}

		dir, fileName := filepath.Split(name)
		dir = filepath.Clean(dir)
		if !s.eligible(dir, fileName) {
			return nil
		}

		page, err := s.builder.BuildPageInfo(root, dir, app, appRoot, fileName)
		if err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan page root %q: %w", root, err)
	}

	return pages, nil
}

func (s *Scanner) eligible(dir, fileName string) bool {
	stem, ext, ok := splitExt(fileName)
	if !ok {
		return false
	}

	switch ext {
	case "html", "xml", "md":
		return true
	case "js", "css":
		// Assets next to an HTML page of the same name belong to that page.
		exists, _ := afero.Exists(s.fs, filepath.Join(dir, stem+".html"))
		return !exists
	default:
		return false
	}
}

func (s *Scanner) ensureMarker(dir string) error {
	if s.opts.PackageMarker == "" {
		return nil
	}

	f, err := s.fs.OpenFile(filepath.Join(dir, s.opts.PackageMarker), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create package marker in %q: %w", dir, err)
	}
	return f.Close()
}
