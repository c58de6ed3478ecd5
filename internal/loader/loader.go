package loader

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"website/internal/apps"
)

// Loader returns raw template source for a template reference such as
// "www/blog/index.html". References are relative to an app root.
type Loader interface {
	GetSource(ref string) (string, error)
	// GetAppSource reads ref from one app only. Pages use it so a page
	// shadowed by another app still renders its own file.
	GetAppSource(app, ref string) (string, error)
}

// AppLoader searches every installed app in install order and then the
// fallback filesystem.
type AppLoader struct {
	fs       afero.Fs
	apps     apps.Registry
	fallback iofs.FS
}

func New(fs afero.Fs, registry apps.Registry, fallback iofs.FS) *AppLoader {
	return &AppLoader{fs: fs, apps: registry, fallback: fallback}
}

func (l *AppLoader) GetSource(ref string) (string, error) {
	clean, err := cleanRef(ref)
	if err != nil {
		return "", err
	}

	for _, name := range l.apps.InstalledApps() {
		candidate := filepath.Join(l.apps.AppRootPath(name), filepath.FromSlash(clean))
		data, err := afero.ReadFile(l.fs, candidate)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, iofs.ErrNotExist) {
			return "", fmt.Errorf("read template %q: %w", candidate, err)
		}
	}

	if l.fallback != nil {
		data, err := iofs.ReadFile(l.fallback, clean)
		if err == nil {
			return string(data), nil
		}
	}

	return "", fmt.Errorf("template %q: %w", ref, iofs.ErrNotExist)
}

func (l *AppLoader) GetAppSource(app, ref string) (string, error) {
	clean, err := cleanRef(ref)
	if err != nil {
		return "", err
	}

	root := l.apps.AppRootPath(app)
	if root == "" {
		return "", fmt.Errorf("template %q: app %q is not installed: %w", ref, app, iofs.ErrNotExist)
	}

	candidate := filepath.Join(root, filepath.FromSlash(clean))
	data, err := afero.ReadFile(l.fs, candidate)
	if err != nil {
		return "", fmt.Errorf("read template %q: %w", candidate, err)
	}
	return string(data), nil
}

func cleanRef(ref string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(ref)), "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid template reference %q", ref)
	}
	return clean, nil
}
