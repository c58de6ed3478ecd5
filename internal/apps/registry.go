package apps

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/mod/modfile"

	"website/internal/config"
)

const HookWebsiteGenerators = "website_generators"

// Registry lists installed application modules and their hooks.
type Registry interface {
	InstalledApps() []string
	AppRootPath(app string) string
	Hooks(hook string, app string) []string
}

type app struct {
	name  string
	root  string
	hooks map[string][]string
}

// Static is a Registry fixed at construction time.
type Static struct {
	order []string
	apps  map[string]app
}

// Load builds the registry from the site file. An app without a name takes the
// last element of the module path declared in its go.mod.
func Load(fs afero.Fs, site config.Site) (*Static, error) {
	registry := &Static{apps: make(map[string]app, len(site.Apps))}
	for _, cfg := range site.Apps {
		name := cfg.Name
		if name == "" {
			derived, err := nameFromModule(fs, cfg.Path)
			if err != nil {
				return nil, err
			}
			name = derived
		}
		if _, dup := registry.apps[name]; dup {
			return nil, fmt.Errorf("app %q installed twice", name)
		}

		registry.order = append(registry.order, name)
		registry.apps[name] = app{name: name, root: cfg.Path, hooks: cfg.Hooks}
	}

	return registry, nil
}

func (r *Static) InstalledApps() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Static) AppRootPath(name string) string {
	return r.apps[name].root
}

func (r *Static) Hooks(hook string, name string) []string {
	values := r.apps[name].hooks[hook]
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func nameFromModule(fs afero.Fs, root string) (string, error) {
	data, err := afero.ReadFile(fs, filepath.Join(root, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("app at %q has no name and no go.mod: %w", root, err)
	}

	modulePath := modfile.ModulePath(data)
	if modulePath == "" {
		return "", errors.New("go.mod at " + root + " declares no module")
	}

	return strings.ReplaceAll(path.Base(modulePath), "-", "_"), nil
}
