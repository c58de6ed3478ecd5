package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Site is the on-disk description of installed apps.
type Site struct {
	Apps       []AppConfig                `yaml:"apps"`
	Generators map[string]GeneratorConfig `yaml:"generators"`
}

type AppConfig struct {
	Name  string              `yaml:"name"`
	Path  string              `yaml:"path"`
	Hooks map[string][]string `yaml:"hooks"`
}

type GeneratorConfig struct {
	Source         string `yaml:"source"`
	Collection     string `yaml:"collection"`
	ConditionField string `yaml:"condition_field"`
	OrderBy        string `yaml:"order_by"`
}

// LoadSite reads the site file. App paths are resolved relative to the file.
func LoadSite(path string) (Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Site{}, fmt.Errorf("read site file %q: %w", path, err)
	}

	site, err := ParseSite(data)
	if err != nil {
		return Site{}, fmt.Errorf("parse site file %q: %w", path, err)
	}

	base := filepath.Dir(path)
	for idx := range site.Apps {
		if !filepath.IsAbs(site.Apps[idx].Path) {
			site.Apps[idx].Path = filepath.Join(base, site.Apps[idx].Path)
		}
	}

	return site, nil
}

func ParseSite(data []byte) (Site, error) {
	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return Site{}, err
	}

	for idx, app := range site.Apps {
		if strings.TrimSpace(app.Path) == "" {
			return Site{}, fmt.Errorf("app #%d has no path", idx+1)
		}
		site.Apps[idx].Name = strings.TrimSpace(app.Name)
	}

	return site, nil
}
