package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WEBSITE_LISTEN_ADDR", "")
	t.Setenv("WEBSITE_CACHE_MAX_ENTRIES", "not-a-number")
	t.Setenv("WEBSITE_LANGUAGES", " , ")

	cfg := Load()
	if cfg.ListenAddr != ":8000" {
		t.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if cfg.CacheMaxEntries != 10000 {
		t.Fatalf("expected default max entries, got %d", cfg.CacheMaxEntries)
	}
	require.Equal(t, []string{"en"}, cfg.Languages)
	require.True(t, cfg.CachingEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WEBSITE_DEVELOPER_MODE", "true")
	t.Setenv("WEBSITE_CACHE_BACKEND", "Redis")
	t.Setenv("WEBSITE_LANGUAGES", "en, de,fr")
	t.Setenv("WEBSITE_CODE_STYLE_DARK", "dracula")
	t.Setenv("WEBSITE_CODE_STYLE_LIGHT", "")

	cfg := Load()
	require.Equal(t, "redis", cfg.CacheBackend)
	require.Equal(t, "dracula", cfg.CodeStyleDark)
	require.Equal(t, "github", cfg.CodeStyleLight)
	require.Equal(t, []string{"en", "de", "fr"}, cfg.Languages)
	require.False(t, cfg.CachingEnabled())
}

func TestLoadSiteResolvesAppPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	content := `
apps:
  - name: website
    path: apps/website
    hooks:
      website_generators: ["Web Page", "Blog Post"]
generators:
  Blog Post:
    source: graphql
    collection: Blog_posts
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	site, err := LoadSite(path)
	require.NoError(t, err)
	require.Len(t, site.Apps, 1)
	require.Equal(t, filepath.Join(dir, "apps/website"), site.Apps[0].Path)
	require.Equal(t, []string{"Web Page", "Blog Post"}, site.Apps[0].Hooks["website_generators"])
	require.Equal(t, "graphql", site.Generators["Blog Post"].Source)
}

func TestParseSiteRejectsAppWithoutPath(t *testing.T) {
	_, err := ParseSite([]byte("apps:\n  - name: broken\n"))
	if err == nil {
		t.Fatal("expected error for app without path")
	}
}
