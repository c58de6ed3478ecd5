package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"website/internal/database"
	"website/internal/website"
)

const testSite = `
apps:
  - name: website
    path: apps/website
    hooks:
      website_generators: ["Blog Post"]
`

func setupSite(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	www := filepath.Join(dir, "apps", "website", "www")
	require.NoError(t, os.MkdirAll(filepath.Join(www, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(www, "about.html"), []byte("<!-- title: About Us -->\n<p>hello</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(www, "docs", "index.md"), []byte("# Docs\n\nRead me."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte(testSite), 0o644))

	t.Setenv("WEBSITE_SITE_FILE", filepath.Join(dir, "site.yaml"))
	t.Setenv("WEBSITE_DATABASE_DSN", filepath.Join(dir, "website.db"))
	t.Setenv("WEBSITE_CACHE_BACKEND", "memory")
	t.Setenv("WEBSITE_LOG_LEVEL", "error")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedPosts(t *testing.T, dir string) {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(dir, "website.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Exec(ctx,
		`insert into "tabBlog Post" (name, page_name, parent_website_route, title, content, published) values (?, ?, ?, ?, ?, ?)`,
		"BP-0001", "hello-world", "blog", "Hello World", "Some *markdown*.", 1,
	))
	require.NoError(t, db.Exec(ctx,
		`insert into "tabBlog Post" (name, page_name, parent_website_route, title, published) values (?, ?, ?, ?, ?)`,
		"BP-0002", "draft", "blog", "Draft", 0,
	))
}

func TestMigrateRoutesAndResolve(t *testing.T) {
	dir := setupSite(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, "schema applied")

	seedPosts(t, dir)

	out, err = execute(t, "routes")
	require.NoError(t, err)
	require.Contains(t, out, "about")
	require.Contains(t, out, "docs")
	require.Contains(t, out, "blog/hello-world")
	require.Contains(t, out, "Blog Post/BP-0001")
	require.NotContains(t, out, "blog/draft")

	out, err = execute(t, "resolve", "/about/")
	require.NoError(t, err)
	var about website.PageContext
	require.NoError(t, json.Unmarshal([]byte(out), &about))
	require.Equal(t, "about", about.RouteName)
	require.Equal(t, "About Us", about.Title)
	require.Equal(t, website.KindPage, about.PageOrGenerator)

	out, err = execute(t, "resolve", "blog/hello-world", "--lang", "de")
	require.NoError(t, err)
	var post website.PageContext
	require.NoError(t, json.Unmarshal([]byte(out), &post))
	require.Equal(t, "Blog Post", post.DocType)
	require.Equal(t, "Hello World", post.Title)
	require.Equal(t, "blog/hello-world", post.Pathname)
	require.Contains(t, post.Data["content"], "<em>markdown</em>")
}

func TestResolveMissingPath(t *testing.T) {
	setupSite(t)

	_, err := execute(t, "migrate")
	require.NoError(t, err)

	_, err = execute(t, "resolve", "nowhere")
	require.ErrorIs(t, err, website.ErrNotFound)
}

func TestClearCacheWithRedis(t *testing.T) {
	setupSite(t)
	mr := miniredis.RunT(t)
	t.Setenv("WEBSITE_CACHE_BACKEND", "redis")
	t.Setenv("WEBSITE_REDIS_URL", "redis://"+mr.Addr())

	mr.HSet("page_context", "about", "{}")
	require.NoError(t, mr.Set("_website_pages", "[]"))

	out, err := execute(t, "clear-cache")
	require.NoError(t, err)
	require.Contains(t, out, "website caches cleared")
	require.False(t, mr.Exists("page_context"))
	require.False(t, mr.Exists("_website_pages"))
}

func TestClearCacheRefusesMemoryBackend(t *testing.T) {
	setupSite(t)
	t.Setenv("WEBSITE_CACHE_BACKEND", "memory")

	out, err := execute(t, "clear-cache")
	require.ErrorContains(t, err, "/.website/clear-cache")
	require.ErrorContains(t, err, "WEBSITE_CACHE_BACKEND=redis")
	require.NotContains(t, out, "website caches cleared")
}

func TestBuildRejectsUnknownBackendAndSource(t *testing.T) {
	dir := setupSite(t)
	t.Setenv("WEBSITE_CACHE_BACKEND", "memcached")
	_, err := execute(t, "routes")
	require.ErrorContains(t, err, "unknown cache backend")

	t.Setenv("WEBSITE_CACHE_BACKEND", "memory")
	site := testSite + "generators:\n  Blog Post:\n    source: graphql\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte(site), 0o644))
	t.Setenv("WEBSITE_GRAPHQL_ENDPOINT", "")
	_, err = execute(t, "routes")
	require.ErrorContains(t, err, "WEBSITE_GRAPHQL_ENDPOINT")
}
