package appcore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"website/framework/httpserver"
	"website/internal/website"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "/", want: "index", ok: true},
		{in: "", want: "index", ok: true},
		{in: "/about/", want: "about", ok: true},
		{in: "/about.html", want: "about", ok: true},
		{in: "/docs/setup/install", want: "docs/setup/install", ok: true},
		{in: "/feed.xml", want: "feed.xml", ok: true},
		{in: "/docs/../secret", ok: false},
		{in: "/docs//setup", ok: false},
	}

	for _, tc := range tests {
		params, ok := ParsePath(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParsePath(%q): expected ok=%v, got %v", tc.in, tc.ok, ok)
		}
		if ok && params.Path != tc.want {
			t.Fatalf("ParsePath(%q): expected %q, got %q", tc.in, tc.want, params.Path)
		}
	}
}

type mapSource map[string]*website.PageContext

func (m mapSource) GetContext(_ context.Context, path string) (*website.PageContext, error) {
	if page, ok := m[path]; ok {
		return page, nil
	}
	return nil, website.ErrNotFound
}

func TestLoadPage(t *testing.T) {
	appCtx := NewContext(mapSource{"about": {RouteName: "about", Title: "About"}}, nil)

	view, err := LoadPage(context.Background(), appCtx, nil, PathParams{Path: "about"})
	require.NoError(t, err)
	require.Equal(t, "About", view.Page.Title)

	_, err = LoadPage(context.Background(), appCtx, nil, PathParams{Path: "missing"})
	require.True(t, IsNotFoundError(err))

	_, err = LoadPage(context.Background(), nil, nil, PathParams{Path: "about"})
	require.ErrorIs(t, err, errContextSourceUnavailable)
}

func TestPageMeta(t *testing.T) {
	meta := PageMeta(PageView{Page: &website.PageContext{Template: "www/about.html"}})
	require.Equal(t, "text/html; charset=utf-8", meta.ContentType)
	require.Empty(t, meta.CacheControl)

	meta = PageMeta(PageView{Page: &website.PageContext{Template: "www/feed.xml", NoCache: true}})
	require.Contains(t, meta.ContentType, "xml")
	require.Equal(t, httpserver.NoStore, meta.CacheControl)
}
