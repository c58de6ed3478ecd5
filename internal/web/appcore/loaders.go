package appcore

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"website/framework"
	"website/framework/httpserver"
	"website/internal/render"
	"website/internal/website"
)

const indexRoute = "index"

var errContextSourceUnavailable = errors.New("page context source unavailable")

type PathParams struct {
	Path string
}

type PageView struct {
	Page     *website.PageContext
	renderer *render.Engine
}

// ParsePath turns a request path into a route path: surrounding slashes and
// a trailing .html are dropped and the site root becomes "index". Paths that
// climb out of the root never match.
func ParsePath(urlPath string) (PathParams, bool) {
	trimmed := strings.Trim(strings.TrimSpace(urlPath), "/")
	trimmed = strings.TrimSuffix(trimmed, ".html")
	if trimmed == "" {
		return PathParams{Path: indexRoute}, true
	}

	for _, segment := range strings.Split(trimmed, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return PathParams{}, false
		}
	}
	return PathParams{Path: trimmed}, true
}

func LoadPage(
	ctx context.Context,
	appCtx *Context,
	_ *http.Request,
	params PathParams,
) (PageView, error) {
	if appCtx == nil || appCtx.contexts == nil {
		return PageView{}, errContextSourceUnavailable
	}

	page, err := appCtx.contexts.GetContext(ctx, params.Path)
	if err != nil {
		return PageView{}, err
	}
	return PageView{Page: page, renderer: appCtx.renderer}, nil
}

func RenderPage(view PageView) templ.Component {
	return view.renderer.Component(view.Page)
}

// PageMeta derives headers from the resolved page: its content type and, for
// pages that opted out of caching, a no-store policy.
func PageMeta(view PageView) framework.ResponseMeta {
	meta := framework.ResponseMeta{ContentType: render.ContentType(view.Page.Template)}
	if view.Page.NoCache {
		meta.CacheControl = httpserver.NoStore
	}
	return meta
}
