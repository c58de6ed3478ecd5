package web

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"website/framework"
	"website/framework/httpserver"
	"website/internal/logging"
	"website/internal/render"
	"website/internal/web/appcore"
	"website/internal/website"
)

// ClearCachePath flushes every website cache when called with the admin token.
const ClearCachePath = "/.website/clear-cache"

// Site is the resolved-context cache the handler serves from.
type Site interface {
	appcore.ContextSource
	InvalidateAll(ctx context.Context) error
}

type Options struct {
	StaticDir     string
	Languages     []string
	AdminToken    string
	CachePolicies httpserver.CachePolicies
	Logger        *zap.Logger
}

type Handler struct {
	site       Site
	renderer   *render.Engine
	adminToken string
	logger     *zap.Logger
}

func NewHandler(site Site, renderer *render.Engine, opts Options) (http.Handler, error) {
	h := &Handler{
		site:       site,
		renderer:   renderer,
		adminToken: strings.TrimSpace(opts.AdminToken),
		logger:     logging.OrNop(opts.Logger),
	}

	handler, err := httpserver.New(httpserver.Config[*appcore.Context]{
		AppContext: appcore.NewContext(site, renderer),
		Handlers:   Handlers(),
		Static: httpserver.StaticMount{
			Dir: opts.StaticDir,
		},
		CachePolicies:   opts.CachePolicies,
		IsNotFoundError: appcore.IsNotFoundError,
		NotFoundPage:    h.notFoundPage,
		Logger:          h.logger,
		Languages:       opts.Languages,
		WithLanguage:    website.WithLanguage,
		Mount:           h.mount,
	})
	if err != nil {
		return nil, fmt.Errorf("create http server: %w", err)
	}
	return handler, nil
}

func (h *Handler) mount(r chi.Router) {
	if h.adminToken == "" {
		return
	}
	r.Post(ClearCachePath, h.handleClearCache)
}

func (h *Handler) notFoundPage(notFoundContext framework.NotFoundContext) templ.Component {
	return h.renderer.NotFound(strings.Trim(notFoundContext.RequestPath, "/"))
}

func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", httpserver.NoStore)
	if !h.authorized(r) {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.site.InvalidateAll(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("clear website caches", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(h.adminToken)) == 1
}
