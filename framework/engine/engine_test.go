package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"website/framework"
)

type testAppContext struct{}

type componentFunc func(ctx context.Context, w io.Writer) error

func (f componentFunc) Render(ctx context.Context, w io.Writer) error {
	return f(ctx, w)
}

func textComponent(value string) templ.Component {
	return componentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, value)
		return err
	})
}

func prefixModule(prefix string, load func(path string) (string, error)) framework.RouteHandler[*testAppContext] {
	return framework.PageOnlyRouteHandler[*testAppContext, string, string]{
		Page: framework.PageModule[*testAppContext, string, string]{
			Pattern: prefix + "*",
			ParseParams: func(path string) (string, bool) {
				return strings.TrimPrefix(path, prefix), strings.HasPrefix(path, prefix)
			},
			Load: func(_ context.Context, _ *testAppContext, _ *http.Request, path string) (string, error) {
				return load(path)
			},
			Render: func(view string) templ.Component { return textComponent(view) },
			Meta: func(view string) framework.ResponseMeta {
				if strings.HasSuffix(view, ".xml") {
					return framework.ResponseMeta{ContentType: "text/xml"}
				}
				return framework.ResponseMeta{}
			},
		},
	}
}

type captured struct {
	body string
	meta framework.ResponseMeta
}

func captureRender(out *captured) func(*http.Request, http.ResponseWriter, templ.Component, framework.ResponseMeta) error {
	return func(_ *http.Request, _ http.ResponseWriter, component templ.Component, meta framework.ResponseMeta) error {
		var b bytes.Buffer
		if err := component.Render(context.Background(), &b); err != nil {
			return err
		}
		out.body = b.String()
		out.meta = meta
		return nil
	}
}

func TestServeRoutePageOnly(t *testing.T) {
	var rendered captured

	routeEngine, err := New(Config[*testAppContext]{
		AppContext: &testAppContext{},
		Handlers: []framework.RouteHandler[*testAppContext]{
			prefixModule("/docs/", func(path string) (string, error) { return "docs:" + path, nil }),
		},
		RenderPage: captureRender(&rendered),
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	if !routeEngine.ServeRoute(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/docs/feed.xml", nil)) {
		t.Fatal("expected route to match")
	}
	if rendered.body != "docs:feed.xml" {
		t.Fatalf("expected page content, got %q", rendered.body)
	}
	if rendered.meta.ContentType != "text/xml" {
		t.Fatalf("expected xml content type, got %q", rendered.meta.ContentType)
	}

	if routeEngine.ServeRoute(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil)) {
		t.Fatal("did not expect missing route to match")
	}
}

func TestServeRouteFirstMatchWins(t *testing.T) {
	var rendered captured

	routeEngine, err := New(Config[*testAppContext]{
		AppContext: &testAppContext{},
		Handlers: []framework.RouteHandler[*testAppContext]{
			prefixModule("/docs/", func(string) (string, error) { return "specific", nil }),
			prefixModule("/", func(string) (string, error) { return "catch-all", nil }),
		},
		RenderPage: captureRender(&rendered),
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	routeEngine.ServeRoute(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/docs/a", nil))
	if rendered.body != "specific" {
		t.Fatalf("expected first handler, got %q", rendered.body)
	}

	routeEngine.ServeRoute(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/about", nil))
	if rendered.body != "catch-all" {
		t.Fatalf("expected catch-all handler, got %q", rendered.body)
	}
}

func TestNewRequiresRenderPage(t *testing.T) {
	if _, err := New(Config[*testAppContext]{}); err == nil {
		t.Fatal("expected missing render callback to fail")
	}
}

func TestNotFoundAndServerErrorClassification(t *testing.T) {
	errNotFound := errors.New("not found")
	errBoom := errors.New("boom")

	t.Run("not found", func(t *testing.T) {
		notFoundCalled := false
		serverErrorCalled := false
		var notFoundContext framework.NotFoundContext

		routeEngine, err := New(Config[*testAppContext]{
			AppContext: &testAppContext{},
			Handlers: []framework.RouteHandler[*testAppContext]{
				prefixModule("/notes", func(string) (string, error) { return "", errNotFound }),
			},
			RenderPage: func(*http.Request, http.ResponseWriter, templ.Component, framework.ResponseMeta) error {
				return nil
			},
			IsNotFoundError: func(err error) bool { return errors.Is(err, errNotFound) },
			HandleNotFound: func(_ http.ResponseWriter, _ *http.Request, ctx framework.NotFoundContext) {
				notFoundCalled = true
				notFoundContext = ctx
			},
			HandleServerError: func(http.ResponseWriter, error) {
				serverErrorCalled = true
			},
		})
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}

		if !routeEngine.ServeRoute(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/notes", nil)) {
			t.Fatal("expected route to match")
		}
		if !notFoundCalled {
			t.Fatal("expected not found callback")
		}
		if notFoundContext.Source != framework.NotFoundSourcePageLoad {
			t.Fatalf("expected not-found source %q, got %q", framework.NotFoundSourcePageLoad, notFoundContext.Source)
		}
		if notFoundContext.MatchedRoutePattern != "/notes*" {
			t.Fatalf("expected matched route pattern /notes*, got %q", notFoundContext.MatchedRoutePattern)
		}
		if notFoundContext.RequestPath != "/notes" {
			t.Fatalf("expected request path /notes, got %q", notFoundContext.RequestPath)
		}
		if serverErrorCalled {
			t.Fatal("did not expect server error callback")
		}
	})

	t.Run("server error", func(t *testing.T) {
		notFoundCalled := false
		var serverErr error

		routeEngine, err := New(Config[*testAppContext]{
			AppContext: &testAppContext{},
			Handlers: []framework.RouteHandler[*testAppContext]{
				prefixModule("/notes", func(string) (string, error) { return "", errBoom }),
			},
			RenderPage: func(*http.Request, http.ResponseWriter, templ.Component, framework.ResponseMeta) error {
				return nil
			},
			IsNotFoundError: func(error) bool { return false },
			HandleNotFound: func(http.ResponseWriter, *http.Request, framework.NotFoundContext) {
				notFoundCalled = true
			},
			HandleServerError: func(_ http.ResponseWriter, err error) {
				serverErr = err
			},
		})
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}

		if !routeEngine.ServeRoute(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/notes", nil)) {
			t.Fatal("expected route to match")
		}
		if notFoundCalled {
			t.Fatal("did not expect not found callback")
		}
		if !errors.Is(serverErr, errBoom) {
			t.Fatalf("expected wrapped load error, got %v", serverErr)
		}
	})

	t.Run("render error", func(t *testing.T) {
		errRender := errors.New("template exploded")
		var serverErr error

		routeEngine, err := New(Config[*testAppContext]{
			AppContext: &testAppContext{},
			Handlers: []framework.RouteHandler[*testAppContext]{
				prefixModule("/notes", func(string) (string, error) { return "ok", nil }),
			},
			RenderPage: func(*http.Request, http.ResponseWriter, templ.Component, framework.ResponseMeta) error {
				return errRender
			},
			HandleServerError: func(_ http.ResponseWriter, err error) {
				serverErr = err
			},
		})
		if err != nil {
			t.Fatalf("new engine: %v", err)
		}

		routeEngine.ServeRoute(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/notes", nil))
		if !errors.Is(serverErr, errRender) {
			t.Fatalf("expected render error, got %v", serverErr)
		}
	})
}
