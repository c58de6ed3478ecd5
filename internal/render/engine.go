package render

import (
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"io"
	iofs "io/fs"
	"mime"
	"path"
	"strings"
	texttemplate "text/template"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"website/internal/loader"
	"website/internal/markdown"
	"website/internal/pages"
	"website/internal/website"
)

// NotFoundTemplate renders the 404 page; apps may override it.
const NotFoundTemplate = "templates/404.html"

//go:embed templates
var embedded embed.FS

// Templates holds the built-in shell, 404 and generator templates. It is
// meant as the loader fallback.
func Templates() iofs.FS {
	return embedded
}

// Engine renders page contexts with html/template, or text/template for
// pages that are not HTML.
type Engine struct {
	loader      loader.Loader
	highlighter *markdown.Highlighter
}

type Option func(*Engine)

// WithHighlighter sets the code highlighter whose stylesheet pages with
// highlighted code receive.
func WithHighlighter(h *markdown.Highlighter) Option {
	return func(e *Engine) {
		if h != nil {
			e.highlighter = h
		}
	}
}

func New(l loader.Loader, opts ...Option) *Engine {
	e := &Engine{loader: l, highlighter: markdown.DefaultHighlighter()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// View is the data passed to page templates.
type View struct {
	*website.PageContext
	Lang string

	highlighter *markdown.Highlighter
}

type Breadcrumb struct {
	URL   string
	Label string
}

// ChromaCSS is the code highlighting stylesheet, empty unless the page
// source or its data holds highlighted code.
func (v View) ChromaCSS() htmltemplate.CSS {
	if v.highlighter == nil || !v.hasHighlightedCode() {
		return ""
	}
	return v.highlighter.CSS()
}

func (v View) hasHighlightedCode() bool {
	if markdown.HasHighlightedCode(v.Source) {
		return true
	}
	for _, value := range v.Data {
		if text, ok := value.(string); ok && markdown.HasHighlightedCode(text) {
			return true
		}
	}
	return false
}

// Breadcrumbs lists the ancestors of the current path, nearest last.
func (v View) Breadcrumbs() []Breadcrumb {
	parts := strings.Split(strings.Trim(v.Pathname, "/"), "/")
	if len(parts) < 2 {
		return nil
	}

	crumbs := make([]Breadcrumb, 0, len(parts)-1)
	caser := cases.Title(language.English)
	for idx := range parts[:len(parts)-1] {
		label := strings.NewReplacer("-", " ", "_", " ").Replace(parts[idx])
		crumbs = append(crumbs, Breadcrumb{
			URL:   "/" + strings.Join(parts[:idx+1], "/"),
			Label: caser.String(label),
		})
	}
	return crumbs
}

// Component adapts a page context to a templ component.
func (e *Engine) Component(pageCtx *website.PageContext) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return e.Render(ctx, w, pageCtx)
	})
}

// NotFound renders the 404 page for path.
func (e *Engine) NotFound(path string) templ.Component {
	return e.Component(&website.PageContext{
		RouteName:     "404",
		Title:         "Page not found",
		Pathname:      path,
		Template:      NotFoundTemplate,
		NoBreadcrumbs: true,
	})
}

func (e *Engine) Render(ctx context.Context, w io.Writer, pageCtx *website.PageContext) error {
	source := pageCtx.Source
	if source == "" {
		loaded, err := e.templateSource(pageCtx)
		if err != nil {
			return fmt.Errorf("load template %q: %w", pageCtx.Template, err)
		}
		source = loaded
	}

	view := View{PageContext: pageCtx, Lang: website.Language(ctx), highlighter: e.highlighter}
	if !IsHTML(pageCtx.Template) {
		return e.renderText(w, pageCtx.Template, source, view)
	}
	return e.renderHTML(w, pageCtx.Template, source, view)
}

func (e *Engine) templateSource(pageCtx *website.PageContext) (string, error) {
	if pageCtx.App != "" {
		return e.loader.GetAppSource(pageCtx.App, pageCtx.Template)
	}
	return e.loader.GetSource(pageCtx.Template)
}

// ContentType picks the response type from the template extension.
func ContentType(template string) string {
	if IsHTML(template) {
		return "text/html; charset=utf-8"
	}
	if contentType := mime.TypeByExtension(path.Ext(template)); contentType != "" {
		return contentType
	}
	return "text/plain; charset=utf-8"
}

func IsHTML(template string) bool {
	switch path.Ext(template) {
	case ".html", ".md", "":
		return true
	default:
		return false
	}
}

func (e *Engine) renderHTML(w io.Writer, name, source string, view View) error {
	tmpl := htmltemplate.New(name).Funcs(htmltemplate.FuncMap{
		"safeHTML": func(value any) htmltemplate.HTML {
			s, _ := value.(string)
			return htmltemplate.HTML(s)
		},
	})

	if strings.Contains(source, `"`+pages.ShellTemplate+`"`) {
		shell, err := e.loader.GetSource(pages.ShellTemplate)
		if err != nil {
			return fmt.Errorf("load shell: %w", err)
		}
		if _, err := tmpl.New(pages.ShellTemplate).Parse(shell); err != nil {
			return fmt.Errorf("parse shell: %w", err)
		}
	}

	if _, err := tmpl.Parse(source); err != nil {
		return fmt.Errorf("parse template %q: %w", name, err)
	}
	if err := tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("execute template %q: %w", name, err)
	}
	return nil
}

func (e *Engine) renderText(w io.Writer, name, source string, view View) error {
	tmpl, err := texttemplate.New(name).Parse(source)
	if err != nil {
		return fmt.Errorf("parse template %q: %w", name, err)
	}
	if err := tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("execute template %q: %w", name, err)
	}
	return nil
}
