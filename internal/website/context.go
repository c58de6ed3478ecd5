package website

import (
	"context"
	"errors"
	"strings"
)

const (
	KindPage      = "Page"
	KindGenerator = "Generator"

	DefaultLanguage = "en"
)

var ErrNotFound = errors.New("not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// PageContext is what the rendering layer receives for a resolved path.
type PageContext struct {
	RouteName       string `json:"route_name"`
	PageOrGenerator string `json:"page_or_generator"`

	// RefDocType and PageTitle are filled by whoever built the context;
	// DocType and Title are the generic copies set after resolution.
	RefDocType string `json:"ref_doctype,omitempty"`
	DocName    string `json:"docname,omitempty"`
	PageTitle  string `json:"page_title,omitempty"`
	DocType    string `json:"doctype,omitempty"`
	Title      string `json:"title,omitempty"`
	Pathname   string `json:"pathname"`

	// App owns Template when set; the template is then read from that app
	// only.
	App        string `json:"app,omitempty"`
	Template   string `json:"template,omitempty"`
	Source     string `json:"source,omitempty"`
	Controller string `json:"controller,omitempty"`

	NoCache       bool `json:"no_cache,omitempty"`
	NoHeader      bool `json:"no_header,omitempty"`
	NoBreadcrumbs bool `json:"no_breadcrumbs,omitempty"`

	Data map[string]any `json:"data,omitempty"`
}

type languageContextKey struct{}

// WithLanguage records the active language used to partition cached contexts.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, languageContextKey{}, strings.TrimSpace(lang))
}

func Language(ctx context.Context) string {
	if ctx == nil {
		return DefaultLanguage
	}
	if lang, ok := ctx.Value(languageContextKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLanguage
}
