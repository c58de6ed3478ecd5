package markdown

import (
	"fmt"
	"strings"
)

const (
	EngineGoMarkdown = "gomarkdown"
	EngineGoldmark   = "goldmark"
)

// Renderer turns markdown source into HTML.
type Renderer interface {
	Render(source string) (string, error)
}

type Options struct {
	// RootURL marks absolute links to the site itself; they are rewritten to
	// site-relative paths and keep the current tab.
	RootURL string
	// Highlighter colours fenced code blocks. Nil uses the default styles.
	Highlighter *Highlighter
}

func (o Options) highlighter() *Highlighter {
	if o.Highlighter == nil {
		return DefaultHighlighter()
	}
	return o.Highlighter
}

// New picks a renderer by engine name. An empty name selects gomarkdown.
func New(engine string, opts Options) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineGoMarkdown:
		return NewGoMarkdown(opts), nil
	case EngineGoldmark:
		return NewGoldmark(opts), nil
	default:
		return nil, fmt.Errorf("unknown markdown engine %q", engine)
	}
}
