package markdown

import (
	"bytes"
	stdhtml "html"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const (
	DefaultLightStyle = "github"
	DefaultDarkStyle  = "monokai"

	highlightedClass = `class="chroma"`
)

// CodeStyles names the chroma styles used for the light and dark colour
// schemes.
type CodeStyles struct {
	Light string
	Dark  string
}

// Highlighter renders code blocks with CSS classes and produces the matching
// stylesheet once.
type Highlighter struct {
	styles    CodeStyles
	formatter *chromahtml.Formatter

	cssOnce sync.Once
	css     template.CSS
}

var (
	defaultHighlighterOnce sync.Once
	defaultHighlighter     *Highlighter
)

func DefaultHighlighter() *Highlighter {
	defaultHighlighterOnce.Do(func() {
		defaultHighlighter = NewHighlighter(CodeStyles{})
	})
	return defaultHighlighter
}

func NewHighlighter(codeStyles CodeStyles) *Highlighter {
	if strings.TrimSpace(codeStyles.Light) == "" {
		codeStyles.Light = DefaultLightStyle
	}
	if strings.TrimSpace(codeStyles.Dark) == "" {
		codeStyles.Dark = DefaultDarkStyle
	}
	return &Highlighter{
		styles:    codeStyles,
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
	}
}

func (h *Highlighter) Styles() CodeStyles {
	return h.styles
}

// WriteCodeBlock writes code as a highlighted block. An unknown language is
// guessed from the code; if tokenising fails the block is written escaped.
func (h *Highlighter) WriteCodeBlock(w io.Writer, language, code string) {
	iterator, err := lexerFor(language, code).Tokenise(nil, code)
	if err == nil {
		var buf bytes.Buffer
		if err = h.formatter.Format(&buf, styles.Get(h.styles.Light), iterator); err == nil {
			_, _ = buf.WriteTo(w)
			return
		}
	}

	_, _ = io.WriteString(w, `<pre class="chroma"><code>`+stdhtml.EscapeString(code)+`</code></pre>`)
}

// CSS is the stylesheet for both colour schemes.
func (h *Highlighter) CSS() template.CSS {
	h.cssOnce.Do(func() {
		var out strings.Builder
		for _, scheme := range []struct{ media, style string }{
			{media: "light", style: h.styles.Light},
			{media: "dark", style: h.styles.Dark},
		} {
			var buf bytes.Buffer
			if err := h.formatter.WriteCSS(&buf, styles.Get(scheme.style)); err != nil || buf.Len() == 0 {
				continue
			}
			out.WriteString("@media (prefers-color-scheme: " + scheme.media + ") {\n")
			out.Write(buf.Bytes())
			out.WriteString("}\n")
		}
		h.css = template.CSS(out.String())
	})
	return h.css
}

// HasHighlightedCode reports whether rendered HTML contains a highlighted block.
func HasHighlightedCode(html string) bool {
	return strings.Contains(html, highlightedClass)
}

func lexerFor(language, code string) chroma.Lexer {
	if language = strings.ToLower(strings.TrimSpace(language)); language != "" {
		if lexer := lexers.Get(language); lexer != nil {
			return lexer
		}
	}
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer
	}
	return lexers.Fallback
}
