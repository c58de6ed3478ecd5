package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func render(t *testing.T, source string, opts Options) string {
	t.Helper()
	html, err := NewGoMarkdown(opts).Render(source)
	require.NoError(t, err)
	return html
}

func TestGoMarkdown_KeepsHTMLComments(t *testing.T) {
	html := render(t, "<!-- title: My Blog -->\n\n# Hello", Options{})

	if !strings.Contains(html, "<!-- title: My Blog -->") {
		t.Fatalf("expected directive comment to survive, got %s", html)
	}
	if !strings.Contains(html, "Hello</h1>") {
		t.Fatalf("expected heading, got %s", html)
	}
}

func TestGoMarkdown_MarksExternalLinks(t *testing.T) {
	html := render(t, "[external](https://example.com/read)", Options{
		RootURL: "https://site.test",
	})

	if !strings.Contains(html, `href="https://example.com/read"`) {
		t.Fatalf("expected external href, got %s", html)
	}
	if !strings.Contains(html, `target="_blank"`) {
		t.Fatalf("expected target blank, got %s", html)
	}
	if !strings.Contains(html, `rel="noopener noreferrer"`) {
		t.Fatalf("expected external rel attrs, got %s", html)
	}
}

func TestGoMarkdown_NormalizesSameDomainAbsoluteLinks(t *testing.T) {
	html := render(t, "[same](https://site.test/blog/a?x=1#k)", Options{
		RootURL: "https://site.test",
	})

	if !strings.Contains(html, `href="/blog/a?x=1#k"`) {
		t.Fatalf("expected normalized same-domain href, got %s", html)
	}
	if strings.Contains(html, `target="_blank"`) {
		t.Fatalf("did not expect target blank for same-domain links, got %s", html)
	}
}

func TestGoMarkdown_HighlightsCodeBlocks(t *testing.T) {
	source := "```go\nfmt.Println(\"hello\")\n```"
	html := render(t, source, Options{})

	if !strings.Contains(html, `class="chroma"`) {
		t.Fatalf("expected chroma class for fenced code block, got %s", html)
	}
	if !strings.Contains(html, "Println") {
		t.Fatalf("expected code content in rendered block, got %s", html)
	}
}

func TestGoMarkdown_RendersInlineCodeClass(t *testing.T) {
	html := render(t, "Use `go test ./...` now.", Options{})

	if !strings.Contains(html, `<code class="inline-code">go test ./...</code>`) {
		t.Fatalf("expected inline code class, got %s", html)
	}
}

func TestNew_SelectsEngine(t *testing.T) {
	for _, engine := range []string{"", EngineGoMarkdown, EngineGoldmark} {
		renderer, err := New(engine, Options{})
		if err != nil {
			t.Fatalf("engine %q: %v", engine, err)
		}
		html, err := renderer.Render("# Title\n\n<!-- no-cache -->")
		if err != nil {
			t.Fatalf("engine %q render: %v", engine, err)
		}
		if !strings.Contains(html, "Title</h1>") || !strings.Contains(html, "<!-- no-cache -->") {
			t.Fatalf("engine %q: unexpected output %s", engine, html)
		}
	}

	if _, err := New("blackfriday", Options{}); err == nil {
		t.Fatal("expected unknown engine error")
	}
}

func TestExcerpt_StripsMarkup(t *testing.T) {
	got := Excerpt("## Heading\n\nSome **bold** text with [a link](https://example.com).", 300)
	if got != "Heading Some bold text with a link." {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestExcerpt_TruncatesOnWordBoundary(t *testing.T) {
	got := Excerpt("alpha beta gamma delta", 12)
	if got != "alpha beta..." {
		t.Fatalf("expected graceful word truncation, got %q", got)
	}
}

func TestGoldmark_HighlightsCodeBlocks(t *testing.T) {
	html, err := NewGoldmark(Options{}).Render("```go\nfmt.Println(\"hello\")\n```")
	require.NoError(t, err)
	require.True(t, HasHighlightedCode(html), html)
	require.Contains(t, html, "Println")
}

func TestGoMarkdown_LeavesRelativeAndMailLinksAlone(t *testing.T) {
	html := render(t, "[docs](/docs) and [mail](mailto:me@site.test)", Options{RootURL: "https://site.test"})

	require.Contains(t, html, `href="/docs"`)
	require.Contains(t, html, `href="mailto:me@site.test"`)
	require.NotContains(t, html, `target="_blank"`)
}

func TestExcerpt_SkipsCodeAndImages(t *testing.T) {
	got := Excerpt("Intro ![diagram](/d.png) text.\n\n```go\nfunc main() {}\n```\n\n- one\n- two", 300)
	require.Equal(t, "Intro text. one two", got)
}

func TestHighlighter_UsesConfiguredStyles(t *testing.T) {
	h := NewHighlighter(CodeStyles{Light: "dracula", Dark: ""})
	require.Equal(t, CodeStyles{Light: "dracula", Dark: DefaultDarkStyle}, h.Styles())

	css := string(h.CSS())
	require.Contains(t, css, "@media (prefers-color-scheme: light)")
	require.Contains(t, css, "@media (prefers-color-scheme: dark)")
	require.NotEqual(t, string(NewHighlighter(CodeStyles{}).CSS()), css)
}

func TestHighlighter_SharedByBothEngines(t *testing.T) {
	h := NewHighlighter(CodeStyles{Light: "monokailight"})
	for _, engine := range []string{EngineGoMarkdown, EngineGoldmark} {
		renderer, err := New(engine, Options{Highlighter: h})
		require.NoError(t, err)
		html, err := renderer.Render("```\nplain words\n```")
		require.NoError(t, err)
		require.True(t, HasHighlightedCode(html), "engine %s: %s", engine, html)
	}
	require.False(t, HasHighlightedCode("<p>no code here</p>"))
}
