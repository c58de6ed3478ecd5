package markdown

import (
	stdhtml "html"
	"io"
	"net/url"
	"strings"

	md "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// GoMarkdown renders with gomarkdown. Raw HTML, including directive
// comments, is passed through.
type GoMarkdown struct {
	rootURL     *url.URL
	highlighter *Highlighter
}

func NewGoMarkdown(opts Options) GoMarkdown {
	r := GoMarkdown{highlighter: opts.highlighter()}
	if root, err := url.Parse(strings.TrimSpace(opts.RootURL)); err == nil && root.Host != "" {
		r.rootURL = root
	}
	return r
}

func (r GoMarkdown) Render(source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}

	doc := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs).Parse([]byte(source))
	r.rewriteLinks(doc)

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags,
		RenderNodeHook: r.renderNode,
	})
	return string(md.Render(doc, renderer)), nil
}

func (r GoMarkdown) renderNode(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	if !entering {
		return ast.GoToNext, false
	}

	switch n := node.(type) {
	case *ast.CodeBlock:
		r.highlighter.WriteCodeBlock(w, infoLanguage(n.Info), string(n.Literal))
		return ast.SkipChildren, true
	case *ast.Code:
		_, _ = io.WriteString(w, `<code class="inline-code">`+stdhtml.EscapeString(string(n.Literal))+`</code>`)
		return ast.SkipChildren, true
	default:
		return ast.GoToNext, false
	}
}

// rewriteLinks makes links to the site relative and opens other absolute
// http(s) links in a new tab.
func (r GoMarkdown) rewriteLinks(doc ast.Node) {
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		link, ok := node.(*ast.Link)
		if !entering || !ok {
			return ast.GoToNext
		}

		target, err := url.Parse(string(link.Destination))
		if err != nil || target.Host == "" {
			return ast.GoToNext
		}
		if r.rootURL != nil && strings.EqualFold(target.Host, r.rootURL.Host) {
			link.Destination = []byte(sitePath(target))
			return ast.GoToNext
		}
		if target.Scheme == "http" || target.Scheme == "https" {
			link.AdditionalAttributes = append(withoutAttrs(link.AdditionalAttributes, "target", "rel"),
				`target="_blank"`, `rel="noopener noreferrer"`)
		}
		return ast.GoToNext
	})
}

func sitePath(target *url.URL) string {
	relative := url.URL{Path: target.Path, RawQuery: target.RawQuery, Fragment: target.Fragment}
	if relative.Path == "" {
		relative.Path = "/"
	}
	return relative.String()
}

func withoutAttrs(attrs []string, names ...string) []string {
	out := make([]string, 0, len(attrs)+len(names))
	for _, attr := range attrs {
		name, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(attr)), "=")
		drop := false
		for _, n := range names {
			drop = drop || name == n
		}
		if !drop {
			out = append(out, attr)
		}
	}
	return out
}

func infoLanguage(info []byte) string {
	fields := strings.Fields(string(info))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
