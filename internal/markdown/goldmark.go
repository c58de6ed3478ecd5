package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Goldmark renders GitHub flavoured markdown and keeps raw HTML, so inline
// page directives in HTML comments survive rendering.
type Goldmark struct {
	md goldmark.Markdown
}

func NewGoldmark(opts Options) Goldmark {
	return Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				renderer.WithNodeRenderers(util.Prioritized(codeBlockRenderer{highlighter: opts.highlighter()}, 200)),
			),
		),
	}
}

func (r Goldmark) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// codeBlockRenderer sends fenced code through the shared highlighter.
type codeBlockRenderer struct {
	highlighter *Highlighter
}

func (r codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	block := node.(*ast.FencedCodeBlock)
	var code bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	r.highlighter.WriteCodeBlock(w, string(block.Language(source)), code.String())
	return ast.WalkSkipChildren, nil
}
