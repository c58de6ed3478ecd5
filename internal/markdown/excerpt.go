package markdown

import (
	"strings"
	"unicode"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// Excerpt returns the readable text of a markdown document, cut on a word
// boundary to at most maxChars runes plus an ellipsis. Code blocks, images
// and raw HTML are left out.
func Excerpt(input string, maxChars int) string {
	if maxChars < 1 || strings.TrimSpace(input) == "" {
		return ""
	}

	var text strings.Builder
	doc := parser.NewWithExtensions(parser.CommonExtensions).Parse([]byte(input))
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		switch n := node.(type) {
		case *ast.CodeBlock, *ast.Image, *ast.HTMLBlock, *ast.HTMLSpan, *ast.HorizontalRule:
			return ast.SkipChildren
		case *ast.Text:
			text.Write(n.Literal)
		case *ast.Code:
			text.Write(n.Literal)
		case *ast.Paragraph, *ast.Heading, *ast.ListItem, *ast.TableCell, *ast.BlockQuote:
			if !entering {
				text.WriteByte(' ')
			}
		}
		return ast.GoToNext
	})

	return truncateWords(strings.Join(strings.Fields(text.String()), " "), maxChars)
}

func truncateWords(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := string(runes[:maxChars])
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > len(cut)/2 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}
