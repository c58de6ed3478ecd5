package records

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"website/internal/config"
	"website/internal/generators"
	"website/internal/markdown"
)

const (
	WebPageType  = "Web Page"
	BlogPostType = "Blog Post"

	WebPageTemplate  = "templates/generators/web_page.html"
	BlogPostTemplate = "templates/generators/blog_post.html"

	descriptionLength = 160
)

// Types returns the built-in generator types with any site overrides applied.
// Source is left empty; the caller wires it.
func Types(md markdown.Renderer, overrides map[string]config.GeneratorConfig) []generators.Type {
	policy := sanitizer()

	types := []generators.Type{
		{
			Name:           WebPageType,
			Fields:         []string{"name", "page_name", generators.FieldParentRoute, "title", "main_section", "published", "modified"},
			ConditionField: "published",
			New:            func() generators.RouteContextProvider { return &WebPage{policy: policy} },
		},
		{
			Name:           BlogPostType,
			Fields:         []string{"name", "page_name", generators.FieldParentRoute, "title", "blogger", "content", "content_type", "published", "published_on", "modified"},
			ConditionField: "published",
			OrderBy:        "published_on desc, name asc",
			New:            func() generators.RouteContextProvider { return &BlogPost{markdown: md, policy: policy} },
		},
	}

	for idx := range types {
		override, ok := overrides[types[idx].Name]
		if !ok {
			continue
		}
		if override.Collection != "" {
			types[idx].Collection = override.Collection
		}
		if override.ConditionField != "" {
			types[idx].ConditionField = override.ConditionField
		}
		if override.OrderBy != "" {
			types[idx].OrderBy = override.OrderBy
		}
	}
	return types
}

func sanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("target").Matching(bluemonday.Paragraph).OnElements("a")
	return policy
}

func isMarkdown(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	return contentType == "" || contentType == "markdown"
}
