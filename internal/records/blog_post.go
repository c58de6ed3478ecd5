package records

import (
	"context"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"website/internal/markdown"
	"website/internal/website"
)

type BlogPost struct {
	Name               string    `json:"name"`
	PageName           string    `json:"page_name"`
	ParentWebsiteRoute string    `json:"parent_website_route"`
	Title              string    `json:"title"`
	Blogger            string    `json:"blogger"`
	Content            string    `json:"content"`
	ContentType        string    `json:"content_type"`
	Published          bool      `json:"published"`
	PublishedOn        time.Time `json:"published_on"`
	Modified           time.Time `json:"modified"`

	markdown markdown.Renderer
	policy   *bluemonday.Policy
}

func (p *BlogPost) RouteContext(context.Context) (*website.PageContext, error) {
	body := p.Content
	if isMarkdown(p.ContentType) {
		rendered, err := p.markdown.Render(p.Content)
		if err != nil {
			return nil, fmt.Errorf("render blog post %q: %w", p.Name, err)
		}
		body = rendered
	}

	data := map[string]any{
		"content":      p.policy.Sanitize(body),
		"description":  markdown.Excerpt(p.Content, descriptionLength),
		"blogger":      p.Blogger,
		"parent_route": p.ParentWebsiteRoute,
	}
	if !p.PublishedOn.IsZero() {
		data["published_on"] = p.PublishedOn.Format("2006-01-02")
	}

	return &website.PageContext{
		RefDocType: BlogPostType,
		DocName:    p.Name,
		PageTitle:  p.Title,
		Template:   BlogPostTemplate,
		Data:       data,
	}, nil
}
