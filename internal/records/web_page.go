package records

import (
	"context"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"website/internal/website"
)

type WebPage struct {
	Name               string    `json:"name"`
	PageName           string    `json:"page_name"`
	ParentWebsiteRoute string    `json:"parent_website_route"`
	Title              string    `json:"title"`
	MainSection        string    `json:"main_section"`
	Published          bool      `json:"published"`
	Modified           time.Time `json:"modified"`

	policy *bluemonday.Policy
}

func (p *WebPage) RouteContext(context.Context) (*website.PageContext, error) {
	return &website.PageContext{
		RefDocType: WebPageType,
		DocName:    p.Name,
		PageTitle:  p.Title,
		Template:   WebPageTemplate,
		Data: map[string]any{
			"main_section": p.policy.Sanitize(p.MainSection),
			"modified":     p.Modified.UTC().Format(time.RFC3339),
		},
	}, nil
}
