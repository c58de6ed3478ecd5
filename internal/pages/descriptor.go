package pages

import "website/internal/website"

// Descriptor is one file-based page found under an app's page roots.
type Descriptor struct {
	RouteName  string `json:"route_name"`
	BaseName   string `json:"basename"`
	App        string `json:"app"`
	Template   string `json:"template"`
	Controller string `json:"controller"`

	// Source is the prepared template text. It is empty for non-HTML pages,
	// which are rendered straight from Template.
	Source      string `json:"source,omitempty"`
	OnlyContent bool   `json:"only_content,omitempty"`

	Title         string `json:"title,omitempty"`
	NoCache       bool   `json:"no_cache,omitempty"`
	NoHeader      bool   `json:"no_header,omitempty"`
	NoBreadcrumbs bool   `json:"no_breadcrumbs,omitempty"`
}

func (d Descriptor) PageContext() *website.PageContext {
	return &website.PageContext{
		RouteName:       d.RouteName,
		PageOrGenerator: website.KindPage,
		PageTitle:       d.Title,
		App:             d.App,
		Template:        d.Template,
		Source:          d.Source,
		Controller:      d.Controller,
		NoCache:         d.NoCache,
		NoHeader:        d.NoHeader,
		NoBreadcrumbs:   d.NoBreadcrumbs,
	}
}
