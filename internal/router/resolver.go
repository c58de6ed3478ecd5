package router

import (
	"context"
	"fmt"

	"website/internal/generators"
	"website/internal/pages"
	"website/internal/website"
)

// PageFinder finds file-based pages by route.
type PageFinder interface {
	Lookup(ctx context.Context, route string) (pages.Descriptor, bool, error)
}

// GeneratorIndex finds record-backed routes and builds their contexts.
type GeneratorIndex interface {
	Lookup(ctx context.Context, route string) (generators.Entry, bool, error)
	RouteContext(ctx context.Context, entry generators.Entry) (*website.PageContext, error)
}

// generatorFirst lists the routes where a record page shadows a file page.
var generatorFirst = map[string]bool{
	"about":   true,
	"contact": true,
}

type Resolver struct {
	pages      PageFinder
	generators GeneratorIndex
}

func NewResolver(pages PageFinder, generators GeneratorIndex) *Resolver {
	return &Resolver{pages: pages, generators: generators}
}

// Resolve builds the page context for path or fails with website.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, path string) (*website.PageContext, error) {
	first, second := r.fromPage, r.fromGenerator
	if generatorFirst[path] {
		first, second = second, first
	}

	pageCtx, err := first(ctx, path)
	if err != nil {
		return nil, err
	}
	if pageCtx == nil {
		pageCtx, err = second(ctx, path)
		if err != nil {
			return nil, err
		}
	}
	if pageCtx == nil {
		return nil, fmt.Errorf("resolve %q: %w", path, website.ErrNotFound)
	}

	pageCtx.DocType = pageCtx.RefDocType
	pageCtx.Title = pageCtx.PageTitle
	pageCtx.Pathname = path
	return pageCtx, nil
}

func (r *Resolver) fromPage(ctx context.Context, path string) (*website.PageContext, error) {
	page, ok, err := r.pages.Lookup(ctx, path)
	if err != nil || !ok {
		return nil, err
	}
	return page.PageContext(), nil
}

func (r *Resolver) fromGenerator(ctx context.Context, path string) (*website.PageContext, error) {
	entry, ok, err := r.generators.Lookup(ctx, path)
	if err != nil || !ok {
		return nil, err
	}
	return r.generators.RouteContext(ctx, entry)
}
