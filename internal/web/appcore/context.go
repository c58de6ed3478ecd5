package appcore

import (
	"context"

	"website/internal/render"
	"website/internal/website"
)

// ContextSource resolves a normalized path to its page context.
type ContextSource interface {
	GetContext(ctx context.Context, path string) (*website.PageContext, error)
}

type Context struct {
	contexts ContextSource
	renderer *render.Engine
}

func NewContext(contexts ContextSource, renderer *render.Engine) *Context {
	return &Context{contexts: contexts, renderer: renderer}
}

func (c *Context) Renderer() *render.Engine {
	return c.renderer
}

func IsNotFoundError(err error) bool {
	return website.IsNotFound(err)
}
