package web

import (
	"website/framework"
	"website/internal/web/appcore"
)

const pagePattern = "/*"

func Handlers() []framework.RouteHandler[*appcore.Context] {
	return []framework.RouteHandler[*appcore.Context]{
		framework.PageOnlyRouteHandler[*appcore.Context, appcore.PathParams, appcore.PageView]{
			Page: framework.PageModule[*appcore.Context, appcore.PathParams, appcore.PageView]{
				Pattern:     pagePattern,
				ParseParams: appcore.ParsePath,
				Load:        appcore.LoadPage,
				Render:      appcore.RenderPage,
				Meta:        appcore.PageMeta,
			},
		},
	}
}
