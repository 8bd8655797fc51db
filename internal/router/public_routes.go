package router

import (
	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/handler"
)

// RegisterPublic registers the unauthenticated site surface: the
// contact form, the storefront catalog and the published blog.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	e.POST("/v1/leads", p.CreateLead)
	e.GET("/v1/addons", p.ListAddons)
	e.GET("/v1/blog", p.ListBlog)
	e.GET("/v1/blog/:slug", p.BlogBySlug)
}
