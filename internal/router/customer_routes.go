package router

import (
	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/handler"
	"github.com/brightline/agency-server/internal/middleware"
	"github.com/brightline/agency-server/internal/model"
)

// RegisterCustomer registers the authenticated customer surface
// under /v1. Staff accounts can use these endpoints too; the order
// workflow applies its own ownership rules.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleUser, model.RoleManager, model.RoleAdmin),
	)

	// ---- Cart ----
	g.GET("/cart", h.GetCart)
	g.POST("/cart/items", h.AddToCart)
	g.PATCH("/cart/items/:id", h.UpdateCartItem)
	g.DELETE("/cart/items/:id", h.RemoveCartItem)

	// ---- Orders ----
	g.POST("/orders", h.Checkout)
	g.GET("/orders", h.MyOrders)
	g.GET("/orders/:id", h.MyOrder)
	g.POST("/orders/:id/cancel", h.CancelOrder)
	g.POST("/orders/:id/revisions", h.RequestRevision)
	g.GET("/orders/:id/revisions", h.MyRevisions)
}
