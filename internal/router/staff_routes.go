package router

import (
	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/handler"
	"github.com/brightline/agency-server/internal/middleware"
	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/policy"
)

// RegisterStaff registers the back office under /v1/admin. Admins and
// managers share most of it; user administration stays admin-only.
func RegisterStaff(e *echo.Echo, h *handler.StaffHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleManager),
	)

	// ---- Leads ----
	g.GET("/submissions", h.ListSubmissions)
	g.GET("/submissions/:id", h.GetSubmission)
	g.PATCH("/submissions/:id", h.UpdateSubmission)
	g.DELETE("/submissions/:id", h.DeleteSubmission)
	g.POST("/submissions/:id/notes", h.AddNote)
	g.GET("/submissions/:id/notes", h.ListNotes)

	// ---- Catalog ----
	g.POST("/addons", h.CreateAddon)
	g.GET("/addons", h.ListAllAddons)
	g.PATCH("/addons/:id", h.UpdateAddon)
	g.DELETE("/addons/:id", h.DeleteAddon)

	// ---- Orders ----
	g.GET("/orders", h.ListOrders)
	g.GET("/orders/:id", h.GetOrder)
	g.PATCH("/orders/:id/status", h.SetOrderStatus)
	g.PATCH("/revisions/:id/status", h.SetRevisionStatus)

	// ---- Blog CMS ----
	g.POST("/blog", h.CreateBlogPost)
	g.GET("/blog", h.ListAllBlogPosts)
	g.GET("/blog/:id", h.GetBlogPost)
	g.PATCH("/blog/:id", h.UpdateBlogPost)
	g.POST("/blog/:id/publish", h.PublishBlogPost)
	g.POST("/blog/:id/archive", h.ArchiveBlogPost)
	g.DELETE("/blog/:id", h.DeleteBlogPost)

	// ---- Audit ----
	g.GET("/audit", h.ListAudit,
		middleware.RequirePermission(policy.ActionRead, policy.ResourceAudit))

	// ---- User administration ----
	// The privilege table only grants user management to admins;
	// managers hitting these routes get a 403.
	admin := e.Group("/v1/admin/users", middleware.JWTAuth(jwtSecret))
	admin.GET("", h.ListUsers,
		middleware.RequirePermission(policy.ActionRead, policy.ResourceUser))
	admin.POST("", h.CreateUser,
		middleware.RequirePermission(policy.ActionCreate, policy.ResourceUser))
	admin.PATCH("/:id", h.UpdateUser,
		middleware.RequirePermission(policy.ActionUpdate, policy.ResourceUser))
}
