package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/policy"
)

// RequirePermission enforces the privilege table for a single
// action/resource pair. Like RequireRole it expects JWTAuth to have
// run first; the difference is that the decision comes from the
// policy package instead of an inline role list.
func RequirePermission(action, resource string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !policy.CanPerform(role, action, resource) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
