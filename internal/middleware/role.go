package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces the authenticated
// user holds one of the given roles. It assumes JWTAuth has already
// stored the role in the context under "role"; a missing or
// unexpected value is treated the same as a disallowed role.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Allowed-role set for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
