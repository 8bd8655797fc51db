package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/utils"
)

// JWTAuth returns an Echo middleware that validates an access token
// and injects the caller's identity into the request context. The
// token is read from the "session" cookie first (browser clients) and
// from the Authorization Bearer header as a fallback (API clients).
// Handlers behind this middleware read the identity via
// `c.Get("user_id")` (uint64) and `c.Get("role")` (string).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			userID, role, ok := utils.ParseAccessToken(secret, raw)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}

// tokenFromRequest extracts the raw access token from the session
// cookie or the Authorization header, cookie winning when both are
// present.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie("session"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
