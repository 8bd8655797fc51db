package router

import (
	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/handler"
	"github.com/brightline/agency-server/internal/middleware"
)

// RegisterAuth registers the authentication endpoints. The limiter
// wraps the whole /v1/auth group so credential guessing and reset
// spamming are throttled together; pass a pass-through middleware to
// disable it.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.POST("/forgot-password", a.Forgot)
	g.POST("/reset-password", a.Reset)
	g.POST("/forgot-password-otp", a.ForgotOTP)
	g.POST("/reset-password-otp", a.ResetOTP)
	// Session check sits outside the limiter: it is called on every
	// page load and an absent session is a normal answer.
	e.GET("/v1/auth/session", a.Session)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}
