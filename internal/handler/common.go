package handler // handler defines the HTTP layer of the API

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/service"
	"github.com/brightline/agency-server/internal/store"
)

// dbTimeout bounds every store call made from a handler.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID extracts the authenticated user's id placed in the
// context by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the authenticated user's role, defaulting to the
// empty string when absent.
func getRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// pathID parses a numeric :id style path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	return parseID(c.Param(name))
}

// parseID parses a positive numeric identifier.
func parseID(s string) (uint64, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	return n, err == nil && n > 0
}

// jsonErr maps the known sentinel errors onto HTTP statuses; anything
// unrecognized becomes a 500 with the given fallback message.
func jsonErr(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, store.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, store.ErrSlugExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already exists"})
	case errors.Is(err, store.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "illegal status transition"})
	case errors.Is(err, store.ErrEmptyCart):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrRevisionClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order does not accept revisions"})
	case errors.Is(err, service.ErrQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	case errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	case errors.Is(err, service.ErrInvalidOTP):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired code"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
