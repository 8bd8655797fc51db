package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ListAudit returns the most recent audit entries, newest first.
// ?limit= caps the result, defaulting to 100.
func (h *StaffHandler) ListAudit(c echo.Context) error {
	limit := 100
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		if n > 1000 {
			n = 1000
		}
		limit = n
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Audit.List(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"audit": entries})
}
