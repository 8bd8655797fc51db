package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

// ListOrders returns all orders newest first, optionally narrowed by
// ?status= and ?user_id=.
func (h *StaffHandler) ListOrders(c echo.Context) error {
	f := store.OrderFilter{Status: strings.TrimSpace(c.QueryParam("status"))}
	if v := c.QueryParam("user_id"); v != "" {
		uid, ok := parseID(v)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		f.UserID = uid
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Store.ListOrders(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// GetOrder returns any order with its items and revisions.
func (h *StaffHandler) GetOrder(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ord, err := h.Store.OrderByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	if ord == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	items, err := h.Store.OrderItems(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load items failed"})
	}
	revs, err := h.Store.ListRevisions(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load revisions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": ord, "items": items, "revisions": revs})
}

type orderStatusReq struct {
	Status string `json:"status"`
}

// SetOrderStatus applies a workflow transition. Illegal transitions
// come back 409 and leave the order untouched.
func (h *StaffHandler) SetOrderStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req orderStatusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
	}
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Orders.UpdateStatus(ctx, id, strings.TrimSpace(req.Status), act); err != nil {
		return jsonErr(c, err, "update failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

type revisionStatusReq struct {
	Status string `json:"status"`
}

// SetRevisionStatus moves a revision through pending / in_progress /
// resolved.
func (h *StaffHandler) SetRevisionStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req revisionStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.TrimSpace(req.Status)
	if !model.ValidRevisionStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	updated, err := h.Store.SetRevisionStatus(ctx, id, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !updated {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "revision.status:"+status, "order_revision", id)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
