package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

type addonReq struct {
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// CreateAddon adds a product to the catalog.
func (h *StaffHandler) CreateAddon(c echo.Context) error {
	var req addonReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := &model.AddonProduct{
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := h.Store.CreateAddon(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "addon.create", "addon_product", p.ID)
	return c.JSON(http.StatusCreated, echo.Map{"addon": p})
}

// ListAllAddons returns the full catalog including inactive products.
func (h *StaffHandler) ListAllAddons(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Store.ListAddons(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"addons": items})
}

type addonUpdateReq struct {
	Name        *string `json:"name"`
	PriceCents  *int64  `json:"price_cents"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateAddon patches a product. A price change here never touches
// items already snapshotted into orders.
func (h *StaffHandler) UpdateAddon(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req addonUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil && req.PriceCents == nil && req.Description == nil && req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
	}
	if req.PriceCents != nil && *req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Store.UpdateAddon(ctx, id, store.AddonUpdate{
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "addon.update", "addon_product", id)
	return c.JSON(http.StatusOK, echo.Map{"addon": p})
}

// DeleteAddon removes a product from the catalog. Existing order
// items keep their snapshots; preferring deactivation over deletion
// is a policy choice left to the operator.
func (h *StaffHandler) DeleteAddon(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Store.DeleteAddon(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "addon.delete", "addon_product", id)
	return c.NoContent(http.StatusNoContent)
}
