package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/service"
	"github.com/brightline/agency-server/internal/store"
)

// CustomerHandler covers the authenticated customer surface: the cart
// and the customer's own orders.
type CustomerHandler struct {
	Store  store.Store
	Orders *service.OrderService
}

func NewCustomerHandler(s store.Store, orders *service.OrderService) *CustomerHandler {
	return &CustomerHandler{Store: s, Orders: orders}
}

// actor reconstructs the acting user from the JWT claims. The id and
// role in the token are all the workflow checks need.
func actor(c echo.Context) (*model.User, error) {
	uid, err := getUserID(c)
	if err != nil {
		return nil, err
	}
	return &model.User{ID: uid, Role: getRole(c)}, nil
}

type addToCartReq struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}
type cartQtyReq struct {
	Quantity uint32 `json:"quantity"`
}

// cartLine joins a cart item with its product for display.
type cartLine struct {
	Item    model.CartItem      `json:"item"`
	Product *model.AddonProduct `json:"product,omitempty"`
}

// GetCart returns the cart lines with their products and the running
// subtotal. The subtotal reflects current catalog prices; the price
// is only locked at checkout.
func (h *CustomerHandler) GetCart(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Store.ListCartItems(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list cart failed"})
	}

	lines := make([]cartLine, 0, len(items))
	var subtotal int64
	for _, it := range items {
		p, err := h.Store.AddonByID(ctx, it.AddonProductID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load product failed"})
		}
		lines = append(lines, cartLine{Item: it, Product: p})
		if p != nil {
			subtotal += p.PriceCents * int64(it.Quantity)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": lines, "subtotal_cents": subtotal})
}

// AddToCart adds a product to the cart, merging into an existing line
// for the same product.
func (h *CustomerHandler) AddToCart(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req addToCartReq
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	item, err := h.Orders.AddToCart(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return jsonErr(c, err, "add to cart failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": item})
}

// UpdateCartItem replaces a line's quantity.
func (h *CustomerHandler) UpdateCartItem(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req cartQtyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be at least 1"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	item, err := h.Store.UpdateCartItemQty(ctx, uid, itemID, req.Quantity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update cart failed"})
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

// RemoveCartItem deletes a line from the caller's cart.
func (h *CustomerHandler) RemoveCartItem(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	itemID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Store.DeleteCartItem(ctx, uid, itemID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove failed"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

type checkoutReq struct {
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Message      string `json:"message"`
}

// Checkout converts the cart into a pending order.
func (h *CustomerHandler) Checkout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ContactName = strings.TrimSpace(req.ContactName)
	req.ContactEmail = strings.TrimSpace(strings.ToLower(req.ContactEmail))
	if req.ContactName == "" || req.ContactEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "contact_name/contact_email required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ord, items, err := h.Orders.Checkout(ctx, uid, service.Contact{
		Name:  req.ContactName,
		Email: req.ContactEmail,
		Phone: strings.TrimSpace(req.ContactPhone),
	}, req.Message)
	if err != nil {
		return jsonErr(c, err, "checkout failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"order": ord, "items": items})
}

// MyOrders lists the caller's orders, newest first.
func (h *CustomerHandler) MyOrders(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Store.ListOrders(ctx, store.OrderFilter{UserID: uid})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list orders failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// MyOrder returns one of the caller's orders with its items and
// revisions. Other users' orders come back 404, not 403, so order
// ids cannot be probed.
func (h *CustomerHandler) MyOrder(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ord, err := h.Store.OrderByID(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}
	if ord == nil || ord.UserID != uid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	items, err := h.Store.OrderItems(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load items failed"})
	}
	revs, err := h.Store.ListRevisions(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load revisions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"order": ord, "items": items, "revisions": revs})
}

// CancelOrder lets a customer cancel their own order while it is
// still pending.
func (h *CustomerHandler) CancelOrder(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Orders.UpdateStatus(ctx, orderID, model.OrderCancelled, act); err != nil {
		return jsonErr(c, err, "cancel failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

type revisionReq struct {
	Description string `json:"description"`
}

// RequestRevision records a change request against the caller's
// order.
func (h *CustomerHandler) RequestRevision(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req revisionReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Description) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rev, err := h.Orders.RequestRevision(ctx, orderID, strings.TrimSpace(req.Description), act)
	if err != nil {
		return jsonErr(c, err, "revision failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{"revision": rev})
}

// MyRevisions lists the revisions on one of the caller's orders.
func (h *CustomerHandler) MyRevisions(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ord, err := h.Store.OrderByID(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load order failed"})
	}
	if ord == nil || ord.UserID != uid {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	revs, err := h.Store.ListRevisions(ctx, orderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load revisions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"revisions": revs})
}
