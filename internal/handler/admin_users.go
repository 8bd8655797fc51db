package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/mailer"
	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

// ListUsers returns every account. Password hashes never leave the
// handler layer.
func (h *StaffHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	out := make([]userPart, len(users))
	for i := range users {
		out[i] = toUserPart(&users[i])
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

type createUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser lets an admin create a staff or customer account. A
// welcome email goes out best-effort; the account exists either way
// and the response says whether the email was sent.
func (h *StaffHandler) CreateUser(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = model.RoleManager
	}
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		return jsonErr(c, err, "create user failed")
	}

	sent := h.Mail.Send(mailer.Message{
		To:      u.Email,
		Subject: "Your Brightline account",
		Text:    fmt.Sprintf("Hi %s,\n\nAn account has been created for you with the role %s. You can sign in with your email address.\n", u.Name, u.Role),
	})

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "user.create", "user", u.ID)
	return c.JSON(http.StatusCreated, echo.Map{"user": toUserPart(u), "email_sent": sent})
}

type userUpdateReq struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUser patches an account's name, role or active flag.
// Deactivation is the supported way to cut off an account; its
// refresh tokens stop working at the next check.
func (h *StaffHandler) UpdateUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil && req.Role == nil && req.IsActive == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Role != nil && !model.ValidRole(*req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	uid, _ := getUserID(c)
	if req.IsActive != nil && !*req.IsActive && uid == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot deactivate yourself"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Store.UpdateUser(ctx, id, store.UserUpdate{
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	h.Audit.Log(ctx, uid, "user.update", "user", id)
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}
