package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/config"
	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/service"
	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Auth  *service.AuthService
	Store store.Store
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService, s store.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth, Store: s}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// setSessionCookie places the access token in an HTTP-only cookie so
// browser clients carry it automatically. API clients may ignore the
// cookie and use the Bearer header instead.
func setSessionCookie(c echo.Context, token string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register creates a customer account and signs it in immediately.
// Staff roles are never assignable from this endpoint.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
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

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Name, req.Email, req.Password, model.RoleCustomer)
	if err != nil {
		return jsonErr(c, err, "create user failed")
	}
	sess, err := h.Auth.IssueSession(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	setSessionCookie(c, sess.AccessToken, sess.AccessExpiresAt)

	return c.JSON(http.StatusCreated, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: sess.AccessToken, Expires: sess.AccessExpiresAt},
		Refresh: tokenPart{Token: sess.RefreshToken, Expires: sess.RefreshExpiresAt},
	})
}

// Login verifies credentials and returns a fresh token pair. All
// failure modes collapse into the same 401 so the endpoint reveals
// nothing about which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	sess, err := h.Auth.IssueSession(ctx, u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	setSessionCookie(c, sess.AccessToken, sess.AccessExpiresAt)

	return c.JSON(http.StatusOK, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: sess.AccessToken, Expires: sess.AccessExpiresAt},
		Refresh: tokenPart{Token: sess.RefreshToken, Expires: sess.RefreshExpiresAt},
	})
}

// Refresh rotates a refresh token: the presented token is revoked and
// a whole new pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, u, err := h.Auth.RefreshSession(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if err == service.ErrInvalidToken {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	setSessionCookie(c, sess.AccessToken, sess.AccessExpiresAt)

	return c.JSON(http.StatusOK, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: sess.AccessToken, Expires: sess.AccessExpiresAt},
		Refresh: tokenPart{Token: sess.RefreshToken, Expires: sess.RefreshExpiresAt},
	})
}

// RefreshAccess mints a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Auth.AccessTokenFor(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if err == service.ErrInvalidToken {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	setSessionCookie(c, sess.AccessToken, sess.AccessExpiresAt)

	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: sess.AccessToken, Expires: sess.AccessExpiresAt},
	})
}

// Logout revokes the presented refresh token (if any) and clears the
// session cookie. Always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)

	ctx, cancel := reqCtx(c)
	defer cancel()

	_ = h.Auth.Logout(ctx, strings.TrimSpace(req.RefreshToken))
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// Session reports whether the caller holds a valid session. It is
// mounted outside the auth middleware: an absent or invalid token is
// a normal answer here, not an error.
func (h *AuthHandler) Session(c echo.Context) error {
	raw := ""
	if cookie, err := c.Cookie("session"); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		auth := c.Request().Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			raw = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if raw == "" {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	userID, _, ok := utils.ParseAccessToken(h.Cfg.JWTSecret, raw)
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Store.UserByID(ctx, userID)
	if err != nil || u == nil || !u.IsActive {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"authenticated": true, "user": toUserPart(u)})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Store.UserByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}
