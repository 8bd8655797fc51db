package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightline/agency-server/internal/config"
	"github.com/brightline/agency-server/internal/handler"
	"github.com/brightline/agency-server/internal/mailer"
	"github.com/brightline/agency-server/internal/middleware"
	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/router"
	"github.com/brightline/agency-server/internal/service"
	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/store/memory"
)

type sinkMailer struct{ msgs []mailer.Message }

func (m *sinkMailer) Send(msg mailer.Message) bool {
	m.msgs = append(m.msgs, msg)
	return true
}

type testServer struct {
	e    *echo.Echo
	st   store.Store
	auth *service.AuthService
	mail *sinkMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := memory.New()
	require.NoError(t, st.Seed(context.Background()))

	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
		ResetTokenTTL:  time.Hour,
		OTPTTL:         10 * time.Minute,
		PublicBaseURL:  "http://localhost:3000",
	}

	mail := &sinkMailer{}
	auditSvc := service.NewAuditService(st)
	authSvc := service.NewAuthService(st, mail, cfg)
	orderSvc := service.NewOrderService(st, auditSvc)

	e := echo.New()
	limiter := middleware.NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	router.RegisterRoutes(e)
	router.RegisterPublic(e, handler.NewPublicHandler(st))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, authSvc, st), cfg.JWTSecret, limiter)
	router.RegisterCustomer(e, handler.NewCustomerHandler(st, orderSvc), cfg.JWTSecret)
	router.RegisterStaff(e, handler.NewStaffHandler(st, orderSvc, auditSvc, authSvc, mail), cfg.JWTSecret)

	return &testServer{e: e, st: st, auth: authSvc, mail: mail}
}

// do fires a JSON request at the in-process server. A non-empty
// token goes into the Authorization header.
func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// signup registers a fresh account and returns its access token.
func (ts *testServer) signup(t *testing.T, name, email, password string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	access := body["access"].(map[string]interface{})
	return access["token"].(string)
}

func (ts *testServer) staffToken(t *testing.T, email, role string) string {
	t.Helper()
	u, err := ts.auth.Register(context.Background(), "Staff", email, "staff-pass-123", role)
	require.NoError(t, err)
	sess, err := ts.auth.IssueSession(context.Background(), u)
	require.NoError(t, err)
	return sess.AccessToken
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	token := ts.signup(t, "Jane", "jane@example.com", "hunter2secret")
	require.NotEmpty(t, token)

	// Duplicate registration conflicts.
	rec := ts.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"name": "Jane", "email": "jane@example.com", "password": "hunter2secret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "jane@example.com", "password": "hunter2secret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "customer", user["role"])
	// The password hash never appears in a response.
	assert.NotContains(t, rec.Body.String(), "password_hash")

	rec = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "jane@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "ghost@example.com", "password": "hunter2secret",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionCheck(t *testing.T) {
	ts := newTestServer(t)

	// No session is a 200 with authenticated=false, never an error.
	rec := ts.do(t, http.MethodGet, "/v1/auth/session", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["authenticated"])

	rec = ts.do(t, http.MethodGet, "/v1/auth/session", "garbage-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["authenticated"])

	token := ts.signup(t, "Jane", "jane@example.com", "hunter2secret")
	rec = ts.do(t, http.MethodGet, "/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["authenticated"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "jane@example.com", user["email"])
}

func TestForgotPasswordDoesNotEnumerate(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "Jane", "jane@example.com", "hunter2secret")

	known := ts.do(t, http.MethodPost, "/v1/auth/forgot-password", "", map[string]string{"email": "jane@example.com"})
	unknown := ts.do(t, http.MethodPost, "/v1/auth/forgot-password", "", map[string]string{"email": "ghost@example.com"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String(), "responses must be indistinguishable")

	// Only the real account got an email.
	require.Len(t, ts.mail.msgs, 1)
	assert.Equal(t, "jane@example.com", ts.mail.msgs[0].To)
}

func TestResetPasswordValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/v1/auth/reset-password", "", map[string]string{
		"token": "x", "password": "new-pass-123", "confirm_password": "different",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/v1/auth/reset-password", "", map[string]string{
		"token": "bogus", "password": "new-pass-123", "confirm_password": "new-pass-123",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicLeads(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/v1/leads", "", map[string]string{
		"name": "Prospect", "email": "p@example.com", "service": "seo", "message": "help my rankings",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := decode(t, rec)["submission"].(map[string]interface{})
	assert.Equal(t, model.SubmissionNew, sub["status"])

	rec = ts.do(t, http.MethodPost, "/v1/leads", "", map[string]string{"name": "No Message"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicAddonsHideInactive(t *testing.T) {
	ts := newTestServer(t)

	p := &model.AddonProduct{Name: "Secret Offer", PriceCents: 100, IsActive: false}
	require.NoError(t, ts.st.CreateAddon(context.Background(), p))

	rec := ts.do(t, http.MethodGet, "/v1/addons", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Secret Offer")
}

func TestPublicBlogShowsOnlyPublished(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	draft := &model.BlogPost{Title: "Draft", Slug: "draft-post", Status: model.PostDraft, AuthorID: 1}
	require.NoError(t, ts.st.CreateBlogPost(ctx, draft))
	pub := &model.BlogPost{Title: "Live", Slug: "live-post", Status: model.PostPublished, AuthorID: 1}
	require.NoError(t, ts.st.CreateBlogPost(ctx, pub))

	rec := ts.do(t, http.MethodGet, "/v1/blog", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "live-post")
	assert.NotContains(t, rec.Body.String(), "draft-post")

	rec = ts.do(t, http.MethodGet, "/v1/blog/live-post", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	// Drafts 404 by slug, same as missing posts.
	rec = ts.do(t, http.MethodGet, "/v1/blog/draft-post", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerCannotReachBackOffice(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "Jane", "jane@example.com", "hunter2secret")

	// Authenticated but under-privileged is 403, not 401.
	rec := ts.do(t, http.MethodGet, "/v1/admin/submissions", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodGet, "/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestManagerCannotManageUsers(t *testing.T) {
	ts := newTestServer(t)
	token := ts.staffToken(t, "manager@example.com", model.RoleManager)

	rec := ts.do(t, http.MethodGet, "/v1/admin/submissions", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, http.MethodPost, "/v1/admin/users", token, map[string]string{
		"name": "X", "email": "x@example.com", "password": "whatever-123",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signup(t, "Jane", "jane@example.com", "hunter2secret")

	// The seeded catalog starts at id 1.
	rec := ts.do(t, http.MethodPost, "/v1/cart/items", token, map[string]interface{}{
		"product_id": 1, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode(t, rec)
	assert.Equal(t, float64(400000), cart["subtotal_cents"])

	rec = ts.do(t, http.MethodPost, "/v1/orders", token, map[string]string{
		"contact_name": "Jane", "contact_email": "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ord := decode(t, rec)["order"].(map[string]interface{})
	assert.Equal(t, model.OrderPending, ord["status"])
	assert.Equal(t, float64(400000), ord["total_cents"])

	// The cart emptied; checking out again is a 400.
	rec = ts.do(t, http.MethodPost, "/v1/orders", token, map[string]string{
		"contact_name": "Jane", "contact_email": "jane@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode(t, rec)["orders"].([]interface{})
	assert.Len(t, orders, 1)

	// Another customer cannot see it.
	otherToken := ts.signup(t, "John", "john@example.com", "hunter2secret")
	rec = ts.do(t, http.MethodGet, "/v1/orders/1", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Owner cancels their pending order.
	rec = ts.do(t, http.MethodPost, "/v1/orders/1/cancel", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	// Cancelling again hits the terminal-state rule.
	rec = ts.do(t, http.MethodPost, "/v1/orders/1/cancel", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStaffOrderManagement(t *testing.T) {
	ts := newTestServer(t)
	customer := ts.signup(t, "Jane", "jane@example.com", "hunter2secret")
	staff := ts.staffToken(t, "manager@example.com", model.RoleManager)

	rec := ts.do(t, http.MethodPost, "/v1/cart/items", customer, map[string]interface{}{"product_id": 1, "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, "/v1/orders", customer, map[string]string{
		"contact_name": "Jane", "contact_email": "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Staff move the order through the pipeline.
	rec = ts.do(t, http.MethodPatch, "/v1/admin/orders/1/status", staff, map[string]string{"status": model.OrderInProgress})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Illegal jump is a conflict.
	rec = ts.do(t, http.MethodPatch, "/v1/admin/orders/1/status", staff, map[string]string{"status": model.OrderPending})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Customer files a revision now that work started.
	rec = ts.do(t, http.MethodPost, "/v1/orders/1/revisions", customer, map[string]string{"description": "bigger logo"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPatch, "/v1/admin/revisions/1/status", staff, map[string]string{"status": model.RevisionResolved})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/v1/admin/orders/1", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	revs := body["revisions"].([]interface{})
	require.Len(t, revs, 1)

	// The audit endpoint recorded the activity.
	rec = ts.do(t, http.MethodGet, "/v1/admin/audit", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	audit := decode(t, rec)["audit"].([]interface{})
	assert.NotEmpty(t, audit)
}

func TestAdminCreatesManager(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.staffToken(t, "admin@example.com", model.RoleAdmin)

	rec := ts.do(t, http.MethodPost, "/v1/admin/users", admin, map[string]string{
		"name": "New Manager", "email": "nm@example.com", "password": "manager-pass-1", "role": model.RoleManager,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["email_sent"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, model.RoleManager, user["role"])

	// The fresh manager can sign in and reach the back office.
	rec = ts.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"email": "nm@example.com", "password": "manager-pass-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decode(t, rec)["access"].(map[string]interface{})["token"].(string)
	rec = ts.do(t, http.MethodGet, "/v1/admin/submissions", tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLeadLifecycleScenario(t *testing.T) {
	ts := newTestServer(t)
	staff := ts.staffToken(t, "manager@example.com", model.RoleManager)

	rec := ts.do(t, http.MethodPost, "/v1/leads", "", map[string]string{
		"name": "Prospect", "email": "p@example.com", "service": "seo", "message": "rank me",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := int(decode(t, rec)["submission"].(map[string]interface{})["id"].(float64))
	require.Equal(t, 1, id)

	rec = ts.do(t, http.MethodPatch, "/v1/admin/submissions/1", staff, map[string]string{"status": model.SubmissionInProgress})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/v1/admin/submissions/1/notes", staff, map[string]string{"body": "called, sending proposal"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/v1/admin/submissions/1", staff, map[string]string{"status": model.SubmissionDelivered})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/v1/admin/submissions/1", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	sub := body["submission"].(map[string]interface{})
	assert.Equal(t, model.SubmissionDelivered, sub["status"])
	notes := body["notes"].([]interface{})
	require.Len(t, notes, 1)

	// Bogus status is rejected up front.
	rec = ts.do(t, http.MethodPatch, "/v1/admin/submissions/1", staff, map[string]string{"status": "weird"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
