package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/queue"
	"github.com/brightline/agency-server/internal/service"
	"github.com/brightline/agency-server/internal/store"
)

// PublicHandler serves the unauthenticated surface: the contact form,
// the storefront catalog and the published blog.
type PublicHandler struct {
	Store store.Store
}

func NewPublicHandler(s store.Store) *PublicHandler {
	return &PublicHandler{Store: s}
}

type leadReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// CreateLead records a contact-form submission. New leads always
// start in the "new" status regardless of anything the client sends.
func (h *PublicHandler) CreateLead(c echo.Context) error {
	var req leadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/message required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sub := &model.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   strings.TrimSpace(req.Phone),
		City:    strings.TrimSpace(req.City),
		Service: strings.TrimSpace(req.Service),
		Message: req.Message,
	}
	if err := h.Store.CreateSubmission(ctx, sub); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lead failed"})
	}

	ev := queue.LeadSubmittedEvent{
		SubmissionID: sub.ID,
		Name:         sub.Name,
		Email:        sub.Email,
		Service:      sub.Service,
		CreatedAt:    sub.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := service.PublishEvent(ctx, service.LeadSubmittedQueue, ev); err != nil {
		log.Printf("leads: publish lead.submitted failed: %v", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"submission": sub})
}

// ListAddons returns the active add-on catalog. Inactive products are
// retained in storage but never shown here.
func (h *PublicHandler) ListAddons(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Store.ListAddons(ctx, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list addons failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"addons": items})
}

// ListBlog returns published posts, newest first. An optional
// ?category= query narrows the list.
func (h *PublicHandler) ListBlog(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	posts, err := h.Store.ListBlogPosts(ctx, store.BlogPostFilter{
		Status:   model.PostPublished,
		Category: strings.TrimSpace(c.QueryParam("category")),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list posts failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// BlogBySlug returns a single published post. Drafts and archived
// posts are indistinguishable from missing ones.
func (h *PublicHandler) BlogBySlug(c echo.Context) error {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Store.BlogPostBySlug(ctx, slug)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load post failed"})
	}
	if p == nil || p.Status != model.PostPublished {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"post": p})
}
