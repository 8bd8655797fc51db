package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
	"github.com/brightline/agency-server/internal/utils"
)

type blogPostReq struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// CreateBlogPost creates a draft. An omitted slug is derived from the
// title; an explicit slug must already be URL-safe.
func (h *StaffHandler) CreateBlogPost(c echo.Context) error {
	var req blogPostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	if !utils.ValidSlug(slug) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slug"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p := &model.BlogPost{
		Title:    req.Title,
		Slug:     slug,
		Excerpt:  strings.TrimSpace(req.Excerpt),
		Content:  req.Content,
		Category: strings.TrimSpace(req.Category),
		Status:   model.PostDraft,
		AuthorID: uid,
	}
	if err := h.Store.CreateBlogPost(ctx, p); err != nil {
		return jsonErr(c, err, "create failed")
	}
	h.Audit.Log(ctx, uid, "post.create", "blog_post", p.ID)
	return c.JSON(http.StatusCreated, echo.Map{"post": p})
}

// ListAllBlogPosts returns every post regardless of status,
// optionally narrowed by ?status= and ?category=.
func (h *StaffHandler) ListAllBlogPosts(c echo.Context) error {
	f := store.BlogPostFilter{
		Status:   strings.TrimSpace(c.QueryParam("status")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	}
	if f.Status != "" && !model.ValidPostStatus(f.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	posts, err := h.Store.ListBlogPosts(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// GetBlogPost returns any post by id, drafts included.
func (h *StaffHandler) GetBlogPost(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Store.BlogPostByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"post": p})
}

type blogUpdateReq struct {
	Title    *string `json:"title"`
	Slug     *string `json:"slug"`
	Excerpt  *string `json:"excerpt"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

// UpdateBlogPost patches a post's content fields. Status changes go
// through Publish/Archive instead.
func (h *StaffHandler) UpdateBlogPost(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req blogUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == nil && req.Slug == nil && req.Excerpt == nil && req.Content == nil && req.Category == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must not be empty"})
	}
	if req.Slug != nil && !utils.ValidSlug(strings.TrimSpace(*req.Slug)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slug"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Store.UpdateBlogPost(ctx, id, store.BlogPostUpdate{
		Title:    req.Title,
		Slug:     req.Slug,
		Excerpt:  req.Excerpt,
		Content:  req.Content,
		Category: req.Category,
	})
	if err != nil {
		return jsonErr(c, err, "update failed")
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "post.update", "blog_post", id)
	return c.JSON(http.StatusOK, echo.Map{"post": p})
}

// setPostStatus is shared by Publish and Archive.
func (h *StaffHandler) setPostStatus(c echo.Context, status, action string) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Store.UpdateBlogPost(ctx, id, store.BlogPostUpdate{Status: &status})
	if err != nil {
		return jsonErr(c, err, "update failed")
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, action, "blog_post", id)
	return c.JSON(http.StatusOK, echo.Map{"post": p})
}

// PublishBlogPost makes a post publicly visible. The first publish
// stamps published_at; republishing later keeps the original stamp.
func (h *StaffHandler) PublishBlogPost(c echo.Context) error {
	return h.setPostStatus(c, model.PostPublished, "post.publish")
}

// ArchiveBlogPost hides a post from the public site without deleting
// it.
func (h *StaffHandler) ArchiveBlogPost(c echo.Context) error {
	return h.setPostStatus(c, model.PostArchived, "post.archive")
}

// DeleteBlogPost removes a post entirely.
func (h *StaffHandler) DeleteBlogPost(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Store.DeleteBlogPost(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "post.delete", "blog_post", id)
	return c.NoContent(http.StatusNoContent)
}
