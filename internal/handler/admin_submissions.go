package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

// ListSubmissions returns leads newest first, optionally narrowed by
// ?status=, ?service=, ?since=, ?until= (RFC 3339).
func (h *StaffHandler) ListSubmissions(c echo.Context) error {
	f := store.SubmissionFilter{
		Status:  strings.TrimSpace(c.QueryParam("status")),
		Service: strings.TrimSpace(c.QueryParam("service")),
	}
	if f.Status != "" && !model.ValidSubmissionStatus(f.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if v := c.QueryParam("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid since"})
		}
		f.Since = t
	}
	if v := c.QueryParam("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid until"})
		}
		f.Until = t
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	subs, err := h.Store.ListSubmissions(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"submissions": subs})
}

// GetSubmission returns one lead with its notes.
func (h *StaffHandler) GetSubmission(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sub, err := h.Store.SubmissionByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	if sub == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	notes, err := h.Store.ListNotes(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load notes failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"submission": sub, "notes": notes})
}

type submissionUpdateReq struct {
	Status  *string `json:"status"`
	Service *string `json:"service"`
	City    *string `json:"city"`
}

// UpdateSubmission patches a lead's status or classification fields.
func (h *StaffHandler) UpdateSubmission(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req submissionUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status == nil && req.Service == nil && req.City == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	if req.Status != nil && !model.ValidSubmissionStatus(*req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sub, err := h.Store.UpdateSubmission(ctx, id, store.SubmissionUpdate{
		Status:  req.Status,
		Service: req.Service,
		City:    req.City,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if sub == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "submission.update", "submission", id)
	return c.JSON(http.StatusOK, echo.Map{"submission": sub})
}

// DeleteSubmission removes a lead. Its notes go with it.
func (h *StaffHandler) DeleteSubmission(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	deleted, err := h.Store.DeleteSubmission(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	uid, _ := getUserID(c)
	h.Audit.Log(ctx, uid, "submission.delete", "submission", id)
	return c.NoContent(http.StatusNoContent)
}

type noteReq struct {
	Body string `json:"body"`
}

// AddNote appends a note to a lead. Notes are never edited or
// removed afterwards.
func (h *StaffHandler) AddNote(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req noteReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	n := &model.Note{SubmissionID: id, UserID: uid, Body: strings.TrimSpace(req.Body)}
	if err := h.Store.CreateNote(ctx, n); err != nil {
		return jsonErr(c, err, "create note failed")
	}
	h.Audit.Log(ctx, uid, "note.create", "note", n.ID)
	return c.JSON(http.StatusCreated, echo.Map{"note": n})
}

// ListNotes returns a lead's notes in the order they were written.
func (h *StaffHandler) ListNotes(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sub, err := h.Store.SubmissionByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load failed"})
	}
	if sub == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	notes, err := h.Store.ListNotes(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load notes failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"notes": notes})
}
