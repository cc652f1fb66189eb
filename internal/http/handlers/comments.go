package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/http/middleware"
	"blog-service/internal/models"
	"blog-service/internal/service"
)

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID string `json:"parent_id"`
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.Principal(r.Context())
	if !ok {
		apierrors.WriteStatus(w, r, http.StatusUnauthorized,
			"unauthenticated", "Unauthorized: missing or invalid token")
		return
	}

	var in createCommentRequest
	if err := decodeStrict(r, &in); err != nil {
		writeBadBody(w, r)
		return
	}

	comment, err := h.svc.CreateComment(r.Context(), p, service.CreateCommentInput{
		PostID:   chi.URLParam(r, "post_id"),
		ParentID: in.ParentID,
		Content:  in.Content,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentToView(comment))
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := parsePageQuery(r)
	if !ok {
		writeBadBody(w, r)
		return
	}

	result, err := h.svc.ListComments(r.Context(), chi.URLParam(r, "post_id"), models.ListCommentsParams{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, commentsToList(result))
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.Principal(r.Context())
	if !ok {
		apierrors.WriteStatus(w, r, http.StatusUnauthorized,
			"unauthenticated", "Unauthorized: missing or invalid token")
		return
	}

	if err := h.svc.DeleteComment(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Comment deleted successfully"})
}
