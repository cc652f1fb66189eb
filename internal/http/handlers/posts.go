package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/http/middleware"
	"blog-service/internal/models"
	"blog-service/internal/service"
)

type createPostRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Published *bool    `json:"published"`
}

type updatePostRequest struct {
	Title     *string   `json:"title"`
	Content   *string   `json:"content"`
	Tags      *[]string `json:"tags"`
	Published *bool     `json:"published"`
}

// parsePageQuery разбирает page/limit; невалидное значение — ошибка разбора.
func parsePageQuery(r *http.Request) (int64, int64, bool) {
	var page, limit int64

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		page = n
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return 0, 0, false
		}
		limit = n
	}

	return page, limit, true
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.Principal(r.Context())
	if !ok {
		apierrors.WriteStatus(w, r, http.StatusUnauthorized,
			"unauthenticated", "Unauthorized: missing or invalid token")
		return
	}

	var in createPostRequest
	if err := decodeStrict(r, &in); err != nil {
		writeBadBody(w, r)
		return
	}

	// Новый пост публикуется сразу, если published явно не выключен.
	published := true
	if in.Published != nil {
		published = *in.Published
	}

	post, err := h.svc.CreatePost(r.Context(), p, service.CreatePostInput{
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		Published: published,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, postToView(post))
}

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := parsePageQuery(r)
	if !ok {
		writeBadBody(w, r)
		return
	}

	q := r.URL.Query()
	params := models.ListPostsParams{
		Page:      page,
		Limit:     limit,
		Author:    q.Get("author"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	if tags := q.Get("tags"); tags != "" {
		params.Tags = strings.Split(tags, ",")
	}

	result, err := h.svc.ListPosts(r.Context(), params)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postsToList(result))
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.PostByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postToView(post))
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.Principal(r.Context())
	if !ok {
		apierrors.WriteStatus(w, r, http.StatusUnauthorized,
			"unauthenticated", "Unauthorized: missing or invalid token")
		return
	}

	var in updatePostRequest
	if err := decodeStrict(r, &in); err != nil {
		writeBadBody(w, r)
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), p, chi.URLParam(r, "id"), service.UpdatePostInput{
		Title:     in.Title,
		Content:   in.Content,
		Tags:      in.Tags,
		Published: in.Published,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postToView(post))
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.Principal(r.Context())
	if !ok {
		apierrors.WriteStatus(w, r, http.StatusUnauthorized,
			"unauthenticated", "Unauthorized: missing or invalid token")
		return
	}

	if err := h.svc.DeletePost(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}
