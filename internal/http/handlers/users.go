package handlers

import (
	"net/http"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/http/middleware"
)

type avatarPresignRequest struct {
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
}

type avatarConfirmRequest struct {
	AvatarKey string `json:"avatar_key"`
}

// Me возвращает профиль текущего принципала.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.Principal(r.Context())
	if !ok {
		apierrors.WriteStatus(w, r, http.StatusUnauthorized,
			"unauthenticated", "Unauthorized: missing or invalid token")
		return
	}

	user, err := h.svc.Profile(r.Context(), p.ID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userToView(user))
}

// ListUsers — административный список пользователей.
// Роль admin проверяет middleware.RequireRole на маршруте.
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := parsePageQuery(r)
	if !ok {
		writeBadBody(w, r)
		return
	}

	result, err := h.svc.ListUsers(r.Context(), page, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usersToList(result))
}

func (h *Handlers) AvatarPresign(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.Principal(r.Context())
	if !ok {
		apierrors.WriteStatus(w, r, http.StatusUnauthorized,
			"unauthenticated", "Unauthorized: missing or invalid token")
		return
	}

	var in avatarPresignRequest
	if err := decodeStrict(r, &in); err != nil {
		writeBadBody(w, r)
		return
	}

	info, err := h.svc.AvatarUploadURL(r.Context(), p, in.ContentType, in.ContentLength)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, presignToView(info))
}

func (h *Handlers) AvatarConfirm(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.Principal(r.Context())
	if !ok {
		apierrors.WriteStatus(w, r, http.StatusUnauthorized,
			"unauthenticated", "Unauthorized: missing or invalid token")
		return
	}

	var in avatarConfirmRequest
	if err := decodeStrict(r, &in); err != nil {
		writeBadBody(w, r)
		return
	}

	user, err := h.svc.ConfirmAvatar(r.Context(), p, in.AvatarKey)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, userToView(user))
}
