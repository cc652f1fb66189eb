package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"blog-service/internal/models"
	"blog-service/internal/pkg/log"
	"blog-service/internal/storage"
)

// ErrAvatarsDisabled — S3 не сконфигурирован, операции с аватарами недоступны.
var ErrAvatarsDisabled = errors.New("avatars are not configured")

// UserPage — страница выдачи пользователей для административного списка.
type UserPage struct {
	Items      []models.User
	Page       int64
	TotalPages int64
	Total      int64
}

// Profile возвращает учётную запись по идентификатору.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service/users/Profile"

	lg := log.From(ctx).With("op", op, "user_id", id.String())

	if id == uuid.Nil {
		lg.Warn("invalid argument: empty user id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	user, err := s.users.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UserByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return user, nil
}

// ListUsers возвращает страницу пользователей, новые первыми.
// Проверка admin-роли выполняется на транспортном слое.
func (s *Service) ListUsers(ctx context.Context, page, limit int64) (*UserPage, error) {
	const op = "service/users/ListUsers"

	lg := log.From(ctx).With("op", op)

	page, limit = s.pageParams(page, limit)

	items, total, err := s.users.ListUsers(ctx, page, limit)
	if err != nil {
		lg.Error("storage error on ListUsers", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return &UserPage{
		Items:      items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}, nil
}

// AvatarUploadURL генерирует presigned PUT URL для загрузки аватара
// principal-а. Клиент загружает объект напрямую в S3, затем
// подтверждает загрузку через ConfirmAvatar.
func (s *Service) AvatarUploadURL(ctx context.Context, p models.Principal, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "service/users/AvatarUploadURL"

	lg := log.From(ctx).With("op", op, "user_id", p.ID.String())

	if s.avatars == nil {
		lg.Warn("avatars storage is not configured")
		return nil, fmt.Errorf("%s: %w", op, ErrAvatarsDisabled)
	}

	info, err := s.avatars.AvatarUploadURL(ctx, p.ID, contentType, contentLength)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			lg.Warn("invalid content type or size", "content_type", contentType, "content_length", contentLength)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		lg.Error("storage error on AvatarUploadURL", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("avatar upload url issued", "avatar_key", info.AvatarKey)

	return info, nil
}

// ConfirmAvatar подтверждает загрузку объекта по ключу и привязывает
// аватар к учётной записи principal-а.
func (s *Service) ConfirmAvatar(ctx context.Context, p models.Principal, key string) (*models.User, error) {
	const op = "service/users/ConfirmAvatar"

	lg := log.From(ctx).With("op", op, "user_id", p.ID.String(), "avatar_key", key)

	if s.avatars == nil {
		lg.Warn("avatars storage is not configured")
		return nil, fmt.Errorf("%s: %w", op, ErrAvatarsDisabled)
	}

	if strings.TrimSpace(key) == "" {
		lg.Warn("invalid argument: empty avatar key")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	url, err := s.avatars.CheckAvatarUpload(ctx, p.ID, key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("uploaded object not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrInvalidArgument):
			lg.Warn("avatar key does not belong to user")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("storage error on CheckAvatarUpload", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	if err := s.users.UpdateAvatar(ctx, p.ID, key, url); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UpdateAvatar", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	user, err := s.users.UserByID(ctx, p.ID)
	if err != nil {
		lg.Error("storage error on UserByID after avatar update", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("avatar confirmed")

	return user, nil
}
