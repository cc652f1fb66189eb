package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog-service/internal/authz"
	"blog-service/internal/models"
	"blog-service/internal/pkg/log"
	"blog-service/internal/storage"
)

// Ограничения контента постов.
const (
	minTitleLen   = 3
	maxTitleLen   = 200
	minContentLen = 10
)

// CreatePostInput — создание поста от имени principal.
type CreatePostInput struct {
	Title     string
	Content   string
	Tags      []string
	Published bool
}

// UpdatePostInput — частичное обновление: nil-поля не трогаются.
type UpdatePostInput struct {
	Title     *string
	Content   *string
	Tags      *[]string
	Published *bool
}

// normalizeTags убирает пустые теги и дубликаты, сохраняя порядок.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}

		seen[t] = struct{}{}
		out = append(out, t)
	}

	return out
}

// CreatePost — бизнес-операция создания поста.
//
// Правила:
//   - заголовок от minTitleLen до maxTitleLen символов (после TrimSpace);
//   - контент не короче minContentLen;
//   - автором становится principal; имя автора денормализуется в документ.
func (s *Service) CreatePost(ctx context.Context, p models.Principal, in CreatePostInput) (*models.Post, error) {
	const op = "service/posts/CreatePost"

	lg := log.From(ctx).With("op", op, "user_id", p.ID.String())

	in.Title = strings.TrimSpace(in.Title)
	if len(in.Title) < minTitleLen || len(in.Title) > maxTitleLen {
		lg.Warn("invalid argument: title length out of range")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	in.Content = strings.TrimSpace(in.Content)
	if len(in.Content) < minContentLen {
		lg.Warn("invalid argument: content too short")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	post := models.Post{
		Title:      in.Title,
		Content:    in.Content,
		Tags:       normalizeTags(in.Tags),
		AuthorID:   p.ID,
		AuthorName: p.Name,
		Published:  in.Published,
	}

	result, err := s.posts.CreatePost(ctx, post)
	if err != nil {
		lg.Error("storage error on CreatePost", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("post created", "post_id", result.ID)

	return result, nil
}

// PostByID возвращает пост по идентификатору через read-through кэш.
//
// Промах кэша и любые ошибки кэша не фатальны: ответ собирается
// из хранилища, кэш греется best-effort.
func (s *Service) PostByID(ctx context.Context, id string) (*models.Post, error) {
	const op = "service/posts/PostByID"

	lg := log.From(ctx).With("op", op, "post_id", id)

	if strings.TrimSpace(id) == "" {
		lg.Warn("invalid argument: empty post id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if s.pcache != nil {
		if post, ok, err := s.pcache.Get(ctx, id); err != nil {
			lg.Warn("post cache read failed", "err", err)
		} else if ok {
			return post, nil
		}
	}

	post, err := s.posts.PostByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("post not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on PostByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if s.pcache != nil {
		if err := s.pcache.Set(ctx, post, s.cfg.Redis.PostTTL); err != nil {
			lg.Warn("post cache write failed", "err", err)
		}
	}

	return post, nil
}

// normalizeSort приводит поле и направление сортировки к белому списку.
// Незнакомые значения откатываются к умолчанию: новые посты первыми.
func normalizeSort(sortBy, sortOrder string) (string, string) {
	switch strings.TrimSpace(sortBy) {
	case models.PostSortTitle:
		sortBy = models.PostSortTitle
	case models.PostSortUpdatedAt, "updatedAt":
		sortBy = models.PostSortUpdatedAt
	default:
		sortBy = models.PostSortCreatedAt
	}

	if strings.EqualFold(strings.TrimSpace(sortOrder), models.SortAsc) {
		return sortBy, models.SortAsc
	}

	return sortBy, models.SortDesc
}

// ListPosts возвращает страницу опубликованных постов.
func (s *Service) ListPosts(ctx context.Context, in models.ListPostsParams) (*models.PostPage, error) {
	const op = "service/posts/ListPosts"

	lg := log.From(ctx).With("op", op)

	in.Page, in.Limit = s.pageParams(in.Page, in.Limit)
	in.Author = strings.TrimSpace(in.Author)
	in.Tags = normalizeTags(in.Tags)
	in.Search = strings.TrimSpace(in.Search)
	in.SortBy, in.SortOrder = normalizeSort(in.SortBy, in.SortOrder)

	page, err := s.posts.ListPosts(ctx, in)
	if err != nil {
		lg.Error("storage error on ListPosts", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return page, nil
}

// UpdatePost — бизнес-операция частичного обновления поста.
//
// Правка доступна владельцу поста либо администратору; проверка
// выполняется ПОСЛЕ загрузки поста, поэтому чужой несуществующий
// пост даёт 404, а чужой существующий — 403.
func (s *Service) UpdatePost(ctx context.Context, p models.Principal, id string, in UpdatePostInput) (*models.Post, error) {
	const op = "service/posts/UpdatePost"

	lg := log.From(ctx).With("op", op, "user_id", p.ID.String(), "post_id", id)

	post, err := s.posts.PostByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("post not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on PostByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := authz.RequireOwnerOrRole(p, post.AuthorID, models.RoleAdmin); err != nil {
		lg.Warn("update forbidden", "author_id", post.AuthorID.String())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	upd := models.PostUpdate{
		Published: in.Published,
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if len(title) < minTitleLen || len(title) > maxTitleLen {
			lg.Warn("invalid argument: title length out of range")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		upd.Title = &title
	}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if len(content) < minContentLen {
			lg.Warn("invalid argument: content too short")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		upd.Content = &content
	}

	if in.Tags != nil {
		tags := normalizeTags(*in.Tags)
		upd.Tags = &tags
	}

	result, err := s.posts.UpdatePost(ctx, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("post disappeared during update")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on UpdatePost", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	s.invalidatePost(ctx, id)

	lg.Info("post updated")

	return result, nil
}

// DeletePost — удаление поста владельцем либо администратором.
func (s *Service) DeletePost(ctx context.Context, p models.Principal, id string) error {
	const op = "service/posts/DeletePost"

	lg := log.From(ctx).With("op", op, "user_id", p.ID.String(), "post_id", id)

	post, err := s.posts.PostByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("post not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on PostByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := authz.RequireOwnerOrRole(p, post.AuthorID, models.RoleAdmin); err != nil {
		lg.Warn("delete forbidden", "author_id", post.AuthorID.String())
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("post disappeared during delete")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on DeletePost", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	// Комментарии удалённого поста никому не видны, поэтому сбой
	// каскадной чистки не фатален.
	if err := s.comments.DeleteByPost(ctx, id); err != nil {
		lg.Warn("cascade comments delete failed", "err", err)
	}

	s.invalidatePost(ctx, id)

	lg.Info("post deleted")

	return nil
}

// invalidatePost выбрасывает пост из кэша best-effort.
func (s *Service) invalidatePost(ctx context.Context, id string) {
	if s.pcache == nil {
		return
	}

	if err := s.pcache.Invalidate(ctx, id); err != nil {
		log.From(ctx).Warn("post cache invalidation failed", "post_id", id, "err", err)
	}
}
