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

// maxCommentLen — максимальная длина комментария в символах.
const maxCommentLen = 1000

// CreateCommentInput — создание корневого комментария или ответа.
// Пустой ParentID означает корень; ответ обязан ссылаться на
// комментарий того же поста.
type CreateCommentInput struct {
	PostID   string
	ParentID string
	Content  string
}

// CreateComment — бизнес-операция создания комментария.
//
// Правила:
//   - контент обязателен и не длиннее maxCommentLen;
//   - комментировать можно только существующий опубликованный пост
//     (неопубликованный неотличим от отсутствующего: ErrNotFound);
//   - родитель (если указан) обязан существовать и принадлежать
//     тому же посту — иначе ErrParentNotFound.
func (s *Service) CreateComment(ctx context.Context, p models.Principal, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	lg := log.From(ctx).With(
		"op", op,
		"user_id", p.ID.String(),
		"post_id", in.PostID,
		"parent_id", in.ParentID,
	)

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" || len(in.Content) > maxCommentLen {
		lg.Warn("invalid argument: empty or oversized content")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	post, err := s.posts.PostByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("post not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on PostByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !post.Published {
		lg.Warn("post is not published")
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	comment := models.Comment{
		PostID:     in.PostID,
		ParentID:   strings.TrimSpace(in.ParentID),
		AuthorID:   p.ID,
		AuthorName: p.Name,
		Content:    in.Content,
	}

	result, err := s.comments.CreateComment(ctx, comment)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrParentNotFound):
			lg.Warn("parent comment not found")
			return nil, fmt.Errorf("%s: %w", op, ErrParentNotFound)
		case errors.Is(err, storage.ErrInvalidArgument):
			lg.Warn("invalid argument from storage")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("storage error on CreateComment", "err", err)
			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	lg.Info("comment created", "comment_id", result.ID)

	return result, nil
}

// ListComments возвращает страницу комментариев опубликованного поста.
func (s *Service) ListComments(ctx context.Context, postID string, in models.ListCommentsParams) (*models.CommentPage, error) {
	const op = "service/comments/ListComments"

	lg := log.From(ctx).With("op", op, "post_id", postID)

	post, err := s.posts.PostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("post not found")
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on PostByID", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if !post.Published {
		lg.Warn("post is not published")
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	in.Page, in.Limit = s.pageParams(in.Page, in.Limit)

	page, err := s.comments.ListByPost(ctx, postID, in)
	if err != nil {
		lg.Error("storage error on ListByPost", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return page, nil
}

// DeleteComment — удаление комментария автором либо администратором.
func (s *Service) DeleteComment(ctx context.Context, p models.Principal, id string) error {
	const op = "service/comments/DeleteComment"

	lg := log.From(ctx).With("op", op, "user_id", p.ID.String(), "comment_id", id)

	comment, err := s.comments.CommentByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment not found")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on CommentByID", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := authz.RequireOwnerOrRole(p, comment.AuthorID, models.RoleAdmin); err != nil {
		lg.Warn("delete forbidden", "author_id", comment.AuthorID.String())
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.comments.DeleteComment(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("comment disappeared during delete")
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		lg.Error("storage error on DeleteComment", "err", err)
		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("comment deleted")

	return nil
}
