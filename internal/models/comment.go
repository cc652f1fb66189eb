package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment — комментарий к посту (MongoDB).
//   - ID/PostID/ParentID — ObjectID в hex; пустой ParentID означает корень;
//   - AuthorID — UUID автора, факт владения для авторизации;
//   - ответы привязаны к тому же посту, что и родитель.
type Comment struct {
	ID         string
	PostID     string
	ParentID   string
	AuthorID   uuid.UUID
	AuthorName string
	Content    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ListCommentsParams — параметры постраничной выдачи комментариев поста.
type ListCommentsParams struct {
	Page  int64
	Limit int64
}

// CommentPage — страница выдачи комментариев.
type CommentPage struct {
	Items      []Comment
	Page       int64
	TotalPages int64
	Total      int64
}
