package models

import (
	"time"

	"github.com/google/uuid"
)

// Post — публикация блога (MongoDB).
// Важно:
//   - ID — ObjectID MongoDB, наружу конвертируется в hex-строку;
//   - AuthorID — UUID владельца из таблицы users; это и есть
//     "факт владения", который потребляет авторизация;
//   - AuthorName дублируется в документе, чтобы не ходить за ним
//     в users на каждую выдачу;
//   - Published — неопубликованные посты видны только на write-путях
//     владельца, публичные выборки их не возвращают;
//   - CommentCount считается хранилищем при выдаче, в документе не хранится.
type Post struct {
	ID           string
	Title        string
	Content      string
	Tags         []string
	AuthorID     uuid.UUID
	AuthorName   string
	Published    bool
	CommentCount int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PostUpdate — частичное обновление поста: nil-поля не трогаются.
type PostUpdate struct {
	Title     *string
	Content   *string
	Tags      *[]string
	Published *bool
}

// Допустимые значения SortBy/SortOrder после нормализации сервисным слоем.
const (
	PostSortCreatedAt = "created_at"
	PostSortUpdatedAt = "updated_at"
	PostSortTitle     = "title"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListPostsParams — параметры постраничной выдачи постов.
// Author — фильтр по имени автора (подстрока, без учёта регистра);
// SortBy/SortOrder нормализуются сервисным слоем до значений из
// белого списка выше, хранилище им доверяет.
type ListPostsParams struct {
	Page      int64
	Limit     int64
	Author    string
	Tags      []string
	Search    string
	SortBy    string
	SortOrder string
}

// PostPage — страница выдачи с данными для пагинации.
type PostPage struct {
	Items      []Post
	Page       int64
	TotalPages int64
	Total      int64
}
