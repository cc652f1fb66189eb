// storage описывает контракты хранилищ blog-сервиса и их сентинельные
// ошибки. Реализации: postgres (пользователи), mongo (посты/комментарии),
// minio (аватары).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"blog-service/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности.
	ErrAlreadyExists = errors.New("already exists")
	// ErrParentNotFound — указан parent_id, но родительский комментарий не найден.
	ErrParentNotFound = errors.New("parent not found")
	// ErrInvalidArgument — некорректные входные данные операции.
	ErrInvalidArgument = errors.New("invalid argument")
)

// UsersStorage — операции над учётными записями (PostgreSQL).
type UsersStorage interface {
	// SaveUser вставляет новую запись. При конфликте e-mail — ErrAlreadyExists.
	SaveUser(ctx context.Context, user *models.User) error

	// UserByEmail возвращает пользователя по нормализованному e-mail.
	// Если записи нет — ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	// UserByID возвращает пользователя по идентификатору. Если записи нет — ErrNotFound.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// ListUsers возвращает страницу пользователей, новые первыми,
	// и общее количество записей.
	ListUsers(ctx context.Context, page, limit int64) ([]models.User, int64, error)

	// UpdateAvatar сохраняет ключ и публичный URL аватара.
	// Если записи нет — ErrNotFound.
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarKey, avatarURL string) error

	// Close закрывает соединения хранилища.
	Close()
}

// PostsStorage — операции над постами (MongoDB).
type PostsStorage interface {
	// CreatePost вставляет пост; ID, CreatedAt/UpdatedAt проставляет хранилище.
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)

	// PostByID возвращает пост по hex-идентификатору; битый формат id
	// трактуется как отсутствие записи. Если записи нет — ErrNotFound.
	PostByID(ctx context.Context, id string) (*models.Post, error)

	// ListPosts возвращает страницу опубликованных постов, новые первыми,
	// с фильтрами по тегам и полнотекстовому поиску.
	ListPosts(ctx context.Context, p models.ListPostsParams) (*models.PostPage, error)

	// UpdatePost применяет частичное обновление. Если записи нет — ErrNotFound.
	UpdatePost(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error)

	// DeletePost удаляет пост. Если записи нет — ErrNotFound.
	DeletePost(ctx context.Context, id string) error
}

// CommentsStorage — операции над комментариями (MongoDB).
type CommentsStorage interface {
	// CreateComment создаёт корневой комментарий или ответ.
	// Для ответа родитель обязан существовать и принадлежать тому же
	// посту — иначе ErrParentNotFound.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// CommentByID возвращает комментарий; битый формат id — ErrNotFound.
	CommentByID(ctx context.Context, id string) (*models.Comment, error)

	// ListByPost возвращает страницу комментариев поста, новые первыми.
	ListByPost(ctx context.Context, postID string, p models.ListCommentsParams) (*models.CommentPage, error)

	// DeleteComment удаляет комментарий. Если записи нет — ErrNotFound.
	DeleteComment(ctx context.Context, id string) error

	// DeleteByPost удаляет все комментарии поста. Отсутствие
	// комментариев ошибкой не считается.
	DeleteByPost(ctx context.Context, postID string) error
}

// UploadInfo — данные presigned-загрузки аватара.
type UploadInfo struct {
	UploadURL      string
	AvatarKey      string
	Expires        time.Duration
	RequiredHeader map[string]string
}

// AvatarsStorage — операции с объектами аватаров (MinIO/S3).
type AvatarsStorage interface {
	// AvatarUploadURL генерирует presigned PUT URL для загрузки.
	// Недопустимый тип/размер — ErrInvalidArgument.
	AvatarUploadURL(ctx context.Context, userID uuid.UUID, contentType string, contentLength int64) (*UploadInfo, error)

	// CheckAvatarUpload подтверждает загрузку по ключу и возвращает
	// публичный URL (пустой, если публичная база не настроена).
	// Отсутствие объекта — ErrNotFound.
	CheckAvatarUpload(ctx context.Context, userID uuid.UUID, key string) (string, error)
}
