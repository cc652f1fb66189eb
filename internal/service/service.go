// service содержит бизнес-логику blog-сервиса: регистрацию и вход,
// операции над постами и комментариями, профиль и аватары.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования при потокобезопасных хранилищах.
//   - Факты владения (id автора поста/комментария) Service разрешает
//     сам перед вызовом чистых проверок пакета authz — сами проверки
//     в хранилище не ходят.
//   - Ошибки возвращаются сентинелами и далее маппятся HTTP-слоем
//     (см. internal/errors).
package service

import (
	"errors"

	"blog-service/internal/cache"
	"blog-service/internal/config"
	"blog-service/internal/storage"
	"blog-service/internal/token"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken — e-mail уже занят другим пользователем. HTTP 409.
	ErrEmailTaken = errors.New("email already in use")

	// ErrInvalidEmail — e-mail некорректного формата. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль короче минимально допустимого. HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrInvalidArgument — входные данные не прошли доменную валидацию. HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound — сущность отсутствует (или пост не опубликован
	// для операций, требующих публикации). HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrParentNotFound — родительский комментарий не найден или
	// принадлежит другому посту. HTTP 404.
	ErrParentNotFound = errors.New("parent comment not found")

	// ErrInternal — внутренняя ошибка (сторадж/БД/контекст). HTTP 500.
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика blog-сервиса.
type Service struct {
	users    storage.UsersStorage
	posts    storage.PostsStorage
	comments storage.CommentsStorage
	avatars  storage.AvatarsStorage // может быть nil, если S3 не сконфигурирован
	tokens   *token.Manager
	cfg      *config.Config
	pcache   cache.PostCache // может быть nil, если кэш не сконфигурирован
}

// New создаёт новый экземпляр Service.
func New(users storage.UsersStorage, posts storage.PostsStorage, comments storage.CommentsStorage, tokens *token.Manager, cfg *config.Config) *Service {
	return &Service{
		users:    users,
		posts:    posts,
		comments: comments,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// SetAvatarsStorage подключает хранилище аватаров (опционально).
func (s *Service) SetAvatarsStorage(a storage.AvatarsStorage) {
	s.avatars = a
}

// SetPostCache подключает кэш постов (опционально).
func (s *Service) SetPostCache(c cache.PostCache) {
	s.pcache = c
}

// pageParams приводит page/limit к допустимым границам из конфигурации.
func (s *Service) pageParams(page, limit int64) (int64, int64) {
	if page < 1 {
		page = 1
	}

	if limit <= 0 {
		limit = s.cfg.Pages.Default
	}

	if limit > s.cfg.Pages.Max {
		limit = s.cfg.Pages.Max
	}

	return page, limit
}
