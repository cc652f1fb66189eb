package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"blog-service/internal/models"
	"blog-service/internal/storage"
)

// userColumns — единый список колонок таблицы users,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const userColumns = `
id, name, email, password_hash, role, avatar_key, avatar_url, created_at, updated_at
`

// scanUser сканирует одну строку пользователя в доменную модель.
func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var role string

	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.AvatarKey,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	user.Role = models.Role(role)

	return &user, nil
}

// SaveUser вставляет новую учётную запись.
// Ошибки: storage.ErrAlreadyExists при конфликте уникальности e-mail, иные — как есть.
func (s *UsersStorage) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage/postgres/users/SaveUser"

	q := `
	INSERT INTO users (id, name, email, password_hash, role, avatar_key, avatar_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.Exec(ctx, q,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.AvatarKey,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UserByEmail возвращает пользователя по e-mail.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *UsersStorage) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage/postgres/users/UserByEmail"

	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	result, err := scanUser(s.db.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UserByID возвращает пользователя по идентификатору.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *UsersStorage) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage/postgres/users/UserByID"

	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	result, err := scanUser(s.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ListUsers возвращает страницу пользователей (новые первыми) и общее число записей.
func (s *UsersStorage) ListUsers(ctx context.Context, page, limit int64) ([]models.User, int64, error) {
	const op = "storage/postgres/users/ListUsers"

	if page < 1 {
		page = 1
	}

	offset := (page - 1) * limit

	var total int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := s.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}

		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return users, total, nil
}

// UpdateAvatar сохраняет ключ и публичный URL аватара, сдвигая updated_at.
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *UsersStorage) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarKey, avatarURL string) error {
	const op = "storage/postgres/users/UpdateAvatar"

	q := `UPDATE users SET avatar_key = $1, avatar_url = $2, updated_at = now() WHERE id = $3`

	tag, err := s.db.Exec(ctx, q, avatarKey, avatarURL, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
