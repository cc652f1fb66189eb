package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blog-service/internal/models"
	"blog-service/internal/pkg/log"
	"blog-service/internal/storage"
)

// minPasswordLen — минимальная длина пароля при регистрации.
const minPasswordLen = 6

// RegisterInput — входные данные регистрации.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput — входные данные входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult — результат успешной регистрации или входа:
// учётная запись и свежевыпущенный bearer-токен.
type AuthResult struct {
	User  *models.User
	Token string
}

// normalizeEmail валидирует формат и приводит e-mail к нижнему регистру.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return email, nil
}

// RegisterUser — бизнес-операция регистрации.
//
// Правила:
//   - имя обязательно (после TrimSpace);
//   - e-mail нормализуется и проверяется на формат (ErrInvalidEmail);
//   - пароль не короче minPasswordLen (ErrWeakPassword);
//   - роль новой учётной записи всегда reader — повышение делает
//     администратор отдельно, через данные, а не через API регистрации.
//
// Ошибки: ErrInvalidArgument, ErrInvalidEmail, ErrWeakPassword,
// ErrEmailTaken, ErrInternal.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "service/auth/RegisterUser"

	lg := log.From(ctx).With("op", op)

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		lg.Warn("invalid argument: empty name")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		lg.Warn("invalid email format")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if len(in.Password) < minPasswordLen {
		lg.Warn("password too short")
		return nil, fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		lg.Error("failed to hash password", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleReader,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			lg.Warn("email already in use")
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		lg.Error("storage error on SaveUser", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	tok, err := s.tokens.Issue(user.Principal())
	if err != nil {
		lg.Error("failed to issue token", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("user registered", "user_id", user.ID.String())

	return &AuthResult{User: user, Token: tok}, nil
}

// LoginUser — бизнес-операция входа.
//
// Отсутствие пользователя и неверный пароль неразличимы снаружи:
// оба случая — ErrInvalidCredentials, чтобы не раскрывать
// существование учётной записи.
func (s *Service) LoginUser(ctx context.Context, in LoginInput) (*AuthResult, error) {
	const op = "service/auth/LoginUser"

	lg := log.From(ctx).With("op", op)

	email, err := normalizeEmail(in.Email)
	if err != nil {
		lg.Warn("invalid email format")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if in.Password == "" {
		lg.Warn("empty password")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			lg.Warn("user not found")
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		lg.Error("storage error on UserByEmail", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		lg.Warn("password mismatch", "user_id", user.ID.String())
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	tok, err := s.tokens.Issue(user.Principal())
	if err != nil {
		lg.Error("failed to issue token", "err", err)
		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("user logged in", "user_id", user.ID.String())

	return &AuthResult{User: user, Token: tok}, nil
}
