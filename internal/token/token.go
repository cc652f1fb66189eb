// token выпускает и проверяет подписанные токены личности.
//
// Токен — самодостаточный bearer-JWT (HS256): снапшот Principal
// плюс iat/exp. Сервер не хранит сессий — проверка сводится к подписи
// и сроку действия, отзыв не поддерживается. Секрет подписи один на
// процесс, читается из конфигурации на старте и далее неизменен.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blog-service/internal/config"
	"blog-service/internal/models"
)

var (
	// ErrInvalidToken — токен некорректен по формату/подписи/claims.
	// На транспорте — 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. На транспорте — 401.
	ErrTokenExpired = errors.New("token expired")
)

// principalClaims — полезная нагрузка токена: снапшот Principal.
type principalClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Manager выпускает и валидирует токены. Безопасен для конкурентного
// использования: всё состояние — неизменяемая конфигурация.
type Manager struct {
	cfg config.AuthConfig
}

// New создаёт Manager. Пустой секрет — ошибка конфигурации:
// вызывающий процесс обязан завершиться, не начав принимать трафик.
func New(cfg config.AuthConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("token: jwt secret is not configured")
	}

	return &Manager{cfg: cfg}, nil
}

// Issue выпускает токен для principal со сроком действия cfg.TokenTTL от текущего момента.
func (m *Manager) Issue(p models.Principal) (string, error) {
	return m.IssueAt(p, time.Now().UTC())
}

// IssueAt — как Issue, но с явным моментом выпуска (для тестов и переигрывания).
func (m *Manager) IssueAt(p models.Principal, now time.Time) (string, error) {
	const op = "token.IssueAt"

	claims := principalClaims{
		UserID: p.ID.String(),
		Email:  p.Email,
		Role:   string(p.Role),
		Name:   p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.cfg.Issuer,
			Subject:   p.ID.String(),
			Audience:  jwt.ClaimStrings(m.cfg.Audience),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(m.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Verify валидирует токен и возвращает снапшот Principal.
// Подпись сверяется константным по времени HMAC-сравнением внутри
// golang-jwt; наружу различаются только ErrTokenExpired и ErrInvalidToken.
func (m *Manager) Verify(tokenStr string) (models.Principal, error) {
	const op = "token.Verify"

	tok, err := jwt.ParseWithClaims(tokenStr, &principalClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(m.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithAudience(m.cfg.Audience...),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := tok.Claims.(*principalClaims)
	if !ok || !tok.Valid {
		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	role := models.Role(claims.Role)
	if !role.Valid() {
		return models.Principal{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return models.Principal{
		ID:    uid,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  role,
	}, nil
}
