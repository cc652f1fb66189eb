// authz — чистые функции решений авторизации.
//
// Пакет не ходит в хранилище: факт владения ресурсом (id создателя)
// разрешается вызывающим слоем ДО проверки и передаётся сюда готовым.
// Это сохраняет решения детерминированными и тестируемыми без БД.
package authz

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blog-service/internal/models"
)

// ErrForbidden — отказ по роли или владению. На транспорте — 403.
var ErrForbidden = errors.New("forbidden")

// RequireRole проходит тогда и только тогда, когда роль principal
// совпадает с требуемой.
func RequireRole(p models.Principal, role models.Role) error {
	if p.Role != role {
		return fmt.Errorf("access denied: %s role required: %w", role, ErrForbidden)
	}

	return nil
}

// RequireOwnerOrRole проходит, если principal — владелец ресурса ЛИБО
// несёт роль-исключение (везде в сервисе это admin). Логическое ИЛИ:
// владения достаточно при любой роли, роли достаточно без владения.
func RequireOwnerOrRole(p models.Principal, ownerID uuid.UUID, escape models.Role) error {
	if p.ID == ownerID || p.Role == escape {
		return nil
	}

	return fmt.Errorf("not resource owner and not %s: %w", escape, ErrForbidden)
}
