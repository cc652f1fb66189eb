// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает ошибку сервисного слоя (сентинелы service/authz/token),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Формат ответа плоский: {"message", "code", "request_id"} —
// message первым, code — стабильный машиночитаемый идентификатор.
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"blog-service/internal/authz"
	"blog-service/internal/service"
	"blog-service/internal/token"
)

// APIError — единый формат ошибки для фронта.
// RequestID прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// ToHTTP конвертирует ошибку сервисного слоя в HTTP-статус и тело ответа.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - неизвестная ошибка — 500/internal (без утечки деталей).
func ToHTTP(err error) (int, APIError) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, APIError{
			Message: "Internal server error",
			Code:    "internal",
		}
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, APIError{
			Message: "Invalid email format",
			Code:    "invalid_email",
		}
	case errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, APIError{
			Message: "Password must be at least 6 characters long",
			Code:    "weak_password",
		}
	case errors.Is(err, service.ErrInvalidArgument):
		return http.StatusBadRequest, APIError{
			Message: "Invalid request data",
			Code:    "invalid_argument",
		}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, APIError{
			Message: "Invalid email or password",
			Code:    "invalid_credentials",
		}
	case errors.Is(err, token.ErrTokenExpired):
		return http.StatusUnauthorized, APIError{
			Message: "Unauthorized: token expired",
			Code:    "token_expired",
		}
	case errors.Is(err, token.ErrInvalidToken):
		return http.StatusUnauthorized, APIError{
			Message: "Unauthorized: missing or invalid token",
			Code:    "unauthenticated",
		}
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, APIError{
			Message: "Access denied",
			Code:    "forbidden",
		}
	case errors.Is(err, service.ErrParentNotFound):
		return http.StatusNotFound, APIError{
			Message: "Parent comment not found",
			Code:    "parent_not_found",
		}
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, APIError{
			Message: "Not found",
			Code:    "not_found",
		}
	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict, APIError{
			Message: "Email already in use",
			Code:    "email_taken",
		}
	case errors.Is(err, service.ErrAvatarsDisabled):
		return http.StatusNotImplemented, APIError{
			Message: "Avatar uploads are not available",
			Code:    "avatars_disabled",
		}
	default:
		return http.StatusInternalServerError, APIError{
			Message: "Internal server error",
			Code:    "internal",
		}
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)
	writeJSONError(w, r, status, resp)
}

// WriteStatus пишет ошибку с явным статусом/кодом/сообщением — для случаев,
// где у middleware собственные тексты (rate limit, маршруты, аутентификация).
func WriteStatus(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSONError(w, r, status, APIError{Message: message, Code: code})
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, resp APIError) {
	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
