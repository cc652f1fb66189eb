// handlers — REST-хендлеры blog-сервиса поверх сервисного слоя.
package handlers

import (
	"encoding/json"
	"net/http"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/service"
)

// Handlers агрегирует зависимости (сервисный слой).
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// writeBadBody — локальная ошибка парсинга тела -> 400/invalid_argument.
func writeBadBody(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteError(w, r, service.ErrInvalidArgument)
}
