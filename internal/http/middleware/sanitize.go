package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/sanitize"
)

// maxSanitizeBody — потолок тела, которое мидлвар готов прочитать в память.
const maxSanitizeBody = 1 << 20 // 1 MiB

// Sanitize вычищает исполняемую разметку из недоверенного входа ДО
// парсинга и валидации в хендлерах:
//   - query-строка переписывается очищенными значениями;
//   - JSON-объект тела переписывается с очищенными строками верхнего
//     уровня; не-объекты (массив, строка, битый JSON) проходят как
//     есть — их отклонит декодер хендлера.
func Sanitize(s *sanitize.Sanitizer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.RawQuery) > 0 {
				r.URL.RawQuery = s.CleanQuery(r.URL.Query()).Encode()
			}

			if r.Body != nil && r.Body != http.NoBody && hasJSONBody(r) {
				raw, err := io.ReadAll(io.LimitReader(r.Body, maxSanitizeBody+1))
				_ = r.Body.Close()
				if err != nil || int64(len(raw)) > maxSanitizeBody {
					apierrors.WriteStatus(w, r, http.StatusRequestEntityTooLarge,
						"body_too_large", "Request body is too large")
					return
				}

				if cleaned, ok := s.CleanJSONBody(raw); ok {
					raw = cleaned
				}

				r.Body = io.NopCloser(bytes.NewReader(raw))
				r.ContentLength = int64(len(raw))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func hasJSONBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}

	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "application/json")
}
