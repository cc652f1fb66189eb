package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "blog-service/internal/errors"
	logctx "blog-service/internal/pkg/log"
	"blog-service/internal/models"
	"blog-service/internal/token"
)

// CtxPrincipal — ключ контекста с проверенной личностью запроса.
const CtxPrincipal ctxKey = "principal"

// Principal достаёт личность запроса из контекста.
// Второе значение false означает, что запрос не прошёл Authenticate.
func Principal(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(CtxPrincipal).(models.Principal)
	return p, ok
}

// Authenticate проверяет заголовок Authorization и кладёт принципала
// в контекст запроса.
//
// Формат строгий: ровно два токена, первый — литерал "Bearer",
// второй — непустой. "bearer x", "Bearer" без значения и лишние
// пробелы отклоняются одинаковым 401, без уточнения причины.
func Authenticate(tm *token.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Split(r.Header.Get("Authorization"), " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				apierrors.WriteStatus(w, r, http.StatusUnauthorized,
					"unauthenticated", "Unauthorized: missing or invalid token")
				return
			}

			principal, err := tm.Verify(parts[1])
			if err != nil {
				logctx.From(r.Context()).Warn("token verification failed", "err", err)
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), CtxPrincipal, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
