package middleware

import (
	"net/http"

	"blog-service/internal/authz"
	apierrors "blog-service/internal/errors"
	logctx "blog-service/internal/pkg/log"
	"blog-service/internal/models"
)

// RequireRole пропускает только принципалов с заданной ролью.
// Вешается ПОСЛЕ Authenticate: отсутствие принципала в контексте —
// ошибка сборки роутера, отвечаем 401, а не паникуем.
func RequireRole(role models.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := Principal(r.Context())
			if !ok {
				apierrors.WriteStatus(w, r, http.StatusUnauthorized,
					"unauthenticated", "Unauthorized: missing or invalid token")
				return
			}

			if err := authz.RequireRole(p, role); err != nil {
				logctx.From(r.Context()).Warn("role check failed",
					"user_id", p.ID.String(), "role", string(p.Role), "required", string(role))
				apierrors.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
