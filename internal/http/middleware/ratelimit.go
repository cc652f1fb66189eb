package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	apierrors "blog-service/internal/errors"
	logctx "blog-service/internal/pkg/log"
	"blog-service/internal/ratelimit"
)

// RateLimit тарифицирует запросы клиента в заданном классе политики.
//
// Ключ клиента — IP из RemoteAddr (сервис стоит за доверенным прокси,
// который перезаписывает RemoteAddr; X-Forwarded-For сознательно не
// читаем, заголовку клиента доверять нельзя).
//
// Заголовки RateLimit-Limit/-Remaining/-Reset отдаются на каждый
// запрос; отклонённый дополнительно получает Retry-After и 429
// с текстом политики.
func RateLimit(l *ratelimit.Limiter, policy string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Check(clientIP(r), policy)
			if err != nil {
				// Неизвестная политика — ошибка сборки роутера.
				logctx.From(r.Context()).Error("rate limit check failed", "policy", policy, "err", err)
				apierrors.WriteError(w, r, err)
				return
			}

			reset := int64(time.Until(res.ResetAt).Seconds())
			if reset < 0 {
				reset = 0
			}

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
			h.Set("RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			h.Set("RateLimit-Reset", strconv.FormatInt(reset, 10))

			if !res.Allowed {
				retry := int64(res.RetryAfter.Seconds())
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.FormatInt(retry, 10))
				logctx.From(r.Context()).Warn("rate limit exceeded", "policy", policy, "client", clientIP(r))
				apierrors.WriteStatus(w, r, http.StatusTooManyRequests, "rate_limited", res.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP извлекает IP без порта; RemoteAddr без порта возвращаем как есть.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
