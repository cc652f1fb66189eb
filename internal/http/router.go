package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/http/handlers"
	"blog-service/internal/http/middleware"
	"blog-service/internal/models"
	"blog-service/internal/ratelimit"
	"blog-service/internal/sanitize"
	"blog-service/internal/service"
	"blog-service/internal/token"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
//
// Конвейер (внешний -> внутренний): recover -> request-id -> логирование ->
// санитизация входа -> общий rate limit -> таймаут. Классовые лимиты и
// аутентификация вешаются на конкретные маршруты.
func NewRouter(svc *service.Service, tm *token.Manager, limiter *ratelimit.Limiter, opts Options) http.Handler {
	root := chi.NewRouter()

	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Sanitize(sanitize.New()),
		middleware.RateLimit(limiter, ratelimit.PolicyGeneral),
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc)
	authn := middleware.Authenticate(tm)

	root.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"message": "Blog API",
		})
	})

	root.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteStatus(w, r, http.StatusNotFound, "not_found", "Route not found")
	})

	root.Route("/api", func(r chi.Router) {
		// auth
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, ratelimit.PolicyAuth))
			r.Post("/auth/register", h.RegisterUser)
			r.Post("/auth/login", h.LoginUser)
		})

		// posts
		r.Get("/posts", h.ListPosts)
		r.Get("/posts/{id}", h.GetPost)
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.With(middleware.RateLimit(limiter, ratelimit.PolicyPostCreation)).
				Post("/posts", h.CreatePost)
			r.Put("/posts/{id}", h.UpdatePost)
			r.Delete("/posts/{id}", h.DeletePost)
		})

		// comments
		r.Get("/posts/{post_id}/comments", h.ListComments)
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.With(middleware.RateLimit(limiter, ratelimit.PolicyCommentCreation)).
				Post("/posts/{post_id}/comments", h.CreateComment)
			r.Delete("/comments/{id}", h.DeleteComment)
		})

		// users
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Get("/users/me", h.Me)
			r.Post("/users/me/avatar/presign", h.AvatarPresign)
			r.Post("/users/me/avatar/confirm", h.AvatarConfirm)
			r.With(middleware.RequireRole(models.RoleAdmin)).
				Get("/users", h.ListUsers)
		})
	})

	return root
}
