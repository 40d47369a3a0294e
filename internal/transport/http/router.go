// Package http собирает HTTP-слой сервиса: маршруты, мидлвары и хендлеры.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"blog-service/internal/config"
	"blog-service/internal/service"
	"blog-service/internal/transport/http/handlers"
	"blog-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Cookie  config.CookieConfig
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	h := handlers.New(svc, opts.Cookie)

	// Открытые маршруты. Logout не прикрыт шлюзом: ему достаточно
	// криптографически валидного токена, живость сессии не требуется
	// (иначе повторный logout перестал бы быть идемпотентным).
	root.Post("/auth/register", h.SignUp)
	root.Post("/auth/login", h.Login)
	root.Post("/auth/refresh", h.RefreshAccessToken)
	root.Post("/auth/logout", h.Logout)

	// Защищённые маршруты: каждый проходит через шлюз Auth.
	root.Group(func(r chi.Router) {
		r.Use(middleware.Auth(svc))

		r.Get("/users/me", h.GetMe)

		r.Post("/posts", h.CreatePost)
		r.Get("/posts", h.ListPosts)
		r.Get("/posts/{id}", h.GetPost)
		r.Patch("/posts/{id}", h.UpdatePost)
		r.Delete("/posts/{id}", h.DeletePost)
	})

	return root
}
