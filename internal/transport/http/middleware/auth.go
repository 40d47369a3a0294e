package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/models"
	"blog-service/internal/service"
)

type ctxKeyUser struct{}

// AccessTokenCookie — имя cookie с access-токеном.
const AccessTokenCookie = "access_token"

// AccessTokenFromRequest извлекает access-токен из запроса:
// приоритет у заголовка Authorization: Bearer, затем cookie access_token.
// Пустая строка — токена нет.
func AccessTokenFromRequest(r *http.Request) string {
	const prefix = "Bearer "

	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, prefix) {
		if token := strings.TrimSpace(auth[len(prefix):]); token != "" {
			return token
		}
	}

	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}

	return ""
}

// Auth — шлюз защищённых маршрутов: извлекает токен, прогоняет его через
// service.Authenticate и кладёт аккаунт в контекст. Любой отказ шлюза
// завершает запрос унифицированной ошибкой.
func Auth(svc *service.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := svc.Authenticate(r.Context(), AccessTokenFromRequest(r))
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext возвращает аккаунт, положенный мидлваром Auth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKeyUser{}).(*models.User)
	return u, ok && u != nil
}
