package handlers

import (
	"errors"
	"net/http"
	"time"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/service"
	"blog-service/internal/transport/http/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp регистрирует пользователя. Токены при регистрации не выдаются:
// клиент проходит обычный вход.
func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var in service.SignUpInput
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidInput)
		return
	}

	user, err := h.svc.SignUp(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"user":   user,
	})
}

// Login аутентифицирует пользователя и выдаёт набор auth-cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidInput)
		return
	}

	pair, _, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.setAuthCookies(w, pair)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"access_token": pair.AccessToken,
	})
}

// RefreshAccessToken выпускает новый access-токен по refresh-cookie.
// Формулировки отказов здесь свои: сессия и невалидный токен различимы,
// но детали о состоянии аккаунта не раскрываются.
func (h *Handlers) RefreshAccessToken(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		refreshToken = c.Value
	}

	access, err := h.svc.RefreshAccessToken(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrSessionExpired) {
			apierrors.WriteForbidden(w, r, "session_expired", "user session has expired")
			return
		}

		apierrors.WriteForbidden(w, r, "refresh_failed", "could not refresh access token")
		return
	}

	h.setAccessCookies(w, access, time.Now().Add(h.svc.Tokens().AccessTTL()))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"access_token": access,
	})
}

// Logout удаляет сессию вызывающего и гасит auth-cookie.
// Маршрут нарочно не прикрыт Auth-мидлваром: повторный logout по уже мёртвой
// сессии обязан оставаться успешным no-op.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), middleware.AccessTokenFromRequest(r)); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

// GetMe возвращает аккаунт вызывающего без побочных эффектов —
// результат шлюза уже лежит в контексте.
func (h *Handlers) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrNoToken)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user":   user,
	})
}
