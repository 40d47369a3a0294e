package handlers

import (
	"net/http"
	"time"

	"blog-service/internal/models"
)

// Имена auth-cookie. logged_in нарочно без HttpOnly — это маркер для
// клиентского кода, токена в нём нет.
const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
	loggedInCookie     = "logged_in"
)

// newCookie собирает cookie с общими атрибутами.
// SameSite=None требует Secure, поэтому вне защищённого окружения
// откатываемся на Lax.
func (h *Handlers) newCookie(name, value string, expires time.Time, httpOnly bool) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if h.cookie.Secure {
		sameSite = http.SameSiteNoneMode
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   h.cookie.Domain,
		Expires:  expires,
		MaxAge:   int(time.Until(expires) / time.Second),
		HttpOnly: httpOnly,
		Secure:   h.cookie.Secure,
		SameSite: sameSite,
	}
}

// setAuthCookies выставляет полный набор cookie после входа.
func (h *Handlers) setAuthCookies(w http.ResponseWriter, pair *models.TokenPair) {
	http.SetCookie(w, h.newCookie(accessTokenCookie, pair.AccessToken, pair.AccessExpiresAt, true))
	http.SetCookie(w, h.newCookie(refreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt, true))
	http.SetCookie(w, h.newCookie(loggedInCookie, "true", pair.AccessExpiresAt, false))
}

// setAccessCookies обновляет access_token и logged_in после refresh;
// refresh_token не трогается.
func (h *Handlers) setAccessCookies(w http.ResponseWriter, accessToken string, expires time.Time) {
	http.SetCookie(w, h.newCookie(accessTokenCookie, accessToken, expires, true))
	http.SetCookie(w, h.newCookie(loggedInCookie, "true", expires, false))
}

// clearAuthCookies гасит все три cookie отрицательным MaxAge.
func (h *Handlers) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie, loggedInCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}
