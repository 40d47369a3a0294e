package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenFromRequest(t *testing.T) {
	t.Parallel()

	newReq := func() *http.Request {
		return httptest.NewRequest(http.MethodGet, "/users/me", nil)
	}

	t.Run("bearer header", func(t *testing.T) {
		t.Parallel()

		r := newReq()
		r.Header.Set("Authorization", "Bearer header-token")
		require.Equal(t, "header-token", AccessTokenFromRequest(r))
	})

	t.Run("cookie", func(t *testing.T) {
		t.Parallel()

		r := newReq()
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
		require.Equal(t, "cookie-token", AccessTokenFromRequest(r))
	})

	// Заголовок приоритетнее cookie.
	t.Run("header wins over cookie", func(t *testing.T) {
		t.Parallel()

		r := newReq()
		r.Header.Set("Authorization", "Bearer header-token")
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
		require.Equal(t, "header-token", AccessTokenFromRequest(r))
	})

	// Пустой Bearer не перекрывает cookie.
	t.Run("empty bearer falls back to cookie", func(t *testing.T) {
		t.Parallel()

		r := newReq()
		r.Header.Set("Authorization", "Bearer ")
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
		require.Equal(t, "cookie-token", AccessTokenFromRequest(r))
	})

	t.Run("non-bearer scheme ignored", func(t *testing.T) {
		t.Parallel()

		r := newReq()
		r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		require.Empty(t, AccessTokenFromRequest(r))
	})

	t.Run("nothing", func(t *testing.T) {
		t.Parallel()

		require.Empty(t, AccessTokenFromRequest(newReq()))
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("passthrough", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-Id", "client-id")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		require.Equal(t, "client-id", rec.Header().Get("X-Request-Id"))
	})

	t.Run("generated", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)

		id := rec.Header().Get("X-Request-Id")
		require.Len(t, id, 32)
		// id прокидывается и в заголовки запроса для нижележащих слоёв.
		require.Equal(t, id, r.Header.Get("X-Request-Id"))
	})
}

func TestRecover(t *testing.T) {
	t.Parallel()

	handler := Recover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatusWriter(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	sw := newStatusWriter(rec)

	n, err := sw.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	// Неявный WriteHeader трактуется как 200.
	require.Equal(t, http.StatusOK, sw.status)
	require.Equal(t, 5, sw.count)
}
