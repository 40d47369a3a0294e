package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"blog-service/internal/config"
	"blog-service/internal/models"
	"blog-service/internal/service"
	"blog-service/internal/session"
	"blog-service/internal/storage"
	"blog-service/internal/token"
	"blog-service/mocks"
)

func genKeyPairB64(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})

	return base64.StdEncoding.EncodeToString(privPEM), base64.StdEncoding.EncodeToString(pubPEM)
}

// newTestServer поднимает полный HTTP-стек: роутер, мидлвары и сервис,
// а хранилища подменяет stateful-моками (in-memory карты под мьютексом).
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	accPriv, accPub := genKeyPairB64(t)
	refPriv, refPub := genKeyPairB64(t)
	cfg := config.AuthConfig{
		AccessTokenPrivateKey:  accPriv,
		AccessTokenPublicKey:   accPub,
		RefreshTokenPrivateKey: refPriv,
		RefreshTokenPublicKey:  refPub,
		AccessTokenTTL:         15 * time.Minute,
		RefreshTokenTTL:        time.Hour,
		BcryptCost:             4,
		Issuer:                 "blog-service",
	}

	var (
		mu       sync.Mutex
		users    = map[uuid.UUID]*models.User{}
		byEmail  = map[string]uuid.UUID{}
		sessions = map[uuid.UUID]*session.Session{}
		posts    = map[uuid.UUID]*models.Post{}
	)

	st := mocks.NewMockStorage(ctrl)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *models.User) error {
			mu.Lock()
			defer mu.Unlock()
			if _, ok := byEmail[u.Email]; ok {
				return storage.ErrAlreadyExists
			}
			users[u.ID] = u
			byEmail[u.Email] = u.ID
			return nil
		}).AnyTimes()
	st.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, email string) (*models.User, error) {
			mu.Lock()
			defer mu.Unlock()
			id, ok := byEmail[email]
			if !ok {
				return nil, storage.ErrNotFound
			}
			return users[id], nil
		}).AnyTimes()
	st.EXPECT().UserByID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID) (*models.User, error) {
			mu.Lock()
			defer mu.Unlock()
			u, ok := users[id]
			if !ok {
				return nil, storage.ErrNotFound
			}
			return u, nil
		}).AnyTimes()

	st.EXPECT().SavePost(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p *models.Post) error {
			mu.Lock()
			defer mu.Unlock()
			for _, existing := range posts {
				if existing.Title == p.Title {
					return storage.ErrAlreadyExists
				}
			}
			posts[p.ID] = p
			return nil
		}).AnyTimes()
	st.EXPECT().PostByID(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID) (*models.Post, error) {
			mu.Lock()
			defer mu.Unlock()
			p, ok := posts[id]
			if !ok {
				return nil, storage.ErrNotFound
			}
			return p, nil
		}).AnyTimes()
	st.EXPECT().UpdatePost(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID, update *models.Post) (*models.Post, error) {
			mu.Lock()
			defer mu.Unlock()
			p, ok := posts[id]
			if !ok {
				return nil, storage.ErrNotFound
			}
			if update.Title != "" {
				p.Title = update.Title
			}
			if update.Content != "" {
				p.Content = update.Content
			}
			if update.Category != "" {
				p.Category = update.Category
			}
			if update.Image != "" {
				p.Image = update.Image
			}
			p.AuthorID = update.AuthorID
			p.UpdatedAt = time.Now().UTC()
			return p, nil
		}).AnyTimes()
	st.EXPECT().PostsByAuthor(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, author uuid.UUID, _ models.ListParams) ([]models.Post, error) {
			mu.Lock()
			defer mu.Unlock()
			var out []models.Post
			for _, p := range posts {
				if p.AuthorID == author {
					out = append(out, *p)
				}
			}
			return out, nil
		}).AnyTimes()
	st.EXPECT().DeletePost(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID) error {
			mu.Lock()
			defer mu.Unlock()
			if _, ok := posts[id]; !ok {
				return storage.ErrNotFound
			}
			delete(posts, id)
			return nil
		}).AnyTimes()

	sess := mocks.NewMockStore(ctrl)
	sess.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID, s *session.Session, _ time.Duration) error {
			mu.Lock()
			defer mu.Unlock()
			sessions[id] = s
			return nil
		}).AnyTimes()
	sess.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID) (*session.Session, bool, error) {
			mu.Lock()
			defer mu.Unlock()
			s, ok := sessions[id]
			return s, ok, nil
		}).AnyTimes()
	sess.EXPECT().Delete(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID) error {
			mu.Lock()
			defer mu.Unlock()
			delete(sessions, id)
			return nil
		}).AnyTimes()

	tokens, err := token.New(cfg)
	require.NoError(t, err)

	svc := service.New(st, sess, tokens, cfg)

	srv := httptest.NewServer(NewRouter(svc, Options{
		Timeout: 5 * time.Second,
		Cookie:  config.CookieConfig{Domain: "localhost"},
	}))
	t.Cleanup(srv.Close)

	return srv
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, cookies []*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHTTP_AuthFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	client := srv.Client()

	// Регистрация: 201, хэш пароля наружу не уходит.
	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/auth/register", map[string]string{
		"name":            "tester",
		"email":           "flow@example.com",
		"password":        "longenough1",
		"passwordConfirm": "longenough1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	user := body["user"].(map[string]any)
	require.Equal(t, "flow@example.com", user["email"])
	require.NotContains(t, user, "password_hash")

	// Повторная регистрация того же email — 409.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/auth/register", map[string]string{
		"name":            "tester",
		"email":           "flow@example.com",
		"password":        "longenough1",
		"passwordConfirm": "longenough1",
	}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// Вход: полный набор cookie + access_token в теле.
	resp, body = doJSON(t, client, http.MethodPost, srv.URL+"/auth/login", map[string]string{
		"email":    "flow@example.com",
		"password": "longenough1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["access_token"])

	cookies := resp.Cookies()
	access := cookieByName(cookies, "access_token")
	refresh := cookieByName(cookies, "refresh_token")
	loggedIn := cookieByName(cookies, "logged_in")
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	require.NotNil(t, loggedIn)
	require.True(t, access.HttpOnly)
	require.True(t, refresh.HttpOnly)
	require.False(t, loggedIn.HttpOnly)

	// Защищённый маршрут с cookie.
	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/users/me", nil, []*http.Cookie{access})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "flow@example.com", body["user"].(map[string]any)["email"])

	// Без токена — 401/no_token.
	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/users/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "no_token", body["error"].(map[string]any)["code"])

	// Refresh: новый access_token, refresh-cookie не перевыпускается.
	resp, body = doJSON(t, client, http.MethodPost, srv.URL+"/auth/refresh", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["access_token"])
	require.Nil(t, cookieByName(resp.Cookies(), "refresh_token"))
	require.NotNil(t, cookieByName(resp.Cookies(), "access_token"))

	// Logout по Bearer-заголовку: cookie гасятся, сессия удаляется.
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/logout", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access.Value)
	logoutResp, err := client.Do(req)
	require.NoError(t, err)
	defer logoutResp.Body.Close()
	require.Equal(t, http.StatusOK, logoutResp.StatusCode)
	for _, name := range []string{"access_token", "refresh_token", "logged_in"} {
		c := cookieByName(logoutResp.Cookies(), name)
		require.NotNil(t, c, name)
		require.Negative(t, c.MaxAge, name)
	}

	// Токен ещё криптографически валиден, но сессии нет — 403/session_expired.
	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/users/me", nil, []*http.Cookie{access})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "session_expired", body["error"].(map[string]any)["code"])

	// Refresh после logout — 403 со своей формулировкой.
	resp, body = doJSON(t, client, http.MethodPost, srv.URL+"/auth/refresh", nil, []*http.Cookie{refresh})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "user session has expired", body["error"].(map[string]any)["message"])

	// Повторный logout остаётся успешным no-op.
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/auth/logout", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+access.Value)
	logoutResp2, err := client.Do(req)
	require.NoError(t, err)
	defer logoutResp2.Body.Close()
	require.Equal(t, http.StatusOK, logoutResp2.StatusCode)
}

func TestHTTP_PostsFlow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	client := srv.Client()

	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/auth/register", map[string]string{
		"name":            "author",
		"email":           "author@example.com",
		"password":        "longenough1",
		"passwordConfirm": "longenough1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/auth/login", map[string]string{
		"email":    "author@example.com",
		"password": "longenough1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := cookieByName(resp.Cookies(), "access_token")
	require.NotNil(t, access)
	auth := []*http.Cookie{access}

	// Без шлюза к записям хода нет.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/posts", map[string]string{
		"title":    "a post about nothing much",
		"content":  "a reasonably long content body",
		"category": "go",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := doJSON(t, client, http.MethodPost, srv.URL+"/posts", map[string]string{
		"title":    "a post about nothing much",
		"content":  "a reasonably long content body",
		"category": "go",
	}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := body["post"].(map[string]any)["id"].(string)

	// Дубликат заголовка — 409.
	resp, _ = doJSON(t, client, http.MethodPost, srv.URL+"/posts", map[string]string{
		"title":    "a post about nothing much",
		"content":  "another reasonably long body",
		"category": "go",
	}, auth)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/posts/"+postID, nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "a post about nothing much", body["post"].(map[string]any)["title"])

	// Невалидный id неотличим от несуществующего.
	resp, _ = doJSON(t, client, http.MethodGet, srv.URL+"/posts/not-a-uuid", nil, auth)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, client, http.MethodPatch, srv.URL+"/posts/"+postID, map[string]string{
		"title": "an updated long enough title",
	}, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "an updated long enough title", body["post"].(map[string]any)["title"])

	resp, body = doJSON(t, client, http.MethodGet, srv.URL+"/posts?page=1&limit=10", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 1, body["results"])

	resp, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/posts/"+postID, nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/posts/"+postID, nil, auth)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTP_Login_BadCredentials(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	client := srv.Client()

	resp, _ := doJSON(t, client, http.MethodPost, srv.URL+"/auth/register", map[string]string{
		"name":            "tester",
		"email":           "creds@example.com",
		"password":        "longenough1",
		"passwordConfirm": "longenough1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Неверный пароль и несуществующий email дают байт-в-байт одинаковое тело.
	respWrongPW, bodyWrongPW := doJSON(t, client, http.MethodPost, srv.URL+"/auth/login", map[string]string{
		"email":    "creds@example.com",
		"password": "wrong-password",
	}, nil)
	respNoUser, bodyNoUser := doJSON(t, client, http.MethodPost, srv.URL+"/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "longenough1",
	}, nil)

	require.Equal(t, http.StatusUnauthorized, respWrongPW.StatusCode)
	require.Equal(t, http.StatusUnauthorized, respNoUser.StatusCode)
	require.Equal(t, bodyWrongPW["error"].(map[string]any)["code"], bodyNoUser["error"].(map[string]any)["code"])
	require.Equal(t, bodyWrongPW["error"].(map[string]any)["message"], bodyNoUser["error"].(map[string]any)["message"])
}

func TestHTTP_UnknownJSONField(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	resp, body := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/auth/login", map[string]string{
		"email":      "x@example.com",
		"password":   "longenough1",
		"unexpected": "field",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_argument", body["error"].(map[string]any)["code"])
}
