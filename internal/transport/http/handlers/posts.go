package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "blog-service/internal/errors"
	"blog-service/internal/models"
	"blog-service/internal/service"
	"blog-service/internal/transport/http/middleware"
)

// CreatePost создаёт запись от имени вызывающего.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrNoToken)
		return
	}

	var in service.PostInput
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidInput)
		return
	}

	post, err := h.svc.CreatePost(r.Context(), user.ID, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"post":   post,
	})
}

// GetPost возвращает запись по идентификатору.
func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	post, err := h.svc.PostByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"post":   post,
	})
}

// UpdatePost применяет частичное обновление записи.
func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrNoToken)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	var in service.UpdatePostInput
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, service.ErrInvalidInput)
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), user.ID, id, in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"post":   post,
	})
}

// ListPosts возвращает страницу записей вызывающего (?page=&limit=).
func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrNoToken)
		return
	}

	params := models.ListParams{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}

	posts, err := h.svc.ListPosts(r.Context(), user.ID, params)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"results": len(posts),
		"posts":   posts,
	})
}

// DeletePost удаляет запись по идентификатору.
func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, service.ErrNotFound)
		return
	}

	if err := h.svc.DeletePost(r.Context(), id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "success"})
}

// queryInt читает неотрицательный числовой query-параметр; 0 — «не задан».
func queryInt(r *http.Request, name string) int64 {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || v < 0 {
		return 0
	}

	return v
}
