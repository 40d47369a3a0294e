// errors стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает доменную ошибку сервиса, а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Ключевые требования:
//   - ErrInvalidCredentials не различает «нет такого email» и «неверный
//     пароль» — ответ одинаков в обоих случаях;
//   - неизвестные ошибки схлопываются в 500/internal без деталей
//     (стеки и текст внутренних ошибок наружу не уходят).
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"blog-service/internal/service"
)

// APIError — единый формат ошибки для клиента.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - известные сентинелы сервиса маппятся по таблице ниже;
//   - всё прочее — 500/internal.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return internal()
	}

	switch {
	case errors.Is(err, service.ErrNoToken):
		return respond(http.StatusUnauthorized, "no_token", "no access token found")
	case errors.Is(err, service.ErrTokenExpired):
		return respond(http.StatusUnauthorized, "token_expired", "access token has expired")
	case errors.Is(err, service.ErrInvalidToken):
		return respond(http.StatusUnauthorized, "invalid_token", "invalid access token")
	case errors.Is(err, service.ErrSessionExpired):
		return respond(http.StatusForbidden, "session_expired", "session has expired")
	case errors.Is(err, service.ErrAccountInvalid):
		return respond(http.StatusForbidden, "account_invalid", "the user belonging to this token no longer exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		return respond(http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrEmailTaken):
		return respond(http.StatusConflict, "email_taken", "email already exists")
	case errors.Is(err, service.ErrTitleTaken):
		return respond(http.StatusConflict, "title_taken", "post with that title already exists")
	case errors.Is(err, service.ErrNotFound):
		return respond(http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrInvalidInput):
		return respond(http.StatusBadRequest, "invalid_argument", "invalid argument")
	}

	return internal()
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)
	write(w, r, status, resp)
}

// WriteForbidden пишет 403 с заданным кодом/сообщением.
// Нужен flow обновления токена, у которого свои формулировки отказов.
func WriteForbidden(w http.ResponseWriter, r *http.Request, code, message string) {
	write(w, r, http.StatusForbidden, ErrorResponse{
		Error: APIError{Code: code, Message: message},
	})
}

func write(w http.ResponseWriter, r *http.Request, status int, resp ErrorResponse) {
	// Прокидываем request_id, чтобы клиент мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func respond(status int, code, message string) (int, ErrorResponse) {
	return status, ErrorResponse{Error: APIError{Code: code, Message: message}}
}

func internal() (int, ErrorResponse) {
	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{Code: "internal", Message: "internal error"},
	}
}
