package service

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 32
	minTitleLen    = 10
	minContentLen  = 10
)

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
// Возвращает email в нижнем регистре.
func validateEmail(raw string) (string, error) {
	const op = "service.validate.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет границы длины пароля (8..32 символа).
func validatePassword(pw string) error {
	const op = "service.validate.validatePassword"

	n := len([]rune(pw))
	if n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}

// validateSignUp валидирует вход регистрации и возвращает нормализованный email.
func validateSignUp(input *SignUpInput) (string, error) {
	const op = "service.validate.validateSignUp"

	if strings.TrimSpace(input.Name) == "" {
		return "", fmt.Errorf("%s: name: %w", op, ErrInvalidInput)
	}

	normEmail, err := validateEmail(input.Email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := validatePassword(input.Password); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if input.Password != input.PasswordConfirm {
		return "", fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	return normEmail, nil
}

// validatePost проверяет обязательные поля записи блога.
func validatePost(input *PostInput) error {
	const op = "service.validate.validatePost"

	if len([]rune(strings.TrimSpace(input.Title))) < minTitleLen {
		return fmt.Errorf("%s: title: %w", op, ErrInvalidInput)
	}

	if len([]rune(strings.TrimSpace(input.Content))) < minContentLen {
		return fmt.Errorf("%s: content: %w", op, ErrInvalidInput)
	}

	if strings.TrimSpace(input.Category) == "" {
		return fmt.Errorf("%s: category: %w", op, ErrInvalidInput)
	}

	return nil
}

// validatePostUpdate проверяет только присутствующие поля частичного обновления.
func validatePostUpdate(input *UpdatePostInput) error {
	const op = "service.validate.validatePostUpdate"

	if input.Title != "" && len([]rune(strings.TrimSpace(input.Title))) < minTitleLen {
		return fmt.Errorf("%s: title: %w", op, ErrInvalidInput)
	}

	if input.Content != "" && len([]rune(strings.TrimSpace(input.Content))) < minContentLen {
		return fmt.Errorf("%s: content: %w", op, ErrInvalidInput)
	}

	return nil
}
