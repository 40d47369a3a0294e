package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"blog-service/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/запись блога).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/title).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт нового пользователя; конфликт email — ErrAlreadyExists.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email и возвращает его вместе со
	// скрытыми полями (password_hash, verified) — единственная выборка
	// учётных данных.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID, включая скрытый флаг verified.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PostStorage выполняет операции над записями блога.
type PostStorage interface {
	// SavePost создаёт запись; конфликт title — ErrAlreadyExists.
	SavePost(ctx context.Context, post *models.Post) error
	// PostByID возвращает запись по ID; отсутствие — ErrNotFound.
	PostByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	// UpdatePost применяет частичное обновление полей и заново выставляет
	// автора; отсутствие записи — ErrNotFound.
	UpdatePost(ctx context.Context, id uuid.UUID, update *models.Post) (*models.Post, error)
	// PostsByAuthor возвращает страницу записей автора, новые первыми.
	PostsByAuthor(ctx context.Context, authorID uuid.UUID, p models.ListParams) ([]models.Post, error)
	// DeletePost удаляет запись; отсутствие — ErrNotFound.
	DeletePost(ctx context.Context, id uuid.UUID) error
}

// Storage задаёт контракт работы с первичным хранилищем.
type Storage interface {
	UserStorage
	PostStorage
	Close(ctx context.Context) error
}
