package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blog-service/internal/models"
	"blog-service/internal/storage"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// PostInput — вход создания записи.
type PostInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

// UpdatePostInput — частичное обновление записи; пустые поля не трогаются.
type UpdatePostInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

// CreatePost создаёт запись блога от имени вызывающего.
func (s *Service) CreatePost(ctx context.Context, authorID uuid.UUID, input PostInput) (*models.Post, error) {
	const op = "service.posts.CreatePost"

	if err := validatePost(&input); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	image := input.Image
	if image == "" {
		image = "default.jpeg"
	}

	post := &models.Post{
		ID:       uuid.New(),
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
		Image:    image,
		AuthorID: authorID,
	}

	if err := s.storage.SavePost(ctx, post); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrTitleTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

// PostByID возвращает запись по идентификатору.
func (s *Service) PostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	const op = "service.posts.PostByID"

	post, err := s.storage.PostByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

// UpdatePost применяет частичное обновление; автор выставляется заново
// из вызывающего.
func (s *Service) UpdatePost(ctx context.Context, authorID, id uuid.UUID, input UpdatePostInput) (*models.Post, error) {
	const op = "service.posts.UpdatePost"

	if err := validatePostUpdate(&input); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	update := &models.Post{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
		Image:    input.Image,
		AuthorID: authorID,
	}

	post, err := s.storage.UpdatePost(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, fmt.Errorf("%s: %w", op, ErrTitleTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return post, nil
}

// ListPosts возвращает страницу записей вызывающего, новые первыми.
func (s *Service) ListPosts(ctx context.Context, authorID uuid.UUID, p models.ListParams) ([]models.Post, error) {
	const op = "service.posts.ListPosts"

	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}

	posts, err := s.storage.PostsByAuthor(ctx, authorID, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return posts, nil
}

// DeletePost удаляет запись по идентификатору.
func (s *Service) DeletePost(ctx context.Context, id uuid.UUID) error {
	const op = "service.posts.DeletePost"

	if err := s.storage.DeletePost(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
