package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog-service/internal/models"
	"blog-service/internal/storage"
)

// MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// SavePost создаёт запись блога.
// Конфликт уникального индекса title транслируется в storage.ErrAlreadyExists.
func (m *Mongo) SavePost(ctx context.Context, post *models.Post) error {
	const op = "storage.mongo.SavePost"

	now := toMS(time.Now())
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := m.posts.InsertOne(ctx, post); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: insert: %w", op, err)
	}

	return nil
}

// PostByID возвращает запись по её идентификатору.
func (m *Mongo) PostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	const op = "storage.mongo.PostByID"

	var post models.Post
	err := m.posts.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &post, nil
}

// UpdatePost применяет частичное обновление и возвращает новое состояние.
// Пустые поля update не затирают существующие значения; автор выставляется
// заново из update.AuthorID.
func (m *Mongo) UpdatePost(ctx context.Context, id uuid.UUID, update *models.Post) (*models.Post, error) {
	const op = "storage.mongo.UpdatePost"

	set := bson.D{
		{Key: "author_id", Value: update.AuthorID},
		{Key: "updated_at", Value: toMS(time.Now())},
	}

	if update.Title != "" {
		set = append(set, bson.E{Key: "title", Value: update.Title})
	}
	if update.Content != "" {
		set = append(set, bson.E{Key: "content", Value: update.Content})
	}
	if update.Category != "" {
		set = append(set, bson.E{Key: "category", Value: update.Category})
	}
	if update.Image != "" {
		set = append(set, bson.E{Key: "image", Value: update.Image})
	}

	var post models.Post
	err := m.posts.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)

	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &post, nil
}

// PostsByAuthor возвращает страницу записей автора, новые первыми.
// page считается с единицы; limit нормализуется вызывающей стороной.
func (m *Mongo) PostsByAuthor(ctx context.Context, authorID uuid.UUID, p models.ListParams) ([]models.Post, error) {
	const op = "storage.mongo.PostsByAuthor"

	skip := (p.Page - 1) * p.Limit

	cur, err := m.posts.Find(ctx,
		bson.D{{Key: "author_id", Value: authorID}},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetSkip(skip).
			SetLimit(p.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cur.Close(ctx)

	posts := make([]models.Post, 0, p.Limit)
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}

	return posts, nil
}

// DeletePost удаляет запись по идентификатору.
func (m *Mongo) DeletePost(ctx context.Context, id uuid.UUID) error {
	const op = "storage.mongo.DeletePost"

	res, err := m.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
