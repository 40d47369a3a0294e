package models

import (
	"time"

	"github.com/google/uuid"
)

// Post — модель записи блога (MongoDB).
// Title уникален в пределах коллекции (уникальный индекс).
type Post struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Category  string    `bson:"category" json:"category"`
	Image     string    `bson:"image" json:"image"`
	AuthorID  uuid.UUID `bson:"author_id" json:"author_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ListParams — параметры постраничной выдачи записей.
type ListParams struct {
	Page  int64
	Limit int64
}
