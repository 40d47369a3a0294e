// Package models содержит доменные сущности blog-сервиса.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User — модель пользователя (MongoDB).
//
// Важно:
//   - Email хранится в нижнем регистре, уникальный индекс в коллекции users;
//   - PasswordHash — bcrypt-хэш; наружу не отдаётся, хранилище возвращает его
//     только из явной выборки учётных данных (UserByEmail);
//   - Verified — скрытый флаг; AuthGate перечитывает его из БД при каждой
//     проверке, а не доверяет кэшу сессии.
type User struct {
	ID           uuid.UUID `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Role         string    `bson:"role" json:"role"`
	Photo        string    `bson:"photo" json:"photo"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Verified     bool      `bson:"verified" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
