// session реализует серверное хранилище сессий поверх Redis.
//
// Сессия — единственный источник истины о том, что токены пользователя всё ещё
// принимаются сервером: криптографическая валидность токена необходима, но
// недостаточна. Запись живёт с TTL, равным сроку жизни refresh-токена, и
// удаляется явно при logout; истёкшая и никогда не существовавшая записи
// неразличимы для читателя.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"blog-service/internal/models"
)

// Session — снимок аккаунта на момент выпуска токенов.
// AuthGate использует его только как указатель на аккаунт: состояние
// (в частности verified) перечитывается из первичного хранилища.
type Session struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issued_at"`
}

// Snapshot собирает снимок сессии из модели пользователя.
func Snapshot(user *models.User, now time.Time) *Session {
	return &Session{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Role:     user.Role,
		IssuedAt: now.UTC(),
	}
}

// Store — минимальный контракт хранилища сессий.
type Store interface {
	// Set сохраняет снимок сессии с TTL; существующая запись перезаписывается
	// (последний вход побеждает).
	Set(ctx context.Context, userID uuid.UUID, s *Session, ttl time.Duration) error
	// Get возвращает снимок и признак наличия живой сессии.
	Get(ctx context.Context, userID uuid.UUID) (*Session, bool, error)
	// Delete удаляет сессию; отсутствие записи не считается ошибкой.
	Delete(ctx context.Context, userID uuid.UUID) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "auth:session:".
func NewRedisStore(redisURL, prefix string) (Store, error) {
	if prefix == "" {
		prefix = "auth:session:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisStore{rdb: rdb, prefix: prefix}, nil
}

func (s *redisStore) key(userID uuid.UUID) string { return s.prefix + userID.String() }

func (s *redisStore) Set(ctx context.Context, userID uuid.UUID, sess *Session, ttl time.Duration) error {
	const op = "session.redis.Set"

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rdb.Set(ctx, s.key(userID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *redisStore) Get(ctx context.Context, userID uuid.UUID) (*Session, bool, error) {
	const op = "session.redis.Get"

	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return &sess, true, nil
}

func (s *redisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	const op = "session.redis.Delete"

	if err := s.rdb.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *redisStore) Close() error { return s.rdb.Close() }
