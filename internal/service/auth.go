package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blog-service/internal/models"
	"blog-service/internal/pkg/log"
	"blog-service/internal/session"
	"blog-service/internal/storage"
	"blog-service/internal/token"
)

// SignUpInput — вход регистрации.
type SignUpInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
	Photo           string `json:"photo"`
}

// SignUp регистрирует нового пользователя.
//
// Пароль хэшируется явным шагом до записи (bcrypt, cost из конфигурации);
// passwordConfirm используется только для сверки и никогда не сохраняется.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	const op = "service.auth.SignUp"

	normEmail, err := validateSignUp(&input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := hashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	photo := input.Photo
	if photo == "" {
		photo = "default.jpeg"
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Name:         input.Name,
		Email:        normEmail,
		Role:         "user",
		Photo:        photo,
		PasswordHash: hash,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Login выполняет вход по email+пароль.
//
// Отсутствие аккаунта и несовпадение пароля неразличимы для клиента
// (единый ErrInvalidCredentials). На успех подписывается пара токенов и
// перезаписывается сессия с TTL, равным сроку жизни refresh-токена.
func (s *Service) Login(ctx context.Context, email, password string) (*models.TokenPair, *models.User, error) {
	const op = "service.auth.Login"

	lg := log.From(ctx)

	normEmail, err := validateEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if !user.Verified {
		lg.Warn("login_unverified_account",
			slog.String("op", op),
			slog.String("user_id", user.ID.String()),
		)
		return nil, nil, fmt.Errorf("%s: %w", op, ErrAccountInvalid)
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return pair, user, nil
}

// Authenticate — шлюз, через который проходит каждая защищённая операция.
//
// Порядок проверок, выход по первой ошибке:
//  1. токен присутствует (извлечение из Authorization/cookie — забота транспорта);
//  2. криптографическая валидность access-токена;
//  3. живая сессия в Redis;
//  4. аккаунт существует и верифицирован (перечитывается из MongoDB,
//     кэшированному снимку сессии не доверяем).
//
// Только чтение; никаких побочных эффектов кроме чтения хранилищ.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "service.auth.Authenticate"

	if accessToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	sess, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}

	user, err := s.storage.UserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrAccountInvalid)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !user.Verified {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountInvalid)
	}

	return user, nil
}

// RefreshAccessToken выпускает новый access-токен по refresh-токену из cookie.
//
// Refresh-токен и сессия при этом не трогаются: ротации нет, утёкший
// refresh-токен живёт до собственного истечения или явного logout.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	const op = "service.auth.RefreshAccessToken"

	if refreshToken == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	// Те же проверки, что и в Authenticate (шаги 3-4).
	sess, ok, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}

	user, err := s.storage.UserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrAccountInvalid)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !user.Verified {
		return "", fmt.Errorf("%s: %w", op, ErrAccountInvalid)
	}

	access, err := s.tokens.SignAccess(user.ID, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return access, nil
}

// Logout удаляет сессию владельца токена.
//
// Идемпотентен: достаточно криптографически валидного access-токена, удаление
// уже отсутствующей сессии — успешный no-op. Живость сессии не проверяется
// нарочно, иначе повторный logout возвращал бы ошибку.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	const op = "service.auth.Logout"

	if accessToken == "" {
		return fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// issueSession подписывает пару токенов и перезаписывает сессию пользователя.
// Последний вход побеждает: конкурентные логины одного аккаунта безобидно
// перетирают сессию друг друга.
func (s *Service) issueSession(ctx context.Context, user *models.User) (*models.TokenPair, error) {
	const op = "service.auth.issueSession"

	now := time.Now().UTC()

	access, err := s.tokens.SignAccess(user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refresh, err := s.tokens.SignRefresh(user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.sessions.Set(ctx, user.ID, session.Snapshot(user, now), s.tokens.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(s.tokens.AccessTTL()),
		RefreshExpiresAt: now.Add(s.tokens.RefreshTTL()),
	}, nil
}

// hashPassword хэширует пароль с помощью bcrypt.
// Cost читается из конфигурации в точке вызова, а не кэшируется: фактор
// можно поднять без передеплоя вызывающего кода.
func hashPassword(password string, cost int) (string, error) {
	const op = "service.auth.hashPassword"

	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем (константное время — забота bcrypt).
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
