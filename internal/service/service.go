// service содержит бизнес-логику blog-сервиса: регистрацию и аутентификацию
// пользователей, жизненный цикл сессий (вход/обновление/выход), проверочный
// шлюз (Authenticate), через который проходит каждая защищённая операция,
// и CRUD записей блога.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданные хранилища потокобезопасны. Каждый вызов перечитывает всё
//     нужное из хранилищ — in-process блокировок нет.
//   - Ошибки возвращаются как сентинелы и далее маппятся транспортом на
//     HTTP-статусы (см. комментарии к переменным ошибок ниже).
package service

import (
	"errors"

	"blog-service/internal/config"
	"blog-service/internal/session"
	"blog-service/internal/storage"
	"blog-service/internal/token"
)

var (
	// ErrNoToken — в запросе нет access-токена (ни в Authorization, ни в cookie).
	// Транспорт: 401.
	ErrNoToken = errors.New("no access token")

	// ErrInvalidToken — токен некорректен по формату/подписи/алгоритму.
	// Транспорт: 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrSessionExpired — токен криптографически валиден, но живой сессии
	// в Redis нет (истекла или удалена logout-ом). Транспорт: 403.
	ErrSessionExpired = errors.New("session expired")

	// ErrAccountInvalid — аккаунт из токена отсутствует в БД или не
	// верифицирован. Транспорт: 403.
	ErrAccountInvalid = errors.New("account invalid")

	// ErrInvalidCredentials — пара email/пароль неверна. Нарочно едина для
	// «нет такого email» и «неверный пароль», чтобы не допускать перечисление
	// аккаунтов. Транспорт: 401.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken — email уже занят другим пользователем. Транспорт: 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrTitleTaken — запись с таким заголовком уже существует. Транспорт: 409.
	ErrTitleTaken = errors.New("title already taken")

	// ErrNotFound — запрошенный ресурс отсутствует. Транспорт: 404.
	ErrNotFound = errors.New("not found")

	// ErrInvalidEmail — email имеет некорректный формат. Транспорт: 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль короче 8 или длиннее 32 символов. Транспорт: 400.
	ErrWeakPassword = errors.New("password must be between 8 and 32 characters")

	// ErrPasswordMismatch — password и passwordConfirm не совпадают. Транспорт: 400.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrInvalidInput — прочие нарушения валидации входа. Транспорт: 400.
	ErrInvalidInput = errors.New("invalid input")
)

// Service описывает бизнес-логику blog-сервиса.
type Service struct {
	storage  storage.Storage
	sessions session.Store
	tokens   *token.Manager
	cfg      config.AuthConfig
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, sessions session.Store, tokens *token.Manager, cfg config.AuthConfig) *Service {
	return &Service{
		storage:  storage,
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
	}
}

// Tokens возвращает кодек токенов (транспорту нужны TTL для cookie).
func (s *Service) Tokens() *token.Manager { return s.tokens }
