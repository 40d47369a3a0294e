// token реализует кодек подписанных токенов: выпуск и проверку
// access/refresh JWT на асимметричных ключах (RS256).
//
// Основные аспекты:
//   - на каждый класс токена — своя пара ключей: приватный подписывает,
//     публичный проверяет; ключи приходят из конфигурации как base64(PEM)
//     и декодируются один раз в New;
//   - проверка жёстко зафиксирована на RS256 (jwt.WithValidMethods плюс
//     явная проверка метода в keyfunc) — токен, подписанный любым другим
//     алгоритмом, отклоняется;
//   - ошибки проверки сведены к двум: ErrTokenExpired и ErrInvalidToken;
//     паники через границу пакета не проходят.
package token

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"blog-service/internal/config"
)

var (
	// ErrInvalidToken — токен некорректен по формату/подписи/алгоритму.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("token expired")
)

// Claims — полезная нагрузка подписанного токена.
// Subject дублирует UserID в стандартном поле RegisteredClaims.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// keyPair — разобранная пара ключей одного класса токенов.
type keyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
	ttl     time.Duration
}

// Manager — кодек access/refresh токенов.
// После New экземпляр неизменяем и безопасен для конкурентного использования.
type Manager struct {
	access  keyPair
	refresh keyPair
	issuer  string
}

// New разбирает ключевой материал из конфигурации и создаёт Manager.
func New(cfg config.AuthConfig) (*Manager, error) {
	const op = "token.New"

	access, err := parseKeyPair(cfg.AccessTokenPrivateKey, cfg.AccessTokenPublicKey, cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: access keys: %w", op, err)
	}

	refresh, err := parseKeyPair(cfg.RefreshTokenPrivateKey, cfg.RefreshTokenPublicKey, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: refresh keys: %w", op, err)
	}

	return &Manager{
		access:  access,
		refresh: refresh,
		issuer:  cfg.Issuer,
	}, nil
}

// SignAccess выпускает access-токен для пользователя.
func (m *Manager) SignAccess(userID uuid.UUID, now time.Time) (string, error) {
	return m.sign(m.access, userID, now, m.access.ttl)
}

// SignRefresh выпускает refresh-токен для пользователя.
func (m *Manager) SignRefresh(userID uuid.UUID, now time.Time) (string, error) {
	return m.sign(m.refresh, userID, now, m.refresh.ttl)
}

// SignAccessWithTTL выпускает access-токен с нестандартным сроком жизни.
// Используется в тестах для конструирования заведомо просроченных токенов.
func (m *Manager) SignAccessWithTTL(userID uuid.UUID, now time.Time, ttl time.Duration) (string, error) {
	return m.sign(m.access, userID, now, ttl)
}

// ParseAccess проверяет access-токен и возвращает claims.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	const op = "token.ParseAccess"

	claims, err := m.parse(tokenStr, m.access.public)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return claims, nil
}

// ParseRefresh проверяет refresh-токен и возвращает claims.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	const op = "token.ParseRefresh"

	claims, err := m.parse(tokenStr, m.refresh.public)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return claims, nil
}

// AccessTTL возвращает срок жизни access-токена.
func (m *Manager) AccessTTL() time.Duration { return m.access.ttl }

// RefreshTTL возвращает срок жизни refresh-токена.
func (m *Manager) RefreshTTL() time.Duration { return m.refresh.ttl }

func (m *Manager) sign(kp keyPair, userID uuid.UUID, now time.Time, ttl time.Duration) (string, error) {
	const op = "token.sign"

	claims := Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(kp.private)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

func (m *Manager) parse(tokenStr string, key *rsa.PublicKey) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, ErrInvalidToken
			}

			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithLeeway(5*time.Second),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// parseKeyPair декодирует base64(PEM) и разбирает RSA-ключи одного класса.
func parseKeyPair(privB64, pubB64 string, ttl time.Duration) (keyPair, error) {
	if ttl <= 0 {
		return keyPair{}, errors.New("invalid ttl")
	}

	privPEM, err := base64.StdEncoding.DecodeString(privB64)
	if err != nil {
		return keyPair{}, fmt.Errorf("decode private key: %w", err)
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return keyPair{}, fmt.Errorf("parse private key: %w", err)
	}

	pubPEM, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return keyPair{}, fmt.Errorf("decode public key: %w", err)
	}

	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return keyPair{}, fmt.Errorf("parse public key: %w", err)
	}

	return keyPair{private: priv, public: pub, ttl: ttl}, nil
}
