package models

import "time"

// TokenPair — пара токенов, выдаваемая при входе.
//
// Описание:
//   - AccessToken — короткоживущий RS256 JWT для доступа к API;
//   - RefreshToken — долгоживущий RS256 JWT, предъявляется только для выпуска
//     нового access-токена; его единственная серверная «привязка» — живая
//     сессия в Redis;
//   - AccessExpiresAt/RefreshExpiresAt — моменты истечения (UTC), по ним
//     транспорт выставляет сроки жизни cookie.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
