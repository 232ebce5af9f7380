package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// UnknownUser — user_id, когда токен не содержит идентификатора.
const UnknownUser = "unknown"

// userIDClaims — claims, где может лежать идентификатор пользователя.
var userIDClaims = []string{"user_id", "userId", "id", "sub"}

// UserID извлекает идентификатор пользователя из токена без проверки подписи.
// Токен для gateway непрозрачен: если это не JWT или нужного claim нет,
// возвращается UnknownUser.
func UserID(token string) string {
	if token == "" {
		return UnknownUser
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return UnknownUser
	}

	for _, k := range userIDClaims {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return UnknownUser
}
