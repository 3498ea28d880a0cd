package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a private type for context keys defined in this package.
type contextKey string

// UserContextKey is the request-context key under which the auth middleware
// stores the authenticated user's UUID.
const UserContextKey contextKey = "userID"

// Claims - полезная нагрузка JWT токена пользователя.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}
