package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"bergerie-server/internal/models"
)

// JWTAuthMiddleware создает middleware для проверки JWT access токена.
// Проверяет подпись и срок действия, извлекает user_id и кладет его
// в контекст запроса под models.UserContextKey.
// Не проверяет отзыв токена (это ответственность auth-сервиса).
func JWTAuthMiddleware(secretKey string, logger *zap.Logger) echo.MiddlewareFunc {
	log := logger.Named("JWTAuth")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header missing")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims := &models.Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secretKey), nil
			})

			if err != nil {
				log.Warn("JWT parsing/validation error", zap.Error(err))
				switch {
				case errors.Is(err, jwt.ErrTokenExpired):
					return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
				case errors.Is(err, jwt.ErrTokenMalformed):
					return echo.NewHTTPError(http.StatusUnauthorized, "Token is malformed")
				case errors.Is(err, jwt.ErrTokenSignatureInvalid):
					return echo.NewHTTPError(http.StatusUnauthorized, "Token signature is invalid")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "Token validation failed")
				}
			}

			if !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid")
			}
			if claims.UserID == uuid.Nil {
				log.Warn("UserID missing in JWT claims")
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token: UserID missing")
			}

			ctx := context.WithValue(c.Request().Context(), models.UserContextKey, claims.UserID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(string(models.UserContextKey), claims.UserID)

			return next(c)
		}
	}
}

// GenerateTestJWT создает тестовый JWT токен.
// ВАЖНО: предназначена ТОЛЬКО для использования в тестах.
func GenerateTestJWT(userID uuid.UUID, secretKey string, validityDuration time.Duration) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign test JWT: %w", err)
	}
	return tokenString, nil
}
