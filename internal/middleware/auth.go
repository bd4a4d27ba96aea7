// Package middleware provides the ordered capability checks every request
// passes through: authenticate, authorize, field gates, logging, rate limits.
package middleware

import (
	"strconv"
	"strings"

	"tekblog/internal/config"
	"tekblog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired enforces authentication for protected routes. On success the
// acting user's ID is stored in c.Locals("userID"); the caller's existence
// and role are checked further down the pipeline where the store is available.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return models.RespondWithError(c,
			models.NewUnauthenticatedError("Access denied. No token provided."))
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.RespondWithError(c,
			models.NewUnauthenticatedError("Invalid authorization header format"))
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, models.NewUnauthenticatedError("Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return models.RespondWithError(c,
			models.NewUnauthenticatedError("Invalid token."))
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.RespondWithError(c,
			models.NewUnauthenticatedError("Invalid token claims"))
	}

	subClaim, ok := claims["sub"]
	if !ok {
		return models.RespondWithError(c,
			models.NewUnauthenticatedError("Invalid token structure - missing subject"))
	}
	subStr, ok := subClaim.(string)
	if !ok {
		return models.RespondWithError(c,
			models.NewUnauthenticatedError("Invalid token subject type"))
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return models.RespondWithError(c,
			models.NewUnauthenticatedError("Invalid user ID in token"))
	}

	c.Locals("userID", uint(userID))
	return c.Next()
}
