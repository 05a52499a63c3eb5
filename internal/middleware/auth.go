// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strings"

	"takopi/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// userIDFromBearer parses the Authorization header and returns the subject
// user id, or an empty string with a reason when the token is unusable.
func userIDFromBearer(c *fiber.Ctx) (string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", "Authorization header required"
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization header format"
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "Invalid or expired token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "Invalid token claims"
	}

	// User id lives in the "sub" claim (subject claim per RFC 7519).
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", "Invalid token structure - missing subject"
	}

	return sub, ""
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	userID, reason := userIDFromBearer(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": reason,
		})
	}

	c.Locals("userID", userID)
	return c.Next()
}

// AuthOptional resolves the caller's user id when a valid bearer token is
// present and leaves the request anonymous otherwise. Used on read routes
// where visibility depends on who is asking (public vs private collections).
func AuthOptional(c *fiber.Ctx) error {
	if userID, _ := userIDFromBearer(c); userID != "" {
		c.Locals("userID", userID)
	}
	return c.Next()
}

// CallerID returns the authenticated user id from the request context, or an
// empty string for anonymous callers.
func CallerID(c *fiber.Ctx) string {
	if v := c.Locals("userID"); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
