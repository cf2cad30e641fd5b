package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	config "github.com/ranktutor/ranktutor/configs"
	"github.com/ranktutor/ranktutor/models"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

// OptionalAuth parses a bearer token when one is present but lets anonymous
// requests through. Used on public pages that personalize for logged-in users.
func OptionalAuth() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(config.Config("JWT_SECRET")),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Next()
		},
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// RoleFromToken resolves the caller's role from the verified JWT claims.
func RoleFromToken(c *fiber.Ctx) (models.Role, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	raw, _ := claims["role"].(string)
	return models.ParseRole(raw)
}

// RequireCapability gates a route on the capability table rather than on
// role strings, so access rules live in one place.
func RequireCapability(cap models.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := RoleFromToken(c)
		if !ok || !role.Can(cap) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: insufficient permissions",
			})
		}
		return c.Next()
	}
}
