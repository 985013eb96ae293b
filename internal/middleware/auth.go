package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/memberhub/memberhub/internal/auth"
	"github.com/memberhub/memberhub/internal/config"
)

// Locals keys set by RequireAuth for downstream handlers.
const (
	LocalMemberID = "member_id"
	LocalRole     = "role"
)

// RequireAuth validates the bearer session token. The server verifies the
// signature on every request; clients only decode.
func RequireAuth(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}
		raw := strings.TrimSpace(authz[len("Bearer "):])
		claims, err := auth.VerifyToken(raw, cfg.JWTSecret)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}
		memberID, err := claims.MemberID()
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token subject"})
		}

		c.Locals(LocalMemberID, memberID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if role != "admin" {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "admin privileges required"})
		}
		return c.Next()
	}
}
