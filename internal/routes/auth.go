package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/memberhub/memberhub/internal/auth"
)

// RegisterAuthRoutes wires the credential-exchange endpoint.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	if rateLimiter != nil {
		r.Post("/login", rateLimiter, h.Login)
	} else {
		r.Post("/login", h.Login)
	}
}
