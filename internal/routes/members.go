package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/memberhub/memberhub/internal/member"
	"github.com/memberhub/memberhub/internal/middleware"
)

// RegisterMemberRoutes wires profile and admin member-management endpoints.
// The router passed in must already enforce authentication.
func RegisterMemberRoutes(r fiber.Router, h *member.Handler, d Deps) {
	r.Get("/profile/me", h.Me)
	r.Get("/members/my_group", h.Group)

	admin := r.Group("/admin", middleware.RequireAdmin())
	admin.Get("/profile/:id", h.AdminGet)
	admin.Put("/members/:id", h.AdminUpdate)
	if d.Cache != nil {
		admin.Post("/members", middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger), h.AdminAdd)
	} else {
		admin.Post("/members", h.AdminAdd)
	}
}
