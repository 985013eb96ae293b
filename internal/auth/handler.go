package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the credential-exchange endpoint.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler creates the auth handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type loginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// Login exchanges a member ID + password pair for a session token.
//
// Responses follow the portal contract:
//
//	200 {"message": ..., "session_token": ...}
//	4xx {"error": ...}
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON data in request body"})
	}
	if strings.TrimSpace(req.User) == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "missing 'user' or 'password' parameter"})
	}
	memberID, err := strconv.Atoi(strings.TrimSpace(req.User))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "'user' must be a member ID"})
	}

	login, err := h.svc.Authenticate(c.UserContext(), memberID, req.Password)
	if err != nil {
		h.logger.Warn("login rejected", "member_id", memberID)
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	token, err := h.svc.IssueToken(login)
	if err != nil {
		h.logger.Error("issue token", "member_id", memberID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "could not issue session token"})
	}

	h.logger.Info("login succeeded", "member_id", memberID, "role", login.Role)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":       "login successful",
		"session_token": token,
	})
}
