package member

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/memberhub/memberhub/internal/middleware"
)

// LoginProvisioner creates a credential row for a freshly added member.
// Implemented by the auth service.
type LoginProvisioner interface {
	CreateLogin(ctx context.Context, memberID int, password, role string) error
}

// Handler exposes member profile endpoints.
type Handler struct {
	svc             *Service
	logins          LoginProvisioner
	defaultPassword string
	logger          *slog.Logger
}

// NewHandler creates the member handler.
func NewHandler(svc *Service, logins LoginProvisioner, defaultPassword string, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logins: logins, defaultPassword: defaultPassword, logger: logger}
}

// Me returns the authenticated member's own profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	memberID, _ := c.Locals(middleware.LocalMemberID).(int)
	rec, err := h.svc.Profile(c.UserContext(), memberID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "profile data not found"})
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(rec)
}

// Group lists every member of the caller's group, ordered by ID.
func (h *Handler) Group(c *fiber.Ctx) error {
	records, err := h.svc.GroupMembers(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if records == nil {
		records = []Record{}
	}
	return c.JSON(records)
}

// AdminGet returns any member's profile. Admin only.
func (h *Handler) AdminGet(c *fiber.Ctx) error {
	targetID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "member id must be numeric"})
	}
	rec, err := h.svc.Profile(c.UserContext(), targetID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(rec)
}

// AdminUpdate applies a partial edit to a member record. Admin only.
func (h *Handler) AdminUpdate(c *fiber.Ctx) error {
	targetID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "member id must be numeric"})
	}
	var patch Patch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON data in request body"})
	}
	if patch.Empty() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "no updatable fields in request"})
	}

	rec, err := h.svc.Update(c.UserContext(), targetID, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	adminID, _ := c.Locals(middleware.LocalMemberID).(int)
	h.logger.Info("member updated", "member_id", rec.ID, "admin_id", adminID)
	return c.JSON(fiber.Map{"member": rec})
}

type addMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminAdd creates a member plus a login row with the default password.
// Admin only.
func (h *Handler) AdminAdd(c *fiber.Ctx) error {
	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON data in request body"})
	}
	if req.Name == "" || req.Email == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "missing 'name' or 'email' in request body"})
	}

	id, err := h.svc.Add(c.UserContext(), req.Name, req.Email)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if err := h.logins.CreateLogin(c.UserContext(), id, h.defaultPassword, "member"); err != nil {
		h.logger.Error("provision login", "member_id", id, "error", err)
		return fiber.NewError(http.StatusInternalServerError, "member created but login provisioning failed")
	}

	h.logger.Info("member created", "member_id", id)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":   "member created",
		"member_id": id,
	})
}
