package api

import (
	"github.com/bilgisen/autostudio/internal/middleware"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/gofiber/fiber/v2"
)

// ListMembers handles GET /api/v1/admin/members
func (h *Handlers) ListMembers(c *fiber.Ctx) error {
	return c.JSON(h.studio.Members().List(c.UserContext()))
}

type addMemberRequest struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// AddMember handles POST /api/v1/admin/members. Input checks live in the
// member store so their messages reach the dashboard unchanged.
func (h *Handlers) AddMember(c *fiber.Ctx) error {
	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	m, err := h.studio.Members().Add(c.UserContext(), req.Name, req.Email, req.Role)
	if err != nil {
		return fail(c, err)
	}
	h.studio.Logs().Success("Member added: " + m.Name)
	return c.Status(fiber.StatusCreated).JSON(m)
}

// DeleteMember handles DELETE /api/v1/admin/members/:id
func (h *Handlers) DeleteMember(c *fiber.Ctx) error {
	if err := h.studio.Members().Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleMemberStatus handles PATCH /api/v1/admin/members/:id/status
func (h *Handlers) ToggleMemberStatus(c *fiber.Ctx) error {
	m, err := h.studio.Members().ToggleStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(m)
}

// GetSystemConfig handles GET /api/v1/admin/config
func (h *Handlers) GetSystemConfig(c *fiber.Ctx) error {
	return c.JSON(h.studio.State().SystemConfig())
}

type systemConfigRequest struct {
	IsPrivateMode     *bool   `json:"isPrivateMode"`
	AdminPasswordHash *string `json:"adminPasswordHash"`
	DefaultNiche      *string `json:"defaultNiche"`
}

// UpdateSystemConfig handles PUT /api/v1/admin/config. Omitted fields keep
// their current value.
func (h *Handlers) UpdateSystemConfig(c *fiber.Ctx) error {
	req := middleware.Body[systemConfigRequest](c)

	cfg := h.studio.State().SystemConfig()
	if req.IsPrivateMode != nil {
		cfg.IsPrivateMode = *req.IsPrivateMode
	}
	if req.AdminPasswordHash != nil {
		if *req.AdminPasswordHash == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Admin password cannot be empty.",
			})
		}
		cfg.AdminPasswordHash = *req.AdminPasswordHash
	}
	if req.DefaultNiche != nil {
		cfg.DefaultNiche = *req.DefaultNiche
	}

	h.studio.State().UpdateSystemConfig(c.UserContext(), cfg)
	h.studio.Logs().Success("System configuration updated.")
	return c.JSON(cfg)
}

// Reset handles POST /api/v1/admin/reset
func (h *Handlers) Reset(c *fiber.Ctx) error {
	h.refresh.Disable()
	if err := h.studio.Reset(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"status":  "reset",
		"message": "Application data cleared",
	})
}
