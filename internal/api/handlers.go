package api

import (
	"context"
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/middleware"
	"github.com/bilgisen/autostudio/internal/models"
	"github.com/bilgisen/autostudio/internal/scheduler"
	"github.com/bilgisen/autostudio/internal/studio"
	"github.com/gofiber/fiber/v2"
)

const (
	version      = "1.0.0"
	passwordMask = "********"
)

// AutoRefresher controls the background trend refresh.
// *scheduler.Scheduler implements it.
type AutoRefresher interface {
	Enable(p scheduler.Params) error
	Disable()
	Latest() scheduler.Snapshot
}

type Handlers struct {
	studio  *studio.Service
	refresh AutoRefresher
}

func NewHandlers(svc *studio.Service, refresh AutoRefresher) *Handlers {
	return &Handlers{studio: svc, refresh: refresh}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
		"time":    time.Now().Format(time.RFC3339),
	})
}

// resolveSession is the access middleware resolver. Magic links are logged
// as a login.
func (h *Handlers) resolveSession(ctx context.Context, key string, magic bool) (*studio.Session, error) {
	if magic {
		return h.studio.Login(ctx, key, true)
	}
	return h.studio.Access(ctx, key)
}

type generateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// Generate handles POST /api/generate, a plain prompt proxy.
func (h *Handlers) Generate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil || req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Prompt is required",
		})
	}

	text, err := h.studio.GenerateText(c.UserContext(), req.Prompt)
	if err != nil {
		logger.Get().Error().Err(err).Msg("Proxy generation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Server error",
		})
	}
	if text == "" {
		text = "No response"
	}
	return c.JSON(fiber.Map{"text": text})
}

type sessionRequest struct {
	Key   string `json:"key" validate:"required"`
	Magic bool   `json:"magic"`
}

// CreateSession handles POST /api/v1/session, the dashboard login.
func (h *Handlers) CreateSession(c *fiber.Ctx) error {
	req := middleware.Body[sessionRequest](c)

	sess, err := h.studio.Login(c.UserContext(), req.Key, req.Magic)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sessionView(sess, h.studio.State().SystemConfig()))
}

// GetSession handles GET /api/v1/session.
func (h *Handlers) GetSession(c *fiber.Ctx) error {
	return c.JSON(sessionView(middleware.SessionFrom(c), h.studio.State().SystemConfig()))
}

func sessionView(sess *studio.Session, sys models.SystemConfig) fiber.Map {
	return fiber.Map{
		"member":        sess.Member,
		"isAdmin":       sess.IsAdmin(),
		"isPrivateMode": sys.IsPrivateMode,
		"defaultNiche":  sys.DefaultNiche,
	}
}

type geminiKeyRequest struct {
	Key string `json:"key"`
}

// SetGeminiKey handles PUT /api/v1/me/gemini-key
func (h *Handlers) SetGeminiKey(c *fiber.Ctx) error {
	var req geminiKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sess := middleware.SessionFrom(c)
	if err := h.studio.SetGeminiKey(c.UserContext(), sess, req.Key); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "saved"})
}

// GetLogs handles GET /api/v1/logs
func (h *Handlers) GetLogs(c *fiber.Ctx) error {
	return c.JSON(h.studio.Logs().Entries())
}

// ClearLogs handles DELETE /api/v1/logs
func (h *Handlers) ClearLogs(c *fiber.Ctx) error {
	h.studio.Logs().Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCountries handles GET /api/v1/countries
func (h *Handlers) GetCountries(c *fiber.Ctx) error {
	return c.JSON(models.Countries)
}

// GetWordPressSettings handles GET /api/v1/settings/wordpress. The
// application password is masked.
func (h *Handlers) GetWordPressSettings(c *fiber.Ctx) error {
	cfg := h.studio.State().WordPressConfig()
	if cfg.AppPassword != "" {
		cfg.AppPassword = passwordMask
	}
	return c.JSON(cfg)
}

type wordPressRequest struct {
	URL         string `json:"url" validate:"omitempty,url"`
	Username    string `json:"username"`
	AppPassword string `json:"appPassword"`
}

// UpdateWordPressSettings handles PUT /api/v1/settings/wordpress. Sending
// the mask back keeps the stored password.
func (h *Handlers) UpdateWordPressSettings(c *fiber.Ctx) error {
	req := middleware.Body[wordPressRequest](c)

	cfg := models.WordPressConfig{URL: req.URL, Username: req.Username, AppPassword: req.AppPassword}
	if cfg.AppPassword == passwordMask {
		cfg.AppPassword = h.studio.State().WordPressConfig().AppPassword
	}
	h.studio.State().UpdateWordPressConfig(c.UserContext(), cfg)
	h.studio.Logs().Success("WordPress settings saved.")

	if cfg.AppPassword != "" {
		cfg.AppPassword = passwordMask
	}
	return c.JSON(cfg)
}
