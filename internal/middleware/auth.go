package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/members"
	"github.com/bilgisen/autostudio/internal/studio"
	"github.com/bilgisen/autostudio/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// SessionKey is the Locals key holding the caller's *studio.Session.
const SessionKey = "session"

// AccessDeniedMessage is shown for unknown or suspended access keys.
const AccessDeniedMessage = "Invalid Access Key or Account Suspended."

// AccessConfig defines the config for the access middleware
type AccessConfig struct {
	// Next defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Resolve maps an access key to a session. magic is true when the key
	// came from the magic link query parameter.
	// Required.
	Resolve func(ctx context.Context, key string, magic bool) (*studio.Session, error)

	// ErrorHandler is executed when Resolve fails.
	// Optional. Default: 401 for denied keys, 500 otherwise
	ErrorHandler fiber.ErrorHandler

	// Header is the header carrying the access key.
	// Optional. Default: "X-Access-Key"
	Header string

	// Query is the magic link query parameter.
	// Optional. Default: "key"
	Query string

	// GeminiHeader carries a per-request Gemini key overriding the stored one.
	// Optional. Default: "X-Gemini-Key"
	GeminiHeader string
}

// AccessConfigDefault is the default config
var AccessConfigDefault = AccessConfig{
	ErrorHandler: func(c *fiber.Ctx, err error) error {
		if errors.Is(err, members.ErrAccessDenied) {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Access denied")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": AccessDeniedMessage,
			})
		}
		logger.Get().Error().Err(err).Str("path", c.Path()).Msg("Access check failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Access check failed",
		})
	},
	Header:       "X-Access-Key",
	Query:        "key",
	GeminiHeader: "X-Gemini-Key",
}

// NewAccess resolves the caller and stores the session in Locals.
func NewAccess(config AccessConfig) fiber.Handler {
	cfg := config
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = AccessConfigDefault.ErrorHandler
	}
	if cfg.Header == "" {
		cfg.Header = AccessConfigDefault.Header
	}
	if cfg.Query == "" {
		cfg.Query = AccessConfigDefault.Query
	}
	if cfg.GeminiHeader == "" {
		cfg.GeminiHeader = AccessConfigDefault.GeminiHeader
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		key := strings.TrimPrefix(c.Get(cfg.Header), "Bearer ")
		magic := false
		if key == "" {
			key = c.Query(cfg.Query)
			magic = key != ""
		}

		sess, err := cfg.Resolve(c.UserContext(), key, magic)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}
		if gk := c.Get(cfg.GeminiHeader); gk != "" {
			sess.APIKey = gk
		}

		c.Locals(SessionKey, sess)
		return c.Next()
	}
}

// SessionFrom returns the session stored by NewAccess, or an anonymous one.
func SessionFrom(c *fiber.Ctx) *studio.Session {
	if sess, ok := c.Locals(SessionKey).(*studio.Session); ok && sess != nil {
		return sess
	}
	return &studio.Session{}
}

// AdminConfig defines the config for the admin middleware
type AdminConfig struct {
	// Password returns the current admin password.
	// Required.
	Password func() string

	// APIKey is an operator key that bypasses the password when set.
	// Optional.
	APIKey string
}

// AdminOnly guards admin routes. X-API-Key must match the operator key, or
// X-Admin-Password the configured admin password.
func AdminOnly(cfg AdminConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-Key")
		password := c.Get("X-Admin-Password")
		if apiKey == "" && password == "" {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Admin access attempt without credentials")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Admin credentials are required",
			})
		}

		if cfg.APIKey != "" && apiKey == cfg.APIKey {
			return c.Next()
		}
		if password != "" && password == cfg.Password() {
			return c.Next()
		}

		fp := utils.Fingerprint(apiKey + password)
		logger.Get().Warn().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", c.IP()).
			Str("key_fp", fp).
			Msg("Unauthorized admin access attempt")

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Admin access required",
		})
	}
}
