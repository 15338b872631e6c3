package api

import (
	"errors"
	"net/http"

	"github.com/bilgisen/autostudio/internal/ai"
	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/bilgisen/autostudio/internal/members"
	"github.com/bilgisen/autostudio/internal/middleware"
	"github.com/bilgisen/autostudio/internal/studio"
	"github.com/bilgisen/autostudio/internal/wordpress"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps a domain error to an HTTP status and a user-facing message.
func statusFor(err error) (int, string) {
	var (
		verr *members.ValidationError
		perr *wordpress.PublishError
		aerr *ai.Error
		ferr *fiber.Error
	)
	switch {
	case errors.As(err, &ferr):
		return ferr.Code, ferr.Message
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, verr.Message
	case errors.Is(err, members.ErrAccessDenied):
		return fiber.StatusUnauthorized, middleware.AccessDeniedMessage
	case errors.Is(err, members.ErrProtected):
		return fiber.StatusForbidden, "The master admin account cannot be deleted or suspended."
	case errors.Is(err, members.ErrNotFound):
		return fiber.StatusNotFound, "Member not found"
	case errors.Is(err, studio.ErrArticleNotFound):
		return fiber.StatusNotFound, "Article not found"
	case errors.Is(err, wordpress.ErrNotConfigured):
		return fiber.StatusBadRequest, "WordPress configuration missing. Add your site URL and Application Password in Settings."
	case errors.As(err, &perr):
		if perr.Unreachable() {
			return fiber.StatusServiceUnavailable, perr.Message
		}
		return fiber.StatusBadGateway, perr.Message
	case errors.As(err, &aerr):
		switch aerr.Kind {
		case ai.KindRateLimit:
			return fiber.StatusTooManyRequests, aerr.Message
		case ai.KindSafety:
			return fiber.StatusBadRequest, aerr.Message
		}
		return fiber.StatusBadGateway, aerr.Message
	}
	return fiber.StatusInternalServerError, http.StatusText(fiber.StatusInternalServerError)
}

// fail writes err as a JSON error response.
func fail(c *fiber.Ctx, err error) error {
	code, msg := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		logger.Get().Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("Request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
