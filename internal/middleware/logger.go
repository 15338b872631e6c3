package middleware

import (
	"time"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request correlation id.
const RequestIDHeader = "X-Request-ID"

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
	// Next defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Logger is the zerolog logger instance to use.
	// If not provided, the default logger will be used.
	Logger *zerolog.Logger

	// Fields to include in the logs
	Fields []string
}

// DefaultLoggerConfig is the default config
var DefaultLoggerConfig = LoggerConfig{
	Fields: []string{"request_id", "latency", "status", "method", "path", "ip", "user_agent", "member"},
}

// NewLogger logs one line per request. 5xx responses log at error level and
// 4xx at warn.
func NewLogger(config ...LoggerConfig) fiber.Handler {
	cfg := DefaultLoggerConfig
	if len(config) > 0 {
		cfg = config[0]
		if len(cfg.Fields) == 0 {
			cfg.Fields = DefaultLoggerConfig.Fields
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}

	fields := make(map[string]bool)
	for _, f := range cfg.Fields {
		fields[f] = true
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		start := time.Now()
		rid := c.Get(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(RequestIDHeader, rid)

		err := c.Next()
		if err != nil {
			// Let the app error handler write the response so the status is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = cfg.Logger.Error()
		case status >= fiber.StatusBadRequest:
			event = cfg.Logger.Warn()
		default:
			event = cfg.Logger.Info()
		}

		if fields["request_id"] {
			event = event.Str("request_id", rid)
		}
		if fields["method"] {
			event = event.Str("method", c.Method())
		}
		if fields["path"] {
			event = event.Str("path", c.Path())
		}
		if fields["status"] {
			event = event.Int("status", status)
		}
		if fields["ip"] {
			event = event.Str("ip", c.IP())
		}
		if fields["user_agent"] {
			event = event.Str("user_agent", c.Get(fiber.HeaderUserAgent))
		}
		if fields["latency"] {
			event = event.Dur("latency", time.Since(start))
		}
		if fields["member"] {
			if sess := SessionFrom(c); sess.Member != nil {
				event = event.Str("member_id", sess.Member.ID)
			}
		}
		if err != nil {
			event = event.Err(err)
		}

		event.Msg("request")
		return nil
	}
}

// RequestLogger is the logger middleware without the user agent field.
func RequestLogger() fiber.Handler {
	return NewLogger(LoggerConfig{
		Fields: []string{"request_id", "latency", "status", "method", "path", "ip", "member"},
	})
}
