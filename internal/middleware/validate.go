package middleware

import (
	"errors"
	"net/http"

	"github.com/bilgisen/autostudio/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const (
	bodyKey  = "validated"
	queryKey = "queryParams"
)

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate validates s against its struct tags
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = fe.Tag()
		}
	}
	return out
}

// ValidateBody parses the request body into a fresh T per request,
// validates it and stores it for Body.
func ValidateBody[T any]() fiber.Handler {
	v := NewValidator()

	return func(c *fiber.Ctx) error {
		s := new(T)
		if err := c.BodyParser(s); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
				"msg":   err.Error(),
			})
		}

		if err := v.Validate(s); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": fieldErrors(err),
			})
		}

		c.Locals(bodyKey, s)
		return c.Next()
	}
}

// ValidateQuery is ValidateBody for query parameters.
func ValidateQuery[T any]() fiber.Handler {
	v := NewValidator()

	return func(c *fiber.Ctx) error {
		s := new(T)
		if err := c.QueryParser(s); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid query parameters",
				"msg":   err.Error(),
			})
		}

		if err := v.Validate(s); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Invalid query parameters",
				"fields": fieldErrors(err),
			})
		}

		c.Locals(queryKey, s)
		return c.Next()
	}
}

// Body returns the body stored by ValidateBody[T].
func Body[T any](c *fiber.Ctx) *T {
	s, _ := c.Locals(bodyKey).(*T)
	return s
}

// Query returns the parameters stored by ValidateQuery[T].
func Query[T any](c *fiber.Ctx) *T {
	s, _ := c.Locals(queryKey).(*T)
	return s
}

// ErrorHandler is the app-wide fiber error handler. Handlers map domain
// errors themselves; anything reaching here is a *fiber.Error or a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := http.StatusText(code)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		logger.Get().Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", code).
			Msg("HTTP error")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": msg,
	})
}
