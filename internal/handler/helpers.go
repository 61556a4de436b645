package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/pkg/validator"
)

// statusFor maps the domain error taxonomy onto HTTP. Foreign records and
// missing records look the same to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAuthorizationDenied):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrTransport):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func publicMessage(status int, err error) string {
	switch status {
	case fiber.StatusNotFound:
		return "Resource not found"
	case fiber.StatusBadGateway:
		return "Upstream service unavailable"
	case fiber.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}

// ErrorHandler is the fiber ErrorHandler for the API.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error":   true,
				"message": fe.Message,
			})
		}

		status := statusFor(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return c.Status(status).JSON(fiber.Map{
			"error":   true,
			"message": publicMessage(status, err),
		})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid application ID")
	}
	return id, nil
}

// optional turns a blank form value into "no value".
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func parseDate(s *string) (*time.Time, error) {
	if optional(s) == nil {
		return nil, nil
	}
	t, err := time.Parse(validator.DateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDateTime(s *string) (*time.Time, error) {
	if optional(s) == nil {
		return nil, nil
	}
	t, err := validator.ParseDateTime(strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}
