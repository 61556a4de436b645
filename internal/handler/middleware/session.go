package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/session"
)

const LocalController = "controller"

// Sessions hands out the controller for an authenticated session.
type Sessions interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*session.Controller, error)
	SignedOut(sessionID uuid.UUID)
}

// RequireSession must run after AuthMiddleware. It attaches the session's
// controller, or rejects the request if the session no longer resolves.
func RequireSession(sessions Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return unauthorized(c, "Unauthorized")
		}

		ctrl, err := sessions.Get(c.UserContext(), claims.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return unauthorized(c, "session is no longer active")
			}
			return err
		}

		c.Locals(LocalController, ctrl)
		return c.Next()
	}
}

func ControllerFrom(c *fiber.Ctx) (*session.Controller, bool) {
	ctrl, ok := c.Locals(LocalController).(*session.Controller)
	return ctrl, ok && ctrl != nil
}
