package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scholaco/tracker/internal/domain"
)

const (
	LocalClaims = "claims"
	LocalToken  = "token"
)

// TokenValidator checks an access token, including revocation.
type TokenValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (*domain.Claims, error)
}

// AuthMiddleware validates the bearer token and stores its claims in Locals.
func AuthMiddleware(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return unauthorized(c, "invalid authorization header format")
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			return unauthorized(c, "missing token")
		}

		claims, err := validator.ValidateAccess(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, domain.ErrTransport) {
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error":   true,
					"message": "failed to verify token status",
				})
			}
			return unauthorized(c, "invalid or revoked token")
		}

		c.Locals(LocalClaims, claims)
		c.Locals(LocalToken, token)

		return c.Next()
	}
}

// ClaimsFrom returns the claims AuthMiddleware stored.
func ClaimsFrom(c *fiber.Ctx) (*domain.Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*domain.Claims)
	return claims, ok && claims != nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
