package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/handler/middleware"
	"github.com/scholaco/tracker/internal/service"
	"github.com/scholaco/tracker/pkg/validator"
)

// Authenticator is the identity provider behind the auth routes.
type Authenticator interface {
	SignUp(ctx context.Context, req service.SignUpRequest) (*service.AuthResponse, error)
	SignIn(ctx context.Context, req service.SignInRequest) (*service.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	SignOut(ctx context.Context, claims *domain.Claims) error
}

type AuthHandler struct {
	authService Authenticator
	sessions    middleware.Sessions
	validator   *validator.Validator
}

func NewAuthHandler(authService Authenticator, sessions middleware.Sessions, validator *validator.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		validator:   validator,
	}
}

// SignUp handles account creation
// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req service.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Validate(req); err != nil {
		return err
	}

	resp, err := h.authService.SignUp(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SignIn handles user login
// POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req service.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Validate(req); err != nil {
		return err
	}

	resp, err := h.authService.SignIn(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}

// Refresh handles token refresh
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Validate(req); err != nil {
		return err
	}

	tokens, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(tokens)
}

// SignOut ends the current session and drops its in-memory state
// POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	if err := h.authService.SignOut(c.UserContext(), claims); err != nil {
		return err
	}
	h.sessions.SignedOut(claims.SessionID)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Signed out successfully",
	})
}

// Me returns the signed-in user and their greeting name
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	ctrl, ok := middleware.ControllerFrom(c)
	if !ok {
		return domain.ErrUnauthenticated
	}

	user, err := ctrl.CurrentUser(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":     user,
		"greeting": ctrl.Greeting(),
		"state":    ctrl.State().String(),
	})
}
