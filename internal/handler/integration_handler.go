package handler

import (
	"github.com/gofiber/fiber/v2"
)

var integrationProviders = map[string]string{
	"gmail":   "Gmail",
	"outlook": "Outlook",
	"yahoo":   "Yahoo Mail",
	"imap":    "IMAP",
}

type IntegrationHandler struct{}

func NewIntegrationHandler() *IntegrationHandler {
	return &IntegrationHandler{}
}

// Connect is a placeholder for mailbox integrations
// GET /api/v1/integrations/:provider
func (h *IntegrationHandler) Connect(c *fiber.Ctx) error {
	name, ok := integrationProviders[c.Params("provider")]
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Unknown integration")
	}

	return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
		"error":   true,
		"message": name + " integration coming soon!",
	})
}
