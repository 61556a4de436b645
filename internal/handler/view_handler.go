package handler

import (
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scholaco/tracker/internal/viewmodel"
)

// ViewHandler serves the derived views. Each request re-fetches the list so
// writes from the user's other sessions show up.
type ViewHandler struct {
	now func() time.Time
}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{now: time.Now}
}

// Stats returns the aggregate counters
// GET /api/v1/stats
func (h *ViewHandler) Stats(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	if err := ctrl.Refresh(c.UserContext()); err != nil {
		return err
	}

	stats := ctrl.Stats()
	if stats == nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"message": "Stats unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"stats":            stats,
		"potential_awards": viewmodel.FormatAwards(stats.PotentialAwards),
	})
}

// Dashboard returns recent and all cards with stats
// GET /api/v1/dashboard
func (h *ViewHandler) Dashboard(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	if err := ctrl.Refresh(c.UserContext()); err != nil {
		return err
	}

	d := viewmodel.NewDashboard(ctrl.Applications(), ctrl.Stats(), h.now())
	d.Greeting = ctrl.Greeting()
	return c.JSON(d)
}

// Calendar lists deadlines soonest first
// GET /api/v1/calendar
func (h *ViewHandler) Calendar(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	if err := ctrl.Refresh(c.UserContext()); err != nil {
		return err
	}

	entries := slices.Collect(viewmodel.CalendarEntries(ctrl.Applications(), h.now()))
	if entries == nil {
		entries = []viewmodel.CalendarEntry{}
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// Reminders lists reminders earliest first
// GET /api/v1/reminders
func (h *ViewHandler) Reminders(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	if err := ctrl.Refresh(c.UserContext()); err != nil {
		return err
	}

	entries := slices.Collect(viewmodel.ReminderEntries(ctrl.Applications(), h.now()))
	if entries == nil {
		entries = []viewmodel.ReminderEntry{}
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// Operations exposes the per-operation pending/settled/failed state
// GET /api/v1/operations
func (h *ViewHandler) Operations(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"operations": ctrl.Operations()})
}
