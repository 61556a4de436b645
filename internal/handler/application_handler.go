package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/handler/middleware"
	"github.com/scholaco/tracker/internal/session"
	"github.com/scholaco/tracker/pkg/validator"
)

type ApplicationHandler struct {
	validator *validator.Validator
}

func NewApplicationHandler(validator *validator.Validator) *ApplicationHandler {
	return &ApplicationHandler{validator: validator}
}

type CreateApplicationRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Organization *string `json:"organization" validate:"omitempty,max=255"`
	Amount       *string `json:"amount" validate:"omitempty,max=64"`
	Deadline     *string `json:"deadline" validate:"omitempty,datestr"`
	Status       string  `json:"status" validate:"omitempty,appstatus"`
	Reminder     *string `json:"reminder" validate:"omitempty,datetimestr"`
	Notes        *string `json:"notes" validate:"omitempty,max=5000"`
}

// UpdateApplicationRequest changes only the fields present in the body. An
// empty deadline or reminder clears it.
type UpdateApplicationRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=255"`
	Organization *string `json:"organization" validate:"omitempty,max=255"`
	Amount       *string `json:"amount" validate:"omitempty,max=64"`
	Deadline     *string `json:"deadline" validate:"omitempty,datestr"`
	Status       *string `json:"status" validate:"omitempty,appstatus"`
	Reminder     *string `json:"reminder" validate:"omitempty,datetimestr"`
	Notes        *string `json:"notes" validate:"omitempty,max=5000"`
}

func (r CreateApplicationRequest) fields() (domain.ApplicationFields, error) {
	deadline, err := parseDate(r.Deadline)
	if err != nil {
		return domain.ApplicationFields{}, err
	}
	reminder, err := parseDateTime(r.Reminder)
	if err != nil {
		return domain.ApplicationFields{}, err
	}

	return domain.ApplicationFields{
		Name:         strings.TrimSpace(r.Name),
		Organization: optional(r.Organization),
		Amount:       optional(r.Amount),
		Deadline:     deadline,
		Status:       domain.ApplicationStatus(r.Status),
		Reminder:     reminder,
		Notes:        optional(r.Notes),
	}, nil
}

func (r UpdateApplicationRequest) patch() (domain.ApplicationPatch, error) {
	var p domain.ApplicationPatch

	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		p.Name = &name
	}
	p.Organization = r.Organization
	p.Amount = r.Amount
	p.Notes = r.Notes

	if r.Status != nil {
		status := domain.ApplicationStatus(*r.Status)
		p.Status = &status
	}

	if r.Deadline != nil {
		deadline, err := parseDate(r.Deadline)
		if err != nil {
			return p, err
		}
		p.Deadline = deadline
		p.ClearDeadline = deadline == nil
	}

	if r.Reminder != nil {
		reminder, err := parseDateTime(r.Reminder)
		if err != nil {
			return p, err
		}
		p.Reminder = reminder
		p.ClearReminder = reminder == nil
	}

	return p, nil
}

func controller(c *fiber.Ctx) (*session.Controller, error) {
	ctrl, ok := middleware.ControllerFrom(c)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return ctrl, nil
}

// List returns the current user's applications, newest first
// GET /api/v1/applications
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	if err := ctrl.Refresh(c.UserContext()); err != nil {
		return err
	}

	apps := ctrl.Applications()
	return c.JSON(fiber.Map{
		"applications": apps,
		"count":        len(apps),
	})
}

// Create adds an application
// POST /api/v1/applications
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	var req CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	fields, err := req.fields()
	if err != nil {
		return badRequest(c, err.Error())
	}

	app, err := ctrl.Create(c.UserContext(), fields)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

// Update edits an application
// PUT /api/v1/applications/:id
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req UpdateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return badRequest(c, "name must not be blank")
		}
		req.Name = &name
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	patch, err := req.patch()
	if err != nil {
		return badRequest(c, err.Error())
	}
	if patch.Empty() {
		return badRequest(c, "Nothing to update")
	}

	// route the edit through the controller so an open edit is closed too
	var app *domain.Application
	if editing := ctrl.Editing(); editing != nil && editing.ID == id {
		app, err = ctrl.SaveEdit(c.UserContext(), patch)
	} else {
		app, err = ctrl.Update(c.UserContext(), id, patch)
	}
	if err != nil {
		return err
	}

	return c.JSON(app)
}

// Delete removes an application immediately
// DELETE /api/v1/applications/:id
func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := ctrl.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ConfirmDelete is the two-step delete: the first call arms, a second call
// inside the window deletes
// POST /api/v1/applications/:id/confirm-delete
func (h *ApplicationHandler) ConfirmDelete(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	outcome, err := ctrl.ConfirmDelete(c.UserContext(), id)
	if err != nil {
		return err
	}

	status := fiber.StatusAccepted
	if outcome == session.DeleteDone {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{
		"id":      id,
		"outcome": outcome,
	})
}

// ClearReminder dismisses an application's reminder
// DELETE /api/v1/applications/:id/reminder
func (h *ApplicationHandler) ClearReminder(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	app, err := ctrl.ClearReminder(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(app)
}

// BeginEdit opens an edit on a record from the current list
// POST /api/v1/applications/:id/edit
func (h *ApplicationHandler) BeginEdit(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	app, err := ctrl.BeginEdit(id)
	if err != nil {
		return err
	}

	return c.JSON(app)
}

// CancelEdit discards the open edit
// DELETE /api/v1/applications/edit
func (h *ApplicationHandler) CancelEdit(c *fiber.Ctx) error {
	ctrl, err := controller(c)
	if err != nil {
		return err
	}

	ctrl.CancelEdit()
	return c.SendStatus(fiber.StatusNoContent)
}
