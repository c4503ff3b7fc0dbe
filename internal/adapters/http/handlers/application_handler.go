package handlers

import (
	"errors"

	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/core/services"
	"microcredit-api/internal/pkg/pagination"
	"microcredit-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler serves submitted applications to applicants and staff
type ApplicationHandler struct {
	applications *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// ListMine lists the caller's applications
// @Summary My applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/applications/my [get]
func (h *ApplicationHandler) ListMine(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	apps, err := h.applications.ListMine(c.UserContext(), v.TenantID, v.UserID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list applications")
	}
	return response.Success(c, "Applications retrieved successfully", apps)
}

// Get returns one application
// @Summary Get application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/applications/{id} [get]
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	app, err := h.applications.Get(c.UserContext(), c.Params("id"), v)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Application retrieved successfully", app)
}

// History returns the status events of an application
// @Summary Application history
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/applications/{id}/history [get]
func (h *ApplicationHandler) History(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	events, err := h.applications.History(c.UserContext(), c.Params("id"), v)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "History retrieved successfully", events)
}

// List lists applications for staff
// @Summary List applications (staff)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, in_review, approved, rejected"
// @Param tenantId query string false "Tenant (admins only)"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Limit" default(20) maximum(50)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/admin/applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	params := pagination.GetParams(c, pagination.StaffMaxLimit)
	out, err := h.applications.List(c.UserContext(), &services.ListInput{
		TenantID: c.Query("tenantId"),
		Status:   domain.ApplicationStatus(c.Query("status")),
		Offset:   params.Offset,
		Limit:    params.Limit,
	}, v)
	if err != nil {
		return h.fail(c, err)
	}

	return response.Success(c, "Applications retrieved successfully",
		pagination.NewResponse(out.Applications, params, out.Total))
}

// UpdateStatus records a review decision
// @Summary Update application status (staff)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body services.UpdateStatusInput true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/admin/applications/{id}/status [put]
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateStatusInput
	if err := bind(c, &input); err != nil {
		return response.BadRequest(c, err.Error())
	}

	app, err := h.applications.UpdateStatus(c.UserContext(), c.Params("id"), &input, v, c.IP())
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Application status updated", app)
}

func (h *ApplicationHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrApplicationNotFound):
		return response.NotFound(c, "Solicitud no encontrada")
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to access this resource")
	case errors.Is(err, domain.ErrInvalidStatus):
		return response.BadRequest(c, "Estado inválido")
	case errors.Is(err, services.ErrInvalidTransition):
		return response.Conflict(c, "La solicitud ya no puede cambiar a ese estado")
	default:
		return response.InternalServerError(c, "Failed to process application")
	}
}
