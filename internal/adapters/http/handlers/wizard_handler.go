package handlers

import (
	"errors"

	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/core/services"
	"microcredit-api/internal/core/wizard"
	"microcredit-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// WizardHandler drives the caller's loan application form
type WizardHandler struct {
	wizards *services.WizardService
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(wizards *services.WizardService) *WizardHandler {
	return &WizardHandler{wizards: wizards}
}

// SelectProductRequest picks a product of the caller's tenant
type SelectProductRequest struct {
	ProductID uint `json:"productId" validate:"required"`
}

// LocationRequest carries the browser geolocation
type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Start opens or resumes the caller's form
// @Summary Start application
// @Description Opens a form prefilled from the profile, or resumes the one in progress
// @Tags Wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/wizard [post]
func (h *WizardHandler) Start(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	state, err := h.wizards.Start(c.UserContext(), v.UserID)
	return h.reply(c, state, err)
}

// Get returns the caller's form
// @Summary Get application form
// @Tags Wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/wizard [get]
func (h *WizardHandler) Get(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	state, err := h.wizards.Get(c.UserContext(), v.UserID)
	return h.reply(c, state, err)
}

// Patch sets form fields
// @Summary Set form fields
// @Tags Wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body map[string]interface{} true "Field values by name"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/wizard/fields [patch]
func (h *WizardHandler) Patch(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var values map[string]interface{}
	if err := c.BodyParser(&values); err != nil {
		return response.BadRequest(c, errBadBody.Error())
	}
	state, err := h.wizards.Patch(c.UserContext(), v.UserID, values)
	return h.reply(c, state, err)
}

// SelectProduct binds the form to a product
// @Summary Select product
// @Tags Wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SelectProductRequest true "Product"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/wizard/product [post]
func (h *WizardHandler) SelectProduct(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req SelectProductRequest
	if err := bind(c, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	state, err := h.wizards.SelectProduct(c.UserContext(), v.UserID, req.ProductID)
	return h.reply(c, state, err)
}

// SetLocation records the applicant's coordinates
// @Summary Set location
// @Tags Wizard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LocationRequest true "Coordinates"
// @Success 200 {object} response.Response
// @Router /api/wizard/location [post]
func (h *WizardHandler) SetLocation(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req LocationRequest
	if err := bind(c, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	state, err := h.wizards.SetLocation(c.UserContext(), v.UserID, req.Latitude, req.Longitude)
	return h.reply(c, state, err)
}

// Next validates the current step and advances
// @Summary Next step
// @Tags Wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/wizard/next [post]
func (h *WizardHandler) Next(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	state, err := h.wizards.Next(c.UserContext(), v.UserID)
	return h.reply(c, state, err)
}

// Previous goes back one step
// @Summary Previous step
// @Tags Wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/wizard/previous [post]
func (h *WizardHandler) Previous(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	state, err := h.wizards.Previous(c.UserContext(), v.UserID)
	return h.reply(c, state, err)
}

// Submit sends the form for evaluation
// @Summary Submit application
// @Tags Wizard
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/wizard/submit [post]
func (h *WizardHandler) Submit(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	state, err := h.wizards.Submit(c.UserContext(), v.UserID)
	if err != nil {
		return h.reply(c, state, err)
	}
	return response.Created(c, "Solicitud enviada", state)
}

// Discard drops the form in progress
// @Summary Discard application form
// @Tags Wizard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/wizard [delete]
func (h *WizardHandler) Discard(c *fiber.Ctx) error {
	v, ok := viewer(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	if err := h.wizards.Discard(c.UserContext(), v.UserID); err != nil {
		return h.reply(c, nil, err)
	}
	return response.Success(c, "Formulario descartado", nil)
}

// reply maps wizard outcomes to responses. Failed transitions still carry
// the form state so the client can render field errors.
func (h *WizardHandler) reply(c *fiber.Ctx, state *services.WizardState, err error) error {
	if err == nil {
		return response.Success(c, "OK", state)
	}

	var fe *wizard.FieldErrors
	switch {
	case errors.As(err, &fe):
		message := "Revisa los campos marcados"
		if errors.Is(err, domain.ErrOutOfRange) {
			message = "El monto o plazo está fuera del rango del producto"
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(response.Response{
			Success: false,
			Error:   message,
			Data:    fiber.Map{"fields": fe.Fields, "state": state},
		})
	case errors.Is(err, domain.ErrSubmissionFailed):
		return c.Status(fiber.StatusInternalServerError).JSON(response.Response{
			Success: false,
			Error:   state.SubmitError,
			Data:    fiber.Map{"state": state},
		})
	case errors.Is(err, domain.ErrNoActiveWizard):
		return response.NotFound(c, "No hay una solicitud en curso")
	case errors.Is(err, domain.ErrProductNotFound):
		return response.NotFound(c, "Producto no encontrado")
	case errors.Is(err, domain.ErrPendingApplication):
		return response.Conflict(c, "Ya tienes una solicitud en proceso")
	case errors.Is(err, domain.ErrLastStep),
		errors.Is(err, domain.ErrNoPreviousStep),
		errors.Is(err, domain.ErrNotOnLastStep),
		errors.Is(err, domain.ErrWizardComplete):
		return c.Status(fiber.StatusConflict).JSON(response.Response{
			Success: false,
			Error:   err.Error(),
			Data:    fiber.Map{"state": state},
		})
	case errors.Is(err, domain.ErrUnknownField), errors.Is(err, domain.ErrInvalidInput):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrValidationFailed):
		return response.ValidationFailed(c, err.Error(), nil)
	case errors.Is(err, services.ErrUserNotFound):
		return response.Unauthorized(c, "Unauthorized")
	default:
		return response.InternalServerError(c, "Failed to update application form")
	}
}
