package handlers

import (
	"microcredit-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// VerificationHandler serves the email verification code endpoints
type VerificationHandler struct {
	verification *services.VerificationService
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verification *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// SendCodeRequest represents the send code body
type SendCodeRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest represents the verify code body
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// outcome writes a verification result: 200 on success, 400 for caller
// mistakes, 500 otherwise
func outcome(c *fiber.Ctx, result services.VerificationResult) error {
	code := fiber.StatusOK
	switch {
	case result.Success:
	case result.IsClientError():
		code = fiber.StatusBadRequest
	default:
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(result)
}

// SendCode issues a verification code by email
// @Summary Send verification code
// @Description Emails a 6-digit code valid for 10 minutes. Repeated requests within 60 seconds reuse the pending code.
// @Tags Verification
// @Accept json
// @Produce json
// @Param body body SendCodeRequest true "Email"
// @Success 200 {object} services.VerificationResult
// @Failure 400 {object} services.VerificationResult
// @Failure 500 {object} services.VerificationResult
// @Router /api/auth/send-verification-code [post]
func (h *VerificationHandler) SendCode(c *fiber.Ctx) error {
	var req SendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(services.VerificationResult{Message: services.MsgEmailRequired})
	}
	return outcome(c, h.verification.RequestCode(c.UserContext(), req.Email))
}

// VerifyCode checks a submitted code
// @Summary Verify code
// @Tags Verification
// @Accept json
// @Produce json
// @Param body body VerifyCodeRequest true "Email and code"
// @Success 200 {object} services.VerificationResult
// @Failure 400 {object} services.VerificationResult
// @Failure 500 {object} services.VerificationResult
// @Router /api/auth/verify-code [post]
func (h *VerificationHandler) VerifyCode(c *fiber.Ctx) error {
	var req VerifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(services.VerificationResult{Message: services.MsgCodeRequired})
	}
	return outcome(c, h.verification.VerifyCode(c.UserContext(), req.Email, req.Code))
}

// HasValidCode reports whether an unexpired code is pending for an email
// @Summary Has valid code
// @Tags Verification
// @Produce json
// @Param email path string true "Email"
// @Success 200 {object} map[string]bool
// @Failure 500 {object} map[string]interface{}
// @Router /api/auth/has-valid-code/{email} [get]
func (h *VerificationHandler) HasValidCode(c *fiber.Ctx) error {
	ok, err := h.verification.HasValidCode(c.UserContext(), c.Params("email"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Error al consultar el código",
		})
	}
	return c.JSON(fiber.Map{"hasValidCode": ok})
}
