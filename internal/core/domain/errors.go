package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Verification errors
var (
	ErrCodeNotFound    = errors.New("verification code not found")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrTooManyAttempts = errors.New("too many failed attempts")
	ErrCodeMismatch    = errors.New("verification code mismatch")
)

// Application wizard errors
var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrOutOfRange         = errors.New("value out of product range")
	ErrSubmissionFailed   = errors.New("submission failed")
	ErrConsentsMissing    = errors.New("all consents must be accepted")
	ErrNotOnLastStep      = errors.New("submission is only allowed from the last step")
	ErrLastStep           = errors.New("already on the last step")
	ErrNoPreviousStep     = errors.New("no previous step available")
	ErrUnknownField       = errors.New("unknown application field")
	ErrWizardComplete     = errors.New("application already submitted")
	ErrNoActiveWizard     = errors.New("no application in progress")
	ErrPendingApplication = errors.New("an application is already in process")
)

// Catalog / application errors
var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidStatus       = errors.New("invalid application status")
)
