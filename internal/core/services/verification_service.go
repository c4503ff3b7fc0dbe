package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
	"time"

	"microcredit-api/internal/adapters/email"
	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/pkg/logger"
	"microcredit-api/internal/pkg/metrics"

	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	codeMin   = 100000
	codeRange = 900000
)

// User-facing outcome messages
const (
	MsgCodeSent        = "Código de verificación enviado"
	MsgEmailRequired   = "Email es requerido"
	MsgEmailInvalid    = "Email inválido"
	MsgSendFailed      = "Error al enviar el código de verificación"
	MsgCodeRequired    = "Email y código son requeridos"
	MsgCodeNotFound    = "Código no encontrado o expirado"
	MsgCodeExpired     = "El código ha expirado"
	MsgTooManyAttempts = "Demasiados intentos fallidos"
	MsgCodeMismatch    = "Código incorrecto"
	MsgCodeVerified    = "Código verificado correctamente"
	MsgVerifyFailed    = "Error al verificar el código"
)

// VerificationResult is the outcome of a verification operation. Failures
// carry a Reason; reasons outside the verification taxonomy are unexpected.
type VerificationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  error  `json:"-"`
}

// IsClientError reports whether the failure was caused by the caller's input
func (r VerificationResult) IsClientError() bool {
	if r.Success || r.Reason == nil {
		return false
	}
	for _, known := range []error{
		domain.ErrInvalidInput,
		domain.ErrCodeNotFound,
		domain.ErrCodeExpired,
		domain.ErrTooManyAttempts,
		domain.ErrCodeMismatch,
	} {
		if errors.Is(r.Reason, known) {
			return true
		}
	}
	return false
}

func succeeded(message string) VerificationResult {
	return VerificationResult{Success: true, Message: message}
}

func failed(message string, reason error) VerificationResult {
	return VerificationResult{Message: message, Reason: reason}
}

// VerificationOptions tunes code lifetime and abuse limits
type VerificationOptions struct {
	CodeTTL        time.Duration
	ResendInterval time.Duration
	MaxAttempts    int
	BrandName      string
}

// DefaultVerificationOptions returns the production limits
func DefaultVerificationOptions() VerificationOptions {
	return VerificationOptions{
		CodeTTL:        10 * time.Minute,
		ResendInterval: time.Minute,
		MaxAttempts:    3,
		BrandName:      "CreditoExpress",
	}
}

// VerificationService issues and checks email one-time codes
type VerificationService struct {
	store    CodeStore
	sender   EmailSender
	listener VerifiedListener
	opts     VerificationOptions
	locks    *keyedMutex
	now      func() time.Time
	random   io.Reader
}

// NewVerificationService creates a verification service. listener may be nil.
func NewVerificationService(store CodeStore, sender EmailSender, listener VerifiedListener, opts VerificationOptions) *VerificationService {
	defaults := DefaultVerificationOptions()
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = defaults.CodeTTL
	}
	if opts.ResendInterval < 0 {
		opts.ResendInterval = defaults.ResendInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.BrandName == "" {
		opts.BrandName = defaults.BrandName
	}

	return &VerificationService{
		store:    store,
		sender:   sender,
		listener: listener,
		opts:     opts,
		locks:    newKeyedMutex(),
		now:      time.Now,
		random:   rand.Reader,
	}
}

// NormalizeEmail trims and lower-cases an address
func NormalizeEmail(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// RequestCode issues a code for address and emails it. A second request
// inside the resend interval succeeds without issuing or sending anything.
func (s *VerificationService) RequestCode(ctx context.Context, address string) VerificationResult {
	address = NormalizeEmail(address)
	if address == "" {
		return failed(MsgEmailRequired, domain.ErrInvalidInput)
	}
	if !emailPattern.MatchString(address) {
		return failed(MsgEmailInvalid, domain.ErrInvalidInput)
	}

	code, issued, err := s.issue(ctx, address)
	if err != nil {
		logger.Error(ctx, "failed to issue verification code", zap.String("email", address), zap.Error(err))
		return failed(MsgSendFailed, err)
	}
	if !issued {
		metrics.CodesThrottled.Inc()
		logger.Info(ctx, "⏳ Verification code resend throttled", zap.String("email", address))
		return succeeded(MsgCodeSent)
	}
	metrics.CodesIssued.Inc()

	// the stored code stays valid even when delivery fails
	if err := s.deliver(ctx, address, code); err != nil {
		metrics.EmailFailures.Inc()
		logger.Error(ctx, "failed to send verification email", zap.String("email", address), zap.Error(err))
	} else {
		logger.Info(ctx, "📧 Verification code sent", zap.String("email", address))
	}

	return succeeded(MsgCodeSent)
}

func (s *VerificationService) issue(ctx context.Context, address string) (string, bool, error) {
	unlock := s.locks.Lock(address)
	defer unlock()

	now := s.now()
	existing, err := s.store.Get(ctx, address)
	switch {
	case err == nil:
		if now.Sub(existing.IssuedAt) < s.opts.ResendInterval {
			return "", false, nil
		}
	case !errors.Is(err, domain.ErrCodeNotFound):
		return "", false, err
	}

	code, err := s.generateCode()
	if err != nil {
		return "", false, fmt.Errorf("generate code: %w", err)
	}

	err = s.store.Set(ctx, &domain.VerificationCode{
		Email:     address,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.opts.CodeTTL),
		Attempts:  0,
	})
	if err != nil {
		return "", false, err
	}

	return code, true, nil
}

func (s *VerificationService) deliver(ctx context.Context, address, code string) error {
	body, err := email.RenderVerification(s.opts.BrandName, code, int(s.opts.CodeTTL/time.Minute))
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	return s.sender.Send(ctx, address, email.VerificationSubject, body)
}

// generateCode returns a uniformly random six digit code
func (s *VerificationService) generateCode() (string, error) {
	n, err := rand.Int(s.random, big.NewInt(codeRange))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}

// VerifyCode checks submitted against the stored code for address
func (s *VerificationService) VerifyCode(ctx context.Context, address, submitted string) VerificationResult {
	address = NormalizeEmail(address)
	submitted = strings.TrimSpace(submitted)
	if address == "" || submitted == "" {
		return failed(MsgCodeRequired, domain.ErrInvalidInput)
	}

	result := s.check(ctx, address, submitted)
	metrics.VerifyOutcomes.WithLabelValues(outcomeLabel(result)).Inc()

	if result.Success {
		logger.Info(ctx, "✅ Email verified", zap.String("email", address))
		if s.listener != nil {
			s.listener.EmailVerified(ctx, address)
		}
	} else if !result.IsClientError() {
		logger.Error(ctx, "failed to verify code", zap.String("email", address), zap.Error(result.Reason))
	}

	return result
}

func (s *VerificationService) check(ctx context.Context, address, submitted string) VerificationResult {
	unlock := s.locks.Lock(address)
	defer unlock()

	stored, err := s.store.Get(ctx, address)
	if errors.Is(err, domain.ErrCodeNotFound) {
		return failed(MsgCodeNotFound, domain.ErrCodeNotFound)
	}
	if err != nil {
		return failed(MsgVerifyFailed, err)
	}

	if stored.IsExpired(s.now()) {
		if err := s.store.Delete(ctx, address); err != nil {
			return failed(MsgVerifyFailed, err)
		}
		return failed(MsgCodeExpired, domain.ErrCodeExpired)
	}

	if stored.Attempts >= s.opts.MaxAttempts {
		if err := s.store.Delete(ctx, address); err != nil {
			return failed(MsgVerifyFailed, err)
		}
		return failed(MsgTooManyAttempts, domain.ErrTooManyAttempts)
	}

	if stored.Code != submitted {
		stored.Attempts++
		if stored.Attempts >= s.opts.MaxAttempts {
			// the last allowed attempt burns the code
			if err := s.store.Delete(ctx, address); err != nil {
				return failed(MsgVerifyFailed, err)
			}
			return failed(MsgCodeMismatch, domain.ErrCodeMismatch)
		}
		if err := s.store.Set(ctx, stored); err != nil {
			return failed(MsgVerifyFailed, err)
		}
		return failed(MsgCodeMismatch, domain.ErrCodeMismatch)
	}

	if err := s.store.Delete(ctx, address); err != nil {
		return failed(MsgVerifyFailed, err)
	}
	return succeeded(MsgCodeVerified)
}

func outcomeLabel(r VerificationResult) string {
	switch {
	case r.Success:
		return "verified"
	case errors.Is(r.Reason, domain.ErrCodeNotFound):
		return "not_found"
	case errors.Is(r.Reason, domain.ErrCodeExpired):
		return "expired"
	case errors.Is(r.Reason, domain.ErrTooManyAttempts):
		return "too_many_attempts"
	case errors.Is(r.Reason, domain.ErrCodeMismatch):
		return "mismatch"
	default:
		return "error"
	}
}

// HasValidCode reports whether an unexpired code is on file for address
func (s *VerificationService) HasValidCode(ctx context.Context, address string) (bool, error) {
	address = NormalizeEmail(address)
	if address == "" {
		return false, nil
	}

	stored, err := s.store.Get(ctx, address)
	if errors.Is(err, domain.ErrCodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored.ExpiresAt.After(s.now()), nil
}

// Sweep purges expired codes and returns how many were removed
func (s *VerificationService) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.Sweep(ctx, s.now())
	if err != nil {
		return 0, err
	}
	metrics.CodesSwept.Add(float64(removed))
	return removed, nil
}
