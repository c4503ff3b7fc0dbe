// Package email delivers transactional mail through Brevo's HTTP API or a
// plain SMTP relay.
package email

import (
	"context"
	"strings"

	"microcredit-api/internal/config"
	"microcredit-api/internal/pkg/logger"

	"go.uber.org/zap"
)

// Sender delivers one HTML message
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// New picks the provider named in cfg. Missing credentials yield a
// DisabledSender so the rest of the flow keeps working in development.
func New(cfg config.EmailConfig) Sender {
	switch strings.ToLower(cfg.Provider) {
	case "smtp":
		if cfg.SMTPHost == "" {
			logger.Warn(context.Background(), "⚠️ SMTP_HOST not configured, email delivery disabled")
			return NewDisabledSender()
		}
		return NewSMTPSender(cfg)
	default:
		if cfg.APIKey == "" {
			logger.Warn(context.Background(), "⚠️ BREVO_API_KEY not configured, email delivery disabled")
			return NewDisabledSender()
		}
		logger.Info(context.Background(), "✅ Brevo email provider configured",
			zap.String("from", cfg.FromEmail))
		return NewBrevoSender(cfg)
	}
}

// DisabledSender drops messages after logging them
type DisabledSender struct{}

// NewDisabledSender creates a sender that never delivers
func NewDisabledSender() *DisabledSender {
	return &DisabledSender{}
}

// Send logs the message recipient and subject only
func (s *DisabledSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	logger.Warn(ctx, "email delivery disabled, message dropped",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}
