package services

import (
	"context"
	"time"

	"microcredit-api/internal/core/domain"
)

// CodeStore keeps at most one verification code per email
type CodeStore interface {
	Get(ctx context.Context, email string) (*domain.VerificationCode, error)
	Set(ctx context.Context, code *domain.VerificationCode) error
	Delete(ctx context.Context, email string) error
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// EmailSender delivers one HTML message
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// VerifiedListener is told when an email address passed verification
type VerifiedListener interface {
	EmailVerified(ctx context.Context, email string)
}
