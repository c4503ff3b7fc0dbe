package email

import (
	"context"
	"fmt"

	"microcredit-api/internal/config"

	"gopkg.in/gomail.v2"
)

// SMTPSender relays messages through an SMTP server
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTPSender creates an SMTP sender
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
	}
}

// Send delivers one message
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	m := s.message(to, subject, htmlBody)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *SMTPSender) message(to, subject, htmlBody string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return m
}
