package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"microcredit-api/internal/config"
	"microcredit-api/internal/pkg/logger"

	"go.uber.org/zap"
)

const defaultBrevoURL = "https://api.brevo.com/v3/smtp/email"

// BrevoSender posts messages to the Brevo transactional email API
type BrevoSender struct {
	apiKey    string
	fromEmail string
	fromName  string
	endpoint  string
	client    *http.Client
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

// NewBrevoSender creates a Brevo sender
func NewBrevoSender(cfg config.EmailConfig) *BrevoSender {
	endpoint := cfg.BrevoURL
	if endpoint == "" {
		endpoint = defaultBrevoURL
	}
	return &BrevoSender{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		endpoint:  endpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers one message; any non-2xx answer is an error
func (s *BrevoSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(brevoRequest{
		Sender:      brevoContact{Name: s.fromName, Email: s.fromEmail},
		To:          []brevoContact{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo error %d: %s", resp.StatusCode, string(body))
	}

	var out brevoResponse
	_ = json.Unmarshal(body, &out)
	logger.Info(ctx, "📧 Email sent", zap.String("to", to), zap.String("message_id", out.MessageID))
	return nil
}
