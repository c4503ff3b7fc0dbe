package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"microcredit-api/internal/config"
	"microcredit-api/internal/core/domain"
	"microcredit-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, email string) (*domain.VerificationCode, error) {
	return nil, errStoreDown
}
func (brokenStore) Set(ctx context.Context, code *domain.VerificationCode) error { return errStoreDown }
func (brokenStore) Delete(ctx context.Context, email string) error               { return errStoreDown }
func (brokenStore) Sweep(ctx context.Context, now time.Time) (int, error)        { return 0, errStoreDown }

type discardSender struct{}

func (discardSender) Send(ctx context.Context, to, subject, htmlBody string) error { return nil }

func TestHealthCheck(t *testing.T) {
	cfg := &config.Config{AppMode: "dev", BrandName: "CreditoExpress"}

	tests := []struct {
		name   string
		checks []Check
		status int
		body   string
	}{
		{
			name:   "healthy",
			checks: []Check{{Name: "database", Ping: func(context.Context) error { return nil }}},
			status: http.StatusOK,
			body:   `"status":"ok"`,
		},
		{
			name: "degraded",
			checks: []Check{
				{Name: "database", Ping: func(context.Context) error { return nil }},
				{Name: "redis", Ping: func(context.Context) error { return errors.New("refused") }},
			},
			status: http.StatusServiceUnavailable,
			body:   `"redis":"unhealthy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(cfg, tt.checks...).HealthCheck)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			raw, _ := json.Marshal(body)
			assert.Contains(t, string(raw), tt.body)
		})
	}
}

func TestVerificationStatusCodes(t *testing.T) {
	verification := services.NewVerificationService(brokenStore{}, discardSender{}, nil, services.DefaultVerificationOptions())
	h := NewVerificationHandler(verification)

	app := fiber.New()
	app.Post("/send", h.SendCode)
	app.Post("/verify", h.VerifyCode)
	app.Get("/has/:email", h.HasValidCode)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"store failure on send", http.MethodPost, "/send", `{"email":"ana@example.com"}`, http.StatusInternalServerError, services.MsgSendFailed},
		{"missing email", http.MethodPost, "/send", `{"email":"  "}`, http.StatusBadRequest, services.MsgEmailRequired},
		{"malformed body", http.MethodPost, "/verify", `{`, http.StatusBadRequest, services.MsgCodeRequired},
		{"missing code", http.MethodPost, "/verify", `{"email":"ana@example.com"}`, http.StatusBadRequest, services.MsgCodeRequired},
		{"store failure on lookup", http.MethodGet, "/has/ana@example.com", "", http.StatusInternalServerError, "Error al consultar el código"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
